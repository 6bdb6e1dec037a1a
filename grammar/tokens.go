package grammar

import (
	"fmt"

	"github.com/npillmayer/llk"
)

// TokenManager assigns token types and keeps the token vocabulary of one or
// more grammars. Token types are assigned monotonically and never reused.
type TokenManager struct {
	Name       string
	table      *SymbolTable
	vocabulary []string // indexed by token type
	next       int
}

// NewTokenManager creates a token manager with the predefined token types.
func NewTokenManager(name string) *TokenManager {
	tm := &TokenManager{
		Name:  name,
		table: NewSymbolTable(),
		next:  llk.MinUserType,
	}
	eof := NewTokenSymbol("EOF")
	eof.Type = llk.EOFType
	tm.Define(eof)
	tm.setVocabulary(llk.NullTreeLookahead, "NULL_TREE_LOOKAHEAD")
	return tm
}

// NextTokenType claims the next free token type.
func (tm *TokenManager) NextTokenType() int {
	t := tm.next
	tm.next++
	return t
}

// Define stores ts and records it as the vocabulary entry for its type.
func (tm *TokenManager) Define(ts *TokenSymbol) {
	tm.table.Define(ts)
	tm.setVocabulary(ts.Type, ts.ID())
	if ts.Type >= tm.next {
		tm.next = ts.Type + 1
	}
	tracer().Debugf("token %s = %d", ts.ID(), ts.Type)
}

// MapToTokenSymbol makes ts available under an additional name.
func (tm *TokenManager) MapToTokenSymbol(name string, ts *TokenSymbol) {
	tm.table.DefineAs(name, ts)
}

// TokenSymbol returns the token symbol for a name or literal, or nil.
func (tm *TokenManager) TokenSymbol(id string) *TokenSymbol {
	if sym := tm.table.Resolve(id); sym != nil {
		return sym.(*TokenSymbol)
	}
	return nil
}

// TokenDefined is a predicate: is there a token symbol for id?
func (tm *TokenManager) TokenDefined(id string) bool {
	return tm.table.Resolve(id) != nil
}

// MaxTokenType returns the largest token type in use.
func (tm *TokenManager) MaxTokenType() int {
	return len(tm.vocabulary) - 1
}

// TokenString returns the vocabulary entry for token type t.
func (tm *TokenManager) TokenString(t int) string {
	if t >= 0 && t < len(tm.vocabulary) && tm.vocabulary[t] != "" {
		return tm.vocabulary[t]
	}
	return fmt.Sprintf("<%d>", t)
}

// Vocabulary returns the token names, indexed by token type. Unused token
// types have an empty entry.
func (tm *TokenManager) Vocabulary() []string {
	v := make([]string, len(tm.vocabulary))
	copy(v, tm.vocabulary)
	return v
}

// Each calls f for every token symbol, once per name it is known by.
func (tm *TokenManager) Each(f func(name string, ts *TokenSymbol)) {
	tm.table.Each(func(id string, sym Symbol) {
		f(id, sym.(*TokenSymbol))
	})
}

func (tm *TokenManager) setVocabulary(t int, name string) {
	if t < 0 {
		return
	}
	for len(tm.vocabulary) <= t {
		tm.vocabulary = append(tm.vocabulary, "")
	}
	tm.vocabulary[t] = name
}
