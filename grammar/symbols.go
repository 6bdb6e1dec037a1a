package grammar

import (
	"fmt"

	"github.com/emirpasic/gods/lists/arraylist"
	"github.com/emirpasic/gods/maps/linkedhashmap"
)

// Symbol is an entry of a symbol table.
type Symbol interface {
	ID() string
}

// === Symbol Tables =========================================================

// SymbolTable stores symbols by ID. Iteration follows the order of first
// definition.
type SymbolTable struct {
	table *linkedhashmap.Map
}

// NewSymbolTable creates an empty symbol table.
func NewSymbolTable() *SymbolTable {
	return &SymbolTable{table: linkedhashmap.New()}
}

// Resolve checks for a symbol in the symbol table.
// Returns a symbol or nil.
func (t *SymbolTable) Resolve(id string) Symbol {
	if sym, found := t.table.Get(id); found {
		return sym.(Symbol)
	}
	return nil
}

// ResolveOrDefine finds a symbol in the table, inserting a new one created
// by create if not found. Returns the symbol and a flag, signalling wether
// the symbol has already been present.
func (t *SymbolTable) ResolveOrDefine(id string, create func(string) Symbol) (Symbol, bool) {
	if sym := t.Resolve(id); sym != nil {
		return sym, true
	}
	sym := create(id)
	t.table.Put(id, sym)
	return sym, false
}

// Define stores sym under its ID, overwriting an existing symbol with this ID.
// Returns the previously stored symbol (or nil).
func (t *SymbolTable) Define(sym Symbol) Symbol {
	return t.DefineAs(sym.ID(), sym)
}

// DefineAs stores sym under an alias id.
func (t *SymbolTable) DefineAs(id string, sym Symbol) Symbol {
	old := t.Resolve(id)
	t.table.Put(id, sym)
	return old
}

// Size returns the number of entries.
func (t *SymbolTable) Size() int {
	return t.table.Size()
}

// Each calls f for every entry in order of definition. Symbols stored under
// an alias are visited for every key.
func (t *SymbolTable) Each(f func(id string, sym Symbol)) {
	it := t.table.Iterator()
	for it.Next() {
		f(it.Key().(string), it.Value().(Symbol))
	}
}

// === Rule symbols ==========================================================

// RuleSymbol is the symbol table entry of a rule. A rule symbol may exist
// without a definition, if the rule has been referenced only.
type RuleSymbol struct {
	id         string
	Defined    bool
	Block      *RuleBlock
	Access     string // "public", "protected" or "private"
	Comment    string
	references *arraylist.List
}

// NewRuleSymbol creates an undefined rule symbol.
func NewRuleSymbol(id string) *RuleSymbol {
	return &RuleSymbol{id: id, references: arraylist.New()}
}

// ID returns the name of the rule.
func (rs *RuleSymbol) ID() string {
	return rs.id
}

// AddReference records a call site of the rule.
func (rs *RuleSymbol) AddReference(rr *RuleRef) {
	rs.references.Add(rr)
}

// RemoveReference forgets a call site.
func (rs *RuleSymbol) RemoveReference(rr *RuleRef) {
	if i := rs.references.IndexOf(rr); i >= 0 {
		rs.references.Remove(i)
	}
}

// References returns all call sites of the rule in order of appearance.
func (rs *RuleSymbol) References() []*RuleRef {
	refs := make([]*RuleRef, 0, rs.references.Size())
	it := rs.references.Iterator()
	for it.Next() {
		refs = append(refs, it.Value().(*RuleRef))
	}
	return refs
}

func (rs *RuleSymbol) String() string {
	return fmt.Sprintf("<rule %s defined=%v refs=%d>", rs.id, rs.Defined, rs.references.Size())
}

// === Token symbols =========================================================

// TokenSymbol is the symbol table entry of a token or string literal.
// For literals the ID is the literal text, including quotes, and a label may
// provide an additional name.
type TokenSymbol struct {
	id          string
	Type        int
	Literal     bool
	Label       string
	Paraphrase  string
	ASTNodeType string
}

// NewTokenSymbol creates a token symbol without a token type.
func NewTokenSymbol(id string) *TokenSymbol {
	return &TokenSymbol{id: id}
}

// NewLiteralSymbol creates a string literal symbol without a token type.
func NewLiteralSymbol(text string) *TokenSymbol {
	return &TokenSymbol{id: text, Literal: true}
}

// ID returns the token name or literal text.
func (ts *TokenSymbol) ID() string {
	return ts.id
}

func (ts *TokenSymbol) String() string {
	if ts.Label != "" {
		return fmt.Sprintf("<token %s=%s:%d>", ts.Label, ts.id, ts.Type)
	}
	return fmt.Sprintf("<token %s:%d>", ts.id, ts.Type)
}
