package llk

import (
	"fmt"
	"strconv"
)

// --- Predefined token types ------------------------------------------------

// Token types with a fixed meaning. User defined token types start at
// MinUserType and are assigned in increasing order by a token manager.
const (
	InvalidType       = 0  // never assigned to a token
	EOFType           = 1  // end of input
	NullTreeLookahead = 3  // end of a sibling list in tree walkers
	MinUserType       = 4  // first token type available to grammars
	SkipType          = -1 // lexer rules not producing a token
	EpsilonType       = -2 // marks an empty match; never member of a set
)

// NondeterministicDepth is the lookahead depth assigned to alternatives for
// which no finite depth could be determined.
const NondeterministicDepth = int(^uint32(0) >> 1)

// --- Symbol formatting -----------------------------------------------------

// SymbolFormatter is a type to be provided by a grammar to be able to print
// out token types or characters of lookahead sets.
type SymbolFormatter func(int) string

// CharFormatter formats a lexer symbol as a character literal.
func CharFormatter(c int) string {
	if c < 0 {
		return fmt.Sprintf("<%d>", c)
	}
	return strconv.QuoteRune(rune(c))
}

// DecimalFormatter formats a symbol as a plain number.
func DecimalFormatter(t int) string {
	return strconv.Itoa(t)
}
