package grammar

import (
	"strings"
	"text/scanner"

	"github.com/npillmayer/llk/bitset"
	"github.com/npillmayer/llk/lookahead"
)

// AutoGen is the AST-generation policy of an element.
type AutoGen int

// AST-generation policies: none, suppress (!) and make root (^).
const (
	AutoGenNone AutoGen = iota
	AutoGenBang
	AutoGenCaret
)

func (ag AutoGen) String() string {
	switch ag {
	case AutoGenBang:
		return "!"
	case AutoGenCaret:
		return "^"
	}
	return ""
}

// Element is a grammar element. The set of element types is closed; clients
// switch over the concrete types
//
//    *Action, *CharLiteral, *CharRange, *StringLiteral, *TokenRef,
//    *TokenRange, *Wildcard, *RuleRef, *Block, *BlockEnd, *RuleEnd
//
type Element interface {
	Attrs() *ElementBase // attributes common to all elements
	Next() Element       // successor within the alternative, or nil
	String() string
	isElement()
}

// ElementBase holds the attributes common to all grammar elements.
type ElementBase struct {
	Pos           scanner.Position // position in the grammar source
	Label         string           // optional label, unique within a rule
	AutoGen       AutoGen          // AST-generation policy
	Not           bool             // inverted match (~)
	EnclosingRule string           // name of the enclosing rule
	at            Cursor
}

// Attrs returns the common attributes of an element.
func (b *ElementBase) Attrs() *ElementBase {
	return b
}

// At returns the location of an element within its alternative. Sentinels
// and tree roots do not have a location.
func (b *ElementBase) At() Cursor {
	return b.at
}

// Next returns the element following this one in its alternative. Sentinels
// have no successor.
func (b *ElementBase) Next() Element {
	return b.at.Next().Element()
}

func (b *ElementBase) isElement() {}

func (b *ElementBase) decorate(s string) string {
	if b.Not {
		s = "~" + s
	}
	if b.Label != "" {
		s = b.Label + ":" + s
	}
	return s + b.AutoGen.String()
}

// --- Cursor ----------------------------------------------------------------

// Cursor is a location within an alternative.
type Cursor struct {
	Alt   *Alternative
	Index int
}

// Element returns the element at the cursor location, or nil.
func (c Cursor) Element() Element {
	if c.Alt == nil || c.Index < 0 || c.Index >= len(c.Alt.elements) {
		return nil
	}
	return c.Alt.elements[c.Index]
}

// Next returns the location of the successor.
func (c Cursor) Next() Cursor {
	return Cursor{Alt: c.Alt, Index: c.Index + 1}
}

// === Element variants ======================================================

// Action is a user action. Semantic predicates which do not open an
// alternative are actions as well, flagged with IsSemPred.
type Action struct {
	ElementBase
	Text      string
	IsSemPred bool
}

func (a *Action) String() string {
	if a.IsSemPred {
		return a.Text + "?"
	}
	return a.Text
}

// CharLiteral matches a single character. Lexers only.
type CharLiteral struct {
	ElementBase
	Text string // as written, including quotes
	Char int
}

func (c *CharLiteral) String() string {
	return c.decorate(c.Text)
}

// CharRange matches a range of characters. Lexers only.
type CharRange struct {
	ElementBase
	BeginText, EndText string
	Begin, End         int
}

func (c *CharRange) String() string {
	return c.decorate(c.BeginText + ".." + c.EndText)
}

// StringLiteral matches a literal. In lexers it is a sequence of characters,
// otherwise it is a token type of its own.
type StringLiteral struct {
	ElementBase
	Text        string // as written, including quotes
	Processed   []rune // characters after escape processing
	TokenType   int
	ASTNodeType string
}

func (s *StringLiteral) String() string {
	return s.decorate(s.Text)
}

// TokenRef references a token by name. Parsers and tree walkers only.
type TokenRef struct {
	ElementBase
	Name        string
	TokenType   int
	ASTNodeType string
}

func (t *TokenRef) String() string {
	return t.decorate(t.Name)
}

// TokenRange matches a range of token types.
type TokenRange struct {
	ElementBase
	BeginText, EndText string
	Begin, End         int
}

func (t *TokenRange) String() string {
	return t.decorate(t.BeginText + ".." + t.EndText)
}

// Wildcard matches any single symbol.
type Wildcard struct {
	ElementBase
	ASTNodeType string
}

func (w *Wildcard) String() string {
	return w.decorate(".")
}

// RuleRef is a call site of a rule.
type RuleRef struct {
	ElementBase
	Target   string
	Args     string
	IDAssign string
}

func (r *RuleRef) String() string {
	s := r.Target
	if r.Args != "" {
		s += r.Args
	}
	if r.IDAssign != "" {
		s = r.IDAssign + "=" + s
	}
	return r.decorate(s)
}

// BlockEnd is the sentinel closing every alternative of a subrule (or the
// child list of a tree).
type BlockEnd struct {
	ElementBase
	Block *Block
	Lock  DepthLock
}

func (e *BlockEnd) String() string {
	return "<end-of-block>"
}

// RuleEnd is the sentinel closing every alternative of a rule. It carries
// the rule's FOLLOW cache.
type RuleEnd struct {
	ElementBase
	Rule     *RuleBlock
	Cache    []*lookahead.Lookahead // FOLLOW by depth, 1…k
	Lock     DepthLock
	NoFollow bool // set while computing FIRST for a call site
}

func (e *RuleEnd) String() string {
	return "<end-of-rule>"
}

// IsSentinel is a predicate: does e close an alternative?
func IsSentinel(e Element) bool {
	switch e.(type) {
	case *BlockEnd, *RuleEnd:
		return true
	}
	return false
}

// --- Depth locks -----------------------------------------------------------

// DepthLock is a set of recursion guards, one per lookahead depth. The zero
// value has all depths unlocked.
type DepthLock struct {
	held *bitset.BitSet
}

// Locked is a predicate: is depth k locked?
func (l *DepthLock) Locked(k int) bool {
	return l.held.Member(k)
}

// Acquire locks depth k and returns a function releasing it. Clients should
// defer the release:
//
//    release := end.Lock.Acquire(k)
//    defer release()
//
func (l *DepthLock) Acquire(k int) (release func()) {
	if l.held == nil {
		l.held = bitset.New()
	}
	l.held.Add(k)
	return func() {
		l.held.Clear(k)
	}
}

// --- Helpers ---------------------------------------------------------------

func joinElements(elems []Element) string {
	var sb strings.Builder
	for i, e := range elems {
		if IsSentinel(e) {
			break
		}
		if i > 0 {
			sb.WriteByte(' ')
		}
		sb.WriteString(e.String())
	}
	return sb.String()
}
