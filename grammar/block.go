package grammar

import (
	"fmt"
	"strings"

	"github.com/emirpasic/gods/maps/linkedhashmap"
	"github.com/npillmayer/llk/lookahead"
)

// BlockKind discriminates the different kinds of blocks.
type BlockKind int

// Kinds of blocks. A tree behaves like a block with a single alternative
// (its child list) and an additional root element.
const (
	Subrule    BlockKind = iota // ( … ) or ( … )?
	OneOrMore                   // ( … )+
	ZeroOrMore                  // ( … )*
	SynPred                     // ( … )=>
	RuleBody                    // alternatives of a rule
	Tree                        // #( root children )
)

func (k BlockKind) String() string {
	switch k {
	case OneOrMore:
		return "(...)+"
	case ZeroOrMore:
		return "(...)*"
	case SynPred:
		return "(...)=>"
	case RuleBody:
		return "rule"
	case Tree:
		return "#(...)"
	}
	return "(...)"
}

// Block is a group of alternatives. Blocks are elements of their enclosing
// alternative, with the exception of rule bodies and syntactic predicates.
type Block struct {
	ElementBase
	Kind                  BlockKind
	Alternatives          []*Alternative
	End                   Element // *BlockEnd, or *RuleEnd for rule bodies
	Root                  Element // root of a tree; nil for other kinds
	Greedy                bool
	GreedySet             bool // greedy has been set explicitly
	GenerateAmbigWarnings bool
	WarnWhenFollowAmbig   bool
	InitAction            string
	HasASynPred           bool
	HasAnAction           bool
	ExitCache             []*lookahead.Lookahead // FOLLOW of loops by depth, 1…k
	ExitLookaheadDepth    int
	Rule                  *RuleBlock // owning rule, for rule bodies only
	Serial                int        // creation order within the grammar
}

func newBlock(g *Grammar, kind BlockKind) *Block {
	g.blocks++
	return &Block{
		Serial:                g.blocks,
		Kind:                  kind,
		Greedy:                true,
		GenerateAmbigWarnings: g.GenerateAmbigWarnings,
		WarnWhenFollowAmbig:   g.WarnWhenFollowAmbig,
	}
}

// IsLoop is a predicate: is b a (...)+ or (...)* block?
func (b *Block) IsLoop() bool {
	return b.Kind == OneOrMore || b.Kind == ZeroOrMore
}

// Len returns the number of alternatives.
func (b *Block) Len() int {
	return len(b.Alternatives)
}

// Alt returns alternative i, counting from 0.
func (b *Block) Alt(i int) *Alternative {
	return b.Alternatives[i]
}

// AddAlternative appends an alternative.
func (b *Block) AddAlternative(alt *Alternative) {
	alt.Block = b
	b.Alternatives = append(b.Alternatives, alt)
}

// prepareForAnalysis allocates the lookahead caches for depths 1…k.
func (b *Block) prepareForAnalysis(k int) {
	if b.IsLoop() {
		b.ExitCache = make([]*lookahead.Lookahead, k+1)
	}
	for _, alt := range b.Alternatives {
		alt.Cache = make([]*lookahead.Lookahead, k+1)
		alt.LookaheadDepth = 0
	}
}

func (b *Block) String() string {
	var sb strings.Builder
	if b.Kind == Tree {
		sb.WriteString("#(")
		if b.Root != nil {
			sb.WriteString(b.Root.String())
		}
		for _, alt := range b.Alternatives {
			sb.WriteByte(' ')
			sb.WriteString(alt.String())
		}
		sb.WriteByte(')')
		return b.decorate(sb.String())
	}
	sb.WriteByte('(')
	for i, alt := range b.Alternatives {
		if i > 0 {
			sb.WriteString(" | ")
		}
		sb.WriteString(alt.String())
	}
	sb.WriteByte(')')
	switch b.Kind {
	case OneOrMore:
		sb.WriteByte('+')
	case ZeroOrMore:
		sb.WriteByte('*')
	case SynPred:
		sb.WriteString("=>")
	}
	return b.decorate(sb.String())
}

// === Alternatives ==========================================================

// Alternative is a sequence of elements, closed by a sentinel.
type Alternative struct {
	elements       []Element
	Block          *Block // owning block
	SemPred        string // leading semantic predicate, if any
	SynPred        *Block // leading syntactic predicate, if any
	ExceptionSpec  *ExceptionSpec
	AutoGen        bool
	TreeSpecifier  string
	Cache          []*lookahead.Lookahead // lookahead by depth, 1…k
	LookaheadDepth int                    // resolved depth or llk.NondeterministicDepth
}

// NewAlternative creates an empty alternative.
func NewAlternative() *Alternative {
	return &Alternative{AutoGen: true}
}

// Add appends an element. Sentinels may be shared among the alternatives of
// a block and do not get a location.
func (a *Alternative) Add(e Element) {
	if t := a.Tail(); t != nil && IsSentinel(t) {
		panic(&ProtocolError{Pos: e.Attrs().Pos, Msg: "element added after end of alternative"})
	}
	if !IsSentinel(e) {
		e.Attrs().at = Cursor{Alt: a, Index: len(a.elements)}
	}
	a.elements = append(a.elements, e)
}

// Head returns the first element, or nil for an alternative under
// construction.
func (a *Alternative) Head() Element {
	if len(a.elements) == 0 {
		return nil
	}
	return a.elements[0]
}

// Tail returns the last element, or nil.
func (a *Alternative) Tail() Element {
	if len(a.elements) == 0 {
		return nil
	}
	return a.elements[len(a.elements)-1]
}

// At returns element i.
func (a *Alternative) At(i int) Element {
	return a.elements[i]
}

// Len returns the number of elements, including the sentinel.
func (a *Alternative) Len() int {
	return len(a.elements)
}

// Elements returns the element sequence. Clients must not modify it.
func (a *Alternative) Elements() []Element {
	return a.elements
}

// AtStart is a predicate: has no element been added yet?
func (a *Alternative) AtStart() bool {
	return len(a.elements) == 0
}

// IsEmpty is a predicate: does a consist of its sentinel only?
func (a *Alternative) IsEmpty() bool {
	return len(a.elements) > 0 && IsSentinel(a.elements[0])
}

func (a *Alternative) String() string {
	s := joinElements(a.elements)
	if a.SynPred != nil {
		s = strings.TrimSpace(a.SynPred.String() + " " + s)
	}
	if a.SemPred != "" {
		s = strings.TrimSpace(a.SemPred + "? " + s)
	}
	return s
}

// === Rule blocks ===========================================================

// RuleBlock is the body of a rule, together with the rule's attributes.
type RuleBlock struct {
	Body                *Block
	Name                string
	Access              string
	ArgAction           string
	ReturnAction        string
	ThrowsSpec          string
	IgnoreRule          string // lexer only
	TestLiterals        bool   // lexer only
	DefaultErrorHandler bool
	End                 *RuleEnd
	Cache               []*lookahead.Lookahead // FIRST by depth, 1…k
	Lock                DepthLock
	exceptionSpecs      *linkedhashmap.Map // label → *ExceptionSpec
	labeled             []Element
}

func newRuleBlock(g *Grammar, name string) *RuleBlock {
	rb := &RuleBlock{
		Name:                name,
		DefaultErrorHandler: g.DefaultErrorHandler,
		TestLiterals:        g.TestLiterals,
		exceptionSpecs:      linkedhashmap.New(),
	}
	rb.Body = newBlock(g, RuleBody)
	rb.Body.Rule = rb
	rb.Body.EnclosingRule = name
	rb.End = &RuleEnd{Rule: rb}
	rb.End.EnclosingRule = name
	rb.Body.End = rb.End
	return rb
}

// Alternatives returns the alternatives of the rule body.
func (rb *RuleBlock) Alternatives() []*Alternative {
	return rb.Body.Alternatives
}

// ExceptionSpec returns the exception spec for label ("" for the rule as a
// whole), or nil.
func (rb *RuleBlock) ExceptionSpec(label string) *ExceptionSpec {
	if spec, found := rb.exceptionSpecs.Get(label); found {
		return spec.(*ExceptionSpec)
	}
	return nil
}

// ExceptionSpecs returns all exception specs in order of definition.
func (rb *RuleBlock) ExceptionSpecs() []*ExceptionSpec {
	specs := make([]*ExceptionSpec, 0, rb.exceptionSpecs.Size())
	for _, v := range rb.exceptionSpecs.Values() {
		specs = append(specs, v.(*ExceptionSpec))
	}
	return specs
}

// LabeledElements returns all elements of the rule which carry a label.
func (rb *RuleBlock) LabeledElements() []Element {
	return rb.labeled
}

func (rb *RuleBlock) prepareForAnalysis(k int) {
	rb.Body.prepareForAnalysis(k)
	rb.Cache = make([]*lookahead.Lookahead, k+1)
	rb.End.Cache = make([]*lookahead.Lookahead, k+1)
}

func (rb *RuleBlock) String() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%s :", rb.Name)
	for i, alt := range rb.Body.Alternatives {
		if i > 0 {
			sb.WriteString("\n\t|")
		}
		if s := alt.String(); s != "" {
			sb.WriteByte(' ')
			sb.WriteString(s)
		}
	}
	sb.WriteString("\n\t;")
	return sb.String()
}

// --- Exception specs -------------------------------------------------------

// ExceptionSpec is a group of exception handlers, attached to a rule, to a
// labeled element of a rule, or to an alternative.
type ExceptionSpec struct {
	Label    string
	Handlers []ExceptionHandler
}

// ExceptionHandler is a single catch clause.
type ExceptionHandler struct {
	TypeAndName string
	Action      string
}

// === Invertibility =========================================================

// CanBeInverted is a predicate: may the subrule blk be prefixed with '~'?
// This requires every alternative to consist of exactly one simple element
// (a char literal, token reference, character range, token range, or a
// string literal outside of lexers) without predicates, exception specs or
// AST-generation suffix.
func CanBeInverted(blk *Block, forLexer bool) bool {
	if blk.IsLoop() || blk.Kind == SynPred || blk.Kind == Tree {
		return false
	}
	if len(blk.Alternatives) == 0 {
		return false
	}
	for _, alt := range blk.Alternatives {
		if alt.SynPred != nil || alt.SemPred != "" || alt.ExceptionSpec != nil {
			return false
		}
		head := alt.Head()
		switch head.(type) {
		case *CharLiteral, *TokenRef, *CharRange, *TokenRange:
		case *StringLiteral:
			if forLexer {
				return false
			}
		default:
			return false
		}
		if _, ok := head.Next().(*BlockEnd); !ok {
			return false
		}
		if head.Attrs().AutoGen != AutoGenNone {
			return false
		}
	}
	return true
}
