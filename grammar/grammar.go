package grammar

import (
	"fmt"
	"io"
	"text/scanner"

	"github.com/npillmayer/llk"
	"github.com/npillmayer/llk/bitset"
)

// Kind is the category of a grammar.
type Kind int

// Kinds of grammars.
const (
	Parser Kind = iota
	Lexer
	TreeWalker
)

func (k Kind) String() string {
	switch k {
	case Lexer:
		return "lexer"
	case TreeWalker:
		return "tree walker"
	}
	return "parser"
}

// Grammar is a set of rules, together with the grammar's symbol tables and
// options.
type Grammar struct {
	Name                  string
	Filename              string
	Kind                  Kind
	MaxK                  int            // maximum lookahead depth
	Tokens                *TokenManager  // token vocabulary
	CharVocabulary        *bitset.BitSet // lexers only
	AnalyzerDebug         bool
	DefaultErrorHandler   bool
	BuildAST              bool
	GenerateAmbigWarnings bool // default for new blocks
	WarnWhenFollowAmbig   bool // default for new blocks
	TestLiterals          bool // lexers only
	CaseSensitive         bool // lexers only
	CaseSensitiveLiterals bool // lexers only
	Filter                bool // lexers only
	FilterRule            string
	HasSyntacticPredicate bool
	Diagnostics           *Diagnostics
	rules                 *SymbolTable
	reporter              Reporter
	failed                bool
	nextToken             *RuleBlock
	blocks                int // blocks created so far
}

// NewGrammar creates an empty grammar with default options. If tm is nil,
// the grammar gets a token manager of its own.
func NewGrammar(name string, kind Kind, tm *TokenManager) *Grammar {
	g := &Grammar{
		Name:                  name,
		Kind:                  kind,
		MaxK:                  1,
		Tokens:                tm,
		DefaultErrorHandler:   true,
		GenerateAmbigWarnings: true,
		WarnWhenFollowAmbig:   true,
		TestLiterals:          true,
		CaseSensitive:         true,
		CaseSensitiveLiterals: true,
		Diagnostics:           &Diagnostics{},
		rules:                 NewSymbolTable(),
	}
	if g.Tokens == nil {
		g.Tokens = NewTokenManager(name)
	}
	if kind == Lexer {
		g.CharVocabulary = bitset.Range(0, 127)
	}
	return g
}

// IsLexer is a predicate: is g a lexer grammar?
func (g *Grammar) IsLexer() bool {
	return g.Kind == Lexer
}

// Failed is a predicate: have errors been reported for g?
func (g *Grammar) Failed() bool {
	return g.failed
}

// SetReporter installs a reporter receiving every new diagnostic in
// addition to g.Diagnostics.
func (g *Grammar) SetReporter(r Reporter) {
	g.reporter = r
}

// --- Rules -----------------------------------------------------------------

// Rule returns the rule symbol for name, or nil.
func (g *Grammar) Rule(name string) *RuleSymbol {
	if sym := g.rules.Resolve(name); sym != nil {
		return sym.(*RuleSymbol)
	}
	return nil
}

// Rules returns all rule symbols in order of first appearance, including
// rules which have been referenced but not defined.
func (g *Grammar) Rules() []*RuleSymbol {
	rules := make([]*RuleSymbol, 0, g.rules.Size())
	g.rules.Each(func(_ string, sym Symbol) {
		rules = append(rules, sym.(*RuleSymbol))
	})
	return rules
}

// EachRule calls f for every defined rule.
func (g *Grammar) EachRule(f func(rs *RuleSymbol)) {
	for _, rs := range g.Rules() {
		if rs.Defined {
			f(rs)
		}
	}
}

func (g *Grammar) resolveOrDefineRule(name string) *RuleSymbol {
	sym, _ := g.rules.ResolveOrDefine(name, func(id string) Symbol {
		return NewRuleSymbol(id)
	})
	return sym.(*RuleSymbol)
}

// MaxTokenType returns the largest token type of the vocabulary.
func (g *Grammar) MaxTokenType() int {
	return g.Tokens.MaxTokenType()
}

// SymbolFormatter returns a formatter for lookahead sets of g: characters
// for lexers, token names otherwise.
func (g *Grammar) SymbolFormatter() llk.SymbolFormatter {
	if g.IsLexer() {
		return llk.CharFormatter
	}
	return g.Tokens.TokenString
}

// === Diagnostics ===========================================================

// Error reports a grammar definition error and marks g as failed.
func (g *Grammar) Error(pos scanner.Position, format string, args ...interface{}) {
	g.failed = true
	g.report(Diagnostic{Severity: SevError, Pos: pos, Message: fmt.Sprintf(format, args...)})
}

// Warning reports a non-fatal problem.
func (g *Grammar) Warning(pos scanner.Position, format string, args ...interface{}) {
	g.report(Diagnostic{Severity: SevWarning, Pos: pos, Message: fmt.Sprintf(format, args...)})
}

// ReportAmbiguity reports a nondeterminism warning.
func (g *Grammar) ReportAmbiguity(pos scanner.Position, amb *Ambiguity, msg string) {
	g.report(Diagnostic{Severity: SevWarning, Pos: pos, Message: msg, Ambiguity: amb})
}

// Panic signals a violation of the builder or analyzer protocol.
func (g *Grammar) Panic(pos scanner.Position, format string, args ...interface{}) {
	if pos.Filename == "" {
		pos.Filename = g.Filename
	}
	err := &ProtocolError{Pos: pos, Msg: fmt.Sprintf(format, args...)}
	tracer().Errorf("%s", err)
	panic(err)
}

func (g *Grammar) report(d Diagnostic) {
	if d.Pos.Filename == "" {
		d.Pos.Filename = g.Filename
	}
	if !g.Diagnostics.add(d) {
		return
	}
	if d.Severity == SevError {
		tracer().Errorf("%s", d)
	} else {
		tracer().Infof("%s", d)
	}
	if g.reporter != nil {
		g.reporter.Report(d)
	}
}

// === Dump ==================================================================

// Dump prints the rules of g in grammar notation. Undefined rules are
// listed as comments.
func (g *Grammar) Dump(w io.Writer) {
	fmt.Fprintf(w, "%s grammar %s;\n", g.Kind, g.Name)
	if g.MaxK != 1 {
		fmt.Fprintf(w, "options { k = %d; }\n", g.MaxK)
	}
	for _, rs := range g.Rules() {
		if !rs.Defined || rs.Block == nil {
			fmt.Fprintf(w, "// %s is undefined\n", rs.ID())
			continue
		}
		fmt.Fprintln(w)
		fmt.Fprintln(w, rs.Block.String())
	}
}

// === nextToken =============================================================

// NextTokenRuleName is the name of the synthetic rule of lexers.
const NextTokenRuleName = "nextToken"

// NextTokenRule returns a synthetic rule with one alternative per public
// lexer rule. It is the decision a lexer makes for every token. The rule is
// created once and registered with g; subsequent calls return it.
func NextTokenRule(g *Grammar) *RuleBlock {
	if g.nextToken != nil {
		return g.nextToken
	}
	if !g.IsLexer() {
		g.Panic(scanner.Position{}, "nextToken rule requested for %s grammar", g.Kind)
	}
	rb := newRuleBlock(g, NextTokenRuleName)
	rb.Access = "private"
	for _, rs := range g.Rules() {
		if !rs.Defined {
			g.Error(scanner.Position{}, "Lexer rule %s is not defined", rs.ID())
			continue
		}
		if rs.Access != "public" || rs.Block == nil {
			continue
		}
		alt := NewAlternative()
		targetAlts := rs.Block.Alternatives()
		if len(targetAlts) == 1 && targetAlts[0].SemPred != "" {
			alt.SemPred = targetAlts[0].SemPred
		}
		rr := &RuleRef{Target: rs.ID()}
		rr.Label = "theRetToken"
		rr.EnclosingRule = NextTokenRuleName
		rr.Pos = rs.Block.Body.Pos
		alt.Add(rr)
		alt.Add(rb.End)
		rb.Body.AddAlternative(alt)
		rs.AddReference(rr)
	}
	rb.prepareForAnalysis(g.MaxK)
	sym := NewRuleSymbol(NextTokenRuleName)
	sym.Defined = true
	sym.Block = rb
	sym.Access = "private"
	g.rules.Define(sym)
	g.nextToken = rb
	return rb
}
