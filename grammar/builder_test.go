package grammar

import (
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/npillmayer/llk"
	"github.com/npillmayer/schuko/schukonf/testconfig"
	"github.com/npillmayer/schuko/tracing/gotestingadapter"
)

func tok(s string) Token {
	return MakeToken(s)
}

// refs adds references to the current alternative: token references for
// upper case names, rule references otherwise.
func refs(b *Builder, syms ...string) {
	for _, sym := range syms {
		if isTokenName(sym) {
			b.RefToken(tok(sym), Ref{})
		} else {
			b.RefRule(tok(sym), Ref{})
		}
	}
}

func rule(b *Builder, name string, alts ...[]string) {
	b.DefineRuleName(tok(name), "", true, "")
	for _, alt := range alts {
		b.BeginAlt(true)
		refs(b, alt...)
		b.EndAlt()
	}
	b.EndRule(name)
}

func messages(ds []Diagnostic) []string {
	var msgs []string
	for _, d := range ds {
		msgs = append(msgs, d.Message)
	}
	return msgs
}

func TestElementGraph(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "llk.grammar")
	defer teardown()
	//
	b := NewBuilder("G", Parser)
	rule(b, "a", []string{"A", "b"}, []string{})
	g, err := b.Grammar()
	if err != nil {
		t.Fatal(err)
	}
	rs := g.Rule("a")
	if rs == nil || !rs.Defined {
		t.Fatalf("expected rule a to be defined")
	}
	alts := rs.Block.Alternatives()
	if len(alts) != 2 {
		t.Fatalf("expected 2 alternatives, have %d", len(alts))
	}
	head := alts[0].Head()
	if tr, ok := head.(*TokenRef); !ok || tr.TokenType != llk.MinUserType {
		t.Errorf("expected first element to be token A, is %v", head)
	}
	rr, ok := head.Next().(*RuleRef)
	if !ok {
		t.Fatalf("expected a rule reference to follow A, is %v", head.Next())
	}
	if rr.Target != "b" || rr.EnclosingRule != "a" {
		t.Errorf("expected reference of b from a, is %v", rr)
	}
	if rr.Next() != rs.Block.End {
		t.Errorf("expected alternative to end with the rule's end node")
	}
	if !alts[1].IsEmpty() || !IsSentinel(alts[1].Head()) {
		t.Errorf("expected second alternative to be empty")
	}
	if undef := g.Rule("b"); undef == nil || undef.Defined || len(undef.References()) != 1 {
		t.Errorf("expected b to be referenced once and undefined, is %v", undef)
	}
}

func TestRuleRedefinition(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "llk.grammar")
	defer teardown()
	//
	b := NewBuilder("G", Parser)
	rule(b, "a", []string{"A", "b"})
	rule(b, "a", []string{"b", "B"}, []string{"C"})
	rule(b, "b", []string{"D"})
	g, err := b.Grammar()
	if !errors.Is(err, ErrGrammarFailed) {
		t.Fatalf("expected grammar to fail, err = %v", err)
	}
	if diff := cmp.Diff([]string{"redefinition of rule a"}, messages(g.Diagnostics.Errors())); diff != "" {
		t.Errorf("errors mismatch (-want +got):\n%s", diff)
	}
	if n := len(g.Rule("a").Block.Alternatives()); n != 1 {
		t.Errorf("expected first definition to be kept, has %d alternatives", n)
	}
	// only the call site in the first definition of a counts for FOLLOW(b)
	calls := g.Rule("b").References()
	if len(calls) != 1 || calls[0] != g.Rule("a").Block.Alternatives()[0].At(1) {
		t.Errorf("expected a single call site of b, have %v", calls)
	}
}

func TestLexicalRuleNames(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "llk.grammar")
	defer teardown()
	//
	b := NewBuilder("P", Parser)
	rule(b, "Expr", []string{"A"})
	g, _ := b.Grammar()
	if diff := cmp.Diff([]string{"Lexical rule Expr defined outside of lexer"},
		messages(g.Diagnostics.Errors())); diff != "" {
		t.Errorf("errors mismatch (-want +got):\n%s", diff)
	}
	if g.Rule("expr") == nil {
		t.Errorf("expected rule to be defined as expr")
	}
	//
	b = NewBuilder("L", Lexer)
	rule(b, "ident")
	g, _ = b.Grammar()
	if len(g.Diagnostics.Errors()) != 1 || g.Rule("Ident") == nil {
		t.Errorf("expected rule to be defined as Ident with an error, have:\n%s", g.Diagnostics)
	}
	if ts := g.Tokens.TokenSymbol("Ident"); ts == nil || ts.Type != llk.MinUserType {
		t.Errorf("expected lexer rule to define a token, is %v", ts)
	}
}

func TestTokenTypesAreStable(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "llk.grammar")
	defer teardown()
	//
	b := NewBuilder("G", Parser)
	b.DefineRuleName(tok("a"), "", true, "")
	b.BeginAlt(true)
	refs(b, "A")
	b.RefStringLiteral(tok(`"x"`), Ref{})
	refs(b, "A")
	b.RefStringLiteral(tok(`"x"`), Ref{})
	b.EndAlt()
	b.EndRule("a")
	g, err := b.Grammar()
	if err != nil {
		t.Fatal(err)
	}
	var types []int
	for _, e := range g.Rule("a").Block.Alternatives()[0].Elements() {
		switch x := e.(type) {
		case *TokenRef:
			types = append(types, x.TokenType)
		case *StringLiteral:
			types = append(types, x.TokenType)
		}
	}
	if diff := cmp.Diff([]int{4, 5, 4, 5}, types); diff != "" {
		t.Errorf("token types mismatch (-want +got):\n%s", diff)
	}
	if g.MaxTokenType() != 5 {
		t.Errorf("expected max token type 5, is %d", g.MaxTokenType())
	}
	voc := g.Tokens.Vocabulary()
	if diff := cmp.Diff([]string{"", "EOF", "", "NULL_TREE_LOOKAHEAD", "A", `"x"`}, voc); diff != "" {
		t.Errorf("vocabulary mismatch (-want +got):\n%s", diff)
	}
	if s := g.Tokens.TokenString(17); s != "<17>" {
		t.Errorf("expected unknown token type to print as <17>, is %s", s)
	}
}

func TestTokensSection(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "llk.grammar")
	defer teardown()
	//
	b := NewBuilder("G", Parser)
	tk := func(s string) *Token {
		x := tok(s)
		return &x
	}
	b.DefineToken(tk("A"), nil)
	b.DefineToken(tk("A"), nil)
	b.DefineToken(tk("PLUS"), tk(`"+"`))
	b.DefineToken(nil, tk(`"-"`))
	b.DefineToken(tk("MINUS"), tk(`"-"`))
	b.DefineToken(tk("A"), tk(`"a"`))
	b.RefTokensSpecElementOption(tok("PLUS"), tok("AST"), tok("PlusNode"))
	g, err := b.Grammar()
	if err != nil {
		t.Fatal(err)
	}
	tm := g.Tokens
	if diff := cmp.Diff([]string{"Redefinition of token in tokens {...}: A"},
		messages(g.Diagnostics.Warnings())); diff != "" {
		t.Errorf("warnings mismatch (-want +got):\n%s", diff)
	}
	plus := tm.TokenSymbol(`"+"`)
	if plus == nil || plus.Type != 5 || plus.Label != "PLUS" || tm.TokenSymbol("PLUS") != plus {
		t.Errorf("expected PLUS to label literal \"+\", is %v", plus)
	}
	if plus.ASTNodeType != "PlusNode" {
		t.Errorf("expected AST node type to be set, is %q", plus.ASTNodeType)
	}
	minus := tm.TokenSymbol("MINUS")
	if minus == nil || minus.Type != 6 || minus.ID() != `"-"` {
		t.Errorf("expected MINUS to label existing literal \"-\", is %v", minus)
	}
	a := tm.TokenSymbol(`"a"`)
	if a == nil || a.Type != 4 || tm.TokenSymbol("A") != a {
		t.Errorf("expected literal \"a\" to take over token type of A, is %v", a)
	}
}

func TestInvertedRange(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "llk.grammar")
	defer teardown()
	//
	b := NewBuilder("L", Lexer)
	b.DefineRuleName(tok("R"), "", true, "")
	b.BeginAlt(true)
	b.RefCharRange(tok("'a'"), tok("'z'"), Ref{Inverted: true})
	b.EndAlt()
	b.EndRule("R")
	g, _ := b.Grammar()
	if diff := cmp.Diff([]string{"'~' cannot be applied to a range, use ~( 'a'..'z' )"},
		messages(g.Diagnostics.Errors())); diff != "" {
		t.Errorf("errors mismatch (-want +got):\n%s", diff)
	}
	//
	b = NewBuilder("P", Parser)
	b.DefineRuleName(tok("r"), "", true, "")
	b.BeginAlt(true)
	refs(b, "A", "B")
	b.RefTokenRange(tok("A"), tok("B"), Ref{Inverted: true})
	b.EndAlt()
	b.EndRule("r")
	g, _ = b.Grammar()
	if diff := cmp.Diff([]string{"'~' cannot be applied to a range, use ~( A..B )"},
		messages(g.Diagnostics.Errors())); diff != "" {
		t.Errorf("errors mismatch (-want +got):\n%s", diff)
	}
}

func TestMalformedRange(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "llk.grammar")
	defer teardown()
	//
	b := NewBuilder("L", Lexer)
	b.DefineRuleName(tok("R"), "", true, "")
	b.BeginAlt(true)
	b.RefCharRange(tok("'z'"), tok("'a'"), Ref{})
	b.RefCharRange(tok("'a'"), tok("'z'"), Ref{})
	b.EndAlt()
	b.EndRule("R")
	g, _ := b.Grammar()
	if diff := cmp.Diff([]string{"Malformed range."}, messages(g.Diagnostics.Errors())); diff != "" {
		t.Errorf("errors mismatch (-want +got):\n%s", diff)
	}
	alt := g.Rule("R").Block.Alternatives()[0]
	if cr, ok := alt.Head().(*CharRange); !ok || cr.Begin != 'a' || cr.End != 'z' {
		t.Errorf("expected only the valid range to be added, head is %v", alt.Head())
	}
	//
	b = NewBuilder("P", Parser)
	b.DefineRuleName(tok("r"), "", true, "")
	b.BeginAlt(true)
	refs(b, "A", "B")
	b.RefTokenRange(tok("B"), tok("A"), Ref{})
	b.EndAlt()
	b.EndRule("r")
	g, _ = b.Grammar()
	if diff := cmp.Diff([]string{"Malformed range."}, messages(g.Diagnostics.Errors())); diff != "" {
		t.Errorf("errors mismatch (-want +got):\n%s", diff)
	}
}

func TestDuplicateLabel(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "llk.grammar")
	defer teardown()
	//
	b := NewBuilder("G", Parser)
	label := tok("x")
	b.DefineRuleName(tok("r"), "", true, "")
	b.BeginAlt(true)
	b.RefToken(tok("A"), Ref{Label: &label})
	b.RefToken(tok("B"), Ref{Label: &label})
	b.EndAlt()
	b.EndRule("r")
	g, _ := b.Grammar()
	if diff := cmp.Diff([]string{"Label 'x' has already been defined"},
		messages(g.Diagnostics.Errors())); diff != "" {
		t.Errorf("errors mismatch (-want +got):\n%s", diff)
	}
	if n := len(g.Rule("r").Block.LabeledElements()); n != 1 {
		t.Errorf("expected 1 labeled element, have %d", n)
	}
}

func TestExceptionSpecs(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "llk.grammar")
	defer teardown()
	//
	b := NewBuilder("G", Parser)
	b.DefineRuleName(tok("r"), "", true, "")
	b.BeginAlt(true)
	refs(b, "A")
	b.EndAlt()
	b.BeginExceptionGroup()
	for i := 0; i < 2; i++ {
		b.BeginExceptionSpec(nil)
		b.RefExceptionHandler(tok("RecognitionException ex"), tok("{ recover(); }"))
		b.EndExceptionSpec()
	}
	b.EndExceptionGroup()
	b.EndRule("r")
	g, _ := b.Grammar()
	if diff := cmp.Diff([]string{"Rule 'r' already has an exception handler"},
		messages(g.Diagnostics.Errors())); diff != "" {
		t.Errorf("errors mismatch (-want +got):\n%s", diff)
	}
	specs := g.Rule("r").Block.ExceptionSpecs()
	if len(specs) != 1 || len(specs[0].Handlers) != 1 {
		t.Fatalf("expected a single exception spec with one handler, have %v", specs)
	}
}

func TestProtocolError(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "llk.grammar")
	defer teardown()
	//
	defer func() {
		r := recover()
		if r == nil {
			t.Fatalf("expected builder to panic")
		}
		perr, ok := r.(*ProtocolError)
		if !ok {
			t.Fatalf("expected a protocol error, got %v", r)
		}
		if !strings.Contains(perr.Error(), "exception handler processing internal error") {
			t.Errorf("unexpected protocol error: %v", perr)
		}
	}()
	b := NewBuilder("G", Parser)
	b.DefineRuleName(tok("r"), "", true, "")
	b.RefExceptionHandler(tok("RecognitionException ex"), tok("{}"))
}

func TestSynPredUntracksRuleRefs(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "llk.grammar")
	defer teardown()
	//
	// a : (b)=> b | C ;  b : D ;
	b := NewBuilder("G", Parser)
	b.DefineRuleName(tok("a"), "", true, "")
	b.BeginAlt(true)
	b.BeginSubRule(nil, tok("("), false)
	b.BeginAlt(true)
	refs(b, "b")
	b.EndAlt()
	b.SynPred()
	b.EndSubRule()
	refs(b, "b")
	b.EndAlt()
	b.BeginAlt(true)
	refs(b, "C")
	b.EndAlt()
	b.EndRule("a")
	rule(b, "b", []string{"D"})
	g, err := b.Grammar()
	if err != nil {
		t.Fatal(err)
	}
	if !g.HasSyntacticPredicate {
		t.Errorf("expected grammar to be marked as having a syntactic predicate")
	}
	alt := g.Rule("a").Block.Alternatives()[0]
	if alt.SynPred == nil || alt.SynPred.Kind != SynPred {
		t.Fatalf("expected predicate to be attached to alt 1")
	}
	if _, ok := alt.Head().(*RuleRef); !ok {
		t.Errorf("expected predicate not to be an element of alt 1, head is %v", alt.Head())
	}
	calls := g.Rule("b").References()
	if len(calls) != 1 || calls[0] != alt.Head() {
		t.Errorf("expected only the reference outside the predicate to be tracked, have %d", len(calls))
	}
}

func TestTrees(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "llk.grammar")
	defer teardown()
	//
	b := NewBuilder("P", Parser)
	b.DefineRuleName(tok("r"), "", true, "")
	b.BeginAlt(true)
	if err := b.BeginTree(tok("#(")); err == nil {
		t.Errorf("expected tree in parser to be rejected")
	}
	refs(b, "A")
	b.EndAlt()
	b.EndRule("r")
	g, _ := b.Grammar()
	if diff := cmp.Diff([]string{"Trees only allowed in TreeParser"},
		messages(g.Diagnostics.Errors())); diff != "" {
		t.Errorf("errors mismatch (-want +got):\n%s", diff)
	}
	//
	b = NewBuilder("T", TreeWalker)
	b.DefineRuleName(tok("r"), "", true, "")
	b.BeginAlt(true)
	if err := b.BeginTree(tok("#(")); err != nil {
		t.Fatal(err)
	}
	refs(b, "PLUS")
	b.BeginChildList()
	refs(b, "A", "B")
	b.EndChildList()
	b.EndTree()
	b.EndAlt()
	b.EndRule("r")
	g, err := b.Grammar()
	if err != nil {
		t.Fatal(err)
	}
	tree, ok := g.Rule("r").Block.Alternatives()[0].Head().(*Block)
	if !ok || tree.Kind != Tree {
		t.Fatalf("expected alternative to start with a tree")
	}
	if root, ok := tree.Root.(*TokenRef); !ok || root.Name != "PLUS" {
		t.Errorf("expected PLUS to be the root, is %v", tree.Root)
	}
	if n := tree.Alt(0).Len(); n != 3 {
		t.Errorf("expected 2 children and an end node, have %d elements", n)
	}
	if _, ok := tree.Next().(*RuleEnd); !ok {
		t.Errorf("expected tree to be followed by the rule's end, is %v", tree.Next())
	}
}

func TestInversion(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "llk.grammar")
	defer teardown()
	//
	b := NewBuilder("G", Parser)
	b.DefineRuleName(tok("r"), "", true, "")
	b.BeginAlt(true)
	b.BeginSubRule(nil, tok("("), true)
	b.BeginAlt(true)
	refs(b, "A")
	b.EndAlt()
	b.BeginAlt(true)
	refs(b, "B", "C")
	b.EndAlt()
	b.EndSubRule()
	b.BeginSubRule(nil, tok("("), true)
	b.BeginAlt(true)
	refs(b, "A")
	b.EndAlt()
	b.ZeroOrMoreSubRule()
	b.EndSubRule()
	b.BeginSubRule(nil, tok("("), true)
	b.BeginAlt(true)
	refs(b, "A")
	b.EndAlt()
	b.BeginAlt(true)
	b.RefStringLiteral(tok(`"b"`), Ref{})
	b.EndAlt()
	b.EndSubRule()
	b.EndAlt()
	b.EndRule("r")
	g, _ := b.Grammar()
	errs := messages(g.Diagnostics.Errors())
	if len(errs) != 2 {
		t.Fatalf("expected 2 errors, have:\n%s", g.Diagnostics)
	}
	if !strings.HasPrefix(errs[0], "This subrule cannot be inverted.") {
		t.Errorf("unexpected error: %s", errs[0])
	}
	if errs[1] != "'~' cannot be applied to (...)* subrule" {
		t.Errorf("unexpected error: %s", errs[1])
	}
	last := g.Rule("r").Block.Alternatives()[0].At(2).(*Block)
	if !CanBeInverted(last, false) || CanBeInverted(last, true) {
		t.Errorf("expected string literals to be invertible in parsers only")
	}
}

func TestIgnoreRule(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "llk.grammar")
	defer teardown()
	//
	b := NewBuilder("L", Lexer)
	b.DefineRuleName(tok("R"), "", true, "")
	b.SetRuleOption(tok("ignore"), tok("WS"))
	b.BeginAlt(true)
	b.RefCharLiteral(tok("'a'"), Ref{})
	b.RefCharLiteral(tok("'b'"), Ref{LastInRule: true})
	b.EndAlt()
	b.EndRule("R")
	rule(b, "WS")
	g, err := b.Grammar()
	if err != nil {
		t.Fatal(err)
	}
	alt := g.Rule("R").Block.Alternatives()[0]
	if alt.Len() != 4 {
		t.Fatalf("expected 'a' (WS)? 'b' and an end node, have %s", alt)
	}
	opt, ok := alt.At(1).(*Block)
	if !ok || opt.Len() != 2 || !opt.Alt(1).IsEmpty() {
		t.Fatalf("expected an optional subrule after 'a', is %v", alt.At(1))
	}
	if rr, ok := opt.Alt(0).Head().(*RuleRef); !ok || rr.Target != "WS" {
		t.Errorf("expected optional subrule to call WS, is %v", opt.Alt(0).Head())
	}
	if n := len(g.Rule("WS").References()); n != 1 {
		t.Errorf("expected WS to be referenced once, is %d", n)
	}
}

func TestGrammarOptions(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "llk.grammar")
	defer teardown()
	//
	b := NewBuilder("G", Parser)
	b.ApplyOptions(testconfig.Conf{
		"k":                     3,
		"analyzerDebug":         true,
		"generateAmbigWarnings": false,
	})
	g, err := b.Grammar()
	if err != nil {
		t.Fatal(err)
	}
	if g.MaxK != 3 || !g.AnalyzerDebug || g.GenerateAmbigWarnings {
		t.Errorf("options not applied: k=%d analyzerDebug=%v generateAmbigWarnings=%v",
			g.MaxK, g.AnalyzerDebug, g.GenerateAmbigWarnings)
	}
	//
	b = NewBuilder("G", Parser)
	b.SetGrammarOption(tok("k"), tok("0"))
	b.SetGrammarOption(tok("caseSensitive"), tok("false"))
	b.SetGrammarOption(tok("colour"), tok("blue"))
	g, _ = b.Grammar()
	if diff := cmp.Diff([]string{
		`k must be an integer > 0, is "0"`,
		"caseSensitive option only valid for lexer",
	}, messages(g.Diagnostics.Errors())); diff != "" {
		t.Errorf("errors mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"Invalid option: colour"}, messages(g.Diagnostics.Warnings())); diff != "" {
		t.Errorf("warnings mismatch (-want +got):\n%s", diff)
	}
	if g.MaxK != 1 {
		t.Errorf("expected k to keep its default, is %d", g.MaxK)
	}
}

func TestFilterRule(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "llk.grammar")
	defer teardown()
	//
	b := NewBuilder("L", Lexer)
	b.SetGrammarOption(tok("filter"), tok("IGNORE"))
	b.DefineRuleName(tok("IGNORE"), "public", true, "")
	b.BeginAlt(true)
	b.RefCharLiteral(tok("'x'"), Ref{})
	b.EndAlt()
	b.EndRule("IGNORE")
	g, _ := b.Grammar()
	if diff := cmp.Diff([]string{"Filter rule IGNORE must be protected"},
		messages(g.Diagnostics.Errors())); diff != "" {
		t.Errorf("errors mismatch (-want +got):\n%s", diff)
	}
}

func TestNextTokenRule(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "llk.grammar")
	defer teardown()
	//
	b := NewBuilder("L", Lexer)
	rule(b, "A")
	b.DefineRuleName(tok("B"), "protected", true, "")
	b.BeginAlt(true)
	b.EndAlt()
	b.EndRule("B")
	b.DefineRuleName(tok("C"), "", true, "")
	b.BeginAlt(true)
	b.RefSemPred(tok("p"))
	b.RefCharLiteral(tok("'c'"), Ref{})
	b.EndAlt()
	b.EndRule("C")
	g, err := b.Grammar()
	if err != nil {
		t.Fatal(err)
	}
	next := NextTokenRule(g)
	if NextTokenRule(g) != next {
		t.Errorf("expected nextToken rule to be created once")
	}
	var targets []string
	for _, alt := range next.Alternatives() {
		targets = append(targets, alt.Head().(*RuleRef).Target)
	}
	if diff := cmp.Diff([]string{"A", "C"}, targets); diff != "" {
		t.Errorf("nextToken alternatives mismatch (-want +got):\n%s", diff)
	}
	if pred := next.Alternatives()[1].SemPred; pred != "p" {
		t.Errorf("expected predicate of C to be hoisted, is %q", pred)
	}
	if rs := g.Rule(NextTokenRuleName); rs == nil || rs.Block != next || rs.Access != "private" {
		t.Errorf("expected nextToken to be registered as a private rule")
	}
	if n := len(g.Rule("A").References()); n != 1 {
		t.Errorf("expected A to be referenced by nextToken, is %d", n)
	}
}

type collector struct {
	diags []Diagnostic
}

func (c *collector) Report(d Diagnostic) {
	c.diags = append(c.diags, d)
}

func TestDiagnostics(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "llk.grammar")
	defer teardown()
	//
	c := &collector{}
	b := NewBuilder("G", Parser, WithFilename("g.ebnf"), WithReporter(c))
	g, _ := b.Grammar()
	pos := tok("x").At(3, 7).Pos
	g.Warning(pos, "something odd: %s", "x")
	g.Warning(pos, "something odd: %s", "x")
	g.ReportAmbiguity(pos, &Ambiguity{Rule: "r", Alt1: 1, Alt2: 2}, "nondeterminism")
	if g.Failed() {
		t.Errorf("warnings must not fail a grammar")
	}
	if g.Diagnostics.Len() != 2 || len(c.diags) != 2 {
		t.Fatalf("expected duplicates to be dropped, have:\n%s", g.Diagnostics)
	}
	if s := c.diags[0].String(); s != "g.ebnf:3:7: warning: something odd: x" {
		t.Errorf("unexpected diagnostic: %s", s)
	}
	if len(g.Diagnostics.Ambiguities()) != 1 {
		t.Errorf("expected 1 ambiguity")
	}
	g.Error(pos, "broken")
	if !g.Failed() || len(g.Diagnostics.Errors()) != 1 {
		t.Errorf("expected error to fail the grammar")
	}
}

func TestConsoleReporterAndDump(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "llk.grammar")
	defer teardown()
	//
	b := NewBuilder("G", Parser, WithReporter(ConsoleReporter{}))
	rule(b, "a", []string{"A", "b"})
	g, _ := b.Grammar()
	g.Warning(tok("a").At(1, 1).Pos, "printed to the console")
	var sb strings.Builder
	g.Dump(&sb)
	out := sb.String()
	for _, want := range []string{"parser grammar G;", "a :", "// b is undefined"} {
		if !strings.Contains(out, want) {
			t.Errorf("expected dump to contain %q, is\n%s", want, out)
		}
	}
}
