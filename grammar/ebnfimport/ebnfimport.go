/*
Package ebnfimport builds grammars from EBNF productions as used in the Go
language specification (see golang.org/x/exp/ebnf).

Go's EBNF distinguishes productions by the case of their names: names
starting with an upper case letter are syntactic productions, all others
are lexical productions. This maps onto grammars as follows:

For parser grammars (and tree walkers), every syntactic production becomes
a rule, with the first letter of its name lowered ("Expr" → "expr").
References to lexical productions become token references, with the first
letter of the name raised ("ident" → "Ident"). Strings are string literals,
ranges are token ranges. Lexical productions are not imported.

For lexers, every lexical production becomes a lexer rule ("ident" →
"Ident"). Strings of length 1 are character literals, longer strings are
string literals, ranges are character ranges. Productions referenced by
other productions are imported as protected rules, i.e. they do not
contribute to the lexer's nextToken decision. Syntactic productions are
not imported.

Groups, options and repetitions become subrules, (...)? and (...)*.

    src := `Expr = Term { "+" Term } .
            Term = number | "(" Expr ")" .`
    g, err := ebnfimport.Import("expr.ebnf", strings.NewReader(src), grammar.Parser)

___________________________________________________________________________

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2017–2021 Norbert Pillmayer <norbert@pillmayer.com>

*/
package ebnfimport

import (
	"fmt"
	"io"
	"sort"
	"strconv"
	"text/scanner"
	"unicode"
	"unicode/utf8"

	"github.com/npillmayer/llk/grammar"
	"github.com/npillmayer/schuko/tracing"
	"golang.org/x/exp/ebnf"
)

// tracer traces with key 'llk.grammar'.
func tracer() tracing.Trace {
	return tracing.Select("llk.grammar")
}

// Import parses EBNF productions from src and builds a grammar of the given
// kind. filename is used for positions in diagnostics. If the grammar
// could not be parsed, the grammar is nil. If the grammar has errors, it
// is returned together with an error.
func Import(filename string, src io.Reader, kind grammar.Kind, opts ...grammar.Option) (*grammar.Grammar, error) {
	prods, err := ebnf.Parse(filename, src)
	if err != nil {
		return nil, fmt.Errorf("cannot import %s: %w", filename, err)
	}
	name := filename
	if name == "" {
		name = "ebnf"
	}
	opts = append([]grammar.Option{grammar.WithFilename(filename)}, opts...)
	imp := &importer{
		b:       grammar.NewBuilder(name, kind, opts...),
		lexical: kind == grammar.Lexer,
	}
	imp.productions(prods)
	return imp.b.Grammar()
}

type importer struct {
	b       *grammar.Builder
	lexical bool // building a lexer
}

// productions imports all productions of the target kind, in order of
// appearance in the source.
func (imp *importer) productions(prods ebnf.Grammar) {
	var list []*ebnf.Production
	for _, p := range prods {
		if isLexical(p.Name.String) == imp.lexical {
			list = append(list, p)
		}
	}
	sort.Slice(list, func(i, j int) bool {
		return list[i].Pos().Offset < list[j].Pos().Offset
	})
	helpers := make(map[string]bool)
	if imp.lexical {
		for _, p := range list {
			collectNames(p.Expr, helpers)
		}
	}
	for _, p := range list {
		access := "public"
		if helpers[p.Name.String] {
			access = "protected"
		}
		imp.production(p, access)
	}
}

func (imp *importer) production(p *ebnf.Production, access string) {
	name := imp.ruleName(p.Name.String)
	tracer().Debugf("import production %s as rule %s", p.Name.String, name)
	imp.b.DefineRuleName(grammar.Token{Text: name, Pos: p.Pos()}, access, true, "")
	if p.Expr == nil {
		imp.b.BeginAlt(true)
		imp.b.EndAlt()
	} else {
		imp.alternatives(p.Expr)
	}
	imp.b.EndRule(name)
}

// alternatives opens one alternative of the current block per branch of x.
func (imp *importer) alternatives(x ebnf.Expression) {
	alts, ok := x.(ebnf.Alternative)
	if !ok {
		alts = ebnf.Alternative{x}
	}
	for _, alt := range alts {
		imp.b.BeginAlt(true)
		imp.sequence(alt)
		imp.b.EndAlt()
	}
}

func (imp *importer) sequence(x ebnf.Expression) {
	seq, ok := x.(ebnf.Sequence)
	if !ok {
		seq = ebnf.Sequence{x}
	}
	for _, term := range seq {
		imp.term(term)
	}
}

func (imp *importer) term(x ebnf.Expression) {
	switch t := x.(type) {
	case *ebnf.Name:
		imp.name(t)
	case *ebnf.Token:
		imp.literal(t)
	case *ebnf.Range:
		imp.rangeOf(t)
	case *ebnf.Group:
		imp.subrule(t.Lparen, t.Body, nil)
	case *ebnf.Option:
		imp.subrule(t.Lbrack, t.Body, imp.b.OptionalSubRule)
	case *ebnf.Repetition:
		imp.subrule(t.Lbrace, t.Body, imp.b.ZeroOrMoreSubRule)
	default:
		tracer().Errorf("%s: cannot import %T", x.Pos(), x)
		imp.b.HasError()
	}
}

// subrule wraps body in a subrule. suffix converts the subrule before it is
// closed, e.g. into a loop.
func (imp *importer) subrule(pos scanner.Position, body ebnf.Expression, suffix func()) {
	imp.b.BeginSubRule(nil, grammar.Token{Text: "(", Pos: pos}, false)
	imp.alternatives(body)
	if suffix != nil {
		suffix()
	}
	imp.b.EndSubRule()
}

func (imp *importer) name(n *ebnf.Name) {
	tok := grammar.Token{Text: n.String, Pos: n.Pos()}
	if isLexical(n.String) {
		tok.Text = upperFirst(n.String)
		imp.b.RefToken(tok, grammar.Ref{})
		return
	}
	if imp.lexical {
		tracer().Errorf("%s: syntactic production %s referenced in lexical production", n.Pos(), n.String)
		imp.b.HasError()
		return
	}
	tok.Text = lowerFirst(n.String)
	imp.b.RefRule(tok, grammar.Ref{})
}

func (imp *importer) literal(t *ebnf.Token) {
	if imp.lexical && utf8.RuneCountInString(t.String) == 1 {
		r, _ := utf8.DecodeRuneInString(t.String)
		imp.b.RefCharLiteral(grammar.Token{Text: strconv.QuoteRune(r), Pos: t.Pos()}, grammar.Ref{})
		return
	}
	imp.b.RefStringLiteral(grammar.Token{Text: strconv.Quote(t.String), Pos: t.Pos()}, grammar.Ref{})
}

func (imp *importer) rangeOf(r *ebnf.Range) {
	if imp.lexical {
		lo, _ := utf8.DecodeRuneInString(r.Begin.String)
		hi, _ := utf8.DecodeRuneInString(r.End.String)
		imp.b.RefCharRange(
			grammar.Token{Text: strconv.QuoteRune(lo), Pos: r.Begin.Pos()},
			grammar.Token{Text: strconv.QuoteRune(hi), Pos: r.End.Pos()},
			grammar.Ref{})
		return
	}
	imp.b.RefTokenRange(
		grammar.Token{Text: strconv.Quote(r.Begin.String), Pos: r.Begin.Pos()},
		grammar.Token{Text: strconv.Quote(r.End.String), Pos: r.End.Pos()},
		grammar.Ref{})
}

func (imp *importer) ruleName(name string) string {
	if imp.lexical {
		return upperFirst(name)
	}
	return lowerFirst(name)
}

// --- Helpers ---------------------------------------------------------------

// collectNames adds the names of all productions referenced by x to names.
func collectNames(x ebnf.Expression, names map[string]bool) {
	switch t := x.(type) {
	case ebnf.Alternative:
		for _, y := range t {
			collectNames(y, names)
		}
	case ebnf.Sequence:
		for _, y := range t {
			collectNames(y, names)
		}
	case *ebnf.Name:
		names[t.String] = true
	case *ebnf.Group:
		collectNames(t.Body, names)
	case *ebnf.Option:
		collectNames(t.Body, names)
	case *ebnf.Repetition:
		collectNames(t.Body, names)
	}
}

func isLexical(name string) bool {
	r, _ := utf8.DecodeRuneInString(name)
	return !unicode.IsUpper(r)
}

func upperFirst(s string) string {
	r, n := utf8.DecodeRuneInString(s)
	return string(unicode.ToUpper(r)) + s[n:]
}

func lowerFirst(s string) string {
	r, n := utf8.DecodeRuneInString(s)
	return string(unicode.ToLower(r)) + s[n:]
}
