/*
Package grammar holds the element graph of a grammar, its symbol tables and a
builder to construct both from a stream of construction events.

Grammar Elements

A grammar consists of rules. The body of a rule is a block of alternatives,
each alternative being a sequence of elements ending in a sentinel: a
RuleEnd for the alternatives of a rule body, a BlockEnd for alternatives of
nested subrules. Elements form a closed set of variants:

    Action, CharLiteral, CharRange, StringLiteral, TokenRef, TokenRange,
    Wildcard, RuleRef, Block, BlockEnd, RuleEnd

Blocks come in different kinds (plain subrule, (...)+, (...)*, syntactic
predicate, rule body and tree). Every element knows its position within its
alternative (a Cursor), thus "what follows this element" is a constant time
query.

Building a Grammar

Grammars are constructed by a front end, which calls builder methods in the
order constructs appear in the grammar source:

    b := grammar.NewBuilder("P", grammar.Parser)
    b.DefineRuleName(grammar.MakeToken("a"), "public", true, "")
    b.BeginAlt(true)
    b.RefRule(grammar.MakeToken("b"), grammar.Ref{})
    b.RefToken(grammar.MakeToken("A"), grammar.Ref{})
    b.EndAlt()
    b.EndRule("a")
    …
    g, err := b.Grammar()

Problems in the grammar are reported as Diagnostics. Errors mark the grammar
as failed, but construction continues, so that further independent problems
are surfaced.

___________________________________________________________________________

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2017–2021 Norbert Pillmayer <norbert@pillmayer.com>

*/
package grammar

import (
	"github.com/npillmayer/schuko/tracing"
)

// tracer traces with key 'llk.grammar'.
func tracer() tracing.Trace {
	return tracing.Select("llk.grammar")
}
