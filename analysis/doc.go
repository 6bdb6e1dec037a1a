/*
Package analysis implements linear approximate LL(k) grammar analysis.

For every block of a grammar the analyzer decides how many symbols of
lookahead are needed to choose among the block's alternatives. Instead of
computing sets of k-tuples, it computes one symbol set per depth (a
Lookahead, see package lookahead) and considers two alternatives to be in
conflict at depth d if their depth-d sets intersect for every depth up to d.
This is weaker than full LL(k) analysis, but linear in k.

Analysis works on the element graph constructed by package grammar:

    g, err := b.Grammar()
    ...
    a := analysis.NewAnalyzer(g)
    if !a.Analyze() {
        for _, d := range g.Diagnostics.Ambiguities() { ... }
    }

After analysis, every alternative carries its lookahead depth (or
llk.NondeterministicDepth) and the lookahead sets computed for it.
The results are cached in the grammar elements, so an analyzer should be
run once per grammar.

Warning

The analyzer is not re-entrant. Analysis mutates the caches and
recursion locks of the grammar, so a grammar must not be analyzed by
more than one goroutine at a time.

___________________________________________________________________________

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2017–2021 Norbert Pillmayer <norbert@pillmayer.com>

*/
package analysis

import (
	"github.com/npillmayer/schuko/tracing"
)

// tracer traces with key 'llk.analysis'.
func tracer() tracing.Trace {
	return tracing.Select("llk.analysis")
}
