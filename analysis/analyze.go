package analysis

import (
	"github.com/npillmayer/llk/grammar"
	"github.com/npillmayer/schuko/tracing"
)

// Analyze checks the determinism of every block of every defined rule,
// including nested subrules, syntactic predicates and trees. For lexers
// the synthetic nextToken rule is checked as well. Analyze returns true if
// every block is deterministic. Diagnostics go to the grammar.
func (a *Analyzer) Analyze() bool {
	if a.debug {
		level := tracer().GetTraceLevel()
		tracer().SetTraceLevel(tracing.LevelDebug)
		defer tracer().SetTraceLevel(level)
	}
	tracer().Infof("analyzing %s grammar %s with k=%d", a.g.Kind, a.g.Name, a.maxK())
	var next *grammar.RuleBlock
	if a.lexical {
		// call sites of nextToken contribute to FOLLOW of public rules
		next = grammar.NextTokenRule(a.g)
	}
	det := true
	for _, rs := range a.g.Rules() {
		if !rs.Defined || rs.Block == nil || rs.ID() == grammar.NextTokenRuleName {
			continue
		}
		a.debugf("=== rule %s ===", rs.ID())
		det = a.analyzeBlock(rs.Block.Body) && det
	}
	if next != nil {
		a.debugf("=== rule %s ===", next.Name)
		det = a.Deterministic(next.Body) && det
	}
	if det {
		tracer().Infof("grammar %s is LL(%d)", a.g.Name, a.maxK())
	} else {
		tracer().Infof("grammar %s is not LL(%d)", a.g.Name, a.maxK())
	}
	tracing.With(tracer()).Dump("ambiguities", a.g.Diagnostics.Ambiguities())
	return det
}

// analyzeBlock checks blk and, depth first, every block nested in it.
func (a *Analyzer) analyzeBlock(blk *grammar.Block) bool {
	det := a.Deterministic(blk)
	for _, alt := range blk.Alternatives {
		if alt.SynPred != nil {
			det = a.analyzeBlock(alt.SynPred) && det
		}
		for _, e := range alt.Elements() {
			switch x := e.(type) {
			case *grammar.Block:
				det = a.analyzeBlock(x) && det
			case *grammar.RuleRef:
				if rs := a.g.Rule(x.Target); rs == nil || !rs.Defined {
					a.g.Error(x.Pos, "no definition of rule %s", x.Target)
				}
			}
		}
	}
	return det
}
