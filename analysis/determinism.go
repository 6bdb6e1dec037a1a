package analysis

import (
	"github.com/npillmayer/llk"
	"github.com/npillmayer/llk/grammar"
	"github.com/npillmayer/llk/lookahead"
)

// Deterministic decides whether the alternatives of blk can be told apart
// with at most k symbols of linear approximate lookahead, k being the
// grammar's maximum lookahead depth. For loops, the exit branch is checked
// against every alternative as well.
//
// As a side effect every alternative of blk is assigned its lookahead
// depth, which is llk.NondeterministicDepth for alternatives involved in a
// conflict. Conflicts are reported as warnings, unless suppressed by
// predicates or block options.
func (a *Analyzer) Deterministic(blk *grammar.Block) bool {
	if !blk.IsLoop() {
		return a.deterministicAlts(blk)
	}
	save := a.currentBlock
	a.currentBlock = blk
	defer func() { a.currentBlock = save }()
	blkOk := a.deterministicAlts(blk)
	det := a.deterministicImpliedPath(blk)
	return det && blkOk
}

// deterministicAlts compares every pair of alternatives of blk, increasing
// the lookahead depth as long as the pair's lookahead sets intersect.
func (a *Analyzer) deterministicAlts(blk *grammar.Block) bool {
	save := a.currentBlock
	a.currentBlock = blk
	defer func() { a.currentBlock = save }()
	a.debugf("deterministic(%s)", blk)
	if !blk.Greedy && !blk.IsLoop() {
		a.g.Warning(blk.Pos, "Being nongreedy only makes sense for (...)+ and (...)*")
	}
	nalts := blk.Len()
	if nalts == 1 {
		alt := blk.Alt(0)
		store(&alt.Cache, 1, a.Look(1, alt.Head()))
		alt.LookaheadDepth = 1
		return true
	}
	maxk := a.maxK()
	det := true
	var wildcardAlt *grammar.Alternative
	for i := 0; i < nalts-1; i++ {
		a.analysisAlt[blk] = i
		for j := i + 1; j < nalts; j++ {
			a.analysisAlt[blk] = j
			r := make([]*lookahead.Lookahead, maxk+1)
			k, ambiguous := 1, false
			for {
				p := a.altLookahead(blk, i, k)
				q := a.altLookahead(blk, j, k)
				r[k] = p.Intersection(q)
				if ambiguous = !r[k].Nil(); ambiguous {
					k++
				}
				if !ambiguous || k > maxk {
					break
				}
			}
			ai, aj := blk.Alt(i), blk.Alt(j)
			if !ambiguous {
				ai.LookaheadDepth = max(ai.LookaheadDepth, k)
				aj.LookaheadDepth = max(aj.LookaheadDepth, k)
				continue
			}
			det = false
			ai.LookaheadDepth = llk.NondeterministicDepth
			aj.LookaheadDepth = llk.NondeterministicDepth
			emptyI, emptyJ := grammar.IsSentinel(ai.Head()), grammar.IsSentinel(aj.Head())
			switch {
			case ai.SynPred != nil:
				a.debugf("alt %d of %s has a syntactic predicate; ambiguity ignored", i+1, blk)
			case ai.SemPred != "":
				a.debugf("alt %d of %s has a semantic predicate; ambiguity ignored", i+1, blk)
			case altUsesWildcardDefault(aj):
				wildcardAlt = aj
			case !blk.WarnWhenFollowAmbig && (emptyI || emptyJ):
			case !blk.GenerateAmbigWarnings:
			case blk.GreedySet && blk.Greedy && emptyI != emptyJ:
			default:
				a.warnAltAmbiguity(blk, maxk, r, i, j)
			}
		}
	}
	if wildcardAlt != nil {
		// prediction sets of preceding alternatives are not removed from the
		// wildcard default
		a.debugf("wildcard default in %s: %s", blk, wildcardAlt)
	}
	return det
}

// deterministicImpliedPath compares every alternative of a loop with what
// follows the loop, i.e. with the exit branch.
func (a *Analyzer) deterministicImpliedPath(blk *grammar.Block) bool {
	maxk := a.maxK()
	det := true
	for i, alt := range blk.Alternatives {
		empty := grammar.IsSentinel(alt.Head())
		if empty {
			a.g.Warning(blk.Pos, "empty alternative makes no sense in (...)* or (...)+")
		}
		r := make([]*lookahead.Lookahead, maxk+1)
		k, ambiguous := 1, false
		for {
			follow := a.Look(k, blk.Next())
			store(&blk.ExitCache, k, follow)
			p := a.altLookahead(blk, i, k)
			r[k] = follow.Intersection(p)
			if ambiguous = !r[k].Nil(); ambiguous {
				k++
			}
			if !ambiguous || k > maxk {
				break
			}
		}
		if !ambiguous {
			alt.LookaheadDepth = max(alt.LookaheadDepth, k)
			blk.ExitLookaheadDepth = max(blk.ExitLookaheadDepth, k)
			continue
		}
		det = false
		alt.LookaheadDepth = llk.NondeterministicDepth
		blk.ExitLookaheadDepth = llk.NondeterministicDepth
		switch {
		case !blk.WarnWhenFollowAmbig:
		case !blk.GenerateAmbigWarnings:
		case blk.Greedy && blk.GreedySet && !empty:
		case !blk.Greedy && !empty:
			if !LookaheadEquivForApproxAndFullAnalysis(blk.ExitCache, maxk) {
				a.g.Warning(blk.Pos, "nongreedy block may exit incorrectly due\n"+
					"\tto limitations of linear approximate lookahead (first k-1 sets\n"+
					"\tin lookahead not singleton).")
			}
		default:
			a.warnAltExitAmbiguity(blk, maxk, r, i)
		}
	}
	return det
}

// altLookahead returns the lookahead of alternative i of blk at depth k,
// from the alternative's cache if possible.
func (a *Analyzer) altLookahead(blk *grammar.Block, i, k int) *lookahead.Lookahead {
	alt := blk.Alt(i)
	if p := cached(alt.Cache, k); p != nil {
		return p
	}
	p := a.Look(k, alt.Head())
	store(&alt.Cache, k, p)
	return p
}

// altUsesWildcardDefault is a predicate: is alt a lone wildcard, or a tree
// with a wildcard root?
func altUsesWildcardDefault(alt *grammar.Alternative) bool {
	switch head := alt.Head().(type) {
	case *grammar.Block:
		if head.Kind == grammar.Tree {
			_, ok := head.Root.(*grammar.Wildcard)
			return ok
		}
	case *grammar.Wildcard:
		return grammar.IsSentinel(head.Next())
	}
	return false
}

// LookaheadEquivForApproxAndFullAnalysis is a predicate: are the lookahead
// sets at depths 1…k-1 singletons? If so, linear approximate lookahead is
// as strong as full LL(k) lookahead.
func LookaheadEquivForApproxAndFullAnalysis(sets []*lookahead.Lookahead, k int) bool {
	for i := 1; i <= k-1 && i < len(sets); i++ {
		if sets[i] != nil && sets[i].Degree() > 1 {
			return false
		}
	}
	return true
}

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}
