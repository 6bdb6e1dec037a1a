package analysis

import (
	"github.com/npillmayer/llk"
	"github.com/npillmayer/llk/grammar"
	"github.com/npillmayer/llk/lookahead"
)

// Follow computes FOLLOW at depth k of the rule closed by end, i.e. the
// union of the lookahead after every call site of the rule.
//
// A FOLLOW computation may reach itself through the end of a calling rule.
// The inner computation then returns an empty set with a cycle to the rule,
// and the partial result is cached with that cycle. Later requests try to
// complete a cycled cache entry from the FOLLOW of the rule it refers to.
// A rule without call sites is followed by EOF, by NULL_TREE_LOOKAHEAD in
// tree walkers, and by epsilon in lexers.
func (a *Analyzer) Follow(k int, end *grammar.RuleEnd) *lookahead.Lookahead {
	rule := end.Rule.Name
	a.debugf("FOLLOW(%d, %s)", k, rule)
	if end.Lock.Locked(k) {
		a.debugf("FOLLOW cycle to %s", rule)
		return lookahead.CycleOf(rule)
	}
	if c := cached(end.Cache, k); c != nil {
		return a.resolveCachedFollow(k, c)
	}
	p := a.followCallSites(k, end)
	if p.Set.Nil() && p.Cycle == "" {
		switch a.g.Kind {
		case grammar.TreeWalker:
			p.Set.Add(llk.NullTreeLookahead)
		case grammar.Lexer:
			p.SetEpsilon()
		default:
			p.Set.Add(llk.EOFType)
		}
	}
	a.debugf("saving FOLLOW(%d, %s) = %s", k, rule, a.format(p))
	store(&end.Cache, k, p.Clone())
	return p
}

// resolveCachedFollow returns a copy of a cached FOLLOW set. If the entry
// depends on the FOLLOW of another rule which has been computed in the
// meantime, the entry is completed first.
func (a *Analyzer) resolveCachedFollow(k int, c *lookahead.Lookahead) *lookahead.Lookahead {
	if c.Cycle == "" {
		return c.Clone()
	}
	rs := a.g.Rule(c.Cycle)
	if rs == nil || rs.Block == nil {
		return c.Clone()
	}
	other := rs.Block.End
	oc := cached(other.Cache, k)
	if oc == nil { // still being computed
		return c.Clone()
	}
	if oc.Cycle == "" {
		c.CombineWith(oc)
		c.Cycle = ""
	} else {
		ref := a.Follow(k, other)
		c.CombineWith(ref)
		c.Cycle = ref.Cycle
	}
	a.debugf("completed FOLLOW(%d) from %s: %s", k, rs.ID(), a.format(c))
	return c.Clone()
}

func (a *Analyzer) followCallSites(k int, end *grammar.RuleEnd) *lookahead.Lookahead {
	release := end.Lock.Acquire(k)
	defer release()
	rule := end.Rule.Name
	p := lookahead.New()
	rs := a.g.Rule(rule)
	if rs == nil {
		return p
	}
	for _, rr := range rs.References() {
		q := a.Look(k, rr.Next())
		if q.Cycle == rule {
			q.Cycle = ""
		}
		p.CombineWith(q)
	}
	return p
}
