/*
Package lookahead implements the lookahead descriptor of linear approximate
LL(k) analysis.

A Lookahead describes the symbols which may appear at a single lookahead
depth. Besides the symbol set it records whether the end of a rule has been
reached without consuming input (epsilon), at which depths this happened,
and an unresolved recursion marker naming a rule whose FOLLOW computation
was still in progress when the value was produced.

Two alternatives conflict at depth k iff the intersection of their depth-k
lookaheads is not Nil.

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2017–2021 Norbert Pillmayer <norbert@pillmayer.com>

*/
package lookahead

import (
	"strings"

	"github.com/npillmayer/llk"
	"github.com/npillmayer/llk/bitset"
)

// Lookahead is a set of symbols at a single depth, together with epsilon
// and cycle information.
type Lookahead struct {
	Set          *bitset.BitSet // symbols (token types or characters)
	Cycle        string         // name of rule with unresolved FOLLOW, or ""
	EpsilonDepth *bitset.BitSet // depths at which end of rule was hit; may be nil
	epsilon      bool
}

// New creates an empty lookahead.
func New() *Lookahead {
	return &Lookahead{Set: bitset.New()}
}

// Of creates a lookahead for a single symbol.
func Of(el int) *Lookahead {
	return &Lookahead{Set: bitset.Of(el)}
}

// FromSet creates a lookahead from a symbol set. The set is not copied.
func FromSet(s *bitset.BitSet) *Lookahead {
	if s == nil {
		s = bitset.New()
	}
	return &Lookahead{Set: s}
}

// CycleOf creates an empty lookahead marking an unresolved recursion
// through rule.
func CycleOf(rule string) *Lookahead {
	return &Lookahead{Set: bitset.New(), Cycle: rule}
}

// Clone returns a deep copy.
func (la *Lookahead) Clone() *Lookahead {
	c := &Lookahead{
		Set:     la.Set.Clone(),
		Cycle:   la.Cycle,
		epsilon: la.epsilon,
	}
	if la.EpsilonDepth != nil {
		c.EpsilonDepth = la.EpsilonDepth.Clone()
	}
	return c
}

// CombineWith merges q into la. Symbol sets, epsilon flags and epsilon depths
// are united. A cycle marker of q is adopted only if la has none.
func (la *Lookahead) CombineWith(q *Lookahead) {
	if q == nil {
		return
	}
	if la.Cycle == "" {
		la.Cycle = q.Cycle
	}
	if q.epsilon {
		la.epsilon = true
	}
	if la.EpsilonDepth != nil {
		la.EpsilonDepth.OrInPlace(q.EpsilonDepth)
	} else if q.EpsilonDepth != nil {
		la.EpsilonDepth = q.EpsilonDepth.Clone()
	}
	la.Set.OrInPlace(q.Set)
}

// Intersection returns a new lookahead holding the symbols common to la and q.
// The result contains epsilon only if both operands do.
func (la *Lookahead) Intersection(q *Lookahead) *Lookahead {
	p := FromSet(la.Set.And(q.Set))
	if la.epsilon && q.epsilon {
		p.SetEpsilon()
	}
	return p
}

// Nil is a predicate: is the symbol set empty and epsilon absent?
func (la *Lookahead) Nil() bool {
	return la.Set.Nil() && !la.epsilon
}

// ContainsEpsilon is a predicate: may this path match the empty input?
func (la *Lookahead) ContainsEpsilon() bool {
	return la.epsilon
}

// SetEpsilon marks la as containing epsilon.
func (la *Lookahead) SetEpsilon() {
	la.epsilon = true
}

// ResetEpsilon removes epsilon from la.
func (la *Lookahead) ResetEpsilon() {
	la.epsilon = false
}

// Degree returns the number of symbols, not counting epsilon.
func (la *Lookahead) Degree() int {
	return la.Set.Degree()
}

// Format prints la using f for the symbols, separated by sep.
func (la *Lookahead) Format(sep string, f llk.SymbolFormatter) string {
	var sb strings.Builder
	sb.WriteString(la.Set.Format(sep, f))
	if la.epsilon {
		if !la.Set.Nil() {
			sb.WriteString(sep)
		}
		sb.WriteString("<epsilon>")
	}
	if la.Cycle != "" {
		sb.WriteString("; FOLLOW(")
		sb.WriteString(la.Cycle)
		sb.WriteString(")")
	}
	if !la.EpsilonDepth.Nil() {
		sb.WriteString("; depths=")
		sb.WriteString(la.EpsilonDepth.Format(",", nil))
	}
	return sb.String()
}

// String is a debug Stringer.
func (la *Lookahead) String() string {
	return "{" + la.Format(",", nil) + "}"
}
