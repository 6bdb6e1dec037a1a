package lookahead

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/npillmayer/llk/bitset"
)

func TestIntersectionNilLaw(t *testing.T) {
	cases := []struct {
		p, q     *Lookahead
		conflict bool
	}{
		{Of(4), Of(5), false},
		{Of(4), FromSet(bitset.New(4, 5)), true},
		{withEpsilon(New()), withEpsilon(Of(7)), true},
		{withEpsilon(Of(4)), Of(5), false},
		{New(), New(), false},
	}
	for i, c := range cases {
		if nonNil := !c.p.Intersection(c.q).Nil(); nonNil != c.conflict {
			t.Errorf("case %d: expected conflict=%v for %v ∩ %v", i, c.conflict, c.p, c.q)
		}
	}
}

func TestCombineWith(t *testing.T) {
	p := Of(4)
	p.Cycle = "a"
	q := withEpsilon(Of(6))
	q.Cycle = "b"
	q.EpsilonDepth = bitset.Of(2)
	p.CombineWith(q)
	if diff := cmp.Diff([]int{4, 6}, p.Set.ToArray()); diff != "" {
		t.Errorf("combined set mismatch (-want +got):\n%s", diff)
	}
	if !p.ContainsEpsilon() {
		t.Errorf("Expected combined lookahead to contain epsilon")
	}
	if p.Cycle != "a" {
		t.Errorf("Expected first cycle marker to be kept, is %q", p.Cycle)
	}
	if !p.EpsilonDepth.Member(2) {
		t.Errorf("Expected epsilon depth 2 to be adopted")
	}
	q.EpsilonDepth.Add(3)
	if p.EpsilonDepth.Member(3) {
		t.Errorf("Expected epsilon depths to be copied, not shared")
	}
}

func TestCloneIsDeep(t *testing.T) {
	p := withEpsilon(Of(4))
	c := p.Clone()
	c.Set.Add(9)
	c.ResetEpsilon()
	if p.Set.Member(9) || !p.ContainsEpsilon() {
		t.Errorf("Expected clone to be independent, original is %v", p)
	}
}

func TestFormat(t *testing.T) {
	p := withEpsilon(FromSet(bitset.New(4, 5)))
	if s := p.String(); s != "{4,5,<epsilon>}" {
		t.Errorf("Expected {4,5,<epsilon>}, is %s", s)
	}
}

func withEpsilon(la *Lookahead) *Lookahead {
	la.SetEpsilon()
	return la
}
