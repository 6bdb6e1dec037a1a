package bitset

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/npillmayer/llk"
)

func TestBitSetUnionIntersection(t *testing.T) {
	a := New(1, 4, 7)
	b := New(4, 5, 7, 130)
	if diff := cmp.Diff([]int{1, 4, 5, 7, 130}, a.Or(b).ToArray()); diff != "" {
		t.Errorf("union mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]int{4, 7}, a.And(b).ToArray()); diff != "" {
		t.Errorf("intersection mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]int{1}, a.Subtract(b).ToArray()); diff != "" {
		t.Errorf("subtraction mismatch (-want +got):\n%s", diff)
	}
	if a.Degree() != 3 {
		t.Errorf("Expected operations to leave operands untouched, a has %d elements", a.Degree())
	}
}

func TestBitSetNotInRange(t *testing.T) {
	b := New(5, 6, 20)
	b.NotInPlace(4, 8)
	if diff := cmp.Diff([]int{4, 7, 8, 20}, b.ToArray()); diff != "" {
		t.Errorf("complement mismatch (-want +got):\n%s", diff)
	}
	empty := New()
	empty.NotInPlace(llk.MinUserType, 6)
	if diff := cmp.Diff([]int{4, 5, 6}, empty.ToArray()); diff != "" {
		t.Errorf("complement of empty set mismatch (-want +got):\n%s", diff)
	}
}

func TestBitSetNilAndClone(t *testing.T) {
	var b *BitSet
	if !b.Nil() || b.Degree() != 0 || b.Member(3) {
		t.Errorf("Expected nil set to behave as empty set")
	}
	c := New(3)
	d := c.Clone()
	d.Add(9)
	if c.Member(9) {
		t.Errorf("Expected clone to be independent of original")
	}
	if !New().Equals(nil) {
		t.Errorf("Expected empty set to equal nil set")
	}
}

func TestBitSetRanges(t *testing.T) {
	b := Range('a', 'e')
	lo, hi, ok := b.Contiguous()
	if !ok || lo != 'a' || hi != 'e' {
		t.Errorf("Expected contiguous range a..e, is %d..%d (%v)", lo, hi, ok)
	}
	b.Clear('c')
	if _, _, ok = b.Contiguous(); ok {
		t.Errorf("Expected set with a gap not to be contiguous")
	}
	if diff := cmp.Diff([][2]int{{'a', 'b'}, {'d', 'e'}}, b.Ranges()); diff != "" {
		t.Errorf("ranges mismatch (-want +got):\n%s", diff)
	}
}

func TestBitSetFormat(t *testing.T) {
	b := New('b', 'a')
	if s := b.Format(",", llk.CharFormatter); s != "'a','b'" {
		t.Errorf("Expected 'a','b', is %s", s)
	}
	if s := New(4, 12).String(); s != "{4,12}" {
		t.Errorf("Expected {4,12}, is %s", s)
	}
}
