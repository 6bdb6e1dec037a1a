/*
Package bitset implements dense sets of small non-negative integers.

Sets hold token types or characters during grammar analysis. Storage is
delegated to intsets.Sparse, which grows on demand and keeps operations
proportional to the number of occupied words. BitSets have value semantics
with explicit cloning: operations named ...InPlace modify the receiver, all
other operations return a fresh set.

A nil *BitSet is treated as the empty set by every read-only operation.

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2017–2021 Norbert Pillmayer <norbert@pillmayer.com>

*/
package bitset

import (
	"fmt"
	"strings"

	"github.com/npillmayer/llk"
	"golang.org/x/tools/container/intsets"
)

// BitSet is a set of non-negative integers.
type BitSet struct {
	s intsets.Sparse
}

// New creates a set containing elems.
func New(elems ...int) *BitSet {
	b := &BitSet{}
	for _, el := range elems {
		b.Add(el)
	}
	return b
}

// Of creates a singleton set.
func Of(el int) *BitSet {
	return New(el)
}

// Range creates a set containing every integer in [lo, hi].
// If hi < lo, the set is empty.
func Range(lo, hi int) *BitSet {
	b := &BitSet{}
	for i := lo; i <= hi; i++ {
		b.Add(i)
	}
	return b
}

// Add inserts el. Adding a negative element is a programming error.
func (b *BitSet) Add(el int) {
	if el < 0 {
		panic(fmt.Sprintf("bitset: cannot add negative element %d", el))
	}
	b.s.Insert(el)
}

// Clear removes el, if present.
func (b *BitSet) Clear(el int) {
	b.s.Remove(el)
}

// Member is a predicate: is el in the set?
func (b *BitSet) Member(el int) bool {
	if b == nil {
		return false
	}
	return b.s.Has(el)
}

// Nil is a predicate: is the set empty?
func (b *BitSet) Nil() bool {
	return b == nil || b.s.IsEmpty()
}

// Degree returns the number of elements.
func (b *BitSet) Degree() int {
	if b == nil {
		return 0
	}
	return b.s.Len()
}

// Clone returns a copy of b. Cloning nil yields an empty set.
func (b *BitSet) Clone() *BitSet {
	c := &BitSet{}
	if b != nil {
		c.s.Copy(&b.s)
	}
	return c
}

// === Set operations ========================================================

// Or returns the union of b and o.
func (b *BitSet) Or(o *BitSet) *BitSet {
	c := b.Clone()
	c.OrInPlace(o)
	return c
}

// OrInPlace adds all elements of o to b.
func (b *BitSet) OrInPlace(o *BitSet) {
	if o == nil {
		return
	}
	b.s.UnionWith(&o.s)
}

// And returns the intersection of b and o.
func (b *BitSet) And(o *BitSet) *BitSet {
	c := b.Clone()
	c.AndInPlace(o)
	return c
}

// AndInPlace removes all elements from b which are not in o.
func (b *BitSet) AndInPlace(o *BitSet) {
	if o == nil {
		b.s.Clear()
		return
	}
	b.s.IntersectionWith(&o.s)
}

// Subtract returns b \ o.
func (b *BitSet) Subtract(o *BitSet) *BitSet {
	c := b.Clone()
	c.SubtractInPlace(o)
	return c
}

// SubtractInPlace removes all elements of o from b.
func (b *BitSet) SubtractInPlace(o *BitSet) {
	if o == nil {
		return
	}
	b.s.DifferenceWith(&o.s)
}

// NotInPlace complements b within the range [lo, hi]. Elements outside of
// the range are left untouched.
func (b *BitSet) NotInPlace(lo, hi int) {
	for i := lo; i <= hi; i++ {
		if b.s.Has(i) {
			b.s.Remove(i)
		} else if i >= 0 {
			b.s.Insert(i)
		}
	}
}

// Not returns the complement of b within [lo, hi].
func (b *BitSet) Not(lo, hi int) *BitSet {
	c := b.Clone()
	c.NotInPlace(lo, hi)
	return c
}

// Intersects is a predicate: do b and o have an element in common?
func (b *BitSet) Intersects(o *BitSet) bool {
	if b == nil || o == nil {
		return false
	}
	return b.s.Intersects(&o.s)
}

// Subset is a predicate: is every element of b contained in o?
func (b *BitSet) Subset(o *BitSet) bool {
	return b.Subtract(o).Nil()
}

// Equals is a predicate: do b and o contain the same elements?
func (b *BitSet) Equals(o *BitSet) bool {
	if b.Nil() || o.Nil() {
		return b.Nil() && o.Nil()
	}
	return b.s.Equals(&o.s)
}

// === Export ================================================================

// ToArray returns the elements in ascending order.
func (b *BitSet) ToArray() []int {
	if b == nil {
		return []int{}
	}
	return b.s.AppendTo(make([]int, 0, b.s.Len()))
}

// Each calls f for every element in ascending order.
func (b *BitSet) Each(f func(int)) {
	for _, el := range b.ToArray() {
		f(el)
	}
}

// Min returns the smallest element, or -1 for an empty set.
func (b *BitSet) Min() int {
	if b.Nil() {
		return -1
	}
	return b.s.Min()
}

// Max returns the largest element, or -1 for an empty set.
func (b *BitSet) Max() int {
	if b.Nil() {
		return -1
	}
	return b.s.Max()
}

// Contiguous checks if b is a non-empty run of consecutive integers and
// returns its bounds.
func (b *BitSet) Contiguous() (lo, hi int, ok bool) {
	if b.Nil() {
		return 0, 0, false
	}
	lo, hi = b.s.Min(), b.s.Max()
	return lo, hi, hi-lo+1 == b.s.Len()
}

// Ranges splits b into maximal runs of consecutive integers.
func (b *BitSet) Ranges() [][2]int {
	var runs [][2]int
	for _, el := range b.ToArray() {
		if n := len(runs); n > 0 && runs[n-1][1] == el-1 {
			runs[n-1][1] = el
			continue
		}
		runs = append(runs, [2]int{el, el})
	}
	return runs
}

// Format lists the elements, separated by sep. If f is nil, elements are
// printed as decimal numbers.
func (b *BitSet) Format(sep string, f llk.SymbolFormatter) string {
	if f == nil {
		f = llk.DecimalFormatter
	}
	var sb strings.Builder
	for i, el := range b.ToArray() {
		if i > 0 {
			sb.WriteString(sep)
		}
		sb.WriteString(f(el))
	}
	return sb.String()
}

// String is a debug Stringer, printing a set as {1,2,3}.
func (b *BitSet) String() string {
	return "{" + b.Format(",", nil) + "}"
}
