// Package bitset provides dense, fixed-size bit sets and bit matrices.
//
// Both types store bits in 64-bit words so that set algebra (And, Or,
// AndNot, Equal) runs one word at a time. The resource graph uses them for
// adjacency and for the word-parallel column/row comparisons that drive node
// merging.
package bitset

import (
	"fmt"
	"iter"
	"math/bits"
	"strings"
)

const wordBits = 64

// BitSet is a fixed-capacity set of non-negative integers below Len().
// The zero value is an empty set of capacity 0.
type BitSet struct {
	words []uint64
	n     int
}

func wordsFor(n int) int {
	return (n + wordBits - 1) / wordBits
}

// New returns an empty BitSet able to hold indices [0, n).
func New(n int) *BitSet {
	if n < 0 {
		panic(fmt.Sprintf("bitset: negative capacity %d", n))
	}
	return &BitSet{words: make([]uint64, wordsFor(n)), n: n}
}

// FromIndices returns a BitSet of capacity n with the given indices set.
func FromIndices(n int, indices ...int) *BitSet {
	b := New(n)
	for _, i := range indices {
		b.Set(i)
	}
	return b
}

// Full returns a BitSet of capacity n with every index set.
func Full(n int) *BitSet {
	b := New(n)
	b.SetAll()
	return b
}

// Len returns the capacity of the set.
func (b *BitSet) Len() int { return b.n }

func (b *BitSet) check(i int) {
	if i < 0 || i >= b.n {
		panic(fmt.Sprintf("bitset: index %d out of range [0,%d)", i, b.n))
	}
}

func (b *BitSet) checkSame(o *BitSet) {
	if b.n != o.n {
		panic(fmt.Sprintf("bitset: capacity mismatch %d != %d", b.n, o.n))
	}
}

// Get reports whether i is in the set.
func (b *BitSet) Get(i int) bool {
	b.check(i)
	return b.words[i/wordBits]&(1<<(uint(i)%wordBits)) != 0
}

// Set adds i to the set.
func (b *BitSet) Set(i int) {
	b.check(i)
	b.words[i/wordBits] |= 1 << (uint(i) % wordBits)
}

// Clear removes i from the set.
func (b *BitSet) Clear(i int) {
	b.check(i)
	b.words[i/wordBits] &^= 1 << (uint(i) % wordBits)
}

// SetTo sets or clears i.
func (b *BitSet) SetTo(i int, v bool) {
	if v {
		b.Set(i)
		return
	}
	b.Clear(i)
}

// SetAll adds every index in [0, Len()).
func (b *BitSet) SetAll() {
	for w := range b.words {
		b.words[w] = ^uint64(0)
	}
	b.trim()
}

// ClearAll removes every index.
func (b *BitSet) ClearAll() {
	clear(b.words)
}

// SetRange adds every index in [from, to).
func (b *BitSet) SetRange(from, to int) {
	for i := from; i < to; i++ {
		b.Set(i)
	}
}

// trim clears the padding bits of the last word so Count and Equal stay exact.
func (b *BitSet) trim() {
	if rem := b.n % wordBits; rem != 0 && len(b.words) > 0 {
		b.words[len(b.words)-1] &= (1 << uint(rem)) - 1
	}
}

// Count returns the number of indices in the set.
func (b *BitSet) Count() int {
	c := 0
	for _, w := range b.words {
		c += bits.OnesCount64(w)
	}
	return c
}

// IsEmpty reports whether no index is set.
func (b *BitSet) IsEmpty() bool {
	for _, w := range b.words {
		if w != 0 {
			return false
		}
	}
	return true
}

// Equal reports whether both sets have the same capacity and members.
func (b *BitSet) Equal(o *BitSet) bool {
	if b.n != o.n {
		return false
	}
	for i, w := range b.words {
		if w != o.words[i] {
			return false
		}
	}
	return true
}

// Intersects reports whether the sets share at least one member.
func (b *BitSet) Intersects(o *BitSet) bool {
	b.checkSame(o)
	for i, w := range b.words {
		if w&o.words[i] != 0 {
			return true
		}
	}
	return false
}

// And keeps only members also present in o.
func (b *BitSet) And(o *BitSet) {
	b.checkSame(o)
	for i := range b.words {
		b.words[i] &= o.words[i]
	}
}

// Or adds every member of o.
func (b *BitSet) Or(o *BitSet) {
	b.checkSame(o)
	for i := range b.words {
		b.words[i] |= o.words[i]
	}
}

// AndNot removes every member of o.
func (b *BitSet) AndNot(o *BitSet) {
	b.checkSame(o)
	for i := range b.words {
		b.words[i] &^= o.words[i]
	}
}

// CopyFrom overwrites b with the contents of o.
func (b *BitSet) CopyFrom(o *BitSet) {
	b.checkSame(o)
	copy(b.words, o.words)
}

// Clone returns an independent copy.
func (b *BitSet) Clone() *BitSet {
	c := &BitSet{words: make([]uint64, len(b.words)), n: b.n}
	copy(c.words, b.words)
	return c
}

// NextSet returns the smallest member >= from, or -1 if there is none.
func (b *BitSet) NextSet(from int) int {
	if from < 0 {
		from = 0
	}
	if from >= b.n {
		return -1
	}
	w := from / wordBits
	word := b.words[w] >> (uint(from) % wordBits)
	if word != 0 {
		return from + bits.TrailingZeros64(word)
	}
	for w++; w < len(b.words); w++ {
		if b.words[w] != 0 {
			return w*wordBits + bits.TrailingZeros64(b.words[w])
		}
	}
	return -1
}

// All iterates the members in increasing order.
func (b *BitSet) All() iter.Seq[int] {
	return func(yield func(int) bool) {
		for i := b.NextSet(0); i >= 0; i = b.NextSet(i + 1) {
			if !yield(i) {
				return
			}
		}
	}
}

// Indices returns the members in increasing order.
func (b *BitSet) Indices() []int {
	out := make([]int, 0, b.Count())
	for i := range b.All() {
		out = append(out, i)
	}
	return out
}

func (b *BitSet) String() string {
	var sb strings.Builder
	sb.WriteByte('{')
	first := true
	for i := range b.All() {
		if !first {
			sb.WriteByte(' ')
		}
		first = false
		fmt.Fprintf(&sb, "%d", i)
	}
	sb.WriteByte('}')
	return sb.String()
}
