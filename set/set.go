package set

import (
	"bytes"
	"fmt"
	"math/bits"
	"sync/atomic"
)

const (
	setBits = 6 // 64 bits per word
	setMask = 1<<setBits - 1
)

// IntSet is a fixed-capacity set of non-negative integers that is safe for
// concurrent use. Add and Remove are single word compare-and-swap loops;
// Len, Items and String read word by word and are snapshots.
//
// x is an item in set.
// x = 64*idx + mod
// idx = x>>setBits , mod = x&setMask
// in the set, x is the position: dirty[idx]&(1<<mod)
type IntSet struct {
	cap   int
	dirty []atomic.Uint64
}

// New returns an empty set that holds values in [0, n).
func New(n int) *IntSet {
	if n < 0 {
		panic("set: negative capacity")
	}
	return &IntSet{
		cap:   n,
		dirty: make([]atomic.Uint64, (n+setMask)>>setBits),
	}
}

func (s *IntSet) idxMod(x int) (idx int, mod uint) {
	if x < 0 || x >= s.cap {
		panic(fmt.Sprintf("set: %d out of range [0,%d)", x, s.cap))
	}
	return x >> setBits, uint(x & setMask)
}

// Cap returns the exclusive upper bound of values the set can hold.
func (s *IntSet) Cap() int {
	return s.cap
}

// Has reports whether the set contains x.
func (s *IntSet) Has(x int) bool {
	idx, mod := s.idxMod(x)
	return (s.dirty[idx].Load()>>mod)&1 == 1
}

// Add adds x to the set. It returns false if x was already present.
func (s *IntSet) Add(x int) bool {
	idx, mod := s.idxMod(x)
	w := &s.dirty[idx]
	for {
		old := w.Load()
		if old&(1<<mod) != 0 {
			return false
		}
		if w.CompareAndSwap(old, old|1<<mod) {
			return true
		}
	}
}

// Remove removes x from the set. It returns false if x was not present.
func (s *IntSet) Remove(x int) bool {
	idx, mod := s.idxMod(x)
	w := &s.dirty[idx]
	for {
		old := w.Load()
		if old&(1<<mod) == 0 {
			return false
		}
		if w.CompareAndSwap(old, old&^(1<<mod)) {
			return true
		}
	}
}

// Len returns the number of elements in the set.
func (s *IntSet) Len() int {
	sum := 0
	for i := range s.dirty {
		sum += bits.OnesCount64(s.dirty[i].Load())
	}
	return sum
}

// Full reports whether every value in [0, Cap()) is present.
func (s *IntSet) Full() bool {
	return s.Len() == s.cap
}

// Items returns the elements in increasing order.
func (s *IntSet) Items() []int {
	return s.collect(true)
}

// Missing returns the values in [0, Cap()) that are not in the set.
func (s *IntSet) Missing() []int {
	return s.collect(false)
}

func (s *IntSet) collect(present bool) []int {
	var array []int
	for i := range s.dirty {
		item := s.dirty[i].Load()
		if !present {
			item = ^item
		}
		for item != 0 {
			j := bits.TrailingZeros64(item)
			x := i<<setBits + j
			if x >= s.cap {
				break
			}
			array = append(array, x)
			item &^= 1 << uint(j)
		}
	}
	return array
}

// String returns the set as a string of the form "{1 2 3}".
func (s *IntSet) String() string {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for _, x := range s.Items() {
		if buf.Len() > len("{") {
			buf.WriteByte(' ')
		}
		fmt.Fprintf(&buf, "%d", x)
	}
	buf.WriteByte('}')
	return buf.String()
}
