package stack

import (
	"math"
	"math/bits"
	"sync/atomic"
)

const (
	segShift = 6              // first segment holds 1<<segShift nodes
	segCount = 33 - segShift  // enough segments to address every uint32 index
	maxIndex = math.MaxUint32 // last usable node index
)

// node is one cell of the arena. value is only touched by the goroutine that
// owns the node; next is read speculatively by others and so is atomic.
type node[T any] struct {
	next  atomic.Uint32
	value T
}

// arena is a growable, lock-free node store addressed by uint32 index.
// Index 0 is the nil address and never handed out.
//
// Segment k holds 1<<(segShift+k) nodes, so the segment of an index and its
// offset follow from the bit length of the index. Segments are published by
// compare-and-swap and never move, which keeps every handed out index valid
// until reset.
type arena[T any] struct {
	last atomic.Uint64 // last index handed out
	segs [segCount]atomic.Pointer[[]node[T]]
}

func locate(i uint32) (k int, off uint64) {
	j := uint64(i) - 1 + 1<<segShift
	k = bits.Len64(j) - segShift - 1
	return k, j - 1<<(uint(k)+segShift)
}

// at returns the node stored at index i. i must come from alloc.
func (a *arena[T]) at(i uint32) *node[T] {
	k, off := locate(i)
	return &(*a.segs[k].Load())[off]
}

// alloc hands out an index no chain has seen yet. grew is the size of the
// segment this call allocated, or 0.
func (a *arena[T]) alloc() (i uint32, grew int) {
	n := a.last.Add(1)
	if n > maxIndex {
		panic("stack: node arena exhausted")
	}
	i = uint32(n)
	k, _ := locate(i)
	if a.segs[k].Load() != nil {
		return i, 0
	}
	seg := make([]node[T], 1<<(uint(k)+segShift))
	if a.segs[k].CompareAndSwap(nil, &seg) {
		grew = len(seg)
	}
	return i, grew
}

// allocated is the number of nodes handed out since the last reset.
func (a *arena[T]) allocated() int {
	return int(a.last.Load())
}

// reset drops every segment. Callers must own the arena exclusively.
func (a *arena[T]) reset() int {
	n := a.allocated()
	for k := range a.segs {
		a.segs[k].Store(nil)
	}
	a.last.Store(0)
	return n
}
