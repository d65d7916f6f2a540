// Package stamp provides a stamped slot: an (index, stamp) pair that is read
// and conditionally replaced as one unit.
//
// The pair is packed into a single 64-bit word so a plain 64-bit
// compare-and-swap checks both fields together:
//
//	63            32 31             0
//	+---------------+---------------+
//	|     stamp     |     index     |
//	+---------------+---------------+
//
// Index 0 is the nil address. Every successful update advances the stamp by
// one (mod 2^32), so two updates that leave the same index behind are still
// told apart by a stale compare-and-swap.
package stamp

import (
	"fmt"
	"sync/atomic"
)

// Nil is the index that marks an empty slot.
const Nil uint32 = 0

// Tag is a packed (index, stamp) snapshot.
type Tag uint64

// Pack returns the tag holding index and stamp.
func Pack(index, stamp uint32) Tag {
	return Tag(uint64(stamp)<<32 | uint64(index))
}

// Index returns the address half of the tag.
func (t Tag) Index() uint32 { return uint32(t) }

// Stamp returns the version half of the tag.
func (t Tag) Stamp() uint32 { return uint32(t >> 32) }

// IsNil reports whether the tag points at no node.
func (t Tag) IsNil() bool { return t.Index() == Nil }

func (t Tag) String() string {
	return fmt.Sprintf("%d@%d", t.Index(), t.Stamp())
}

// Slot is a stamped slot. The zero value is (Nil, 0).
type Slot struct {
	v atomic.Uint64
}

// Load returns the current (index, stamp) pair.
func (s *Slot) Load() Tag {
	return Tag(s.v.Load())
}

// CompareAndSwap replaces the slot with (index, old.Stamp()+1) if the slot
// still holds old. It reports whether the swap happened; a failed swap leaves
// the slot untouched.
//
// Failure is the normal outcome under contention: callers reload and retry.
func (s *Slot) CompareAndSwap(old Tag, index uint32) bool {
	return s.v.CompareAndSwap(uint64(old), uint64(Pack(index, old.Stamp()+1)))
}

// Reset puts the slot back to (Nil, 0). It must not race with any other
// method on the slot.
func (s *Slot) Reset() {
	s.v.Store(0)
}
