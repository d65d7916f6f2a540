package stack

import (
	"sync/atomic"

	"github.com/min1324/lfstack/stamp"
	log "github.com/sirupsen/logrus"
)

// Stack is a lock-free concurrent LIFO stack.
//
// Popped nodes go to an internal trash chain and are reused by later pushes,
// so a stack that stays within its peak size stops allocating. Both chains
// are headed by stamped slots, which makes a compare-and-swap built from a
// stale read fail even when the node index it saw has come back.
//
// The zero value is an empty stack ready to use. A Stack must not be copied
// after first use.
type Stack[T any] struct {
	top   stamp.Slot // latest value pushed
	trash stamp.Slot // nodes waiting for reuse
	nodes arena[T]

	len atomic.Int64 // value count, updated after each linearization point

	log     log.FieldLogger
	release func(T)
}

// New returns an empty stack.
func New[T any]() *Stack[T] {
	return &Stack[T]{}
}

// SetLogger sets the logger used for arena growth and Close.
// Call it before the stack is shared.
func (s *Stack[T]) SetLogger(l log.FieldLogger) {
	s.log = l
}

// SetRelease sets a func that Close calls on every value still in the stack.
// Call it before the stack is shared.
func (s *Stack[T]) SetRelease(f func(T)) {
	s.release = f
}

func (s *Stack[T]) logger() log.FieldLogger {
	if s.log == nil {
		return log.StandardLogger()
	}
	return s.log
}

// link makes node i the head of slot's chain.
func (s *Stack[T]) link(slot *stamp.Slot, i uint32) {
	n := s.nodes.at(i)
	for {
		top := slot.Load()
		n.next.Store(top.Index())
		if slot.CompareAndSwap(top, i) {
			return
		}
	}
}

// unlink detaches the head of slot's chain and returns its index, or
// stamp.Nil if the chain is empty. The detached node belongs to the caller.
func (s *Stack[T]) unlink(slot *stamp.Slot) uint32 {
	for {
		top := slot.Load()
		if top.IsNil() {
			return stamp.Nil
		}
		// may be stale; the stamp check below rejects it then.
		next := s.nodes.at(top.Index()).next.Load()
		if slot.CompareAndSwap(top, next) {
			return top.Index()
		}
	}
}

func (s *Stack[T]) alloc() uint32 {
	i, grew := s.nodes.alloc()
	if grew > 0 {
		s.logger().WithFields(log.Fields{
			"index": i,
			"nodes": grew,
		}).Debug("stack: arena grew")
	}
	return i
}

// Push puts val at the top of the stack.
func (s *Stack[T]) Push(val T) {
	i := s.unlink(&s.trash)
	if i == stamp.Nil {
		i = s.alloc()
	}
	s.nodes.at(i).value = val
	s.link(&s.top, i)
	s.len.Add(1)
}

// Pop removes and returns the value at the top of the stack.
// It returns false if the stack is empty.
func (s *Stack[T]) Pop() (val T, ok bool) {
	i := s.unlink(&s.top)
	if i == stamp.Nil {
		return
	}
	s.len.Add(-1)
	n := s.nodes.at(i)
	val = n.value
	var zero T
	n.value = zero
	s.link(&s.trash, i)
	return val, true
}

// Empty reports whether the top chain was empty when it was read.
// Concurrent pushes and pops may change that before Empty returns.
func (s *Stack[T]) Empty() bool {
	return s.top.Load().IsNil()
}

// Len returns the number of values in the stack. It trails the stack by
// at most the operations in flight.
func (s *Stack[T]) Len() int {
	n := s.len.Load()
	if n < 0 {
		return 0
	}
	return int(n)
}

// Stats returns the current node accounting.
func (s *Stack[T]) Stats() Stats {
	allocated := s.nodes.allocated()
	live := s.Len()
	if live > allocated {
		live = allocated
	}
	return Stats{
		Allocated: allocated,
		Live:      live,
		Free:      allocated - live,
	}
}

// Close releases every node of both chains, calls the release func on each
// value still in the stack, and returns the number of nodes released.
// Afterwards the stack is empty and may be used again.
//
// Close must not run concurrently with any other method.
func (s *Stack[T]) Close() int {
	live := s.drain(&s.top, s.release)
	free := s.drain(&s.trash, nil)
	allocated := s.nodes.reset()
	s.len.Store(0)

	entry := s.logger().WithFields(log.Fields{
		"live":      live,
		"free":      free,
		"allocated": allocated,
	})
	if live+free != allocated {
		entry.Warn("stack: close found nodes on no chain")
	} else {
		entry.Debug("stack: closed")
	}
	return live + free
}

func (s *Stack[T]) drain(slot *stamp.Slot, release func(T)) int {
	var zero T
	count := 0
	for i := slot.Load().Index(); i != stamp.Nil; count++ {
		n := s.nodes.at(i)
		if release != nil {
			release(n.value)
		}
		n.value = zero
		i = n.next.Load()
		n.next.Store(stamp.Nil)
	}
	slot.Reset()
	return count
}
