package stack

import (
	"sync"

	"github.com/emirpasic/gods/stacks/arraystack"
)

// Locked is a single mutex array stack. It has the same behavior as Stack
// and serves as the baseline it is measured and tested against.
//
// The zero value is an empty stack ready to use.
type Locked[T any] struct {
	once sync.Once
	mu   sync.Mutex
	data *arraystack.Stack
}

func (s *Locked[T]) onceInit() {
	s.once.Do(func() {
		s.data = arraystack.New()
	})
}

func (s *Locked[T]) Push(val T) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onceInit()
	s.data.Push(val)
}

func (s *Locked[T]) Pop() (val T, ok bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onceInit()
	v, ok := s.data.Pop()
	if !ok {
		return
	}
	// nil interface values come back as nil, not as T
	val, _ = v.(T)
	return val, true
}

func (s *Locked[T]) Empty() bool {
	return s.Len() == 0
}

func (s *Locked[T]) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onceInit()
	return s.data.Size()
}

// Close drops every value and returns how many there were.
func (s *Locked[T]) Close() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onceInit()
	n := s.data.Size()
	s.data.Clear()
	return n
}
