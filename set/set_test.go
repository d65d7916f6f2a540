package set_test

import (
	"fmt"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/min1324/lfstack/set"
	"github.com/stretchr/testify/require"
)

func ExampleIntSet() {
	s := set.New(128)
	fmt.Println(s.String())
	fmt.Println(s.Has(4))
	s.Add(0)
	s.Add(1)
	s.Add(3)
	s.Add(4)
	s.Add(63)
	s.Add(64)
	fmt.Println(s.String())
	fmt.Println(s.Len())
	fmt.Println(s.Has(4), s.Has(64), s.Has(65))
	fmt.Println(s.Add(4))
	// Output:
	// {}
	// false
	// {0 1 3 4 63 64}
	// 6
	// true true false
	// false
}

func ExampleIntSet_Missing() {
	s := set.New(6)
	s.Add(0)
	s.Add(2)
	s.Add(5)
	fmt.Println(s.Missing())
	// Output:
	// [1 3 4]
}

func TestAddRemove(t *testing.T) {
	s := set.New(100)
	require.Equal(t, 100, s.Cap())
	require.True(t, s.Add(99))
	require.False(t, s.Add(99))
	require.True(t, s.Remove(99))
	require.False(t, s.Remove(99))
	require.Equal(t, 0, s.Len())
	require.False(t, s.Full())
}

func TestFull(t *testing.T) {
	s := set.New(70)
	for i := 0; i < 70; i++ {
		s.Add(i)
	}
	require.True(t, s.Full())
	require.Empty(t, s.Missing())
	require.Len(t, s.Items(), 70)
}

func TestOutOfRange(t *testing.T) {
	s := set.New(10)
	require.Panics(t, func() { s.Add(10) })
	require.Panics(t, func() { s.Has(-1) })
	require.Panics(t, func() { set.New(-1) })
}

func TestConcurrentAdd(t *testing.T) {
	const maxGo, maxNum = 8, 1 << 12
	s := set.New(maxNum)
	var wg sync.WaitGroup
	var added int64
	for i := 0; i < maxGo; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < maxNum; j++ {
				if s.Add(j) {
					atomic.AddInt64(&added, 1)
				}
			}
		}()
	}
	wg.Wait()
	// every value won by exactly one goroutine
	require.Equal(t, int64(maxNum), added)
	require.True(t, s.Full())
}
