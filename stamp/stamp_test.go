package stamp_test

import (
	"sync"
	"testing"

	"github.com/min1324/lfstack/stamp"
	"github.com/stretchr/testify/require"
)

func TestPack(t *testing.T) {
	tag := stamp.Pack(7, 42)
	require.Equal(t, uint32(7), tag.Index())
	require.Equal(t, uint32(42), tag.Stamp())
	require.False(t, tag.IsNil())
	require.Equal(t, "7@42", tag.String())

	tag = stamp.Pack(^uint32(0), ^uint32(0))
	require.Equal(t, ^uint32(0), tag.Index())
	require.Equal(t, ^uint32(0), tag.Stamp())

	require.True(t, stamp.Pack(stamp.Nil, 3).IsNil())
}

func TestSlotZero(t *testing.T) {
	var s stamp.Slot
	tag := s.Load()
	require.True(t, tag.IsNil())
	require.Equal(t, uint32(0), tag.Stamp())
}

func TestSlotCompareAndSwap(t *testing.T) {
	var s stamp.Slot
	old := s.Load()

	require.True(t, s.CompareAndSwap(old, 5))
	cur := s.Load()
	require.Equal(t, uint32(5), cur.Index())
	require.Equal(t, uint32(1), cur.Stamp())

	// old no longer matches: nothing changes.
	require.False(t, s.CompareAndSwap(old, 9))
	require.Equal(t, cur, s.Load())

	s.Reset()
	require.Equal(t, stamp.Tag(0), s.Load())
}

func TestSlotRejectsRestoredIndex(t *testing.T) {
	var s stamp.Slot
	require.True(t, s.CompareAndSwap(s.Load(), 1))
	stale := s.Load()

	// 1 -> 2 -> 1: same index as the stale snapshot, different stamp.
	require.True(t, s.CompareAndSwap(s.Load(), 2))
	require.True(t, s.CompareAndSwap(s.Load(), 1))
	require.Equal(t, stale.Index(), s.Load().Index())

	require.False(t, s.CompareAndSwap(stale, 3))
	require.Equal(t, uint32(1), s.Load().Index())
	require.Equal(t, uint32(3), s.Load().Stamp())
}

func TestStampWraps(t *testing.T) {
	tag := stamp.Pack(1, ^uint32(0))
	next := stamp.Pack(2, tag.Stamp()+1)
	require.Equal(t, uint32(0), next.Stamp())
	require.Equal(t, uint32(2), next.Index())
}

func TestSlotConcurrentStamps(t *testing.T) {
	const maxGo, maxNum = 8, 1 << 12
	var s stamp.Slot
	var wg sync.WaitGroup
	for i := 0; i < maxGo; i++ {
		wg.Add(1)
		go func(id uint32) {
			defer wg.Done()
			for j := 0; j < maxNum; j++ {
				for {
					old := s.Load()
					if s.CompareAndSwap(old, id) {
						break
					}
				}
			}
		}(uint32(i + 1))
	}
	wg.Wait()
	require.Equal(t, uint32(maxGo*maxNum), s.Load().Stamp())
}
