package history

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPushBelowCapacityKeepsEverything(t *testing.T) {
	b := New[int](5)
	for i := 0; i < 3; i++ {
		b.Push(i)
	}

	assert := assert.New(t)
	assert.Equal(3, b.Len())
	assert.Equal([]int{0, 1, 2}, b.Snapshot())
}

func TestPushEvictsOldestFirst(t *testing.T) {
	b := New[int](3)
	for i := 0; i < 7; i++ {
		b.Push(i)
	}

	assert := assert.New(t)
	assert.Equal(3, b.Len())
	assert.Equal([]int{4, 5, 6}, b.Snapshot())
}

func TestLenNeverExceedsCapacity(t *testing.T) {
	b := New[float64](50)
	for i := 0; i < 500; i++ {
		b.Push(float64(i))
		assert.LessOrEqual(t, b.Len(), 50)
	}
}

func TestLast(t *testing.T) {
	b := New[string](2)

	_, ok := b.Last()
	assert.False(t, ok)

	b.Push("a")
	b.Push("b")
	b.Push("c")
	last, ok := b.Last()
	assert.True(t, ok)
	assert.Equal(t, "c", last)
}

func TestSnapshotIsACopy(t *testing.T) {
	b := New[int](3)
	b.Push(1)
	b.Push(2)

	snap := b.Snapshot()
	b.Push(3)
	b.Push(4)

	assert.Equal(t, []int{1, 2}, snap)
}
