package governor

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestReserve_WithinBudget(t *testing.T) {
	g := New(10, 5)
	assert.Equal(t, 4, g.Reserve(4))
	assert.Equal(t, 4, g.Used())
	assert.Equal(t, 6, g.Remaining())
	assert.Zero(t, g.Dropped())
}

func TestReserve_TruncatesToRemaining(t *testing.T) {
	g := New(10, 5)
	g.Reserve(8)

	// 12 requested, only 2 left: the grant is the front of the caller's list.
	assert.Equal(t, 2, g.Reserve(12))
	assert.Equal(t, 10, g.Used())
	assert.Equal(t, 10, g.Dropped())
	assert.True(t, g.Exhausted())
}

func TestReserve_AfterExhaustionGrantsZero(t *testing.T) {
	g := New(3, 5)
	g.Reserve(3)
	assert.Equal(t, 0, g.Reserve(5))
	assert.Equal(t, 5, g.Dropped())
	assert.Equal(t, 3, g.Used())
}

func TestReserve_Unlimited(t *testing.T) {
	g := New(0, 5)
	assert.Equal(t, 1000, g.Reserve(1000))
	assert.False(t, g.Exhausted())
	assert.Equal(t, -1, g.Remaining())
}

func TestReserve_NonPositive(t *testing.T) {
	g := New(10, 5)
	assert.Zero(t, g.Reserve(0))
	assert.Zero(t, g.Reserve(-3))
	assert.Zero(t, g.Used())
}

func TestDepthAllowed(t *testing.T) {
	g := New(100, 2)
	assert.True(t, g.DepthAllowed(0))
	assert.True(t, g.DepthAllowed(1))
	assert.False(t, g.DepthAllowed(2))
	assert.False(t, g.DepthAllowed(3))

	zero := New(100, 0)
	assert.False(t, zero.DepthAllowed(0))
}

func TestReserve_ConcurrentNeverOvershoots(t *testing.T) {
	g := New(50, 5)

	var wg sync.WaitGroup
	granted := make([]int, 20)
	for i := range granted {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			granted[i] = g.Reserve(5)
		}(i)
	}
	wg.Wait()

	total := 0
	for _, n := range granted {
		total += n
	}
	assert.Equal(t, 50, total)
	assert.Equal(t, 50, g.Used())
	assert.Equal(t, 50, g.Dropped())
}
