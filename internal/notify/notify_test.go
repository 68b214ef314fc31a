package notify

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct{ t time.Time }

func (c *fakeClock) now() time.Time { return c.t }

func newTestManager() (*Manager, *fakeClock) {
	clk := &fakeClock{t: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
	m := NewManager(0)
	m.now = clk.now
	return m, clk
}

func TestPushDrain(t *testing.T) {
	m, _ := newTestManager()

	a := m.Push("u1", "Added to cart", TypeSuccess)
	b := m.Push("u1", "Removed from cart", TypeSuccess)
	m.Push("u2", "other", TypeSuccess)

	got := m.Drain("u1")
	require.Len(t, got, 2)
	assert.Equal(t, a.ID, got[0].ID)
	assert.Equal(t, b.ID, got[1].ID)
	assert.Less(t, a.ID, b.ID)

	assert.Empty(t, m.Drain("u1"))
	assert.Len(t, m.Drain("u2"), 1)
}

func TestDrain_DropsExpired(t *testing.T) {
	m, clk := newTestManager()

	m.Push("u1", "old", TypeSuccess)
	clk.t = clk.t.Add(2 * time.Second)
	m.Push("u1", "new", TypeSuccess)
	clk.t = clk.t.Add(1500 * time.Millisecond)

	got := m.Drain("u1")
	require.Len(t, got, 1)
	assert.Equal(t, "new", got[0].Message)
}

func TestSweep(t *testing.T) {
	m, clk := newTestManager()

	m.Push("u1", "a", TypeSuccess)
	clk.t = clk.t.Add(DefaultTTL)
	m.Push("u2", "b", TypeSuccess)
	m.Sweep()

	assert.Equal(t, 1, m.pendingUsers())
	assert.Len(t, m.Drain("u2"), 1)
}

func TestIDsUniqueAcrossGoroutines(t *testing.T) {
	m, _ := newTestManager()

	const workers, per = 8, 50
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < per; i++ {
				m.Push("u1", "x", TypeSuccess)
			}
		}()
	}
	wg.Wait()

	got := m.Drain("u1")
	require.Len(t, got, workers*per)
	seen := make(map[uint64]bool, len(got))
	for _, n := range got {
		assert.False(t, seen[n.ID])
		seen[n.ID] = true
	}
}

func TestManagersHaveIndependentCounters(t *testing.T) {
	m1, _ := newTestManager()
	m2, _ := newTestManager()

	assert.EqualValues(t, 1, m1.Push("u", "a", TypeSuccess).ID)
	assert.EqualValues(t, 1, m2.Push("u", "a", TypeSuccess).ID)
}
