package quota

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestSearchGateEnforcesDailyLimit(t *testing.T) {
	g := NewSearchGate(3)

	assert.True(t, g.TryAcquire("a"))
	assert.True(t, g.TryAcquire("b"))
	assert.True(t, g.TryAcquire("c"))
	assert.False(t, g.TryAcquire("d"))
	assert.Equal(t, 0, g.Remaining())
}

func TestSearchGateConcurrentAcquires(t *testing.T) {
	g := NewSearchGate(50)

	var granted int64
	var wg sync.WaitGroup
	for i := 0; i < 200; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if g.TryAcquire("load") {
				atomic.AddInt64(&granted, 1)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int64(50), granted)
}

func TestSearchGateResetsOnDateRollover(t *testing.T) {
	day := time.Date(2026, 5, 1, 23, 0, 0, 0, time.UTC)
	g := NewSearchGate(1)
	g.now = func() time.Time { return day }

	assert.True(t, g.TryAcquire("x"))
	assert.False(t, g.TryAcquire("x"))

	day = day.Add(2 * time.Hour) // past midnight
	assert.True(t, g.TryAcquire("x"))
	assert.Equal(t, 0, g.Remaining())
}

func TestSearchGateZeroLimitDeniesEverything(t *testing.T) {
	g := NewSearchGate(0)
	assert.False(t, g.TryAcquire("any"))
}
