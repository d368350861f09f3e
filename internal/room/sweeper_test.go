package room

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSweepOnceReturnsExpiredRooms(t *testing.T) {
	clock := newFakeClock()
	reg := NewRegistry(PolicyExplicitRole, clock.Now)
	_, _ = reg.Join("A", "ABC1", RoleHost)
	_, _ = reg.Join("B", "ABC1", RoleClient)

	sw := NewSweeper(reg.Sweep, time.Minute, 30*time.Minute, nil)

	assert.Nil(t, sw.SweepOnce())

	clock.Advance(31 * time.Minute)
	expired := sw.SweepOnce()
	require.Len(t, expired, 1)
	assert.Equal(t, []string{"A", "B"}, expired[0].Members)

	assert.Nil(t, sw.SweepOnce())
}

func TestSweeperPassesThreshold(t *testing.T) {
	var got time.Duration
	sw := NewSweeper(func(threshold time.Duration) []Expired {
		got = threshold
		return nil
	}, time.Minute, 7*time.Minute, nil)

	sw.SweepOnce()
	assert.Equal(t, 7*time.Minute, got)
}

func TestSweeperRunStopsWithContext(t *testing.T) {
	clock := newFakeClock()
	reg := NewRegistry(PolicyExplicitRole, clock.Now)
	_, _ = reg.Join("A", "ABC1", RoleHost)
	clock.Advance(time.Hour)

	var swept atomic.Int32
	sw := NewSweeper(func(threshold time.Duration) []Expired {
		expired := reg.Sweep(threshold)
		swept.Add(int32(len(expired)))
		return expired
	}, 5*time.Millisecond, 30*time.Minute, nil)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		sw.Run(ctx)
		close(done)
	}()

	require.Eventually(t, func() bool { return swept.Load() == 1 }, 2*time.Second, 5*time.Millisecond,
		"sweeper never expired the idle room")

	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("sweeper did not stop after cancel")
	}
	assert.Equal(t, 0, reg.Len())
}

func TestSweeperDefaults(t *testing.T) {
	sw := NewSweeper(NewRegistry("", nil).Sweep, 0, 0, nil)
	assert.Equal(t, DefaultSweepInterval, sw.interval)
	assert.Equal(t, DefaultInactivityThreshold, sw.threshold)
}
