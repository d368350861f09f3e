package broadcast

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRoomKey(t *testing.T) {
	assert.Equal(t, "relay:control:ABC1", RoomKey("relay", "control", "ABC1"))
	assert.Equal(t, "screen:ABC1", RoomKey("", "screen", "ABC1"))
}

func TestMemoryPublishReachesSubscribers(t *testing.T) {
	bus := NewMemory()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	first, err := bus.Subscribe(ctx, "k")
	require.NoError(t, err)
	second, err := bus.Subscribe(ctx, "k")
	require.NoError(t, err)
	other, err := bus.Subscribe(ctx, "other")
	require.NoError(t, err)

	require.NoError(t, bus.Publish(ctx, "k", []byte("hello")))

	for _, ch := range []<-chan []byte{first, second} {
		select {
		case msg := <-ch:
			assert.Equal(t, "hello", string(msg))
		case <-time.After(time.Second):
			t.Fatal("payload not delivered")
		}
	}

	select {
	case msg := <-other:
		t.Fatalf("unexpected payload on other key: %s", msg)
	default:
	}
}

func TestMemoryUnsubscribeOnCancel(t *testing.T) {
	bus := NewMemory()
	ctx, cancel := context.WithCancel(context.Background())

	ch, err := bus.Subscribe(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, 1, bus.Subscribers("k"))

	cancel()
	select {
	case _, ok := <-ch:
		assert.False(t, ok)
	case <-time.After(time.Second):
		t.Fatal("subscription channel not closed")
	}
	assert.Equal(t, 0, bus.Subscribers("k"))
}

func TestMemoryClose(t *testing.T) {
	bus := NewMemory()
	require.NoError(t, bus.Close())
	require.NoError(t, bus.Close())

	assert.ErrorIs(t, bus.Publish(context.Background(), "k", nil), ErrClosed)
	_, err := bus.Subscribe(context.Background(), "k")
	assert.ErrorIs(t, err, ErrClosed)
}

func TestDialFallsBackToSingleProcess(t *testing.T) {
	bus := NewMemory()
	bus.FailConnect(errors.New("connection refused"))

	assert.Nil(t, Dial(context.Background(), bus, nil))
	assert.Nil(t, Dial(context.Background(), nil, nil))

	healthy := NewMemory()
	assert.Equal(t, Bus(healthy), Dial(context.Background(), healthy, nil))
}
