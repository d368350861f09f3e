package broadcast

import (
	"context"
	"sync"
)

// Memory is an in-process Bus. Several relay hubs sharing one Memory behave
// like processes sharing a Redis server.
type Memory struct {
	mu      sync.Mutex
	subs    map[string]map[chan []byte]struct{}
	closed  bool
	dropped int
	failOn  error
}

func NewMemory() *Memory {
	return &Memory{subs: make(map[string]map[chan []byte]struct{})}
}

// FailConnect makes the next Connect return err.
func (m *Memory) FailConnect(err error) {
	m.mu.Lock()
	m.failOn = err
	m.mu.Unlock()
}

func (m *Memory) Connect(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.failOn != nil {
		err := m.failOn
		m.failOn = nil
		return err
	}
	return nil
}

func (m *Memory) Publish(ctx context.Context, roomKey string, payload []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return ErrClosed
	}
	for ch := range m.subs[roomKey] {
		msg := append([]byte(nil), payload...)
		select {
		case ch <- msg:
		default:
			m.dropped++
		}
	}
	return nil
}

func (m *Memory) Subscribe(ctx context.Context, roomKey string) (<-chan []byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return nil, ErrClosed
	}

	ch := make(chan []byte, 256)
	if m.subs[roomKey] == nil {
		m.subs[roomKey] = make(map[chan []byte]struct{})
	}
	m.subs[roomKey][ch] = struct{}{}

	go func() {
		<-ctx.Done()
		m.unsubscribe(roomKey, ch)
	}()

	return ch, nil
}

func (m *Memory) unsubscribe(roomKey string, ch chan []byte) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.subs[roomKey][ch]; !ok {
		return
	}
	delete(m.subs[roomKey], ch)
	if len(m.subs[roomKey]) == 0 {
		delete(m.subs, roomKey)
	}
	close(ch)
}

// Subscribers reports how many live subscriptions roomKey has.
func (m *Memory) Subscribers(roomKey string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.subs[roomKey])
}

func (m *Memory) Dropped() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.dropped
}

func (m *Memory) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return nil
	}
	m.closed = true
	for key, set := range m.subs {
		for ch := range set {
			close(ch)
		}
		delete(m.subs, key)
	}
	return nil
}
