package relay

import (
	"context"
	"fmt"

	"remote-support-backend/internal/broadcast"

	"github.com/vmihailenco/msgpack/v5"
	"go.uber.org/zap"
)

// remoteMessage is what a hub publishes for every routed event so that
// relay processes sharing the bus can deliver it to their own members.
type remoteMessage struct {
	Origin  string        `msgpack:"origin"`
	Kind    EventKind     `msgpack:"kind"`
	Code    string        `msgpack:"code"`
	Sender  string        `msgpack:"sender"`
	Target  Target        `msgpack:"target"`
	Class   DeliveryClass `msgpack:"class"`
	Payload []byte        `msgpack:"payload"`
}

func encodeRemote(m remoteMessage) ([]byte, error) {
	b, err := msgpack.Marshal(&m)
	if err != nil {
		return nil, fmt.Errorf("relay remote: marshal: %w", err)
	}
	return b, nil
}

func decodeRemote(b []byte) (remoteMessage, error) {
	var m remoteMessage
	if err := msgpack.Unmarshal(b, &m); err != nil {
		return remoteMessage{}, fmt.Errorf("relay remote: unmarshal: %w", err)
	}
	return m, nil
}

func (h *Hub) roomKey(code string) string {
	return broadcast.RoomKey(h.keyPrefix, string(h.channel), code)
}

// publish queues m for the publisher goroutine. Bus latency never stalls the
// hub; when the queue is full the message is not propagated.
func (h *Hub) publish(m remoteMessage) {
	if h.bus == nil {
		return
	}
	m.Origin = h.origin
	select {
	case h.outgoing <- m:
	default:
		h.logger.Warn("remote publish queue full", zap.String("room", m.Code), zap.String("kind", string(m.Kind)))
	}
}

func (h *Hub) publishLoop(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case m := <-h.outgoing:
			payload, err := encodeRemote(m)
			if err != nil {
				h.logger.Error("encode remote message", zap.Error(err))
				continue
			}
			if err := h.bus.Publish(ctx, h.roomKey(m.Code), payload); err != nil {
				h.logger.Warn("remote publish failed", zap.String("room", m.Code), zap.Error(err))
				continue
			}
			incRemote(h.channel, "out")
		}
	}
}

// subscribe starts relaying bus traffic for code into the hub loop.
func (h *Hub) subscribe(code string) {
	if h.bus == nil {
		return
	}
	if _, ok := h.subs[code]; ok {
		return
	}

	ctx, cancel := context.WithCancel(h.ctx)
	h.subs[code] = cancel
	key := h.roomKey(code)

	go func() {
		ch, err := h.bus.Subscribe(ctx, key)
		if err != nil {
			h.logger.Warn("remote subscribe failed", zap.String("key", key), zap.Error(err))
			return
		}
		for payload := range ch {
			select {
			case h.remote <- payload:
			case <-ctx.Done():
				return
			}
		}
	}()
}

func (h *Hub) unsubscribe(code string) {
	if cancel, ok := h.subs[code]; ok {
		cancel()
		delete(h.subs, code)
	}
}

// deliverRemote hands a message published by another process to the local
// members its route selects.
func (h *Hub) deliverRemote(payload []byte) {
	m, err := decodeRemote(payload)
	if err != nil {
		h.logger.Warn("dropping remote message", zap.Error(err))
		return
	}
	if m.Origin == h.origin {
		return
	}
	incRemote(h.channel, "in")

	rm, ok := h.registry.Get(m.Code)
	if !ok {
		return
	}
	for _, id := range targets(rm, m.Target, m.Sender) {
		h.deliver(id, m.Payload, m.Class)
	}
}
