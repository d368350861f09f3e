package broadcast

import (
	"context"
	"errors"
	"strings"
)

var ErrClosed = errors.New("broadcast: bus closed")

// Bus propagates room-scoped payloads between relay processes. Delivery is
// best effort: no ordering or exactly-once guarantee across processes.
type Bus interface {
	Connect(ctx context.Context) error
	Publish(ctx context.Context, roomKey string, payload []byte) error
	// Subscribe streams payloads published to roomKey until ctx is done,
	// after which the returned channel is closed.
	Subscribe(ctx context.Context, roomKey string) (<-chan []byte, error)
	Close() error
}

// RoomKey builds the pub/sub key for a room on a given channel.
func RoomKey(prefix, channel, code string) string {
	parts := make([]string, 0, 3)
	if prefix != "" {
		parts = append(parts, prefix)
	}
	parts = append(parts, channel, code)
	return strings.Join(parts, ":")
}
