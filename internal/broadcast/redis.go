package broadcast

import (
	"context"
	"fmt"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

type RedisOptions struct {
	Addr     string
	Password string
	DB       int
}

type RedisBus struct {
	client *redis.Client
	logger *zap.Logger
}

func NewRedisBus(opts RedisOptions, logger *zap.Logger) *RedisBus {
	if logger == nil {
		logger = zap.NewNop()
	}

	return &RedisBus{
		client: redis.NewClient(&redis.Options{
			Addr:     opts.Addr,
			Password: opts.Password,
			DB:       opts.DB,
		}),
		logger: logger,
	}
}

func (b *RedisBus) Connect(ctx context.Context) error {
	if err := b.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("broadcast connect: redis ping: %w", err)
	}
	return nil
}

func (b *RedisBus) Publish(ctx context.Context, roomKey string, payload []byte) error {
	if roomKey == "" {
		return fmt.Errorf("broadcast publish: room key required")
	}
	if err := b.client.Publish(ctx, roomKey, payload).Err(); err != nil {
		return fmt.Errorf("broadcast publish: redis publish: %w", err)
	}
	return nil
}

func (b *RedisBus) Subscribe(ctx context.Context, roomKey string) (<-chan []byte, error) {
	sub := b.client.Subscribe(ctx, roomKey)
	if _, err := sub.Receive(ctx); err != nil {
		sub.Close()
		return nil, fmt.Errorf("broadcast subscribe %s: %w", roomKey, err)
	}

	out := make(chan []byte, 64)
	go func() {
		defer close(out)
		defer sub.Close()

		b.logger.Debug("subscribed to room channel", zap.String("key", roomKey))
		ch := sub.Channel()
		for {
			select {
			case <-ctx.Done():
				b.logger.Debug("unsubscribed from room channel", zap.String("key", roomKey))
				return
			case msg, ok := <-ch:
				if !ok {
					return
				}
				select {
				case out <- []byte(msg.Payload):
				case <-ctx.Done():
					return
				}
			}
		}
	}()

	return out, nil
}

func (b *RedisBus) Close() error {
	return b.client.Close()
}

// Dial connects bus and returns it, or logs the failure and returns nil so
// the caller runs in single-process mode.
func Dial(ctx context.Context, bus Bus, logger *zap.Logger) Bus {
	if bus == nil {
		return nil
	}
	if err := bus.Connect(ctx); err != nil {
		if logger != nil {
			logger.Warn("broadcast bus unavailable, running single-process", zap.Error(err))
		}
		_ = bus.Close()
		return nil
	}
	return bus
}
