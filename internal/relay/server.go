package relay

import (
	"context"
	"sync"
	"time"

	"remote-support-backend/internal/broadcast"
	"remote-support-backend/internal/room"

	"go.uber.org/zap"
)

type Config struct {
	HostPolicy          room.HostPolicy
	SweepInterval       time.Duration
	InactivityThreshold time.Duration
	KeyPrefix           string
	Handler             HandlerConfig
}

// Relay wires the control and screen channels, each with its own registry,
// hub and sweeper.
type Relay struct {
	Control  *Hub
	Screen   *Hub
	Handler  *Handler
	sweepers []*room.Sweeper
	logger   *zap.Logger
	wg       sync.WaitGroup
}

func New(cfg Config, bus broadcast.Bus, logger *zap.Logger) *Relay {
	if logger == nil {
		logger = zap.NewNop()
	}

	r := &Relay{logger: logger}
	r.Control = r.newChannel(ChannelControl, cfg, bus)
	r.Screen = r.newChannel(ChannelScreen, cfg, bus)
	r.Handler = NewHandler(r.Control, r.Screen, cfg.Handler, logger)
	return r
}

func (r *Relay) newChannel(ch Channel, cfg Config, bus broadcast.Bus) *Hub {
	registry := room.NewRegistry(cfg.HostPolicy, nil)
	hub := NewHub(HubOptions{
		Channel:   ch,
		Registry:  registry,
		Bus:       bus,
		KeyPrefix: cfg.KeyPrefix,
		Logger:    r.logger,
	})
	sweeper := room.NewSweeper(hub.Sweep, cfg.SweepInterval, cfg.InactivityThreshold,
		r.logger.With(zap.String("channel", string(ch))))
	r.sweepers = append(r.sweepers, sweeper)
	return hub
}

// Start runs both hubs and their sweepers until ctx is cancelled.
func (r *Relay) Start(ctx context.Context) {
	for _, hub := range []*Hub{r.Control, r.Screen} {
		r.wg.Add(1)
		go func(h *Hub) {
			defer r.wg.Done()
			h.Run(ctx)
		}(hub)
	}
	for _, sw := range r.sweepers {
		r.wg.Add(1)
		go func(s *room.Sweeper) {
			defer r.wg.Done()
			s.Run(ctx)
		}(sw)
	}
}

// Wait blocks until every goroutine started by Start has returned.
func (r *Relay) Wait() {
	r.wg.Wait()
}
