package room

import (
	"context"
	"time"

	"go.uber.org/zap"
)

const (
	DefaultSweepInterval       = 30 * time.Minute
	DefaultInactivityThreshold = 30 * time.Minute
)

// SweepFunc deletes the rooms idle for longer than threshold and returns
// them. Registry.Sweep is one; a relay hub wraps it so deletion and member
// notification happen in one step of its loop.
type SweepFunc func(threshold time.Duration) []Expired

// Sweeper runs a SweepFunc every interval.
type Sweeper struct {
	sweep     SweepFunc
	interval  time.Duration
	threshold time.Duration
	logger    *zap.Logger
}

func NewSweeper(sweep SweepFunc, interval, threshold time.Duration, logger *zap.Logger) *Sweeper {
	if interval <= 0 {
		interval = DefaultSweepInterval
	}
	if threshold <= 0 {
		threshold = DefaultInactivityThreshold
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Sweeper{
		sweep:     sweep,
		interval:  interval,
		threshold: threshold,
		logger:    logger,
	}
}

// Run sweeps every interval until ctx is cancelled.
func (s *Sweeper) Run(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	s.logger.Info("room sweeper started",
		zap.Duration("interval", s.interval),
		zap.Duration("threshold", s.threshold),
	)

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("room sweeper stopped")
			return
		case <-ticker.C:
			s.SweepOnce()
		}
	}
}

func (s *Sweeper) SweepOnce() []Expired {
	expired := s.sweep(s.threshold)
	if len(expired) == 0 {
		return nil
	}

	for _, e := range expired {
		s.logger.Info("room expired",
			zap.String("room", e.Code),
			zap.Int("members", len(e.Members)),
		)
	}
	return expired
}
