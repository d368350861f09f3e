package queue

import (
	"context"
	"errors"
	"sync"

	"go.uber.org/zap"
)

var ErrQueueClosed = errors.New("request queue closed")

type Job struct {
	Fn   func() error
	Errc chan error
}

// RequestQueueManager runs HTTP handler bodies on a fixed pool of workers so
// a burst of requests cannot fan out into unbounded goroutines.
type RequestQueueManager struct {
	JobQueue   chan Job
	MaxWorkers int
	logger     *zap.Logger
	wg         sync.WaitGroup

	mu     sync.RWMutex
	closed bool
}

func NewRequestQueueManager(queueSize int, maxWorkers int, logger *zap.Logger) *RequestQueueManager {
	if logger == nil {
		logger = zap.NewNop()
	}
	manager := &RequestQueueManager{
		JobQueue:   make(chan Job, queueSize),
		MaxWorkers: maxWorkers,
		logger:     logger,
	}
	manager.startWorkers()
	return manager
}

func (rqm *RequestQueueManager) startWorkers() {
	for i := 0; i < rqm.MaxWorkers; i++ {
		rqm.wg.Add(1)
		go func(workerID int) {
			defer rqm.wg.Done()
			rqm.logger.Debug("queue worker started", zap.Int("worker", workerID))
			for job := range rqm.JobQueue {
				err := job.Fn()
				if job.Errc != nil {
					job.Errc <- err
				}
			}
			rqm.logger.Debug("queue worker stopped", zap.Int("worker", workerID))
		}(i)
	}
}

// EnqueueJob blocks until the job is accepted, ctx is done or the queue is
// shut down.
func (rqm *RequestQueueManager) EnqueueJob(ctx context.Context, job Job) error {
	rqm.mu.RLock()
	defer rqm.mu.RUnlock()
	if rqm.closed {
		return ErrQueueClosed
	}

	select {
	case rqm.JobQueue <- job:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (rqm *RequestQueueManager) Depth() int {
	return len(rqm.JobQueue)
}

func (rqm *RequestQueueManager) Shutdown() {
	rqm.mu.Lock()
	if rqm.closed {
		rqm.mu.Unlock()
		return
	}
	rqm.closed = true
	close(rqm.JobQueue)
	rqm.mu.Unlock()
	rqm.wg.Wait()
}
