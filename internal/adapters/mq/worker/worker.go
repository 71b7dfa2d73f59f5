// Package worker drains the joint-state queue into the state monitor.
package worker

import (
	"context"
	"fmt"
	"time"

	"github.com/okian/robocloud/internal/domain/model"
	"github.com/okian/robocloud/pkg/logger"
	"github.com/okian/robocloud/pkg/metrics"
)

// Applier consumes one joint-state message, typically state.Monitor.
type Applier interface {
	Update(js model.JointState) error
}

// Queue defines how workers receive messages.
type Queue interface {
	Dequeue(ctx context.Context) <-chan model.JointState
}

// Worker applies queued messages until stopped.
type Worker interface {
	// Run starts the worker loop until ctx is canceled or the queue closes.
	Run(ctx context.Context)

	// Shutdown stops the worker and waits for Run to return.
	Shutdown(ctx context.Context) error
}

// InMemoryWorker applies messages one at a time so state updates keep
// arrival order.
type InMemoryWorker struct {
	queue   Queue
	applier Applier
	name    string

	shutdown chan struct{}
	done     chan struct{}

	logger logger.Logger
}

// NewInMemoryWorker creates a new worker with configuration options.
func NewInMemoryWorker(queue Queue, applier Applier, opts ...Option) *InMemoryWorker {
	w := &InMemoryWorker{
		queue:    queue,
		applier:  applier,
		name:     "state-worker",
		shutdown: make(chan struct{}),
		done:     make(chan struct{}),
	}
	for _, opt := range opts {
		opt(w)
	}
	if w.logger == nil {
		w.logger = logger.Get().Named(w.name)
	}
	return w
}

// Run starts the worker loop.
func (w *InMemoryWorker) Run(ctx context.Context) {
	defer close(w.done)
	metrics.UpdateWorkerActiveCount(1)
	defer metrics.UpdateWorkerActiveCount(0)

	ch := w.queue.Dequeue(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-w.shutdown:
			return
		case js, ok := <-ch:
			if !ok {
				return
			}
			if err := w.apply(js); err != nil {
				w.logger.Warn(ctx, "joint state rejected",
					logger.String("id", js.ID),
					logger.String("source", js.Source),
					logger.Error(err))
			}
		}
	}
}

// Shutdown gracefully stops the worker.
func (w *InMemoryWorker) Shutdown(ctx context.Context) error {
	select {
	case <-w.shutdown:
	default:
		close(w.shutdown)
	}
	select {
	case <-w.done:
		return nil
	case <-ctx.Done():
		w.logger.Warn(ctx, "shutdown timed out")
		return fmt.Errorf("shutdown timed out: %w", ctx.Err())
	}
}

func (w *InMemoryWorker) apply(js model.JointState) error { //nolint:gocritic // hugeParam: passed by value for channel semantics
	start := time.Now()
	defer func() {
		metrics.RecordWorkerProcessingLatency(float64(time.Since(start).Microseconds()) / 1000)
	}()

	if err := w.applier.Update(js); err != nil {
		metrics.RecordWorkerError()
		metrics.RecordErrorByComponent("worker", "apply")
		return err
	}
	metrics.RecordJointStateApplied()
	return nil
}
