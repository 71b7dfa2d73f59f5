// Package service wires joint-state ingest to the publish loop.
package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/okian/robocloud/internal/adapters/mq/queue"
	"github.com/okian/robocloud/internal/adapters/mq/worker"
	"github.com/okian/robocloud/internal/adapters/publisher"
	"github.com/okian/robocloud/internal/adapters/state"
	"github.com/okian/robocloud/internal/domain/dedupe"
	"github.com/okian/robocloud/internal/domain/model"
	"github.com/okian/robocloud/internal/domain/robot"
	"github.com/okian/robocloud/internal/domain/transform"
	"github.com/okian/robocloud/pkg/logger"
	"github.com/okian/robocloud/pkg/metrics"
)

const (
	defaultQueueSize       = 1024
	defaultDedupeSize      = 4096
	defaultShutdownTimeout = 5 * time.Second
)

// Service owns the ingest chain (dedupe, queue, worker, state monitor) and
// the publish loop.
type Service struct {
	mu sync.RWMutex

	// Core components
	model   *robot.Model
	monitor *state.Monitor
	deduper dedupe.Deduper
	queue   *queue.InMemoryQueue
	worker  *worker.InMemoryWorker
	loop    *Loop

	// Configuration
	queueSize   int
	dedupeSize  int
	loopOptions []LoopOption
	clock       func() time.Time

	// State
	runID   string
	started bool
	cancel  context.CancelFunc
	wg      sync.WaitGroup

	// Logging
	logger logger.Logger
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithQueueSize sets the capacity of the joint-state queue.
func WithQueueSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.queueSize = size
		}
	}
}

// WithDedupeSize sets how many message ids are remembered.
func WithDedupeSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.dedupeSize = size
		}
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(logger logger.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithLoopOptions forwards options to the publish loop.
func WithLoopOptions(opts ...LoopOption) Option {
	return func(s *Service) {
		s.loopOptions = append(s.loopOptions, opts...)
	}
}

// WithClock replaces time.Now for the state monitor and loop.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.clock = now
		}
	}
}

// New constructs a Service publishing frames of stage to pub.
func New(m *robot.Model, stage *transform.Stage, pub publisher.Publisher, opts ...Option) *Service {
	s := &Service{
		model:      m,
		queueSize:  defaultQueueSize,
		dedupeSize: defaultDedupeSize,
		clock:      time.Now,
		runID:      uuid.NewString(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = logger.Named("service")
	}
	s.monitor = state.NewMonitor(m, state.WithClock(s.clock))
	loopOpts := append([]LoopOption{WithLoopClock(s.clock)}, s.loopOptions...)
	s.loop = NewLoop(m.RootLink(), stage, s.monitor, pub, loopOpts...)
	return s
}

// Start initializes the ingest chain and launches the worker and the loop.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}

	s.deduper = dedupe.NewInMemoryDeduper(dedupe.WithMaxSize(s.dedupeSize))
	s.queue = queue.NewInMemoryQueue(queue.WithCapacity(s.queueSize))
	s.worker = worker.NewInMemoryWorker(s.queue, s.monitor)

	runCtx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	s.wg.Add(2)
	go func() {
		defer s.wg.Done()
		s.worker.Run(runCtx)
	}()
	go func() {
		defer s.wg.Done()
		s.loop.Run(runCtx)
	}()

	s.started = true
	s.logger.Info(ctx, "service started",
		logger.String("run_id", s.runID),
		logger.String("model", s.model.Name),
		logger.Int("active_joints", len(s.model.ActiveJoints())),
		logger.Int("queue_size", s.queueSize),
		logger.Int("dedupe_size", s.dedupeSize))
	return nil
}

// Stop stops the loop and the worker and closes the queue.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), defaultShutdownTimeout)
	defer cancel()

	s.logger.Info(ctx, "stopping service...")
	_ = s.queue.Close()
	s.cancel()
	if err := s.worker.Shutdown(ctx); err != nil {
		s.logger.Warn(ctx, "worker shutdown", logger.Error(err))
	}
	s.wg.Wait()

	s.started = false
	s.logger.Info(ctx, "service stopped", logger.Uint64("frames", s.loop.Stats().Frames))
}

// Submit validates js, drops replays by id and queues it for the state
// worker. It returns model.ErrInvalidJointState, dedupe.ErrDuplicate,
// queue.ErrQueueFull or queue.ErrQueueClosed.
func (s *Service) Submit(ctx context.Context, js model.JointState) error { //nolint:gocritic // hugeParam: queued by value
	metrics.RecordJointStateMessage(js.Source)
	if err := js.Validate(); err != nil {
		metrics.RecordJointStateRejected("invalid")
		return err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.started {
		metrics.RecordJointStateRejected("closed")
		return fmt.Errorf("%w: service not started", queue.ErrQueueClosed)
	}

	if js.ID != "" && s.deduper.SeenAndRecord(ctx, js.ID) {
		metrics.RecordJointStateRejected("duplicate")
		s.logger.Debug(ctx, "duplicate joint state", logger.String("id", js.ID))
		return dedupe.ErrDuplicate
	}
	if err := s.queue.Enqueue(ctx, js); err != nil {
		if js.ID != "" {
			s.deduper.Unrecord(ctx, js.ID)
		}
		metrics.RecordJointStateRejected("queue")
		return err
	}
	return nil
}

// Loop returns the publish loop.
func (s *Service) Loop() *Loop {
	return s.loop
}

// RunID identifies this process run in logs and /stats.
func (s *Service) RunID() string {
	return s.runID
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ls := s.loop.Stats()
	stats := map[string]interface{}{
		"run_id":           s.runID,
		"started":          s.started,
		"loop_state":       s.loop.State().String(),
		"period_ms":        float64(s.loop.Period().Microseconds()) / 1000,
		"frames_published": ls.Frames,
		"overruns":         ls.Overruns,
		"wait_timeouts":    ls.WaitTimeouts,
		"resizes":          ls.Resizes,
		"publish_errors":   ls.PublishErrors,
		"last_compute_ms":  float64(ls.LastCompute.Microseconds()) / 1000,
		"points":           ls.Points,
		"segments":         ls.Segments,
		"skipped_shapes":   ls.Skipped,
		"queue_size":       s.queueSize,
		"dedupe_size":      s.dedupeSize,
		"state":            s.monitor.Stats(),
	}
	if s.started {
		queueLen := s.queue.Len()
		stats["queue_length"] = queueLen
		stats["dedupe_entries"] = s.deduper.Size()
		metrics.UpdateQueueSize(queueLen)
	}
	return stats
}
