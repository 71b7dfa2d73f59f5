package service

import (
	"context"
	"sync/atomic"
	"time"

	"golang.org/x/time/rate"

	"github.com/okian/robocloud/internal/adapters/publisher"
	"github.com/okian/robocloud/internal/domain/cloud"
	"github.com/okian/robocloud/internal/domain/kinematics"
	"github.com/okian/robocloud/internal/domain/transform"
	"github.com/okian/robocloud/pkg/logger"
	"github.com/okian/robocloud/pkg/metrics"
)

const (
	defaultFrequency          = 50.0
	defaultWaitTimeout        = time.Second
	defaultOverrunLogInterval = time.Second
	defaultCapacityHint       = 5000
)

// StateSource is the thread-safe skeletal-state provider the loop samples.
type StateSource interface {
	// WaitForCurrentState blocks up to timeout for a complete state received
	// at or after since.
	WaitForCurrentState(ctx context.Context, since time.Time, timeout time.Duration) bool
	// CurrentStateAndTime returns a private snapshot and its stamp.
	CurrentStateAndTime() (*kinematics.State, time.Time)
}

// LoopState is the phase the loop is in.
type LoopState int32

const (
	Waiting LoopState = iota
	Running
)

func (s LoopState) String() string {
	if s == Running {
		return "running"
	}
	return "waiting"
}

// LoopStats is a point-in-time copy of the loop counters.
type LoopStats struct {
	Frames        uint64
	Overruns      uint64
	WaitTimeouts  uint64
	Resizes       uint64
	PublishErrors uint64
	LastCompute   time.Duration
	Points        int
	Segments      int
	Skipped       int
}

// LoopOption configures a Loop.
type LoopOption func(*Loop)

// WithFrequency sets the target publish rate in Hz.
func WithFrequency(hz float64) LoopOption {
	return func(l *Loop) {
		if hz > 0 {
			l.period = time.Duration(float64(time.Second) / hz)
		}
	}
}

// WithWaitTimeout bounds each wait for a fresh state.
func WithWaitTimeout(d time.Duration) LoopOption {
	return func(l *Loop) {
		if d > 0 {
			l.waitTimeout = d
		}
	}
}

// WithOverrunLogInterval rate-limits the overrun log line.
func WithOverrunLogInterval(d time.Duration) LoopOption {
	return func(l *Loop) {
		if d > 0 {
			l.overrunLog = &rate.Sometimes{Interval: d}
		}
	}
}

// WithLoopClock replaces time.Now.
func WithLoopClock(now func() time.Time) LoopOption {
	return func(l *Loop) {
		if now != nil {
			l.now = now
		}
	}
}

// WithSleep replaces the pacing sleep.
func WithSleep(sleep func(ctx context.Context, d time.Duration)) LoopOption {
	return func(l *Loop) {
		if sleep != nil {
			l.sleep = sleep
		}
	}
}

// WithCapacityHint pre-sizes the frame buffer.
func WithCapacityHint(n int) LoopOption {
	return func(l *Loop) {
		if n > 0 {
			l.capacityHint = n
		}
	}
}

// WithLoopLogger sets the logger.
func WithLoopLogger(lg logger.Logger) LoopOption {
	return func(l *Loop) {
		if lg != nil {
			l.logger = lg
		}
	}
}

// Loop is the real-time driver: it waits for a fresh state, samples every
// segment into the reused frame buffer, publishes and paces to the target
// period. Run and Step must be called from one goroutine; Stats and State
// are safe from any.
type Loop struct {
	stage   *transform.Stage
	source  StateSource
	pub     publisher.Publisher
	frameID string

	period       time.Duration
	waitTimeout  time.Duration
	capacityHint int
	now          func() time.Time
	sleep        func(ctx context.Context, d time.Duration)
	overrunLog   *rate.Sometimes
	logger       logger.Logger

	acc *cloud.Accumulator

	state         atomic.Int32
	frames        atomic.Uint64
	overruns      atomic.Uint64
	waitTimeouts  atomic.Uint64
	resizes       atomic.Uint64
	publishErrors atomic.Uint64
	lastCompute   atomic.Int64
	points        atomic.Int64
	segments      atomic.Int64
	skipped       atomic.Int64
}

// NewLoop creates a loop publishing frames in frameID (the model root link).
func NewLoop(frameID string, stage *transform.Stage, source StateSource, pub publisher.Publisher, opts ...LoopOption) *Loop {
	l := &Loop{
		stage:        stage,
		source:       source,
		pub:          pub,
		frameID:      frameID,
		period:       time.Duration(float64(time.Second) / defaultFrequency),
		waitTimeout:  defaultWaitTimeout,
		capacityHint: defaultCapacityHint,
		now:          time.Now,
		sleep:        sleepCtx,
		overrunLog:   &rate.Sometimes{Interval: defaultOverrunLogInterval},
	}
	for _, opt := range opts {
		opt(l)
	}
	if l.logger == nil {
		l.logger = logger.Named("loop")
	}
	if stage.OnSegment == nil {
		stage.OnSegment = l.logSegment
	}
	return l
}

// Period returns the target period.
func (l *Loop) Period() time.Duration { return l.period }

// State returns the current phase.
func (l *Loop) State() LoopState { return LoopState(l.state.Load()) }

// Run steps until ctx is cancelled.
func (l *Loop) Run(ctx context.Context) {
	l.logger.Info(ctx, "starting",
		logger.String("frame_id", l.frameID),
		logger.Duration("period", l.period),
		logger.String("mode", l.stage.Store().Mode().String()),
		logger.Int("segments", l.stage.Store().Len()))
	for ctx.Err() == nil {
		l.Step(ctx)
	}
	l.state.Store(int32(Waiting))
}

// Step runs one Waiting phase and, if a fresh state arrived, one Running
// phase. It reports whether a frame was produced.
func (l *Loop) Step(ctx context.Context) bool {
	l.state.Store(int32(Waiting))
	if !l.source.WaitForCurrentState(ctx, l.now(), l.waitTimeout) {
		if ctx.Err() != nil {
			return false
		}
		l.waitTimeouts.Add(1)
		metrics.RecordStateWaitTimeout()
		l.logger.Warn(ctx, "waiting for complete state", logger.Duration("timeout", l.waitTimeout))
		return false
	}

	l.state.Store(int32(Running))
	start := l.now()
	st, stamp := l.source.CurrentStateAndTime()
	frame := l.compute(ctx, st, stamp)

	if err := l.pub.Publish(ctx, frame); err != nil {
		l.publishErrors.Add(1)
		metrics.RecordPublishError()
		metrics.RecordErrorByComponent("loop", "publish")
		l.logger.Error(ctx, "publish failed", logger.Error(err))
	} else {
		l.frames.Add(1)
		metrics.RecordFramePublished()
	}

	elapsed := l.now().Sub(start)
	l.lastCompute.Store(int64(elapsed))
	metrics.RecordFrameComputeLatency(float64(elapsed.Microseconds()) / 1000)
	l.logger.Debug(ctx, "computation time", logger.Duration("elapsed", elapsed))

	if elapsed < l.period {
		l.sleep(ctx, l.period-elapsed)
		return true
	}
	l.overruns.Add(1)
	metrics.RecordFrameOverrun()
	l.overrunLog.Do(func() {
		l.logger.Info(ctx, "loop is slower than expected period",
			logger.Duration("elapsed", elapsed),
			logger.Duration("period", l.period))
	})
	return true
}

func (l *Loop) compute(ctx context.Context, st transform.TransformSource, stamp time.Time) *cloud.Frame {
	if l.acc == nil {
		l.acc = cloud.NewAccumulator(l.capacityHint)
	}
	l.logger.Debug(ctx, "frame", logger.String("frame_id", l.frameID))
	l.acc.Reset()
	res := l.stage.Run(st, l.acc)
	frame := l.acc.Finalize(l.frameID, stamp)
	if l.acc.Resized() {
		l.resizes.Add(1)
		metrics.RecordFrameResize()
		l.logger.Warn(ctx, "segment geometry changed size, frame buffer resized",
			logger.Int("points", frame.Len()))
	}

	l.points.Store(int64(res.Points))
	l.segments.Store(int64(res.Segments))
	l.skipped.Store(int64(res.Skipped))
	metrics.UpdateFrameSize(res.Points, res.Segments)
	if res.Skipped > 0 {
		metrics.RecordShapesSkipped(res.Skipped)
	}
	return frame
}

func (l *Loop) logSegment(name string, points int) {
	l.logger.Debug(context.Background(), "segment sampled",
		logger.String("segment", name),
		logger.Int("vertex_count", points))
}

// Stats returns a copy of the loop counters.
func (l *Loop) Stats() LoopStats {
	return LoopStats{
		Frames:        l.frames.Load(),
		Overruns:      l.overruns.Load(),
		WaitTimeouts:  l.waitTimeouts.Load(),
		Resizes:       l.resizes.Load(),
		PublishErrors: l.publishErrors.Load(),
		LastCompute:   time.Duration(l.lastCompute.Load()),
		Points:        int(l.points.Load()),
		Segments:      int(l.segments.Load()),
		Skipped:       int(l.skipped.Load()),
	}
}

func sleepCtx(ctx context.Context, d time.Duration) {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
	case <-ctx.Done():
	}
}
