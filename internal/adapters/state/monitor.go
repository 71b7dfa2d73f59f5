// Package state tracks the latest skeletal state fed by the ingest worker and
// hands consistent snapshots to the publish loop.
package state

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/okian/robocloud/internal/domain/kinematics"
	"github.com/okian/robocloud/internal/domain/model"
	"github.com/okian/robocloud/internal/domain/robot"
)

// Monitor is a thread-safe snapshot provider. Writers call Update; readers
// wait for a fresh state and take a private copy.
type Monitor struct {
	mu          sync.Mutex
	state       *kinematics.State
	lastReceive time.Time
	lastStamp   time.Time
	updates     uint64
	changed     chan struct{} // closed and replaced on every update
	now         func() time.Time
}

// NewMonitor creates a Monitor with every joint unset.
func NewMonitor(m *robot.Model, opts ...Option) *Monitor {
	mon := &Monitor{
		state:   kinematics.NewState(m),
		changed: make(chan struct{}),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(mon)
	}
	return mon
}

// Update applies the positions of known joints; unknown names are ignored.
// Messages with non-finite values or mismatched lengths are rejected whole.
func (m *Monitor) Update(js model.JointState) error { //nolint:gocritic // hugeParam: matches worker.Applier
	if err := js.Validate(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidState, err)
	}
	now := m.now()

	m.mu.Lock()
	defer m.mu.Unlock()
	m.state.SetPositions(js.Map())
	m.lastReceive = now
	m.lastStamp = js.Stamp
	if m.lastStamp.IsZero() {
		m.lastStamp = now
	}
	m.updates++
	close(m.changed)
	m.changed = make(chan struct{})
	return nil
}

// WaitForCurrentState blocks until every active joint has a value and an
// update was received at or after since. It returns false on timeout or when
// ctx is done.
func (m *Monitor) WaitForCurrentState(ctx context.Context, since time.Time, timeout time.Duration) bool {
	timer := time.NewTimer(timeout)
	defer timer.Stop()
	for {
		m.mu.Lock()
		fresh := m.updates > 0 && !m.lastReceive.Before(since) && m.state.Complete()
		changed := m.changed
		m.mu.Unlock()
		if fresh {
			return true
		}
		select {
		case <-changed:
		case <-timer.C:
			return false
		case <-ctx.Done():
			return false
		}
	}
}

// CurrentStateAndTime returns a private copy of the state, link poses already
// computed, and its stamp.
func (m *Monitor) CurrentStateAndTime() (*kinematics.State, time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state.Clone(), m.lastStamp
}

// Stats reports update counters for /stats.
func (m *Monitor) Stats() map[string]interface{} {
	m.mu.Lock()
	defer m.mu.Unlock()
	return map[string]interface{}{
		"updates":       m.updates,
		"complete":      m.state.Complete(),
		"last_received": m.lastReceive,
	}
}
