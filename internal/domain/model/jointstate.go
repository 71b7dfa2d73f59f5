// Package model contains domain models passed between layers.
package model

import (
	"errors"
	"fmt"
	"math"
	"time"
)

// ErrInvalidJointState marks a message that cannot be applied.
var ErrInvalidJointState = errors.New("invalid joint state")

// JointState is one skeletal-state sample: joint positions keyed by name.
type JointState struct {
	ID        string    // message id used for replay detection; may be empty
	Source    string    // ingest channel, e.g. "http", "udp"
	Stamp     time.Time // sample time; zero means "use receive time"
	Names     []string
	Positions []float64
}

// Validate checks that names and positions pair up and hold finite values.
func (js *JointState) Validate() error {
	if len(js.Names) != len(js.Positions) {
		return fmt.Errorf("%w: %d names, %d positions", ErrInvalidJointState, len(js.Names), len(js.Positions))
	}
	for i, q := range js.Positions {
		if js.Names[i] == "" {
			return fmt.Errorf("%w: empty joint name at %d", ErrInvalidJointState, i)
		}
		if math.IsNaN(q) || math.IsInf(q, 0) {
			return fmt.Errorf("%w: joint %q is not finite", ErrInvalidJointState, js.Names[i])
		}
	}
	return nil
}

// Map returns positions keyed by joint name. Later duplicates win.
func (js *JointState) Map() map[string]float64 {
	m := make(map[string]float64, len(js.Names))
	for i, name := range js.Names {
		m[name] = js.Positions[i]
	}
	return m
}
