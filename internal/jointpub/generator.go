package jointpub

import (
	"math"
	"time"

	"github.com/google/uuid"

	"github.com/okian/robocloud/internal/domain/types"
)

// Generator produces sinusoidal joint trajectories. Joint i is phase shifted
// by i/n of a cycle so neighbouring joints do not move in lockstep.
type Generator struct {
	topic     string
	names     []string
	amplitude float64
	omega     float64
}

// NewGenerator creates a generator for names.
func NewGenerator(topic string, names []string, amplitude, frequency float64) *Generator {
	return &Generator{
		topic:     topic,
		names:     append([]string(nil), names...),
		amplitude: amplitude,
		omega:     2 * math.Pi * frequency,
	}
}

// Positions returns every joint's position elapsed into the run.
func (g *Generator) Positions(elapsed time.Duration) []float64 {
	t := elapsed.Seconds()
	n := float64(len(g.names))
	out := make([]float64, len(g.names))
	for i := range g.names {
		phase := 2 * math.Pi * float64(i) / n
		out[i] = g.amplitude * math.Sin(g.omega*t+phase)
	}
	return out
}

// Message builds the wire message for elapsed, stamped with stamp and a
// fresh id.
func (g *Generator) Message(elapsed time.Duration, stamp time.Time) types.JointStateMessage {
	return types.JointStateMessage{
		ID:         uuid.NewString(),
		Topic:      g.topic,
		StampNanos: stamp.UnixNano(),
		Name:       g.names,
		Position:   g.Positions(elapsed),
	}
}
