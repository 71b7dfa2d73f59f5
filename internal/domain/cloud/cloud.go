// Package cloud holds the per-frame point buffer and its wire encodings.
package cloud

import (
	"time"
)

// Point is one output coordinate in the frame's reference frame.
type Point struct {
	X, Y, Z float32
}

// Frame is one published point-cloud snapshot. Points and Tags always have
// the same length; Tags[i] is the dense index of the segment Points[i] came
// from.
type Frame struct {
	FrameID string
	Stamp   time.Time
	Seq     uint64
	Points  []Point
	Tags    []uint32
}

// Len returns the number of points.
func (f *Frame) Len() int {
	return len(f.Points)
}

// Intensity returns the segment tag of point i as the "intensity" channel value.
func (f *Frame) Intensity(i int) float32 {
	return float32(f.Tags[i])
}

// Accumulator is a reusable frame buffer. The first frame appends; once
// finalized, later frames overwrite slots in place so index j keeps
// addressing the same (segment, vertex) pair.
type Accumulator struct {
	points      []Point
	tags        []uint32
	cursor      int
	initialized bool
	resized     bool
	seq         uint64
	frame       Frame
}

// NewAccumulator creates an empty accumulator; capacity is a sizing hint for
// the first frame.
func NewAccumulator(capacity int) *Accumulator {
	return &Accumulator{
		points: make([]Point, 0, capacity),
		tags:   make([]uint32, 0, capacity),
	}
}

// Reset moves the write cursor to 0 without shrinking storage.
func (a *Accumulator) Reset() {
	a.cursor = 0
	a.resized = false
}

// Write stores p with its segment tag at the cursor and advances it.
func (a *Accumulator) Write(p Point, tag uint32) {
	if !a.initialized || a.cursor >= len(a.points) {
		if a.initialized {
			a.resized = true
		}
		a.points = append(a.points, p)
		a.tags = append(a.tags, tag)
		a.cursor++
		return
	}
	a.points[a.cursor] = p
	a.tags[a.cursor] = tag
	a.cursor++
}

// Finalize stamps the frame and returns it. The returned Frame aliases the
// accumulator storage and is valid until the next Reset.
func (a *Accumulator) Finalize(frameID string, stamp time.Time) *Frame {
	if a.initialized && a.cursor < len(a.points) {
		// Geometry shrank since the first frame.
		a.points = a.points[:a.cursor]
		a.tags = a.tags[:a.cursor]
		a.resized = true
	}
	a.initialized = true
	a.seq++
	a.frame = Frame{
		FrameID: frameID,
		Stamp:   stamp,
		Seq:     a.seq,
		Points:  a.points,
		Tags:    a.tags,
	}
	return &a.frame
}

// Resized reports whether the last frame changed the buffer size after
// initialization.
func (a *Accumulator) Resized() bool {
	return a.resized
}

// Len returns the number of slots written in the current frame.
func (a *Accumulator) Len() int {
	return a.cursor
}
