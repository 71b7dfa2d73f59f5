package service_test

import (
	"context"
	"sync"
	"time"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/okian/robocloud/internal/domain/cloud"
	"github.com/okian/robocloud/internal/domain/geometry"
	"github.com/okian/robocloud/internal/domain/geometry/geomtest"
	"github.com/okian/robocloud/internal/domain/kinematics"
	"github.com/okian/robocloud/internal/domain/robot"
	"github.com/okian/robocloud/pkg/logger"
)

func init() {
	if err := logger.Init(); err != nil {
		panic(err)
	}
}

var triangle = []mgl32.Vec3{{1, 0, 0}, {0, 1, 0}, {0, 0, 1}}

// twoSegments is a base with segment "a" (one triangle mesh on a yaw joint)
// and segment "b" (a collision mesh element with an empty path).
func twoSegments() *robot.Model {
	links := []*robot.Link{
		{Name: "base"},
		{Name: "a", Collision: []robot.Geometry{{Origin: geometry.Identity(), Shape: &geometry.Mesh{Resource: "tri.stl", Scale: mgl32.Vec3{1, 1, 1}}}}},
		{Name: "b", Collision: []robot.Geometry{{Origin: geometry.Identity(), Shape: &geometry.Mesh{Scale: mgl32.Vec3{1, 1, 1}}}}},
	}
	joints := []*robot.Joint{
		{Name: "yaw", Type: robot.JointRevolute, Parent: "base", Child: "a", Origin: geometry.Identity(), Axis: mgl32.Vec3{0, 0, 1}},
		{Name: "mount", Type: robot.JointFixed, Parent: "base", Child: "b", Origin: geomtest.Translate(0, 0, 1)},
	}
	return robot.NewModel("two", "base", links, joints)
}

// lift is a base with one segment "a" on a prismatic z joint.
func lift() *robot.Model {
	links := []*robot.Link{
		{Name: "base"},
		{Name: "a", Collision: []robot.Geometry{{Origin: geometry.Identity(), Shape: &geometry.Mesh{Resource: "a.stl"}}}},
	}
	joints := []*robot.Joint{
		{Name: "lift", Type: robot.JointPrismatic, Parent: "base", Child: "a", Origin: geometry.Identity(), Axis: mgl32.Vec3{0, 0, 1}},
	}
	return robot.NewModel("lift", "base", links, joints)
}

type triangleLoader struct{}

func (triangleLoader) Load(context.Context, string, mgl32.Vec3) ([]mgl32.Vec3, error) {
	return append([]mgl32.Vec3(nil), triangle...), nil
}

type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *fakeClock) now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fakeClock) advance(d time.Duration) {
	c.mu.Lock()
	c.t = c.t.Add(d)
	c.mu.Unlock()
}

// fakeSource answers waits from ready (true once exhausted) and serves st.
type fakeSource struct {
	st    *kinematics.State
	stamp time.Time
	ready []bool
	waits int
}

func (f *fakeSource) WaitForCurrentState(context.Context, time.Time, time.Duration) bool {
	f.waits++
	if len(f.ready) == 0 {
		return true
	}
	r := f.ready[0]
	f.ready = f.ready[1:]
	return r
}

func (f *fakeSource) CurrentStateAndTime() (*kinematics.State, time.Time) {
	return f.st, f.stamp
}

func (f *fakeSource) set(positions map[string]float64) {
	f.st.SetPositions(positions)
	f.st.Update()
}

type published struct {
	at     time.Time
	frame  cloud.Frame
	first  *cloud.Point
	capPts int
}

// recordingPublisher copies every frame and charges compute time to clock.
type recordingPublisher struct {
	clock   *fakeClock
	compute time.Duration
	err     error
	frames  []published
	onFrame func(n int)
}

func (p *recordingPublisher) Publish(_ context.Context, f *cloud.Frame) error {
	if p.clock != nil {
		p.clock.advance(p.compute)
	}
	if p.err != nil {
		return p.err
	}
	rec := published{
		frame: cloud.Frame{
			FrameID: f.FrameID,
			Stamp:   f.Stamp,
			Seq:     f.Seq,
			Points:  append([]cloud.Point(nil), f.Points...),
			Tags:    append([]uint32(nil), f.Tags...),
		},
		capPts: cap(f.Points),
	}
	if p.clock != nil {
		rec.at = p.clock.now()
	}
	if len(f.Points) > 0 {
		rec.first = &f.Points[0]
	}
	p.frames = append(p.frames, rec)
	if p.onFrame != nil {
		p.onFrame(len(p.frames))
	}
	return nil
}

func vec(p cloud.Point) mgl32.Vec3 {
	return mgl32.Vec3{p.X, p.Y, p.Z}
}
