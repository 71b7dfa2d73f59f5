// Package transform places every segment mesh vertex into the root frame for
// one skeletal state.
package transform

import (
	"github.com/okian/robocloud/internal/domain/cloud"
	"github.com/okian/robocloud/internal/domain/geometry"
	"github.com/okian/robocloud/internal/domain/meshstore"
)

// TransformSource supplies the collision-frame transform of a segment for the
// state snapshot of the current frame.
type TransformSource interface {
	CollisionBodyTransform(link string, idx int) geometry.Pose
}

// Result summarizes one Run.
type Result struct {
	Segments int
	Points   int
	// Skipped counts non-mesh shapes passed over in collision mode.
	Skipped int
}

// Stage applies one rigid transform per segment to the store's meshes.
type Stage struct {
	store *meshstore.Store
	// OnSegment, when set, is called after each segment with its vertex count.
	OnSegment func(name string, points int)
}

// NewStage creates a Stage over store.
func NewStage(store *meshstore.Store) *Stage {
	return &Stage{store: store}
}

// Store returns the mesh store the stage samples.
func (s *Stage) Store() *meshstore.Store {
	return s.store
}

// Run writes every transformed vertex into acc in store order. The caller
// resets acc before and finalizes it after. Tags are dense segment indexes.
func (s *Stage) Run(src TransformSource, acc *cloud.Accumulator) Result {
	var res Result
	collision := s.store.Mode() == meshstore.Collision
	for _, seg := range s.store.Segments() {
		pose := src.CollisionBodyTransform(seg.Name, 0)
		rot := pose.Mat3()
		t := pose.Translation
		tag := uint32(res.Segments) //nolint:gosec // segment counts fit in uint32
		written := 0
		for _, shape := range seg.Shapes {
			mesh, ok := shape.(*geometry.Mesh)
			if !ok {
				if collision {
					res.Skipped++
				}
				continue
			}
			for _, v := range mesh.Vertices {
				w := rot.Mul3x1(v).Add(t)
				acc.Write(cloud.Point{X: w[0], Y: w[1], Z: w[2]}, tag)
			}
			written += len(mesh.Vertices)
		}
		res.Points += written
		res.Segments++
		if s.OnSegment != nil {
			s.OnSegment(seg.Name, written)
		}
	}
	return res
}
