// Package kinematics computes world poses of every link from joint positions.
package kinematics

import (
	"github.com/go-gl/mathgl/mgl32"

	"github.com/okian/robocloud/internal/domain/geometry"
	"github.com/okian/robocloud/internal/domain/robot"
)

// State holds joint positions and the link poses derived from them.
// A State is not safe for concurrent use; share copies from Clone.
type State struct {
	model     *robot.Model
	positions map[string]float64
	poses     map[string]geometry.Pose
	dirty     bool
}

// NewState creates a state with every active joint unset and link poses at
// the zero configuration.
func NewState(model *robot.Model) *State {
	s := &State{
		model:     model,
		positions: make(map[string]float64, len(model.Joints)),
		poses:     make(map[string]geometry.Pose, len(model.Links)),
		dirty:     true,
	}
	s.Update()
	return s
}

// Model returns the model the state is computed for.
func (s *State) Model() *robot.Model {
	return s.model
}

// SetPositions records positions of known active joints; other names are
// ignored. It returns how many positions were applied.
func (s *State) SetPositions(positions map[string]float64) int {
	applied := 0
	for name, q := range positions {
		j, ok := s.model.Joint(name)
		if !ok || !j.Active() {
			continue
		}
		s.positions[name] = q
		applied++
	}
	if applied > 0 {
		s.dirty = true
	}
	return applied
}

// position returns a joint's value, resolving mimic joints.
func (s *State) position(j *robot.Joint) (float64, bool) {
	if j.Mimic != nil {
		q, ok := s.positions[j.Mimic.Joint]
		return j.Mimic.Multiplier*q + j.Mimic.Offset, ok
	}
	q, ok := s.positions[j.Name]
	return q, ok
}

// Complete reports whether every active joint has a value.
func (s *State) Complete() bool {
	for _, j := range s.model.ActiveJoints() {
		if _, ok := s.positions[j.Name]; !ok {
			return false
		}
	}
	return true
}

// Update recomputes link poses if positions changed since the last call.
// Unset joints are treated as zero.
func (s *State) Update() {
	if !s.dirty {
		return
	}
	root := s.model.RootLink()
	s.poses[root] = geometry.Identity()
	var visit func(link string, pose geometry.Pose)
	visit = func(link string, pose geometry.Pose) {
		for _, j := range s.model.ChildJoints(link) {
			q, _ := s.position(j)
			child := pose.Compose(jointTransform(j, float32(q)))
			s.poses[j.Child] = child
			visit(j.Child, child)
		}
	}
	visit(root, s.poses[root])
	s.dirty = false
}

// GlobalLinkTransform returns a link's pose in the root frame.
func (s *State) GlobalLinkTransform(link string) geometry.Pose {
	s.Update()
	if p, ok := s.poses[link]; ok {
		return p
	}
	return geometry.Identity()
}

// CollisionBodyTransform returns the pose of the idx-th collision element of
// link in the root frame. Out of range idx yields the link pose.
func (s *State) CollisionBodyTransform(link string, idx int) geometry.Pose {
	pose := s.GlobalLinkTransform(link)
	l, ok := s.model.Link(link)
	if !ok || idx < 0 || idx >= len(l.Collision) {
		return pose
	}
	return pose.Compose(l.Collision[idx].Origin)
}

// Clone returns an independent copy with poses already computed.
func (s *State) Clone() *State {
	s.Update()
	c := &State{
		model:     s.model,
		positions: make(map[string]float64, len(s.positions)),
		poses:     make(map[string]geometry.Pose, len(s.poses)),
	}
	for k, v := range s.positions {
		c.positions[k] = v
	}
	for k, v := range s.poses {
		c.poses[k] = v
	}
	return c
}

func jointTransform(j *robot.Joint, q float32) geometry.Pose {
	switch j.Type {
	case robot.JointRevolute, robot.JointContinuous:
		axis := normalizedAxis(j.Axis)
		return j.Origin.Compose(geometry.Pose{Rotation: mgl32.QuatRotate(q, axis)})
	case robot.JointPrismatic:
		axis := normalizedAxis(j.Axis)
		return j.Origin.Compose(geometry.Pose{Translation: axis.Mul(q), Rotation: mgl32.QuatIdent()})
	default:
		return j.Origin
	}
}

func normalizedAxis(a mgl32.Vec3) mgl32.Vec3 {
	if a.Len() == 0 {
		return mgl32.Vec3{1, 0, 0}
	}
	return a.Normalize()
}
