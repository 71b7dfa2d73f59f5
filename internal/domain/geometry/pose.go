// Package geometry holds rigid transforms and the shape variants attached to
// skeletal segments.
package geometry

import (
	"github.com/go-gl/mathgl/mgl32"
)

// Pose is a rigid transform: rotate by Rotation, then translate by Translation.
type Pose struct {
	Translation mgl32.Vec3
	Rotation    mgl32.Quat
}

// Identity returns the identity pose.
func Identity() Pose {
	return Pose{Rotation: mgl32.QuatIdent()}
}

// FromRPY builds a pose from a translation and fixed-axis roll, pitch, yaw
// (rotation about X, then Y, then Z).
func FromRPY(xyz mgl32.Vec3, roll, pitch, yaw float32) Pose {
	qx := mgl32.QuatRotate(roll, mgl32.Vec3{1, 0, 0})
	qy := mgl32.QuatRotate(pitch, mgl32.Vec3{0, 1, 0})
	qz := mgl32.QuatRotate(yaw, mgl32.Vec3{0, 0, 1})
	return Pose{Translation: xyz, Rotation: qz.Mul(qy).Mul(qx).Normalize()}
}

// Compose returns p ∘ child: applying the result equals applying child first,
// then p.
func (p Pose) Compose(child Pose) Pose {
	return Pose{
		Translation: p.Apply(child.Translation),
		Rotation:    p.Rotation.Mul(child.Rotation).Normalize(),
	}
}

// Apply transforms a point.
func (p Pose) Apply(v mgl32.Vec3) mgl32.Vec3 {
	return p.Rotation.Rotate(v).Add(p.Translation)
}

// Mat3 returns the rotation as a 3x3 matrix, for applying to many vertices.
func (p Pose) Mat3() mgl32.Mat3 {
	return p.Rotation.Mat4().Mat3()
}
