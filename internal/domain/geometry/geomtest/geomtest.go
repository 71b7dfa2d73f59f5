// Package geomtest holds helpers for tests that build or compare geometry.
package geomtest

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/okian/robocloud/internal/domain/geometry"
)

// Tolerance is the default absolute per-component tolerance of ShouldBeNear.
const Tolerance = 1e-5

// Translate returns a pure translation.
func Translate(x, y, z float32) geometry.Pose {
	return geometry.Pose{Translation: mgl32.Vec3{x, y, z}, Rotation: mgl32.QuatIdent()}
}

// ShouldBeNear is a goconvey assertion for mgl32.Vec3, mgl32.Mat3,
// mgl32.Quat and geometry.Pose values. Components are compared with an
// absolute tolerance, so expected zeros work. q and -q are the same
// rotation. A float tolerance may follow the expected value.
func ShouldBeNear(actual interface{}, expected ...interface{}) string {
	if len(expected) == 0 || len(expected) > 2 {
		return "ShouldBeNear takes an expected value and an optional tolerance"
	}
	tol := float32(Tolerance)
	if len(expected) == 2 {
		switch t := expected[1].(type) {
		case float32:
			tol = t
		case float64:
			tol = float32(t)
		default:
			return fmt.Sprintf("tolerance must be a float, got %T", expected[1])
		}
	}
	a, err := components(actual)
	if err != nil {
		return err.Error()
	}
	b, err := components(expected[0])
	if err != nil {
		return err.Error()
	}
	if len(a) != len(b) {
		return fmt.Sprintf("cannot compare %T with %T", actual, expected[0])
	}
	switch actual.(type) {
	case geometry.Pose:
		flipRotation(a[3:], b[3:])
	case mgl32.Quat:
		flipRotation(a, b)
	}
	for i := range a {
		if mgl32.Abs(a[i]-b[i]) > tol {
			return fmt.Sprintf("Expected %v\nto be within %g of %v (component %d differs)", actual, tol, expected[0], i)
		}
	}
	return ""
}

// ShouldNotBeNear negates ShouldBeNear.
func ShouldNotBeNear(actual interface{}, expected ...interface{}) string {
	if msg := ShouldBeNear(actual, expected...); msg != "" {
		return ""
	}
	return fmt.Sprintf("Expected %v\nnot to be near %v", actual, expected[0])
}

func components(v interface{}) ([]float32, error) {
	switch t := v.(type) {
	case mgl32.Vec3:
		return t[:], nil
	case mgl32.Mat3:
		return t[:], nil
	case mgl32.Quat:
		return []float32{t.W, t.V[0], t.V[1], t.V[2]}, nil
	case geometry.Pose:
		return []float32{
			t.Translation[0], t.Translation[1], t.Translation[2],
			t.Rotation.W, t.Rotation.V[0], t.Rotation.V[1], t.Rotation.V[2],
		}, nil
	default:
		return nil, fmt.Errorf("ShouldBeNear does not support %T", v)
	}
}

// flipRotation negates quaternion b when it points away from a.
func flipRotation(a, b []float32) {
	if a[0]*b[0]+a[1]*b[1]+a[2]*b[2]+a[3]*b[3] < 0 {
		for i := range b {
			b[i] = -b[i]
		}
	}
}
