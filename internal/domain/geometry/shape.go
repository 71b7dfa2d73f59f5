package geometry

import (
	"github.com/go-gl/mathgl/mgl32"
)

// Kind tags a Shape variant.
type Kind int

const (
	KindMesh Kind = iota
	KindBox
	KindSphere
	KindCylinder
)

func (k Kind) String() string {
	switch k {
	case KindMesh:
		return "mesh"
	case KindBox:
		return "box"
	case KindSphere:
		return "sphere"
	case KindCylinder:
		return "cylinder"
	default:
		return "unknown"
	}
}

// Shape is one geometry primitive attached to a segment.
type Shape interface {
	Kind() Kind
}

// Mesh is a triangulated surface. Vertices is filled once the resource is
// decoded; the model description only carries Resource and Scale.
type Mesh struct {
	Resource string
	Scale    mgl32.Vec3
	Vertices []mgl32.Vec3
}

// Box is an axis-aligned box centered on its origin.
type Box struct {
	Size mgl32.Vec3
}

// Sphere is centered on its origin.
type Sphere struct {
	Radius float32
}

// Cylinder is aligned with the Z axis of its origin.
type Cylinder struct {
	Radius float32
	Length float32
}

func (*Mesh) Kind() Kind     { return KindMesh }
func (*Box) Kind() Kind      { return KindBox }
func (*Sphere) Kind() Kind   { return KindSphere }
func (*Cylinder) Kind() Kind { return KindCylinder }
