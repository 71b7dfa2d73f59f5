// Package robot models an articulated body: rigid links connected by joints.
package robot

import (
	"github.com/go-gl/mathgl/mgl32"

	"github.com/okian/robocloud/internal/domain/geometry"
)

// JointType enumerates the supported joint kinds.
type JointType string

const (
	JointFixed      JointType = "fixed"
	JointRevolute   JointType = "revolute"
	JointContinuous JointType = "continuous"
	JointPrismatic  JointType = "prismatic"
	JointFloating   JointType = "floating"
	JointPlanar     JointType = "planar"
)

// Geometry is one visual or collision element of a link.
type Geometry struct {
	Name   string
	Origin geometry.Pose
	Shape  geometry.Shape
}

// Link is one rigid segment.
type Link struct {
	Name      string
	Visuals   []Geometry
	Collision []Geometry
}

// Mimic couples a joint to another: q = Multiplier*q(Joint) + Offset.
type Mimic struct {
	Joint      string
	Multiplier float64
	Offset     float64
}

// Joint connects Parent to Child.
type Joint struct {
	Name   string
	Type   JointType
	Parent string
	Child  string
	Origin geometry.Pose
	Axis   mgl32.Vec3
	Mimic  *Mimic
}

// Active reports whether the joint takes a position value from joint states.
func (j *Joint) Active() bool {
	if j.Mimic != nil {
		return false
	}
	switch j.Type {
	case JointRevolute, JointContinuous, JointPrismatic:
		return true
	default:
		return false
	}
}

// Model is an immutable articulated body description.
type Model struct {
	Name   string
	Links  []*Link
	Joints []*Joint

	root     string
	links    map[string]*Link
	children map[string][]*Joint
}

// NewModel indexes links and joints. The caller guarantees a single root and
// that every joint refers to declared links; see urdf.Parse.
func NewModel(name, root string, links []*Link, joints []*Joint) *Model {
	m := &Model{
		Name:     name,
		Links:    links,
		Joints:   joints,
		root:     root,
		links:    make(map[string]*Link, len(links)),
		children: make(map[string][]*Joint, len(links)),
	}
	for _, l := range links {
		m.links[l.Name] = l
	}
	for _, j := range joints {
		m.children[j.Parent] = append(m.children[j.Parent], j)
	}
	return m
}

// RootLink returns the name of the link that is nobody's child.
func (m *Model) RootLink() string {
	return m.root
}

// Link looks up a link by name.
func (m *Model) Link(name string) (*Link, bool) {
	l, ok := m.links[name]
	return l, ok
}

// ChildJoints returns the joints whose parent is link, in declaration order.
func (m *Model) ChildJoints(link string) []*Joint {
	return m.children[link]
}

// Walk visits links depth-first from the root, children in joint order.
func (m *Model) Walk(fn func(l *Link)) {
	var visit func(name string)
	visit = func(name string) {
		if l, ok := m.links[name]; ok {
			fn(l)
		}
		for _, j := range m.children[name] {
			visit(j.Child)
		}
	}
	visit(m.root)
}

// LinksWithCollisionGeometry returns links that carry at least one collision
// element, in Walk order.
func (m *Model) LinksWithCollisionGeometry() []*Link {
	var out []*Link
	m.Walk(func(l *Link) {
		if len(l.Collision) > 0 {
			out = append(out, l)
		}
	})
	return out
}

// ActiveJoints returns the joints driven by joint-state positions.
func (m *Model) ActiveJoints() []*Joint {
	var out []*Joint
	for _, j := range m.Joints {
		if j.Active() {
			out = append(out, j)
		}
	}
	return out
}

// Joint looks up a joint by name.
func (m *Model) Joint(name string) (*Joint, bool) {
	for _, j := range m.Joints {
		if j.Name == name {
			return j, true
		}
	}
	return nil, false
}

// VisualMeshFilename returns the resource of the first visual mesh, or ""
// when the link has none.
func (l *Link) VisualMeshFilename() string {
	return firstMesh(l.Visuals)
}

// CollisionMeshFilename returns the resource of the first collision mesh, or
// "" when every collision element is another primitive.
func (l *Link) CollisionMeshFilename() string {
	return firstMesh(l.Collision)
}

func firstMesh(gs []Geometry) string {
	for _, g := range gs {
		if m, ok := g.Shape.(*geometry.Mesh); ok {
			return m.Resource
		}
	}
	return ""
}
