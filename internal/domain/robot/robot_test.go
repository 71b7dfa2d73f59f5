package robot

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	. "github.com/smartystreets/goconvey/convey"

	"github.com/okian/robocloud/internal/domain/geometry"
)

func meshGeom(resource string) Geometry {
	return Geometry{Origin: geometry.Identity(), Shape: &geometry.Mesh{Resource: resource, Scale: mgl32.Vec3{1, 1, 1}}}
}

func boxGeom() Geometry {
	return Geometry{Origin: geometry.Identity(), Shape: &geometry.Box{Size: mgl32.Vec3{1, 1, 1}}}
}

func sampleModel() *Model {
	base := &Link{Name: "base", Collision: []Geometry{meshGeom("base.stl")}, Visuals: []Geometry{meshGeom("base_v.stl")}}
	upper := &Link{Name: "upper", Collision: []Geometry{boxGeom(), meshGeom("upper.stl")}}
	lower := &Link{Name: "lower"}
	tool := &Link{Name: "tool", Collision: []Geometry{boxGeom()}}
	side := &Link{Name: "side", Collision: []Geometry{meshGeom("side.stl")}}
	joints := []*Joint{
		{Name: "shoulder", Type: JointRevolute, Parent: "base", Child: "upper"},
		{Name: "side_mount", Type: JointFixed, Parent: "base", Child: "side"},
		{Name: "elbow", Type: JointContinuous, Parent: "upper", Child: "lower"},
		{Name: "wrist", Type: JointPrismatic, Parent: "lower", Child: "tool"},
		{Name: "tool_spin", Type: JointRevolute, Parent: "tool", Child: "stylus", Mimic: &Mimic{Joint: "shoulder", Multiplier: 2}},
	}
	stylus := &Link{Name: "stylus"}
	return NewModel("arm", "base", []*Link{base, upper, lower, tool, side, stylus}, joints)
}

func TestModel(t *testing.T) {
	Convey("Given a small arm model", t, func() {
		m := sampleModel()

		Convey("Then the root and lookups should work", func() {
			So(m.RootLink(), ShouldEqual, "base")
			l, ok := m.Link("upper")
			So(ok, ShouldBeTrue)
			So(l.Name, ShouldEqual, "upper")
			_, ok = m.Link("missing")
			So(ok, ShouldBeFalse)
			So(m.ChildJoints("upper"), ShouldHaveLength, 1)
			So(m.ChildJoints("upper")[0].Name, ShouldEqual, "elbow")
		})

		Convey("Then Walk should be depth-first in joint order", func() {
			var names []string
			m.Walk(func(l *Link) { names = append(names, l.Name) })
			So(names, ShouldResemble, []string{"base", "upper", "lower", "tool", "stylus", "side"})
		})

		Convey("Then links with collision geometry should keep walk order", func() {
			var names []string
			for _, l := range m.LinksWithCollisionGeometry() {
				names = append(names, l.Name)
			}
			So(names, ShouldResemble, []string{"base", "upper", "tool", "side"})
		})

		Convey("Then active joints should exclude fixed and mimic joints", func() {
			var names []string
			for _, j := range m.ActiveJoints() {
				names = append(names, j.Name)
			}
			So(names, ShouldResemble, []string{"shoulder", "elbow", "wrist"})
		})

		Convey("Then joints can be found by name", func() {
			j, ok := m.Joint("tool_spin")
			So(ok, ShouldBeTrue)
			So(j.Mimic.Multiplier, ShouldEqual, 2)
		})
	})
}

func TestMeshFilenames(t *testing.T) {
	Convey("Given links with different geometry", t, func() {
		m := sampleModel()
		base, _ := m.Link("base")
		upper, _ := m.Link("upper")
		tool, _ := m.Link("tool")
		lower, _ := m.Link("lower")

		Convey("Then visual and collision filenames should resolve independently", func() {
			So(base.VisualMeshFilename(), ShouldEqual, "base_v.stl")
			So(base.CollisionMeshFilename(), ShouldEqual, "base.stl")
		})

		Convey("Then a mesh after another primitive should still be found", func() {
			So(upper.CollisionMeshFilename(), ShouldEqual, "upper.stl")
			So(upper.VisualMeshFilename(), ShouldBeEmpty)
		})

		Convey("Then links without meshes should report empty filenames", func() {
			So(tool.CollisionMeshFilename(), ShouldBeEmpty)
			So(lower.CollisionMeshFilename(), ShouldBeEmpty)
		})
	})
}
