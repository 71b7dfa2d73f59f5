package meshstore

import (
	"context"
	"errors"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	. "github.com/smartystreets/goconvey/convey"

	"github.com/okian/robocloud/internal/domain/geometry"
	"github.com/okian/robocloud/internal/domain/robot"
	"github.com/okian/robocloud/pkg/logger"
)

var errCorrupt = errors.New("corrupt")

type fakeLoader struct {
	meshes map[string][]mgl32.Vec3
	calls  []string
}

func (f *fakeLoader) Load(_ context.Context, resource string, scale mgl32.Vec3) ([]mgl32.Vec3, error) {
	f.calls = append(f.calls, resource)
	v, ok := f.meshes[resource]
	if !ok {
		return nil, errCorrupt
	}
	out := make([]mgl32.Vec3, len(v))
	for i, p := range v {
		out[i] = mgl32.Vec3{p[0] * scale[0], p[1] * scale[1], p[2] * scale[2]}
	}
	return out, nil
}

func mesh(resource string) robot.Geometry {
	return robot.Geometry{Origin: geometry.Identity(), Shape: &geometry.Mesh{Resource: resource, Scale: mgl32.Vec3{1, 1, 1}}}
}

func box() robot.Geometry {
	return robot.Geometry{Origin: geometry.Identity(), Shape: &geometry.Box{Size: mgl32.Vec3{1, 1, 1}}}
}

func model() *robot.Model {
	links := []*robot.Link{
		{Name: "base", Collision: []robot.Geometry{mesh("base.stl")}, Visuals: []robot.Geometry{mesh("base_v.stl")}},
		{Name: "arm", Collision: []robot.Geometry{mesh("arm.stl"), box()}},
		{Name: "bumper", Collision: []robot.Geometry{box()}, Visuals: []robot.Geometry{mesh("bumper_v.stl")}},
		{Name: "frame"},
		{Name: "hand", Collision: []robot.Geometry{mesh("")}},
	}
	joints := []*robot.Joint{
		{Name: "j1", Type: robot.JointRevolute, Parent: "base", Child: "arm"},
		{Name: "j2", Type: robot.JointFixed, Parent: "base", Child: "bumper"},
		{Name: "j3", Type: robot.JointFixed, Parent: "arm", Child: "frame"},
		{Name: "j4", Type: robot.JointFixed, Parent: "frame", Child: "hand"},
	}
	return robot.NewModel("bot", "base", links, joints)
}

func loader() *fakeLoader {
	return &fakeLoader{meshes: map[string][]mgl32.Vec3{
		"base.stl":     {{0, 0, 0}, {1, 0, 0}, {0, 1, 0}},
		"base_v.stl":   {{0, 0, 0}, {2, 0, 0}, {0, 2, 0}, {2, 2, 0}},
		"arm.stl":      {{0, 0, 1}, {1, 0, 1}, {0, 1, 1}},
		"bumper_v.stl": {{5, 5, 5}},
	}}
}

func TestBuild(t *testing.T) {
	Convey("Given a model with mixed geometry", t, func() {
		So(logger.Init(), ShouldBeNil)
		ctx := context.Background()

		Convey("When building in collision mode", func() {
			l := loader()
			s, err := Build(ctx, model(), Collision, l)

			Convey("Then links with a collision or visual mesh should be kept, in discovery order", func() {
				So(err, ShouldBeNil)
				So(s.Mode(), ShouldEqual, Collision)
				So(s.Len(), ShouldEqual, 3)
				So(s.Segments()[0].Name, ShouldEqual, "base")
				So(s.Segments()[1].Name, ShouldEqual, "arm")
				So(s.Segments()[2].Name, ShouldEqual, "bumper")
			})

			Convey("Then a link with only primitive collisions and a visual mesh should hold its primitives", func() {
				bumper, ok := s.Get("bumper")
				So(ok, ShouldBeTrue)
				So(len(bumper.Shapes), ShouldEqual, 1)
				So(bumper.Shapes[0].Kind(), ShouldEqual, geometry.KindBox)
				So(bumper.VertexCount(), ShouldEqual, 0)
			})

			Convey("Then non-mesh primitives should be kept alongside decoded meshes", func() {
				arm, ok := s.Get("arm")
				So(ok, ShouldBeTrue)
				So(len(arm.Shapes), ShouldEqual, 2)
				So(arm.Shapes[0].Kind(), ShouldEqual, geometry.KindMesh)
				So(arm.Shapes[1].Kind(), ShouldEqual, geometry.KindBox)
				So(arm.VertexCount(), ShouldEqual, 3)
				So(arm.Segment.Name, ShouldEqual, "arm")
			})

			Convey("Then links with an empty or non-mesh path should never reach the loader", func() {
				So(l.calls, ShouldResemble, []string{"base.stl", "arm.stl"})
				_, ok := s.Get("hand")
				So(ok, ShouldBeFalse)
			})

			Convey("Then the vertex total should cover every mesh", func() {
				So(s.VertexCount(), ShouldEqual, 6)
			})
		})

		Convey("When building in visual mode", func() {
			s, err := Build(ctx, model(), Visual, loader())

			Convey("Then links with collision geometry and a visual mesh should be kept", func() {
				So(err, ShouldBeNil)
				So(s.Len(), ShouldEqual, 2)
				So(s.Segments()[0].Name, ShouldEqual, "base")
				So(s.Segments()[1].Name, ShouldEqual, "bumper")
				base, _ := s.Get("base")
				So(base.VertexCount(), ShouldEqual, 4)
			})
		})

		Convey("When a segment with a path fails to decode", func() {
			l := loader()
			delete(l.meshes, "arm.stl")
			s, err := Build(ctx, model(), Collision, l)

			Convey("Then the build should fail without a partial store", func() {
				So(s, ShouldBeNil)
				So(errors.Is(err, ErrMeshDecode), ShouldBeTrue)
				So(errors.Is(err, errCorrupt), ShouldBeTrue)
			})
		})
	})
}

func TestNewStore(t *testing.T) {
	Convey("Given pre-decoded segment meshes", t, func() {
		a := &SegmentMesh{Name: "a", Shapes: []geometry.Shape{&geometry.Mesh{Vertices: []mgl32.Vec3{{1, 0, 0}}}}}
		b := &SegmentMesh{Name: "b"}
		s := NewStore(Visual, b, a)

		Convey("Then the given order should be kept", func() {
			So(s.Len(), ShouldEqual, 2)
			So(s.Segments()[0], ShouldEqual, b)
			So(s.Segments()[1], ShouldEqual, a)
			So(s.VertexCount(), ShouldEqual, 1)
		})
	})
}
