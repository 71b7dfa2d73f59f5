// Package meshstore extracts, once at startup, the mesh of every segment that
// carries geometry for the selected mode.
package meshstore

import (
	"context"
	"fmt"

	"cogentcore.org/core/base/ordmap"
	"github.com/go-gl/mathgl/mgl32"

	"github.com/okian/robocloud/internal/domain/geometry"
	"github.com/okian/robocloud/internal/domain/robot"
	"github.com/okian/robocloud/pkg/logger"
)

// Mode selects which geometry representation is sampled.
type Mode int

const (
	Collision Mode = iota
	Visual
)

func (m Mode) String() string {
	if m == Visual {
		return "visual"
	}
	return "collision"
}

// MeshLoader decodes a mesh resource into scaled vertices.
type MeshLoader interface {
	Load(ctx context.Context, resource string, scale mgl32.Vec3) ([]mgl32.Vec3, error)
}

// SegmentMesh is the sampled geometry of one segment. In Visual mode Shapes
// holds the single visual mesh; in Collision mode it holds every collision
// element of the segment, meshes decoded, other primitives as declared.
type SegmentMesh struct {
	Name    string
	Shapes  []geometry.Shape
	Segment *robot.Link
}

// VertexCount counts the vertices of the mesh shapes.
func (s *SegmentMesh) VertexCount() int {
	n := 0
	for _, sh := range s.Shapes {
		if m, ok := sh.(*geometry.Mesh); ok {
			n += len(m.Vertices)
		}
	}
	return n
}

// Store is the insertion-ordered, immutable set of segment meshes.
type Store struct {
	mode     Mode
	segments *ordmap.Map[string, *SegmentMesh]
	ordered  []*SegmentMesh
}

// Build loads the mesh of every link with collision geometry, in model
// discovery order. Links whose mesh resource for mode is empty are skipped;
// in Collision mode a link with a visual mesh is kept even when all of its
// collision elements are other primitives. A decode failure aborts the build.
func Build(ctx context.Context, model *robot.Model, mode Mode, loader MeshLoader) (*Store, error) {
	log := logger.Named("meshstore")
	s := &Store{mode: mode, segments: ordmap.New[string, *SegmentMesh]()}

	for _, link := range model.LinksWithCollisionGeometry() {
		var (
			shapes []geometry.Shape
			err    error
		)
		switch mode {
		case Visual:
			shapes, err = visualShapes(ctx, link, loader)
		default:
			shapes, err = collisionShapes(ctx, link, loader)
		}
		if err != nil {
			return nil, fmt.Errorf("%w: segment %q: %w", ErrMeshDecode, link.Name, err)
		}
		if shapes == nil {
			log.Debug(ctx, "segment has no mesh, skipping",
				logger.String("segment", link.Name),
				logger.String("mode", mode.String()))
			continue
		}
		s.segments.Add(link.Name, &SegmentMesh{Name: link.Name, Shapes: shapes, Segment: link})
	}

	s.ordered = s.segments.Values()

	log.Info(ctx, "segment meshes loaded",
		logger.Int("segments", s.Len()),
		logger.Int("vertices", s.VertexCount()),
		logger.String("mode", mode.String()))
	return s, nil
}

func visualShapes(ctx context.Context, link *robot.Link, loader MeshLoader) ([]geometry.Shape, error) {
	if link.VisualMeshFilename() == "" {
		return nil, nil
	}
	for _, g := range link.Visuals {
		m, ok := g.Shape.(*geometry.Mesh)
		if !ok {
			continue
		}
		decoded, err := decode(ctx, m, loader)
		if err != nil {
			return nil, err
		}
		return []geometry.Shape{decoded}, nil
	}
	return nil, nil
}

func collisionShapes(ctx context.Context, link *robot.Link, loader MeshLoader) ([]geometry.Shape, error) {
	if link.CollisionMeshFilename() == "" && link.VisualMeshFilename() == "" {
		return nil, nil
	}
	shapes := make([]geometry.Shape, 0, len(link.Collision))
	for _, g := range link.Collision {
		m, ok := g.Shape.(*geometry.Mesh)
		if !ok {
			shapes = append(shapes, g.Shape)
			continue
		}
		if m.Resource == "" {
			continue
		}
		decoded, err := decode(ctx, m, loader)
		if err != nil {
			return nil, err
		}
		shapes = append(shapes, decoded)
	}
	return shapes, nil
}

func decode(ctx context.Context, m *geometry.Mesh, loader MeshLoader) (*geometry.Mesh, error) {
	verts, err := loader.Load(ctx, m.Resource, m.Scale)
	if err != nil {
		return nil, err
	}
	return &geometry.Mesh{Resource: m.Resource, Scale: m.Scale, Vertices: verts}, nil
}

// Mode returns the geometry mode the store was built for.
func (s *Store) Mode() Mode {
	return s.mode
}

// Len returns the number of segments.
func (s *Store) Len() int {
	return s.segments.Len()
}

// Segments returns the segment meshes in insertion order. The slice is
// shared; callers must not modify it.
func (s *Store) Segments() []*SegmentMesh {
	return s.ordered
}

// Get looks up a segment mesh by name.
func (s *Store) Get(name string) (*SegmentMesh, bool) {
	return s.segments.ValueByKeyTry(name)
}

// VertexCount is the total number of mesh vertices across segments.
func (s *Store) VertexCount() int {
	n := 0
	for _, kv := range s.segments.Order {
		n += kv.Value.VertexCount()
	}
	return n
}

// NewStore assembles a store from already decoded segment meshes, kept in
// the given order.
func NewStore(mode Mode, segments ...*SegmentMesh) *Store {
	s := &Store{mode: mode, segments: ordmap.New[string, *SegmentMesh]()}
	for _, seg := range segments {
		s.segments.Add(seg.Name, seg)
	}
	s.ordered = s.segments.Values()
	return s
}
