// Package urdf parses URDF robot descriptions into robot.Model values.
package urdf

import (
	"encoding/xml"
	"fmt"
	"strconv"
	"strings"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/okian/robocloud/internal/domain/geometry"
	"github.com/okian/robocloud/internal/domain/robot"
)

type xmlRobot struct {
	Name   string     `xml:"name,attr"`
	Links  []xmlLink  `xml:"link"`
	Joints []xmlJoint `xml:"joint"`
}

type xmlLink struct {
	Name       string       `xml:"name,attr"`
	Visuals    []xmlElement `xml:"visual"`
	Collisions []xmlElement `xml:"collision"`
}

type xmlElement struct {
	Name     string       `xml:"name,attr"`
	Origin   *xmlOrigin   `xml:"origin"`
	Geometry *xmlGeometry `xml:"geometry"`
}

type xmlOrigin struct {
	XYZ string `xml:"xyz,attr"`
	RPY string `xml:"rpy,attr"`
}

type xmlGeometry struct {
	Mesh *struct {
		Filename string `xml:"filename,attr"`
		Scale    string `xml:"scale,attr"`
	} `xml:"mesh"`
	Box *struct {
		Size string `xml:"size,attr"`
	} `xml:"box"`
	Sphere *struct {
		Radius string `xml:"radius,attr"`
	} `xml:"sphere"`
	Cylinder *struct {
		Radius string `xml:"radius,attr"`
		Length string `xml:"length,attr"`
	} `xml:"cylinder"`
}

type xmlJoint struct {
	Name   string     `xml:"name,attr"`
	Type   string     `xml:"type,attr"`
	Origin *xmlOrigin `xml:"origin"`
	Parent struct {
		Link string `xml:"link,attr"`
	} `xml:"parent"`
	Child struct {
		Link string `xml:"link,attr"`
	} `xml:"child"`
	Axis *struct {
		XYZ string `xml:"xyz,attr"`
	} `xml:"axis"`
	Mimic *struct {
		Joint      string `xml:"joint,attr"`
		Multiplier string `xml:"multiplier,attr"`
		Offset     string `xml:"offset,attr"`
	} `xml:"mimic"`
}

// Parse decodes a URDF document. Links keep declaration order; the root is
// the only link that is no joint's child.
func Parse(data []byte) (*robot.Model, error) {
	var doc xmlRobot
	if err := xml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidModel, err)
	}
	if len(doc.Links) == 0 {
		return nil, fmt.Errorf("%w: no links", ErrInvalidModel)
	}

	links := make([]*robot.Link, 0, len(doc.Links))
	known := make(map[string]bool, len(doc.Links))
	for _, xl := range doc.Links {
		if xl.Name == "" {
			return nil, fmt.Errorf("%w: link without name", ErrInvalidModel)
		}
		if known[xl.Name] {
			return nil, fmt.Errorf("%w: duplicate link %q", ErrInvalidModel, xl.Name)
		}
		known[xl.Name] = true
		l := &robot.Link{Name: xl.Name}
		var err error
		if l.Visuals, err = parseElements(xl.Visuals); err != nil {
			return nil, fmt.Errorf("%w: link %q visual: %w", ErrInvalidModel, xl.Name, err)
		}
		if l.Collision, err = parseElements(xl.Collisions); err != nil {
			return nil, fmt.Errorf("%w: link %q collision: %w", ErrInvalidModel, xl.Name, err)
		}
		links = append(links, l)
	}

	joints := make([]*robot.Joint, 0, len(doc.Joints))
	isChild := make(map[string]bool, len(doc.Joints))
	for _, xj := range doc.Joints {
		j, err := parseJoint(xj)
		if err != nil {
			return nil, fmt.Errorf("%w: joint %q: %w", ErrInvalidModel, xj.Name, err)
		}
		if !known[j.Parent] || !known[j.Child] {
			return nil, fmt.Errorf("%w: joint %q references unknown link", ErrInvalidModel, j.Name)
		}
		if isChild[j.Child] {
			return nil, fmt.Errorf("%w: link %q has more than one parent", ErrInvalidModel, j.Child)
		}
		isChild[j.Child] = true
		joints = append(joints, j)
	}

	root := ""
	for _, l := range links {
		if isChild[l.Name] {
			continue
		}
		if root != "" {
			return nil, fmt.Errorf("%w: multiple roots %q and %q", ErrInvalidModel, root, l.Name)
		}
		root = l.Name
	}
	if root == "" {
		return nil, fmt.Errorf("%w: no root link", ErrInvalidModel)
	}
	return robot.NewModel(doc.Name, root, links, joints), nil
}

func parseElements(xs []xmlElement) ([]robot.Geometry, error) {
	out := make([]robot.Geometry, 0, len(xs))
	for _, x := range xs {
		origin, err := parseOrigin(x.Origin)
		if err != nil {
			return nil, err
		}
		if x.Geometry == nil {
			continue
		}
		shape, err := parseShape(x.Geometry)
		if err != nil {
			return nil, err
		}
		if shape == nil {
			continue
		}
		out = append(out, robot.Geometry{Name: x.Name, Origin: origin, Shape: shape})
	}
	return out, nil
}

func parseShape(g *xmlGeometry) (geometry.Shape, error) {
	switch {
	case g.Mesh != nil:
		scale := mgl32.Vec3{1, 1, 1}
		if g.Mesh.Scale != "" {
			v, err := parseVec3(g.Mesh.Scale)
			if err != nil {
				return nil, fmt.Errorf("mesh scale: %w", err)
			}
			scale = v
		}
		return &geometry.Mesh{Resource: g.Mesh.Filename, Scale: scale}, nil
	case g.Box != nil:
		size, err := parseVec3(g.Box.Size)
		if err != nil {
			return nil, fmt.Errorf("box size: %w", err)
		}
		return &geometry.Box{Size: size}, nil
	case g.Sphere != nil:
		r, err := parseFloat(g.Sphere.Radius, 0)
		if err != nil {
			return nil, fmt.Errorf("sphere radius: %w", err)
		}
		return &geometry.Sphere{Radius: r}, nil
	case g.Cylinder != nil:
		r, err := parseFloat(g.Cylinder.Radius, 0)
		if err != nil {
			return nil, fmt.Errorf("cylinder radius: %w", err)
		}
		length, err := parseFloat(g.Cylinder.Length, 0)
		if err != nil {
			return nil, fmt.Errorf("cylinder length: %w", err)
		}
		return &geometry.Cylinder{Radius: r, Length: length}, nil
	default:
		return nil, nil
	}
}

func parseJoint(xj xmlJoint) (*robot.Joint, error) {
	j := &robot.Joint{
		Name:   xj.Name,
		Type:   robot.JointType(xj.Type),
		Parent: xj.Parent.Link,
		Child:  xj.Child.Link,
		Axis:   mgl32.Vec3{1, 0, 0},
	}
	switch j.Type {
	case robot.JointFixed, robot.JointRevolute, robot.JointContinuous,
		robot.JointPrismatic, robot.JointFloating, robot.JointPlanar:
	default:
		return nil, fmt.Errorf("unsupported type %q", xj.Type)
	}
	var err error
	if j.Origin, err = parseOrigin(xj.Origin); err != nil {
		return nil, err
	}
	if xj.Axis != nil && xj.Axis.XYZ != "" {
		if j.Axis, err = parseVec3(xj.Axis.XYZ); err != nil {
			return nil, fmt.Errorf("axis: %w", err)
		}
	}
	if xj.Mimic != nil {
		m := &robot.Mimic{Joint: xj.Mimic.Joint, Multiplier: 1}
		if xj.Mimic.Multiplier != "" {
			if m.Multiplier, err = strconv.ParseFloat(xj.Mimic.Multiplier, 64); err != nil {
				return nil, fmt.Errorf("mimic multiplier: %w", err)
			}
		}
		if xj.Mimic.Offset != "" {
			if m.Offset, err = strconv.ParseFloat(xj.Mimic.Offset, 64); err != nil {
				return nil, fmt.Errorf("mimic offset: %w", err)
			}
		}
		j.Mimic = m
	}
	return j, nil
}

func parseOrigin(o *xmlOrigin) (geometry.Pose, error) {
	if o == nil {
		return geometry.Identity(), nil
	}
	var xyz, rpy mgl32.Vec3
	var err error
	if o.XYZ != "" {
		if xyz, err = parseVec3(o.XYZ); err != nil {
			return geometry.Pose{}, fmt.Errorf("origin xyz: %w", err)
		}
	}
	if o.RPY != "" {
		if rpy, err = parseVec3(o.RPY); err != nil {
			return geometry.Pose{}, fmt.Errorf("origin rpy: %w", err)
		}
	}
	return geometry.FromRPY(xyz, rpy[0], rpy[1], rpy[2]), nil
}

func parseVec3(s string) (mgl32.Vec3, error) {
	fields := strings.Fields(s)
	if len(fields) != 3 {
		return mgl32.Vec3{}, fmt.Errorf("want 3 values, got %q", s)
	}
	var v mgl32.Vec3
	for i, f := range fields {
		x, err := strconv.ParseFloat(f, 32)
		if err != nil {
			return mgl32.Vec3{}, err
		}
		v[i] = float32(x)
	}
	return v, nil
}

func parseFloat(s string, def float32) (float32, error) {
	if s == "" {
		return def, nil
	}
	x, err := strconv.ParseFloat(strings.TrimSpace(s), 32)
	if err != nil {
		return 0, err
	}
	return float32(x), nil
}
