// Package tessellate walks a scene and produces the source and destination
// meshes of a projection using a geometry kernel.
package tessellate

import (
	"errors"
	"fmt"

	"github.com/chazu/normproj/pkg/kernel"
	"github.com/chazu/normproj/pkg/mesh"
	"github.com/chazu/normproj/pkg/scene"
	"github.com/go-gl/mathgl/mgl64"
	"golang.org/x/sync/errgroup"
)

// ErrNoSolid is returned when a node resolves to no geometry.
var ErrNoSolid = errors.New("tessellate: node produced no solid")

// Result holds the meshes for one projection.
type Result struct {
	Source            *mesh.Mesh
	Destination       *mesh.Mesh
	PreferAccelerated bool
}

// transformStack accumulates transforms from the root down to a
// primitive. Entries are applied innermost first.
type transformStack struct {
	entries []scene.TransformData
}

func (ts *transformStack) push(td scene.TransformData) {
	ts.entries = append(ts.entries, td)
}

func (ts *transformStack) pop() {
	if len(ts.entries) > 0 {
		ts.entries = ts.entries[:len(ts.entries)-1]
	}
}

// apply places s by every transform on the stack.
func (ts *transformStack) apply(k kernel.Kernel, s kernel.Solid) kernel.Solid {
	for i := len(ts.entries) - 1; i >= 0; i-- {
		td := ts.entries[i]
		if r := td.Rotation; r != nil && *r != (mgl64.Vec3{}) {
			s = k.Rotate(s, r[0], r[1], r[2])
		}
		if t := td.Translation; t != nil && *t != (mgl64.Vec3{}) {
			s = k.Translate(s, t[0], t[1], t[2])
		}
	}
	return s
}

// Tessellate validates s and tessellates both roles concurrently. The
// tessellator never mutates the scene.
func Tessellate(s *scene.Scene, k kernel.Kernel) (*Result, error) {
	if s == nil {
		return nil, fmt.Errorf("tessellate: %w: nil scene", scene.ErrInvalidScene)
	}
	if err := scene.Check(s); err != nil {
		return nil, fmt.Errorf("tessellate: %w", err)
	}

	res := &Result{PreferAccelerated: s.PreferAccelerated}
	var g errgroup.Group
	g.Go(func() error {
		m, err := Role(s, k, "source", s.Source)
		res.Source = m
		return err
	})
	g.Go(func() error {
		m, err := Role(s, k, "destination", s.Destination)
		res.Destination = m
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return res, nil
}

// Role tessellates the solid a role refers to and applies the role's
// smoothing angle to the mesh refine settings.
func Role(s *scene.Scene, k kernel.Kernel, name string, r *scene.Role) (*mesh.Mesh, error) {
	n := s.Get(r.Node)
	if n == nil {
		return nil, fmt.Errorf("tessellate: %s: no node %s", name, r.Node)
	}
	solid, err := walkNode(s, k, n, &transformStack{})
	if err != nil {
		return nil, fmt.Errorf("tessellate: %s: %w", name, err)
	}
	m, err := k.ToMesh(solid, name, r.Cells)
	if err != nil {
		return nil, fmt.Errorf("tessellate: %s: ToMesh failed for node %s: %w", name, n.ID, err)
	}
	if r.SmoothAngle > 0 {
		m.RefineSettings.SmoothAngle = r.SmoothAngle
	}
	return m, nil
}

// walkNode recursively builds the solid for n.
func walkNode(s *scene.Scene, k kernel.Kernel, n *scene.Node, ts *transformStack) (kernel.Solid, error) {
	switch n.Kind {
	case scene.NodePrimitive:
		return handlePrimitive(k, n, ts)
	case scene.NodeBoolean:
		return handleBoolean(s, k, n, ts)
	case scene.NodeTransform:
		return handleTransform(s, k, n, ts)
	default:
		return nil, fmt.Errorf("unknown node kind: %v", n.Kind)
	}
}

// handlePrimitive creates geometry for a primitive node and places it.
func handlePrimitive(k kernel.Kernel, n *scene.Node, ts *transformStack) (kernel.Solid, error) {
	data, ok := n.Data.(scene.PrimitiveData)
	if !ok {
		return nil, fmt.Errorf("primitive node %s has unexpected data type %T", n.ID, n.Data)
	}

	var solid kernel.Solid
	switch data.Shape {
	case scene.ShapeBox:
		solid = k.Box(data.Size[0], data.Size[1], data.Size[2])
	case scene.ShapeSphere:
		solid = k.Sphere(data.Radius)
	case scene.ShapeCylinder:
		solid = k.Cylinder(data.Height, data.Radius)
	default:
		return nil, fmt.Errorf("primitive node %s has unsupported shape %v", n.ID, data.Shape)
	}
	return ts.apply(k, solid), nil
}

// handleBoolean folds the children with the node's operation. Transforms
// above the boolean are already applied to each child.
func handleBoolean(s *scene.Scene, k kernel.Kernel, n *scene.Node, ts *transformStack) (kernel.Solid, error) {
	data, ok := n.Data.(scene.BooleanData)
	if !ok {
		return nil, fmt.Errorf("boolean node %s has unexpected data type %T", n.ID, n.Data)
	}

	var acc kernel.Solid
	for _, child := range s.Children(n) {
		solid, err := walkNode(s, k, child, ts)
		if err != nil {
			return nil, err
		}
		if acc == nil {
			acc = solid
			continue
		}
		switch data.Op {
		case scene.OpUnion:
			acc = k.Union(acc, solid)
		case scene.OpDifference:
			acc = k.Difference(acc, solid)
		case scene.OpIntersection:
			acc = k.Intersection(acc, solid)
		default:
			return nil, fmt.Errorf("boolean node %s has unsupported op %v", n.ID, data.Op)
		}
	}
	if acc == nil {
		return nil, fmt.Errorf("node %s: %w", n.ID, ErrNoSolid)
	}
	return acc, nil
}

// handleTransform pushes the transform, recurses into its child, then pops.
func handleTransform(s *scene.Scene, k kernel.Kernel, n *scene.Node, ts *transformStack) (kernel.Solid, error) {
	td, ok := n.Data.(scene.TransformData)
	if !ok {
		return nil, fmt.Errorf("transform node %s has unexpected data type %T", n.ID, n.Data)
	}
	children := s.Children(n)
	if len(children) != 1 {
		return nil, fmt.Errorf("node %s: %w", n.ID, ErrNoSolid)
	}

	ts.push(td)
	defer ts.pop()
	return walkNode(s, k, children[0], ts)
}
