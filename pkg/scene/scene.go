// Package scene defines the CSG scene produced by the scene DSL: a tree of
// solids and the two roles, source and destination, that feed a normal
// projection.
package scene

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl64"
)

// NodeID identifies a node within one scene.
type NodeID string

// NodeKind enumerates the types of nodes in a scene.
type NodeKind int

const (
	NodePrimitive NodeKind = iota // box, sphere, cylinder
	NodeBoolean                   // union, difference, intersection
	NodeTransform                 // translate, rotate
)

func (k NodeKind) String() string {
	switch k {
	case NodePrimitive:
		return "primitive"
	case NodeBoolean:
		return "boolean"
	case NodeTransform:
		return "transform"
	default:
		return "unknown"
	}
}

// Node is one solid expression.
type Node struct {
	ID       NodeID   `json:"id"`
	Kind     NodeKind `json:"kind"`
	Children []NodeID `json:"children,omitempty"`
	Data     NodeData `json:"data"`
}

// NodeData is the interface for kind-specific node payloads.
type NodeData interface {
	nodeData() // marker method restricting implementations to this package
}

// Shape distinguishes primitive solids.
type Shape int

const (
	ShapeBox Shape = iota
	ShapeSphere
	ShapeCylinder
)

func (s Shape) String() string {
	switch s {
	case ShapeBox:
		return "box"
	case ShapeSphere:
		return "sphere"
	case ShapeCylinder:
		return "cylinder"
	default:
		return "unknown"
	}
}

// PrimitiveData describes a primitive centered on the origin. Size is
// used by boxes, Radius by spheres and cylinders, Height by cylinders.
type PrimitiveData struct {
	Shape  Shape      `json:"shape"`
	Size   mgl64.Vec3 `json:"size,omitempty"`
	Radius float64    `json:"radius,omitempty"`
	Height float64    `json:"height,omitempty"`
}

func (PrimitiveData) nodeData() {}

// BooleanOp enumerates CSG operations.
type BooleanOp int

const (
	OpUnion BooleanOp = iota
	OpDifference
	OpIntersection
)

func (op BooleanOp) String() string {
	switch op {
	case OpUnion:
		return "union"
	case OpDifference:
		return "difference"
	case OpIntersection:
		return "intersection"
	default:
		return "unknown"
	}
}

// BooleanData combines the node's children. Difference subtracts every
// later child from the first.
type BooleanData struct {
	Op BooleanOp `json:"op"`
}

func (BooleanData) nodeData() {}

// TransformData moves its single child. Rotation is applied before
// Translation.
type TransformData struct {
	Translation *mgl64.Vec3 `json:"translation,omitempty"`
	Rotation    *mgl64.Vec3 `json:"rotation,omitempty"` // Euler angles in degrees
}

func (TransformData) nodeData() {}

// Role selects the solid tessellated for one side of the projection and
// how it is tessellated and refined.
type Role struct {
	Node        NodeID  `json:"node"`
	Cells       int     `json:"cells,omitempty"`        // 0 = kernel default
	SmoothAngle float32 `json:"smooth_angle,omitempty"` // 0 = mesh default
}

// Scene is the result of evaluating a scene script. It is never mutated
// after evaluation.
type Scene struct {
	Nodes             map[NodeID]*Node `json:"nodes"`
	Source            *Role            `json:"source,omitempty"`
	Destination       *Role            `json:"destination,omitempty"`
	PreferAccelerated bool             `json:"prefer_accelerated"`

	next int
}

// New creates an empty scene.
func New() *Scene {
	return &Scene{Nodes: make(map[NodeID]*Node)}
}

// Add assigns n the next free ID, stores it and returns the ID.
func (s *Scene) Add(n *Node) NodeID {
	s.next++
	n.ID = NodeID(fmt.Sprintf("n%d", s.next))
	s.Nodes[n.ID] = n
	return n.ID
}

// Get returns the node with the given ID, or nil.
func (s *Scene) Get(id NodeID) *Node {
	return s.Nodes[id]
}

// Children returns the child nodes of n.
func (s *Scene) Children(n *Node) []*Node {
	children := make([]*Node, 0, len(n.Children))
	for _, cid := range n.Children {
		if c := s.Nodes[cid]; c != nil {
			children = append(children, c)
		}
	}
	return children
}

// NodeCount returns the total number of nodes.
func (s *Scene) NodeCount() int {
	return len(s.Nodes)
}

// Primitive adds a primitive node.
func (s *Scene) Primitive(d PrimitiveData) NodeID {
	return s.Add(&Node{Kind: NodePrimitive, Data: d})
}

// Boolean adds a boolean node over children.
func (s *Scene) Boolean(op BooleanOp, children ...NodeID) NodeID {
	return s.Add(&Node{Kind: NodeBoolean, Children: children, Data: BooleanData{Op: op}})
}

// Translate adds a translation of child.
func (s *Scene) Translate(child NodeID, v mgl64.Vec3) NodeID {
	return s.Add(&Node{Kind: NodeTransform, Children: []NodeID{child}, Data: TransformData{Translation: &v}})
}

// Rotate adds a rotation of child by Euler angles in degrees.
func (s *Scene) Rotate(child NodeID, deg mgl64.Vec3) NodeID {
	return s.Add(&Node{Kind: NodeTransform, Children: []NodeID{child}, Data: TransformData{Rotation: &deg}})
}
