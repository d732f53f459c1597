// Package kernel defines the abstract geometry kernel used to build the
// meshes a projection runs on. Scenes are described as solids; the kernel
// turns them into indexed triangle meshes.
package kernel

import "github.com/chazu/normproj/pkg/mesh"

// DefaultCells is the marching cubes resolution used when a caller passes
// a non-positive cell count.
const DefaultCells = 64

// Solid is an opaque handle to a geometry kernel solid.
type Solid interface {
	// BoundingBox returns the axis-aligned bounding box.
	BoundingBox() (min, max [3]float64)
}

// Kernel is the abstract geometry kernel interface. Primitives are
// centered on the origin.
type Kernel interface {
	// Primitives
	Box(x, y, z float64) Solid
	Sphere(radius float64) Solid
	Cylinder(height, radius float64) Solid

	// Boolean operations
	Union(a, b Solid) Solid
	Difference(a, b Solid) Solid
	Intersection(a, b Solid) Solid

	// Transforms
	Translate(s Solid, x, y, z float64) Solid
	Rotate(s Solid, x, y, z float64) Solid // Euler angles in degrees

	// ToMesh tessellates s into a welded triangle mesh with vertex
	// normals. cells sets the resolution along the longest axis.
	ToMesh(s Solid, name string, cells int) (*mesh.Mesh, error)
}

// Cells returns n, or DefaultCells when n is not positive.
func Cells(n int) int {
	if n <= 0 {
		return DefaultCells
	}
	return n
}
