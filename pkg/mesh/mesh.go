// Package mesh defines the polygon mesh exchanged between the geometry
// kernel, the refine step and the normal projector.
package mesh

import (
	"errors"
	"fmt"

	"github.com/go-gl/mathgl/mgl32"
)

// ErrInvalidMesh is wrapped by every error returned from Validate.
var ErrInvalidMesh = errors.New("invalid mesh")

// DefaultSmoothAngle merges every face into smooth vertex normals.
const DefaultSmoothAngle float32 = 180

// Flags describes which optional attributes a mesh carries.
type Flags struct {
	HasNormals bool `json:"hasNormals"`
}

// RefineFlags selects the effects of a refine pass. The effects are
// independent; any combination is valid.
type RefineFlags struct {
	Triangulate               bool `json:"triangulate"`
	GenNormals                bool `json:"genNormals"`
	GenNormalsWithSmoothAngle bool `json:"genNormalsWithSmoothAngle"`
	NoReindexing              bool `json:"noReindexing"`
}

// RefineSettings configures a refine pass. SmoothAngle is in degrees and
// only consulted when GenNormalsWithSmoothAngle is set.
type RefineSettings struct {
	Flags       RefineFlags `json:"flags"`
	SmoothAngle float32     `json:"smoothAngle"`
}

// Mesh is an indexed polygon mesh. Counts holds the vertex count of each
// face; when empty, every face is a triangle. Normals are per point.
type Mesh struct {
	Name           string
	Points         []mgl32.Vec3
	Indices        []uint32
	Counts         []uint32
	Normals        []mgl32.Vec3
	Flags          Flags
	RefineSettings RefineSettings
}

// New returns an empty mesh with default refine settings.
func New(name string) *Mesh {
	return &Mesh{
		Name:           name,
		RefineSettings: RefineSettings{SmoothAngle: DefaultSmoothAngle},
	}
}

// VertexCount returns the number of points.
func (m *Mesh) VertexCount() int {
	return len(m.Points)
}

// FaceCount returns the number of faces, polygons included.
func (m *Mesh) FaceCount() int {
	if len(m.Counts) > 0 {
		return len(m.Counts)
	}
	return len(m.Indices) / 3
}

// TriangleCount returns the number of triangles the index list describes.
// It is only meaningful for triangulated meshes.
func (m *Mesh) TriangleCount() int {
	return len(m.Indices) / 3
}

// IsTriangulated reports whether every face is a triangle.
func (m *Mesh) IsTriangulated() bool {
	for _, c := range m.Counts {
		if c != 3 {
			return false
		}
	}
	return true
}

// IsEmpty returns true if the mesh has no geometry.
func (m *Mesh) IsEmpty() bool {
	return len(m.Points) == 0
}

// Validate checks the index, count and normal invariants.
func (m *Mesh) Validate() error {
	if err := m.ValidateTopology(); err != nil {
		return err
	}
	if len(m.Normals) != 0 && len(m.Normals) != len(m.Points) {
		return fmt.Errorf("%w: %q has %d normals for %d points", ErrInvalidMesh, m.Name, len(m.Normals), len(m.Points))
	}
	return nil
}

// ValidateTopology checks face counts and index bounds only. Normals may be
// left over from an earlier topology; normal generation resizes them.
func (m *Mesh) ValidateTopology() error {
	if len(m.Counts) == 0 {
		if len(m.Indices)%3 != 0 {
			return fmt.Errorf("%w: %q has %d indices, not a multiple of 3", ErrInvalidMesh, m.Name, len(m.Indices))
		}
	} else {
		var total int
		for i, c := range m.Counts {
			if c < 3 {
				return fmt.Errorf("%w: %q face %d has %d vertices", ErrInvalidMesh, m.Name, i, c)
			}
			total += int(c)
		}
		if total != len(m.Indices) {
			return fmt.Errorf("%w: %q face counts sum to %d, have %d indices", ErrInvalidMesh, m.Name, total, len(m.Indices))
		}
	}
	n := uint32(len(m.Points))
	for i, idx := range m.Indices {
		if idx >= n {
			return fmt.Errorf("%w: %q index %d references point %d of %d", ErrInvalidMesh, m.Name, i, idx, n)
		}
	}
	return nil
}

// Clone returns a deep copy.
func (m *Mesh) Clone() *Mesh {
	c := *m
	c.Points = append([]mgl32.Vec3(nil), m.Points...)
	c.Indices = append([]uint32(nil), m.Indices...)
	c.Counts = append([]uint32(nil), m.Counts...)
	c.Normals = append([]mgl32.Vec3(nil), m.Normals...)
	return &c
}

// SameTopology reports whether both meshes share an identical, non-empty
// index sequence.
func SameTopology(a, b *Mesh) bool {
	if len(a.Indices) == 0 || len(a.Indices) != len(b.Indices) {
		return false
	}
	for i := range a.Indices {
		if a.Indices[i] != b.Indices[i] {
			return false
		}
	}
	return true
}
