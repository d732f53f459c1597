// Package refine implements the mesh preprocessing pass consumed by the
// normal projector: triangulation, vertex normal generation with an
// optional smoothing angle, and the vertex splitting that goes with it.
package refine

import (
	"math"

	"github.com/chazu/normproj/pkg/mesh"
	"github.com/go-gl/mathgl/mgl32"
)

// sameNormalDot is the cosine above which two corner normals of one vertex
// are considered equal and keep sharing that vertex.
const sameNormalDot = 0.99999

// Refiner applies refine settings to a mesh in place.
type Refiner struct{}

// Refine implements the refine contract with the package-level Refine.
func (Refiner) Refine(m *mesh.Mesh, rs mesh.RefineSettings) error {
	return Refine(m, rs)
}

// Refine mutates m according to rs. Effects run in a fixed order:
// triangulation first, then normal generation. GenNormalsWithSmoothAngle
// takes precedence over GenNormals when both are set.
func Refine(m *mesh.Mesh, rs mesh.RefineSettings) error {
	if err := m.ValidateTopology(); err != nil {
		return err
	}
	if rs.Flags.Triangulate {
		Triangulate(m)
	}
	switch {
	case rs.Flags.GenNormalsWithSmoothAngle:
		SmoothNormals(m, rs.SmoothAngle, !rs.Flags.NoReindexing)
	case rs.Flags.GenNormals:
		VertexNormals(m)
	}
	return nil
}

// Triangulate fans every polygon into triangles and clears Counts.
func Triangulate(m *mesh.Mesh) {
	if len(m.Counts) == 0 {
		return
	}
	if m.IsTriangulated() {
		m.Counts = nil
		return
	}
	out := make([]uint32, 0, (len(m.Indices)-len(m.Counts))*3)
	forEachFace(m, func(_ int, face []uint32) {
		for k := 1; k+1 < len(face); k++ {
			out = append(out, face[0], face[k], face[k+1])
		}
	})
	m.Indices = out
	m.Counts = nil
}

// VertexNormals sets every referenced vertex normal to the normalized sum
// of its area-weighted incident face normals. Vertices without a usable
// incident face keep their current normal.
func VertexNormals(m *mesh.Mesh) {
	acc := make([]mgl32.Vec3, len(m.Points))
	forEachFace(m, func(_ int, face []uint32) {
		n := faceNormal(m.Points, face)
		if isZero(n) {
			return
		}
		for _, idx := range face {
			acc[idx] = acc[idx].Add(n)
		}
	})
	normals := resize(m.Normals, len(m.Points))
	for i, n := range acc {
		if u, ok := normalize(n); ok {
			normals[i] = u
		}
	}
	m.Normals = normals
	m.Flags.HasNormals = true
}

// SmoothNormals generates normals that only merge faces within angle
// degrees of each other. With reindex set, vertices whose corners end up
// with different normals are split so each corner keeps its own normal;
// otherwise the corner normals of a vertex are averaged.
func SmoothNormals(m *mesh.Mesh, angle float32, reindex bool) {
	threshold := float32(math.Cos(float64(mgl32.DegToRad(angle))))
	if angle >= 180 {
		threshold = -2
	}

	var (
		raw    []mgl32.Vec3 // area-weighted face normals
		unit   []mgl32.Vec3
		starts []int
	)
	incident := make([][]int, len(m.Points))
	forEachFace(m, func(f int, face []uint32) {
		n := faceNormal(m.Points, face)
		u, _ := normalize(n)
		raw = append(raw, n)
		unit = append(unit, u)
		if f == 0 {
			starts = append(starts, 0)
		} else {
			starts = append(starts, starts[f-1]+faceLen(m, f-1))
		}
		for _, idx := range face {
			incident[idx] = append(incident[idx], f)
		}
	})

	// One normal per corner, in index order.
	corners := make([]mgl32.Vec3, len(m.Indices))
	forEachFace(m, func(f int, face []uint32) {
		for k, idx := range face {
			var sum mgl32.Vec3
			for _, g := range incident[idx] {
				if g == f || unit[f].Dot(unit[g]) >= threshold {
					sum = sum.Add(raw[g])
				}
			}
			corners[starts[f]+k], _ = normalize(sum)
		}
	})

	normals := resize(m.Normals, len(m.Points))
	if !reindex {
		acc := make([]mgl32.Vec3, len(m.Points))
		for i, idx := range m.Indices {
			acc[idx] = acc[idx].Add(corners[i])
		}
		for i, n := range acc {
			if u, ok := normalize(n); ok {
				normals[i] = u
			}
		}
		m.Normals = normals
		m.Flags.HasNormals = true
		return
	}

	// Split vertices. The first distinct normal of a vertex keeps the
	// original index so unsplit meshes are left unnumbered.
	variants := make([][]uint32, len(m.Points))
	for i, idx := range m.Indices {
		n := corners[i]
		if isZero(n) {
			continue
		}
		found := false
		for _, vi := range variants[idx] {
			if normals[vi].Dot(n) >= sameNormalDot {
				m.Indices[i] = vi
				found = true
				break
			}
		}
		if found {
			continue
		}
		target := idx
		if len(variants[idx]) > 0 {
			target = uint32(len(m.Points))
			m.Points = append(m.Points, m.Points[idx])
			normals = append(normals, n)
		}
		normals[target] = n
		variants[idx] = append(variants[idx], target)
		m.Indices[i] = target
	}
	m.Normals = normals
	m.Flags.HasNormals = true
}

// forEachFace calls fn with each face's index slice. The slice aliases
// m.Indices.
func forEachFace(m *mesh.Mesh, fn func(f int, face []uint32)) {
	if len(m.Counts) == 0 {
		for f := 0; f*3+3 <= len(m.Indices); f++ {
			fn(f, m.Indices[f*3:f*3+3])
		}
		return
	}
	off := 0
	for f, c := range m.Counts {
		fn(f, m.Indices[off:off+int(c)])
		off += int(c)
	}
}

func faceLen(m *mesh.Mesh, f int) int {
	if len(m.Counts) == 0 {
		return 3
	}
	return int(m.Counts[f])
}

// faceNormal returns the Newell normal of a polygon. Its length is twice
// the polygon area, so summing it weights by area.
func faceNormal(points []mgl32.Vec3, face []uint32) mgl32.Vec3 {
	if len(face) == 3 {
		p0, p1, p2 := points[face[0]], points[face[1]], points[face[2]]
		return p1.Sub(p0).Cross(p2.Sub(p0))
	}
	var n mgl32.Vec3
	for i := range face {
		a := points[face[i]]
		b := points[face[(i+1)%len(face)]]
		n[0] += (a[1] - b[1]) * (a[2] + b[2])
		n[1] += (a[2] - b[2]) * (a[0] + b[0])
		n[2] += (a[0] - b[0]) * (a[1] + b[1])
	}
	return n
}

func normalize(v mgl32.Vec3) (mgl32.Vec3, bool) {
	l := v.Len()
	if l == 0 || math.IsNaN(float64(l)) || math.IsInf(float64(l), 0) {
		return mgl32.Vec3{}, false
	}
	return v.Mul(1 / l), true
}

func isZero(v mgl32.Vec3) bool {
	return v[0] == 0 && v[1] == 0 && v[2] == 0
}

// resize returns normals grown or shrunk to n entries, keeping the
// existing prefix.
func resize(normals []mgl32.Vec3, n int) []mgl32.Vec3 {
	if len(normals) >= n {
		return normals[:n]
	}
	out := make([]mgl32.Vec3, n)
	copy(out, normals)
	return out
}
