package raycast

import (
	"errors"
	"fmt"

	"github.com/go-gl/mathgl/mgl32"
)

// ErrIndexCount is returned when an index list does not describe whole
// triangles.
var ErrIndexCount = errors.New("raycast: index count is not a multiple of 3")

// TriangleCache holds triangle vertex positions as nine parallel arrays,
// vertex-major then axis-minor: V[0] is vertex0.x of every triangle,
// V[1] vertex0.y, ... V[8] vertex2.z. Entry t of each array belongs to
// triangle t.
type TriangleCache struct {
	V [9][]float32
}

// NewTriangleCache scatters the triangles described by indices into a
// TriangleCache.
func NewTriangleCache(points []mgl32.Vec3, indices []uint32) (*TriangleCache, error) {
	if len(indices)%3 != 0 {
		return nil, fmt.Errorf("%w: %d", ErrIndexCount, len(indices))
	}
	n := len(indices) / 3
	c := &TriangleCache{}
	for i := range c.V {
		c.V[i] = make([]float32, n)
	}
	for ti := 0; ti < n; ti++ {
		for k := 0; k < 3; k++ {
			p := points[indices[ti*3+k]]
			c.V[k*3+0][ti] = p[0]
			c.V[k*3+1][ti] = p[1]
			c.V[k*3+2][ti] = p[2]
		}
	}
	return c, nil
}

// Len returns the number of cached triangles.
func (c *TriangleCache) Len() int {
	return len(c.V[0])
}

// Vertex returns vertex k (0..2) of triangle ti.
func (c *TriangleCache) Vertex(ti, k int) mgl32.Vec3 {
	return mgl32.Vec3{c.V[k*3][ti], c.V[k*3+1][ti], c.V[k*3+2][ti]}
}

// Nearest walks every triangle in ascending order and returns the nearest
// hit of the ray (pos, dir).
func (c *TriangleCache) Nearest(pos, dir mgl32.Vec3) Hit {
	h := NoHit()
	x0, y0, z0 := c.V[0], c.V[1], c.V[2]
	x1, y1, z1 := c.V[3], c.V[4], c.V[5]
	x2, y2, z2 := c.V[6], c.V[7], c.V[8]
	for ti := range x0 {
		d, ok := intersect(
			pos[0], pos[1], pos[2],
			dir[0], dir[1], dir[2],
			x0[ti], y0[ti], z0[ti],
			x1[ti], y1[ti], z1[ti],
			x2[ti], y2[ti], z2[ti],
		)
		if ok {
			h.Consider(ti, d)
		}
	}
	return h
}

// NearestIndexed is the interleaved counterpart of Nearest, reading
// positions through an index list.
func NearestIndexed(points []mgl32.Vec3, indices []uint32, pos, dir mgl32.Vec3) Hit {
	h := NoHit()
	for ti := 0; ti*3+3 <= len(indices); ti++ {
		d, ok := IntersectTriangle(pos, dir,
			points[indices[ti*3]], points[indices[ti*3+1]], points[indices[ti*3+2]])
		if ok {
			h.Consider(ti, d)
		}
	}
	return h
}
