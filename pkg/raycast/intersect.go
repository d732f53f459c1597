// Package raycast provides the brute-force nearest-hit search used by the
// normal projector: a Moller-Trumbore ray/triangle test, a hit record and
// a structure-of-arrays triangle cache that the search loop walks.
package raycast

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

const (
	// detEpsilon rejects triangles that are degenerate or parallel to the ray.
	detEpsilon = 1e-10
	// edgeEpsilon widens the barycentric bounds so rays through shared
	// edges do not slip between neighbouring triangles.
	edgeEpsilon = 1e-4
)

// Hit is the nearest intersection found along a ray.
type Hit struct {
	Triangle int
	Distance float32
	OK       bool
}

// NoHit returns the initial search state: no triangle at infinite distance.
func NoHit() Hit {
	return Hit{Triangle: -1, Distance: float32(math.Inf(1))}
}

// Consider records triangle ti at distance d if it is strictly nearer than
// the current hit. Equal distances keep the earlier triangle.
func (h *Hit) Consider(ti int, d float32) {
	if d < h.Distance {
		h.Triangle = ti
		h.Distance = d
		h.OK = true
	}
}

// IntersectTriangle tests the ray (pos, dir) against triangle (p0, p1, p2).
// Both faces count. It reports the distance along dir, which must be
// positive and finite.
func IntersectTriangle(pos, dir, p0, p1, p2 mgl32.Vec3) (float32, bool) {
	return intersect(
		pos[0], pos[1], pos[2],
		dir[0], dir[1], dir[2],
		p0[0], p0[1], p0[2],
		p1[0], p1[1], p1[2],
		p2[0], p2[1], p2[2],
	)
}

// intersect is the scalar form shared by the AoS and SoA paths so both
// evaluate the same float32 operations in the same order.
func intersect(ox, oy, oz, dx, dy, dz, ax, ay, az, bx, by, bz, cx, cy, cz float32) (float32, bool) {
	e1x, e1y, e1z := bx-ax, by-ay, bz-az
	e2x, e2y, e2z := cx-ax, cy-ay, cz-az

	// p = dir x e2
	px := dy*e2z - dz*e2y
	py := dz*e2x - dx*e2z
	pz := dx*e2y - dy*e2x

	det := e1x*px + e1y*py + e1z*pz
	if det > -detEpsilon && det < detEpsilon {
		return 0, false
	}
	inv := 1 / det

	tx, ty, tz := ox-ax, oy-ay, oz-az
	u := (tx*px + ty*py + tz*pz) * inv
	if u < -edgeEpsilon || u > 1+edgeEpsilon {
		return 0, false
	}

	// q = t x e1
	qx := ty*e1z - tz*e1y
	qy := tz*e1x - tx*e1z
	qz := tx*e1y - ty*e1x

	v := (dx*qx + dy*qy + dz*qz) * inv
	if v < -edgeEpsilon || u+v > 1+edgeEpsilon {
		return 0, false
	}

	d := (e2x*qx + e2y*qy + e2z*qz) * inv
	if !(d > 0) || math.IsInf(float64(d), 0) {
		return 0, false
	}
	return d, true
}
