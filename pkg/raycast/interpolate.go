package raycast

import "github.com/go-gl/mathgl/mgl32"

// Barycentric returns the area-proportional weights of pos against the
// triangle (p0, p1, p2). A zero-area triangle yields zero weights.
func Barycentric(pos, p0, p1, p2 mgl32.Vec3) (w0, w1, w2 float32) {
	area := p0.Sub(p1).Cross(p0.Sub(p2)).Len()
	if area == 0 {
		return 0, 0, 0
	}
	f0, f1, f2 := p0.Sub(pos), p1.Sub(pos), p2.Sub(pos)
	inv := 1 / area
	w0 = f1.Cross(f2).Len() * inv
	w1 = f2.Cross(f0).Len() * inv
	w2 = f0.Cross(f1).Len() * inv
	return w0, w1, w2
}

// ProjectedNormal blends the vertex normals of a hit triangle at pos and
// negates the result. Normals written to the destination mesh point the
// opposite way of the source normals they were sampled from.
func ProjectedNormal(pos, p0, p1, p2, n0, n1, n2 mgl32.Vec3) mgl32.Vec3 {
	w0, w1, w2 := Barycentric(pos, p0, p1, p2)
	n := n0.Mul(w0).Add(n1.Mul(w1)).Add(n2.Mul(w2))
	return n.Mul(-1)
}
