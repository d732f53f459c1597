package raycast

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
)

func TestBarycentric(t *testing.T) {
	tests := []struct {
		name       string
		pos        mgl32.Vec3
		w0, w1, w2 float32
	}{
		{"vertex 0", mgl32.Vec3{0, 0, 0}, 1, 0, 0},
		{"vertex 1", mgl32.Vec3{1, 0, 0}, 0, 1, 0},
		{"vertex 2", mgl32.Vec3{0, 1, 0}, 0, 0, 1},
		{"interior", mgl32.Vec3{0.2, 0.2, 0}, 0.6, 0.2, 0.2},
		{"edge midpoint", mgl32.Vec3{0.5, 0.5, 0}, 0, 0.5, 0.5},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w0, w1, w2 := Barycentric(tt.pos, unitTri[0], unitTri[1], unitTri[2])
			for i, pair := range [][2]float32{{w0, tt.w0}, {w1, tt.w1}, {w2, tt.w2}} {
				if math.Abs(float64(pair[0]-pair[1])) > 1e-6 {
					t.Errorf("w%d = %v, want %v", i, pair[0], pair[1])
				}
			}
		})
	}
}

func TestBarycentricDegenerate(t *testing.T) {
	w0, w1, w2 := Barycentric(mgl32.Vec3{}, mgl32.Vec3{}, mgl32.Vec3{1, 0, 0}, mgl32.Vec3{2, 0, 0})
	if w0 != 0 || w1 != 0 || w2 != 0 {
		t.Fatalf("weights = %v %v %v, want zeros", w0, w1, w2)
	}
}

func TestProjectedNormalIsNegatedBlend(t *testing.T) {
	up := mgl32.Vec3{0, 0, 1}
	got := ProjectedNormal(mgl32.Vec3{0.2, 0.2, 0}, unitTri[0], unitTri[1], unitTri[2], up, up, up)
	if !got.ApproxEqualThreshold(mgl32.Vec3{0, 0, -1}, 1e-6) {
		t.Fatalf("ProjectedNormal = %v, want (0,0,-1)", got)
	}

	x := mgl32.Vec3{1, 0, 0}
	y := mgl32.Vec3{0, 1, 0}
	got = ProjectedNormal(mgl32.Vec3{0.5, 0.5, 0}, unitTri[0], unitTri[1], unitTri[2], up, x, y)
	if !got.ApproxEqualThreshold(mgl32.Vec3{-0.5, -0.5, 0}, 1e-6) {
		t.Fatalf("ProjectedNormal = %v, want (-0.5,-0.5,0)", got)
	}
}
