package raycast

import (
	"errors"
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
)

var (
	unitTri = [3]mgl32.Vec3{{0, 0, 0}, {1, 0, 0}, {0, 1, 0}}
	down    = mgl32.Vec3{0, 0, -1}
)

func TestIntersectTriangle(t *testing.T) {
	tests := []struct {
		name     string
		pos, dir mgl32.Vec3
		want     float32
		hit      bool
	}{
		{"straight down", mgl32.Vec3{0.2, 0.2, 1}, down, 1, true},
		{"from below hits back face", mgl32.Vec3{0.2, 0.2, -2}, mgl32.Vec3{0, 0, 1}, 2, true},
		{"pointing away", mgl32.Vec3{0.2, 0.2, 1}, mgl32.Vec3{0, 0, 1}, 0, false},
		{"outside triangle", mgl32.Vec3{0.8, 0.8, 1}, down, 0, false},
		{"parallel", mgl32.Vec3{0.2, 0.2, 1}, mgl32.Vec3{1, 0, 0}, 0, false},
		{"origin on plane", mgl32.Vec3{0.2, 0.2, 0}, down, 0, false},
		{"zero direction", mgl32.Vec3{0.2, 0.2, 1}, mgl32.Vec3{}, 0, false},
		{"on shared edge", mgl32.Vec3{0.5, 0.5, 3}, down, 3, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, ok := IntersectTriangle(tt.pos, tt.dir, unitTri[0], unitTri[1], unitTri[2])
			if ok != tt.hit {
				t.Fatalf("hit = %v, want %v", ok, tt.hit)
			}
			if ok && math.Abs(float64(d-tt.want)) > 1e-6 {
				t.Errorf("distance = %v, want %v", d, tt.want)
			}
		})
	}
}

func TestIntersectDegenerateTriangle(t *testing.T) {
	p := mgl32.Vec3{0.5, 0, 0}
	if _, ok := IntersectTriangle(mgl32.Vec3{0.5, 0, 1}, down, mgl32.Vec3{0, 0, 0}, p, mgl32.Vec3{1, 0, 0}); ok {
		t.Fatal("zero-area triangle reported a hit")
	}
}

func TestNoHit(t *testing.T) {
	h := NoHit()
	if h.OK || !math.IsInf(float64(h.Distance), 1) || h.Triangle != -1 {
		t.Fatalf("NoHit() = %+v", h)
	}
}

func TestHitConsiderTieKeepsFirst(t *testing.T) {
	h := NoHit()
	h.Consider(3, 2)
	h.Consider(5, 2)
	h.Consider(7, 4)
	if h.Triangle != 3 || h.Distance != 2 || !h.OK {
		t.Fatalf("hit = %+v, want triangle 3 at 2", h)
	}
	h.Consider(9, 1)
	if h.Triangle != 9 {
		t.Fatalf("nearer hit not taken: %+v", h)
	}
}

func TestTriangleCacheLayout(t *testing.T) {
	points := []mgl32.Vec3{{1, 2, 3}, {4, 5, 6}, {7, 8, 9}, {10, 11, 12}}
	indices := []uint32{0, 1, 2, 3, 2, 1}

	c, err := NewTriangleCache(points, indices)
	if err != nil {
		t.Fatalf("NewTriangleCache: %v", err)
	}
	if c.Len() != 2 {
		t.Fatalf("Len() = %d, want 2", c.Len())
	}
	for i, arr := range c.V {
		if len(arr) != 2 {
			t.Fatalf("array %d has %d entries, want 2", i, len(arr))
		}
	}
	want := [9][2]float32{
		{1, 10}, {2, 11}, {3, 12},
		{4, 7}, {5, 8}, {6, 9},
		{7, 4}, {8, 5}, {9, 6},
	}
	for i := range want {
		for ti := 0; ti < 2; ti++ {
			if c.V[i][ti] != want[i][ti] {
				t.Errorf("V[%d][%d] = %v, want %v", i, ti, c.V[i][ti], want[i][ti])
			}
		}
	}
	if c.Vertex(1, 0) != points[3] {
		t.Errorf("Vertex(1,0) = %v, want %v", c.Vertex(1, 0), points[3])
	}
}

func TestTriangleCacheRejectsPartialTriangle(t *testing.T) {
	_, err := NewTriangleCache(make([]mgl32.Vec3, 3), []uint32{0, 1})
	if !errors.Is(err, ErrIndexCount) {
		t.Fatalf("err = %v, want ErrIndexCount", err)
	}
}

func TestTriangleCacheEmpty(t *testing.T) {
	c, err := NewTriangleCache(nil, nil)
	if err != nil {
		t.Fatalf("NewTriangleCache: %v", err)
	}
	if h := c.Nearest(mgl32.Vec3{}, down); h.OK {
		t.Fatalf("empty cache reported %+v", h)
	}
}

// stack returns two parallel copies of the unit triangle at z=0 and z=-1,
// the farther one listed first.
func stack() ([]mgl32.Vec3, []uint32) {
	points := []mgl32.Vec3{
		{0, 0, -1}, {1, 0, -1}, {0, 1, -1},
		{0, 0, 0}, {1, 0, 0}, {0, 1, 0},
	}
	return points, []uint32{0, 1, 2, 3, 4, 5}
}

func TestNearestPicksClosest(t *testing.T) {
	points, indices := stack()
	c, err := NewTriangleCache(points, indices)
	if err != nil {
		t.Fatal(err)
	}
	pos := mgl32.Vec3{0.2, 0.2, 1}
	for name, h := range map[string]Hit{
		"soa":     c.Nearest(pos, down),
		"indexed": NearestIndexed(points, indices, pos, down),
	} {
		if !h.OK || h.Triangle != 1 || h.Distance != 1 {
			t.Errorf("%s: hit = %+v, want triangle 1 at 1", name, h)
		}
	}
}

func TestNearestDuplicateTrianglesTieBreak(t *testing.T) {
	points := []mgl32.Vec3{{0, 0, 0}, {1, 0, 0}, {0, 1, 0}}
	indices := []uint32{0, 1, 2, 0, 1, 2, 0, 2, 1}
	c, err := NewTriangleCache(points, indices)
	if err != nil {
		t.Fatal(err)
	}
	h := c.Nearest(mgl32.Vec3{0.2, 0.2, 1}, down)
	if h.Triangle != 0 {
		t.Errorf("soa tie went to %d, want 0", h.Triangle)
	}
	h = NearestIndexed(points, indices, mgl32.Vec3{0.2, 0.2, 1}, down)
	if h.Triangle != 0 {
		t.Errorf("indexed tie went to %d, want 0", h.Triangle)
	}
}
