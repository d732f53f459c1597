package project

import (
	"fmt"

	"github.com/chazu/normproj/pkg/accel"
	"github.com/chazu/normproj/pkg/mesh"
	"github.com/chazu/normproj/pkg/raycast"
	"golang.org/x/sync/errgroup"
)

// Backend runs the nearest-hit search for every destination vertex and
// writes projected normals into dst.Normals. Both variants implement the
// same test, tie-break and interpolation.
type Backend interface {
	Name() string
	Project(dst, src *mesh.Mesh) error
}

// Compile-time interface checks.
var (
	_ Backend = (*cpuBackend)(nil)
	_ Backend = (*accelBackend)(nil)
)

// cpuBackend searches a structure-of-arrays triangle cache. A nil cache
// means the source has no triangles.
type cpuBackend struct {
	cache   *raycast.TriangleCache
	workers int
}

func (b *cpuBackend) Name() string { return "cpu" }

// Project splits the destination vertices into contiguous chunks. Each
// vertex only writes its own normal slot.
func (b *cpuBackend) Project(dst, src *mesh.Mesh) error {
	n := len(dst.Points)
	if n == 0 || b.cache == nil || b.cache.Len() == 0 {
		return nil
	}
	workers := max(b.workers, 1)
	chunk := (n + workers - 1) / workers

	var g errgroup.Group
	for lo := 0; lo < n; lo += chunk {
		hi := min(lo+chunk, n)
		g.Go(func() error {
			for v := lo; v < hi; v++ {
				b.projectVertex(dst, src, v)
			}
			return nil
		})
	}
	return g.Wait()
}

func (b *cpuBackend) projectVertex(dst, src *mesh.Mesh, v int) {
	pos := dst.Points[v]
	dir := dst.Normals[v]
	h := b.cache.Nearest(pos, dir)
	if !h.OK {
		return
	}
	tri := src.Indices[h.Triangle*3 : h.Triangle*3+3]
	dst.Normals[v] = raycast.ProjectedNormal(
		pos.Add(dir.Mul(h.Distance)),
		b.cache.Vertex(h.Triangle, 0), b.cache.Vertex(h.Triangle, 1), b.cache.Vertex(h.Triangle, 2),
		src.Normals[tri[0]], src.Normals[tri[1]], src.Normals[tri[2]],
	)
}

// accelBackend hands the whole projection to an accelerated device.
type accelBackend struct {
	dev accel.Device
}

func (b *accelBackend) Name() string { return b.dev.Name() }

// Project blocks until the device has synchronized its results into
// dst.Normals. On accel.ErrFallbackToCPU dst is untouched.
func (b *accelBackend) Project(dst, src *mesh.Mesh) error {
	if len(dst.Points) == 0 || src.TriangleCount() == 0 {
		return nil
	}
	job := &accel.Job{
		Points:  src.Points,
		Normals: src.Normals,
		Indices: src.Indices,
		Origins: dst.Points,
		Result:  dst.Normals,
	}
	if err := b.dev.ProjectNormals(job); err != nil {
		return fmt.Errorf("device %s: %w", b.dev.Name(), err)
	}
	return nil
}
