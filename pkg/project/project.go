package project

import (
	"errors"
	"fmt"
	"time"

	"github.com/chazu/normproj/pkg/accel"
	"github.com/chazu/normproj/pkg/mesh"
	"github.com/chazu/normproj/pkg/raycast"
	"github.com/go-gl/mathgl/mgl32"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// ErrAliasedMeshes is returned when source and destination are the same
// mesh. The two refine passes mutate them concurrently.
var ErrAliasedMeshes = errors.New("project: source and destination must be distinct meshes")

// ErrNilMesh is returned when either mesh is nil.
var ErrNilMesh = errors.New("project: nil mesh")

// ProjectNormals replaces the normals of dst with normals sampled from
// src. dst gains HasNormals and loses smoothing-angle normal generation in
// its refine settings. src is refined in place: its normals are
// regenerated and its faces may be triangulated and reindexed.
//
// Existing normals of either mesh may be stale; only topology is checked
// up front. dst always ends with one normal per point.
//
// Empty inputs are not errors: with no source triangles or no destination
// vertices, dst ends up with the normals its own refine produced.
func ProjectNormals(dst, src *mesh.Mesh, flags EditFlags, opts ...Option) error {
	if dst == nil || src == nil {
		return ErrNilMesh
	}
	if dst == src {
		return ErrAliasedMeshes
	}
	if err := src.ValidateTopology(); err != nil {
		return fmt.Errorf("source: %w", err)
	}
	if err := dst.ValidateTopology(); err != nil {
		return fmt.Errorf("destination: %w", err)
	}
	o := newOptions(opts)

	dst.Flags.HasNormals = true
	dst.RefineSettings.Flags.GenNormalsWithSmoothAngle = false

	if done, err := fastPath(dst, src, o.refiner); done {
		if err == nil {
			o.logger.Debug("projected normals by topology match",
				zap.String("dst", dst.Name), zap.Int("normals", len(dst.Normals)))
		}
		return err
	}

	dev := o.currentDevice()
	useAccel := flags.PreferAccelerated && accel.Usable(dev)

	var cache *raycast.TriangleCache
	var g errgroup.Group
	g.Go(func() error {
		rs := mesh.RefineSettings{
			Flags: mesh.RefineFlags{
				Triangulate:               true,
				GenNormalsWithSmoothAngle: true,
			},
			SmoothAngle: src.RefineSettings.SmoothAngle,
		}
		if err := o.refiner.Refine(src, rs); err != nil {
			return fmt.Errorf("refining source: %w", err)
		}
		if err := checkSource(src); err != nil {
			return err
		}
		if useAccel || src.TriangleCount() == 0 {
			return nil
		}
		var err error
		cache, err = raycast.NewTriangleCache(src.Points, src.Indices)
		return err
	})
	g.Go(func() error {
		rs := mesh.RefineSettings{
			Flags: mesh.RefineFlags{
				NoReindexing: true,
				GenNormals:   true,
			},
		}
		if err := o.refiner.Refine(dst, rs); err != nil {
			return fmt.Errorf("refining destination: %w", err)
		}
		dst.Normals = fitNormals(dst.Normals, len(dst.Points))
		return nil
	})
	if err := g.Wait(); err != nil {
		return err
	}

	var b Backend = &cpuBackend{cache: cache, workers: o.workers}
	if useAccel {
		b = &accelBackend{dev: dev}
	}

	start := time.Now()
	err := b.Project(dst, src)
	if errors.Is(err, accel.ErrFallbackToCPU) {
		o.logger.Warn("accelerated device declined projection, using CPU",
			zap.String("device", b.Name()), zap.Error(err))
		b, err = cpuFallback(src, o.workers)
		if err == nil {
			err = b.Project(dst, src)
		}
	}
	if err != nil {
		return err
	}

	o.logger.Debug("projected normals",
		zap.String("backend", b.Name()),
		zap.String("dst", dst.Name),
		zap.Int("rays", len(dst.Points)),
		zap.Int("triangles", src.TriangleCount()),
		zap.Duration("elapsed", time.Since(start)))
	return nil
}

// cpuFallback builds the triangle cache that was skipped while the
// accelerated path was selected.
func cpuFallback(src *mesh.Mesh, workers int) (Backend, error) {
	if src.TriangleCount() == 0 {
		return &cpuBackend{workers: workers}, nil
	}
	cache, err := raycast.NewTriangleCache(src.Points, src.Indices)
	if err != nil {
		return nil, err
	}
	return &cpuBackend{cache: cache, workers: workers}, nil
}

// checkSource verifies what the backends rely on after the source refine.
func checkSource(src *mesh.Mesh) error {
	if !src.IsTriangulated() {
		return fmt.Errorf("source: %w: refine left non-triangle faces", mesh.ErrInvalidMesh)
	}
	if len(src.Indices)%3 != 0 {
		return fmt.Errorf("source: %w", raycast.ErrIndexCount)
	}
	if src.TriangleCount() > 0 && len(src.Normals) != len(src.Points) {
		return fmt.Errorf("source: %w: %d normals for %d points", mesh.ErrInvalidMesh, len(src.Normals), len(src.Points))
	}
	return nil
}

// fitNormals returns normals resized to n entries, keeping the prefix and
// zero-filling the rest. Normals carried over from an earlier topology, or
// left untouched by a custom Refiner, end up one per point.
func fitNormals(normals []mgl32.Vec3, n int) []mgl32.Vec3 {
	if len(normals) == n {
		return normals
	}
	if len(normals) > n {
		return normals[:n]
	}
	out := make([]mgl32.Vec3, n)
	copy(out, normals)
	return out
}
