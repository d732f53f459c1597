// Package host registers a software accelerated device that runs
// projection jobs on its own worker pool.
//
// The device mirrors the dispatch model of a GPU queue: job data is
// uploaded into device-owned buffers, the kernel runs per ray on the
// pool, and results only become visible to the caller after a single
// synchronize step copies them back.
//
// Importing the package registers the device unless built with the
// noaccel tag:
//
//	import _ "github.com/chazu/normproj/pkg/accel/host" // enable the host device
package host

import (
	"fmt"
	"runtime"
	"sync"

	"github.com/chazu/normproj/pkg/accel"
	"github.com/chazu/normproj/pkg/raycast"
	"github.com/go-gl/mathgl/mgl32"
	"go.uber.org/zap"
)

// chunksPerWorker splits each dispatch finer than the pool size so a slow
// chunk does not leave the other workers idle.
const chunksPerWorker = 4

// Compile-time interface check.
var _ accel.Device = (*Device)(nil)

// Device is the host accelerated device.
type Device struct {
	workers int

	mu     sync.Mutex // serializes dispatches and lifecycle
	queue  chan func()
	pool   sync.WaitGroup
	open   bool
	logger *zap.Logger
}

// New returns a host device with the given pool size. A size <= 0 uses
// GOMAXPROCS.
func New(workers int) *Device {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	return &Device{workers: workers, logger: zap.NewNop()}
}

// Name returns the device name.
func (d *Device) Name() string { return "host" }

// SetLogger sets the logger used for dispatch diagnostics.
func (d *Device) SetLogger(l *zap.Logger) {
	if l == nil {
		l = zap.NewNop()
	}
	d.mu.Lock()
	d.logger = l
	d.mu.Unlock()
}

// Init starts the worker pool. Calling Init on a running device is a no-op.
func (d *Device) Init() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.open {
		return nil
	}
	d.queue = make(chan func())
	for i := 0; i < d.workers; i++ {
		d.pool.Add(1)
		go func() {
			defer d.pool.Done()
			for task := range d.queue {
				task()
			}
		}()
	}
	d.open = true
	return nil
}

// Close stops the worker pool after in-flight work finishes.
func (d *Device) Close() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if !d.open {
		return
	}
	close(d.queue)
	d.pool.Wait()
	d.open = false
}

// Available reports whether the pool is running.
func (d *Device) Available() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.open
}

// buffers are the device-side copies of a job.
type buffers struct {
	points  []mgl32.Vec3
	normals []mgl32.Vec3
	indices []uint32
	origins []mgl32.Vec3
	result  []mgl32.Vec3
}

func upload(job *accel.Job) *buffers {
	return &buffers{
		points:  append([]mgl32.Vec3(nil), job.Points...),
		normals: append([]mgl32.Vec3(nil), job.Normals...),
		indices: append([]uint32(nil), job.Indices...),
		origins: append([]mgl32.Vec3(nil), job.Origins...),
		result:  append([]mgl32.Vec3(nil), job.Result...),
	}
}

// ProjectNormals uploads job, runs the per-ray kernel on the pool and
// synchronizes the results back into job.Result.
func (d *Device) ProjectNormals(job *accel.Job) error {
	if len(job.Result) != len(job.Origins) {
		return fmt.Errorf("host: %d results for %d rays", len(job.Result), len(job.Origins))
	}
	if len(job.Indices)%3 != 0 {
		return fmt.Errorf("host: %w", raycast.ErrIndexCount)
	}
	if len(job.Normals) < len(job.Points) {
		return fmt.Errorf("host: %d source normals for %d points", len(job.Normals), len(job.Points))
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	if !d.open {
		return accel.ErrFallbackToCPU
	}

	buf := upload(job)
	pending := d.dispatch(buf)

	// The only blocking point: wait for the pool, then copy back.
	pending.Wait()
	copy(job.Result, buf.result)

	d.logger.Debug("host dispatch complete",
		zap.Int("rays", job.Rays()),
		zap.Int("triangles", job.Triangles()))
	return nil
}

// dispatch enqueues the kernel over every ray and returns the group to
// wait on.
func (d *Device) dispatch(buf *buffers) *sync.WaitGroup {
	var wg sync.WaitGroup
	n := len(buf.origins)
	if n == 0 {
		return &wg
	}
	chunk := (n + d.workers*chunksPerWorker - 1) / (d.workers * chunksPerWorker)
	for lo := 0; lo < n; lo += chunk {
		hi := min(lo+chunk, n)
		wg.Add(1)
		d.queue <- func() {
			defer wg.Done()
			for ri := lo; ri < hi; ri++ {
				kernel(buf, ri)
			}
		}
	}
	return &wg
}

// kernel projects a single ray.
func kernel(buf *buffers, ri int) {
	pos := buf.origins[ri]
	dir := buf.result[ri]
	h := raycast.NearestIndexed(buf.points, buf.indices, pos, dir)
	if !h.OK {
		return
	}
	tri := buf.indices[h.Triangle*3 : h.Triangle*3+3]
	buf.result[ri] = raycast.ProjectedNormal(
		pos.Add(dir.Mul(h.Distance)),
		buf.points[tri[0]], buf.points[tri[1]], buf.points[tri[2]],
		buf.normals[tri[0]], buf.normals[tri[1]], buf.normals[tri[2]],
	)
}
