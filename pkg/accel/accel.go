// Package accel defines the optional accelerated execution device used by
// the normal projector and the registry that selects it.
//
// Devices are provided by separate packages and opt in via blank import:
//
//	import _ "github.com/chazu/normproj/pkg/accel/host"
package accel

import (
	"errors"
	"sync"

	"github.com/go-gl/mathgl/mgl32"
)

// ErrFallbackToCPU indicates the device cannot run this job. The caller
// should fall back to the CPU path.
var ErrFallbackToCPU = errors.New("accel: falling back to CPU")

// ErrNoDevice is returned by Register for a nil device.
var ErrNoDevice = errors.New("accel: device must not be nil")

// Job is one projection dispatch. Source data is read-only. Result holds
// the ray directions on entry and the projected normals after the device
// synchronizes; rays without a hit keep their direction.
type Job struct {
	Points  []mgl32.Vec3 // source positions
	Normals []mgl32.Vec3 // source vertex normals
	Indices []uint32     // source triangles, 3 per triangle
	Origins []mgl32.Vec3 // ray origins, one per destination vertex
	Result  []mgl32.Vec3
}

// Rays returns the number of rays in the job.
func (j *Job) Rays() int { return len(j.Origins) }

// Triangles returns the number of source triangles in the job.
func (j *Job) Triangles() int { return len(j.Indices) / 3 }

// Device executes projection jobs on its own execution context.
type Device interface {
	// Name returns the device name (e.g. "host").
	Name() string

	// Init acquires device resources. Called once during registration.
	Init() error

	// Close releases device resources.
	Close()

	// Available reports whether the device can currently accept work.
	Available() bool

	// ProjectNormals runs the nearest-hit search and interpolation for
	// every ray of job and blocks until the results are in job.Result.
	// Returns ErrFallbackToCPU if the job cannot be run on the device.
	ProjectNormals(job *Job) error
}

var (
	deviceMu sync.RWMutex
	device   Device
)

// Register installs d as the accelerated device. Only one device can be
// registered; a later call replaces and closes the previous one. If
// d.Init fails, d is not registered.
func Register(d Device) error {
	if d == nil {
		return ErrNoDevice
	}
	if err := d.Init(); err != nil {
		return err
	}
	deviceMu.Lock()
	old := device
	device = d
	deviceMu.Unlock()
	if old != nil && old != d {
		old.Close()
	}
	return nil
}

// Unregister removes and closes the registered device, if any.
func Unregister() {
	deviceMu.Lock()
	old := device
	device = nil
	deviceMu.Unlock()
	if old != nil {
		old.Close()
	}
}

// Current returns the registered device, or nil if none.
func Current() Device {
	deviceMu.RLock()
	d := device
	deviceMu.RUnlock()
	return d
}

// Usable reports whether d is non-nil and available.
func Usable(d Device) bool {
	return d != nil && d.Available()
}
