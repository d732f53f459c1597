package project

import (
	"runtime"

	"github.com/chazu/normproj/pkg/accel"
	"github.com/chazu/normproj/pkg/mesh"
	"github.com/chazu/normproj/pkg/refine"
	"go.uber.org/zap"
)

// EditFlags are caller preferences for a projection.
type EditFlags struct {
	// PreferAccelerated selects the accelerated device when one is
	// registered and available. Without a device the CPU path is used.
	PreferAccelerated bool
}

// Refiner is the mesh preprocessing contract: it applies rs to m in place.
// Implementations must be safe to call concurrently on distinct meshes.
type Refiner interface {
	Refine(m *mesh.Mesh, rs mesh.RefineSettings) error
}

// Option configures a projection.
type Option func(*options)

type options struct {
	refiner   Refiner
	logger    *zap.Logger
	workers   int
	device    accel.Device
	deviceSet bool
}

func newOptions(opts []Option) *options {
	o := &options{
		refiner: refine.Refiner{},
		logger:  zap.NewNop(),
		workers: runtime.GOMAXPROCS(0),
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// currentDevice returns the device set with WithDevice, else the
// registered one.
func (o *options) currentDevice() accel.Device {
	if o.deviceSet {
		return o.device
	}
	return accel.Current()
}

// WithRefiner replaces the default refine implementation.
func WithRefiner(r Refiner) Option {
	return func(o *options) {
		if r != nil {
			o.refiner = r
		}
	}
}

// WithLogger sets the logger. By default nothing is logged.
func WithLogger(l *zap.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithWorkers bounds the goroutines used by the CPU backend. Values <= 0
// keep the default of GOMAXPROCS.
func WithWorkers(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.workers = n
		}
	}
}

// WithDevice uses d instead of the registered accelerated device. A nil d
// disables acceleration for the call.
func WithDevice(d accel.Device) Option {
	return func(o *options) {
		o.device = d
		o.deviceSet = true
	}
}
