//go:build !noaccel

package host

import (
	"go.uber.org/zap"

	"github.com/chazu/normproj/pkg/accel"
)

func init() {
	registerDevice(New(0))
}

// registerDevice installs d, warning instead of failing when d cannot
// start. Projection then stays on the CPU.
func registerDevice(d accel.Device) {
	if err := accel.Register(d); err != nil {
		accel.Logger().Warn("accelerated device not available",
			zap.String("device", d.Name()), zap.Error(err))
	}
}
