package accel

import (
	"sync/atomic"

	"go.uber.org/zap"
)

var loggerPtr atomic.Pointer[zap.Logger]

func init() {
	loggerPtr.Store(zap.NewNop())
}

// SetLogger configures the logger shared by accel and device packages.
// nil restores the silent default. The registered device receives l too
// if it accepts a logger.
func SetLogger(l *zap.Logger) {
	if l == nil {
		l = zap.NewNop()
	}
	loggerPtr.Store(l)
	if d, ok := Current().(loggerSetter); ok {
		d.SetLogger(l)
	}
}

// Logger returns the current logger. Safe for concurrent use.
func Logger() *zap.Logger {
	return loggerPtr.Load()
}

type loggerSetter interface {
	SetLogger(*zap.Logger)
}
