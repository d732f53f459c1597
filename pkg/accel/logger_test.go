package accel

import (
	"testing"

	"go.uber.org/zap"
)

type loggingDevice struct {
	mockDevice
	logger *zap.Logger
}

func (d *loggingDevice) SetLogger(l *zap.Logger) { d.logger = l }

func TestSetLoggerPropagatesToDevice(t *testing.T) {
	Unregister()
	d := &loggingDevice{mockDevice: mockDevice{name: "logging"}}
	if err := Register(d); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() {
		SetLogger(nil)
		Unregister()
	})

	l := zap.NewExample()
	SetLogger(l)
	if Logger() != l {
		t.Error("Logger() did not return the configured logger")
	}
	if d.logger != l {
		t.Error("registered device did not receive the logger")
	}

	SetLogger(nil)
	if Logger() == nil || d.logger == nil {
		t.Error("SetLogger(nil) should install a nop logger, not nil")
	}
}
