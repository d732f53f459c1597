//go:build !noaccel

package host

import (
	"errors"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/chazu/normproj/pkg/accel"
)

func TestRegisteredOnImport(t *testing.T) {
	d := accel.Current()
	if d == nil || d.Name() != "host" {
		t.Fatalf("Current() = %v, want host device", d)
	}
	if !d.Available() {
		t.Error("registered host device should be available")
	}
}

// brokenDevice fails Init.
type brokenDevice struct{ *Device }

func (brokenDevice) Name() string { return "broken" }
func (brokenDevice) Init() error  { return errors.New("no queue") }

func TestRegisterDeviceWarnsOnInitError(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	accel.SetLogger(zap.New(core))
	t.Cleanup(func() { accel.SetLogger(nil) })

	before := accel.Current()
	registerDevice(brokenDevice{New(1)})

	if accel.Current() != before {
		t.Errorf("Current() = %v, want the previously registered device", accel.Current())
	}
	entries := logs.FilterMessage("accelerated device not available").All()
	if len(entries) != 1 {
		t.Fatalf("got %d warnings, want 1", len(entries))
	}
	if got := entries[0].ContextMap()["device"]; got != "broken" {
		t.Errorf("device field = %v, want broken", got)
	}
}
