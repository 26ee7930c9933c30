package cudaruntime

import (
	"testing"

	"github.com/accelkit/cuda-runtime/errors"
	"github.com/accelkit/cuda-runtime/internal/driver"
	"github.com/accelkit/cuda-runtime/internal/drivertest"
)

func TestInitAndVersion(t *testing.T) {
	sim := drivertest.New(1)
	prev := driver.Set(sim)
	t.Cleanup(func() { driver.Set(prev) })

	if err := Init(InitDefault); err != nil {
		t.Fatalf("Init: %v", err)
	}
	// Init is idempotent.
	if err := Init(InitDefault); err != nil {
		t.Fatalf("second Init: %v", err)
	}

	v, err := DriverVersion()
	if err != nil {
		t.Fatalf("DriverVersion: %v", err)
	}
	if v == 0 {
		t.Error("DriverVersion returned 0")
	}
}

func TestInit_InvalidFlags(t *testing.T) {
	sim := drivertest.New(1)
	prev := driver.Set(sim)
	t.Cleanup(func() { driver.Set(prev) })

	err := Init(InitFlags(7))
	if !errors.IsKind(err, errors.KindInvalidValue) {
		t.Errorf("Init with reserved flags = %v, want invalid_value", err)
	}
}
