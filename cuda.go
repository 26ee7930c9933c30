package cudaruntime

import (
	"go.uber.org/zap"

	"github.com/accelkit/cuda-runtime/errors"
	"github.com/accelkit/cuda-runtime/internal/driver"
)

// InitFlags configure driver initialization. The driver currently defines
// no flags; pass InitDefault.
type InitFlags uint32

// InitDefault is the only valid initialization flag set.
const InitDefault InitFlags = 0

// Init initializes the CUDA driver. It must be called once, before any
// other call in this library, and may be called again harmlessly.
func Init(flags InitFlags) error {
	drv, err := driver.Active()
	if err != nil {
		return errors.Unavailable("cuInit", err)
	}
	return errors.FromStatus("cuInit", drv.Init(uint32(flags)))
}

// DriverVersion returns the installed driver's version as a composite
// integer: 12040 means CUDA 12.4.
func DriverVersion() (int, error) {
	drv, err := driver.Active()
	if err != nil {
		return 0, errors.Unavailable("cuDriverGetVersion", err)
	}
	v, st := drv.DriverVersion()
	if st != driver.Success {
		return 0, errors.FromStatus("cuDriverGetVersion", st)
	}
	return int(v), nil
}

// SetLogger installs l as the library logger. The library logs sparingly
// (driver loading, leaked contexts); the default is a no-op logger.
func SetLogger(l *zap.Logger) {
	driver.SetLogger(l)
}
