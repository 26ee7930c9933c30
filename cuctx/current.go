package cuctx

// Operations on "the current context": whatever sits on top of the calling
// thread's stack. None of them take a context argument; the target is
// ambient thread-local state, which is both the convenience and the hazard
// of this surface. Every operation fails with a no_current_context error
// when the calling thread's stack is empty.

import (
	"github.com/accelkit/cuda-runtime/device"
	"github.com/accelkit/cuda-runtime/errors"
	"github.com/accelkit/cuda-runtime/internal/driver"
)

// Current returns a non-owning handle to the calling thread's current
// context.
func Current() (Unowned, error) {
	drv, err := driver.Active()
	if err != nil {
		return Unowned{}, errors.Unavailable("cuCtxGetCurrent", err)
	}
	h, st := drv.CtxGetCurrent()
	if st != driver.Success {
		return Unowned{}, errors.FromStatus("cuCtxGetCurrent", st)
	}
	if h == 0 {
		// The driver reports an empty stack as success with a null handle.
		return Unowned{}, errors.NoCurrentContext("cuCtxGetCurrent")
	}
	return Unowned{h: h}, nil
}

// SetCurrent makes the given context current for the calling thread. With
// an empty stack this is equivalent to Push; otherwise it replaces the top
// entry in place, leaving the stack depth unchanged.
func SetCurrent(h Handle) error {
	drv, err := driver.Active()
	if err != nil {
		return errors.Unavailable("cuCtxSetCurrent", err)
	}
	if h == nil || h.raw() == 0 {
		return errors.InvalidValue("cuCtxSetCurrent", "null context handle")
	}
	return errors.FromStatus("cuCtxSetCurrent", drv.CtxSetCurrent(h.raw()))
}

// CurrentDevice returns the device the current context is bound to.
func CurrentDevice() (device.Device, error) {
	drv, err := driver.Active()
	if err != nil {
		return device.Device{}, errors.Unavailable("cuCtxGetDevice", err)
	}
	id, st := drv.CtxGetDevice()
	if st != driver.Success {
		return device.Device{}, errors.FromStatus("cuCtxGetDevice", st)
	}
	return device.Get(int(id))
}

// CurrentFlags returns the flags the current context was created with.
func CurrentFlags() (Flags, error) {
	drv, err := driver.Active()
	if err != nil {
		return 0, errors.Unavailable("cuCtxGetFlags", err)
	}
	flags, st := drv.CtxGetFlags()
	if st != driver.Success {
		return 0, errors.FromStatus("cuCtxGetFlags", st)
	}
	return Flags(flags), nil
}

// GetCacheConfig returns the current context's preferred cache
// configuration. Devices with a fixed L1/shared-memory split always report
// PreferNone.
func GetCacheConfig() (CacheConfig, error) {
	drv, err := driver.Active()
	if err != nil {
		return 0, errors.Unavailable("cuCtxGetCacheConfig", err)
	}
	cfg, st := drv.CtxGetCacheConfig()
	if st != driver.Success {
		return 0, errors.FromStatus("cuCtxGetCacheConfig", st)
	}
	return CacheConfig(cfg), nil
}

// SetCacheConfig sets the preferred cache configuration for the current
// context. This is a preference: the driver uses it when possible but may
// pick a different configuration if a function requires one. A no-op on
// devices with a fixed L1/shared-memory split.
func SetCacheConfig(cfg CacheConfig) error {
	drv, err := driver.Active()
	if err != nil {
		return errors.Unavailable("cuCtxSetCacheConfig", err)
	}
	return errors.FromStatus("cuCtxSetCacheConfig", drv.CtxSetCacheConfig(uint32(cfg)))
}

// GetSharedMemConfig returns the current context's shared-memory bank size.
func GetSharedMemConfig() (SharedMemConfig, error) {
	drv, err := driver.Active()
	if err != nil {
		return 0, errors.Unavailable("cuCtxGetSharedMemConfig", err)
	}
	cfg, st := drv.CtxGetSharedMemConfig()
	if st != driver.Success {
		return 0, errors.FromStatus("cuCtxGetSharedMemConfig", st)
	}
	return SharedMemConfig(cfg), nil
}

// SetSharedMemConfig sets the shared-memory bank size used by subsequent
// kernel launches in the current context, on devices with configurable
// banks.
func SetSharedMemConfig(cfg SharedMemConfig) error {
	drv, err := driver.Active()
	if err != nil {
		return errors.Unavailable("cuCtxSetSharedMemConfig", err)
	}
	return errors.FromStatus("cuCtxSetSharedMemConfig", drv.CtxSetSharedMemConfig(uint32(cfg)))
}

// GetLimit returns a resource limit of the current context.
func GetLimit(l Limit) (uint64, error) {
	drv, err := driver.Active()
	if err != nil {
		return 0, errors.Unavailable("cuCtxGetLimit", err)
	}
	v, st := drv.CtxGetLimit(uint32(l))
	if st != driver.Success {
		return 0, errors.FromStatus("cuCtxGetLimit", st)
	}
	return v, nil
}

// SetLimit requests a resource limit for the current context. The driver is
// free to clamp the requested value to meet hardware requirements; read the
// limit back to observe what was granted. Limits that are frozen by
// previous kernel activity (see the Limit constants) fail with a
// limit_immutable error.
func SetLimit(l Limit, value uint64) error {
	drv, err := driver.Active()
	if err != nil {
		return errors.Unavailable("cuCtxSetLimit", err)
	}
	return errors.FromStatus("cuCtxSetLimit", drv.CtxSetLimit(uint32(l), value))
}

// GetStreamPriorityRange returns the bounds on meaningful stream priorities
// for the current context, numerically [Greatest, Least] since lower values
// mean higher priority. Priorities outside the range are clamped at stream
// creation. Both bounds are zero when the device does not support stream
// priorities.
func GetStreamPriorityRange() (StreamPriorityRange, error) {
	drv, err := driver.Active()
	if err != nil {
		return StreamPriorityRange{}, errors.Unavailable("cuCtxGetStreamPriorityRange", err)
	}
	least, greatest, st := drv.CtxGetStreamPriorityRange()
	if st != driver.Success {
		return StreamPriorityRange{}, errors.FromStatus("cuCtxGetStreamPriorityRange", st)
	}
	return StreamPriorityRange{Least: least, Greatest: greatest}, nil
}

// Synchronize blocks the calling thread until all outstanding work in the
// current context has completed. Not cancellable; the driver offers no
// mechanism for interrupting it.
func Synchronize() error {
	drv, err := driver.Active()
	if err != nil {
		return errors.Unavailable("cuCtxSynchronize", err)
	}
	return errors.FromStatus("cuCtxSynchronize", drv.CtxSynchronize())
}
