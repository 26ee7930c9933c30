package cuctx

import (
	"github.com/accelkit/cuda-runtime/errors"
	"github.com/accelkit/cuda-runtime/internal/driver"
)

// Pop removes the top context from the calling thread's stack and returns a
// non-owning handle to it. The context may be made current again later,
// possibly on a different thread, with Push. Fails when the stack is empty.
func Pop() (Unowned, error) {
	drv, err := driver.Active()
	if err != nil {
		return Unowned{}, errors.Unavailable("cuCtxPopCurrent", err)
	}
	h, st := drv.CtxPopCurrent()
	if st != driver.Success {
		return Unowned{}, errors.FromStatus("cuCtxPopCurrent", st)
	}
	return Unowned{h: h}, nil
}

// Push makes the given context current for the calling thread by pushing it
// onto the thread's stack. Accepts owning and non-owning handles alike.
func Push(h Handle) error {
	drv, err := driver.Active()
	if err != nil {
		return errors.Unavailable("cuCtxPushCurrent", err)
	}
	if h == nil || h.raw() == 0 {
		return errors.InvalidValue("cuCtxPushCurrent", "null context handle")
	}
	return errors.FromStatus("cuCtxPushCurrent", drv.CtxPushCurrent(h.raw()))
}
