package cuctx

import (
	"runtime"
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/accelkit/cuda-runtime/device"
	"github.com/accelkit/cuda-runtime/errors"
	"github.com/accelkit/cuda-runtime/internal/driver"
)

// Handle is the capability shared by owning and non-owning context handles:
// read access to the native handle value, enough to push the context onto a
// thread's stack but never to destroy it. The interface is sealed; Context
// and Unowned are its only implementations.
type Handle interface {
	raw() driver.Ctx
}

var (
	_ Handle = (*Context)(nil)
	_ Handle = Unowned{}
)

// Context is the owning handle to a CUDA context. The native context is
// destroyed when Close is called, even if it is still current on other
// threads; see the package documentation for the safety contract. Context
// must not be copied.
type Context struct {
	h      driver.Ctx
	closed atomic.Bool
}

// CreateAndPush creates a context for the given device.
//
// The native creation call also makes the new context current on the
// calling thread; that side effect is kept visible rather than hidden here,
// so callers wanting explicit stack control should Pop immediately and
// Push/SetCurrent where needed.
func CreateAndPush(flags Flags, dev device.Device) (*Context, error) {
	drv, err := driver.Active()
	if err != nil {
		return nil, errors.Unavailable("cuCtxCreate", err)
	}
	h, st := drv.CtxCreate(uint32(flags), driver.Device(dev.Ordinal()))
	if st != driver.Success {
		return nil, errors.FromStatus("cuCtxCreate", st)
	}
	c := &Context{h: h}
	runtime.SetFinalizer(c, warnLeaked)
	return c, nil
}

// warnLeaked fires when an unclosed Context is collected. Destroying from a
// finalizer thread would violate the caller's coordination contract, so the
// context is leaked and the leak is logged instead.
func warnLeaked(c *Context) {
	if !c.closed.Load() {
		driver.Logger().Warn("CUDA context garbage collected without Close; native context leaked",
			zap.Uintptr("handle", uintptr(c.h)))
	}
}

// APIVersion returns the driver API version the context was created
// against.
func (c *Context) APIVersion() (APIVersion, error) {
	return apiVersion(c.h)
}

// Unowned returns a non-owning handle to this context, for sharing it with
// other threads.
func (c *Context) Unowned() Unowned {
	return Unowned{h: c.h}
}

// Close destroys the native context. It must be called exactly once per
// Context; extra calls are no-ops. If the context is current on the calling
// thread, the next context on the stack (if any) becomes current. A failed
// destroy panics: every guarantee in this package rests on destruction
// happening exactly once and succeeding, and there is no caller to report
// the failure to.
func (c *Context) Close() {
	if !c.closed.CompareAndSwap(false, true) {
		return
	}
	runtime.SetFinalizer(c, nil)
	drv, err := driver.Active()
	if err != nil {
		panic(errors.Unavailable("cuCtxDestroy", err))
	}
	if st := drv.CtxDestroy(c.h); st != driver.Success {
		panic(errors.FromStatus("cuCtxDestroy", st))
	}
}

func (c *Context) raw() driver.Ctx {
	return c.h
}

// Unowned is a non-owning handle to a CUDA context. It is freely copyable,
// may be sent to other goroutines and used concurrently, and cannot destroy
// the context it references. After the owning Context is closed, every use
// fails with a context_destroyed error.
type Unowned struct {
	h driver.Ctx
}

// APIVersion returns the driver API version the context was created
// against. Legal from any thread; returns an error if the owning Context
// has been closed.
func (u Unowned) APIVersion() (APIVersion, error) {
	return apiVersion(u.h)
}

func (u Unowned) raw() driver.Ctx {
	return u.h
}

func apiVersion(h driver.Ctx) (APIVersion, error) {
	drv, err := driver.Active()
	if err != nil {
		return 0, errors.Unavailable("cuCtxGetApiVersion", err)
	}
	v, st := drv.CtxGetApiVersion(h)
	if st != driver.Success {
		return 0, errors.FromStatus("cuCtxGetApiVersion", st)
	}
	return APIVersion(v), nil
}
