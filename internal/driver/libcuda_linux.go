//go:build linux

package driver

import (
	"fmt"

	"github.com/ebitengine/purego"
	"go.uber.org/zap"
)

// libcuda binds the subset of the CUDA driver API this library uses via
// dynamic loading, so the module builds and runs (in simulated mode) on
// machines without the driver installed.
type libcuda struct {
	cuInit             func(flags uint32) uint32
	cuDriverGetVersion func(version *int32) uint32

	cuDeviceGetCount     func(count *int32) uint32
	cuDeviceGet          func(dev *int32, ordinal int32) uint32
	cuDeviceGetName      func(name *byte, length int32, dev int32) uint32
	cuDeviceTotalMem     func(bytes *uint64, dev int32) uint32
	cuDeviceGetAttribute func(value *int32, attr int32, dev int32) uint32

	cuCtxCreate                 func(ctx *uintptr, flags uint32, dev int32) uint32
	cuCtxDestroy                func(ctx uintptr) uint32
	cuCtxPushCurrent            func(ctx uintptr) uint32
	cuCtxPopCurrent             func(ctx *uintptr) uint32
	cuCtxGetCurrent             func(ctx *uintptr) uint32
	cuCtxSetCurrent             func(ctx uintptr) uint32
	cuCtxGetApiVersion          func(ctx uintptr, version *uint32) uint32
	cuCtxGetDevice              func(dev *int32) uint32
	cuCtxGetFlags               func(flags *uint32) uint32
	cuCtxGetLimit               func(value *uint64, limit uint32) uint32
	cuCtxSetLimit               func(limit uint32, value uint64) uint32
	cuCtxGetCacheConfig         func(cfg *uint32) uint32
	cuCtxSetCacheConfig         func(cfg uint32) uint32
	cuCtxGetSharedMemConfig     func(cfg *uint32) uint32
	cuCtxSetSharedMemConfig     func(cfg uint32) uint32
	cuCtxGetStreamPriorityRange func(least, greatest *int32) uint32
	cuCtxSynchronize            func() uint32
}

var libcudaNames = []string{"libcuda.so.1", "libcuda.so"}

func loadNative() (API, error) {
	var handle uintptr
	var lastErr error
	var path string
	for _, name := range libcudaNames {
		h, err := purego.Dlopen(name, purego.RTLD_NOW|purego.RTLD_GLOBAL)
		if err == nil {
			handle, path = h, name
			break
		}
		lastErr = err
	}
	if handle == 0 {
		return nil, fmt.Errorf("load libcuda: %w", lastErr)
	}

	l := &libcuda{}
	if err := l.register(handle); err != nil {
		return nil, err
	}
	Logger().Info("loaded CUDA driver library", zap.String("library", path))
	return l, nil
}

func (l *libcuda) register(handle uintptr) (err error) {
	// RegisterLibFunc panics on a missing symbol; report it as a load error
	// instead so callers get a normal error value.
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("bind libcuda symbols: %v", r)
		}
	}()

	purego.RegisterLibFunc(&l.cuInit, handle, "cuInit")
	purego.RegisterLibFunc(&l.cuDriverGetVersion, handle, "cuDriverGetVersion")

	purego.RegisterLibFunc(&l.cuDeviceGetCount, handle, "cuDeviceGetCount")
	purego.RegisterLibFunc(&l.cuDeviceGet, handle, "cuDeviceGet")
	purego.RegisterLibFunc(&l.cuDeviceGetName, handle, "cuDeviceGetName")
	purego.RegisterLibFunc(&l.cuDeviceTotalMem, handle, "cuDeviceTotalMem_v2")
	purego.RegisterLibFunc(&l.cuDeviceGetAttribute, handle, "cuDeviceGetAttribute")

	purego.RegisterLibFunc(&l.cuCtxCreate, handle, "cuCtxCreate_v2")
	purego.RegisterLibFunc(&l.cuCtxDestroy, handle, "cuCtxDestroy_v2")
	purego.RegisterLibFunc(&l.cuCtxPushCurrent, handle, "cuCtxPushCurrent_v2")
	purego.RegisterLibFunc(&l.cuCtxPopCurrent, handle, "cuCtxPopCurrent_v2")
	purego.RegisterLibFunc(&l.cuCtxGetCurrent, handle, "cuCtxGetCurrent")
	purego.RegisterLibFunc(&l.cuCtxSetCurrent, handle, "cuCtxSetCurrent")
	purego.RegisterLibFunc(&l.cuCtxGetApiVersion, handle, "cuCtxGetApiVersion")
	purego.RegisterLibFunc(&l.cuCtxGetDevice, handle, "cuCtxGetDevice")
	purego.RegisterLibFunc(&l.cuCtxGetFlags, handle, "cuCtxGetFlags")
	purego.RegisterLibFunc(&l.cuCtxGetLimit, handle, "cuCtxGetLimit")
	purego.RegisterLibFunc(&l.cuCtxSetLimit, handle, "cuCtxSetLimit")
	purego.RegisterLibFunc(&l.cuCtxGetCacheConfig, handle, "cuCtxGetCacheConfig")
	purego.RegisterLibFunc(&l.cuCtxSetCacheConfig, handle, "cuCtxSetCacheConfig")
	purego.RegisterLibFunc(&l.cuCtxGetSharedMemConfig, handle, "cuCtxGetSharedMemConfig")
	purego.RegisterLibFunc(&l.cuCtxSetSharedMemConfig, handle, "cuCtxSetSharedMemConfig")
	purego.RegisterLibFunc(&l.cuCtxGetStreamPriorityRange, handle, "cuCtxGetStreamPriorityRange")
	purego.RegisterLibFunc(&l.cuCtxSynchronize, handle, "cuCtxSynchronize")
	return nil
}

func (l *libcuda) Init(flags uint32) Status {
	return Status(l.cuInit(flags))
}

func (l *libcuda) DriverVersion() (int32, Status) {
	var v int32
	st := Status(l.cuDriverGetVersion(&v))
	return v, st
}

func (l *libcuda) DeviceGetCount() (int32, Status) {
	var n int32
	st := Status(l.cuDeviceGetCount(&n))
	return n, st
}

func (l *libcuda) DeviceGet(ordinal int32) (Device, Status) {
	var dev int32
	st := Status(l.cuDeviceGet(&dev, ordinal))
	return Device(dev), st
}

func (l *libcuda) DeviceGetName(dev Device) (string, Status) {
	buf := make([]byte, 256)
	st := Status(l.cuDeviceGetName(&buf[0], int32(len(buf)), int32(dev)))
	if st != Success {
		return "", st
	}
	n := 0
	for n < len(buf) && buf[n] != 0 {
		n++
	}
	return string(buf[:n]), Success
}

func (l *libcuda) DeviceTotalMem(dev Device) (uint64, Status) {
	var bytes uint64
	st := Status(l.cuDeviceTotalMem(&bytes, int32(dev)))
	return bytes, st
}

func (l *libcuda) DeviceGetAttribute(attr int32, dev Device) (int32, Status) {
	var v int32
	st := Status(l.cuDeviceGetAttribute(&v, attr, int32(dev)))
	return v, st
}

func (l *libcuda) CtxCreate(flags uint32, dev Device) (Ctx, Status) {
	var ctx uintptr
	st := Status(l.cuCtxCreate(&ctx, flags, int32(dev)))
	return Ctx(ctx), st
}

func (l *libcuda) CtxDestroy(c Ctx) Status {
	return Status(l.cuCtxDestroy(uintptr(c)))
}

func (l *libcuda) CtxPushCurrent(c Ctx) Status {
	return Status(l.cuCtxPushCurrent(uintptr(c)))
}

func (l *libcuda) CtxPopCurrent() (Ctx, Status) {
	var ctx uintptr
	st := Status(l.cuCtxPopCurrent(&ctx))
	return Ctx(ctx), st
}

func (l *libcuda) CtxGetCurrent() (Ctx, Status) {
	var ctx uintptr
	st := Status(l.cuCtxGetCurrent(&ctx))
	return Ctx(ctx), st
}

func (l *libcuda) CtxSetCurrent(c Ctx) Status {
	return Status(l.cuCtxSetCurrent(uintptr(c)))
}

func (l *libcuda) CtxGetApiVersion(c Ctx) (uint32, Status) {
	var v uint32
	st := Status(l.cuCtxGetApiVersion(uintptr(c), &v))
	return v, st
}

func (l *libcuda) CtxGetDevice() (Device, Status) {
	var dev int32
	st := Status(l.cuCtxGetDevice(&dev))
	return Device(dev), st
}

func (l *libcuda) CtxGetFlags() (uint32, Status) {
	var flags uint32
	st := Status(l.cuCtxGetFlags(&flags))
	return flags, st
}

func (l *libcuda) CtxGetLimit(limit uint32) (uint64, Status) {
	var v uint64
	st := Status(l.cuCtxGetLimit(&v, limit))
	return v, st
}

func (l *libcuda) CtxSetLimit(limit uint32, value uint64) Status {
	return Status(l.cuCtxSetLimit(limit, value))
}

func (l *libcuda) CtxGetCacheConfig() (uint32, Status) {
	var cfg uint32
	st := Status(l.cuCtxGetCacheConfig(&cfg))
	return cfg, st
}

func (l *libcuda) CtxSetCacheConfig(cfg uint32) Status {
	return Status(l.cuCtxSetCacheConfig(cfg))
}

func (l *libcuda) CtxGetSharedMemConfig() (uint32, Status) {
	var cfg uint32
	st := Status(l.cuCtxGetSharedMemConfig(&cfg))
	return cfg, st
}

func (l *libcuda) CtxSetSharedMemConfig(cfg uint32) Status {
	return Status(l.cuCtxSetSharedMemConfig(cfg))
}

func (l *libcuda) CtxGetStreamPriorityRange() (least, greatest int32, st Status) {
	st = Status(l.cuCtxGetStreamPriorityRange(&least, &greatest))
	return least, greatest, st
}

func (l *libcuda) CtxSynchronize() Status {
	return Status(l.cuCtxSynchronize())
}
