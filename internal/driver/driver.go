package driver

import (
	"fmt"
	"sync"
)

// Ctx is a native CUcontext handle. The zero value means "no context".
type Ctx uintptr

// Device is a native CUdevice value. For the CUDA driver API this is the
// device ordinal.
type Device int32

// Status is a raw CUresult code returned by every driver entry point.
type Status uint32

// CUresult codes the library distinguishes. Anything else is passed through
// unmodified and classified as a generic driver failure.
const (
	Success             Status = 0
	ErrInvalidValue     Status = 1
	ErrOutOfMemory      Status = 2
	ErrNotInitialized   Status = 3
	ErrDeinitialized    Status = 4
	ErrNoDevice         Status = 100
	ErrInvalidDevice    Status = 101
	ErrInvalidContext   Status = 201
	ErrUnsupportedLimit Status = 215
	ErrContextDestroyed Status = 709
	ErrNotSupported     Status = 801
	ErrUnknown          Status = 999
)

var statusNames = map[Status]string{
	Success:             "CUDA_SUCCESS",
	ErrInvalidValue:     "CUDA_ERROR_INVALID_VALUE",
	ErrOutOfMemory:      "CUDA_ERROR_OUT_OF_MEMORY",
	ErrNotInitialized:   "CUDA_ERROR_NOT_INITIALIZED",
	ErrDeinitialized:    "CUDA_ERROR_DEINITIALIZED",
	ErrNoDevice:         "CUDA_ERROR_NO_DEVICE",
	ErrInvalidDevice:    "CUDA_ERROR_INVALID_DEVICE",
	ErrInvalidContext:   "CUDA_ERROR_INVALID_CONTEXT",
	ErrUnsupportedLimit: "CUDA_ERROR_UNSUPPORTED_LIMIT",
	ErrContextDestroyed: "CUDA_ERROR_CONTEXT_IS_DESTROYED",
	ErrNotSupported:     "CUDA_ERROR_NOT_SUPPORTED",
	ErrUnknown:          "CUDA_ERROR_UNKNOWN",
}

// String returns the CUDA name for the status, or a numeric form for codes
// without a known name.
func (s Status) String() string {
	if name, ok := statusNames[s]; ok {
		return name
	}
	return fmt.Sprintf("CUDA_ERROR(%d)", uint32(s))
}

// Device attribute identifiers (CUdevice_attribute) used by the device
// package.
const (
	AttrComputeCapabilityMajor = 75
	AttrComputeCapabilityMinor = 76
)

// API is the driver call surface. Method sets and signatures follow the
// native entry points; handle validity and thread-local stack state live
// entirely on the other side of this interface.
type API interface {
	Init(flags uint32) Status
	DriverVersion() (int32, Status)

	DeviceGetCount() (int32, Status)
	DeviceGet(ordinal int32) (Device, Status)
	DeviceGetName(dev Device) (string, Status)
	DeviceTotalMem(dev Device) (uint64, Status)
	DeviceGetAttribute(attr int32, dev Device) (int32, Status)

	CtxCreate(flags uint32, dev Device) (Ctx, Status)
	CtxDestroy(c Ctx) Status
	CtxPushCurrent(c Ctx) Status
	CtxPopCurrent() (Ctx, Status)
	CtxGetCurrent() (Ctx, Status)
	CtxSetCurrent(c Ctx) Status
	CtxGetApiVersion(c Ctx) (uint32, Status)
	CtxGetDevice() (Device, Status)
	CtxGetFlags() (uint32, Status)
	CtxGetLimit(limit uint32) (uint64, Status)
	CtxSetLimit(limit uint32, value uint64) Status
	CtxGetCacheConfig() (uint32, Status)
	CtxSetCacheConfig(cfg uint32) Status
	CtxGetSharedMemConfig() (uint32, Status)
	CtxSetSharedMemConfig(cfg uint32) Status
	CtxGetStreamPriorityRange() (least, greatest int32, st Status)
	CtxSynchronize() Status
}

var (
	activeMu sync.RWMutex
	active   API
	loadErr  error
	loaded   bool
)

// Active returns the driver implementation in use. If none has been
// installed with Set, the native libcuda implementation is loaded on the
// first call; a load failure is sticky and returned on every subsequent
// call.
func Active() (API, error) {
	activeMu.RLock()
	if active != nil {
		api := active
		activeMu.RUnlock()
		return api, nil
	}
	activeMu.RUnlock()

	activeMu.Lock()
	defer activeMu.Unlock()
	if active != nil {
		return active, nil
	}
	if !loaded {
		active, loadErr = loadNative()
		loaded = true
	}
	if loadErr != nil {
		return nil, loadErr
	}
	return active, nil
}

// Set installs api as the active driver and returns the previous one.
// Passing nil reverts to lazy native loading. Intended for tests and the
// simulated mode; swapping the driver while contexts are live is not
// supported.
func Set(api API) (prev API) {
	activeMu.Lock()
	defer activeMu.Unlock()
	prev = active
	active = api
	loaded = api != nil
	loadErr = nil
	return prev
}
