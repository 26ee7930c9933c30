package drivertest

import (
	"fmt"
	"sync"

	"github.com/accelkit/cuda-runtime/internal/driver"
)

// CU_LIMIT_* values, mirrored here so the simulator does not depend on the
// public packages it is used to test.
const (
	limitStackSize     = 0
	limitPrintfFifo    = 1
	limitMallocHeap    = 2
	limitSyncDepth     = 3
	limitPendingLaunch = 4
	limitL2Fetch       = 5
)

const validFlagMask = 0x1f

const simAPIVersion = 3020

type simDevice struct {
	name     string
	totalMem uint64
	ccMajor  int32
	ccMinor  int32
}

type simContext struct {
	device    driver.Device
	flags     uint32
	limits    map[uint32]uint64
	cacheCfg  uint32
	sharedCfg uint32
	launched  bool
	destroyed bool
}

// Driver is an in-memory driver.API implementation. Safe for concurrent use.
type Driver struct {
	mu          sync.Mutex
	initialized bool
	nextHandle  uintptr
	contexts    map[driver.Ctx]*simContext
	stacks      map[int64][]driver.Ctx
	devices     []simDevice

	failDestroy  bool
	noPriorities bool
}

var _ driver.API = (*Driver)(nil)

// New creates a simulator exposing n devices.
func New(n int) *Driver {
	d := &Driver{
		nextHandle: 0x1000,
		contexts:   make(map[driver.Ctx]*simContext),
		stacks:     make(map[int64][]driver.Ctx),
	}
	for i := 0; i < n; i++ {
		d.devices = append(d.devices, simDevice{
			name:     fmt.Sprintf("SimDevice %d", i),
			totalMem: 8 << 30,
			ccMajor:  8,
			ccMinor:  6,
		})
	}
	return d
}

// SetDestroyFailure forces subsequent CtxDestroy calls to fail, for
// exercising the unrecoverable-destruction path.
func (d *Driver) SetDestroyFailure(fail bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.failDestroy = fail
}

// DisableStreamPriorities makes the simulated devices report no stream
// priority support, i.e. a {0, 0} range.
func (d *Driver) DisableStreamPriorities() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.noPriorities = true
}

// MarkKernelLaunched freezes the launch-sensitive limits of the context
// current on the calling goroutine, as a kernel launch would.
func (d *Driver) MarkKernelLaunched() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	ctx, st := d.currentLocked()
	if st != driver.Success {
		return fmt.Errorf("no usable current context: %s", st)
	}
	ctx.launched = true
	return nil
}

// StackDepth reports the context stack depth of the calling goroutine.
// Test hook; the real driver exposes no equivalent.
func (d *Driver) StackDepth() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.stacks[goid()])
}

// LiveContexts reports the number of contexts created and not yet destroyed.
func (d *Driver) LiveContexts() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	n := 0
	for _, c := range d.contexts {
		if !c.destroyed {
			n++
		}
	}
	return n
}

func (d *Driver) Init(flags uint32) driver.Status {
	d.mu.Lock()
	defer d.mu.Unlock()
	if flags != 0 {
		return driver.ErrInvalidValue
	}
	if len(d.devices) == 0 {
		return driver.ErrNoDevice
	}
	d.initialized = true
	return driver.Success
}

func (d *Driver) DriverVersion() (int32, driver.Status) {
	return 12040, driver.Success
}

func defaultLimits() map[uint32]uint64 {
	return map[uint32]uint64{
		limitStackSize:     1024,
		limitPrintfFifo:    1 << 20,
		limitMallocHeap:    8 << 20,
		limitSyncDepth:     2,
		limitPendingLaunch: 2048,
		limitL2Fetch:       64,
	}
}

// clampLimit applies the hardware-style adjustments a set request is subject
// to. The returned value is what a subsequent get observes.
func clampLimit(limit uint32, v uint64) uint64 {
	switch limit {
	case limitStackSize:
		if v < 256 {
			return 256
		}
		return (v + 255) &^ 255
	case limitPrintfFifo:
		if v < 4096 {
			return 4096
		}
		return v
	case limitMallocHeap:
		if v < 1<<16 {
			return 1 << 16
		}
		return v
	case limitSyncDepth:
		if v > 24 {
			return 24
		}
		return v
	case limitL2Fetch:
		if v > 128 {
			return 128
		}
		return v
	default:
		return v
	}
}

func frozenAfterLaunch(limit uint32) bool {
	switch limit {
	case limitPrintfFifo, limitMallocHeap, limitSyncDepth, limitPendingLaunch:
		return true
	}
	return false
}

func (d *Driver) DeviceGetCount() (int32, driver.Status) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if !d.initialized {
		return 0, driver.ErrNotInitialized
	}
	return int32(len(d.devices)), driver.Success
}

func (d *Driver) deviceLocked(dev driver.Device) (*simDevice, driver.Status) {
	if !d.initialized {
		return nil, driver.ErrNotInitialized
	}
	if dev < 0 || int(dev) >= len(d.devices) {
		return nil, driver.ErrInvalidDevice
	}
	return &d.devices[dev], driver.Success
}

func (d *Driver) DeviceGet(ordinal int32) (driver.Device, driver.Status) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if _, st := d.deviceLocked(driver.Device(ordinal)); st != driver.Success {
		return 0, st
	}
	return driver.Device(ordinal), driver.Success
}

func (d *Driver) DeviceGetName(dev driver.Device) (string, driver.Status) {
	d.mu.Lock()
	defer d.mu.Unlock()
	sd, st := d.deviceLocked(dev)
	if st != driver.Success {
		return "", st
	}
	return sd.name, driver.Success
}

func (d *Driver) DeviceTotalMem(dev driver.Device) (uint64, driver.Status) {
	d.mu.Lock()
	defer d.mu.Unlock()
	sd, st := d.deviceLocked(dev)
	if st != driver.Success {
		return 0, st
	}
	return sd.totalMem, driver.Success
}

func (d *Driver) DeviceGetAttribute(attr int32, dev driver.Device) (int32, driver.Status) {
	d.mu.Lock()
	defer d.mu.Unlock()
	sd, st := d.deviceLocked(dev)
	if st != driver.Success {
		return 0, st
	}
	switch attr {
	case driver.AttrComputeCapabilityMajor:
		return sd.ccMajor, driver.Success
	case driver.AttrComputeCapabilityMinor:
		return sd.ccMinor, driver.Success
	default:
		return 0, driver.ErrInvalidValue
	}
}

func (d *Driver) CtxCreate(flags uint32, dev driver.Device) (driver.Ctx, driver.Status) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if _, st := d.deviceLocked(dev); st != driver.Success {
		return 0, st
	}
	if flags&^validFlagMask != 0 {
		return 0, driver.ErrInvalidValue
	}

	handle := driver.Ctx(d.nextHandle)
	d.nextHandle += 0x10
	d.contexts[handle] = &simContext{
		device: dev,
		flags:  flags,
		limits: defaultLimits(),
	}

	// Native creation also makes the new context current on the calling
	// thread.
	g := goid()
	d.stacks[g] = append(d.stacks[g], handle)
	return handle, driver.Success
}

// lookupLocked resolves an explicit handle argument.
func (d *Driver) lookupLocked(c driver.Ctx) (*simContext, driver.Status) {
	if !d.initialized {
		return nil, driver.ErrNotInitialized
	}
	if c == 0 {
		return nil, driver.ErrInvalidContext
	}
	ctx, ok := d.contexts[c]
	if !ok {
		return nil, driver.ErrInvalidContext
	}
	if ctx.destroyed {
		return nil, driver.ErrContextDestroyed
	}
	return ctx, driver.Success
}

// currentLocked resolves the calling goroutine's top-of-stack context.
func (d *Driver) currentLocked() (*simContext, driver.Status) {
	if !d.initialized {
		return nil, driver.ErrNotInitialized
	}
	stack := d.stacks[goid()]
	if len(stack) == 0 {
		return nil, driver.ErrInvalidContext
	}
	ctx := d.contexts[stack[len(stack)-1]]
	if ctx.destroyed {
		return nil, driver.ErrContextDestroyed
	}
	return ctx, driver.Success
}

func (d *Driver) CtxDestroy(c driver.Ctx) driver.Status {
	d.mu.Lock()
	defer d.mu.Unlock()
	ctx, st := d.lookupLocked(c)
	if st != driver.Success {
		return st
	}
	if d.failDestroy {
		return driver.ErrUnknown
	}
	ctx.destroyed = true

	// If the destroyed context is current on the calling thread it is also
	// popped. Entries on other threads' stacks are left behind and become
	// invalid, matching the native behavior.
	g := goid()
	stack := d.stacks[g]
	if len(stack) > 0 && stack[len(stack)-1] == c {
		d.stacks[g] = stack[:len(stack)-1]
	}
	return driver.Success
}

func (d *Driver) CtxPushCurrent(c driver.Ctx) driver.Status {
	d.mu.Lock()
	defer d.mu.Unlock()
	if _, st := d.lookupLocked(c); st != driver.Success {
		return st
	}
	g := goid()
	d.stacks[g] = append(d.stacks[g], c)
	return driver.Success
}

func (d *Driver) CtxPopCurrent() (driver.Ctx, driver.Status) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if !d.initialized {
		return 0, driver.ErrNotInitialized
	}
	g := goid()
	stack := d.stacks[g]
	if len(stack) == 0 {
		return 0, driver.ErrInvalidContext
	}
	top := stack[len(stack)-1]
	d.stacks[g] = stack[:len(stack)-1]
	return top, driver.Success
}

func (d *Driver) CtxGetCurrent() (driver.Ctx, driver.Status) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if !d.initialized {
		return 0, driver.ErrNotInitialized
	}
	stack := d.stacks[goid()]
	if len(stack) == 0 {
		// The native call succeeds and reports "no context" as a null
		// handle; normalization happens in the binding.
		return 0, driver.Success
	}
	return stack[len(stack)-1], driver.Success
}

func (d *Driver) CtxSetCurrent(c driver.Ctx) driver.Status {
	d.mu.Lock()
	defer d.mu.Unlock()
	if _, st := d.lookupLocked(c); st != driver.Success {
		return st
	}
	g := goid()
	stack := d.stacks[g]
	if len(stack) == 0 {
		d.stacks[g] = append(stack, c)
	} else {
		stack[len(stack)-1] = c
	}
	return driver.Success
}

func (d *Driver) CtxGetApiVersion(c driver.Ctx) (uint32, driver.Status) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if _, st := d.lookupLocked(c); st != driver.Success {
		return 0, st
	}
	return simAPIVersion, driver.Success
}

func (d *Driver) CtxGetDevice() (driver.Device, driver.Status) {
	d.mu.Lock()
	defer d.mu.Unlock()
	ctx, st := d.currentLocked()
	if st != driver.Success {
		return 0, st
	}
	return ctx.device, driver.Success
}

func (d *Driver) CtxGetFlags() (uint32, driver.Status) {
	d.mu.Lock()
	defer d.mu.Unlock()
	ctx, st := d.currentLocked()
	if st != driver.Success {
		return 0, st
	}
	return ctx.flags, driver.Success
}

func (d *Driver) CtxGetLimit(limit uint32) (uint64, driver.Status) {
	d.mu.Lock()
	defer d.mu.Unlock()
	ctx, st := d.currentLocked()
	if st != driver.Success {
		return 0, st
	}
	v, ok := ctx.limits[limit]
	if !ok {
		return 0, driver.ErrInvalidValue
	}
	return v, driver.Success
}

func (d *Driver) CtxSetLimit(limit uint32, value uint64) driver.Status {
	d.mu.Lock()
	defer d.mu.Unlock()
	ctx, st := d.currentLocked()
	if st != driver.Success {
		return st
	}
	if _, ok := ctx.limits[limit]; !ok {
		return driver.ErrInvalidValue
	}
	if ctx.launched && frozenAfterLaunch(limit) {
		return driver.ErrUnsupportedLimit
	}
	ctx.limits[limit] = clampLimit(limit, value)
	return driver.Success
}

func (d *Driver) CtxGetCacheConfig() (uint32, driver.Status) {
	d.mu.Lock()
	defer d.mu.Unlock()
	ctx, st := d.currentLocked()
	if st != driver.Success {
		return 0, st
	}
	return ctx.cacheCfg, driver.Success
}

func (d *Driver) CtxSetCacheConfig(cfg uint32) driver.Status {
	d.mu.Lock()
	defer d.mu.Unlock()
	ctx, st := d.currentLocked()
	if st != driver.Success {
		return st
	}
	if cfg > 3 {
		return driver.ErrInvalidValue
	}
	ctx.cacheCfg = cfg
	return driver.Success
}

func (d *Driver) CtxGetSharedMemConfig() (uint32, driver.Status) {
	d.mu.Lock()
	defer d.mu.Unlock()
	ctx, st := d.currentLocked()
	if st != driver.Success {
		return 0, st
	}
	return ctx.sharedCfg, driver.Success
}

func (d *Driver) CtxSetSharedMemConfig(cfg uint32) driver.Status {
	d.mu.Lock()
	defer d.mu.Unlock()
	ctx, st := d.currentLocked()
	if st != driver.Success {
		return st
	}
	if cfg > 2 {
		return driver.ErrInvalidValue
	}
	ctx.sharedCfg = cfg
	return driver.Success
}

func (d *Driver) CtxGetStreamPriorityRange() (least, greatest int32, st driver.Status) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if _, st := d.currentLocked(); st != driver.Success {
		return 0, 0, st
	}
	if d.noPriorities {
		return 0, 0, driver.Success
	}
	return 0, -5, driver.Success
}

func (d *Driver) CtxSynchronize() driver.Status {
	d.mu.Lock()
	defer d.mu.Unlock()
	_, st := d.currentLocked()
	return st
}
