package drivertest

import (
	"sync"
	"testing"

	"github.com/accelkit/cuda-runtime/internal/driver"
)

func newInitialized(t *testing.T) *Driver {
	t.Helper()
	d := New(2)
	if st := d.Init(0); st != driver.Success {
		t.Fatalf("Init = %s", st)
	}
	return d
}

func TestInit(t *testing.T) {
	d := New(1)
	if _, st := d.DeviceGetCount(); st != driver.ErrNotInitialized {
		t.Errorf("DeviceGetCount before Init = %s, want CUDA_ERROR_NOT_INITIALIZED", st)
	}
	if st := d.Init(1); st != driver.ErrInvalidValue {
		t.Errorf("Init with nonzero flags = %s, want CUDA_ERROR_INVALID_VALUE", st)
	}
	if st := New(0).Init(0); st != driver.ErrNoDevice {
		t.Errorf("Init with no devices = %s, want CUDA_ERROR_NO_DEVICE", st)
	}
	if st := d.Init(0); st != driver.Success {
		t.Errorf("Init = %s", st)
	}
}

func TestCtxCreate_PushesOnCaller(t *testing.T) {
	d := newInitialized(t)
	h, st := d.CtxCreate(0, 0)
	if st != driver.Success {
		t.Fatalf("CtxCreate = %s", st)
	}
	if h == 0 {
		t.Fatal("CtxCreate returned null handle")
	}
	if depth := d.StackDepth(); depth != 1 {
		t.Errorf("stack depth after create = %d, want 1", depth)
	}
	cur, st := d.CtxGetCurrent()
	if st != driver.Success || cur != h {
		t.Errorf("CtxGetCurrent = (%#x, %s), want (%#x, CUDA_SUCCESS)", cur, st, h)
	}
}

func TestStacks_PerGoroutine(t *testing.T) {
	d := newInitialized(t)
	h, st := d.CtxCreate(0, 0)
	if st != driver.Success {
		t.Fatalf("CtxCreate = %s", st)
	}

	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			// Another goroutine starts with an empty stack.
			if cur, st := d.CtxGetCurrent(); st != driver.Success || cur != 0 {
				t.Errorf("fresh goroutine CtxGetCurrent = (%#x, %s), want (0, CUDA_SUCCESS)", cur, st)
			}
			if st := d.CtxPushCurrent(h); st != driver.Success {
				t.Errorf("CtxPushCurrent = %s", st)
			}
			if _, st := d.CtxGetApiVersion(h); st != driver.Success {
				t.Errorf("CtxGetApiVersion = %s", st)
			}
			if top, st := d.CtxPopCurrent(); st != driver.Success || top != h {
				t.Errorf("CtxPopCurrent = (%#x, %s), want (%#x, CUDA_SUCCESS)", top, st, h)
			}
		}()
	}
	wg.Wait()

	// The creating goroutine's stack is untouched by the workers.
	if depth := d.StackDepth(); depth != 1 {
		t.Errorf("creator stack depth = %d, want 1", depth)
	}
}

func TestCtxDestroy(t *testing.T) {
	d := newInitialized(t)
	h, _ := d.CtxCreate(0, 0)

	if st := d.CtxDestroy(h); st != driver.Success {
		t.Fatalf("CtxDestroy = %s", st)
	}
	// Destroy pops the context if it was current on the calling thread.
	if depth := d.StackDepth(); depth != 0 {
		t.Errorf("stack depth after destroy = %d, want 0", depth)
	}
	if d.LiveContexts() != 0 {
		t.Errorf("LiveContexts = %d, want 0", d.LiveContexts())
	}

	// The handle stays known and reports destruction, not invalidity.
	if _, st := d.CtxGetApiVersion(h); st != driver.ErrContextDestroyed {
		t.Errorf("CtxGetApiVersion after destroy = %s, want CUDA_ERROR_CONTEXT_IS_DESTROYED", st)
	}
	if st := d.CtxPushCurrent(h); st != driver.ErrContextDestroyed {
		t.Errorf("CtxPushCurrent after destroy = %s, want CUDA_ERROR_CONTEXT_IS_DESTROYED", st)
	}
	if st := d.CtxDestroy(h); st != driver.ErrContextDestroyed {
		t.Errorf("second CtxDestroy = %s, want CUDA_ERROR_CONTEXT_IS_DESTROYED", st)
	}
}

func TestCtxDestroy_Forced(t *testing.T) {
	d := newInitialized(t)
	h, _ := d.CtxCreate(0, 0)
	d.SetDestroyFailure(true)
	if st := d.CtxDestroy(h); st != driver.ErrUnknown {
		t.Errorf("forced CtxDestroy = %s, want CUDA_ERROR_UNKNOWN", st)
	}
	d.SetDestroyFailure(false)
	if st := d.CtxDestroy(h); st != driver.Success {
		t.Errorf("CtxDestroy after clearing failure = %s", st)
	}
}

func TestCtxSetCurrent(t *testing.T) {
	d := newInitialized(t)
	h1, _ := d.CtxCreate(0, 0)
	h2, _ := d.CtxCreate(0, 1)
	// Both creates pushed; reset to an empty stack.
	d.CtxPopCurrent()
	d.CtxPopCurrent()

	if st := d.CtxSetCurrent(h1); st != driver.Success {
		t.Fatalf("CtxSetCurrent on empty stack = %s", st)
	}
	if depth := d.StackDepth(); depth != 1 {
		t.Errorf("depth after set on empty stack = %d, want 1", depth)
	}

	if st := d.CtxSetCurrent(h2); st != driver.Success {
		t.Fatalf("CtxSetCurrent on non-empty stack = %s", st)
	}
	if depth := d.StackDepth(); depth != 1 {
		t.Errorf("depth after replacing top = %d, want 1", depth)
	}
	if cur, _ := d.CtxGetCurrent(); cur != h2 {
		t.Errorf("current = %#x, want %#x", cur, h2)
	}
}

func TestLimits(t *testing.T) {
	d := newInitialized(t)
	h, st := d.CtxCreate(0, 0)
	if st != driver.Success {
		t.Fatalf("CtxCreate = %s", st)
	}

	tests := []struct {
		name      string
		limit     uint32
		requested uint64
		want      uint64
	}{
		{"stack size rounded up", limitStackSize, 1000, 1024},
		{"stack size minimum", limitStackSize, 1, 256},
		{"printf fifo minimum", limitPrintfFifo, 16, 4096},
		{"malloc heap minimum", limitMallocHeap, 1, 1 << 16},
		{"sync depth clamped", limitSyncDepth, 100, 24},
		{"pending launches accepted", limitPendingLaunch, 4096, 4096},
		{"l2 fetch clamped", limitL2Fetch, 1024, 128},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Subtests run on their own goroutines, each with its own
			// simulated thread-local stack.
			if st := d.CtxSetCurrent(h); st != driver.Success {
				t.Fatalf("CtxSetCurrent = %s", st)
			}
			if st := d.CtxSetLimit(tt.limit, tt.requested); st != driver.Success {
				t.Fatalf("CtxSetLimit = %s", st)
			}
			v, st := d.CtxGetLimit(tt.limit)
			if st != driver.Success {
				t.Fatalf("CtxGetLimit = %s", st)
			}
			if v != tt.want {
				t.Errorf("limit = %d, want %d", v, tt.want)
			}
		})
	}

	if st := d.CtxSetLimit(42, 1); st != driver.ErrInvalidValue {
		t.Errorf("unknown limit = %s, want CUDA_ERROR_INVALID_VALUE", st)
	}
}

func TestLimits_FrozenAfterLaunch(t *testing.T) {
	d := newInitialized(t)
	d.CtxCreate(0, 0)
	if err := d.MarkKernelLaunched(); err != nil {
		t.Fatal(err)
	}

	if st := d.CtxSetLimit(limitSyncDepth, 4); st != driver.ErrUnsupportedLimit {
		t.Errorf("frozen limit set = %s, want CUDA_ERROR_UNSUPPORTED_LIMIT", st)
	}
	// Stack size stays adjustable after launch.
	if st := d.CtxSetLimit(limitStackSize, 2048); st != driver.Success {
		t.Errorf("stack size set after launch = %s", st)
	}
}

func TestNoCurrentContext(t *testing.T) {
	d := newInitialized(t)

	if _, st := d.CtxPopCurrent(); st != driver.ErrInvalidContext {
		t.Errorf("CtxPopCurrent on empty stack = %s, want CUDA_ERROR_INVALID_CONTEXT", st)
	}
	if _, st := d.CtxGetDevice(); st != driver.ErrInvalidContext {
		t.Errorf("CtxGetDevice = %s, want CUDA_ERROR_INVALID_CONTEXT", st)
	}
	if st := d.CtxSynchronize(); st != driver.ErrInvalidContext {
		t.Errorf("CtxSynchronize = %s, want CUDA_ERROR_INVALID_CONTEXT", st)
	}
}

func TestStreamPriorityRange(t *testing.T) {
	d := newInitialized(t)
	d.CtxCreate(0, 0)
	least, greatest, st := d.CtxGetStreamPriorityRange()
	if st != driver.Success {
		t.Fatalf("CtxGetStreamPriorityRange = %s", st)
	}
	if greatest > least {
		t.Errorf("greatest %d > least %d, range convention violated", greatest, least)
	}

	d.DisableStreamPriorities()
	least, greatest, st = d.CtxGetStreamPriorityRange()
	if st != driver.Success || least != 0 || greatest != 0 {
		t.Errorf("disabled range = (%d, %d, %s), want (0, 0, CUDA_SUCCESS)", least, greatest, st)
	}
}
