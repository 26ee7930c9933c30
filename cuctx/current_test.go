package cuctx

import (
	"testing"

	"github.com/accelkit/cuda-runtime/errors"
)

func TestSetCurrent_StackDepth(t *testing.T) {
	sim := newSim(t)
	c1 := mustCreate(t, SchedAuto, mustDevice(t, 0))
	defer c1.Close()
	c2 := mustCreate(t, SchedAuto, mustDevice(t, 1))
	defer c2.Close()
	// Both creations pushed; start from an empty stack.
	if _, err := Pop(); err != nil {
		t.Fatal(err)
	}
	if _, err := Pop(); err != nil {
		t.Fatal(err)
	}

	// Empty stack: SetCurrent behaves like Push.
	if err := SetCurrent(c1); err != nil {
		t.Fatalf("SetCurrent on empty stack: %v", err)
	}
	if depth := sim.StackDepth(); depth != 1 {
		t.Fatalf("depth = %d, want 1", depth)
	}

	// Non-empty stack: SetCurrent replaces the top, depth unchanged.
	if err := SetCurrent(c2.Unowned()); err != nil {
		t.Fatalf("SetCurrent on non-empty stack: %v", err)
	}
	if depth := sim.StackDepth(); depth != 1 {
		t.Fatalf("depth after replace = %d, want 1", depth)
	}
	cur, err := Current()
	if err != nil {
		t.Fatalf("Current: %v", err)
	}
	if cur != c2.Unowned() {
		t.Error("top of stack is not the context passed to SetCurrent")
	}
}

func TestCurrentDevice(t *testing.T) {
	newSim(t)
	dev := mustDevice(t, 1)
	ctx := mustCreate(t, SchedAuto, dev)
	defer ctx.Close()

	got, err := CurrentDevice()
	if err != nil {
		t.Fatalf("CurrentDevice: %v", err)
	}
	if got.Ordinal() != dev.Ordinal() {
		t.Errorf("CurrentDevice ordinal = %d, want %d", got.Ordinal(), dev.Ordinal())
	}
}

func TestCurrentFlags(t *testing.T) {
	newSim(t)
	flags := MapHost | SchedBlockingSync
	ctx := mustCreate(t, flags, mustDevice(t, 0))
	defer ctx.Close()

	got, err := CurrentFlags()
	if err != nil {
		t.Fatalf("CurrentFlags: %v", err)
	}
	if got != flags {
		t.Errorf("CurrentFlags = %#x, want %#x", got, flags)
	}
}

func TestLimit_SetThenGet(t *testing.T) {
	newSim(t)
	ctx := mustCreate(t, SchedAuto, mustDevice(t, 0))
	defer ctx.Close()

	// The platform may clamp the request; what matters is that a set
	// accepted without error reads back as a value.
	if err := SetLimit(LimitStackSize, 1000); err != nil {
		t.Fatalf("SetLimit: %v", err)
	}
	v, err := GetLimit(LimitStackSize)
	if err != nil {
		t.Fatalf("GetLimit: %v", err)
	}
	if v < 1000 {
		t.Errorf("granted stack size %d below request", v)
	}
}

func TestLimit_ImmutableAfterLaunch(t *testing.T) {
	sim := newSim(t)
	ctx := mustCreate(t, SchedAuto, mustDevice(t, 0))
	defer ctx.Close()

	if err := sim.MarkKernelLaunched(); err != nil {
		t.Fatal(err)
	}
	err := SetLimit(LimitDevRuntimeSyncDepth, 8)
	if !errors.IsKind(err, errors.KindLimitImmutable) {
		t.Errorf("SetLimit on frozen limit = %v, want limit_immutable", err)
	}
}

func TestCacheConfig_RoundTrip(t *testing.T) {
	newSim(t)
	ctx := mustCreate(t, SchedAuto, mustDevice(t, 0))
	defer ctx.Close()

	if err := SetCacheConfig(PreferL1); err != nil {
		t.Fatalf("SetCacheConfig: %v", err)
	}
	got, err := GetCacheConfig()
	if err != nil {
		t.Fatalf("GetCacheConfig: %v", err)
	}
	// Hardware without a configurable cache may report something other
	// than the preference; the result just has to be a known member.
	switch got {
	case PreferNone, PreferShared, PreferL1, PreferEqual:
	default:
		t.Errorf("GetCacheConfig returned unknown value %d", got)
	}
}

func TestSharedMemConfig_RoundTrip(t *testing.T) {
	newSim(t)
	ctx := mustCreate(t, SchedAuto, mustDevice(t, 0))
	defer ctx.Close()

	if err := SetSharedMemConfig(BankSizeEightByte); err != nil {
		t.Fatalf("SetSharedMemConfig: %v", err)
	}
	got, err := GetSharedMemConfig()
	if err != nil {
		t.Fatalf("GetSharedMemConfig: %v", err)
	}
	switch got {
	case BankSizeDefault, BankSizeFourByte, BankSizeEightByte:
	default:
		t.Errorf("GetSharedMemConfig returned unknown value %d", got)
	}
}

func TestStreamPriorityRange(t *testing.T) {
	newSim(t)
	ctx := mustCreate(t, SchedAuto, mustDevice(t, 0))
	defer ctx.Close()

	r, err := GetStreamPriorityRange()
	if err != nil {
		t.Fatalf("GetStreamPriorityRange: %v", err)
	}
	// Lower numeric value means higher priority, so the range satisfies
	// Greatest <= Least; devices without priorities report {0, 0}.
	if r.Greatest > r.Least {
		t.Errorf("range {least: %d, greatest: %d} violates convention", r.Least, r.Greatest)
	}
}

func TestStreamPriorityRange_Unsupported(t *testing.T) {
	sim := newSim(t)
	sim.DisableStreamPriorities()
	ctx := mustCreate(t, SchedAuto, mustDevice(t, 0))
	defer ctx.Close()

	r, err := GetStreamPriorityRange()
	if err != nil {
		t.Fatalf("GetStreamPriorityRange: %v", err)
	}
	if r.Least != 0 || r.Greatest != 0 {
		t.Errorf("unsupported device range = %+v, want zeroes", r)
	}
}

func TestSynchronize(t *testing.T) {
	newSim(t)
	ctx := mustCreate(t, SchedAuto, mustDevice(t, 0))
	defer ctx.Close()

	if err := Synchronize(); err != nil {
		t.Errorf("Synchronize: %v", err)
	}
}

func TestCurrentOps_NoContext(t *testing.T) {
	newSim(t)

	ops := []struct {
		name string
		call func() error
	}{
		{"Current", func() error { _, err := Current(); return err }},
		{"CurrentDevice", func() error { _, err := CurrentDevice(); return err }},
		{"CurrentFlags", func() error { _, err := CurrentFlags(); return err }},
		{"GetCacheConfig", func() error { _, err := GetCacheConfig(); return err }},
		{"SetCacheConfig", func() error { return SetCacheConfig(PreferNone) }},
		{"GetSharedMemConfig", func() error { _, err := GetSharedMemConfig(); return err }},
		{"SetSharedMemConfig", func() error { return SetSharedMemConfig(BankSizeDefault) }},
		{"GetLimit", func() error { _, err := GetLimit(LimitStackSize); return err }},
		{"SetLimit", func() error { return SetLimit(LimitStackSize, 2048) }},
		{"GetStreamPriorityRange", func() error { _, err := GetStreamPriorityRange(); return err }},
		{"Synchronize", Synchronize},
	}
	for _, op := range ops {
		t.Run(op.name, func(t *testing.T) {
			err := op.call()
			if !errors.IsKind(err, errors.KindNoCurrentContext) {
				t.Errorf("%s with empty stack = %v, want no_current_context", op.name, err)
			}
		})
	}
}
