package cuctx

import (
	"testing"

	"github.com/accelkit/cuda-runtime/errors"
)

func TestPushPop_RoundTripIdentity(t *testing.T) {
	newSim(t)
	ctx := mustCreate(t, SchedAuto, mustDevice(t, 0))
	defer ctx.Close()

	popped, err := Pop()
	if err != nil {
		t.Fatalf("Pop: %v", err)
	}
	if popped != ctx.Unowned() {
		t.Fatal("popped handle does not reference the created context")
	}

	if err := Push(popped); err != nil {
		t.Fatalf("Push: %v", err)
	}
	again, err := Pop()
	if err != nil {
		t.Fatalf("Pop after Push: %v", err)
	}
	if again != popped {
		t.Error("push/pop round trip did not preserve context identity")
	}
}

func TestPush_AcceptsBothHandleTypes(t *testing.T) {
	newSim(t)
	ctx := mustCreate(t, SchedAuto, mustDevice(t, 0))
	defer ctx.Close()
	if _, err := Pop(); err != nil {
		t.Fatalf("Pop: %v", err)
	}

	for _, h := range []Handle{ctx, ctx.Unowned()} {
		if err := Push(h); err != nil {
			t.Fatalf("Push(%T): %v", h, err)
		}
		if _, err := Pop(); err != nil {
			t.Fatalf("Pop: %v", err)
		}
	}
}

func TestPop_EmptyStack(t *testing.T) {
	newSim(t)
	_, err := Pop()
	if !errors.IsKind(err, errors.KindNoCurrentContext) {
		t.Errorf("Pop on empty stack = %v, want no_current_context", err)
	}
}

func TestPush_NullHandle(t *testing.T) {
	newSim(t)
	err := Push(Unowned{})
	if !errors.IsKind(err, errors.KindInvalidValue) {
		t.Errorf("Push of zero handle = %v, want invalid_value", err)
	}
}
