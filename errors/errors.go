package errors

import (
	"fmt"
	"strings"

	"github.com/accelkit/cuda-runtime/internal/driver"
)

// Kind categorizes the error
type Kind string

const (
	KindInvalidValue     Kind = "invalid_value"      // bad argument or out-of-range configuration
	KindOutOfMemory      Kind = "out_of_memory"      // device allocation failure
	KindNotInitialized   Kind = "not_initialized"    // Init has not been called
	KindDeinitialized    Kind = "deinitialized"      // driver is shutting down
	KindNoDevice         Kind = "no_device"          // no CUDA-capable device visible
	KindInvalidDevice    Kind = "invalid_device"     // device ordinal out of range
	KindNoCurrentContext Kind = "no_current_context" // calling thread's context stack is empty
	KindContextDestroyed Kind = "context_destroyed"  // handle refers to a destroyed context
	KindLimitImmutable   Kind = "limit_immutable"    // resource limit unsupported or frozen by kernel activity
	KindNotSupported     Kind = "not_supported"      // operation unsupported on this device
	KindUnavailable      Kind = "unavailable"        // driver library could not be loaded
	KindDriver           Kind = "driver"             // unclassified native failure
)

// statusKinds maps each distinguished CUresult to its Kind. The driver
// reports an empty thread-local stack as CUDA_ERROR_INVALID_CONTEXT, so 201
// maps to KindNoCurrentContext; genuinely dead handles surface as
// CUDA_ERROR_CONTEXT_IS_DESTROYED instead.
var statusKinds = map[driver.Status]Kind{
	driver.ErrInvalidValue:     KindInvalidValue,
	driver.ErrOutOfMemory:      KindOutOfMemory,
	driver.ErrNotInitialized:   KindNotInitialized,
	driver.ErrDeinitialized:    KindDeinitialized,
	driver.ErrNoDevice:         KindNoDevice,
	driver.ErrInvalidDevice:    KindInvalidDevice,
	driver.ErrInvalidContext:   KindNoCurrentContext,
	driver.ErrUnsupportedLimit: KindLimitImmutable,
	driver.ErrContextDestroyed: KindContextDestroyed,
	driver.ErrNotSupported:     KindNotSupported,
}

// Error is the structured error type used throughout the library.
type Error struct {
	Op     string        // driver entry point, e.g. "cuCtxSetLimit"
	Kind   Kind          // error category
	Code   driver.Status // original CUresult; 0 for conditions synthesized by the binding
	Detail string        // optional human-readable context
	Cause  error         // optional underlying error
}

// Error implements the error interface
func (e *Error) Error() string {
	var b strings.Builder

	b.WriteByte('[')
	b.WriteString(e.Op)
	b.WriteString("] ")
	b.WriteString(string(e.Kind))

	if e.Detail != "" {
		b.WriteString(": ")
		b.WriteString(e.Detail)
	}

	if e.Code != driver.Success {
		fmt.Fprintf(&b, " (%s=%d)", e.Code, uint32(e.Code))
	}

	if e.Cause != nil {
		b.WriteString(" (caused by: ")
		b.WriteString(e.Cause.Error())
		b.WriteByte(')')
	}

	return b.String()
}

// Unwrap returns the underlying error
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is reports whether target matches this error. Kinds must match; the Op is
// compared only when the target specifies one.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	if e.Kind != t.Kind {
		return false
	}
	return t.Op == "" || e.Op == t.Op
}

// IsKind reports whether err is an *Error of the given kind.
func IsKind(err error, kind Kind) bool {
	for err != nil {
		if e, ok := err.(*Error); ok {
			return e.Kind == kind
		}
		u, ok := err.(interface{ Unwrap() error })
		if !ok {
			return false
		}
		err = u.Unwrap()
	}
	return false
}

// FromStatus maps a raw driver status to a structured error. It returns nil
// for CUDA_SUCCESS. Unrecognized codes are classified as KindDriver; the
// code itself is always preserved.
func FromStatus(op string, st driver.Status) error {
	if st == driver.Success {
		return nil
	}
	kind, ok := statusKinds[st]
	if !ok {
		kind = KindDriver
	}
	return &Error{Op: op, Kind: kind, Code: st}
}

// Convenience constructors for conditions the binding detects itself.

// NoCurrentContext reports that no context is current on the calling thread.
// Used when the driver signals the condition with a null handle rather than
// an error status.
func NoCurrentContext(op string) *Error {
	return &Error{
		Op:     op,
		Kind:   KindNoCurrentContext,
		Detail: "no context is current on the calling thread",
	}
}

// Unavailable reports that the driver library could not be loaded.
func Unavailable(op string, cause error) *Error {
	return &Error{
		Op:    op,
		Kind:  KindUnavailable,
		Cause: cause,
	}
}

// InvalidValue reports an argument the binding rejected before reaching the
// driver.
func InvalidValue(op, detail string) *Error {
	return &Error{
		Op:     op,
		Kind:   KindInvalidValue,
		Detail: detail,
	}
}
