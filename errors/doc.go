// Package errors provides structured error types for the cuda-runtime library.
//
// Errors are categorized by Op (the driver entry point that failed) and Kind
// (error category). The Error type always preserves the original CUresult
// code so no diagnostic information is lost in translation.
//
// Most errors come from mapping a raw driver status:
//
//	if st := drv.CtxSynchronize(); st != driver.Success {
//		return errors.FromStatus("cuCtxSynchronize", st)
//	}
//
// A few conditions are synthesized by the binding itself rather than
// reported by the driver, such as querying the current context on a thread
// whose stack is empty:
//
//	err := errors.NoCurrentContext("cuCtxGetCurrent")
//
// All errors implement the standard error interface and support errors.Is/As.
// Matching with Is compares the Kind (and Op, when the target sets one):
//
//	if errors.IsKind(err, errors.KindContextDestroyed) { ... }
package errors
