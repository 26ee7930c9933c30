// Package drivertest provides an in-memory implementation of the driver.API
// call surface for tests and for the CLI's simulated mode.
//
// The simulator models the native semantics the library depends on:
// per-thread context stacks, create-also-pushes, destroy-invalidates (a
// destroyed context stays known so later use reports
// CUDA_ERROR_CONTEXT_IS_DESTROYED), limit clamping, and freezing of
// launch-sensitive limits after kernel activity.
//
// Stacks are keyed by calling goroutine. Callers of the real driver must
// pin goroutines to OS threads; under that discipline a goroutine and a
// thread are interchangeable, so goroutine keying reproduces the native
// visibility rules without platform-specific thread identification.
package drivertest
