// Package driver defines the raw CUDA driver call surface used by the rest
// of the library.
//
// The API interface mirrors the cuCtx*/cuDevice* entry points one to one:
// every method returns the raw CUresult Status alongside its outputs, and
// performs no interpretation beyond marshalling. Higher layers (cuctx,
// device, errors) translate Status values into structured errors.
//
// The active implementation is swappable via Set. The default implementation
// loads libcuda dynamically on first use; tests and the CLI's simulated mode
// install an in-memory driver instead.
package driver
