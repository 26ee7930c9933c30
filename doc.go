// Package cudaruntime provides Go bindings for CUDA driver context
// management.
//
// The library maps the driver's ownerless context model onto an explicit
// owning/non-owning handle split, so that destruction happens exactly once
// while references can still flow freely across threads.
//
// # Architecture Overview
//
// The library is organized into several packages with distinct
// responsibilities:
//
//	cuda-runtime/        Root package: initialization and driver version
//	├── cuctx/           Context lifecycle, thread-local stack, current-context surface
//	├── device/          Device enumeration and capability queries
//	├── errors/          Structured error types preserving native CUresult codes
//	├── internal/driver/ Raw driver call surface (dynamic libcuda loading)
//	└── internal/drivertest/ In-memory driver simulator for tests and -sim mode
//
// # Quick Start
//
//	if err := cudaruntime.Init(cudaruntime.InitDefault); err != nil {
//	    log.Fatal(err)
//	}
//
//	dev, err := device.Get(0)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	ctx, err := cuctx.CreateAndPush(cuctx.MapHost|cuctx.SchedAuto, dev)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer ctx.Close()
//
//	// issue device work through the current context
//
// # Thread Safety
//
// The context stack is per OS thread. Goroutines that make a context
// current must pin themselves with runtime.LockOSThread. A Context may be
// shared across threads through Unowned handles, but the caller must ensure
// no other thread is inside a driver call when Close runs; see package
// cuctx for the full contract.
package cudaruntime
