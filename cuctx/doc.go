// Package cuctx manages CUDA context lifecycle and thread-local visibility.
//
// A CUDA context is analogous to a process: an isolated container for device
// state, configuration and memory allocations, bound to a single device.
// The driver keeps a per-OS-thread stack of contexts; the top of the calling
// thread's stack is the "current" context and is the implicit target of most
// driver calls. The same context may be current on any number of threads at
// once.
//
// # Ownership
//
// The driver has no notion of single ownership and no reference counting, so
// this package splits the handle in two:
//
//   - Context owns the native context. Exactly one Context exists per live
//     native context, and Close is the only destruction path. Close panics
//     if the native destroy fails; there is no way to recover a correct
//     program state after a failed resource release.
//   - Unowned is a freely copyable reference with no destruction rights. It
//     may be sent to other goroutines and used to make the context current
//     there. Its validity is not tracked: once the owner calls Close, using
//     an Unowned reports a context_destroyed error from the driver.
//
// Both types implement the sealed Handle interface, which grants read access
// to the native handle (enough to push it) but never destruction rights.
//
// # Thread discipline
//
// The current-context stack is per OS thread. Goroutines that make a context
// current must pin themselves with runtime.LockOSThread for as long as they
// rely on that currency.
//
// # Safety
//
// Close destroys the context even if it is still current on other threads;
// their subsequent calls fail with an error. That is the safe outcome. The
// unsafe one is another thread being inside a driver call while Close runs:
// the driver gives that case undefined behavior and this package cannot
// detect it. The caller must ensure no other thread is using handles derived
// from a Context when it is closed, typically by joining workers first:
//
//	ctx, err := cuctx.CreateAndPush(cuctx.MapHost|cuctx.SchedAuto, dev)
//	if err != nil { ... }
//	if _, err := cuctx.Pop(); err != nil { ... }
//
//	var wg sync.WaitGroup
//	for i := 0; i < 4; i++ {
//		wg.Add(1)
//		go func() {
//			defer wg.Done()
//			runtime.LockOSThread()
//			defer runtime.UnlockOSThread()
//			if err := cuctx.Push(ctx.Unowned()); err != nil { ... }
//			defer cuctx.Pop()
//			// issue device work
//		}()
//	}
//	wg.Wait()
//	ctx.Close() // safe: no other thread is using the context
package cuctx
