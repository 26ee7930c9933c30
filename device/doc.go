// Package device enumerates CUDA devices and answers capability queries.
//
// A Device is a lightweight reference identified by its ordinal; it owns
// nothing and is freely copyable. Context creation (package cuctx) consumes
// a Device, and the current-context accessor produces one.
//
// The library must be initialized (cudaruntime.Init) before any call in
// this package.
package device
