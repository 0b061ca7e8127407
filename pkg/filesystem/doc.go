// Package filesystem provides filesystem implementations for stencil.
//
// This package contains implementations of the types.FS interface: the
// standard OS filesystem used by real runs, and a fault-injecting wrapper
// used by tests to interrupt writes at a chosen point.
package filesystem
