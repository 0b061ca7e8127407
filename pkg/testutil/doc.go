// Package testutil provides utilities for testing stencil components.
//
// Key components:
//   - FileTree: declarative template and output trees written to disk
//   - Environment: isolated TMPDIR, log file and config file for a test
//   - file assertions that read through the real filesystem
//
// Usage guidelines:
//   - Define test data inline, not in external files
//   - Every test gets its own directories from t.TempDir
package testutil
