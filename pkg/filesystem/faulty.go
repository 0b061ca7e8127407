package filesystem

import (
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"

	"github.com/arthur-debert/stencil/pkg/types"
)

// FaultyFS wraps another FS and fails WriteFile calls under Prefix once
// AllowWrites successful writes have happened there.
type FaultyFS struct {
	types.FS

	Prefix      string
	AllowWrites int

	writes int
}

// NewFaulty wraps base so that writes under prefix fail after allow successes
func NewFaulty(base types.FS, prefix string, allow int) *FaultyFS {
	return &FaultyFS{FS: base, Prefix: filepath.Clean(prefix), AllowWrites: allow}
}

// WriteFile implements types.FS
func (f *FaultyFS) WriteFile(name string, data []byte, perm fs.FileMode) error {
	clean := filepath.Clean(name)
	if clean == f.Prefix || strings.HasPrefix(clean, f.Prefix+string(filepath.Separator)) {
		if f.writes >= f.AllowWrites {
			return &fs.PathError{Op: "write", Path: name, Err: fmt.Errorf("injected failure after %d writes", f.writes)}
		}
		f.writes++
	}
	return f.FS.WriteFile(name, data, perm)
}

// Writes returns the number of successful writes under Prefix
func (f *FaultyFS) Writes() int {
	return f.writes
}
