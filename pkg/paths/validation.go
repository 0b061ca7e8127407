package paths

import (
	"path/filepath"
	"runtime"
	"strings"

	"github.com/arthur-debert/stencil/pkg/errors"
)

const windowsInvalidChars = `<>:"|?*`

var windowsReservedNames = map[string]bool{
	"CON": true, "PRN": true, "AUX": true, "NUL": true,
	"COM1": true, "COM2": true, "COM3": true, "COM4": true, "COM5": true,
	"COM6": true, "COM7": true, "COM8": true, "COM9": true,
	"LPT1": true, "LPT2": true, "LPT3": true, "LPT4": true, "LPT5": true,
	"LPT6": true, "LPT7": true, "LPT8": true, "LPT9": true,
}

// ValidateSegment checks that seg is a plain file or directory name.
// It rejects:
// - Empty names, "." and ".."
// - Embedded separators
// - NUL and other control characters
// - On Windows: <>:"|?*, a trailing dot or space, and reserved device names
func ValidateSegment(seg string) error {
	return validateSegment(seg, runtime.GOOS == "windows")
}

func validateSegment(seg string, windows bool) error {
	unsafe := func(reason string) error {
		return errors.Newf(errors.ErrUnsafeSegment, "unsafe path segment %q: %s", seg, reason).
			WithDetail("segment", seg)
	}

	if seg == "" {
		return unsafe("empty name")
	}
	if seg == "." || seg == ".." {
		return unsafe("relative directory marker")
	}
	if strings.ContainsAny(seg, `/\`) {
		return unsafe("contains a path separator")
	}
	for _, r := range seg {
		if r < 32 || r == 127 {
			return unsafe("contains control characters")
		}
	}

	if !windows {
		return nil
	}

	if strings.ContainsAny(seg, windowsInvalidChars) {
		return unsafe("contains characters reserved on Windows")
	}
	if strings.HasSuffix(seg, ".") || strings.HasSuffix(seg, " ") {
		return unsafe("trailing dot or space")
	}
	stem := seg
	if i := strings.IndexByte(stem, '.'); i >= 0 {
		stem = stem[:i]
	}
	if windowsReservedNames[strings.ToUpper(stem)] {
		return unsafe("reserved device name")
	}
	return nil
}

// SplitRel splits a relative path on both '/' and '\'
func SplitRel(rel string) []string {
	return strings.FieldsFunc(rel, func(r rune) bool { return r == '/' || r == '\\' })
}

// ValidateRelPath checks that rel is a non-empty relative path made only of
// plain segments
func ValidateRelPath(rel string) error {
	if rel == "" {
		return errors.New(errors.ErrUnsafePath, "path cannot be empty")
	}
	if filepath.IsAbs(rel) || strings.HasPrefix(rel, "/") || strings.HasPrefix(rel, `\`) || filepath.VolumeName(rel) != "" {
		return errors.Newf(errors.ErrUnsafePath, "path %q is absolute", rel).
			WithDetail("path", rel)
	}

	// Split on every separator so empty segments ("a//b") are caught too.
	for _, seg := range strings.Split(strings.ReplaceAll(rel, `\`, "/"), "/") {
		if err := ValidateSegment(seg); err != nil {
			return errors.Wrapf(err, errors.ErrUnsafePath, "unsafe path %q", rel).
				WithDetail("path", rel)
		}
	}
	return nil
}

// ContainsPath reports whether child is parent or lies beneath it.
// Both paths must already be clean and absolute.
func ContainsPath(parent, child string) bool {
	rel, err := filepath.Rel(parent, child)
	if err != nil {
		return false
	}
	return rel == "." || (rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator)))
}
