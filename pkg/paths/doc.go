// Package paths is the single authority for turning untrusted relative paths
// into absolute paths stencil may write to.
//
// Every path that comes from a template tree or a hook result passes through
// here before a byte is written:
//
//   - ValidateSegment checks one rendered name (file or directory).
//   - ValidateRelPath checks a whole '/'- or '\'-separated relative path.
//   - Guard resolves a relative path under a canonical root, refusing to
//     descend through an existing symlink and refusing any result whose
//     canonical form lies outside the root.
//
// The package also knows the XDG locations stencil uses for its own files.
//
// # Usage
//
//	guard, err := paths.NewGuard(filesystem.NewOS(), outputDir)
//	if err != nil {
//	    return err
//	}
//	abs, err := guard.Resolve("demo_app/src/main.go")
package paths
