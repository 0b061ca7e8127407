package paths

import (
	"io/fs"
	"path/filepath"

	"github.com/arthur-debert/stencil/pkg/errors"
	"github.com/arthur-debert/stencil/pkg/logging"
	"github.com/arthur-debert/stencil/pkg/types"
)

// Guard resolves relative paths under a canonical root
type Guard struct {
	fs   types.FS
	root string
}

// NewGuard captures the canonical (absolute, symlink-resolved) form of root.
// root must exist and be a directory.
func NewGuard(fsys types.FS, root string) (*Guard, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, errors.Wrapf(err, errors.ErrFileAccess, "cannot make %s absolute", root)
	}

	canonical, err := fsys.EvalSymlinks(abs)
	if err != nil {
		return nil, errors.Wrapf(err, errors.ErrFileAccess, "cannot resolve root %s", abs).
			WithDetail("root", abs)
	}

	info, err := fsys.Stat(canonical)
	if err != nil {
		return nil, errors.Wrapf(err, errors.ErrFileAccess, "cannot stat root %s", canonical)
	}
	if !info.IsDir() {
		return nil, errors.Newf(errors.ErrInvalidInput, "root %s is not a directory", canonical).
			WithDetail("root", canonical)
	}

	return &Guard{fs: fsys, root: canonical}, nil
}

// Root returns the canonical root
func (g *Guard) Root() string {
	return g.root
}

// Resolve turns rel into an absolute path under the root.
//
// Every component that already exists, the last one included, must not be a
// symlink. If the full path exists, its canonical form must lie under the root.
func (g *Guard) Resolve(rel string) (string, error) {
	if err := ValidateRelPath(rel); err != nil {
		return "", err
	}

	current := g.root
	for _, seg := range SplitRel(rel) {
		current = filepath.Join(current, seg)
		if err := g.checkNotSymlink(current, rel); err != nil {
			return "", err
		}
	}

	if _, err := g.fs.Lstat(current); err == nil {
		canonical, err := g.fs.EvalSymlinks(current)
		if err != nil || !ContainsPath(g.root, canonical) {
			return "", errors.Newf(errors.ErrRootEscape, "path %q resolves outside %s", rel, g.root).
				WithDetails(map[string]interface{}{
					"path":      rel,
					"root":      g.root,
					"canonical": canonical,
				})
		}
	}

	return current, nil
}

func (g *Guard) checkNotSymlink(path, rel string) error {
	info, err := g.fs.Lstat(path)
	if err != nil {
		return nil
	}
	if info.Mode()&fs.ModeSymlink != 0 {
		return errors.Newf(errors.ErrSymlinkTraversal, "path %q traverses symlink %s", rel, path).
			WithDetails(map[string]interface{}{
				"path":    rel,
				"symlink": path,
			})
	}
	return nil
}

// MkdirAll resolves rel and creates it with any missing parents
func (g *Guard) MkdirAll(rel string, perm fs.FileMode) (string, error) {
	abs, err := g.Resolve(rel)
	if err != nil {
		return "", err
	}
	if err := g.fs.MkdirAll(abs, perm); err != nil {
		return "", errors.Wrapf(err, errors.ErrDirCreate, "failed to create directory %s", abs).
			WithDetail("path", rel)
	}
	return abs, nil
}

// WriteFile resolves rel, creates its parent directories and writes data.
// The parent directories go through the same resolution as rel.
func (g *Guard) WriteFile(rel string, data []byte, perm, dirPerm fs.FileMode) (string, error) {
	logger := logging.GetLogger("paths.guard")

	abs, err := g.Resolve(rel)
	if err != nil {
		return "", err
	}

	segs := SplitRel(rel)
	if len(segs) > 1 {
		parent := filepath.ToSlash(filepath.Join(segs[:len(segs)-1]...))
		if _, err := g.MkdirAll(parent, dirPerm); err != nil {
			return "", err
		}
	}

	if err := g.fs.WriteFile(abs, data, perm); err != nil {
		return "", errors.Wrapf(err, errors.ErrFileWrite, "failed to write %s", abs).
			WithDetail("path", rel)
	}

	logger.Trace().Str("path", rel).Int("bytes", len(data)).Msg("wrote file")
	return abs, nil
}
