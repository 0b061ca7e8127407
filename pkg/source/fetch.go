package source

import (
	"context"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/arthur-debert/stencil/pkg/errors"
	"github.com/arthur-debert/stencil/pkg/logging"
	"github.com/arthur-debert/stencil/pkg/types"
)

// Kind tells where a template came from
type Kind int

const (
	KindLocal Kind = iota
	KindGit
)

// String returns a human-readable name for the kind
func (k Kind) String() string {
	if k == KindGit {
		return "git"
	}
	return "local"
}

// Template is an acquired template tree
type Template struct {
	Source string
	Kind   Kind

	// Root is the directory holding the template
	Root string

	cleanup func() error
}

// Close releases temporary resources held by the template
func (t *Template) Close() error {
	if t == nil || t.cleanup == nil {
		return nil
	}
	err := t.cleanup()
	t.cleanup = nil
	return err
}

// IsRemote reports whether src is a git URL rather than a local path
func IsRemote(src string) bool {
	return strings.HasPrefix(src, "http://") ||
		strings.HasPrefix(src, "https://") ||
		strings.HasPrefix(src, "ssh://") ||
		strings.HasPrefix(src, "git@") ||
		strings.HasSuffix(src, ".git")
}

// Fetcher acquires templates
type Fetcher struct {
	FS     types.FS
	Runner CommandRunner

	// Depth is the git clone depth; zero clones the full history
	Depth int
}

// Fetch resolves src to a template directory. Remote sources are cloned into
// a temporary directory that Close removes.
func (f *Fetcher) Fetch(ctx context.Context, src string) (*Template, error) {
	logger := logging.GetLogger("source")

	if src == "" {
		return nil, errors.New(errors.ErrInvalidInput, "template source cannot be empty")
	}

	if !IsRemote(src) || isExistingDir(f.FS, src) {
		abs, err := filepath.Abs(src)
		if err != nil {
			return nil, errors.Wrapf(err, errors.ErrInvalidInput, "invalid template path %s", src)
		}
		info, err := f.FS.Stat(abs)
		if err != nil {
			return nil, errors.Wrapf(err, errors.ErrNotFound, "template path does not exist: %s", abs).
				WithDetail("path", abs)
		}
		if !info.IsDir() {
			return nil, errors.Newf(errors.ErrInvalidInput, "template path is not a directory: %s", abs).
				WithDetail("path", abs)
		}
		logger.Debug().Str("path", abs).Msg("using local template")
		return &Template{Source: src, Kind: KindLocal, Root: abs}, nil
	}

	tmp, err := f.FS.MkdirTemp("", "stencil-clone-")
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrDirCreate, "failed to create clone directory")
	}
	cleanup := func() error { return f.FS.RemoveAll(tmp) }

	dst := filepath.Join(tmp, "repo")
	args := []string{"clone"}
	if f.Depth > 0 {
		args = append(args, "--depth", strconv.Itoa(f.Depth))
	}
	args = append(args, "--", src, dst)

	out, err := f.Runner.Run(ctx, tmp, "git", args...)
	if err != nil {
		_ = cleanup()
		return nil, errors.Wrapf(err, errors.ErrSourceFetch, "git clone failed for %s", src).
			WithDetails(map[string]interface{}{
				"source": src,
				"output": strings.TrimSpace(string(out)),
			})
	}

	logger.Info().Str("source", src).Int("depth", f.Depth).Msg("cloned template")
	return &Template{Source: src, Kind: KindGit, Root: dst, cleanup: cleanup}, nil
}

func isExistingDir(fsys types.FS, p string) bool {
	info, err := fsys.Stat(p)
	return err == nil && info.IsDir()
}

// exists reports whether p exists, treating errors other than absence as existing
func exists(fsys types.FS, p string) bool {
	_, err := fsys.Stat(p)
	return err == nil || !os.IsNotExist(err)
}
