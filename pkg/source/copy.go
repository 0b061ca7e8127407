package source

import (
	"io/fs"
	"path/filepath"

	"github.com/arthur-debert/stencil/pkg/errors"
	"github.com/arthur-debert/stencil/pkg/logging"
	"github.com/arthur-debert/stencil/pkg/types"
)

// CopyToTemp copies the tree at src into a new temporary directory, leaving
// out directories named in skip and every symlink. It returns the copy's root
// and a function removing the temporary directory.
func CopyToTemp(fsys types.FS, src string, skip []string) (string, func() error, error) {
	logger := logging.GetLogger("source.copy")

	tmp, err := fsys.MkdirTemp("", "stencil-template-")
	if err != nil {
		return "", nil, errors.Wrap(err, errors.ErrDirCreate, "failed to create template directory")
	}
	cleanup := func() error { return fsys.RemoveAll(tmp) }

	skipSet := make(map[string]bool, len(skip))
	for _, s := range skip {
		skipSet[s] = true
	}

	dst := filepath.Join(tmp, "template")
	files := 0
	err = fsys.WalkDir(src, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(src, p)
		if err != nil {
			return err
		}
		target := filepath.Join(dst, rel)

		if d.Type()&fs.ModeSymlink != 0 {
			logger.Warn().Str("path", rel).Msg("not copying symlink from template")
			return nil
		}
		if d.IsDir() {
			if rel != "." && skipSet[d.Name()] {
				return filepath.SkipDir
			}
			return fsys.MkdirAll(target, 0o755)
		}
		if !d.Type().IsRegular() {
			logger.Warn().Str("path", rel).Msg("not copying special file from template")
			return nil
		}

		info, err := d.Info()
		if err != nil {
			return err
		}
		data, err := fsys.ReadFile(p)
		if err != nil {
			return err
		}
		files++
		return fsys.WriteFile(target, data, info.Mode().Perm())
	})
	if err != nil {
		_ = cleanup()
		return "", nil, errors.Wrapf(err, errors.ErrFileAccess, "failed to copy template from %s", src).
			WithDetail("source", src)
	}

	logger.Debug().Str("source", src).Str("copy", dst).Int("files", files).Msg("copied template")
	return dst, cleanup, nil
}
