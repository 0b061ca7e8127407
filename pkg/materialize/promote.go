package materialize

import (
	stderrors "errors"
	"io/fs"
	"path/filepath"

	"github.com/arthur-debert/stencil/pkg/errors"
	"github.com/arthur-debert/stencil/pkg/logging"
	"github.com/arthur-debert/stencil/pkg/paths"
	"github.com/arthur-debert/stencil/pkg/types"
)

// promote copies the staging tree into output, re-validating every path
// against a guard on output. It returns the promoted files relative to
// output, including those copied before a failure.
func promote(fsys types.FS, staging, output string, dirPerm fs.FileMode) ([]string, error) {
	logger := logging.GetLogger("materialize.promote")
	done := logging.LogOperationStart(logger, "promote")
	defer done()

	if err := fsys.MkdirAll(output, dirPerm); err != nil {
		return nil, errors.Wrapf(err, errors.ErrDirCreate, "failed to create output directory %s", output).
			WithDetail("path", output)
	}
	guard, err := paths.NewGuard(fsys, output)
	if err != nil {
		return nil, err
	}

	var promoted []string
	fail := func(err error, rel string) error {
		details := map[string]interface{}{
			"failed":   rel,
			"promoted": len(promoted),
			"files":    append([]string(nil), promoted...),
		}
		var se *errors.StencilError
		if errors.IsSafetyError(err) && stderrors.As(err, &se) {
			se.WithDetails(details)
			return err
		}
		return errors.Wrapf(err, errors.ErrPromote, "promotion stopped at %s after %d files", rel, len(promoted)).
			WithDetails(details)
	}

	err = fsys.WalkDir(staging, func(p string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return fail(walkErr, p)
		}
		if p == staging {
			return nil
		}
		rel, err := filepath.Rel(staging, p)
		if err != nil {
			return fail(err, p)
		}
		rel = filepath.ToSlash(rel)

		switch {
		case d.IsDir():
			if _, err := guard.MkdirAll(rel, dirPerm); err != nil {
				return fail(err, rel)
			}
		case d.Type().IsRegular():
			info, err := d.Info()
			if err != nil {
				return fail(err, rel)
			}
			data, err := fsys.ReadFile(p)
			if err != nil {
				return fail(err, rel)
			}
			if _, err := guard.WriteFile(rel, data, info.Mode().Perm(), dirPerm); err != nil {
				return fail(err, rel)
			}
			promoted = append(promoted, rel)
		default:
			return fail(errors.Newf(errors.ErrUnsafePath, "staged entry %s is not a regular file", rel), rel)
		}
		return nil
	})
	if err != nil {
		logger.Error().Err(err).Int("promoted", len(promoted)).Msg("promotion incomplete")
		return promoted, err
	}

	logger.Debug().Str("output", guard.Root()).Int("files", len(promoted)).Msg("promoted staging tree")
	return promoted, nil
}
