package source

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/arthur-debert/stencil/pkg/logging"
	"github.com/arthur-debert/stencil/pkg/types"
)

// SyncOptions selects which refreshes Sync attempts
type SyncOptions struct {
	Submodules bool
	SVN        bool
}

// Syncer refreshes version-controlled templates
type Syncer struct {
	FS     types.FS
	Runner CommandRunner

	// LookPath reports whether a program is installed; defaults to Available
	LookPath func(name string) bool
}

// Sync refreshes git submodules and svn working copies found at root.
// Failures are logged and returned as warnings.
func (s *Syncer) Sync(ctx context.Context, root string, opts SyncOptions) []string {
	logger := logging.GetLogger("source.vcs")
	var warnings []string

	warn := func(format string, args ...interface{}) {
		msg := fmt.Sprintf(format, args...)
		logger.Warn().Str("root", root).Msg(msg)
		warnings = append(warnings, msg)
	}

	if opts.Submodules && exists(s.FS, filepath.Join(root, ".gitmodules")) {
		if !s.available("git") {
			warn("git submodules not refreshed: git is not available on PATH")
		} else {
			for _, args := range [][]string{
				{"-C", root, "submodule", "sync", "--recursive"},
				{"-C", root, "submodule", "update", "--init", "--recursive"},
			} {
				if out, err := s.Runner.Run(ctx, root, "git", args...); err != nil {
					warn("git %s failed: %v: %s", strings.Join(args[2:], " "), err, strings.TrimSpace(string(out)))
					break
				}
			}
		}
	}

	if opts.SVN && exists(s.FS, filepath.Join(root, ".svn")) {
		if !s.available("svn") {
			warn("svn working copy not refreshed: svn is not available on PATH")
		} else if out, err := s.Runner.Run(ctx, root, "svn", "update", root); err != nil {
			warn("svn update failed: %v: %s", err, strings.TrimSpace(string(out)))
		}
	}

	return warnings
}

func (s *Syncer) available(name string) bool {
	if s.LookPath != nil {
		return s.LookPath(name)
	}
	return Available(name)
}
