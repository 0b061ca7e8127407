package source_test

import (
	"context"
	stderrors "errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arthur-debert/stencil/pkg/errors"
	"github.com/arthur-debert/stencil/pkg/filesystem"
	"github.com/arthur-debert/stencil/pkg/source"
)

type call struct {
	dir  string
	name string
	args []string
}

// fakeRunner records calls and delegates to fn
type fakeRunner struct {
	calls []call
	fn    func(c call) ([]byte, error)
}

func (f *fakeRunner) Run(_ context.Context, dir, name string, args ...string) ([]byte, error) {
	c := call{dir: dir, name: name, args: args}
	f.calls = append(f.calls, c)
	if f.fn == nil {
		return nil, nil
	}
	return f.fn(c)
}

func TestIsRemote(t *testing.T) {
	tests := []struct {
		src  string
		want bool
	}{
		{"https://github.com/acme/template", true},
		{"http://example.com/t", true},
		{"ssh://git@example.com/t", true},
		{"git@github.com:acme/template", true},
		{"../templates/app.git", true},
		{"./templates/app", false},
		{"/abs/templates/app", false},
	}
	for _, tt := range tests {
		t.Run(tt.src, func(t *testing.T) {
			assert.Equal(t, tt.want, source.IsRemote(tt.src))
		})
	}
}

func TestFetchLocal(t *testing.T) {
	dir := t.TempDir()
	runner := &fakeRunner{}
	f := &source.Fetcher{FS: filesystem.NewOS(), Runner: runner, Depth: 1}

	tmpl, err := f.Fetch(context.Background(), dir)
	require.NoError(t, err)
	assert.Equal(t, source.KindLocal, tmpl.Kind)
	assert.Equal(t, dir, tmpl.Root)
	assert.Empty(t, runner.calls)
	assert.NoError(t, tmpl.Close())

	// a local directory is never removed
	_, err = os.Stat(dir)
	assert.NoError(t, err)
}

func TestFetchLocalErrors(t *testing.T) {
	f := &source.Fetcher{FS: filesystem.NewOS(), Runner: &fakeRunner{}}

	t.Run("missing", func(t *testing.T) {
		_, err := f.Fetch(context.Background(), filepath.Join(t.TempDir(), "missing"))
		assert.True(t, errors.IsErrorCode(err, errors.ErrNotFound))
	})

	t.Run("file", func(t *testing.T) {
		file := filepath.Join(t.TempDir(), "file")
		require.NoError(t, os.WriteFile(file, []byte("x"), 0644))
		_, err := f.Fetch(context.Background(), file)
		assert.True(t, errors.IsErrorCode(err, errors.ErrInvalidInput))
	})

	t.Run("empty", func(t *testing.T) {
		_, err := f.Fetch(context.Background(), "")
		assert.True(t, errors.IsErrorCode(err, errors.ErrInvalidInput))
	})
}

func TestFetchGit(t *testing.T) {
	t.Run("shallow_clone", func(t *testing.T) {
		runner := &fakeRunner{fn: func(c call) ([]byte, error) {
			dst := c.args[len(c.args)-1]
			return nil, os.MkdirAll(dst, 0755)
		}}
		f := &source.Fetcher{FS: filesystem.NewOS(), Runner: runner, Depth: 1}

		tmpl, err := f.Fetch(context.Background(), "https://example.com/acme/template.git")
		require.NoError(t, err)
		assert.Equal(t, source.KindGit, tmpl.Kind)

		require.Len(t, runner.calls, 1)
		c := runner.calls[0]
		assert.Equal(t, "git", c.name)
		assert.Equal(t, []string{"clone", "--depth", "1", "--", "https://example.com/acme/template.git", tmpl.Root}, c.args)

		_, err = os.Stat(tmpl.Root)
		require.NoError(t, err)

		require.NoError(t, tmpl.Close())
		_, err = os.Stat(filepath.Dir(tmpl.Root))
		assert.True(t, os.IsNotExist(err), "clone directory should be removed")
	})

	t.Run("full_clone_without_depth", func(t *testing.T) {
		runner := &fakeRunner{}
		f := &source.Fetcher{FS: filesystem.NewOS(), Runner: runner}

		tmpl, err := f.Fetch(context.Background(), "https://example.com/t.git")
		require.NoError(t, err)
		defer tmpl.Close()
		assert.NotContains(t, runner.calls[0].args, "--depth")
	})

	t.Run("clone_failure", func(t *testing.T) {
		var cloneDir string
		runner := &fakeRunner{fn: func(c call) ([]byte, error) {
			cloneDir = c.dir
			return []byte("fatal: repository not found\n"), stderrors.New("exit status 128")
		}}
		f := &source.Fetcher{FS: filesystem.NewOS(), Runner: runner, Depth: 1}

		_, err := f.Fetch(context.Background(), "https://example.com/missing.git")
		require.Error(t, err)
		assert.True(t, errors.IsErrorCode(err, errors.ErrSourceFetch))
		assert.Equal(t, "fatal: repository not found", errors.GetErrorDetails(err)["output"])

		_, statErr := os.Stat(cloneDir)
		assert.True(t, os.IsNotExist(statErr), "clone directory should be removed on failure")
	})
}

func TestCopyToTemp(t *testing.T) {
	src := t.TempDir()
	write := func(rel, content string, perm os.FileMode) {
		p := filepath.Join(src, rel)
		require.NoError(t, os.MkdirAll(filepath.Dir(p), 0755))
		require.NoError(t, os.WriteFile(p, []byte(content), perm))
	}
	write("stencil.json", `{"name": "x"}`, 0644)
	write("{{ .project_slug }}/run.sh", "#!/bin/sh\n", 0755)
	write(".git/HEAD", "ref: refs/heads/main\n", 0644)
	write("nested/.svn/entries", "12\n", 0644)
	require.NoError(t, os.Symlink("/etc/passwd", filepath.Join(src, "passwd")))

	root, cleanup, err := source.CopyToTemp(filesystem.NewOS(), src, []string{".git", ".svn"})
	require.NoError(t, err)

	data, err := os.ReadFile(filepath.Join(root, "stencil.json"))
	require.NoError(t, err)
	assert.Equal(t, `{"name": "x"}`, string(data))

	info, err := os.Stat(filepath.Join(root, "{{ .project_slug }}", "run.sh"))
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0755), info.Mode().Perm())

	for _, rel := range []string{".git", "nested/.svn", "passwd"} {
		_, err := os.Lstat(filepath.Join(root, rel))
		assert.True(t, os.IsNotExist(err), "%s should not be copied", rel)
	}
	_, err = os.Stat(filepath.Join(root, "nested"))
	assert.NoError(t, err)

	require.NoError(t, cleanup())
	_, err = os.Stat(filepath.Dir(root))
	assert.True(t, os.IsNotExist(err))
}

func TestCopyToTempMissingSource(t *testing.T) {
	_, _, err := source.CopyToTemp(filesystem.NewOS(), filepath.Join(t.TempDir(), "missing"), nil)
	assert.True(t, errors.IsErrorCode(err, errors.ErrFileAccess))
}

func TestSync(t *testing.T) {
	installed := func(string) bool { return true }

	t.Run("nothing_to_sync", func(t *testing.T) {
		runner := &fakeRunner{}
		s := &source.Syncer{FS: filesystem.NewOS(), Runner: runner, LookPath: installed}

		warnings := s.Sync(context.Background(), t.TempDir(), source.SyncOptions{Submodules: true, SVN: true})
		assert.Empty(t, warnings)
		assert.Empty(t, runner.calls)
	})

	t.Run("submodules", func(t *testing.T) {
		root := t.TempDir()
		require.NoError(t, os.WriteFile(filepath.Join(root, ".gitmodules"), nil, 0644))
		runner := &fakeRunner{}
		s := &source.Syncer{FS: filesystem.NewOS(), Runner: runner, LookPath: installed}

		warnings := s.Sync(context.Background(), root, source.SyncOptions{Submodules: true})
		assert.Empty(t, warnings)
		require.Len(t, runner.calls, 2)
		assert.Equal(t, []string{"-C", root, "submodule", "sync", "--recursive"}, runner.calls[0].args)
		assert.Equal(t, []string{"-C", root, "submodule", "update", "--init", "--recursive"}, runner.calls[1].args)
	})

	t.Run("disabled", func(t *testing.T) {
		root := t.TempDir()
		require.NoError(t, os.WriteFile(filepath.Join(root, ".gitmodules"), nil, 0644))
		runner := &fakeRunner{}
		s := &source.Syncer{FS: filesystem.NewOS(), Runner: runner, LookPath: installed}

		assert.Empty(t, s.Sync(context.Background(), root, source.SyncOptions{}))
		assert.Empty(t, runner.calls)
	})

	t.Run("failures_are_warnings", func(t *testing.T) {
		root := t.TempDir()
		require.NoError(t, os.WriteFile(filepath.Join(root, ".gitmodules"), nil, 0644))
		require.NoError(t, os.Mkdir(filepath.Join(root, ".svn"), 0755))
		runner := &fakeRunner{fn: func(c call) ([]byte, error) {
			return []byte("network down"), stderrors.New("exit status 1")
		}}
		s := &source.Syncer{FS: filesystem.NewOS(), Runner: runner, LookPath: installed}

		warnings := s.Sync(context.Background(), root, source.SyncOptions{Submodules: true, SVN: true})
		require.Len(t, warnings, 2)
		assert.True(t, strings.HasPrefix(warnings[0], "git submodule sync --recursive failed"))
		assert.True(t, strings.HasPrefix(warnings[1], "svn update failed"))
		// the update step is skipped once sync fails
		assert.Len(t, runner.calls, 2)
	})

	t.Run("missing_tool", func(t *testing.T) {
		root := t.TempDir()
		require.NoError(t, os.Mkdir(filepath.Join(root, ".svn"), 0755))
		runner := &fakeRunner{}
		s := &source.Syncer{FS: filesystem.NewOS(), Runner: runner, LookPath: func(string) bool { return false }}

		warnings := s.Sync(context.Background(), root, source.SyncOptions{SVN: true})
		require.Len(t, warnings, 1)
		assert.Contains(t, warnings[0], "svn is not available")
		assert.Empty(t, runner.calls)
	})
}
