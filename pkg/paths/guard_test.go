package paths_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arthur-debert/stencil/pkg/errors"
	"github.com/arthur-debert/stencil/pkg/filesystem"
	"github.com/arthur-debert/stencil/pkg/paths"
)

func newGuard(t *testing.T) (*paths.Guard, string) {
	t.Helper()
	root := t.TempDir()
	guard, err := paths.NewGuard(filesystem.NewOS(), root)
	require.NoError(t, err)
	return guard, guard.Root()
}

func TestNewGuard(t *testing.T) {
	t.Run("canonicalizes_symlinked_root", func(t *testing.T) {
		base := t.TempDir()
		realDir := filepath.Join(base, "real")
		require.NoError(t, os.Mkdir(realDir, 0755))
		link := filepath.Join(base, "link")
		require.NoError(t, os.Symlink(realDir, link))

		guard, err := paths.NewGuard(filesystem.NewOS(), link)
		require.NoError(t, err)

		want, err := filepath.EvalSymlinks(realDir)
		require.NoError(t, err)
		assert.Equal(t, want, guard.Root())
	})

	t.Run("missing_root", func(t *testing.T) {
		_, err := paths.NewGuard(filesystem.NewOS(), filepath.Join(t.TempDir(), "missing"))
		require.Error(t, err)
	})

	t.Run("file_root", func(t *testing.T) {
		file := filepath.Join(t.TempDir(), "f")
		require.NoError(t, os.WriteFile(file, nil, 0644))
		_, err := paths.NewGuard(filesystem.NewOS(), file)
		assert.True(t, errors.IsErrorCode(err, errors.ErrInvalidInput))
	})
}

func TestGuardResolve(t *testing.T) {
	t.Run("accepts_plain_paths", func(t *testing.T) {
		guard, root := newGuard(t)

		got, err := guard.Resolve("demo_app/src/main.go")
		require.NoError(t, err)
		assert.Equal(t, filepath.Join(root, "demo_app", "src", "main.go"), got)

		require.NoError(t, os.MkdirAll(filepath.Join(root, "demo_app"), 0755))
		got, err = guard.Resolve("demo_app")
		require.NoError(t, err)
		assert.Equal(t, filepath.Join(root, "demo_app"), got)
	})

	t.Run("rejects_parent_and_absolute", func(t *testing.T) {
		guard, _ := newGuard(t)

		for _, rel := range []string{"../x", "a/../../x", "/etc/passwd", ""} {
			_, err := guard.Resolve(rel)
			require.Error(t, err, rel)
			assert.True(t, errors.IsErrorCode(err, errors.ErrUnsafePath), rel)
		}
	})

	t.Run("rejects_existing_symlink_component", func(t *testing.T) {
		guard, root := newGuard(t)
		outside := t.TempDir()
		require.NoError(t, os.Symlink(outside, filepath.Join(root, "escape")))

		_, err := guard.Resolve("escape/owned.txt")
		require.Error(t, err)
		assert.True(t, errors.IsErrorCode(err, errors.ErrSymlinkTraversal))

		_, statErr := os.Stat(filepath.Join(outside, "owned.txt"))
		assert.True(t, os.IsNotExist(statErr))
	})

	t.Run("rejects_symlink_inside_root_when_descending", func(t *testing.T) {
		guard, root := newGuard(t)
		require.NoError(t, os.Mkdir(filepath.Join(root, "real"), 0755))
		require.NoError(t, os.Symlink(filepath.Join(root, "real"), filepath.Join(root, "alias")))

		_, err := guard.Resolve("alias/file")
		assert.True(t, errors.IsErrorCode(err, errors.ErrSymlinkTraversal))
	})

	t.Run("rejects_final_symlink_escaping_root", func(t *testing.T) {
		guard, root := newGuard(t)
		target := filepath.Join(t.TempDir(), "target.txt")
		require.NoError(t, os.WriteFile(target, []byte("x"), 0644))
		require.NoError(t, os.Symlink(target, filepath.Join(root, "leaf.txt")))

		_, err := guard.Resolve("leaf.txt")
		require.Error(t, err)
		assert.True(t, errors.IsErrorCode(err, errors.ErrSymlinkTraversal))
	})

	t.Run("rejects_final_symlink_inside_root", func(t *testing.T) {
		guard, root := newGuard(t)
		require.NoError(t, os.WriteFile(filepath.Join(root, "real.txt"), []byte("original"), 0644))
		require.NoError(t, os.Symlink(filepath.Join(root, "real.txt"), filepath.Join(root, "link.txt")))

		_, err := guard.Resolve("link.txt")
		require.Error(t, err)
		assert.True(t, errors.IsErrorCode(err, errors.ErrSymlinkTraversal))

		_, err = guard.WriteFile("link.txt", []byte("clobbered"), 0644, 0755)
		require.Error(t, err)
		data, err := os.ReadFile(filepath.Join(root, "real.txt"))
		require.NoError(t, err)
		assert.Equal(t, "original", string(data))
	})

	t.Run("rejects_dangling_final_symlink", func(t *testing.T) {
		guard, root := newGuard(t)
		require.NoError(t, os.Symlink(filepath.Join(root, "nowhere"), filepath.Join(root, "dangling")))

		_, err := guard.Resolve("dangling")
		assert.True(t, errors.IsSafetyError(err))
	})
}

func TestGuardWriteFile(t *testing.T) {
	guard, root := newGuard(t)

	abs, err := guard.WriteFile("demo_app/nested/file.txt", []byte("hello"), 0640, 0755)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(root, "demo_app", "nested", "file.txt"), abs)

	data, err := os.ReadFile(abs)
	require.NoError(t, err)
	assert.Equal(t, "hello", string(data))

	info, err := os.Stat(abs)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0640), info.Mode().Perm()&^0022)

	outside := t.TempDir()
	require.NoError(t, os.Symlink(outside, filepath.Join(root, "demo_app", "link")))
	_, err = guard.WriteFile("demo_app/link/evil.txt", []byte("x"), 0644, 0755)
	require.Error(t, err)
	assert.True(t, errors.IsSafetyError(err))
}

func TestConfigFile(t *testing.T) {
	t.Setenv(paths.EnvConfigFile, "/tmp/custom.toml")
	assert.Equal(t, "/tmp/custom.toml", paths.ConfigFile())

	t.Setenv(paths.EnvConfigFile, "")
	assert.Equal(t, filepath.Join(paths.AppDirName, paths.ConfigFileName), filepath.Join(filepath.Base(filepath.Dir(paths.ConfigFile())), filepath.Base(paths.ConfigFile())))
}
