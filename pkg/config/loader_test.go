package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arthur-debert/stencil/pkg/errors"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	assert.Equal(t, []string{"stencil.json", "stencil.yaml", "stencil.yml", "stencil.toml"}, cfg.Manifest.Files)
	assert.Equal(t, []string{".git", ".svn", ".hg"}, cfg.Template.Skip)
	assert.True(t, cfg.Hooks.Enabled)
	assert.Equal(t, "hooks", cfg.Hooks.Dir)
	assert.Equal(t, 30*time.Second, cfg.Hooks.Timeout)
	assert.Empty(t, cfg.Render.Copy)
	assert.True(t, cfg.VCS.Submodules)
	assert.Equal(t, 1, cfg.VCS.Depth)
	assert.Equal(t, os.FileMode(0755), cfg.Permissions.Dir)
	assert.Equal(t, os.FileMode(0644), cfg.Permissions.File)
}

func TestLoadFromLayers(t *testing.T) {
	t.Run("missing_user_file_keeps_defaults", func(t *testing.T) {
		cfg, err := LoadFrom(filepath.Join(t.TempDir(), "absent.toml"))
		require.NoError(t, err)
		assert.Equal(t, Default(), cfg)
	})

	t.Run("user_file_overrides_defaults", func(t *testing.T) {
		userFile := filepath.Join(t.TempDir(), "config.toml")
		require.NoError(t, os.WriteFile(userFile, []byte(`
[hooks]
timeout = "5s"

[render]
copy = ["*.png", "assets/**"]

[permissions]
dir = "0750"
`), 0644))

		cfg, err := LoadFrom(userFile)
		require.NoError(t, err)
		assert.Equal(t, 5*time.Second, cfg.Hooks.Timeout)
		assert.True(t, cfg.Hooks.Enabled, "unset keys keep their default")
		assert.Equal(t, []string{"*.png", "assets/**"}, cfg.Render.Copy)
		assert.Equal(t, os.FileMode(0750), cfg.Permissions.Dir)
	})

	t.Run("env_overrides_user_file", func(t *testing.T) {
		userFile := filepath.Join(t.TempDir(), "config.toml")
		require.NoError(t, os.WriteFile(userFile, []byte("[hooks]\nenabled = true\n[vcs]\ndepth = 3\n"), 0644))

		t.Setenv("STENCIL_HOOKS_ENABLED", "false")
		t.Setenv("STENCIL_RENDER_COPY", "*.bin,*.jar")

		cfg, err := LoadFrom(userFile)
		require.NoError(t, err)
		assert.False(t, cfg.Hooks.Enabled)
		assert.Equal(t, 3, cfg.VCS.Depth)
		assert.Equal(t, []string{"*.bin", "*.jar"}, cfg.Render.Copy)
	})

	t.Run("yaml_user_file", func(t *testing.T) {
		userFile := filepath.Join(t.TempDir(), "config.yaml")
		require.NoError(t, os.WriteFile(userFile, []byte(`
hooks:
  enabled: false
template:
  skip: [.git, node_modules]
`), 0644))

		cfg, err := LoadFrom(userFile)
		require.NoError(t, err)
		assert.False(t, cfg.Hooks.Enabled)
		assert.Equal(t, []string{".git", "node_modules"}, cfg.Template.Skip)
		assert.Equal(t, "hooks", cfg.Hooks.Dir)
	})

	t.Run("malformed_user_file", func(t *testing.T) {
		userFile := filepath.Join(t.TempDir(), "config.toml")
		require.NoError(t, os.WriteFile(userFile, []byte("[hooks\nenabled = "), 0644))

		_, err := LoadFrom(userFile)
		require.Error(t, err)
		assert.True(t, errors.IsErrorCode(err, errors.ErrConfigLoad))
	})
}

func TestFromMap(t *testing.T) {
	cfg, err := FromMap(map[string]interface{}{
		"hooks.enabled":    false,
		"manifest.files":   []string{"custom.json"},
		"permissions.file": "0600",
	})
	require.NoError(t, err)
	assert.False(t, cfg.Hooks.Enabled)
	assert.Equal(t, []string{"custom.json"}, cfg.Manifest.Files)
	assert.Equal(t, os.FileMode(0600), cfg.Permissions.File)

	_, err = FromMap(map[string]interface{}{"permissions.file": "rwx"})
	assert.True(t, errors.IsErrorCode(err, errors.ErrConfigLoad))
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"empty_manifest_files", func(c *Config) { c.Manifest.Files = nil }},
		{"empty_hooks_dir", func(c *Config) { c.Hooks.Dir = "" }},
		{"zero_timeout", func(c *Config) { c.Hooks.Timeout = 0 }},
		{"negative_depth", func(c *Config) { c.VCS.Depth = -1 }},
		{"untraversable_dirs", func(c *Config) { c.Permissions.Dir = 0644 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.True(t, errors.IsErrorCode(err, errors.ErrConfigLoad))
		})
	}

	assert.NoError(t, Default().Validate())
}
