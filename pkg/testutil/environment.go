package testutil

import (
	"path/filepath"
	"testing"
)

// Environment isolates the process-wide state a stencil run touches
type Environment struct {
	// Scratch is the TMPDIR of the test; runs must leave it empty
	Scratch string

	// State holds the log file and is where ConfigFile points
	State string

	t *testing.T
}

// NewEnvironment points TMPDIR, STENCIL_LOG_FILE and STENCIL_CONFIG at
// per-test directories. The config file does not exist unless WriteConfig
// is called.
func NewEnvironment(t *testing.T) *Environment {
	t.Helper()
	env := &Environment{
		Scratch: t.TempDir(),
		State:   t.TempDir(),
		t:       t,
	}
	t.Setenv("TMPDIR", env.Scratch)
	t.Setenv("STENCIL_LOG_FILE", filepath.Join(env.State, "stencil.log"))
	t.Setenv("STENCIL_CONFIG", env.ConfigFile())
	return env
}

// ConfigFile is the user configuration path of the environment
func (env *Environment) ConfigFile() string {
	return filepath.Join(env.State, "config.toml")
}

// WriteConfig writes the user configuration file
func (env *Environment) WriteConfig(content string) {
	env.t.Helper()
	writeFile(env.t, env.ConfigFile(), []byte(content))
}

// AssertNoTemporaries checks that every temporary directory was removed
func (env *Environment) AssertNoTemporaries() {
	env.t.Helper()
	AssertEmptyDir(env.t, env.Scratch, "temporary directories should be removed")
}
