package config

import (
	"io/fs"
	"time"

	"github.com/arthur-debert/stencil/pkg/errors"
)

// Config is the complete tool configuration
type Config struct {
	Manifest    Manifest    `koanf:"manifest"`
	Template    Template    `koanf:"template"`
	Hooks       Hooks       `koanf:"hooks"`
	Render      Render      `koanf:"render"`
	VCS         VCS         `koanf:"vcs"`
	Permissions Permissions `koanf:"permissions"`
}

// Manifest lists the manifest file names looked up at the template root, in order
type Manifest struct {
	Files []string `koanf:"files"`
}

// Template controls template discovery
type Template struct {
	// Skip names directories ignored anywhere in the template tree
	Skip []string `koanf:"skip"`
}

// Hooks controls hook execution
type Hooks struct {
	Enabled bool          `koanf:"enabled"`
	Dir     string        `koanf:"dir"`
	Timeout time.Duration `koanf:"timeout"`
}

// Render holds rendering options
type Render struct {
	// Copy holds copy-without-render patterns added to every manifest's own
	Copy []string `koanf:"copy"`
}

// VCS controls the best-effort refresh of version-controlled templates
type VCS struct {
	Submodules bool `koanf:"submodules"`
	SVN        bool `koanf:"svn"`
	Depth      int  `koanf:"depth"`
}

// Permissions are the modes used for directories stencil creates and for
// files that have no source file to copy bits from
type Permissions struct {
	Dir  fs.FileMode `koanf:"dir"`
	File fs.FileMode `koanf:"file"`
}

// Validate checks values that cannot be expressed by the types alone
func (c *Config) Validate() error {
	if len(c.Manifest.Files) == 0 {
		return errors.New(errors.ErrConfigLoad, "manifest.files cannot be empty")
	}
	if c.Hooks.Enabled && c.Hooks.Dir == "" {
		return errors.New(errors.ErrConfigLoad, "hooks.dir cannot be empty when hooks are enabled")
	}
	if c.Hooks.Timeout <= 0 {
		return errors.Newf(errors.ErrConfigLoad, "hooks.timeout must be positive, got %s", c.Hooks.Timeout)
	}
	if c.VCS.Depth < 0 {
		return errors.Newf(errors.ErrConfigLoad, "vcs.depth cannot be negative, got %d", c.VCS.Depth)
	}
	if c.Permissions.Dir&0o700 != 0o700 {
		return errors.Newf(errors.ErrConfigLoad, "permissions.dir %#o must let the owner traverse directories", c.Permissions.Dir)
	}
	return nil
}
