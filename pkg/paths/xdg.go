package paths

import (
	"os"
	"path/filepath"

	"github.com/adrg/xdg"

	"github.com/arthur-debert/stencil/pkg/logging"
)

const (
	// AppDirName is the directory stencil uses under each XDG base directory
	AppDirName = "stencil"

	// ConfigFileName is the name of the user configuration file
	ConfigFileName = "config.toml"

	// EnvConfigFile overrides the user configuration file location
	EnvConfigFile = "STENCIL_CONFIG"
)

// ConfigFile returns the user configuration file path.
// It honours STENCIL_CONFIG, otherwise $XDG_CONFIG_HOME/stencil/config.toml.
func ConfigFile() string {
	if p := os.Getenv(EnvConfigFile); p != "" {
		return p
	}
	return filepath.Join(xdg.ConfigHome, AppDirName, ConfigFileName)
}

// LogFile returns the log file path
func LogFile() string {
	return logging.LogFilePath()
}
