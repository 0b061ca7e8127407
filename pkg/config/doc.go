// Package config loads stencil's own settings.
//
// Values are layered, later layers winning:
//
//  1. embedded/defaults.toml, compiled into the binary
//  2. the user file: $STENCIL_CONFIG, else $XDG_CONFIG_HOME/stencil/config.toml
//  3. STENCIL_* environment variables (STENCIL_HOOKS_ENABLED=false sets hooks.enabled)
//
// Lists in environment variables are comma separated and durations use Go
// syntax ("45s"). Permission modes are octal strings ("0750").
package config
