package source

import (
	"context"
	"os/exec"

	"github.com/arthur-debert/stencil/pkg/logging"
)

// CommandRunner executes external programs
type CommandRunner interface {
	Run(ctx context.Context, dir, name string, args ...string) ([]byte, error)
}

// ExecRunner runs programs with os/exec
type ExecRunner struct{}

// Run implements CommandRunner and returns the combined output
func (ExecRunner) Run(ctx context.Context, dir, name string, args ...string) ([]byte, error) {
	logging.LogCommand(name, args)

	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Dir = dir
	return cmd.CombinedOutput()
}

// Available reports whether name can be found on PATH
func Available(name string) bool {
	_, err := exec.LookPath(name)
	return err == nil
}
