// Package hooks runs template extension hooks.
//
// A hook is a pure transform: it receives the current bindings and a stage
// context and returns optional updated bindings plus files to write. It never
// touches the filesystem itself; the caller validates every returned path
// before writing.
package hooks

import (
	"context"
	"path"
	"path/filepath"

	"github.com/arthur-debert/stencil/pkg/errors"
	"github.com/arthur-debert/stencil/pkg/paths"
	"github.com/arthur-debert/stencil/pkg/types"
)

// Stage is a point of the materialization lifecycle where hooks run
type Stage string

const (
	// PrePrompt runs before variables are collected
	PrePrompt Stage = "pre_prompt"

	// PreGenProject runs before templates are rendered
	PreGenProject Stage = "pre_gen_project"

	// PostGenProject runs after templates are rendered, before promotion
	PostGenProject Stage = "post_gen_project"
)

// Stages lists every stage in lifecycle order
var Stages = []Stage{PrePrompt, PreGenProject, PostGenProject}

// Context is what a hook learns about the run besides the bindings
type Context struct {
	Stage Stage

	// Output is the staging directory the project is rendered into
	Output string
}

// File is a file a hook asks to write, relative to the project directory
type File struct {
	Path    string
	Content []byte
}

// Target validates the hook path and returns it relative to the output root
func (f File) Target(projectDir string) (string, error) {
	if err := paths.ValidateRelPath(f.Path); err != nil {
		return "", errors.Wrapf(err, errors.ErrUnsafePath, "hook returned unsafe path %q", f.Path).
			WithDetail("path", f.Path)
	}
	return path.Join(projectDir, filepath.ToSlash(f.Path)), nil
}

// Result is the outcome of one hook invocation
type Result struct {
	// Vars holds updated bindings, nil when the hook changed none
	Vars  types.Bindings
	Files []File
}

// Runner executes the hook of a stage
type Runner interface {
	Run(ctx context.Context, bindings types.Bindings, hctx Context) (*Result, error)
}

// RunnerFunc adapts a function to the Runner interface
type RunnerFunc func(ctx context.Context, bindings types.Bindings, hctx Context) (*Result, error)

// Run implements Runner
func (f RunnerFunc) Run(ctx context.Context, bindings types.Bindings, hctx Context) (*Result, error) {
	return f(ctx, bindings, hctx)
}

// Noop is a Runner without hooks
var Noop Runner = RunnerFunc(func(context.Context, types.Bindings, Context) (*Result, error) {
	return &Result{}, nil
})
