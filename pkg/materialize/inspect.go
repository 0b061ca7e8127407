package materialize

import (
	"context"
	"os"
	"path/filepath"

	"github.com/arthur-debert/stencil/pkg/errors"
	"github.com/arthur-debert/stencil/pkg/hooks"
	"github.com/arthur-debert/stencil/pkg/manifest"
	"github.com/arthur-debert/stencil/pkg/registry"
	"github.com/arthur-debert/stencil/pkg/source"
)

// readmeNames are looked up at the template root, in order
var readmeNames = []string{"README.md", "readme.md", "README"}

// Inspection summarizes a template without rendering it
type Inspection struct {
	Source   string
	Manifest *manifest.Manifest

	// ProjectDir is the un-rendered project directory name
	ProjectDir string

	// Hooks lists the stages the template has a script for
	Hooks []hooks.Stage

	Readme string
}

// Inspect acquires the template and reads its manifest, project directory,
// hooks and README. Nothing is rendered or written.
func (m *Materializer) Inspect(ctx context.Context) (*Inspection, error) {
	fetcher := &source.Fetcher{FS: m.fs, Runner: m.opts.Runner, Depth: m.cfg.VCS.Depth}
	tmpl, err := fetcher.Fetch(ctx, m.opts.Source)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err := tmpl.Close(); err != nil {
			m.logger.Warn().Err(err).Msg("failed to remove temporary directory")
		}
	}()

	mf, err := manifest.Load(m.fs, tmpl.Root, m.cfg.Manifest.Files)
	if err != nil {
		return nil, err
	}
	if _, err := mf.CompileCopyFilter(m.cfg.Render.Copy); err != nil {
		return nil, err
	}

	projectDir, err := registry.FindProjectDir(registry.Options{
		FS:            m.fs,
		TemplateRoot:  tmpl.Root,
		HooksDir:      m.cfg.Hooks.Dir,
		ManifestNames: m.cfg.Manifest.Files,
	})
	if err != nil {
		return nil, err
	}

	info := &Inspection{Source: m.opts.Source, Manifest: mf, ProjectDir: projectDir}

	runner := hooks.NewLuaRunner(m.fs, filepath.Join(tmpl.Root, m.cfg.Hooks.Dir), m.cfg.Hooks.Timeout)
	for _, stage := range hooks.Stages {
		if _, err := m.fs.Stat(runner.ScriptPath(stage)); err == nil {
			info.Hooks = append(info.Hooks, stage)
		}
	}

	for _, name := range readmeNames {
		data, err := m.fs.ReadFile(filepath.Join(tmpl.Root, name))
		if err == nil {
			info.Readme = string(data)
			break
		}
		if !os.IsNotExist(err) {
			return nil, errors.Wrapf(err, errors.ErrFileAccess, "cannot read %s", name).WithDetail("path", name)
		}
	}

	return info, nil
}
