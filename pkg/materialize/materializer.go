package materialize

import (
	"context"
	stderrors "errors"
	"path"
	"path/filepath"

	"github.com/rs/zerolog"

	"github.com/arthur-debert/stencil/pkg/collect"
	"github.com/arthur-debert/stencil/pkg/config"
	"github.com/arthur-debert/stencil/pkg/copyfilter"
	"github.com/arthur-debert/stencil/pkg/errors"
	"github.com/arthur-debert/stencil/pkg/filesystem"
	"github.com/arthur-debert/stencil/pkg/hooks"
	"github.com/arthur-debert/stencil/pkg/logging"
	"github.com/arthur-debert/stencil/pkg/manifest"
	"github.com/arthur-debert/stencil/pkg/paths"
	"github.com/arthur-debert/stencil/pkg/registry"
	"github.com/arthur-debert/stencil/pkg/render"
	"github.com/arthur-debert/stencil/pkg/resolver"
	"github.com/arthur-debert/stencil/pkg/slug"
	"github.com/arthur-debert/stencil/pkg/source"
	"github.com/arthur-debert/stencil/pkg/types"
)

// Options configures a run
type Options struct {
	// Source is a local template directory or a git URL
	Source string

	// Output is the directory the project directory is created in
	Output string

	// Overrides are name=value answers given up front. They are coerced to
	// the declared kind and never re-evaluated or asked for.
	Overrides map[string]string

	// Collector asks for the remaining variables; nil accepts the defaults
	Collector collect.Collector

	// Hooks runs the template hooks; nil uses the Lua scripts of the
	// template when hooks are enabled
	Hooks hooks.Runner

	Config *config.Config
	FS     types.FS

	// Runner executes git and svn; nil uses os/exec
	Runner source.CommandRunner
}

// Result describes a finished or aborted run
type Result struct {
	Stage Stage

	// OutputRoot is the output directory
	OutputRoot string

	// ProjectDir is the rendered project directory name
	ProjectDir string

	// Files lists the promoted files relative to OutputRoot
	Files []string

	// HookFiles lists the files written by hooks relative to OutputRoot
	HookFiles []string

	Warnings []string
	Bindings types.Bindings
	Stats    resolver.Stats
}

// Materializer renders one template into one output directory
type Materializer struct {
	opts   Options
	fs     types.FS
	cfg    *config.Config
	engine *render.Engine
	logger zerolog.Logger

	result   *Result
	cleanups []func() error
}

// run state shared between the stages
type run struct {
	root     string
	manifest *manifest.Manifest
	filter   *copyfilter.Filter
	hooks    hooks.Runner
	bindings types.Bindings
	staging  *paths.Guard
	registry *registry.Registry
	ledger   *ledger
}

// New creates a Materializer
func New(opts Options) *Materializer {
	fsys := opts.FS
	if fsys == nil {
		fsys = filesystem.NewOS()
	}
	cfg := opts.Config
	if cfg == nil {
		cfg = config.Default()
	}
	if opts.Collector == nil {
		opts.Collector = collect.Defaults{}
	}
	if opts.Runner == nil {
		opts.Runner = source.ExecRunner{}
	}

	return &Materializer{
		opts:   opts,
		fs:     fsys,
		cfg:    cfg,
		engine: render.NewEngine(),
		logger: logging.GetLogger("materialize"),
	}
}

// Run executes every stage. The returned Result is never nil; on failure its
// Stage is StageAborted and the error carries the failing stage in its
// "stage" detail.
func (m *Materializer) Run(ctx context.Context) (res *Result, err error) {
	m.result = &Result{Stage: StageInit, OutputRoot: m.opts.Output}
	m.cleanups = nil

	done := logging.LogOperationStart(m.logger, "materialize")
	defer done()
	defer m.cleanup()
	defer func() {
		if err != nil {
			err = annotate(err, m.result.Stage)
			m.logger.Error().Err(err).Str("stage", m.result.Stage.String()).Msg("run aborted")
			m.result.Stage = StageAborted
		}
	}()

	m.logger.Info().
		Str("source", m.opts.Source).
		Str("output", m.opts.Output).
		Msg("Starting materialization")

	if m.opts.Output == "" {
		return m.result, errors.New(errors.ErrInvalidInput, "output directory cannot be empty")
	}

	r := &run{ledger: newLedger()}

	// Step 1: acquire the template and read its manifest
	if err := m.init(ctx, r); err != nil {
		return m.result, err
	}

	// Step 2: settle the variables
	m.enter(StageResolveVariables)
	if err := m.resolveVariables(ctx, r); err != nil {
		return m.result, err
	}

	// Step 3: create staging and register templates
	m.enter(StageRegisterTemplates)
	if err := m.registerTemplates(r); err != nil {
		return m.result, err
	}

	// Step 4: render into staging with the generation hooks around it
	m.enter(StageRender)
	if err := m.stageRender(ctx, r); err != nil {
		return m.result, err
	}

	// Step 5: copy staging into the output root
	m.enter(StagePromote)
	files, err := promote(m.fs, r.staging.Root(), m.opts.Output, m.cfg.Permissions.Dir)
	m.result.Files = files
	if err != nil {
		return m.result, err
	}

	m.enter(StageDone)
	m.logger.Info().
		Str("output", m.opts.Output).
		Str("project", m.result.ProjectDir).
		Int("files", len(files)).
		Int("warnings", len(m.result.Warnings)).
		Msg("Materialization complete")
	return m.result, nil
}

func (m *Materializer) enter(s Stage) {
	m.logger.Debug().Str("stage", s.String()).Msg("entering stage")
	m.result.Stage = s
}

func (m *Materializer) warn(msg string) {
	m.logger.Warn().Msg(msg)
	m.result.Warnings = append(m.result.Warnings, msg)
}

func (m *Materializer) onCleanup(fn func() error) {
	m.cleanups = append(m.cleanups, fn)
}

// cleanup releases temporary resources in reverse acquisition order
func (m *Materializer) cleanup() {
	for i := len(m.cleanups) - 1; i >= 0; i-- {
		if err := m.cleanups[i](); err != nil {
			m.logger.Warn().Err(err).Msg("failed to remove temporary directory")
		}
	}
	m.cleanups = nil
}

func (m *Materializer) init(ctx context.Context, r *run) error {
	fetcher := &source.Fetcher{FS: m.fs, Runner: m.opts.Runner, Depth: m.cfg.VCS.Depth}
	tmpl, err := fetcher.Fetch(ctx, m.opts.Source)
	if err != nil {
		return err
	}
	m.onCleanup(tmpl.Close)

	syncer := &source.Syncer{FS: m.fs, Runner: m.opts.Runner}
	for _, w := range syncer.Sync(ctx, tmpl.Root, source.SyncOptions{
		Submodules: m.cfg.VCS.Submodules,
		SVN:        m.cfg.VCS.SVN,
	}) {
		m.result.Warnings = append(m.result.Warnings, w)
	}

	root, cleanup, err := source.CopyToTemp(m.fs, tmpl.Root, m.cfg.Template.Skip)
	if err != nil {
		return err
	}
	m.onCleanup(cleanup)
	r.root = root

	r.manifest, err = manifest.Load(m.fs, root, m.cfg.Manifest.Files)
	if err != nil {
		return err
	}
	r.filter, err = r.manifest.CompileCopyFilter(m.cfg.Render.Copy)
	if err != nil {
		return err
	}

	switch {
	case m.opts.Hooks != nil:
		r.hooks = m.opts.Hooks
	case m.cfg.Hooks.Enabled:
		r.hooks = hooks.NewLuaRunner(m.fs, filepath.Join(root, m.cfg.Hooks.Dir), m.cfg.Hooks.Timeout)
	default:
		r.hooks = hooks.Noop
	}
	return nil
}

func (m *Materializer) resolveVariables(ctx context.Context, r *run) error {
	specs := r.manifest.Variables

	overrides, err := collect.CoerceAll(specs, m.opts.Overrides)
	if err != nil {
		return err
	}

	bindings := r.manifest.LiteralDefaults()
	bindings.Merge(overrides)
	pinned := overrides.Names()

	pre, err := runHook(ctx, r.hooks, bindings.Snapshot(), hooks.Context{Stage: hooks.PrePrompt})
	if err != nil {
		return err
	}
	if len(pre.Files) > 0 {
		m.warn("pre_prompt hook returned files; they are ignored because nothing is staged yet")
	}
	if len(pre.Vars) > 0 {
		bindings.Merge(pre.Vars)
		pinned = append(pinned, pre.Vars.Names()...)
	}

	bindings, stats := resolver.Resolve(specs, bindings, m.engine, resolver.WithPinned(pinned...))

	isPinned := make(map[string]bool, len(pinned))
	for _, name := range pinned {
		isPinned[name] = true
	}
	var ask []types.VariableSpec
	for _, spec := range specs {
		if !isPinned[spec.Name] {
			ask = append(ask, spec)
		}
	}

	// One question at a time so that each offered default reflects the
	// answers given so far.
	for _, spec := range ask {
		answers, err := m.opts.Collector.Collect(ctx, []types.VariableSpec{spec}, bindings.Snapshot())
		if err != nil {
			return err
		}
		if len(answers) == 0 {
			continue
		}
		bindings.Merge(answers)
		pinned = append(pinned, answers.Names()...)
		bindings, stats = resolver.Resolve(specs, bindings, m.engine, resolver.WithPinned(pinned...))
	}

	if !stats.Converged {
		m.warn("variable defaults did not settle; some may reference each other in a cycle")
	}

	projectSlug, err := slug.EnsureProjectSlug(bindings)
	if err != nil {
		return err
	}

	r.bindings = bindings
	m.result.Bindings = bindings.Snapshot()
	m.result.Stats = stats

	m.logger.Debug().
		Str("projectSlug", projectSlug).
		Int("variables", len(bindings)).
		Int("passes", stats.Passes).
		Msg("variables resolved")
	return nil
}

func (m *Materializer) registerTemplates(r *run) error {
	dir, err := m.fs.MkdirTemp("", "stencil-staging-")
	if err != nil {
		return errors.Wrap(err, errors.ErrStaging, "failed to create staging directory")
	}
	m.onCleanup(func() error { return m.fs.RemoveAll(dir) })

	r.staging, err = paths.NewGuard(m.fs, dir)
	if err != nil {
		return errors.Wrap(err, errors.ErrStaging, "failed to open staging directory")
	}

	r.registry, err = registry.Build(registry.Options{
		FS:            m.fs,
		TemplateRoot:  r.root,
		Bindings:      r.bindings.Snapshot(),
		Filter:        r.filter,
		Engine:        m.engine,
		SkipDirs:      m.cfg.Template.Skip,
		HooksDir:      m.cfg.Hooks.Dir,
		ManifestNames: m.cfg.Manifest.Files,
	})
	if err != nil {
		return err
	}
	m.result.ProjectDir = r.registry.ProjectDir()
	return nil
}

func (m *Materializer) stageRender(ctx context.Context, r *run) error {
	projectDir := r.registry.ProjectDir()
	dirPerm := m.cfg.Permissions.Dir
	snapshot := r.bindings.Snapshot()
	hctx := hooks.Context{Output: r.staging.Root()}

	if _, err := r.staging.MkdirAll(projectDir, dirPerm); err != nil {
		return err
	}

	hctx.Stage = hooks.PreGenProject
	if err := m.runGenerationHook(ctx, r, hctx, snapshot, originPreGen); err != nil {
		return err
	}

	for _, d := range r.registry.Dirs() {
		if _, err := r.staging.MkdirAll(path.Join(projectDir, d), dirPerm); err != nil {
			return err
		}
	}

	for _, item := range r.registry.Items() {
		data, err := r.registry.Render(item, snapshot)
		if err != nil {
			return err
		}
		if _, err := r.staging.WriteFile(item.OutputRel, data, item.Mode, dirPerm); err != nil {
			return err
		}
		if w := r.ledger.record(item.OutputRel, originRender); w != "" {
			m.warn(w)
		}
	}

	hctx.Stage = hooks.PostGenProject
	if err := m.runGenerationHook(ctx, r, hctx, snapshot, originPostGen); err != nil {
		return err
	}

	m.result.HookFiles = r.ledger.paths(originPreGen, originPostGen)
	return nil
}

// runGenerationHook runs a pre/post generation hook and stages its files
// under the project directory
func (m *Materializer) runGenerationHook(ctx context.Context, r *run, hctx hooks.Context, bindings types.Bindings, o origin) error {
	res, err := runHook(ctx, r.hooks, bindings, hctx)
	if err != nil {
		return err
	}
	if len(res.Vars) > 0 {
		m.logger.Debug().
			Str("stage", string(hctx.Stage)).
			Strs("vars", res.Vars.Names()).
			Msg("ignoring variables returned after resolution")
	}

	for _, f := range res.Files {
		rel, err := f.Target(r.registry.ProjectDir())
		if err != nil {
			return err
		}
		if _, err := r.staging.WriteFile(rel, f.Content, m.cfg.Permissions.File, m.cfg.Permissions.Dir); err != nil {
			return err
		}
		if w := r.ledger.record(rel, o); w != "" {
			m.warn(w)
		}
	}
	return nil
}

func runHook(ctx context.Context, runner hooks.Runner, bindings types.Bindings, hctx hooks.Context) (*hooks.Result, error) {
	res, err := runner.Run(ctx, bindings, hctx)
	if err != nil {
		return nil, err
	}
	if res == nil {
		res = &hooks.Result{}
	}
	return res, nil
}

// annotate attaches the failing stage to err
func annotate(err error, s Stage) error {
	var se *errors.StencilError
	if stderrors.As(err, &se) {
		se.WithDetail("stage", s.String())
		return err
	}
	return errors.Wrap(err, errors.ErrInternal, "materialization failed").WithDetail("stage", s.String())
}
