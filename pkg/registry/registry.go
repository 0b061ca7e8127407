package registry

import (
	"io/fs"
	"path"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"github.com/arthur-debert/stencil/pkg/copyfilter"
	"github.com/arthur-debert/stencil/pkg/errors"
	"github.com/arthur-debert/stencil/pkg/logging"
	"github.com/arthur-debert/stencil/pkg/paths"
	"github.com/arthur-debert/stencil/pkg/render"
	"github.com/arthur-debert/stencil/pkg/slug"
	"github.com/arthur-debert/stencil/pkg/types"
)

var projectSlugRef = regexp.MustCompile(`\b` + slug.ProjectSlugVar + `\b`)

// Options configures Build
type Options struct {
	FS           types.FS
	TemplateRoot string
	Bindings     types.Bindings
	Filter       *copyfilter.Filter
	Engine       *render.Engine

	// SkipDirs are directory names ignored anywhere in the tree
	SkipDirs []string

	// HooksDir is the root-level hooks directory name
	HooksDir string

	// ManifestNames are the root-level manifest file names
	ManifestNames []string
}

// Registry is the registered template tree of one run
type Registry struct {
	fs         types.FS
	projectSrc string
	projectDir string
	items      []types.TemplateItem
	dirs       []string
	sources    map[string]string
	arena      *render.Arena
}

type pending struct {
	name     string
	source   string
	inherits bool
}

// Build walks opts.TemplateRoot once and registers every template
func Build(opts Options) (*Registry, error) {
	logger := logging.GetLogger("registry")
	done := logging.LogOperationStart(logger, "build registry")
	defer done()

	engine := opts.Engine
	if engine == nil {
		engine = render.NewEngine()
	}

	projectSrc, err := FindProjectDir(opts)
	if err != nil {
		return nil, err
	}

	projectDir, err := renderSegment(engine, projectSrc, projectSrc, opts.Bindings)
	if err != nil {
		return nil, err
	}

	r := &Registry{
		fs:         opts.FS,
		projectSrc: projectSrc,
		projectDir: projectDir,
		sources:    make(map[string]string),
		arena:      engine.NewArena(),
	}

	skip := make(map[string]bool, len(opts.SkipDirs))
	for _, d := range opts.SkipDirs {
		skip[d] = true
	}

	var toRegister []pending
	seen := make(map[string]string)
	srcRoot := filepath.Join(opts.TemplateRoot, projectSrc)

	walkErr := opts.FS.WalkDir(srcRoot, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return errors.Wrapf(err, errors.ErrFileAccess, "cannot walk %s", p).WithDetail("path", p)
		}
		if p == srcRoot {
			return nil
		}

		rel, err := filepath.Rel(srcRoot, p)
		if err != nil {
			return errors.Wrapf(err, errors.ErrInternal, "cannot relativize %s", p)
		}
		rel = filepath.ToSlash(rel)

		if d.Type()&fs.ModeSymlink != 0 {
			logger.Warn().Str("path", rel).Msg("skipping symlink in template tree")
			return nil
		}
		if d.IsDir() && skip[d.Name()] {
			logger.Debug().Str("path", rel).Msg("skipping directory")
			return filepath.SkipDir
		}
		if !d.IsDir() && !d.Type().IsRegular() {
			logger.Warn().Str("path", rel).Msg("skipping special file in template tree")
			return nil
		}

		renderedRel, err := renderRel(engine, rel, opts.Bindings)
		if err != nil {
			return err
		}

		if d.IsDir() {
			r.dirs = append(r.dirs, renderedRel)
			return nil
		}

		info, err := d.Info()
		if err != nil {
			return errors.Wrapf(err, errors.ErrFileAccess, "cannot stat %s", p).WithDetail("path", p)
		}

		if prev, dup := seen[renderedRel]; dup {
			return errors.Newf(errors.ErrTemplateRegister, "%s and %s both render to %s", prev, rel, renderedRel).
				WithDetail("path", renderedRel)
		}
		seen[renderedRel] = rel

		item := types.TemplateItem{
			Name:      renderedRel,
			OutputRel: path.Join(projectDir, renderedRel),
			Source:    p,
			CopyRaw:   opts.Filter.Match(rel),
			Mode:      info.Mode().Perm(),
		}

		if !item.CopyRaw {
			data, err := opts.FS.ReadFile(p)
			if err != nil {
				return errors.Wrapf(err, errors.ErrFileAccess, "cannot read template %s", p).WithDetail("path", p)
			}
			src := string(data)
			toRegister = append(toRegister, pending{
				name:     item.Name,
				source:   src,
				inherits: render.HasInheritance(src),
			})
			r.sources[item.Name] = src
		}

		logger.Trace().
			Str("source", rel).
			Str("name", item.Name).
			Bool("copyRaw", item.CopyRaw).
			Msg("discovered template file")
		r.items = append(r.items, item)
		return nil
	})
	if walkErr != nil {
		return nil, walkErr
	}

	sort.SliceStable(toRegister, func(i, j int) bool {
		return !toRegister[i].inherits && toRegister[j].inherits
	})
	for _, t := range toRegister {
		if err := r.arena.Register(t.name, t.source); err != nil {
			return nil, err
		}
	}

	logger.Info().
		Str("projectDir", projectDir).
		Int("files", len(r.items)).
		Int("templates", len(toRegister)).
		Msg("registered template tree")

	return r, nil
}

// FindProjectDir returns the single top-level directory whose name is an
// expression referencing project_slug
func FindProjectDir(opts Options) (string, error) {
	logger := logging.GetLogger("registry")

	entries, err := opts.FS.ReadDir(opts.TemplateRoot)
	if err != nil {
		return "", errors.Wrapf(err, errors.ErrFileAccess, "cannot read template root %s", opts.TemplateRoot).
			WithDetail("path", opts.TemplateRoot)
	}

	var found []string
	for _, e := range entries {
		name := e.Name()
		switch {
		case isProjectDirName(name) && e.IsDir():
			found = append(found, name)
		case name == opts.HooksDir && e.IsDir():
			logger.Debug().Str("entry", name).Msg("hooks directory stays in the template")
		case contains(opts.ManifestNames, name):
			logger.Debug().Str("entry", name).Msg("manifest stays in the template")
		default:
			logger.Debug().Str("entry", name).Msg("ignoring entry outside the project directory")
		}
	}

	switch len(found) {
	case 0:
		return "", errors.Newf(errors.ErrProjectDir,
			"no project directory found: the template root needs one directory named like {{ .%s }}", slug.ProjectSlugVar).
			WithDetail("root", opts.TemplateRoot)
	case 1:
		return found[0], nil
	default:
		return "", errors.Newf(errors.ErrProjectDir, "multiple project directories found: %s", strings.Join(found, ", ")).
			WithDetails(map[string]interface{}{
				"root":       opts.TemplateRoot,
				"candidates": found,
			})
	}
}

func isProjectDirName(name string) bool {
	return strings.Contains(name, types.ExpressionDelimiter) &&
		strings.Contains(name, "}}") &&
		projectSlugRef.MatchString(name)
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

// renderRel renders every segment of a '/'-separated template path
func renderRel(engine *render.Engine, rel string, bindings types.Bindings) (string, error) {
	segs := strings.Split(rel, "/")
	out := make([]string, len(segs))
	for i, seg := range segs {
		rendered, err := renderSegment(engine, seg, rel, bindings)
		if err != nil {
			return "", err
		}
		out[i] = rendered
	}
	return strings.Join(out, "/"), nil
}

func renderSegment(engine *render.Engine, seg, rel string, bindings types.Bindings) (string, error) {
	rendered, err := engine.RenderString(seg, seg, bindings)
	if err != nil {
		return "", errors.Wrapf(err, errors.ErrRenderPath, "failed to render path segment %q", seg).
			WithDetails(map[string]interface{}{
				"segment": seg,
				"path":    rel,
			})
	}
	if err := paths.ValidateSegment(rendered); err != nil {
		return "", errors.Wrapf(err, errors.ErrUnsafeSegment, "unsafe rendered path segment %q", rendered).
			WithDetails(map[string]interface{}{
				"segment":  seg,
				"rendered": rendered,
				"path":     rel,
			})
	}
	return rendered, nil
}

// ProjectDir returns the rendered project directory name
func (r *Registry) ProjectDir() string {
	return r.projectDir
}

// ProjectSource returns the un-rendered project directory name
func (r *Registry) ProjectSource() string {
	return r.projectSrc
}

// Items returns the template files in walk order
func (r *Registry) Items() []types.TemplateItem {
	return append([]types.TemplateItem(nil), r.items...)
}

// Dirs returns the rendered directories relative to the project directory,
// parents before children
func (r *Registry) Dirs() []string {
	return append([]string(nil), r.dirs...)
}

// Arena returns the template arena
func (r *Registry) Arena() *render.Arena {
	return r.arena
}

// Render produces the output bytes of item
func (r *Registry) Render(item types.TemplateItem, bindings types.Bindings) ([]byte, error) {
	if item.CopyRaw {
		data, err := r.fs.ReadFile(item.Source)
		if err != nil {
			return nil, errors.Wrapf(err, errors.ErrFileAccess, "cannot read %s", item.Source).
				WithDetail("path", item.Source)
		}
		return data, nil
	}

	if src, ok := r.sources[item.Name]; ok && !strings.Contains(src, types.ExpressionDelimiter) {
		return []byte(src), nil
	}

	out, err := r.arena.Execute(item.Name, bindings)
	if err != nil {
		return nil, errors.Wrapf(err, errors.ErrRenderFile, "failed to render %s", item.OutputRel).
			WithDetails(map[string]interface{}{
				"file":   item.OutputRel,
				"source": item.Source,
			})
	}
	return []byte(out), nil
}
