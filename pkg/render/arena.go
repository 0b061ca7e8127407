package render

import (
	"bytes"
	"regexp"
	"sort"
	"strconv"
	"text/template"

	"github.com/arthur-debert/stencil/pkg/errors"
	"github.com/arthur-debert/stencil/pkg/logging"
	"github.com/arthur-debert/stencil/pkg/types"
)

const arenaRootName = "__stencil_root__"

var (
	defineAction = regexp.MustCompile(`\{\{-?\s*define\s`)
	definedName  = regexp.MustCompile("\\{\\{-?\\s*(?:define|block)\\s+(\"(?:[^\"\\\\]|\\\\.)*\"|`[^`]*`)")
)

// HasInheritance reports whether src defines named templates, either to
// override blocks of another template or to share partials
func HasInheritance(src string) bool {
	return defineAction.MatchString(src)
}

// definedNames lists the template names src declares with define or block
func definedNames(src string) []string {
	var names []string
	for _, m := range definedName.FindAllStringSubmatch(src, -1) {
		if name, err := strconv.Unquote(m[1]); err == nil {
			names = append(names, name)
		}
	}
	return names
}

// Arena owns the templates of one run, indexed by registered name.
//
// Base templates and shared partials live in the root namespace. A template
// that redefines a name already in the root namespace is derived: it gets a
// clone of the root namespace, so its overrides stay local to it. Partials
// registered after a derived template are added to its namespace too. Every
// registration must happen before the first Execute.
type Arena struct {
	root       *template.Template
	derived    map[string]*template.Template
	sources    map[string]string
	registered map[string]bool
	sealed     bool
}

func newArena(root *template.Template) *Arena {
	return &Arena{
		root:       root,
		derived:    make(map[string]*template.Template),
		sources:    make(map[string]string),
		registered: make(map[string]bool),
	}
}

// overrides reports whether src redefines a template of the root namespace
func (a *Arena) overrides(src string) bool {
	for _, n := range definedNames(src) {
		if a.root.Lookup(n) != nil {
			return true
		}
	}
	return false
}

// Register parses src under name. Derived templates must be registered after
// the bases they refer to.
func (a *Arena) Register(name, src string) error {
	logger := logging.GetLogger("render.arena")

	if a.sealed {
		return errors.Newf(errors.ErrTemplateRegister, "cannot register %q after rendering started", name).
			WithDetail("template", name)
	}
	if a.Has(name) {
		return errors.Newf(errors.ErrTemplateRegister, "template %q registered twice", name).
			WithDetail("template", name)
	}

	if !HasInheritance(src) || !a.overrides(src) {
		if _, err := a.root.New(name).Parse(src); err != nil {
			return errors.Wrapf(err, errors.ErrTemplateRegister, "failed to parse template %q", name).
				WithDetail("template", name)
		}
		if err := a.shareWithDerived(name, src); err != nil {
			return err
		}
		a.registered[name] = true
		logger.Trace().Str("template", name).Msg("registered shared template")
		return nil
	}

	ns, err := a.root.Clone()
	if err != nil {
		return errors.Wrapf(err, errors.ErrTemplateRegister, "failed to clone namespace for %q", name).
			WithDetail("template", name)
	}
	ns = ns.Option(missingKeyOption)
	if _, err := ns.New(name).Parse(src); err != nil {
		return errors.Wrapf(err, errors.ErrTemplateRegister, "failed to parse template %q", name).
			WithDetail("template", name)
	}

	a.derived[name] = ns
	a.sources[name] = src
	a.registered[name] = true
	logger.Trace().Str("template", name).Msg("registered derived template")
	return nil
}

// shareWithDerived adds a root template to every derived namespace, then
// re-parses the derived template so its own definitions win
func (a *Arena) shareWithDerived(name, src string) error {
	for dname, ns := range a.derived {
		if _, err := ns.New(name).Parse(src); err != nil {
			return errors.Wrapf(err, errors.ErrTemplateRegister, "failed to share %q with %q", name, dname).
				WithDetail("template", name)
		}
		if _, err := ns.New(dname).Parse(a.sources[dname]); err != nil {
			return errors.Wrapf(err, errors.ErrTemplateRegister, "failed to parse template %q", dname).
				WithDetail("template", dname)
		}
	}
	return nil
}

// Has reports whether name is registered
func (a *Arena) Has(name string) bool {
	return a.registered[name]
}

// Names returns the registered names in sorted order
func (a *Arena) Names() []string {
	out := make([]string, 0, len(a.registered))
	for n := range a.registered {
		out = append(out, n)
	}
	sort.Strings(out)
	return out
}

// Execute renders the named template against data
func (a *Arena) Execute(name string, data types.Bindings) (string, error) {
	a.sealed = true

	ns := a.root
	if d, ok := a.derived[name]; ok {
		ns = d
	} else if !a.Has(name) {
		return "", errors.Newf(errors.ErrNotFound, "template %q is not registered", name).
			WithDetail("template", name)
	}

	var buf bytes.Buffer
	if err := ns.ExecuteTemplate(&buf, name, map[string]any(data)); err != nil {
		return "", errors.Wrapf(err, errors.ErrRenderFile, "failed to render %q", name).
			WithDetail("template", name)
	}
	return buf.String(), nil
}
