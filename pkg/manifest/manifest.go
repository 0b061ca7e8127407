// Package manifest reads the template manifest: the ordered variable
// declarations and copy-without-render patterns stored at a template root.
//
// JSON (comments and trailing commas allowed), YAML and TOML are supported.
// In JSON and YAML every top-level key is a variable, except reserved keys
// starting with '_'. The value's type decides the variable's kind:
//
//	{
//	  "project_name": "Demo",                        // string
//	  "use_docker": false,                           // boolean
//	  "port": 8080,                                  // integer
//	  "license": ["MIT", "BSD-3"],                   // enumeration, default first
//	  "runner": {"__prompt__": "Test runner?",       // enumeration with labels
//	             "pytest": "pytest (recommended)",
//	             "unittest": "stdlib unittest"},
//	  "_copy_without_render": ["static/**", "*.png"]
//	}
//
// Declaration order is preserved in every format.
package manifest

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/arthur-debert/stencil/pkg/copyfilter"
	"github.com/arthur-debert/stencil/pkg/errors"
	"github.com/arthur-debert/stencil/pkg/logging"
	"github.com/arthur-debert/stencil/pkg/types"
)

const (
	// CopyWithoutRenderKey lists copy-without-render patterns in JSON and YAML manifests
	CopyWithoutRenderKey = "_copy_without_render"

	// PromptKey holds the question text inside a dictionary of choices
	PromptKey = "__prompt__"

	reservedPrefix = "_"
)

// Manifest is a parsed template manifest
type Manifest struct {
	// Path is the file the manifest was read from, empty when the template has none
	Path string

	Variables         []types.VariableSpec
	CopyWithoutRender []string
}

// Load reads the first existing file of names in dir.
// A template without a manifest yields an empty Manifest.
func Load(fsys types.FS, dir string, names []string) (*Manifest, error) {
	logger := logging.GetLogger("manifest")

	for _, name := range names {
		path := filepath.Join(dir, name)
		info, err := fsys.Stat(path)
		if err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return nil, errors.Wrapf(err, errors.ErrFileAccess, "cannot stat manifest %s", path).
				WithDetail("path", path)
		}
		if !info.Mode().IsRegular() {
			continue
		}

		data, err := fsys.ReadFile(path)
		if err != nil {
			return nil, errors.Wrapf(err, errors.ErrFileAccess, "cannot read manifest %s", path).
				WithDetail("path", path)
		}

		m, err := Parse(name, data)
		if err != nil {
			return nil, err
		}
		m.Path = path

		logger.Debug().
			Str("path", path).
			Int("variables", len(m.Variables)).
			Int("copyPatterns", len(m.CopyWithoutRender)).
			Msg("loaded manifest")
		return m, nil
	}

	logger.Debug().Str("dir", dir).Strs("names", names).Msg("no manifest found")
	return &Manifest{}, nil
}

// Parse decodes a manifest, choosing the format from name's extension
func Parse(name string, data []byte) (*Manifest, error) {
	var (
		m   *Manifest
		err error
	)

	switch strings.ToLower(filepath.Ext(name)) {
	case ".json", ".jsonc":
		m, err = parseJSON(data)
	case ".yaml", ".yml":
		m, err = parseYAML(data)
	case ".toml":
		m, err = parseTOML(data)
	default:
		return nil, errors.Newf(errors.ErrManifestParse, "unsupported manifest format: %s", name).
			WithDetail("path", name)
	}
	if err != nil {
		if errors.GetErrorCode(err) == errors.ErrUnknown {
			return nil, errors.Wrapf(err, errors.ErrManifestParse, "failed to parse manifest %s", name).
				WithDetail("path", name)
		}
		return nil, err
	}

	if err := m.validate(); err != nil {
		return nil, err
	}
	return m, nil
}

// Spec returns the variable declared under name
func (m *Manifest) Spec(name string) (types.VariableSpec, bool) {
	for _, v := range m.Variables {
		if v.Name == name {
			return v, true
		}
	}
	return types.VariableSpec{}, false
}

// Names returns the variable names in declaration order
func (m *Manifest) Names() []string {
	names := make([]string, len(m.Variables))
	for i, v := range m.Variables {
		names[i] = v.Name
	}
	return names
}

// LiteralDefaults returns the defaults that are not template expressions
func (m *Manifest) LiteralDefaults() types.Bindings {
	out := types.Bindings{}
	for _, v := range m.Variables {
		if v.HasDefault() && !v.IsExpression() {
			out[v.Name] = v.Default
		}
	}
	return out
}

// CompileCopyFilter compiles the manifest patterns followed by extra
func (m *Manifest) CompileCopyFilter(extra []string) (*copyfilter.Filter, error) {
	patterns := make([]string, 0, len(m.CopyWithoutRender)+len(extra))
	patterns = append(patterns, m.CopyWithoutRender...)
	patterns = append(patterns, extra...)

	f, err := copyfilter.Compile(patterns)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrInvalidGlob, "invalid copy-without-render pattern").
			WithDetail("manifest", m.Path)
	}
	return f, nil
}

func (m *Manifest) validate() error {
	seen := make(map[string]bool, len(m.Variables))
	for _, v := range m.Variables {
		if v.Name == "" {
			return errors.New(errors.ErrManifestInvalid, "variable with empty name")
		}
		if seen[v.Name] {
			return errors.Newf(errors.ErrManifestInvalid, "variable %q declared twice", v.Name).
				WithDetail("variable", v.Name)
		}
		seen[v.Name] = true

		if v.Kind == types.KindEnumeration {
			if len(v.Choices) == 0 {
				return errors.Newf(errors.ErrManifestInvalid, "variable %q has no choices", v.Name).
					WithDetail("variable", v.Name)
			}
			if s, ok := v.Default.(string); ok && !v.IsExpression() && !v.HasChoice(s) {
				return errors.Newf(errors.ErrManifestInvalid, "default %q of %q is not one of its choices", s, v.Name).
					WithDetail("variable", v.Name)
			}
		}
	}
	return nil
}

// field is one key of a decoded object, kept in document order.
// Values are string, bool, int64, float64, nil, []any or []field.
type field struct {
	key   string
	value any
}

// fromFields builds a manifest from the top-level object of a JSON or YAML document
func fromFields(fields []field) (*Manifest, error) {
	logger := logging.GetLogger("manifest")
	m := &Manifest{}

	for _, f := range fields {
		if strings.HasPrefix(f.key, reservedPrefix) {
			if f.key != CopyWithoutRenderKey {
				logger.Debug().Str("key", f.key).Msg("ignoring reserved manifest key")
				continue
			}
			patterns, err := stringList(f.key, f.value)
			if err != nil {
				return nil, err
			}
			m.CopyWithoutRender = patterns
			continue
		}

		spec, ok := specFromValue(f.key, f.value)
		if !ok {
			logger.Warn().Str("variable", f.key).Msgf("unsupported value type %T, variable skipped", f.value)
			continue
		}
		m.Variables = append(m.Variables, spec)
	}

	return m, nil
}

func specFromValue(name string, value any) (types.VariableSpec, bool) {
	spec := types.VariableSpec{Name: name}

	switch v := value.(type) {
	case string:
		spec.Kind, spec.Default = types.KindString, v
	case bool:
		spec.Kind, spec.Default = types.KindBoolean, v
	case int64:
		spec.Kind, spec.Default = types.KindInteger, v
	case []any:
		for _, item := range v {
			if s, ok := item.(string); ok {
				spec.Choices = append(spec.Choices, s)
			}
		}
		if len(spec.Choices) == 0 {
			return spec, false
		}
		spec.Kind, spec.Default = types.KindEnumeration, spec.Choices[0]
	case []field:
		spec.Labels = make(map[string]string)
		for _, f := range v {
			label, ok := f.value.(string)
			if !ok {
				continue
			}
			if f.key == PromptKey {
				spec.Prompt = label
				continue
			}
			spec.Choices = append(spec.Choices, f.key)
			spec.Labels[f.key] = label
		}
		if len(spec.Choices) == 0 {
			return spec, false
		}
		spec.Kind, spec.Default = types.KindEnumeration, spec.Choices[0]
	default:
		return spec, false
	}

	return spec, true
}

func stringList(key string, value any) ([]string, error) {
	items, ok := value.([]any)
	if !ok {
		return nil, errors.Newf(errors.ErrManifestInvalid, "%s must be a list of strings", key).
			WithDetail("key", key)
	}
	out := make([]string, 0, len(items))
	for _, item := range items {
		s, ok := item.(string)
		if !ok {
			return nil, errors.Newf(errors.ErrManifestInvalid, "%s must only contain strings, found %T", key, item).
				WithDetail("key", key)
		}
		out = append(out, s)
	}
	return out, nil
}

// IsManifest reports whether rel names a manifest at the template root
func IsManifest(rel string, names []string) bool {
	for _, n := range names {
		if rel == n {
			return true
		}
	}
	return false
}
