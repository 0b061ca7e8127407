package manifest

import (
	"github.com/pelletier/go-toml/v2"

	"github.com/arthur-debert/stencil/pkg/errors"
	"github.com/arthur-debert/stencil/pkg/types"
)

// tomlManifest is the TOML layout:
//
//	copy_without_render = ["static/**"]
//
//	[[variables]]
//	name = "license"
//	type = "enum"
//	choices = ["MIT", "BSD-3"]
//	labels = { MIT = "MIT License" }
//	prompt = "Which license?"
type tomlManifest struct {
	CopyWithoutRender []string       `toml:"copy_without_render"`
	Variables         []tomlVariable `toml:"variables"`
}

type tomlVariable struct {
	Name    string            `toml:"name"`
	Type    string            `toml:"type"`
	Default any               `toml:"default"`
	Choices []string          `toml:"choices"`
	Labels  map[string]string `toml:"labels"`
	Prompt  string            `toml:"prompt"`
}

func parseTOML(data []byte) (*Manifest, error) {
	var raw tomlManifest
	if err := toml.Unmarshal(data, &raw); err != nil {
		return nil, err
	}

	m := &Manifest{CopyWithoutRender: raw.CopyWithoutRender}
	for _, v := range raw.Variables {
		spec, err := v.spec()
		if err != nil {
			return nil, err
		}
		m.Variables = append(m.Variables, spec)
	}
	return m, nil
}

func (v tomlVariable) spec() (types.VariableSpec, error) {
	invalid := func(format string, args ...interface{}) error {
		return errors.Newf(errors.ErrManifestInvalid, format, args...).WithDetail("variable", v.Name)
	}

	spec := types.VariableSpec{
		Name:    v.Name,
		Default: v.Default,
		Choices: v.Choices,
		Labels:  v.Labels,
		Prompt:  v.Prompt,
	}

	if v.Type == "" {
		spec.Kind = inferKind(v)
	} else {
		kind, err := types.ParseVarKind(v.Type)
		if err != nil {
			return spec, invalid("variable %q: %v", v.Name, err)
		}
		spec.Kind = kind
	}

	switch spec.Kind {
	case types.KindString:
		if _, ok := v.Default.(string); !ok && v.Default != nil {
			return spec, invalid("variable %q: string default expected, got %T", v.Name, v.Default)
		}
	case types.KindBoolean:
		if _, ok := v.Default.(bool); !ok && v.Default != nil {
			return spec, invalid("variable %q: boolean default expected, got %T", v.Name, v.Default)
		}
	case types.KindInteger:
		switch v.Default.(type) {
		case nil, int64:
		case string:
			if !spec.IsExpression() {
				return spec, invalid("variable %q: integer default expected, got %q", v.Name, v.Default)
			}
		default:
			return spec, invalid("variable %q: integer default expected, got %T", v.Name, v.Default)
		}
	case types.KindEnumeration:
		if v.Default == nil && len(v.Choices) > 0 {
			spec.Default = v.Choices[0]
		}
	}

	return spec, nil
}

func inferKind(v tomlVariable) types.VarKind {
	if len(v.Choices) > 0 {
		return types.KindEnumeration
	}
	switch v.Default.(type) {
	case bool:
		return types.KindBoolean
	case int64:
		return types.KindInteger
	default:
		return types.KindString
	}
}
