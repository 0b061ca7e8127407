// Package collect gathers variable values from the user.
//
// Values given on the command line as name=value assignments are coerced to
// the declared kind of their variable. Interactive collection asks one
// question per variable, offering the resolved default.
package collect

import (
	"context"
	"sort"
	"strconv"
	"strings"

	"github.com/arthur-debert/stencil/pkg/errors"
	"github.com/arthur-debert/stencil/pkg/types"
)

// Collector returns answers for the given specs. current holds the resolved
// value of every spec, which collectors offer as the default. Only the
// answered names are returned.
type Collector interface {
	Collect(ctx context.Context, specs []types.VariableSpec, current types.Bindings) (types.Bindings, error)
}

// Defaults accepts every resolved default without asking
type Defaults struct{}

// Collect implements Collector
func (Defaults) Collect(context.Context, []types.VariableSpec, types.Bindings) (types.Bindings, error) {
	return types.Bindings{}, nil
}

// ParseAssignments parses name=value arguments
func ParseAssignments(args []string) (map[string]string, error) {
	out := make(map[string]string, len(args))
	for _, arg := range args {
		name, value, ok := strings.Cut(arg, "=")
		name = strings.TrimSpace(name)
		if !ok || name == "" {
			return nil, errors.Newf(errors.ErrInvalidInput, "invalid assignment %q, expected name=value", arg).
				WithDetail("assignment", arg)
		}
		out[name] = value
	}
	return out, nil
}

// Coerce converts a raw string to the kind declared by spec
func Coerce(spec types.VariableSpec, raw string) (any, error) {
	switch spec.Kind {
	case types.KindBoolean:
		b, ok := types.ParseBool(raw)
		if !ok {
			return nil, errors.Newf(errors.ErrCollect, "%s expects a boolean, got %q", spec.Name, raw).
				WithDetail("variable", spec.Name)
		}
		return b, nil
	case types.KindInteger:
		n, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
		if err != nil {
			return nil, errors.Wrapf(err, errors.ErrCollect, "%s expects an integer, got %q", spec.Name, raw).
				WithDetail("variable", spec.Name)
		}
		return n, nil
	case types.KindEnumeration:
		if spec.HasChoice(raw) {
			return raw, nil
		}
		for _, c := range spec.Choices {
			if spec.Label(c) == raw {
				return c, nil
			}
		}
		return nil, errors.Newf(errors.ErrCollect, "%s must be one of %s, got %q",
			spec.Name, strings.Join(spec.Choices, ", "), raw).
			WithDetails(map[string]interface{}{"variable": spec.Name, "choices": spec.Choices})
	default:
		return raw, nil
	}
}

// CoerceAll coerces raw values against specs. Names without a spec are kept
// as strings.
func CoerceAll(specs []types.VariableSpec, raw map[string]string) (types.Bindings, error) {
	byName := make(map[string]types.VariableSpec, len(specs))
	for _, s := range specs {
		byName[s.Name] = s
	}

	names := make([]string, 0, len(raw))
	for name := range raw {
		names = append(names, name)
	}
	sort.Strings(names)

	out := make(types.Bindings, len(raw))
	for _, name := range names {
		spec, ok := byName[name]
		if !ok {
			out[name] = raw[name]
			continue
		}
		v, err := Coerce(spec, raw[name])
		if err != nil {
			return nil, err
		}
		out[name] = v
	}
	return out, nil
}

// FormatValue renders a binding value the way Coerce reads it back
func FormatValue(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case bool:
		return strconv.FormatBool(t)
	case int64:
		return strconv.FormatInt(t, 10)
	case int:
		return strconv.Itoa(t)
	default:
		return ""
	}
}
