package types

import (
	"fmt"
	"reflect"
	"sort"
	"strconv"
	"strings"
)

// ExpressionDelimiter marks a string default as a template expression.
const ExpressionDelimiter = "{{"

// VarKind is the value type of a template variable
type VarKind int

const (
	KindString VarKind = iota
	KindBoolean
	KindInteger
	KindEnumeration
)

// String returns the manifest spelling of the kind
func (k VarKind) String() string {
	switch k {
	case KindString:
		return "string"
	case KindBoolean:
		return "boolean"
	case KindInteger:
		return "integer"
	case KindEnumeration:
		return "enum"
	default:
		return "unknown"
	}
}

// ParseVarKind parses the manifest spelling of a kind
func ParseVarKind(s string) (VarKind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "string", "str":
		return KindString, nil
	case "boolean", "bool":
		return KindBoolean, nil
	case "integer", "int", "number":
		return KindInteger, nil
	case "enum", "enumeration", "choice":
		return KindEnumeration, nil
	default:
		return KindString, fmt.Errorf("unknown variable type: %s", s)
	}
}

// VariableSpec describes one template variable as declared in a manifest
type VariableSpec struct {
	Name string
	Kind VarKind

	// Default is a string, bool or int64 literal, or nil when absent.
	// A string default containing ExpressionDelimiter is a template expression.
	Default any

	// Choices is the ordered list of allowed values for KindEnumeration.
	Choices []string

	// Labels maps choice values to human-friendly labels. Optional.
	Labels map[string]string

	// Prompt overrides the question shown by interactive collectors.
	Prompt string
}

// HasDefault reports whether the spec declares a default
func (s VariableSpec) HasDefault() bool {
	return s.Default != nil
}

// IsExpression reports whether the default is a template expression
func (s VariableSpec) IsExpression() bool {
	str, ok := s.Default.(string)
	return ok && strings.Contains(str, ExpressionDelimiter)
}

// ZeroValue is the value bound to a variable with neither default nor binding
func (s VariableSpec) ZeroValue() any {
	switch s.Kind {
	case KindBoolean:
		return false
	case KindInteger:
		return int64(0)
	case KindEnumeration:
		if len(s.Choices) > 0 {
			return s.Choices[0]
		}
		return ""
	default:
		return ""
	}
}

// ParseBool accepts the usual spellings of yes and no
func ParseBool(raw string) (bool, bool) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "1", "t", "true", "y", "yes", "on":
		return true, true
	case "0", "f", "false", "n", "no", "off":
		return false, true
	}
	return false, false
}

// FromRendered converts the rendered text of an expression default to the
// declared kind. Text that does not parse as that kind is returned unchanged.
func (s VariableSpec) FromRendered(text string) any {
	switch s.Kind {
	case KindBoolean:
		if b, ok := ParseBool(text); ok {
			return b
		}
	case KindInteger:
		if n, err := strconv.ParseInt(strings.TrimSpace(text), 10, 64); err == nil {
			return n
		}
	}
	return text
}

// Label returns the display label for a choice, falling back to the value itself
func (s VariableSpec) Label(choice string) string {
	if l, ok := s.Labels[choice]; ok && l != "" {
		return l
	}
	return choice
}

// HasChoice reports whether v is one of the declared choices
func (s VariableSpec) HasChoice(v string) bool {
	for _, c := range s.Choices {
		if c == v {
			return true
		}
	}
	return false
}

// Bindings maps variable names to resolved values (string, bool or int64)
type Bindings map[string]any

// Clone returns a shallow copy of the bindings
func (b Bindings) Clone() Bindings {
	out := make(Bindings, len(b))
	for k, v := range b {
		out[k] = v
	}
	return out
}

// Snapshot returns the copy handed to rendering. Callers must not mutate it.
func (b Bindings) Snapshot() Bindings {
	return b.Clone()
}

// Merge copies every entry of other into b, overwriting existing keys
func (b Bindings) Merge(other Bindings) {
	for k, v := range other {
		b[k] = v
	}
}

// String returns the binding as a string when it is one
func (b Bindings) String(name string) (string, bool) {
	v, ok := b[name].(string)
	return v, ok
}

// Names returns the bound names in sorted order
func (b Bindings) Names() []string {
	names := make([]string, 0, len(b))
	for k := range b {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

// ValuesEqual compares two binding values
func ValuesEqual(a, b any) bool {
	return reflect.DeepEqual(a, b)
}
