// Package slug normalizes free-form project names into identifiers that are
// valid Python/Go package names and safe directory names.
package slug

import (
	"strings"

	"github.com/arthur-debert/stencil/pkg/errors"
	"github.com/arthur-debert/stencil/pkg/types"
)

// ProjectSlugVar is the variable naming the generated project directory
const ProjectSlugVar = "project_slug"

// fallbackVars are consulted in order when project_slug is not bound.
var fallbackVars = []string{"project_title", "project_name"}

// Normalize lowercases s, replaces every character that is not an ASCII
// letter or digit with '_', collapses runs of '_', trims leading and trailing
// '_', and prefixes '_' when the result starts with a digit.
func Normalize(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	prevUnderscore := false
	for _, r := range strings.ToLower(s) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
			prevUnderscore = false
			continue
		}
		if !prevUnderscore {
			b.WriteByte('_')
		}
		prevUnderscore = true
	}

	out := strings.Trim(b.String(), "_")
	if out != "" && out[0] >= '0' && out[0] <= '9' {
		out = "_" + out
	}
	return out
}

// EnsureProjectSlug normalizes the project_slug binding in place and returns it.
// When project_slug is missing it is derived from project_title, then
// project_name, then the literal "project".
func EnsureProjectSlug(b types.Bindings) (string, error) {
	source, ok := b.String(ProjectSlugVar)
	if !ok {
		source = "project"
		for _, name := range fallbackVars {
			if v, ok := b.String(name); ok {
				source = v
				break
			}
		}
	}

	normalized := Normalize(source)
	if normalized == "" {
		return "", errors.Newf(errors.ErrInvalidInput,
			"invalid %s after normalization: %q yields an empty name", ProjectSlugVar, source).
			WithDetail("value", source)
	}

	b[ProjectSlugVar] = normalized
	return normalized, nil
}
