package slug_test

import (
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arthur-debert/stencil/pkg/errors"
	"github.com/arthur-debert/stencil/pkg/slug"
	"github.com/arthur-debert/stencil/pkg/types"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"hyphen_becomes_underscore", "demo-app", "demo_app"},
		{"uppercase_and_spaces", "My Cool Project", "my_cool_project"},
		{"runs_collapse", "a--b__c  d", "a_b_c_d"},
		{"trim_edges", "__hello__", "hello"},
		{"leading_digit_prefixed", "3d-engine", "_3d_engine"},
		{"non_ascii_replaced", "café crème", "caf_cr_me"},
		{"all_symbols", "!!!", ""},
		{"already_normal", "demo_app", "demo_app"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, slug.Normalize(tt.input))
		})
	}
}

func TestNormalizeIsIdempotent(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.Rng.Seed(1357)
	parameters.MinSuccessfulTests = 200

	properties := gopter.NewProperties(parameters)

	properties.Property("normalizing twice equals normalizing once", prop.ForAll(
		func(s string) bool {
			once := slug.Normalize(s)
			return slug.Normalize(once) == once
		},
		gen.AnyString(),
	))

	properties.Property("output only holds lowercase letters, digits and single underscores", prop.ForAll(
		func(s string) bool {
			out := slug.Normalize(s)
			prev := rune(0)
			for _, r := range out {
				ok := (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || r == '_'
				if !ok || (r == '_' && prev == '_') {
					return false
				}
				prev = r
			}
			return true
		},
		gen.AlphaString(),
	))

	properties.TestingRun(t)
}

func TestEnsureProjectSlug(t *testing.T) {
	t.Run("normalizes_existing_binding", func(t *testing.T) {
		b := types.Bindings{"project_slug": "demo-app"}
		got, err := slug.EnsureProjectSlug(b)
		require.NoError(t, err)
		assert.Equal(t, "demo_app", got)
		assert.Equal(t, "demo_app", b["project_slug"])
	})

	t.Run("falls_back_to_title_then_name", func(t *testing.T) {
		b := types.Bindings{"project_title": "Hello World", "project_name": "ignored"}
		got, err := slug.EnsureProjectSlug(b)
		require.NoError(t, err)
		assert.Equal(t, "hello_world", got)

		b = types.Bindings{"project_name": "Widget Co"}
		got, err = slug.EnsureProjectSlug(b)
		require.NoError(t, err)
		assert.Equal(t, "widget_co", got)
	})

	t.Run("defaults_to_project", func(t *testing.T) {
		b := types.Bindings{}
		got, err := slug.EnsureProjectSlug(b)
		require.NoError(t, err)
		assert.Equal(t, "project", got)
	})

	t.Run("empty_after_normalization_fails", func(t *testing.T) {
		_, err := slug.EnsureProjectSlug(types.Bindings{"project_slug": "---"})
		require.Error(t, err)
		assert.True(t, errors.IsErrorCode(err, errors.ErrInvalidInput))
	})
}
