package paths

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arthur-debert/stencil/pkg/errors"
)

func TestValidateSegment(t *testing.T) {
	tests := []struct {
		name    string
		seg     string
		windows bool
		wantErr bool
	}{
		{"plain_name", "main.go", false, false},
		{"dotfile", ".gitignore", false, false},
		{"unicode", "café", false, false},
		{"empty", "", false, true},
		{"current_dir", ".", false, true},
		{"parent_dir", "..", false, true},
		{"slash", "a/b", false, true},
		{"backslash", `a\b`, false, true},
		{"nul", "a\x00b", false, true},
		{"tab", "a\tb", false, true},
		{"delete_char", "a\x7fb", false, true},
		{"colon_allowed_on_unix", "a:b", false, false},
		{"colon_rejected_on_windows", "a:b", true, true},
		{"question_mark_windows", "what?", true, true},
		{"trailing_dot_windows", "name.", true, true},
		{"trailing_space_windows", "name ", true, true},
		{"trailing_dot_unix", "name.", false, false},
		{"reserved_con", "CON", true, true},
		{"reserved_lowercase_with_ext", "nul.txt", true, true},
		{"reserved_com9", "Com9.log", true, true},
		{"reserved_lpt1", "lpt1", true, true},
		{"reserved_allowed_on_unix", "CON", false, false},
		{"not_reserved_prefix", "console", true, false},
		{"com10_not_reserved", "COM10", true, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validateSegment(tt.seg, tt.windows)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, errors.IsErrorCode(err, errors.ErrUnsafeSegment))
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestValidateRelPath(t *testing.T) {
	tests := []struct {
		name    string
		rel     string
		wantErr bool
	}{
		{"simple", "demo_app/main.go", false},
		{"backslash_separators", `demo_app\src\main.go`, false},
		{"single_file", "README.md", false},
		{"empty", "", true},
		{"absolute", "/etc/passwd", true},
		{"absolute_backslash", `\windows\system32`, true},
		{"parent_escape", "../outside.txt", true},
		{"nested_parent", "a/../../b", true},
		{"current_dir", "./a", true},
		{"double_slash", "a//b", true},
		{"trailing_slash", "a/", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateRelPath(tt.rel)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, errors.IsSafetyError(err))
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestContainsPath(t *testing.T) {
	assert.True(t, ContainsPath("/a/b", "/a/b"))
	assert.True(t, ContainsPath("/a/b", "/a/b/c"))
	assert.True(t, ContainsPath("/a/b", "/a/b/..c"))
	assert.False(t, ContainsPath("/a/b", "/a"))
	assert.False(t, ContainsPath("/a/b", "/a/bc"))
	assert.False(t, ContainsPath("/a/b", "/x/y"))
}

func TestSplitRel(t *testing.T) {
	assert.Equal(t, []string{"a", "b", "c"}, SplitRel(`a/b\c`))
	assert.Empty(t, SplitRel(""))
}
