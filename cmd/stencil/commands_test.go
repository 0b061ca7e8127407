package stencil

import (
	"bytes"
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arthur-debert/stencil/pkg/config"
	"github.com/arthur-debert/stencil/pkg/hooks"
	"github.com/arthur-debert/stencil/pkg/manifest"
	"github.com/arthur-debert/stencil/pkg/materialize"
	"github.com/arthur-debert/stencil/pkg/testutil"
	"github.com/arthur-debert/stencil/pkg/types"
)

// setupCLI isolates the log and config files and writes a template
func setupCLI(t *testing.T, files testutil.FileTree) string {
	t.Helper()
	testutil.NewEnvironment(t)
	return testutil.TemplateDir(t, files)
}

func execute(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	rootCmd := NewRootCmd()
	rootCmd.SetOut(&stdout)
	rootCmd.SetErr(&stderr)
	if args == nil {
		args = []string{}
	}
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return stdout.String(), stderr.String(), err
}

var demoTemplate = testutil.FileTree{
	"stencil.json": `{
		// demo
		"project_name": "Demo App",
		"project_slug": "{{ .project_name | slugify }}",
		"license": {"mit": "MIT License", "bsd3": "BSD 3-Clause", "__prompt__": "Pick a license"},
		"_copy_without_render": ["*.raw"]
	}`,
	"{{ .project_slug }}/README.md": "# {{ .project_name }} ({{ .license }})\n",
	"{{ .project_slug }}/data.raw":  "{{ untouched }}",
	"README.md":                     "# Demo template\n",
}

func TestNewCommand(t *testing.T) {
	tmpl := setupCLI(t, demoTemplate)
	out := filepath.Join(t.TempDir(), "out")

	stdout, _, err := execute(t, "new", tmpl, "-o", out, "--no-input", "--format", "text")
	require.NoError(t, err)

	assert.Contains(t, stdout, "demo_app/README.md")
	assert.Contains(t, stdout, "2 files")

	testutil.AssertFileContent(t, out, "demo_app/README.md", "# Demo App (mit)\n")
	testutil.AssertFileContent(t, out, "demo_app/data.raw", "{{ untouched }}")
}

func TestNewCommandOverridesJSON(t *testing.T) {
	tmpl := setupCLI(t, demoTemplate)
	out := filepath.Join(t.TempDir(), "out")

	stdout, _, err := execute(t, "new", tmpl, "-o", out, "--no-input", "--format", "json",
		"--set", "project_name=Billing API", "--set", "license=BSD 3-Clause")
	require.NoError(t, err)

	var report struct {
		ProjectDir string                 `json:"projectDir"`
		Files      []string               `json:"files"`
		Variables  map[string]interface{} `json:"variables"`
	}
	require.NoError(t, json.Unmarshal([]byte(stdout), &report))
	assert.Equal(t, "billing_api", report.ProjectDir)
	assert.ElementsMatch(t, []string{"billing_api/README.md", "billing_api/data.raw"}, report.Files)
	assert.Equal(t, "bsd3", report.Variables["license"])

	testutil.AssertFileContent(t, out, "billing_api/README.md", "# Billing API (bsd3)\n")
}

func TestNewCommandErrors(t *testing.T) {
	tmpl := setupCLI(t, demoTemplate)

	tests := []struct {
		name string
		args []string
		code string
	}{
		{
			name: "missing_template",
			args: []string{"new", filepath.Join(tmpl, "nope"), "--no-input"},
			code: "NOT_FOUND",
		},
		{
			name: "bad_assignment",
			args: []string{"new", tmpl, "--no-input", "--set", "project_name"},
			code: "INVALID_INPUT",
		},
		{
			name: "bad_choice",
			args: []string{"new", tmpl, "--no-input", "--set", "license=gpl"},
			code: "COLLECT",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := filepath.Join(t.TempDir(), "out")
			args := append(tt.args, "-o", out, "--format", "json")

			stdout, stderr, err := execute(t, args...)
			require.Error(t, err)
			assert.True(t, Reported(err))
			assert.Empty(t, stdout)

			var obj map[string]interface{}
			require.NoError(t, json.Unmarshal([]byte(stderr), &obj))
			assert.Equal(t, tt.code, obj["code"])

			testutil.AssertNotExists(t, out)
		})
	}
}

func TestNewCommandRequiresSource(t *testing.T) {
	setupCLI(t, nil)
	_, _, err := execute(t, "new")
	require.Error(t, err)
	assert.False(t, Reported(err))
}

func TestInspectCommand(t *testing.T) {
	tmpl := setupCLI(t, demoTemplate)

	stdout, _, err := execute(t, "inspect", tmpl, "--format", "text")
	require.NoError(t, err)

	assert.Contains(t, stdout, "stencil.json")
	assert.Contains(t, stdout, "{{ .project_slug }}")
	assert.Contains(t, stdout, "project_name")
	assert.Contains(t, stdout, "mit=MIT License")
	assert.Contains(t, stdout, "*.raw")
	assert.Contains(t, stdout, "# Demo template")
}

func TestInspectCommandJSON(t *testing.T) {
	tmpl := setupCLI(t, demoTemplate)

	stdout, _, err := execute(t, "inspect", tmpl, "--format", "json")
	require.NoError(t, err)

	var info struct {
		Manifest  string `json:"manifest"`
		Variables []struct {
			Name    string   `json:"name"`
			Kind    string   `json:"kind"`
			Choices []string `json:"choices"`
		} `json:"variables"`
	}
	require.NoError(t, json.Unmarshal([]byte(stdout), &info))
	assert.Equal(t, "stencil.json", info.Manifest)
	require.Len(t, info.Variables, 3)
	assert.Equal(t, "license", info.Variables[2].Name)
	assert.Equal(t, []string{"mit", "bsd3"}, info.Variables[2].Choices)
}

func TestInfoFromInspectionWarnsDisabledHooks(t *testing.T) {
	cfg, err := config.FromMap(map[string]interface{}{"hooks.enabled": false})
	require.NoError(t, err)

	in := &materialize.Inspection{
		Source:     "tmpl",
		ProjectDir: "{{ .project_slug }}",
		Manifest: &manifest.Manifest{
			Variables: []types.VariableSpec{{Name: "project_slug", Kind: types.KindString, Default: "x"}},
		},
		Hooks: []hooks.Stage{hooks.PostGenProject},
	}

	info := infoFromInspection(in, cfg)
	assert.Equal(t, []string{"post_gen_project"}, info.Hooks)
	require.Len(t, info.Warnings, 1)
	assert.Contains(t, info.Warnings[0], "hooks are disabled")
	assert.Empty(t, info.Manifest)
}

func TestVersionCommand(t *testing.T) {
	setupCLI(t, nil)
	stdout, _, err := execute(t, "version")
	require.NoError(t, err)
	assert.Contains(t, stdout, "stencil dev")
}

func TestCompletionCommand(t *testing.T) {
	setupCLI(t, nil)
	for _, shell := range []string{"bash", "zsh", "fish", "powershell"} {
		t.Run(shell, func(t *testing.T) {
			stdout, _, err := execute(t, "completion", shell)
			require.NoError(t, err)
			assert.NotEmpty(t, stdout)
		})
	}

	_, _, err := execute(t, "completion", "tcsh")
	assert.Error(t, err)
}

func TestManCommand(t *testing.T) {
	setupCLI(t, nil)
	dir := filepath.Join(t.TempDir(), "man")

	_, _, err := execute(t, "man", dir)
	require.NoError(t, err)

	testutil.AssertFileExists(t, filepath.Join(dir, "stencil-new.1"))
}

func TestRootCommandWithoutSubcommand(t *testing.T) {
	setupCLI(t, nil)
	_, _, err := execute(t)
	assert.EqualError(t, err, MsgErrNoCommand)
}

func TestHelpTopics(t *testing.T) {
	setupCLI(t, nil)

	stdout, _, err := execute(t, "help", "topics")
	require.NoError(t, err)
	for _, name := range []string{"manifest", "hooks", "expressions", "safety"} {
		assert.Contains(t, stdout, "  "+name)
	}
	assert.Contains(t, stdout, "--set")

	stdout, _, err = execute(t, "help", "hooks")
	require.NoError(t, err)
	assert.Contains(t, stdout, "post_gen_project.lua")

	stdout, _, err = execute(t, "help", "set")
	require.NoError(t, err)
	assert.Contains(t, stdout, "never prompted for")
}
