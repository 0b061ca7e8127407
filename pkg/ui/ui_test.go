package ui_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arthur-debert/stencil/pkg/errors"
	"github.com/arthur-debert/stencil/pkg/ui"
)

func TestNewRenderer(t *testing.T) {
	for _, format := range []ui.Format{ui.FormatAuto, ui.FormatTerminal, ui.FormatText, ui.FormatJSON} {
		t.Run(format.String(), func(t *testing.T) {
			r, err := ui.NewRenderer(format, &bytes.Buffer{})
			require.NoError(t, err)
			assert.NotNil(t, r)
		})
	}

	_, err := ui.NewRenderer(ui.Format(42), &bytes.Buffer{})
	assert.Error(t, err)
}

func sampleReport() *ui.GenerateReport {
	return &ui.GenerateReport{
		Output:     "/tmp/out",
		ProjectDir: "demo_app",
		Files:      []string{"demo_app/README.md", "demo_app/NOTES.md"},
		HookFiles:  []string{"demo_app/NOTES.md"},
		Warnings:   []string{"demo_app/NOTES.md written by template was overwritten by post_gen_project hook"},
		Variables:  map[string]interface{}{"project_slug": "demo_app"},
	}
}

func TestTextRendererReport(t *testing.T) {
	var buf bytes.Buffer
	r, err := ui.NewRenderer(ui.FormatText, &buf)
	require.NoError(t, err)

	require.NoError(t, r.RenderResult(sampleReport()))
	out := buf.String()

	assert.Contains(t, out, "Generated demo_app")
	assert.Contains(t, out, "  ✓ demo_app/README.md\n")
	assert.Contains(t, out, "  ✓ demo_app/NOTES.md (hook)\n")
	assert.Contains(t, out, "2 files")
	assert.Contains(t, out, "  ! demo_app/NOTES.md written by template")
}

func TestTextRendererTemplate(t *testing.T) {
	var buf bytes.Buffer
	r, err := ui.NewRenderer(ui.FormatText, &buf)
	require.NoError(t, err)

	info := &ui.TemplateInfo{
		Source:     "gh/acme/app",
		Manifest:   "stencil.json",
		ProjectDir: "{{ .project_slug }}",
		Variables: []ui.VariableInfo{
			{Name: "project_name", Kind: "string", Default: "Demo"},
			{Name: "license", Kind: "enum", Default: "mit", Choices: []string{"mit", "bsd3"}, Labels: []string{"MIT License", "bsd3"}},
			{Name: "port", Kind: "integer", Default: int64(8080)},
		},
		CopyWithoutRender: []string{"assets/**"},
		Hooks:             []string{"post_gen_project"},
		Readme:            "# Demo\n\nA template.\n",
	}
	require.NoError(t, r.RenderResult(info))
	out := buf.String()

	assert.Contains(t, out, "Template gh/acme/app")
	assert.Contains(t, out, "project dir  {{ .project_slug }}")
	assert.Contains(t, out, `project_name  string  "Demo"`)
	assert.Contains(t, out, "[mit=MIT License, bsd3]")
	assert.Contains(t, out, "8080")
	assert.Contains(t, out, "  assets/**\n")
	assert.Contains(t, out, "  post_gen_project\n")
	assert.Contains(t, out, "# Demo\n\nA template.\n")
}

func TestTextRendererError(t *testing.T) {
	var buf bytes.Buffer
	r, err := ui.NewRenderer(ui.FormatText, &buf)
	require.NoError(t, err)

	stencilErr := errors.New(errors.ErrRenderFile, "failed to render demo/x.txt").
		WithDetails(map[string]interface{}{"stage": "StageRender", "file": "demo/x.txt"})
	require.NoError(t, r.RenderError(stencilErr))
	assert.Equal(t,
		"Error: [RENDER_FILE] failed to render demo/x.txt\n  file: demo/x.txt\n  stage: StageRender\n",
		buf.String())

	buf.Reset()
	require.NoError(t, r.RenderError(fmt.Errorf("plain failure")))
	assert.Equal(t, "Error: plain failure\n", buf.String())
}

func TestJSONRenderer(t *testing.T) {
	var buf bytes.Buffer
	r, err := ui.NewRenderer(ui.FormatJSON, &buf)
	require.NoError(t, err)

	require.NoError(t, r.RenderResult(sampleReport()))
	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	assert.Equal(t, "demo_app", decoded["projectDir"])
	assert.Len(t, decoded["files"], 2)

	buf.Reset()
	require.NoError(t, r.RenderError(errors.New(errors.ErrRootEscape, "escape").WithDetail("path", "../x")))
	decoded = nil
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	assert.Equal(t, "ROOT_ESCAPE", decoded["code"])
	assert.Equal(t, map[string]interface{}{"path": "../x"}, decoded["details"])

	buf.Reset()
	require.NoError(t, r.RenderMessage("done"))
	assert.JSONEq(t, `{"message": "done"}`, buf.String())
}

func TestStyles(t *testing.T) {
	styles, err := ui.LoadStyles([]byte("colors:\n  red: {light: '#f00', dark: '#f00'}\nstyles:\n  Custom:\n    bold: true\n    foreground: red\n"))
	require.NoError(t, err)
	assert.True(t, styles["Custom"].GetBold())
	// every base style exists even when the data does not define it
	assert.Contains(t, styles, "Header")

	_, err = ui.LoadStyles([]byte("colors: [unclosed"))
	assert.Error(t, err)

	assert.True(t, ui.Style("Header").GetBold())
	assert.False(t, ui.Style("NoSuchStyle").GetBold())
}
