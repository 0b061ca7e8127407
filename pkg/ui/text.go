package ui

import (
	stderrors "errors"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/arthur-debert/stencil/pkg/errors"
)

// textRenderer writes human-readable output, styled when styled is set
type textRenderer struct {
	out      io.Writer
	styled   bool
	markdown *MarkdownRenderer
}

func newTextRenderer(w io.Writer, styled bool) *textRenderer {
	return &textRenderer{out: w, styled: styled, markdown: NewMarkdownRenderer()}
}

func (r *textRenderer) style(name, s string) string {
	if !r.styled {
		return s
	}
	return Style(name).Render(s)
}

func (r *textRenderer) printf(format string, args ...interface{}) {
	_, _ = fmt.Fprintf(r.out, format, args...)
}

// RenderResult implements Renderer
func (r *textRenderer) RenderResult(result interface{}) error {
	switch v := result.(type) {
	case *GenerateReport:
		r.renderReport(v)
	case *TemplateInfo:
		r.renderTemplate(v)
	default:
		r.printf("%v\n", v)
	}
	return nil
}

func (r *textRenderer) renderReport(rep *GenerateReport) {
	hooked := make(map[string]bool, len(rep.HookFiles))
	for _, f := range rep.HookFiles {
		hooked[f] = true
	}

	r.printf("%s %s\n", r.style("Header", "Generated"), r.style("FilePath", rep.ProjectDir))
	r.printf("%s %s\n\n", r.style("Muted", "in"), rep.Output)

	for _, f := range rep.Files {
		line := fmt.Sprintf("  %s %s", r.style("Success", "✓"), f)
		if hooked[f] {
			line += " " + r.style("Muted", "(hook)")
		}
		r.printf("%s\n", line)
	}
	r.printf("\n%d files\n", len(rep.Files))
	r.renderWarnings(rep.Warnings)
}

func (r *textRenderer) renderTemplate(info *TemplateInfo) {
	r.printf("%s %s\n", r.style("Header", "Template"), info.Source)
	manifest := info.Manifest
	if manifest == "" {
		manifest = "(none)"
	}
	r.printf("  %-12s %s\n", "manifest", manifest)
	r.printf("  %-12s %s\n", "project dir", r.style("FilePath", info.ProjectDir))

	if len(info.Variables) > 0 {
		r.printf("\n%s\n", r.style("Header", "Variables"))
		width := 0
		for _, v := range info.Variables {
			width = max(width, len(v.Name))
		}
		for _, v := range info.Variables {
			name := fmt.Sprintf("%-*s", width, v.Name)
			line := fmt.Sprintf("  %s  %-7s %v", r.style("Variable", name), v.Kind, displayDefault(v.Default))
			if len(v.Choices) > 0 {
				line += " " + r.style("Muted", "["+strings.Join(choiceLabels(v), ", ")+"]")
			}
			r.printf("%s\n", line)
		}
	}

	if len(info.CopyWithoutRender) > 0 {
		r.printf("\n%s\n", r.style("Header", "Copied without rendering"))
		for _, p := range info.CopyWithoutRender {
			r.printf("  %s\n", p)
		}
	}

	if len(info.Hooks) > 0 {
		r.printf("\n%s\n", r.style("Header", "Hooks"))
		for _, h := range info.Hooks {
			r.printf("  %s\n", h)
		}
	}

	r.renderWarnings(info.Warnings)

	if info.Readme != "" {
		r.printf("\n")
		if r.styled {
			r.printf("%s", r.markdown.Render(info.Readme))
		} else {
			r.printf("%s\n", strings.TrimRight(info.Readme, "\n"))
		}
	}
}

func (r *textRenderer) renderWarnings(warnings []string) {
	if len(warnings) == 0 {
		return
	}
	r.printf("\n%s\n", r.style("Warning", "Warnings"))
	for _, w := range warnings {
		r.printf("  %s %s\n", r.style("Warning", "!"), w)
	}
}

// RenderError implements Renderer
func (r *textRenderer) RenderError(err error) error {
	var se *errors.StencilError
	if !stderrors.As(err, &se) {
		r.printf("%s %v\n", r.style("Error", "Error:"), err)
		return nil
	}

	r.printf("%s %s\n", r.style("Error", "Error:"), err.Error())
	keys := make([]string, 0, len(se.Details))
	for k := range se.Details {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		r.printf("  %s %v\n", r.style("Muted", k+":"), se.Details[k])
	}
	return nil
}

// RenderMessage implements Renderer
func (r *textRenderer) RenderMessage(msg string) error {
	r.printf("%s\n", msg)
	return nil
}

func displayDefault(v interface{}) string {
	switch t := v.(type) {
	case nil:
		return "-"
	case string:
		return fmt.Sprintf("%q", t)
	default:
		return fmt.Sprintf("%v", t)
	}
}

func choiceLabels(v VariableInfo) []string {
	if len(v.Labels) != len(v.Choices) {
		return v.Choices
	}
	out := make([]string, len(v.Choices))
	for i, c := range v.Choices {
		if v.Labels[i] == "" || v.Labels[i] == c {
			out[i] = c
			continue
		}
		out[i] = c + "=" + v.Labels[i]
	}
	return out
}
