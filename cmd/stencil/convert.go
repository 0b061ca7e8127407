package stencil

import (
	"fmt"
	"path/filepath"

	"github.com/arthur-debert/stencil/pkg/config"
	"github.com/arthur-debert/stencil/pkg/materialize"
	"github.com/arthur-debert/stencil/pkg/types"
	"github.com/arthur-debert/stencil/pkg/ui"
)

// reportFromResult converts a materialization result for display
func reportFromResult(res *materialize.Result) *ui.GenerateReport {
	return &ui.GenerateReport{
		Output:     res.OutputRoot,
		ProjectDir: res.ProjectDir,
		Files:      res.Files,
		HookFiles:  res.HookFiles,
		Warnings:   res.Warnings,
		Variables:  res.Bindings.Snapshot(),
	}
}

// infoFromInspection converts an inspection for display
func infoFromInspection(in *materialize.Inspection, cfg *config.Config) *ui.TemplateInfo {
	info := &ui.TemplateInfo{
		Source:     in.Source,
		ProjectDir: in.ProjectDir,
		Variables:  []ui.VariableInfo{},
		Readme:     in.Readme,
	}
	if in.Manifest != nil {
		if in.Manifest.Path != "" {
			info.Manifest = filepath.Base(in.Manifest.Path)
		}
		for _, spec := range in.Manifest.Variables {
			info.Variables = append(info.Variables, variableInfo(spec))
		}
		info.CopyWithoutRender = append(info.CopyWithoutRender, in.Manifest.CopyWithoutRender...)
	}
	info.CopyWithoutRender = append(info.CopyWithoutRender, cfg.Render.Copy...)

	for _, stage := range in.Hooks {
		info.Hooks = append(info.Hooks, string(stage))
	}
	if len(in.Hooks) > 0 && !cfg.Hooks.Enabled {
		info.Warnings = append(info.Warnings,
			fmt.Sprintf("hooks are disabled, %d hook scripts will not run", len(in.Hooks)))
	}
	return info
}

func variableInfo(spec types.VariableSpec) ui.VariableInfo {
	v := ui.VariableInfo{
		Name:    spec.Name,
		Kind:    spec.Kind.String(),
		Default: spec.Default,
		Choices: spec.Choices,
		Prompt:  spec.Prompt,
	}
	if len(spec.Labels) > 0 {
		v.Labels = make([]string, len(spec.Choices))
		for i, c := range spec.Choices {
			v.Labels[i] = spec.Label(c)
		}
	}
	return v
}
