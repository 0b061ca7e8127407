package ui

// GenerateReport is what `stencil new` shows after a run
type GenerateReport struct {
	Output     string   `json:"output"`
	ProjectDir string   `json:"projectDir"`
	Files      []string `json:"files"`
	HookFiles  []string `json:"hookFiles,omitempty"`
	Warnings   []string `json:"warnings,omitempty"`

	// Variables holds the final bindings
	Variables map[string]interface{} `json:"variables"`
}

// VariableInfo describes one manifest variable
type VariableInfo struct {
	Name    string      `json:"name"`
	Kind    string      `json:"kind"`
	Default interface{} `json:"default,omitempty"`
	Choices []string    `json:"choices,omitempty"`
	Labels  []string    `json:"labels,omitempty"`
	Prompt  string      `json:"prompt,omitempty"`
}

// TemplateInfo is what `stencil inspect` shows about a template
type TemplateInfo struct {
	Source            string         `json:"source"`
	Manifest          string         `json:"manifest,omitempty"`
	ProjectDir        string         `json:"projectDir"`
	Variables         []VariableInfo `json:"variables"`
	CopyWithoutRender []string       `json:"copyWithoutRender,omitempty"`
	Hooks             []string       `json:"hooks,omitempty"`
	Warnings          []string       `json:"warnings,omitempty"`

	// Readme holds the template README in markdown
	Readme string `json:"readme,omitempty"`
}
