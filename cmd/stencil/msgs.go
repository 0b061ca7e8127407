package stencil

import (
	_ "embed"
	"strings"
)

// Short messages (one-liners)
const (
	// Command descriptions
	MsgRootShort       = "Generate projects from templates"
	MsgNewShort        = "Generate a project from a template"
	MsgInspectShort    = "Describe a template without rendering it"
	MsgVersionShort    = "Print version information"
	MsgVersionLong     = "Print detailed version information including commit hash and build date"
	MsgCompletionShort = "Generate shell completion scripts"
	MsgManShort        = "Generate man pages"
	MsgManLong         = "Generate one roff man page per command into DIR"

	// Status messages
	MsgVersionFormat = "stencil %s\ncommit: %s\nbuilt:  %s\n"
	MsgManWritten    = "Man pages written to %s"
	MsgNoInputNotice = "stdin is not a terminal, using defaults for unanswered variables"

	// Error messages
	MsgErrLoadConfig    = "failed to load configuration: %w"
	MsgErrParseFormat   = "invalid --format: %w"
	MsgErrNoCommand     = "no command specified"
	MsgErrGenerateMan   = "failed to generate man pages: %w"
	MsgErrCreateManDir  = "failed to create %s: %w"
	MsgErrParseOverride = "invalid --set: %w"

	// Flag descriptions
	MsgFlagVerbose = "Increase verbosity (-v INFO, -vv DEBUG, -vvv TRACE)"
	MsgFlagConfig  = "Configuration file, TOML or YAML (default $XDG_CONFIG_HOME/stencil/config.toml)"
	MsgFlagFormat  = "Output format: auto, term, text or json"
	MsgFlagOutput  = "Directory the project is generated in"
	MsgFlagSet     = "Answer a variable up front (name=value, repeatable)"
	MsgFlagNoInput = "Never prompt, use defaults for unanswered variables"
	MsgFlagNoHooks = "Do not run template hooks"
)

// Long messages from embedded files
var (
	//go:embed msgs/root-long.txt
	msgRootLongRaw string
	MsgRootLong    = strings.TrimSpace(msgRootLongRaw)

	//go:embed msgs/new-long.txt
	msgNewLongRaw string
	MsgNewLong    = strings.TrimSpace(msgNewLongRaw)

	//go:embed msgs/new-example.txt
	msgNewExampleRaw string
	MsgNewExample    = strings.TrimRight(msgNewExampleRaw, "\n")

	//go:embed msgs/inspect-long.txt
	msgInspectLongRaw string
	MsgInspectLong    = strings.TrimSpace(msgInspectLongRaw)

	//go:embed msgs/inspect-example.txt
	msgInspectExampleRaw string
	MsgInspectExample    = strings.TrimRight(msgInspectExampleRaw, "\n")

	//go:embed msgs/completion-long.txt
	msgCompletionLongRaw string
	MsgCompletionLong    = strings.TrimSpace(msgCompletionLongRaw)

	//go:embed msgs/usage-template.txt
	MsgUsageTemplate string
)
