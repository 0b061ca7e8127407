package stencil

import (
	"embed"
	stderrors "errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/cobra/doc"

	"github.com/arthur-debert/stencil/internal/version"
	"github.com/arthur-debert/stencil/pkg/cobrax/topics"
	"github.com/arthur-debert/stencil/pkg/collect"
	"github.com/arthur-debert/stencil/pkg/config"
	"github.com/arthur-debert/stencil/pkg/logging"
	"github.com/arthur-debert/stencil/pkg/materialize"
	"github.com/arthur-debert/stencil/pkg/paths"
	"github.com/arthur-debert/stencil/pkg/ui"
)

//go:embed topics
var topicsFS embed.FS

// globalOptions are the persistent flags shared by every command
type globalOptions struct {
	verbosity  int
	configFile string
	format     string
}

// reportedError marks an error that a renderer already showed to the user
type reportedError struct {
	err error
}

func (e *reportedError) Error() string { return e.err.Error() }
func (e *reportedError) Unwrap() error { return e.err }

// Reported reports whether err was already rendered by the failing command
func Reported(err error) bool {
	var re *reportedError
	return stderrors.As(err, &re)
}

// NewRootCmd creates and returns the root command
func NewRootCmd() *cobra.Command {
	// Initialize custom template formatting functions
	initTemplateFormatting()

	opts := &globalOptions{}

	rootCmd := &cobra.Command{
		Use:     "stencil",
		Short:   MsgRootShort,
		Long:    MsgRootLong,
		Version: version.Version,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			logging.SetupLogger(opts.verbosity)
			log.Debug().Str("command", cmd.Name()).Msg("Command started")
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			_ = cmd.Help()
			return fmt.Errorf(MsgErrNoCommand)
		},
		SilenceUsage:      true,
		SilenceErrors:     true,
		DisableAutoGenTag: true,
	}

	// Global flags
	rootCmd.PersistentFlags().CountVarP(&opts.verbosity, "verbose", "v", MsgFlagVerbose)
	rootCmd.PersistentFlags().StringVar(&opts.configFile, "config", "", MsgFlagConfig)
	rootCmd.PersistentFlags().StringVar(&opts.format, "format", "auto", MsgFlagFormat)

	rootCmd.AddGroup(&cobra.Group{
		ID:    "core",
		Title: "COMMANDS:",
	})
	rootCmd.AddGroup(&cobra.Group{
		ID:    "misc",
		Title: "MISC:",
	})

	rootCmd.SetUsageTemplate(MsgUsageTemplate)

	rootCmd.AddCommand(newNewCmd(opts))
	rootCmd.AddCommand(newInspectCmd(opts))
	rootCmd.AddCommand(newVersionCmd())
	rootCmd.AddCommand(newCompletionCmd())
	rootCmd.AddCommand(newManCmd())

	// Initialize topic-based help system
	topicsDir, err := fs.Sub(topicsFS, "topics")
	if err == nil {
		topicOpts := topics.Options{
			Extensions: []string{".md"},
			Renderer:   topics.RendererFunc(renderTopic),
		}
		if err := topics.InitializeWithOptions(rootCmd, topicsDir, topicOpts); err != nil {
			log.Warn().Err(err).Msg("help topics unavailable")
		}
	}
	rootCmd.SetHelpCommandGroupID("misc")

	return rootCmd
}

// renderTopic renders markdown topics with glamour on a terminal
func renderTopic(content, format string) string {
	if format != ".md" || !stdoutIsTerminal() {
		return content
	}
	return ui.NewMarkdownRenderer().Render(content)
}

// loadConfig reads the configuration from --config or the XDG location
func (o *globalOptions) loadConfig() (*config.Config, error) {
	file := o.configFile
	if file == "" {
		file = paths.ConfigFile()
	}
	cfg, err := config.LoadFrom(file)
	if err != nil {
		return nil, fmt.Errorf(MsgErrLoadConfig, err)
	}
	return cfg, nil
}

// renderer builds the renderer for --format writing to the command output
func (o *globalOptions) renderer(cmd *cobra.Command) (ui.Renderer, error) {
	format, err := ui.ParseFormat(o.format)
	if err != nil {
		return nil, fmt.Errorf(MsgErrParseFormat, err)
	}
	return ui.NewRenderer(format, cmd.OutOrStdout())
}

// fail renders err on the command error stream and marks it as reported
func (o *globalOptions) fail(cmd *cobra.Command, err error) error {
	format, perr := ui.ParseFormat(o.format)
	if perr != nil {
		return err
	}
	r, rerr := ui.NewRenderer(format, cmd.ErrOrStderr())
	if rerr != nil {
		return err
	}
	if rerr := r.RenderError(err); rerr != nil {
		return err
	}
	return &reportedError{err: err}
}

func newNewCmd(g *globalOptions) *cobra.Command {
	var (
		output  string
		sets    []string
		noInput bool
		noHooks bool
	)

	cmd := &cobra.Command{
		Use:     "new SOURCE",
		Short:   MsgNewShort,
		Long:    MsgNewLong,
		Example: MsgNewExample,
		GroupID: "core",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			renderer, err := g.renderer(cmd)
			if err != nil {
				return err
			}
			cfg, err := g.loadConfig()
			if err != nil {
				return g.fail(cmd, err)
			}
			if noHooks {
				cfg.Hooks.Enabled = false
			}

			overrides, err := collect.ParseAssignments(sets)
			if err != nil {
				return g.fail(cmd, fmt.Errorf(MsgErrParseOverride, err))
			}

			absOutput, err := filepath.Abs(output)
			if err != nil {
				return g.fail(cmd, err)
			}

			var collector collect.Collector = collect.Defaults{}
			if !noInput {
				if collect.Interactive(os.Stdin) {
					collector = collect.NewPrompt()
				} else {
					log.Info().Msg(MsgNoInputNotice)
				}
			}

			m := materialize.New(materialize.Options{
				Source:    args[0],
				Output:    absOutput,
				Overrides: overrides,
				Collector: collector,
				Config:    cfg,
			})
			res, err := m.Run(cmd.Context())
			if err != nil {
				return g.fail(cmd, err)
			}
			return renderer.RenderResult(reportFromResult(res))
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", ".", MsgFlagOutput)
	cmd.Flags().StringArrayVar(&sets, "set", nil, MsgFlagSet)
	cmd.Flags().BoolVar(&noInput, "no-input", false, MsgFlagNoInput)
	cmd.Flags().BoolVar(&noHooks, "no-hooks", false, MsgFlagNoHooks)

	return cmd
}

func newInspectCmd(g *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:     "inspect SOURCE",
		Short:   MsgInspectShort,
		Long:    MsgInspectLong,
		Example: MsgInspectExample,
		GroupID: "core",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			renderer, err := g.renderer(cmd)
			if err != nil {
				return err
			}
			cfg, err := g.loadConfig()
			if err != nil {
				return g.fail(cmd, err)
			}

			m := materialize.New(materialize.Options{Source: args[0], Config: cfg})
			in, err := m.Inspect(cmd.Context())
			if err != nil {
				return g.fail(cmd, err)
			}
			return renderer.RenderResult(infoFromInspection(in, cfg))
		},
	}
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "version",
		Short:   MsgVersionShort,
		Long:    MsgVersionLong,
		GroupID: "misc",
		Args:    cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), MsgVersionFormat, version.Version, version.Commit, version.Date)
		},
	}
}

func newCompletionCmd() *cobra.Command {
	return &cobra.Command{
		Use:                   "completion [bash|zsh|fish|powershell]",
		Short:                 MsgCompletionShort,
		Long:                  MsgCompletionLong,
		DisableFlagsInUseLine: true,
		ValidArgs:             []string{"bash", "zsh", "fish", "powershell"},
		Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		GroupID:               "misc",
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			switch args[0] {
			case "bash":
				return cmd.Root().GenBashCompletionV2(out, true)
			case "zsh":
				return cmd.Root().GenZshCompletion(out)
			case "fish":
				return cmd.Root().GenFishCompletion(out, true)
			case "powershell":
				return cmd.Root().GenPowerShellCompletionWithDesc(out)
			}
			return nil
		},
	}
}

func newManCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "man DIR",
		Short:   MsgManShort,
		Long:    MsgManLong,
		GroupID: "misc",
		Hidden:  true,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := args[0]
			if err := os.MkdirAll(dir, 0755); err != nil {
				return fmt.Errorf(MsgErrCreateManDir, dir, err)
			}
			header := &doc.GenManHeader{
				Title:   "STENCIL",
				Section: "1",
				Source:  "stencil " + version.Version,
				Manual:  "stencil manual",
			}
			if err := doc.GenManTree(cmd.Root(), header, dir); err != nil {
				return fmt.Errorf(MsgErrGenerateMan, err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), MsgManWritten+"\n", dir)
			return nil
		},
	}
}
