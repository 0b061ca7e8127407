package collect

import (
	"context"
	"os"

	"github.com/mattn/go-isatty"
	"github.com/pterm/pterm"

	"github.com/arthur-debert/stencil/pkg/errors"
	"github.com/arthur-debert/stencil/pkg/logging"
	"github.com/arthur-debert/stencil/pkg/types"
)

// Prompter asks single questions
type Prompter interface {
	Text(question, def string) (string, error)
	Confirm(question string, def bool) (bool, error)
	Select(question string, options []string, def string) (string, error)
}

// Prompt asks the user for every variable
type Prompt struct {
	Prompter Prompter
}

// NewPrompt returns a Prompt collector asking on the terminal
func NewPrompt() *Prompt {
	return &Prompt{Prompter: PtermPrompter{}}
}

// Interactive reports whether f is a terminal a user can answer from
func Interactive(f *os.File) bool {
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// Collect implements Collector
func (p *Prompt) Collect(ctx context.Context, specs []types.VariableSpec, current types.Bindings) (types.Bindings, error) {
	logger := logging.GetLogger("collect.prompt")
	answers := make(types.Bindings, len(specs))

	for _, spec := range specs {
		if err := ctx.Err(); err != nil {
			return nil, errors.Wrap(err, errors.ErrCollect, "collection interrupted")
		}

		question := spec.Prompt
		if question == "" {
			question = spec.Name
		}
		def, ok := current[spec.Name]
		if !ok {
			def = spec.ZeroValue()
		}

		v, err := p.ask(spec, question, def)
		if err != nil {
			return nil, err
		}
		logger.Debug().Str("variable", spec.Name).Interface("value", v).Msg("collected answer")
		answers[spec.Name] = v
	}
	return answers, nil
}

func (p *Prompt) ask(spec types.VariableSpec, question string, def any) (any, error) {
	wrap := func(err error) error {
		return errors.Wrapf(err, errors.ErrCollect, "failed to read answer for %s", spec.Name).
			WithDetail("variable", spec.Name)
	}

	switch spec.Kind {
	case types.KindBoolean:
		b, _ := def.(bool)
		answer, err := p.Prompter.Confirm(question, b)
		if err != nil {
			return nil, wrap(err)
		}
		return answer, nil

	case types.KindEnumeration:
		labels := make([]string, len(spec.Choices))
		for i, c := range spec.Choices {
			labels[i] = spec.Label(c)
		}
		defLabel := ""
		if s, ok := def.(string); ok {
			defLabel = spec.Label(s)
		}
		answer, err := p.Prompter.Select(question, labels, defLabel)
		if err != nil {
			return nil, wrap(err)
		}
		return Coerce(spec, answer)

	default:
		answer, err := p.Prompter.Text(question, FormatValue(def))
		if err != nil {
			return nil, wrap(err)
		}
		return Coerce(spec, answer)
	}
}

// PtermPrompter asks questions with pterm's interactive printers
type PtermPrompter struct{}

// Text implements Prompter
func (PtermPrompter) Text(question, def string) (string, error) {
	return pterm.DefaultInteractiveTextInput.
		WithDefaultValue(def).
		Show(question)
}

// Confirm implements Prompter
func (PtermPrompter) Confirm(question string, def bool) (bool, error) {
	return pterm.DefaultInteractiveConfirm.
		WithDefaultValue(def).
		Show(question)
}

// Select implements Prompter
func (PtermPrompter) Select(question string, options []string, def string) (string, error) {
	sel := pterm.DefaultInteractiveSelect.WithOptions(options)
	if def != "" {
		sel = sel.WithDefaultOption(def)
	}
	return sel.Show(question)
}
