// Package resolver computes variable bindings from manifest defaults.
//
// Defaults may be template expressions referencing other variables. Rather
// than building a dependency graph, Resolve re-evaluates every expression
// default in passes until a pass changes nothing or the pass budget of
// 2×max(N,1) runs out. A dependency chain of depth N settles within budget
// since every pass extends substitution by at least one level. Cycles never
// error; they stop changing or freeze when the budget is spent.
package resolver

import (
	"github.com/arthur-debert/stencil/pkg/logging"
	"github.com/arthur-debert/stencil/pkg/render"
	"github.com/arthur-debert/stencil/pkg/types"
)

// Stats describes one resolution run
type Stats struct {
	Passes    int
	Budget    int
	Converged bool
}

// Option configures a resolution run
type Option func(*options)

type options struct {
	pinned map[string]bool
}

// WithPinned keeps the initial bindings of names as they are. Pinned
// variables are never re-evaluated, which is how explicit user answers win
// over expression defaults while still feeding the expressions that use them.
func WithPinned(names ...string) Option {
	return func(o *options) {
		for _, n := range names {
			o.pinned[n] = true
		}
	}
}

// Resolve returns the bindings obtained by evaluating specs on top of initial.
// Rendered expression defaults of boolean and integer variables are converted
// to that kind when the text parses. initial is not modified. Names in initial that no spec declares are carried
// through untouched.
func Resolve(specs []types.VariableSpec, initial types.Bindings, r render.Renderer, opts ...Option) (types.Bindings, Stats) {
	logger := logging.GetLogger("resolver")

	o := options{pinned: make(map[string]bool)}
	for _, opt := range opts {
		opt(&o)
	}

	bindings := initial.Clone()
	if bindings == nil {
		bindings = types.Bindings{}
	}

	var expressions []types.VariableSpec
	for _, spec := range specs {
		if o.pinned[spec.Name] {
			continue
		}
		if spec.IsExpression() {
			expressions = append(expressions, spec)
			continue
		}
		if _, bound := bindings[spec.Name]; bound {
			continue
		}
		if spec.HasDefault() {
			bindings[spec.Name] = spec.Default
		} else {
			bindings[spec.Name] = spec.ZeroValue()
		}
	}

	stats := Stats{Budget: 2 * max(len(specs), 1)}
	for stats.Passes < stats.Budget {
		stats.Passes++
		changed := false

		for _, spec := range expressions {
			literal := spec.Default.(string)
			var value any
			text, err := r.RenderString(spec.Name, literal, bindings)
			if err != nil {
				logger.Trace().
					Str("variable", spec.Name).
					Int("pass", stats.Passes).
					Err(err).
					Msg("default not renderable yet, keeping literal")
				value = literal
			} else {
				value = spec.FromRendered(text)
			}

			current, bound := bindings[spec.Name]
			if !bound || !types.ValuesEqual(current, value) {
				bindings[spec.Name] = value
				changed = true
			}
		}

		if !changed {
			stats.Converged = true
			break
		}
	}

	if stats.Converged {
		logger.Debug().
			Int("variables", len(specs)).
			Int("passes", stats.Passes).
			Msg("variables resolved")
	} else {
		logger.Warn().
			Int("variables", len(specs)).
			Int("budget", stats.Budget).
			Msg("variable defaults did not converge, keeping last values")
	}

	return bindings, stats
}
