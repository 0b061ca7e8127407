package render

import (
	"bytes"
	"reflect"
	"strings"
	"text/template"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/arthur-debert/stencil/pkg/slug"
	"github.com/arthur-debert/stencil/pkg/types"
)

const missingKeyOption = "missingkey=error"

// Renderer renders a single expression string against bindings
type Renderer interface {
	RenderString(name, src string, data types.Bindings) (string, error)
}

// Engine renders expressions with the stencil helper functions
type Engine struct {
	funcs template.FuncMap
}

// NewEngine creates an engine with the default helper functions
func NewEngine() *Engine {
	return &Engine{funcs: DefaultFuncs()}
}

// WithFuncs returns a copy of the engine with extra helper functions.
// Entries in extra replace defaults of the same name.
func (e *Engine) WithFuncs(extra template.FuncMap) *Engine {
	funcs := make(template.FuncMap, len(e.funcs)+len(extra))
	for k, v := range e.funcs {
		funcs[k] = v
	}
	for k, v := range extra {
		funcs[k] = v
	}
	return &Engine{funcs: funcs}
}

// RenderString parses src as a template and executes it against data
func (e *Engine) RenderString(name, src string, data types.Bindings) (string, error) {
	if !strings.Contains(src, types.ExpressionDelimiter) {
		return src, nil
	}

	tmpl, err := e.newTemplate(name).Parse(src)
	if err != nil {
		return "", err
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, map[string]any(data)); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// NewArena creates an empty template arena sharing this engine's helpers
func (e *Engine) NewArena() *Arena {
	return newArena(e.newTemplate(arenaRootName))
}

func (e *Engine) newTemplate(name string) *template.Template {
	return template.New(name).Funcs(e.funcs).Option(missingKeyOption)
}

// DefaultFuncs returns the helper functions available to every expression
func DefaultFuncs() template.FuncMap {
	titler := cases.Title(language.Und)
	return template.FuncMap{
		"slugify": slug.Normalize,
		"lower":   strings.ToLower,
		"upper":   strings.ToUpper,
		"title":   titler.String,
		"trim":    strings.TrimSpace,
		"replace": func(old, new, s string) string {
			return strings.ReplaceAll(s, old, new)
		},
		"default": func(def, v any) any {
			if isEmpty(v) {
				return def
			}
			return v
		},
	}
}

func isEmpty(v any) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.String, reflect.Slice, reflect.Map, reflect.Array:
		return rv.Len() == 0
	case reflect.Bool:
		return !rv.Bool()
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return rv.Int() == 0
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return rv.Uint() == 0
	case reflect.Float32, reflect.Float64:
		return rv.Float() == 0
	case reflect.Ptr, reflect.Interface:
		return rv.IsNil()
	}
	return false
}
