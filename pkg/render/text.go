// Package render turns reconciled control values into preview output: plain
// text controls go through the pongo2 engine, email editor documents are
// rendered to sanitized HTML.
package render

import (
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/goliatone/go-preview/pkg/expand"
	"github.com/goliatone/go-preview/pkg/paths"
	"github.com/goliatone/go-preview/pkg/placeholder"
	"github.com/goliatone/go-preview/pkg/render/template"
)

// TextOption configures a TextRenderer.
type TextOption func(*TextRenderer)

// WithTextEngine overrides the template engine.
func WithTextEngine(engine template.TemplateRenderer) TextOption {
	return func(r *TextRenderer) {
		if engine != nil {
			r.engine = engine
		}
	}
}

// WithTextLogger sets the logger used to report template failures.
func WithTextLogger(logger *zap.Logger) TextOption {
	return func(r *TextRenderer) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// TextRenderer substitutes payload values into text controls.
type TextRenderer struct {
	engine template.TemplateRenderer
	logger *zap.Logger
}

// NewText constructs a TextRenderer backed by the shared engine unless one is
// supplied.
func NewText(opts ...TextOption) (*TextRenderer, error) {
	r := &TextRenderer{logger: zap.NewNop()}
	for _, opt := range opts {
		if opt != nil {
			opt(r)
		}
	}
	if r.engine == nil {
		engine, err := NewEngine()
		if err != nil {
			return nil, err
		}
		r.engine = engine
	}
	return r, nil
}

// Render replaces every placeholder in raw with its payload value. Variables
// the payload does not resolve (missing, nil or empty) keep their placeholder
// text. Everything outside a placeholder, template tags included, is output
// literally and never evaluated. Output is not HTML escaped. When the engine
// fails the raw control is returned unchanged.
func (r *TextRenderer) Render(raw string, payload map[string]any) string {
	tokens := placeholder.Tokenize(raw)

	data := make(map[string]any)
	vars := make(map[string]string)
	var source strings.Builder
	source.WriteString("{% autoescape off %}")
	for _, token := range tokens {
		if token.Name == "" {
			source.WriteString(literalSource(token.Text))
			continue
		}
		key, ok := vars[token.Name]
		if !ok {
			key = "v" + strconv.Itoa(len(vars))
			vars[token.Name] = key
			data[key] = resolveText(payload, token.Name)
		}
		source.WriteString("{{ " + key + " }}")
	}
	source.WriteString("{% endautoescape %}")

	if len(vars) == 0 {
		return raw
	}

	out, err := r.engine.RenderString(source.String(), data)
	if err != nil {
		r.logger.Debug("text render failed, returning raw control",
			zap.Error(err),
			zap.Int("placeholders", len(vars)),
		)
		return raw
	}
	return out
}

// resolveText returns the value printed for name: its payload value, or the
// `{{name}}` placeholder when the payload does not resolve it.
func resolveText(payload map[string]any, name string) any {
	value, ok := paths.Lookup(payload, name)
	switch {
	case !ok || isBlank(value):
		return "{{" + name + "}}"
	case isScalar(value):
		return expand.Stringify(value)
	default:
		return paths.Clone(value)
	}
}

// literalSource emits text so the engine prints it verbatim. Every opening
// brace is written as a string literal, which leaves no tag, variable or
// comment delimiter in the source.
func literalSource(text string) string {
	return strings.ReplaceAll(text, "{", `{{ "{" }}`)
}

// isScalar reports values the engine would format itself; they are
// stringified up front so numbers print without a fixed precision.
func isScalar(value any) bool {
	switch value.(type) {
	case map[string]any, []any, []map[string]any:
		return false
	default:
		return true
	}
}

func isBlank(value any) bool {
	switch typed := value.(type) {
	case nil:
		return true
	case string:
		return typed == ""
	default:
		return false
	}
}
