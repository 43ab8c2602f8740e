package render

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/goliatone/go-preview/pkg/expand"
	"github.com/goliatone/go-preview/pkg/hydrate"
)

// MissingControlValue replaces the output of a required control the caller
// left empty.
const MissingControlValue = "PREVIEW_ISSUE:REQUIRED_CONTROL_VALUE_IS_MISSING"

// Email control and output keys.
const (
	ControlSubject     = "subject"
	ControlEmailEditor = "emailEditor"
	OutputSubject      = "subject"
	OutputBody         = "body"
)

// ControlsOutput renders every string control of a step through the text
// renderer, walking nested objects and arrays. Nil controls, the marker for
// a required control without a value, become MissingControlValue.
type ControlsOutput struct {
	name string
	text *TextRenderer
}

// NewControlsOutput builds the generic step renderer registered under name.
func NewControlsOutput(name string, text *TextRenderer) *ControlsOutput {
	return &ControlsOutput{name: name, text: text}
}

// Name implements Renderer.
func (r *ControlsOutput) Name() string { return r.name }

// Render implements Renderer.
func (r *ControlsOutput) Render(ctx context.Context, in Input) (map[string]any, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	out := make(map[string]any, len(in.ControlValues))
	for key, value := range in.ControlValues {
		out[key] = r.renderValue(value, in.Payload)
	}
	return out, nil
}

func (r *ControlsOutput) renderValue(value any, payload map[string]any) any {
	switch typed := value.(type) {
	case nil:
		return MissingControlValue
	case string:
		return r.text.Render(typed, payload)
	case map[string]any:
		out := make(map[string]any, len(typed))
		for key, item := range typed {
			out[key] = r.renderValue(item, payload)
		}
		return out
	case []any:
		out := make([]any, len(typed))
		for i, item := range typed {
			if item == nil {
				continue
			}
			out[i] = r.renderValue(item, payload)
		}
		return out
	default:
		return value
	}
}

// EmailOutputOption configures an EmailOutput.
type EmailOutputOption func(*EmailOutput)

// WithHydrator overrides the document hydrator.
func WithHydrator(h hydrate.Hydrator) EmailOutputOption {
	return func(r *EmailOutput) {
		if h != nil {
			r.hydrator = h
		}
	}
}

// WithOutputLogger sets the logger.
func WithOutputLogger(logger *zap.Logger) EmailOutputOption {
	return func(r *EmailOutput) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// EmailOutput renders the email step: the subject through the text renderer
// and the editor document through hydration, directive expansion and the
// HTML renderer. The output is `{subject, body}`.
type EmailOutput struct {
	text     *TextRenderer
	email    *EmailRenderer
	hydrator hydrate.Hydrator
	expander *expand.Transformer
	logger   *zap.Logger
}

// NewEmailOutput builds the email step renderer.
func NewEmailOutput(text *TextRenderer, email *EmailRenderer, opts ...EmailOutputOption) *EmailOutput {
	r := &EmailOutput{
		text:     text,
		email:    email,
		hydrator: hydrate.NewMailyHydrator(),
		expander: expand.New(),
		logger:   zap.NewNop(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(r)
		}
	}
	return r
}

// Name implements Renderer.
func (r *EmailOutput) Name() string { return "email" }

// Render implements Renderer.
func (r *EmailOutput) Render(ctx context.Context, in Input) (map[string]any, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	out := map[string]any{
		OutputSubject: MissingControlValue,
		OutputBody:    MissingControlValue,
	}
	if subject, ok := in.ControlValues[ControlSubject].(string); ok {
		out[OutputSubject] = r.text.Render(subject, in.Payload)
	}

	raw, ok := in.ControlValues[ControlEmailEditor].(string)
	if !ok {
		return out, nil
	}
	body, err := r.renderBody(ctx, raw, in.Payload)
	if err != nil {
		return nil, err
	}
	out[OutputBody] = body
	return out, nil
}

func (r *EmailOutput) renderBody(ctx context.Context, raw string, payload map[string]any) (string, error) {
	result := r.hydrator.Hydrate(raw, payload)
	if !result.IsDocument() {
		r.logger.Debug("email editor is not a document, rendering as text", zap.Error(result.Err))
		return r.text.Render(raw, payload), nil
	}

	expanded, err := r.expander.Expand(result.Document)
	if err != nil {
		// Failed splices leave their directive in place; render the rest.
		var indexErr *expand.IndexError
		if errors.As(err, &indexErr) {
			r.logger.Warn("email directive expansion incomplete",
				zap.String("node", indexErr.NodeType),
				zap.Int("index", indexErr.Index),
				zap.Error(err),
			)
		} else {
			r.logger.Warn("email directive expansion incomplete", zap.Error(err))
		}
	}
	return r.email.Render(ctx, expanded)
}

// DefaultRegistry registers the email renderer and the generic controls
// renderer for every other step name.
func DefaultRegistry(text *TextRenderer, email *EmailRenderer, steps []string, opts ...EmailOutputOption) (*Registry, error) {
	registry := NewRegistry()
	if err := registry.Register(NewEmailOutput(text, email, opts...)); err != nil {
		return nil, err
	}
	for _, step := range steps {
		if registry.Has(step) {
			continue
		}
		if err := registry.Register(NewControlsOutput(step, text)); err != nil {
			return nil, err
		}
	}
	return registry, nil
}
