package preview

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	theme "github.com/goliatone/go-theme"

	"github.com/goliatone/go-preview/pkg/controls"
	"github.com/goliatone/go-preview/pkg/issues"
	"github.com/goliatone/go-preview/pkg/render"
)

const emailDocument = `{"type":"doc","content":[
	{"type":"paragraph","content":[
		{"type":"text","text":"Hello "},
		{"type":"variable","attrs":{"id":"payload.name","fallback":"should be the fallback value"}}
	]},
	{"type":"for","attrs":{"each":"payload.food.items"},"content":[
		{"type":"bulletList","content":[
			{"type":"listItem","content":[{"type":"paragraph","content":[
				{"type":"payloadValue","attrs":{"id":"name"}}
			]}]}
		]}
	]},
	{"type":"paragraph","attrs":{"show":"payload.isPaid"},"content":[{"type":"text","text":"Thanks for paying"}]}
]}`

func newService(t *testing.T, opts ...Option) *Service {
	t.Helper()
	opts = append([]Option{WithIDGenerator(func() string { return "fixed-id" })}, opts...)
	return New(opts...)
}

func TestGenerate_InAppMissingRequiredControl(t *testing.T) {
	t.Parallel()

	resp, err := newService(t).Generate(context.Background(), Request{
		StepType:      "in_app",
		ControlValues: map[string]any{"subject": "Hi {{payload.name}}"},
	})
	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	if resp.RequestID != "fixed-id" || resp.Result.Type != controls.StepInApp {
		t.Fatalf("unexpected envelope: %+v", resp)
	}
	if got := resp.Result.Preview["body"]; got != render.MissingControlValue {
		t.Fatalf("body = %v, want %s", got, render.MissingControlValue)
	}
	if got := resp.Result.Preview["subject"]; got != "Hi {{payload.name}}" {
		t.Fatalf("subject = %v", got)
	}
	if !resp.Issues.Has("body", issues.MissingValue) {
		t.Fatalf("expected body missing value issue, got %v", resp.Issues)
	}
	if !resp.Issues.Has("subject", issues.MissingVariableInPayload) {
		t.Fatalf("expected subject payload issue, got %v", resp.Issues)
	}
	want := map[string]any{"payload": map[string]any{"name": ""}}
	if diff := cmp.Diff(want, resp.PreviewPayloadExample); diff != "" {
		t.Fatalf("payload example mismatch (-want +got):\n%s", diff)
	}
}

func TestGenerate_InAppWithPayload(t *testing.T) {
	t.Parallel()

	resp, err := newService(t).Generate(context.Background(), Request{
		RequestID: "req-1",
		StepType:  "in-app",
		ControlValues: map[string]any{
			"subject": "Order {{payload.order.id}}",
			"body":    "Total {{payload.order.total}}",
			"primaryAction": map[string]any{
				"label":    "Open",
				"redirect": map[string]any{"url": "https://example.com/{{payload.order.id}}"},
			},
		},
		PayloadValues: map[string]any{"payload": map[string]any{
			"order": map[string]any{"id": "A-1", "total": float64(42)},
		}},
	})
	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	want := map[string]any{
		"subject": "Order A-1",
		"body":    "Total 42",
		"primaryAction": map[string]any{
			"label":    "Open",
			"redirect": map[string]any{"url": "https://example.com/A-1"},
		},
	}
	if diff := cmp.Diff(want, resp.Result.Preview); diff != "" {
		t.Fatalf("preview mismatch (-want +got):\n%s", diff)
	}
	if resp.RequestID != "req-1" {
		t.Fatalf("request id not kept: %s", resp.RequestID)
	}
	if resp.Issues.Len() != 0 {
		t.Fatalf("expected no issues, got %v", resp.Issues)
	}
}

func TestGenerate_EmailWithPayload(t *testing.T) {
	t.Parallel()

	resp, err := newService(t).Generate(context.Background(), Request{
		StepType: "email",
		ControlValues: map[string]any{
			"subject":     "Hello {{payload.name}}",
			"emailEditor": emailDocument,
		},
		PayloadValues: map[string]any{"payload": map[string]any{
			"isPaid": "true",
			"food": map[string]any{"items": []any{
				map[string]any{"name": "ball is round"},
				map[string]any{"name": "square is square"},
			}},
		}},
	})
	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	body, _ := resp.Result.Preview["body"].(string)
	for _, want := range []string{"ball is round", "square is square", "should be the fallback value", "Thanks for paying"} {
		if !strings.Contains(body, want) {
			t.Fatalf("expected %q in body:\n%s", want, body)
		}
	}
	for _, unwanted := range []string{"{{item.name}}1", "{{item.name}}2"} {
		if strings.Contains(body, unwanted) {
			t.Fatalf("mock row %q leaked into body:\n%s", unwanted, body)
		}
	}
	// The subject fragment merges after the editor fragment and leaves
	// payload.name blank, so the text control keeps its placeholder.
	if got := resp.Result.Preview["subject"]; got != "Hello {{payload.name}}" {
		t.Fatalf("subject = %v", got)
	}
}

func TestGenerate_EmailWithoutPayloadUsesMockRows(t *testing.T) {
	t.Parallel()

	resp, err := newService(t).Generate(context.Background(), Request{
		StepType:      "email",
		ControlValues: map[string]any{"emailEditor": emailDocument},
	})
	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	body, _ := resp.Result.Preview["body"].(string)
	for _, want := range []string{"{{item.name}}1", "{{item.name}}2", "Thanks for paying"} {
		if !strings.Contains(body, want) {
			t.Fatalf("expected %q in body:\n%s", want, body)
		}
	}
	if got := resp.Result.Preview["subject"]; got != render.MissingControlValue {
		t.Fatalf("subject = %v, want missing marker", got)
	}
	if !resp.Issues.Has("subject", issues.MissingValue) {
		t.Fatalf("expected subject issue, got %v", resp.Issues)
	}
	if !resp.Issues.Has("emailEditor", issues.MissingVariableInPayload) {
		t.Fatalf("expected payload issues for the editor, got %v", resp.Issues)
	}
}

func TestGenerate_SchemaOverride(t *testing.T) {
	t.Parallel()

	resp, err := newService(t).Generate(context.Background(), Request{
		StepType:      "sms",
		ControlValues: map[string]any{},
		ControlSchema: map[string]any{
			"type":       "object",
			"required":   []any{"body"},
			"properties": map[string]any{"body": map[string]any{"type": "string", "default": "Hi {{payload.name}}"}},
		},
	})
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if got := resp.Result.Preview["body"]; got != "Hi {{payload.name}}" {
		t.Fatalf("expected schema default rendered, got %v", got)
	}
	if !resp.Issues.Has("body", issues.MissingValue) {
		t.Fatalf("expected defaulted control still reported, got %v", resp.Issues)
	}
}

func TestGenerate_ThemedEmail(t *testing.T) {
	t.Parallel()

	selector := &stubThemeSelector{selection: &theme.Selection{
		Theme:    "acme",
		Manifest: &theme.Manifest{Name: "acme", Tokens: map[string]string{"brand": "#123456"}},
	}}
	svc := newService(t, WithThemeSelector(selector, "acme", ""))

	resp, err := svc.Generate(context.Background(), Request{
		StepType: "email",
		ControlValues: map[string]any{
			"subject":     "Hi",
			"emailEditor": `{"type":"doc","content":[{"type":"paragraph","content":[{"type":"text","text":"x"}]}]}`,
		},
	})
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if body := resp.Result.Preview["body"].(string); !strings.Contains(body, "--brand: #123456") {
		t.Fatalf("expected theme vars in body:\n%s", body)
	}
}

func TestGenerate_Errors(t *testing.T) {
	t.Parallel()

	svc := newService(t)
	if _, err := svc.Generate(context.Background(), Request{StepType: "fax"}); !errors.Is(err, controls.ErrUnknownStepType) {
		t.Fatalf("expected ErrUnknownStepType, got %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := svc.Generate(ctx, Request{StepType: "sms"}); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}

	_, err := svc.Generate(context.Background(), Request{
		StepType:      "sms",
		ControlSchema: map[string]any{"type": "object", "properties": "nope"},
	})
	if !errors.Is(err, controls.ErrInvalidSchema) {
		t.Fatalf("expected ErrInvalidSchema, got %v", err)
	}

	empty := New(WithRegistry(render.NewRegistry()))
	if _, err := empty.Generate(context.Background(), Request{StepType: "sms"}); !errors.Is(err, render.ErrRendererNotFound) {
		t.Fatalf("expected ErrRendererNotFound, got %v", err)
	}
}

type stubThemeSelector struct {
	selection *theme.Selection
}

func (s *stubThemeSelector) Select(string, string, ...theme.QueryOption) (*theme.Selection, error) {
	return s.selection, nil
}
