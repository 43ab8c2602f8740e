package hydrate

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-preview/pkg/document"
)

const forDoc = `{"type":"doc","content":[
	{"type":"for","attrs":{"each":"payload.food.items"},"content":[
		{"type":"paragraph","content":[
			{"type":"payloadValue","attrs":{"id":"name"}},
			{"type":"payloadValue","attrs":{"id":"origin.country"}}
		]}
	]}
]}`

func emptyMaster() map[string]any {
	return map[string]any{"payload": map[string]any{}, "subscriber": map[string]any{}, "steps": map[string]any{}}
}

func TestHydrateRejectsText(t *testing.T) {
	t.Parallel()

	for _, raw := range []string{"Hello {{payload.name}}", "{not json", `{"content":[]}`} {
		result := NewMailyHydrator().Hydrate(raw, emptyMaster())
		if result.IsDocument() || result.Err == nil {
			t.Fatalf("expected %q to be reported as not a document, got %+v", raw, result)
		}
	}
}

func TestHydrateVariables(t *testing.T) {
	t.Parallel()

	raw := `{"type":"doc","content":[{"type":"paragraph","content":[
		{"type":"variable","attrs":{"id":"payload.name"}},
		{"type":"variable","attrs":{"id":"payload.missing"}},
		{"type":"variable","attrs":{"id":"payload.other","fallback":"should be the fallback value"}},
		{"type":"variable","attrs":{"id":"subscriber.firstName"}}
	]}]}`
	master := map[string]any{"payload": map[string]any{"name": "Bob"}}

	result := NewMailyHydrator().Hydrate(raw, master)
	if !result.IsDocument() {
		t.Fatalf("expected document, got %v", result.Err)
	}

	var got []string
	for _, node := range result.Document.Content[0].Content {
		if node.Type != document.TypeText || node.Attrs != nil {
			t.Fatalf("variable not rewritten: %+v", node)
		}
		got = append(got, node.Text)
	}
	want := []string{"Bob", "{{payload.missing}}", "should be the fallback value", "{{subscriber.firstName}}"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("text mismatch (-want +got):\n%s", diff)
	}

	wantPayload := map[string]any{"payload": map[string]any{
		"name":    "Bob",
		"missing": "{{payload.missing}}",
		"other":   "should be the fallback value",
	}}
	if diff := cmp.Diff(wantPayload, result.Payload); diff != "" {
		t.Fatalf("payload mismatch (-want +got):\n%s", diff)
	}
}

func TestHydrateEachWithoutPayloadBuildsMockRows(t *testing.T) {
	t.Parallel()

	result := NewMailyHydrator().Hydrate(forDoc, emptyMaster())
	if !result.IsDocument() {
		t.Fatalf("expected document, got %v", result.Err)
	}

	wantRows := []any{
		map[string]any{"name": "{{item.name}}1", "origin": map[string]any{"country": "{{item.origin.country}}1"}},
		map[string]any{"name": "{{item.name}}2", "origin": map[string]any{"country": "{{item.origin.country}}2"}},
	}
	each, _ := result.Document.Content[0].Attr(document.AttrEach)
	if diff := cmp.Diff(wantRows, each); diff != "" {
		t.Fatalf("mock rows mismatch (-want +got):\n%s", diff)
	}

	wantPayload := map[string]any{"payload": map[string]any{"food": map[string]any{"items": wantRows}}}
	if diff := cmp.Diff(wantPayload, result.Payload); diff != "" {
		t.Fatalf("payload mismatch (-want +got):\n%s", diff)
	}
}

func TestHydrateEachUsesPayloadArray(t *testing.T) {
	t.Parallel()

	items := []any{map[string]any{"name": "ball is round"}, map[string]any{"name": "square is square"}}
	master := map[string]any{"payload": map[string]any{"food": map[string]any{"items": items}}}

	result := NewMailyHydrator(WithMockRows(5)).Hydrate(forDoc, master)
	each, _ := result.Document.Content[0].Attr(document.AttrEach)
	if diff := cmp.Diff(items, each); diff != "" {
		t.Fatalf("each mismatch (-want +got):\n%s", diff)
	}
}

func TestHydrateEachNonArrayFallsBackToMock(t *testing.T) {
	t.Parallel()

	master := map[string]any{"payload": map[string]any{"food": map[string]any{"items": "nope"}}}
	result := NewMailyHydrator(WithMockRows(3)).Hydrate(forDoc, master)
	each, _ := result.Document.Content[0].Attr(document.AttrEach)
	rows, ok := each.([]any)
	if !ok || len(rows) != 3 {
		t.Fatalf("expected 3 mock rows, got %#v", each)
	}
}

func TestHydrateShow(t *testing.T) {
	t.Parallel()

	raw := `{"type":"doc","content":[
		{"type":"paragraph","attrs":{"show":"payload.params.isPayedUser"}},
		{"type":"paragraph","attrs":{"show":"payload.params.unknown"}},
		{"type":"paragraph","attrs":{"show":"false"}},
		{"type":"paragraph","attrs":{"show":true}}
	]}`
	master := map[string]any{"payload": map[string]any{"params": map[string]any{"isPayedUser": "false"}}}

	result := NewMailyHydrator().Hydrate(raw, master)
	var got []any
	for _, node := range result.Document.Content {
		value, _ := node.Attr(document.AttrShow)
		got = append(got, value)
	}
	want := []any{"false", true, "false", true}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("show values mismatch (-want +got):\n%s", diff)
	}

	wantPayload := map[string]any{"payload": map[string]any{"params": map[string]any{
		"isPayedUser": "false",
		"unknown":     true,
	}}}
	if diff := cmp.Diff(wantPayload, result.Payload); diff != "" {
		t.Fatalf("payload mismatch (-want +got):\n%s", diff)
	}
}

func TestExcludedPrefixes(t *testing.T) {
	t.Parallel()

	raw := `{"type":"doc","content":[{"type":"variable","attrs":{"id":"tenant.name"}},{"type":"variable","attrs":{"id":"subscriber.email"}}]}`
	result := NewMailyHydrator(WithExcludedPrefixes("tenant")).Hydrate(raw, nil)
	if _, ok := result.Payload["tenant"]; ok {
		t.Fatalf("excluded prefix recorded: %v", result.Payload)
	}
	if _, ok := result.Payload["subscriber"]; !ok {
		t.Fatalf("overriding prefixes should record subscriber variables: %v", result.Payload)
	}
	if !strings.Contains(result.Document.Content[0].Text, "tenant.name") {
		t.Fatalf("unexpected text %q", result.Document.Content[0].Text)
	}
}

func TestHydratorFunc(t *testing.T) {
	t.Parallel()

	var h Hydrator = HydratorFunc(func(raw string, _ map[string]any) Result {
		return Result{Kind: KindDocument, Payload: map[string]any{"raw": raw}}
	})
	result := h.Hydrate("x", nil)
	if !result.IsDocument() || result.Payload["raw"] != "x" || result.Kind.String() != "document" {
		t.Fatalf("unexpected result %+v", result)
	}
}
