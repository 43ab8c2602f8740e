package paths

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestParse(t *testing.T) {
	t.Parallel()

	got, err := Parse("food.items[0].name")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	want := []Segment{{Key: "food"}, {Key: "items"}, {Index: 0, IsIndex: true}, {Key: "name"}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("segments mismatch (-want +got):\n%s", diff)
	}

	for _, bad := range []string{"", "a..b", "a[x]", "a[-1]", "a[1", "a[0]b"} {
		if _, err := Parse(bad); err == nil {
			t.Fatalf("expected error for %q", bad)
		}
	}
}

func TestLookupExactKeyWins(t *testing.T) {
	t.Parallel()

	payload := map[string]any{
		"a.b": 1,
		"a":   map[string]any{"b": 2},
	}
	got, ok := Lookup(payload, "a.b")
	if !ok || got != 1 {
		t.Fatalf("expected exact key value 1, got %v (found=%v)", got, ok)
	}
}

func TestLookupTraversal(t *testing.T) {
	t.Parallel()

	payload := map[string]any{
		"food": map[string]any{
			"items": []any{
				map[string]any{"name": "ball"},
				map[string]any{"name": "square"},
			},
		},
		"labels": map[string]string{"en": "Hello"},
	}

	cases := []struct {
		path  string
		want  any
		found bool
	}{
		{path: "food.items[1].name", want: "square", found: true},
		{path: "food.items.0.name", want: "ball", found: true},
		{path: "labels.en", want: "Hello", found: true},
		{path: "food.items[2].name", found: false},
		{path: "food.items[x]", found: false},
		{path: "food.missing", found: false},
		{path: "food.items.name", found: false},
	}
	for _, tc := range cases {
		got, ok := Lookup(payload, tc.path)
		if ok != tc.found {
			t.Fatalf("%s: found=%v, want %v", tc.path, ok, tc.found)
		}
		if diff := cmp.Diff(tc.want, got); diff != "" {
			t.Fatalf("%s: value mismatch (-want +got):\n%s", tc.path, diff)
		}
	}
}

func TestFlatten(t *testing.T) {
	t.Parallel()

	input := map[string]any{
		"subject": "Hi {{payload.name}}",
		"primaryAction": map[string]any{
			"label": "{{payload.label}}",
			"redirect": map[string]any{
				"url": "https://example.com",
			},
		},
		"tags":  []any{"a", map[string]any{"k": "v"}},
		"empty": map[string]any{},
	}

	want := map[string]any{
		"subject":                    "Hi {{payload.name}}",
		"primaryAction.label":        "{{payload.label}}",
		"primaryAction.redirect.url": "https://example.com",
		"tags[0]":                    "a",
		"tags[1].k":                  "v",
	}
	if diff := cmp.Diff(want, Flatten(input)); diff != "" {
		t.Fatalf("flatten mismatch (-want +got):\n%s", diff)
	}
}

func TestUnflattenRoundTrip(t *testing.T) {
	t.Parallel()

	flat := map[string]any{
		"payload.name":             "",
		"payload.items[1].name":    "b",
		"payload.items[0].name":    "a",
		"payload.meta.origin.code": "SE",
	}
	want := map[string]any{
		"payload": map[string]any{
			"name": "",
			"items": []any{
				map[string]any{"name": "a"},
				map[string]any{"name": "b"},
			},
			"meta": map[string]any{
				"origin": map[string]any{"code": "SE"},
			},
		},
	}
	got := Unflatten(flat)
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("unflatten mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(flat, Flatten(got)); diff != "" {
		t.Fatalf("round trip mismatch (-want +got):\n%s", diff)
	}
}

func TestCollectKeysSkipsArrays(t *testing.T) {
	t.Parallel()

	obj := map[string]any{
		"payload": map[string]any{
			"name":  "",
			"items": []any{map[string]any{"name": "x"}},
		},
		"steps": map[string]any{},
	}
	want := []string{"payload.items", "payload.name"}
	if diff := cmp.Diff(want, CollectKeys(obj)); diff != "" {
		t.Fatalf("collect keys mismatch (-want +got):\n%s", diff)
	}
}

func TestMissing(t *testing.T) {
	t.Parallel()

	required := map[string]any{"payload": map[string]any{"name": "", "city": ""}}
	actual := map[string]any{"payload": map[string]any{"name": "Bob"}}

	if diff := cmp.Diff([]string{"payload.city"}, Missing(required, actual)); diff != "" {
		t.Fatalf("missing mismatch (-want +got):\n%s", diff)
	}
	if got := Missing(required, required); len(got) != 0 {
		t.Fatalf("expected no missing keys, got %v", got)
	}
}

func TestFlattenGrouped(t *testing.T) {
	t.Parallel()

	sources := map[string]map[string]any{
		"subject": {"payload": map[string]any{"name": ""}},
		"body":    {"payload": map[string]any{"name": "", "city": ""}},
	}
	want := map[string][]string{
		"payload.name": {"body", "subject"},
		"payload.city": {"body"},
	}
	if diff := cmp.Diff(want, FlattenGrouped(sources)); diff != "" {
		t.Fatalf("grouped mismatch (-want +got):\n%s", diff)
	}
}

func TestDeepMerge(t *testing.T) {
	t.Parallel()

	dst := map[string]any{
		"payload": map[string]any{
			"name":  "",
			"city":  "",
			"items": []any{map[string]any{"name": "{{item.name}}1", "id": "1"}},
		},
	}
	src := map[string]any{
		"payload": map[string]any{
			"name":  "Bob",
			"city":  nil,
			"items": []any{map[string]any{"name": "ball"}},
		},
	}

	want := map[string]any{
		"payload": map[string]any{
			"name":  "Bob",
			"city":  "",
			"items": []any{map[string]any{"name": "ball", "id": "1"}},
		},
	}
	got := DeepMerge(dst, src)
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("merge mismatch (-want +got):\n%s", diff)
	}

	if dst["payload"].(map[string]any)["name"] != "" {
		t.Fatalf("dst mutated")
	}
}

func TestSet(t *testing.T) {
	t.Parallel()

	target := map[string]any{"payload": map[string]any{"a": 1}}
	if !Set(target, "payload.list[1]", "x") {
		t.Fatalf("expected set to succeed")
	}
	want := map[string]any{"payload": map[string]any{"a": 1, "list": []any{nil, "x"}}}
	if diff := cmp.Diff(want, target); diff != "" {
		t.Fatalf("set mismatch (-want +got):\n%s", diff)
	}
	if Set(target, "[0]", "x") {
		t.Fatalf("expected leading index to be rejected")
	}
}

func TestSetRejectsIndexAboveMax(t *testing.T) {
	t.Parallel()

	target := map[string]any{}
	if Set(target, "payload.items[9999999999]", "x") {
		t.Fatalf("expected oversized index to be rejected")
	}
	if len(target) != 0 {
		t.Fatalf("target modified: %v", target)
	}

	if !Set(target, "payload.items[1000]", "x") {
		t.Fatalf("expected index at the limit to be accepted")
	}
	items := target["payload"].(map[string]any)["items"].([]any)
	if len(items) != MaxIndex+1 {
		t.Fatalf("unexpected length %d", len(items))
	}
}

func TestUnflattenKeepsOversizedIndexVerbatim(t *testing.T) {
	t.Parallel()

	got := Unflatten(map[string]any{
		"payload.items[20000000]": "",
		"payload.name":            "",
	})
	want := map[string]any{
		"payload.items[20000000]": "",
		"payload":                 map[string]any{"name": ""},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("unflatten mismatch (-want +got):\n%s", diff)
	}
}
