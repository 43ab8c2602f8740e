package render

import (
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func newTextRenderer(t *testing.T) *TextRenderer {
	t.Helper()
	r, err := NewText()
	if err != nil {
		t.Fatalf("new text renderer: %v", err)
	}
	return r
}

func TestTextRenderer_SubstitutesEveryDelimiterStyle(t *testing.T) {
	t.Parallel()

	r := newTextRenderer(t)
	payload := map[string]any{
		"payload": map[string]any{"name": "Ada", "count": float64(3)},
	}

	cases := []struct {
		raw  string
		want string
	}{
		{raw: "Hi {{payload.name}}", want: "Hi Ada"},
		{raw: "Hi {{ payload.name }}", want: "Hi Ada"},
		{raw: "Hi {{{payload.name}}}", want: "Hi Ada"},
		{raw: "Hi {#payload.name#}", want: "Hi Ada"},
		{raw: "{{payload.name}} has {{payload.count}}", want: "Ada has 3"},
		{raw: "no placeholders here", want: "no placeholders here"},
	}
	for _, tc := range cases {
		if got := r.Render(tc.raw, payload); got != tc.want {
			t.Fatalf("Render(%q) = %q, want %q", tc.raw, got, tc.want)
		}
	}
}

func TestTextRenderer_KeepsUnresolvedPlaceholders(t *testing.T) {
	t.Parallel()

	r := newTextRenderer(t)
	payload := map[string]any{
		"payload": map[string]any{"empty": "", "nothing": nil},
	}

	got := r.Render("a={{payload.missing}} b={{payload.empty}} c={{payload.nothing}}", payload)
	want := "a={{payload.missing}} b={{payload.empty}} c={{payload.nothing}}"
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("render mismatch (-want +got):\n%s", diff)
	}
}

func TestTextRenderer_DoesNotEscapeHTML(t *testing.T) {
	t.Parallel()

	r := newTextRenderer(t)
	payload := map[string]any{"payload": map[string]any{"link": `<a href="/x">go & see</a>`}}

	got := r.Render("{{payload.link}}", payload)
	if got != `<a href="/x">go & see</a>` {
		t.Fatalf("expected raw markup, got %q", got)
	}
}

func TestTextRenderer_ResolvesExactDottedKeys(t *testing.T) {
	t.Parallel()

	r := newTextRenderer(t)
	payload := map[string]any{"payload.name": "flat"}

	if got := r.Render("{{payload.name}}", payload); got != "flat" {
		t.Fatalf("expected exact key lookup, got %q", got)
	}
	if _, ok := payload["payload"]; ok {
		t.Fatalf("render must not mutate the caller payload")
	}
}

type failingEngine struct{}

func (failingEngine) Render(string, any, ...io.Writer) (string, error) {
	return "", errors.New("engine down")
}

func (failingEngine) RenderTemplate(string, any, ...io.Writer) (string, error) {
	return "", errors.New("engine down")
}

func (failingEngine) RenderString(string, any, ...io.Writer) (string, error) {
	return "", errors.New("engine down")
}

func (failingEngine) RegisterFilter(string, func(any, any) (any, error)) error { return nil }

func (failingEngine) GlobalContext(any) error { return nil }

func TestTextRenderer_ReturnsRawOnEngineError(t *testing.T) {
	t.Parallel()

	r, err := NewText(WithTextEngine(failingEngine{}))
	if err != nil {
		t.Fatalf("new text renderer: %v", err)
	}
	raw := "Hi {{payload.name}}"
	if got := r.Render(raw, map[string]any{}); got != raw {
		t.Fatalf("expected raw control on failure, got %q", got)
	}
}

func TestTextRenderer_PrintsTemplateTagsLiterally(t *testing.T) {
	t.Parallel()

	secret := filepath.Join(t.TempDir(), "secret.txt")
	if err := os.WriteFile(secret, []byte("top-secret"), 0o600); err != nil {
		t.Fatalf("write secret: %v", err)
	}

	r := newTextRenderer(t)
	payload := map[string]any{"payload": map[string]any{"name": "Ada"}}

	cases := []struct {
		raw  string
		want string
	}{
		{
			raw:  `Hi {% ssi "` + secret + `" %} {{payload.name}}`,
			want: `Hi {% ssi "` + secret + `" %} Ada`,
		},
		{
			raw:  `{% include "` + secret + `" %}{{payload.name}}`,
			want: `{% include "` + secret + `" %}Ada`,
		},
		{
			raw:  `{% if true %}yes{% endif %} {{payload.name}}`,
			want: `{% if true %}yes{% endif %} Ada`,
		},
		{
			raw:  `{# comment #} {{ }} {{payload.name}} }}`,
			want: `{{comment}} {{ }} Ada }}`,
		},
		{
			raw:  `{% ssi "` + secret + `" %}`,
			want: `{% ssi "` + secret + `" %}`,
		},
	}
	for _, tc := range cases {
		got := r.Render(tc.raw, payload)
		if got != tc.want {
			t.Fatalf("Render(%q) = %q, want %q", tc.raw, got, tc.want)
		}
		if strings.Contains(got, "top-secret") {
			t.Fatalf("file contents leaked into %q", got)
		}
	}
}

func TestTextRenderer_KeepsOversizedIndexPlaceholder(t *testing.T) {
	t.Parallel()

	r := newTextRenderer(t)
	payload := map[string]any{"payload": map[string]any{"items": []any{"a"}}}

	got := r.Render("{{payload.items[0]}} {{payload.items[9999999999]}}", payload)
	if want := "a {{payload.items[9999999999]}}"; got != want {
		t.Fatalf("Render() = %q, want %q", got, want)
	}
}

func TestTextRenderer_DoesNotShareNestedValues(t *testing.T) {
	t.Parallel()

	r := newTextRenderer(t)
	inner := map[string]any{"name": "Ada"}
	payload := map[string]any{"payload": inner}

	_ = r.Render("{{payload}} {{payload.missing}}", payload)
	if _, ok := inner["missing"]; ok {
		t.Fatalf("placeholder written into caller map")
	}
}

func TestNewEngineBansFileTags(t *testing.T) {
	t.Parallel()

	engine, err := NewEngine()
	if err != nil {
		t.Fatalf("new engine: %v", err)
	}
	for _, tag := range BannedTags {
		src := "{% " + tag + ` "email.html" %}`
		if _, err := engine.RenderString(src, nil); err == nil {
			t.Fatalf("expected %s to be banned", tag)
		}
	}
}
