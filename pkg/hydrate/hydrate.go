// Package hydrate resolves a serialized editor document against an example
// payload. Hydration returns the document with payload references filled in
// plus the payload fragment the document needs, so callers can both render the
// document and learn which variables it depends on.
package hydrate

import (
	"fmt"
	"strings"

	"github.com/goliatone/go-preview/pkg/document"
	"github.com/goliatone/go-preview/pkg/expand"
	"github.com/goliatone/go-preview/pkg/paths"
	"github.com/goliatone/go-preview/pkg/placeholder"
)

// Kind distinguishes hydrated documents from input that is not a document.
type Kind int

const (
	// KindNotDocument means the input was plain text or malformed JSON.
	KindNotDocument Kind = iota
	// KindDocument means the input parsed into a document tree.
	KindDocument
)

func (k Kind) String() string {
	switch k {
	case KindDocument:
		return "document"
	default:
		return "not-document"
	}
}

// Result is the outcome of a hydration attempt.
type Result struct {
	Kind     Kind
	Document *document.Node
	// Payload is the nested payload fragment referenced by the document.
	Payload map[string]any
	// Err explains why the input was not treated as a document.
	Err error
}

// IsDocument reports whether hydration produced a document.
func (r Result) IsDocument() bool { return r.Kind == KindDocument }

// Hydrator resolves a raw control value against a master payload. It never
// fails: input that cannot be hydrated yields a KindNotDocument result.
type Hydrator interface {
	Hydrate(raw string, master map[string]any) Result
}

// HydratorFunc adapts a function to the Hydrator interface.
type HydratorFunc func(raw string, master map[string]any) Result

// Hydrate implements Hydrator.
func (fn HydratorFunc) Hydrate(raw string, master map[string]any) Result {
	return fn(raw, master)
}

// MockRows is the number of rows synthesized for an unresolved each path.
const MockRows = 2

// DefaultExcludedPrefixes name variable roots resolved from another context;
// they are never recorded in the payload fragment.
var DefaultExcludedPrefixes = []string{"subscriber", "actor"}

// Option configures a MailyHydrator.
type Option func(*MailyHydrator)

// WithExcludedPrefixes overrides the variable prefixes left out of the payload
// fragment.
func WithExcludedPrefixes(prefixes ...string) Option {
	return func(h *MailyHydrator) {
		h.excluded = append([]string(nil), prefixes...)
	}
}

// WithMockRows overrides the number of synthesized rows for unresolved lists.
func WithMockRows(n int) Option {
	return func(h *MailyHydrator) {
		if n > 0 {
			h.mockRows = n
		}
	}
}

// MailyHydrator hydrates documents produced by the Maily/TipTap email editor.
type MailyHydrator struct {
	excluded []string
	mockRows int
}

// NewMailyHydrator constructs a hydrator with the supplied options.
func NewMailyHydrator(opts ...Option) *MailyHydrator {
	h := &MailyHydrator{
		excluded: append([]string(nil), DefaultExcludedPrefixes...),
		mockRows: MockRows,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(h)
		}
	}
	return h
}

// Hydrate implements Hydrator.
func (h *MailyHydrator) Hydrate(raw string, master map[string]any) Result {
	root, err := document.Parse(raw)
	if err != nil {
		return Result{Kind: KindNotDocument, Err: err}
	}

	state := &hydration{hydrator: h, master: master, fragment: make(map[string]any)}
	state.visit(root)
	return Result{Kind: KindDocument, Document: root, Payload: state.fragment}
}

type hydration struct {
	hydrator *MailyHydrator
	master   map[string]any
	fragment map[string]any
}

func (s *hydration) visit(node *document.Node) {
	if node == nil {
		return
	}

	switch {
	case node.Type == document.TypeVariable:
		s.variable(node)
		return
	case node.HasEach():
		s.each(node)
	}
	if node.HasShow() {
		s.show(node)
	}

	for _, child := range node.Content {
		s.visit(child)
	}
}

// variable rewrites an editor variable into a text node.
func (s *hydration) variable(node *document.Node) {
	id := strings.TrimSpace(node.StringAttr(document.AttrID))
	if id == "" {
		return
	}

	value, found := paths.Lookup(s.master, id)
	var text string
	switch {
	case found && value != nil && expand.Stringify(value) != "":
		text = expand.Stringify(value)
		s.record(id, value)
	default:
		text = "{{" + id + "}}"
		if fallback := node.StringAttr(document.AttrFallback); fallback != "" {
			text = fallback
		}
		s.record(id, text)
	}

	node.Type = document.TypeText
	node.Text = text
	node.Attrs = nil
	node.Content = nil
}

// each replaces a string each path with the referenced array, or with mock
// rows when the payload does not provide one.
func (s *hydration) each(node *document.Node) {
	raw, _ := node.Attr(document.AttrEach)
	path, ok := raw.(string)
	if !ok {
		return
	}
	path = strings.TrimSpace(path)
	if path == "" {
		return
	}

	if value, found := paths.Lookup(s.master, path); found {
		switch value.(type) {
		case []any, []map[string]any:
			node.SetAttr(document.AttrEach, value)
			s.record(path, paths.Clone(value))
			return
		}
	}

	rows := s.mockRows(node)
	node.SetAttr(document.AttrEach, rows)
	s.record(path, paths.Clone(rows))
}

func (s *hydration) mockRows(node *document.Node) []any {
	var ids []string
	for _, child := range node.Content {
		document.Walk(child, func(n *document.Node) bool {
			if n.IsVariable() {
				if id := strings.TrimSpace(n.StringAttr(document.AttrID)); id != "" {
					ids = append(ids, id)
				}
			}
			return true
		})
	}
	ids = placeholder.Unique(ids)

	rows := make([]any, 0, s.hydrator.mockRows)
	for i := 1; i <= s.hydrator.mockRows; i++ {
		row := make(map[string]any, len(ids))
		for _, id := range ids {
			paths.Set(row, id, fmt.Sprintf("{{item.%s}}%d", id, i))
		}
		rows = append(rows, row)
	}
	return rows
}

// show resolves a show path. Boolean literals are left for the expander;
// unresolved paths default to visible.
func (s *hydration) show(node *document.Node) {
	raw, _ := node.Attr(document.AttrShow)
	path, ok := raw.(string)
	if !ok {
		return
	}
	path = strings.TrimSpace(path)
	if path == "" || strings.EqualFold(path, "true") || strings.EqualFold(path, "false") {
		return
	}

	if value, found := paths.Lookup(s.master, path); found && value != nil {
		node.SetAttr(document.AttrShow, value)
		s.record(path, value)
		return
	}
	node.SetAttr(document.AttrShow, true)
	s.record(path, true)
}

func (s *hydration) record(path string, value any) {
	if placeholder.HasPrefix(path, s.hydrator.excluded...) {
		return
	}
	paths.Set(s.fragment, path, value)
}
