// Package expand resolves the structural directives of a document tree:
// `show` keeps or drops a node, `each` repeats a node's children once per row
// and splices the result into the parent in place of the directive node.
//
// The walk is depth first with children processed before their parent. Content
// spliced in by an `each` expansion is not walked again in the same pass, so
// directives nested inside an each template only get per-row variable
// substitution. The tree is mutated in place; callers own it for the duration
// of the call.
package expand

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/goliatone/go-preview/pkg/document"
	"github.com/goliatone/go-preview/pkg/paths"
)

// Transformer expands show/each directives.
type Transformer struct{}

// New constructs a Transformer.
func New() *Transformer { return &Transformer{} }

// Expand is a convenience wrapper around New().Expand.
func Expand(root *document.Node) (*document.Node, error) {
	return New().Expand(root)
}

// Expand resolves every directive reachable from root and returns root. Nodes
// whose splice fails are left in place and reported through the returned error
// (see IndexError); the rest of the tree is still expanded.
func (t *Transformer) Expand(root *document.Node) (*document.Node, error) {
	if root == nil {
		return nil, nil
	}
	var errs []error
	t.visit(root, nil, 0, &errs)
	return root, errors.Join(errs...)
}

// visit processes node sitting at siblings[idx] and returns how many entries
// now occupy that slot: 0 when the node was removed, 1 when it stayed, or the
// number of spliced nodes after an each expansion.
func (t *Transformer) visit(node *document.Node, siblings *[]*document.Node, idx int, errs *[]error) int {
	if node == nil {
		return 1
	}

	for i := 0; i < len(node.Content); {
		i += t.visit(node.Content[i], &node.Content, i, errs)
	}

	if node.HasShow() {
		return t.resolveShow(node, siblings, idx, errs)
	} else if node.HasEach() {
		return t.resolveEach(node, siblings, idx, errs)
	}
	return 1
}

func (t *Transformer) resolveShow(node *document.Node, siblings *[]*document.Node, idx int, errs *[]error) int {
	value, _ := node.Attr(document.AttrShow)
	if ShouldShow(value) {
		node.DeleteAttr(document.AttrShow)
		return 1
	}
	if siblings == nil {
		return 1
	}
	if err := splice(siblings, idx, node, nil); err != nil {
		*errs = append(*errs, err)
		return 1
	}
	return 0
}

func (t *Transformer) resolveEach(node *document.Node, siblings *[]*document.Node, idx int, errs *[]error) int {
	value, _ := node.Attr(document.AttrEach)
	expanded := expandRows(Rows(value), node.Content)
	node.Content = expanded
	if siblings == nil {
		return 1
	}
	if err := splice(siblings, idx, node, expanded); err != nil {
		*errs = append(*errs, err)
		return 1
	}
	return len(expanded)
}

// splice replaces (*siblings)[idx] with replacement. The slot must still hold
// node; anything else means the caller's index drifted.
func splice(siblings *[]*document.Node, idx int, node *document.Node, replacement []*document.Node) error {
	content := *siblings
	if idx < 0 || idx >= len(content) || content[idx] != node {
		return &IndexError{NodeType: node.Type, Index: idx, Len: len(content)}
	}

	out := make([]*document.Node, 0, len(content)-1+len(replacement))
	out = append(out, content[:idx]...)
	out = append(out, replacement...)
	out = append(out, content[idx+1:]...)
	*siblings = out
	return nil
}

// ShouldShow evaluates a show attribute: booleans are used as-is, strings are
// true only when they equal "true" ignoring case, anything else is false.
func ShouldShow(value any) bool {
	switch typed := value.(type) {
	case bool:
		return typed
	case string:
		return strings.EqualFold(typed, "true")
	default:
		return false
	}
}

// Rows converts an each attribute into row objects. Non-array values yield no
// rows; array entries that are not objects become empty rows.
func Rows(value any) []map[string]any {
	switch typed := value.(type) {
	case []map[string]any:
		return typed
	case []any:
		rows := make([]map[string]any, 0, len(typed))
		for _, item := range typed {
			row, _ := item.(map[string]any)
			rows = append(rows, row)
		}
		return rows
	default:
		return nil
	}
}

// expandRows builds the per-row copies of template. A template made of a
// single list container repeats the list items and keeps one list wrapper.
func expandRows(rows []map[string]any, template []*document.Node) []*document.Node {
	if len(template) == 1 && template[0].IsListContainer() && template[0].Content != nil {
		items := template[0].Content
		wrapper := template[0].Clone()
		wrapper.Content = repeat(rows, items)
		return []*document.Node{wrapper}
	}
	return repeat(rows, template)
}

func repeat(rows []map[string]any, template []*document.Node) []*document.Node {
	out := make([]*document.Node, 0, len(rows)*len(template))
	for _, row := range rows {
		out = append(out, substitute(template, row)...)
	}
	return out
}

// substitute clones nodes, replacing resolvable variable nodes with text
// nodes holding the row value.
func substitute(nodes []*document.Node, row map[string]any) []*document.Node {
	out := make([]*document.Node, 0, len(nodes))
	for _, node := range nodes {
		if node == nil {
			continue
		}
		clone := node.Clone()
		if clone.IsVariable() {
			if value, ok := resolve(row, clone.StringAttr(document.AttrID)); ok {
				clone.Type = document.TypeText
				clone.Text = Stringify(value)
				clone.Attrs = nil
				clone.Content = nil
			}
		} else if node.Content != nil {
			clone.Content = substitute(node.Content, row)
		}
		out = append(out, clone)
	}
	return out
}

func resolve(row map[string]any, id string) (any, bool) {
	value, ok := paths.Lookup(row, id)
	if !ok {
		return nil, false
	}
	switch typed := value.(type) {
	case nil:
		return nil, false
	case string:
		return typed, typed != ""
	case bool:
		return typed, typed
	default:
		return value, true
	}
}

// Stringify renders a payload value as text.
func Stringify(value any) string {
	switch typed := value.(type) {
	case nil:
		return ""
	case string:
		return typed
	case float64:
		return strconv.FormatFloat(typed, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(typed), 'f', -1, 32)
	default:
		return fmt.Sprint(value)
	}
}
