// Package document models the rich-text editor tree carried by email style
// controls. Nodes are plain owned values: there are no parent pointers, callers
// that need to restructure the tree pass the parent's content slice and the
// child index explicitly.
package document

import (
	"github.com/goliatone/go-preview/pkg/paths"
)

// Node types the preview engine understands. Unknown types are preserved and
// rendered through their children.
const (
	TypeDoc            = "doc"
	TypeText           = "text"
	TypeParagraph      = "paragraph"
	TypeHeading        = "heading"
	TypeOrderedList    = "orderedList"
	TypeBulletList     = "bulletList"
	TypeListItem       = "listItem"
	TypeVariable       = "variable"
	TypePayloadValue   = "payloadValue"
	TypeFor            = "for"
	TypeSection        = "section"
	TypeImage          = "image"
	TypeButton         = "button"
	TypeHorizontalRule = "horizontalRule"
	TypeSpacer         = "spacer"
	TypeHardBreak      = "hardBreak"
)

// Attribute keys carrying directives and references.
const (
	AttrShow     = "show"
	AttrEach     = "each"
	AttrID       = "id"
	AttrFallback = "fallback"
)

// Mark is an inline formatting tag attached to a text node.
type Mark struct {
	Type  string         `json:"type"`
	Attrs map[string]any `json:"attrs,omitempty"`
}

// Node is one element of the document tree.
type Node struct {
	Type    string         `json:"type,omitempty"`
	Attrs   map[string]any `json:"attrs,omitempty"`
	Content []*Node        `json:"content,omitempty"`
	Text    string         `json:"text,omitempty"`
	Marks   []Mark         `json:"marks,omitempty"`

	// Extra keeps unknown JSON members so a parse/serialize cycle is lossless.
	Extra map[string]any `json:"-"`
}

// HasShow reports whether the node carries a show directive.
func (n *Node) HasShow() bool {
	if n == nil || n.Attrs == nil {
		return false
	}
	_, ok := n.Attrs[AttrShow]
	return ok
}

// HasEach reports whether the node carries an each directive.
func (n *Node) HasEach() bool {
	if n == nil || n.Attrs == nil {
		return false
	}
	_, ok := n.Attrs[AttrEach]
	return ok
}

// IsVariable reports whether the node is a payload reference inside an each
// template.
func (n *Node) IsVariable() bool {
	if n == nil || n.Type != TypePayloadValue || n.Attrs == nil {
		return false
	}
	id, ok := n.Attrs[AttrID]
	return ok && id != nil
}

// IsListContainer reports whether the node wraps list items.
func (n *Node) IsListContainer() bool {
	return n != nil && (n.Type == TypeOrderedList || n.Type == TypeBulletList)
}

// Attr returns the attribute value stored under key.
func (n *Node) Attr(key string) (any, bool) {
	if n == nil || n.Attrs == nil {
		return nil, false
	}
	v, ok := n.Attrs[key]
	return v, ok
}

// StringAttr returns the attribute as a string when it holds one.
func (n *Node) StringAttr(key string) string {
	v, _ := n.Attr(key)
	s, _ := v.(string)
	return s
}

// SetAttr writes an attribute, allocating the map on first use.
func (n *Node) SetAttr(key string, value any) {
	if n.Attrs == nil {
		n.Attrs = make(map[string]any)
	}
	n.Attrs[key] = value
}

// DeleteAttr removes an attribute. Removing the last attribute leaves an
// empty, non-nil map so callers can tell "had attrs" from "never had".
func (n *Node) DeleteAttr(key string) {
	if n == nil || n.Attrs == nil {
		return
	}
	delete(n.Attrs, key)
}

// Clone returns a deep copy of the node and its descendants.
func (n *Node) Clone() *Node {
	if n == nil {
		return nil
	}
	out := &Node{
		Type:  n.Type,
		Attrs: paths.CloneMap(n.Attrs),
		Text:  n.Text,
		Extra: paths.CloneMap(n.Extra),
	}
	if n.Content != nil {
		out.Content = CloneAll(n.Content)
	}
	if n.Marks != nil {
		out.Marks = make([]Mark, len(n.Marks))
		for i, mark := range n.Marks {
			out.Marks[i] = Mark{Type: mark.Type, Attrs: paths.CloneMap(mark.Attrs)}
		}
	}
	return out
}

// CloneAll deep copies a slice of nodes.
func CloneAll(nodes []*Node) []*Node {
	if nodes == nil {
		return nil
	}
	out := make([]*Node, len(nodes))
	for i, node := range nodes {
		out[i] = node.Clone()
	}
	return out
}

// Walk visits n and its descendants depth first, parents before children.
// Returning false from fn skips the node's children.
func Walk(n *Node, fn func(*Node) bool) {
	if n == nil {
		return
	}
	if !fn(n) {
		return
	}
	for _, child := range n.Content {
		Walk(child, fn)
	}
}

// NewText builds a text node.
func NewText(text string) *Node {
	return &Node{Type: TypeText, Text: text}
}
