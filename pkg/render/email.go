package render

import (
	"context"
	"fmt"
	"html"
	"strconv"
	"strings"

	theme "github.com/goliatone/go-theme"
	"github.com/microcosm-cc/bluemonday"
	"go.uber.org/zap"

	"github.com/goliatone/go-preview/pkg/document"
	"github.com/goliatone/go-preview/pkg/render/template"
)

// nodeTemplates lists node types with a template under nodes/. Other types
// render their children only.
var nodeTemplates = map[string]struct{}{
	document.TypeDoc:            {},
	document.TypeParagraph:      {},
	document.TypeHeading:        {},
	document.TypeOrderedList:    {},
	document.TypeBulletList:     {},
	document.TypeListItem:       {},
	document.TypeImage:          {},
	document.TypeButton:         {},
	document.TypeHorizontalRule: {},
	document.TypeSpacer:         {},
	document.TypeSection:        {},
	document.TypeHardBreak:      {},
}

// spacerHeights maps editor spacer sizes to pixels.
var spacerHeights = map[string]int{"sm": 8, "md": 16, "lg": 32, "xl": 64}

// EmailOption configures an EmailRenderer.
type EmailOption func(*EmailRenderer)

// WithEmailEngine overrides the template engine.
func WithEmailEngine(engine template.TemplateRenderer) EmailOption {
	return func(r *EmailRenderer) {
		if engine != nil {
			r.engine = engine
		}
	}
}

// WithPolicy overrides the sanitizer applied to rendered document markup.
func WithPolicy(policy *bluemonday.Policy) EmailOption {
	return func(r *EmailRenderer) {
		if policy != nil {
			r.policy = policy
		}
	}
}

// WithThemeSelector resolves theme tokens for the email wrapper. Empty names
// defer to the selector's defaults.
func WithThemeSelector(selector theme.ThemeSelector, name, variant string) EmailOption {
	return func(r *EmailRenderer) {
		r.selector = selector
		r.themeName = strings.TrimSpace(name)
		r.themeVariant = strings.TrimSpace(variant)
	}
}

// WithEmailLogger sets the logger.
func WithEmailLogger(logger *zap.Logger) EmailOption {
	return func(r *EmailRenderer) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// EmailRenderer renders an expanded editor document into an HTML email body.
type EmailRenderer struct {
	engine       template.TemplateRenderer
	policy       *bluemonday.Policy
	selector     theme.ThemeSelector
	themeName    string
	themeVariant string
	logger       *zap.Logger
}

// NewEmail constructs an EmailRenderer.
func NewEmail(opts ...EmailOption) (*EmailRenderer, error) {
	r := &EmailRenderer{
		policy: EmailPolicy(),
		logger: zap.NewNop(),
	}
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

// Render produces the full HTML document for root. The document markup is
// sanitized; the wrapper carries the theme CSS variables.
func (r *EmailRenderer) Render(ctx context.Context, root *document.Node) (string, error) {
	if root == nil {
		return "", ErrNilDocument
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}

	body, err := r.RenderBody(root)
	if err != nil {
		return "", err
	}

	themeCtx := r.resolveTheme()
	out, err := r.engine.RenderTemplate("email", map[string]any{
		"body":    body,
		"theme":   themeCtx.Name,
		"variant": themeCtx.Variant,
		"style":   themeCtx.Style(),
		"tokens":  themeCtx.Tokens,
	})
	if err != nil {
		return "", fmt.Errorf("render: email wrapper: %w", err)
	}
	return out, nil
}

// RenderBody renders and sanitizes the document markup without the wrapper.
func (r *EmailRenderer) RenderBody(root *document.Node) (string, error) {
	if root == nil {
		return "", ErrNilDocument
	}
	raw, err := r.renderNode(root)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(r.policy.Sanitize(raw)), nil
}

func (r *EmailRenderer) resolveTheme() ThemeContext {
	if r.selector == nil {
		return ThemeContext{}
	}
	selection, err := r.selector.Select(r.themeName, r.themeVariant)
	if err != nil {
		r.logger.Warn("theme selection failed, rendering without theme",
			zap.String("theme", r.themeName),
			zap.String("variant", r.themeVariant),
			zap.Error(err),
		)
		return ThemeContext{}
	}
	return themeFromSelection(selection)
}

func (r *EmailRenderer) renderNode(node *document.Node) (string, error) {
	if node == nil {
		return "", nil
	}

	switch node.Type {
	case document.TypeText:
		return renderText(node), nil
	case document.TypeVariable, document.TypePayloadValue:
		// Left unresolved by hydration and expansion; show the reference.
		return html.EscapeString("{{" + node.StringAttr(document.AttrID) + "}}"), nil
	}

	var children strings.Builder
	for _, child := range node.Content {
		rendered, err := r.renderNode(child)
		if err != nil {
			return "", err
		}
		children.WriteString(rendered)
	}

	if _, ok := nodeTemplates[node.Type]; !ok {
		return children.String(), nil
	}

	data := nodeData(node)
	data["children"] = children.String()
	out, err := r.engine.RenderTemplate("nodes/"+node.Type, data)
	if err != nil {
		return "", fmt.Errorf("render: %s node: %w", node.Type, err)
	}
	return out, nil
}

func nodeData(node *document.Node) map[string]any {
	attrs := node.Attrs
	if attrs == nil {
		attrs = map[string]any{}
	}
	data := map[string]any{
		"type":  node.Type,
		"attrs": attrs,
	}

	if align := firstString(attrs, "textAlign", "alignment"); align != "" {
		data["align"] = align
	}
	switch node.Type {
	case document.TypeHeading:
		level := intAttr(attrs["level"])
		if level < 1 || level > 6 {
			level = 1
		}
		data["level"] = level
	case document.TypeOrderedList:
		if start := intAttr(attrs["start"]); start > 1 {
			data["start"] = start
		}
	case document.TypeImage:
		if width := intAttr(attrs["width"]); width > 0 {
			data["width"] = width
		}
		if height := intAttr(attrs["height"]); height > 0 {
			data["height"] = height
		}
	case document.TypeSpacer:
		spacing, ok := spacerHeights[node.StringAttr("height")]
		if !ok {
			spacing = intAttr(attrs["height"])
		}
		if spacing <= 0 {
			spacing = spacerHeights["md"]
		}
		data["spacing"] = spacing
	}
	return data
}

// renderText escapes the text and wraps it in its marks, first mark
// outermost.
func renderText(node *document.Node) string {
	out := html.EscapeString(node.Text)
	for i := len(node.Marks) - 1; i >= 0; i-- {
		out = wrapMark(node.Marks[i], out)
	}
	return out
}

func wrapMark(mark document.Mark, inner string) string {
	switch mark.Type {
	case "bold":
		return "<strong>" + inner + "</strong>"
	case "italic":
		return "<em>" + inner + "</em>"
	case "underline":
		return "<u>" + inner + "</u>"
	case "strike":
		return "<s>" + inner + "</s>"
	case "code":
		return "<code>" + inner + "</code>"
	case "link":
		href, _ := mark.Attrs["href"].(string)
		if href == "" {
			return inner
		}
		return `<a href="` + html.EscapeString(href) + `">` + inner + "</a>"
	default:
		return inner
	}
}

func firstString(attrs map[string]any, keys ...string) string {
	for _, key := range keys {
		if value, ok := attrs[key].(string); ok && strings.TrimSpace(value) != "" {
			return strings.TrimSpace(value)
		}
	}
	return ""
}

func intAttr(value any) int {
	switch typed := value.(type) {
	case int:
		return typed
	case int64:
		return int(typed)
	case float64:
		return int(typed)
	case string:
		n, err := strconv.Atoi(strings.TrimSpace(strings.TrimSuffix(typed, "px")))
		if err != nil {
			return 0
		}
		return n
	default:
		return 0
	}
}
