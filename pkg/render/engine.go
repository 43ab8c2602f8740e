package render

import (
	"embed"
	"fmt"
	"io/fs"

	gotemplate "github.com/goliatone/go-preview/pkg/render/template/gotemplate"
)

//go:embed templates/*.html templates/nodes/*.html
var embeddedTemplates embed.FS

// TemplatesFS exposes the built-in email templates: `email.html` for the
// document wrapper and `nodes/<type>.html` per editor node type.
func TemplatesFS() fs.FS {
	sub, err := fs.Sub(embeddedTemplates, "templates")
	if err != nil {
		return embeddedTemplates
	}
	return sub
}

// BannedTags are the pongo2 tags that read files or load other templates.
// The renderers never need them.
var BannedTags = []string{"ssi", "include", "import", "extends", "macro"}

// NewEngine builds the pongo2 engine the renderers share, with BannedTags
// disabled. Template sources passed in opts take precedence over the embedded
// templates.
func NewEngine(opts ...gotemplate.Option) (*gotemplate.Engine, error) {
	all := append([]gotemplate.Option{
		gotemplate.WithName("preview"),
		gotemplate.WithBannedTags(BannedTags...),
	}, opts...)
	all = append(all, gotemplate.WithFS(TemplatesFS()))
	engine, err := gotemplate.New(all...)
	if err != nil {
		return nil, fmt.Errorf("render: configure template engine: %w", err)
	}
	return engine, nil
}
