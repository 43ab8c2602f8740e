package preview

import (
	"io/fs"

	"github.com/goliatone/go-preview/pkg/controls"
	"github.com/goliatone/go-preview/pkg/render"
)

// EmbeddedTemplates exposes the built-in email templates so callers can copy
// or override them without importing the render package directly.
func EmbeddedTemplates() fs.FS {
	return render.TemplatesFS()
}

// ControlSchemas exposes the built-in control schemas, one `<step>.json` file
// per step type.
func ControlSchemas() fs.FS {
	return controls.SchemasFS()
}
