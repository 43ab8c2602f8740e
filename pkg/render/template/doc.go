// Package template defines the template engine seam used by the preview
// renderers. Implementations live in subpackages; gotemplate wraps pongo2.
package template
