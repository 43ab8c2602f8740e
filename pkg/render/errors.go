package render

import "errors"

var (
	// ErrNilDocument is returned when the email renderer receives no document.
	ErrNilDocument = errors.New("render: document is nil")
	// ErrRendererNotFound is returned by Registry.Get for unknown names.
	ErrRendererNotFound = errors.New("render: renderer not found")
)
