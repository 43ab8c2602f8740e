package render

import (
	"context"
)

// Input carries what a step renderer needs: control values with schema
// defaults applied and the reconciled payload (payload, subscriber, steps).
type Input struct {
	ControlValues map[string]any
	Payload       map[string]any
}

// Renderer turns the controls of one step type into preview outputs keyed by
// control name.
type Renderer interface {
	Name() string
	Render(ctx context.Context, in Input) (map[string]any, error)
}
