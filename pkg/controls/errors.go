package controls

import "errors"

var (
	// ErrUnknownStepType reports a step type without a control schema.
	ErrUnknownStepType = errors.New("controls: unknown step type")
	// ErrInvalidSchema reports a control schema that cannot be decoded.
	ErrInvalidSchema = errors.New("controls: invalid control schema")
)
