// Package preview coordinates a step preview: it reconciles the example
// payload with the placeholders the controls reference, fills control
// defaults from the step schema, renders every control and returns the
// outputs with the merged issue record.
//
// Missing data never fails a preview. Generate only returns an error for an
// unknown step type, an unusable schema override or a cancelled context.
package preview
