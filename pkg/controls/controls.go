// Package controls fills control values with schema defaults and reports the
// required controls a caller left empty.
package controls

import (
	"context"
	"fmt"

	"github.com/getkin/kin-openapi/openapi3"
	"go.uber.org/zap"

	"github.com/goliatone/go-preview/internal/jsonschema/defaults"
	"github.com/goliatone/go-preview/pkg/issues"
	"github.com/goliatone/go-preview/pkg/paths"
)

// DefaultsExtractor turns a JSON Schema into a nested default-value object.
// Required properties without a default appear with a nil value.
type DefaultsExtractor interface {
	Defaults(ctx context.Context, schema []byte) (map[string]any, error)
}

// ExtractorFunc adapts a function to DefaultsExtractor.
type ExtractorFunc func(ctx context.Context, schema []byte) (map[string]any, error)

// Defaults implements DefaultsExtractor.
func (fn ExtractorFunc) Defaults(ctx context.Context, schema []byte) (map[string]any, error) {
	return fn(ctx, schema)
}

// SchemaExtractor is the built-in extractor backed by kin-openapi.
type SchemaExtractor struct{}

// Defaults implements DefaultsExtractor.
func (SchemaExtractor) Defaults(ctx context.Context, schema []byte) (map[string]any, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	parsed, err := parseSchema(schema)
	if err != nil {
		return nil, err
	}
	return defaults.Extract(parsed), nil
}

func parseSchema(data []byte) (*openapi3.Schema, error) {
	schema, err := defaults.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSchema, err)
	}
	return schema, nil
}

// Result holds the control values with defaults applied and the issues for
// required controls that are still missing.
type Result struct {
	AugmentedControlValues map[string]any
	Defaults               map[string]any
	Issues                 issues.Record
}

// Missing reports whether key carries a missing-value issue.
func (r Result) Missing(key string) bool {
	return r.Issues.Has(key, issues.MissingValue)
}

// Option configures a Validator.
type Option func(*Validator)

// WithExtractor overrides the defaults extractor.
func WithExtractor(extractor DefaultsExtractor) Option {
	return func(v *Validator) {
		if extractor != nil {
			v.extractor = extractor
		}
	}
}

// WithLogger sets the logger used for debug traces.
func WithLogger(logger *zap.Logger) Option {
	return func(v *Validator) {
		if logger != nil {
			v.logger = logger
		}
	}
}

// Validator merges schema defaults into control values.
type Validator struct {
	extractor DefaultsExtractor
	logger    *zap.Logger
}

// NewValidator constructs a Validator.
func NewValidator(opts ...Option) *Validator {
	v := &Validator{
		extractor: SchemaExtractor{},
		logger:    zap.NewNop(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(v)
		}
	}
	return v
}

// Validate applies the schema defaults under controlValues (caller values
// win) and emits one MISSING_VALUE issue per default path the caller did not
// supply. The error return only covers an unusable schema or a cancelled
// context; missing values are issues.
func (v *Validator) Validate(ctx context.Context, schema []byte, controlValues map[string]any) (Result, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	defaultValues, err := v.extractor.Defaults(ctx, schema)
	if err != nil {
		return Result{}, fmt.Errorf("controls: extract defaults: %w", err)
	}
	if defaultValues == nil {
		defaultValues = map[string]any{}
	}

	record := make(issues.Record)
	for _, key := range paths.Missing(defaultValues, controlValues) {
		record.Add(key, issues.MissingValueIssue())
	}

	v.logger.Debug("control values validated",
		zap.Int("defaults", len(defaultValues)),
		zap.Int("missing", record.Len()),
	)

	return Result{
		AugmentedControlValues: paths.DeepMerge(defaultValues, controlValues),
		Defaults:               defaultValues,
		Issues:                 record,
	}, nil
}

// ValidateStep validates controlValues against the built-in schema of step.
func (v *Validator) ValidateStep(ctx context.Context, step StepType, controlValues map[string]any) (Result, error) {
	schema, err := SchemaFor(step)
	if err != nil {
		return Result{}, err
	}
	return v.Validate(ctx, schema, controlValues)
}
