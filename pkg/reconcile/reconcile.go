// Package reconcile builds the preview payload for a step: it synthesizes a
// default payload from every control value, lays the caller's example payload
// over it, and reports the variables the example payload still lacks.
package reconcile

import (
	"sort"

	"go.uber.org/zap"

	"github.com/goliatone/go-preview/pkg/issues"
	"github.com/goliatone/go-preview/pkg/paths"
	"github.com/goliatone/go-preview/pkg/synth"
)

// Synthesizer produces the payload fragment one flattened control needs.
type Synthesizer interface {
	Synthesize(controlValues map[string]any, key string) map[string]any
}

// Result carries the merged payload and the missing-variable issues keyed by
// flattened control key.
type Result struct {
	AugmentedPayload map[string]any
	// Defaults is the aggregate synthesized payload before the example
	// payload was applied.
	Defaults map[string]any
	Issues   issues.Record
}

// Option configures a Reconciler.
type Option func(*Reconciler)

// WithSynthesizer overrides the payload synthesizer.
func WithSynthesizer(s Synthesizer) Option {
	return func(r *Reconciler) {
		if s != nil {
			r.synth = s
		}
	}
}

// WithLogger sets the logger used for debug traces.
func WithLogger(logger *zap.Logger) Option {
	return func(r *Reconciler) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// Reconciler merges synthesized defaults with example payloads.
type Reconciler struct {
	synth  Synthesizer
	logger *zap.Logger
}

// New constructs a Reconciler.
func New(opts ...Option) *Reconciler {
	r := &Reconciler{
		synth:  synth.New(),
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(r)
		}
	}
	return r
}

// Reconcile never fails. Control keys are visited in sorted order and a later
// fragment wins when two controls synthesize the same path. Values from
// examplePayload always win over synthesized defaults.
func (r *Reconciler) Reconcile(controlValues, examplePayload map[string]any) Result {
	flat := paths.Flatten(controlValues)
	keys := make([]string, 0, len(flat))
	for key := range flat {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	defaults := make(map[string]any)
	perControl := make(map[string]map[string]any, len(keys))
	for _, key := range keys {
		fragment := r.synth.Synthesize(flat, key)
		if len(fragment) == 0 {
			continue
		}
		perControl[key] = fragment
		defaults = paths.DeepMerge(defaults, fragment)
	}

	record := r.missingVariables(perControl, defaults, examplePayload)
	r.logger.Debug("payload reconciled",
		zap.Int("controls", len(keys)),
		zap.Int("referencing_controls", len(perControl)),
		zap.Int("issues", record.Len()),
	)

	return Result{
		AugmentedPayload: paths.DeepMerge(defaults, examplePayload),
		Defaults:         defaults,
		Issues:           record,
	}
}

func (r *Reconciler) missingVariables(perControl map[string]map[string]any, defaults, examplePayload map[string]any) issues.Record {
	record := make(issues.Record)
	owners := paths.FlattenGrouped(perControl)
	for _, variable := range paths.Missing(defaults, examplePayload) {
		for _, key := range owners[variable] {
			record.Add(key, issues.MissingVariableIssue(variable))
		}
	}
	return record
}
