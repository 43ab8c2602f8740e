package preview

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	theme "github.com/goliatone/go-theme"
	"go.uber.org/zap"

	"github.com/goliatone/go-preview/pkg/controls"
	"github.com/goliatone/go-preview/pkg/hydrate"
	"github.com/goliatone/go-preview/pkg/issues"
	"github.com/goliatone/go-preview/pkg/reconcile"
	"github.com/goliatone/go-preview/pkg/render"
	"github.com/goliatone/go-preview/pkg/request"
	"github.com/goliatone/go-preview/pkg/synth"
)

// Request is the preview input. It is shared with the request file loader.
type Request = request.Request

// Result holds the rendered outputs of the step.
type Result struct {
	Type    controls.StepType `json:"type"`
	Preview map[string]any    `json:"preview"`
}

// Response is the outcome of Generate.
type Response struct {
	RequestID             string         `json:"requestId"`
	Issues                issues.Record  `json:"issues"`
	Result                Result         `json:"result"`
	PreviewPayloadExample map[string]any `json:"previewPayloadExample"`
}

// PayloadReconciler builds the preview payload from control values and an
// example payload.
type PayloadReconciler interface {
	Reconcile(controlValues, examplePayload map[string]any) reconcile.Result
}

// ControlValidator applies schema defaults to control values.
type ControlValidator interface {
	Validate(ctx context.Context, schema []byte, controlValues map[string]any) (controls.Result, error)
}

// Option customises the service configuration.
type Option func(*Service)

// WithLogger sets the logger handed to every default collaborator.
func WithLogger(logger *zap.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithHydrator overrides the document hydrator used both for payload
// synthesis and for email rendering.
func WithHydrator(h hydrate.Hydrator) Option {
	return func(s *Service) {
		s.hydrator = h
	}
}

// WithReconciler injects a custom payload reconciler.
func WithReconciler(r PayloadReconciler) Option {
	return func(s *Service) {
		s.reconciler = r
	}
}

// WithValidator injects a custom control validator.
func WithValidator(v ControlValidator) Option {
	return func(s *Service) {
		s.validator = v
	}
}

// WithRegistry injects the step renderer registry. The registry must hold a
// renderer for every step type the caller previews.
func WithRegistry(registry *render.Registry) Option {
	return func(s *Service) {
		s.registry = registry
	}
}

// WithThemeSelector themes the default email renderer. Ignored when a
// registry is injected.
func WithThemeSelector(selector theme.ThemeSelector, name, variant string) Option {
	return func(s *Service) {
		s.selector = selector
		s.themeName = name
		s.themeVariant = variant
	}
}

// WithIDGenerator overrides how request IDs are minted for requests that do
// not carry one.
func WithIDGenerator(fn func() string) Option {
	return func(s *Service) {
		s.newID = fn
	}
}

// Service generates step previews.
type Service struct {
	logger       *zap.Logger
	hydrator     hydrate.Hydrator
	reconciler   PayloadReconciler
	validator    ControlValidator
	registry     *render.Registry
	selector     theme.ThemeSelector
	themeName    string
	themeVariant string
	newID        func() string

	initialiseErr error
}

// New constructs a Service. Missing collaborators are initialised with the
// built-in implementations.
func New(options ...Option) *Service {
	s := &Service{logger: zap.NewNop()}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(s)
	}
	s.applyDefaults()
	return s
}

func (s *Service) applyDefaults() {
	if s.hydrator == nil {
		s.hydrator = hydrate.NewMailyHydrator()
	}
	if s.reconciler == nil {
		s.reconciler = reconcile.New(
			reconcile.WithSynthesizer(synth.New(synth.WithHydrator(s.hydrator))),
			reconcile.WithLogger(s.logger),
		)
	}
	if s.validator == nil {
		s.validator = controls.NewValidator(controls.WithLogger(s.logger))
	}
	if s.newID == nil {
		s.newID = uuid.NewString
	}
	if s.registry == nil {
		registry, err := s.defaultRegistry()
		if err != nil {
			s.initialiseErr = err
			return
		}
		s.registry = registry
	}
}

func (s *Service) defaultRegistry() (*render.Registry, error) {
	engine, err := render.NewEngine()
	if err != nil {
		return nil, err
	}
	text, err := render.NewText(
		render.WithTextEngine(engine),
		render.WithTextLogger(s.logger),
	)
	if err != nil {
		return nil, err
	}
	email, err := render.NewEmail(
		render.WithEmailEngine(engine),
		render.WithThemeSelector(s.selector, s.themeName, s.themeVariant),
		render.WithEmailLogger(s.logger),
	)
	if err != nil {
		return nil, err
	}

	steps := make([]string, 0, len(controls.StepTypes()))
	for _, step := range controls.StepTypes() {
		steps = append(steps, string(step))
	}
	return render.DefaultRegistry(text, email, steps,
		render.WithHydrator(s.hydrator),
		render.WithOutputLogger(s.logger),
	)
}

// Generate renders a preview for req.
func (s *Service) Generate(ctx context.Context, req Request) (Response, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	if s.initialiseErr != nil {
		return Response{}, fmt.Errorf("%w: %v", ErrNotConfigured, s.initialiseErr)
	}
	if err := ctx.Err(); err != nil {
		return Response{}, err
	}

	step, err := controls.ParseStepType(req.StepType)
	if err != nil {
		return Response{}, err
	}
	schema, err := s.schemaFor(step, req)
	if err != nil {
		return Response{}, err
	}
	renderer, err := s.registry.Get(string(step))
	if err != nil {
		return Response{}, fmt.Errorf("preview: %w", err)
	}

	reconciled := s.reconciler.Reconcile(req.ControlValues, req.PayloadValues)
	validated, err := s.validator.Validate(ctx, schema, req.ControlValues)
	if err != nil {
		return Response{}, fmt.Errorf("preview: validate controls: %w", err)
	}

	outputs, err := renderer.Render(ctx, render.Input{
		ControlValues: validated.AugmentedControlValues,
		Payload:       reconciled.AugmentedPayload,
	})
	if err != nil {
		return Response{}, fmt.Errorf("preview: render %s: %w", step, err)
	}

	id := req.RequestID
	if id == "" {
		id = s.newID()
	}
	merged := issues.Merge(validated.Issues, reconciled.Issues)

	s.logger.Info("preview generated",
		zap.String("request_id", id),
		zap.String("step_type", string(step)),
		zap.Int("control_issues", validated.Issues.Len()),
		zap.Int("payload_issues", reconciled.Issues.Len()),
	)

	return Response{
		RequestID: id,
		Issues:    merged,
		Result: Result{
			Type:    step,
			Preview: outputs,
		},
		PreviewPayloadExample: reconciled.AugmentedPayload,
	}, nil
}

func (s *Service) schemaFor(step controls.StepType, req Request) ([]byte, error) {
	if req.HasControlSchema() {
		return req.ControlSchemaJSON()
	}
	return controls.SchemaFor(step)
}
