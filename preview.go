// Package preview is the top-level entry point for generating notification
// step previews. It re-exports the service from pkg/preview so callers can
// depend on a single import.
package preview

import (
	"context"

	theme "github.com/goliatone/go-theme"
	"go.uber.org/zap"

	pkgpreview "github.com/goliatone/go-preview/pkg/preview"
	"github.com/goliatone/go-preview/pkg/request"
)

// Request is the preview input: step type, control values, example payload
// and an optional control schema override.
type Request = request.Request

// Response carries the rendered preview, the reported issues and the example
// payload the preview was rendered against.
type Response = pkgpreview.Response

// Option configures a Service.
type Option = pkgpreview.Option

// Service generates step previews.
type Service = pkgpreview.Service

// NewService exposes the service constructor from the top-level module.
func NewService(options ...Option) *Service {
	return pkgpreview.New(options...)
}

// Generate builds a one-off service and renders req. Callers generating many
// previews should keep a Service instead.
func Generate(ctx context.Context, req Request, options ...Option) (Response, error) {
	return pkgpreview.New(options...).Generate(ctx, req)
}

// GenerateFile loads a JSON or YAML request from path and renders it.
func GenerateFile(ctx context.Context, path string, options ...Option) (Response, error) {
	req, err := request.LoadFile(path)
	if err != nil {
		return Response{}, err
	}
	return Generate(ctx, req, options...)
}

// WithLogger routes service logs to logger.
func WithLogger(logger *zap.Logger) Option {
	return pkgpreview.WithLogger(logger)
}

// WithThemeSelector passes a go-theme selector through to the email renderer
// so theme tokens land in the email wrapper.
func WithThemeSelector(selector theme.ThemeSelector, name, variant string) Option {
	return pkgpreview.WithThemeSelector(selector, name, variant)
}
