package preview

import "errors"

// ErrNotConfigured is returned when the service defaults could not be built.
var ErrNotConfigured = errors.New("preview: service not configured")
