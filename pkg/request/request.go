// Package request loads preview requests from JSON or YAML files.
package request

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// ErrEmptyRequest is returned for blank request files.
var ErrEmptyRequest = errors.New("request: file is empty")

// Request is the on-disk shape of a preview request.
type Request struct {
	// RequestID is optional; a fresh ID is generated when blank.
	RequestID     string         `json:"requestId,omitempty" yaml:"requestId,omitempty"`
	StepType      string         `json:"stepType" yaml:"stepType"`
	ControlValues map[string]any `json:"controlValues" yaml:"controlValues"`
	PayloadValues map[string]any `json:"payloadValues" yaml:"payloadValues"`
	// ControlSchema overrides the built-in schema for the step type.
	ControlSchema map[string]any `json:"controlSchema,omitempty" yaml:"controlSchema,omitempty"`
}

// LoadFile reads and parses a request file from disk.
func LoadFile(path string) (Request, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Request{}, fmt.Errorf("request: read %s: %w", path, err)
	}
	return Parse(data, path)
}

// LoadFS reads and parses name from fsys.
func LoadFS(fsys fs.FS, name string) (Request, error) {
	if fsys == nil {
		return Request{}, fmt.Errorf("request: filesystem is nil")
	}
	data, err := fs.ReadFile(fsys, name)
	if err != nil {
		return Request{}, fmt.Errorf("request: read %s: %w", name, err)
	}
	return Parse(data, name)
}

// Parse decodes data as JSON, falling back to YAML. Files with a .yaml or
// .yml extension are decoded as YAML directly. source is only used in error
// messages.
func Parse(data []byte, source string) (Request, error) {
	if len(strings.TrimSpace(string(data))) == 0 {
		return Request{}, fmt.Errorf("%w: %s", ErrEmptyRequest, source)
	}

	var req Request
	if !isYAML(source) {
		if err := json.Unmarshal(data, &req); err == nil {
			return finish(req), nil
		}
	}

	var raw map[string]any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return Request{}, fmt.Errorf("request: parse %s: invalid JSON or YAML: %w", source, err)
	}
	// Round-trip through JSON so YAML scalars take the same shapes JSON
	// decoding produces (float64 numbers, map[string]any objects).
	encoded, err := json.Marshal(normalize(raw))
	if err != nil {
		return Request{}, fmt.Errorf("request: parse %s: %w", source, err)
	}
	if err := json.Unmarshal(encoded, &req); err != nil {
		return Request{}, fmt.Errorf("request: parse %s: %w", source, err)
	}
	return finish(req), nil
}

// HasControlSchema reports whether the request overrides the step schema.
func (r Request) HasControlSchema() bool {
	return len(r.ControlSchema) > 0
}

// ControlSchemaJSON returns the schema override encoded as JSON.
func (r Request) ControlSchemaJSON() ([]byte, error) {
	if !r.HasControlSchema() {
		return nil, nil
	}
	data, err := json.Marshal(r.ControlSchema)
	if err != nil {
		return nil, fmt.Errorf("request: encode control schema: %w", err)
	}
	return data, nil
}

func finish(req Request) Request {
	req.StepType = strings.TrimSpace(req.StepType)
	req.RequestID = strings.TrimSpace(req.RequestID)
	if req.ControlValues == nil {
		req.ControlValues = map[string]any{}
	}
	if req.PayloadValues == nil {
		req.PayloadValues = map[string]any{}
	}
	return req
}

func isYAML(source string) bool {
	switch strings.ToLower(filepath.Ext(source)) {
	case ".yaml", ".yml":
		return true
	default:
		return false
	}
}

// normalize converts map[any]any nodes, which yaml.v3 can still produce for
// non-string keys, into map[string]any.
func normalize(value any) any {
	switch typed := value.(type) {
	case map[string]any:
		out := make(map[string]any, len(typed))
		for key, item := range typed {
			out[key] = normalize(item)
		}
		return out
	case map[any]any:
		out := make(map[string]any, len(typed))
		for key, item := range typed {
			out[fmt.Sprint(key)] = normalize(item)
		}
		return out
	case []any:
		out := make([]any, len(typed))
		for i, item := range typed {
			out[i] = normalize(item)
		}
		return out
	default:
		return value
	}
}
