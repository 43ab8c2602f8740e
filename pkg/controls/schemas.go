package controls

import (
	"embed"
	"fmt"
	"io/fs"
	"sort"
	"strings"
)

//go:embed schemas/*.json
var embeddedSchemas embed.FS

// StepType names a notification channel step.
type StepType string

const (
	StepEmail StepType = "email"
	StepInApp StepType = "in_app"
	StepSMS   StepType = "sms"
	StepPush  StepType = "push"
	StepChat  StepType = "chat"
)

// StepTypes lists the step types with a built-in control schema.
func StepTypes() []StepType {
	return []StepType{StepChat, StepEmail, StepInApp, StepPush, StepSMS}
}

// ParseStepType normalises a step type name. Dashes are accepted in place of
// underscores ("in-app").
func ParseStepType(raw string) (StepType, error) {
	name := strings.ReplaceAll(strings.ToLower(strings.TrimSpace(raw)), "-", "_")
	for _, candidate := range StepTypes() {
		if string(candidate) == name {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownStepType, raw)
}

// SchemasFS exposes the embedded control schemas, one `<step>.json` file per
// step type.
func SchemasFS() fs.FS {
	sub, err := fs.Sub(embeddedSchemas, "schemas")
	if err != nil {
		return embeddedSchemas
	}
	return sub
}

// SchemaFor returns the built-in control schema for a step type.
func SchemaFor(step StepType) ([]byte, error) {
	data, err := fs.ReadFile(SchemasFS(), string(step)+".json")
	if err != nil {
		return nil, fmt.Errorf("%w: %q", ErrUnknownStepType, step)
	}
	return data, nil
}

// RequiredControls lists the top-level required control keys of a step type's
// built-in schema, sorted.
func RequiredControls(step StepType) ([]string, error) {
	data, err := SchemaFor(step)
	if err != nil {
		return nil, err
	}
	schema, err := parseSchema(data)
	if err != nil {
		return nil, err
	}
	out := append([]string(nil), schema.Required...)
	sort.Strings(out)
	return out, nil
}
