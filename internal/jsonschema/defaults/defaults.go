// Package defaults derives nested default-value objects from JSON Schema
// documents decoded with kin-openapi.
package defaults

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/getkin/kin-openapi/openapi3"
)

// ErrEmptySchema reports an empty schema payload.
var ErrEmptySchema = errors.New("defaults: schema is empty")

// Parse decodes a JSON Schema object into an openapi3.Schema.
func Parse(data []byte) (*openapi3.Schema, error) {
	if len(strings.TrimSpace(string(data))) == 0 {
		return nil, ErrEmptySchema
	}
	var schema openapi3.Schema
	if err := json.Unmarshal(data, &schema); err != nil {
		return nil, fmt.Errorf("defaults: decode schema: %w", err)
	}
	return &schema, nil
}

// FromJSON parses data and extracts its defaults.
func FromJSON(data []byte) (map[string]any, error) {
	schema, err := Parse(data)
	if err != nil {
		return nil, err
	}
	return Extract(schema), nil
}

// Extract walks the properties of an object schema. A property with a
// `default` contributes that value. A required property without one
// contributes nil so it is still listed as a key the caller must supply.
// Nested object properties recurse; a required object whose subtree yields
// nothing falls back to the nil marker. The result is never nil.
func Extract(schema *openapi3.Schema) map[string]any {
	out := make(map[string]any)
	if schema == nil {
		return out
	}

	required := make(map[string]struct{}, len(schema.Required))
	for _, name := range schema.Required {
		required[name] = struct{}{}
	}

	for _, name := range propertyNames(schema) {
		ref := schema.Properties[name]
		_, isRequired := required[name]
		if value, ok := propertyDefault(ref, isRequired); ok {
			out[name] = value
		}
	}
	return out
}

func propertyDefault(ref *openapi3.SchemaRef, required bool) (any, bool) {
	if ref == nil || ref.Value == nil {
		if required {
			return nil, true
		}
		return nil, false
	}
	prop := ref.Value

	if prop.Default != nil {
		return cloneDefault(prop.Default), true
	}
	if isObject(prop) && len(prop.Properties) > 0 {
		if nested := Extract(prop); len(nested) > 0 {
			return nested, true
		}
	}
	if required {
		return nil, true
	}
	return nil, false
}

func propertyNames(schema *openapi3.Schema) []string {
	names := make([]string, 0, len(schema.Properties))
	for name := range schema.Properties {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func isObject(schema *openapi3.Schema) bool {
	if schema.Type == nil {
		return len(schema.Properties) > 0
	}
	return schema.Type.Includes(openapi3.TypeObject)
}

func cloneDefault(value any) any {
	switch typed := value.(type) {
	case map[string]any:
		out := make(map[string]any, len(typed))
		for key, item := range typed {
			out[key] = cloneDefault(item)
		}
		return out
	case []any:
		out := make([]any, len(typed))
		for i, item := range typed {
			out[i] = cloneDefault(item)
		}
		return out
	default:
		return value
	}
}
