// Package paths converts nested payloads to dotted/bracketed path maps and
// back. Paths use `.key` for object members and `[i]` for array elements, for
// example `food.items[0].name`.
package paths

import (
	"fmt"
	"strconv"
	"strings"
)

// Segment is one step of a parsed path: either an object key or an array
// index.
type Segment struct {
	Key     string
	Index   int
	IsIndex bool
}

func (s Segment) String() string {
	if s.IsIndex {
		return "[" + strconv.Itoa(s.Index) + "]"
	}
	return s.Key
}

// Parse splits a path into segments. Bracket indexes must be non-negative
// integers; anything else is reported as an error.
func Parse(path string) ([]Segment, error) {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		return nil, fmt.Errorf("paths: empty path")
	}

	var out []Segment
	for _, part := range strings.Split(trimmed, ".") {
		if part == "" {
			return nil, fmt.Errorf("paths: empty segment in %q", path)
		}
		open := strings.IndexByte(part, '[')
		key := part
		if open >= 0 {
			key = part[:open]
		}
		if key != "" {
			out = append(out, Segment{Key: key})
		}
		rest := ""
		if open >= 0 {
			rest = part[open:]
		}
		for rest != "" {
			if rest[0] != '[' {
				return nil, fmt.Errorf("paths: unexpected %q in %q", rest, path)
			}
			end := strings.IndexByte(rest, ']')
			if end < 0 {
				return nil, fmt.Errorf("paths: unterminated index in %q", path)
			}
			idx, err := strconv.Atoi(rest[1:end])
			if err != nil || idx < 0 {
				return nil, fmt.Errorf("paths: invalid index %q in %q", rest[1:end], path)
			}
			out = append(out, Segment{Index: idx, IsIndex: true})
			rest = rest[end+1:]
		}
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("paths: no segments in %q", path)
	}
	return out, nil
}

// Join appends a child key to a parent path using dot notation.
func Join(parent, child string) string {
	if parent == "" {
		return child
	}
	if child == "" {
		return parent
	}
	return parent + "." + child
}

// JoinIndex appends an array index to a parent path.
func JoinIndex(parent string, index int) string {
	return parent + "[" + strconv.Itoa(index) + "]"
}

// Clone deep copies maps and slices built from JSON-like values. Other values
// are returned as-is.
func Clone(value any) any {
	switch typed := value.(type) {
	case map[string]any:
		return CloneMap(typed)
	case []any:
		out := make([]any, len(typed))
		for i, item := range typed {
			out[i] = Clone(item)
		}
		return out
	case []map[string]any:
		out := make([]any, len(typed))
		for i, item := range typed {
			out[i] = CloneMap(item)
		}
		return out
	default:
		return value
	}
}

// CloneMap deep copies a JSON-like map. A nil map stays nil.
func CloneMap(in map[string]any) map[string]any {
	if in == nil {
		return nil
	}
	out := make(map[string]any, len(in))
	for key, value := range in {
		out[key] = Clone(value)
	}
	return out
}

func asMap(value any) (map[string]any, bool) {
	switch typed := value.(type) {
	case map[string]any:
		return typed, true
	default:
		return nil, false
	}
}

func asSlice(value any) ([]any, bool) {
	switch typed := value.(type) {
	case []any:
		return typed, true
	case []map[string]any:
		out := make([]any, len(typed))
		for i, item := range typed {
			out[i] = item
		}
		return out, true
	case []string:
		out := make([]any, len(typed))
		for i, item := range typed {
			out[i] = item
		}
		return out, true
	default:
		return nil, false
	}
}
