package paths

import (
	"strconv"
	"strings"
)

// Lookup resolves path against payload. An exact key match wins over
// structural traversal so payloads storing literal dotted keys (for example
// `"cta.headline"`) resolve first. Missing segments, type mismatches and
// malformed indexes all report false.
func Lookup(payload map[string]any, path string) (any, bool) {
	if len(payload) == 0 || strings.TrimSpace(path) == "" {
		return nil, false
	}

	if v, ok := payload[path]; ok {
		return v, true
	}

	segments, err := Parse(path)
	if err != nil {
		return nil, false
	}

	var current any = payload
	for _, segment := range segments {
		next, ok := step(current, segment)
		if !ok {
			return nil, false
		}
		current = next
	}
	return current, true
}

func step(current any, segment Segment) (any, bool) {
	if segment.IsIndex {
		items, ok := asSlice(current)
		if !ok || segment.Index >= len(items) {
			return nil, false
		}
		return items[segment.Index], true
	}

	switch typed := current.(type) {
	case map[string]any:
		next, ok := typed[segment.Key]
		return next, ok
	case map[string]string:
		next, ok := typed[segment.Key]
		return next, ok
	}

	// Dotted numeric segments address arrays too (`items.0.name`).
	if items, ok := asSlice(current); ok {
		idx, err := strconv.Atoi(segment.Key)
		if err != nil || idx < 0 || idx >= len(items) {
			return nil, false
		}
		return items[idx], true
	}
	return nil, false
}
