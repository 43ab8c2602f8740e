package paths

import (
	"sort"
)

// Flatten converts a nested value into a path→leaf map. Objects extend the
// path with `.key`, arrays with `[i]`. Empty objects and arrays contribute no
// entries. A non-container value yields an empty map since it has no path.
func Flatten(value any) map[string]any {
	out := make(map[string]any)
	flattenInto(out, "", value)
	return out
}

func flattenInto(dest map[string]any, prefix string, value any) {
	if m, ok := asMap(value); ok {
		for key, child := range m {
			flattenChild(dest, Join(prefix, key), child)
		}
		return
	}
	if items, ok := asSlice(value); ok {
		for i, child := range items {
			flattenChild(dest, JoinIndex(prefix, i), child)
		}
		return
	}
	if prefix != "" {
		dest[prefix] = value
	}
}

func flattenChild(dest map[string]any, path string, value any) {
	if _, ok := asMap(value); ok {
		flattenInto(dest, path, value)
		return
	}
	if _, ok := asSlice(value); ok {
		flattenInto(dest, path, value)
		return
	}
	dest[path] = value
}

// CollectKeys returns the leaf paths of obj, descending into plain objects
// only. Arrays and scalars are leaves. The result is sorted.
func CollectKeys(obj map[string]any) []string {
	var out []string
	collectInto(&out, "", obj)
	sort.Strings(out)
	return out
}

func collectInto(dest *[]string, prefix string, obj map[string]any) {
	for key, value := range obj {
		path := Join(prefix, key)
		if nested, ok := asMap(value); ok {
			collectInto(dest, path, nested)
			continue
		}
		*dest = append(*dest, path)
	}
}

// Missing returns the paths of required that are absent from actual, both
// computed with CollectKeys. The result is sorted.
func Missing(required, actual map[string]any) []string {
	have := make(map[string]struct{})
	for _, key := range CollectKeys(actual) {
		have[key] = struct{}{}
	}

	var out []string
	for _, key := range CollectKeys(required) {
		if _, ok := have[key]; ok {
			continue
		}
		out = append(out, key)
	}
	return out
}

// FlattenGrouped maps every leaf path of the per-source payloads to the
// ordered list of source keys that produced it. Sources are visited in sorted
// key order so a path referenced by several controls lists them
// deterministically.
func FlattenGrouped(sources map[string]map[string]any) map[string][]string {
	keys := make([]string, 0, len(sources))
	for key := range sources {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	out := make(map[string][]string)
	for _, source := range keys {
		for _, path := range CollectKeys(sources[source]) {
			out[path] = append(out[path], source)
		}
	}
	return out
}

// MaxIndex is the largest array index Set and Unflatten will create. Paths
// addressing a higher index are treated as unparseable.
const MaxIndex = 1000

// Unflatten rebuilds a nested structure from a path→value map. Bracket
// segments create arrays, padding skipped positions with nil. Keys that fail
// to parse or exceed MaxIndex are kept verbatim at the top level.
func Unflatten(flat map[string]any) map[string]any {
	out := make(map[string]any)
	keys := make([]string, 0, len(flat))
	for key := range flat {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	for _, key := range keys {
		segments, err := Parse(key)
		if err != nil || !writable(segments) {
			out[key] = flat[key]
			continue
		}
		out = assign(out, segments, flat[key]).(map[string]any)
	}
	return out
}

// Set writes value at path inside target, creating intermediate objects and
// arrays as needed. It returns false when the path cannot be parsed, starts
// with an index or addresses an index above MaxIndex.
func Set(target map[string]any, path string, value any) bool {
	segments, err := Parse(path)
	if err != nil || !writable(segments) || target == nil {
		return false
	}
	head := segments[0].Key
	target[head] = assign(target[head], segments[1:], value)
	return true
}

func writable(segments []Segment) bool {
	if segments[0].IsIndex {
		return false
	}
	for _, seg := range segments {
		if seg.IsIndex && seg.Index > MaxIndex {
			return false
		}
	}
	return true
}

func assign(container any, segments []Segment, value any) any {
	if len(segments) == 0 {
		return value
	}
	seg := segments[0]
	if seg.IsIndex {
		items, ok := asSlice(container)
		if !ok {
			items = nil
		}
		for len(items) <= seg.Index {
			items = append(items, nil)
		}
		items[seg.Index] = assign(items[seg.Index], segments[1:], value)
		return items
	}

	m, ok := asMap(container)
	if !ok {
		m = make(map[string]any)
	}
	m[seg.Key] = assign(m[seg.Key], segments[1:], value)
	return m
}
