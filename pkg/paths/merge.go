package paths

// DeepMerge returns a new map holding dst with src merged on top. Nested
// objects merge recursively, arrays merge index by index, and src wins on
// any other collision. Nil values in src never overwrite existing data.
// Neither input is mutated.
func DeepMerge(dst, src map[string]any) map[string]any {
	out := CloneMap(dst)
	if out == nil {
		out = make(map[string]any)
	}
	for key, value := range src {
		out[key] = mergeValue(out[key], value)
	}
	return out
}

func mergeValue(dst, src any) any {
	if src == nil {
		return dst
	}

	if srcMap, ok := asMap(src); ok {
		if dstMap, ok := asMap(dst); ok {
			return DeepMerge(dstMap, srcMap)
		}
		return CloneMap(srcMap)
	}

	if srcItems, ok := asSlice(src); ok {
		dstItems, ok := asSlice(dst)
		if !ok {
			return Clone(srcItems)
		}
		size := len(dstItems)
		if len(srcItems) > size {
			size = len(srcItems)
		}
		out := make([]any, size)
		for i := 0; i < size; i++ {
			var left, right any
			if i < len(dstItems) {
				left = Clone(dstItems[i])
			}
			if i < len(srcItems) {
				right = srcItems[i]
			}
			out[i] = mergeValue(left, right)
		}
		return out
	}

	return src
}
