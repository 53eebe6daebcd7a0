package maps

import stdmaps "maps"

// Clone returns a shallow clone of the input map.
// It returns nil for nil or empty input so that board defaults are never
// aliased between callers.
func Clone[K comparable, V any](m map[K]V) map[K]V {
	if len(m) == 0 {
		return nil
	}
	return stdmaps.Clone(m)
}

// Merge copies every entry of src into dst, overwriting on key collision.
// dst may be nil, in which case a new map is allocated when src is non-empty.
func Merge[K comparable, V any](dst, src map[K]V) map[K]V {
	if len(src) == 0 {
		return dst
	}
	if dst == nil {
		dst = make(map[K]V, len(src))
	}
	stdmaps.Copy(dst, src)
	return dst
}
