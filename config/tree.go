package config

import (
	"fmt"
	"maps"
	"math"
	"slices"
	"strings"

	json "github.com/goccy/go-json"
)

// normalize converts decoder output into the store's canonical shape:
// map[string]any objects with lower-cased keys, []any arrays, and integral
// numbers as int. The result never aliases the input. Keys that differ only
// by case are applied in sorted order, so the byte-wise greatest spelling
// wins ("port" over "Port" over "PORT").
func normalize(v any) any {
	switch t := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(t))
		for _, k := range slices.Sorted(maps.Keys(t)) {
			putKey(out, strings.ToLower(k), normalize(t[k]))
		}
		return out
	case map[any]any:
		keyed := make(map[string]any, len(t))
		for k, val := range t {
			keyed[fmt.Sprint(k)] = val
		}
		return normalize(keyed)
	case []any:
		out := make([]any, len(t))
		for i, val := range t {
			out[i] = normalize(val)
		}
		return out
	case []map[string]any:
		out := make([]any, len(t))
		for i, val := range t {
			out[i] = normalize(val)
		}
		return out
	case json.Number:
		if i, err := t.Int64(); err == nil {
			return intOrInt64(i)
		}
		if f, err := t.Float64(); err == nil {
			return f
		}
		return t.String()
	case int64:
		return intOrInt64(t)
	case uint64:
		if t <= math.MaxInt {
			return int(t)
		}
		return t
	case int32:
		return int(t)
	case uint32:
		return int(t)
	default:
		return v
	}
}

func intOrInt64(i int64) any {
	if i >= math.MinInt && i <= math.MaxInt {
		return int(i)
	}
	return i
}

// putKey inserts a value under key, merging objects when two source keys
// collapse onto the same lower-cased key.
func putKey(dst map[string]any, key string, val any) {
	if existing, ok := dst[key].(map[string]any); ok {
		if incoming, ok := val.(map[string]any); ok {
			mergeTree(existing, incoming)
			return
		}
	}
	dst[key] = val
}

// mergeTree deep-merges src into dst. Objects present on both sides are
// merged recursively; any other value in src replaces dst's value, including
// arrays and type changes (object over scalar and scalar over object).
func mergeTree(dst, src map[string]any) {
	for k, sv := range src {
		sm, srcIsMap := sv.(map[string]any)
		if srcIsMap {
			if dm, ok := dst[k].(map[string]any); ok {
				mergeTree(dm, sm)
				continue
			}
		}
		dst[k] = copyValue(sv)
	}
}

func copyValue(v any) any {
	switch t := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, val := range t {
			out[k] = copyValue(val)
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i, val := range t {
			out[i] = copyValue(val)
		}
		return out
	default:
		return v
	}
}

// setPath assigns val at the dotted path segments, creating intermediate
// objects and replacing scalars that stand in the way.
func setPath(tree map[string]any, path []string, val any) {
	node := tree
	for _, seg := range path[:len(path)-1] {
		next, ok := node[seg].(map[string]any)
		if !ok {
			next = make(map[string]any)
			node[seg] = next
		}
		node = next
	}
	node[path[len(path)-1]] = val
}
