// Package tree implements path operations over JSON-compatible document
// trees rooted at a map[string]any.
package tree

import (
	"fmt"
	"sort"
	"strings"

	"github.com/mesh-intelligence/docket/pkg/types"
)

// ValidatePath rejects empty segments and segments containing "/".
func ValidatePath(path []string) error {
	for i, seg := range path {
		if seg == "" {
			return fmt.Errorf("%w: empty segment at %d", types.ErrInvalidPath, i)
		}
		if strings.Contains(seg, "/") {
			return fmt.Errorf("%w: segment %q contains '/'", types.ErrInvalidPath, seg)
		}
	}
	return nil
}

// Get returns the value at path below root.
func Get(root map[string]any, path []string) (any, bool) {
	if len(path) == 0 {
		if len(root) == 0 {
			return nil, false
		}
		return root, true
	}
	var node any = root
	for _, seg := range path {
		m, ok := node.(map[string]any)
		if !ok {
			return nil, false
		}
		node, ok = m[seg]
		if !ok {
			return nil, false
		}
	}
	return node, true
}

// Set stores v at path and returns the root, which is replaced when path
// is empty. Intermediate nodes that are not maps are replaced by maps.
// A nil or empty-map value deletes the path instead.
func Set(root map[string]any, path []string, v any) map[string]any {
	if IsEmpty(v) {
		if len(path) == 0 {
			return map[string]any{}
		}
		Delete(root, path)
		return root
	}
	if len(path) == 0 {
		m, ok := v.(map[string]any)
		if !ok {
			return root
		}
		return m
	}
	node := root
	for _, seg := range path[:len(path)-1] {
		next, ok := node[seg].(map[string]any)
		if !ok {
			next = map[string]any{}
			node[seg] = next
		}
		node = next
	}
	node[path[len(path)-1]] = v
	return root
}

// Delete removes path from root and prunes ancestors left empty. Deleting
// an absent path is a no-op. An empty path clears root.
func Delete(root map[string]any, path []string) {
	if len(path) == 0 {
		for k := range root {
			delete(root, k)
		}
		return
	}
	parents := make([]map[string]any, 0, len(path))
	node := root
	for _, seg := range path[:len(path)-1] {
		parents = append(parents, node)
		next, ok := node[seg].(map[string]any)
		if !ok {
			return
		}
		node = next
	}
	delete(node, path[len(path)-1])
	for i := len(parents) - 1; i >= 0 && len(node) == 0; i-- {
		delete(parents[i], path[i])
		node = parents[i]
	}
}

// Children returns the direct children of the node at path in key order.
func Children(root map[string]any, path []string) []types.Child {
	v, ok := Get(root, path)
	if !ok {
		return []types.Child{}
	}
	m, ok := v.(map[string]any)
	if !ok {
		return []types.Child{}
	}
	out := make([]types.Child, 0, len(m))
	for _, k := range SortedKeys(m) {
		out = append(out, types.Child{Key: k, Value: Clone(m[k])})
	}
	return out
}

// SortedKeys returns the keys of m in ascending order.
func SortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// IsEmpty reports whether v stores nothing: nil or an empty map.
func IsEmpty(v any) bool {
	if v == nil {
		return true
	}
	switch m := v.(type) {
	case map[string]any:
		return len(m) == 0
	case types.Record:
		return len(m) == 0
	}
	return false
}

// Clone deep-copies a JSON-compatible value.
func Clone(v any) any {
	switch t := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, e := range t {
			out[k] = Clone(e)
		}
		return out
	case types.Record:
		out := make(map[string]any, len(t))
		for k, e := range t {
			out[k] = Clone(e)
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i, e := range t {
			out[i] = Clone(e)
		}
		return out
	default:
		return v
	}
}
