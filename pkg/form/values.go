package form

import (
	"fmt"
	"strconv"
	"strings"
)

// getPath resolves a dotted path ("seo.title", "attributes.0.values")
// against nested maps and []any slices.
func getPath(root map[string]any, path string) (any, bool) {
	if root == nil || path == "" {
		return nil, false
	}
	var current any = root
	for _, segment := range strings.Split(path, ".") {
		switch node := current.(type) {
		case map[string]any:
			next, ok := node[segment]
			if !ok {
				return nil, false
			}
			current = next
		case []any:
			idx, err := strconv.Atoi(segment)
			if err != nil || idx < 0 || idx >= len(node) {
				return nil, false
			}
			current = node[idx]
		default:
			return nil, false
		}
	}
	return current, true
}

// setPath writes value at a dotted path, creating intermediate maps and
// slices. Numeric segments address slice indexes and may extend a slice by
// at most one element.
func setPath(root map[string]any, path string, value any) error {
	if root == nil {
		return fmt.Errorf("form: values map is nil")
	}
	segments := strings.Split(path, ".")
	for _, segment := range segments {
		if segment == "" {
			return fmt.Errorf("%w: %q", ErrInvalidPath, path)
		}
	}
	head := segments[0]
	child, err := setIn(root[head], segments[1:], value, path)
	if err != nil {
		return err
	}
	root[head] = child
	return nil
}

func setIn(node any, segments []string, value any, path string) (any, error) {
	if len(segments) == 0 {
		return value, nil
	}
	segment, rest := segments[0], segments[1:]

	if idx, err := strconv.Atoi(segment); err == nil {
		if idx < 0 {
			return nil, fmt.Errorf("%w: negative index in %q", ErrInvalidPath, path)
		}
		list, ok := node.([]any)
		if !ok && node != nil {
			return nil, fmt.Errorf("%w: %q descends into %T", ErrInvalidPath, path, node)
		}
		switch {
		case idx > len(list):
			return nil, fmt.Errorf("%w: index %d out of range in %q", ErrInvalidPath, idx, path)
		case idx == len(list):
			list = append(list, nil)
		}
		child, err := setIn(list[idx], rest, value, path)
		if err != nil {
			return nil, err
		}
		list[idx] = child
		return list, nil
	}

	obj, ok := node.(map[string]any)
	if !ok {
		if node != nil {
			return nil, fmt.Errorf("%w: %q descends into %T", ErrInvalidPath, path, node)
		}
		obj = make(map[string]any)
	}
	child, err := setIn(obj[segment], rest, value, path)
	if err != nil {
		return nil, err
	}
	obj[segment] = child
	return obj, nil
}

func cloneValues(src map[string]any) map[string]any {
	out := make(map[string]any, len(src))
	for k, v := range src {
		out[k] = deepCopy(v)
	}
	return out
}

func deepCopy(value any) any {
	switch typed := value.(type) {
	case map[string]any:
		return cloneValues(typed)
	case []any:
		clone := make([]any, len(typed))
		for i, v := range typed {
			clone[i] = deepCopy(v)
		}
		return clone
	case []string:
		return append([]string(nil), typed...)
	default:
		return typed
	}
}

// fieldPaths lists every dotted path reachable through maps, including the
// intermediate ones, so error paths can match on the longest known prefix.
func fieldPaths(values map[string]any) map[string]struct{} {
	out := make(map[string]struct{})
	collectPaths(values, "", out)
	return out
}

func collectPaths(node any, prefix string, dest map[string]struct{}) {
	switch typed := node.(type) {
	case map[string]any:
		for key, child := range typed {
			path := key
			if prefix != "" {
				path = prefix + "." + key
			}
			dest[path] = struct{}{}
			collectPaths(child, path, dest)
		}
	case []any:
		for _, child := range typed {
			collectPaths(child, prefix, dest)
		}
	}
}
