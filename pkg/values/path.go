package values

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/goliatone/go-formflow/pkg/condition"
)

func getPath(root map[string]any, path string) (any, bool) {
	return condition.Lookup(root, path)
}

// setPath writes value under a dotted path. A flattened key that already
// exists at the root is overwritten in place so reads keep resolving to it.
func setPath(root map[string]any, path string, value any) error {
	if root == nil {
		return fmt.Errorf("values: root map is nil")
	}
	if _, ok := root[path]; ok {
		root[path] = value
		return nil
	}
	segments := strings.Split(path, ".")
	for _, segment := range segments {
		if segment == "" {
			return fmt.Errorf("values: invalid path %q", path)
		}
	}
	if err := checkIndexes(root, segments); err != nil {
		return fmt.Errorf("values: path %q: %w", path, err)
	}

	var (
		current     any = root
		parentMap   map[string]any
		parentSlice []any
		parentKey   string
		parentIndex = -1
	)
	reattach := func(node []any) {
		if parentMap != nil {
			parentMap[parentKey] = node
		} else if parentSlice != nil && parentIndex >= 0 {
			parentSlice[parentIndex] = node
		}
	}

	for i, segment := range segments {
		last := i == len(segments)-1
		switch node := current.(type) {
		case map[string]any:
			if last {
				node[segment] = value
				return nil
			}
			if _, err := strconv.Atoi(segments[i+1]); err == nil {
				child, ok := node[segment].([]any)
				if !ok {
					child = []any{}
					node[segment] = child
				}
				parentMap, parentSlice, parentKey, parentIndex = node, nil, segment, -1
				current = child
			} else {
				child, ok := node[segment].(map[string]any)
				if !ok || child == nil {
					child = make(map[string]any)
					node[segment] = child
				}
				parentMap, parentSlice, parentKey, parentIndex = node, nil, segment, -1
				current = child
			}

		case []any:
			idx, err := strconv.Atoi(segment)
			if err != nil {
				return fmt.Errorf("values: expected numeric segment, got %q", segment)
			}
			if idx < 0 {
				return fmt.Errorf("values: negative index in path %q", path)
			}
			if len(node) <= idx {
				node = append(node, make([]any, idx+1-len(node))...)
				reattach(node)
			}
			if last {
				node[idx] = value
				return nil
			}
			if _, err := strconv.Atoi(segments[i+1]); err == nil {
				child, ok := node[idx].([]any)
				if !ok {
					child = []any{}
					node[idx] = child
				}
				parentMap, parentSlice, parentKey, parentIndex = nil, node, "", idx
				current = child
			} else {
				child, ok := node[idx].(map[string]any)
				if !ok || child == nil {
					child = make(map[string]any)
					node[idx] = child
				}
				parentMap, parentSlice, parentKey, parentIndex = nil, node, "", idx
				current = child
			}

		default:
			return fmt.Errorf("values: unexpected container for segment %q", segment)
		}
	}
	return nil
}

// maxIndexGrowth bounds how far past the end of a list a single Set may
// write. The gap is filled with nils.
const maxIndexGrowth = 32

// checkIndexes rejects numeric segments that would grow a list by more than
// maxIndexGrowth, before anything is written.
func checkIndexes(root map[string]any, segments []string) error {
	for i := 1; i < len(segments); i++ {
		idx, err := strconv.Atoi(segments[i])
		if err != nil {
			continue
		}
		if idx < 0 {
			return fmt.Errorf("negative index %d", idx)
		}
		length := 0
		if parent, ok := getPath(root, strings.Join(segments[:i], ".")); ok {
			if list, ok := parent.([]any); ok {
				length = len(list)
			}
		}
		if idx >= length+maxIndexGrowth {
			return fmt.Errorf("index %d too far past list length %d", idx, length)
		}
	}
	return nil
}

func deletePath(root map[string]any, path string) {
	if root == nil {
		return
	}
	if _, ok := root[path]; ok {
		delete(root, path)
		return
	}
	idx := strings.LastIndex(path, ".")
	if idx < 0 {
		return
	}
	parent, ok := getPath(root, path[:idx])
	if !ok {
		return
	}
	key := path[idx+1:]
	switch node := parent.(type) {
	case map[string]any:
		delete(node, key)
	case []any:
		if i, err := strconv.Atoi(key); err == nil && i >= 0 && i < len(node) {
			node[i] = nil
		}
	}
}

func deepCopy(value any) any {
	switch typed := value.(type) {
	case map[string]any:
		clone := make(map[string]any, len(typed))
		for k, v := range typed {
			clone[k] = deepCopy(v)
		}
		return clone
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
