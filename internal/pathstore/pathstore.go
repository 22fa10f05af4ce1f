package pathstore

import (
	"strings"
	"sync"
)

// Tree is the mutable state container. The zero value is not usable; create
// one with New.
type Tree struct {
	mu   sync.RWMutex
	root map[string]any
}

// New creates an empty tree.
func New() *Tree {
	return &Tree{root: make(map[string]any)}
}

// Read returns the value at path. The second return is false when any
// segment along the path is absent or not a traversable mapping.
func (t *Tree) Read(path string) (any, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	segments := strings.Split(path, ".")
	node := t.root
	for i, seg := range segments {
		value, ok := node[seg]
		if !ok {
			return nil, false
		}
		if i == len(segments)-1 {
			return value, true
		}
		child, ok := value.(map[string]any)
		if !ok {
			return nil, false
		}
		node = child
	}
	return nil, false
}

// Write stores value at path and returns the prior value at that path (nil
// if there was none). Intermediate segments are created as empty mappings on
// demand; an intermediate that holds a non-mapping value is replaced by an
// empty mapping, discarding its old contents.
//
// Writing nil deletes the entry: the parent mapping no longer enumerates the
// leaf segment afterwards.
func (t *Tree) Write(path string, value any) any {
	t.mu.Lock()
	defer t.mu.Unlock()

	segments := strings.Split(path, ".")
	node := t.root
	for _, seg := range segments[:len(segments)-1] {
		child, ok := node[seg].(map[string]any)
		if !ok {
			if value == nil {
				// Nothing to delete below a missing branch.
				return nil
			}
			child = make(map[string]any)
			node[seg] = child
		}
		node = child
	}

	leaf := segments[len(segments)-1]
	prev := node[leaf]
	if value == nil {
		delete(node, leaf)
	} else {
		node[leaf] = value
	}
	return prev
}

// Clear resets the tree to empty. Prefix-scoped clearing is a persistence
// concern and does not exist at this layer.
func (t *Tree) Clear() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.root = make(map[string]any)
}

// Snapshot returns a deep copy of the whole tree. Mutating the returned map
// does not affect the tree. Non-container leaf values are copied by
// assignment, so pointer-typed leaves still share their referent.
func (t *Tree) Snapshot() map[string]any {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return deepCopyMap(t.root)
}

// Replace swaps the entire tree contents for the given mapping, deep-copying
// it first. A nil mapping is treated as empty. Used for aggregate hydration
// and wholesale foreign-write adoption.
func (t *Tree) Replace(root map[string]any) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if root == nil {
		t.root = make(map[string]any)
		return
	}
	t.root = deepCopyMap(root)
}

// Len returns the number of top-level entries.
func (t *Tree) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.root)
}

func deepCopyMap(m map[string]any) map[string]any {
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = deepCopyValue(v)
	}
	return out
}

func deepCopyValue(v any) any {
	switch val := v.(type) {
	case map[string]any:
		return deepCopyMap(val)
	case []any:
		out := make([]any, len(val))
		for i, elem := range val {
			out[i] = deepCopyValue(elem)
		}
		return out
	default:
		return v
	}
}
