package store

import (
	"fmt"
	"sort"

	"github.com/charmbracelet/lipgloss/tree"
)

// Render returns a human-readable tree view of the in-memory data, rooted at
// the given label. It backs the debug-mode unload path, where the tree is
// printed instead of persisted.
func (s *Store) Render(label string) string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	t := tree.Root(label)
	appendBranch(t, s.tree)
	return t.String()
}

func appendBranch(t *tree.Tree, m map[string]any) {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		appendValue(t, k, m[k])
	}
}

func appendValue(t *tree.Tree, label string, v any) {
	switch val := v.(type) {
	case map[string]any:
		child := tree.Root(label)
		appendBranch(child, val)
		t.Child(child)
	case []any:
		child := tree.Root(label)
		for i, item := range val {
			appendValue(child, fmt.Sprintf("[%d]", i), item)
		}
		t.Child(child)
	default:
		t.Child(fmt.Sprintf("%s: %v", label, val))
	}
}
