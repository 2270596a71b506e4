package render

import (
	"fmt"
	"sort"
	"strings"
)

// markdownSerializer renders the tree as a readable document: top-level map
// keys become headings, nested maps become definition-style bullet lists, and
// arrays become unordered lists.
type markdownSerializer struct{}

func (s markdownSerializer) Serialize(tree any) (string, error) {
	var b strings.Builder
	switch val := tree.(type) {
	case map[string]any:
		for i, key := range sortedMapKeys(val) {
			if i > 0 {
				b.WriteString("\n")
			}
			fmt.Fprintf(&b, "## %s\n\n", key)
			s.writeValue(&b, val[key], 0)
		}
	default:
		s.writeValue(&b, tree, 0)
	}
	return b.String(), nil
}

func (s markdownSerializer) writeValue(b *strings.Builder, v any, indent int) {
	prefix := strings.Repeat("  ", indent)
	switch val := v.(type) {
	case map[string]any:
		for _, key := range sortedMapKeys(val) {
			child := val[key]
			if isScalar(child) {
				fmt.Fprintf(b, "%s- **%s**: %s\n", prefix, key, scalarString(child))
				continue
			}
			fmt.Fprintf(b, "%s- **%s**:\n", prefix, key)
			s.writeValue(b, child, indent+1)
		}
	case []any:
		for _, elem := range val {
			if isScalar(elem) {
				fmt.Fprintf(b, "%s- %s\n", prefix, scalarString(elem))
				continue
			}
			fmt.Fprintf(b, "%s-\n", prefix)
			s.writeValue(b, elem, indent+1)
		}
	default:
		fmt.Fprintf(b, "%s%s\n", prefix, scalarString(v))
	}
}

func isScalar(v any) bool {
	switch v.(type) {
	case map[string]any, []any:
		return false
	default:
		return true
	}
}

func scalarString(v any) string {
	if v == nil {
		return ""
	}
	return fmt.Sprint(v)
}

func sortedMapKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
