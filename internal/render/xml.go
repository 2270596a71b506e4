package render

import (
	"encoding/xml"
	"fmt"
	"sort"
	"strings"
)

// xmlSerializer emits a generic element tree: map keys become elements, array
// elements repeat an <item> element, scalars become text content. The root
// element is <output>.
type xmlSerializer struct{}

func (s xmlSerializer) Serialize(tree any) (string, error) {
	var b strings.Builder
	b.WriteString(xml.Header)
	s.writeElement(&b, "output", tree, 0)
	return b.String(), nil
}

func (s xmlSerializer) writeElement(b *strings.Builder, name string, v any, depth int) {
	indent := strings.Repeat("  ", depth)
	tag := sanitizeTag(name)

	switch val := v.(type) {
	case map[string]any:
		fmt.Fprintf(b, "%s<%s>\n", indent, tag)
		keys := make([]string, 0, len(val))
		for k := range val {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			s.writeElement(b, k, val[k], depth+1)
		}
		fmt.Fprintf(b, "%s</%s>\n", indent, tag)
	case []any:
		fmt.Fprintf(b, "%s<%s>\n", indent, tag)
		for _, elem := range val {
			s.writeElement(b, "item", elem, depth+1)
		}
		fmt.Fprintf(b, "%s</%s>\n", indent, tag)
	case nil:
		fmt.Fprintf(b, "%s<%s/>\n", indent, tag)
	default:
		var escaped strings.Builder
		_ = xml.EscapeText(&escaped, []byte(fmt.Sprint(val)))
		fmt.Fprintf(b, "%s<%s>%s</%s>\n", indent, tag, escaped.String(), tag)
	}
}

// sanitizeTag keeps element names valid when data keys carry characters XML
// does not allow in names.
func sanitizeTag(name string) string {
	if name == "" {
		return "item"
	}
	var b strings.Builder
	for i, r := range name {
		valid := r == '_' || r == '-' || r == '.' ||
			(r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') ||
			(i > 0 && r >= '0' && r <= '9')
		if valid {
			b.WriteRune(r)
		} else {
			b.WriteByte('_')
		}
	}
	return b.String()
}
