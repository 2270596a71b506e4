package template

import (
	"strings"

	"git.home.luguber.info/inful/fmforge/internal/document"
)

// ExpandArrays replaces every expansion marker position in the template with
// its rendered item list, substituting ordinary variable references against
// the supplied main data context as it goes.
//
// rendered maps marker keys to the pre-rendered items that replace them (the
// rendering service fills it from the per-item template). A marker with no
// entry expands to an empty array. A marker occupying a whole string value is
// replaced by the array itself, preserving types; a marker embedded inside a
// larger string joins the items' string forms with ", ".
func (r *Renderer) ExpandArrays(template any, rendered map[string][]any, main document.Data) (any, error) {
	return r.expandValue(template, rendered, main)
}

func (r *Renderer) expandValue(v any, rendered map[string][]any, main document.Data) (any, error) {
	switch val := v.(type) {
	case string:
		return r.expandString(val, rendered, main), nil
	case map[string]any:
		out := make(map[string]any, len(val))
		for k, elem := range val {
			expanded, err := r.expandValue(elem, rendered, main)
			if err != nil {
				return nil, err
			}
			out[k] = expanded
		}
		return out, nil
	case []any:
		out := make([]any, 0, len(val))
		for _, elem := range val {
			expanded, err := r.expandValue(elem, rendered, main)
			if err != nil {
				return nil, err
			}
			out = append(out, expanded)
		}
		return out, nil
	default:
		return val, nil
	}
}

func (r *Renderer) expandString(str string, rendered map[string][]any, main document.Data) any {
	matches := placeholderPattern.FindAllStringSubmatchIndex(str, -1)
	if len(matches) == 0 {
		return str
	}

	// Whole-string tokens preserve types: a marker becomes the rendered
	// array, a variable reference becomes the value at its path.
	if len(matches) == 1 && matches[0][0] == 0 && matches[0][1] == len(str) {
		body := str[matches[0][4]:matches[0][5]]
		if str[matches[0][2]:matches[0][3]] == "@" {
			items := rendered[body]
			if items == nil {
				items = []any{}
			}
			return items
		}
		if v, ok := main.Get(body); ok && v != nil {
			return v
		}
		if r.mode == MissingKeep {
			return str
		}
		return ""
	}

	var b strings.Builder
	last := 0
	for _, m := range matches {
		b.WriteString(str[last:m[0]])
		last = m[1]

		body := str[m[4]:m[5]]
		if str[m[2]:m[3]] == "@" {
			parts := make([]string, 0, len(rendered[body]))
			for _, item := range rendered[body] {
				parts = append(parts, coerceString(item))
			}
			b.WriteString(strings.Join(parts, ", "))
			continue
		}

		if v, ok := main.Get(body); ok && v != nil {
			b.WriteString(coerceString(v))
			continue
		}
		if r.mode == MissingKeep {
			b.WriteString(str[m[0]:m[1]])
		}
	}
	b.WriteString(str[last:])
	return b.String()
}
