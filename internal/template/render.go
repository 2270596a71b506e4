package template

import (
	"fmt"
	"strings"

	"github.com/goccy/go-json"

	"git.home.luguber.info/inful/fmforge/internal/document"
)

// MissingMode selects what happens when a referenced path is absent from the data.
type MissingMode int

const (
	// MissingEmpty renders absent values as an empty string. The literal
	// placeholder never survives into output.
	MissingEmpty MissingMode = iota
	// MissingKeep surfaces the unresolved placeholder, for debugging schemas.
	MissingKeep
)

// Renderer resolves variable references in a template tree against a Data value.
type Renderer struct {
	mode MissingMode
}

// NewRenderer creates a Renderer with the given missing-value policy.
func NewRenderer(mode MissingMode) *Renderer {
	return &Renderer{mode: mode}
}

// Render replaces every `{path}` occurrence in the template with the value at
// that path in data, recursing through objects and arrays. A string consisting
// of exactly one placeholder preserves the value's original type
// (number/boolean/array/object); placeholders embedded in a larger string are
// coerced to their string form. Expansion markers (`{@name}`) are left
// untouched here; ExpandArrays resolves them.
func (r *Renderer) Render(template any, data document.Data) (any, error) {
	return r.renderValue(template, data)
}

// RenderEach applies Render once per data item, producing one output per item.
// An empty input array yields an empty output array.
func (r *Renderer) RenderEach(template any, items []document.Data) ([]any, error) {
	out := make([]any, 0, len(items))
	for _, item := range items {
		rendered, err := r.Render(template, item)
		if err != nil {
			return nil, err
		}
		out = append(out, rendered)
	}
	return out, nil
}

func (r *Renderer) renderValue(v any, data document.Data) (any, error) {
	switch val := v.(type) {
	case string:
		return r.renderString(val, data), nil
	case map[string]any:
		out := make(map[string]any, len(val))
		for k, elem := range val {
			rendered, err := r.renderValue(elem, data)
			if err != nil {
				return nil, err
			}
			out[k] = rendered
		}
		return out, nil
	case []any:
		out := make([]any, len(val))
		for i, elem := range val {
			rendered, err := r.renderValue(elem, data)
			if err != nil {
				return nil, err
			}
			out[i] = rendered
		}
		return out, nil
	default:
		return val, nil
	}
}

func (r *Renderer) renderString(str string, data document.Data) any {
	matches := placeholderPattern.FindAllStringSubmatchIndex(str, -1)
	if len(matches) == 0 {
		return str
	}

	// Whole-string single variable reference keeps the value's original type.
	if len(matches) == 1 && matches[0][0] == 0 && matches[0][1] == len(str) {
		if str[matches[0][2]:matches[0][3]] != "@" {
			path := str[matches[0][4]:matches[0][5]]
			v, ok := data.Get(path)
			if !ok || v == nil {
				if r.mode == MissingKeep {
					return str
				}
				return ""
			}
			return v
		}
	}

	var b strings.Builder
	last := 0
	for _, m := range matches {
		b.WriteString(str[last:m[0]])
		last = m[1]

		token := str[m[0]:m[1]]
		if str[m[2]:m[3]] == "@" {
			// Expansion markers survive variable substitution untouched.
			b.WriteString(token)
			continue
		}

		path := str[m[4]:m[5]]
		v, ok := data.Get(path)
		if !ok || v == nil {
			if r.mode == MissingKeep {
				b.WriteString(token)
			}
			continue
		}
		b.WriteString(coerceString(v))
	}
	b.WriteString(str[last:])
	return b.String()
}

// coerceString renders a value embedded inside a larger string.
// Composite values serialize as compact JSON.
func coerceString(v any) string {
	switch val := v.(type) {
	case string:
		return val
	case bool:
		return fmt.Sprintf("%t", val)
	case map[string]any, []any:
		encoded, err := json.Marshal(val)
		if err != nil {
			return fmt.Sprint(val)
		}
		return string(encoded)
	default:
		return fmt.Sprint(val)
	}
}
