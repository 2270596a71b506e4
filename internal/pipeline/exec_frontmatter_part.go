package pipeline

import (
	"context"

	"git.home.luguber.info/inful/fmforge/internal/document"
	"git.home.luguber.info/inful/fmforge/internal/schema"
)

// execFrontmatterPart extracts the sub-tree the x-frontmatter-part directive
// points at and flattens it into the item list. An array yields one item per
// element, an object yields a single item for the subtree, and an absent path
// passes the document through unchanged. This is the one executor that changes
// cardinality.
func execFrontmatterPart(ctx context.Context, items []document.Data, d schema.Directive, _ Options) ([]document.Data, error) {
	out := make([]document.Data, 0, len(items))
	for _, item := range items {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		v, ok := lookupPart(item, d)
		if !ok {
			out = append(out, item)
			continue
		}

		switch part := v.(type) {
		case []any:
			for _, elem := range part {
				out = append(out, partItem(elem, d.TargetField))
			}
		case map[string]any:
			out = append(out, document.FromMap(part))
		default:
			// A scalar part cannot be flattened into items.
			out = append(out, item)
		}
	}
	return out, nil
}

// lookupPart resolves the part path. The schema declares the part at its full
// nested location (e.g. tools.commands), but documents commonly carry the
// field at the top level under the property's own name, so both are tried.
func lookupPart(item document.Data, d schema.Directive) (any, bool) {
	if d.DataPath != "" {
		if v, ok := item.Get(d.DataPath); ok {
			return v, true
		}
	}
	if d.TargetField != "" && d.TargetField != d.DataPath {
		if v, ok := item.Get(d.TargetField); ok {
			return v, true
		}
	}
	return nil, false
}

func partItem(elem any, field string) document.Data {
	if m, ok := elem.(map[string]any); ok {
		return document.FromMap(m)
	}
	// Scalar elements keep the declaring property's name as their field.
	return document.FromMap(map[string]any{field: elem})
}
