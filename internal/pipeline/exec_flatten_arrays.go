package pipeline

import (
	"context"

	"git.home.luguber.info/inful/fmforge/internal/document"
	"git.home.luguber.info/inful/fmforge/internal/schema"
)

// execFlattenArrays recursively flattens nested arrays at the directive's
// target path into a single-depth array. Non-array elements encountered during
// flattening are kept as-is. An absent path or an empty array is not an error;
// a present non-array value at the path is left untouched.
func execFlattenArrays(ctx context.Context, items []document.Data, d schema.Directive, opts Options) ([]document.Data, error) {
	return mapItems(ctx, items, opts, func(item document.Data) (document.Data, error) {
		v, ok := item.Get(d.DataPath)
		if !ok {
			return item, nil
		}
		arr, isArr := v.([]any)
		if !isArr {
			return item, nil
		}
		return item.Set(d.DataPath, flatten(arr))
	})
}

func flatten(arr []any) []any {
	out := make([]any, 0, len(arr))
	for _, elem := range arr {
		if nested, ok := elem.([]any); ok {
			out = append(out, flatten(nested)...)
			continue
		}
		out = append(out, elem)
	}
	return out
}
