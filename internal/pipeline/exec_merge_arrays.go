package pipeline

import (
	"context"

	fferrors "git.home.luguber.info/inful/fmforge/internal/foundation/errors"
	"git.home.luguber.info/inful/fmforge/internal/document"
	"git.home.luguber.info/inful/fmforge/internal/schema"
)

// execMergeArrays concatenates the named arrays from every item into one array
// at the declaring property, preserving encounter order (item order, then path
// order within an item). No implicit de-duplication. A missing source array is
// skipped; a present non-array source is a structural failure.
func execMergeArrays(ctx context.Context, items []document.Data, d schema.Directive, opts Options) ([]document.Data, error) {
	merged := make([]any, 0)
	for _, item := range items {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		for _, path := range d.Paths {
			v, ok := item.Get(path)
			if !ok {
				continue
			}
			arr, ok := v.([]any)
			if !ok {
				return nil, fferrors.AggregationError("merge source is not array-shaped").
					WithContext("path", path).
					WithContext("target", d.DataPath).
					Build()
			}
			merged = append(merged, arr...)
		}
	}

	return mapItems(ctx, items, opts, func(item document.Data) (document.Data, error) {
		return item.Set(d.DataPath, merged)
	})
}
