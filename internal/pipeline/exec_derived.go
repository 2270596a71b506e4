package pipeline

import (
	"context"
	"reflect"

	fferrors "git.home.luguber.info/inful/fmforge/internal/foundation/errors"
	"git.home.luguber.info/inful/fmforge/internal/document"
	"git.home.luguber.info/inful/fmforge/internal/schema"
)

// execDerivedFrom projects the directive's source path (commonly an
// `items[].field` form) across all items into a new array, attached to every
// item at the declaring property. Items where the source is absent contribute
// nothing.
func execDerivedFrom(ctx context.Context, items []document.Data, d schema.Directive, opts Options) ([]document.Data, error) {
	derived := make([]any, 0, len(items))
	for _, item := range items {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		v, ok := item.Get(d.SourcePath)
		if !ok {
			continue
		}
		if arr, isArr := v.([]any); isArr {
			derived = append(derived, arr...)
		} else {
			derived = append(derived, v)
		}
	}

	return mapItems(ctx, items, opts, func(item document.Data) (document.Data, error) {
		return item.Set(d.DataPath, derived)
	})
}

// execDerivedUnique de-duplicates the previously derived array while
// preserving first-seen order. Equality is structural, not by reference.
// Applying it twice yields the same result as applying it once.
func execDerivedUnique(ctx context.Context, items []document.Data, d schema.Directive, opts Options) ([]document.Data, error) {
	return mapItems(ctx, items, opts, func(item document.Data) (document.Data, error) {
		v, ok := item.Get(d.DataPath)
		if !ok {
			return item, nil
		}
		arr, isArr := v.([]any)
		if !isArr {
			return document.Data{}, fferrors.AggregationError("derived-unique target is not array-shaped").
				WithContext("target", d.DataPath).
				Build()
		}
		return item.Set(d.DataPath, uniqueValues(arr))
	})
}

func uniqueValues(arr []any) []any {
	out := make([]any, 0, len(arr))
	for _, candidate := range arr {
		duplicate := false
		for _, kept := range out {
			if reflect.DeepEqual(candidate, kept) {
				duplicate = true
				break
			}
		}
		if !duplicate {
			out = append(out, candidate)
		}
	}
	return out
}
