package pipeline

import (
	"context"
	"strings"

	"git.home.luguber.info/inful/fmforge/internal/document"
	"git.home.luguber.info/inful/fmforge/internal/schema"
)

// execExtractFrom copies the value at the directive's source path into the
// declaring property on every item. A missing source resolves to a neutral
// value (empty array for array-flattening sources, empty string otherwise)
// rather than an error, so sparse front matter renders visibly empty instead
// of aborting the run.
func execExtractFrom(ctx context.Context, items []document.Data, d schema.Directive, opts Options) ([]document.Data, error) {
	return mapItems(ctx, items, opts, func(item document.Data) (document.Data, error) {
		v, ok := item.Get(d.SourcePath)
		if !ok {
			v = neutralValue(d.SourcePath)
		}
		return item.Set(d.DataPath, v)
	})
}

func neutralValue(sourcePath string) any {
	if strings.Contains(sourcePath, "[]") {
		return []any{}
	}
	return ""
}
