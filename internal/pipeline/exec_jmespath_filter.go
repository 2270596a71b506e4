package pipeline

import (
	"context"

	"github.com/jmespath/go-jmespath"

	fferrors "git.home.luguber.info/inful/fmforge/internal/foundation/errors"
	"git.home.luguber.info/inful/fmforge/internal/document"
	"git.home.luguber.info/inful/fmforge/internal/schema"
)

// execJmespathFilter keeps only the items for which the configured JMESPath
// expression evaluates truthy. An empty result is valid, not an error; only a
// malformed expression fails the stage.
func execJmespathFilter(ctx context.Context, items []document.Data, d schema.Directive, _ Options) ([]document.Data, error) {
	compiled, err := jmespath.Compile(d.Expr)
	if err != nil {
		return nil, fferrors.WrapError(err, fferrors.CategoryInvalidFormat, "invalid jmespath expression").
			WithContext("expression", d.Expr).
			Build()
	}

	out := make([]document.Data, 0, len(items))
	for _, item := range items {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		v, err := compiled.Search(item.Value())
		if err != nil {
			// Evaluation failures on a single item exclude it; the expression
			// itself was already validated above.
			continue
		}
		if truthy(v) {
			out = append(out, item)
		}
	}
	return out, nil
}

// truthy follows JMESPath truthiness: null, false, empty string, empty array,
// and empty object are false; everything else (including zero numbers) is true.
func truthy(v any) bool {
	switch val := v.(type) {
	case nil:
		return false
	case bool:
		return val
	case string:
		return val != ""
	case []any:
		return len(val) > 0
	case map[string]any:
		return len(val) > 0
	default:
		return true
	}
}
