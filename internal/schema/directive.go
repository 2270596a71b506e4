package schema

import (
	"fmt"

	fferrors "git.home.luguber.info/inful/fmforge/internal/foundation/errors"
)

// Directive is a parsed x-* annotation bound to the schema node that declared it.
//
// DataPath is the dotted document path the declaring property corresponds to
// (schema `properties.tools.properties.commands` becomes data path
// `tools.commands`). TargetField is the declaring property's own name, which is
// where derive/merge/extract directives write their result.
type Directive struct {
	Kind        Kind
	SchemaPath  string // dotted schema location, for diagnostics
	DataPath    string // dotted document path of the declaring property
	TargetField string // last segment of DataPath

	SourcePath string   // x-extract-from, x-derived-from, x-template, x-template-items
	Paths      []string // x-merge-arrays
	Expr       string   // x-jmespath-filter
}

// parseDirective converts a raw annotation value into a Directive.
// A nil return with nil error means the annotation is disabled (e.g. `x-derived-unique: false`).
func parseDirective(kind Kind, raw any, schemaPath, dataPath, targetField string) (*Directive, error) {
	d := &Directive{
		Kind:        kind,
		SchemaPath:  schemaPath,
		DataPath:    dataPath,
		TargetField: targetField,
	}

	switch kind {
	case KindFrontmatterPart, KindDerivedUnique:
		enabled, ok := raw.(bool)
		if !ok {
			return nil, invalidDirective(kind, schemaPath, "expected boolean value, got %T", raw)
		}
		if !enabled {
			return nil, nil
		}

	case KindExtractFrom, KindDerivedFrom, KindJmespathFilter, KindFlattenArrays, KindTemplate, KindTemplateItems:
		s, ok := raw.(string)
		if !ok || s == "" {
			return nil, invalidDirective(kind, schemaPath, "expected non-empty string value, got %#v", raw)
		}
		switch kind {
		case KindJmespathFilter:
			d.Expr = s
		case KindFlattenArrays:
			// The parameter names the target array path directly.
			d.DataPath = s
			d.TargetField = s
		default:
			d.SourcePath = s
		}

	case KindMergeArrays:
		items, ok := raw.([]any)
		if !ok {
			return nil, invalidDirective(kind, schemaPath, "expected array of paths, got %T", raw)
		}
		for i, item := range items {
			s, ok := item.(string)
			if !ok || s == "" {
				return nil, invalidDirective(kind, schemaPath, "path %d is not a non-empty string", i)
			}
			d.Paths = append(d.Paths, s)
		}

	default:
		return nil, invalidDirective(kind, schemaPath, "unsupported directive kind")
	}

	return d, nil
}

func invalidDirective(kind Kind, schemaPath, format string, args ...any) error {
	return fferrors.InvalidFormatError(fmt.Sprintf("directive %s at %s: %s", kind, schemaPath, fmt.Sprintf(format, args...))).
		WithContext("directive", kind.String()).
		WithContext("schema_path", schemaPath).
		Build()
}
