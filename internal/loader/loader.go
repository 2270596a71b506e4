// Package loader reads schemas, templates, and markdown documents from disk
// and hands the core pipeline already-parsed generic values. Nothing below the
// loader touches the filesystem.
package loader

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/goccy/go-json"
	"gopkg.in/yaml.v3"

	fferrors "git.home.luguber.info/inful/fmforge/internal/foundation/errors"
	"git.home.luguber.info/inful/fmforge/internal/schema"
)

// LoadSchema reads and parses a schema file (JSON or YAML by extension) into a
// directive-annotated Tree. The raw map is returned alongside for consumers
// that need the unparsed form (document validation).
func LoadSchema(path string) (map[string]any, *schema.Tree, error) {
	raw, err := loadGenericFile(path)
	if err != nil {
		return nil, nil, err
	}
	m, ok := raw.(map[string]any)
	if !ok {
		return nil, nil, fferrors.InvalidFormatError("schema root is not an object").
			WithContext("path", path).
			Build()
	}
	tree, err := schema.Parse(m)
	if err != nil {
		return nil, nil, err
	}
	return m, tree, nil
}

// LoadTemplate reads and parses a template file into a generic JSON-like tree.
func LoadTemplate(path string) (any, error) {
	return loadGenericFile(path)
}

// ResolveTemplatePath resolves a template reference declared in the schema
// relative to the schema file's directory.
func ResolveTemplatePath(schemaPath, ref string) string {
	if filepath.IsAbs(ref) {
		return ref
	}
	return filepath.Join(filepath.Dir(schemaPath), ref)
}

func loadGenericFile(path string) (any, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fferrors.WrapError(err, fferrors.CategoryFileSystem, fmt.Sprintf("read %s", path)).Build()
	}

	var parsed any
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		if err := json.Unmarshal(content, &parsed); err != nil {
			return nil, fferrors.WrapError(err, fferrors.CategoryInvalidFormat, fmt.Sprintf("parse json %s", path)).Build()
		}
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(content, &parsed); err != nil {
			return nil, fferrors.WrapError(err, fferrors.CategoryInvalidFormat, fmt.Sprintf("parse yaml %s", path)).Build()
		}
	default:
		return nil, fferrors.InvalidFormatError("unsupported file extension").
			WithContext("path", path).
			Build()
	}
	return normalizeValue(parsed), nil
}

// normalizeValue rewrites yaml.v3's map[string]any/[]any shapes recursively so
// downstream code only ever sees map[string]any trees.
func normalizeValue(v any) any {
	switch val := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(val))
		for k, elem := range val {
			out[k] = normalizeValue(elem)
		}
		return out
	case map[any]any:
		out := make(map[string]any, len(val))
		for k, elem := range val {
			out[fmt.Sprint(k)] = normalizeValue(elem)
		}
		return out
	case []any:
		out := make([]any, len(val))
		for i, elem := range val {
			out[i] = normalizeValue(elem)
		}
		return out
	default:
		return val
	}
}
