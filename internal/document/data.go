// Package document holds the immutable per-document working value that flows
// through every pipeline stage. All transformations produce a new Data rather
// than mutating in place, so stages may read pre-stage values for comparison
// before committing results.
package document

import (
	"reflect"
	"sort"

	fferrors "git.home.luguber.info/inful/fmforge/internal/foundation/errors"
)

// Data is an immutable nested mapping from dot-separated paths to
// scalar/array/object values, constructed once per document from parsed front
// matter plus schema-declared defaults.
type Data struct {
	fields map[string]any
}

// FromMap wraps an already-parsed front matter map. The map is deep-copied so
// later caller mutations cannot leak into the pipeline.
func FromMap(fields map[string]any) Data {
	if fields == nil {
		return Data{fields: map[string]any{}}
	}
	return Data{fields: copyMap(fields)}
}

// FromDocument builds a Data from extracted front matter merged over
// schema-declared defaults. Front matter values win; defaults fill gaps,
// recursively for nested objects.
func FromDocument(frontmatter, defaults map[string]any) Data {
	merged := mergeDefaults(frontmatter, defaults)
	return Data{fields: merged}
}

// Get resolves a dot/bracket path. The boolean is false when the path is
// absent; absence is not an error.
func (d Data) Get(path string) (any, bool) {
	segments, err := parsePath(path)
	if err != nil {
		return nil, false
	}
	v, ok := resolve(d.fields, segments)
	if !ok {
		return nil, false
	}
	return copyValue(v), true
}

// Has reports whether the path resolves to a value.
func (d Data) Has(path string) bool {
	_, ok := d.Get(path)
	return ok
}

// Set returns a new Data with the value assigned at path (functional update).
// Intermediate objects are created as needed. Assignment fails with a
// property-not-found error when an existing intermediate is not an object,
// and with an invalid-format error for expansion (`[]`) or indexed targets.
func (d Data) Set(path string, value any) (Data, error) {
	segments, err := parsePath(path)
	if err != nil {
		return Data{}, err
	}
	for _, seg := range segments {
		if seg.expand || seg.index >= 0 {
			return Data{}, fferrors.InvalidFormatError("array forms are not valid in assignment targets").
				WithContext("path", path).
				Build()
		}
	}

	root := copyMap(d.fields)
	current := root
	for i, seg := range segments {
		if i == len(segments)-1 {
			current[seg.key] = copyValue(value)
			break
		}
		next, ok := current[seg.key]
		if !ok {
			child := map[string]any{}
			current[seg.key] = child
			current = child
			continue
		}
		child, ok := next.(map[string]any)
		if !ok {
			return Data{}, fferrors.PropertyNotFoundError("assignment target parent is not an object").
				WithContext("path", path).
				WithContext("segment", seg.key).
				Build()
		}
		current = child
	}
	return Data{fields: root}, nil
}

// Delete returns a new Data without the value at path. Deleting an absent path
// is a no-op.
func (d Data) Delete(path string) Data {
	segments, err := parsePath(path)
	if err != nil {
		return d
	}
	root := copyMap(d.fields)
	current := root
	for i, seg := range segments {
		if i == len(segments)-1 {
			delete(current, seg.key)
			break
		}
		child, ok := current[seg.key].(map[string]any)
		if !ok {
			return d
		}
		current = child
	}
	return Data{fields: root}
}

// Keys returns the top-level field names in sorted order.
func (d Data) Keys() []string {
	keys := make([]string, 0, len(d.fields))
	for k := range d.fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Len returns the number of top-level fields.
func (d Data) Len() int { return len(d.fields) }

// Value returns a deep copy of the underlying nested map.
func (d Data) Value() map[string]any {
	return copyMap(d.fields)
}

// Equal reports structural equality with another Data.
func (d Data) Equal(other Data) bool {
	return reflect.DeepEqual(d.fields, other.fields)
}

// mergeDefaults deep-merges frontmatter over defaults without mutating either.
func mergeDefaults(frontmatter, defaults map[string]any) map[string]any {
	out := copyMap(defaults)
	for k, v := range frontmatter {
		existing, ok := out[k]
		if ok {
			em, eok := existing.(map[string]any)
			vm, vok := v.(map[string]any)
			if eok && vok {
				out[k] = mergeDefaults(vm, em)
				continue
			}
		}
		out[k] = copyValue(v)
	}
	return out
}

func copyMap(m map[string]any) map[string]any {
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = copyValue(v)
	}
	return out
}

func copyValue(v any) any {
	switch val := v.(type) {
	case map[string]any:
		return copyMap(val)
	case []any:
		out := make([]any, len(val))
		for i, elem := range val {
			out[i] = copyValue(elem)
		}
		return out
	default:
		return val
	}
}
