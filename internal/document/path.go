package document

import (
	"strconv"
	"strings"

	fferrors "git.home.luguber.info/inful/fmforge/internal/foundation/errors"
)

// segment is one parsed step of a dot/bracket path.
//
// Path grammar: dot-separated keys, an optional numeric index (`a[0]`), or the
// empty-index expansion form (`a[].b`) which maps the rest of the path over the
// array's elements.
type segment struct {
	key    string
	index  int // -1 when no index
	expand bool
}

// parsePath splits a dot/bracket path into segments. Malformed bracket forms
// (unclosed, non-numeric index) yield an invalid-format error.
func parsePath(path string) ([]segment, error) {
	if path == "" {
		return nil, fferrors.InvalidFormatError("empty path").Build()
	}

	parts := strings.Split(path, ".")
	segments := make([]segment, 0, len(parts))
	for _, part := range parts {
		seg := segment{key: part, index: -1}

		if open := strings.Index(part, "["); open >= 0 {
			if !strings.HasSuffix(part, "]") {
				return nil, fferrors.InvalidFormatError("unclosed bracket in path segment").
					WithContext("segment", part).
					Build()
			}
			inner := part[open+1 : len(part)-1]
			seg.key = part[:open]
			if inner == "" {
				seg.expand = true
			} else {
				idx, err := strconv.Atoi(inner)
				if err != nil || idx < 0 {
					return nil, fferrors.InvalidFormatError("non-numeric array index in path segment").
						WithContext("segment", part).
						Build()
				}
				seg.index = idx
			}
		}

		if seg.key == "" {
			return nil, fferrors.InvalidFormatError("empty key in path").
				WithContext("path", path).
				Build()
		}
		segments = append(segments, seg)
	}
	return segments, nil
}

// resolve walks value along segments. The second return is false when the path
// is simply absent; absence is never an error here.
func resolve(value any, segments []segment) (any, bool) {
	current := value
	for i, seg := range segments {
		m, ok := current.(map[string]any)
		if !ok {
			return nil, false
		}
		v, ok := m[seg.key]
		if !ok {
			return nil, false
		}
		current = v

		if seg.index >= 0 {
			arr, ok := current.([]any)
			if !ok || seg.index >= len(arr) {
				return nil, false
			}
			current = arr[seg.index]
		}

		if seg.expand {
			arr, ok := current.([]any)
			if !ok {
				return nil, false
			}
			rest := segments[i+1:]
			out := make([]any, 0, len(arr))
			for _, elem := range arr {
				if len(rest) == 0 {
					out = append(out, elem)
					continue
				}
				if v, ok := resolve(elem, rest); ok {
					// A nested expansion contributes its elements, not a
					// nested array, so chained [] forms stay flat.
					if nested, ok := v.([]any); ok && hasExpansion(rest) {
						out = append(out, nested...)
					} else {
						out = append(out, v)
					}
				}
			}
			return out, true
		}
	}
	return current, true
}

// hasExpansion reports whether any segment uses the empty-index form.
func hasExpansion(segments []segment) bool {
	for _, seg := range segments {
		if seg.expand {
			return true
		}
	}
	return false
}
