// Package template implements placeholder analysis and variable resolution for
// output templates. Templates are generic JSON-like trees; strings may contain
// `{path}` variable references and `{@name}` array-expansion markers.
package template

import (
	"fmt"
	"regexp"
	"sort"

	fferrors "git.home.luguber.info/inful/fmforge/internal/foundation/errors"
)

// VariableRef is one `{path}` occurrence found in a template string.
type VariableRef struct {
	Placeholder string // full token including braces
	Path        string // dot/bracket path inside the braces
}

// ExpansionMarker is one `{@name}` occurrence. Its position in the template
// tree is replaced with one rendered copy per element of the array found at
// the target path.
type ExpansionMarker struct {
	Key    string // derived template key, unique per structure
	Marker string // full token including braces
	Path   string // target array path (same as Key for the {@name} form)
}

// Structure holds everything placeholder analysis found in a template tree.
type Structure struct {
	Variables  []VariableRef
	Expansions []ExpansionMarker
}

// placeholderPattern matches balanced `{...}` tokens with a non-empty body.
// Unbalanced braces and empty `{}` simply never match, which implements the
// silently-skip rule for malformed placeholders.
var placeholderPattern = regexp.MustCompile(`\{(@?)([A-Za-z0-9_][A-Za-z0-9_.\-\[\]]*)\}`)

// Analyze walks strings, object values, and array elements recursively and
// records every variable reference and expansion marker. A string containing
// `{@name}` contributes an expansion marker; ordinary `{path}` references in
// the same string are recorded as well. The only hard error is a duplicate
// expansion-marker key, detected here before any rendering is attempted —
// silently picking one of two conflicting expansions would lose data.
func Analyze(tree any) (*Structure, error) {
	s := &Structure{}
	seen := make(map[string]bool)
	if err := analyzeValue(tree, s, seen); err != nil {
		return nil, err
	}
	return s, nil
}

func analyzeValue(v any, s *Structure, seen map[string]bool) error {
	switch val := v.(type) {
	case string:
		return analyzeString(val, s, seen)
	case map[string]any:
		for _, key := range sortedKeys(val) {
			if err := analyzeValue(val[key], s, seen); err != nil {
				return err
			}
		}
	case []any:
		for _, elem := range val {
			if err := analyzeValue(elem, s, seen); err != nil {
				return err
			}
		}
	}
	return nil
}

func analyzeString(str string, s *Structure, seen map[string]bool) error {
	for _, match := range placeholderPattern.FindAllStringSubmatch(str, -1) {
		token, isMarker, body := match[0], match[1] == "@", match[2]
		if isMarker {
			if seen[body] {
				return fferrors.TemplateStructureError(fmt.Sprintf("duplicate expansion marker key %q", body)).
					WithContext("key", body).
					Build()
			}
			seen[body] = true
			s.Expansions = append(s.Expansions, ExpansionMarker{Key: body, Marker: token, Path: body})
			continue
		}
		s.Variables = append(s.Variables, VariableRef{Placeholder: token, Path: body})
	}
	return nil
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	// Deterministic analysis order keeps duplicate detection stable.
	sort.Strings(keys)
	return keys
}
