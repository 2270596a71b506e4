// Package validate checks document front matter against the loaded schema
// before the directive pipeline runs. Directive annotations (x-* keys) are
// stripped prior to compilation since they are not JSON Schema vocabulary.
package validate

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/goccy/go-json"
	jsonschema "github.com/santhosh-tekuri/jsonschema/v5"

	fferrors "git.home.luguber.info/inful/fmforge/internal/foundation/errors"
	"git.home.luguber.info/inful/fmforge/internal/document"
)

// Issue captures a single validation failure in one document.
type Issue struct {
	Document string // source path of the document
	Location string // JSON pointer into the front matter
	Message  string
}

func (i Issue) String() string {
	location := i.Location
	if location == "" {
		location = "#"
	}
	return fmt.Sprintf("%s: %s: %s", i.Document, location, i.Message)
}

// Validator validates front matter payloads against a compiled schema.
type Validator struct {
	compiled *jsonschema.Schema
}

// New compiles the raw schema map into a validator. Directive keys are removed
// recursively first so the compiler only sees standard vocabulary.
func New(rawSchema map[string]any) (*Validator, error) {
	stripped := stripDirectives(rawSchema)

	encoded, err := json.Marshal(stripped)
	if err != nil {
		return nil, fferrors.WrapError(err, fferrors.CategoryInvalidFormat, "encode schema for validation").Build()
	}

	compiler := jsonschema.NewCompiler()
	compiler.Draft = jsonschema.Draft2020
	if err := compiler.AddResource("schema.json", bytes.NewReader(encoded)); err != nil {
		return nil, fferrors.WrapError(err, fferrors.CategoryInvalidFormat, "register schema resource").Build()
	}
	compiled, err := compiler.Compile("schema.json")
	if err != nil {
		return nil, fferrors.WrapError(err, fferrors.CategoryInvalidFormat, "compile schema").Build()
	}

	return &Validator{compiled: compiled}, nil
}

// ValidateAll validates every document and returns the accumulated issues.
// Issues are findings, not errors; the caller decides whether they fail the
// build (strict mode) or only warn.
func (v *Validator) ValidateAll(paths []string, docs []document.Data) []Issue {
	var issues []Issue
	for i, doc := range docs {
		path := ""
		if i < len(paths) {
			path = paths[i]
		}
		issues = append(issues, v.validateOne(path, doc)...)
	}
	return issues
}

func (v *Validator) validateOne(path string, doc document.Data) []Issue {
	err := v.compiled.Validate(jsonRoundTrip(doc.Value()))
	if err == nil {
		return nil
	}

	validationErr, ok := err.(*jsonschema.ValidationError)
	if !ok {
		return []Issue{{Document: path, Message: err.Error()}}
	}

	var issues []Issue
	var walk func(*jsonschema.ValidationError)
	walk = func(node *jsonschema.ValidationError) {
		if node == nil {
			return
		}
		if len(node.Causes) == 0 {
			issues = append(issues, Issue{
				Document: path,
				Location: strings.TrimSpace(node.InstanceLocation),
				Message:  strings.TrimSpace(node.Message),
			})
			return
		}
		for _, cause := range node.Causes {
			walk(cause)
		}
	}
	walk(validationErr)
	return issues
}

// jsonRoundTrip forces YAML-typed values (int, etc.) into the JSON type system
// the validator expects.
func jsonRoundTrip(v any) any {
	encoded, err := json.Marshal(v)
	if err != nil {
		return v
	}
	var out any
	if err := json.Unmarshal(encoded, &out); err != nil {
		return v
	}
	return out
}

func stripDirectives(m map[string]any) map[string]any {
	out := make(map[string]any, len(m))
	for k, v := range m {
		if strings.HasPrefix(k, "x-") {
			continue
		}
		switch val := v.(type) {
		case map[string]any:
			out[k] = stripDirectives(val)
		case []any:
			arr := make([]any, len(val))
			for i, elem := range val {
				if m, ok := elem.(map[string]any); ok {
					arr[i] = stripDirectives(m)
				} else {
					arr[i] = elem
				}
			}
			out[k] = arr
		default:
			out[k] = v
		}
	}
	return out
}
