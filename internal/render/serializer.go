package render

import (
	"strings"

	fferrors "git.home.luguber.info/inful/fmforge/internal/foundation/errors"
)

// Format identifies an output serialization format.
type Format string

const (
	FormatJSON     Format = "json"
	FormatYAML     Format = "yaml"
	FormatXML      Format = "xml"
	FormatMarkdown Format = "markdown"
)

// ParseFormat normalizes a user-supplied format name.
func ParseFormat(name string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "json":
		return FormatJSON, nil
	case "yaml", "yml":
		return FormatYAML, nil
	case "xml":
		return FormatXML, nil
	case "markdown", "md":
		return FormatMarkdown, nil
	default:
		return "", fferrors.ConfigError("unknown output format").
			WithContext("format", name).
			Build()
	}
}

// Serializer turns a fully-resolved tree into formatted text.
type Serializer interface {
	Serialize(tree any) (string, error)
}

// ForFormat returns the serializer for the given format.
func ForFormat(format Format) (Serializer, error) {
	switch format {
	case FormatJSON:
		return jsonSerializer{}, nil
	case FormatYAML:
		return yamlSerializer{}, nil
	case FormatXML:
		return xmlSerializer{}, nil
	case FormatMarkdown:
		return markdownSerializer{}, nil
	default:
		return nil, fferrors.ConfigError("no serializer for format").
			WithContext("format", string(format)).
			Build()
	}
}
