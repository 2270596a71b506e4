package render

import (
	"strings"

	"gopkg.in/yaml.v3"

	fferrors "git.home.luguber.info/inful/fmforge/internal/foundation/errors"
)

type yamlSerializer struct{}

func (yamlSerializer) Serialize(tree any) (string, error) {
	var b strings.Builder
	enc := yaml.NewEncoder(&b)
	enc.SetIndent(2)
	if err := enc.Encode(tree); err != nil {
		return "", fferrors.WrapError(err, fferrors.CategoryRender, "yaml encoding failed").Build()
	}
	if err := enc.Close(); err != nil {
		return "", fferrors.WrapError(err, fferrors.CategoryRender, "yaml encoding failed").Build()
	}
	return b.String(), nil
}
