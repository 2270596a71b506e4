package render

import (
	"github.com/goccy/go-json"

	fferrors "git.home.luguber.info/inful/fmforge/internal/foundation/errors"
)

type jsonSerializer struct{}

func (jsonSerializer) Serialize(tree any) (string, error) {
	out, err := json.MarshalIndent(tree, "", "  ")
	if err != nil {
		return "", fferrors.WrapError(err, fferrors.CategoryRender, "json encoding failed").Build()
	}
	return string(out) + "\n", nil
}
