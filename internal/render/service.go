// Package render combines container and per-item templates into a fully
// resolved tree and serializes it to the configured output format.
package render

import (
	"log/slog"

	fferrors "git.home.luguber.info/inful/fmforge/internal/foundation/errors"
	"git.home.luguber.info/inful/fmforge/internal/document"
	"git.home.luguber.info/inful/fmforge/internal/template"
)

// Service drives two-layer template rendering and hands the result to a
// format-specific serializer.
type Service struct {
	renderer   *template.Renderer
	serializer Serializer
	logger     *slog.Logger
}

// NewService creates a rendering service. A nil logger falls back to slog.Default().
func NewService(renderer *template.Renderer, serializer Serializer, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{renderer: renderer, serializer: serializer, logger: logger}
}

// RenderOutput performs the two-layer composition: when an item template is
// supplied, every element of items is rendered through it first, and the
// container's expansion markers are replaced with that rendered list; with no
// item template the container is rendered single-layer against main alone.
// Template structure is validated (duplicate expansion keys) before any data
// substitution happens.
func (s *Service) RenderOutput(container, itemTemplate any, main document.Data, items []document.Data) (string, error) {
	structure, err := template.Analyze(container)
	if err != nil {
		return "", err
	}

	var tree any
	if itemTemplate != nil {
		renderedItems, err := s.renderer.RenderEach(itemTemplate, items)
		if err != nil {
			return "", fferrors.WrapError(err, fferrors.CategoryTemplateMapping, "item template rendering failed").Build()
		}
		rendered := make(map[string][]any, len(structure.Expansions))
		for _, marker := range structure.Expansions {
			rendered[marker.Key] = renderedItems
		}
		tree, err = s.renderer.ExpandArrays(container, rendered, main)
		if err != nil {
			return "", fferrors.WrapError(err, fferrors.CategoryTemplateMapping, "container expansion failed").Build()
		}
	} else {
		tree, err = s.renderer.Render(container, main)
		if err != nil {
			return "", fferrors.WrapError(err, fferrors.CategoryTemplateMapping, "container rendering failed").Build()
		}
	}

	s.logger.Debug("template resolved",
		slog.Int("items", len(items)),
		slog.Int("expansion_markers", len(structure.Expansions)),
		slog.Int("variable_refs", len(structure.Variables)))

	out, err := s.serializer.Serialize(tree)
	if err != nil {
		return "", fferrors.WrapError(err, fferrors.CategoryRender, "serialization failed").Build()
	}
	return out, nil
}
