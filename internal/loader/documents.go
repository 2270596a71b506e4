package loader

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/adrg/frontmatter"

	fferrors "git.home.luguber.info/inful/fmforge/internal/foundation/errors"
	"git.home.luguber.info/inful/fmforge/internal/document"
)

// Document pairs a source file with its extracted front matter.
type Document struct {
	Path string
	Data document.Data
	Body []byte
}

// Discover expands the configured glob patterns into a sorted, de-duplicated
// list of markdown files.
func Discover(globs []string) ([]string, error) {
	seen := make(map[string]bool)
	var paths []string
	for _, pattern := range globs {
		matches, err := filepath.Glob(pattern)
		if err != nil {
			return nil, fferrors.WrapError(err, fferrors.CategoryConfig, fmt.Sprintf("bad glob pattern %q", pattern)).Build()
		}
		for _, m := range matches {
			if seen[m] {
				continue
			}
			seen[m] = true
			paths = append(paths, m)
		}
	}
	sort.Strings(paths)
	return paths, nil
}

// LoadDocuments reads every discovered file, extracts YAML front matter, and
// builds one Data per document merged over schema-declared defaults. Documents
// without front matter yield defaults-only data; a document missing a title
// falls back to its first level-1 markdown heading.
func LoadDocuments(paths []string, defaults map[string]any) ([]Document, error) {
	docs := make([]Document, 0, len(paths))
	for _, path := range paths {
		doc, err := loadDocument(path, defaults)
		if err != nil {
			return nil, err
		}
		docs = append(docs, doc)
	}
	return docs, nil
}

func loadDocument(path string, defaults map[string]any) (Document, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return Document{}, fferrors.WrapError(err, fferrors.CategoryFileSystem, fmt.Sprintf("read %s", path)).Build()
	}

	var matter map[string]any
	body, err := frontmatter.Parse(bytes.NewReader(content), &matter)
	if err != nil {
		return Document{}, fferrors.WrapError(err, fferrors.CategoryInvalidFormat, fmt.Sprintf("parse front matter in %s", path)).Build()
	}
	if matter == nil {
		matter = map[string]any{}
	}
	if m, ok := normalizeValue(matter).(map[string]any); ok {
		matter = m
	}

	if _, hasTitle := matter["title"]; !hasTitle {
		if title := FallbackTitle(body); title != "" {
			matter["title"] = title
		}
	}

	return Document{
		Path: path,
		Data: document.FromDocument(matter, defaults),
		Body: body,
	}, nil
}
