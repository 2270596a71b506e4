package loader

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadSchemaJSON(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "schema.json", `{
		"type": "object",
		"properties": {
			"commands": {"type": "array", "x-frontmatter-part": true}
		}
	}`)

	raw, tree, err := LoadSchema(path)
	require.NoError(t, err)
	require.NotNil(t, tree)
	assert.Contains(t, raw, "properties")

	kinds, err := tree.DetectedKinds()
	require.NoError(t, err)
	assert.Len(t, kinds, 1)
}

func TestLoadSchemaYAML(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "schema.yaml", `
type: object
properties:
  configs:
    type: array
    x-derived-from: "commands[].c1"
    x-derived-unique: true
`)

	_, tree, err := LoadSchema(path)
	require.NoError(t, err)

	kinds, err := tree.DetectedKinds()
	require.NoError(t, err)
	assert.Len(t, kinds, 2)
}

func TestLoadSchemaBadShape(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "schema.json", `["not","an","object"]`)

	_, _, err := LoadSchema(path)
	assert.Error(t, err)
}

func TestLoadTemplateAndResolvePath(t *testing.T) {
	dir := t.TempDir()
	schemaPath := writeFile(t, dir, "schema.json", `{}`)
	writeFile(t, dir, "container.json", `{"result": "{@items}"}`)

	resolved := ResolveTemplatePath(schemaPath, "container.json")
	tpl, err := LoadTemplate(resolved)
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"result": "{@items}"}, tpl)
}

func TestDiscoverSortedDeduplicated(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "b.md", "content")
	writeFile(t, dir, "a.md", "content")

	paths, err := Discover([]string{
		filepath.Join(dir, "*.md"),
		filepath.Join(dir, "a.md"),
	})
	require.NoError(t, err)
	require.Len(t, paths, 2)
	assert.Equal(t, filepath.Join(dir, "a.md"), paths[0])
	assert.Equal(t, filepath.Join(dir, "b.md"), paths[1])
}

func TestLoadDocumentsFrontMatterAndDefaults(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "doc.md", `---
title: Guide
commands:
  - name: init
    c1: git
---
# Body heading
`)

	docs, err := LoadDocuments([]string{filepath.Join(dir, "doc.md")}, map[string]any{"status": "draft"})
	require.NoError(t, err)
	require.Len(t, docs, 1)

	title, _ := docs[0].Data.Get("title")
	assert.Equal(t, "Guide", title)
	status, _ := docs[0].Data.Get("status")
	assert.Equal(t, "draft", status)
	c1, _ := docs[0].Data.Get("commands[0].c1")
	assert.Equal(t, "git", c1)
}

func TestLoadDocumentsTitleFallback(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "doc.md", `---
status: final
---
# Heading As Title

Body text.
`)

	docs, err := LoadDocuments([]string{filepath.Join(dir, "doc.md")}, nil)
	require.NoError(t, err)

	title, ok := docs[0].Data.Get("title")
	require.True(t, ok)
	assert.Equal(t, "Heading As Title", title)
}

func TestFallbackTitle(t *testing.T) {
	assert.Equal(t, "Top", FallbackTitle([]byte("# Top\n\n## Sub\n")))
	assert.Equal(t, "", FallbackTitle([]byte("## Only a subheading\n")))
	assert.Equal(t, "", FallbackTitle([]byte("no headings at all")))
}
