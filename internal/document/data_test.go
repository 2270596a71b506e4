package document

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	fferrors "git.home.luguber.info/inful/fmforge/internal/foundation/errors"
)

func sample() Data {
	return FromMap(map[string]any{
		"title": "Guide",
		"meta": map[string]any{
			"version": 2,
			"owner":   map[string]any{"name": "docs"},
		},
		"commands": []any{
			map[string]any{"name": "init", "c1": "git"},
			map[string]any{"name": "status", "c1": "debug"},
			map[string]any{"name": "commit", "c1": "git"},
		},
	})
}

func TestGetDottedAndIndexed(t *testing.T) {
	d := sample()

	v, ok := d.Get("meta.owner.name")
	require.True(t, ok)
	assert.Equal(t, "docs", v)

	v, ok = d.Get("commands[1].name")
	require.True(t, ok)
	assert.Equal(t, "status", v)

	_, ok = d.Get("commands[9].name")
	assert.False(t, ok)

	_, ok = d.Get("missing.path")
	assert.False(t, ok)
}

func TestGetExpansion(t *testing.T) {
	d := sample()

	v, ok := d.Get("commands[].c1")
	require.True(t, ok)
	assert.Equal(t, []any{"git", "debug", "git"}, v)

	// Trailing expansion with no remainder yields the array's elements.
	v, ok = d.Get("commands[]")
	require.True(t, ok)
	assert.Len(t, v, 3)
}

func TestSetIsFunctionalUpdate(t *testing.T) {
	d := sample()

	updated, err := d.Set("meta.reviewed", true)
	require.NoError(t, err)

	_, ok := d.Get("meta.reviewed")
	assert.False(t, ok, "original value must be unchanged")

	v, ok := updated.Get("meta.reviewed")
	require.True(t, ok)
	assert.Equal(t, true, v)
}

func TestSetCreatesIntermediates(t *testing.T) {
	d := FromMap(nil)
	updated, err := d.Set("a.b.c", "deep")
	require.NoError(t, err)

	v, ok := updated.Get("a.b.c")
	require.True(t, ok)
	assert.Equal(t, "deep", v)
}

func TestSetStructuralFailure(t *testing.T) {
	d := sample()

	_, err := d.Set("title.sub", "x")
	require.Error(t, err)
	assert.True(t, fferrors.HasCategory(err, fferrors.CategoryPropertyNotFound))

	_, err = d.Set("commands[].name", "x")
	require.Error(t, err)
	assert.True(t, fferrors.HasCategory(err, fferrors.CategoryInvalidFormat))
}

func TestValueIsDeepCopy(t *testing.T) {
	d := sample()
	m := d.Value()
	m["title"] = "mutated"
	m["meta"].(map[string]any)["version"] = 99

	v, _ := d.Get("title")
	assert.Equal(t, "Guide", v)
	v, _ = d.Get("meta.version")
	assert.Equal(t, 2, v)
}

func TestFromDocumentDefaults(t *testing.T) {
	d := FromDocument(
		map[string]any{
			"title": "Guide",
			"meta":  map[string]any{"owner": "docs"},
		},
		map[string]any{
			"status": "draft",
			"meta":   map[string]any{"version": 1, "owner": "nobody"},
		},
	)

	v, _ := d.Get("status")
	assert.Equal(t, "draft", v)
	v, _ = d.Get("meta.version")
	assert.Equal(t, 1, v)
	v, _ = d.Get("meta.owner")
	assert.Equal(t, "docs", v, "front matter wins over defaults")
}

func TestDelete(t *testing.T) {
	d := sample()
	trimmed := d.Delete("meta.owner")

	assert.True(t, d.Has("meta.owner"), "original retains the field")
	assert.False(t, trimmed.Has("meta.owner"))
	assert.True(t, trimmed.Has("meta.version"))
}

func TestEqual(t *testing.T) {
	assert.True(t, sample().Equal(sample()))

	changed, err := sample().Set("title", "Other")
	require.NoError(t, err)
	assert.False(t, sample().Equal(changed))
}

func TestParsePathErrors(t *testing.T) {
	for _, path := range []string{"", "a..b", "a[", "a[x]", "a[-1]"} {
		_, err := parsePath(path)
		assert.Error(t, err, "path %q", path)
	}
}
