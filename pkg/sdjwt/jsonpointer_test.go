package sdjwt

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJsonPointerRootIsEmptyString(t *testing.T) {
	p, err := ParseJsonPointer("")
	require.NoError(t, err)
	assert.Empty(t, p.Tokens)
	assert.Equal(t, "", p.String())
}

func TestJsonPointerUnescaping(t *testing.T) {
	p, err := ParseJsonPointer("/a~1b/c~0d")
	require.NoError(t, err)
	assert.Equal(t, []string{"a/b", "c~d"}, p.Tokens)
	assert.Equal(t, "/a~1b/c~0d", p.String())
}

func TestJsonPointerRejectsMissingLeadingSlash(t *testing.T) {
	_, err := ParseJsonPointer("a/b")
	assert.Error(t, err)
}

func TestJsonPointerResolve(t *testing.T) {
	doc := map[string]any{
		"address": map[string]any{
			"street": "Main St",
		},
		"items": []any{"first", "second"},
	}

	p, err := ParseJsonPointer("/address/street")
	require.NoError(t, err)
	v, err := p.Resolve(doc)
	require.NoError(t, err)
	assert.Equal(t, "Main St", v)

	p2, err := ParseJsonPointer("/items/1")
	require.NoError(t, err)
	v2, err := p2.Resolve(doc)
	require.NoError(t, err)
	assert.Equal(t, "second", v2)
}

func TestJsonPointerResolveRejectsLeadingZeroIndex(t *testing.T) {
	doc := map[string]any{"items": []any{"a", "b"}}
	p, err := ParseJsonPointer("/items/01")
	require.NoError(t, err)
	_, err = p.Resolve(doc)
	assert.Error(t, err)
}

func TestJsonPointerResolveOutOfRange(t *testing.T) {
	doc := map[string]any{"items": []any{"a"}}
	p, err := ParseJsonPointer("/items/5")
	require.NoError(t, err)
	_, err = p.Resolve(doc)
	assert.Error(t, err)
}
