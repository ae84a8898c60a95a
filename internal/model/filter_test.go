package model

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseCategory(t *testing.T) {
	c, err := ParseCategory(" Boosty_Videos ")
	require.NoError(t, err)
	require.Equal(t, CategoryBoostyVideos, c)

	_, err = ParseCategory("movies")
	require.Error(t, err)
}

func TestCategorySetOps(t *testing.T) {
	a := NewCategorySet(CategoryFiles, CategoryAudio)
	b := NewCategorySet(CategoryAudio)

	require.True(t, a.Has(CategoryFiles))
	require.False(t, b.Has(CategoryFiles))

	diff := a.Subtract(b)
	require.True(t, diff.Equal(NewCategorySet(CategoryFiles)))

	union := b.Union(NewCategorySet(CategoryPostContent))
	require.True(t, union.Equal(NewCategorySet(CategoryAudio, CategoryPostContent)))

	clone := a.Clone()
	clone.Add(CategoryPostContent)
	require.False(t, a.Has(CategoryPostContent), "clone must be independent")
}

func TestCategorySetStringRoundTrip(t *testing.T) {
	set := NewCategorySet(CategoryPostContent, CategoryFiles, CategoryAudio)
	parsed, err := ParseCategorySet(set.String())
	require.NoError(t, err)
	require.True(t, parsed.Equal(set))

	empty, err := ParseCategorySet("")
	require.NoError(t, err)
	require.Empty(t, empty)

	_, err = ParseCategorySet("files,bogus")
	require.Error(t, err)
}
