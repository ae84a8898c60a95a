package helpers

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/require"
)

func TestSanitizeRemovesUnsafeChars(t *testing.T) {
	require.Equal(t, "abcd", Sanitize(`a/b:c*d`, DefaultMaxNameBytes))
	require.Equal(t, "", Sanitize(`<>:"/\|?*`, DefaultMaxNameBytes))
	require.Equal(t, "plain name", Sanitize("plain name", DefaultMaxNameBytes))
	require.Equal(t, "", Sanitize("", DefaultMaxNameBytes))
}

func TestSanitizeTruncatesToByteLimit(t *testing.T) {
	long := strings.Repeat("a", 201)
	got := Sanitize(long, 200)
	require.Len(t, got, 200)
	require.Equal(t, strings.Repeat("a", 200), got)
}

func TestSanitizeTruncatesOnRuneBoundary(t *testing.T) {
	long := strings.Repeat("Пр", 200) // 2 bytes per rune
	got := Sanitize(long, 100)
	require.LessOrEqual(t, len(got), 100)
	require.True(t, utf8.ValidString(got))
}

func TestSanitizeTrimsTrailingWhitespaceAfterCut(t *testing.T) {
	s := strings.Repeat("a", 199) + " b"
	got := Sanitize(s, 200)
	require.Equal(t, strings.Repeat("a", 199), got)
}

func TestSanitizeProperty(t *testing.T) {
	inputs := []string{
		"ordinary",
		`we/ird:"title"`,
		strings.Repeat("词", 300),
		"mixed Пример <of> every?thing*" + strings.Repeat("x", 500),
	}
	for _, in := range inputs {
		for _, limit := range []int{10, 100, 200} {
			got := Sanitize(in, limit)
			require.LessOrEqual(t, len(got), limit)
			require.True(t, utf8.ValidString(got))
			require.NotContains(t, got, "/")
			require.NotContains(t, got, "*")
			require.NotContains(t, got, "?")
		}
	}
}

func TestFileAndDirExists(t *testing.T) {
	dir := t.TempDir()
	ok, err := DirExists(dir)
	require.NoError(t, err)
	require.True(t, ok)

	ok, err = FileExists(dir)
	require.NoError(t, err)
	require.False(t, ok)

	ok, err = DirExists(dir + "/nope")
	require.NoError(t, err)
	require.False(t, ok)
}
