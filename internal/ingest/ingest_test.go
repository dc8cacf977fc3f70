package ingest

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTruncate(t *testing.T) {
	t.Parallel()

	t.Run("short text is untouched", func(t *testing.T) {
		text, cut := Truncate("hello", 10)
		assert.Equal(t, "hello", text)
		assert.False(t, cut)
	})

	t.Run("long text is cut at the limit", func(t *testing.T) {
		text, cut := Truncate("hello world", 5)
		assert.Equal(t, "hello", text)
		assert.True(t, cut)
	})

	t.Run("limit counts runes and cuts on a rune boundary", func(t *testing.T) {
		text, cut := Truncate("héllo wörld", 5)
		assert.Equal(t, "héllo", text)
		assert.True(t, cut)
		assert.True(t, utf8.ValidString(text))
	})

	t.Run("multi-byte text within the rune limit is untouched", func(t *testing.T) {
		// 5 runes, 15 bytes.
		text, cut := Truncate("細胞のエネ", 5)
		assert.Equal(t, "細胞のエネ", text)
		assert.False(t, cut)
	})

	t.Run("zero limit disables truncation", func(t *testing.T) {
		text, cut := Truncate("hello world", 0)
		assert.Equal(t, "hello world", text)
		assert.False(t, cut)
	})

	t.Run("exact length is not a cut", func(t *testing.T) {
		text, cut := Truncate("hello", 5)
		assert.Equal(t, "hello", text)
		assert.False(t, cut)
	})
}

func TestTextFileExtractor(t *testing.T) {
	t.Parallel()

	writeFile := func(t *testing.T, content string) string {
		t.Helper()
		path := filepath.Join(t.TempDir(), "doc.txt")
		require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
		return path
	}

	extractor := TextFileExtractor{}
	ctx := context.Background()

	t.Run("form feeds split pages", func(t *testing.T) {
		path := writeFile(t, "page one\fpage two\fpage three")

		count, err := extractor.PageCount(ctx, path)
		require.NoError(t, err)
		assert.Equal(t, 3, count)

		second, err := extractor.ExtractPage(ctx, path, 1)
		require.NoError(t, err)
		assert.Equal(t, "page two", second)
	})

	t.Run("file without form feeds is a single page", func(t *testing.T) {
		path := writeFile(t, "just one page")

		count, err := extractor.PageCount(ctx, path)
		require.NoError(t, err)
		assert.Equal(t, 1, count)
	})

	t.Run("missing file fails", func(t *testing.T) {
		_, err := extractor.PageCount(ctx, "/nonexistent/doc.txt")
		assert.Error(t, err)

		_, err = extractor.ExtractPage(ctx, "/nonexistent/doc.txt", 0)
		assert.Error(t, err)
	})

	t.Run("page index out of range fails", func(t *testing.T) {
		path := writeFile(t, "only page")
		_, err := extractor.ExtractPage(ctx, path, 3)
		assert.Error(t, err)
	})
}
