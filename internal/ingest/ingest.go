// Package ingest handles turning a generation request's source into
// prompt-ready text: inline raw text is truncated to the configured
// maximum, and documents are extracted page by page through the
// DocumentExtractor boundary.
package ingest

import (
	"context"
	"fmt"
	"os"
	"strings"
	"unicode/utf8"
)

// DocumentExtractor extracts text from a paged document. The concrete
// extraction library is a collaborator outside this module; the pipeline
// only depends on this interface.
// Version: 1.0
type DocumentExtractor interface {
	// PageCount returns the number of pages in the document.
	// Failure to open the document is a fatal ingestion error.
	PageCount(ctx context.Context, path string) (int, error)

	// ExtractPage returns the text of the page at the given zero-based
	// index.
	ExtractPage(ctx context.Context, path string, index int) (string, error)
}

// Truncate bounds text to max runes, cutting on a rune boundary so the
// result is always valid UTF-8. The second return reports whether
// anything was cut. Truncation is a lossy step, not an error.
func Truncate(text string, max int) (string, bool) {
	if max <= 0 || utf8.RuneCountInString(text) <= max {
		return text, false
	}

	count := 0
	for i := range text {
		if count == max {
			return text[:i], true
		}
		count++
	}
	return text, false
}

// TextFileExtractor is a reference DocumentExtractor for plain-text
// files, treating form feeds as page breaks. It stands in for a real
// PDF extractor in development and tests.
type TextFileExtractor struct{}

func (TextFileExtractor) pages(path string) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open document %s: %w", path, err)
	}
	return strings.Split(string(data), "\f"), nil
}

// PageCount implements DocumentExtractor.
func (e TextFileExtractor) PageCount(_ context.Context, path string) (int, error) {
	pages, err := e.pages(path)
	if err != nil {
		return 0, err
	}
	return len(pages), nil
}

// ExtractPage implements DocumentExtractor.
func (e TextFileExtractor) ExtractPage(_ context.Context, path string, index int) (string, error) {
	pages, err := e.pages(path)
	if err != nil {
		return "", err
	}
	if index < 0 || index >= len(pages) {
		return "", fmt.Errorf("page index %d out of range for %s (%d pages)", index, path, len(pages))
	}
	return pages[index], nil
}
