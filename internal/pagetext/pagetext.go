// Package pagetext supplies per-page document text to the excerpt extractor.
// The pipeline consumes already-extracted page text; the only production
// source shells out to pdftotext.
package pagetext

import "fmt"

// Source yields the ordered page texts of one document.
type Source interface {
	NumPages() int
	Page(i int) (string, error)
}

// Memory is a slice-backed Source. The pdftotext adapter returns one, and
// tests build them directly.
type Memory []string

func (m Memory) NumPages() int { return len(m) }

func (m Memory) Page(i int) (string, error) {
	if i < 0 || i >= len(m) {
		return "", fmt.Errorf("page %d out of range (have %d)", i, len(m))
	}
	return m[i], nil
}
