// Package storage writes extracted page text to the output directory as
// markdown files.
package storage

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/maverock24/webToText/internal/devtools"
)

// Writer saves extraction results under a base output directory.
type Writer struct {
	dir string
}

// NewWriter creates a Writer. The directory is created on first save.
func NewWriter(dir string) *Writer {
	return &Writer{dir: dir}
}

// SavePage writes one page's text to its own file and returns the path.
func (w *Writer) SavePage(pageURL, text string) (string, error) {
	if err := os.MkdirAll(w.dir, 0o755); err != nil {
		return "", fmt.Errorf("create output dir %s: %w", w.dir, err)
	}

	now := time.Now()
	path := filepath.Join(w.dir, FilenameForURL(pageURL, now))

	var b strings.Builder
	fmt.Fprintf(&b, "# Content from %s\n", pageURL)
	fmt.Fprintf(&b, "Extracted: %s\n", now.Format("2006-01-02 15:04:05"))
	if parsed, err := url.Parse(pageURL); err == nil {
		fmt.Fprintf(&b, "Source: %s%s\n", parsed.Hostname(), parsed.Path)
	}
	b.WriteString("\n")
	b.WriteString(text)

	if err := os.WriteFile(path, []byte(b.String()), 0o644); err != nil {
		return "", fmt.Errorf("write %s: %w", path, err)
	}
	return path, nil
}

// SaveBatch writes all tab results to a single file with numbered sections
// and separators, and returns the path.
func (w *Writer) SaveBatch(results []devtools.TabResult) (string, error) {
	if err := os.MkdirAll(w.dir, 0o755); err != nil {
		return "", fmt.Errorf("create output dir %s: %w", w.dir, err)
	}

	now := time.Now()
	path := filepath.Join(w.dir, fmt.Sprintf("all_tabs_%s.md", now.Format("20060102_150405")))

	var b strings.Builder
	b.WriteString("# Browser Tabs Content\n")
	fmt.Fprintf(&b, "Extracted: %s\n\n", now.Format("2006-01-02 15:04:05"))

	for i, res := range results {
		fmt.Fprintf(&b, "## %d. %s\n", i+1, res.Title)
		fmt.Fprintf(&b, "URL: %s\n\n", res.URL)
		b.WriteString(res.Body())
		b.WriteString("\n\n---\n\n")
	}

	if err := os.WriteFile(path, []byte(b.String()), 0o644); err != nil {
		return "", fmt.Errorf("write %s: %w", path, err)
	}
	return path, nil
}
