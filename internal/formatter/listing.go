// Package formatter renders stream records into the Markdown and plain-text
// listings, and into a console preview table.
package formatter

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"livecrawl/internal/models"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// WriteMarkdown writes one "[title](url)" line per record, BOM first.
func WriteMarkdown(w io.Writer, records []models.StreamRecord) error {
	return writeBOM(w, func(bw *bufio.Writer) error {
		for _, rec := range records {
			if _, err := fmt.Fprintf(bw, "[%s](%s)\n", rec.Title, rec.URL); err != nil {
				return err
			}
		}

		return nil
	})
}

// WriteText writes the header line, a blank line, then each record as a
// title line and a URL line followed by a blank line, BOM first.
func WriteText(w io.Writer, header string, records []models.StreamRecord) error {
	return writeBOM(w, func(bw *bufio.Writer) error {
		if _, err := fmt.Fprintf(bw, "%s\n\n", header); err != nil {
			return err
		}

		for _, rec := range records {
			if _, err := fmt.Fprintf(bw, "%s\n%s\n\n", rec.Title, rec.URL); err != nil {
				return err
			}
		}

		return nil
	})
}

// FileSet names the two listings written by WriteFiles.
type FileSet struct {
	MarkdownPath string
	TextPath     string
	TextHeader   string
	CreateBackup bool
}

// WriteFiles writes both listings, creating parent directories and, when
// CreateBackup is set, renaming existing files to "<name>.bak" first.
func WriteFiles(files FileSet, records []models.StreamRecord) error {
	if err := writeFile(files.MarkdownPath, files.CreateBackup, func(w io.Writer) error {
		return WriteMarkdown(w, records)
	}); err != nil {
		return err
	}

	return writeFile(files.TextPath, files.CreateBackup, func(w io.Writer) error {
		return WriteText(w, files.TextHeader, records)
	})
}

func writeFile(path string, backup bool, render func(io.Writer) error) (err error) {
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if mkdirErr := os.MkdirAll(dir, 0755); mkdirErr != nil {
			return fmt.Errorf("could not create output directory: %w", mkdirErr)
		}
	}

	if backup {
		if _, statErr := os.Stat(path); statErr == nil {
			if renameErr := os.Rename(path, path+".bak"); renameErr != nil {
				return fmt.Errorf("could not create backup: %w", renameErr)
			}
		}
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}

	defer func() {
		if closeErr := f.Close(); closeErr != nil && err == nil {
			err = fmt.Errorf("failed to close %s: %w", path, closeErr)
		}
	}()

	if err := render(f); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}

	return nil
}

// writeBOM runs body against a buffered writer whose output is UTF-8 with a
// leading byte-order mark.
func writeBOM(w io.Writer, body func(*bufio.Writer) error) error {
	enc := transform.NewWriter(w, unicode.UTF8BOM.NewEncoder())
	bw := bufio.NewWriter(enc)

	if err := body(bw); err != nil {
		return err
	}

	if err := bw.Flush(); err != nil {
		return err
	}

	return enc.Close()
}
