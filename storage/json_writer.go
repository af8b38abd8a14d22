package storage

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/go-json-experiment/json"
	"github.com/go-json-experiment/json/jsontext"

	"issuu-scraper/models"
	"issuu-scraper/utils"
)

// JSONWriter writes the concatenated matching and non-matching listings as
// an indented JSON array. Non-ASCII text is written as is.
type JSONWriter struct {
	dir string
}

func NewJSONWriter(dir string) *JSONWriter {
	return &JSONWriter{dir: dir}
}

// Write returns the path of the file it created.
func (w *JSONWriter) Write(result models.ScrapeResult) (string, error) {
	if err := os.MkdirAll(w.dir, 0755); err != nil {
		return "", fmt.Errorf("could not create output dir: %w", err)
	}

	path := ExportPath(w.dir, result.Query, "json")
	file, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("could not create file: %w", err)
	}
	if err := writeJSON(file, ExportRecords(result)); err != nil {
		return "", err
	}

	utils.Success("Saved %d publications → %s", len(result.Matching)+len(result.NonMatching), filepath.ToSlash(path))
	return path, nil
}

// writeJSON always closes w. A failed close means the data may not have
// reached disk and is reported like a failed write.
func writeJSON(w io.WriteCloser, records []ExportRecord) error {
	if err := json.MarshalWrite(w, records, jsontext.WithIndent("  ")); err != nil {
		_ = w.Close()
		return fmt.Errorf("json write error: %w", err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("could not close file: %w", err)
	}
	return nil
}
