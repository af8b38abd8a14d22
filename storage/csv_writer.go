package storage

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"

	"issuu-scraper/models"
	"issuu-scraper/utils"
)

// CSVWriter saves the same rows as the JSON export plus a match column.
type CSVWriter struct {
	dir string
}

func NewCSVWriter(dir string) *CSVWriter {
	return &CSVWriter{dir: dir}
}

// Write creates the output directory if needed and returns the file path.
//
// CSV columns: title, publication_link, author_link, price, match
func (w *CSVWriter) Write(result models.ScrapeResult) (string, error) {
	if err := os.MkdirAll(w.dir, 0755); err != nil {
		return "", fmt.Errorf("could not create output dir: %w", err)
	}

	path := ExportPath(w.dir, result.Query, "csv")
	file, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("could not create file: %w", err)
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	writer.Write([]string{"title", "publication_link", "author_link", "price", "match"})

	writeRows := func(listings []models.Listing, matched bool) {
		for _, l := range listings {
			writer.Write([]string{
				l.Title,
				l.PublicationLink,
				l.AuthorLink,
				l.Price,
				strconv.FormatBool(matched),
			})
		}
	}
	writeRows(result.Matching, true)
	writeRows(result.NonMatching, false)

	writer.Flush()
	if err := writer.Error(); err != nil {
		return "", fmt.Errorf("csv write error: %w", err)
	}

	utils.Success("Saved %d rows → %s", len(result.Matching)+len(result.NonMatching), path)
	return path, nil
}
