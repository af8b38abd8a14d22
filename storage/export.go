package storage

import (
	"path/filepath"
	"strings"

	"issuu-scraper/models"
)

// ExportRecord is the flat shape written to JSON and CSV. Price is null in
// JSON when the listing had none.
type ExportRecord struct {
	Title           string  `json:"title"`
	PublicationLink string  `json:"publication_link"`
	AuthorLink      string  `json:"author_link"`
	Price           *string `json:"price"`
}

func NewExportRecord(l models.Listing) ExportRecord {
	r := ExportRecord{
		Title:           l.Title,
		PublicationLink: l.PublicationLink,
		AuthorLink:      l.AuthorLink,
	}
	if l.HasPrice() {
		price := l.Price
		r.Price = &price
	}
	return r
}

// ExportRecords flattens a result, matching listings first.
func ExportRecords(result models.ScrapeResult) []ExportRecord {
	all := result.All()
	records := make([]ExportRecord, 0, len(all))
	for _, l := range all {
		records = append(records, NewExportRecord(l))
	}
	return records
}

// ExportPath is <dir>/issuu_results_<company>.<ext>, spaces in the company
// name replaced by underscores and path separators removed.
func ExportPath(dir, companyName, ext string) string {
	name := strings.ReplaceAll(strings.TrimSpace(companyName), " ", "_")
	name = strings.NewReplacer("/", "", "\\", "", "..", "").Replace(name)
	return filepath.Join(dir, "issuu_results_"+name+"."+ext)
}
