package storage

import (
	"bytes"
	"encoding/csv"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/go-json-experiment/json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"issuu-scraper/models"
)

func sampleResult() models.ScrapeResult {
	return models.ScrapeResult{
		Query: "Sécurité Et Signalisation",
		Matching: []models.Listing{{
			Title:           "Catalogue Sécurité 2024",
			PublicationLink: "https://issuu.com/securite-et-signalisation/docs/catalogue",
			AuthorLink:      "https://issuu.com/securite-et-signalisation",
			AuthorName:      "securite-et-signalisation",
			Price:           "€12",
		}},
		NonMatching: []models.Listing{{
			Title:           "Road <Signs> & Co",
			PublicationLink: "https://issuu.com/globex-inc/docs/signs",
			AuthorLink:      "https://issuu.com/globex-inc",
			AuthorName:      "globex-inc",
		}},
	}
}

func TestExportPath(t *testing.T) {
	assert.Equal(t, filepath.Join("out", "issuu_results_Acme_Corp.json"), ExportPath("out", "Acme Corp", "json"))
	assert.Equal(t, filepath.Join("out", "issuu_results_AB.csv"), ExportPath("out", " A/B ", "csv"))
}

func TestExportRecords(t *testing.T) {
	records := ExportRecords(sampleResult())

	require.Len(t, records, 2)
	assert.Equal(t, "Catalogue Sécurité 2024", records[0].Title)
	require.NotNil(t, records[0].Price)
	assert.Equal(t, "€12", *records[0].Price)
	assert.Nil(t, records[1].Price)
}

func TestJSONWriter(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested")
	path, err := NewJSONWriter(dir).Write(sampleResult())
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "issuu_results_Sécurité_Et_Signalisation.json"), path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	out := string(data)

	assert.Contains(t, out, `"title": "Catalogue Sécurité 2024"`, "non-ASCII stays unescaped")
	assert.Contains(t, out, `"price": null`)
	assert.Contains(t, out, `Road <Signs> & Co`)

	var decoded []map[string]any
	require.NoError(t, json.Unmarshal(data, &decoded))
	require.Len(t, decoded, 2)
	assert.Equal(t, "https://issuu.com/securite-et-signalisation/docs/catalogue", decoded[0]["publication_link"])
	assert.Equal(t, "https://issuu.com/globex-inc", decoded[1]["author_link"])
	for _, rec := range decoded {
		assert.Len(t, rec, 4)
	}
}

func TestJSONWriterEmptyResult(t *testing.T) {
	path, err := NewJSONWriter(t.TempDir()).Write(models.ScrapeResult{Query: "Nobody"})
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var decoded []map[string]any
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Empty(t, decoded)
}

type failingCloser struct {
	bytes.Buffer
	closeErr error
	closed   int
}

func (f *failingCloser) Close() error {
	f.closed++
	return f.closeErr
}

func TestWriteJSONReportsCloseError(t *testing.T) {
	w := &failingCloser{closeErr: errors.New("disk full")}

	err := writeJSON(w, ExportRecords(sampleResult()))

	require.Error(t, err)
	assert.ErrorIs(t, err, w.closeErr)
	assert.Equal(t, 1, w.closed)
	assert.Contains(t, w.String(), "Catalogue Sécurité 2024")
}

func TestWriteJSONClosesOnSuccess(t *testing.T) {
	w := &failingCloser{}

	require.NoError(t, writeJSON(w, ExportRecords(sampleResult())))
	assert.Equal(t, 1, w.closed)
}

func TestCSVWriter(t *testing.T) {
	path, err := NewCSVWriter(t.TempDir()).Write(sampleResult())
	require.NoError(t, err)

	file, err := os.Open(path)
	require.NoError(t, err)
	defer file.Close()

	rows, err := csv.NewReader(file).ReadAll()
	require.NoError(t, err)

	require.Len(t, rows, 3)
	assert.Equal(t, []string{"title", "publication_link", "author_link", "price", "match"}, rows[0])
	assert.Equal(t, "true", rows[1][4])
	assert.Equal(t, "€12", rows[1][3])
	assert.Equal(t, "false", rows[2][4])
	assert.Equal(t, "", rows[2][3])
}
