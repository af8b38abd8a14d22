package services

import (
	"strings"

	"issuu-scraper/models"
)

// Decision pairs a listing with the matcher's verdict.
type Decision struct {
	Listing models.Listing
	Matched bool
}

// Aggregator partitions listings into matching and non-matching, keeping
// only the first listing seen for each publication link.
type Aggregator struct {
	seen        map[string]bool
	matching    []models.Listing
	nonMatching []models.Listing
	duplicates  int
}

func NewAggregator() *Aggregator {
	return &Aggregator{seen: make(map[string]bool)}
}

// Add records l and reports whether it was new. Duplicates and listings
// without a publication link are dropped.
func (a *Aggregator) Add(l models.Listing, matched bool) bool {
	key := strings.TrimSpace(l.PublicationLink)
	if key == "" {
		return false
	}
	if a.seen[key] {
		a.duplicates++
		return false
	}
	a.seen[key] = true

	if matched {
		a.matching = append(a.matching, l)
	} else {
		a.nonMatching = append(a.nonMatching, l)
	}
	return true
}

func (a *Aggregator) Duplicates() int {
	return a.duplicates
}

func (a *Aggregator) Len() int {
	return len(a.seen)
}

// Result returns copies of both partitions in first-seen order.
func (a *Aggregator) Result() models.ScrapeResult {
	return models.ScrapeResult{
		Matching:    append([]models.Listing{}, a.matching...),
		NonMatching: append([]models.Listing{}, a.nonMatching...),
	}
}

func Aggregate(decisions []Decision) models.ScrapeResult {
	agg := NewAggregator()
	for _, d := range decisions {
		agg.Add(d.Listing, d.Matched)
	}
	return agg.Result()
}
