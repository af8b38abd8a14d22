package models

import "github.com/PuerkitoBio/goquery"

// Listing is one publication found on an issuu search results page.
// Price is empty when the card carries no price.
type Listing struct {
	Title           string
	PublicationLink string
	AuthorLink      string
	AuthorName      string
	Price           string
}

func (l Listing) HasPrice() bool {
	return l.Price != ""
}

// Page is one rendered search results page. Doc is parsed once by the
// navigator and shared with the extractor.
type Page struct {
	Number int
	URL    string
	HTML   string
	Doc    *goquery.Document
}

type PageState string

const (
	PagePending   PageState = "pending"
	PageRetrying  PageState = "retrying"
	PageSucceeded PageState = "succeeded"
	PageSkipped   PageState = "skipped"
)

// PageOutcome records how a single page navigation ended.
type PageOutcome struct {
	Number   int
	URL      string
	State    PageState
	Attempts int
	Err      error
}

type ScrapeResult struct {
	RunID        string
	Query        string
	Matching     []Listing
	NonMatching  []Listing
	PagesScraped int
	Truncated    bool
}

// All returns matching followed by non-matching listings.
func (r ScrapeResult) All() []Listing {
	all := make([]Listing, 0, len(r.Matching)+len(r.NonMatching))
	all = append(all, r.Matching...)
	return append(all, r.NonMatching...)
}

func (r ScrapeResult) Empty() bool {
	return len(r.Matching) == 0 && len(r.NonMatching) == 0
}

type QueryResult struct {
	Query  string
	Result ScrapeResult
	Error  error
}
