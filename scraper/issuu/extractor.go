package issuu

import (
	"net/url"
	"path"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"issuu-scraper/config"
	"issuu-scraper/models"
	"issuu-scraper/utils"
)

// Extractor reads listing cards out of a rendered results page. It never
// touches the browser.
type Extractor struct {
	sel config.Selectors
	log *utils.Logger
}

func NewExtractor(sel config.Selectors, log *utils.Logger) *Extractor {
	return &Extractor{sel: sel, log: log}
}

// Extract returns the well-formed listings on page in document order.
// Cards without a title or publication link are dropped. A card without an
// author link, or whose author link names no one, falls back to the account
// in the publication path (issuu.com/<author>/docs/<slug>).
func (e *Extractor) Extract(page models.Page) []models.Listing {
	doc := document(page)
	if doc == nil {
		return nil
	}
	base, _ := url.Parse(page.URL)

	var (
		listings []models.Listing
		dropped  int
	)
	doc.Find(e.sel.Card).Each(func(i int, card *goquery.Selection) {
		l, ok := e.extractCard(card, base)
		if !ok {
			dropped++
			return
		}
		listings = append(listings, l)
	})

	if dropped > 0 {
		e.log.Debug("Page %d: dropped %d malformed listings", page.Number, dropped)
	}
	return listings
}

func (e *Extractor) extractCard(card *goquery.Selection, base *url.URL) (models.Listing, bool) {
	title := ""
	if e.sel.Title != "" {
		title = cleanText(card.Find(e.sel.Title).First().Text())
	}
	pubHref, _ := card.Find(e.sel.PublicationLink).First().Attr("href")
	pubLink := resolveLink(base, pubHref)
	if title == "" || pubLink == "" {
		return models.Listing{}, false
	}

	var authorLink, authorText string
	if e.sel.AuthorLink != "" {
		a := card.Find(e.sel.AuthorLink).First()
		href, _ := a.Attr("href")
		authorLink = resolveLink(base, href)
		authorText = cleanText(a.Text())
	}
	if authorLink == "" {
		authorLink = authorFromPublication(pubLink)
	}
	if authorLink == "" {
		return models.Listing{}, false
	}

	authorName := lastSegment(authorLink)
	if authorName == "" {
		authorName = authorText
	}
	if authorName == "" {
		authorName = lastSegment(authorFromPublication(pubLink))
	}
	if authorName == "" {
		return models.Listing{}, false
	}

	price := ""
	if e.sel.Price != "" {
		price = cleanText(card.Find(e.sel.Price).First().Text())
	}

	return models.Listing{
		Title:           title,
		PublicationLink: pubLink,
		AuthorLink:      authorLink,
		AuthorName:      authorName,
		Price:           price,
	}, true
}

// NextPageURL returns the absolute target of the page's "next" control, if
// there is an enabled one.
func (e *Extractor) NextPageURL(page models.Page) (string, bool) {
	doc := document(page)
	if doc == nil || e.sel.NextPage == "" {
		return "", false
	}

	next := doc.Find(e.sel.NextPage).First()
	if next.Length() == 0 {
		return "", false
	}
	if _, disabled := next.Attr("disabled"); disabled || next.AttrOr("aria-disabled", "") == "true" {
		return "", false
	}

	base, _ := url.Parse(page.URL)
	href, _ := next.Attr("href")
	link := resolveLink(base, href)
	return link, link != ""
}

func (e *Extractor) CardCount(page models.Page) int {
	doc := document(page)
	if doc == nil {
		return 0
	}
	return doc.Find(e.sel.Card).Length()
}

func document(page models.Page) *goquery.Document {
	if page.Doc != nil {
		return page.Doc
	}
	if page.HTML == "" {
		return nil
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(page.HTML))
	if err != nil {
		return nil
	}
	return doc
}

// resolveLink makes href absolute against base and drops the fragment.
// Anything that does not end up as an http(s) URL yields "".
func resolveLink(base *url.URL, href string) string {
	href = strings.TrimSpace(href)
	if href == "" {
		return ""
	}
	u, err := url.Parse(href)
	if err != nil {
		return ""
	}
	if base != nil {
		u = base.ResolveReference(u)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return ""
	}
	u.Fragment = ""
	return u.String()
}

func authorFromPublication(pubLink string) string {
	u, err := url.Parse(pubLink)
	if err != nil {
		return ""
	}
	segments := strings.Split(strings.Trim(u.Path, "/"), "/")
	if len(segments) < 3 || segments[1] != "docs" || segments[0] == "" {
		return ""
	}
	return (&url.URL{Scheme: u.Scheme, Host: u.Host, Path: "/" + segments[0]}).String()
}

// lastSegment is the decoded final path element of link.
func lastSegment(link string) string {
	u, err := url.Parse(link)
	if err != nil {
		return ""
	}
	seg := path.Base(strings.TrimRight(u.Path, "/"))
	if seg == "." || seg == "/" {
		return ""
	}
	return seg
}

func cleanText(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
