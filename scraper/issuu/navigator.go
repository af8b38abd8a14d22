package issuu

import (
	"context"
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"issuu-scraper/config"
	"issuu-scraper/models"
	"issuu-scraper/utils"
)

// Navigator walks the issuu search results for one query, one page at a
// time, in a single browser tab.
type Navigator struct {
	browser   Browser
	extractor *Extractor
	cfg       *config.Config
	log       *utils.Logger
}

func NewNavigator(browser Browser, extractor *Extractor, cfg *config.Config, log *utils.Logger) *Navigator {
	return &Navigator{
		browser:   browser,
		extractor: extractor,
		cfg:       cfg,
		log:       log,
	}
}

// Search returns a lazy sequence of results pages for companyName. Nothing
// is loaded until the first call to Next.
func (n *Navigator) Search(companyName string) *PageSequence {
	return &PageSequence{
		nav:     n,
		nextURL: n.cfg.SearchURL(companyName),
		visited: make(map[string]bool),
	}
}

// PageSequence yields rendered pages until there is no next page, MaxPages
// is reached, or a page fails all of its attempts. It cannot be restarted.
//
//	seq := nav.Search("Acme Corp")
//	for seq.Next(ctx) {
//	    page := seq.Page()
//	}
type PageSequence struct {
	nav       *Navigator
	nextURL   string
	visited   map[string]bool
	current   models.Page
	outcomes  []models.PageOutcome
	truncated bool
	done      bool
}

func (s *PageSequence) Next(ctx context.Context) bool {
	if s.done {
		return false
	}
	if s.nextURL == "" || len(s.outcomes) >= s.nav.cfg.MaxPages {
		s.done = true
		return false
	}

	number := len(s.outcomes) + 1
	if number > 1 {
		if err := utils.RandomDelay(ctx, s.nav.cfg.MinDelay, s.nav.cfg.MaxDelay); err != nil {
			s.stop("cancelled before page %d: %v", number, err)
			return false
		}
	}

	page, outcome := s.nav.load(ctx, number, s.nextURL)
	s.outcomes = append(s.outcomes, outcome)
	if outcome.State != models.PageSucceeded {
		s.stop("page %d skipped, keeping %d earlier pages", number, number-1)
		return false
	}

	s.visited[page.URL] = true
	s.current = page
	s.nextURL = ""
	if s.nav.extractor.CardCount(page) > 0 {
		if next, ok := s.nav.extractor.NextPageURL(page); ok && !s.visited[next] {
			s.nextURL = next
		}
	}
	return true
}

func (s *PageSequence) stop(format string, a ...any) {
	s.truncated = true
	s.done = true
	s.nav.log.Warn("Search stopped early: "+format, a...)
}

func (s *PageSequence) Page() models.Page {
	return s.current
}

func (s *PageSequence) Outcomes() []models.PageOutcome {
	return append([]models.PageOutcome{}, s.outcomes...)
}

// Truncated reports whether the sequence ended because of a failure rather
// than running out of pages.
func (s *PageSequence) Truncated() bool {
	return s.truncated
}

func (s *PageSequence) Succeeded() int {
	n := 0
	for _, o := range s.outcomes {
		if o.State == models.PageSucceeded {
			n++
		}
	}
	return n
}

// load drives one page through Pending -> Retrying(n) -> Succeeded|Skipped.
// Every attempt gets its own navigation timeout.
func (n *Navigator) load(ctx context.Context, number int, pageURL string) (models.Page, models.PageOutcome) {
	outcome := models.PageOutcome{Number: number, URL: pageURL, State: models.PagePending}
	maxAttempts := 1 + n.cfg.PageRetries

	var page models.Page
	err := utils.Retry(ctx, maxAttempts, n.cfg.RetryBackoff, func(attempt int) error {
		outcome.Attempts = attempt
		if attempt > 1 {
			outcome.State = models.PageRetrying
			n.log.Warn("Page %d: retry %d/%d", number, attempt-1, n.cfg.PageRetries)
		}

		html, err := n.browser.Fetch(ctx, pageURL)
		if err != nil {
			return err
		}
		doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
		if err != nil {
			return fmt.Errorf("parse page %d: %w", number, err)
		}
		page = models.Page{Number: number, URL: pageURL, HTML: html, Doc: doc}
		return nil
	})
	if err != nil {
		outcome.State = models.PageSkipped
		outcome.Err = err
		n.log.Error("Page %d failed after %d attempts: %v", number, outcome.Attempts, err)
		return models.Page{}, outcome
	}

	outcome.State = models.PageSucceeded
	n.log.Debug("Page %d loaded: %s", number, pageURL)
	return page, outcome
}
