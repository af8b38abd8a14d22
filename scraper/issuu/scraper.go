package issuu

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"issuu-scraper/config"
	"issuu-scraper/models"
	"issuu-scraper/services"
	"issuu-scraper/utils"
)

// Scraper runs complete searches. It holds no per-query state and can be
// used from several goroutines; every Scrape call gets its own browser.
type Scraper struct {
	cfg      *config.Config
	launcher Launcher
	matcher  *services.Matcher
	log      *utils.Logger
}

// NewScraper uses a ChromeLauncher when launcher is nil.
func NewScraper(cfg *config.Config, launcher Launcher, log *utils.Logger) *Scraper {
	if log == nil {
		log = utils.L()
	}
	if launcher == nil {
		launcher = NewChromeLauncher(cfg, log)
	}
	return &Scraper{
		cfg:      cfg,
		launcher: launcher,
		matcher:  services.NewMatcher(cfg.Match),
		log:      log,
	}
}

// Scrape searches issuu for companyName and partitions every publication
// found by whether its author resembles the company.
//
// A browser that cannot start is returned as an error wrapping
// ErrLaunchFailure. Page failures are not errors: the pages gathered so far
// are returned with Truncated set.
func (s *Scraper) Scrape(ctx context.Context, companyName string) (models.ScrapeResult, error) {
	companyName = strings.TrimSpace(companyName)
	if companyName == "" {
		return models.ScrapeResult{}, ErrEmptyCompany
	}

	runID := uuid.NewString()
	log := s.log.With("run", runID, "query", companyName)
	log.Info("Searching issuu for %q", companyName)

	browser, err := s.launcher.Launch(ctx)
	if err != nil {
		log.Error("Could not start browser: %v", err)
		return models.ScrapeResult{}, err
	}
	defer browser.Close()

	extractor := NewExtractor(s.cfg.Selectors, log)
	seq := NewNavigator(browser, extractor, s.cfg, log).Search(companyName)
	agg := services.NewAggregator()

	for seq.Next(ctx) {
		page := seq.Page()
		listings := extractor.Extract(page)

		added := 0
		for _, l := range listings {
			if agg.Add(l, s.matcher.Match(l.AuthorName, companyName)) {
				added++
			}
		}
		log.Info("Page %d: %d listings, %d new", page.Number, len(listings), added)
	}

	result := agg.Result()
	result.RunID = runID
	result.Query = companyName
	result.PagesScraped = seq.Succeeded()
	result.Truncated = seq.Truncated()

	log.Success("Found %d matching and %d non-matching publications (%d pages, %d duplicates)",
		len(result.Matching), len(result.NonMatching), result.PagesScraped, agg.Duplicates())
	return result, nil
}

// ScrapeIssuuResults is the one-shot form of Scraper.Scrape with a real
// Chrome session.
func ScrapeIssuuResults(ctx context.Context, cfg *config.Config, companyName string) (matching, nonMatching []models.Listing, err error) {
	result, err := NewScraper(cfg, nil, nil).Scrape(ctx, companyName)
	if err != nil {
		return nil, nil, err
	}
	return result.Matching, result.NonMatching, nil
}
