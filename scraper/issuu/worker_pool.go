package issuu

import (
	"context"

	"golang.org/x/sync/errgroup"

	"issuu-scraper/config"
	"issuu-scraper/models"
)

// WorkerPool runs several independent queries, at most MaxWorkers at once.
// Each query opens its own browser, so they share nothing.
type WorkerPool struct {
	scraper *Scraper
	cfg     *config.Config
}

func NewWorkerPool(scraper *Scraper, cfg *config.Config) *WorkerPool {
	return &WorkerPool{
		scraper: scraper,
		cfg:     cfg,
	}
}

// Run returns one QueryResult per company, in input order. A failed query
// does not stop the others.
func (p *WorkerPool) Run(ctx context.Context, companies []string) []models.QueryResult {
	results := make([]models.QueryResult, len(companies))

	var g errgroup.Group
	g.SetLimit(p.cfg.MaxWorkers)

	for i, company := range companies {
		g.Go(func() error {
			res, err := p.scraper.Scrape(ctx, company)
			results[i] = models.QueryResult{Query: company, Result: res, Error: err}
			return nil
		})
	}
	_ = g.Wait()

	failed := 0
	for _, r := range results {
		if r.Error != nil {
			failed++
		}
	}
	p.scraper.log.Info("Queries finished: %d | Failed: %d", len(results)-failed, failed)
	return results
}
