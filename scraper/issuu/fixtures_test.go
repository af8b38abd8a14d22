package issuu

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"issuu-scraper/config"
)

const testBase = "https://issuu.test"

func testConfig() *config.Config {
	cfg := config.DefaultConfig()
	cfg.BaseURL = testBase
	cfg.MinDelay = 0
	cfg.MaxDelay = 0
	cfg.RetryBackoff = 0
	cfg.MaxPages = 10
	return cfg
}

func searchURL(company string) string {
	return testConfig().SearchURL(company)
}

type cardFixture struct {
	Title      string
	PubHref    string
	AuthorHref string
	AuthorText string
	Price      string
}

func renderCard(c cardFixture) string {
	var b strings.Builder
	b.WriteString(`<div data-testid="publication-card">`)
	if c.PubHref != "" {
		fmt.Fprintf(&b, `<a href="%s"><img src="cover.jpg"></a>`, c.PubHref)
	}
	if c.Title != "" {
		fmt.Fprintf(&b, `<h3 data-testid="publication-card-title">%s</h3>`, c.Title)
	}
	if c.AuthorHref != "" {
		fmt.Fprintf(&b, `<a data-testid="publication-card-author" href="%s">%s</a>`, c.AuthorHref, c.AuthorText)
	}
	if c.Price != "" {
		fmt.Fprintf(&b, `<span data-testid="publication-card-price">%s</span>`, c.Price)
	}
	b.WriteString(`</div>`)
	return b.String()
}

func resultsPage(next string, cards ...cardFixture) string {
	var b strings.Builder
	b.WriteString(`<html><body><main><section class="results">`)
	for _, c := range cards {
		b.WriteString(renderCard(c))
	}
	b.WriteString(`</section>`)
	if next != "" {
		fmt.Fprintf(&b, `<nav><a rel="next" href="%s">Next</a></nav>`, next)
	}
	b.WriteString(`</main></body></html>`)
	return b.String()
}

func pubCard(author, slug string) cardFixture {
	return cardFixture{
		Title:      "Publication " + slug,
		PubHref:    "/" + author + "/docs/" + slug,
		AuthorHref: "/" + author,
		AuthorText: author,
	}
}

var errFetch = errors.New("net::ERR_TIMED_OUT")

// fakeBrowser serves fixed HTML per URL. failures[url] is how many times a
// fetch fails before succeeding; a negative value fails forever.
type fakeBrowser struct {
	mu       sync.Mutex
	pages    map[string]string
	failures map[string]int
	calls    map[string]int
	closed   int
}

func newFakeBrowser(pages map[string]string) *fakeBrowser {
	return &fakeBrowser{
		pages:    pages,
		failures: make(map[string]int),
		calls:    make(map[string]int),
	}
}

func (b *fakeBrowser) Fetch(ctx context.Context, url string) (string, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return "", err
	}
	b.calls[url]++
	if n := b.failures[url]; n < 0 || b.calls[url] <= n {
		return "", fmt.Errorf("%w: %s: %w", ErrNavigation, url, errFetch)
	}
	html, ok := b.pages[url]
	if !ok {
		return "", fmt.Errorf("%w: %s: 404", ErrNavigation, url)
	}
	return html, nil
}

func (b *fakeBrowser) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.closed++
}

func (b *fakeBrowser) callCount(url string) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.calls[url]
}

type fakeLauncher struct {
	mu       sync.Mutex
	browsers func() *fakeBrowser
	err      error
	launched []*fakeBrowser
}

func (l *fakeLauncher) Launch(ctx context.Context) (Browser, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLaunchFailure, l.err)
	}
	b := l.browsers()
	l.launched = append(l.launched, b)
	return b, nil
}
