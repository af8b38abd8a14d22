package issuu

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"issuu-scraper/config"
	"issuu-scraper/utils"
)

func TestReadyExpression(t *testing.T) {
	sel := config.Selectors{
		ResultsReady: `[data-testid="publication-card"]`,
		EmptyResults: `.no-results`,
	}
	assert.Equal(t,
		`!!(document.querySelector("[data-testid=\"publication-card\"]") || document.querySelector(".no-results"))`,
		readyExpression(sel))

	sel.EmptyResults = ""
	assert.Equal(t, `!!(document.querySelector("[data-testid=\"publication-card\"]"))`, readyExpression(sel))
}

func TestChromeLauncherMissingBinary(t *testing.T) {
	cfg := testConfig()
	cfg.ExecPath = filepath.Join(t.TempDir(), "chrome-does-not-exist")

	start := time.Now()
	browser, err := NewChromeLauncher(cfg, utils.NewNopLogger()).Launch(context.Background())

	require.Error(t, err)
	assert.ErrorIs(t, err, ErrLaunchFailure)
	assert.Nil(t, browser)
	assert.Less(t, time.Since(start), 10*time.Second, "launch failure must be fast")
}

func TestChromeLauncherCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewChromeLauncher(testConfig(), utils.NewNopLogger()).Launch(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

// TestSessionFetchesFixtureSite drives a real headless Chrome. It needs a
// local Chrome and ISSUU_BROWSER_TESTS=1.
func TestSessionFetchesFixtureSite(t *testing.T) {
	if os.Getenv("ISSUU_BROWSER_TESTS") != "1" {
		t.Skip("set ISSUU_BROWSER_TESTS=1 to run against a real Chrome")
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/search", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		if r.URL.Query().Get("page") == "2" {
			w.Write([]byte(resultsPage("", pubCard("globex-inc", "catalogue"))))
			return
		}
		w.Write([]byte(resultsPage("/search?q=Acme+Corp&page=2", pubCard("acme-corp", "annual-report"))))
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	cfg := config.DefaultConfig()
	cfg.BaseURL = server.URL
	cfg.MinDelay, cfg.MaxDelay = 0, 0
	cfg.SettleDelay = 100 * time.Millisecond
	cfg.NavigationTimeout = 20 * time.Second

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	result, err := NewScraper(cfg, nil, utils.NewNopLogger()).Scrape(ctx, "Acme Corp")
	require.NoError(t, err)

	require.Len(t, result.Matching, 1)
	assert.Equal(t, server.URL+"/acme-corp/docs/annual-report", result.Matching[0].PublicationLink)
	require.Len(t, result.NonMatching, 1)
	assert.Equal(t, server.URL+"/globex-inc", result.NonMatching[0].AuthorLink)
	assert.Equal(t, 2, result.PagesScraped)
	assert.False(t, result.Truncated)
}
