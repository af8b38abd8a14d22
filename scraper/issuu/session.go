package issuu

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/chromedp/chromedp"

	"issuu-scraper/config"
	"issuu-scraper/utils"
)

var (
	// ErrLaunchFailure means the browser could not be started at all. It is
	// the only failure that aborts a scrape.
	ErrLaunchFailure = errors.New("browser launch failed")
	ErrNavigation    = errors.New("navigation failed")
	ErrEmptyCompany  = errors.New("company name is empty")
)

// Browser is one isolated tab that can render a URL and hand back its HTML.
type Browser interface {
	Fetch(ctx context.Context, url string) (string, error)
	Close()
}

type Launcher interface {
	Launch(ctx context.Context) (Browser, error)
}

// ChromeLauncher starts a dedicated headless Chrome per Launch call. Each
// process gets its own temporary profile, so sessions never share cookies
// or cache.
type ChromeLauncher struct {
	cfg *config.Config
	log *utils.Logger
}

func NewChromeLauncher(cfg *config.Config, log *utils.Logger) *ChromeLauncher {
	return &ChromeLauncher{cfg: cfg, log: log}
}

func (l *ChromeLauncher) Launch(ctx context.Context) (Browser, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	l.log.Info("Launching headless Chrome...")
	allocCtx, allocCancel := chromedp.NewExecAllocator(ctx, utils.StealthOpts(l.cfg.UserAgent, l.cfg.ExecPath)...)
	tabCtx, tabCancel := chromedp.NewContext(allocCtx, chromedp.WithErrorf(l.log.Debug))

	s := &Session{
		cfg:         l.cfg,
		log:         l.log,
		tabCtx:      tabCtx,
		tabCancel:   tabCancel,
		allocCancel: allocCancel,
	}

	// The first Run starts the process. It must not carry a timeout, or the
	// browser would die with it.
	if err := chromedp.Run(tabCtx, utils.HideWebDriver()); err != nil {
		s.Close()
		return nil, fmt.Errorf("%w: %w", ErrLaunchFailure, err)
	}

	l.log.Success("Browser ready")
	return s, nil
}

// Session owns one browser process and its single tab. Close must be called
// on every path; it is safe to call more than once.
type Session struct {
	cfg         *config.Config
	log         *utils.Logger
	tabCtx      context.Context
	tabCancel   context.CancelFunc
	allocCancel context.CancelFunc
	closeOnce   sync.Once
}

// Fetch navigates to pageURL, waits until either result cards or the empty
// results marker render, scrolls once for lazily loaded cards and returns
// the page HTML. The wait is bounded by NavigationTimeout.
func (s *Session) Fetch(ctx context.Context, pageURL string) (string, error) {
	stepCtx, cancel := context.WithTimeout(s.tabCtx, s.cfg.NavigationTimeout)
	defer cancel()
	stop := context.AfterFunc(ctx, cancel)
	defer stop()

	var (
		ready bool
		html  string
	)
	err := chromedp.Run(stepCtx,
		chromedp.Navigate(pageURL),
		chromedp.Poll(readyExpression(s.cfg.Selectors), &ready, chromedp.WithPollingInterval(250*time.Millisecond)),
		chromedp.Evaluate(`window.scrollTo(0, document.body.scrollHeight)`, nil),
		chromedp.Sleep(s.cfg.SettleDelay),
		chromedp.OuterHTML("html", &html, chromedp.ByQuery),
	)
	if err != nil {
		return "", fmt.Errorf("%w: %s: %w", ErrNavigation, pageURL, err)
	}
	return html, nil
}

func (s *Session) Close() {
	s.closeOnce.Do(func() {
		s.log.Info("Closing browser...")
		if err := chromedp.Cancel(s.tabCtx); err != nil && !errors.Is(err, context.Canceled) {
			s.log.Debug("browser close: %v", err)
		}
		s.tabCancel()
		s.allocCancel()
	})
}

// readyExpression is true once results or the no-results marker exist.
func readyExpression(sel config.Selectors) string {
	expr := "document.querySelector(" + strconv.Quote(sel.ResultsReady) + ")"
	if sel.EmptyResults != "" {
		expr += " || document.querySelector(" + strconv.Quote(sel.EmptyResults) + ")"
	}
	return "!!(" + expr + ")"
}
