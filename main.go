package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"issuu-scraper/config"
	"issuu-scraper/models"
	"issuu-scraper/scraper/issuu"
	"issuu-scraper/services"
	"issuu-scraper/storage"
	"issuu-scraper/utils"
)

func main() {
	configPath := flag.String("config", config.GetConfigPath(), "YAML or TOML config file")
	maxPages := flag.Int("max-pages", 0, "maximum result pages per query (overrides config)")
	outDir := flag.String("out", "", "directory for JSON/CSV exports (overrides config)")
	csvExport := flag.Bool("csv", false, "also write a CSV export")
	logLevel := flag.String("log-level", "", "debug, info, warn or error (overrides config)")
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "usage: %s [flags] \"Company Name\" [\"Other Company\"...]\n", os.Args[0])
		flag.PrintDefaults()
	}
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		utils.Error("Failed to load config: %v", err)
		exit(1)
	}
	applyFlags(cfg, *maxPages, *outDir, *csvExport, *logLevel)
	utils.SetLevel(cfg.LogLevel)
	defer func() { _ = utils.L().Sync() }()

	companies, err := companyNames(flag.Args())
	if err != nil {
		utils.Error("%v", err)
		flag.Usage()
		exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	utils.Info("Scraper starting | queries=%d pages=%d workers=%d timeout=%v",
		len(companies), cfg.MaxPages, cfg.MaxWorkers, cfg.NavigationTimeout)

	scraper := issuu.NewScraper(cfg, nil, utils.L())
	pool := issuu.NewWorkerPool(scraper, cfg)
	results := pool.Run(ctx, companies)

	exitCode := 0
	for _, r := range results {
		if err := handleResult(cfg, r); err != nil {
			utils.Error("%s: %v", r.Query, err)
			exitCode = 1
		}
	}
	if exitCode != 0 {
		stop()
		exit(exitCode)
	}
}

var osExit = os.Exit

// exit flushes the logger first; deferred calls do not run past os.Exit.
func exit(code int) {
	_ = utils.L().Sync()
	osExit(code)
}

func applyFlags(cfg *config.Config, maxPages int, outDir string, csvExport bool, logLevel string) {
	if maxPages > 0 {
		cfg.MaxPages = maxPages
	}
	if outDir != "" {
		cfg.OutputDir = outDir
	}
	if csvExport {
		cfg.CSVExport = true
	}
	if logLevel != "" {
		cfg.LogLevel = logLevel
	}
}

// companyNames rejects blank names before any browser is started.
func companyNames(args []string) ([]string, error) {
	if len(args) == 0 {
		return nil, errors.New("please enter a company name")
	}
	names := make([]string, 0, len(args))
	for _, a := range args {
		name := strings.TrimSpace(a)
		if name == "" {
			return nil, errors.New("company names must not be empty")
		}
		names = append(names, name)
	}
	return names, nil
}

func handleResult(cfg *config.Config, r models.QueryResult) error {
	if r.Error != nil {
		if errors.Is(r.Error, issuu.ErrLaunchFailure) {
			return fmt.Errorf("scraper could not run (is Chrome installed?): %w", r.Error)
		}
		return r.Error
	}

	utils.Section(r.Query)
	if r.Result.Empty() {
		utils.Warn("No publications found for %q", r.Query)
		return nil
	}
	if r.Result.Truncated {
		utils.Warn("Search for %q stopped early, results are partial", r.Query)
	}

	services.PrintReport(os.Stdout, services.GenerateReport(r.Result))

	if _, err := storage.NewJSONWriter(cfg.OutputDir).Write(r.Result); err != nil {
		return fmt.Errorf("failed to save JSON: %w", err)
	}
	if cfg.CSVExport {
		if _, err := storage.NewCSVWriter(cfg.OutputDir).Write(r.Result); err != nil {
			return fmt.Errorf("failed to save CSV: %w", err)
		}
	}
	return nil
}
