package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

type MatchConfig struct {
	Threshold        float64 `yaml:"threshold" toml:"threshold"`
	MinContainLength int     `yaml:"min_contain_length" toml:"min_contain_length"`
}

// Selectors locate the parts of a search results page. They are CSS
// selectors evaluated with goquery against the rendered HTML, and the
// readiness ones are also polled inside the browser.
type Selectors struct {
	Card            string `yaml:"card" toml:"card"`
	Title           string `yaml:"title" toml:"title"`
	PublicationLink string `yaml:"publication_link" toml:"publication_link"`
	AuthorLink      string `yaml:"author_link" toml:"author_link"`
	Price           string `yaml:"price" toml:"price"`
	NextPage        string `yaml:"next_page" toml:"next_page"`
	ResultsReady    string `yaml:"results_ready" toml:"results_ready"`
	EmptyResults    string `yaml:"empty_results" toml:"empty_results"`
}

type Config struct {
	BaseURL           string        `yaml:"base_url" toml:"base_url"`
	SearchPath        string        `yaml:"search_path" toml:"search_path"`
	MaxPages          int           `yaml:"max_pages" toml:"max_pages"`
	PageRetries       int           `yaml:"page_retries" toml:"page_retries"`
	NavigationTimeout time.Duration `yaml:"navigation_timeout" toml:"navigation_timeout"`
	RetryBackoff      time.Duration `yaml:"retry_backoff" toml:"retry_backoff"`
	MinDelay          time.Duration `yaml:"min_delay" toml:"min_delay"`
	MaxDelay          time.Duration `yaml:"max_delay" toml:"max_delay"`
	SettleDelay       time.Duration `yaml:"settle_delay" toml:"settle_delay"`
	MaxWorkers        int           `yaml:"max_workers" toml:"max_workers"`
	ExecPath          string        `yaml:"exec_path" toml:"exec_path"`
	UserAgent         string        `yaml:"user_agent" toml:"user_agent"`
	OutputDir         string        `yaml:"output_dir" toml:"output_dir"`
	CSVExport         bool          `yaml:"csv_export" toml:"csv_export"`
	LogLevel          string        `yaml:"log_level" toml:"log_level"`
	Match             MatchConfig   `yaml:"match" toml:"match"`
	Selectors         Selectors     `yaml:"selectors" toml:"selectors"`
}

func DefaultConfig() *Config {
	return &Config{
		BaseURL:           "https://issuu.com",
		SearchPath:        "/search",
		MaxPages:          5,
		PageRetries:       2,
		NavigationTimeout: 30 * time.Second,
		RetryBackoff:      2 * time.Second,
		MinDelay:          1 * time.Second,
		MaxDelay:          3 * time.Second,
		SettleDelay:       1500 * time.Millisecond,
		MaxWorkers:        2,
		OutputDir:         "output",
		LogLevel:          "info",
		Match: MatchConfig{
			Threshold:        0.6,
			MinContainLength: 4,
		},
		Selectors: Selectors{
			Card:            `[data-testid="publication-card"]`,
			Title:           `[data-testid="publication-card-title"]`,
			PublicationLink: `a[href*="/docs/"]`,
			AuthorLink:      `a[data-testid="publication-card-author"]`,
			Price:           `[data-testid="publication-card-price"]`,
			NextPage:        `a[rel="next"], a[aria-label="Next page"]`,
			ResultsReady:    `[data-testid="publication-card"]`,
			EmptyResults:    `[data-testid="search-no-results"]`,
		},
	}
}

// Load builds the config from defaults, an optional YAML or TOML file and
// ISSUU_* environment overrides, in that order.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	if path != "" {
		if err := decodeFile(path, cfg); err != nil {
			return nil, err
		}
	}

	if err := applyEnvironmentOverrides(cfg); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return cfg, nil
}

// GetConfigPath returns ISSUU_SCRAPER_CONFIG, or "" when unset.
func GetConfigPath() string {
	return os.Getenv("ISSUU_SCRAPER_CONFIG")
}

func decodeFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return fmt.Errorf("parse config yaml: %w", err)
		}
	case ".toml":
		if _, err := toml.Decode(string(data), cfg); err != nil {
			return fmt.Errorf("parse config toml: %w", err)
		}
	default:
		return fmt.Errorf("unsupported config format %q", filepath.Ext(path))
	}
	return nil
}

func applyEnvironmentOverrides(cfg *Config) error {
	if v := os.Getenv("ISSUU_BASE_URL"); v != "" {
		cfg.BaseURL = v
	}
	if v := os.Getenv("ISSUU_MAX_PAGES"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("ISSUU_MAX_PAGES: %w", err)
		}
		cfg.MaxPages = n
	}
	if v := os.Getenv("ISSUU_NAVIGATION_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("ISSUU_NAVIGATION_TIMEOUT: %w", err)
		}
		cfg.NavigationTimeout = d
	}
	if v := os.Getenv("ISSUU_CHROME_PATH"); v != "" {
		cfg.ExecPath = v
	}
	if v := os.Getenv("ISSUU_OUTPUT_DIR"); v != "" {
		cfg.OutputDir = v
	}
	if v := os.Getenv("ISSUU_LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
	}
	return nil
}

func (c *Config) Validate() error {
	if c.BaseURL == "" {
		return fmt.Errorf("base_url is required")
	}
	if c.MaxPages < 1 {
		return fmt.Errorf("max_pages must be at least 1, got %d", c.MaxPages)
	}
	if c.PageRetries < 0 {
		return fmt.Errorf("page_retries must not be negative, got %d", c.PageRetries)
	}
	if c.NavigationTimeout <= 0 {
		return fmt.Errorf("navigation_timeout must be positive")
	}
	if c.MaxDelay < c.MinDelay {
		return fmt.Errorf("max_delay (%v) is below min_delay (%v)", c.MaxDelay, c.MinDelay)
	}
	if c.MaxWorkers < 1 {
		return fmt.Errorf("max_workers must be at least 1, got %d", c.MaxWorkers)
	}
	if c.Match.Threshold <= 0 || c.Match.Threshold > 1 {
		return fmt.Errorf("match.threshold must be in (0, 1], got %v", c.Match.Threshold)
	}
	if c.Selectors.Card == "" || c.Selectors.Title == "" || c.Selectors.PublicationLink == "" || c.Selectors.ResultsReady == "" {
		return fmt.Errorf("selectors.card, selectors.title, selectors.publication_link and selectors.results_ready are required")
	}
	return nil
}

// SearchURL is the first results page for a company name.
func (c *Config) SearchURL(companyName string) string {
	return strings.TrimSuffix(c.BaseURL, "/") + c.SearchPath + "?q=" + url.QueryEscape(companyName)
}
