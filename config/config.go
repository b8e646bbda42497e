// Package config loads the etfw configuration file.
//
// A configuration file is YAML:
//
//	root: ./data
//	concurrency: 4
//	interval: 1s
//	thresholds:
//	  shares_pct: 10
//	  rank: 5
//	  share_price_pct: 10
//	  market_value_pct: 10
//	funds:
//	  - ticker: ARKK
//	    url: https://example.com/ARKK_HOLDINGS.csv
//	metrics_file: /var/lib/node_exporter/etfw.prom
//
// Funds can also be listed in a separate funds file ("TICKER URL" per line)
// named by funds_file.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/etnz/etfwatch"
	"github.com/etnz/etfwatch/ark"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

// Environment variables that override the configuration file.
const (
	EnvConfig    = "ETFW_CONFIG"
	EnvRoot      = "ETFW_ROOT"
	EnvUserAgent = "ETFW_USER_AGENT"
)

// DefaultPath is the configuration file used when none is given.
const DefaultPath = "etfw.yaml"

// Config is the content of the configuration file.
type Config struct {
	Root        string        `yaml:"root"`
	FundsFile   string        `yaml:"funds_file"`
	Funds       []ark.Fund    `yaml:"funds" validate:"dive"`
	Thresholds  Thresholds    `yaml:"thresholds"`
	Concurrency int           `yaml:"concurrency" validate:"gte=0"`
	Interval    time.Duration `yaml:"interval"`
	CacheDir    string        `yaml:"cache_dir"`
	UserAgent   string        `yaml:"user_agent"`

	// MetricsFile receives the metrics of each run in the Prometheus text
	// format, for the node exporter textfile collector. Empty disables it.
	MetricsFile string `yaml:"metrics_file"`
}

// Thresholds overrides the default thresholds. Missing values keep their default.
type Thresholds struct {
	SharesPct      *float64 `yaml:"shares_pct" validate:"omitempty,gte=0"`
	Rank           *float64 `yaml:"rank" validate:"omitempty,gte=0"`
	SharePricePct  *float64 `yaml:"share_price_pct" validate:"omitempty,gte=0"`
	MarketValuePct *float64 `yaml:"market_value_pct" validate:"omitempty,gte=0"`
}

// Default returns the configuration used without a configuration file.
func Default() *Config {
	return &Config{
		Root:        ".",
		FundsFile:   "funds.txt",
		Concurrency: 1,
		Interval:    time.Second,
		CacheDir:    ark.DefaultCacheDir(),
	}
}

// Load reads the configuration file at path over the defaults.
//
// If path is empty, DefaultPath is used and its absence is not an error.
// Relative paths in the file are relative to the file's folder.
func Load(path string) (*Config, error) {
	c := Default()
	optional := path == ""
	if optional {
		path = DefaultPath
	}

	content, err := os.ReadFile(path)
	if optional && errors.Is(err, fs.ErrNotExist) {
		log.Debug().Str("path", path).Msg("no configuration file, using defaults")
		c.applyEnv()
		return c, nil
	}
	if err != nil {
		return nil, fmt.Errorf("could not read configuration: %w", err)
	}
	if err := yaml.Unmarshal(content, c); err != nil {
		return nil, fmt.Errorf("invalid configuration %q: %w", path, err)
	}

	dir := filepath.Dir(path)
	c.Root = resolve(dir, c.Root)
	c.FundsFile = resolve(dir, c.FundsFile)
	c.MetricsFile = resolve(dir, c.MetricsFile)
	c.applyEnv()
	return c, c.validate()
}

func resolve(dir, path string) string {
	if path == "" || filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(dir, path)
}

func (c *Config) applyEnv() {
	if v := os.Getenv(EnvRoot); v != "" {
		c.Root = v
	}
	if v := os.Getenv(EnvUserAgent); v != "" {
		c.UserAgent = v
	}
}

func (c *Config) validate() error {
	if err := validator.New().Struct(c); err != nil {
		return invalid("configuration", err)
	}
	if c.Concurrency < 1 {
		c.Concurrency = 1
	}
	return nil
}

// invalid describes the first failed validation of err.
func invalid(what string, err error) error {
	var failed validator.ValidationErrors
	if errors.As(err, &failed) && len(failed) > 0 {
		fe := failed[0]
		return fmt.Errorf("invalid %s: %s = %v does not satisfy %q", what, fe.Namespace(), fe.Value(), fe.Tag())
	}
	return fmt.Errorf("invalid %s: %w", what, err)
}

// Archive returns the archive under Root.
func (c *Config) Archive() etfwatch.Archive { return etfwatch.Archive{Root: c.Root} }

// Client returns a client to download holdings.
func (c *Config) Client() *ark.Client {
	return ark.NewClient(ark.Options{CacheDir: c.CacheDir, Interval: c.Interval, UserAgent: c.UserAgent})
}

// AllThresholds returns the default thresholds with the configured overrides.
func (c *Config) AllThresholds() etfwatch.Thresholds {
	t := etfwatch.DefaultThresholds
	set := func(dst *decimal.Decimal, v *float64) {
		if v != nil {
			*dst = decimal.NewFromFloat(*v)
		}
	}
	set(&t.SharesPct, c.Thresholds.SharesPct)
	set(&t.Rank, c.Thresholds.Rank)
	set(&t.SharePricePct, c.Thresholds.SharePricePct)
	set(&t.MarketValuePct, c.Thresholds.MarketValuePct)
	return t
}

// AllFunds returns the configured funds, read from the funds file when the
// configuration lists none. Funds from the file are validated like the
// configured ones.
func (c *Config) AllFunds() ([]ark.Fund, error) {
	if len(c.Funds) > 0 {
		return c.Funds, nil
	}
	if c.FundsFile == "" {
		return nil, errors.New("no fund configured")
	}
	funds, err := ark.LoadFunds(c.FundsFile)
	if err != nil {
		return nil, err
	}
	validate := validator.New()
	for i, fund := range funds {
		if err := validate.Struct(fund); err != nil {
			return nil, invalid(fmt.Sprintf("fund %d of %q", i+1, c.FundsFile), err)
		}
	}
	return funds, nil
}
