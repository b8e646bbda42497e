package cmd

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/etnz/etfwatch"
	"github.com/etnz/etfwatch/ark"
	"github.com/etnz/etfwatch/config"
	"github.com/etnz/etfwatch/date"
	"github.com/etnz/etfwatch/metrics"
	"github.com/etnz/etfwatch/renderer"
	"github.com/google/subcommands"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

type runCmd struct {
	offline     bool
	html        bool
	concurrency int
	quiet       bool
}

func (*runCmd) Name() string     { return "run" }
func (*runCmd) Synopsis() string { return "download today's holdings and write the daily summary" }
func (*runCmd) Usage() string {
	return `etfw run [-offline] [-html] [-j <n>] [-q]

  Downloads the holdings of every configured fund, compares each fund with
  its previous snapshot, saves the delta tables, and writes the summary of
  the day to <root>/summary/summary_YYYY_MM_DD.md.

  A fund that cannot be processed is reported in the summary, other funds
  are still processed.

  When metrics_file is configured, the run's metrics are written there in
  the Prometheus text format.
`
}

func (c *runCmd) SetFlags(f *flag.FlagSet) {
	f.BoolVar(&c.offline, "offline", false, "Compare the archived snapshots without downloading")
	f.BoolVar(&c.html, "html", false, "Also write the summary as HTML")
	f.IntVar(&c.concurrency, "j", 0, "Number of funds processed at once. Defaults to the configuration.")
	f.BoolVar(&c.quiet, "q", false, "Do not print the summary")
}

func (c *runCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() != 0 {
		fmt.Fprintln(os.Stderr, "no arguments expected")
		return subcommands.ExitUsageError
	}
	cfg, err := loadConfig()
	if err != nil {
		return fail("%v", err)
	}
	md, err := c.cycle(ctx, cfg)
	if md != "" && !c.quiet {
		printMarkdown(md)
	}
	if err != nil {
		return fail("%v", err)
	}
	return subcommands.ExitSuccess
}

// errNothingProcessed is returned by a cycle where every fund failed.
var errNothingProcessed = errors.New("no fund could be processed")

// cycle downloads, compares and summarizes every configured fund once.
// It returns the summary markdown, even along errNothingProcessed.
func (c *runCmd) cycle(ctx context.Context, cfg *config.Config) (string, error) {
	start := time.Now()
	logger := log.With().Str("run", uuid.NewString()).Logger()
	ctx = logger.WithContext(ctx)

	funds, err := cfg.AllFunds()
	if err != nil {
		return "", err
	}
	archive := cfg.Archive()

	if !c.offline {
		for _, u := range ark.UpdateArchive(ctx, cfg.Client(), archive, funds) {
			if u.Err != nil {
				fmt.Fprintf(os.Stderr, "Warning: %s not downloaded, comparing archived snapshots: %v\n", u.Fund, u.Err)
			}
		}
	}

	concurrency := cfg.Concurrency
	if c.concurrency > 0 {
		concurrency = c.concurrency
	}
	results := etfwatch.Run(ctx, archive.Jobs(ark.Tickers(funds)), etfwatch.RunOptions{
		Concurrency: concurrency,
		Archive:     &archive,
	})

	report := etfwatch.NewReport(date.Date{}, cfg.AllThresholds(), results)
	if report.On.IsZero() {
		report.On = date.Today()
	}

	path := archive.SummaryPath(report.On)
	md, err := writeSummary(path, report)
	if err != nil {
		return "", err
	}
	logger.Info().Str("path", path).Msg("summary written")

	if c.html {
		html, err := renderer.HTML(md)
		if err != nil {
			return md, err
		}
		htmlPath := strings.TrimSuffix(path, filepath.Ext(path)) + ".html"
		if err := os.WriteFile(htmlPath, html, 0644); err != nil {
			return md, fmt.Errorf("could not write %q: %w", htmlPath, err)
		}
		logger.Info().Str("path", htmlPath).Msg("HTML summary written")
	}

	if cfg.MetricsFile != "" {
		if err := metrics.Write(cfg.MetricsFile, report, time.Since(start)); err != nil {
			return md, err
		}
		logger.Debug().Str("path", cfg.MetricsFile).Msg("metrics written")
	}

	processed := 0
	for _, r := range results {
		if r.OK() {
			processed++
		}
	}
	if processed == 0 && len(results) > 0 {
		return md, errNothingProcessed
	}
	return md, nil
}

// writeSummary writes the report to path one section at a time, so that a
// partial summary is kept if rendering stops. It returns the whole markdown.
func writeSummary(path string, report *etfwatch.Report) (string, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return "", fmt.Errorf("could not create summary folder: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("could not create summary: %w", err)
	}
	defer f.Close()

	var md strings.Builder
	for section := range renderer.Sections(report) {
		section += "\n"
		md.WriteString(section)
		if _, err := f.WriteString(section); err != nil {
			return "", fmt.Errorf("could not write summary %q: %w", path, err)
		}
	}
	return md.String(), f.Close()
}
