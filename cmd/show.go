package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"slices"

	"github.com/etnz/etfwatch"
	"github.com/etnz/etfwatch/date"
	"github.com/google/subcommands"
)

type showCmd struct {
	date string
}

func (*showCmd) Name() string     { return "show" }
func (*showCmd) Synopsis() string { return "display a daily summary" }
func (*showCmd) Usage() string {
	return `etfw show [-d <date>]

  Displays the summary written by "etfw run" for a date, the latest one by default.
`
}

func (c *showCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.date, "d", "", "Date of the summary (YYYY-MM-DD or MM/DD/YYYY)")
}

func (c *showCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	cfg, err := loadConfig()
	if err != nil {
		return fail("%v", err)
	}
	archive := cfg.Archive()

	var path string
	if c.date != "" {
		on, err := date.ParseDisclosure(c.date)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error parsing date: %v\n", err)
			return subcommands.ExitUsageError
		}
		path = archive.SummaryPath(on)
	} else if path, err = latestSummary(archive); err != nil {
		return fail("%v", err)
	}

	content, err := os.ReadFile(path)
	if err != nil {
		return fail("could not read summary: %v", err)
	}
	printMarkdown(string(content))
	return subcommands.ExitSuccess
}

// latestSummary returns the path of the most recent summary.
func latestSummary(archive etfwatch.Archive) (string, error) {
	paths, err := filepath.Glob(filepath.Join(archive.Root, "summary", "summary_*.md"))
	if err != nil {
		return "", err
	}
	if len(paths) == 0 {
		return "", fmt.Errorf("no summary in %q, use \"etfw run\" first", archive.Root)
	}
	return slices.Max(paths), nil
}
