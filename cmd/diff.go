package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/etnz/etfwatch"
	"github.com/etnz/etfwatch/renderer"
	"github.com/google/subcommands"
)

type diffCmd struct {
	output string
}

func (*diffCmd) Name() string     { return "diff" }
func (*diffCmd) Synopsis() string { return "compare two holdings files" }
func (*diffCmd) Usage() string {
	return `etfw diff [-o <file>] <yesterday.csv> <today.csv>

  Compares two holdings files of the same fund and prints the summary.
  Nothing is archived.
`
}

func (c *diffCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.output, "o", "", "Also write the summary as markdown to this file")
}

func (c *diffCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() != 2 {
		fmt.Fprintln(os.Stderr, "two files expected: <yesterday.csv> <today.csv>")
		return subcommands.ExitUsageError
	}
	cfg, err := loadConfig()
	if err != nil {
		return fail("%v", err)
	}

	md, err := diff(f.Arg(0), f.Arg(1), cfg.AllThresholds())
	if err != nil {
		return fail("%v", err)
	}
	if c.output != "" {
		if err := os.WriteFile(c.output, []byte(md), 0644); err != nil {
			return fail("could not write %q: %v", c.output, err)
		}
	}
	printMarkdown(md)
	return subcommands.ExitSuccess
}

// diff renders the summary of the comparison of two holdings files.
func diff(yesterdayPath, todayPath string, thresholds etfwatch.Thresholds) (string, error) {
	yesterday, err := etfwatch.LoadSnapshot(yesterdayPath)
	if err != nil {
		return "", err
	}
	today, err := etfwatch.LoadSnapshot(todayPath)
	if err != nil {
		return "", err
	}
	if yesterday.Fund() != today.Fund() {
		return "", fmt.Errorf("cannot compare fund %q with fund %q", today.Fund(), yesterday.Fund())
	}
	r := etfwatch.Compare(today, yesterday)
	return renderer.Markdown(etfwatch.NewReport(today.On(), thresholds, []*etfwatch.FundResult{r})), nil
}
