package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/etnz/etfwatch/ark"
	"github.com/google/subcommands"
)

type fetchCmd struct{}

func (*fetchCmd) Name() string     { return "fetch" }
func (*fetchCmd) Synopsis() string { return "download and archive today's holdings" }
func (*fetchCmd) Usage() string {
	return `etfw fetch [<fund>...]

  Downloads the holdings of the configured funds, or only of the funds
  given as arguments, and archives them. A snapshot already archived for
  its disclosure date is left untouched.
`
}

func (c *fetchCmd) SetFlags(f *flag.FlagSet) {}

func (c *fetchCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	cfg, err := loadConfig()
	if err != nil {
		return fail("%v", err)
	}
	funds, err := cfg.AllFunds()
	if err != nil {
		return fail("%v", err)
	}
	if f.NArg() > 0 {
		if funds, err = selectFunds(funds, f.Args()); err != nil {
			fmt.Fprintln(os.Stderr, err)
			return subcommands.ExitUsageError
		}
	}

	status := subcommands.ExitSuccess
	for _, u := range ark.UpdateArchive(ctx, cfg.Client(), cfg.Archive(), funds) {
		switch {
		case u.Err != nil:
			fmt.Fprintf(os.Stderr, "Error: %s: %v\n", u.Fund, u.Err)
			status = subcommands.ExitFailure
		case u.Stored:
			fmt.Printf("%s: archived %s\n", u.Fund, u.Path)
		default:
			fmt.Printf("%s: already archived %s\n", u.Fund, u.Path)
		}
	}
	return status
}

// selectFunds returns the funds with the given tickers, in the given order.
func selectFunds(funds []ark.Fund, tickers []string) ([]ark.Fund, error) {
	byTicker := make(map[string]ark.Fund, len(funds))
	for _, f := range funds {
		byTicker[f.Ticker] = f
	}
	selected := make([]ark.Fund, 0, len(tickers))
	for _, t := range tickers {
		f, ok := byTicker[t]
		if !ok {
			return nil, fmt.Errorf("unknown fund %q", t)
		}
		selected = append(selected, f)
	}
	return selected, nil
}
