package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/subcommands"
	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog/log"
)

// DefaultSchedule runs after the US market close, on trading days.
const DefaultSchedule = "0 19 * * 1-5"

type scheduleCmd struct {
	at  string
	tz  string
	run runCmd
}

func (*scheduleCmd) Name() string     { return "schedule" }
func (*scheduleCmd) Synopsis() string { return "run every day at a fixed time until interrupted" }
func (*scheduleCmd) Usage() string {
	return `etfw schedule [-at <cron>] [-tz <zone>] [-html] [-j <n>]

  Stays in the foreground and runs 'etfw run -q' on the given cron schedule
  (minute hour day-of-month month day-of-week). The configuration file is
  read again before each run.

  Stops on interrupt, after the current run completes.
`
}

func (c *scheduleCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.at, "at", DefaultSchedule, "Cron schedule of the runs")
	f.StringVar(&c.tz, "tz", "America/New_York", "Time zone of the schedule")
	f.BoolVar(&c.run.html, "html", false, "Also write the summary as HTML")
	f.IntVar(&c.run.concurrency, "j", 0, "Number of funds processed at once. Defaults to the configuration.")
}

func (c *scheduleCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() != 0 {
		fmt.Fprintln(os.Stderr, "no arguments expected")
		return subcommands.ExitUsageError
	}
	loc, err := time.LoadLocation(c.tz)
	if err != nil {
		fmt.Fprintf(os.Stderr, "invalid time zone %q: %v\n", c.tz, err)
		return subcommands.ExitUsageError
	}
	next, err := nextRun(c.at, time.Now().In(loc))
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitUsageError
	}
	if _, err := loadConfig(); err != nil {
		return fail("%v", err)
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	c.run.quiet = true
	scheduler := cron.New(cron.WithLocation(loc))
	if _, err := scheduler.AddFunc(c.at, func() { c.tick(ctx) }); err != nil {
		return fail("%v", err)
	}
	scheduler.Start()
	log.Info().Str("schedule", c.at).Time("next", next).Msg("scheduler started")

	<-ctx.Done()
	log.Info().Msg("stopping scheduler")
	<-scheduler.Stop().Done()
	return subcommands.ExitSuccess
}

// tick runs one cycle with a fresh configuration.
func (c *scheduleCmd) tick(ctx context.Context) {
	cfg, err := loadConfig()
	if err != nil {
		log.Error().Err(err).Msg("scheduled run skipped")
		return
	}
	if _, err := c.run.cycle(ctx, cfg); err != nil {
		log.Error().Err(err).Msg("scheduled run failed")
		return
	}
	log.Info().Msg("scheduled run done")
}

// nextRun returns the first time after from matching the cron spec.
func nextRun(spec string, from time.Time) (time.Time, error) {
	schedule, err := cron.ParseStandard(spec)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid schedule %q: %w", spec, err)
	}
	return schedule.Next(from), nil
}
