package etfwatch

import (
	"context"
	"errors"
	"fmt"
	"io/fs"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
)

// Compare runs the change detection of a fund on two snapshots.
//
// When yesterday is nil the fund is compared with itself: every change is
// zero, and the result carries a warning.
func Compare(today, yesterday *Snapshot) *FundResult {
	r := &FundResult{Fund: today.Fund(), On: today.On()}
	if yesterday == nil {
		r.Warnings = append(r.Warnings, fmt.Sprintf("%s is missing a prior snapshot to compare with, today's snapshot is compared with itself.", today.Fund()))
		yesterday = today
	}
	r.Previous = yesterday.On()

	r.Deltas = ComputeDeltas(today, yesterday)
	r.Total = Aggregate(today, yesterday)
	r.Changes = DetectChanges(today, yesterday)
	r.Distribution = Summarize(today.Fund(), r.Deltas)

	for _, c := range r.Changes {
		if c.Kind == Renamed {
			log.Warn().Str("fund", c.Fund).Str("ticker", c.Ticker).Str("from", c.PreviousCompany).Str("to", c.Company).Msg("holding renamed")
			r.Warnings = append(r.Warnings, fmt.Sprintf("%s: %s is now named %s, it is compared as the same holding.", c.Ticker, c.PreviousCompany, c.Company))
		}
	}
	if r.Total.Yesterday.IsZero() {
		r.Warnings = append(r.Warnings, fmt.Sprintf("%s had no market value in its prior snapshot, its change is not available.", today.Fund()))
	}
	return r
}

// Job locates the snapshots of a fund to compare.
type Job struct {
	Fund      string
	Today     string // path of today's snapshot
	Yesterday string // path of the prior snapshot, empty if there is none
	Err       error  // error met while locating the snapshots
}

// Jobs locates the two latest snapshots of each fund in the archive.
func (a Archive) Jobs(funds []string) []Job {
	jobs := make([]Job, 0, len(funds))
	for _, fund := range funds {
		today, yesterday, err := a.Latest(fund)
		if errors.Is(err, ErrMissingInput) {
			err = nil
		}
		jobs = append(jobs, Job{Fund: fund, Today: today, Yesterday: yesterday, Err: err})
	}
	return jobs
}

// RunOptions configures Run.
type RunOptions struct {
	// Concurrency is the maximum number of funds processed at once. Values
	// below 1 process funds one at a time.
	Concurrency int

	// Archive, when not nil, receives the delta table of each fund.
	Archive *Archive
}

// Run processes every job and returns one result per job, in job order.
// A failure on one fund is reported in its result and does not stop the others.
func Run(ctx context.Context, jobs []Job, opts RunOptions) []*FundResult {
	results := make([]*FundResult, len(jobs))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(max(opts.Concurrency, 1))
	for i, job := range jobs {
		g.Go(func() error {
			results[i] = runJob(ctx, job, opts.Archive)
			if err := results[i].Err; err != nil {
				log.Ctx(ctx).Error().Err(err).Str("fund", job.Fund).Msg("fund not processed")
			}
			return nil
		})
	}
	_ = g.Wait() // jobs never fail the group

	return results
}

func runJob(ctx context.Context, job Job, archive *Archive) *FundResult {
	failed := func(err error) *FundResult { return &FundResult{Fund: job.Fund, Err: err} }
	logger := log.Ctx(ctx).With().Str("fund", job.Fund).Logger()
	if job.Err != nil {
		return failed(job.Err)
	}
	if err := ctx.Err(); err != nil {
		return failed(err)
	}

	today, err := LoadSnapshot(job.Today)
	if err != nil {
		return failed(err)
	}
	if today.Fund() == "" {
		today = today.withFund(job.Fund)
	}

	var yesterday *Snapshot
	if job.Yesterday != "" {
		yesterday, err = LoadSnapshot(job.Yesterday)
		switch {
		case errors.Is(err, fs.ErrNotExist):
			logger.Warn().Str("path", job.Yesterday).Msg("prior snapshot vanished")
			yesterday = nil
		case err != nil:
			return failed(err)
		}
	}

	r := Compare(today, yesterday)
	r.Fund = job.Fund
	logger.Info().Stringer("on", r.On).Stringer("previous", r.Previous).Int("holdings", today.Len()).Int("changes", len(r.Changes)).Msg("fund compared")

	if archive != nil {
		path, err := archive.SaveDeltas(job.Fund, r.On, r.Deltas)
		if err != nil {
			r.Warnings = append(r.Warnings, fmt.Sprintf("delta table not saved: %v", err))
		} else {
			logger.Debug().Str("path", path).Msg("delta table saved")
		}
	}
	return r
}
