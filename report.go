package etfwatch

import (
	"github.com/etnz/etfwatch/date"
)

// FundResult is the outcome of comparing the two latest snapshots of a fund.
// A fund that could not be processed has a non nil Err and nothing else.
type FundResult struct {
	Fund     string
	On       date.Date // today's disclosure date
	Previous date.Date // disclosure date of the snapshot compared with

	Err      error
	Warnings []string

	Total        FundTotal
	Changes      []Change
	Deltas       []Delta
	Distribution Distribution
}

// OK reports whether the fund was processed.
func (r *FundResult) OK() bool { return r.Err == nil }

// Highlight is a holding with at least one change beyond the thresholds.
type Highlight struct {
	Delta
	Breaches []Breach
}

// Highlights returns the flagged holdings in snapshot order.
func (r *FundResult) Highlights(t Thresholds) []Highlight {
	var highlights []Highlight
	for _, d := range r.Deltas {
		if b := t.Breaches(d); len(b) > 0 {
			highlights = append(highlights, Highlight{Delta: d, Breaches: b})
		}
	}
	return highlights
}

// Report is the daily summary of all funds.
//
// It is rendered in three parts: the totals across funds, the structural
// changes grouped by fund, and for each fund its total, its distribution
// and its highlights.
type Report struct {
	On         date.Date
	Thresholds Thresholds
	Totals     Totals
	Funds      []*FundResult
}

// NewReport assembles the report of a run. Totals only account for the
// funds that were processed. If on is zero, the latest disclosure date of
// the funds is used.
func NewReport(on date.Date, thresholds Thresholds, results []*FundResult) *Report {
	var totals []FundTotal
	var latest date.Date
	for _, r := range results {
		if !r.OK() {
			continue
		}
		totals = append(totals, r.Total)
		if latest.IsZero() || r.On.After(latest) {
			latest = r.On
		}
	}
	if on.IsZero() {
		on = latest
	}
	return &Report{
		On:         on,
		Thresholds: thresholds,
		Totals:     Sum(totals),
		Funds:      results,
	}
}

// Changes returns the structural changes of the processed funds, in fund order.
func (r *Report) Changes() []Change {
	var changes []Change
	for _, f := range r.Funds {
		changes = append(changes, f.Changes...)
	}
	return changes
}
