// Package metrics exports the outcome of a run in the Prometheus text format.
//
// The file is meant for the node exporter textfile collector: etfw runs
// once a day and exits, so there is nothing to scrape.
package metrics

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/etnz/etfwatch"
	"github.com/prometheus/client_golang/prometheus"
)

// Write writes the metrics of report to path, replacing the previous file atomically.
func Write(path string, report *etfwatch.Report, elapsed time.Duration) error {
	reg := prometheus.NewRegistry()

	processed := prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "etfw_fund_processed",
		Help: "1 if the fund was compared, 0 if it failed",
	}, []string{"fund"})
	total := prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "etfw_fund_total_usd",
		Help: "Total market value of the fund in today's snapshot",
	}, []string{"fund"})
	changes := prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "etfw_fund_changes",
		Help: "Structural changes of the fund by kind",
	}, []string{"fund", "kind"})
	highlights := prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "etfw_fund_highlights",
		Help: "Holdings with at least one change beyond the thresholds",
	}, []string{"fund"})
	grand := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "etfw_total_usd",
		Help: "Total market value across the processed funds",
	})
	duration := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "etfw_run_duration_seconds",
		Help: "Duration of the last run",
	})
	last := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "etfw_run_timestamp_seconds",
		Help: "Time of the last run",
	})
	reg.MustRegister(processed, total, changes, highlights, grand, duration, last)

	for _, f := range report.Funds {
		if !f.OK() {
			processed.WithLabelValues(f.Fund).Set(0)
			continue
		}
		processed.WithLabelValues(f.Fund).Set(1)
		total.WithLabelValues(f.Fund).Set(f.Total.TodayInt().InexactFloat64())
		for _, kind := range []etfwatch.ChangeKind{etfwatch.Removed, etfwatch.Added, etfwatch.Renamed} {
			changes.WithLabelValues(f.Fund, kind.String()).Set(0)
		}
		for _, c := range f.Changes {
			changes.WithLabelValues(f.Fund, c.Kind.String()).Inc()
		}
		highlights.WithLabelValues(f.Fund).Set(float64(len(f.Highlights(report.Thresholds))))
	}
	grand.Set(report.Totals.Today.InexactFloat64())
	duration.Set(elapsed.Seconds())
	last.SetToCurrentTime()

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("could not create metrics folder: %w", err)
	}
	if err := prometheus.WriteToTextfile(path, reg); err != nil {
		return fmt.Errorf("could not write metrics %q: %w", path, err)
	}
	return nil
}
