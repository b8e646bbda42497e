package metrics

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/etnz/etfwatch"
	"github.com/etnz/etfwatch/date"
	"github.com/shopspring/decimal"
)

func snapshot(t *testing.T, on date.Date, ids ...string) *etfwatch.Snapshot {
	t.Helper()
	var holdings []etfwatch.Holding
	for i, id := range ids {
		holdings = append(holdings, etfwatch.Holding{
			Date:        on,
			Fund:        "ARKK",
			Company:     "COMPANY " + id,
			Ticker:      id,
			ID:          id,
			Shares:      decimal.NewFromInt(10),
			MarketValue: decimal.NewFromInt(950),
			Weight:      decimal.NewFromInt(50),
			SharePrice:  decimal.NewFromInt(95),
			Rank:        i + etfwatch.RankBase,
		})
	}
	s, err := etfwatch.NewSnapshot("ARKK", on, holdings)
	if err != nil {
		t.Fatal(err)
	}
	return s
}

func TestWrite(t *testing.T) {
	yesterday := snapshot(t, date.New(2021, 3, 1), "X", "Z")
	today := snapshot(t, date.New(2021, 3, 2), "X", "Y")
	report := etfwatch.NewReport(date.Date{}, etfwatch.DefaultThresholds, []*etfwatch.FundResult{
		etfwatch.Compare(today, yesterday),
		{Fund: "ARKQ", Err: errors.New("boom")},
	})

	path := filepath.Join(t.TempDir(), "node", "etfw.prom")
	if err := Write(path, report, 2*time.Second); err != nil {
		t.Fatalf("Write() error = %v", err)
	}
	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{
		`etfw_fund_processed{fund="ARKK"} 1`,
		`etfw_fund_processed{fund="ARKQ"} 0`,
		`etfw_fund_total_usd{fund="ARKK"} 1900`,
		`etfw_fund_changes{fund="ARKK",kind="added"} 1`,
		`etfw_fund_changes{fund="ARKK",kind="removed"} 1`,
		`etfw_fund_changes{fund="ARKK",kind="renamed"} 0`,
		"etfw_total_usd 1900",
		"etfw_run_duration_seconds 2",
		"# TYPE etfw_run_timestamp_seconds gauge",
	} {
		if !strings.Contains(string(content), want+"\n") {
			t.Errorf("metrics do not contain %q:\n%s", want, content)
		}
	}
	if strings.Contains(string(content), `etfw_fund_total_usd{fund="ARKQ"}`) {
		t.Errorf("a failed fund should have no total:\n%s", content)
	}
}
