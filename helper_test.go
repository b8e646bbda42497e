package etfwatch

import (
	"testing"

	"github.com/etnz/etfwatch/date"
	"github.com/shopspring/decimal"
)

// d is a shorthand for a decimal in tests.
func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

// nd is a shorthand for an available decimal in tests.
func nd(s string) decimal.NullDecimal { return decimal.NewNullDecimal(d(s)) }

// row describes a holding in tests; rank is derived from the position.
type row struct {
	id      string
	company string
	shares  string
	mv      string
	weight  string
}

// snap builds a snapshot of fund "ARKK" from rows.
func snap(t *testing.T, on date.Date, rows ...row) *Snapshot {
	t.Helper()
	holdings := make([]Holding, len(rows))
	for i, r := range rows {
		company := r.company
		if company == "" {
			company = "COMPANY " + r.id
		}
		h := Holding{
			Date:        on,
			Fund:        "ARKK",
			Company:     company,
			Ticker:      r.id,
			ID:          r.id,
			Shares:      d(r.shares),
			MarketValue: d(r.mv),
			Weight:      d(r.weight),
			Rank:        i + RankBase,
		}
		h.SharePrice = sharePrice(h.MarketValue, h.Shares)
		holdings[i] = h
	}
	s, err := NewSnapshot("ARKK", on, holdings)
	if err != nil {
		t.Fatalf("NewSnapshot() error = %v", err)
	}
	return s
}

var (
	day1 = date.New(2021, 3, 1)
	day2 = date.New(2021, 3, 2)
)

func assertNull(t *testing.T, name string, got, want decimal.NullDecimal) {
	t.Helper()
	if got.Valid != want.Valid || (got.Valid && !got.Decimal.Equal(want.Decimal)) {
		t.Errorf("%s = %s, want %s", name, FormatChange(got), FormatChange(want))
	}
}
