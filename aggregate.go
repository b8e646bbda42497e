package etfwatch

import "github.com/shopspring/decimal"

// FundTotal is the market value of a fund on two consecutive snapshots.
type FundTotal struct {
	Fund      string
	Today     decimal.Decimal // full precision
	Yesterday decimal.Decimal // full precision

	// ChangePct is computed on the full precision sums, rounded to 2 decimals.
	ChangePct decimal.NullDecimal
}

// Aggregate sums the market value of both snapshots of a fund.
func Aggregate(today, yesterday *Snapshot) FundTotal {
	t, y := today.TotalMarketValue(), yesterday.TotalMarketValue()
	return FundTotal{
		Fund:      today.Fund(),
		Today:     t,
		Yesterday: y,
		ChangePct: percentChange(t, y),
	}
}

// TodayInt returns today's total truncated to an integer.
func (f FundTotal) TodayInt() decimal.Decimal { return f.Today.Truncate(0) }

// YesterdayInt returns yesterday's total truncated to an integer.
func (f FundTotal) YesterdayInt() decimal.Decimal { return f.Yesterday.Truncate(0) }

// Totals is the market value of all funds together.
type Totals struct {
	Funds     []FundTotal
	Today     decimal.Decimal // sum of the truncated fund totals
	Yesterday decimal.Decimal // sum of the truncated fund totals
	Change    decimal.Decimal
	ChangePct decimal.NullDecimal // rounded to 2 decimals
}

// Sum adds up fund totals.
func Sum(funds []FundTotal) Totals {
	t := Totals{
		Funds:     funds,
		Today:     decimal.Zero,
		Yesterday: decimal.Zero,
	}
	for _, f := range funds {
		t.Today = t.Today.Add(f.TodayInt())
		t.Yesterday = t.Yesterday.Add(f.YesterdayInt())
	}
	t.Change = t.Today.Sub(t.Yesterday)
	t.ChangePct = percentChange(t.Today, t.Yesterday)
	return t
}
