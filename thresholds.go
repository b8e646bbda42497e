package etfwatch

import "github.com/shopspring/decimal"

// Metric is a change that can be significant.
type Metric int

const (
	SharesMetric      Metric = iota // change in share count, in percent
	RankMetric                      // change in rank, in positions
	SharePriceMetric                // change in share price, in percent
	MarketValueMetric               // change in market value, in percent
)

func (m Metric) String() string {
	switch m {
	case SharesMetric:
		return "% of shares"
	case RankMetric:
		return "rank"
	case SharePriceMetric:
		return "share price %"
	case MarketValueMetric:
		return "% of MV"
	default:
		return "unknown"
	}
}

// Thresholds are the limits beyond which a change is reported.
// A change must be strictly beyond the limit, in either direction.
type Thresholds struct {
	SharesPct      decimal.Decimal
	Rank           decimal.Decimal
	SharePricePct  decimal.Decimal
	MarketValuePct decimal.Decimal
}

// DefaultThresholds are: shares ±10%, rank ±5 positions, share price ±10%,
// market value ±10%.
var DefaultThresholds = Thresholds{
	SharesPct:      decimal.NewFromInt(10),
	Rank:           decimal.NewFromInt(5),
	SharePricePct:  decimal.NewFromInt(10),
	MarketValuePct: decimal.NewFromInt(10),
}

// Breach is a change beyond its threshold.
type Breach struct {
	Metric Metric

	// Up is true for an increase. A holding climbing toward rank 1 is an
	// increase, even though its rank number decreases.
	Up bool

	// Value is the change as displayed: the percentage for percent metrics,
	// and the number of positions gained (negative when lost) for the rank.
	Value decimal.Decimal
}

// Breaches returns the changes of d that are beyond the thresholds, in the
// order shares, rank, share price, market value. Unavailable changes never
// breach.
func (t Thresholds) Breaches(d Delta) []Breach {
	var breaches []Breach
	check := func(m Metric, v decimal.NullDecimal, limit decimal.Decimal) {
		switch {
		case greater(v, limit):
			breaches = append(breaches, Breach{Metric: m, Up: true, Value: v.Decimal})
		case less(v, limit.Neg()):
			breaches = append(breaches, Breach{Metric: m, Up: false, Value: v.Decimal})
		}
	}
	check(SharesMetric, d.SharesPct, t.SharesPct)
	switch {
	case greater(d.RankChange, t.Rank):
		breaches = append(breaches, Breach{Metric: RankMetric, Up: false, Value: d.RankChange.Decimal.Neg()})
	case less(d.RankChange, t.Rank.Neg()):
		breaches = append(breaches, Breach{Metric: RankMetric, Up: true, Value: d.RankChange.Decimal.Neg()})
	}
	check(SharePriceMetric, d.SharePricePct, t.SharePricePct)
	check(MarketValueMetric, d.MarketValuePct, t.MarketValuePct)
	return breaches
}

// Flagged reports whether any change of d is beyond the thresholds.
func (t Thresholds) Flagged(d Delta) bool { return len(t.Breaches(d)) > 0 }
