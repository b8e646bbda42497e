package etfwatch

import "github.com/shopspring/decimal"

// Delta is the change of one holding of today's snapshot since the previous one.
//
// Absolute and percentage changes are not available for a holding that did
// not exist in the previous snapshot, and percentage changes are not
// available when the previous value is zero.
type Delta struct {
	Holding // today's values

	// Previous is the matching holding of the previous snapshot.
	// It is nil for a new holding, and for deltas decoded from a delta table.
	Previous *Holding

	RankChange        decimal.NullDecimal
	SharesChange      decimal.NullDecimal
	MarketValueChange decimal.NullDecimal
	WeightChange      decimal.NullDecimal

	SharesPct      decimal.NullDecimal
	WeightPct      decimal.NullDecimal // change of the weight, in percent of the previous weight
	SharePricePct  decimal.NullDecimal
	MarketValuePct decimal.NullDecimal

	// PreviousSharePrice is derived from SharePrice and SharePricePct, so
	// that it is consistent with the displayed percentage.
	PreviousSharePrice decimal.NullDecimal
}

// ComputeDeltas joins today's snapshot with yesterday's on the holding key.
// It returns one Delta per holding of today, in today's order.
func ComputeDeltas(today, yesterday *Snapshot) []Delta {
	deltas := make([]Delta, 0, today.Len())
	for _, h := range today.Holdings() {
		d := Delta{
			Holding:            h,
			RankChange:         notAvailable,
			SharesChange:       notAvailable,
			MarketValueChange:  notAvailable,
			WeightChange:       notAvailable,
			SharesPct:          notAvailable,
			WeightPct:          notAvailable,
			SharePricePct:      notAvailable,
			MarketValuePct:     notAvailable,
			PreviousSharePrice: notAvailable,
		}
		if prev, ok := yesterday.Lookup(h.Key()); ok {
			d.Previous = &prev
			d.RankChange = difference(decimal.NewFromInt(int64(h.Rank)), decimal.NewFromInt(int64(prev.Rank)))
			d.SharesChange = difference(h.Shares, prev.Shares)
			d.MarketValueChange = difference(h.MarketValue, prev.MarketValue)
			d.WeightChange = difference(h.Weight, prev.Weight)

			d.SharesPct = percentChange(h.Shares, prev.Shares)
			d.WeightPct = percentChange(h.Weight, prev.Weight)
			d.SharePricePct = percentChange(h.SharePrice, prev.SharePrice)
		}
		d.derive()
		deltas = append(deltas, d)
	}
	return deltas
}

// derive computes the values that are reconstructed from today's values and
// the deltas: the previous share price and the market value change in percent.
func (d *Delta) derive() {
	d.PreviousSharePrice = notAvailable
	if d.SharePricePct.Valid {
		div := decimal.NewFromInt(1).Add(d.SharePricePct.Decimal.Div(hundred))
		if !div.IsZero() {
			d.PreviousSharePrice = available(d.SharePrice.Div(div).Round(2))
		}
	}

	d.MarketValuePct = notAvailable
	if d.MarketValueChange.Valid {
		previous := d.MarketValue.Sub(d.MarketValueChange.Decimal)
		if !previous.IsZero() {
			d.MarketValuePct = available(d.MarketValueChange.Decimal.Mul(hundred).Div(previous).Round(2))
		}
	}
}
