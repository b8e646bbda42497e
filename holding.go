package etfwatch

import (
	"github.com/etnz/etfwatch/date"
	"github.com/shopspring/decimal"
)

// RankBase is the rank of the first holding of a snapshot.
//
// Ranks are kept three digits wide so that they sort lexically once
// written as strings.
const RankBase = 101

// Holding is one row of a fund's holdings disclosure.
type Holding struct {
	Date        date.Date
	Fund        string
	Company     string
	Ticker      string
	ID          string // CUSIP
	Shares      decimal.Decimal
	MarketValue decimal.Decimal
	Weight      decimal.Decimal // in percent of the fund's market value
	SharePrice  decimal.Decimal
	Rank        int
}

// Key returns the identifier used to match a holding across snapshots.
// Cash lines sometimes come without a CUSIP, the company name is used instead.
func (h Holding) Key() string {
	if h.ID != "" {
		return h.ID
	}
	return h.Company
}

// Position returns the 1-based position of the holding in the weight-ordered listing.
func (h Holding) Position() int { return h.Rank - RankBase + 1 }

// sharePrice computes the price of one share from the market value, rounded to the cent.
// A position with no shares has no price.
func sharePrice(marketValue, shares decimal.Decimal) decimal.Decimal {
	if shares.IsZero() {
		return decimal.Zero
	}
	return marketValue.Div(shares).Round(2)
}
