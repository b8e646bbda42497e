package etfwatch

import (
	"fmt"
	"iter"

	"github.com/etnz/etfwatch/date"
	"github.com/shopspring/decimal"
)

// Snapshot is the ordered list of a fund's holdings on a disclosure date.
// It is immutable once created.
type Snapshot struct {
	fund     string
	on       date.Date
	holdings []Holding
	index    map[string]int // Key() -> position in holdings
}

// NewSnapshot creates a snapshot from holdings in their disclosure order.
// Holding keys must be unique.
func NewSnapshot(fund string, on date.Date, holdings []Holding) (*Snapshot, error) {
	s := &Snapshot{
		fund:     fund,
		on:       on,
		holdings: make([]Holding, len(holdings)),
		index:    make(map[string]int, len(holdings)),
	}
	copy(s.holdings, holdings)
	for i, h := range s.holdings {
		key := h.Key()
		if j, exists := s.index[key]; exists {
			return nil, &MalformedInputError{Column: "cusip", Err: fmt.Errorf("holding %q listed twice (rows %d and %d)", key, j+1, i+1)}
		}
		s.index[key] = i
	}
	return s, nil
}

// Fund returns the fund ticker.
func (s *Snapshot) Fund() string { return s.fund }

// On returns the disclosure date.
func (s *Snapshot) On() date.Date { return s.on }

// Len returns the number of holdings.
func (s *Snapshot) Len() int { return len(s.holdings) }

// Holdings iterates over the holdings in disclosure order.
func (s *Snapshot) Holdings() iter.Seq2[int, Holding] {
	return func(yield func(int, Holding) bool) {
		for i, h := range s.holdings {
			if !yield(i, h) {
				return
			}
		}
	}
}

// Lookup returns the holding with the given key.
func (s *Snapshot) Lookup(key string) (Holding, bool) {
	i, ok := s.index[key]
	if !ok {
		return Holding{}, false
	}
	return s.holdings[i], true
}

// TotalMarketValue sums the market value of all holdings, in full precision.
func (s *Snapshot) TotalMarketValue() decimal.Decimal {
	total := decimal.Zero
	for _, h := range s.holdings {
		total = total.Add(h.MarketValue)
	}
	return total
}

// withFund returns a copy of s attributed to another fund.
// Holdings are shared, since neither snapshot can modify them.
func (s *Snapshot) withFund(fund string) *Snapshot {
	c := *s
	c.fund = fund
	return &c
}
