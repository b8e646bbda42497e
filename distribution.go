package etfwatch

import (
	"slices"

	"github.com/shopspring/decimal"
)

// Statistic is a value of a distribution, and the number of samples exactly
// equal to it.
type Statistic struct {
	Value decimal.Decimal
	Count int
}

// Distribution describes how the share counts of a fund's holdings changed.
//
// Fund managers often trim or grow most positions of a fund by the same
// ratio, which shows up as a mode shared by many holdings.
type Distribution struct {
	Fund    string
	Total   int // number of holdings
	Samples int // number of holdings with an available share change

	Mode       Statistic
	Q1, Q2, Q3 Statistic
}

// Summarize computes the mode and quartiles of the share changes (in percent).
//
// The mode is the most frequent value, the smallest one on ties. Quartiles
// are linearly interpolated between order statistics, so their count is
// often zero: only samples exactly equal to the interpolated value count.
func Summarize(fund string, deltas []Delta) Distribution {
	dist := Distribution{Fund: fund, Total: len(deltas)}

	values := make([]decimal.Decimal, 0, len(deltas))
	for _, d := range deltas {
		if d.SharesPct.Valid {
			values = append(values, d.SharesPct.Decimal)
		}
	}
	dist.Samples = len(values)
	if len(values) == 0 {
		return dist
	}
	slices.SortFunc(values, func(a, b decimal.Decimal) int { return a.Cmp(b) })

	dist.Mode = count(values, mode(values))
	dist.Q1 = count(values, quantile(values, decimal.NewFromFloat(0.25)))
	dist.Q2 = count(values, quantile(values, decimal.NewFromFloat(0.5)))
	dist.Q3 = count(values, quantile(values, decimal.NewFromFloat(0.75)))
	return dist
}

// mode returns the most frequent value of sorted values. Since values are
// sorted, the first longest run is the smallest mode.
func mode(sorted []decimal.Decimal) decimal.Decimal {
	best, bestRun := sorted[0], 0
	for i := 0; i < len(sorted); {
		j := i + 1
		for j < len(sorted) && sorted[j].Equal(sorted[i]) {
			j++
		}
		if j-i > bestRun {
			best, bestRun = sorted[i], j-i
		}
		i = j
	}
	return best
}

// quantile returns the q-quantile of sorted values with linear interpolation.
func quantile(sorted []decimal.Decimal, q decimal.Decimal) decimal.Decimal {
	pos := q.Mul(decimal.NewFromInt(int64(len(sorted) - 1)))
	lo := pos.Floor()
	frac := pos.Sub(lo)
	i := int(lo.IntPart())
	if i+1 >= len(sorted) {
		return sorted[len(sorted)-1]
	}
	return sorted[i].Add(sorted[i+1].Sub(sorted[i]).Mul(frac))
}

// count returns v with the number of values equal to it.
func count(values []decimal.Decimal, v decimal.Decimal) Statistic {
	s := Statistic{Value: v}
	for _, x := range values {
		if x.Equal(v) {
			s.Count++
		}
	}
	return s
}
