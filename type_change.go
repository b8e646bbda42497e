package etfwatch

import "github.com/shopspring/decimal"

// NA is the text of a value that is not available.
const NA = "N/A"

var hundred = decimal.NewFromInt(100)

// available wraps a computed value.
func available(d decimal.Decimal) decimal.NullDecimal { return decimal.NewNullDecimal(d) }

// notAvailable is the value of a delta that cannot be computed.
var notAvailable = decimal.NullDecimal{}

// difference returns today - yesterday.
func difference(today, yesterday decimal.Decimal) decimal.NullDecimal {
	return available(today.Sub(yesterday))
}

// percentChange returns 100*(today-yesterday)/yesterday rounded to 2 decimals.
// It is not available when yesterday is zero.
func percentChange(today, yesterday decimal.Decimal) decimal.NullDecimal {
	if yesterday.IsZero() {
		return notAvailable
	}
	return available(today.Sub(yesterday).Mul(hundred).Div(yesterday).Round(2))
}

// FormatChange formats a possibly unavailable value.
func FormatChange(v decimal.NullDecimal) string {
	if !v.Valid {
		return NA
	}
	return v.Decimal.String()
}

// ParseChange parses a value written by FormatChange.
// An empty cell, "N/A" or "nan" are not available.
func ParseChange(s string) (decimal.NullDecimal, error) {
	switch s {
	case "", NA, "nan", "NaN":
		return notAvailable, nil
	}
	d, err := parseNumber(s)
	if err != nil {
		return notAvailable, err
	}
	return available(d), nil
}

// greater reports whether v is available and strictly greater than limit.
func greater(v decimal.NullDecimal, limit decimal.Decimal) bool {
	return v.Valid && v.Decimal.GreaterThan(limit)
}

// less reports whether v is available and strictly less than limit.
func less(v decimal.NullDecimal, limit decimal.Decimal) bool {
	return v.Valid && v.Decimal.LessThan(limit)
}
