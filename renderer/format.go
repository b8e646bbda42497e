package renderer

import (
	"fmt"
	"strings"

	"github.com/Rhymond/go-money"
	"github.com/etnz/etfwatch"
	"github.com/shopspring/decimal"
)

// dollars formats whole dollars, like $1,234,567.
var dollars = money.NewFormatter(0, ".", ",", "$", "$1")

// units formats whole numbers with thousands separators, like 1,234.
var units = money.NewFormatter(0, ".", ",", "", "1")

// usd formats an amount truncated to whole dollars.
func usd(d decimal.Decimal) string { return dollars.Format(d.Truncate(0).IntPart()) }

// signedUSD is like usd with an explicit sign for positive amounts.
func signedUSD(d decimal.Decimal) string {
	if d.Truncate(0).IsPositive() {
		return "+" + usd(d)
	}
	return usd(d)
}

// price formats a share price in dollars and cents.
func price(d decimal.Decimal) string {
	return money.New(d.Shift(2).Round(0).IntPart(), money.USD).Display()
}

// nullPrice is like price for a possibly unavailable value.
func nullPrice(v decimal.NullDecimal) string {
	if !v.Valid {
		return etfwatch.NA
	}
	return price(v.Decimal)
}

// pct formats a change in percent with its sign, like +1.25%.
func pct(v decimal.NullDecimal) string {
	if !v.Valid {
		return etfwatch.NA
	}
	return signed(v.Decimal.StringFixed(2)) + "%"
}

// signedUnits formats a change in whole units with its sign, like -1,234.
func signedUnits(v decimal.NullDecimal) string {
	if !v.Valid {
		return etfwatch.NA
	}
	return signed(units.Format(v.Decimal.Truncate(0).IntPart()))
}

// signedNumber formats a change with its sign, keeping its decimals.
func signedNumber(v decimal.NullDecimal) string {
	if !v.Valid {
		return etfwatch.NA
	}
	return signed(v.Decimal.String())
}

func signed(s string) string {
	if strings.HasPrefix(s, "-") || strings.Trim(s, "0.") == "" {
		return s
	}
	return "+" + s
}

// change formats a structural change as a single line.
func change(c etfwatch.Change) string {
	switch c.Kind {
	case etfwatch.Removed:
		return fmt.Sprintf("%s: %s: removed from %s", ticker(c.Ticker), c.Company, c.Fund)
	case etfwatch.Added:
		return fmt.Sprintf("%s: %s: added to %s; the stock is position %d out of %d", ticker(c.Ticker), c.Company, c.Fund, c.Position, c.Count)
	case etfwatch.Renamed:
		return fmt.Sprintf("%s: %s: renamed from %q in %s", ticker(c.Ticker), c.Company, c.PreviousCompany, c.Fund)
	default:
		return fmt.Sprintf("%s: %s: %v", ticker(c.Ticker), c.Company, c.Kind)
	}
}

// ticker returns a printable ticker. Cash lines have none.
func ticker(t string) string {
	if t == "" {
		return "-"
	}
	return t
}

// statistic formats a statistic of a distribution.
func statistic(name string, s etfwatch.Statistic, total int) string {
	return fmt.Sprintf("%s: %d of %d (%s%% shares).", name, s.Count, total, s.Value.String())
}

// distribution formats the share change distribution of a fund.
func distribution(d etfwatch.Distribution) string {
	if d.Samples == 0 {
		return "No share change available."
	}
	return strings.Join([]string{
		statistic("Mode", d.Mode, d.Total),
		statistic("Q1", d.Q1, d.Total),
		statistic("Q2", d.Q2, d.Total),
		statistic("Q3", d.Q3, d.Total),
	}, " ")
}

// narrative formats a flagged holding as a single line:
// position, price, shares, weight and market value, each with its change.
func narrative(h etfwatch.Highlight, count int) string {
	rankGain := decimal.NullDecimal{}
	if h.RankChange.Valid {
		rankGain = decimal.NewNullDecimal(h.RankChange.Decimal.Neg())
	}
	return fmt.Sprintf("**%s**: %s: %d of %d (%s): %s --> %s (%s): %s shares (%s): %s wt%% (%s)(%s of wt): %s MV (%s MV)",
		ticker(h.Ticker), h.Company,
		h.Position(), count, signedNumber(rankGain),
		nullPrice(h.PreviousSharePrice), price(h.SharePrice), pct(h.SharePricePct),
		signedUnits(h.SharesChange), pct(h.SharesPct),
		h.Weight.String(), signedNumber(roundNull(h.WeightChange, 2)), pct(h.WeightPct),
		usd(h.MarketValue), pct(h.MarketValuePct),
	)
}

// breach formats a change beyond its threshold, like "(+) % of shares: 12.50%".
func breach(b etfwatch.Breach) string {
	direction := "(-)"
	if b.Up {
		direction = "(+)"
	}
	if b.Metric == etfwatch.RankMetric {
		return fmt.Sprintf("%s %v: %s", direction, b.Metric, signed(b.Value.String()))
	}
	return fmt.Sprintf("%s %v: %s%%", direction, b.Metric, b.Value.StringFixed(2))
}

func roundNull(v decimal.NullDecimal, places int32) decimal.NullDecimal {
	if v.Valid {
		v.Decimal = v.Decimal.Round(places)
	}
	return v
}
