package etfwatch

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"slices"
	"strconv"
	"strings"

	"github.com/etnz/etfwatch/date"
	"github.com/shopspring/decimal"
)

// this file contains the CSV format of snapshots and delta tables.
// It keeps the issuer's column names so that archived files remain readable
// next to the downloaded ones.

const (
	colDate        = "date"
	colFund        = "fund"
	colCompany     = "company"
	colTicker      = "ticker"
	colCUSIP       = "cusip"
	colShares      = "shares"
	colMarketValue = "market value($)"
	colWeight      = "weight(%)"
	colSharePrice  = "share price"
	colRank        = "rank"

	colRankChange         = "d_rank"
	colSharesChange       = "d_shares"
	colSharesPct          = "d_shares_pct"
	colMarketValueChange  = "d_market_value($)"
	colWeightChange       = "d_weight(%)"
	colWeightPct          = "d_weight_pct_pct"
	colSharePricePct      = "d_share_price_pct"
	colPreviousSharePrice = "yesterday_share_price"
	colMarketValuePct     = "d_market_value($)_pct"
)

// required columns of a holdings file. Share price and rank are derived when absent.
var requiredColumns = []string{colDate, colFund, colCompany, colTicker, colCUSIP, colShares, colMarketValue, colWeight}

var snapshotColumns = append(append([]string{}, requiredColumns...), colSharePrice, colRank)

var deltaColumns = append(append([]string{}, snapshotColumns...),
	colRankChange, colSharesChange, colSharesPct, colMarketValueChange, colWeightChange,
	colWeightPct, colSharePricePct, colPreviousSharePrice, colMarketValuePct)

// parseNumber parses an issuer number like "1,234.5", "$12.00" or "3.25%".
func parseNumber(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	s = strings.NewReplacer("$", "", ",", "", "%", "").Replace(s)
	return decimal.NewFromString(strings.TrimSpace(s))
}

// table reads a CSV file whose columns are located by name.
type table struct {
	r       *csv.Reader
	columns map[string]int
	width   int // minimum number of fields of a data record

	// first line that is not a holding, and the column it lacks
	footer       int
	footerColumn string
}

func newTable(r io.Reader, required []string) (*table, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, &MalformedInputError{Err: errors.New("empty file")}
	}
	if err != nil {
		return nil, &MalformedInputError{Err: err}
	}

	t := &table{r: cr, columns: make(map[string]int, len(header))}
	for i, name := range header {
		name = strings.ToLower(strings.TrimSpace(strings.TrimPrefix(name, "\ufeff")))
		if _, exists := t.columns[name]; !exists {
			t.columns[name] = i
		}
	}
	for _, name := range required {
		i, ok := t.columns[name]
		if !ok {
			return nil, &MalformedInputError{Column: name, Err: errMissingColumn}
		}
		t.width = max(t.width, i+1)
	}
	return t, nil
}

// next returns the next data record. It returns io.EOF at the end of the
// file.
//
// Issuers append a disclaimer after the holdings: lines that are not
// holdings are skipped, as long as no holding follows them.
func (t *table) next() (record []string, line int, err error) {
	for {
		record, err = t.r.Read()
		if errors.Is(err, io.EOF) {
			return nil, 0, io.EOF
		}
		if err != nil {
			return nil, 0, &MalformedInputError{Err: err}
		}
		line, _ = t.r.FieldPos(0)

		full := len(record) >= t.width
		if !full || strings.TrimSpace(record[t.columns[colDate]]) == "" {
			if t.footer == 0 {
				t.footer = line
				if full {
					t.footerColumn = colDate
				}
			}
			continue
		}
		if t.footer > 0 {
			return nil, t.footer, &MalformedInputError{
				Line:   t.footer,
				Column: t.footerColumn,
				Err:    fmt.Errorf("not a holding, but holdings follow on line %d", line),
			}
		}
		return record, line, nil
	}
}

// cell returns the trimmed value of a column, "" if the column is absent.
func (t *table) cell(record []string, name string) string {
	i, ok := t.columns[name]
	if !ok || i >= len(record) {
		return ""
	}
	return strings.TrimSpace(record[i])
}

func (t *table) has(name string) bool {
	_, ok := t.columns[name]
	return ok
}

// holding decodes the snapshot columns of a record. Without a rank column
// the rank is left to the caller.
func (t *table) holding(record []string, line int) (Holding, error) {
	h := Holding{
		Fund:    t.cell(record, colFund),
		Company: t.cell(record, colCompany),
		Ticker:  t.cell(record, colTicker),
		ID:      t.cell(record, colCUSIP),
	}
	malformed := func(column string, err error) error {
		return &MalformedInputError{Line: line, Column: column, Err: err}
	}

	var err error
	if h.Date, err = date.ParseDisclosure(t.cell(record, colDate)); err != nil {
		return h, malformed(colDate, err)
	}
	numbers := []struct {
		column string
		value  *decimal.Decimal
	}{
		{colShares, &h.Shares},
		{colMarketValue, &h.MarketValue},
		{colWeight, &h.Weight},
	}
	for _, n := range numbers {
		if *n.value, err = parseNumber(t.cell(record, n.column)); err != nil {
			return h, malformed(n.column, err)
		}
	}

	if v := t.cell(record, colSharePrice); v != "" {
		if h.SharePrice, err = parseNumber(v); err != nil {
			return h, malformed(colSharePrice, err)
		}
	} else {
		h.SharePrice = sharePrice(h.MarketValue, h.Shares)
	}

	if v := t.cell(record, colRank); v != "" {
		r, err := parseNumber(v)
		if err != nil || !r.IsInteger() {
			return h, malformed(colRank, fmt.Errorf("invalid rank %q", v))
		}
		h.Rank = int(r.IntPart())
	}
	return h, nil
}

// rankByWeight assigns ranks from RankBase in descending weight order.
func rankByWeight(holdings []Holding) {
	order := make([]int, len(holdings))
	for i := range order {
		order[i] = i
	}
	slices.SortStableFunc(order, func(a, b int) int {
		return holdings[b].Weight.Cmp(holdings[a].Weight)
	})
	for rank, i := range order {
		holdings[i].Rank = rank + RankBase
	}
}

// DecodeSnapshot reads a holdings file.
//
// The file must have a header with at least the columns date, fund, company,
// ticker, cusip, shares, market value($) and weight(%). Share price and rank
// are computed when the columns are absent: ranks then follow descending
// weight, file order breaking ties. Holdings keep the file order. Fund and
// date of the snapshot are read from the first holding, they are left empty
// for a file with no holdings.
//
// Lines after the holdings that are not holdings (a disclaimer) are
// ignored. Such a line followed by a holding is a MalformedInputError.
func DecodeSnapshot(r io.Reader) (*Snapshot, error) {
	t, err := newTable(r, requiredColumns)
	if err != nil {
		return nil, err
	}

	var holdings []Holding
	for {
		record, line, err := t.next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}
		h, err := t.holding(record, line)
		if err != nil {
			return nil, err
		}
		holdings = append(holdings, h)
	}
	if !t.has(colRank) {
		rankByWeight(holdings)
	}

	var fund string
	var on date.Date
	if len(holdings) > 0 {
		fund, on = holdings[0].Fund, holdings[0].Date
	}
	return NewSnapshot(fund, on, holdings)
}

func holdingRecord(h Holding) []string {
	return []string{
		h.Date.Disclosure(),
		h.Fund,
		h.Company,
		h.Ticker,
		h.ID,
		h.Shares.String(),
		h.MarketValue.String(),
		h.Weight.String(),
		h.SharePrice.String(),
		strconv.Itoa(h.Rank),
	}
}

// EncodeSnapshot writes s in the holdings file format, with share price and rank.
func EncodeSnapshot(w io.Writer, s *Snapshot) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(snapshotColumns); err != nil {
		return fmt.Errorf("cannot write snapshot header: %w", err)
	}
	for _, h := range s.Holdings() {
		if err := cw.Write(holdingRecord(h)); err != nil {
			return fmt.Errorf("cannot write holding %q: %w", h.Key(), err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// EncodeDeltas writes a delta table: the snapshot columns followed by the changes.
func EncodeDeltas(w io.Writer, deltas []Delta) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(deltaColumns); err != nil {
		return fmt.Errorf("cannot write delta header: %w", err)
	}
	for _, d := range deltas {
		record := append(holdingRecord(d.Holding),
			FormatChange(d.RankChange),
			FormatChange(d.SharesChange),
			FormatChange(d.SharesPct),
			FormatChange(d.MarketValueChange),
			FormatChange(d.WeightChange),
			FormatChange(d.WeightPct),
			FormatChange(d.SharePricePct),
			FormatChange(d.PreviousSharePrice),
			FormatChange(d.MarketValuePct),
		)
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("cannot write delta %q: %w", d.Key(), err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// DecodeDeltas reads a delta table written by EncodeDeltas.
// Decoded deltas have no Previous holding.
func DecodeDeltas(r io.Reader) ([]Delta, error) {
	t, err := newTable(r, deltaColumns)
	if err != nil {
		return nil, err
	}

	var deltas []Delta
	for {
		record, line, err := t.next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}
		h, err := t.holding(record, line)
		if err != nil {
			return nil, err
		}
		d := Delta{Holding: h}
		changes := []struct {
			column string
			value  *decimal.NullDecimal
		}{
			{colRankChange, &d.RankChange},
			{colSharesChange, &d.SharesChange},
			{colSharesPct, &d.SharesPct},
			{colMarketValueChange, &d.MarketValueChange},
			{colWeightChange, &d.WeightChange},
			{colWeightPct, &d.WeightPct},
			{colSharePricePct, &d.SharePricePct},
			{colPreviousSharePrice, &d.PreviousSharePrice},
			{colMarketValuePct, &d.MarketValuePct},
		}
		for _, c := range changes {
			if *c.value, err = ParseChange(t.cell(record, c.column)); err != nil {
				return nil, &MalformedInputError{Line: line, Column: c.column, Err: err}
			}
		}
		deltas = append(deltas, d)
	}
	return deltas, nil
}
