package etfwatch

import (
	"bytes"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/etnz/etfwatch/date"
	"github.com/google/go-cmp/cmp"
)

// issuerFile is a holdings file as published, with its disclaimer.
const issuerFile = `date,fund,company,ticker,cusip,shares,"market value($)",weight(%)
03/01/2021,ARKK,TESLA INC,TSLA,88160R101,"2,000","$1,380,000.00",10.50%
03/01/2021,ARKK,ROKU INC,ROKU,77543R102,1000,400000,3.05
03/01/2021,ARKK,MORGAN STANLEY GOVT INSTL 8035,,,5000,5000,0.04
"The principal risks of investing in the Funds include..."
"Holdings are subject to change."
`

func TestDecodeSnapshot_IssuerFile(t *testing.T) {
	s, err := DecodeSnapshot(strings.NewReader(issuerFile))
	if err != nil {
		t.Fatalf("DecodeSnapshot() error = %v", err)
	}
	if s.Fund() != "ARKK" || s.On() != date.New(2021, 3, 1) {
		t.Errorf("DecodeSnapshot() fund, date = %q, %v", s.Fund(), s.On())
	}
	if s.Len() != 3 {
		t.Fatalf("DecodeSnapshot() has %d holdings, want 3 (disclaimer dropped)", s.Len())
	}

	tsla, ok := s.Lookup("88160R101")
	if !ok {
		t.Fatalf("TSLA not found")
	}
	if !tsla.Shares.Equal(d("2000")) || !tsla.MarketValue.Equal(d("1380000")) || !tsla.Weight.Equal(d("10.5")) {
		t.Errorf("TSLA numbers = %v, %v, %v", tsla.Shares, tsla.MarketValue, tsla.Weight)
	}
	if !tsla.SharePrice.Equal(d("690")) {
		t.Errorf("TSLA SharePrice = %v, want 690", tsla.SharePrice)
	}
	if tsla.Rank != RankBase || tsla.Position() != 1 {
		t.Errorf("TSLA Rank = %d, Position = %d, want %d, 1", tsla.Rank, tsla.Position(), RankBase)
	}

	cash, ok := s.Lookup("MORGAN STANLEY GOVT INSTL 8035")
	if !ok {
		t.Fatalf("cash line without CUSIP should be keyed by company")
	}
	if cash.Rank != RankBase+2 {
		t.Errorf("cash Rank = %d, want %d", cash.Rank, RankBase+2)
	}
}

func TestDecodeSnapshot_RankByWeight(t *testing.T) {
	input := "date,fund,company,ticker,cusip,shares,market value($),weight(%)\n" +
		"03/01/2021,ARKK,A,A,A,1,1,5\n" +
		"03/01/2021,ARKK,B,B,B,1,1,40\n" +
		"03/01/2021,ARKK,C,C,C,1,1,5\n" +
		"03/01/2021,ARKK,D,D,D,1,1,50\n"
	s, err := DecodeSnapshot(strings.NewReader(input))
	if err != nil {
		t.Fatalf("DecodeSnapshot() error = %v", err)
	}
	var got []string
	for _, h := range s.Holdings() {
		got = append(got, fmt.Sprintf("%s:%d", h.Ticker, h.Position()))
	}
	// File order is kept, ties keep file order.
	want := []string{"A:3", "B:2", "C:4", "D:1"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("DecodeSnapshot() positions mismatch (-want +got):\n%s", diff)
	}
}

func TestDecodeSnapshot_Malformed(t *testing.T) {
	testCases := []struct {
		name   string
		input  string
		column string
	}{
		{
			name:   "missing column",
			input:  "date,fund,company,ticker,cusip,shares,weight(%)\n03/01/2021,ARKK,A,A,A,1,1\n",
			column: "market value($)",
		},
		{
			name:   "not a number",
			input:  "date,fund,company,ticker,cusip,shares,market value($),weight(%)\n03/01/2021,ARKK,A,A,A,many,1,1\n",
			column: "shares",
		},
		{
			name:   "bad date",
			input:  "date,fund,company,ticker,cusip,shares,market value($),weight(%)\nyesterday,ARKK,A,A,A,1,1,1\n",
			column: "date",
		},
		{
			name: "blank date before holdings",
			input: "date,fund,company,ticker,cusip,shares,market value($),weight(%)\n" +
				"03/01/2021,ARKK,A,A,A,1,1,1\n" +
				",ARKK,ROKU INC,ROKU,77543R102,1,1,1\n" +
				"03/01/2021,ARKK,B,B,B,1,1,1\n" +
				"03/01/2021,ARKK,C,C,C,1,1,1\n",
			column: "date",
		},
		{
			name: "short row before holdings",
			input: "date,fund,company,ticker,cusip,shares,market value($),weight(%)\n" +
				"03/01/2021,ARKK,A,A,A,1,1,1\n" +
				"03/01/2021,ARKK,B,B,B,1,1\n" +
				"03/01/2021,ARKK,C,C,C,1,1,1\n",
			column: "",
		},
		{
			name:   "duplicate cusip",
			input:  "date,fund,company,ticker,cusip,shares,market value($),weight(%)\n03/01/2021,ARKK,A,A,A,1,1,1\n03/01/2021,ARKK,B,B,A,1,1,1\n",
			column: "cusip",
		},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := DecodeSnapshot(strings.NewReader(tc.input))
			var malformed *MalformedInputError
			if !errors.As(err, &malformed) {
				t.Fatalf("DecodeSnapshot() error = %v, want a *MalformedInputError", err)
			}
			if malformed.Column != tc.column {
				t.Errorf("MalformedInputError.Column = %q, want %q", malformed.Column, tc.column)
			}
		})
	}
}

func TestDecodeSnapshot_Empty(t *testing.T) {
	s, err := DecodeSnapshot(strings.NewReader("date,fund,company,ticker,cusip,shares,market value($),weight(%)\n"))
	if err != nil {
		t.Fatalf("DecodeSnapshot() error = %v", err)
	}
	if s.Len() != 0 {
		t.Errorf("DecodeSnapshot() has %d holdings, want 0", s.Len())
	}

	if _, err := DecodeSnapshot(strings.NewReader("")); err == nil {
		t.Errorf("DecodeSnapshot() of an empty file should fail")
	}
}

func TestEncodeSnapshot_RoundTrip(t *testing.T) {
	s, err := DecodeSnapshot(strings.NewReader(issuerFile))
	if err != nil {
		t.Fatal(err)
	}
	var buf bytes.Buffer
	if err := EncodeSnapshot(&buf, s); err != nil {
		t.Fatalf("EncodeSnapshot() error = %v", err)
	}
	if !strings.HasPrefix(buf.String(), "date,fund,company,ticker,cusip,shares,market value($),weight(%),share price,rank\n") {
		t.Errorf("EncodeSnapshot() header = %q", strings.SplitN(buf.String(), "\n", 2)[0])
	}

	back, err := DecodeSnapshot(&buf)
	if err != nil {
		t.Fatalf("DecodeSnapshot() error = %v", err)
	}
	if back.Len() != s.Len() {
		t.Fatalf("round trip has %d holdings, want %d", back.Len(), s.Len())
	}
	for i, h := range s.Holdings() {
		got, _ := back.Lookup(h.Key())
		if got.Rank != h.Rank || !got.SharePrice.Equal(h.SharePrice) || !got.MarketValue.Equal(h.MarketValue) || got.Date != h.Date {
			t.Errorf("holding %d = %+v, want %+v", i, got, h)
		}
	}
}

func TestDeltas_RoundTrip(t *testing.T) {
	yesterday := snap(t, day1, row{id: "X", shares: "100", mv: "1000", weight: "10"})
	today := snap(t, day2,
		row{id: "X", shares: "90", mv: "1200", weight: "12"},
		row{id: "Y", shares: "10", mv: "100", weight: "1"},
	)
	deltas := ComputeDeltas(today, yesterday)

	var buf bytes.Buffer
	if err := EncodeDeltas(&buf, deltas); err != nil {
		t.Fatalf("EncodeDeltas() error = %v", err)
	}
	if !strings.Contains(buf.String(), ",N/A,") {
		t.Errorf("EncodeDeltas() should write N/A for the new holding:\n%s", buf.String())
	}

	back, err := DecodeDeltas(&buf)
	if err != nil {
		t.Fatalf("DecodeDeltas() error = %v", err)
	}
	if len(back) != 2 {
		t.Fatalf("DecodeDeltas() returned %d deltas, want 2", len(back))
	}
	x := back[0]
	assertNull(t, "SharesChange", x.SharesChange, deltas[0].SharesChange)
	assertNull(t, "SharesPct", x.SharesPct, deltas[0].SharesPct)
	assertNull(t, "MarketValuePct", x.MarketValuePct, deltas[0].MarketValuePct)
	assertNull(t, "PreviousSharePrice", x.PreviousSharePrice, deltas[0].PreviousSharePrice)
	assertNull(t, "WeightPct", x.WeightPct, deltas[0].WeightPct)
	if x.Previous != nil {
		t.Errorf("decoded delta has a Previous holding")
	}
	if back[1].SharesPct.Valid || back[1].RankChange.Valid {
		t.Errorf("new holding deltas should decode as not available: %+v", back[1])
	}
}

func TestParseChange(t *testing.T) {
	for _, s := range []string{"", "N/A", "nan"} {
		if v, err := ParseChange(s); err != nil || v.Valid {
			t.Errorf("ParseChange(%q) = %v, %v, want not available", s, v, err)
		}
	}
	if v, err := ParseChange("-1.58"); err != nil || !v.Valid || !v.Decimal.Equal(d("-1.58")) {
		t.Errorf("ParseChange(-1.58) = %v, %v", v, err)
	}
	if _, err := ParseChange("abc"); err == nil {
		t.Errorf("ParseChange(abc) should fail")
	}
}
