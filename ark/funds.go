// Package ark downloads the daily holdings files published by ETF issuers
// and archives them as snapshots.
package ark

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"
)

// Fund is a fund ticker and the address of its daily holdings file.
type Fund struct {
	Ticker string `yaml:"ticker" validate:"required"`
	URL    string `yaml:"url" validate:"required,url"`
}

// ReadFunds reads a funds file: one fund per line, its ticker and its URL
// separated by spaces. Blank lines and lines starting with '#' are ignored.
func ReadFunds(r io.Reader) ([]Fund, error) {
	var funds []Fund
	scanner := bufio.NewScanner(r)
	line := 0
	for scanner.Scan() {
		line++
		text := strings.TrimSpace(scanner.Text())
		if text == "" || strings.HasPrefix(text, "#") {
			continue
		}
		fields := strings.Fields(text)
		if len(fields) != 2 {
			return nil, fmt.Errorf("funds file line %d: want \"TICKER URL\", got %q", line, text)
		}
		funds = append(funds, Fund{Ticker: fields[0], URL: fields[1]})
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("cannot read funds file: %w", err)
	}
	return funds, nil
}

// LoadFunds reads a funds file from disk.
func LoadFunds(path string) ([]Fund, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("could not open funds file: %w", err)
	}
	defer f.Close()
	return ReadFunds(f)
}

// Tickers returns the tickers of funds.
func Tickers(funds []Fund) []string {
	tickers := make([]string, len(funds))
	for i, f := range funds {
		tickers[i] = f.Ticker
	}
	return tickers
}
