// Package date handles day granularity dates as they appear in holdings
// disclosures and in archive file names.
package date

import (
	"fmt"
	"time"
)

const readDateFormat = "2006-1-2" // Permissive read date format (allows single-digit month/day).

// DateFormat is the format used to represent dates as strings in ISO-8601 format.
const DateFormat = "2006-01-02" // write date format

// DisclosureFormat is the format used by fund issuers in the date column of
// their holdings files.
const DisclosureFormat = "01/02/2006"

// StampFormat is the format used to date archive files. It sorts
// lexically in chronological order.
const StampFormat = "2006_01_02"

// Date represents a date with day-level granularity.
type Date struct {
	y int
	m time.Month
	d int
}

// time returns a time.Time that is a canonical representation of that day (at midnight UTC).
func (d Date) time() time.Time { return time.Date(d.y, d.m, d.d, 0, 0, 0, 0, time.UTC) }

// New returns a normalized Date for the given year, month, and day.
func New(year int, month time.Month, day int) Date {
	d := Date{year, month, day}
	d.y, d.m, d.d = d.time().Date()
	return d
}

// Today returns the current date.
func Today() Date { return New(time.Now().Date()) }

// Year returns current year.
func (d Date) Year() int { return d.y }

// Month returns the month of the date.
func (d Date) Month() time.Month { return d.m }

// Day returns current day of the month.
func (d Date) Day() int { return d.d }

// Add returns a new Date with the given number of days added.
func (d Date) Add(i int) Date { return New(d.y, d.m, d.d+i) }

// Before reports whether the day d is before x.
func (d Date) Before(x Date) bool { return d.time().Before(x.time()) }

// After reports whether the day d is after x.
func (d Date) After(x Date) bool { return d.time().After(x.time()) }

// Compare returns -1, 0 or +1 depending on whether d is before, equal to or after x.
func (d Date) Compare(x Date) int { return d.time().Compare(x.time()) }

// IsZero reports whether d is the zero Date.
func (d Date) IsZero() bool { return d == Date{} }

// String format the date in its standard format.
func (d Date) String() string { return d.time().Format(DateFormat) }

// Stamp formats the date for archive file names.
func (d Date) Stamp() string { return d.time().Format(StampFormat) }

// Disclosure formats the date the way issuers write it.
func (d Date) Disclosure() string { return d.time().Format(DisclosureFormat) }

// Parse parses a Date from a string. It is lenient and accepts formats like "2025-7-1".
func Parse(str string) (Date, error) {
	on, err := time.Parse(readDateFormat, str)
	if err != nil {
		return Date{}, fmt.Errorf("invalid date %q want format %q: %w", str, readDateFormat, err)
	}
	return New(on.Date()), nil
}

// ParseDisclosure parses the date column of a holdings file.
// Both "03/01/2021" and the ISO form are accepted, since files that went
// through the archive are written back with ISO dates.
func ParseDisclosure(str string) (Date, error) {
	if on, err := time.Parse("1/2/2006", str); err == nil {
		return New(on.Date()), nil
	}
	if d, err := Parse(str); err == nil {
		return d, nil
	}
	return Date{}, fmt.Errorf("invalid disclosure date %q want format %q", str, DisclosureFormat)
}

// ParseStamp parses a date formatted with Stamp.
func ParseStamp(str string) (Date, error) {
	on, err := time.Parse(StampFormat, str)
	if err != nil {
		return Date{}, fmt.Errorf("invalid date stamp %q want format %q: %w", str, StampFormat, err)
	}
	return New(on.Date()), nil
}

// MustParse is like Parse but panics on error.
func MustParse(str string) Date {
	d, err := Parse(str)
	if err != nil {
		panic(err.Error())
	}
	return d
}

// MarshalText implements encoding.TextMarshaler.
func (d Date) MarshalText() ([]byte, error) { return []byte(d.String()), nil }

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Date) UnmarshalText(text []byte) error {
	on, err := Parse(string(text))
	if err != nil {
		return err
	}
	*d = on
	return nil
}
