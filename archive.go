package etfwatch

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/etnz/etfwatch/date"
	"github.com/rs/zerolog/log"
)

// Archive is the folder tree where snapshots, delta tables and summaries are kept:
//
//	<root>/<FUND>/archive/<FUND>_YYYY_MM_DD.csv
//	<root>/<FUND>/delta/<FUND>_YYYY_MM_DD_delta.csv
//	<root>/summary/summary_YYYY_MM_DD.md
//
// Dates in file names sort lexically, so the latest file of a folder is the last one.
type Archive struct {
	Root string
}

// SnapshotPath returns the path of the fund's snapshot on a date.
func (a Archive) SnapshotPath(fund string, on date.Date) string {
	return filepath.Join(a.Root, fund, "archive", fund+"_"+on.Stamp()+".csv")
}

// DeltaPath returns the path of the fund's delta table on a date.
func (a Archive) DeltaPath(fund string, on date.Date) string {
	return filepath.Join(a.Root, fund, "delta", fund+"_"+on.Stamp()+"_delta.csv")
}

// SummaryPath returns the path of the summary of a date.
func (a Archive) SummaryPath(on date.Date) string {
	return filepath.Join(a.Root, "summary", "summary_"+on.Stamp()+".md")
}

// Snapshots returns the paths of a fund's archived snapshots, oldest first.
func (a Archive) Snapshots(fund string) ([]string, error) {
	dir := filepath.Join(a.Root, fund, "archive")
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("could not list archive of %q: %w", fund, err)
	}
	var paths []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if f, _, ok := parseSnapshotName(e.Name()); ok && f == fund {
			paths = append(paths, filepath.Join(dir, e.Name()))
		}
	}
	slices.Sort(paths)
	return paths, nil
}

// Latest returns the two most recent snapshots of a fund.
//
// If the fund has a single snapshot, it is returned as today with an empty
// yesterday and an error wrapping ErrMissingInput. If it has none, the error
// wraps fs.ErrNotExist.
func (a Archive) Latest(fund string) (today, yesterday string, err error) {
	paths, err := a.Snapshots(fund)
	if err != nil {
		return "", "", err
	}
	switch len(paths) {
	case 0:
		return "", "", fmt.Errorf("no snapshot archived for %q: %w", fund, fs.ErrNotExist)
	case 1:
		return paths[0], "", fmt.Errorf("%s has a single snapshot: %w", fund, ErrMissingInput)
	default:
		return paths[len(paths)-1], paths[len(paths)-2], nil
	}
}

// Store archives a snapshot under a fund's folder. A snapshot already
// archived for the same date is left untouched and stored is false.
func (a Archive) Store(fund string, s *Snapshot) (path string, stored bool, err error) {
	path = a.SnapshotPath(fund, s.On())
	if _, err := os.Stat(path); err == nil {
		log.Debug().Str("fund", fund).Str("path", path).Msg("snapshot already archived")
		return path, false, nil
	}
	if err := writeFile(path, func(f *os.File) error { return EncodeSnapshot(f, s) }); err != nil {
		return "", false, err
	}
	return path, true, nil
}

// SaveDeltas writes the delta table of a fund, replacing any previous one.
func (a Archive) SaveDeltas(fund string, on date.Date, deltas []Delta) (string, error) {
	path := a.DeltaPath(fund, on)
	return path, writeFile(path, func(f *os.File) error { return EncodeDeltas(f, deltas) })
}

// LoadSnapshot reads a holdings file.
//
// The error wraps fs.ErrNotExist if the file does not exist, and is a
// *MalformedInputError if its content cannot be decoded. A file with no
// holdings gets its fund and date from its name when it follows the archive
// naming.
func LoadSnapshot(path string) (*Snapshot, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("could not open snapshot: %w", err)
	}
	defer f.Close()

	s, err := DecodeSnapshot(f)
	var malformed *MalformedInputError
	if errors.As(err, &malformed) {
		malformed.Path = path
	}
	if err != nil {
		return nil, err
	}
	if s.Len() == 0 {
		if fund, on, ok := parseSnapshotName(filepath.Base(path)); ok {
			return NewSnapshot(fund, on, nil)
		}
	}
	return s, nil
}

// LoadDeltas reads a delta table.
func LoadDeltas(path string) ([]Delta, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("could not open delta table: %w", err)
	}
	defer f.Close()

	deltas, err := DecodeDeltas(f)
	var malformed *MalformedInputError
	if errors.As(err, &malformed) {
		malformed.Path = path
	}
	return deltas, err
}

// parseSnapshotName parses "<FUND>_YYYY_MM_DD.csv".
func parseSnapshotName(name string) (fund string, on date.Date, ok bool) {
	base, found := strings.CutSuffix(name, ".csv")
	if !found || len(base) < len("_2006_01_02")+1 {
		return "", date.Date{}, false
	}
	stamp := base[len(base)-len("2006_01_02"):]
	fund = base[:len(base)-len("_2006_01_02")]
	if base[len(fund)] != '_' {
		return "", date.Date{}, false
	}
	on, err := date.ParseStamp(stamp)
	if err != nil {
		return "", date.Date{}, false
	}
	return fund, on, true
}

// writeFile creates path and its folder, and writes it with encode.
func writeFile(path string, encode func(*os.File) error) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("could not create directory for %q: %w", path, err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("error opening %q for writing: %w", path, err)
	}
	if err := encode(f); err != nil {
		f.Close()
		return fmt.Errorf("error writing %q: %w", path, err)
	}
	return f.Close()
}
