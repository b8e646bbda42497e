package etfwatch

import (
	"errors"
	"fmt"
)

// ErrMissingInput is returned when a fund has no prior snapshot to compare with.
var ErrMissingInput = errors.New("missing prior snapshot")

// MalformedInputError reports a holdings table that cannot be decoded:
// a required column is absent, or a value is not a number.
type MalformedInputError struct {
	Path   string // file name, if known
	Line   int    // 1-based line in the file, 0 for the header
	Column string
	Err    error
}

func (e *MalformedInputError) Error() string {
	where := e.Path
	if where == "" {
		where = "input"
	}
	if e.Line > 0 {
		where = fmt.Sprintf("%s:%d", where, e.Line)
	}
	if e.Column != "" {
		return fmt.Sprintf("malformed %s: column %q: %v", where, e.Column, e.Err)
	}
	return fmt.Sprintf("malformed %s: %v", where, e.Err)
}

func (e *MalformedInputError) Unwrap() error { return e.Err }

var errMissingColumn = errors.New("missing column")
