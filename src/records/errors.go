package records

import (
	"fmt"

	"github.com/cockroachdb/errors"
)

// ErrEmpty is the cause of a LoadError for files without data records.
var ErrEmpty = errors.New("no data records")

// ErrMalformed is the cause of a LoadError for unparsable content in strict mode.
var ErrMalformed = errors.New("malformed content")

// LoadError is returned by Load when the input cannot be read as a dataset.
// Line is the 1-based line (CSV/JSONL) or row (XLSX) number, 0 when not applicable.
type LoadError struct {
	Path   string
	Line   int
	Reason string
	Err    error
}

func (e *LoadError) Error() string {
	msg := fmt.Sprintf("load %s", e.Path)
	if e.Line > 0 {
		msg += fmt.Sprintf(" line %d", e.Line)
	}
	if e.Reason != "" {
		msg += ": " + e.Reason
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *LoadError) Unwrap() error { return e.Err }

func newLoadError(path string, line int, reason string, err error) *LoadError {
	return &LoadError{Path: path, Line: line, Reason: reason, Err: err}
}
