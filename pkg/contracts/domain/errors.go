package domain

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// ErrEmptySeries is returned when an operation that needs at least one row
// (loading, extremum, latest snapshot) is given none. A filter producing
// zero rows is a valid state for listings and aggregates; only row-demanding
// operations surface this error.
var ErrEmptySeries = errors.New("empty price series")

// SchemaError reports the required input columns that were absent. It is
// fatal: loading stops before any row is parsed.
type SchemaError struct {
	Missing []string
}

// NewSchemaError builds a SchemaError with the missing names sorted so the
// message is stable regardless of header order.
func NewSchemaError(missing []string) *SchemaError {
	sorted := make([]string, len(missing))
	copy(sorted, missing)
	sort.Strings(sorted)
	return &SchemaError{Missing: sorted}
}

// Error implements the error interface
func (e *SchemaError) Error() string {
	return fmt.Sprintf("missing required columns: %s", strings.Join(e.Missing, ", "))
}

// IsSchemaError reports whether err is (or wraps) a SchemaError.
func IsSchemaError(err error) bool {
	var se *SchemaError
	return errors.As(err, &se)
}
