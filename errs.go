package paraffin

import (
	"errors"
	"fmt"
)

var (
	ErrNotConfigured       = errors.New("no connection target configured")
	ErrUnknownDialect      = errors.New("unknown dialect")
	ErrNoValidColumns      = errors.New("no valid columns defined in query")
	ErrConstraintViolation = errors.New("constraint violation")
	ErrKeyNotFound         = errors.New("key not found")
	ErrNoRow               = errors.New("no row")
	ErrNonNumericID        = errors.New("id is not numeric")
	ErrUnsupportedValue    = errors.New("unsupported value type")
)

// CatalogError is returned when the column listing for a table cannot be
// fetched from the catalog.
type CatalogError struct {
	Table string
	Err   error
}

func (e *CatalogError) Error() string {
	return fmt.Sprintf("failed to read columns of %s: %s", e.Table, e.Err)
}

func (e *CatalogError) Unwrap() error {
	return e.Err
}

// StatementError carries the statement text of a failed execution.
// Constraint is set when the dialect classified the failure as an
// integrity or uniqueness violation.
type StatementError struct {
	Query      string
	Err        error
	Constraint bool
}

func (e *StatementError) Error() string {
	if e.Constraint {
		return fmt.Sprintf("%s from query %q: %s", ErrConstraintViolation, e.Query, e.Err)
	}

	return fmt.Sprintf("query %q failed: %s", e.Query, e.Err)
}

func (e *StatementError) Unwrap() error {
	return e.Err
}

func (e *StatementError) Is(target error) bool {
	return target == ErrConstraintViolation && e.Constraint
}

// IsConstraintViolation reports whether err is a statement failure the
// dialect classified as an integrity violation.
func IsConstraintViolation(err error) bool {
	var se *StatementError
	if errors.As(err, &se) {
		return se.Constraint
	}

	return false
}
