package store

import (
	"errors"
	"strconv"
	"strings"

	"github.com/lib/pq"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

// PostgreSQL SQLSTATE codes the service reacts to.
const (
	CodeUndefinedColumn     = "42703"
	CodeUniqueViolation     = "23505"
	CodeForeignKeyViolation = "23503"
)

// Error is the normalized shape of a datastore failure: a message plus the
// optional details, hint and code the engine reports.
type Error struct {
	Message string `json:"message"`
	Details string `json:"details,omitempty"`
	Hint    string `json:"hint,omitempty"`
	Code    string `json:"code,omitempty"`

	err error
}

func (e *Error) Error() string {
	return e.join()
}

func (e *Error) Unwrap() error {
	return e.err
}

func (e *Error) join() string {
	parts := make([]string, 0, 4)
	for _, p := range []string{e.Message, e.Details, e.Hint, e.Code} {
		if p != "" {
			parts = append(parts, p)
		}
	}
	return strings.Join(parts, " • ")
}

// AsError extracts a normalized *Error from err, converting driver errors
// from lib/pq and modernc.org/sqlite. It reports false for other errors.
func AsError(err error) (*Error, bool) {
	if err == nil {
		return nil, false
	}
	var se *Error
	if errors.As(err, &se) {
		return se, true
	}
	var pe *pq.Error
	if errors.As(err, &pe) {
		return &Error{
			Message: pe.Message,
			Details: pe.Detail,
			Hint:    pe.Hint,
			Code:    string(pe.Code),
			err:     err,
		}, true
	}
	var le *sqlite.Error
	if errors.As(err, &le) {
		return &Error{
			Message: le.Error(),
			Code:    strconv.Itoa(le.Code()),
			err:     err,
		}, true
	}
	return nil, false
}

// Describe renders err for display: the non-empty message, details, hint
// and code joined with " • ". Errors that are not datastore errors render
// as their message; nil renders as "Unknown error".
func Describe(err error) string {
	if err == nil {
		return "Unknown error"
	}
	if se, ok := AsError(err); ok {
		if s := se.join(); s != "" {
			return s
		}
	}
	return err.Error()
}

// IsUndefinedColumn reports whether err means a referenced column does not
// exist: SQLSTATE 42703 on PostgreSQL, "no such column" on SQLite.
func IsUndefinedColumn(err error) bool {
	if err == nil {
		return false
	}
	var pe *pq.Error
	if errors.As(err, &pe) {
		return string(pe.Code) == CodeUndefinedColumn
	}
	var se *Error
	if errors.As(err, &se) && se.Code == CodeUndefinedColumn {
		return true
	}
	return strings.Contains(err.Error(), "no such column")
}

// IsUniqueViolation reports whether err is a primary-key or unique
// constraint failure.
func IsUniqueViolation(err error) bool {
	var pe *pq.Error
	if errors.As(err, &pe) {
		return string(pe.Code) == CodeUniqueViolation
	}
	var le *sqlite.Error
	if errors.As(err, &le) {
		return le.Code() == sqlite3.SQLITE_CONSTRAINT_UNIQUE ||
			le.Code() == sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY
	}
	return false
}

// IsForeignKeyViolation reports whether err is a foreign-key failure.
func IsForeignKeyViolation(err error) bool {
	var pe *pq.Error
	if errors.As(err, &pe) {
		return string(pe.Code) == CodeForeignKeyViolation
	}
	var le *sqlite.Error
	if errors.As(err, &le) {
		return le.Code() == sqlite3.SQLITE_CONSTRAINT_FOREIGNKEY
	}
	return false
}
