// Package services provides repository interfaces and SQL implementations
// for data access. This layer bridges the raw store with the HTTP modules,
// providing a clean abstraction over persistence and input validation.
package services

import (
	"encoding/json"
	"errors"
	"math"
	"strings"
)

// ListOptions controls pagination for list queries.
type ListOptions struct {
	Limit  int // Max results per page (default 50, max 1000).
	Offset int // Number of results to skip.
}

// ListResult wraps a paginated result set with a total count.
type ListResult[T any] struct {
	Items []T `json:"items"`
	Total int `json:"total"`
}

// Counts summarizes a table for the admin dashboard.
type Counts struct {
	Total     int `json:"total"`
	Published int `json:"published"`
}

// Sentinel errors returned by repositories.
var (
	ErrNotFound      = errors.New("not found")
	ErrAlreadyExists = errors.New("already exists")
	ErrInvalid       = errors.New("invalid input")
)

// ValidationError is a user-facing input error. It matches ErrInvalid with
// errors.Is.
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (e *ValidationError) Error() string { return e.Message }

func (e *ValidationError) Is(target error) bool { return target == ErrInvalid }

func invalid(field, msg string) error {
	return &ValidationError{Field: field, Message: msg}
}

// normalizeListOptions applies defaults and caps to list options.
func normalizeListOptions(opts ListOptions) ListOptions {
	if opts.Limit <= 0 {
		opts.Limit = 50
	}
	if opts.Limit > 1000 {
		opts.Limit = 1000
	}
	if opts.Offset < 0 {
		opts.Offset = 0
	}
	return opts
}

// CoercePrice converts a submitted price to whole rupiah. Negative, NaN and
// infinite values become 0; finite values beyond int64 saturate.
func CoercePrice(v float64) int64 {
	if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
		return 0
	}
	if v >= math.MaxInt64 {
		return math.MaxInt64
	}
	return int64(math.Trunc(v))
}

// CoerceCount converts a submitted case count. Negative, NaN and infinite
// values become 0; finite values beyond int saturate.
func CoerceCount(v float64) int {
	if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
		return 0
	}
	if v >= math.MaxInt {
		return math.MaxInt
	}
	return int(math.Trunc(v))
}

// encodeList stores a string slice as a JSON array. Blank entries are
// dropped.
func encodeList(in []string) string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	b, _ := json.Marshal(out)
	return string(b)
}

// decodeList reads a JSON array column. Malformed values decode as empty.
func decodeList(raw string) []string {
	if raw == "" {
		return nil
	}
	var out []string
	if err := json.Unmarshal([]byte(raw), &out); err != nil {
		return nil
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

// scanner is satisfied by *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}
