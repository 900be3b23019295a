package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/ngipak/infodesa/internal/services"
	"github.com/ngipak/infodesa/internal/store"
)

// Problem types for RFC 7807 Problem Details responses.
const (
	ProblemTypeNotFound     = "https://infodesa.id/problems/not-found"
	ProblemTypeBadRequest   = "https://infodesa.id/problems/bad-request"
	ProblemTypeValidation   = "https://infodesa.id/problems/validation"
	ProblemTypeInternal     = "https://infodesa.id/problems/internal-error"
	ProblemTypeUnauthorized = "https://infodesa.id/problems/unauthorized"
	ProblemTypeForbidden    = "https://infodesa.id/problems/forbidden"
	ProblemTypeRateLimited  = "https://infodesa.id/problems/rate-limited"
	ProblemTypeConflict     = "https://infodesa.id/problems/conflict"
)

// Problem represents an RFC 7807 Problem Details response. Field names the
// offending input of a validation problem. Current carries the resource as
// it stands after a failed write was rolled back.
type Problem struct {
	Type     string `json:"type"`
	Title    string `json:"title"`
	Status   int    `json:"status"`
	Detail   string `json:"detail,omitempty"`
	Instance string `json:"instance,omitempty"`
	Field    string `json:"field,omitempty"`
	Current  any    `json:"current,omitempty"`
}

// WriteProblem writes an RFC 7807 Problem Details JSON response.
func WriteProblem(w http.ResponseWriter, p Problem) {
	w.Header().Set("Content-Type", "application/problem+json")
	w.WriteHeader(p.Status)
	_ = json.NewEncoder(w).Encode(p)
}

func problem(w http.ResponseWriter, typ, title string, status int, detail, instance string) {
	WriteProblem(w, Problem{Type: typ, Title: title, Status: status, Detail: detail, Instance: instance})
}

// NotFound writes a 404 problem response.
func NotFound(w http.ResponseWriter, detail, instance string) {
	problem(w, ProblemTypeNotFound, "Not Found", http.StatusNotFound, detail, instance)
}

// BadRequest writes a 400 problem response.
func BadRequest(w http.ResponseWriter, detail, instance string) {
	problem(w, ProblemTypeBadRequest, "Bad Request", http.StatusBadRequest, detail, instance)
}

// Unauthorized writes a 401 problem response.
func Unauthorized(w http.ResponseWriter, detail, instance string) {
	problem(w, ProblemTypeUnauthorized, "Unauthorized", http.StatusUnauthorized, detail, instance)
}

// Forbidden writes a 403 problem response.
func Forbidden(w http.ResponseWriter, detail, instance string) {
	problem(w, ProblemTypeForbidden, "Forbidden", http.StatusForbidden, detail, instance)
}

// Conflict writes a 409 problem response.
func Conflict(w http.ResponseWriter, detail, instance string) {
	problem(w, ProblemTypeConflict, "Conflict", http.StatusConflict, detail, instance)
}

// ValidationFailed writes a 422 problem response for invalid input.
func ValidationFailed(w http.ResponseWriter, field, detail, instance string) {
	WriteProblem(w, Problem{
		Type:     ProblemTypeValidation,
		Title:    "Unprocessable Entity",
		Status:   http.StatusUnprocessableEntity,
		Detail:   detail,
		Instance: instance,
		Field:    field,
	})
}

// InternalError writes a 500 problem response.
func InternalError(w http.ResponseWriter, detail, instance string) {
	problem(w, ProblemTypeInternal, "Internal Server Error", http.StatusInternalServerError, detail, instance)
}

// RateLimited writes a 429 problem response.
func RateLimited(w http.ResponseWriter, detail, instance string) {
	problem(w, ProblemTypeRateLimited, "Too Many Requests", http.StatusTooManyRequests, detail, instance)
}

// WriteError maps a repository error to a problem response. Datastore
// failures are logged and rendered with store.Describe.
func WriteError(w http.ResponseWriter, r *http.Request, logger *zap.Logger, err error) {
	WriteProblem(w, ProblemFor(r, logger, err))
}

// WriteRolledBack writes the problem for err with current attached, so the
// client can restore its view of the resource.
func WriteRolledBack(w http.ResponseWriter, r *http.Request, logger *zap.Logger, err error, current any) {
	p := ProblemFor(r, logger, err)
	p.Current = current
	WriteProblem(w, p)
}

// ProblemFor maps err to a problem without writing it.
func ProblemFor(r *http.Request, logger *zap.Logger, err error) Problem {
	var ve *services.ValidationError
	switch {
	case errors.As(err, &ve):
		return Problem{Type: ProblemTypeValidation, Title: "Unprocessable Entity",
			Status: http.StatusUnprocessableEntity, Detail: ve.Message, Instance: r.URL.Path, Field: ve.Field}
	case errors.Is(err, services.ErrNotFound):
		return Problem{Type: ProblemTypeNotFound, Title: "Not Found",
			Status: http.StatusNotFound, Detail: "Data tidak ditemukan.", Instance: r.URL.Path}
	case errors.Is(err, services.ErrAlreadyExists):
		return Problem{Type: ProblemTypeConflict, Title: "Conflict",
			Status: http.StatusConflict, Detail: "Data dengan ID tersebut sudah ada.", Instance: r.URL.Path}
	case errors.Is(err, services.ErrInvalid):
		return Problem{Type: ProblemTypeBadRequest, Title: "Bad Request",
			Status: http.StatusBadRequest, Detail: err.Error(), Instance: r.URL.Path}
	default:
		if logger != nil {
			logger.Error("request failed",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Error(err),
			)
		}
		return Problem{Type: ProblemTypeInternal, Title: "Internal Server Error",
			Status: http.StatusInternalServerError, Detail: store.Describe(err), Instance: r.URL.Path}
	}
}
