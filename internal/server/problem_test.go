package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"go.uber.org/zap"

	"github.com/ngipak/infodesa/internal/services"
	"github.com/ngipak/infodesa/internal/store"
)

func TestWriteProblem(t *testing.T) {
	w := httptest.NewRecorder()

	WriteProblem(w, Problem{
		Type:     ProblemTypeNotFound,
		Title:    "Not Found",
		Status:   http.StatusNotFound,
		Detail:   "UMKM tidak ditemukan.",
		Instance: "/api/v1/umkm/vendors/u-x",
	})

	resp := w.Result()
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("status = %d, want %d", resp.StatusCode, http.StatusNotFound)
	}
	if ct := resp.Header.Get("Content-Type"); ct != "application/problem+json" {
		t.Fatalf("content-type = %q, want %q", ct, "application/problem+json")
	}

	var p Problem
	if err := json.NewDecoder(resp.Body).Decode(&p); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if p.Type != ProblemTypeNotFound || p.Title != "Not Found" || p.Status != 404 {
		t.Errorf("problem = %+v", p)
	}
	if p.Detail != "UMKM tidak ditemukan." {
		t.Errorf("detail = %q", p.Detail)
	}
	if p.Instance != "/api/v1/umkm/vendors/u-x" {
		t.Errorf("instance = %q", p.Instance)
	}
}

func TestProblemHelpers(t *testing.T) {
	tests := []struct {
		name     string
		write    func(http.ResponseWriter)
		status   int
		wantType string
	}{
		{"not found", func(w http.ResponseWriter) { NotFound(w, "missing", "/t") }, http.StatusNotFound, ProblemTypeNotFound},
		{"bad request", func(w http.ResponseWriter) { BadRequest(w, "bad", "/t") }, http.StatusBadRequest, ProblemTypeBadRequest},
		{"unauthorized", func(w http.ResponseWriter) { Unauthorized(w, "login", "/t") }, http.StatusUnauthorized, ProblemTypeUnauthorized},
		{"forbidden", func(w http.ResponseWriter) { Forbidden(w, "no", "/t") }, http.StatusForbidden, ProblemTypeForbidden},
		{"conflict", func(w http.ResponseWriter) { Conflict(w, "dup", "/t") }, http.StatusConflict, ProblemTypeConflict},
		{"validation", func(w http.ResponseWriter) { ValidationFailed(w, "nama", "wajib", "/t") }, http.StatusUnprocessableEntity, ProblemTypeValidation},
		{"internal", func(w http.ResponseWriter) { InternalError(w, "boom", "/t") }, http.StatusInternalServerError, ProblemTypeInternal},
		{"rate limited", func(w http.ResponseWriter) { RateLimited(w, "slow down", "/t") }, http.StatusTooManyRequests, ProblemTypeRateLimited},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			tt.write(w)
			if w.Code != tt.status {
				t.Fatalf("status = %d, want %d", w.Code, tt.status)
			}
			var p Problem
			if err := json.NewDecoder(w.Body).Decode(&p); err != nil {
				t.Fatalf("decode: %v", err)
			}
			if p.Type != tt.wantType {
				t.Errorf("type = %q, want %q", p.Type, tt.wantType)
			}
			if p.Status != tt.status {
				t.Errorf("body status = %d, want %d", p.Status, tt.status)
			}
		})
	}
}

func TestWriteProblem_OmitsEmptyOptionalFields(t *testing.T) {
	w := httptest.NewRecorder()

	WriteProblem(w, Problem{
		Type:   ProblemTypeInternal,
		Title:  "Internal Server Error",
		Status: 500,
	})

	var raw map[string]any
	json.NewDecoder(w.Body).Decode(&raw)

	for _, key := range []string{"detail", "instance", "field"} {
		if _, ok := raw[key]; ok {
			t.Errorf("expected %s to be omitted when empty", key)
		}
	}
}

func TestWriteError(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		status     int
		wantField  string
		wantDetail string
	}{
		{"validation", &services.ValidationError{Field: "nama", Message: "Nama wajib diisi."}, http.StatusUnprocessableEntity, "nama", "Nama wajib diisi."},
		{"wrapped not found", fmt.Errorf("get umkm: %w", services.ErrNotFound), http.StatusNotFound, "", "Data tidak ditemukan."},
		{"exists", services.ErrAlreadyExists, http.StatusConflict, "", "Data dengan ID tersebut sudah ada."},
		{"invalid", fmt.Errorf("bad status: %w", services.ErrInvalid), http.StatusBadRequest, "", "bad status: invalid input"},
		{"store error", &store.Error{Message: "permission denied", Hint: "check policy", Code: "42501"}, http.StatusInternalServerError, "", "permission denied • check policy • 42501"},
		{"plain", errors.New("disk full"), http.StatusInternalServerError, "", "disk full"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			r := httptest.NewRequest(http.MethodGet, "/api/v1/x", nil)
			WriteError(w, r, zap.NewNop(), tt.err)

			if w.Code != tt.status {
				t.Fatalf("status = %d, want %d", w.Code, tt.status)
			}
			var p Problem
			json.NewDecoder(w.Body).Decode(&p)
			if p.Field != tt.wantField {
				t.Errorf("field = %q, want %q", p.Field, tt.wantField)
			}
			if p.Detail != tt.wantDetail {
				t.Errorf("detail = %q, want %q", p.Detail, tt.wantDetail)
			}
			if p.Instance != "/api/v1/x" {
				t.Errorf("instance = %q", p.Instance)
			}
		})
	}
}
