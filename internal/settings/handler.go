// Package settings serves the site settings: a public subset used by the
// site header and footer, and the admin key/value editor.
package settings

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"regexp"

	"go.uber.org/zap"

	"github.com/ngipak/infodesa/internal/plugin"
	"github.com/ngipak/infodesa/internal/server"
	"github.com/ngipak/infodesa/internal/services"
	"github.com/ngipak/infodesa/pkg/models"
)

// Compile-time interface guards.
var (
	_ plugin.Plugin       = (*Handler)(nil)
	_ plugin.HTTPProvider = (*Handler)(nil)
)

// PublicKeys are the settings anyone may read.
var PublicKeys = []string{"nama_desa", "alamat_kantor", "kontak_wa", "email_desa"}

var keyPattern = regexp.MustCompile(`^[a-z][a-z0-9_]{1,63}$`)

// ValueRequest sets one setting.
// @Description Request body for saving a setting.
type ValueRequest struct {
	Value string `json:"value" example:"Desa Ngipak"`
}

// Handler provides HTTP handlers for settings endpoints.
type Handler struct {
	settings services.SettingsRepository
	logger   *zap.Logger
}

// NewHandler creates a settings Handler. The repository is opened in Init
// when settings is nil.
func NewHandler(settings services.SettingsRepository) *Handler {
	return &Handler{settings: settings}
}

func (h *Handler) Info() plugin.PluginInfo {
	return plugin.PluginInfo{
		Name:        "settings",
		Version:     "1.0.0",
		Description: "Site settings",
		APIVersion:  plugin.APIVersionCurrent,
	}
}

func (h *Handler) Init(ctx context.Context, deps plugin.Dependencies) error {
	h.logger = deps.Logger
	if h.settings != nil {
		return nil
	}
	repo, err := services.NewSettingsRepository(ctx, deps.Store)
	if err != nil {
		return err
	}
	h.settings = repo
	return nil
}

func (h *Handler) Start(_ context.Context) error { return nil }
func (h *Handler) Stop(_ context.Context) error  { return nil }

func (h *Handler) Routes() []plugin.Route {
	admin := models.RoleAdmin
	return []plugin.Route{
		{Method: "GET", Path: "", Handler: h.handlePublic},
		{Method: "GET", Path: "/admin", Handler: h.handleList, Role: admin},
		{Method: "PUT", Path: "/admin/{key}", Handler: h.handleSet, Role: admin},
		{Method: "DELETE", Path: "/admin/{key}", Handler: h.handleDelete, Role: admin},
	}
}

// handlePublic returns the public settings. Unset keys are omitted.
//
//	@Summary	Public settings
//	@Tags		settings
//	@Produce	json
//	@Success	200	{object}	map[string]string
//	@Router		/settings [get]
func (h *Handler) handlePublic(w http.ResponseWriter, r *http.Request) {
	out := make(map[string]string, len(PublicKeys))
	for _, key := range PublicKeys {
		s, err := h.settings.Get(r.Context(), key)
		if errors.Is(err, services.ErrNotFound) {
			continue
		}
		if err != nil {
			server.WriteError(w, r, h.logger, err)
			return
		}
		out[key] = s.Value
	}
	writeJSON(w, http.StatusOK, out)
}

// handleList returns every setting.
//
//	@Summary	List settings
//	@Tags		settings
//	@Produce	json
//	@Security	BearerAuth
//	@Success	200	{array}	services.Setting
//	@Router		/settings/admin [get]
func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	all, err := h.settings.GetAll(r.Context())
	if err != nil {
		server.WriteError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, all)
}

// handleSet creates or replaces a setting.
//
//	@Summary	Save setting
//	@Tags		settings
//	@Accept		json
//	@Produce	json
//	@Security	BearerAuth
//	@Param		key		path		string			true	"Setting key"
//	@Param		request	body		ValueRequest	true	"Value"
//	@Success	200		{object}	services.Setting
//	@Failure	422		{object}	server.Problem
//	@Router		/settings/admin/{key} [put]
func (h *Handler) handleSet(w http.ResponseWriter, r *http.Request) {
	key := r.PathValue("key")
	if !keyPattern.MatchString(key) {
		server.ValidationFailed(w, "key", "Kunci pengaturan hanya boleh huruf kecil, angka dan garis bawah.", r.URL.Path)
		return
	}
	var req ValueRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		server.BadRequest(w, "Format permintaan tidak valid.", r.URL.Path)
		return
	}
	if err := h.settings.Set(r.Context(), key, req.Value); err != nil {
		server.WriteError(w, r, h.logger, err)
		return
	}
	s, err := h.settings.Get(r.Context(), key)
	if err != nil {
		server.WriteError(w, r, h.logger, err)
		return
	}
	h.logger.Info("setting saved", zap.String("key", key))
	writeJSON(w, http.StatusOK, s)
}

// handleDelete removes a setting.
//
//	@Summary	Delete setting
//	@Tags		settings
//	@Security	BearerAuth
//	@Param		key	path	string	true	"Setting key"
//	@Success	204
//	@Failure	404	{object}	server.Problem
//	@Router		/settings/admin/{key} [delete]
func (h *Handler) handleDelete(w http.ResponseWriter, r *http.Request) {
	if err := h.settings.Delete(r.Context(), r.PathValue("key")); err != nil {
		if errors.Is(err, services.ErrNotFound) {
			server.NotFound(w, "Pengaturan tidak ditemukan.", r.URL.Path)
			return
		}
		server.WriteError(w, r, h.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
