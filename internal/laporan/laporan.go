// Package laporan accepts reports from signed-in citizens and exposes the
// review inbox to staff.
package laporan

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/ngipak/infodesa/internal/auth"
	"github.com/ngipak/infodesa/internal/event"
	"github.com/ngipak/infodesa/internal/plugin"
	"github.com/ngipak/infodesa/internal/server"
	"github.com/ngipak/infodesa/internal/services"
	"github.com/ngipak/infodesa/pkg/models"
)

// Compile-time interface guards.
var (
	_ plugin.Plugin        = (*Plugin)(nil)
	_ plugin.HTTPProvider  = (*Plugin)(nil)
	_ plugin.HealthChecker = (*Plugin)(nil)
)

const notFoundMsg = "Laporan tidak ditemukan."

// Plugin implements the citizen report module.
type Plugin struct {
	repo   services.LaporanRepository
	bus    event.Publisher
	logger *zap.Logger
}

// New creates a new laporan plugin instance.
func New() *Plugin {
	return &Plugin{}
}

func (p *Plugin) Info() plugin.PluginInfo {
	return plugin.PluginInfo{
		Name:        "laporan",
		Version:     "1.0.0",
		Description: "Citizen reports and the staff review inbox",
		APIVersion:  plugin.APIVersionCurrent,
	}
}

func (p *Plugin) Init(ctx context.Context, deps plugin.Dependencies) error {
	repo, err := services.NewLaporanRepository(ctx, deps.Store)
	if err != nil {
		return err
	}
	p.repo = repo
	if deps.Bus != nil {
		p.bus = deps.Bus
	}
	p.logger = deps.Logger
	return nil
}

func (p *Plugin) Start(_ context.Context) error { return nil }
func (p *Plugin) Stop(_ context.Context) error  { return nil }

// Health reports the number of reports still waiting for review.
func (p *Plugin) Health(ctx context.Context) plugin.HealthStatus {
	counts, err := p.repo.CountByStatus(ctx)
	if err != nil {
		return plugin.HealthStatus{Status: "degraded", Details: map[string]string{"error": err.Error()}}
	}
	return plugin.HealthStatus{
		Status:  "ok",
		Details: map[string]string{"baru": strconv.Itoa(counts[models.LaporanBaru])},
	}
}

func (p *Plugin) Routes() []plugin.Route {
	return []plugin.Route{
		{Method: "POST", Path: "", Handler: p.handleCreate, SignedIn: true, RateLimited: true},
		{Method: "GET", Path: "/mine", Handler: p.handleMine, SignedIn: true},
		{Method: "GET", Path: "/admin", Handler: p.handleAdminList, Role: models.RoleViewer},
		{Method: "GET", Path: "/admin/{id}", Handler: p.handleAdminGet, Role: models.RoleViewer},
		{Method: "PATCH", Path: "/admin/{id}", Handler: p.handleAdminUpdate, Role: models.RoleEditor},
	}
}

// CreateRequest is the citizen report form.
type CreateRequest struct {
	Jenis      string `json:"jenis" example:"koreksi"`
	TargetType string `json:"target_type,omitempty" example:"umkm"`
	TargetID   string `json:"target_id,omitempty" example:"u-ngipak-keripik"`
	Judul      string `json:"judul" example:"Nomor WA salah"`
	Pesan      string `json:"pesan"`
}

// UpdateRequest is the staff review form.
type UpdateRequest struct {
	Status       models.LaporanStatus `json:"status" example:"diproses"`
	CatatanAdmin string               `json:"catatan_admin"`
}

// handleCreate submits a report as the signed-in user.
//
//	@Summary	Submit report
//	@Tags		laporan
//	@Accept		json
//	@Produce	json
//	@Security	BearerAuth
//	@Param		request	body		CreateRequest	true	"Report"
//	@Success	201		{object}	models.Laporan
//	@Failure	401		{object}	server.Problem
//	@Failure	422		{object}	server.Problem
//	@Failure	429		{object}	server.Problem
//	@Router		/laporan [post]
func (p *Plugin) handleCreate(w http.ResponseWriter, r *http.Request) {
	var req CreateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		server.BadRequest(w, "Format permintaan tidak valid.", r.URL.Path)
		return
	}
	l := models.Laporan{
		Jenis:      req.Jenis,
		TargetType: req.TargetType,
		TargetID:   req.TargetID,
		Judul:      req.Judul,
		Pesan:      req.Pesan,
	}
	if pr, ok := auth.FromContext(r.Context()); ok {
		l.UserID = pr.UserID
	}
	if err := p.repo.Create(r.Context(), &l); err != nil {
		server.WriteError(w, r, p.logger, err)
		return
	}
	p.publish(r.Context(), event.TopicLaporanCreated, l.ID, l.Judul)
	writeJSON(w, http.StatusCreated, l)
}

// handleMine lists the caller's own reports.
//
//	@Summary	My reports
//	@Tags		laporan
//	@Produce	json
//	@Security	BearerAuth
//	@Param		limit	query		int	false	"Page size"
//	@Param		offset	query		int	false	"Offset"
//	@Success	200		{object}	services.ListResult[models.Laporan]
//	@Failure	401		{object}	server.Problem
//	@Router		/laporan/mine [get]
func (p *Plugin) handleMine(w http.ResponseWriter, r *http.Request) {
	pr, _ := auth.FromContext(r.Context())
	q := services.LaporanQuery{UserID: pr.UserID, ListOptions: listOptions(r)}
	if q.UserID == "" {
		server.Unauthorized(w, "Silakan login terlebih dahulu.", r.URL.Path)
		return
	}
	p.list(w, r, q)
}

// handleAdminList returns the review inbox.
//
//	@Summary	Report inbox
//	@Tags		laporan-admin
//	@Produce	json
//	@Security	BearerAuth
//	@Param		status	query		string	false	"baru, diproses, selesai or ditolak"
//	@Param		jenis	query		string	false	"Report kind"
//	@Param		limit	query		int		false	"Page size"
//	@Param		offset	query		int		false	"Offset"
//	@Success	200		{object}	services.ListResult[models.Laporan]
//	@Failure	422		{object}	server.Problem
//	@Router		/laporan/admin [get]
func (p *Plugin) handleAdminList(w http.ResponseWriter, r *http.Request) {
	status := models.LaporanStatus(r.URL.Query().Get("status"))
	if status != "" && !status.Valid() {
		server.ValidationFailed(w, "status", "Status laporan tidak valid.", r.URL.Path)
		return
	}
	p.list(w, r, services.LaporanQuery{
		Status:      status,
		Jenis:       r.URL.Query().Get("jenis"),
		ListOptions: listOptions(r),
	})
}

func (p *Plugin) list(w http.ResponseWriter, r *http.Request, q services.LaporanQuery) {
	res, err := p.repo.List(r.Context(), q)
	if err != nil {
		server.WriteError(w, r, p.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// handleAdminGet returns one report.
//
//	@Summary	Get report
//	@Tags		laporan-admin
//	@Produce	json
//	@Security	BearerAuth
//	@Param		id	path		string	true	"Report ID"
//	@Success	200	{object}	models.Laporan
//	@Failure	404	{object}	server.Problem
//	@Router		/laporan/admin/{id} [get]
func (p *Plugin) handleAdminGet(w http.ResponseWriter, r *http.Request) {
	l, err := p.repo.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		p.writeErr(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, l)
}

// handleAdminUpdate moves a report through review.
//
//	@Summary	Review report
//	@Tags		laporan-admin
//	@Accept		json
//	@Produce	json
//	@Security	BearerAuth
//	@Param		id		path		string			true	"Report ID"
//	@Param		request	body		UpdateRequest	true	"Review"
//	@Success	200		{object}	models.Laporan
//	@Failure	404		{object}	server.Problem
//	@Failure	422		{object}	server.Problem
//	@Router		/laporan/admin/{id} [patch]
func (p *Plugin) handleAdminUpdate(w http.ResponseWriter, r *http.Request) {
	var req UpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		server.BadRequest(w, "Format permintaan tidak valid.", r.URL.Path)
		return
	}
	l, err := p.repo.UpdateStatus(r.Context(), r.PathValue("id"), req.Status, req.CatatanAdmin)
	if err != nil {
		p.writeErr(w, r, err)
		return
	}
	p.publish(r.Context(), event.TopicLaporanUpdated, l.ID, string(l.Status))
	writeJSON(w, http.StatusOK, l)
}

func (p *Plugin) publish(ctx context.Context, topic, id, summary string) {
	if p.bus == nil {
		return
	}
	change := event.Change{ID: id, Summary: summary}
	if pr, ok := auth.FromContext(ctx); ok {
		change.ActorID = pr.UserID
	}
	p.bus.PublishAsync(ctx, event.Event{
		Topic:     topic,
		Source:    "laporan",
		Timestamp: time.Now().UTC(),
		Payload:   change,
	})
}

func (p *Plugin) writeErr(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, services.ErrNotFound) {
		server.NotFound(w, notFoundMsg, r.URL.Path)
		return
	}
	server.WriteError(w, r, p.logger, err)
}

func listOptions(r *http.Request) services.ListOptions {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))
	return services.ListOptions{Limit: limit, Offset: offset}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
