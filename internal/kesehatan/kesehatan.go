// Package kesehatan serves the public health page (issues, monthly
// statistics with trends, schedules, volunteers, leaflet and a BMI
// calculator) and the admin API for its content.
package kesehatan

import (
	"context"

	"go.uber.org/zap"

	"github.com/ngipak/infodesa/internal/auth"
	"github.com/ngipak/infodesa/internal/event"
	"github.com/ngipak/infodesa/internal/plugin"
	"github.com/ngipak/infodesa/internal/services"
	"github.com/ngipak/infodesa/internal/storage"
	"github.com/ngipak/infodesa/pkg/models"
)

// Compile-time interface guards.
var (
	_ plugin.Plugin        = (*Plugin)(nil)
	_ plugin.HTTPProvider  = (*Plugin)(nil)
	_ plugin.HealthChecker = (*Plugin)(nil)
)

// Plugin implements the health information module.
type Plugin struct {
	dusun   services.DusunRepository
	isu     services.IsuRepository
	stat    services.StatRepository
	jadwal  *services.SQLJadwalRepository
	kader   services.KaderRepository
	meta    services.MetaRepository
	storage *storage.Storage
	bus     event.Publisher
	logger  *zap.Logger
}

// New creates a new health plugin instance.
func New() *Plugin {
	return &Plugin{}
}

func (p *Plugin) Info() plugin.PluginInfo {
	return plugin.PluginInfo{
		Name:        "kesehatan",
		Version:     "1.0.0",
		Description: "Public health information and posyandu schedules",
		APIVersion:  plugin.APIVersionCurrent,
	}
}

func (p *Plugin) Init(ctx context.Context, deps plugin.Dependencies) error {
	var err error
	if p.dusun, err = services.NewDusunRepository(ctx, deps.Store); err != nil {
		return err
	}
	if p.isu, err = services.NewIsuRepository(ctx, deps.Store); err != nil {
		return err
	}
	if p.stat, err = services.NewStatRepository(ctx, deps.Store); err != nil {
		return err
	}
	if p.jadwal, err = services.NewJadwalRepository(ctx, deps.Store); err != nil {
		return err
	}
	if p.kader, err = services.NewKaderRepository(ctx, deps.Store); err != nil {
		return err
	}
	if p.meta, err = services.NewMetaRepository(ctx, deps.Store); err != nil {
		return err
	}
	p.storage = deps.Storage
	if deps.Bus != nil {
		p.bus = deps.Bus
	}
	p.logger = deps.Logger
	if !p.jadwal.HasJam() {
		p.logger.Warn("kesehatan_jadwal has no jam column; schedule times are not stored")
	}
	p.logger.Info("kesehatan module initialized")
	return nil
}

func (p *Plugin) Start(_ context.Context) error { return nil }
func (p *Plugin) Stop(_ context.Context) error  { return nil }

// Health reports degraded when schedule times cannot be stored.
func (p *Plugin) Health(_ context.Context) plugin.HealthStatus {
	if p.jadwal != nil && !p.jadwal.HasJam() {
		return plugin.HealthStatus{Status: "degraded", Details: map[string]string{"jadwal_jam": "missing"}}
	}
	return plugin.HealthStatus{Status: "ok"}
}

func (p *Plugin) sources() Sources {
	src := Sources{
		Dusun:     p.dusun,
		Jadwal:    p.jadwal,
		Kader:     p.kader,
		Isu:       p.isu,
		Statistik: p.stat,
		Meta:      p.meta,
	}
	if p.storage != nil {
		src.Leaflet = p.storage
	}
	return src
}

func (p *Plugin) Routes() []plugin.Route {
	viewer, editor := models.RoleViewer, models.RoleEditor
	return []plugin.Route{
		{Method: "GET", Path: "/page", Handler: p.handlePage},
		{Method: "GET", Path: "/imt", Handler: p.handleIMT},

		{Method: "GET", Path: "/admin/isu", Handler: p.handleListIsu, Role: viewer},
		{Method: "POST", Path: "/admin/isu", Handler: p.handleCreateIsu, Role: editor},
		{Method: "GET", Path: "/admin/isu/{id}", Handler: p.handleGetIsu, Role: viewer},
		{Method: "PUT", Path: "/admin/isu/{id}", Handler: p.handleUpdateIsu, Role: editor},
		{Method: "DELETE", Path: "/admin/isu/{id}", Handler: p.handleDeleteIsu, Role: editor},
		{Method: "PATCH", Path: "/admin/isu/{id}/published", Handler: p.handlePublishIsu, Role: editor},

		{Method: "GET", Path: "/admin/statistik", Handler: p.handleListStat, Role: viewer},
		{Method: "PUT", Path: "/admin/statistik/{bulan}", Handler: p.handleSaveStat, Role: editor},
		{Method: "DELETE", Path: "/admin/statistik/{bulan}", Handler: p.handleDeleteStat, Role: editor},
		{Method: "PATCH", Path: "/admin/statistik/{bulan}/published", Handler: p.handlePublishStat, Role: editor},

		{Method: "GET", Path: "/admin/jadwal", Handler: p.handleListJadwal, Role: viewer},
		{Method: "POST", Path: "/admin/jadwal", Handler: p.handleCreateJadwal, Role: editor},
		{Method: "GET", Path: "/admin/jadwal/{id}", Handler: p.handleGetJadwal, Role: viewer},
		{Method: "PUT", Path: "/admin/jadwal/{id}", Handler: p.handleUpdateJadwal, Role: editor},
		{Method: "DELETE", Path: "/admin/jadwal/{id}", Handler: p.handleDeleteJadwal, Role: editor},
		{Method: "PATCH", Path: "/admin/jadwal/{id}/published", Handler: p.handlePublishJadwal, Role: editor},

		{Method: "GET", Path: "/admin/kader", Handler: p.handleListKader, Role: viewer},
		{Method: "POST", Path: "/admin/kader", Handler: p.handleCreateKader, Role: editor},
		{Method: "GET", Path: "/admin/kader/{id}", Handler: p.handleGetKader, Role: viewer},
		{Method: "PUT", Path: "/admin/kader/{id}", Handler: p.handleUpdateKader, Role: editor},
		{Method: "DELETE", Path: "/admin/kader/{id}", Handler: p.handleDeleteKader, Role: editor},
		{Method: "PATCH", Path: "/admin/kader/{id}/published", Handler: p.handlePublishKader, Role: editor},

		{Method: "GET", Path: "/admin/meta", Handler: p.handleGetMeta, Role: viewer},
		{Method: "PUT", Path: "/admin/meta", Handler: p.handleSaveMeta, Role: editor},
		{Method: "POST", Path: "/admin/leaflet", Handler: p.handleUploadLeaflet, Role: editor},
	}
}

// publish announces a content change. id is "<section>/<key>".
func (p *Plugin) publish(ctx context.Context, id, summary string) {
	if p.bus == nil {
		return
	}
	change := event.Change{ID: id, Summary: summary}
	if pr, ok := auth.FromContext(ctx); ok {
		change.ActorID = pr.UserID
	}
	p.bus.PublishAsync(ctx, event.Event{
		Topic:   event.TopicKesehatanChanged,
		Source:  "kesehatan",
		Payload: change,
	})
}
