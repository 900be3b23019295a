// Package dashboard serves the staff overview: record counts per module and
// a feed of recent content changes collected from the event bus.
package dashboard

import (
	"context"
	"encoding/json"
	"net/http"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/ngipak/infodesa/internal/event"
	"github.com/ngipak/infodesa/internal/plugin"
	"github.com/ngipak/infodesa/internal/server"
	"github.com/ngipak/infodesa/internal/services"
	"github.com/ngipak/infodesa/pkg/models"
)

// Compile-time interface guards.
var (
	_ plugin.Plugin          = (*Plugin)(nil)
	_ plugin.HTTPProvider    = (*Plugin)(nil)
	_ plugin.EventSubscriber = (*Plugin)(nil)
)

// ActivitySize is the number of events kept in the feed.
const ActivitySize = 20

type counter interface {
	Count(ctx context.Context) (services.Counts, error)
}

type laporanCounter interface {
	CountByStatus(ctx context.Context) (map[models.LaporanStatus]int, error)
}

// Summary is the dashboard overview.
type Summary struct {
	Umkm       services.Counts              `json:"umkm"`
	Produk     services.Counts              `json:"produk"`
	Isu        services.Counts              `json:"isu"`
	Statistik  services.Counts              `json:"statistik"`
	Jadwal     services.Counts              `json:"jadwal"`
	Kader      services.Counts              `json:"kader"`
	Laporan    map[models.LaporanStatus]int `json:"laporan"`
	LaporanNew int                          `json:"laporan_baru"`
}

// Plugin implements the dashboard module.
type Plugin struct {
	umkm, produk, isu, stat, jadwal, kader counter
	laporan                                laporanCounter
	feed                                   *Feed
	logger                                 *zap.Logger
}

// New creates a new dashboard plugin instance.
func New() *Plugin {
	return &Plugin{feed: NewFeed(ActivitySize)}
}

func (p *Plugin) Info() plugin.PluginInfo {
	return plugin.PluginInfo{
		Name:        "dashboard",
		Version:     "1.0.0",
		Description: "Staff overview and recent activity",
		APIVersion:  plugin.APIVersionCurrent,
	}
}

func (p *Plugin) Init(ctx context.Context, deps plugin.Dependencies) error {
	var err error
	if p.umkm, err = services.NewUmkmRepository(ctx, deps.Store); err != nil {
		return err
	}
	if p.produk, err = services.NewProdukRepository(ctx, deps.Store); err != nil {
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
	if p.laporan, err = services.NewLaporanRepository(ctx, deps.Store); err != nil {
		return err
	}
	p.logger = deps.Logger
	return nil
}

func (p *Plugin) Start(_ context.Context) error { return nil }
func (p *Plugin) Stop(_ context.Context) error  { return nil }

func (p *Plugin) Subscriptions() []plugin.Subscription {
	return []plugin.Subscription{{Handler: p.record}}
}

func (p *Plugin) record(_ context.Context, e event.Event) {
	p.feed.Add(e)
}

func (p *Plugin) Routes() []plugin.Route {
	return []plugin.Route{
		{Method: "GET", Path: "/summary", Handler: p.handleSummary, Role: models.RoleViewer},
		{Method: "GET", Path: "/activity", Handler: p.handleActivity, Role: models.RoleViewer},
	}
}

// Summarize counts every module's records concurrently.
func (p *Plugin) Summarize(ctx context.Context) (*Summary, error) {
	var s Summary
	g, ctx := errgroup.WithContext(ctx)
	for dst, src := range map[*services.Counts]counter{
		&s.Umkm:      p.umkm,
		&s.Produk:    p.produk,
		&s.Isu:       p.isu,
		&s.Statistik: p.stat,
		&s.Jadwal:    p.jadwal,
		&s.Kader:     p.kader,
	} {
		g.Go(func() error {
			c, err := src.Count(ctx)
			*dst = c
			return err
		})
	}
	g.Go(func() error {
		counts, err := p.laporan.CountByStatus(ctx)
		s.Laporan = counts
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	s.LaporanNew = s.Laporan[models.LaporanBaru]
	return &s, nil
}

// handleSummary returns record counts.
//
//	@Summary	Dashboard summary
//	@Tags		dashboard
//	@Produce	json
//	@Security	BearerAuth
//	@Success	200	{object}	Summary
//	@Router		/dashboard/summary [get]
func (p *Plugin) handleSummary(w http.ResponseWriter, r *http.Request) {
	s, err := p.Summarize(r.Context())
	if err != nil {
		server.WriteError(w, r, p.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, s)
}

// handleActivity returns recent content changes, newest first.
//
//	@Summary	Recent activity
//	@Tags		dashboard
//	@Produce	json
//	@Security	BearerAuth
//	@Success	200	{array}	event.Event
//	@Router		/dashboard/activity [get]
func (p *Plugin) handleActivity(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, p.feed.Recent())
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
