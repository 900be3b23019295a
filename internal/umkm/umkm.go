// Package umkm serves the public UMKM directory (catalog, vendor detail
// with WhatsApp ordering) and the admin API for vendors and their
// products.
package umkm

import (
	"context"
	"time"

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
	_ plugin.Plugin       = (*Plugin)(nil)
	_ plugin.HTTPProvider = (*Plugin)(nil)
)

// wib is Western Indonesia Time, the zone opening hours are written in.
var wib = time.FixedZone("WIB", 7*60*60)

// Plugin implements the UMKM directory module.
type Plugin struct {
	dusun   services.DusunRepository
	umkm    services.UmkmRepository
	produk  services.ProdukRepository
	storage *storage.Storage
	bus     event.Publisher
	logger  *zap.Logger
	now     func() time.Time
}

// New creates a new UMKM plugin instance.
func New() *Plugin {
	return &Plugin{now: time.Now}
}

func (p *Plugin) Info() plugin.PluginInfo {
	return plugin.PluginInfo{
		Name:        "umkm",
		Version:     "1.0.0",
		Description: "UMKM directory, product catalog and WhatsApp ordering",
		APIVersion:  plugin.APIVersionCurrent,
	}
}

func (p *Plugin) Init(ctx context.Context, deps plugin.Dependencies) error {
	dusun, err := services.NewDusunRepository(ctx, deps.Store)
	if err != nil {
		return err
	}
	umkm, err := services.NewUmkmRepository(ctx, deps.Store)
	if err != nil {
		return err
	}
	produk, err := services.NewProdukRepository(ctx, deps.Store)
	if err != nil {
		return err
	}
	p.dusun, p.umkm, p.produk = dusun, umkm, produk
	p.storage = deps.Storage
	if deps.Bus != nil {
		p.bus = deps.Bus
	}
	p.logger = deps.Logger
	p.logger.Info("umkm module initialized")
	return nil
}

func (p *Plugin) Start(_ context.Context) error { return nil }
func (p *Plugin) Stop(_ context.Context) error  { return nil }

// SetClock overrides the time source used for shop status. Tests only.
func (p *Plugin) SetClock(now func() time.Time) { p.now = now }

func (p *Plugin) Routes() []plugin.Route {
	viewer, editor := models.RoleViewer, models.RoleEditor
	return []plugin.Route{
		{Method: "GET", Path: "/dusun", Handler: p.handleListDusun},
		{Method: "GET", Path: "/catalog", Handler: p.handleCatalog},
		{Method: "GET", Path: "/vendors/{id}", Handler: p.handleVendorDetail},

		{Method: "GET", Path: "/admin/vendors", Handler: p.handleAdminListVendors, Role: viewer},
		{Method: "POST", Path: "/admin/vendors", Handler: p.handleCreateVendor, Role: editor},
		{Method: "GET", Path: "/admin/vendors/{id}", Handler: p.handleGetVendor, Role: viewer},
		{Method: "PUT", Path: "/admin/vendors/{id}", Handler: p.handleUpdateVendor, Role: editor},
		{Method: "DELETE", Path: "/admin/vendors/{id}", Handler: p.handleDeleteVendor, Role: editor},
		{Method: "PATCH", Path: "/admin/vendors/{id}/published", Handler: p.handlePublishVendor, Role: editor},
		{Method: "POST", Path: "/admin/vendors/{id}/foto", Handler: p.handleUploadFoto, Role: editor},

		{Method: "GET", Path: "/admin/vendors/{id}/produk", Handler: p.handleListVendorProduk, Role: viewer},
		{Method: "POST", Path: "/admin/vendors/{id}/produk", Handler: p.handleCreateProduk, Role: editor},
		{Method: "PUT", Path: "/admin/produk/{id}", Handler: p.handleUpdateProduk, Role: editor},
		{Method: "DELETE", Path: "/admin/produk/{id}", Handler: p.handleDeleteProduk, Role: editor},
		{Method: "PATCH", Path: "/admin/produk/{id}/published", Handler: p.handlePublishProduk, Role: editor},
	}
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
		Source:    "umkm",
		Timestamp: p.now().UTC(),
		Payload:   change,
	})
}
