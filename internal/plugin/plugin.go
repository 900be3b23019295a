// Package plugin defines the contract between the server and its feature
// modules. Every module (auth, umkm, kesehatan, laporan, dashboard,
// settings) is a Plugin registered with the registry at startup.
package plugin

import (
	"context"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/ngipak/infodesa/internal/auth"
	"github.com/ngipak/infodesa/internal/event"
	"github.com/ngipak/infodesa/internal/storage"
	"github.com/ngipak/infodesa/internal/store"
	"github.com/ngipak/infodesa/pkg/models"
)

// Supported plugin API versions.
const (
	APIVersionMin     = 1
	APIVersionCurrent = 1
)

// PluginInfo describes a plugin to the registry.
type PluginInfo struct {
	Name         string   `json:"name"`
	Version      string   `json:"version"`
	Description  string   `json:"description"`
	Dependencies []string `json:"dependencies,omitempty"`

	// Required plugins abort startup when they cannot be initialized.
	// Optional ones are disabled instead.
	Required   bool `json:"required"`
	APIVersion int  `json:"api_version"`
}

// Plugin is implemented by every feature module.
type Plugin interface {
	Info() PluginInfo
	Init(ctx context.Context, deps Dependencies) error
	Start(ctx context.Context) error
	Stop(ctx context.Context) error
}

// Config is the read-only configuration view handed to a plugin. It is
// scoped to the plugin's "plugins.<name>" section.
type Config interface {
	GetString(key string) string
	GetInt(key string) int
	GetBool(key string) bool
	GetDuration(key string) time.Duration
	GetStringSlice(key string) []string
	IsSet(key string) bool
	Unmarshal(target any) error
}

// Dependencies are the shared services a plugin may use.
type Dependencies struct {
	Config  Config
	Logger  *zap.Logger
	Store   *store.Store
	Bus     *event.Bus
	Storage *storage.Storage
	Auth    *auth.Service
}

// Route represents an HTTP route exposed by a plugin. Paths are relative to
// /api/v1/{plugin}.
type Route struct {
	Method  string
	Path    string
	Handler http.HandlerFunc

	// Role is the minimum profile role required. Routes with RoleNone are
	// public unless SignedIn is set.
	Role     models.Role
	SignedIn bool

	// RateLimited routes share the per-client request budget.
	RateLimited bool
}

// Protected reports whether the route needs an authenticated caller.
func (r Route) Protected() bool {
	return r.SignedIn || r.Role != models.RoleNone
}
