// Package account exposes registration, sign-in, session and second-factor
// endpoints under /api/v1/auth, plus staff role management for admins.
package account

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/ngipak/infodesa/internal/auth"
	"github.com/ngipak/infodesa/internal/plugin"
	"github.com/ngipak/infodesa/internal/services"
	"github.com/ngipak/infodesa/pkg/models"
)

// Compile-time interface guards.
var (
	_ plugin.Plugin       = (*Plugin)(nil)
	_ plugin.HTTPProvider = (*Plugin)(nil)
)

// Plugin implements the account module.
type Plugin struct {
	auth   *auth.Service
	users  services.UserRepository
	logger *zap.Logger
}

// New creates a new account plugin instance.
func New() *Plugin {
	return &Plugin{}
}

func (p *Plugin) Info() plugin.PluginInfo {
	return plugin.PluginInfo{
		Name:        "auth",
		Version:     "1.0.0",
		Description: "Local accounts, sessions and staff roles",
		Required:    true,
		APIVersion:  plugin.APIVersionCurrent,
	}
}

func (p *Plugin) Init(ctx context.Context, deps plugin.Dependencies) error {
	if deps.Auth == nil {
		return errors.New("auth service is required")
	}
	users, err := services.NewUserRepository(ctx, deps.Store)
	if err != nil {
		return err
	}
	p.auth = deps.Auth
	p.users = users
	p.logger = deps.Logger
	p.logger.Info("account module initialized")
	return nil
}

func (p *Plugin) Start(_ context.Context) error { return nil }
func (p *Plugin) Stop(_ context.Context) error  { return nil }

func (p *Plugin) Routes() []plugin.Route {
	return []plugin.Route{
		{Method: "POST", Path: "/register", Handler: p.handleRegister, RateLimited: true},
		{Method: "POST", Path: "/login", Handler: p.handleLogin, RateLimited: true},
		{Method: "GET", Path: "/me", Handler: p.handleMe, SignedIn: true},
		{Method: "POST", Path: "/logout", Handler: p.handleLogout, SignedIn: true},

		{Method: "POST", Path: "/totp/setup", Handler: p.handleTOTPSetup, Role: models.RoleViewer},
		{Method: "POST", Path: "/totp/confirm", Handler: p.handleTOTPConfirm, Role: models.RoleViewer},
		{Method: "POST", Path: "/totp/disable", Handler: p.handleTOTPDisable, Role: models.RoleViewer},

		{Method: "GET", Path: "/users", Handler: p.handleListUsers, Role: models.RoleAdmin},
		{Method: "PATCH", Path: "/users/{id}/role", Handler: p.handleSetRole, Role: models.RoleAdmin},
	}
}
