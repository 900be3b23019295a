// Package server is the HTTP front of InfoDesa. It mounts the routes of
// every enabled plugin under /api/v1/{plugin}, enforces route guards and
// wraps everything in logging, metrics and CORS middleware.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/handlers"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger/v2"
	"go.uber.org/zap"

	"github.com/ngipak/infodesa/internal/auth"
	"github.com/ngipak/infodesa/internal/plugin"
	"github.com/ngipak/infodesa/internal/registry"
	"github.com/ngipak/infodesa/internal/services"
	"github.com/ngipak/infodesa/internal/version"
	"github.com/ngipak/infodesa/pkg/models"
)

// Options configures a Server. Zero values select sensible defaults.
type Options struct {
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	CORSOrigins  []string

	// RatePerMinute and RateBurst bound rate-limited routes per client IP.
	RatePerMinute int
	RateBurst     int

	// Files serves stored objects below FilesPrefix.
	Files       http.Handler
	FilesPrefix string
}

// Server is the InfoDesa HTTP server.
type Server struct {
	httpServer *http.Server
	registry   *registry.Registry
	auth       *auth.Service
	logger     *zap.Logger
	mux        *http.ServeMux
	metrics    *metrics
	limiter    *ipLimiter
}

// New creates a Server. authSvc may be nil, in which case every protected
// route answers 401.
func New(addr string, reg *registry.Registry, authSvc *auth.Service, logger *zap.Logger, opts Options) *Server {
	if opts.ReadTimeout <= 0 {
		opts.ReadTimeout = 15 * time.Second
	}
	if opts.WriteTimeout <= 0 {
		opts.WriteTimeout = 30 * time.Second
	}

	s := &Server{
		registry: reg,
		auth:     authSvc,
		logger:   logger,
		mux:      http.NewServeMux(),
		metrics:  newMetrics(),
		limiter:  newIPLimiter(opts.RatePerMinute, opts.RateBurst),
	}

	s.registerCoreRoutes(opts)
	s.mountPluginRoutes()

	var h http.Handler = s.mux
	if authSvc != nil {
		h = authSvc.Middleware(h)
	}
	if len(opts.CORSOrigins) > 0 {
		h = handlers.CORS(
			handlers.AllowedOrigins(opts.CORSOrigins),
			handlers.AllowedMethods([]string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}),
			handlers.AllowedHeaders([]string{"Content-Type", "Authorization", "X-Requested-With"}),
		)(h)
	}
	h = s.instrument(h)

	s.httpServer = &http.Server{
		Addr:         addr,
		Handler:      h,
		ReadTimeout:  opts.ReadTimeout,
		WriteTimeout: opts.WriteTimeout,
		IdleTimeout:  60 * time.Second,
	}
	return s
}

// Handler returns the fully wrapped root handler.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

// handle registers h and labels its requests with pattern for metrics.
func (s *Server) handle(pattern string, h http.Handler) {
	s.mux.Handle(pattern, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		setRoute(w, pattern)
		h.ServeHTTP(w, r)
	}))
}

// registerCoreRoutes sets up routes that are always available.
func (s *Server) registerCoreRoutes(opts Options) {
	s.handle("GET /api/v1/health", http.HandlerFunc(s.handleHealth))
	s.handle("GET /api/v1/plugins", http.HandlerFunc(s.handlePlugins))
	s.handle("GET /metrics", promhttp.HandlerFor(s.metrics.registry, promhttp.HandlerOpts{}))
	s.handle("GET /swagger/", httpSwagger.Handler(httpSwagger.URL("/swagger/doc.json")))

	if opts.Files != nil {
		prefix := strings.TrimRight(opts.FilesPrefix, "/")
		if prefix == "" {
			prefix = "/files"
		}
		s.handle("GET "+prefix+"/", http.StripPrefix(prefix, opts.Files))
	}
}

// mountPluginRoutes registers all plugin routes under /api/v1/{plugin}/.
func (s *Server) mountPluginRoutes() {
	for pluginName, routes := range s.registry.AllRoutes() {
		for _, route := range routes {
			pattern := fmt.Sprintf("%s /api/v1/%s%s", route.Method, pluginName, route.Path)
			s.handle(pattern, s.guard(route))
			s.logger.Debug("mounted route",
				zap.String("plugin", pluginName),
				zap.String("pattern", pattern),
				zap.Bool("protected", route.Protected()),
			)
		}
	}
}

// guard enforces the sign-in, role and rate-limit requirements of a route.
// The role is re-read from the profile so a demoted account loses access
// before its token expires.
func (s *Server) guard(route plugin.Route) http.Handler {
	var h http.Handler = route.Handler
	if route.Protected() {
		next := h
		h = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			p, ok := auth.FromContext(r.Context())
			if !ok || s.auth == nil {
				Unauthorized(w, "Silakan login terlebih dahulu.", r.URL.Path)
				return
			}
			if route.Role != models.RoleNone {
				u, err := s.auth.User(r.Context(), p)
				if errors.Is(err, services.ErrNotFound) {
					Unauthorized(w, "Akun tidak ditemukan. Silakan login kembali.", r.URL.Path)
					return
				}
				if err != nil {
					WriteError(w, r, s.logger, err)
					return
				}
				p.Role = u.Role
				if !p.Can(route.Role) {
					Forbidden(w, "Akses ditolak. Akun ini tidak memiliki peran yang dibutuhkan.", r.URL.Path)
					return
				}
				r = r.WithContext(auth.WithPrincipal(r.Context(), p))
			}
			next.ServeHTTP(w, r)
		})
	}
	if route.RateLimited {
		h = s.limiter.wrap(h)
	}
	return h
}

// Start begins serving HTTP requests.
func (s *Server) Start() error {
	s.logger.Info("starting HTTP server", zap.String("addr", s.httpServer.Addr))
	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("HTTP server error: %w", err)
	}
	return nil
}

// Shutdown gracefully shuts down the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down HTTP server")
	return s.httpServer.Shutdown(ctx)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("X-InfoDesa-Version", version.Short())
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// HealthResponse is the body of GET /api/v1/health.
type HealthResponse struct {
	Status  string                         `json:"status"`
	Service string                         `json:"service"`
	Version map[string]string              `json:"version"`
	Plugins map[string]plugin.HealthStatus `json:"plugins,omitempty"`
}

// handleHealth reports the server and plugin health.
//
//	@Summary		Health check
//	@Description	Returns "degraded" when any plugin reports a degraded status.
//	@Tags			system
//	@Produce		json
//	@Success		200	{object}	HealthResponse
//	@Router			/health [get]
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	resp := HealthResponse{
		Status:  "ok",
		Service: version.Name,
		Version: version.Map(),
		Plugins: s.registry.Health(r.Context()),
	}
	for _, h := range resp.Plugins {
		if h.Status != "ok" {
			resp.Status = "degraded"
		}
	}
	writeJSON(w, http.StatusOK, resp)
}

// PluginResponse describes one registered plugin.
type PluginResponse struct {
	Name           string `json:"name"`
	Version        string `json:"version"`
	Description    string `json:"description"`
	Enabled        bool   `json:"enabled"`
	DisabledReason string `json:"disabled_reason,omitempty"`
}

// handlePlugins returns the list of registered plugins.
//
//	@Summary	List plugins
//	@Tags		system
//	@Produce	json
//	@Success	200	{array}	PluginResponse
//	@Router		/plugins [get]
func (s *Server) handlePlugins(w http.ResponseWriter, _ *http.Request) {
	plugins := s.registry.All()
	info := make([]PluginResponse, 0, len(plugins))
	for _, p := range plugins {
		pi := p.Info()
		info = append(info, PluginResponse{
			Name:           pi.Name,
			Version:        pi.Version,
			Description:    pi.Description,
			Enabled:        !s.registry.IsDisabled(pi.Name),
			DisabledReason: s.registry.DisabledReason(pi.Name),
		})
	}
	writeJSON(w, http.StatusOK, info)
}
