// Package apitest runs plugins behind a real server for handler tests:
// in-memory store seeded with the demo fixtures, local storage in a temp
// dir, an event bus, and helpers to sign in and issue requests.
package apitest

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/ngipak/infodesa/internal/auth"
	"github.com/ngipak/infodesa/internal/config"
	"github.com/ngipak/infodesa/internal/event"
	"github.com/ngipak/infodesa/internal/plugin"
	"github.com/ngipak/infodesa/internal/registry"
	"github.com/ngipak/infodesa/internal/server"
	"github.com/ngipak/infodesa/internal/services"
	"github.com/ngipak/infodesa/internal/storage"
	"github.com/ngipak/infodesa/internal/store"
	"github.com/ngipak/infodesa/internal/testutil"
	"github.com/ngipak/infodesa/pkg/fixtures"
	"github.com/ngipak/infodesa/pkg/models"
)

// Password is used for every account created by Env.Token.
const Password = "rahasia123"

// Env is a running test server.
type Env struct {
	Handler  http.Handler
	Store    *store.Store
	Auth     *auth.Service
	Users    *services.SQLUserRepository
	Bus      *event.Bus
	Storage  *storage.Storage
	Registry *registry.Registry
}

// New seeds a fresh store and serves plugins. The first account created
// by Token becomes admin.
func New(t *testing.T, plugins ...plugin.Plugin) *Env {
	t.Helper()
	ctx := context.Background()
	logger := zap.NewNop()

	st := testutil.NewStore(t)
	data, err := fixtures.New().Data()
	if err != nil {
		t.Fatalf("fixtures: %v", err)
	}
	if _, err := services.Seed(ctx, st, data); err != nil {
		t.Fatalf("seed: %v", err)
	}

	users, err := services.NewUserRepository(ctx, st)
	if err != nil {
		t.Fatalf("NewUserRepository: %v", err)
	}
	authSvc, err := auth.NewService(users, auth.Options{Secret: "test-secret", TTL: time.Hour}, logger)
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}
	files, err := storage.New(storage.Options{Dir: t.TempDir(), PublicURL: "/files"}, logger)
	if err != nil {
		t.Fatalf("storage.New: %v", err)
	}
	bus := event.NewBus(logger)

	reg := registry.New(logger)
	for _, p := range plugins {
		if err := reg.Register(p); err != nil {
			t.Fatalf("Register: %v", err)
		}
	}
	if err := reg.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}
	cfg := config.New(nil)
	err = reg.InitAll(ctx, func(name string) plugin.Dependencies {
		return plugin.Dependencies{
			Config:  cfg.Plugin(name),
			Logger:  logger.Named(name),
			Store:   st,
			Bus:     bus,
			Storage: files,
			Auth:    authSvc,
		}
	})
	if err != nil {
		t.Fatalf("InitAll: %v", err)
	}
	t.Cleanup(func() { reg.StopAll(context.Background()); bus.Wait() })

	srv := server.New(":0", reg, authSvc, logger, server.Options{
		RatePerMinute: 600,
		RateBurst:     100,
		Files:         files.Handler(),
		FilesPrefix:   "/files",
	})
	return &Env{
		Handler:  srv.Handler(),
		Store:    st,
		Auth:     authSvc,
		Users:    users,
		Bus:      bus,
		Storage:  files,
		Registry: reg,
	}
}

// Token registers email, assigns role (RoleNone keeps the default) and
// returns a session token.
func (e *Env) Token(t *testing.T, email string, role models.Role) string {
	t.Helper()
	ctx := context.Background()
	u, err := e.Auth.Register(ctx, email, Password)
	if err != nil {
		t.Fatalf("Register %s: %v", email, err)
	}
	if role != u.Role {
		if err := e.Users.UpdateRole(ctx, u.ID, role); err != nil {
			t.Fatalf("UpdateRole %s: %v", email, err)
		}
	}
	sess, err := e.Auth.Login(ctx, email, Password, "")
	if err != nil {
		t.Fatalf("Login %s: %v", email, err)
	}
	return sess.Token
}

// Do sends a JSON request. body may be nil, an io.Reader sent as-is, or a
// value encoded as JSON.
func (e *Env) Do(method, path, token string, body any) *httptest.ResponseRecorder {
	var r io.Reader
	switch b := body.(type) {
	case nil:
	case io.Reader:
		r = b
	default:
		var buf bytes.Buffer
		_ = json.NewEncoder(&buf).Encode(b)
		r = &buf
	}
	req := httptest.NewRequest(method, path, r)
	if _, raw := body.(io.Reader); !raw && body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	e.Handler.ServeHTTP(w, req)
	return w
}

// DoRequest serves a prepared request, adding the bearer token.
func (e *Env) DoRequest(req *http.Request, token string) *httptest.ResponseRecorder {
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	e.Handler.ServeHTTP(w, req)
	return w
}

// Decode decodes a JSON response body into v, failing the test on error.
func Decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.NewDecoder(w.Body).Decode(&v); err != nil {
		t.Fatalf("decode %d response: %v (body %q)", w.Code, err, w.Body.String())
	}
	return v
}

// Record copies every event published on the bus into a MockBus. Call
// Bus.Wait before reading it.
func (e *Env) Record(t *testing.T) *testutil.MockBus {
	t.Helper()
	rec := testutil.NewMockBus()
	unsub := e.Bus.SubscribeAll(func(ctx context.Context, ev event.Event) { _ = rec.Publish(ctx, ev) })
	t.Cleanup(unsub)
	return rec
}
