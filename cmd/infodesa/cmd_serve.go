package main

import (
	"context"
	"errors"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	_ "github.com/ngipak/infodesa/docs" // Swagger document
	"github.com/ngipak/infodesa/internal/account"
	"github.com/ngipak/infodesa/internal/auth"
	"github.com/ngipak/infodesa/internal/config"
	"github.com/ngipak/infodesa/internal/dashboard"
	"github.com/ngipak/infodesa/internal/event"
	"github.com/ngipak/infodesa/internal/kesehatan"
	"github.com/ngipak/infodesa/internal/laporan"
	"github.com/ngipak/infodesa/internal/plugin"
	"github.com/ngipak/infodesa/internal/registry"
	"github.com/ngipak/infodesa/internal/server"
	"github.com/ngipak/infodesa/internal/services"
	"github.com/ngipak/infodesa/internal/settings"
	"github.com/ngipak/infodesa/internal/storage"
	"github.com/ngipak/infodesa/internal/umkm"
	"github.com/ngipak/infodesa/internal/version"
	"github.com/ngipak/infodesa/pkg/fixtures"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	RunE:  runServe,
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, logger, err := loadConfig()
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("InfoDesa server starting", zap.String("version", version.Short()))

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	st, mock, err := openStore(cfg)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer st.Close()

	if mock {
		data, err := fixtures.New().Data()
		if err != nil {
			return err
		}
		rep, err := services.Seed(ctx, st, data)
		if err != nil {
			return fmt.Errorf("seed mock data: %w", err)
		}
		logger.Info("mock data source seeded", zap.Any("records", rep))
	}

	users, err := services.NewUserRepository(ctx, st)
	if err != nil {
		return err
	}
	authSvc, err := auth.NewService(users, auth.Options{
		Secret: cfg.GetString("auth.jwt_secret"),
		TTL:    cfg.GetDuration("auth.token_ttl"),
		Issuer: cfg.GetString("auth.issuer"),
	}, logger.Named("auth"))
	if err != nil {
		return err
	}

	files, err := storage.New(storage.Options{
		Dir:           cfg.GetString("storage.dir"),
		PublicURL:     cfg.GetString("storage.public_url"),
		MaxImageBytes: int64(cfg.GetInt("storage.max_image_bytes")),
	}, logger.Named("storage"))
	if err != nil {
		return err
	}

	bus := event.NewBus(logger.Named("event"))
	unsubscribe := bus.SubscribeAll(func(_ context.Context, e event.Event) {
		logger.Debug("event", zap.String("topic", e.Topic), zap.String("source", e.Source))
	})
	defer unsubscribe()

	reg := registry.New(logger.Named("registry"))
	for _, p := range []plugin.Plugin{
		account.New(),
		umkm.New(),
		kesehatan.New(),
		laporan.New(),
		dashboard.New(),
		settings.NewHandler(nil),
	} {
		if err := reg.Register(p); err != nil {
			return fmt.Errorf("register plugin: %w", err)
		}
	}
	if err := reg.Validate(); err != nil {
		return err
	}
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
		return fmt.Errorf("initialize plugins: %w", err)
	}
	if caps, err := st.Capabilities(ctx); err != nil {
		logger.Warn("schema capability check failed", zap.Error(err))
	} else {
		logger.Info("schema capabilities", zap.Bool("jadwal_jam", caps.JadwalJam))
	}
	if err := reg.StartAll(ctx); err != nil {
		return fmt.Errorf("start plugins: %w", err)
	}

	addr := fmt.Sprintf("%s:%d", cfg.GetString("server.host"), cfg.GetInt("server.port"))
	srv := server.New(addr, reg, authSvc, logger.Named("server"), serverOptions(cfg, files))

	errCh := make(chan error, 1)
	go func() { errCh <- srv.Start() }()

	select {
	case err = <-errCh:
	case <-ctx.Done():
		logger.Info("shutdown signal received")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if shutdownErr := srv.Shutdown(shutdownCtx); shutdownErr != nil && !errors.Is(shutdownErr, context.Canceled) {
		logger.Error("server shutdown error", zap.Error(shutdownErr))
	}
	reg.StopAll(shutdownCtx)
	bus.Wait()
	logger.Info("InfoDesa server stopped")
	return err
}

func serverOptions(cfg *config.Config, files *storage.Storage) server.Options {
	return server.Options{
		ReadTimeout:   cfg.GetDuration("server.read_timeout"),
		WriteTimeout:  cfg.GetDuration("server.write_timeout"),
		CORSOrigins:   cfg.GetStringSlice("server.cors_origins"),
		RatePerMinute: cfg.GetInt("ratelimit.per_minute"),
		RateBurst:     cfg.GetInt("ratelimit.burst"),
		Files:         files.Handler(),
		FilesPrefix:   cfg.GetString("storage.public_url"),
	}
}
