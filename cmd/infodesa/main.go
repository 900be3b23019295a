// Command infodesa runs the village information API and its maintenance
// tasks.
//
//	@title						InfoDesa Ngipak API
//	@version					1.0
//	@description				UMKM directory, health information and citizen reports.
//	@BasePath					/api/v1
//	@securityDefinitions.apikey	BearerAuth
//	@in							header
//	@name						Authorization
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ngipak/infodesa/internal/config"
	"github.com/ngipak/infodesa/internal/store"
)

var (
	configPath string
	debug      bool
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:           "infodesa",
	Short:         "Desa Ngipak information service",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "path to configuration file (default: ./infodesa.yaml)")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable development logging")

	rootCmd.AddCommand(serveCmd, migrateCmd, seedCmd, backupCmd, restoreCmd, versionCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

// loadConfig reads configuration and builds the logger it asks for.
func loadConfig() (*config.Config, *zap.Logger, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, nil, err
	}
	var logger *zap.Logger
	if debug || cfg.GetString("log.level") == "debug" {
		logger, err = zap.NewDevelopment()
	} else {
		logger, err = zap.NewProduction()
	}
	if err != nil {
		return nil, nil, fmt.Errorf("create logger: %w", err)
	}
	return cfg, logger, nil
}

// openStore connects to the configured data source. The mock source is an
// in-memory database that the caller seeds.
func openStore(cfg *config.Config) (*store.Store, bool, error) {
	switch source := cfg.GetString("data.source"); source {
	case "mock":
		s, err := store.New(":memory:")
		return s, true, err
	case "", "sqlite":
		s, err := store.Open(store.Options{Dialect: store.DialectSQLite, Path: cfg.GetString("data.path")})
		return s, false, err
	case "postgres":
		s, err := store.Open(store.Options{Dialect: store.DialectPostgres, DSN: cfg.GetString("data.dsn")})
		return s, false, err
	default:
		return nil, false, fmt.Errorf("unknown data.source %q (want mock, sqlite or postgres)", source)
	}
}
