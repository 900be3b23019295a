package main

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ngipak/infodesa/internal/backup"
	"github.com/ngipak/infodesa/internal/services"
	"github.com/ngipak/infodesa/internal/version"
	"github.com/ngipak/infodesa/pkg/fixtures"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply database migrations",
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, logger, err := loadConfig()
		if err != nil {
			return err
		}
		st, _, err := openStore(cfg)
		if err != nil {
			return err
		}
		defer st.Close()
		if err := services.MigrateAll(cmd.Context(), st); err != nil {
			return err
		}
		logger.Info("migrations applied", zap.String("dialect", string(st.Dialect())))
		return nil
	},
}

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Load the embedded demo content into the database",
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, _, err := loadConfig()
		if err != nil {
			return err
		}
		st, _, err := openStore(cfg)
		if err != nil {
			return err
		}
		defer st.Close()
		data, err := fixtures.New().Data()
		if err != nil {
			return err
		}
		rep, err := services.Seed(cmd.Context(), st, data)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Seeded %d dusun, %d UMKM, %d produk, %d isu, %d statistik, %d kader, %d jadwal, %d settings\n",
			rep.Dusun, rep.Umkm, rep.Produk, rep.Isu, rep.Statistik, rep.Kader, rep.Jadwal, rep.Settings)
		return nil
	},
}

var (
	backupOutput  string
	restoreInput  string
	restoreTarget string
	restoreForce  bool
)

var backupCmd = &cobra.Command{
	Use:   "backup",
	Short: "Archive the SQLite database, uploaded files and config",
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, _, err := loadConfig()
		if err != nil {
			return err
		}
		if cfg.GetString("data.source") != "sqlite" {
			return fmt.Errorf("backup supports the sqlite data source only, got %q", cfg.GetString("data.source"))
		}
		out := backupOutput
		if out == "" {
			out = fmt.Sprintf("infodesa-backup-%s.tar.gz", time.Now().Format("20060102-150405"))
		}
		m, err := backup.Backup(cmd.Context(), backup.Options{
			DBPath:     cfg.GetString("data.path"),
			FilesDir:   cfg.GetString("storage.dir"),
			ConfigPath: configPath,
			Output:     out,
		})
		if err != nil {
			return fmt.Errorf("backup failed: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Backup created: %s (%d files)\n", out, m.Files)
		return nil
	},
}

var restoreCmd = &cobra.Command{
	Use:   "restore",
	Short: "Restore a backup archive",
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, _, err := loadConfig()
		if err != nil {
			return err
		}
		target := restoreTarget
		if target == "" {
			target = filepath.Dir(cfg.GetString("data.path"))
		}
		m, err := backup.Restore(cmd.Context(), restoreInput, target, cfg.GetString("storage.dir"), restoreForce)
		if err != nil {
			return fmt.Errorf("restore failed: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Restore complete: %s and %d files restored to %s\n", m.Database, m.Files, target)
		return nil
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print build information",
	Run: func(cmd *cobra.Command, _ []string) {
		fmt.Fprintln(cmd.OutOrStdout(), version.Info())
	},
}

func init() {
	backupCmd.Flags().StringVarP(&backupOutput, "output", "o", "", "output file path (default: infodesa-backup-{timestamp}.tar.gz)")

	restoreCmd.Flags().StringVarP(&restoreInput, "input", "i", "", "backup archive to restore")
	restoreCmd.Flags().StringVar(&restoreTarget, "data-dir", "", "target directory for the database (default: directory of data.path)")
	restoreCmd.Flags().BoolVar(&restoreForce, "force", false, "overwrite existing files")
	_ = restoreCmd.MarkFlagRequired("input")
}
