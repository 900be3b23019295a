package services

import (
	"context"
	"fmt"

	"github.com/ngipak/infodesa/internal/store"
)

// Migration owners. Each owner's versions are tracked independently.
const (
	OwnerCore      = "core"
	OwnerUmkm      = "umkm"
	OwnerKesehatan = "kesehatan"
	OwnerLaporan   = "laporan"
	OwnerAuth      = "auth"
)

var coreMigrations = []store.Migration{
	{
		Version:     1,
		Description: "create dusun table",
		Up: store.Exec(`
			CREATE TABLE dusun (
				id   TEXT PRIMARY KEY,
				nama TEXT NOT NULL,
				slug TEXT NOT NULL UNIQUE
			)`),
	},
	{
		Version:     2,
		Description: "create core_settings table",
		Up: store.Exec(`
			CREATE TABLE core_settings (
				key        TEXT PRIMARY KEY,
				value      TEXT NOT NULL,
				updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
			)`),
	},
}

// Vendors keep dusun_id without a foreign key so that removing a region
// leaves listings in place; reads resolve them to a placeholder region.
var umkmMigrations = []store.Migration{
	{
		Version:     1,
		Description: "create umkm table",
		Up: store.Exec(`
			CREATE TABLE umkm (
				id                  TEXT PRIMARY KEY,
				nama                TEXT NOT NULL,
				kategori            TEXT NOT NULL,
				no_wa               TEXT NOT NULL DEFAULT '',
				dusun_id            TEXT NOT NULL DEFAULT '',
				alamat              TEXT NOT NULL DEFAULT '',
				tentang             TEXT NOT NULL DEFAULT '',
				jam_buka            TEXT NOT NULL DEFAULT '',
				maps_url            TEXT NOT NULL DEFAULT '',
				pembayaran          TEXT NOT NULL DEFAULT '[]',
				galeri_foto         TEXT NOT NULL DEFAULT '[]',
				produk_unggulan_ids TEXT NOT NULL DEFAULT '[]',
				layanan             TEXT NOT NULL DEFAULT '[]',
				estimasi            TEXT NOT NULL DEFAULT '',
				published           BOOLEAN NOT NULL DEFAULT FALSE,
				updated_at          TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
			)`,
			`CREATE INDEX idx_umkm_dusun ON umkm(dusun_id)`),
	},
	{
		Version:     2,
		Description: "create produk table",
		Up: store.Exec(`
			CREATE TABLE produk (
				id         TEXT PRIMARY KEY,
				umkm_id    TEXT NOT NULL,
				nama       TEXT NOT NULL,
				harga      BIGINT NOT NULL DEFAULT 0,
				satuan     TEXT NOT NULL DEFAULT '',
				foto_url   TEXT NOT NULL DEFAULT '',
				deskripsi  TEXT NOT NULL DEFAULT '',
				published  BOOLEAN NOT NULL DEFAULT FALSE,
				updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
			)`,
			`CREATE INDEX idx_produk_umkm ON produk(umkm_id)`),
	},
}

var kesehatanMigrations = []store.Migration{
	{
		Version:     1,
		Description: "create kesehatan content tables",
		Up: store.Exec(`
			CREATE TABLE kesehatan_isu (
				id         TEXT PRIMARY KEY,
				judul      TEXT NOT NULL,
				ringkas    TEXT NOT NULL DEFAULT '',
				prioritas  TEXT NOT NULL DEFAULT 'sedang',
				dampak     TEXT NOT NULL DEFAULT '[]',
				upaya_desa TEXT NOT NULL DEFAULT '[]',
				aksi_warga TEXT NOT NULL DEFAULT '[]',
				urutan     INTEGER,
				published  BOOLEAN NOT NULL DEFAULT FALSE,
				updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
			)`, `
			CREATE TABLE kesehatan_stat_bulanan (
				bulan      TEXT PRIMARY KEY,
				stunting   INTEGER NOT NULL DEFAULT 0,
				hipertensi INTEGER NOT NULL DEFAULT 0,
				published  BOOLEAN NOT NULL DEFAULT FALSE,
				updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
			)`, `
			CREATE TABLE kesehatan_jadwal (
				id         TEXT PRIMARY KEY,
				dusun_id   TEXT NOT NULL DEFAULT '',
				kegiatan   TEXT NOT NULL,
				tanggal    TEXT NOT NULL,
				lokasi     TEXT NOT NULL DEFAULT '',
				catatan    TEXT NOT NULL DEFAULT '',
				published  BOOLEAN NOT NULL DEFAULT FALSE,
				updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
			)`, `
			CREATE TABLE kesehatan_kader (
				id         TEXT PRIMARY KEY,
				dusun_id   TEXT NOT NULL DEFAULT '',
				nama       TEXT NOT NULL,
				peran      TEXT NOT NULL DEFAULT '',
				no_wa      TEXT NOT NULL DEFAULT '',
				published  BOOLEAN NOT NULL DEFAULT FALSE,
				updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
			)`, `
			CREATE TABLE kesehatan_meta (
				id               INTEGER PRIMARY KEY,
				periode_terakhir TEXT,
				sumber           TEXT,
				published        BOOLEAN NOT NULL DEFAULT FALSE,
				updated_at       TIMESTAMP
			)`),
	},
	{
		Version:     2,
		Description: "add kesehatan_jadwal.jam",
		Up:          store.Exec(`ALTER TABLE kesehatan_jadwal ADD COLUMN jam TEXT NOT NULL DEFAULT ''`),
	},
}

var laporanMigrations = []store.Migration{
	{
		Version:     1,
		Description: "create laporan_konten table",
		Up: store.Exec(`
			CREATE TABLE laporan_konten (
				id             TEXT PRIMARY KEY,
				jenis          TEXT NOT NULL,
				target_type    TEXT NOT NULL DEFAULT '',
				target_id      TEXT NOT NULL DEFAULT '',
				judul          TEXT NOT NULL,
				pesan          TEXT NOT NULL,
				user_id        TEXT NOT NULL,
				status         TEXT NOT NULL DEFAULT 'baru',
				catatan_admin  TEXT NOT NULL DEFAULT '',
				created_at     TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
				updated_at     TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
			)`,
			`CREATE INDEX idx_laporan_status ON laporan_konten(status)`),
	},
}

var authMigrations = []store.Migration{
	{
		Version:     1,
		Description: "create profiles table",
		Up: store.Exec(`
			CREATE TABLE profiles (
				id            TEXT PRIMARY KEY,
				email         TEXT NOT NULL UNIQUE,
				password_hash TEXT NOT NULL,
				role          TEXT NOT NULL DEFAULT '',
				totp_secret   TEXT NOT NULL DEFAULT '',
				created_at    TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
				last_login    TIMESTAMP
			)`),
	},
}

// MigrateAll applies every owner's migrations in dependency order.
func MigrateAll(ctx context.Context, s *store.Store) error {
	steps := []struct {
		owner string
		migs  []store.Migration
	}{
		{OwnerCore, coreMigrations},
		{OwnerUmkm, umkmMigrations},
		{OwnerKesehatan, kesehatanMigrations},
		{OwnerLaporan, laporanMigrations},
		{OwnerAuth, authMigrations},
	}
	for _, st := range steps {
		if err := s.Migrate(ctx, st.owner, st.migs); err != nil {
			return fmt.Errorf("%s migrations: %w", st.owner, err)
		}
	}
	return nil
}
