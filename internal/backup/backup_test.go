package backup

import (
	"archive/tar"
	"compress/gzip"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ngipak/infodesa/internal/store"
)

func writeFile(t *testing.T, p, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(p, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func newDB(t *testing.T, dir string) string {
	t.Helper()
	dbPath := filepath.Join(dir, "infodesa.db")
	s, err := store.New(dbPath)
	if err != nil {
		t.Fatalf("store.New: %v", err)
	}
	if _, err := s.ExecContext(context.Background(), `CREATE TABLE t (v TEXT)`); err != nil {
		t.Fatalf("create table: %v", err)
	}
	if _, err := s.ExecContext(context.Background(), `INSERT INTO t (v) VALUES ('ngipak')`); err != nil {
		t.Fatalf("insert: %v", err)
	}
	if err := s.Close(); err != nil {
		t.Fatal(err)
	}
	return dbPath
}

func TestBackupRestore(t *testing.T) {
	ctx := context.Background()
	src := t.TempDir()
	dbPath := newDB(t, src)
	cfgPath := filepath.Join(src, "infodesa.yaml")
	writeFile(t, cfgPath, "server:\n  port: 9090\n")
	filesDir := filepath.Join(src, "storage")
	writeFile(t, filepath.Join(filesDir, "produk", "u-sari", "1-terong.jpg"), "jpeg")
	writeFile(t, filepath.Join(filesDir, "leaflet", "leaflet-kesehatan.pdf"), "%PDF")

	out := filepath.Join(t.TempDir(), "backup.tar.gz")
	m, err := Backup(ctx, Options{DBPath: dbPath, FilesDir: filesDir, ConfigPath: cfgPath, Output: out})
	if err != nil {
		t.Fatalf("Backup: %v", err)
	}
	if m.Database != "infodesa.db" || m.Config != "infodesa.yaml" || m.Files != 2 {
		t.Errorf("backup manifest = %+v", m)
	}

	dst := t.TempDir()
	dstFiles := filepath.Join(dst, "storage")
	m, err = Restore(ctx, out, dst, dstFiles, false)
	if err != nil {
		t.Fatalf("Restore: %v", err)
	}
	if m.Files != 2 {
		t.Errorf("restored files = %d, want 2", m.Files)
	}

	s, err := store.New(filepath.Join(dst, "infodesa.db"))
	if err != nil {
		t.Fatalf("open restored db: %v", err)
	}
	defer s.Close()
	var v string
	if err := s.QueryRowContext(ctx, `SELECT v FROM t`).Scan(&v); err != nil || v != "ngipak" {
		t.Errorf("restored row = %q, %v", v, err)
	}

	got, err := os.ReadFile(filepath.Join(dstFiles, "produk", "u-sari", "1-terong.jpg"))
	if err != nil || string(got) != "jpeg" {
		t.Errorf("restored image = %q, %v", got, err)
	}
	if _, err := os.Stat(filepath.Join(dst, "infodesa.yaml")); err != nil {
		t.Errorf("config not restored: %v", err)
	}
}

func TestRestore_RefusesOverwrite(t *testing.T) {
	ctx := context.Background()
	src := t.TempDir()
	out := filepath.Join(t.TempDir(), "backup.tar.gz")
	if _, err := Backup(ctx, Options{DBPath: newDB(t, src), Output: out}); err != nil {
		t.Fatalf("Backup: %v", err)
	}

	dst := t.TempDir()
	writeFile(t, filepath.Join(dst, "infodesa.db"), "existing")
	_, err := Restore(ctx, out, dst, filepath.Join(dst, "storage"), false)
	if err == nil || !strings.Contains(err.Error(), "already exists") {
		t.Fatalf("Restore without force: err = %v", err)
	}
	if _, err := Restore(ctx, out, dst, filepath.Join(dst, "storage"), true); err != nil {
		t.Fatalf("Restore with force: %v", err)
	}
}

func TestBackup_MissingDatabase(t *testing.T) {
	_, err := Backup(context.Background(), Options{
		DBPath: filepath.Join(t.TempDir(), "nope.db"),
		Output: filepath.Join(t.TempDir(), "out.tar.gz"),
	})
	if err == nil {
		t.Fatal("expected error for missing database")
	}
}

func TestRestore_RejectsTraversal(t *testing.T) {
	out := filepath.Join(t.TempDir(), "evil.tar.gz")
	f, err := os.Create(out)
	if err != nil {
		t.Fatal(err)
	}
	gw := gzip.NewWriter(f)
	tw := tar.NewWriter(gw)
	body := []byte("x")
	if err := tw.WriteHeader(&tar.Header{Name: "../escape.db", Mode: 0o644, Size: int64(len(body)), Typeflag: tar.TypeReg}); err != nil {
		t.Fatal(err)
	}
	if _, err := tw.Write(body); err != nil {
		t.Fatal(err)
	}
	tw.Close()
	gw.Close()
	f.Close()

	dst := t.TempDir()
	if _, err := Restore(context.Background(), out, dst, dst, true); err == nil {
		t.Fatal("expected error for path traversal")
	}
}
