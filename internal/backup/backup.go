// Package backup provides tar.gz-based backup and restore for InfoDesa data:
// the SQLite database, the uploaded files and an optional config file.
package backup

import (
	"archive/tar"
	"compress/gzip"
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"

	_ "modernc.org/sqlite" // SQLite driver
)

// FilesPrefix is the archive directory holding uploaded objects.
const FilesPrefix = "files/"

// Options selects what goes into an archive.
type Options struct {
	DBPath     string // Required.
	FilesDir   string // Storage root; skipped when empty or missing.
	ConfigPath string // Skipped when empty or missing.
	Output     string
}

// Manifest summarizes an archive written by Backup.
type Manifest struct {
	Database string
	Config   string
	Files    int
}

// Backup creates a tar.gz archive. It performs a WAL checkpoint before
// copying the database to ensure consistency.
func Backup(ctx context.Context, opts Options) (*Manifest, error) {
	if _, err := os.Stat(opts.DBPath); err != nil {
		return nil, fmt.Errorf("database file not found: %w", err)
	}
	if err := checkpointWAL(ctx, opts.DBPath); err != nil {
		return nil, fmt.Errorf("WAL checkpoint failed: %w", err)
	}

	outFile, err := os.Create(opts.Output)
	if err != nil {
		return nil, fmt.Errorf("creating output file: %w", err)
	}
	defer outFile.Close()

	gw := gzip.NewWriter(outFile)
	tw := tar.NewWriter(gw)

	m := &Manifest{Database: filepath.Base(opts.DBPath)}
	if err := addFileToTar(tw, opts.DBPath, m.Database); err != nil {
		return nil, fmt.Errorf("adding database to archive: %w", err)
	}

	if opts.ConfigPath != "" {
		if _, err := os.Stat(opts.ConfigPath); err == nil {
			m.Config = filepath.Base(opts.ConfigPath)
			if err := addFileToTar(tw, opts.ConfigPath, m.Config); err != nil {
				return nil, fmt.Errorf("adding config to archive: %w", err)
			}
		}
	}

	if opts.FilesDir != "" {
		n, err := addDirToTar(ctx, tw, opts.FilesDir)
		if err != nil {
			return nil, fmt.Errorf("adding files to archive: %w", err)
		}
		m.Files = n
	}

	if err := tw.Close(); err != nil {
		return nil, err
	}
	if err := gw.Close(); err != nil {
		return nil, err
	}
	return m, outFile.Close()
}

// Restore extracts an archive into dataDir. The database and config land
// in dataDir, uploaded objects in filesDir. Existing files are kept unless
// force is set.
func Restore(ctx context.Context, input, dataDir, filesDir string, force bool) (*Manifest, error) {
	f, err := os.Open(input)
	if err != nil {
		return nil, fmt.Errorf("opening archive: %w", err)
	}
	defer f.Close()

	gr, err := gzip.NewReader(f)
	if err != nil {
		return nil, fmt.Errorf("reading gzip: %w", err)
	}
	defer gr.Close()

	m := &Manifest{}
	tr := tar.NewReader(gr)
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		hdr, err := tr.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reading archive: %w", err)
		}
		if hdr.Typeflag != tar.TypeReg {
			continue
		}

		name := path.Clean(hdr.Name)
		if strings.HasPrefix(name, "../") || path.IsAbs(name) {
			return nil, fmt.Errorf("unsafe path in archive: %q", hdr.Name)
		}

		var dst string
		switch {
		case strings.HasPrefix(name, FilesPrefix):
			dst = filepath.Join(filesDir, filepath.FromSlash(strings.TrimPrefix(name, FilesPrefix)))
			m.Files++
		case strings.HasSuffix(name, ".db"):
			dst = filepath.Join(dataDir, name)
			m.Database = name
		default:
			dst = filepath.Join(dataDir, name)
			m.Config = name
		}
		if err := extract(tr, dst, hdr.FileInfo().Mode(), force); err != nil {
			return nil, err
		}
	}
	if m.Database == "" {
		return nil, errors.New("archive contains no database")
	}
	return m, nil
}

func extract(r io.Reader, dst string, mode fs.FileMode, force bool) error {
	if _, err := os.Stat(dst); err == nil && !force {
		return fmt.Errorf("%s already exists (use --force to overwrite)", dst)
	}
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return err
	}
	out, err := os.OpenFile(dst, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, mode.Perm()|0o600)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, r); err != nil {
		out.Close()
		return fmt.Errorf("writing %s: %w", dst, err)
	}
	return out.Close()
}

// checkpointWAL opens the database, runs a TRUNCATE checkpoint to flush the
// WAL, and closes the connection.
func checkpointWAL(ctx context.Context, dbPath string) error {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return err
	}
	defer db.Close()

	_, err = db.ExecContext(ctx, "PRAGMA wal_checkpoint(TRUNCATE)")
	return err
}

func addDirToTar(ctx context.Context, tw *tar.Writer, root string) (int, error) {
	if _, err := os.Stat(root); errors.Is(err, fs.ErrNotExist) {
		return 0, nil
	}
	n := 0
	err := filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if !d.Type().IsRegular() {
			return nil
		}
		rel, err := filepath.Rel(root, p)
		if err != nil {
			return err
		}
		n++
		return addFileToTar(tw, p, FilesPrefix+filepath.ToSlash(rel))
	})
	return n, err
}

// addFileToTar adds a single file to the tar archive under the given name.
func addFileToTar(tw *tar.Writer, filePath, archiveName string) error {
	f, err := os.Open(filePath)
	if err != nil {
		return err
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return err
	}

	hdr, err := tar.FileInfoHeader(info, "")
	if err != nil {
		return err
	}
	hdr.Name = archiveName

	if err := tw.WriteHeader(hdr); err != nil {
		return err
	}

	_, err = io.Copy(tw, f)
	return err
}
