package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/ngipak/infodesa/internal/store"
	"github.com/ngipak/infodesa/pkg/models"
)

// JadwalQuery narrows a schedule listing.
type JadwalQuery struct {
	DusunID       string
	PublishedOnly bool
}

// JadwalRepository provides access to health schedules.
type JadwalRepository interface {
	// List returns schedules ordered by date.
	List(ctx context.Context, q JadwalQuery) ([]models.JadwalKesehatan, error)
	Get(ctx context.Context, id string) (*models.JadwalKesehatan, error)
	// Create inserts a schedule. A blank ID is generated.
	Create(ctx context.Context, j *models.JadwalKesehatan) error
	Update(ctx context.Context, j *models.JadwalKesehatan) error
	SetPublished(ctx context.Context, id string, published bool) error
	Delete(ctx context.Context, id string) error
	Count(ctx context.Context) (Counts, error)
}

// Compile-time interface guard.
var _ JadwalRepository = (*SQLJadwalRepository)(nil)

// SQLJadwalRepository implements JadwalRepository. The jam column is read
// and written only when the schema has it.
type SQLJadwalRepository struct {
	db      *store.Store
	withJam bool
}

// NewJadwalRepository creates a JadwalRepository, runs the kesehatan
// migrations and checks for the optional jam column.
func NewJadwalRepository(ctx context.Context, s *store.Store) (*SQLJadwalRepository, error) {
	if err := migrateKesehatan(ctx, s); err != nil {
		return nil, err
	}
	caps, err := s.Capabilities(ctx)
	if err != nil {
		return nil, fmt.Errorf("jadwal capabilities: %w", err)
	}
	return &SQLJadwalRepository{db: s, withJam: caps.JadwalJam}, nil
}

// HasJam reports whether schedule times are stored.
func (r *SQLJadwalRepository) HasJam() bool {
	return r.withJam
}

func (r *SQLJadwalRepository) columns() string {
	jam := `''`
	if r.withJam {
		jam = `j.jam`
	}
	return `j.id, j.kegiatan, j.tanggal, ` + jam + `, j.lokasi, j.catatan, j.dusun_id,
		d.id, COALESCE(d.nama, ''), COALESCE(d.slug, ''), j.published`
}

const jadwalFrom = ` FROM kesehatan_jadwal j LEFT JOIN dusun d ON d.id = j.dusun_id`

func (r *SQLJadwalRepository) List(ctx context.Context, jq JadwalQuery) ([]models.JadwalKesehatan, error) {
	q := `SELECT ` + r.columns() + jadwalFrom + ` WHERE 1 = 1`
	var args []any
	if jq.DusunID != "" {
		q += ` AND j.dusun_id = ?`
		args = append(args, jq.DusunID)
	}
	if jq.PublishedOnly {
		q += ` AND j.published = ?`
		args = append(args, true)
	}
	q += ` ORDER BY j.tanggal, j.kegiatan`

	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("list jadwal: %w", err)
	}
	defer rows.Close()

	out := []models.JadwalKesehatan{}
	for rows.Next() {
		var j models.JadwalKesehatan
		if err := scanJadwal(rows, &j); err != nil {
			return nil, fmt.Errorf("scan jadwal row: %w", err)
		}
		out = append(out, j)
	}
	return out, rows.Err()
}

func (r *SQLJadwalRepository) Get(ctx context.Context, id string) (*models.JadwalKesehatan, error) {
	var j models.JadwalKesehatan
	err := scanJadwal(r.db.QueryRowContext(ctx,
		`SELECT `+r.columns()+jadwalFrom+` WHERE j.id = ?`, id), &j)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get jadwal %q: %w", id, err)
	}
	return &j, nil
}

func (r *SQLJadwalRepository) Create(ctx context.Context, j *models.JadwalKesehatan) error {
	if err := ValidateJadwal(j); err != nil {
		return err
	}
	if j.ID == "" {
		j.ID = uuid.New().String()
	}
	cols := `id, kegiatan, tanggal, lokasi, catatan, dusun_id, published, updated_at`
	vals := `?, ?, ?, ?, ?, ?, ?, ?`
	args := []any{j.ID, j.Kegiatan, j.Tanggal, j.Lokasi, j.Catatan, j.DusunID, j.Published, time.Now().UTC()}
	if r.withJam {
		cols += `, jam`
		vals += `, ?`
		args = append(args, j.Jam)
	} else {
		j.Jam = ""
	}
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO kesehatan_jadwal (`+cols+`) VALUES (`+vals+`)`, args...)
	if err != nil {
		if store.IsUniqueViolation(err) {
			return ErrAlreadyExists
		}
		return fmt.Errorf("create jadwal: %w", err)
	}
	return nil
}

func (r *SQLJadwalRepository) Update(ctx context.Context, j *models.JadwalKesehatan) error {
	if j.ID == "" {
		return invalid("id", "ID jadwal tidak valid.")
	}
	if err := ValidateJadwal(j); err != nil {
		return err
	}
	set := `kegiatan = ?, tanggal = ?, lokasi = ?, catatan = ?, dusun_id = ?, published = ?, updated_at = ?`
	args := []any{j.Kegiatan, j.Tanggal, j.Lokasi, j.Catatan, j.DusunID, j.Published, time.Now().UTC()}
	if r.withJam {
		set += `, jam = ?`
		args = append(args, j.Jam)
	} else {
		j.Jam = ""
	}
	args = append(args, j.ID)
	res, err := r.db.ExecContext(ctx, `UPDATE kesehatan_jadwal SET `+set+` WHERE id = ?`, args...)
	if err != nil {
		return fmt.Errorf("update jadwal %q: %w", j.ID, err)
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *SQLJadwalRepository) SetPublished(ctx context.Context, id string, published bool) error {
	return setPublished(ctx, r.db, "kesehatan_jadwal", "id", id, published)
}

func (r *SQLJadwalRepository) Delete(ctx context.Context, id string) error {
	return deleteRow(ctx, r.db, "kesehatan_jadwal", "id", id)
}

func (r *SQLJadwalRepository) Count(ctx context.Context) (Counts, error) {
	return countTable(ctx, r.db, "kesehatan_jadwal")
}

func scanJadwal(sc scanner, j *models.JadwalKesehatan) error {
	var (
		dusunID              sql.NullString
		dusunNama, dusunSlug string
	)
	if err := sc.Scan(&j.ID, &j.Kegiatan, &j.Tanggal, &j.Jam, &j.Lokasi, &j.Catatan, &j.DusunID,
		&dusunID, &dusunNama, &dusunSlug, &j.Published); err != nil {
		return err
	}
	j.Dusun = dusunOf(j.DusunID, dusunID, dusunNama, dusunSlug)
	return nil
}
