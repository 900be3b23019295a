package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/ngipak/infodesa/internal/store"
	"github.com/ngipak/infodesa/pkg/models"
)

// LaporanQuery filters the admin report inbox.
type LaporanQuery struct {
	Status models.LaporanStatus // Empty means any status.
	Jenis  string
	UserID string
	ListOptions
}

// LaporanRepository provides access to citizen reports.
type LaporanRepository interface {
	// Create stores a new report with status baru.
	Create(ctx context.Context, l *models.Laporan) error

	// Get returns a single report.
	Get(ctx context.Context, id string) (*models.Laporan, error)

	// List returns reports newest first.
	List(ctx context.Context, q LaporanQuery) (*ListResult[models.Laporan], error)

	// UpdateStatus sets the review status and admin note.
	UpdateStatus(ctx context.Context, id string, status models.LaporanStatus, catatan string) (*models.Laporan, error)

	// CountByStatus returns the number of reports per status.
	CountByStatus(ctx context.Context) (map[models.LaporanStatus]int, error)
}

// Compile-time interface guard.
var _ LaporanRepository = (*SQLLaporanRepository)(nil)

// SQLLaporanRepository implements LaporanRepository.
type SQLLaporanRepository struct {
	db  *store.Store
	now func() time.Time
}

// NewLaporanRepository creates a LaporanRepository and runs the laporan
// migrations.
func NewLaporanRepository(ctx context.Context, s *store.Store) (*SQLLaporanRepository, error) {
	if err := s.Migrate(ctx, OwnerLaporan, laporanMigrations); err != nil {
		return nil, fmt.Errorf("laporan migrations: %w", err)
	}
	return &SQLLaporanRepository{db: s, now: time.Now}, nil
}

const laporanColumns = `id, jenis, target_type, target_id, judul, pesan, user_id, status,
	catatan_admin, created_at, updated_at`

func (r *SQLLaporanRepository) Create(ctx context.Context, l *models.Laporan) error {
	if err := ValidateLaporan(l); err != nil {
		return err
	}
	if l.ID == "" {
		l.ID = uuid.New().String()
	}
	l.Status = models.LaporanBaru
	l.CatatanAdmin = ""
	l.CreatedAt = r.now().UTC()
	l.UpdatedAt = l.CreatedAt

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO laporan_konten (id, jenis, target_type, target_id, judul, pesan, user_id,
			status, catatan_admin, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		l.ID, l.Jenis, l.TargetType, l.TargetID, l.Judul, l.Pesan, l.UserID,
		string(l.Status), l.CatatanAdmin, l.CreatedAt, l.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("create laporan: %w", err)
	}
	return nil
}

func (r *SQLLaporanRepository) Get(ctx context.Context, id string) (*models.Laporan, error) {
	var l models.Laporan
	err := scanLaporan(r.db.QueryRowContext(ctx,
		`SELECT `+laporanColumns+` FROM laporan_konten WHERE id = ?`, id), &l)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get laporan %q: %w", id, err)
	}
	return &l, nil
}

func (r *SQLLaporanRepository) List(ctx context.Context, q LaporanQuery) (*ListResult[models.Laporan], error) {
	opts := normalizeListOptions(q.ListOptions)

	var where []string
	var args []any
	if q.Status != "" {
		where = append(where, "status = ?")
		args = append(args, string(q.Status))
	}
	if q.Jenis != "" {
		where = append(where, "jenis = ?")
		args = append(args, q.Jenis)
	}
	if q.UserID != "" {
		where = append(where, "user_id = ?")
		args = append(args, q.UserID)
	}
	clause := ""
	if len(where) > 0 {
		clause = " WHERE " + strings.Join(where, " AND ")
	}

	var total int
	if err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM laporan_konten`+clause, args...).Scan(&total); err != nil {
		return nil, fmt.Errorf("count laporan: %w", err)
	}

	rows, err := r.db.QueryContext(ctx,
		`SELECT `+laporanColumns+` FROM laporan_konten`+clause+
			` ORDER BY created_at DESC, id LIMIT ? OFFSET ?`,
		append(args, opts.Limit, opts.Offset)...)
	if err != nil {
		return nil, fmt.Errorf("list laporan: %w", err)
	}
	defer rows.Close()

	items := []models.Laporan{}
	for rows.Next() {
		var l models.Laporan
		if err := scanLaporan(rows, &l); err != nil {
			return nil, fmt.Errorf("scan laporan row: %w", err)
		}
		items = append(items, l)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return &ListResult[models.Laporan]{Items: items, Total: total}, nil
}

func (r *SQLLaporanRepository) UpdateStatus(ctx context.Context, id string, status models.LaporanStatus, catatan string) (*models.Laporan, error) {
	if !status.Valid() {
		return nil, invalid("status", "Status laporan tidak valid.")
	}
	res, err := r.db.ExecContext(ctx,
		`UPDATE laporan_konten SET status = ?, catatan_admin = ?, updated_at = ? WHERE id = ?`,
		string(status), strings.TrimSpace(catatan), r.now().UTC(), id,
	)
	if err != nil {
		return nil, fmt.Errorf("update laporan %q: %w", id, err)
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return nil, ErrNotFound
	}
	return r.Get(ctx, id)
}

func (r *SQLLaporanRepository) CountByStatus(ctx context.Context) (map[models.LaporanStatus]int, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT status, COUNT(*) FROM laporan_konten GROUP BY status`)
	if err != nil {
		return nil, fmt.Errorf("count laporan by status: %w", err)
	}
	defer rows.Close()

	out := make(map[models.LaporanStatus]int)
	for rows.Next() {
		var s string
		var n int
		if err := rows.Scan(&s, &n); err != nil {
			return nil, fmt.Errorf("scan laporan count: %w", err)
		}
		out[models.LaporanStatus(s)] = n
	}
	return out, rows.Err()
}

func scanLaporan(sc scanner, l *models.Laporan) error {
	var status string
	if err := sc.Scan(&l.ID, &l.Jenis, &l.TargetType, &l.TargetID, &l.Judul, &l.Pesan, &l.UserID,
		&status, &l.CatatanAdmin, &l.CreatedAt, &l.UpdatedAt); err != nil {
		return err
	}
	l.Status = models.LaporanStatus(status)
	return nil
}
