package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/ngipak/infodesa/internal/store"
	"github.com/ngipak/infodesa/pkg/models"
)

// metaID is the single row of kesehatan_meta.
const metaID = 1

// MetaRepository provides access to the health page metadata row.
type MetaRepository interface {
	// Get returns the metadata with defaults filled in. When publishedOnly
	// is set an unpublished row reports ErrNotFound.
	Get(ctx context.Context, publishedOnly bool) (*models.MetaKesehatan, error)

	// Save creates or replaces the metadata row.
	Save(ctx context.Context, m *models.MetaKesehatan) error
}

// Compile-time interface guard.
var _ MetaRepository = (*SQLMetaRepository)(nil)

// SQLMetaRepository implements MetaRepository.
type SQLMetaRepository struct {
	db  *store.Store
	now func() time.Time
}

// NewMetaRepository creates a MetaRepository and runs the kesehatan
// migrations.
func NewMetaRepository(ctx context.Context, s *store.Store) (*SQLMetaRepository, error) {
	if err := migrateKesehatan(ctx, s); err != nil {
		return nil, err
	}
	return &SQLMetaRepository{db: s, now: time.Now}, nil
}

func (r *SQLMetaRepository) Get(ctx context.Context, publishedOnly bool) (*models.MetaKesehatan, error) {
	var (
		periode, sumber sql.NullString
		updatedAt       sql.NullTime
		m               models.MetaKesehatan
	)
	err := r.db.QueryRowContext(ctx,
		`SELECT periode_terakhir, sumber, published, updated_at FROM kesehatan_meta WHERE id = ?`, metaID,
	).Scan(&periode, &sumber, &m.Published, &updatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get kesehatan meta: %w", err)
	}
	if publishedOnly && !m.Published {
		return nil, ErrNotFound
	}

	switch {
	case strings.TrimSpace(periode.String) != "":
		m.PeriodeTerakhir = MonthOf(periode.String)
	case updatedAt.Valid:
		m.PeriodeTerakhir = updatedAt.Time.Format("2006-01")
	default:
		m.PeriodeTerakhir = r.now().Format("2006-01")
	}
	m.Sumber = strings.TrimSpace(sumber.String)
	if m.Sumber == "" {
		m.Sumber = models.DefaultSumber
	}
	return &m, nil
}

func (r *SQLMetaRepository) Save(ctx context.Context, m *models.MetaKesehatan) error {
	periode := sql.NullString{String: MonthOf(m.PeriodeTerakhir), Valid: strings.TrimSpace(m.PeriodeTerakhir) != ""}
	if periode.Valid && !monthPattern.MatchString(periode.String) {
		return invalid("periode_terakhir", "Format bulan harus YYYY-MM.")
	}
	sumber := sql.NullString{String: strings.TrimSpace(m.Sumber), Valid: strings.TrimSpace(m.Sumber) != ""}
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO kesehatan_meta (id, periode_terakhir, sumber, published, updated_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET
			periode_terakhir = excluded.periode_terakhir, sumber = excluded.sumber,
			published = excluded.published, updated_at = excluded.updated_at`,
		metaID, periode, sumber, m.Published, r.now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("save kesehatan meta: %w", err)
	}
	return nil
}
