package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/ngipak/infodesa/internal/store"
	"github.com/ngipak/infodesa/pkg/models"
	"github.com/ngipak/infodesa/pkg/slug"
)

// DusunRepository provides access to village regions.
type DusunRepository interface {
	// List returns all regions ordered by name.
	List(ctx context.Context) ([]models.Dusun, error)

	// Get returns a region by ID.
	Get(ctx context.Context, id string) (*models.Dusun, error)

	// Save creates or replaces a region.
	Save(ctx context.Context, d *models.Dusun) error

	// Delete removes a region. Records that reference it remain and resolve
	// to a placeholder.
	Delete(ctx context.Context, id string) error
}

// Compile-time interface guard.
var _ DusunRepository = (*SQLDusunRepository)(nil)

// SQLDusunRepository implements DusunRepository.
type SQLDusunRepository struct {
	db *store.Store
}

// NewDusunRepository creates a DusunRepository and runs the core migrations.
func NewDusunRepository(ctx context.Context, s *store.Store) (*SQLDusunRepository, error) {
	if err := s.Migrate(ctx, OwnerCore, coreMigrations); err != nil {
		return nil, fmt.Errorf("core migrations: %w", err)
	}
	return &SQLDusunRepository{db: s}, nil
}

func (r *SQLDusunRepository) List(ctx context.Context) ([]models.Dusun, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, nama, slug FROM dusun ORDER BY nama`)
	if err != nil {
		return nil, fmt.Errorf("list dusun: %w", err)
	}
	defer rows.Close()

	out := []models.Dusun{}
	for rows.Next() {
		var d models.Dusun
		if err := rows.Scan(&d.ID, &d.Nama, &d.Slug); err != nil {
			return nil, fmt.Errorf("scan dusun row: %w", err)
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

func (r *SQLDusunRepository) Get(ctx context.Context, id string) (*models.Dusun, error) {
	var d models.Dusun
	err := r.db.QueryRowContext(ctx,
		`SELECT id, nama, slug FROM dusun WHERE id = ?`, id,
	).Scan(&d.ID, &d.Nama, &d.Slug)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get dusun %q: %w", id, err)
	}
	return &d, nil
}

func (r *SQLDusunRepository) Save(ctx context.Context, d *models.Dusun) error {
	if d.ID == "" || d.Nama == "" {
		return invalid("nama", "Nama dusun wajib diisi.")
	}
	if d.Slug == "" {
		d.Slug = slug.Make(d.Nama)
	}
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO dusun (id, nama, slug) VALUES (?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET nama = excluded.nama, slug = excluded.slug`,
		d.ID, d.Nama, d.Slug,
	)
	if err != nil {
		if store.IsUniqueViolation(err) {
			return ErrAlreadyExists
		}
		return fmt.Errorf("save dusun %q: %w", d.ID, err)
	}
	return nil
}

func (r *SQLDusunRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM dusun WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete dusun %q: %w", id, err)
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// dusunOf resolves a joined region, falling back to the placeholder when the
// referenced row is gone.
func dusunOf(refID string, id sql.NullString, nama, slug string) models.Dusun {
	if !id.Valid {
		return models.UnknownDusun(refID)
	}
	return models.Dusun{ID: id.String, Nama: nama, Slug: slug}
}
