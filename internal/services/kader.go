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

// KaderQuery narrows a volunteer listing.
type KaderQuery struct {
	DusunID       string
	PublishedOnly bool
}

// KaderRepository provides access to health volunteers.
type KaderRepository interface {
	// List returns volunteers ordered by name.
	List(ctx context.Context, q KaderQuery) ([]models.Kader, error)
	Get(ctx context.Context, id string) (*models.Kader, error)
	// Create inserts a volunteer. A blank ID is generated.
	Create(ctx context.Context, k *models.Kader) error
	Update(ctx context.Context, k *models.Kader) error
	SetPublished(ctx context.Context, id string, published bool) error
	Delete(ctx context.Context, id string) error
	Count(ctx context.Context) (Counts, error)
}

// Compile-time interface guard.
var _ KaderRepository = (*SQLKaderRepository)(nil)

// SQLKaderRepository implements KaderRepository.
type SQLKaderRepository struct {
	db *store.Store
}

// NewKaderRepository creates a KaderRepository and runs the kesehatan
// migrations.
func NewKaderRepository(ctx context.Context, s *store.Store) (*SQLKaderRepository, error) {
	if err := migrateKesehatan(ctx, s); err != nil {
		return nil, err
	}
	return &SQLKaderRepository{db: s}, nil
}

const kaderColumns = `k.id, k.nama, k.peran, k.no_wa, k.dusun_id,
	d.id, COALESCE(d.nama, ''), COALESCE(d.slug, ''), k.published`

const kaderFrom = ` FROM kesehatan_kader k LEFT JOIN dusun d ON d.id = k.dusun_id`

func (r *SQLKaderRepository) List(ctx context.Context, kq KaderQuery) ([]models.Kader, error) {
	q := `SELECT ` + kaderColumns + kaderFrom + ` WHERE 1 = 1`
	var args []any
	if kq.DusunID != "" {
		q += ` AND k.dusun_id = ?`
		args = append(args, kq.DusunID)
	}
	if kq.PublishedOnly {
		q += ` AND k.published = ?`
		args = append(args, true)
	}
	q += ` ORDER BY k.nama, k.id`

	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("list kader: %w", err)
	}
	defer rows.Close()

	out := []models.Kader{}
	for rows.Next() {
		var k models.Kader
		if err := scanKader(rows, &k); err != nil {
			return nil, fmt.Errorf("scan kader row: %w", err)
		}
		out = append(out, k)
	}
	return out, rows.Err()
}

func (r *SQLKaderRepository) Get(ctx context.Context, id string) (*models.Kader, error) {
	var k models.Kader
	err := scanKader(r.db.QueryRowContext(ctx,
		`SELECT `+kaderColumns+kaderFrom+` WHERE k.id = ?`, id), &k)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get kader %q: %w", id, err)
	}
	return &k, nil
}

func (r *SQLKaderRepository) Create(ctx context.Context, k *models.Kader) error {
	if err := ValidateKader(k); err != nil {
		return err
	}
	if k.ID == "" {
		k.ID = uuid.New().String()
	}
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO kesehatan_kader (id, nama, peran, no_wa, dusun_id, published, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		k.ID, k.Nama, k.Peran, k.NoWA, k.DusunID, k.Published, time.Now().UTC(),
	)
	if err != nil {
		if store.IsUniqueViolation(err) {
			return ErrAlreadyExists
		}
		return fmt.Errorf("create kader: %w", err)
	}
	return nil
}

func (r *SQLKaderRepository) Update(ctx context.Context, k *models.Kader) error {
	if k.ID == "" {
		return invalid("id", "ID kader tidak valid.")
	}
	if err := ValidateKader(k); err != nil {
		return err
	}
	res, err := r.db.ExecContext(ctx, `
		UPDATE kesehatan_kader SET nama = ?, peran = ?, no_wa = ?, dusun_id = ?, published = ?,
			updated_at = ?
		WHERE id = ?`,
		k.Nama, k.Peran, k.NoWA, k.DusunID, k.Published, time.Now().UTC(), k.ID,
	)
	if err != nil {
		return fmt.Errorf("update kader %q: %w", k.ID, err)
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *SQLKaderRepository) SetPublished(ctx context.Context, id string, published bool) error {
	return setPublished(ctx, r.db, "kesehatan_kader", "id", id, published)
}

func (r *SQLKaderRepository) Delete(ctx context.Context, id string) error {
	return deleteRow(ctx, r.db, "kesehatan_kader", "id", id)
}

func (r *SQLKaderRepository) Count(ctx context.Context) (Counts, error) {
	return countTable(ctx, r.db, "kesehatan_kader")
}

func scanKader(sc scanner, k *models.Kader) error {
	var (
		dusunID              sql.NullString
		dusunNama, dusunSlug string
	)
	if err := sc.Scan(&k.ID, &k.Nama, &k.Peran, &k.NoWA, &k.DusunID,
		&dusunID, &dusunNama, &dusunSlug, &k.Published); err != nil {
		return err
	}
	k.Dusun = dusunOf(k.DusunID, dusunID, dusunNama, dusunSlug)
	return nil
}
