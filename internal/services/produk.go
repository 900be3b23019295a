package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/ngipak/infodesa/internal/store"
	"github.com/ngipak/infodesa/pkg/models"
	"github.com/ngipak/infodesa/pkg/slug"
)

// ProdukQuery narrows a product listing.
type ProdukQuery struct {
	UmkmID string // Only products of this vendor when set.

	// PublishedOnly keeps products that are published and whose vendor is
	// published.
	PublishedOnly bool
}

// ProdukRepository provides access to products.
type ProdukRepository interface {
	// List returns products with their vendor and region resolved.
	List(ctx context.Context, q ProdukQuery) ([]models.Produk, error)

	// Get returns a product by ID, drafts included.
	Get(ctx context.Context, id string) (*models.Produk, error)

	// Create inserts a product. A blank ID is derived from the name.
	Create(ctx context.Context, p *models.Produk) error

	// Update replaces an existing product.
	Update(ctx context.Context, p *models.Produk) error

	// Save creates or replaces a product by ID.
	Save(ctx context.Context, p *models.Produk) error

	// SetPublished changes only the published flag.
	SetPublished(ctx context.Context, id string, published bool) error

	// Delete removes a product.
	Delete(ctx context.Context, id string) error

	// Count returns total and published product counts.
	Count(ctx context.Context) (Counts, error)
}

// Compile-time interface guard.
var _ ProdukRepository = (*SQLProdukRepository)(nil)

// SQLProdukRepository implements ProdukRepository.
type SQLProdukRepository struct {
	db  *store.Store
	now func() time.Time
}

// NewProdukRepository creates a ProdukRepository and runs the umkm
// migrations.
func NewProdukRepository(ctx context.Context, s *store.Store) (*SQLProdukRepository, error) {
	if err := s.Migrate(ctx, OwnerCore, coreMigrations); err != nil {
		return nil, fmt.Errorf("core migrations: %w", err)
	}
	if err := s.Migrate(ctx, OwnerUmkm, umkmMigrations); err != nil {
		return nil, fmt.Errorf("umkm migrations: %w", err)
	}
	return &SQLProdukRepository{db: s, now: time.Now}, nil
}

const produkColumns = `p.id, p.umkm_id, p.nama, p.harga, p.satuan, p.foto_url, p.deskripsi,
	p.published, p.updated_at, ` + umkmColumns

const produkFrom = ` FROM produk p
	LEFT JOIN umkm u ON u.id = p.umkm_id
	LEFT JOIN dusun d ON d.id = u.dusun_id`

func (r *SQLProdukRepository) List(ctx context.Context, pq ProdukQuery) ([]models.Produk, error) {
	q := `SELECT ` + produkColumns + produkFrom + ` WHERE 1 = 1`
	var args []any
	if pq.UmkmID != "" {
		q += ` AND p.umkm_id = ?`
		args = append(args, pq.UmkmID)
	}
	if pq.PublishedOnly {
		q += ` AND p.published = ? AND COALESCE(u.published, FALSE) = ?`
		args = append(args, true, true)
	}
	q += ` ORDER BY p.nama, p.id`

	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("list produk: %w", err)
	}
	defer rows.Close()

	out := []models.Produk{}
	for rows.Next() {
		var p models.Produk
		if err := scanProduk(rows, &p); err != nil {
			return nil, fmt.Errorf("scan produk row: %w", err)
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (r *SQLProdukRepository) Get(ctx context.Context, id string) (*models.Produk, error) {
	var p models.Produk
	err := scanProduk(r.db.QueryRowContext(ctx,
		`SELECT `+produkColumns+produkFrom+` WHERE p.id = ?`, id), &p)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get produk %q: %w", id, err)
	}
	return &p, nil
}

func (r *SQLProdukRepository) Create(ctx context.Context, p *models.Produk) error {
	if p.ID == "" {
		p.ID = slug.Make(p.Nama) + "-" + strconv.FormatInt(r.now().UnixMilli(), 10)
	} else {
		p.ID = slug.Make(p.ID)
	}
	if err := ValidateProduk(p); err != nil {
		return err
	}
	p.UpdatedAt = r.now().UTC()
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO produk (id, umkm_id, nama, harga, satuan, foto_url, deskripsi, published, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		produkArgs(p)...,
	)
	if err != nil {
		if store.IsUniqueViolation(err) {
			return ErrAlreadyExists
		}
		return fmt.Errorf("create produk: %w", err)
	}
	return nil
}

func (r *SQLProdukRepository) Update(ctx context.Context, p *models.Produk) error {
	if err := ValidateProduk(p); err != nil {
		return err
	}
	p.UpdatedAt = r.now().UTC()
	args := produkArgs(p)
	res, err := r.db.ExecContext(ctx, `
		UPDATE produk SET umkm_id = ?, nama = ?, harga = ?, satuan = ?, foto_url = ?,
			deskripsi = ?, published = ?, updated_at = ?
		WHERE id = ?`,
		append(args[1:], p.ID)...,
	)
	if err != nil {
		return fmt.Errorf("update produk %q: %w", p.ID, err)
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *SQLProdukRepository) Save(ctx context.Context, p *models.Produk) error {
	if err := ValidateProduk(p); err != nil {
		return err
	}
	p.UpdatedAt = r.now().UTC()
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO produk (id, umkm_id, nama, harga, satuan, foto_url, deskripsi, published, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET
			umkm_id = excluded.umkm_id, nama = excluded.nama, harga = excluded.harga,
			satuan = excluded.satuan, foto_url = excluded.foto_url,
			deskripsi = excluded.deskripsi, published = excluded.published,
			updated_at = excluded.updated_at`,
		produkArgs(p)...,
	)
	if err != nil {
		return fmt.Errorf("save produk %q: %w", p.ID, err)
	}
	return nil
}

func (r *SQLProdukRepository) SetPublished(ctx context.Context, id string, published bool) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE produk SET published = ?, updated_at = ? WHERE id = ?`,
		published, r.now().UTC(), id,
	)
	if err != nil {
		return fmt.Errorf("set produk %q published: %w", id, err)
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *SQLProdukRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM produk WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete produk %q: %w", id, err)
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *SQLProdukRepository) Count(ctx context.Context) (Counts, error) {
	return countTable(ctx, r.db, "produk")
}

func produkArgs(p *models.Produk) []any {
	harga := p.Harga
	if harga < 0 {
		harga = 0
	}
	return []any{
		p.ID, p.UmkmID, p.Nama, harga, p.Satuan, p.FotoURL, p.Deskripsi, p.Published, p.UpdatedAt,
	}
}

func scanProduk(sc scanner, p *models.Produk) error {
	var (
		updatedAt sql.NullTime
		u         models.Umkm
		row       umkmRow
	)
	dest := append([]any{&p.ID, &p.UmkmID, &p.Nama, &p.Harga, &p.Satuan, &p.FotoURL, &p.Deskripsi,
		&p.Published, &updatedAt}, row.dest(&u)...)
	if err := sc.Scan(dest...); err != nil {
		return err
	}
	if updatedAt.Valid {
		p.UpdatedAt = updatedAt.Time
	}
	if p.Harga < 0 {
		p.Harga = 0
	}
	if u.ID == "" {
		p.Umkm = models.UnknownUmkm(p.UmkmID)
		return nil
	}
	row.apply(&u)
	p.Umkm = u
	return nil
}
