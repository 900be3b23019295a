package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/ngipak/infodesa/internal/store"
	"github.com/ngipak/infodesa/pkg/models"
	"github.com/ngipak/infodesa/pkg/slug"
)

// UmkmRepository provides access to UMKM listings.
type UmkmRepository interface {
	// List returns listings ordered by name. Drafts are included unless
	// publishedOnly is set.
	List(ctx context.Context, publishedOnly bool) ([]models.Umkm, error)

	// Get returns a single listing by ID, drafts included.
	Get(ctx context.Context, id string) (*models.Umkm, error)

	// Create inserts a new listing. The ID must be unused.
	Create(ctx context.Context, u *models.Umkm) error

	// Update replaces an existing listing.
	Update(ctx context.Context, u *models.Umkm) error

	// Save creates or replaces a listing by ID.
	Save(ctx context.Context, u *models.Umkm) error

	// SetPublished changes only the published flag.
	SetPublished(ctx context.Context, id string, published bool) error

	// Delete removes a listing together with its products.
	Delete(ctx context.Context, id string) error

	// Count returns total and published listing counts.
	Count(ctx context.Context) (Counts, error)
}

// Compile-time interface guard.
var _ UmkmRepository = (*SQLUmkmRepository)(nil)

// SQLUmkmRepository implements UmkmRepository.
type SQLUmkmRepository struct {
	db *store.Store
}

// NewUmkmRepository creates a UmkmRepository and runs the umkm migrations.
func NewUmkmRepository(ctx context.Context, s *store.Store) (*SQLUmkmRepository, error) {
	if err := s.Migrate(ctx, OwnerCore, coreMigrations); err != nil {
		return nil, fmt.Errorf("core migrations: %w", err)
	}
	if err := s.Migrate(ctx, OwnerUmkm, umkmMigrations); err != nil {
		return nil, fmt.Errorf("umkm migrations: %w", err)
	}
	return &SQLUmkmRepository{db: s}, nil
}

// umkmColumns selects a listing with its region. Every column tolerates a
// missing umkm row so the list can be reused by LEFT JOINs from produk.
const umkmColumns = `COALESCE(u.id, ''), COALESCE(u.nama, ''), COALESCE(u.kategori, ''),
	COALESCE(u.no_wa, ''), COALESCE(u.dusun_id, ''), d.id, COALESCE(d.nama, ''), COALESCE(d.slug, ''),
	COALESCE(u.alamat, ''), COALESCE(u.tentang, ''), COALESCE(u.jam_buka, ''), COALESCE(u.maps_url, ''),
	COALESCE(u.pembayaran, '[]'), COALESCE(u.galeri_foto, '[]'), COALESCE(u.produk_unggulan_ids, '[]'),
	COALESCE(u.layanan, '[]'), COALESCE(u.estimasi, ''), COALESCE(u.published, FALSE), u.updated_at`

const umkmFrom = ` FROM umkm u LEFT JOIN dusun d ON d.id = u.dusun_id`

func (r *SQLUmkmRepository) List(ctx context.Context, publishedOnly bool) ([]models.Umkm, error) {
	q := `SELECT ` + umkmColumns + umkmFrom
	var args []any
	if publishedOnly {
		q += ` WHERE u.published = ?`
		args = append(args, true)
	}
	q += ` ORDER BY u.nama, u.id`

	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("list umkm: %w", err)
	}
	defer rows.Close()

	out := []models.Umkm{}
	for rows.Next() {
		var u models.Umkm
		if err := scanUmkm(rows, &u); err != nil {
			return nil, fmt.Errorf("scan umkm row: %w", err)
		}
		out = append(out, u)
	}
	return out, rows.Err()
}

func (r *SQLUmkmRepository) Get(ctx context.Context, id string) (*models.Umkm, error) {
	var u models.Umkm
	err := scanUmkm(r.db.QueryRowContext(ctx,
		`SELECT `+umkmColumns+umkmFrom+` WHERE u.id = ?`, id), &u)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get umkm %q: %w", id, err)
	}
	return &u, nil
}

func (r *SQLUmkmRepository) Create(ctx context.Context, u *models.Umkm) error {
	if err := ValidateUmkm(u); err != nil {
		return err
	}
	u.UpdatedAt = time.Now().UTC()
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO umkm (id, nama, kategori, no_wa, dusun_id, alamat, tentang, jam_buka,
			maps_url, pembayaran, galeri_foto, produk_unggulan_ids, layanan, estimasi,
			published, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		umkmArgs(u)...,
	)
	if err != nil {
		if store.IsUniqueViolation(err) {
			return ErrAlreadyExists
		}
		return fmt.Errorf("create umkm: %w", err)
	}
	return nil
}

func (r *SQLUmkmRepository) Update(ctx context.Context, u *models.Umkm) error {
	if err := ValidateUmkm(u); err != nil {
		return err
	}
	u.UpdatedAt = time.Now().UTC()
	args := umkmArgs(u)
	res, err := r.db.ExecContext(ctx, `
		UPDATE umkm SET nama = ?, kategori = ?, no_wa = ?, dusun_id = ?, alamat = ?,
			tentang = ?, jam_buka = ?, maps_url = ?, pembayaran = ?, galeri_foto = ?,
			produk_unggulan_ids = ?, layanan = ?, estimasi = ?, published = ?, updated_at = ?
		WHERE id = ?`,
		append(args[1:], u.ID)...,
	)
	if err != nil {
		return fmt.Errorf("update umkm %q: %w", u.ID, err)
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *SQLUmkmRepository) Save(ctx context.Context, u *models.Umkm) error {
	if err := ValidateUmkm(u); err != nil {
		return err
	}
	u.UpdatedAt = time.Now().UTC()
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO umkm (id, nama, kategori, no_wa, dusun_id, alamat, tentang, jam_buka,
			maps_url, pembayaran, galeri_foto, produk_unggulan_ids, layanan, estimasi,
			published, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET
			nama = excluded.nama, kategori = excluded.kategori, no_wa = excluded.no_wa,
			dusun_id = excluded.dusun_id, alamat = excluded.alamat, tentang = excluded.tentang,
			jam_buka = excluded.jam_buka, maps_url = excluded.maps_url,
			pembayaran = excluded.pembayaran, galeri_foto = excluded.galeri_foto,
			produk_unggulan_ids = excluded.produk_unggulan_ids, layanan = excluded.layanan,
			estimasi = excluded.estimasi, published = excluded.published,
			updated_at = excluded.updated_at`,
		umkmArgs(u)...,
	)
	if err != nil {
		return fmt.Errorf("save umkm %q: %w", u.ID, err)
	}
	return nil
}

func (r *SQLUmkmRepository) SetPublished(ctx context.Context, id string, published bool) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE umkm SET published = ?, updated_at = ? WHERE id = ?`,
		published, time.Now().UTC(), id,
	)
	if err != nil {
		return fmt.Errorf("set umkm %q published: %w", id, err)
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *SQLUmkmRepository) Delete(ctx context.Context, id string) error {
	return r.db.Tx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, r.db.Rebind(`DELETE FROM produk WHERE umkm_id = ?`), id); err != nil {
			return fmt.Errorf("delete produk of umkm %q: %w", id, err)
		}
		res, err := tx.ExecContext(ctx, r.db.Rebind(`DELETE FROM umkm WHERE id = ?`), id)
		if err != nil {
			return fmt.Errorf("delete umkm %q: %w", id, err)
		}
		n, _ := res.RowsAffected()
		if n == 0 {
			return ErrNotFound
		}
		return nil
	})
}

func (r *SQLUmkmRepository) Count(ctx context.Context) (Counts, error) {
	return countTable(ctx, r.db, "umkm")
}

func umkmArgs(u *models.Umkm) []any {
	return []any{
		u.ID, u.Nama, string(u.Kategori), u.NoWA, u.DusunID, u.Alamat, u.Tentang, u.JamBuka,
		u.MapsURL, encodeList(u.Pembayaran), encodeList(u.GaleriFoto),
		encodeList(u.ProdukUnggulanIDs), encodeList(u.Layanan), u.Estimasi,
		u.Published, u.UpdatedAt,
	}
}

func scanUmkm(sc scanner, u *models.Umkm) error {
	var row umkmRow
	if err := sc.Scan(row.dest(u)...); err != nil {
		return err
	}
	row.apply(u)
	return nil
}

// umkmRow holds the raw values of umkmColumns that need decoding.
type umkmRow struct {
	kategori                              string
	dusunID                               sql.NullString
	dusunNama, dusunSlug                  string
	pembayaran, galeri, unggulan, layanan string
	updatedAt                             sql.NullTime
}

func (r *umkmRow) dest(u *models.Umkm) []any {
	return []any{&u.ID, &u.Nama, &r.kategori, &u.NoWA, &u.DusunID, &r.dusunID, &r.dusunNama, &r.dusunSlug,
		&u.Alamat, &u.Tentang, &u.JamBuka, &u.MapsURL,
		&r.pembayaran, &r.galeri, &r.unggulan, &r.layanan, &u.Estimasi, &u.Published, &r.updatedAt}
}

func (r *umkmRow) apply(u *models.Umkm) {
	u.Kategori = models.Kategori(r.kategori)
	u.Dusun = dusunOf(u.DusunID, r.dusunID, r.dusunNama, r.dusunSlug)
	u.Pembayaran = decodeList(r.pembayaran)
	u.GaleriFoto = decodeList(r.galeri)
	u.ProdukUnggulanIDs = decodeList(r.unggulan)
	u.Layanan = decodeList(r.layanan)
	if r.updatedAt.Valid {
		u.UpdatedAt = r.updatedAt.Time
	}
}

// countTable counts all and published rows of a table with a published
// column. table is always a package constant.
func countTable(ctx context.Context, db *store.Store, table string) (Counts, error) {
	var c Counts
	err := db.QueryRowContext(ctx,
		`SELECT COUNT(*), COALESCE(SUM(CASE WHEN published = ? THEN 1 ELSE 0 END), 0) FROM `+table,
		true,
	).Scan(&c.Total, &c.Published)
	if err != nil {
		return Counts{}, fmt.Errorf("count %s: %w", table, err)
	}
	return c, nil
}

// NormalizeID turns a human-entered identifier into a slug.
func NormalizeID(raw string) string {
	return slug.Make(raw)
}
