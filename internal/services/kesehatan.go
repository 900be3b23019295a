package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/ngipak/infodesa/internal/store"
	"github.com/ngipak/infodesa/pkg/models"
)

// urutanMissing sorts issues without an explicit order after all others.
const urutanMissing = 999999

func migrateKesehatan(ctx context.Context, s *store.Store) error {
	if err := s.Migrate(ctx, OwnerCore, coreMigrations); err != nil {
		return fmt.Errorf("core migrations: %w", err)
	}
	if err := s.Migrate(ctx, OwnerKesehatan, kesehatanMigrations); err != nil {
		return fmt.Errorf("kesehatan migrations: %w", err)
	}
	return nil
}

// IsuRepository provides access to health issues.
type IsuRepository interface {
	// List returns issues ordered by urutan, unordered ones last.
	List(ctx context.Context, publishedOnly bool) ([]models.IsuKesehatan, error)
	Get(ctx context.Context, id string) (*models.IsuKesehatan, error)
	// Save creates or replaces an issue by ID.
	Save(ctx context.Context, i *models.IsuKesehatan) error
	SetPublished(ctx context.Context, id string, published bool) error
	Delete(ctx context.Context, id string) error
	Count(ctx context.Context) (Counts, error)
}

// Compile-time interface guard.
var _ IsuRepository = (*SQLIsuRepository)(nil)

// SQLIsuRepository implements IsuRepository.
type SQLIsuRepository struct {
	db *store.Store
}

// NewIsuRepository creates an IsuRepository and runs the kesehatan
// migrations.
func NewIsuRepository(ctx context.Context, s *store.Store) (*SQLIsuRepository, error) {
	if err := migrateKesehatan(ctx, s); err != nil {
		return nil, err
	}
	return &SQLIsuRepository{db: s}, nil
}

const isuColumns = `id, judul, ringkas, prioritas, dampak, upaya_desa, aksi_warga, urutan, published`

func (r *SQLIsuRepository) List(ctx context.Context, publishedOnly bool) ([]models.IsuKesehatan, error) {
	q := `SELECT ` + isuColumns + ` FROM kesehatan_isu`
	var args []any
	if publishedOnly {
		q += ` WHERE published = ?`
		args = append(args, true)
	}
	q += ` ORDER BY COALESCE(urutan, ?), judul`
	args = append(args, urutanMissing)

	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("list isu: %w", err)
	}
	defer rows.Close()

	out := []models.IsuKesehatan{}
	for rows.Next() {
		var i models.IsuKesehatan
		if err := scanIsu(rows, &i); err != nil {
			return nil, fmt.Errorf("scan isu row: %w", err)
		}
		out = append(out, i)
	}
	return out, rows.Err()
}

func (r *SQLIsuRepository) Get(ctx context.Context, id string) (*models.IsuKesehatan, error) {
	var i models.IsuKesehatan
	err := scanIsu(r.db.QueryRowContext(ctx,
		`SELECT `+isuColumns+` FROM kesehatan_isu WHERE id = ?`, id), &i)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get isu %q: %w", id, err)
	}
	return &i, nil
}

func (r *SQLIsuRepository) Save(ctx context.Context, i *models.IsuKesehatan) error {
	if err := ValidateIsu(i); err != nil {
		return err
	}
	var urutan sql.NullInt64
	if i.Urutan != nil {
		urutan = sql.NullInt64{Int64: int64(*i.Urutan), Valid: true}
	}
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO kesehatan_isu (id, judul, ringkas, prioritas, dampak, upaya_desa, aksi_warga,
			urutan, published, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET
			judul = excluded.judul, ringkas = excluded.ringkas, prioritas = excluded.prioritas,
			dampak = excluded.dampak, upaya_desa = excluded.upaya_desa,
			aksi_warga = excluded.aksi_warga, urutan = excluded.urutan,
			published = excluded.published, updated_at = excluded.updated_at`,
		i.ID, i.Judul, i.Ringkas, string(i.Prioritas), encodeList(i.Dampak),
		encodeList(i.UpayaDesa), encodeList(i.AksiWarga), urutan, i.Published, time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("save isu %q: %w", i.ID, err)
	}
	i.Saran = saranOf(i)
	return nil
}

func (r *SQLIsuRepository) SetPublished(ctx context.Context, id string, published bool) error {
	return setPublished(ctx, r.db, "kesehatan_isu", "id", id, published)
}

func (r *SQLIsuRepository) Delete(ctx context.Context, id string) error {
	return deleteRow(ctx, r.db, "kesehatan_isu", "id", id)
}

func (r *SQLIsuRepository) Count(ctx context.Context) (Counts, error) {
	return countTable(ctx, r.db, "kesehatan_isu")
}

func scanIsu(sc scanner, i *models.IsuKesehatan) error {
	var (
		prioritas           string
		dampak, upaya, aksi string
		urutan              sql.NullInt64
	)
	if err := sc.Scan(&i.ID, &i.Judul, &i.Ringkas, &prioritas, &dampak, &upaya, &aksi,
		&urutan, &i.Published); err != nil {
		return err
	}
	i.Prioritas = NormalizePrioritas(models.Prioritas(prioritas))
	i.Dampak = decodeList(dampak)
	i.UpayaDesa = decodeList(upaya)
	i.AksiWarga = decodeList(aksi)
	if urutan.Valid {
		n := int(urutan.Int64)
		i.Urutan = &n
	}
	i.Saran = saranOf(i)
	return nil
}

// saranOf is the legacy single advice list: the first non-empty of
// aksi_warga, upaya_desa and dampak.
func saranOf(i *models.IsuKesehatan) []string {
	for _, l := range [][]string{i.AksiWarga, i.UpayaDesa, i.Dampak} {
		if len(l) > 0 {
			return l
		}
	}
	return nil
}

// StatRepository provides access to monthly case statistics.
type StatRepository interface {
	// List returns months in ascending order.
	List(ctx context.Context, publishedOnly bool) ([]models.StatistikBulanan, error)
	// Save creates or replaces the statistic of a month.
	Save(ctx context.Context, s *models.StatistikBulanan) error
	SetPublished(ctx context.Context, bulan string, published bool) error
	Delete(ctx context.Context, bulan string) error
	Count(ctx context.Context) (Counts, error)
}

// Compile-time interface guard.
var _ StatRepository = (*SQLStatRepository)(nil)

// SQLStatRepository implements StatRepository.
type SQLStatRepository struct {
	db *store.Store
}

// NewStatRepository creates a StatRepository and runs the kesehatan
// migrations.
func NewStatRepository(ctx context.Context, s *store.Store) (*SQLStatRepository, error) {
	if err := migrateKesehatan(ctx, s); err != nil {
		return nil, err
	}
	return &SQLStatRepository{db: s}, nil
}

func (r *SQLStatRepository) List(ctx context.Context, publishedOnly bool) ([]models.StatistikBulanan, error) {
	q := `SELECT bulan, stunting, hipertensi, published FROM kesehatan_stat_bulanan`
	var args []any
	if publishedOnly {
		q += ` WHERE published = ?`
		args = append(args, true)
	}
	q += ` ORDER BY bulan`

	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("list statistik: %w", err)
	}
	defer rows.Close()

	out := []models.StatistikBulanan{}
	for rows.Next() {
		var s models.StatistikBulanan
		if err := rows.Scan(&s.Bulan, &s.Stunting, &s.Hipertensi, &s.Published); err != nil {
			return nil, fmt.Errorf("scan statistik row: %w", err)
		}
		s.Bulan = MonthOf(s.Bulan)
		out = append(out, s)
	}
	return out, rows.Err()
}

func (r *SQLStatRepository) Save(ctx context.Context, s *models.StatistikBulanan) error {
	if err := ValidateStat(s); err != nil {
		return err
	}
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO kesehatan_stat_bulanan (bulan, stunting, hipertensi, published, updated_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT (bulan) DO UPDATE SET
			stunting = excluded.stunting, hipertensi = excluded.hipertensi,
			published = excluded.published, updated_at = excluded.updated_at`,
		s.Bulan, s.Stunting, s.Hipertensi, s.Published, time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("save statistik %q: %w", s.Bulan, err)
	}
	return nil
}

func (r *SQLStatRepository) SetPublished(ctx context.Context, bulan string, published bool) error {
	return setPublished(ctx, r.db, "kesehatan_stat_bulanan", "bulan", bulan, published)
}

func (r *SQLStatRepository) Delete(ctx context.Context, bulan string) error {
	return deleteRow(ctx, r.db, "kesehatan_stat_bulanan", "bulan", bulan)
}

func (r *SQLStatRepository) Count(ctx context.Context) (Counts, error) {
	return countTable(ctx, r.db, "kesehatan_stat_bulanan")
}

// setPublished flips the published flag of one row. table and key are
// always package constants.
func setPublished(ctx context.Context, db *store.Store, table, key, id string, published bool) error {
	res, err := db.ExecContext(ctx,
		`UPDATE `+table+` SET published = ?, updated_at = ? WHERE `+key+` = ?`,
		published, time.Now().UTC(), id,
	)
	if err != nil {
		return fmt.Errorf("set %s %q published: %w", table, id, err)
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func deleteRow(ctx context.Context, db *store.Store, table, key, id string) error {
	res, err := db.ExecContext(ctx, `DELETE FROM `+table+` WHERE `+key+` = ?`, id)
	if err != nil {
		return fmt.Errorf("delete %s %q: %w", table, id, err)
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
