package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ngipak/infodesa/internal/store"
	"github.com/ngipak/infodesa/pkg/fixtures"
)

// SeedReport counts the records written by Seed.
type SeedReport struct {
	Dusun     int `json:"dusun"`
	Umkm      int `json:"umkm"`
	Produk    int `json:"produk"`
	Isu       int `json:"isu"`
	Statistik int `json:"statistik"`
	Kader     int `json:"kader"`
	Jadwal    int `json:"jadwal"`
	Settings  int `json:"settings"`
}

// Seed writes demo content into s. Records are matched by ID, so running it
// twice leaves one copy of everything.
func Seed(ctx context.Context, s *store.Store, d *fixtures.Data) (SeedReport, error) {
	var rep SeedReport
	if err := MigrateAll(ctx, s); err != nil {
		return rep, err
	}

	dusun := &SQLDusunRepository{db: s}
	for _, du := range d.Dusun {
		if err := dusun.Save(ctx, &du); err != nil {
			return rep, fmt.Errorf("seed dusun %s: %w", du.ID, err)
		}
		rep.Dusun++
	}

	umkm := &SQLUmkmRepository{db: s}
	for _, u := range d.Umkm {
		if err := umkm.Save(ctx, &u); err != nil {
			return rep, fmt.Errorf("seed umkm %s: %w", u.ID, err)
		}
		rep.Umkm++
	}

	produk := &SQLProdukRepository{db: s, now: time.Now}
	for _, p := range d.Produk {
		if err := produk.Save(ctx, &p); err != nil {
			return rep, fmt.Errorf("seed produk %s: %w", p.ID, err)
		}
		rep.Produk++
	}

	isu := &SQLIsuRepository{db: s}
	for _, i := range d.Kesehatan.Isu {
		if err := isu.Save(ctx, &i); err != nil {
			return rep, fmt.Errorf("seed isu %s: %w", i.ID, err)
		}
		rep.Isu++
	}

	stat := &SQLStatRepository{db: s}
	for _, st := range d.Kesehatan.Statistik {
		if err := stat.Save(ctx, &st); err != nil {
			return rep, fmt.Errorf("seed statistik %s: %w", st.Bulan, err)
		}
		rep.Statistik++
	}

	kader := &SQLKaderRepository{db: s}
	for _, k := range d.Kesehatan.Kader {
		if err := upsert(ctx, &k, kader.Update, kader.Create); err != nil {
			return rep, fmt.Errorf("seed kader %s: %w", k.ID, err)
		}
		rep.Kader++
	}

	jadwal, err := NewJadwalRepository(ctx, s)
	if err != nil {
		return rep, err
	}
	for _, j := range d.Kesehatan.Jadwal {
		if err := upsert(ctx, &j, jadwal.Update, jadwal.Create); err != nil {
			return rep, fmt.Errorf("seed jadwal %s: %w", j.ID, err)
		}
		rep.Jadwal++
	}

	meta := &SQLMetaRepository{db: s, now: time.Now}
	if err := meta.Save(ctx, &d.Kesehatan.Meta); err != nil {
		return rep, fmt.Errorf("seed kesehatan meta: %w", err)
	}

	settings := &SQLSettingsRepository{db: s}
	for k, v := range d.Settings {
		if err := settings.Set(ctx, k, v); err != nil {
			return rep, fmt.Errorf("seed setting %s: %w", k, err)
		}
		rep.Settings++
	}
	return rep, nil
}

func upsert[T any](ctx context.Context, v *T, update, create func(context.Context, *T) error) error {
	err := update(ctx, v)
	if errors.Is(err, ErrNotFound) {
		return create(ctx, v)
	}
	return err
}
