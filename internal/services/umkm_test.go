package services_test

import (
	"context"
	"errors"
	"testing"

	"github.com/ngipak/infodesa/internal/services"
	"github.com/ngipak/infodesa/internal/store"
	"github.com/ngipak/infodesa/internal/testutil"
	"github.com/ngipak/infodesa/pkg/models"
)

type catalogRepos struct {
	store  *store.Store
	dusun  *services.SQLDusunRepository
	umkm   *services.SQLUmkmRepository
	produk *services.SQLProdukRepository
}

func newCatalogRepos(t *testing.T) catalogRepos {
	t.Helper()
	ctx := context.Background()
	s := testutil.NewStore(t)

	dusun, err := services.NewDusunRepository(ctx, s)
	if err != nil {
		t.Fatalf("NewDusunRepository: %v", err)
	}
	umkm, err := services.NewUmkmRepository(ctx, s)
	if err != nil {
		t.Fatalf("NewUmkmRepository: %v", err)
	}
	produk, err := services.NewProdukRepository(ctx, s)
	if err != nil {
		t.Fatalf("NewProdukRepository: %v", err)
	}
	for _, d := range []models.Dusun{
		testutil.NewDusun("d1", "Kalangan 1"),
		testutil.NewDusun("d3", "Ngipak"),
	} {
		if err := dusun.Save(ctx, &d); err != nil {
			t.Fatalf("Save dusun: %v", err)
		}
	}
	return catalogRepos{store: s, dusun: dusun, umkm: umkm, produk: produk}
}

func TestUmkm_CreateAndGet(t *testing.T) {
	r := newCatalogRepos(t)
	ctx := context.Background()

	u := testutil.NewUmkm(
		testutil.WithUmkmID("U Ngipak Keripik"),
		testutil.WithGaleri("a.jpg", "", "b.jpg"),
		testutil.WithUnggulan("p-terong"),
	)
	if err := r.umkm.Create(ctx, &u); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if u.ID != "u-ngipak-keripik" {
		t.Errorf("ID = %q, want normalized slug", u.ID)
	}

	got, err := r.umkm.Get(ctx, u.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.Dusun.Nama != "Ngipak" {
		t.Errorf("Dusun.Nama = %q, want Ngipak", got.Dusun.Nama)
	}
	if len(got.GaleriFoto) != 2 {
		t.Errorf("GaleriFoto = %v, want blank entries dropped", got.GaleriFoto)
	}
	if len(got.ProdukUnggulanIDs) != 1 || got.ProdukUnggulanIDs[0] != "p-terong" {
		t.Errorf("ProdukUnggulanIDs = %v", got.ProdukUnggulanIDs)
	}
	if !got.Published {
		t.Error("Published = false, want true")
	}
}

func TestUmkm_CreateDuplicate(t *testing.T) {
	r := newCatalogRepos(t)
	ctx := context.Background()

	u := testutil.NewUmkm()
	if err := r.umkm.Create(ctx, &u); err != nil {
		t.Fatalf("Create: %v", err)
	}
	dup := testutil.NewUmkm()
	if err := r.umkm.Create(ctx, &dup); !errors.Is(err, services.ErrAlreadyExists) {
		t.Errorf("Create duplicate error = %v, want ErrAlreadyExists", err)
	}
}

func TestUmkm_Validation(t *testing.T) {
	r := newCatalogRepos(t)
	ctx := context.Background()

	tests := []struct {
		name  string
		opt   func(*models.Umkm)
		field string
	}{
		{"short id", func(u *models.Umkm) { u.ID = "x" }, "id"},
		{"short name", func(u *models.Umkm) { u.Nama = " A " }, "nama"},
		{"no dusun", func(u *models.Umkm) { u.DusunID = "" }, "dusun_id"},
		{"bad kategori", func(u *models.Umkm) { u.Kategori = "elektronik" }, "kategori"},
		{"short phone", func(u *models.Umkm) { u.NoWA = "0812" }, "no_wa"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			u := testutil.NewUmkm(tt.opt)
			err := r.umkm.Create(ctx, &u)
			var ve *services.ValidationError
			if !errors.As(err, &ve) {
				t.Fatalf("Create error = %v, want ValidationError", err)
			}
			if ve.Field != tt.field {
				t.Errorf("Field = %q, want %q", ve.Field, tt.field)
			}
			if !errors.Is(err, services.ErrInvalid) {
				t.Error("ValidationError should match ErrInvalid")
			}
		})
	}
}

func TestUmkm_ListPublishedOnly(t *testing.T) {
	r := newCatalogRepos(t)
	ctx := context.Background()

	pub := testutil.NewUmkm(testutil.WithUmkmID("u-a"), testutil.WithUmkmNama("Alpha"))
	draft := testutil.NewUmkm(testutil.WithUmkmID("u-b"), testutil.WithUmkmNama("Beta"),
		testutil.WithUmkmPublished(false))
	for _, u := range []*models.Umkm{&pub, &draft} {
		if err := r.umkm.Create(ctx, u); err != nil {
			t.Fatalf("Create: %v", err)
		}
	}

	all, err := r.umkm.List(ctx, false)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(all) != 2 {
		t.Errorf("List(all) len = %d, want 2", len(all))
	}

	published, err := r.umkm.List(ctx, true)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(published) != 1 || published[0].ID != "u-a" {
		t.Errorf("List(published) = %v, want [u-a]", published)
	}

	c, err := r.umkm.Count(ctx)
	if err != nil {
		t.Fatalf("Count: %v", err)
	}
	if c.Total != 2 || c.Published != 1 {
		t.Errorf("Count = %+v, want {2 1}", c)
	}
}

func TestUmkm_MissingDusunResolvesToPlaceholder(t *testing.T) {
	r := newCatalogRepos(t)
	ctx := context.Background()

	u := testutil.NewUmkm(testutil.WithDusun(models.Dusun{ID: "d-gone"}))
	if err := r.umkm.Create(ctx, &u); err != nil {
		t.Fatalf("Create: %v", err)
	}
	got, err := r.umkm.Get(ctx, u.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.Dusun.Nama != "Dusun tidak ditemukan" || got.Dusun.Slug != "unknown" {
		t.Errorf("Dusun = %+v, want placeholder", got.Dusun)
	}
	if got.Dusun.ID != "d-gone" {
		t.Errorf("Dusun.ID = %q, want the dangling reference", got.Dusun.ID)
	}
}

func TestUmkm_UpdateSaveAndPublish(t *testing.T) {
	r := newCatalogRepos(t)
	ctx := context.Background()

	u := testutil.NewUmkm()
	if err := r.umkm.Update(ctx, &u); !errors.Is(err, services.ErrNotFound) {
		t.Fatalf("Update missing error = %v, want ErrNotFound", err)
	}
	if err := r.umkm.Save(ctx, &u); err != nil {
		t.Fatalf("Save (insert): %v", err)
	}
	u.Nama = "Nama Baru"
	if err := r.umkm.Save(ctx, &u); err != nil {
		t.Fatalf("Save (update): %v", err)
	}
	if err := r.umkm.SetPublished(ctx, u.ID, false); err != nil {
		t.Fatalf("SetPublished: %v", err)
	}

	got, err := r.umkm.Get(ctx, u.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.Nama != "Nama Baru" || got.Published {
		t.Errorf("got = %+v", got)
	}

	if err := r.umkm.SetPublished(ctx, "nope", true); !errors.Is(err, services.ErrNotFound) {
		t.Errorf("SetPublished missing error = %v, want ErrNotFound", err)
	}
}

func TestUmkm_DeleteRemovesProducts(t *testing.T) {
	r := newCatalogRepos(t)
	ctx := context.Background()

	u := testutil.NewUmkm()
	if err := r.umkm.Create(ctx, &u); err != nil {
		t.Fatalf("Create: %v", err)
	}
	p := testutil.NewProduk("p-1", u)
	if err := r.produk.Create(ctx, &p); err != nil {
		t.Fatalf("Create produk: %v", err)
	}

	if err := r.umkm.Delete(ctx, u.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := r.produk.Get(ctx, "p-1"); !errors.Is(err, services.ErrNotFound) {
		t.Errorf("produk after vendor delete error = %v, want ErrNotFound", err)
	}
	if err := r.umkm.Delete(ctx, u.ID); !errors.Is(err, services.ErrNotFound) {
		t.Errorf("second Delete error = %v, want ErrNotFound", err)
	}
}
