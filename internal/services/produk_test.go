package services_test

import (
	"context"
	"errors"
	"math"
	"strings"
	"testing"

	"github.com/ngipak/infodesa/internal/services"
	"github.com/ngipak/infodesa/internal/testutil"
	"github.com/ngipak/infodesa/pkg/models"
)

func TestProduk_ListPublishedRequiresPublishedVendor(t *testing.T) {
	r := newCatalogRepos(t)
	ctx := context.Background()

	open := testutil.NewUmkm(testutil.WithUmkmID("u-open"))
	hidden := testutil.NewUmkm(testutil.WithUmkmID("u-hidden"), testutil.WithUmkmPublished(false))
	for _, u := range []*models.Umkm{&open, &hidden} {
		if err := r.umkm.Create(ctx, u); err != nil {
			t.Fatalf("Create umkm: %v", err)
		}
	}
	items := []models.Produk{
		testutil.NewProduk("p-a", open, testutil.WithProdukNama("Alpha")),
		testutil.NewProduk("p-b", open, testutil.WithProdukNama("Beta"), testutil.WithProdukPublished(false)),
		testutil.NewProduk("p-c", hidden, testutil.WithProdukNama("Gamma")),
	}
	for i := range items {
		if err := r.produk.Create(ctx, &items[i]); err != nil {
			t.Fatalf("Create produk: %v", err)
		}
	}

	got, err := r.produk.List(ctx, services.ProdukQuery{PublishedOnly: true})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(got) != 1 || got[0].ID != "p-a" {
		t.Fatalf("List(published) = %v, want [p-a]", got)
	}
	if got[0].Umkm.ID != "u-open" || got[0].Umkm.Dusun.Nama != "Ngipak" {
		t.Errorf("vendor not resolved: %+v", got[0].Umkm)
	}

	byVendor, err := r.produk.List(ctx, services.ProdukQuery{UmkmID: "u-open"})
	if err != nil {
		t.Fatalf("List by vendor: %v", err)
	}
	if len(byVendor) != 2 {
		t.Errorf("List(u-open) len = %d, want 2", len(byVendor))
	}
}

func TestProduk_OrphanResolvesToPlaceholder(t *testing.T) {
	r := newCatalogRepos(t)
	ctx := context.Background()

	p := testutil.NewProduk("p-orphan", testutil.NewUmkm(testutil.WithUmkmID("u-gone")))
	if err := r.produk.Create(ctx, &p); err != nil {
		t.Fatalf("Create: %v", err)
	}
	got, err := r.produk.Get(ctx, "p-orphan")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.Umkm.Nama != "UMKM tidak ditemukan" || got.Umkm.ID != "u-gone" {
		t.Errorf("Umkm = %+v, want placeholder", got.Umkm)
	}
	if got.Umkm.Dusun.Nama != "Dusun tidak ditemukan" {
		t.Errorf("Umkm.Dusun = %+v, want placeholder", got.Umkm.Dusun)
	}
}

func TestProduk_CreateDerivesIDAndClampsPrice(t *testing.T) {
	r := newCatalogRepos(t)
	ctx := context.Background()

	u := testutil.NewUmkm()
	if err := r.umkm.Create(ctx, &u); err != nil {
		t.Fatalf("Create umkm: %v", err)
	}
	p := testutil.NewProduk("", u, testutil.WithProdukNama("Keripik Terong"), testutil.WithHarga(-500))
	if err := r.produk.Create(ctx, &p); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if !strings.HasPrefix(p.ID, "keripik-terong-") {
		t.Errorf("ID = %q, want keripik-terong-<millis>", p.ID)
	}
	got, err := r.produk.Get(ctx, p.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.Harga != 0 {
		t.Errorf("Harga = %d, want 0", got.Harga)
	}
}

func TestProduk_Validation(t *testing.T) {
	r := newCatalogRepos(t)
	ctx := context.Background()
	u := testutil.NewUmkm()

	short := testutil.NewProduk("p-x", u, testutil.WithProdukNama("A"))
	if err := r.produk.Create(ctx, &short); !errors.Is(err, services.ErrInvalid) {
		t.Errorf("short name error = %v, want ErrInvalid", err)
	}
	noPhoto := testutil.NewProduk("p-y", u, testutil.WithFoto("x.jpg"))
	if err := r.produk.Create(ctx, &noPhoto); !errors.Is(err, services.ErrInvalid) {
		t.Errorf("short photo error = %v, want ErrInvalid", err)
	}
}

func TestProduk_UpdatePublishDelete(t *testing.T) {
	r := newCatalogRepos(t)
	ctx := context.Background()

	u := testutil.NewUmkm()
	p := testutil.NewProduk("p-1", u)
	if err := r.produk.Create(ctx, &p); err != nil {
		t.Fatalf("Create: %v", err)
	}
	p.Harga = 20000
	if err := r.produk.Update(ctx, &p); err != nil {
		t.Fatalf("Update: %v", err)
	}
	if err := r.produk.SetPublished(ctx, "p-1", false); err != nil {
		t.Fatalf("SetPublished: %v", err)
	}
	got, err := r.produk.Get(ctx, "p-1")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.Harga != 20000 || got.Published {
		t.Errorf("got = %+v", got)
	}
	if err := r.produk.Delete(ctx, "p-1"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if err := r.produk.Delete(ctx, "p-1"); !errors.Is(err, services.ErrNotFound) {
		t.Errorf("second Delete = %v, want ErrNotFound", err)
	}
}

func TestCoercePrice(t *testing.T) {
	tests := []struct {
		in   float64
		want int64
	}{
		{15000, 15000},
		{12.9, 12},
		{-1, 0},
		{math.NaN(), 0},
		{math.Inf(1), 0},
		{1e19, math.MaxInt64},
		{math.MaxFloat64, math.MaxInt64},
	}
	for _, tt := range tests {
		if got := services.CoercePrice(tt.in); got != tt.want {
			t.Errorf("CoercePrice(%v) = %d, want %d", tt.in, got, tt.want)
		}
	}
	if got := services.CoerceCount(math.Inf(-1)); got != 0 {
		t.Errorf("CoerceCount(-Inf) = %d, want 0", got)
	}
	if got := services.CoerceCount(1e300); got != math.MaxInt {
		t.Errorf("CoerceCount(1e300) = %d, want %d", got, math.MaxInt)
	}
}
