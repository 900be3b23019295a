package testutil

import (
	"time"

	"github.com/ngipak/infodesa/pkg/models"
)

// NewDusun returns a region fixture.
func NewDusun(id, nama string) models.Dusun {
	return models.Dusun{ID: id, Nama: nama, Slug: id}
}

// NewUmkm returns a published listing with sensible defaults, suitable for
// test fixtures. Options override individual fields.
func NewUmkm(opts ...func(*models.Umkm)) models.Umkm {
	u := models.Umkm{
		ID:         "u-test",
		Nama:       "UMKM Test",
		Kategori:   models.KategoriMakanan,
		NoWA:       "081234567890",
		DusunID:    "d3",
		Dusun:      models.Dusun{ID: "d3", Nama: "Ngipak", Slug: "ngipak"},
		JamBuka:    "08.00–17.00",
		Pembayaran: []string{models.PembayaranCash},
		Layanan:    []string{models.LayananAmbil},
		Published:  true,
		UpdatedAt:  time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
	}
	for _, opt := range opts {
		opt(&u)
	}
	return u
}

// WithUmkmID sets the listing ID.
func WithUmkmID(id string) func(*models.Umkm) {
	return func(u *models.Umkm) { u.ID = id }
}

// WithUmkmNama sets the listing name.
func WithUmkmNama(nama string) func(*models.Umkm) {
	return func(u *models.Umkm) { u.Nama = nama }
}

// WithKategori sets the listing category.
func WithKategori(k models.Kategori) func(*models.Umkm) {
	return func(u *models.Umkm) { u.Kategori = k }
}

// WithDusun sets both the region reference and the resolved region.
func WithDusun(d models.Dusun) func(*models.Umkm) {
	return func(u *models.Umkm) {
		u.DusunID = d.ID
		u.Dusun = d
	}
}

// WithGaleri sets the listing gallery.
func WithGaleri(urls ...string) func(*models.Umkm) {
	return func(u *models.Umkm) { u.GaleriFoto = urls }
}

// WithUnggulan sets the curated featured product IDs.
func WithUnggulan(ids ...string) func(*models.Umkm) {
	return func(u *models.Umkm) { u.ProdukUnggulanIDs = ids }
}

// WithUmkmPublished sets the listing published flag.
func WithUmkmPublished(p bool) func(*models.Umkm) {
	return func(u *models.Umkm) { u.Published = p }
}

// NewProduk returns a published product of vendor u.
func NewProduk(id string, u models.Umkm, opts ...func(*models.Produk)) models.Produk {
	p := models.Produk{
		ID:        id,
		Nama:      "Produk " + id,
		Harga:     15000,
		Satuan:    "pack",
		FotoURL:   "https://example.test/" + id + ".jpg",
		Umkm:      u,
		UmkmID:    u.ID,
		Published: true,
	}
	for _, opt := range opts {
		opt(&p)
	}
	return p
}

// WithProdukNama sets the product name.
func WithProdukNama(nama string) func(*models.Produk) {
	return func(p *models.Produk) { p.Nama = nama }
}

// WithHarga sets the product price.
func WithHarga(h int64) func(*models.Produk) {
	return func(p *models.Produk) { p.Harga = h }
}

// WithFoto sets the product photo URL.
func WithFoto(url string) func(*models.Produk) {
	return func(p *models.Produk) { p.FotoURL = url }
}

// WithProdukPublished sets the product published flag.
func WithProdukPublished(v bool) func(*models.Produk) {
	return func(p *models.Produk) { p.Published = v }
}
