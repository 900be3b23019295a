package models

import "time"

// Kategori classifies what a UMKM sells.
type Kategori string

const (
	KategoriMakanan Kategori = "makanan"
	KategoriMinuman Kategori = "minuman"
	KategoriJasa    Kategori = "jasa"
)

// Valid reports whether k is one of the known categories.
func (k Kategori) Valid() bool {
	switch k {
	case KategoriMakanan, KategoriMinuman, KategoriJasa:
		return true
	}
	return false
}

// Label returns the display label of the category.
func (k Kategori) Label() string {
	switch k {
	case KategoriMakanan:
		return "Makanan"
	case KategoriMinuman:
		return "Minuman"
	case KategoriJasa:
		return "Jasa"
	}
	return string(k)
}

// Accepted payment methods.
const (
	PembayaranCash     = "cash"
	PembayaranTransfer = "transfer"
	PembayaranQRIS     = "qris"
)

// Service options offered by a UMKM.
const (
	LayananAmbil = "ambil"
	LayananAntar = "antar"
	LayananCOD   = "cod"
)

// Umkm is a local business listing.
type Umkm struct {
	ID                string    `json:"id" yaml:"id"`
	Nama              string    `json:"nama" yaml:"nama"`
	Kategori          Kategori  `json:"kategori" yaml:"kategori"`
	NoWA              string    `json:"no_wa" yaml:"no_wa"`
	Dusun             Dusun     `json:"dusun" yaml:"-"`
	DusunID           string    `json:"-" yaml:"dusun_id"`
	Alamat            string    `json:"alamat,omitempty" yaml:"alamat"`
	Tentang           string    `json:"tentang,omitempty" yaml:"tentang"`
	JamBuka           string    `json:"jam_buka,omitempty" yaml:"jam_buka"`
	MapsURL           string    `json:"maps_url,omitempty" yaml:"maps_url"`
	Pembayaran        []string  `json:"pembayaran,omitempty" yaml:"pembayaran"`
	GaleriFoto        []string  `json:"galeri_foto,omitempty" yaml:"galeri_foto"`
	ProdukUnggulanIDs []string  `json:"produk_unggulan_ids,omitempty" yaml:"produk_unggulan_ids"`
	Layanan           []string  `json:"layanan,omitempty" yaml:"layanan"`
	Estimasi          string    `json:"estimasi,omitempty" yaml:"estimasi"`
	Published         bool      `json:"published" yaml:"published"`
	UpdatedAt         time.Time `json:"updated_at,omitempty" yaml:"-"`
}

// UnknownUmkm is the placeholder returned for items whose vendor is gone.
func UnknownUmkm(id string) Umkm {
	return Umkm{ID: id, Nama: "UMKM tidak ditemukan", Dusun: UnknownDusun("")}
}

// Produk is a product or service offered by a UMKM.
type Produk struct {
	ID        string    `json:"id" yaml:"id"`
	Nama      string    `json:"nama" yaml:"nama"`
	Harga     int64     `json:"harga" yaml:"harga"`
	Satuan    string    `json:"satuan,omitempty" yaml:"satuan"`
	FotoURL   string    `json:"foto_url" yaml:"foto_url"`
	Deskripsi string    `json:"deskripsi,omitempty" yaml:"deskripsi"`
	Umkm      Umkm      `json:"umkm" yaml:"-"`
	UmkmID    string    `json:"-" yaml:"umkm_id"`
	Published bool      `json:"published" yaml:"published"`
	UpdatedAt time.Time `json:"updated_at,omitempty" yaml:"-"`
}
