package fixtures

import (
	"testing"

	"github.com/ngipak/infodesa/pkg/models"
)

func TestSet_Data(t *testing.T) {
	d, err := New().Data()
	if err != nil {
		t.Fatalf("Data: %v", err)
	}
	if len(d.Dusun) != 9 {
		t.Errorf("dusun = %d, want 9", len(d.Dusun))
	}
	if len(d.Umkm) != 4 || len(d.Produk) != 5 {
		t.Errorf("umkm = %d, produk = %d; want 4, 5", len(d.Umkm), len(d.Produk))
	}
	if d.Umkm[0].Dusun.Nama != "Ngipak" {
		t.Errorf("umkm[0].Dusun = %+v, want resolved region", d.Umkm[0].Dusun)
	}
	if len(d.Kesehatan.Statistik) != 6 {
		t.Errorf("statistik = %d, want 6", len(d.Kesehatan.Statistik))
	}
	if d.Kesehatan.Isu[0].Urutan == nil || *d.Kesehatan.Isu[0].Urutan != 1 {
		t.Errorf("isu[0].Urutan = %v, want 1", d.Kesehatan.Isu[0].Urutan)
	}
	if d.Kesehatan.Jadwal[0].Jam != "08:00–10:00" {
		t.Errorf("jadwal[0].Jam = %q", d.Kesehatan.Jadwal[0].Jam)
	}
	if !d.Kesehatan.Meta.Published {
		t.Error("meta not published")
	}
}

func TestSet_ReferencesResolve(t *testing.T) {
	d, err := New().Data()
	if err != nil {
		t.Fatalf("Data: %v", err)
	}
	vendors := make(map[string]models.Umkm)
	for _, u := range d.Umkm {
		if !u.Kategori.Valid() {
			t.Errorf("umkm %s: invalid kategori %q", u.ID, u.Kategori)
		}
		vendors[u.ID] = u
	}
	for _, p := range d.Produk {
		if _, ok := vendors[p.UmkmID]; !ok {
			t.Errorf("produk %s references unknown umkm %q", p.ID, p.UmkmID)
		}
	}
	for _, u := range d.Umkm {
		for _, id := range u.ProdukUnggulanIDs {
			found := false
			for _, p := range d.Produk {
				if p.ID == id && p.UmkmID == u.ID {
					found = true
				}
			}
			if !found {
				t.Errorf("umkm %s features %q, which it does not sell", u.ID, id)
			}
		}
	}
}

func TestParse_Invalid(t *testing.T) {
	if _, err := Parse([]byte("dusun: [")); err == nil {
		t.Error("Parse accepted malformed yaml")
	}
}
