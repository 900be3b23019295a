package catalog

import (
	"fmt"
	"math"
	"testing"

	"github.com/ngipak/infodesa/pkg/models"
)

func sampleItems() []models.Produk {
	a := vendor("a", models.KategoriMakanan, dusunKrajan)
	a.Nama = "Warung Bu Sri"
	b := vendor("b", models.KategoriMinuman, dusunNgasem)
	b.Nama = "Kopi Lereng"
	items := []models.Produk{item("1", a), item("2", b), item("3", a)}
	items[0].Nama = "Nasi Pecel"
	items[1].Nama = "Kopi Tubruk"
	items[2].Nama = "Tempe Mendoan"
	items[2].Deskripsi = "Gurih dan renyah"
	return items
}

func TestApplyFilters_AllReturnsInputUnchanged(t *testing.T) {
	items := sampleItems()
	got := ApplyFilters(items, Filter{Dusun: All, Kategori: All})
	if len(got) != len(items) {
		t.Fatalf("len = %d, want %d", len(got), len(items))
	}
	for i := range items {
		if got[i].ID != items[i].ID {
			t.Errorf("got[%d] = %q, want %q", i, got[i].ID, items[i].ID)
		}
	}
}

func TestApplyFilters(t *testing.T) {
	tests := []struct {
		name   string
		filter Filter
		want   []string
	}{
		{"zero value", Filter{}, []string{"1", "2", "3"}},
		{"dusun", Filter{Dusun: "ngasem"}, []string{"2"}},
		{"kategori", Filter{Kategori: "makanan"}, []string{"1", "3"}},
		{"query item name", Filter{Query: "PECEL"}, []string{"1"}},
		{"query vendor name", Filter{Query: "lereng"}, []string{"2"}},
		{"query region name", Filter{Query: "krajan"}, []string{"1", "3"}},
		{"query description", Filter{Query: "renyah"}, []string{"3"}},
		{"query trimmed", Filter{Query: "  kopi "}, []string{"2"}},
		{"combined", Filter{Dusun: "krajan", Kategori: "makanan", Query: "tempe"}, []string{"3"}},
		{"no match", Filter{Query: "sate kambing"}, []string{}},
		{"unknown dusun", Filter{Dusun: "nowhere"}, []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ApplyFilters(sampleItems(), tt.filter)
			if got == nil {
				t.Fatal("ApplyFilters returned nil slice")
			}
			if len(got) != len(tt.want) {
				t.Fatalf("len = %d, want %d", len(got), len(tt.want))
			}
			for i := range tt.want {
				if got[i].ID != tt.want[i] {
					t.Errorf("got[%d] = %q, want %q", i, got[i].ID, tt.want[i])
				}
			}
		})
	}
}

func TestParseKategori(t *testing.T) {
	for in, want := range map[string]string{
		"makanan": "makanan",
		"jasa":    "jasa",
		"all":     All,
		"":        All,
		"elektro": All,
	} {
		if got := ParseKategori(in); got != want {
			t.Errorf("ParseKategori(%q) = %q, want %q", in, got, want)
		}
	}
}

func manyVendors(n int) []models.Produk {
	items := make([]models.Produk, 0, n)
	for i := 0; i < n; i++ {
		u := vendor(fmt.Sprintf("v%02d", i), models.KategoriMakanan, dusunKrajan)
		items = append(items, item(fmt.Sprint(i), u))
	}
	return items
}

func TestBrowser_RevealWindow(t *testing.T) {
	items := manyVendors(20)
	b := NewBrowser()

	v := b.View(items)
	if v.Shown != PageSize || !v.HasMore || v.TotalGroups != 20 {
		t.Fatalf("initial view = %+v", v)
	}

	b.ShowMore()
	b.ShowMore()
	v = b.View(items)
	if v.Shown != 20 || v.HasMore {
		t.Errorf("after 2x ShowMore: shown=%d hasMore=%v, want 20 false", v.Shown, v.HasMore)
	}
}

func TestBrowser_FilterChangeResetsWindow(t *testing.T) {
	b := NewBrowser()
	changes := []func(){
		func() { b.SetDusun("ngasem") },
		func() { b.SetKategori("jasa") },
		func() { b.SetQuery("kopi") },
	}
	for i, change := range changes {
		b.ShowMore()
		if b.Shown() != 2*PageSize {
			t.Fatalf("change %d: Shown before = %d", i, b.Shown())
		}
		change()
		if b.Shown() != PageSize {
			t.Errorf("change %d: Shown after = %d, want %d", i, b.Shown(), PageSize)
		}
	}
}

func TestBrowser_SameValueKeepsWindow(t *testing.T) {
	b := NewBrowser()
	b.ShowMore()
	b.SetDusun(All)
	b.SetKategori("bogus")
	if b.Shown() != 2*PageSize {
		t.Errorf("Shown = %d, want %d", b.Shown(), 2*PageSize)
	}
}

func TestBrowser_Reveal(t *testing.T) {
	b := NewBrowser()
	for in, want := range map[int]int{-1: 8, 0: 8, 8: 8, 9: 16, 16: 16, 17: 24} {
		b.Reveal(in)
		if b.Shown() != want {
			t.Errorf("Reveal(%d) -> %d, want %d", in, b.Shown(), want)
		}
	}
}

func TestBrowser_RevealHuge(t *testing.T) {
	b := NewBrowser()
	for _, in := range []int{MaxShown + 1, math.MaxInt - PageSize + 2, math.MaxInt} {
		b.Reveal(in)
		if b.Shown() != MaxShown {
			t.Errorf("Reveal(%d) -> %d, want %d", in, b.Shown(), MaxShown)
		}
		v := b.View(manyVendors(3))
		if v.Shown != 3 || v.HasMore {
			t.Errorf("Reveal(%d) view = shown %d hasMore %v, want 3 false", in, v.Shown, v.HasMore)
		}
	}
}

func TestBrowser_ShowMoreCapped(t *testing.T) {
	b := NewBrowser()
	for i := 0; i < 200; i++ {
		b.ShowMore()
	}
	if b.Shown() != MaxShown {
		t.Errorf("Shown = %d, want %d", b.Shown(), MaxShown)
	}
}

func TestBrowser_ResetAndActive(t *testing.T) {
	b := NewBrowser()
	if b.View(nil).Active {
		t.Error("fresh browser reports active filters")
	}
	b.SetQuery("x")
	if !b.View(nil).Active {
		t.Error("query not reported as active")
	}
	b.Reset()
	if b.Filter().Query != "" || b.Filter().Dusun != All || b.Shown() != PageSize {
		t.Errorf("after Reset: %+v shown=%d", b.Filter(), b.Shown())
	}
}

func TestFilterVendors(t *testing.T) {
	a := vendor("a", models.KategoriMakanan, dusunKrajan)
	a.Nama, a.NoWA, a.Alamat = "Warung Bu Sri", "081234", "Jl. Mawar 2"
	b := vendor("b", models.KategoriJasa, dusunNgasem)
	b.Nama, b.Published = "Servis Motor", false
	rows := []models.Umkm{a, b}

	tests := []struct {
		name string
		f    AdminFilter
		want []string
	}{
		{"all", AdminFilter{Status: All}, []string{"a", "b"}},
		{"published", AdminFilter{Status: StatusPublished}, []string{"a"}},
		{"draft", AdminFilter{Status: StatusDraft}, []string{"b"}},
		{"phone", AdminFilter{Query: "1234"}, []string{"a"}},
		{"address", AdminFilter{Query: "mawar"}, []string{"a"}},
		{"dusun", AdminFilter{Dusun: "ngasem"}, []string{"b"}},
		{"kategori", AdminFilter{Kategori: "makanan"}, []string{"a"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FilterVendors(rows, tt.f)
			if len(got) != len(tt.want) {
				t.Fatalf("len = %d, want %d", len(got), len(tt.want))
			}
			for i := range tt.want {
				if got[i].ID != tt.want[i] {
					t.Errorf("got[%d] = %q, want %q", i, got[i].ID, tt.want[i])
				}
			}
		})
	}
}
