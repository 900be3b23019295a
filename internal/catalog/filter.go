package catalog

import (
	"strings"

	"github.com/ngipak/infodesa/pkg/models"
)

// All is the wildcard value for categorical filters.
const All = "all"

// PageSize is the number of vendors revealed per "show more" step.
const PageSize = 8

// MaxShown caps the catalog window. It is a whole number of pages.
const MaxShown = 125 * PageSize

// Filter narrows the public catalog. Empty fields behave like All.
type Filter struct {
	Dusun    string `json:"dusun"`
	Kategori string `json:"kategori"`
	Query    string `json:"q"`
}

// Active reports whether any filter narrows the result.
func (f Filter) Active() bool {
	return !isAll(f.Dusun) || !isAll(f.Kategori) || strings.TrimSpace(f.Query) != ""
}

// ParseKategori maps a raw query value to a category filter. Unknown values
// collapse to All.
func ParseKategori(v string) string {
	if models.Kategori(v).Valid() {
		return v
	}
	return All
}

// ApplyFilters keeps the items matching region, category and free-text
// query. It never fails; missing fields simply do not match.
func ApplyFilters(items []models.Produk, f Filter) []models.Produk {
	query := strings.ToLower(strings.TrimSpace(f.Query))
	out := make([]models.Produk, 0, len(items))
	for i := range items {
		p := &items[i]
		okDusun := isAll(f.Dusun) || p.Umkm.Dusun.ID == f.Dusun
		okKat := isAll(f.Kategori) || string(p.Umkm.Kategori) == f.Kategori
		okQ := query == "" || strings.Contains(haystack(p), query)
		if okDusun && okKat && okQ {
			out = append(out, *p)
		}
	}
	return out
}

func haystack(p *models.Produk) string {
	return strings.ToLower(p.Nama + " " + p.Umkm.Nama + " " + p.Umkm.Dusun.Nama + " " + p.Deskripsi)
}

func isAll(v string) bool {
	return v == "" || v == All
}

// Browser holds the filter state of a catalog page together with its
// reveal window. Changing any filter resets the window to PageSize.
type Browser struct {
	filter Filter
	shown  int
}

// NewBrowser returns a Browser with no filters and one page revealed.
func NewBrowser() *Browser {
	return &Browser{filter: Filter{Dusun: All, Kategori: All}, shown: PageSize}
}

// Filter returns the current filter.
func (b *Browser) Filter() Filter { return b.filter }

// Shown returns the number of vendors currently revealed.
func (b *Browser) Shown() int { return b.shown }

// SetDusun changes the region filter.
func (b *Browser) SetDusun(id string) {
	if id == "" {
		id = All
	}
	if id != b.filter.Dusun {
		b.filter.Dusun = id
		b.shown = PageSize
	}
}

// SetKategori changes the category filter. Unknown values mean All.
func (b *Browser) SetKategori(k string) {
	k = ParseKategori(k)
	if k != b.filter.Kategori {
		b.filter.Kategori = k
		b.shown = PageSize
	}
}

// SetQuery changes the free-text query.
func (b *Browser) SetQuery(q string) {
	if q != b.filter.Query {
		b.filter.Query = q
		b.shown = PageSize
	}
}

// ShowMore reveals one more page, up to MaxShown.
func (b *Browser) ShowMore() {
	b.shown = min(b.shown+PageSize, MaxShown)
}

// Reveal sets the window directly, rounding up to whole pages. Values
// below one page reveal one page; values above MaxShown are capped.
func (b *Browser) Reveal(n int) {
	if n <= PageSize {
		b.shown = PageSize
		return
	}
	n = min(n, MaxShown)
	b.shown = ((n + PageSize - 1) / PageSize) * PageSize
}

// Reset clears all filters and the window.
func (b *Browser) Reset() {
	b.filter = Filter{Dusun: All, Kategori: All}
	b.shown = PageSize
}

// View is the derived state of a catalog page.
type View struct {
	Groups      []Group `json:"groups"`
	TotalGroups int     `json:"total_groups"`
	Shown       int     `json:"shown"`
	HasMore     bool    `json:"has_more"`
	Active      bool    `json:"active"`
}

// View filters items, groups them by vendor and applies the window.
func (b *Browser) View(items []models.Produk) View {
	groups := GroupByVendor(ApplyFilters(items, b.filter))
	n := max(0, min(len(groups), b.shown))
	return View{
		Groups:      groups[:n],
		TotalGroups: len(groups),
		Shown:       n,
		HasMore:     len(groups) > n,
		Active:      b.filter.Active(),
	}
}

// Published status values for admin listings.
const (
	StatusPublished = "published"
	StatusDraft     = "draft"
)

// AdminFilter narrows the admin vendor list, which includes drafts.
type AdminFilter struct {
	Query    string
	Dusun    string
	Kategori string
	Status   string // all, published, draft
}

// FilterVendors applies an AdminFilter. The query matches name, phone and
// address case-insensitively.
func FilterVendors(rows []models.Umkm, f AdminFilter) []models.Umkm {
	query := strings.ToLower(strings.TrimSpace(f.Query))
	out := make([]models.Umkm, 0, len(rows))
	for i := range rows {
		u := &rows[i]
		switch f.Status {
		case StatusPublished:
			if !u.Published {
				continue
			}
		case StatusDraft:
			if u.Published {
				continue
			}
		}
		if !isAll(f.Dusun) && u.Dusun.ID != f.Dusun {
			continue
		}
		if !isAll(f.Kategori) && string(u.Kategori) != f.Kategori {
			continue
		}
		if query != "" {
			hay := strings.ToLower(u.Nama + " " + u.NoWA + " " + u.Alamat)
			if !strings.Contains(hay, query) {
				continue
			}
		}
		out = append(out, *u)
	}
	return out
}
