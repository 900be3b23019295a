package umkm

import (
	"time"

	"github.com/ngipak/infodesa/internal/catalog"
	"github.com/ngipak/infodesa/internal/status"
	"github.com/ngipak/infodesa/internal/wa"
	"github.com/ngipak/infodesa/pkg/models"
)

// Card is a vendor on the catalog page.
type Card struct {
	Umkm   models.Umkm       `json:"umkm"`
	Produk []models.Produk   `json:"produk"`
	Thumb  string            `json:"thumb"`
	Status status.ShopStatus `json:"status"`
}

// CatalogResponse is the public catalog page.
type CatalogResponse struct {
	Filter      catalog.Filter `json:"filter"`
	Cards       []Card         `json:"cards"`
	TotalGroups int            `json:"total_groups"`
	Shown       int            `json:"shown"`
	HasMore     bool           `json:"has_more"`
	Active      bool           `json:"active"`
}

// VendorDetail is the public vendor page.
type VendorDetail struct {
	Umkm     models.Umkm       `json:"umkm"`
	Produk   []models.Produk   `json:"produk"`
	Galeri   []string          `json:"galeri"`
	Unggulan []models.Produk   `json:"unggulan"`
	Similar  []Card            `json:"similar"`
	Status   status.ShopStatus `json:"status"`

	// Selected is the item the order link refers to, if any.
	Selected *models.Produk `json:"selected,omitempty"`
	Pesan    string         `json:"pesan"`
	WALink   string         `json:"wa_link"`
}

func newCard(g catalog.Group, now time.Time) Card {
	return Card{
		Umkm:   g.Umkm,
		Produk: g.Produk,
		Thumb:  catalog.PickThumb(g.Umkm, g.Produk),
		Status: status.DeriveShopStatus(g.Umkm.JamBuka, now),
	}
}

// buildCatalog derives the catalog page from published items.
func buildCatalog(items []models.Produk, f catalog.Filter, shown int, now time.Time) CatalogResponse {
	b := catalog.NewBrowser()
	b.SetDusun(f.Dusun)
	b.SetKategori(f.Kategori)
	b.SetQuery(f.Query)
	b.Reveal(shown)

	v := b.View(catalog.PublishedItems(items))
	cards := make([]Card, 0, len(v.Groups))
	for _, g := range v.Groups {
		cards = append(cards, newCard(g, now))
	}
	return CatalogResponse{
		Filter:      b.Filter(),
		Cards:       cards,
		TotalGroups: v.TotalGroups,
		Shown:       v.Shown,
		HasMore:     v.HasMore,
		Active:      v.Active,
	}
}

// buildDetail derives the vendor page. all holds every published item of
// the directory and is used for similar vendors.
func buildDetail(u models.Umkm, all []models.Produk, selectedID string, now time.Time) VendorDetail {
	groups := catalog.GroupByVendor(catalog.PublishedItems(all))

	own := []models.Produk{}
	for i := range all {
		if all[i].Umkm.ID == u.ID && catalog.Visible(all[i].Published) {
			own = append(own, all[i])
		}
	}

	similar := catalog.PickSimilar(groups, u)
	cards := make([]Card, 0, len(similar))
	for _, g := range similar {
		cards = append(cards, newCard(g, now))
	}

	d := VendorDetail{
		Umkm:     u,
		Produk:   own,
		Galeri:   catalog.PickGallery(u, own),
		Unggulan: catalog.PickFeatured(u, own),
		Similar:  cards,
		Status:   status.DeriveShopStatus(u.JamBuka, now),
	}
	var itemName string
	if selectedID != "" {
		for i := range own {
			if own[i].ID == selectedID {
				d.Selected = &own[i]
				itemName = own[i].Nama
				break
			}
		}
	}
	d.Pesan = wa.OrderMessage(u.Nama, itemName)
	d.WALink = wa.Link(u.NoWA, d.Pesan)
	return d
}
