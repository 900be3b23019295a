package catalog

import "github.com/ngipak/infodesa/pkg/models"

// Visible reports whether a record with the given published flag belongs in
// a public result set.
func Visible(published bool) bool {
	return published
}

// PublishedItems keeps the items that are published and whose vendor is
// published. Input order is preserved.
func PublishedItems(items []models.Produk) []models.Produk {
	out := make([]models.Produk, 0, len(items))
	for i := range items {
		if Visible(items[i].Published) && Visible(items[i].Umkm.Published) {
			out = append(out, items[i])
		}
	}
	return out
}
