package catalog

import "github.com/ngipak/infodesa/pkg/models"

// Read-time caps for vendor media.
const (
	MaxGallery  = 3
	MaxFeatured = 2
)

// Group is a vendor together with its items in input order.
type Group struct {
	Umkm   models.Umkm     `json:"umkm"`
	Produk []models.Produk `json:"produk"`
}

// GroupByVendor groups items by vendor id. Groups are ordered by the first
// occurrence of each vendor; the vendor value is the first one seen.
func GroupByVendor(items []models.Produk) []Group {
	index := make(map[string]int)
	groups := make([]Group, 0)
	for i := range items {
		key := items[i].Umkm.ID
		if gi, ok := index[key]; ok {
			groups[gi].Produk = append(groups[gi].Produk, items[i])
			continue
		}
		index[key] = len(groups)
		groups = append(groups, Group{Umkm: items[i].Umkm, Produk: []models.Produk{items[i]}})
	}
	return groups
}

// PickGallery returns the vendor's gallery capped at MaxGallery. An empty
// gallery falls back to the photos of the first items.
func PickGallery(u models.Umkm, items []models.Produk) []string {
	g := nonEmpty(u.GaleriFoto, MaxGallery)
	if len(g) > 0 {
		return g
	}
	photos := make([]string, 0, len(items))
	for i := range items {
		photos = append(photos, items[i].FotoURL)
	}
	return nonEmpty(photos, MaxGallery)
}

// PickThumb returns the image used for list cards: the first gallery entry,
// or the first item photo when that entry is missing or blank.
func PickThumb(u models.Umkm, items []models.Produk) string {
	if len(u.GaleriFoto) > 0 && u.GaleriFoto[0] != "" {
		return u.GaleriFoto[0]
	}
	if len(items) > 0 {
		return items[0].FotoURL
	}
	return ""
}

// PickFeatured returns the curated featured items capped at MaxFeatured.
// When curation is missing or stale it falls back to the first items.
func PickFeatured(u models.Umkm, items []models.Produk) []models.Produk {
	ids := make(map[string]struct{}, len(u.ProdukUnggulanIDs))
	for _, id := range u.ProdukUnggulanIDs {
		if id != "" {
			ids[id] = struct{}{}
		}
	}
	if len(ids) > 0 {
		picked := make([]models.Produk, 0, MaxFeatured)
		for i := range items {
			if _, ok := ids[items[i].ID]; ok {
				picked = append(picked, items[i])
				if len(picked) == MaxFeatured {
					break
				}
			}
		}
		if len(picked) > 0 {
			return picked
		}
	}
	n := min(len(items), MaxFeatured)
	out := make([]models.Produk, n)
	copy(out, items[:n])
	return out
}

func nonEmpty(in []string, limit int) []string {
	out := make([]string, 0, min(len(in), limit))
	for _, s := range in {
		if s == "" {
			continue
		}
		out = append(out, s)
		if len(out) == limit {
			break
		}
	}
	return out
}
