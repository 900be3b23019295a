package catalog

import "github.com/ngipak/infodesa/pkg/models"

// MaxSimilar caps the "similar vendors" section.
const MaxSimilar = 3

// PickSimilar ranks other vendors for the detail page: same category first,
// then same region, de-duplicated by vendor id and capped at MaxSimilar.
// The current vendor is never included.
func PickSimilar(all []Group, cur models.Umkm) []Group {
	candidates := make([]Group, 0, len(all))
	for i := range all {
		if all[i].Umkm.ID != cur.ID && all[i].Umkm.Kategori == cur.Kategori {
			candidates = append(candidates, all[i])
		}
	}
	for i := range all {
		if all[i].Umkm.ID != cur.ID && all[i].Umkm.Dusun.ID == cur.Dusun.ID {
			candidates = append(candidates, all[i])
		}
	}

	seen := make(map[string]struct{}, len(candidates))
	out := make([]Group, 0, MaxSimilar)
	for i := range candidates {
		id := candidates[i].Umkm.ID
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, candidates[i])
		if len(out) == MaxSimilar {
			break
		}
	}
	return out
}
