package umkm

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/ngipak/infodesa/internal/catalog"
	"github.com/ngipak/infodesa/internal/server"
	"github.com/ngipak/infodesa/internal/services"
)

// handleListDusun lists the village regions.
//
//	@Summary	List regions
//	@Tags		umkm
//	@Produce	json
//	@Success	200	{array}		models.Dusun
//	@Failure	500	{object}	server.Problem
//	@Router		/umkm/dusun [get]
func (p *Plugin) handleListDusun(w http.ResponseWriter, r *http.Request) {
	rows, err := p.dusun.List(r.Context())
	if err != nil {
		server.WriteError(w, r, p.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, rows)
}

// handleCatalog returns published items grouped by vendor.
//
//	@Summary		Public catalog
//	@Description	Filters by region, category and free text; shown widens the reveal window in steps of 8.
//	@Tags			umkm
//	@Produce		json
//	@Param			dusun		query		string	false	"Region ID or all"
//	@Param			kategori	query		string	false	"makanan, minuman, jasa or all"
//	@Param			q			query		string	false	"Free-text query"
//	@Param			shown		query		int		false	"Vendors to reveal"
//	@Success		200			{object}	CatalogResponse
//	@Failure		500			{object}	server.Problem
//	@Router			/umkm/catalog [get]
func (p *Plugin) handleCatalog(w http.ResponseWriter, r *http.Request) {
	items, err := p.produk.List(r.Context(), services.ProdukQuery{PublishedOnly: true})
	if err != nil {
		server.WriteError(w, r, p.logger, err)
		return
	}
	q := r.URL.Query()
	shown, _ := strconv.Atoi(q.Get("shown"))
	f := catalog.Filter{Dusun: q.Get("dusun"), Kategori: q.Get("kategori"), Query: q.Get("q")}
	writeJSON(w, http.StatusOK, buildCatalog(items, f, shown, p.now().In(wib)))
}

// handleVendorDetail returns a published vendor with gallery, featured and
// similar vendors, and a WhatsApp order link.
//
//	@Summary	Vendor detail
//	@Tags		umkm
//	@Produce	json
//	@Param		id		path		string	true	"Vendor ID"
//	@Param		produk	query		string	false	"Item to prefill the order message with"
//	@Success	200		{object}	VendorDetail
//	@Failure	404		{object}	server.Problem
//	@Router		/umkm/vendors/{id} [get]
func (p *Plugin) handleVendorDetail(w http.ResponseWriter, r *http.Request) {
	u, err := p.umkm.Get(r.Context(), r.PathValue("id"))
	if err != nil && !errors.Is(err, services.ErrNotFound) {
		server.WriteError(w, r, p.logger, err)
		return
	}
	if u == nil || !catalog.Visible(u.Published) {
		server.NotFound(w, "UMKM tidak ditemukan.", r.URL.Path)
		return
	}
	all, err := p.produk.List(r.Context(), services.ProdukQuery{PublishedOnly: true})
	if err != nil {
		server.WriteError(w, r, p.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, buildDetail(*u, all, r.URL.Query().Get("produk"), p.now().In(wib)))
}

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func decode(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		server.BadRequest(w, "Format permintaan tidak valid.", r.URL.Path)
		return false
	}
	return true
}
