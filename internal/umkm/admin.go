package umkm

import (
	"context"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/ngipak/infodesa/internal/catalog"
	"github.com/ngipak/infodesa/internal/event"
	"github.com/ngipak/infodesa/internal/optimistic"
	"github.com/ngipak/infodesa/internal/server"
	"github.com/ngipak/infodesa/internal/services"
	"github.com/ngipak/infodesa/internal/storage"
	"github.com/ngipak/infodesa/pkg/models"
)

// VendorRequest is the admin form of a vendor.
type VendorRequest struct {
	ID                string          `json:"id" example:"keripik-bu-sari"`
	Nama              string          `json:"nama" example:"Keripik Bu Sari"`
	Kategori          models.Kategori `json:"kategori" example:"makanan"`
	NoWA              string          `json:"no_wa" example:"081234567890"`
	DusunID           string          `json:"dusun_id" example:"d3"`
	Alamat            string          `json:"alamat"`
	Tentang           string          `json:"tentang"`
	JamBuka           string          `json:"jam_buka" example:"08.00–17.00"`
	MapsURL           string          `json:"maps_url"`
	Pembayaran        []string        `json:"pembayaran"`
	GaleriFoto        []string        `json:"galeri_foto"`
	ProdukUnggulanIDs []string        `json:"produk_unggulan_ids"`
	Layanan           []string        `json:"layanan"`
	Estimasi          string          `json:"estimasi"`
	Published         bool            `json:"published"`
}

func (v VendorRequest) model() models.Umkm {
	return models.Umkm{
		ID:                v.ID,
		Nama:              v.Nama,
		Kategori:          v.Kategori,
		NoWA:              v.NoWA,
		DusunID:           v.DusunID,
		Alamat:            v.Alamat,
		Tentang:           v.Tentang,
		JamBuka:           v.JamBuka,
		MapsURL:           v.MapsURL,
		Pembayaran:        v.Pembayaran,
		GaleriFoto:        v.GaleriFoto,
		ProdukUnggulanIDs: v.ProdukUnggulanIDs,
		Layanan:           v.Layanan,
		Estimasi:          v.Estimasi,
		Published:         v.Published,
	}
}

// ProdukRequest is the admin form of a product. A blank ID on create is
// derived from the name.
type ProdukRequest struct {
	ID        string  `json:"id"`
	Nama      string  `json:"nama" example:"Keripik Terong"`
	Harga     float64 `json:"harga" example:"15000"`
	Satuan    string  `json:"satuan" example:"pack"`
	FotoURL   string  `json:"foto_url"`
	Deskripsi string  `json:"deskripsi"`
	Published bool    `json:"published"`
}

func (v ProdukRequest) model(umkmID string) models.Produk {
	return models.Produk{
		ID:        v.ID,
		Nama:      v.Nama,
		Harga:     services.CoercePrice(v.Harga),
		Satuan:    v.Satuan,
		FotoURL:   v.FotoURL,
		Deskripsi: v.Deskripsi,
		UmkmID:    umkmID,
		Published: v.Published,
	}
}

// PublishRequest sets the published flag.
type PublishRequest struct {
	Published bool `json:"published"`
}

func confirmed(w http.ResponseWriter, r *http.Request) bool {
	if r.URL.Query().Get("confirm") != "true" {
		server.BadRequest(w, "Penghapusan bersifat permanen. Ulangi dengan ?confirm=true.", r.URL.Path)
		return false
	}
	return true
}

// handleAdminListVendors lists vendors including drafts.
//
//	@Summary	Admin vendor list
//	@Tags		umkm-admin
//	@Produce	json
//	@Security	BearerAuth
//	@Param		q			query	string	false	"Matches name, phone and address"
//	@Param		dusun		query	string	false	"Region ID or all"
//	@Param		kategori	query	string	false	"Category or all"
//	@Param		status		query	string	false	"all, published or draft"
//	@Success	200			{array}	models.Umkm
//	@Router		/umkm/admin/vendors [get]
func (p *Plugin) handleAdminListVendors(w http.ResponseWriter, r *http.Request) {
	rows, err := p.umkm.List(r.Context(), false)
	if err != nil {
		server.WriteError(w, r, p.logger, err)
		return
	}
	q := r.URL.Query()
	writeJSON(w, http.StatusOK, catalog.FilterVendors(rows, catalog.AdminFilter{
		Query:    q.Get("q"),
		Dusun:    q.Get("dusun"),
		Kategori: q.Get("kategori"),
		Status:   q.Get("status"),
	}))
}

// handleCreateVendor creates a vendor.
//
//	@Summary	Create vendor
//	@Tags		umkm-admin
//	@Accept		json
//	@Produce	json
//	@Security	BearerAuth
//	@Param		request	body		VendorRequest	true	"Vendor"
//	@Success	201		{object}	models.Umkm
//	@Failure	409		{object}	server.Problem
//	@Failure	422		{object}	server.Problem
//	@Router		/umkm/admin/vendors [post]
func (p *Plugin) handleCreateVendor(w http.ResponseWriter, r *http.Request) {
	var req VendorRequest
	if !decode(w, r, &req) {
		return
	}
	u := req.model()
	if err := p.umkm.Create(r.Context(), &u); err != nil {
		server.WriteError(w, r, p.logger, err)
		return
	}
	p.respondVendor(w, r, http.StatusCreated, u.ID)
	p.publish(r.Context(), event.TopicUmkmSaved, u.ID, "UMKM "+u.Nama+" ditambahkan")
}

// handleGetVendor returns a vendor including drafts.
//
//	@Summary	Get vendor
//	@Tags		umkm-admin
//	@Produce	json
//	@Security	BearerAuth
//	@Param		id	path		string	true	"Vendor ID"
//	@Success	200	{object}	models.Umkm
//	@Failure	404	{object}	server.Problem
//	@Router		/umkm/admin/vendors/{id} [get]
func (p *Plugin) handleGetVendor(w http.ResponseWriter, r *http.Request) {
	p.respondVendor(w, r, http.StatusOK, r.PathValue("id"))
}

func (p *Plugin) respondVendor(w http.ResponseWriter, r *http.Request, status int, id string) {
	u, err := p.umkm.Get(r.Context(), id)
	if err != nil {
		p.writeVendorError(w, r, err)
		return
	}
	writeJSON(w, status, u)
}

// handleUpdateVendor replaces a vendor. The ID in the path wins.
//
//	@Summary	Update vendor
//	@Tags		umkm-admin
//	@Accept		json
//	@Produce	json
//	@Security	BearerAuth
//	@Param		id		path		string			true	"Vendor ID"
//	@Param		request	body		VendorRequest	true	"Vendor"
//	@Success	200		{object}	models.Umkm
//	@Failure	404		{object}	server.Problem
//	@Failure	422		{object}	server.Problem
//	@Router		/umkm/admin/vendors/{id} [put]
func (p *Plugin) handleUpdateVendor(w http.ResponseWriter, r *http.Request) {
	var req VendorRequest
	if !decode(w, r, &req) {
		return
	}
	req.ID = r.PathValue("id")
	u := req.model()
	if err := p.umkm.Update(r.Context(), &u); err != nil {
		p.writeVendorError(w, r, err)
		return
	}
	p.respondVendor(w, r, http.StatusOK, u.ID)
	p.publish(r.Context(), event.TopicUmkmSaved, u.ID, "UMKM "+u.Nama+" diperbarui")
}

// handleDeleteVendor permanently deletes a vendor and all its products.
//
//	@Summary	Delete vendor
//	@Tags		umkm-admin
//	@Security	BearerAuth
//	@Param		id		path	string	true	"Vendor ID"
//	@Param		confirm	query	bool	true	"Must be true"
//	@Success	204
//	@Failure	400	{object}	server.Problem
//	@Failure	404	{object}	server.Problem
//	@Router		/umkm/admin/vendors/{id} [delete]
func (p *Plugin) handleDeleteVendor(w http.ResponseWriter, r *http.Request) {
	if !confirmed(w, r) {
		return
	}
	id := r.PathValue("id")
	if err := p.umkm.Delete(r.Context(), id); err != nil {
		p.writeVendorError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
	p.publish(r.Context(), event.TopicUmkmDeleted, id, "UMKM "+id+" dihapus")
}

// handlePublishVendor sets the published flag of a vendor. The row is
// updated optimistically; when the write fails the problem response carries
// the restored row in "current".
//
//	@Summary	Publish or unpublish vendor
//	@Tags		umkm-admin
//	@Accept		json
//	@Produce	json
//	@Security	BearerAuth
//	@Param		id		path		string			true	"Vendor ID"
//	@Param		request	body		PublishRequest	true	"Flag"
//	@Success	200		{object}	models.Umkm
//	@Failure	404		{object}	server.Problem
//	@Failure	500		{object}	server.Problem
//	@Router		/umkm/admin/vendors/{id}/published [patch]
func (p *Plugin) handlePublishVendor(w http.ResponseWriter, r *http.Request) {
	var req PublishRequest
	if !decode(w, r, &req) {
		return
	}
	u, err := p.umkm.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		p.writeVendorError(w, r, err)
		return
	}
	err = optimistic.Apply(r.Context(), &u.Published, req.Published, func(ctx context.Context) error {
		return p.umkm.SetPublished(ctx, u.ID, req.Published)
	})
	if err != nil {
		p.logger.Warn("publish toggle rolled back", zap.String("umkm_id", u.ID), zap.Error(err))
		server.WriteRolledBack(w, r, p.logger, err, u)
		return
	}
	writeJSON(w, http.StatusOK, u)
	p.publish(r.Context(), event.TopicUmkmPublished, u.ID, publishSummary("UMKM "+u.Nama, u.Published))
}

// handleUploadFoto stores a product image for a vendor and returns its
// public URL.
//
//	@Summary		Upload product image
//	@Description	Multipart field "file" (image/*, at most 5 MB); optional "hint" names the file.
//	@Tags			umkm-admin
//	@Accept			multipart/form-data
//	@Produce		json
//	@Security		BearerAuth
//	@Param			id		path		string	true	"Vendor ID"
//	@Param			file	formData	file	true	"Image"
//	@Param			hint	formData	string	false	"File name hint, usually the product ID"
//	@Success		201		{object}	storage.Upload
//	@Failure		422		{object}	server.Problem
//	@Router			/umkm/admin/vendors/{id}/foto [post]
func (p *Plugin) handleUploadFoto(w http.ResponseWriter, r *http.Request) {
	if p.storage == nil {
		server.InternalError(w, "Penyimpanan file belum dikonfigurasi.", r.URL.Path)
		return
	}
	u, err := p.umkm.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		p.writeVendorError(w, r, err)
		return
	}
	limit := p.storage.MaxImageBytes()
	r.Body = http.MaxBytesReader(w, r.Body, limit+1<<20)
	file, header, err := r.FormFile("file")
	if err != nil {
		var tooBig *http.MaxBytesError
		if errors.As(err, &tooBig) {
			server.ValidationFailed(w, "file", storage.Message(storage.ErrTooLarge, limit), r.URL.Path)
			return
		}
		server.BadRequest(w, "File wajib diunggah.", r.URL.Path)
		return
	}
	defer file.Close()

	up, err := p.storage.PutImage(u.ID, r.FormValue("hint"), storage.File{
		Name:        header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Size:        header.Size,
		Body:        file,
	})
	switch {
	case errors.Is(err, storage.ErrNotImage), errors.Is(err, storage.ErrTooLarge):
		server.ValidationFailed(w, "file", storage.Message(err, limit), r.URL.Path)
		return
	case err != nil:
		p.logger.Error("image upload failed", zap.String("umkm_id", u.ID), zap.Error(err))
		server.InternalError(w, storage.Message(err, limit), r.URL.Path)
		return
	}
	writeJSON(w, http.StatusCreated, up)
}

// handleListVendorProduk lists the products of a vendor including drafts.
//
//	@Summary	Vendor products
//	@Tags		umkm-admin
//	@Produce	json
//	@Security	BearerAuth
//	@Param		id	path	string	true	"Vendor ID"
//	@Success	200	{array}	models.Produk
//	@Router		/umkm/admin/vendors/{id}/produk [get]
func (p *Plugin) handleListVendorProduk(w http.ResponseWriter, r *http.Request) {
	rows, err := p.produk.List(r.Context(), services.ProdukQuery{UmkmID: r.PathValue("id")})
	if err != nil {
		server.WriteError(w, r, p.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, rows)
}

// handleCreateProduk adds a product to a vendor.
//
//	@Summary	Create product
//	@Tags		umkm-admin
//	@Accept		json
//	@Produce	json
//	@Security	BearerAuth
//	@Param		id		path		string			true	"Vendor ID"
//	@Param		request	body		ProdukRequest	true	"Product"
//	@Success	201		{object}	models.Produk
//	@Failure	404		{object}	server.Problem
//	@Failure	422		{object}	server.Problem
//	@Router		/umkm/admin/vendors/{id}/produk [post]
func (p *Plugin) handleCreateProduk(w http.ResponseWriter, r *http.Request) {
	var req ProdukRequest
	if !decode(w, r, &req) {
		return
	}
	umkmID := r.PathValue("id")
	if _, err := p.umkm.Get(r.Context(), umkmID); err != nil {
		p.writeVendorError(w, r, err)
		return
	}
	item := req.model(umkmID)
	if err := p.produk.Create(r.Context(), &item); err != nil {
		server.WriteError(w, r, p.logger, err)
		return
	}
	p.respondProduk(w, r, http.StatusCreated, item.ID)
	p.publish(r.Context(), event.TopicProdukSaved, item.ID, "Produk "+item.Nama+" ditambahkan")
}

func (p *Plugin) respondProduk(w http.ResponseWriter, r *http.Request, status int, id string) {
	item, err := p.produk.Get(r.Context(), id)
	if err != nil {
		p.writeProdukError(w, r, err)
		return
	}
	writeJSON(w, status, item)
}

// handleUpdateProduk replaces a product. The vendor cannot change.
//
//	@Summary	Update product
//	@Tags		umkm-admin
//	@Accept		json
//	@Produce	json
//	@Security	BearerAuth
//	@Param		id		path		string			true	"Product ID"
//	@Param		request	body		ProdukRequest	true	"Product"
//	@Success	200		{object}	models.Produk
//	@Failure	404		{object}	server.Problem
//	@Router		/umkm/admin/produk/{id} [put]
func (p *Plugin) handleUpdateProduk(w http.ResponseWriter, r *http.Request) {
	var req ProdukRequest
	if !decode(w, r, &req) {
		return
	}
	cur, err := p.produk.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		p.writeProdukError(w, r, err)
		return
	}
	req.ID = cur.ID
	item := req.model(cur.UmkmID)
	if err := p.produk.Update(r.Context(), &item); err != nil {
		p.writeProdukError(w, r, err)
		return
	}
	p.respondProduk(w, r, http.StatusOK, item.ID)
	p.publish(r.Context(), event.TopicProdukSaved, item.ID, "Produk "+item.Nama+" diperbarui")
}

// handleDeleteProduk permanently deletes a product.
//
//	@Summary	Delete product
//	@Tags		umkm-admin
//	@Security	BearerAuth
//	@Param		id		path	string	true	"Product ID"
//	@Param		confirm	query	bool	true	"Must be true"
//	@Success	204
//	@Failure	400	{object}	server.Problem
//	@Failure	404	{object}	server.Problem
//	@Router		/umkm/admin/produk/{id} [delete]
func (p *Plugin) handleDeleteProduk(w http.ResponseWriter, r *http.Request) {
	if !confirmed(w, r) {
		return
	}
	id := r.PathValue("id")
	if err := p.produk.Delete(r.Context(), id); err != nil {
		p.writeProdukError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
	p.publish(r.Context(), event.TopicProdukDeleted, id, "Produk "+id+" dihapus")
}

// handlePublishProduk sets the published flag of a product. A failed write
// answers with the restored row in "current".
//
//	@Summary	Publish or unpublish product
//	@Tags		umkm-admin
//	@Accept		json
//	@Produce	json
//	@Security	BearerAuth
//	@Param		id		path		string			true	"Product ID"
//	@Param		request	body		PublishRequest	true	"Flag"
//	@Success	200		{object}	models.Produk
//	@Failure	404		{object}	server.Problem
//	@Failure	500		{object}	server.Problem
//	@Router		/umkm/admin/produk/{id}/published [patch]
func (p *Plugin) handlePublishProduk(w http.ResponseWriter, r *http.Request) {
	var req PublishRequest
	if !decode(w, r, &req) {
		return
	}
	item, err := p.produk.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		p.writeProdukError(w, r, err)
		return
	}
	err = optimistic.Apply(r.Context(), &item.Published, req.Published, func(ctx context.Context) error {
		return p.produk.SetPublished(ctx, item.ID, req.Published)
	})
	if err != nil {
		p.logger.Warn("publish toggle rolled back", zap.String("produk_id", item.ID), zap.Error(err))
		server.WriteRolledBack(w, r, p.logger, err, item)
		return
	}
	writeJSON(w, http.StatusOK, item)
	p.publish(r.Context(), event.TopicProdukPublished, item.ID, publishSummary("Produk "+item.Nama, item.Published))
}

func publishSummary(what string, published bool) string {
	if published {
		return what + " dipublikasikan"
	}
	return what + " disembunyikan"
}

func (p *Plugin) writeVendorError(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, services.ErrNotFound) {
		server.NotFound(w, "UMKM tidak ditemukan.", r.URL.Path)
		return
	}
	server.WriteError(w, r, p.logger, err)
}

func (p *Plugin) writeProdukError(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, services.ErrNotFound) {
		server.NotFound(w, "Produk tidak ditemukan.", r.URL.Path)
		return
	}
	server.WriteError(w, r, p.logger, err)
}
