package kesehatan

import (
	"context"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/ngipak/infodesa/internal/optimistic"
	"github.com/ngipak/infodesa/internal/server"
	"github.com/ngipak/infodesa/internal/services"
	"github.com/ngipak/infodesa/internal/storage"
	"github.com/ngipak/infodesa/pkg/models"
)

// maxLeafletBytes bounds a leaflet upload request.
const maxLeafletBytes = 20 << 20

// IsuRequest is the admin form of a health issue.
type IsuRequest struct {
	ID        string           `json:"id"`
	Judul     string           `json:"judul" example:"Stunting"`
	Ringkas   string           `json:"ringkas"`
	Prioritas models.Prioritas `json:"prioritas" example:"tinggi"`
	Dampak    []string         `json:"dampak"`
	UpayaDesa []string         `json:"upaya_desa"`
	AksiWarga []string         `json:"aksi_warga"`
	Urutan    *int             `json:"urutan"`
	Published bool             `json:"published"`
}

func (v IsuRequest) model() models.IsuKesehatan {
	return models.IsuKesehatan{
		ID:        v.ID,
		Judul:     v.Judul,
		Ringkas:   v.Ringkas,
		Prioritas: v.Prioritas,
		Dampak:    v.Dampak,
		UpayaDesa: v.UpayaDesa,
		AksiWarga: v.AksiWarga,
		Urutan:    v.Urutan,
		Published: v.Published,
	}
}

// StatRequest is the admin form of a monthly statistic. Counts arrive as
// numbers from a form and are coerced to non-negative integers.
type StatRequest struct {
	Stunting   float64 `json:"stunting" example:"14"`
	Hipertensi float64 `json:"hipertensi" example:"128"`
	Published  bool    `json:"published"`
}

// JadwalRequest is the admin form of a schedule entry.
type JadwalRequest struct {
	Kegiatan  string `json:"kegiatan" example:"Posyandu Balita"`
	Tanggal   string `json:"tanggal" example:"2026-01-20"`
	Jam       string `json:"jam" example:"08:00–10:00"`
	Lokasi    string `json:"lokasi"`
	Catatan   string `json:"catatan"`
	DusunID   string `json:"dusun_id" example:"d3"`
	Published bool   `json:"published"`
}

func (v JadwalRequest) model(id string) models.JadwalKesehatan {
	return models.JadwalKesehatan{
		ID:        id,
		Kegiatan:  v.Kegiatan,
		Tanggal:   v.Tanggal,
		Jam:       v.Jam,
		Lokasi:    v.Lokasi,
		Catatan:   v.Catatan,
		DusunID:   v.DusunID,
		Published: v.Published,
	}
}

// KaderRequest is the admin form of a volunteer.
type KaderRequest struct {
	Nama      string `json:"nama" example:"Bu Wati"`
	Peran     string `json:"peran"`
	NoWA      string `json:"no_wa" example:"62812000102"`
	DusunID   string `json:"dusun_id" example:"d3"`
	Published bool   `json:"published"`
}

func (v KaderRequest) model(id string) models.Kader {
	return models.Kader{
		ID:        id,
		Nama:      v.Nama,
		Peran:     v.Peran,
		NoWA:      v.NoWA,
		DusunID:   v.DusunID,
		Published: v.Published,
	}
}

// MetaRequest is the admin form of the page metadata.
type MetaRequest struct {
	PeriodeTerakhir string `json:"periode_terakhir" example:"2026-01"`
	Sumber          string `json:"sumber"`
	Published       bool   `json:"published"`
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

// writeErr maps ErrNotFound to a 404 with the section's message.
func (p *Plugin) writeErr(w http.ResponseWriter, r *http.Request, notFound string, err error) {
	if errors.Is(err, services.ErrNotFound) {
		server.NotFound(w, notFound, r.URL.Path)
		return
	}
	server.WriteError(w, r, p.logger, err)
}

func publishSummary(what string, published bool) string {
	if published {
		return what + " dipublikasikan"
	}
	return what + " disembunyikan"
}

const (
	isuNotFound    = "Isu tidak ditemukan."
	statNotFound   = "Statistik tidak ditemukan."
	jadwalNotFound = "Jadwal tidak ditemukan."
	kaderNotFound  = "Kader tidak ditemukan."
)

// handleListIsu lists health issues including drafts.
//
//	@Summary	Admin issue list
//	@Tags		kesehatan-admin
//	@Produce	json
//	@Security	BearerAuth
//	@Success	200	{array}	models.IsuKesehatan
//	@Router		/kesehatan/admin/isu [get]
func (p *Plugin) handleListIsu(w http.ResponseWriter, r *http.Request) {
	rows, err := p.isu.List(r.Context(), false)
	if err != nil {
		server.WriteError(w, r, p.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, rows)
}

// handleCreateIsu creates a health issue. A blank ID is derived from the
// title.
//
//	@Summary	Create issue
//	@Tags		kesehatan-admin
//	@Accept		json
//	@Produce	json
//	@Security	BearerAuth
//	@Param		request	body		IsuRequest	true	"Issue"
//	@Success	201		{object}	models.IsuKesehatan
//	@Failure	409		{object}	server.Problem
//	@Failure	422		{object}	server.Problem
//	@Router		/kesehatan/admin/isu [post]
func (p *Plugin) handleCreateIsu(w http.ResponseWriter, r *http.Request) {
	var req IsuRequest
	if !decode(w, r, &req) {
		return
	}
	i := req.model()
	if err := services.ValidateIsu(&i); err != nil {
		server.WriteError(w, r, p.logger, err)
		return
	}
	if _, err := p.isu.Get(r.Context(), i.ID); err == nil {
		server.WriteError(w, r, p.logger, services.ErrAlreadyExists)
		return
	} else if !errors.Is(err, services.ErrNotFound) {
		server.WriteError(w, r, p.logger, err)
		return
	}
	if err := p.isu.Save(r.Context(), &i); err != nil {
		server.WriteError(w, r, p.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, i)
	p.publish(r.Context(), "isu/"+i.ID, "Isu "+i.Judul+" ditambahkan")
}

// handleGetIsu returns one issue.
//
//	@Summary	Get issue
//	@Tags		kesehatan-admin
//	@Produce	json
//	@Security	BearerAuth
//	@Param		id	path		string	true	"Issue ID"
//	@Success	200	{object}	models.IsuKesehatan
//	@Failure	404	{object}	server.Problem
//	@Router		/kesehatan/admin/isu/{id} [get]
func (p *Plugin) handleGetIsu(w http.ResponseWriter, r *http.Request) {
	i, err := p.isu.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		p.writeErr(w, r, isuNotFound, err)
		return
	}
	writeJSON(w, http.StatusOK, i)
}

// handleUpdateIsu replaces an existing issue.
//
//	@Summary	Update issue
//	@Tags		kesehatan-admin
//	@Accept		json
//	@Produce	json
//	@Security	BearerAuth
//	@Param		id		path		string		true	"Issue ID"
//	@Param		request	body		IsuRequest	true	"Issue"
//	@Success	200		{object}	models.IsuKesehatan
//	@Failure	404		{object}	server.Problem
//	@Router		/kesehatan/admin/isu/{id} [put]
func (p *Plugin) handleUpdateIsu(w http.ResponseWriter, r *http.Request) {
	var req IsuRequest
	if !decode(w, r, &req) {
		return
	}
	cur, err := p.isu.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		p.writeErr(w, r, isuNotFound, err)
		return
	}
	req.ID = cur.ID
	i := req.model()
	if err := p.isu.Save(r.Context(), &i); err != nil {
		server.WriteError(w, r, p.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, i)
	p.publish(r.Context(), "isu/"+i.ID, "Isu "+i.Judul+" diperbarui")
}

// handleDeleteIsu permanently deletes an issue.
//
//	@Summary	Delete issue
//	@Tags		kesehatan-admin
//	@Security	BearerAuth
//	@Param		id		path	string	true	"Issue ID"
//	@Param		confirm	query	bool	true	"Must be true"
//	@Success	204
//	@Failure	404	{object}	server.Problem
//	@Router		/kesehatan/admin/isu/{id} [delete]
func (p *Plugin) handleDeleteIsu(w http.ResponseWriter, r *http.Request) {
	if !confirmed(w, r) {
		return
	}
	id := r.PathValue("id")
	if err := p.isu.Delete(r.Context(), id); err != nil {
		p.writeErr(w, r, isuNotFound, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
	p.publish(r.Context(), "isu/"+id, "Isu "+id+" dihapus")
}

// handlePublishIsu sets the published flag of an issue.
//
//	@Summary	Publish or unpublish issue
//	@Tags		kesehatan-admin
//	@Accept		json
//	@Produce	json
//	@Security	BearerAuth
//	@Param		id		path		string			true	"Issue ID"
//	@Param		request	body		PublishRequest	true	"Flag"
//	@Success	200		{object}	models.IsuKesehatan
//	@Router		/kesehatan/admin/isu/{id}/published [patch]
func (p *Plugin) handlePublishIsu(w http.ResponseWriter, r *http.Request) {
	var req PublishRequest
	if !decode(w, r, &req) {
		return
	}
	i, err := p.isu.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		p.writeErr(w, r, isuNotFound, err)
		return
	}
	err = optimistic.Apply(r.Context(), &i.Published, req.Published, func(ctx context.Context) error {
		return p.isu.SetPublished(ctx, i.ID, req.Published)
	})
	if err != nil {
		p.logger.Warn("publish toggle rolled back", zap.String("isu_id", i.ID), zap.Error(err))
		p.writeErr(w, r, isuNotFound, err)
		return
	}
	writeJSON(w, http.StatusOK, i)
	p.publish(r.Context(), "isu/"+i.ID, publishSummary("Isu "+i.Judul, i.Published))
}

// handleListStat lists monthly statistics oldest first, including drafts.
//
//	@Summary	Admin statistics list
//	@Tags		kesehatan-admin
//	@Produce	json
//	@Security	BearerAuth
//	@Success	200	{array}	models.StatistikBulanan
//	@Router		/kesehatan/admin/statistik [get]
func (p *Plugin) handleListStat(w http.ResponseWriter, r *http.Request) {
	rows, err := p.stat.List(r.Context(), false)
	if err != nil {
		server.WriteError(w, r, p.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, rows)
}

// handleSaveStat creates or replaces the statistic of a month.
//
//	@Summary	Save monthly statistic
//	@Tags		kesehatan-admin
//	@Accept		json
//	@Produce	json
//	@Security	BearerAuth
//	@Param		bulan	path		string		true	"Month, YYYY-MM"
//	@Param		request	body		StatRequest	true	"Counts"
//	@Success	200		{object}	models.StatistikBulanan
//	@Failure	422		{object}	server.Problem
//	@Router		/kesehatan/admin/statistik/{bulan} [put]
func (p *Plugin) handleSaveStat(w http.ResponseWriter, r *http.Request) {
	var req StatRequest
	if !decode(w, r, &req) {
		return
	}
	s := models.StatistikBulanan{
		Bulan:      r.PathValue("bulan"),
		Stunting:   services.CoerceCount(req.Stunting),
		Hipertensi: services.CoerceCount(req.Hipertensi),
		Published:  req.Published,
	}
	if err := p.stat.Save(r.Context(), &s); err != nil {
		server.WriteError(w, r, p.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, s)
	p.publish(r.Context(), "statistik/"+s.Bulan, "Statistik "+MonthLabel(s.Bulan)+" disimpan")
}

// handleDeleteStat permanently deletes a month.
//
//	@Summary	Delete monthly statistic
//	@Tags		kesehatan-admin
//	@Security	BearerAuth
//	@Param		bulan	path	string	true	"Month, YYYY-MM"
//	@Param		confirm	query	bool	true	"Must be true"
//	@Success	204
//	@Failure	404	{object}	server.Problem
//	@Router		/kesehatan/admin/statistik/{bulan} [delete]
func (p *Plugin) handleDeleteStat(w http.ResponseWriter, r *http.Request) {
	if !confirmed(w, r) {
		return
	}
	bulan := r.PathValue("bulan")
	if err := p.stat.Delete(r.Context(), bulan); err != nil {
		p.writeErr(w, r, statNotFound, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
	p.publish(r.Context(), "statistik/"+bulan, "Statistik "+MonthLabel(bulan)+" dihapus")
}

// handlePublishStat sets the published flag of a month.
//
//	@Summary	Publish or unpublish monthly statistic
//	@Tags		kesehatan-admin
//	@Accept		json
//	@Produce	json
//	@Security	BearerAuth
//	@Param		bulan	path		string			true	"Month, YYYY-MM"
//	@Param		request	body		PublishRequest	true	"Flag"
//	@Success	200		{object}	models.StatistikBulanan
//	@Router		/kesehatan/admin/statistik/{bulan}/published [patch]
func (p *Plugin) handlePublishStat(w http.ResponseWriter, r *http.Request) {
	var req PublishRequest
	if !decode(w, r, &req) {
		return
	}
	rows, err := p.stat.List(r.Context(), false)
	if err != nil {
		server.WriteError(w, r, p.logger, err)
		return
	}
	var s *models.StatistikBulanan
	for i := range rows {
		if rows[i].Bulan == r.PathValue("bulan") {
			s = &rows[i]
			break
		}
	}
	if s == nil {
		server.NotFound(w, statNotFound, r.URL.Path)
		return
	}
	err = optimistic.Apply(r.Context(), &s.Published, req.Published, func(ctx context.Context) error {
		return p.stat.SetPublished(ctx, s.Bulan, req.Published)
	})
	if err != nil {
		p.logger.Warn("publish toggle rolled back", zap.String("bulan", s.Bulan), zap.Error(err))
		p.writeErr(w, r, statNotFound, err)
		return
	}
	writeJSON(w, http.StatusOK, s)
	p.publish(r.Context(), "statistik/"+s.Bulan, publishSummary("Statistik "+MonthLabel(s.Bulan), s.Published))
}

// handleListJadwal lists schedules by date, including drafts.
//
//	@Summary	Admin schedule list
//	@Tags		kesehatan-admin
//	@Produce	json
//	@Security	BearerAuth
//	@Param		dusun	query	string	false	"Region ID"
//	@Success	200		{array}	models.JadwalKesehatan
//	@Router		/kesehatan/admin/jadwal [get]
func (p *Plugin) handleListJadwal(w http.ResponseWriter, r *http.Request) {
	q := services.JadwalQuery{}
	if dusun := r.URL.Query().Get("dusun"); !matchDusun("", dusun) {
		q.DusunID = dusun
	}
	rows, err := p.jadwal.List(r.Context(), q)
	if err != nil {
		server.WriteError(w, r, p.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, rows)
}

// handleCreateJadwal adds a schedule entry with a generated ID. The time is
// dropped when the schema does not store it.
//
//	@Summary	Create schedule
//	@Tags		kesehatan-admin
//	@Accept		json
//	@Produce	json
//	@Security	BearerAuth
//	@Param		request	body		JadwalRequest	true	"Schedule"
//	@Success	201		{object}	models.JadwalKesehatan
//	@Failure	422		{object}	server.Problem
//	@Router		/kesehatan/admin/jadwal [post]
func (p *Plugin) handleCreateJadwal(w http.ResponseWriter, r *http.Request) {
	var req JadwalRequest
	if !decode(w, r, &req) {
		return
	}
	j := req.model("")
	if err := p.jadwal.Create(r.Context(), &j); err != nil {
		server.WriteError(w, r, p.logger, err)
		return
	}
	p.respondJadwal(w, r, http.StatusCreated, j.ID)
	p.publish(r.Context(), "jadwal/"+j.ID, "Jadwal "+j.Kegiatan+" ditambahkan")
}

// handleGetJadwal returns one schedule entry.
//
//	@Summary	Get schedule
//	@Tags		kesehatan-admin
//	@Produce	json
//	@Security	BearerAuth
//	@Param		id	path		string	true	"Schedule ID"
//	@Success	200	{object}	models.JadwalKesehatan
//	@Failure	404	{object}	server.Problem
//	@Router		/kesehatan/admin/jadwal/{id} [get]
func (p *Plugin) handleGetJadwal(w http.ResponseWriter, r *http.Request) {
	p.respondJadwal(w, r, http.StatusOK, r.PathValue("id"))
}

func (p *Plugin) respondJadwal(w http.ResponseWriter, r *http.Request, status int, id string) {
	j, err := p.jadwal.Get(r.Context(), id)
	if err != nil {
		p.writeErr(w, r, jadwalNotFound, err)
		return
	}
	writeJSON(w, status, j)
}

// handleUpdateJadwal replaces a schedule entry.
//
//	@Summary	Update schedule
//	@Tags		kesehatan-admin
//	@Accept		json
//	@Produce	json
//	@Security	BearerAuth
//	@Param		id		path		string			true	"Schedule ID"
//	@Param		request	body		JadwalRequest	true	"Schedule"
//	@Success	200		{object}	models.JadwalKesehatan
//	@Failure	404		{object}	server.Problem
//	@Router		/kesehatan/admin/jadwal/{id} [put]
func (p *Plugin) handleUpdateJadwal(w http.ResponseWriter, r *http.Request) {
	var req JadwalRequest
	if !decode(w, r, &req) {
		return
	}
	j := req.model(r.PathValue("id"))
	if err := p.jadwal.Update(r.Context(), &j); err != nil {
		p.writeErr(w, r, jadwalNotFound, err)
		return
	}
	p.respondJadwal(w, r, http.StatusOK, j.ID)
	p.publish(r.Context(), "jadwal/"+j.ID, "Jadwal "+j.Kegiatan+" diperbarui")
}

// handleDeleteJadwal permanently deletes a schedule entry.
//
//	@Summary	Delete schedule
//	@Tags		kesehatan-admin
//	@Security	BearerAuth
//	@Param		id		path	string	true	"Schedule ID"
//	@Param		confirm	query	bool	true	"Must be true"
//	@Success	204
//	@Failure	404	{object}	server.Problem
//	@Router		/kesehatan/admin/jadwal/{id} [delete]
func (p *Plugin) handleDeleteJadwal(w http.ResponseWriter, r *http.Request) {
	if !confirmed(w, r) {
		return
	}
	id := r.PathValue("id")
	if err := p.jadwal.Delete(r.Context(), id); err != nil {
		p.writeErr(w, r, jadwalNotFound, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
	p.publish(r.Context(), "jadwal/"+id, "Jadwal dihapus")
}

// handlePublishJadwal sets the published flag of a schedule entry.
//
//	@Summary	Publish or unpublish schedule
//	@Tags		kesehatan-admin
//	@Accept		json
//	@Produce	json
//	@Security	BearerAuth
//	@Param		id		path		string			true	"Schedule ID"
//	@Param		request	body		PublishRequest	true	"Flag"
//	@Success	200		{object}	models.JadwalKesehatan
//	@Router		/kesehatan/admin/jadwal/{id}/published [patch]
func (p *Plugin) handlePublishJadwal(w http.ResponseWriter, r *http.Request) {
	var req PublishRequest
	if !decode(w, r, &req) {
		return
	}
	j, err := p.jadwal.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		p.writeErr(w, r, jadwalNotFound, err)
		return
	}
	err = optimistic.Apply(r.Context(), &j.Published, req.Published, func(ctx context.Context) error {
		return p.jadwal.SetPublished(ctx, j.ID, req.Published)
	})
	if err != nil {
		p.logger.Warn("publish toggle rolled back", zap.String("jadwal_id", j.ID), zap.Error(err))
		p.writeErr(w, r, jadwalNotFound, err)
		return
	}
	writeJSON(w, http.StatusOK, j)
	p.publish(r.Context(), "jadwal/"+j.ID, publishSummary("Jadwal "+j.Kegiatan, j.Published))
}

// handleListKader lists volunteers by name, including drafts.
//
//	@Summary	Admin volunteer list
//	@Tags		kesehatan-admin
//	@Produce	json
//	@Security	BearerAuth
//	@Param		dusun	query	string	false	"Region ID"
//	@Success	200		{array}	models.Kader
//	@Router		/kesehatan/admin/kader [get]
func (p *Plugin) handleListKader(w http.ResponseWriter, r *http.Request) {
	q := services.KaderQuery{}
	if dusun := r.URL.Query().Get("dusun"); !matchDusun("", dusun) {
		q.DusunID = dusun
	}
	rows, err := p.kader.List(r.Context(), q)
	if err != nil {
		server.WriteError(w, r, p.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, rows)
}

// handleCreateKader adds a volunteer with a generated ID.
//
//	@Summary	Create volunteer
//	@Tags		kesehatan-admin
//	@Accept		json
//	@Produce	json
//	@Security	BearerAuth
//	@Param		request	body		KaderRequest	true	"Volunteer"
//	@Success	201		{object}	models.Kader
//	@Failure	422		{object}	server.Problem
//	@Router		/kesehatan/admin/kader [post]
func (p *Plugin) handleCreateKader(w http.ResponseWriter, r *http.Request) {
	var req KaderRequest
	if !decode(w, r, &req) {
		return
	}
	k := req.model("")
	if err := p.kader.Create(r.Context(), &k); err != nil {
		server.WriteError(w, r, p.logger, err)
		return
	}
	p.respondKader(w, r, http.StatusCreated, k.ID)
	p.publish(r.Context(), "kader/"+k.ID, "Kader "+k.Nama+" ditambahkan")
}

// handleGetKader returns one volunteer.
//
//	@Summary	Get volunteer
//	@Tags		kesehatan-admin
//	@Produce	json
//	@Security	BearerAuth
//	@Param		id	path		string	true	"Volunteer ID"
//	@Success	200	{object}	models.Kader
//	@Failure	404	{object}	server.Problem
//	@Router		/kesehatan/admin/kader/{id} [get]
func (p *Plugin) handleGetKader(w http.ResponseWriter, r *http.Request) {
	p.respondKader(w, r, http.StatusOK, r.PathValue("id"))
}

func (p *Plugin) respondKader(w http.ResponseWriter, r *http.Request, status int, id string) {
	k, err := p.kader.Get(r.Context(), id)
	if err != nil {
		p.writeErr(w, r, kaderNotFound, err)
		return
	}
	writeJSON(w, status, k)
}

// handleUpdateKader replaces a volunteer.
//
//	@Summary	Update volunteer
//	@Tags		kesehatan-admin
//	@Accept		json
//	@Produce	json
//	@Security	BearerAuth
//	@Param		id		path		string			true	"Volunteer ID"
//	@Param		request	body		KaderRequest	true	"Volunteer"
//	@Success	200		{object}	models.Kader
//	@Failure	404		{object}	server.Problem
//	@Router		/kesehatan/admin/kader/{id} [put]
func (p *Plugin) handleUpdateKader(w http.ResponseWriter, r *http.Request) {
	var req KaderRequest
	if !decode(w, r, &req) {
		return
	}
	k := req.model(r.PathValue("id"))
	if err := p.kader.Update(r.Context(), &k); err != nil {
		p.writeErr(w, r, kaderNotFound, err)
		return
	}
	p.respondKader(w, r, http.StatusOK, k.ID)
	p.publish(r.Context(), "kader/"+k.ID, "Kader "+k.Nama+" diperbarui")
}

// handleDeleteKader permanently deletes a volunteer.
//
//	@Summary	Delete volunteer
//	@Tags		kesehatan-admin
//	@Security	BearerAuth
//	@Param		id		path	string	true	"Volunteer ID"
//	@Param		confirm	query	bool	true	"Must be true"
//	@Success	204
//	@Failure	404	{object}	server.Problem
//	@Router		/kesehatan/admin/kader/{id} [delete]
func (p *Plugin) handleDeleteKader(w http.ResponseWriter, r *http.Request) {
	if !confirmed(w, r) {
		return
	}
	id := r.PathValue("id")
	if err := p.kader.Delete(r.Context(), id); err != nil {
		p.writeErr(w, r, kaderNotFound, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
	p.publish(r.Context(), "kader/"+id, "Kader dihapus")
}

// handlePublishKader sets the published flag of a volunteer.
//
//	@Summary	Publish or unpublish volunteer
//	@Tags		kesehatan-admin
//	@Accept		json
//	@Produce	json
//	@Security	BearerAuth
//	@Param		id		path		string			true	"Volunteer ID"
//	@Param		request	body		PublishRequest	true	"Flag"
//	@Success	200		{object}	models.Kader
//	@Router		/kesehatan/admin/kader/{id}/published [patch]
func (p *Plugin) handlePublishKader(w http.ResponseWriter, r *http.Request) {
	var req PublishRequest
	if !decode(w, r, &req) {
		return
	}
	k, err := p.kader.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		p.writeErr(w, r, kaderNotFound, err)
		return
	}
	err = optimistic.Apply(r.Context(), &k.Published, req.Published, func(ctx context.Context) error {
		return p.kader.SetPublished(ctx, k.ID, req.Published)
	})
	if err != nil {
		p.logger.Warn("publish toggle rolled back", zap.String("kader_id", k.ID), zap.Error(err))
		p.writeErr(w, r, kaderNotFound, err)
		return
	}
	writeJSON(w, http.StatusOK, k)
	p.publish(r.Context(), "kader/"+k.ID, publishSummary("Kader "+k.Nama, k.Published))
}

// handleGetMeta returns the page metadata, including an unpublished row.
//
//	@Summary	Get health metadata
//	@Tags		kesehatan-admin
//	@Produce	json
//	@Security	BearerAuth
//	@Success	200	{object}	models.MetaKesehatan
//	@Failure	404	{object}	server.Problem
//	@Router		/kesehatan/admin/meta [get]
func (p *Plugin) handleGetMeta(w http.ResponseWriter, r *http.Request) {
	m, err := p.meta.Get(r.Context(), false)
	if err != nil {
		p.writeErr(w, r, "Meta kesehatan belum diisi.", err)
		return
	}
	writeJSON(w, http.StatusOK, m)
}

// handleSaveMeta creates or replaces the page metadata.
//
//	@Summary	Save health metadata
//	@Tags		kesehatan-admin
//	@Accept		json
//	@Produce	json
//	@Security	BearerAuth
//	@Param		request	body		MetaRequest	true	"Metadata"
//	@Success	200		{object}	models.MetaKesehatan
//	@Failure	422		{object}	server.Problem
//	@Router		/kesehatan/admin/meta [put]
func (p *Plugin) handleSaveMeta(w http.ResponseWriter, r *http.Request) {
	var req MetaRequest
	if !decode(w, r, &req) {
		return
	}
	m := models.MetaKesehatan{PeriodeTerakhir: req.PeriodeTerakhir, Sumber: req.Sumber, Published: req.Published}
	if err := p.meta.Save(r.Context(), &m); err != nil {
		server.WriteError(w, r, p.logger, err)
		return
	}
	saved, err := p.meta.Get(r.Context(), false)
	if err != nil {
		server.WriteError(w, r, p.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, saved)
	p.publish(r.Context(), "meta", "Meta kesehatan diperbarui")
}

// handleUploadLeaflet replaces the health leaflet PDF.
//
//	@Summary		Upload health leaflet
//	@Description	Multipart field "file" (application/pdf). The previous leaflet is overwritten.
//	@Tags			kesehatan-admin
//	@Accept			multipart/form-data
//	@Produce		json
//	@Security		BearerAuth
//	@Param			file	formData	file	true	"PDF"
//	@Success		201		{object}	storage.Upload
//	@Failure		422		{object}	server.Problem
//	@Router			/kesehatan/admin/leaflet [post]
func (p *Plugin) handleUploadLeaflet(w http.ResponseWriter, r *http.Request) {
	if p.storage == nil {
		server.InternalError(w, "Penyimpanan file belum dikonfigurasi.", r.URL.Path)
		return
	}
	r.Body = http.MaxBytesReader(w, r.Body, maxLeafletBytes)
	file, header, err := r.FormFile("file")
	if err != nil {
		server.BadRequest(w, "File wajib diunggah.", r.URL.Path)
		return
	}
	defer file.Close()

	up, err := p.storage.PutLeaflet(storage.File{
		Name:        header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Size:        header.Size,
		Body:        file,
	})
	switch {
	case errors.Is(err, storage.ErrNotPDF):
		server.ValidationFailed(w, "file", storage.Message(err, 0), r.URL.Path)
		return
	case err != nil:
		p.logger.Error("leaflet upload failed", zap.Error(err))
		server.InternalError(w, storage.Message(err, 0), r.URL.Path)
		return
	}
	writeJSON(w, http.StatusCreated, up)
	p.publish(r.Context(), "leaflet", "Leaflet kesehatan diunggah")
}
