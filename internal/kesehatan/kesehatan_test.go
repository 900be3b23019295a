package kesehatan_test

import (
	"bytes"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ngipak/infodesa/internal/event"
	"github.com/ngipak/infodesa/internal/kesehatan"
	"github.com/ngipak/infodesa/internal/server"
	"github.com/ngipak/infodesa/internal/storage"
	"github.com/ngipak/infodesa/internal/testutil/apitest"
	"github.com/ngipak/infodesa/pkg/models"
)

func setup(t *testing.T) (*apitest.Env, string) {
	t.Helper()
	env := apitest.New(t, kesehatan.New())
	return env, env.Token(t, "admin@desa.id", models.RoleAdmin)
}

func TestPage(t *testing.T) {
	env, _ := setup(t)

	w := env.Do(http.MethodGet, "/api/v1/kesehatan/page", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	p := apitest.Decode[kesehatan.Page](t, w)

	assert.Equal(t, "all", p.Dusun)
	assert.Empty(t, p.Warnings)
	assert.Equal(t, []string{"Leaflet"}, p.Missing)
	assert.Equal(t, "Januari 2026", p.Periode)
	require.NotNil(t, p.Latest)
	assert.Equal(t, 14, p.Latest.Stunting)
	require.NotNil(t, p.Trend.StuntingTrend)
	assert.Equal(t, "Menurun 1", p.Trend.StuntingTrend.Label)
	assert.Equal(t, "Meningkat 2", p.Trend.HipertensiTrend.Label)
	assert.Len(t, p.Isu, 3)
	assert.Equal(t, "stunting", p.Isu[0].ID)
	assert.Len(t, p.Jadwal, 3)
	assert.Len(t, p.Kader, 3)
	assert.Len(t, p.DusunList, 9)
}

func TestPageFilters(t *testing.T) {
	env, _ := setup(t)

	w := env.Do(http.MethodGet, "/api/v1/kesehatan/page?dusun=d3", "", nil)
	p := apitest.Decode[kesehatan.Page](t, w)
	require.Len(t, p.Jadwal, 1)
	assert.Equal(t, "j1", p.Jadwal[0].ID)
	require.Len(t, p.Kader, 1)
	assert.Equal(t, "Bu Wati", p.Kader[0].Nama)

	w = env.Do(http.MethodGet, "/api/v1/kesehatan/page?q=jetis", "", nil)
	p = apitest.Decode[kesehatan.Page](t, w)
	require.Len(t, p.Jadwal, 1)
	assert.Equal(t, "j3", p.Jadwal[0].ID)
	assert.Len(t, p.Kader, 3, "the query only narrows schedules")
}

func TestIMT(t *testing.T) {
	env, _ := setup(t)

	tests := []struct {
		query    string
		valid    bool
		value    float64
		kategori string
	}{
		{"berat=60&tinggi=170", true, 20.8, "Berat badan normal"},
		{"berat=45,5&tinggi=170", true, 15.7, "Berat badan kurang"},
		{"berat=95&tinggi=170", true, 32.9, "Obesitas"},
		{"berat=0&tinggi=170", false, 0, ""},
		{"berat=abc&tinggi=170", false, 0, ""},
		{"tinggi=170", false, 0, ""},
		{"berat=60&tinggi=1e-200", false, 0, ""},
	}
	for _, tc := range tests {
		t.Run(tc.query, func(t *testing.T) {
			w := env.Do(http.MethodGet, "/api/v1/kesehatan/imt?"+tc.query, "", nil)
			require.Equal(t, http.StatusOK, w.Code)
			got := apitest.Decode[kesehatan.IMTResponse](t, w)
			assert.Equal(t, tc.valid, got.Valid)
			if !tc.valid {
				assert.Nil(t, got.Result)
				return
			}
			require.NotNil(t, got.Result)
			assert.InDelta(t, tc.value, got.Result.Value, 0.001)
			assert.Equal(t, tc.kategori, got.Result.Kategori)
		})
	}
}

func TestAdminIsu(t *testing.T) {
	env, token := setup(t)
	rec := env.Record(t)

	w := env.Do(http.MethodPost, "/api/v1/kesehatan/admin/isu", token, kesehatan.IsuRequest{
		Judul: "Demam Berdarah", Prioritas: "darurat", AksiWarga: []string{"3M Plus"},
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	isu := apitest.Decode[models.IsuKesehatan](t, w)
	assert.Equal(t, "demam-berdarah", isu.ID)
	assert.Equal(t, models.PrioritasSedang, isu.Prioritas)
	assert.Equal(t, []string{"3M Plus"}, isu.Saran)

	w = env.Do(http.MethodPost, "/api/v1/kesehatan/admin/isu", token, kesehatan.IsuRequest{Judul: "Demam Berdarah"})
	assert.Equal(t, http.StatusConflict, w.Code)

	w = env.Do(http.MethodPost, "/api/v1/kesehatan/admin/isu", token, kesehatan.IsuRequest{})
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

	w = env.Do(http.MethodGet, "/api/v1/kesehatan/page", "", nil)
	assert.Len(t, apitest.Decode[kesehatan.Page](t, w).Isu, 3, "drafts stay hidden")

	w = env.Do(http.MethodPatch, "/api/v1/kesehatan/admin/isu/demam-berdarah/published", token, kesehatan.PublishRequest{Published: true})
	require.Equal(t, http.StatusOK, w.Code)

	w = env.Do(http.MethodGet, "/api/v1/kesehatan/page", "", nil)
	page := apitest.Decode[kesehatan.Page](t, w)
	require.Len(t, page.Isu, 4)
	last := page.Isu[3]
	assert.Equal(t, "demam-berdarah", last.ID, "issues without urutan sort last")
	assert.Equal(t, kesehatan.DefaultRingkas, last.Ringkas)

	w = env.Do(http.MethodPut, "/api/v1/kesehatan/admin/isu/demam-berdarah", token, kesehatan.IsuRequest{
		Judul: "DBD", Ringkas: "Waspada musim hujan", Published: true,
	})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "DBD", apitest.Decode[models.IsuKesehatan](t, w).Judul)

	w = env.Do(http.MethodPut, "/api/v1/kesehatan/admin/isu/nope", token, kesehatan.IsuRequest{Judul: "X"})
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = env.Do(http.MethodDelete, "/api/v1/kesehatan/admin/isu/demam-berdarah", token, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	w = env.Do(http.MethodDelete, "/api/v1/kesehatan/admin/isu/demam-berdarah?confirm=true", token, nil)
	assert.Equal(t, http.StatusNoContent, w.Code)
	w = env.Do(http.MethodGet, "/api/v1/kesehatan/admin/isu/demam-berdarah", token, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	env.Bus.Wait()
	topics := rec.Topics()
	assert.Len(t, topics, 4)
	for _, topic := range topics {
		assert.Equal(t, event.TopicKesehatanChanged, topic)
	}
}

func TestAdminStatistik(t *testing.T) {
	env, token := setup(t)

	w := env.Do(http.MethodPut, "/api/v1/kesehatan/admin/statistik/2026-02", token, kesehatan.StatRequest{
		Stunting: -3, Hipertensi: 130.9, Published: true,
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	s := apitest.Decode[models.StatistikBulanan](t, w)
	assert.Equal(t, 0, s.Stunting)
	assert.Equal(t, 130, s.Hipertensi)

	w = env.Do(http.MethodPut, "/api/v1/kesehatan/admin/statistik/Feb-26", token, kesehatan.StatRequest{})
	require.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Equal(t, "bulan", apitest.Decode[server.Problem](t, w).Field)

	w = env.Do(http.MethodGet, "/api/v1/kesehatan/page", "", nil)
	p := apitest.Decode[kesehatan.Page](t, w)
	assert.Equal(t, "2026-02", p.Latest.Bulan)
	assert.Equal(t, "2025-09", p.Trend.Months[0])
	assert.Equal(t, "Menurun 14", p.Trend.StuntingTrend.Label)

	w = env.Do(http.MethodPatch, "/api/v1/kesehatan/admin/statistik/2026-02/published", token, kesehatan.PublishRequest{})
	require.Equal(t, http.StatusOK, w.Code)
	assert.False(t, apitest.Decode[models.StatistikBulanan](t, w).Published)

	w = env.Do(http.MethodGet, "/api/v1/kesehatan/admin/statistik", token, nil)
	assert.Len(t, apitest.Decode[[]models.StatistikBulanan](t, w), 7)

	w = env.Do(http.MethodPatch, "/api/v1/kesehatan/admin/statistik/1999-01/published", token, kesehatan.PublishRequest{})
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = env.Do(http.MethodDelete, "/api/v1/kesehatan/admin/statistik/2026-02?confirm=true", token, nil)
	assert.Equal(t, http.StatusNoContent, w.Code)
}

func TestAdminJadwalAndKader(t *testing.T) {
	env, token := setup(t)

	w := env.Do(http.MethodPost, "/api/v1/kesehatan/admin/jadwal", token, kesehatan.JadwalRequest{
		Kegiatan: "Cek Tensi", Tanggal: "2026-01-10", Jam: "09:00", DusunID: "d3", Published: true,
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	j := apitest.Decode[models.JadwalKesehatan](t, w)
	assert.NotEmpty(t, j.ID)
	assert.Equal(t, "Ngipak", j.Dusun.Nama)
	assert.Equal(t, "09:00", j.Jam)

	w = env.Do(http.MethodPost, "/api/v1/kesehatan/admin/jadwal", token, kesehatan.JadwalRequest{
		Kegiatan: "Cek Tensi", Tanggal: "10/01/2026", DusunID: "d3",
	})
	require.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Equal(t, "tanggal", apitest.Decode[server.Problem](t, w).Field)

	w = env.Do(http.MethodGet, "/api/v1/kesehatan/page?dusun=d3", "", nil)
	p := apitest.Decode[kesehatan.Page](t, w)
	require.Len(t, p.Jadwal, 2)
	assert.Equal(t, j.ID, p.Jadwal[0].ID, "sorted by date")

	w = env.Do(http.MethodGet, "/api/v1/kesehatan/admin/jadwal?dusun=d3", token, nil)
	assert.Len(t, apitest.Decode[[]models.JadwalKesehatan](t, w), 2)

	w = env.Do(http.MethodPut, "/api/v1/kesehatan/admin/jadwal/"+j.ID, token, kesehatan.JadwalRequest{
		Kegiatan: "Cek Tensi Lansia", Tanggal: "2026-01-11", DusunID: "d8",
	})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Jetis", apitest.Decode[models.JadwalKesehatan](t, w).Dusun.Nama)

	w = env.Do(http.MethodDelete, "/api/v1/kesehatan/admin/jadwal/"+j.ID+"?confirm=true", token, nil)
	assert.Equal(t, http.StatusNoContent, w.Code)
	w = env.Do(http.MethodDelete, "/api/v1/kesehatan/admin/jadwal/"+j.ID+"?confirm=true", token, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = env.Do(http.MethodPost, "/api/v1/kesehatan/admin/kader", token, kesehatan.KaderRequest{
		Nama: "Bu Ani", NoWA: "0812", DusunID: "d9",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	k := apitest.Decode[models.Kader](t, w)

	w = env.Do(http.MethodPatch, "/api/v1/kesehatan/admin/kader/"+k.ID+"/published", token, kesehatan.PublishRequest{Published: true})
	require.Equal(t, http.StatusOK, w.Code)

	w = env.Do(http.MethodGet, "/api/v1/kesehatan/page?dusun=d9", "", nil)
	p = apitest.Decode[kesehatan.Page](t, w)
	require.Len(t, p.Kader, 1)
	assert.Equal(t, "Bu Ani", p.Kader[0].Nama)

	w = env.Do(http.MethodGet, "/api/v1/kesehatan/admin/kader/nope", token, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestAdminMeta(t *testing.T) {
	env, token := setup(t)

	w := env.Do(http.MethodPut, "/api/v1/kesehatan/admin/meta", token, kesehatan.MetaRequest{
		PeriodeTerakhir: "2026-02-15", Published: true,
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	m := apitest.Decode[models.MetaKesehatan](t, w)
	assert.Equal(t, "2026-02", m.PeriodeTerakhir)
	assert.Equal(t, models.DefaultSumber, m.Sumber)

	w = env.Do(http.MethodPut, "/api/v1/kesehatan/admin/meta", token, kesehatan.MetaRequest{PeriodeTerakhir: "Feb"})
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

	w = env.Do(http.MethodPut, "/api/v1/kesehatan/admin/meta", token, kesehatan.MetaRequest{Sumber: "Puskesmas"})
	require.Equal(t, http.StatusOK, w.Code)
	w = env.Do(http.MethodGet, "/api/v1/kesehatan/page", "", nil)
	p := apitest.Decode[kesehatan.Page](t, w)
	assert.Nil(t, p.Meta, "unpublished metadata is hidden")
	assert.Contains(t, p.Missing, "Meta (Hero)")

	w = env.Do(http.MethodGet, "/api/v1/kesehatan/admin/meta", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Puskesmas", apitest.Decode[models.MetaKesehatan](t, w).Sumber)
}

func leafletRequest(t *testing.T, contentType string) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", `form-data; name="file"; filename="leaflet.pdf"`)
	h.Set("Content-Type", contentType)
	part, err := mw.CreatePart(h)
	require.NoError(t, err)
	_, err = part.Write([]byte("%PDF-1.4 leaflet"))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/v1/kesehatan/admin/leaflet", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func TestUploadLeaflet(t *testing.T) {
	env, token := setup(t)

	w := env.DoRequest(leafletRequest(t, "image/png"), token)
	require.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Equal(t, "File harus berupa PDF.", apitest.Decode[server.Problem](t, w).Detail)

	w = env.DoRequest(leafletRequest(t, "application/pdf"), token)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	up := apitest.Decode[storage.Upload](t, w)
	assert.Equal(t, storage.LeafletPath, up.Path)

	w = env.Do(http.MethodGet, "/api/v1/kesehatan/page", "", nil)
	p := apitest.Decode[kesehatan.Page](t, w)
	assert.True(t, strings.HasPrefix(p.LeafletURL, "/files/leaflet/leaflet-kesehatan.pdf?v="), p.LeafletURL)
	assert.Empty(t, p.Missing)

	path, _, _ := strings.Cut(p.LeafletURL, "?")
	w = env.Do(http.MethodGet, path, "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "%PDF-1.4 leaflet", w.Body.String())
}

func TestHealth(t *testing.T) {
	env, _ := setup(t)

	w := env.Do(http.MethodGet, "/api/v1/health", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"status":"ok"`)
}
