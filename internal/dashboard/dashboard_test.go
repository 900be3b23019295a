package dashboard_test

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ngipak/infodesa/internal/dashboard"
	"github.com/ngipak/infodesa/internal/event"
	"github.com/ngipak/infodesa/internal/laporan"
	"github.com/ngipak/infodesa/internal/testutil/apitest"
	"github.com/ngipak/infodesa/internal/umkm"
	"github.com/ngipak/infodesa/pkg/models"
)

func TestSummary(t *testing.T) {
	env := apitest.New(t, dashboard.New(), laporan.New())
	admin := env.Token(t, "admin@desa.id", models.RoleAdmin)
	warga := env.Token(t, "warga@desa.id", models.RoleNone)

	w := env.Do(http.MethodPost, "/api/v1/laporan", warga, laporan.CreateRequest{
		Jenis: "usulan", Judul: "UMKM baru", Pesan: "Ada warung baru di Jetis.",
	})
	require.Equal(t, http.StatusCreated, w.Code)

	w = env.Do(http.MethodGet, "/api/v1/dashboard/summary", warga, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = env.Do(http.MethodGet, "/api/v1/dashboard/summary", admin, nil)
	require.Equal(t, http.StatusOK, w.Code)
	s := apitest.Decode[dashboard.Summary](t, w)
	assert.Equal(t, 4, s.Umkm.Total)
	assert.Equal(t, 4, s.Umkm.Published)
	assert.Equal(t, 5, s.Produk.Total)
	assert.Equal(t, 3, s.Isu.Total)
	assert.Equal(t, 6, s.Statistik.Total)
	assert.Equal(t, 3, s.Jadwal.Total)
	assert.Equal(t, 3, s.Kader.Total)
	assert.Equal(t, 1, s.LaporanNew)
}

func TestActivity(t *testing.T) {
	env := apitest.New(t, dashboard.New(), umkm.New())
	admin := env.Token(t, "admin@desa.id", models.RoleAdmin)

	w := env.Do(http.MethodPatch, "/api/v1/umkm/admin/vendors/u-ngipak-keripik/published", admin,
		map[string]bool{"published": false})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	env.Bus.Wait()

	w = env.Do(http.MethodGet, "/api/v1/dashboard/activity", admin, nil)
	require.Equal(t, http.StatusOK, w.Code)
	feed := apitest.Decode[[]event.Event](t, w)
	require.Len(t, feed, 1)
	assert.Equal(t, event.TopicUmkmPublished, feed[0].Topic)
	assert.Equal(t, "umkm", feed[0].Source)
}
