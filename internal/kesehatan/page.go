package kesehatan

import (
	"sort"
	"strconv"
	"strings"

	"github.com/ngipak/infodesa/internal/catalog"
	"github.com/ngipak/infodesa/internal/status"
	"github.com/ngipak/infodesa/pkg/models"
)

// DefaultRingkas is shown for an issue without a summary.
const DefaultRingkas = "Ringkasan belum diisi."

// Page is the public health page.
type Page struct {
	Dusun   string `json:"dusun"`
	Query   string `json:"q"`
	Periode string `json:"periode"`

	Meta       *models.MetaKesehatan    `json:"meta"`
	Latest     *models.StatistikBulanan `json:"latest"`
	Trend      TrendSection             `json:"trend"`
	Isu        []models.IsuKesehatan    `json:"isu"`
	Jadwal     []models.JadwalKesehatan `json:"jadwal"`
	Kader      []models.Kader           `json:"kader"`
	DusunList  []models.Dusun           `json:"dusun_list"`
	LeafletURL string                   `json:"leaflet_url"`

	// Missing names the content modules with nothing published yet.
	Missing     []string          `json:"missing"`
	Warnings    map[string]string `json:"warnings,omitempty"`
	WarningText string            `json:"warning_text,omitempty"`
}

// TrendSection is the six-month chart.
type TrendSection struct {
	Months          []string      `json:"months"`
	Labels          []string      `json:"labels"`
	Stunting        []int         `json:"stunting"`
	Hipertensi      []int         `json:"hipertensi"`
	StuntingTrend   *status.Trend `json:"stunting_trend,omitempty"`
	HipertensiTrend *status.Trend `json:"hipertensi_trend,omitempty"`
}

// FilterJadwal keeps schedules of a region (or all) whose activity,
// region name or location contains q, sorted by date.
func FilterJadwal(rows []models.JadwalKesehatan, dusunID, q string) []models.JadwalKesehatan {
	query := strings.ToLower(strings.TrimSpace(q))
	out := make([]models.JadwalKesehatan, 0, len(rows))
	for _, j := range rows {
		if !matchDusun(j.Dusun.ID, dusunID) {
			continue
		}
		if query != "" && !strings.Contains(strings.ToLower(j.Kegiatan+" "+j.Dusun.Nama+" "+j.Lokasi), query) {
			continue
		}
		out = append(out, j)
	}
	sort.SliceStable(out, func(a, b int) bool { return out[a].Tanggal < out[b].Tanggal })
	return out
}

// FilterKader keeps the volunteers of a region, or all of them.
func FilterKader(rows []models.Kader, dusunID string) []models.Kader {
	out := make([]models.Kader, 0, len(rows))
	for _, k := range rows {
		if matchDusun(k.Dusun.ID, dusunID) {
			out = append(out, k)
		}
	}
	return out
}

func matchDusun(id, filter string) bool {
	return filter == "" || filter == catalog.All || id == filter
}

func buildTrend(stats []models.StatistikBulanan) TrendSection {
	last := status.LastN(stats, status.TrendWindow)
	t := TrendSection{
		Months:     make([]string, 0, len(last)),
		Labels:     make([]string, 0, len(last)),
		Stunting:   make([]int, 0, len(last)),
		Hipertensi: make([]int, 0, len(last)),
	}
	for _, s := range last {
		t.Months = append(t.Months, s.Bulan)
		t.Labels = append(t.Labels, MonthLabel(s.Bulan))
		t.Stunting = append(t.Stunting, s.Stunting)
		t.Hipertensi = append(t.Hipertensi, s.Hipertensi)
	}
	if tr, ok := status.DeriveTrend(t.Stunting); ok {
		t.StuntingTrend = &tr
	}
	if tr, ok := status.DeriveTrend(t.Hipertensi); ok {
		t.HipertensiTrend = &tr
	}
	return t
}

func buildPage(snap *Snapshot, dusunID, q string) *Page {
	if dusunID == "" {
		dusunID = catalog.All
	}
	p := &Page{
		Dusun:      dusunID,
		Query:      q,
		Periode:    "-",
		Meta:       snap.Meta,
		Trend:      buildTrend(snap.Statistik),
		Isu:        make([]models.IsuKesehatan, 0, len(snap.Isu)),
		Jadwal:     FilterJadwal(snap.Jadwal, dusunID, q),
		Kader:      FilterKader(snap.Kader, dusunID),
		DusunList:  snap.Dusun,
		LeafletURL: snap.LeafletURL,
		Missing:    []string{},
		Warnings:   snap.Warnings,
	}
	p.WarningText = snap.WarningText()
	if n := len(snap.Statistik); n > 0 {
		latest := snap.Statistik[n-1]
		p.Latest = &latest
	}
	if snap.Meta != nil && snap.Meta.PeriodeTerakhir != "" {
		p.Periode = MonthLabel(snap.Meta.PeriodeTerakhir)
	}
	for _, i := range snap.Isu {
		if strings.TrimSpace(i.Ringkas) == "" {
			i.Ringkas = DefaultRingkas
		}
		p.Isu = append(p.Isu, i)
	}

	add := func(missing bool, name string) {
		if missing {
			p.Missing = append(p.Missing, name)
		}
	}
	add(snap.Meta == nil, "Meta (Hero)")
	add(len(snap.Statistik) == 0, "Statistik")
	add(snap.LeafletURL == "", "Leaflet")
	add(len(snap.Isu) == 0, "Isu")
	add(len(snap.Jadwal) == 0, "Jadwal")
	add(len(snap.Kader) == 0, "Kader")
	return p
}

var bulan = [...]string{
	"Januari", "Februari", "Maret", "April", "Mei", "Juni",
	"Juli", "Agustus", "September", "Oktober", "November", "Desember",
}

// MonthLabel renders "2026-01" as "Januari 2026". Malformed input is
// returned unchanged.
func MonthLabel(yyyymm string) string {
	year, month, ok := strings.Cut(yyyymm, "-")
	if !ok || len(year) != 4 {
		return yyyymm
	}
	m, err := strconv.Atoi(month)
	if err != nil || m < 1 || m > 12 {
		return yyyymm
	}
	return bulan[m-1] + " " + year
}
