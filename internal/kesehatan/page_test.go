package kesehatan

import (
	"reflect"
	"testing"

	"github.com/ngipak/infodesa/internal/status"
	"github.com/ngipak/infodesa/internal/testutil"
	"github.com/ngipak/infodesa/pkg/models"
)

func jadwalIDs(rows []models.JadwalKesehatan) []string {
	out := []string{}
	for _, j := range rows {
		out = append(out, j.ID)
	}
	return out
}

func TestFilterJadwal(t *testing.T) {
	ngipak := testutil.NewDusun("d3", "Ngipak")
	jetis := testutil.NewDusun("d8", "Jetis")
	rows := []models.JadwalKesehatan{
		{ID: "j3", Kegiatan: "Posbindu Lansia", Tanggal: "2026-02-02", Lokasi: "Balai Dusun", Dusun: jetis},
		{ID: "j1", Kegiatan: "Posyandu Balita", Tanggal: "2026-01-20", Lokasi: "Balai Dusun Ngipak", Dusun: ngipak},
		{ID: "j2", Kegiatan: "Kelas Ibu Hamil", Tanggal: "2026-01-25", Lokasi: "Rumah Kader", Dusun: ngipak},
	}

	tests := []struct {
		name  string
		dusun string
		q     string
		want  []string
	}{
		{"all sorted by date", "all", "", []string{"j1", "j2", "j3"}},
		{"empty region means all", "", "", []string{"j1", "j2", "j3"}},
		{"region", "d3", "", []string{"j1", "j2"}},
		{"activity", "all", "posbindu", []string{"j3"}},
		{"region name", "all", "JETIS", []string{"j3"}},
		{"location", "all", "rumah kader", []string{"j2"}},
		{"region and query", "d8", "posyandu", []string{}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := jadwalIDs(FilterJadwal(rows, tc.dusun, tc.q))
			if !reflect.DeepEqual(got, tc.want) {
				t.Errorf("FilterJadwal(%q, %q) = %v, want %v", tc.dusun, tc.q, got, tc.want)
			}
		})
	}
	if rows[0].ID != "j3" {
		t.Error("FilterJadwal must not reorder its input")
	}
}

func TestFilterKader(t *testing.T) {
	rows := []models.Kader{
		{ID: "k1", Dusun: testutil.NewDusun("d1", "Kalangan 1")},
		{ID: "k2", Dusun: testutil.NewDusun("d3", "Ngipak")},
	}
	if got := FilterKader(rows, "d3"); len(got) != 1 || got[0].ID != "k2" {
		t.Errorf("FilterKader(d3) = %+v", got)
	}
	if got := FilterKader(rows, "all"); len(got) != 2 {
		t.Errorf("FilterKader(all) = %d rows, want 2", len(got))
	}
}

func TestBuildTrend(t *testing.T) {
	var stats []models.StatistikBulanan
	for i, m := range []string{"2025-07", "2025-08", "2025-09", "2025-10", "2025-11", "2025-12", "2026-01"} {
		stats = append(stats, models.StatistikBulanan{Bulan: m, Stunting: 20 - i, Hipertensi: 100 + i*2})
	}
	stats[6].Stunting = stats[5].Stunting

	tr := buildTrend(stats)
	if len(tr.Months) != status.TrendWindow || tr.Months[0] != "2025-08" {
		t.Errorf("Months = %v, want the last 6 starting 2025-08", tr.Months)
	}
	if tr.Labels[5] != "Januari 2026" {
		t.Errorf("Labels[5] = %q", tr.Labels[5])
	}
	if tr.StuntingTrend == nil || tr.StuntingTrend.Label != "Stabil" {
		t.Errorf("StuntingTrend = %+v, want Stabil", tr.StuntingTrend)
	}
	if tr.HipertensiTrend == nil || tr.HipertensiTrend.Label != "Meningkat 2" {
		t.Errorf("HipertensiTrend = %+v, want Meningkat 2", tr.HipertensiTrend)
	}

	one := buildTrend(stats[:1])
	if one.StuntingTrend != nil || one.HipertensiTrend != nil {
		t.Error("a single point has no trend")
	}
}

func TestBuildPage(t *testing.T) {
	t.Run("empty content lists every missing module", func(t *testing.T) {
		snap := &Snapshot{}
		snap.normalize()
		p := buildPage(snap, "", "")
		want := []string{"Meta (Hero)", "Statistik", "Leaflet", "Isu", "Jadwal", "Kader"}
		if !reflect.DeepEqual(p.Missing, want) {
			t.Errorf("Missing = %v, want %v", p.Missing, want)
		}
		if p.Dusun != "all" || p.Periode != "-" || p.Latest != nil {
			t.Errorf("page = %+v", p)
		}
	})

	t.Run("summary placeholder and latest month", func(t *testing.T) {
		snap := &Snapshot{
			Isu:        []models.IsuKesehatan{{ID: "a", Judul: "A"}, {ID: "b", Judul: "B", Ringkas: "Isi"}},
			Statistik:  []models.StatistikBulanan{{Bulan: "2025-12"}, {Bulan: "2026-01", Stunting: 14}},
			Meta:       &models.MetaKesehatan{PeriodeTerakhir: "2026-01"},
			LeafletURL: "/files/leaflet/x.pdf",
		}
		snap.normalize()
		p := buildPage(snap, "d3", "")
		if p.Isu[0].Ringkas != DefaultRingkas || p.Isu[1].Ringkas != "Isi" {
			t.Errorf("Isu = %+v", p.Isu)
		}
		if snap.Isu[0].Ringkas != "" {
			t.Error("buildPage must not mutate the snapshot")
		}
		if p.Latest == nil || p.Latest.Bulan != "2026-01" {
			t.Errorf("Latest = %+v", p.Latest)
		}
		if p.Periode != "Januari 2026" {
			t.Errorf("Periode = %q", p.Periode)
		}
		if !reflect.DeepEqual(p.Missing, []string{"Jadwal", "Kader"}) {
			t.Errorf("Missing = %v", p.Missing)
		}
	})
}

func TestMonthLabel(t *testing.T) {
	tests := map[string]string{
		"2026-01": "Januari 2026",
		"2025-12": "Desember 2025",
		"2025-13": "2025-13",
		"januari": "januari",
		"":        "",
	}
	for in, want := range tests {
		if got := MonthLabel(in); got != want {
			t.Errorf("MonthLabel(%q) = %q, want %q", in, got, want)
		}
	}
}
