package services_test

import (
	"context"
	"errors"
	"testing"

	"github.com/ngipak/infodesa/internal/services"
	"github.com/ngipak/infodesa/internal/store"
	"github.com/ngipak/infodesa/internal/testutil"
	"github.com/ngipak/infodesa/pkg/models"
)

func intPtr(n int) *int { return &n }

func newHealthStore(t *testing.T) *store.Store {
	t.Helper()
	s := testutil.NewStore(t)
	dusun, err := services.NewDusunRepository(context.Background(), s)
	if err != nil {
		t.Fatalf("NewDusunRepository: %v", err)
	}
	for _, d := range []models.Dusun{
		testutil.NewDusun("d1", "Kalangan 1"),
		testutil.NewDusun("d3", "Ngipak"),
		testutil.NewDusun("d8", "Jetis"),
	} {
		if err := dusun.Save(context.Background(), &d); err != nil {
			t.Fatalf("Save dusun: %v", err)
		}
	}
	return s
}

func TestIsu_OrderingAndSaran(t *testing.T) {
	ctx := context.Background()
	repo, err := services.NewIsuRepository(ctx, newHealthStore(t))
	if err != nil {
		t.Fatalf("NewIsuRepository: %v", err)
	}

	issues := []models.IsuKesehatan{
		{Judul: "Kesehatan Lingkungan", Dampak: []string{"Diare"}, Published: true},
		{Judul: "Hipertensi", Urutan: intPtr(2), UpayaDesa: []string{"Posbindu"}, Published: true},
		{Judul: "Stunting", Urutan: intPtr(1), Prioritas: "darurat",
			AksiWarga: []string{"Timbang rutin"}, UpayaDesa: []string{"PMT"}, Published: true},
		{Judul: "Draft", Urutan: intPtr(0)},
	}
	for i := range issues {
		if err := repo.Save(ctx, &issues[i]); err != nil {
			t.Fatalf("Save %q: %v", issues[i].Judul, err)
		}
	}

	got, err := repo.List(ctx, true)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	wantOrder := []string{"stunting", "hipertensi", "kesehatan-lingkungan"}
	if len(got) != len(wantOrder) {
		t.Fatalf("List len = %d, want %d", len(got), len(wantOrder))
	}
	for i, id := range wantOrder {
		if got[i].ID != id {
			t.Errorf("List[%d].ID = %q, want %q", i, got[i].ID, id)
		}
	}

	stunting := got[0]
	if stunting.Prioritas != models.PrioritasSedang {
		t.Errorf("Prioritas = %q, want unknown values mapped to sedang", stunting.Prioritas)
	}
	if len(stunting.Saran) != 1 || stunting.Saran[0] != "Timbang rutin" {
		t.Errorf("Saran = %v, want aksi_warga first", stunting.Saran)
	}
	if got[1].Saran[0] != "Posbindu" {
		t.Errorf("Saran = %v, want upaya_desa fallback", got[1].Saran)
	}
	if got[2].Saran[0] != "Diare" {
		t.Errorf("Saran = %v, want dampak fallback", got[2].Saran)
	}

	all, err := repo.List(ctx, false)
	if err != nil {
		t.Fatalf("List(all): %v", err)
	}
	if len(all) != 4 || all[0].ID != "draft" {
		t.Errorf("List(all) = %v, want draft first", all)
	}
}

func TestIsu_RequiresTitle(t *testing.T) {
	ctx := context.Background()
	repo, err := services.NewIsuRepository(ctx, newHealthStore(t))
	if err != nil {
		t.Fatalf("NewIsuRepository: %v", err)
	}
	if err := repo.Save(ctx, &models.IsuKesehatan{Judul: "  "}); !errors.Is(err, services.ErrInvalid) {
		t.Errorf("Save blank error = %v, want ErrInvalid", err)
	}
	if err := repo.SetPublished(ctx, "missing", true); !errors.Is(err, services.ErrNotFound) {
		t.Errorf("SetPublished missing error = %v, want ErrNotFound", err)
	}
}

func TestStat_UpsertAndOrder(t *testing.T) {
	ctx := context.Background()
	repo, err := services.NewStatRepository(ctx, newHealthStore(t))
	if err != nil {
		t.Fatalf("NewStatRepository: %v", err)
	}

	for _, s := range []models.StatistikBulanan{
		{Bulan: "2026-01", Stunting: 14, Hipertensi: 128, Published: true},
		{Bulan: "2025-12-01", Stunting: 15, Hipertensi: 126, Published: true},
		{Bulan: "2026-01", Stunting: 13, Hipertensi: 130, Published: true},
	} {
		if err := repo.Save(ctx, &s); err != nil {
			t.Fatalf("Save %s: %v", s.Bulan, err)
		}
	}

	got, err := repo.List(ctx, true)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("List len = %d, want 2", len(got))
	}
	if got[0].Bulan != "2025-12" || got[1].Bulan != "2026-01" {
		t.Errorf("months = %s, %s; want ascending", got[0].Bulan, got[1].Bulan)
	}
	if got[1].Stunting != 13 {
		t.Errorf("Stunting = %d, want upserted 13", got[1].Stunting)
	}

	bad := models.StatistikBulanan{Bulan: "Januari"}
	if err := repo.Save(ctx, &bad); !errors.Is(err, services.ErrInvalid) {
		t.Errorf("Save bad month error = %v, want ErrInvalid", err)
	}
}

func TestJadwal_CRUD(t *testing.T) {
	ctx := context.Background()
	repo, err := services.NewJadwalRepository(ctx, newHealthStore(t))
	if err != nil {
		t.Fatalf("NewJadwalRepository: %v", err)
	}
	if !repo.HasJam() {
		t.Fatal("HasJam = false on a fully migrated schema")
	}

	items := []models.JadwalKesehatan{
		{Kegiatan: "Imunisasi", Tanggal: "2026-01-25", DusunID: "d8", Published: true},
		{Kegiatan: "Posyandu Balita", Tanggal: "2026-01-20", Jam: "08:00–10:00", DusunID: "d3", Published: true},
		{Kegiatan: "Rapat Kader", Tanggal: "2026-01-21", DusunID: "gone"},
	}
	for i := range items {
		if err := repo.Create(ctx, &items[i]); err != nil {
			t.Fatalf("Create: %v", err)
		}
		if items[i].ID == "" {
			t.Fatal("Create did not assign an ID")
		}
	}

	got, err := repo.List(ctx, services.JadwalQuery{PublishedOnly: true})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(got) != 2 || got[0].Kegiatan != "Posyandu Balita" {
		t.Fatalf("List = %v, want date order", got)
	}
	if got[0].Jam != "08:00–10:00" || got[0].Dusun.Nama != "Ngipak" {
		t.Errorf("first = %+v", got[0])
	}

	orphan, err := repo.Get(ctx, items[2].ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if orphan.Dusun.Nama != "Dusun tidak ditemukan" {
		t.Errorf("Dusun = %+v, want placeholder", orphan.Dusun)
	}

	byDusun, err := repo.List(ctx, services.JadwalQuery{DusunID: "d8"})
	if err != nil {
		t.Fatalf("List by dusun: %v", err)
	}
	if len(byDusun) != 1 {
		t.Errorf("List(d8) len = %d, want 1", len(byDusun))
	}

	items[0].Jam = "09:00"
	if err := repo.Update(ctx, &items[0]); err != nil {
		t.Fatalf("Update: %v", err)
	}
	if err := repo.Delete(ctx, items[2].ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	c, err := repo.Count(ctx)
	if err != nil {
		t.Fatalf("Count: %v", err)
	}
	if c.Total != 2 || c.Published != 2 {
		t.Errorf("Count = %+v, want {2 2}", c)
	}

	bad := models.JadwalKesehatan{Kegiatan: "X", Tanggal: "20-01-2026", DusunID: "d1"}
	if err := repo.Create(ctx, &bad); !errors.Is(err, services.ErrInvalid) {
		t.Errorf("Create bad date error = %v, want ErrInvalid", err)
	}
}

func TestKader_ListByDusun(t *testing.T) {
	ctx := context.Background()
	repo, err := services.NewKaderRepository(ctx, newHealthStore(t))
	if err != nil {
		t.Fatalf("NewKaderRepository: %v", err)
	}
	for _, k := range []models.Kader{
		{Nama: "Bu Wati", NoWA: "62812000002", DusunID: "d3", Published: true},
		{Nama: "Bu Siti", NoWA: "62812000001", DusunID: "d1", Published: true},
		{Nama: "Bu Rina", NoWA: "62812000003", DusunID: "d8"},
	} {
		if err := repo.Create(ctx, &k); err != nil {
			t.Fatalf("Create: %v", err)
		}
	}

	got, err := repo.List(ctx, services.KaderQuery{PublishedOnly: true})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(got) != 2 || got[0].Nama != "Bu Siti" {
		t.Errorf("List = %v, want name order without drafts", got)
	}

	d1, err := repo.List(ctx, services.KaderQuery{DusunID: "d1"})
	if err != nil {
		t.Fatalf("List d1: %v", err)
	}
	if len(d1) != 1 || d1[0].Dusun.Nama != "Kalangan 1" {
		t.Errorf("List(d1) = %v", d1)
	}

	if err := repo.Create(ctx, &models.Kader{Nama: "X", DusunID: "d1"}); !errors.Is(err, services.ErrInvalid) {
		t.Errorf("Create without phone error = %v, want ErrInvalid", err)
	}
}

func TestMeta_Defaults(t *testing.T) {
	ctx := context.Background()
	repo, err := services.NewMetaRepository(ctx, newHealthStore(t))
	if err != nil {
		t.Fatalf("NewMetaRepository: %v", err)
	}

	if _, err := repo.Get(ctx, false); !errors.Is(err, services.ErrNotFound) {
		t.Fatalf("Get empty error = %v, want ErrNotFound", err)
	}

	if err := repo.Save(ctx, &models.MetaKesehatan{PeriodeTerakhir: "2026-01-15", Published: false}); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if _, err := repo.Get(ctx, true); !errors.Is(err, services.ErrNotFound) {
		t.Errorf("Get(published) on draft error = %v, want ErrNotFound", err)
	}
	m, err := repo.Get(ctx, false)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if m.PeriodeTerakhir != "2026-01" {
		t.Errorf("PeriodeTerakhir = %q, want 2026-01", m.PeriodeTerakhir)
	}
	if m.Sumber != models.DefaultSumber {
		t.Errorf("Sumber = %q, want default", m.Sumber)
	}

	if err := repo.Save(ctx, &models.MetaKesehatan{Sumber: "Rekap Posyandu", Published: true}); err != nil {
		t.Fatalf("Save: %v", err)
	}
	m, err = repo.Get(ctx, true)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if len(m.PeriodeTerakhir) != 7 {
		t.Errorf("PeriodeTerakhir = %q, want derived YYYY-MM", m.PeriodeTerakhir)
	}
	if m.Sumber != "Rekap Posyandu" {
		t.Errorf("Sumber = %q", m.Sumber)
	}

	if err := repo.Save(ctx, &models.MetaKesehatan{PeriodeTerakhir: "Jan 2026"}); !errors.Is(err, services.ErrInvalid) {
		t.Errorf("Save bad period error = %v, want ErrInvalid", err)
	}
}
