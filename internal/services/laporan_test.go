package services_test

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/ngipak/infodesa/internal/services"
	"github.com/ngipak/infodesa/internal/testutil"
	"github.com/ngipak/infodesa/pkg/models"
)

func newLaporanRepo(t *testing.T) *services.SQLLaporanRepository {
	t.Helper()
	repo, err := services.NewLaporanRepository(context.Background(), testutil.NewStore(t))
	if err != nil {
		t.Fatalf("NewLaporanRepository: %v", err)
	}
	return repo
}

func TestLaporan_CreateRequiresLogin(t *testing.T) {
	repo := newLaporanRepo(t)
	l := models.Laporan{Jenis: "koreksi", Judul: "Jam buka salah", Pesan: "Sekarang buka jam 7."}
	err := repo.Create(context.Background(), &l)

	var ve *services.ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("Create error = %v, want ValidationError", err)
	}
	if ve.Message != "Silakan login terlebih dahulu untuk mengirim laporan." {
		t.Errorf("Message = %q", ve.Message)
	}
}

func TestLaporan_Lifecycle(t *testing.T) {
	repo := newLaporanRepo(t)
	ctx := context.Background()

	l := models.Laporan{
		Jenis: "koreksi", TargetType: "umkm", TargetID: "u-ngipak-keripik",
		Judul: "Jam buka salah", Pesan: "Sekarang buka jam 7.", UserID: "user-1",
		Status: models.LaporanSelesai, CatatanAdmin: "ignored",
	}
	if err := repo.Create(ctx, &l); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if l.ID == "" || l.Status != models.LaporanBaru || l.CatatanAdmin != "" {
		t.Errorf("Create did not reset server fields: %+v", l)
	}

	got, err := repo.UpdateStatus(ctx, l.ID, models.LaporanDiproses, "  dicek  ")
	if err != nil {
		t.Fatalf("UpdateStatus: %v", err)
	}
	if got.Status != models.LaporanDiproses || got.CatatanAdmin != "dicek" {
		t.Errorf("got = %+v", got)
	}

	if _, err := repo.UpdateStatus(ctx, l.ID, "arsip", ""); !errors.Is(err, services.ErrInvalid) {
		t.Errorf("UpdateStatus bad status error = %v, want ErrInvalid", err)
	}
	if _, err := repo.UpdateStatus(ctx, "missing", models.LaporanSelesai, ""); !errors.Is(err, services.ErrNotFound) {
		t.Errorf("UpdateStatus missing error = %v, want ErrNotFound", err)
	}
}

func TestLaporan_ListFiltersAndPages(t *testing.T) {
	repo := newLaporanRepo(t)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		jenis := "koreksi"
		if i%2 == 1 {
			jenis = "umkm_baru"
		}
		l := models.Laporan{Jenis: jenis, Judul: fmt.Sprintf("Laporan %d", i), Pesan: "isi", UserID: "user-1"}
		if err := repo.Create(ctx, &l); err != nil {
			t.Fatalf("Create: %v", err)
		}
		if i == 0 {
			if _, err := repo.UpdateStatus(ctx, l.ID, models.LaporanSelesai, ""); err != nil {
				t.Fatalf("UpdateStatus: %v", err)
			}
		}
	}

	page, err := repo.List(ctx, services.LaporanQuery{ListOptions: services.ListOptions{Limit: 2}})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if page.Total != 5 || len(page.Items) != 2 {
		t.Errorf("page = total %d, items %d; want 5, 2", page.Total, len(page.Items))
	}

	koreksi, err := repo.List(ctx, services.LaporanQuery{Jenis: "koreksi"})
	if err != nil {
		t.Fatalf("List koreksi: %v", err)
	}
	if koreksi.Total != 3 {
		t.Errorf("koreksi total = %d, want 3", koreksi.Total)
	}

	baru, err := repo.List(ctx, services.LaporanQuery{Status: models.LaporanBaru})
	if err != nil {
		t.Fatalf("List baru: %v", err)
	}
	if baru.Total != 4 {
		t.Errorf("baru total = %d, want 4", baru.Total)
	}

	other := models.Laporan{Jenis: "koreksi", Judul: "Lain", Pesan: "isi", UserID: "user-2"}
	if err := repo.Create(ctx, &other); err != nil {
		t.Fatalf("Create other: %v", err)
	}
	mine, err := repo.List(ctx, services.LaporanQuery{UserID: "user-2"})
	if err != nil {
		t.Fatalf("List user-2: %v", err)
	}
	if mine.Total != 1 || mine.Items[0].ID != other.ID {
		t.Errorf("user-2 reports = %+v", mine)
	}

	counts, err := repo.CountByStatus(ctx)
	if err != nil {
		t.Fatalf("CountByStatus: %v", err)
	}
	if counts[models.LaporanBaru] != 5 || counts[models.LaporanSelesai] != 1 {
		t.Errorf("counts = %v", counts)
	}
}
