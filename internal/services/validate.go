package services

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/ngipak/infodesa/pkg/models"
	"github.com/ngipak/infodesa/pkg/slug"
)

var (
	monthPattern = regexp.MustCompile(`^\d{4}-\d{2}$`)
	datePattern  = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)
)

func tooShort(s string, n int) bool {
	return utf8.RuneCountInString(strings.TrimSpace(s)) < n
}

// ValidateUmkm normalizes u in place and checks the fields an admin must
// fill before a listing is saved.
func ValidateUmkm(u *models.Umkm) error {
	u.ID = slug.Make(u.ID)
	u.Nama = strings.TrimSpace(u.Nama)
	u.NoWA = strings.TrimSpace(u.NoWA)
	switch {
	case len(u.ID) < 2:
		return invalid("id", "ID UMKM tidak valid.")
	case tooShort(u.Nama, 2):
		return invalid("nama", "Nama UMKM minimal 2 karakter.")
	case u.DusunID == "":
		return invalid("dusun_id", "Dusun wajib dipilih.")
	case !u.Kategori.Valid():
		return invalid("kategori", "Kategori tidak valid.")
	case tooShort(u.NoWA, 6):
		return invalid("no_wa", "No WA minimal 6 karakter.")
	}
	return nil
}

// ValidateProduk normalizes p in place and checks name, photo and vendor.
func ValidateProduk(p *models.Produk) error {
	p.Nama = strings.TrimSpace(p.Nama)
	p.FotoURL = strings.TrimSpace(p.FotoURL)
	if p.Harga < 0 {
		p.Harga = 0
	}
	switch {
	case p.ID == "":
		return invalid("id", "ID produk tidak valid.")
	case p.UmkmID == "":
		return invalid("umkm_id", "UMKM wajib dipilih.")
	case tooShort(p.Nama, 2):
		return invalid("nama", "Nama produk minimal 2 karakter.")
	case tooShort(p.FotoURL, 8):
		return invalid("foto_url", "Foto produk wajib diisi.")
	}
	return nil
}

// NormalizePrioritas maps unknown priorities to sedang.
func NormalizePrioritas(p models.Prioritas) models.Prioritas {
	switch p {
	case models.PrioritasRendah, models.PrioritasSedang, models.PrioritasTinggi:
		return p
	}
	return models.PrioritasSedang
}

// ValidateIsu normalizes a health issue. A blank ID is derived from the
// title.
func ValidateIsu(i *models.IsuKesehatan) error {
	i.Judul = strings.TrimSpace(i.Judul)
	if i.ID == "" {
		i.ID = slug.Make(i.Judul)
	} else {
		i.ID = slug.Make(i.ID)
	}
	i.Prioritas = NormalizePrioritas(i.Prioritas)
	switch {
	case i.ID == "":
		return invalid("id", "ID kosong. Isi judul agar ID bisa dibuat.")
	case i.Judul == "":
		return invalid("judul", "Judul wajib diisi.")
	}
	return nil
}

// ValidateStat checks the month key of a monthly statistic. Longer date
// strings are truncated to YYYY-MM.
func ValidateStat(s *models.StatistikBulanan) error {
	s.Bulan = MonthOf(s.Bulan)
	if s.Bulan == "" {
		return invalid("bulan", "Bulan wajib diisi.")
	}
	if !monthPattern.MatchString(s.Bulan) {
		return invalid("bulan", "Format bulan harus YYYY-MM.")
	}
	if s.Stunting < 0 {
		s.Stunting = 0
	}
	if s.Hipertensi < 0 {
		s.Hipertensi = 0
	}
	return nil
}

// MonthOf truncates a date or timestamp string to YYYY-MM.
func MonthOf(s string) string {
	s = strings.TrimSpace(s)
	if len(s) > 7 {
		return s[:7]
	}
	return s
}

// ValidateJadwal checks a health schedule entry.
func ValidateJadwal(j *models.JadwalKesehatan) error {
	j.Kegiatan = strings.TrimSpace(j.Kegiatan)
	j.Tanggal = strings.TrimSpace(j.Tanggal)
	switch {
	case j.Kegiatan == "":
		return invalid("kegiatan", "Kegiatan wajib diisi.")
	case j.Tanggal == "":
		return invalid("tanggal", "Tanggal wajib diisi.")
	case !datePattern.MatchString(j.Tanggal):
		return invalid("tanggal", "Format tanggal harus YYYY-MM-DD.")
	case j.DusunID == "":
		return invalid("dusun_id", "Dusun wajib dipilih.")
	}
	return nil
}

// ValidateKader checks a health volunteer entry.
func ValidateKader(k *models.Kader) error {
	k.Nama = strings.TrimSpace(k.Nama)
	k.NoWA = strings.TrimSpace(k.NoWA)
	switch {
	case k.Nama == "":
		return invalid("nama", "Nama wajib diisi.")
	case k.NoWA == "":
		return invalid("no_wa", "No WA wajib diisi.")
	case k.DusunID == "":
		return invalid("dusun_id", "Dusun wajib dipilih.")
	}
	return nil
}

// ValidateLaporan checks a citizen report before submission.
func ValidateLaporan(l *models.Laporan) error {
	l.Jenis = strings.TrimSpace(l.Jenis)
	l.Judul = strings.TrimSpace(l.Judul)
	l.Pesan = strings.TrimSpace(l.Pesan)
	switch {
	case l.UserID == "":
		return invalid("user_id", "Silakan login terlebih dahulu untuk mengirim laporan.")
	case l.Jenis == "":
		return invalid("jenis", "Jenis laporan wajib diisi.")
	case l.Judul == "":
		return invalid("judul", "Judul wajib diisi.")
	case l.Pesan == "":
		return invalid("pesan", "Pesan wajib diisi.")
	}
	return nil
}
