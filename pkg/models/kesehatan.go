package models

// Prioritas ranks the urgency of a health issue.
type Prioritas string

const (
	PrioritasRendah Prioritas = "rendah"
	PrioritasSedang Prioritas = "sedang"
	PrioritasTinggi Prioritas = "tinggi"
)

// IsuKesehatan is a public-health topic shown on the health page.
type IsuKesehatan struct {
	ID        string    `json:"id" yaml:"id"`
	Judul     string    `json:"judul" yaml:"judul"`
	Ringkas   string    `json:"ringkas" yaml:"ringkas"`
	Prioritas Prioritas `json:"prioritas" yaml:"prioritas"`
	Dampak    []string  `json:"dampak" yaml:"dampak"`
	UpayaDesa []string  `json:"upaya_desa" yaml:"upaya_desa"`
	AksiWarga []string  `json:"aksi_warga" yaml:"aksi_warga"`
	Saran     []string  `json:"saran,omitempty" yaml:"-"`
	Urutan    *int      `json:"urutan,omitempty" yaml:"urutan"`
	Published bool      `json:"published" yaml:"published"`
}

// StatistikBulanan holds the monthly case counts.
type StatistikBulanan struct {
	Bulan      string `json:"bulan" yaml:"bulan"` // YYYY-MM
	Stunting   int    `json:"stunting" yaml:"stunting"`
	Hipertensi int    `json:"hipertensi" yaml:"hipertensi"`
	Published  bool   `json:"published" yaml:"published"`
}

// JadwalKesehatan is a scheduled health activity (posyandu, screening).
type JadwalKesehatan struct {
	ID        string `json:"id" yaml:"id"`
	Kegiatan  string `json:"kegiatan" yaml:"kegiatan"`
	Tanggal   string `json:"tanggal" yaml:"tanggal"` // YYYY-MM-DD
	Jam       string `json:"jam,omitempty" yaml:"jam"`
	Lokasi    string `json:"lokasi,omitempty" yaml:"lokasi"`
	Catatan   string `json:"catatan,omitempty" yaml:"catatan"`
	Dusun     Dusun  `json:"dusun" yaml:"-"`
	DusunID   string `json:"-" yaml:"dusun_id"`
	Published bool   `json:"published" yaml:"published"`
}

// Kader is a village health volunteer.
type Kader struct {
	ID        string `json:"id" yaml:"id"`
	Nama      string `json:"nama" yaml:"nama"`
	Peran     string `json:"peran,omitempty" yaml:"peran"`
	NoWA      string `json:"no_wa" yaml:"no_wa"`
	Dusun     Dusun  `json:"dusun" yaml:"-"`
	DusunID   string `json:"-" yaml:"dusun_id"`
	Published bool   `json:"published" yaml:"published"`
}

// MetaKesehatan describes where and when the health data was published.
type MetaKesehatan struct {
	PeriodeTerakhir string `json:"periode_terakhir" yaml:"periode_terakhir"` // YYYY-MM
	Sumber          string `json:"sumber" yaml:"sumber"`
	Published       bool   `json:"published" yaml:"published"`
}

// DefaultSumber is the data source shown when none was entered.
const DefaultSumber = "Admin Desa Ngipak"
