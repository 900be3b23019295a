package models

import "time"

// LaporanStatus tracks a citizen report through review.
type LaporanStatus string

const (
	LaporanBaru     LaporanStatus = "baru"
	LaporanDiproses LaporanStatus = "diproses"
	LaporanSelesai  LaporanStatus = "selesai"
	LaporanDitolak  LaporanStatus = "ditolak"
)

// Valid reports whether s is a known status.
func (s LaporanStatus) Valid() bool {
	switch s {
	case LaporanBaru, LaporanDiproses, LaporanSelesai, LaporanDitolak:
		return true
	}
	return false
}

// Laporan is a report submitted by a signed-in citizen, e.g. a request to
// list a new UMKM or a correction to published data.
type Laporan struct {
	ID           string        `json:"id"`
	Jenis        string        `json:"jenis"`
	TargetType   string        `json:"target_type,omitempty"`
	TargetID     string        `json:"target_id,omitempty"`
	Judul        string        `json:"judul"`
	Pesan        string        `json:"pesan"`
	UserID       string        `json:"user_id"`
	Status       LaporanStatus `json:"status"`
	CatatanAdmin string        `json:"catatan_admin,omitempty"`
	CreatedAt    time.Time     `json:"created_at"`
	UpdatedAt    time.Time     `json:"updated_at"`
}
