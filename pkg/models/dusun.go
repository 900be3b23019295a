package models

// Dusun is a named sub-area of the village used for grouping and filtering.
type Dusun struct {
	ID   string `json:"id" yaml:"id"`
	Nama string `json:"nama" yaml:"nama"`
	Slug string `json:"slug" yaml:"slug"`
}

// UnknownDusun is the placeholder returned when a record references a
// region that no longer exists.
func UnknownDusun(id string) Dusun {
	return Dusun{ID: id, Nama: "Dusun tidak ditemukan", Slug: "unknown"}
}
