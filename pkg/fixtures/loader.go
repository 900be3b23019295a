// Package fixtures holds the demo content shipped with the binary.
package fixtures

import (
	_ "embed"
	"fmt"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/ngipak/infodesa/pkg/models"
)

//go:embed seed.yaml
var seedRawData []byte

// Kesehatan is the demo health section.
type Kesehatan struct {
	Meta      models.MetaKesehatan      `yaml:"meta"`
	Isu       []models.IsuKesehatan     `yaml:"isu"`
	Statistik []models.StatistikBulanan `yaml:"statistik"`
	Kader     []models.Kader            `yaml:"kader"`
	Jadwal    []models.JadwalKesehatan  `yaml:"jadwal"`
}

// Data is the top-level structure of the embedded YAML.
type Data struct {
	Dusun     []models.Dusun    `yaml:"dusun"`
	Umkm      []models.Umkm     `yaml:"umkm"`
	Produk    []models.Produk   `yaml:"produk"`
	Kesehatan Kesehatan         `yaml:"kesehatan"`
	Settings  map[string]string `yaml:"settings"`
}

// Set provides lazy-loaded access to the embedded demo content.
type Set struct {
	once sync.Once
	data Data
	err  error
}

// New creates a Set that parses the embedded YAML on first access.
func New() *Set {
	return &Set{}
}

// Data returns the parsed content. Slices are shared with the Set; callers
// that mutate records should copy them first.
func (s *Set) Data() (*Data, error) {
	s.once.Do(s.load)
	if s.err != nil {
		return nil, s.err
	}
	return &s.data, nil
}

func (s *Set) load() {
	data, err := Parse(seedRawData)
	if err != nil {
		s.err = err
		return
	}
	s.data = *data
}

// Parse decodes seed content in the embedded format, for operators who keep
// their own seed file.
func Parse(raw []byte) (*Data, error) {
	var d Data
	if err := yaml.Unmarshal(raw, &d); err != nil {
		return nil, fmt.Errorf("fixtures: parse yaml: %w", err)
	}
	index := make(map[string]models.Dusun, len(d.Dusun))
	for _, du := range d.Dusun {
		index[du.ID] = du
	}
	for i := range d.Umkm {
		d.Umkm[i].Dusun = index[d.Umkm[i].DusunID]
	}
	for i := range d.Kesehatan.Kader {
		d.Kesehatan.Kader[i].Dusun = index[d.Kesehatan.Kader[i].DusunID]
	}
	for i := range d.Kesehatan.Jadwal {
		d.Kesehatan.Jadwal[i].Dusun = index[d.Kesehatan.Jadwal[i].DusunID]
	}
	return &d, nil
}
