package kesehatan

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/ngipak/infodesa/internal/services"
	"github.com/ngipak/infodesa/internal/store"
	"github.com/ngipak/infodesa/pkg/models"
)

// Sections of the health page, in the order warnings are reported.
const (
	SectionDusun     = "dusun"
	SectionMeta      = "meta"
	SectionStatistik = "statistik"
	SectionIsu       = "isu"
	SectionKader     = "kader"
	SectionJadwal    = "jadwal"
	SectionLeaflet   = "leaflet"
)

var sectionOrder = []string{
	SectionDusun, SectionMeta, SectionStatistik, SectionIsu,
	SectionKader, SectionJadwal, SectionLeaflet,
}

var sectionLabels = map[string]string{
	SectionDusun:     "Dusun",
	SectionMeta:      "Meta",
	SectionStatistik: "Statistik",
	SectionIsu:       "Isu",
	SectionKader:     "Kader",
	SectionJadwal:    "Jadwal",
	SectionLeaflet:   "Leaflet",
}

type (
	dusunLister interface {
		List(ctx context.Context) ([]models.Dusun, error)
	}
	jadwalLister interface {
		List(ctx context.Context, q services.JadwalQuery) ([]models.JadwalKesehatan, error)
	}
	kaderLister interface {
		List(ctx context.Context, q services.KaderQuery) ([]models.Kader, error)
	}
	isuLister interface {
		List(ctx context.Context, publishedOnly bool) ([]models.IsuKesehatan, error)
	}
	statLister interface {
		List(ctx context.Context, publishedOnly bool) ([]models.StatistikBulanan, error)
	}
	metaGetter interface {
		Get(ctx context.Context, publishedOnly bool) (*models.MetaKesehatan, error)
	}
	leafletLocator interface {
		LeafletURL() (string, bool, error)
	}
)

// Sources are the independent reads behind the public health page.
// A nil Leaflet means no storage is configured.
type Sources struct {
	Dusun     dusunLister
	Jadwal    jadwalLister
	Kader     kaderLister
	Isu       isuLister
	Statistik statLister
	Meta      metaGetter
	Leaflet   leafletLocator
}

// Snapshot is the raw published data of the health page. Failed sections
// are left empty and described in Warnings.
type Snapshot struct {
	Dusun      []models.Dusun
	Jadwal     []models.JadwalKesehatan
	Kader      []models.Kader
	Isu        []models.IsuKesehatan
	Statistik  []models.StatistikBulanan
	Meta       *models.MetaKesehatan
	LeafletURL string
	Warnings   map[string]string
}

// Load fetches every section concurrently and waits for all of them. A
// failing section never cancels the others.
func Load(ctx context.Context, src Sources, logger *zap.Logger) *Snapshot {
	snap := &Snapshot{}
	errs := make([]error, len(sectionOrder))

	var g errgroup.Group
	run := func(i int, fetch func() error) {
		g.Go(func() error {
			errs[i] = fetch()
			return nil
		})
	}
	run(0, func() (err error) {
		snap.Dusun, err = src.Dusun.List(ctx)
		return err
	})
	run(1, func() error {
		m, err := src.Meta.Get(ctx, true)
		if errors.Is(err, services.ErrNotFound) {
			return nil
		}
		snap.Meta = m
		return err
	})
	run(2, func() (err error) {
		snap.Statistik, err = src.Statistik.List(ctx, true)
		return err
	})
	run(3, func() (err error) {
		snap.Isu, err = src.Isu.List(ctx, true)
		return err
	})
	run(4, func() (err error) {
		snap.Kader, err = src.Kader.List(ctx, services.KaderQuery{PublishedOnly: true})
		return err
	})
	run(5, func() (err error) {
		snap.Jadwal, err = src.Jadwal.List(ctx, services.JadwalQuery{PublishedOnly: true})
		return err
	})
	run(6, func() error {
		if src.Leaflet == nil {
			return nil
		}
		url, ok, err := src.Leaflet.LeafletURL()
		if ok {
			snap.LeafletURL = url
		}
		return err
	})
	_ = g.Wait()

	for i, err := range errs {
		if err == nil {
			continue
		}
		if snap.Warnings == nil {
			snap.Warnings = make(map[string]string)
		}
		section := sectionOrder[i]
		snap.Warnings[section] = store.Describe(err)
		logger.Warn("health section failed", zap.String("section", section), zap.Error(err))
	}
	snap.normalize()
	return snap
}

// normalize replaces the nil slices of failed sections with empty ones.
func (s *Snapshot) normalize() {
	if s.Dusun == nil {
		s.Dusun = []models.Dusun{}
	}
	if s.Jadwal == nil {
		s.Jadwal = []models.JadwalKesehatan{}
	}
	if s.Kader == nil {
		s.Kader = []models.Kader{}
	}
	if s.Isu == nil {
		s.Isu = []models.IsuKesehatan{}
	}
	if s.Statistik == nil {
		s.Statistik = []models.StatistikBulanan{}
	}
}

// WarningText joins the section warnings as "Label: message | ...".
func (s *Snapshot) WarningText() string {
	parts := make([]string, 0, len(s.Warnings))
	for _, section := range sectionOrder {
		if msg, ok := s.Warnings[section]; ok {
			parts = append(parts, sectionLabels[section]+": "+msg)
		}
	}
	return strings.Join(parts, " | ")
}
