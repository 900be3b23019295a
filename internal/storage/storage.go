// Package storage keeps uploaded files in local buckets and serves them
// under a public URL prefix.
package storage

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/ngipak/infodesa/pkg/slug"
)

// Bucket names.
const (
	BucketProduk  = "produk"
	BucketLeaflet = "leaflet"
)

// LeafletPath is the fixed object path of the health leaflet.
const LeafletPath = "leaflet-kesehatan.pdf"

// DefaultMaxImageBytes is the upload limit for product images.
const DefaultMaxImageBytes = 5 << 20

var (
	// ErrNotImage is returned when an upload is not an image.
	ErrNotImage = errors.New("file is not an image")
	// ErrTooLarge is returned when an upload exceeds the size limit.
	ErrTooLarge = errors.New("file too large")
	// ErrNotPDF is returned when a leaflet upload is not a PDF.
	ErrNotPDF = errors.New("file is not a pdf")
	// ErrInvalidPath is returned for object paths escaping their bucket.
	ErrInvalidPath = errors.New("invalid object path")
)

// Message returns the user-facing text of an upload error.
func Message(err error, maxBytes int64) string {
	switch {
	case errors.Is(err, ErrNotImage):
		return "File harus berupa gambar."
	case errors.Is(err, ErrTooLarge):
		return fmt.Sprintf("Ukuran gambar maksimal %dMB.", maxBytes>>20)
	case errors.Is(err, ErrNotPDF):
		return "File harus berupa PDF."
	}
	return "Gagal mengunggah file."
}

// Options configures a Storage.
type Options struct {
	Dir           string
	PublicURL     string
	MaxImageBytes int64
}

// Storage stores objects below Dir/<bucket>/<path>.
type Storage struct {
	dir       string
	publicURL string
	maxImage  int64
	now       func() time.Time
	logger    *zap.Logger
}

// New creates a Storage and its bucket directories.
func New(opts Options, logger *zap.Logger) (*Storage, error) {
	if opts.Dir == "" {
		return nil, fmt.Errorf("storage directory is required")
	}
	if opts.MaxImageBytes <= 0 {
		opts.MaxImageBytes = DefaultMaxImageBytes
	}
	if opts.PublicURL == "" {
		opts.PublicURL = "/files"
	}
	for _, b := range []string{BucketProduk, BucketLeaflet} {
		if err := os.MkdirAll(filepath.Join(opts.Dir, b), 0o755); err != nil {
			return nil, fmt.Errorf("create bucket %s: %w", b, err)
		}
	}
	return &Storage{
		dir:       opts.Dir,
		publicURL: strings.TrimRight(opts.PublicURL, "/"),
		maxImage:  opts.MaxImageBytes,
		now:       time.Now,
		logger:    logger,
	}, nil
}

// SetClock overrides the time source. Tests only.
func (s *Storage) SetClock(now func() time.Time) { s.now = now }

// MaxImageBytes returns the product image size limit.
func (s *Storage) MaxImageBytes() int64 { return s.maxImage }

// Upload is a stored object.
type Upload struct {
	Bucket    string `json:"bucket"`
	Path      string `json:"path"`
	PublicURL string `json:"public_url"`
}

// File describes an incoming upload.
type File struct {
	Name        string
	ContentType string
	Size        int64
	Body        io.Reader
}

// ImagePath builds the object path of a product image:
// <slug(vendorID)>/<unixMillis>-<slug(hint or file name)>.<ext>.
func ImagePath(vendorID, hint, filename string, at time.Time) string {
	base := hint
	if base == "" {
		base = strings.TrimSuffix(filename, path.Ext(filename))
	}
	base = slug.Make(base)
	if base == "" {
		base = "foto"
	}
	return fmt.Sprintf("%s/%d-%s.%s", slug.Make(vendorID), at.UnixMilli(), base, extOf(filename))
}

func extOf(filename string) string {
	i := strings.LastIndex(filename, ".")
	if i < 0 {
		return "jpg"
	}
	ext := strings.ToLower(filename[i+1:])
	if ext == "" {
		return "jpg"
	}
	return ext
}

// PutImage stores a product image for a vendor. Existing objects are never
// overwritten.
func (s *Storage) PutImage(vendorID, hint string, f File) (*Upload, error) {
	if !strings.HasPrefix(f.ContentType, "image/") {
		return nil, ErrNotImage
	}
	if f.Size > s.maxImage {
		return nil, ErrTooLarge
	}
	p := ImagePath(vendorID, hint, f.Name, s.now())
	if err := s.write(BucketProduk, p, f.Body, s.maxImage, false); err != nil {
		return nil, err
	}
	return &Upload{Bucket: BucketProduk, Path: p, PublicURL: s.URL(BucketProduk, p)}, nil
}

// PutLeaflet replaces the health leaflet. The returned URL carries a
// version query so clients refetch it.
func (s *Storage) PutLeaflet(f File) (*Upload, error) {
	if f.ContentType != "application/pdf" {
		return nil, ErrNotPDF
	}
	if err := s.write(BucketLeaflet, LeafletPath, f.Body, 0, true); err != nil {
		return nil, err
	}
	u := fmt.Sprintf("%s?v=%d", s.URL(BucketLeaflet, LeafletPath), s.now().Unix())
	return &Upload{Bucket: BucketLeaflet, Path: LeafletPath, PublicURL: u}, nil
}

// LeafletURL returns the public URL of the leaflet, versioned by its
// modification time. ok is false when no leaflet was uploaded.
func (s *Storage) LeafletURL() (string, bool, error) {
	fi, err := os.Stat(filepath.Join(s.dir, BucketLeaflet, LeafletPath))
	if errors.Is(err, os.ErrNotExist) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("stat leaflet: %w", err)
	}
	return fmt.Sprintf("%s?v=%d", s.URL(BucketLeaflet, LeafletPath), fi.ModTime().Unix()), true, nil
}

// URL returns the public URL of an object.
func (s *Storage) URL(bucket, p string) string {
	return s.publicURL + "/" + bucket + "/" + p
}

func (s *Storage) resolve(bucket, p string) (string, error) {
	if bucket != BucketProduk && bucket != BucketLeaflet {
		return "", ErrInvalidPath
	}
	clean := path.Clean("/" + p)
	if clean == "/" || strings.Contains(p, "..") {
		return "", ErrInvalidPath
	}
	return filepath.Join(s.dir, bucket, filepath.FromSlash(clean)), nil
}

func (s *Storage) write(bucket, p string, body io.Reader, limit int64, overwrite bool) error {
	full, err := s.resolve(bucket, p)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		return fmt.Errorf("create object dir: %w", err)
	}

	flags := os.O_WRONLY | os.O_CREATE | os.O_EXCL
	if overwrite {
		flags = os.O_WRONLY | os.O_CREATE | os.O_TRUNC
	}
	out, err := os.OpenFile(full, flags, 0o644)
	if err != nil {
		return fmt.Errorf("open object %s/%s: %w", bucket, p, err)
	}

	r := body
	if limit > 0 {
		r = io.LimitReader(body, limit+1)
	}
	n, err := io.Copy(out, r)
	closeErr := out.Close()
	switch {
	case err != nil:
		os.Remove(full)
		return fmt.Errorf("write object %s/%s: %w", bucket, p, err)
	case limit > 0 && n > limit:
		os.Remove(full)
		return ErrTooLarge
	case closeErr != nil:
		return fmt.Errorf("close object %s/%s: %w", bucket, p, closeErr)
	}
	s.logger.Info("object stored",
		zap.String("bucket", bucket),
		zap.String("path", p),
		zap.Int64("bytes", n),
	)
	return nil
}

// Handler serves stored objects at /{bucket}/{path...}. Mount it with
// http.StripPrefix under the public URL prefix.
func (s *Storage) Handler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet && r.Method != http.MethodHead {
			http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
			return
		}
		bucket, p, _ := strings.Cut(strings.TrimPrefix(r.URL.Path, "/"), "/")
		full, err := s.resolve(bucket, p)
		if err != nil {
			http.NotFound(w, r)
			return
		}
		fi, err := os.Stat(full)
		if err != nil || fi.IsDir() {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Cache-Control", "public, max-age=3600")
		http.ServeFile(w, r, full)
	})
}
