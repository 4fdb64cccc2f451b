// Package images manages the picture gallery attached to each service.
package images

import (
	"errors"
	"fmt"
	"math"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/ukydev/shop-admin/internal/models"
)

var (
	ErrImageNotFound = errors.New("image not found")
	ErrBadIndex      = errors.New("image index out of range")
)

// Config limits what a gallery accepts.
type Config struct {
	MaxImages    int
	MaxFileSize  int64 // bytes
	AllowedTypes []string
}

// DefaultConfig allows five JPEG, PNG or WebP images of up to 5MB each.
func DefaultConfig() Config {
	return Config{
		MaxImages:    5,
		MaxFileSize:  5 * 1024 * 1024,
		AllowedTypes: []string{"image/jpeg", "image/png", "image/webp"},
	}
}

// File is an uploaded file before it joins a gallery.
type File struct {
	Name string
	Size int64
	Type string
	Data []byte
}

// UploadError lists why some or all files of an upload were rejected.
type UploadError struct {
	Messages []string
}

func (e *UploadError) Error() string {
	return strings.Join(e.Messages, " ")
}

// Validate checks files against the limits given that the gallery already
// holds existing images. Exceeding MaxImages rejects the whole batch.
func (c Config) Validate(existing int, files []File) ([]File, []string) {
	if existing+len(files) > c.MaxImages {
		return nil, []string{fmt.Sprintf(
			"You can upload at most %d images. You already have %d and are trying to add %d.",
			c.MaxImages, existing, len(files))}
	}

	var valid []File
	var errs []string
	for _, f := range files {
		if !slices.Contains(c.AllowedTypes, f.Type) {
			errs = append(errs, fmt.Sprintf("File '%s' has a type that is not allowed: %s. Allowed types: %s.",
				f.Name, f.Type, c.allowedNames()))
			continue
		}
		if f.Size > c.MaxFileSize {
			errs = append(errs, fmt.Sprintf("File '%s' (%s) exceeds the maximum size of %s.",
				f.Name, FormatFileSize(f.Size), FormatFileSize(c.MaxFileSize)))
			continue
		}
		valid = append(valid, f)
	}
	return valid, errs
}

func (c Config) allowedNames() string {
	names := make([]string, len(c.AllowedTypes))
	for i, t := range c.AllowedTypes {
		_, sub, _ := strings.Cut(t, "/")
		names[i] = strings.ToUpper(sub)
	}
	return strings.Join(names, ", ")
}

// FormatFileSize renders bytes with two decimals at most ("1.5 KB", "0 Bytes").
func FormatFileSize(bytes int64) string {
	if bytes <= 0 {
		return "0 Bytes"
	}
	units := []string{"Bytes", "KB", "MB", "GB"}
	i := int(math.Floor(math.Log(float64(bytes)) / math.Log(1024)))
	if i >= len(units) {
		i = len(units) - 1
	}
	v := float64(bytes) / math.Pow(1024, float64(i))
	return strconv.FormatFloat(math.Round(v*100)/100, 'f', -1, 64) + " " + units[i]
}

// Gallery is an ordered list of images with at most one primary image.
// Every successful change is reported to the change callback.
type Gallery struct {
	cfg      Config
	images   []models.ServiceImage
	onChange func([]models.ServiceImage) error

	now    func() time.Time
	newID  func() string
	urlFor func(imageID string) string
}

// NewGallery wraps images. onChange may be nil.
func NewGallery(cfg Config, images []models.ServiceImage, onChange func([]models.ServiceImage) error) *Gallery {
	return &Gallery{
		cfg:      cfg,
		images:   slices.Clone(images),
		onChange: onChange,
		now:      time.Now,
		newID:    func() string { return "img_" + uuid.NewString() },
		urlFor:   func(id string) string { return id },
	}
}

// Images returns a copy of the gallery in display order.
func (g *Gallery) Images() []models.ServiceImage {
	return slices.Clone(g.images)
}

// Upload validates files and appends the accepted ones. Any validation
// message rejects the whole upload. The first image of an empty gallery
// becomes primary. The returned images are in the same order as files.
func (g *Gallery) Upload(files []File) ([]models.ServiceImage, error) {
	valid, errs := g.cfg.Validate(len(g.images), files)
	if len(errs) > 0 {
		return nil, &UploadError{Messages: errs}
	}

	added := make([]models.ServiceImage, 0, len(valid))
	for _, f := range valid {
		id := g.newID()
		url := g.urlFor(id)
		added = append(added, models.ServiceImage{
			ID:           id,
			URL:          url,
			ThumbnailURL: url,
			Filename:     f.Name,
			Size:         f.Size,
			Type:         f.Type,
			AltText:      "Automotive service - " + f.Name,
			IsPrimary:    len(g.images) == 0 && len(added) == 0,
			UploadDate:   g.now(),
		})
	}
	if err := g.commit(append(slices.Clone(g.images), added...)); err != nil {
		return nil, err
	}
	return added, nil
}

// Remove drops an image. Removing the primary image promotes the first remaining one.
func (g *Gallery) Remove(id string) error {
	idx := g.index(id)
	if idx < 0 {
		return fmt.Errorf("%w: %s", ErrImageNotFound, id)
	}
	next := slices.Delete(slices.Clone(g.images), idx, idx+1)
	if len(next) > 0 && !slices.ContainsFunc(next, func(img models.ServiceImage) bool { return img.IsPrimary }) {
		next[0].IsPrimary = true
	}
	return g.commit(next)
}

// SetPrimary makes id the only primary image.
func (g *Gallery) SetPrimary(id string) error {
	if g.index(id) < 0 {
		return fmt.Errorf("%w: %s", ErrImageNotFound, id)
	}
	next := slices.Clone(g.images)
	for i := range next {
		next[i].IsPrimary = next[i].ID == id
	}
	return g.commit(next)
}

// Move takes the image at from and reinserts it at to.
func (g *Gallery) Move(from, to int) error {
	if from < 0 || from >= len(g.images) || to < 0 || to >= len(g.images) {
		return fmt.Errorf("%w: %d to %d", ErrBadIndex, from, to)
	}
	next := slices.Clone(g.images)
	moved := next[from]
	next = slices.Delete(next, from, from+1)
	next = slices.Insert(next, to, moved)
	return g.commit(next)
}

// UpdateAltText replaces the alt text of id.
func (g *Gallery) UpdateAltText(id, text string) error {
	idx := g.index(id)
	if idx < 0 {
		return fmt.Errorf("%w: %s", ErrImageNotFound, id)
	}
	next := slices.Clone(g.images)
	next[idx].AltText = text
	return g.commit(next)
}

func (g *Gallery) index(id string) int {
	return slices.IndexFunc(g.images, func(img models.ServiceImage) bool { return img.ID == id })
}

// commit reports next to the callback and keeps it only if the callback accepts it.
func (g *Gallery) commit(next []models.ServiceImage) error {
	if g.onChange != nil {
		if err := g.onChange(slices.Clone(next)); err != nil {
			return fmt.Errorf("save images: %w", err)
		}
	}
	g.images = next
	return nil
}
