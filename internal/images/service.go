package images

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"

	"github.com/sirupsen/logrus"
	"github.com/ukydev/shop-admin/internal/db"
	"github.com/ukydev/shop-admin/internal/models"
)

const (
	galleryKeyPrefix = "service_images:"
	dataKeyPrefix    = "service_image_data:"
)

// Service keeps service galleries and image bytes in a db.KeyValueStore.
type Service struct {
	mu      sync.Mutex
	store   db.KeyValueStore
	cfg     Config
	log     logrus.FieldLogger
	baseURL string
}

// NewService stores galleries in store. Image URLs are built as
// <baseURL>/<serviceID>/images/<imageID>.
func NewService(store db.KeyValueStore, cfg Config, baseURL string, log logrus.FieldLogger) *Service {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Service{store: store, cfg: cfg, log: log.WithField("component", "images"), baseURL: baseURL}
}

// List returns the gallery of serviceID in display order.
func (s *Service) List(ctx context.Context, serviceID string) ([]models.ServiceImage, error) {
	return s.load(ctx, serviceID)
}

// Upload adds files to the gallery. The stored type is sniffed from the data
// when present so a mislabelled file cannot pass as an image.
func (s *Service) Upload(ctx context.Context, serviceID string, files []File) ([]models.ServiceImage, error) {
	for i := range files {
		if len(files[i].Data) > 0 {
			files[i].Type = http.DetectContentType(files[i].Data)
			files[i].Size = int64(len(files[i].Data))
		}
	}

	var added []models.ServiceImage
	err := s.withGallery(ctx, serviceID, func(g *Gallery) error {
		g.urlFor = func(id string) string { return fmt.Sprintf("%s/%s/images/%s", s.baseURL, serviceID, id) }
		var err error
		added, err = g.Upload(files)
		return err
	})
	if err != nil {
		return nil, err
	}

	// Gallery.Upload rejects the batch on any invalid file, so added[i] is files[i].
	for i, img := range added {
		if data := files[i].Data; len(data) > 0 {
			if err := s.store.Set(ctx, dataKeyPrefix+img.ID, base64.StdEncoding.EncodeToString(data)); err != nil {
				s.log.WithError(err).WithField("image_id", img.ID).Error("Failed to store image data")
			}
		}
	}
	return added, nil
}

// Remove deletes an image and its data.
func (s *Service) Remove(ctx context.Context, serviceID, imageID string) error {
	err := s.withGallery(ctx, serviceID, func(g *Gallery) error { return g.Remove(imageID) })
	if err != nil {
		return err
	}
	if err := s.store.Remove(ctx, dataKeyPrefix+imageID); err != nil {
		s.log.WithError(err).WithField("image_id", imageID).Warn("Failed to remove image data")
	}
	return nil
}

func (s *Service) SetPrimary(ctx context.Context, serviceID, imageID string) error {
	return s.withGallery(ctx, serviceID, func(g *Gallery) error { return g.SetPrimary(imageID) })
}

func (s *Service) Move(ctx context.Context, serviceID string, from, to int) error {
	return s.withGallery(ctx, serviceID, func(g *Gallery) error { return g.Move(from, to) })
}

func (s *Service) UpdateAltText(ctx context.Context, serviceID, imageID, text string) error {
	return s.withGallery(ctx, serviceID, func(g *Gallery) error { return g.UpdateAltText(imageID, text) })
}

// Data returns the stored bytes and type of an image.
func (s *Service) Data(ctx context.Context, serviceID, imageID string) ([]byte, string, error) {
	imgs, err := s.load(ctx, serviceID)
	if err != nil {
		return nil, "", err
	}
	var contentType string
	found := false
	for _, img := range imgs {
		if img.ID == imageID {
			contentType, found = img.Type, true
		}
	}
	if !found {
		return nil, "", fmt.Errorf("%w: %s", ErrImageNotFound, imageID)
	}
	encoded, ok, err := s.store.Get(ctx, dataKeyPrefix+imageID)
	if err != nil {
		return nil, "", err
	}
	if !ok {
		return nil, "", fmt.Errorf("%w: no data for %s", ErrImageNotFound, imageID)
	}
	data, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return nil, "", fmt.Errorf("decode image %s: %w", imageID, err)
	}
	return data, contentType, nil
}

func (s *Service) withGallery(ctx context.Context, serviceID string, fn func(*Gallery) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	imgs, err := s.load(ctx, serviceID)
	if err != nil {
		return err
	}
	g := NewGallery(s.cfg, imgs, func(next []models.ServiceImage) error {
		return s.save(ctx, serviceID, next)
	})
	return fn(g)
}

func (s *Service) load(ctx context.Context, serviceID string) ([]models.ServiceImage, error) {
	raw, ok, err := s.store.Get(ctx, galleryKeyPrefix+serviceID)
	if err != nil {
		return nil, fmt.Errorf("load gallery %s: %w", serviceID, err)
	}
	imgs := []models.ServiceImage{}
	if !ok {
		return imgs, nil
	}
	if err := json.Unmarshal([]byte(raw), &imgs); err != nil {
		return nil, fmt.Errorf("decode gallery %s: %w", serviceID, err)
	}
	return imgs, nil
}

func (s *Service) save(ctx context.Context, serviceID string, imgs []models.ServiceImage) error {
	data, err := json.Marshal(imgs)
	if err != nil {
		return err
	}
	return s.store.Set(ctx, galleryKeyPrefix+serviceID, string(data))
}
