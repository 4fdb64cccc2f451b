package handlers

import (
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/sirupsen/logrus"
	"github.com/ukydev/shop-admin/internal/images"
)

const maxUploadMemory = 32 << 20

// ImageHandler manages service galleries.
type ImageHandler struct {
	service *images.Service
	cfg     images.Config
	log     logrus.FieldLogger
}

func NewImageHandler(service *images.Service, cfg images.Config, log logrus.FieldLogger) *ImageHandler {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &ImageHandler{service: service, cfg: cfg, log: log}
}

// List handles GET /api/services/{serviceID}/images
func (h *ImageHandler) List(w http.ResponseWriter, r *http.Request) {
	imgs, err := h.service.List(r.Context(), chi.URLParam(r, "serviceID"))
	if err != nil {
		h.writeImageError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, imgs)
}

// Upload handles multipart POST /api/services/{serviceID}/images with "images" file parts.
func (h *ImageHandler) Upload(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadMemory); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid multipart form")
		return
	}
	headers := r.MultipartForm.File["images"]
	if len(headers) == 0 {
		writeError(w, http.StatusBadRequest, "No images provided")
		return
	}

	files := make([]images.File, 0, len(headers))
	for _, fh := range headers {
		f := images.File{Name: fh.Filename, Size: fh.Size, Type: fh.Header.Get("Content-Type")}
		// Oversized files are reported by validation without reading them.
		if fh.Size <= h.cfg.MaxFileSize {
			src, err := fh.Open()
			if err != nil {
				writeError(w, http.StatusBadRequest, "Failed to read "+fh.Filename)
				return
			}
			f.Data, err = io.ReadAll(src)
			src.Close()
			if err != nil {
				writeError(w, http.StatusBadRequest, "Failed to read "+fh.Filename)
				return
			}
		}
		files = append(files, f)
	}

	added, err := h.service.Upload(r.Context(), chi.URLParam(r, "serviceID"), files)
	if err != nil {
		h.writeImageError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, added)
}

// Remove handles DELETE /api/services/{serviceID}/images/{imageID}
func (h *ImageHandler) Remove(w http.ResponseWriter, r *http.Request) {
	err := h.service.Remove(r.Context(), chi.URLParam(r, "serviceID"), chi.URLParam(r, "imageID"))
	if err != nil {
		h.writeImageError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// SetPrimary handles PUT /api/services/{serviceID}/images/{imageID}/primary
func (h *ImageHandler) SetPrimary(w http.ResponseWriter, r *http.Request) {
	serviceID := chi.URLParam(r, "serviceID")
	if err := h.service.SetPrimary(r.Context(), serviceID, chi.URLParam(r, "imageID")); err != nil {
		h.writeImageError(w, err)
		return
	}
	h.List(w, r)
}

type moveRequest struct {
	From int `json:"from"`
	To   int `json:"to"`
}

// Move handles PUT /api/services/{serviceID}/images/order
func (h *ImageHandler) Move(w http.ResponseWriter, r *http.Request) {
	var req moveRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if err := h.service.Move(r.Context(), chi.URLParam(r, "serviceID"), req.From, req.To); err != nil {
		h.writeImageError(w, err)
		return
	}
	h.List(w, r)
}

type altTextRequest struct {
	AltText string `json:"alt_text"`
}

// UpdateAltText handles PUT /api/services/{serviceID}/images/{imageID}/alt
func (h *ImageHandler) UpdateAltText(w http.ResponseWriter, r *http.Request) {
	var req altTextRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	serviceID := chi.URLParam(r, "serviceID")
	if err := h.service.UpdateAltText(r.Context(), serviceID, chi.URLParam(r, "imageID"), req.AltText); err != nil {
		h.writeImageError(w, err)
		return
	}
	h.List(w, r)
}

// Data handles GET /api/services/{serviceID}/images/{imageID}
func (h *ImageHandler) Data(w http.ResponseWriter, r *http.Request) {
	data, contentType, err := h.service.Data(r.Context(), chi.URLParam(r, "serviceID"), chi.URLParam(r, "imageID"))
	if err != nil {
		h.writeImageError(w, err)
		return
	}
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	w.Header().Set("Cache-Control", "private, max-age=3600")
	w.WriteHeader(http.StatusOK)
	w.Write(data)
}

type uploadErrorResponse struct {
	Error    string   `json:"error"`
	Messages []string `json:"messages"`
}

func (h *ImageHandler) writeImageError(w http.ResponseWriter, err error) {
	var uerr *images.UploadError
	switch {
	case errors.As(err, &uerr):
		writeJSON(w, http.StatusUnprocessableEntity, uploadErrorResponse{Error: "Upload rejected", Messages: uerr.Messages})
	case errors.Is(err, images.ErrImageNotFound):
		writeError(w, http.StatusNotFound, "Image not found")
	case errors.Is(err, images.ErrBadIndex):
		writeError(w, http.StatusBadRequest, err.Error())
	default:
		h.log.WithError(err).Error("Image operation failed")
		writeError(w, http.StatusInternalServerError, "Image operation failed")
	}
}
