package handlers

import (
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/sirupsen/logrus"
	"github.com/ukydev/shop-admin/internal/appointments"
	"github.com/ukydev/shop-admin/internal/models"
	"github.com/ukydev/shop-admin/internal/tracking"
)

const maxImportBody = 16 << 20

// TrackingHandler exposes the tracking code registry.
type TrackingHandler struct {
	registry *tracking.Registry
	// appointments publishes completion time changes; may be nil.
	appointments *appointments.Service
	log          logrus.FieldLogger
	now          func() time.Time
}

func NewTrackingHandler(registry *tracking.Registry, svc *appointments.Service, log logrus.FieldLogger) *TrackingHandler {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &TrackingHandler{registry: registry, appointments: svc, log: log, now: time.Now}
}

type registerResponse struct {
	Code    string               `json:"code"`
	Display tracking.DisplayInfo `json:"display"`
}

// Register handles POST /api/tracking
func (h *TrackingHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req models.TrackingRegistration
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.AppointmentID == "" || req.CustomerID == "" {
		writeError(w, http.StatusBadRequest, "appointmentId and customerId are required")
		return
	}
	if req.Status != "" && !models.IsValidStatus(req.Status) {
		writeError(w, http.StatusBadRequest, "Invalid status")
		return
	}

	code := h.registry.Register(r.Context(), req)
	h.log.WithFields(logrus.Fields{
		"code":           code,
		"appointment_id": req.AppointmentID,
	}).Info("Registered tracking code")
	writeJSON(w, http.StatusCreated, registerResponse{Code: code, Display: tracking.Describe(code, h.now())})
}

type lookupResponse struct {
	Record  models.TrackingRecord `json:"record"`
	Display tracking.DisplayInfo  `json:"display"`
}

// Lookup handles GET /api/tracking/{code}
func (h *TrackingHandler) Lookup(w http.ResponseWriter, r *http.Request) {
	code := chi.URLParam(r, "code")
	if !tracking.ValidateCode(code) {
		writeError(w, http.StatusBadRequest, "Invalid tracking code format")
		return
	}
	rec := h.registry.Lookup(code)
	if rec == nil {
		writeError(w, http.StatusNotFound, "Tracking code not found")
		return
	}
	writeJSON(w, http.StatusOK, lookupResponse{Record: *rec, Display: tracking.Describe(code, h.now())})
}

type trackingStatusRequest struct {
	Status              models.Status `json:"status"`
	EstimatedCompletion *time.Time    `json:"estimatedCompletion,omitempty"`
	ActualCompletion    *time.Time    `json:"actualCompletion,omitempty"`
}

// UpdateStatus handles PUT /api/tracking/{code}/status
func (h *TrackingHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	code := chi.URLParam(r, "code")
	var req trackingStatusRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if !models.IsValidStatus(req.Status) {
		writeError(w, http.StatusBadRequest, "Invalid status")
		return
	}
	if !h.registry.UpdateStatus(r.Context(), code, req.Status, nil, req.ActualCompletion) {
		writeError(w, http.StatusNotFound, "Tracking code not found")
		return
	}
	if req.EstimatedCompletion != nil {
		if h.appointments == nil || !h.appointments.UpdateEstimatedCompletion(r.Context(), code, *req.EstimatedCompletion) {
			h.registry.UpdateStatus(r.Context(), code, req.Status, req.EstimatedCompletion, nil)
		}
	}
	writeJSON(w, http.StatusOK, h.registry.Lookup(code))
}

// List handles GET /api/tracking?customer=|status=|q=
func (h *TrackingHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	switch {
	case q.Get("customer") != "":
		writeJSON(w, http.StatusOK, h.registry.ByCustomer(q.Get("customer")))
	case q.Get("status") != "":
		status, err := models.ParseStatus(q.Get("status"))
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		writeJSON(w, http.StatusOK, h.registry.ByStatus(status))
	default:
		writeJSON(w, http.StatusOK, h.registry.Search(q.Get("q")))
	}
}

// Stats handles GET /api/tracking/stats
func (h *TrackingHandler) Stats(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.registry.Statistics())
}

// Export handles GET /api/tracking/export
func (h *TrackingHandler) Export(w http.ResponseWriter, r *http.Request) {
	data, err := h.registry.Export()
	if err != nil {
		h.log.WithError(err).Error("Failed to export tracking codes")
		writeError(w, http.StatusInternalServerError, "Failed to export tracking codes")
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Content-Disposition", `attachment; filename="tracking-codes-`+h.now().Format("2006-01-02")+`.json"`)
	w.WriteHeader(http.StatusOK)
	w.Write(data)
}

// Import handles POST /api/tracking/import
func (h *TrackingHandler) Import(w http.ResponseWriter, r *http.Request) {
	data, err := io.ReadAll(io.LimitReader(r.Body, maxImportBody))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Failed to read request body")
		return
	}
	if err := h.registry.Import(r.Context(), data); err != nil {
		if errors.Is(err, tracking.ErrMalformedSnapshot) {
			writeError(w, http.StatusBadRequest, "Malformed tracking code export")
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to import tracking codes")
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"imported": h.registry.Len()})
}
