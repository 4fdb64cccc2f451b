package handlers

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/sirupsen/logrus"
	"github.com/ukydev/shop-admin/internal/appointments"
	"github.com/ukydev/shop-admin/internal/models"
)

// AppointmentHandler serves the appointment dashboard and its editors.
type AppointmentHandler struct {
	service *appointments.Service
	log     logrus.FieldLogger
}

func NewAppointmentHandler(service *appointments.Service, log logrus.FieldLogger) *AppointmentHandler {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &AppointmentHandler{service: service, log: log}
}

// List handles GET /api/appointments?q=&status=&date=&sort=
func (h *AppointmentHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	key, err := appointments.ParseSortKey(q.Get("sort"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	status := q.Get("status")
	if status != "" && status != appointments.FilterAll && !models.IsValidStatus(models.Status(status)) {
		writeError(w, http.StatusBadRequest, "Invalid status filter")
		return
	}
	switch q.Get("date") {
	case "", appointments.FilterAll, appointments.DateToday, appointments.DateUpcoming:
	default:
		writeError(w, http.StatusBadRequest, "Invalid date filter")
		return
	}

	list, err := h.service.List(r.Context(), appointments.Filter{
		Query:  q.Get("q"),
		Status: status,
		Date:   q.Get("date"),
	}, key)
	if err != nil {
		h.log.WithError(err).Error("Failed to list appointments")
		writeError(w, http.StatusInternalServerError, "Failed to list appointments")
		return
	}
	writeJSON(w, http.StatusOK, list)
}

// Get handles GET /api/appointments/{id}
func (h *AppointmentHandler) Get(w http.ResponseWriter, r *http.Request) {
	appt, err := h.service.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, appt)
}

type statusRequest struct {
	Status models.Status `json:"status"`
	Notes  string        `json:"notes"`
}

// ChangeStatus handles POST /api/appointments/{id}/status
func (h *AppointmentHandler) ChangeStatus(w http.ResponseWriter, r *http.Request) {
	var req statusRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if !models.IsValidStatus(req.Status) {
		writeError(w, http.StatusBadRequest, "Invalid status")
		return
	}
	appt, err := h.service.ChangeStatus(r.Context(), chi.URLParam(r, "id"), req.Status, req.Notes)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, appt)
}

type notesRequest struct {
	WorkNotes string `json:"work_notes"`
}

// SaveWorkNotes handles PUT /api/appointments/{id}/notes
func (h *AppointmentHandler) SaveWorkNotes(w http.ResponseWriter, r *http.Request) {
	var req notesRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	appt, err := h.service.SaveWorkNotes(r.Context(), chi.URLParam(r, "id"), req.WorkNotes)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, appt)
}

type costsRequest struct {
	Items []models.CostItem `json:"items"`
}

type validationResponse struct {
	Error  string                        `json:"error"`
	Fields appointments.ValidationErrors `json:"fields"`
}

// SaveCosts handles PUT /api/appointments/{id}/costs
func (h *AppointmentHandler) SaveCosts(w http.ResponseWriter, r *http.Request) {
	var req costsRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	appt, err := h.service.SaveCosts(r.Context(), chi.URLParam(r, "id"), req.Items)
	if err != nil {
		var verr appointments.ValidationErrors
		if errors.As(err, &verr) {
			writeJSON(w, http.StatusUnprocessableEntity, validationResponse{
				Error:  "Please fix the highlighted cost items",
				Fields: verr,
			})
			return
		}
		h.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, appt)
}

func (h *AppointmentHandler) writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, appointments.ErrAppointmentNotFound):
		writeError(w, http.StatusNotFound, "Appointment not found")
	case errors.Is(err, appointments.ErrTransitionNotAllowed), errors.Is(err, appointments.ErrStatusConflict):
		writeError(w, http.StatusConflict, err.Error())
	default:
		h.log.WithError(err).Error("Appointment update rejected")
		writeError(w, http.StatusInternalServerError, "Failed to save appointment")
	}
}
