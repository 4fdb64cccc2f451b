package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/ukydev/shop-admin/internal/analytics"
	"github.com/ukydev/shop-admin/internal/models"
)

// RecordSource supplies the service records the dashboard summarises.
type RecordSource func(ctx context.Context) ([]models.ServiceRecord, error)

// StaticRecords serves a fixed record set.
func StaticRecords(records []models.ServiceRecord) RecordSource {
	return func(context.Context) ([]models.ServiceRecord, error) { return records, nil }
}

// AnalyticsHandler serves the services-rendered dashboard.
type AnalyticsHandler struct {
	records RecordSource
	log     logrus.FieldLogger
}

func NewAnalyticsHandler(records RecordSource, log logrus.FieldLogger) *AnalyticsHandler {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &AnalyticsHandler{records: records, log: log}
}

type servicesResponse struct {
	Metrics     models.ServiceMetrics  `json:"metrics"`
	Records     []models.ServiceRecord `json:"records"`
	Categories  []string               `json:"categories"`
	Technicians []string               `json:"technicians"`
}

// Services handles GET /api/analytics/services?start=&end=&category=&technician=
func (h *AnalyticsHandler) Services(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	start, err := parseDateParam(q.Get("start"), false)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid start date")
		return
	}
	end, err := parseDateParam(q.Get("end"), true)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid end date")
		return
	}

	all, err := h.records(r.Context())
	if err != nil {
		h.log.WithError(err).Error("Failed to load service records")
		writeError(w, http.StatusInternalServerError, "Failed to load service records")
		return
	}
	filtered := analytics.FilterRecords(all, analytics.Filter{
		Start:      start,
		End:        end,
		Category:   q.Get("category"),
		Technician: q.Get("technician"),
	})
	writeJSON(w, http.StatusOK, servicesResponse{
		Metrics:     analytics.Calculate(filtered),
		Records:     filtered,
		Categories:  analytics.Categories,
		Technicians: analytics.Technicians,
	})
}

// parseDateParam accepts RFC 3339 or YYYY-MM-DD. A bare end date covers the whole day.
func parseDateParam(s string, endOfDay bool) (*time.Time, error) {
	if s == "" {
		return nil, nil
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return &t, nil
	}
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return nil, err
	}
	if endOfDay {
		t = t.Add(24*time.Hour - time.Nanosecond)
	}
	return &t, nil
}
