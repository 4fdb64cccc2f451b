package db

import (
	"context"
	"errors"

	"github.com/ukydev/shop-admin/internal/models"
)

var (
	ErrNilCollection = errors.New("mongo collection is nil")
	ErrNotFound      = errors.New("not found")
	ErrConflict      = errors.New("document changed concurrently")
)

// KeyValueStore is the persistence boundary used by the tracking registry.
// Values are opaque strings; Get reports found=false for a missing key.
type KeyValueStore interface {
	Get(ctx context.Context, key string) (value string, found bool, err error)
	Set(ctx context.Context, key, value string) error
	Remove(ctx context.Context, key string) error
}

// AppointmentCollection defines the interface for appointment data operations.
type AppointmentCollection interface {
	InsertAppointment(ctx context.Context, appointment models.Appointment) error
	FindAppointments(ctx context.Context) ([]models.Appointment, error)
	FindAppointmentByID(ctx context.Context, id string) (*models.Appointment, error)
	UpdateAppointmentStatus(ctx context.Context, id string, from models.Status, entry models.StatusHistoryEntry) error
	UpdateWorkNotes(ctx context.Context, id string, notes string) error
	UpdateCosts(ctx context.Context, id string, items []models.CostItem) error
	UpdateTrackingCode(ctx context.Context, id string, code string) error
}
