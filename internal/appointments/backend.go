// Package appointments holds the admin-side appointment workflows: status
// changes, work notes, additional costs and dashboard filtering.
package appointments

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	"github.com/ukydev/shop-admin/internal/db"
	"github.com/ukydev/shop-admin/internal/models"
)

var ErrAppointmentNotFound = errors.New("appointment not found")

// Backend persists committed appointment changes. A returned error means the
// change was rejected and the caller must keep its previous state.
//
// UpdateStatus moves the appointment from status from to status to. It fails
// with ErrStatusConflict when the stored status is no longer from.
type Backend interface {
	UpdateStatus(ctx context.Context, id string, from, to models.Status, notes string) error
	UpdateWorkNotes(ctx context.Context, id string, notes string) error
	UpdateCosts(ctx context.Context, id string, items []models.CostItem, total decimal.Decimal) error
}

// Repository is a Backend that can also read appointments and reassign
// their tracking codes.
type Repository interface {
	Backend
	List(ctx context.Context) ([]models.Appointment, error)
	Get(ctx context.Context, id string) (*models.Appointment, error)
	AssignTrackingCode(ctx context.Context, id, code string) error
}

type actorKey struct{}

// WithActor records who is making changes in ctx.
func WithActor(ctx context.Context, username string) context.Context {
	return context.WithValue(ctx, actorKey{}, username)
}

// ActorFromContext returns the username stored by WithActor, or "system".
func ActorFromContext(ctx context.Context) string {
	if name, ok := ctx.Value(actorKey{}).(string); ok && name != "" {
		return name
	}
	return "system"
}

// CollectionRepository adapts a db.AppointmentCollection to Repository.
type CollectionRepository struct {
	Collection db.AppointmentCollection
	Now        func() time.Time
}

// NewCollectionRepository wraps coll with the wall clock.
func NewCollectionRepository(coll db.AppointmentCollection) *CollectionRepository {
	return &CollectionRepository{Collection: coll, Now: time.Now}
}

// List returns every stored appointment.
func (r *CollectionRepository) List(ctx context.Context) ([]models.Appointment, error) {
	return r.Collection.FindAppointments(ctx)
}

// Get returns one appointment or ErrAppointmentNotFound.
func (r *CollectionRepository) Get(ctx context.Context, id string) (*models.Appointment, error) {
	appt, err := r.Collection.FindAppointmentByID(ctx, id)
	if errors.Is(err, db.ErrNotFound) {
		return nil, fmt.Errorf("%w: %s", ErrAppointmentNotFound, id)
	}
	return appt, err
}

// UpdateStatus writes the transition and its history entry if the stored
// status is still from.
func (r *CollectionRepository) UpdateStatus(ctx context.Context, id string, from, to models.Status, notes string) error {
	entry := models.StatusHistoryEntry{
		Status:    to,
		Timestamp: r.Now(),
		Notes:     notes,
		UpdatedBy: ActorFromContext(ctx),
	}
	return r.mapErr(id, r.Collection.UpdateAppointmentStatus(ctx, id, from, entry))
}

// UpdateWorkNotes replaces the appointment's work notes.
func (r *CollectionRepository) UpdateWorkNotes(ctx context.Context, id string, notes string) error {
	return r.mapErr(id, r.Collection.UpdateWorkNotes(ctx, id, notes))
}

// UpdateCosts stores items; the collection derives the additional total from them.
func (r *CollectionRepository) UpdateCosts(ctx context.Context, id string, items []models.CostItem, _ decimal.Decimal) error {
	return r.mapErr(id, r.Collection.UpdateCosts(ctx, id, items))
}

// AssignTrackingCode stores code on the appointment.
func (r *CollectionRepository) AssignTrackingCode(ctx context.Context, id, code string) error {
	return r.mapErr(id, r.Collection.UpdateTrackingCode(ctx, id, code))
}

func (r *CollectionRepository) mapErr(id string, err error) error {
	switch {
	case errors.Is(err, db.ErrNotFound):
		return fmt.Errorf("%w: %s", ErrAppointmentNotFound, id)
	case errors.Is(err, db.ErrConflict):
		return fmt.Errorf("%w: %s", ErrStatusConflict, id)
	}
	return err
}

// MemoryRepository keeps appointments in process. Reads return copies.
type MemoryRepository struct {
	mu    sync.RWMutex
	order []string
	byID  map[string]models.Appointment
	now   func() time.Time
}

// NewMemoryRepository returns a repository holding appts in the given order.
func NewMemoryRepository(appts []models.Appointment) *MemoryRepository {
	r := &MemoryRepository{byID: make(map[string]models.Appointment), now: time.Now}
	for _, a := range appts {
		r.order = append(r.order, a.ID)
		r.byID[a.ID] = cloneAppointment(a)
	}
	return r
}

// List returns copies of all appointments in insertion order.
func (r *MemoryRepository) List(_ context.Context) ([]models.Appointment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]models.Appointment, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, cloneAppointment(r.byID[id]))
	}
	return out, nil
}

// Get returns a copy of one appointment or ErrAppointmentNotFound.
func (r *MemoryRepository) Get(_ context.Context, id string) (*models.Appointment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	a, ok := r.byID[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrAppointmentNotFound, id)
	}
	a = cloneAppointment(a)
	return &a, nil
}

// Insert adds or replaces an appointment.
func (r *MemoryRepository) Insert(_ context.Context, appt models.Appointment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.byID[appt.ID]; !exists {
		r.order = append(r.order, appt.ID)
	}
	r.byID[appt.ID] = cloneAppointment(appt)
	return nil
}

// UpdateStatus applies the transition under the write lock, re-checking the
// stored status against from and the transition table.
func (r *MemoryRepository) UpdateStatus(ctx context.Context, id string, from, to models.Status, notes string) error {
	now := r.now()
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.byID[id]
	if !ok {
		return fmt.Errorf("%w: %s", ErrAppointmentNotFound, id)
	}
	if a.Status != from || !models.CanTransition(a.Status, to) {
		return fmt.Errorf("%w: %s is %s, not %s", ErrStatusConflict, id, a.Status, from)
	}
	a.Status = to
	a.StatusHistory = append(a.StatusHistory, models.StatusHistoryEntry{
		Status:    to,
		Timestamp: now,
		Notes:     notes,
		UpdatedBy: ActorFromContext(ctx),
	})
	a.UpdatedAt = now
	r.byID[id] = a
	return nil
}

// UpdateWorkNotes replaces the appointment's work notes.
func (r *MemoryRepository) UpdateWorkNotes(_ context.Context, id string, notes string) error {
	now := r.now()
	return r.update(id, func(a *models.Appointment) {
		a.WorkNotes = notes
		a.UpdatedAt = now
	})
}

// UpdateCosts replaces the cost items and stores total as the additional costs.
func (r *MemoryRepository) UpdateCosts(_ context.Context, id string, items []models.CostItem, total decimal.Decimal) error {
	now := r.now()
	return r.update(id, func(a *models.Appointment) {
		a.CostBreakdown = append([]models.CostItem(nil), items...)
		a.AdditionalCosts = &total
		a.UpdatedAt = now
	})
}

// AssignTrackingCode stores code on the appointment.
func (r *MemoryRepository) AssignTrackingCode(_ context.Context, id, code string) error {
	now := r.now()
	return r.update(id, func(a *models.Appointment) {
		a.TrackingCode = code
		a.UpdatedAt = now
	})
}

func (r *MemoryRepository) update(id string, apply func(*models.Appointment)) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.byID[id]
	if !ok {
		return fmt.Errorf("%w: %s", ErrAppointmentNotFound, id)
	}
	apply(&a)
	r.byID[id] = a
	return nil
}

func cloneAppointment(a models.Appointment) models.Appointment {
	a.CostBreakdown = append([]models.CostItem(nil), a.CostBreakdown...)
	a.StatusHistory = append([]models.StatusHistoryEntry(nil), a.StatusHistory...)
	if a.AdditionalCosts != nil {
		v := *a.AdditionalCosts
		a.AdditionalCosts = &v
	}
	return a
}
