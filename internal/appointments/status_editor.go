package appointments

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/ukydev/shop-admin/internal/models"
)

var (
	ErrTransitionNotAllowed = errors.New("status transition not allowed")
	ErrNoPendingChange      = errors.New("no pending status change")
	ErrStatusConflict       = errors.New("appointment status changed by another request")
)

// StatusEditor drives a status change for one appointment. A selection that
// differs from the committed status stays pending until Confirm or Dismiss.
type StatusEditor struct {
	backend Backend
	log     logrus.FieldLogger
	now     func() time.Time

	appt     models.Appointment
	selected models.Status
}

// NewStatusEditor opens an editor on appt.
func NewStatusEditor(backend Backend, appt models.Appointment, log logrus.FieldLogger) *StatusEditor {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &StatusEditor{
		backend:  backend,
		log:      log.WithField("appointment_id", appt.ID),
		now:      time.Now,
		appt:     cloneAppointment(appt),
		selected: appt.Status,
	}
}

// Appointment returns the editor's view of the appointment including committed changes.
func (e *StatusEditor) Appointment() models.Appointment {
	return cloneAppointment(e.appt)
}

// Current is the committed status.
func (e *StatusEditor) Current() models.Status { return e.appt.Status }

// Selected is the status chosen in the editor, equal to Current when nothing is pending.
func (e *StatusEditor) Selected() models.Status { return e.selected }

// Pending reports whether a status change is waiting for confirmation.
func (e *StatusEditor) Pending() bool { return e.selected != e.appt.Status }

// Prompt is the confirmation question for the pending change.
func (e *StatusEditor) Prompt() string {
	return models.TransitionPrompt(e.appt.Status, e.selected)
}

// Options lists the statuses the appointment may move to.
func (e *StatusEditor) Options() []models.Status {
	return models.AllowedTransitions(e.appt.Status)
}

// Select chooses the next status. Selecting the committed status clears any
// pending change.
func (e *StatusEditor) Select(status models.Status) error {
	if status == e.appt.Status {
		e.selected = status
		return nil
	}
	if !models.CanTransition(e.appt.Status, status) {
		return fmt.Errorf("%w: %s to %s", ErrTransitionNotAllowed, e.appt.Status, status)
	}
	e.selected = status
	return nil
}

// Dismiss abandons the pending change.
func (e *StatusEditor) Dismiss() {
	e.selected = e.appt.Status
}

// Confirm commits the pending change through the backend. On failure the
// selection reverts to the committed status and the error is returned.
func (e *StatusEditor) Confirm(ctx context.Context, notes string) error {
	if !e.Pending() {
		return ErrNoPendingChange
	}
	to := e.selected
	if err := e.backend.UpdateStatus(ctx, e.appt.ID, e.appt.Status, to, notes); err != nil {
		e.log.WithError(err).WithFields(logrus.Fields{
			"from": e.appt.Status,
			"to":   to,
		}).Error("Failed to update status")
		e.selected = e.appt.Status
		return fmt.Errorf("update status: %w", err)
	}

	now := e.now()
	e.appt.Status = to
	e.appt.UpdatedAt = now
	e.appt.StatusHistory = append(e.appt.StatusHistory, models.StatusHistoryEntry{
		Status:    to,
		Timestamp: now,
		Notes:     notes,
		UpdatedBy: ActorFromContext(ctx),
	})
	return nil
}

// SaveWorkNotes stores notes. Unchanged notes are not sent. On failure the
// committed notes are kept and the error is returned.
func (e *StatusEditor) SaveWorkNotes(ctx context.Context, notes string) (bool, error) {
	if notes == e.appt.WorkNotes {
		return false, nil
	}
	if err := e.backend.UpdateWorkNotes(ctx, e.appt.ID, notes); err != nil {
		e.log.WithError(err).Error("Failed to update work notes")
		return false, fmt.Errorf("update work notes: %w", err)
	}
	e.appt.WorkNotes = notes
	e.appt.UpdatedAt = e.now()
	return true, nil
}
