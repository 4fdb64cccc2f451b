package appointments

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/ukydev/shop-admin/internal/events"
	"github.com/ukydev/shop-admin/internal/models"
	"github.com/ukydev/shop-admin/internal/tracking"
)

// Service runs the editors against a Repository and fans committed changes
// out to the tracking registry and the event publisher.
type Service struct {
	repo      Repository
	registry  *tracking.Registry
	publisher events.Publisher
	log       logrus.FieldLogger
	now       func() time.Time
}

// NewService wires a Service. registry and publisher may be nil.
func NewService(repo Repository, registry *tracking.Registry, publisher events.Publisher, log logrus.FieldLogger) *Service {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Service{repo: repo, registry: registry, publisher: publisher, log: log, now: time.Now}
}

// List returns the filtered and sorted dashboard list.
func (s *Service) List(ctx context.Context, f Filter, key SortKey) ([]models.Appointment, error) {
	all, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	return FilterAndSort(all, f, key, s.now()), nil
}

// Get returns one appointment.
func (s *Service) Get(ctx context.Context, id string) (*models.Appointment, error) {
	return s.repo.Get(ctx, id)
}

// ChangeStatus selects and confirms a status change in one step.
func (s *Service) ChangeStatus(ctx context.Context, id string, status models.Status, notes string) (*models.Appointment, error) {
	appt, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	editor := NewStatusEditor(s.repo, *appt, s.log)
	editor.now = s.now
	if err := editor.Select(status); err != nil {
		return nil, err
	}
	if !editor.Pending() {
		return appt, nil
	}
	from := editor.Current()
	if err := editor.Confirm(ctx, notes); err != nil {
		return nil, err
	}

	updated := editor.Appointment()
	if s.registry != nil && updated.TrackingCode != "" {
		var actual *time.Time
		if status == models.StatusCompleted {
			now := s.now()
			actual = &now
		}
		if !s.registry.UpdateStatus(ctx, updated.TrackingCode, status, nil, actual) {
			s.log.WithFields(logrus.Fields{
				"appointment_id": updated.ID,
				"tracking_code":  updated.TrackingCode,
			}).Warn("Tracking code not registered, customer view not updated")
		}
	}
	s.publish(ctx, events.StatusChanged(updated.TrackingCode, from, status, notes, s.now()))
	return &updated, nil
}

// SaveWorkNotes stores the technician's notes.
func (s *Service) SaveWorkNotes(ctx context.Context, id, notes string) (*models.Appointment, error) {
	appt, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	editor := NewStatusEditor(s.repo, *appt, s.log)
	editor.now = s.now
	changed, err := editor.SaveWorkNotes(ctx, notes)
	if err != nil {
		return nil, err
	}
	updated := editor.Appointment()
	if changed && notes != "" {
		u := events.NewUpdate(updated.TrackingCode, models.UpdateMessage, "New Message from Technician", notes, s.now())
		s.publish(ctx, u)
	}
	return &updated, nil
}

// SaveCosts replaces the appointment's cost items. Invalid items are reported
// as ValidationErrors and nothing is saved.
func (s *Service) SaveCosts(ctx context.Context, id string, items []models.CostItem) (*models.Appointment, error) {
	appt, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	sheet := NewCostSheet(s.repo, *appt, s.log)
	sheet.Replace(items)
	if err := sheet.Save(ctx); err != nil {
		return nil, err
	}

	updated := *appt
	updated.CostBreakdown = sheet.Items()
	total := sheet.AdditionalTotal()
	updated.AdditionalCosts = &total
	s.publish(ctx, events.CostsUpdated(updated.TrackingCode, total, sheet.GrandTotal(), s.now()))
	return &updated, nil
}

// UpdateEstimatedCompletion records a new estimate on the tracking record and notifies the customer.
func (s *Service) UpdateEstimatedCompletion(ctx context.Context, code string, estimated time.Time) bool {
	if s.registry == nil {
		return false
	}
	rec := s.registry.Lookup(code)
	if rec == nil || !s.registry.UpdateStatus(ctx, code, rec.Status, &estimated, nil) {
		return false
	}
	s.publish(ctx, events.CompletionTimeUpdated(code, estimated, s.now()))
	return true
}

func (s *Service) publish(ctx context.Context, update models.StatusUpdate) {
	if s.publisher == nil || update.TrackingCode == "" {
		return
	}
	if err := s.publisher.Publish(ctx, update); err != nil {
		s.log.WithError(err).WithFields(logrus.Fields{
			"tracking_code": update.TrackingCode,
			"type":          update.Type,
		}).Warn("Failed to publish status update")
	}
}
