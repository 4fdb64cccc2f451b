// Package events publishes real-time status updates that customers follow by
// tracking code.
package events

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/ukydev/shop-admin/internal/models"
)

// Publisher delivers status updates to whoever follows a tracking code.
type Publisher interface {
	Publish(ctx context.Context, update models.StatusUpdate) error
}

// NewUpdate builds a StatusUpdate with a fresh id.
func NewUpdate(trackingCode, updateType, title, message string, now time.Time) models.StatusUpdate {
	return models.StatusUpdate{
		ID:           uuid.NewString(),
		TrackingCode: trackingCode,
		Type:         updateType,
		Title:        title,
		Message:      message,
		Timestamp:    now,
	}
}

// StatusChanged describes a committed status transition.
func StatusChanged(trackingCode string, from, to models.Status, notes string, now time.Time) models.StatusUpdate {
	title := "Status Updated"
	switch to {
	case models.StatusInProgress:
		title = "Service Started"
	case models.StatusCompleted:
		title = "Service Completed"
	case models.StatusCancelled:
		title = "Service Cancelled"
	case models.StatusScheduled:
		title = "Service Rescheduled"
	}
	message := fmt.Sprintf("Your service status changed from %s to %s.", from.Label(), to.Label())
	if notes != "" {
		message += " " + notes
	}
	u := NewUpdate(trackingCode, models.UpdateStatusChange, title, message, now)
	u.Urgent = to == models.StatusCancelled
	u.Data = map[string]any{"from": from, "to": to}
	return u
}

// CostsUpdated describes a saved change to the additional costs.
func CostsUpdated(trackingCode string, additional, grandTotal decimal.Decimal, now time.Time) models.StatusUpdate {
	u := NewUpdate(trackingCode, models.UpdateCostUpdate, "Cost Update",
		fmt.Sprintf("Additional costs are now $%s. New total: $%s.", additional.StringFixed(2), grandTotal.StringFixed(2)), now)
	u.Data = map[string]any{
		"additional_costs": additional.StringFixed(2),
		"total":            grandTotal.StringFixed(2),
	}
	return u
}

// CompletionTimeUpdated describes a new estimated completion time.
func CompletionTimeUpdated(trackingCode string, estimated, now time.Time) models.StatusUpdate {
	u := NewUpdate(trackingCode, models.UpdateCompletionTime, "Updated Completion Time",
		"New estimated completion time: "+estimated.Format("Jan 2, 3:04 PM"), now)
	u.Data = map[string]any{"estimated_completion": estimated}
	return u
}

// LogPublisher writes updates to the log. It is used when no broker is configured.
type LogPublisher struct {
	Logger logrus.FieldLogger
}

func (p LogPublisher) Publish(_ context.Context, update models.StatusUpdate) error {
	logger := p.Logger
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	logger.WithFields(logrus.Fields{
		"tracking_code": update.TrackingCode,
		"type":          update.Type,
		"urgent":        update.Urgent,
	}).Info(update.Title)
	return nil
}
