package models

import "time"

// StatusUpdate is a real-time notification pushed to customers following a tracking code.
type StatusUpdate struct {
	ID           string         `json:"id"`
	TrackingCode string         `json:"tracking_code"`
	Type         string         `json:"type"` // "status_change", "message", "cost_update", "completion_time"
	Title        string         `json:"title"`
	Message      string         `json:"message"`
	Timestamp    time.Time      `json:"timestamp"`
	Urgent       bool           `json:"urgent"`
	Data         map[string]any `json:"data,omitempty"`
}

const (
	UpdateStatusChange   = "status_change"
	UpdateMessage        = "message"
	UpdateCostUpdate     = "cost_update"
	UpdateCompletionTime = "completion_time"
)
