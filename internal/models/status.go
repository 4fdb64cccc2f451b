package models

import "fmt"

// Status is the lifecycle state shared by appointments and tracking records.
type Status string

const (
	StatusScheduled  Status = "scheduled"
	StatusInProgress Status = "in_progress"
	StatusCompleted  Status = "completed"
	StatusCancelled  Status = "cancelled"
)

// Statuses lists every status in priority order.
var Statuses = []Status{StatusScheduled, StatusInProgress, StatusCompleted, StatusCancelled}

// allowedTransitions maps a status to the statuses it may move to.
// Completed is terminal. Cancelled appointments may be rescheduled.
var allowedTransitions = map[Status][]Status{
	StatusScheduled:  {StatusInProgress, StatusCancelled},
	StatusInProgress: {StatusCompleted, StatusCancelled},
	StatusCompleted:  {},
	StatusCancelled:  {StatusScheduled},
}

var statusPriority = map[Status]int{
	StatusScheduled:  1,
	StatusInProgress: 2,
	StatusCompleted:  3,
	StatusCancelled:  4,
}

var statusLabels = map[Status]string{
	StatusScheduled:  "Scheduled",
	StatusInProgress: "In Progress",
	StatusCompleted:  "Completed",
	StatusCancelled:  "Cancelled",
}

var transitionPrompts = map[Status]map[Status]string{
	StatusScheduled: {
		StatusInProgress: "Start work on this appointment?",
		StatusCancelled:  "Cancel this scheduled appointment?",
	},
	StatusInProgress: {
		StatusCompleted: "Mark this appointment as completed?",
		StatusCancelled: "Cancel this appointment while it is in progress?",
	},
	StatusCancelled: {
		StatusScheduled: "Reschedule this cancelled appointment?",
	},
}

// IsValidStatus checks if a status is one of the known values
func IsValidStatus(s Status) bool {
	_, ok := allowedTransitions[s]
	return ok
}

// ParseStatus converts a raw string into a Status.
func ParseStatus(s string) (Status, error) {
	st := Status(s)
	if !IsValidStatus(st) {
		return "", fmt.Errorf("unknown status: %q", s)
	}
	return st, nil
}

// CanTransition reports whether an appointment in status from may move to status to.
// Staying in the same status is allowed for every status except completed.
func CanTransition(from, to Status) bool {
	next, ok := allowedTransitions[from]
	if !ok || !IsValidStatus(to) {
		return false
	}
	if from == to {
		return len(next) > 0
	}
	for _, s := range next {
		if s == to {
			return true
		}
	}
	return false
}

// AllowedTransitions returns a copy of the statuses reachable from from.
func AllowedTransitions(from Status) []Status {
	next := allowedTransitions[from]
	out := make([]Status, len(next))
	copy(out, next)
	return out
}

// IsTerminal reports whether no further status changes are possible.
func IsTerminal(s Status) bool {
	next, ok := allowedTransitions[s]
	return ok && len(next) == 0
}

// Label returns the human readable name of the status.
func (s Status) Label() string {
	if l, ok := statusLabels[s]; ok {
		return l
	}
	return string(s)
}

// Priority is the sort rank of the status; unknown statuses sort last.
func (s Status) Priority() int {
	if p, ok := statusPriority[s]; ok {
		return p
	}
	return len(statusPriority) + 1
}

// TransitionPrompt is the confirmation question shown before committing a status change.
// It is empty when from == to.
func TransitionPrompt(from, to Status) string {
	if from == to {
		return ""
	}
	if msg, ok := transitionPrompts[from][to]; ok {
		return msg
	}
	return fmt.Sprintf("Change status from %q to %q?", from.Label(), to.Label())
}
