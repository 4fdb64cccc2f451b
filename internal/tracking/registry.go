// Package tracking issues and tracks the MC-YYYY-XXXXXX codes customers use
// to follow their service.
//
// A Registry keeps every record in memory and mirrors the whole state to a
// single key of a db.KeyValueStore after each mutation. The in-memory state is
// authoritative: storage errors are logged and never surface to callers.
package tracking

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/ukydev/shop-admin/internal/db"
	"github.com/ukydev/shop-admin/internal/models"
)

var (
	ErrInvalidCode = errors.New("invalid tracking code")
	ErrCodeInUse   = errors.New("tracking code already in use")
)

const (
	// StorageKey is the key the registry state is persisted under.
	StorageKey = "service_tracking_codes"

	maxGenerateAttempts = 100
)

// Registry stores tracking records keyed by code. It is safe for concurrent use.
type Registry struct {
	mu        sync.RWMutex
	codes     map[string]models.TrackingRecord
	usedCodes map[string]struct{}

	store     db.KeyValueStore
	log       logrus.FieldLogger
	now       func() time.Time
	randIndex func(n int) int
}

// Option configures a Registry.
type Option func(*Registry)

// WithLogger sets the logger used for storage and import failures.
func WithLogger(l logrus.FieldLogger) Option {
	return func(r *Registry) { r.log = l }
}

// WithClock overrides time.Now.
func WithClock(now func() time.Time) Option {
	return func(r *Registry) { r.now = now }
}

// WithRandom overrides the source used to pick code characters.
// randIndex must return a value in [0, n).
func WithRandom(randIndex func(n int) int) Option {
	return func(r *Registry) { r.randIndex = randIndex }
}

// NewRegistry creates a registry and loads any state previously persisted in store.
func NewRegistry(ctx context.Context, store db.KeyValueStore, opts ...Option) *Registry {
	r := &Registry{
		codes:     make(map[string]models.TrackingRecord),
		usedCodes: make(map[string]struct{}),
		store:     store,
		log:       logrus.StandardLogger(),
		now:       time.Now,
		randIndex: rand.IntN,
	}
	for _, opt := range opts {
		opt(r)
	}
	r.log = r.log.WithField("component", "tracking_registry")
	r.Load(ctx)
	return r
}

// GenerateCode reserves a new code without registering a record for it.
func (r *Registry) GenerateCode() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.generateLocked()
}

func (r *Registry) generateLocked() string {
	year := r.now().Year()
	for attempt := 0; attempt < maxGenerateAttempts; attempt++ {
		code := formatCode(year, r.randomSuffix())
		if _, used := r.usedCodes[code]; !used {
			r.usedCodes[code] = struct{}{}
			return code
		}
	}

	// Last six digits of the millisecond clock. Not guaranteed unique.
	ms := strconv.FormatInt(r.now().UnixMilli(), 10)
	if len(ms) > SuffixLength {
		ms = ms[len(ms)-SuffixLength:]
	}
	code := formatCode(year, ms)
	if _, used := r.usedCodes[code]; used {
		r.log.WithField("code", code).Warn("Fallback tracking code collides with an existing code")
	} else {
		r.log.WithField("code", code).Warn("Tracking code space exhausted, using timestamp fallback")
	}
	r.usedCodes[code] = struct{}{}
	return code
}

func (r *Registry) randomSuffix() string {
	var b strings.Builder
	b.Grow(SuffixLength)
	for i := 0; i < SuffixLength; i++ {
		b.WriteByte(codeAlphabet[r.randIndex(len(codeAlphabet))])
	}
	return b.String()
}

// Register allocates a code for data, stores the record and returns the code.
// A missing status defaults to scheduled.
func (r *Registry) Register(ctx context.Context, data models.TrackingRegistration) string {
	r.mu.Lock()
	defer r.mu.Unlock()

	code := r.generateLocked()
	r.storeLocked(ctx, code, data)
	return code
}

// RegisterWithCode stores data under a code issued elsewhere, such as the one
// already printed on an appointment. The code must be well-formed and never
// used before in this registry.
func (r *Registry) RegisterWithCode(ctx context.Context, code string, data models.TrackingRegistration) error {
	if !ValidateCode(code) {
		return fmt.Errorf("%w: %q", ErrInvalidCode, code)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, used := r.usedCodes[code]; used {
		return fmt.Errorf("%w: %s", ErrCodeInUse, code)
	}
	r.usedCodes[code] = struct{}{}
	r.storeLocked(ctx, code, data)
	return nil
}

func (r *Registry) storeLocked(ctx context.Context, code string, data models.TrackingRegistration) {
	status := data.Status
	if status == "" {
		status = models.StatusScheduled
	}
	r.codes[code] = models.TrackingRecord{
		Code:                code,
		AppointmentID:       data.AppointmentID,
		CustomerID:          data.CustomerID,
		ServiceType:         data.ServiceType,
		VehicleInfo:         data.VehicleInfo,
		CreatedAt:           r.now(),
		Status:              status,
		EstimatedCompletion: copyTime(data.EstimatedCompletion),
		ActualCompletion:    copyTime(data.ActualCompletion),
	}
	r.saveLocked(ctx)
}

// Lookup returns the record for code, or nil when the code is malformed or unknown.
func (r *Registry) Lookup(code string) *models.TrackingRecord {
	if !ValidateCode(code) {
		return nil
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	rec, ok := r.codes[code]
	if !ok {
		return nil
	}
	rec = cloneRecord(rec)
	return &rec
}

// UpdateStatus changes the status of code and, when given, its completion times.
// It returns false when the code is unknown.
func (r *Registry) UpdateStatus(ctx context.Context, code string, status models.Status, estimated, actual *time.Time) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	rec, ok := r.codes[code]
	if !ok {
		return false
	}
	rec.Status = status
	if estimated != nil {
		rec.EstimatedCompletion = copyTime(estimated)
	}
	if actual != nil {
		rec.ActualCompletion = copyTime(actual)
	}
	r.codes[code] = rec
	r.saveLocked(ctx)
	return true
}

// ByCustomer returns the customer's records, newest first.
func (r *Registry) ByCustomer(customerID string) []models.TrackingRecord {
	return r.collect(func(rec models.TrackingRecord) bool {
		return rec.CustomerID == customerID
	})
}

// ByStatus returns records in status, newest first.
func (r *Registry) ByStatus(status models.Status) []models.TrackingRecord {
	return r.collect(func(rec models.TrackingRecord) bool {
		return rec.Status == status
	})
}

// Search matches query case-insensitively against code, service type and vehicle,
// newest first. An empty query matches everything.
func (r *Registry) Search(query string) []models.TrackingRecord {
	q := strings.ToLower(query)
	return r.collect(func(rec models.TrackingRecord) bool {
		return strings.Contains(strings.ToLower(rec.Code), q) ||
			strings.Contains(strings.ToLower(rec.ServiceType), q) ||
			strings.Contains(strings.ToLower(rec.VehicleInfo), q)
	})
}

func (r *Registry) collect(match func(models.TrackingRecord) bool) []models.TrackingRecord {
	r.mu.RLock()
	out := make([]models.TrackingRecord, 0)
	for _, rec := range r.codes {
		if match(rec) {
			out = append(out, cloneRecord(rec))
		}
	}
	r.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].Code < out[j].Code
	})
	return out
}

// Statistics counts records by status and by creation in the current month and week.
// Weeks start on Sunday at midnight in the clock's location.
func (r *Registry) Statistics() models.TrackingStatistics {
	now := r.now()
	startOfMonth := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	startOfDay := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	startOfWeek := startOfDay.AddDate(0, 0, -int(now.Weekday()))

	r.mu.RLock()
	defer r.mu.RUnlock()

	stats := models.TrackingStatistics{Total: len(r.codes)}
	for _, rec := range r.codes {
		switch rec.Status {
		case models.StatusScheduled:
			stats.Scheduled++
		case models.StatusInProgress:
			stats.InProgress++
		case models.StatusCompleted:
			stats.Completed++
		case models.StatusCancelled:
			stats.Cancelled++
		}
		if !rec.CreatedAt.Before(startOfMonth) {
			stats.ThisMonth++
		}
		if !rec.CreatedAt.Before(startOfWeek) {
			stats.ThisWeek++
		}
	}
	return stats
}

// Len returns the number of registered records.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.codes)
}

// Clear drops every record and used code and removes the persisted state.
func (r *Registry) Clear(ctx context.Context) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.codes = make(map[string]models.TrackingRecord)
	r.usedCodes = make(map[string]struct{})
	if err := r.store.Remove(ctx, StorageKey); err != nil {
		r.log.WithError(err).Error("Failed to remove persisted tracking codes")
	}
}

func copyTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := *t
	return &v
}

// cloneRecord detaches the completion times from the registry's copy.
func cloneRecord(rec models.TrackingRecord) models.TrackingRecord {
	rec.EstimatedCompletion = copyTime(rec.EstimatedCompletion)
	rec.ActualCompletion = copyTime(rec.ActualCompletion)
	return rec
}
