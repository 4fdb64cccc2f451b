package tracking

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/ukydev/shop-admin/internal/models"
)

// ErrMalformedSnapshot is returned by Import when the payload cannot be decoded.
var ErrMalformedSnapshot = errors.New("malformed tracking snapshot")

// snapshot is the persisted registry layout:
// {"codes": [[code, record], ...], "usedCodes": [code, ...], "exportDate": ...}
type snapshot struct {
	Codes      []codeEntry `json:"codes"`
	UsedCodes  []string    `json:"usedCodes"`
	ExportDate *time.Time  `json:"exportDate,omitempty"`
}

// codeEntry is encoded as a two element array.
type codeEntry struct {
	Code   string
	Record models.TrackingRecord
}

func (e codeEntry) MarshalJSON() ([]byte, error) {
	return json.Marshal([]any{e.Code, e.Record})
}

func (e *codeEntry) UnmarshalJSON(data []byte) error {
	var pair []json.RawMessage
	if err := json.Unmarshal(data, &pair); err != nil {
		return err
	}
	if len(pair) != 2 {
		return fmt.Errorf("code entry has %d elements, want 2", len(pair))
	}
	if err := json.Unmarshal(pair[0], &e.Code); err != nil {
		return err
	}
	return json.Unmarshal(pair[1], &e.Record)
}

func (r *Registry) snapshotLocked() snapshot {
	s := snapshot{
		Codes:     make([]codeEntry, 0, len(r.codes)),
		UsedCodes: make([]string, 0, len(r.usedCodes)),
	}
	for code, rec := range r.codes {
		s.Codes = append(s.Codes, codeEntry{Code: code, Record: rec})
	}
	sort.Slice(s.Codes, func(i, j int) bool { return s.Codes[i].Code < s.Codes[j].Code })
	for code := range r.usedCodes {
		s.UsedCodes = append(s.UsedCodes, code)
	}
	sort.Strings(s.UsedCodes)
	return s
}

func (r *Registry) restoreLocked(s snapshot) {
	r.codes = make(map[string]models.TrackingRecord, len(s.Codes))
	r.usedCodes = make(map[string]struct{}, len(s.UsedCodes))
	for _, e := range s.Codes {
		r.codes[e.Code] = e.Record
		r.usedCodes[e.Code] = struct{}{}
	}
	for _, code := range s.UsedCodes {
		r.usedCodes[code] = struct{}{}
	}
}

// decodeSnapshot accepts any JSON object; missing codes or usedCodes mean empty.
func decodeSnapshot(data []byte) (snapshot, error) {
	if trimmed := bytes.TrimSpace(data); len(trimmed) == 0 || trimmed[0] != '{' {
		return snapshot{}, fmt.Errorf("%w: not a JSON object", ErrMalformedSnapshot)
	}
	var s snapshot
	if err := json.Unmarshal(data, &s); err != nil {
		return snapshot{}, fmt.Errorf("%w: %v", ErrMalformedSnapshot, err)
	}
	return s, nil
}

// saveLocked writes the registry state to the store. Failures are logged only.
func (r *Registry) saveLocked(ctx context.Context) {
	data, err := json.Marshal(r.snapshotLocked())
	if err != nil {
		r.log.WithError(err).Error("Failed to encode tracking codes")
		return
	}
	if err := r.store.Set(ctx, StorageKey, string(data)); err != nil {
		r.log.WithError(err).WithField("key", StorageKey).Error("Failed to save tracking codes")
	}
}

// Load replaces the registry state with the persisted snapshot, if any.
// A missing, unreadable or malformed snapshot leaves the registry empty.
func (r *Registry) Load(ctx context.Context) {
	r.mu.Lock()
	defer r.mu.Unlock()

	value, found, err := r.store.Get(ctx, StorageKey)
	if err != nil {
		r.log.WithError(err).WithField("key", StorageKey).Error("Failed to load tracking codes")
		return
	}
	if !found {
		return
	}
	s, err := decodeSnapshot([]byte(value))
	if err != nil {
		r.log.WithError(err).WithField("key", StorageKey).Error("Ignoring persisted tracking codes")
		return
	}
	r.restoreLocked(s)
	r.log.WithField("count", len(r.codes)).Info("Loaded tracking codes")
}

// Export serializes every record and used code, stamped with the export time.
func (r *Registry) Export() ([]byte, error) {
	r.mu.RLock()
	s := r.snapshotLocked()
	r.mu.RUnlock()

	now := r.now()
	s.ExportDate = &now
	return json.MarshalIndent(s, "", "  ")
}

// Import replaces the registry state with an Export payload and persists it.
// On malformed input the state is left unchanged and ErrMalformedSnapshot is returned.
func (r *Registry) Import(ctx context.Context, data []byte) error {
	s, err := decodeSnapshot(data)
	if err != nil {
		r.log.WithError(err).Warn("Rejected tracking code import")
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.restoreLocked(s)
	r.saveLocked(ctx)
	r.log.WithField("count", len(r.codes)).Info("Imported tracking codes")
	return nil
}
