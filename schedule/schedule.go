// Package schedule implements the surgery-specific behavior layered on top of
// the generic table store: denormalizing the surgeon relationship, filtering
// by calendar date, flattening nested surgeon objects on writes, and the
// status-transition write path.
package schedule

import (
	"context"
	"time"

	"github.com/tranvh/opsched/models"
	"github.com/tranvh/opsched/store"
)

// Surgery lifecycle statuses as stored in the status column.
const (
	StatusScheduled  = "Scheduled"
	StatusInProgress = "InProgress"
	StatusCompleted  = "Completed"
)

// unknownSurgeonName is attached when a surgery references a surgeon id that
// no longer exists in the Users table. A dangling reference is rendered, not
// treated as an error.
const unknownSurgeonName = "Unknown"

// Service provides surgery operations on top of a Store.
type Service struct {
	store store.Store
	now   func() time.Time
}

// New creates a surgery service backed by the given store.
func New(st store.Store) *Service {
	return &Service{store: st, now: time.Now}
}

// List returns surgeries enriched with their surgeon's user record. When date
// is non-empty (YYYY-MM-DD) only surgeries whose scheduledDateTime falls on
// that calendar date are returned.
func (s *Service) List(ctx context.Context, date string) ([]models.EnrichedSurgery, error) {
	surgeries, err := s.store.List(ctx, models.TableSurgeries, nil)
	if err != nil {
		return nil, err
	}
	if date != "" {
		surgeries = filterByDate(surgeries, date)
	}
	users, err := s.store.List(ctx, models.TableUsers, nil)
	if err != nil {
		return nil, err
	}
	return enrich(surgeries, users), nil
}

// Create inserts a new surgery. The inbound body may carry a nested surgeon
// object; only its id is kept, flattened into surgeonId. New surgeries always
// start out Scheduled regardless of what the client sent.
func (s *Service) Create(ctx context.Context, body map[string]any) (models.Record, error) {
	fields := normalizeWrite(body)
	fields["status"] = StatusScheduled
	return s.store.Insert(ctx, models.TableSurgeries, "surg", fields)
}

// Update merge-updates a surgery, flattening a nested surgeon object the same
// way Create does.
func (s *Service) Update(ctx context.Context, id string, body map[string]any) (models.Record, error) {
	return s.store.Update(ctx, models.TableSurgeries, id, normalizeWrite(body))
}

// SetStatus overwrites a surgery's status, stamping startTime when it moves
// to InProgress and endTime when it moves to Completed. An explicit timestamp
// wins over the clock. All other fields ride on the store's merge-update
// semantics and are preserved unchanged.
func (s *Service) SetStatus(ctx context.Context, id, status, at string) (models.Record, error) {
	// Load first so a missing id fails before any timestamps are minted.
	if _, err := s.store.Find(ctx, models.TableSurgeries, id); err != nil {
		return nil, err
	}

	fields := models.Record{"status": status}
	switch status {
	case StatusInProgress:
		fields["startTime"] = s.timestamp(at)
	case StatusCompleted:
		fields["endTime"] = s.timestamp(at)
	}
	return s.store.Update(ctx, models.TableSurgeries, id, fields)
}

func (s *Service) timestamp(at string) string {
	if at != "" {
		return at
	}
	return s.now().UTC().Format(time.RFC3339)
}

// normalizeWrite converts a decoded JSON body into a flat Record. A nested
// surgeon object is reduced to its id under surgeonId and dropped; everything
// else is stringified as-is.
func normalizeWrite(body map[string]any) models.Record {
	fields := make(models.Record, len(body))
	for k, v := range body {
		if k == "surgeon" {
			if surgeon, ok := v.(map[string]any); ok {
				if id, ok := surgeon["id"].(string); ok {
					fields["surgeonId"] = id
				}
			}
			continue
		}
		fields[k] = models.CoerceValue(v)
	}
	return fields
}

// enrich joins each surgery to the user whose id matches its surgeonId. A
// miss attaches a placeholder surgeon with only a display name.
func enrich(surgeries, users []models.Record) []models.EnrichedSurgery {
	byID := make(map[string]models.Record, len(users))
	for _, u := range users {
		byID[u["id"]] = u
	}

	out := make([]models.EnrichedSurgery, 0, len(surgeries))
	for _, sg := range surgeries {
		es := make(models.EnrichedSurgery, len(sg)+1)
		for k, v := range sg {
			es[k] = v
		}
		if surgeon, ok := byID[sg["surgeonId"]]; ok {
			es["surgeon"] = surgeon
		} else {
			es["surgeon"] = models.Record{"name": unknownSurgeonName}
		}
		out = append(out, es)
	}
	return out
}

// filterByDate keeps surgeries whose scheduledDateTime falls on the given
// calendar date. The time component is ignored; values that parse under none
// of the accepted layouts are excluded.
func filterByDate(surgeries []models.Record, date string) []models.Record {
	out := make([]models.Record, 0, len(surgeries))
	for _, sg := range surgeries {
		if d, ok := datePart(sg["scheduledDateTime"]); ok && d == date {
			out = append(out, sg)
		}
	}
	return out
}

// Layouts the UI and the sheet are known to produce.
var dateTimeLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
}

func datePart(value string) (string, bool) {
	for _, layout := range dateTimeLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t.Format("2006-01-02"), true
		}
	}
	return "", false
}
