// Package audit validates audit trail entries at the boundary.
// Audit events are append-only and never edited; this package only reads them.
package audit

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/example/fleetops/internal/apperr"
	"github.com/example/fleetops/internal/models"
)

// ChangeKind tags a ChangeDetail by which sides are present.
type ChangeKind string

const (
	ChangeSet      ChangeKind = "set"      // after only
	ChangeCleared  ChangeKind = "cleared"  // before only
	ChangeModified ChangeKind = "modified" // both
)

// ChangeDetail is one field-level change. Field is required; at least one of
// Before or After is present.
type ChangeDetail struct {
	Field  string
	Kind   ChangeKind
	Before json.RawMessage
	After  json.RawMessage
}

// BeforeString renders Before for display, "" when absent.
func (c ChangeDetail) BeforeString() string { return render(c.Before) }

// AfterString renders After for display, "" when absent.
func (c ChangeDetail) AfterString() string { return render(c.After) }

func render(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	return string(raw)
}

// Event is a validated audit event.
type Event struct {
	ID         string
	SubjectID  string
	ActionType string
	ActorID    string
	CreatedAt  int64
	Diff       []ChangeDetail
}

type wireChange struct {
	Field  string          `json:"field"`
	Before json.RawMessage `json:"before"`
	After  json.RawMessage `json:"after"`
}

func present(raw json.RawMessage) bool {
	return len(raw) > 0 && !bytes.Equal(bytes.TrimSpace(raw), []byte("null"))
}

// ParseDiff validates a raw diff payload.
// Accepts a JSON array of {field, before?, after?}; an absent or null diff
// yields no details.
func ParseDiff(raw json.RawMessage) ([]ChangeDetail, error) {
	const op = "parse audit diff"
	if !present(raw) {
		return nil, nil
	}
	var wire []wireChange
	if err := json.Unmarshal(raw, &wire); err != nil {
		return nil, apperr.Validation(op, "diff is not an array of changes: %v", err)
	}
	out := make([]ChangeDetail, 0, len(wire))
	for i, w := range wire {
		if w.Field == "" {
			return nil, apperr.Validation(op, "change %d has no field", i)
		}
		hasBefore, hasAfter := present(w.Before), present(w.After)
		c := ChangeDetail{Field: w.Field}
		switch {
		case hasBefore && hasAfter:
			c.Kind, c.Before, c.After = ChangeModified, w.Before, w.After
		case hasAfter:
			c.Kind, c.After = ChangeSet, w.After
		case hasBefore:
			c.Kind, c.Before = ChangeCleared, w.Before
		default:
			return nil, apperr.Validation(op, "change %d (%s) has neither before nor after", i, w.Field)
		}
		out = append(out, c)
	}
	return out, nil
}

// FromWire validates a single wire event.
func FromWire(e models.AuditEvent) (Event, error) {
	if e.ID == "" || e.SubjectID == "" {
		return Event{}, apperr.Validation("parse audit event", "event is missing id or subject_id")
	}
	diff, err := ParseDiff(e.Diff)
	if err != nil {
		return Event{}, fmt.Errorf("event %s: %w", e.ID, err)
	}
	return Event{
		ID:         e.ID,
		SubjectID:  e.SubjectID,
		ActionType: e.ActionType,
		ActorID:    e.ActorID,
		CreatedAt:  e.CreatedAt,
		Diff:       diff,
	}, nil
}

// Trail validates a full trail: every event parses and createdAt is strictly
// increasing in the order given.
func Trail(events []models.AuditEvent) ([]Event, error) {
	out := make([]Event, 0, len(events))
	for i, e := range events {
		ev, err := FromWire(e)
		if err != nil {
			return nil, err
		}
		if i > 0 && ev.CreatedAt <= out[i-1].CreatedAt {
			return nil, apperr.Validation("audit trail", "event %s at %d does not follow %s at %d",
				ev.ID, ev.CreatedAt, out[i-1].ID, out[i-1].CreatedAt)
		}
		out = append(out, ev)
	}
	return out, nil
}
