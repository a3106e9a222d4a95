package models

import "encoding/json"

// AuditEvent is the wire form of an audit entry. Diff is validated into
// typed change details by the audit core package before use.
type AuditEvent struct {
	ID         string          `json:"id"`
	SubjectID  string          `json:"subject_id"`
	ActionType string          `json:"action_type"`
	ActorID    string          `json:"actor_id"`
	CreatedAt  int64           `json:"created_at"`
	Diff       json.RawMessage `json:"diff,omitempty"`
}

// AuditEventList is the cached form of an audit trail.
type AuditEventList []AuditEvent

// DeepCopy implements cache.Cloner.
func (l AuditEventList) DeepCopy() any {
	if l == nil {
		return AuditEventList(nil)
	}
	out := make(AuditEventList, len(l))
	for i, e := range l {
		if e.Diff != nil {
			e.Diff = append(json.RawMessage(nil), e.Diff...)
		}
		out[i] = e
	}
	return out
}
