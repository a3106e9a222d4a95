package models

// AssignmentType distinguishes shift assignments from manual (user) assignments.
type AssignmentType string

const (
	AssignmentShift  AssignmentType = "shift"
	AssignmentManual AssignmentType = "manual"
)

// Assignment records who a move request is assigned to.
type Assignment struct {
	Type    AssignmentType `json:"type"`
	ShiftID string         `json:"shift_id,omitempty"`
	UserID  string         `json:"user_id,omitempty"`
}

// MoveRequest mirrors a backend move request. Urgency is not stored; it is
// derived from ScheduledDate at read time.
type MoveRequest struct {
	ID            string      `json:"id"`
	BinID         string      `json:"bin_id"`
	Status        string      `json:"status"`
	ScheduledDate int64       `json:"scheduled_date"` // epoch seconds
	MoveType      string      `json:"move_type"`
	Assignment    *Assignment `json:"assignment,omitempty"`
	CreatedAt     int64       `json:"created_at"`
	UpdatedAt     int64       `json:"updated_at"`
}

// Clone returns a deep copy of the move request.
func (m MoveRequest) Clone() MoveRequest {
	if m.Assignment != nil {
		a := *m.Assignment
		m.Assignment = &a
	}
	return m
}

// DeepCopy implements cache.Cloner.
func (m MoveRequest) DeepCopy() any { return m.Clone() }

// MoveRequestList is the cached form of a move-request collection.
type MoveRequestList []MoveRequest

// DeepCopy implements cache.Cloner.
func (l MoveRequestList) DeepCopy() any {
	if l == nil {
		return MoveRequestList(nil)
	}
	out := make(MoveRequestList, len(l))
	for i, m := range l {
		out[i] = m.Clone()
	}
	return out
}

// Replace returns a copy of the list with the request matching m.ID replaced.
// The list is returned unchanged (copied) if no request matches.
func (l MoveRequestList) Replace(m MoveRequest) MoveRequestList {
	out := l.DeepCopy().(MoveRequestList)
	for i := range out {
		if out[i].ID == m.ID {
			out[i] = m.Clone()
		}
	}
	return out
}

// Find returns the request with the given ID.
func (l MoveRequestList) Find(id string) (MoveRequest, bool) {
	for _, m := range l {
		if m.ID == id {
			return m, true
		}
	}
	return MoveRequest{}, false
}

// MoveRequestFilter narrows a move-request listing.
type MoveRequestFilter struct {
	Status  string
	ShiftID string
	BinID   string
}

// AssignRequest is the body of a single assignment call.
// Exactly one of InsertAfterBinID or InsertPosition may be set; both empty
// leaves placement to the backend.
type AssignRequest struct {
	MoveRequestID    string         `json:"-"`
	Type             AssignmentType `json:"assignment_type"`
	ShiftID          string         `json:"shift_id,omitempty"`
	UserID           string         `json:"user_id,omitempty"`
	InsertAfterBinID string         `json:"insert_after_bin_id,omitempty"`
	InsertPosition   string         `json:"insert_position,omitempty"`
}
