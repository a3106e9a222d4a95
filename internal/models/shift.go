package models

// Shift status values as reported by the backend.
const (
	ShiftStatusScheduled = "scheduled"
	ShiftStatusReady     = "ready"
	ShiftStatusActive    = "active"
	ShiftStatusPaused    = "paused"
	ShiftStatusEnded     = "ended"
	ShiftStatusCancelled = "cancelled"
)

// StopRef is one bin visit in a shift's ordered stop sequence.
type StopRef struct {
	BinID         string `json:"bin_id"`
	MoveRequestID string `json:"move_request_id,omitempty"`
}

// Key identifies the stop within its shift. Stops created for a move request
// are keyed by the request, plain route stops by their bin.
func (s StopRef) Key() string {
	if s.MoveRequestID != "" {
		return "mr:" + s.MoveRequestID
	}
	return "bin:" + s.BinID
}

// Shift mirrors a backend shift with its ordered stops.
type Shift struct {
	ID        string    `json:"id"`
	DriverID  string    `json:"driver_id"`
	Status    string    `json:"status"`
	Stops     []StopRef `json:"stops"`
	StartTime int64     `json:"start_time,omitempty"`
	UpdatedAt int64     `json:"updated_at,omitempty"`
}

// Clone returns a deep copy of the shift.
func (s Shift) Clone() Shift {
	if s.Stops != nil {
		stops := make([]StopRef, len(s.Stops))
		copy(stops, s.Stops)
		s.Stops = stops
	}
	return s
}

// DeepCopy implements cache.Cloner.
func (s Shift) DeepCopy() any { return s.Clone() }

// ShiftList is the cached form of the shifts collection.
type ShiftList []Shift

// DeepCopy implements cache.Cloner.
func (l ShiftList) DeepCopy() any {
	if l == nil {
		return ShiftList(nil)
	}
	out := make(ShiftList, len(l))
	for i, s := range l {
		out[i] = s.Clone()
	}
	return out
}

// Replace returns a copy of the list with the shift matching s.ID replaced.
func (l ShiftList) Replace(s Shift) ShiftList {
	out := l.DeepCopy().(ShiftList)
	for i := range out {
		if out[i].ID == s.ID {
			out[i] = s.Clone()
		}
	}
	return out
}
