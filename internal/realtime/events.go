package realtime

import (
	"encoding/json"

	"github.com/example/fleetops/internal/apperr"
	"github.com/example/fleetops/internal/cache"
)

// Known inbound message types.
const (
	TypeShiftUpdate       = "shift_update"
	TypeDriverShiftChange = "driver_shift_change"
	TypeRouteAssigned     = "route_assigned"
	TypeShiftDeleted      = "shift_deleted"
	TypeMoveRequestUpdate = "move_request_update"
	TypeBinUpdate         = "bin_update"
	TypeDriverLocation    = "driver_location_update"
)

// Message is an inbound push message. Only the identifiers needed to pick
// cache keys are decoded; payload data is never written to the cache.
type Message struct {
	Type          string `json:"type"`
	ShiftID       string `json:"shift_id,omitempty"`
	DriverID      string `json:"driver_id,omitempty"`
	MoveRequestID string `json:"move_request_id,omitempty"`
	BinID         string `json:"bin_id,omitempty"`
}

// Decode parses one frame.
func Decode(data []byte) (Message, error) {
	var m Message
	if err := json.Unmarshal(data, &m); err != nil {
		return Message{}, apperr.Validation("decode realtime message", "%v", err)
	}
	if m.Type == "" {
		return Message{}, apperr.Validation("decode realtime message", "message has no type")
	}
	return m, nil
}

func exact(key, reason string) cache.Invalidation {
	return cache.Invalidation{Key: key, Reason: reason}
}

func prefix(key, reason string) cache.Invalidation {
	return cache.Invalidation{Key: key, Prefix: true, Reason: reason}
}

// Invalidations maps a message to the cache keys it makes stale.
// Unknown types map to nothing.
func Invalidations(m Message) []cache.Invalidation {
	r := m.Type
	var out []cache.Invalidation
	switch m.Type {
	case TypeShiftUpdate:
		out = append(out, exact(cache.KeyShifts, r), exact(cache.KeyDrivers, r))
		if m.ShiftID != "" {
			out = append(out, exact(cache.ShiftKey(m.ShiftID), r))
		}
	case TypeDriverShiftChange:
		out = append(out, exact(cache.KeyDrivers, r), exact(cache.KeyShifts, r))
		if m.ShiftID != "" {
			out = append(out, exact(cache.ShiftKey(m.ShiftID), r))
		}
	case TypeRouteAssigned:
		out = append(out, exact(cache.KeyShifts, r), prefix(cache.KeyMoveRequests, r))
		if m.ShiftID != "" {
			out = append(out, exact(cache.ShiftKey(m.ShiftID), r))
		}
	case TypeShiftDeleted:
		out = append(out, exact(cache.KeyShifts, r), exact(cache.KeyDrivers, r), prefix(cache.KeyMoveRequests, r))
		if m.ShiftID != "" {
			out = append(out, exact(cache.ShiftKey(m.ShiftID), r))
		}
	case TypeMoveRequestUpdate:
		out = append(out, prefix(cache.KeyMoveRequests, r))
		if m.MoveRequestID != "" {
			out = append(out, exact(cache.MoveRequestKey(m.MoveRequestID), r), exact(cache.AuditKey(m.MoveRequestID), r))
		}
	case TypeBinUpdate:
		out = append(out, exact(cache.KeyBins, r))
	case TypeDriverLocation:
		out = append(out, exact(cache.KeyDrivers, r))
	}
	return out
}
