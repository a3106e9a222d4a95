package cache

import (
	"sort"
	"strings"
)

// Query keys for the fleet collections.
const (
	KeyBins         = "bins"
	KeyDrivers      = "drivers"
	KeyShifts       = "shifts"
	KeyMoveRequests = "move-requests"
	keyShift        = "shift"
	keyMoveRequest  = "move-request"
	KeyAudit        = "audit" // prefix of every audit trail key
)

// ShiftKey is the key of a single shift.
func ShiftKey(id string) string { return keyShift + ":" + id }

// MoveRequestKey is the key of a single move request.
func MoveRequestKey(id string) string { return keyMoveRequest + ":" + id }

// AuditKey is the key of a subject's audit trail.
func AuditKey(subjectID string) string { return KeyAudit + ":" + subjectID }

// MoveRequestsKey builds a filtered move-request list key, e.g.
// "move-requests:status=pending". Filters are sorted so equal filters
// produce equal keys.
func MoveRequestsKey(filters map[string]string) string {
	if len(filters) == 0 {
		return KeyMoveRequests
	}
	parts := make([]string, 0, len(filters))
	for k, v := range filters {
		if v == "" {
			continue
		}
		parts = append(parts, k+"="+v)
	}
	if len(parts) == 0 {
		return KeyMoveRequests
	}
	sort.Strings(parts)
	return KeyMoveRequests + ":" + strings.Join(parts, ",")
}

// MatchesPrefix reports whether key equals prefix or is a sub-key of it.
func MatchesPrefix(key, prefix string) bool {
	return key == prefix || strings.HasPrefix(key, prefix+":")
}
