// Package shift contains the pure business logic for ordering stops within a shift.
// This is part of the Functional Core - no I/O, only pure functions.
package shift

import (
	"github.com/example/fleetops/internal/apperr"
	"github.com/example/fleetops/internal/models"
)

// Position is an absolute insertion point for scheduled shifts.
type Position string

const (
	PositionStart Position = "start"
	PositionEnd   Position = "end"
)

// Placement selects where a new stop goes. At most one of InsertAfterBinID
// and Position may be set; a zero Placement defers to the backend's default rule.
//
// AfterMoveRequestID pins the anchor to one stop when InsertAfterBinID is
// chained from a previous insertion. The backend resolves anchors by bin, so
// that stop must also be the first one visiting the bin.
type Placement struct {
	InsertAfterBinID   string
	Position           Position
	AfterMoveRequestID string
}

// IsDefault reports whether placement is left to the backend.
func (p Placement) IsDefault() bool {
	return p.InsertAfterBinID == "" && p.Position == ""
}

// IsActive reports whether a shift status counts as active for placement rules.
func IsActive(status string) bool {
	return status == models.ShiftStatusActive || status == models.ShiftStatusPaused
}

// IsFuture reports whether a shift has not started yet.
func IsFuture(status string) bool {
	return status == models.ShiftStatusScheduled || status == models.ShiftStatusReady
}

// ValidatePlacement checks a placement against the shift's status.
// Rules:
// - insertAfterBinId and insertPosition are mutually exclusive
// - insertAfterBinId is only valid for an active shift
// - insertPosition must be start|end and is only valid for a scheduled/future shift
// - ended or cancelled shifts accept no new stops
func ValidatePlacement(shiftStatus string, p Placement) error {
	const op = "validate placement"
	if shiftStatus == models.ShiftStatusEnded || shiftStatus == models.ShiftStatusCancelled {
		return apperr.Validation(op, "shift is %s and cannot accept new stops", shiftStatus)
	}
	if p.InsertAfterBinID != "" && p.Position != "" {
		return apperr.Validation(op, "insert_after_bin_id and insert_position are mutually exclusive")
	}
	if p.InsertAfterBinID != "" && !IsActive(shiftStatus) {
		return apperr.Validation(op, "insert_after_bin_id requires an active shift (status: %s)", shiftStatus)
	}
	if p.Position != "" {
		if p.Position != PositionStart && p.Position != PositionEnd {
			return apperr.Validation(op, "insert_position must be start or end, got %q", p.Position)
		}
		if !IsFuture(shiftStatus) {
			return apperr.Validation(op, "insert_position requires a scheduled shift (status: %s)", shiftStatus)
		}
	}
	return nil
}

// IndexOfBin returns the index of the first stop visiting binID, or -1.
func IndexOfBin(stops []models.StopRef, binID string) int {
	for i, s := range stops {
		if s.BinID == binID {
			return i
		}
	}
	return -1
}

func indexOfMoveRequest(stops []models.StopRef, moveRequestID string) int {
	for i, s := range stops {
		if s.MoveRequestID == moveRequestID {
			return i
		}
	}
	return -1
}

// Contains reports whether a stop with the same key is already present.
func Contains(stops []models.StopRef, stop models.StopRef) bool {
	key := stop.Key()
	for _, s := range stops {
		if s.Key() == key {
			return true
		}
	}
	return false
}

// InsertStop returns a new stop sequence with stop placed per p.
// The input slice is never modified. Relative order of existing stops is
// preserved. A default placement appends locally; the backend's placement
// replaces it once the shift is refetched.
func InsertStop(stops []models.StopRef, stop models.StopRef, p Placement) ([]models.StopRef, error) {
	const op = "insert stop"
	if stop.BinID == "" {
		return nil, apperr.Validation(op, "stop bin ID is required")
	}
	if Contains(stops, stop) {
		return nil, apperr.Validation(op, "stop %s already in shift", stop.Key())
	}

	at := len(stops)
	switch {
	case p.InsertAfterBinID != "":
		idx := IndexOfBin(stops, p.InsertAfterBinID)
		if idx < 0 {
			return nil, apperr.New(apperr.KindAnchorNotFound, op, "bin %s is not a stop in this shift", p.InsertAfterBinID)
		}
		if p.AfterMoveRequestID != "" {
			pinned := indexOfMoveRequest(stops, p.AfterMoveRequestID)
			if pinned < 0 {
				return nil, apperr.New(apperr.KindAnchorNotFound, op, "move request %s is not a stop in this shift", p.AfterMoveRequestID)
			}
			if pinned != idx {
				return nil, apperr.Validation(op, "bin %s is visited earlier in this shift; cannot anchor after %s", p.InsertAfterBinID, p.AfterMoveRequestID)
			}
		}
		at = idx + 1
	case p.Position == PositionStart:
		at = 0
	}

	out := make([]models.StopRef, 0, len(stops)+1)
	out = append(out, stops[:at]...)
	out = append(out, stop)
	out = append(out, stops[at:]...)
	return out, nil
}

// RemoveStop returns a new stop sequence without the stop for moveRequestID.
func RemoveStop(stops []models.StopRef, moveRequestID string) []models.StopRef {
	out := make([]models.StopRef, 0, len(stops))
	for _, s := range stops {
		if s.MoveRequestID == moveRequestID {
			continue
		}
		out = append(out, s)
	}
	return out
}
