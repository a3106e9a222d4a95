package shift

import (
	"github.com/example/fleetops/internal/apperr"
	"github.com/example/fleetops/internal/models"
)

// BulkOrder returns the order in which bulk calls are issued.
// moveOrder, when given, must be a permutation of ids; otherwise input order is used.
func BulkOrder(ids, moveOrder []string) ([]string, error) {
	const op = "bulk order"
	if len(ids) == 0 {
		return nil, apperr.Validation(op, "at least one move request ID is required")
	}
	seen := make(map[string]bool, len(ids))
	for _, id := range ids {
		if id == "" {
			return nil, apperr.Validation(op, "empty move request ID")
		}
		if seen[id] {
			return nil, apperr.Validation(op, "duplicate move request ID %s", id)
		}
		seen[id] = true
	}
	if len(moveOrder) == 0 {
		return append([]string(nil), ids...), nil
	}
	if len(moveOrder) != len(ids) {
		return nil, apperr.Validation(op, "move order has %d entries, expected %d", len(moveOrder), len(ids))
	}
	used := make(map[string]bool, len(moveOrder))
	for _, id := range moveOrder {
		if !seen[id] {
			return nil, apperr.Validation(op, "move order contains unknown ID %s", id)
		}
		if used[id] {
			return nil, apperr.Validation(op, "move order repeats ID %s", id)
		}
		used[id] = true
	}
	return append([]string(nil), moveOrder...), nil
}

// NextPlacement returns the placement for the call following a successful
// insertion of inserted. Anchored placements chain after the stop just
// inserted so the batch keeps its order. Absolute positions repeat as given,
// so a batch placed at the start ends up in reverse call order.
func NextPlacement(p Placement, inserted models.StopRef) Placement {
	if p.InsertAfterBinID != "" {
		return Placement{InsertAfterBinID: inserted.BinID, AfterMoveRequestID: inserted.MoveRequestID}
	}
	return p
}
