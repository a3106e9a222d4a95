package moverequest

import (
	"fmt"

	"github.com/example/fleetops/internal/apperr"
)

// GuardResult represents the outcome of a guard evaluation.
type GuardResult struct {
	Allowed bool
	Reason  string
	Kind    apperr.Kind
}

// Error converts the guard result to an error if not allowed.
func (r GuardResult) Error() error {
	if r.Allowed {
		return nil
	}
	kind := r.Kind
	if kind == "" {
		kind = apperr.KindValidation
	}
	return &apperr.Error{Kind: kind, Msg: r.Reason}
}

// AssignContext provides context for assignment guards.
type AssignContext struct {
	MoveRequestID string
	Status        Status
	ToShift       bool
	ShiftID       string
	UserID        string
}

// CanAssign evaluates whether a move request can be assigned.
// Rules:
// - Shift assignments need a shift ID, manual assignments a user ID
// - Status must allow the assign event
func CanAssign(ctx AssignContext) GuardResult {
	if ctx.MoveRequestID == "" {
		return GuardResult{Reason: "move request ID is required"}
	}
	if ctx.ToShift && ctx.ShiftID == "" {
		return GuardResult{Reason: fmt.Sprintf("shift ID is required to assign %s to a shift", ctx.MoveRequestID)}
	}
	if !ctx.ToShift && ctx.UserID == "" {
		return GuardResult{Reason: fmt.Sprintf("user ID is required to assign %s manually", ctx.MoveRequestID)}
	}
	ev := EventAssignManual
	if ctx.ToShift {
		ev = EventAssignToShift
	}
	if _, err := Next(ctx.Status, ev); err != nil {
		return GuardResult{Reason: err.Error(), Kind: apperr.KindInvalidTransition}
	}
	return GuardResult{Allowed: true}
}

// CancelContext provides context for cancellation guards.
type CancelContext struct {
	MoveRequestID string
	Status        Status
}

// CanCancel evaluates whether a manager may cancel the move request.
func CanCancel(ctx CancelContext) GuardResult {
	if ctx.MoveRequestID == "" {
		return GuardResult{Reason: "move request ID is required"}
	}
	if _, err := Next(ctx.Status, EventManagerCancels); err != nil {
		return GuardResult{Reason: err.Error(), Kind: apperr.KindInvalidTransition}
	}
	return GuardResult{Allowed: true}
}
