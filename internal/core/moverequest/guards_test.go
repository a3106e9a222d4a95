package moverequest

import (
	"errors"
	"testing"

	"github.com/example/fleetops/internal/apperr"
)

func TestCanAssign(t *testing.T) {
	tests := []struct {
		name        string
		ctx         AssignContext
		wantAllowed bool
		wantKind    apperr.Kind
	}{
		{
			name:        "pending to shift",
			ctx:         AssignContext{MoveRequestID: "MR-1", Status: StatusPending, ToShift: true, ShiftID: "SH-1"},
			wantAllowed: true,
		},
		{
			name:        "pending manual",
			ctx:         AssignContext{MoveRequestID: "MR-1", Status: StatusPending, UserID: "U-1"},
			wantAllowed: true,
		},
		{
			name:     "missing shift",
			ctx:      AssignContext{MoveRequestID: "MR-1", Status: StatusPending, ToShift: true},
			wantKind: apperr.KindValidation,
		},
		{
			name:     "missing user",
			ctx:      AssignContext{MoveRequestID: "MR-1", Status: StatusPending},
			wantKind: apperr.KindValidation,
		},
		{
			name:     "completed request",
			ctx:      AssignContext{MoveRequestID: "MR-1", Status: StatusCompleted, ToShift: true, ShiftID: "SH-1"},
			wantKind: apperr.KindInvalidTransition,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := CanAssign(tt.ctx)
			if result.Allowed != tt.wantAllowed {
				t.Fatalf("CanAssign().Allowed = %v, want %v (reason: %s)", result.Allowed, tt.wantAllowed, result.Reason)
			}
			if tt.wantAllowed {
				if err := result.Error(); err != nil {
					t.Errorf("Error() = %v, want nil", err)
				}
				return
			}
			if got := apperr.KindOf(result.Error()); got != tt.wantKind {
				t.Errorf("error kind = %q, want %q", got, tt.wantKind)
			}
		})
	}
}

func TestCanCancel(t *testing.T) {
	if r := CanCancel(CancelContext{MoveRequestID: "MR-1", Status: StatusInProgress}); !r.Allowed {
		t.Errorf("CanCancel(in_progress) not allowed: %s", r.Reason)
	}
	r := CanCancel(CancelContext{MoveRequestID: "MR-1", Status: StatusCancelled})
	if r.Allowed {
		t.Fatal("CanCancel(cancelled) allowed, want denied")
	}
	if !errors.Is(r.Error(), apperr.ErrInvalidTransition) {
		t.Errorf("CanCancel(cancelled).Error() = %v, want InvalidTransition", r.Error())
	}
}
