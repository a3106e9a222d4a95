package apperr

import (
	"errors"
	"fmt"
	"testing"
)

func TestErrorIs(t *testing.T) {
	err := New(KindAnchorNotFound, "assign", "bin %s not in stops", "BIN-9")
	wrapped := fmt.Errorf("bulk assign: %w", err)

	if !errors.Is(wrapped, ErrAnchorNotFound) {
		t.Error("errors.Is(wrapped, ErrAnchorNotFound) = false, want true")
	}
	if errors.Is(wrapped, ErrInvalidTransition) {
		t.Error("errors.Is(wrapped, ErrInvalidTransition) = true, want false")
	}
	if got := KindOf(wrapped); got != KindAnchorNotFound {
		t.Errorf("KindOf() = %q, want %q", got, KindAnchorNotFound)
	}
}

func TestErrorMessage(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"op and msg", New(KindValidation, "login", "email required"), "login: email required"},
		{"wrapped cause", Wrap(KindNetwork, "list bins", errors.New("connection refused")), "list bins: connection refused"},
		{"kind only", &Error{Kind: KindAuth}, "auth"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.want {
				t.Errorf("Error() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestWrapNil(t *testing.T) {
	if err := Wrap(KindServer, "op", nil); err != nil {
		t.Errorf("Wrap(nil) = %v, want nil", err)
	}
}

func TestIsPreNetwork(t *testing.T) {
	tests := []struct {
		kind Kind
		want bool
	}{
		{KindValidation, true},
		{KindInvalidTransition, true},
		{KindAnchorNotFound, true},
		{KindMutationInFlight, true},
		{KindNetwork, false},
		{KindServer, false},
		{KindAuth, false},
	}
	for _, tt := range tests {
		t.Run(string(tt.kind), func(t *testing.T) {
			if got := IsPreNetwork(&Error{Kind: tt.kind}); got != tt.want {
				t.Errorf("IsPreNetwork(%s) = %v, want %v", tt.kind, got, tt.want)
			}
		})
	}
}
