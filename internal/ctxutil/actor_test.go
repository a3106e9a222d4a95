package ctxutil

import (
	"context"
	"testing"
)

func TestActorRoundTrip(t *testing.T) {
	ctx := WithActorID(context.Background(), "USR-7")
	if got := ActorFromContext(ctx); got != "USR-7" {
		t.Errorf("ActorFromContext() = %q, want %q", got, "USR-7")
	}
	if got := ActorFromContext(context.Background()); got != "" {
		t.Errorf("ActorFromContext(empty) = %q, want empty", got)
	}
}

func TestWithRequestIDGeneratesWhenEmpty(t *testing.T) {
	ctx := WithRequestID(context.Background(), "")
	if RequestIDFromContext(ctx) == "" {
		t.Error("expected generated request ID")
	}
	ctx = WithRequestID(context.Background(), "req-1")
	if got := RequestIDFromContext(ctx); got != "req-1" {
		t.Errorf("RequestIDFromContext() = %q, want %q", got, "req-1")
	}
}
