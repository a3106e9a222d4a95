// Package apperr defines the error taxonomy shared by the sync layer.
// This package has no internal dependencies so core packages can import it.
package apperr

import (
	"errors"
	"fmt"
)

// Kind classifies an error by how the sync layer must react to it.
type Kind string

const (
	KindNetwork           Kind = "network"            // transport failure
	KindAuth              Kind = "auth"               // 401 / 403
	KindValidation        Kind = "validation"         // malformed input caught before network
	KindServer            Kind = "server"             // non-2xx with body
	KindInvalidTransition Kind = "invalid_transition" // illegal move-request lifecycle move
	KindAnchorNotFound    Kind = "anchor_not_found"   // insertAfterBinId not present in stops
	KindStaleResult       Kind = "stale_result"       // superseded fetch, never surfaced
	KindMutationInFlight  Kind = "mutation_in_flight" // key already held by another mutation
)

// Error is the concrete error type for every Kind.
type Error struct {
	Kind   Kind
	Op     string // operation that failed, e.g. "assign move request"
	Status int    // HTTP status for auth/server errors, 0 otherwise
	Msg    string
	Err    error
}

// Sentinels for errors.Is matching by kind.
var (
	ErrNetwork           = &Error{Kind: KindNetwork}
	ErrAuth              = &Error{Kind: KindAuth}
	ErrValidation        = &Error{Kind: KindValidation}
	ErrServer            = &Error{Kind: KindServer}
	ErrInvalidTransition = &Error{Kind: KindInvalidTransition}
	ErrAnchorNotFound    = &Error{Kind: KindAnchorNotFound}
	ErrStaleResult       = &Error{Kind: KindStaleResult}
	ErrMutationInFlight  = &Error{Kind: KindMutationInFlight}
)

func (e *Error) Error() string {
	msg := e.Msg
	if msg == "" && e.Err != nil {
		msg = e.Err.Error()
	} else if e.Err != nil {
		msg = msg + ": " + e.Err.Error()
	}
	if msg == "" {
		msg = string(e.Kind)
	}
	if e.Op != "" {
		return e.Op + ": " + msg
	}
	return msg
}

func (e *Error) Unwrap() error { return e.Err }

// Is reports whether target is a bare sentinel of the same kind.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	if t.Msg != "" || t.Err != nil || t.Op != "" {
		return e == t
	}
	return t.Kind == e.Kind
}

// New creates an error of the given kind.
func New(kind Kind, op, format string, args ...any) *Error {
	return &Error{Kind: kind, Op: op, Msg: fmt.Sprintf(format, args...)}
}

// Wrap wraps err with a kind. Returns nil if err is nil.
func Wrap(kind Kind, op string, err error) error {
	if err == nil {
		return nil
	}
	return &Error{Kind: kind, Op: op, Err: err}
}

// Validation is shorthand for a KindValidation error.
func Validation(op, format string, args ...any) *Error {
	return New(KindValidation, op, format, args...)
}

// KindOf returns the Kind of the first *Error in err's chain, or "" if none.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}

// IsKind reports whether err carries the given kind.
func IsKind(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}

// IsPreNetwork reports whether err is rejected before any network call or
// cache mutation is attempted.
func IsPreNetwork(err error) bool {
	switch KindOf(err) {
	case KindValidation, KindInvalidTransition, KindAnchorNotFound, KindMutationInFlight:
		return true
	}
	return false
}
