// Package moverequest contains the pure business logic for move requests.
// This is part of the Functional Core - no I/O, only pure functions.
package moverequest

import (
	"time"

	"github.com/example/fleetops/internal/apperr"
)

// Status represents the persisted states of a move request.
// Overdue is not a status; see Urgency.
type Status string

const (
	StatusPending    Status = "pending"
	StatusAssigned   Status = "assigned"
	StatusInProgress Status = "in_progress"
	StatusCompleted  Status = "completed"
	StatusCancelled  Status = "cancelled"
)

// Event is a lifecycle event applied to a move request.
type Event string

const (
	EventAssignToShift    Event = "assign_to_shift"
	EventAssignManual     Event = "assign_manual"
	EventClearAssignment  Event = "clear_assignment"
	EventDriverStartsTask Event = "driver_starts_task"
	EventDriverCompletes  Event = "driver_completes"
	EventManagerCancels   Event = "manager_cancels"
)

var transitions = map[Status]map[Event]Status{
	StatusPending: {
		EventAssignToShift:  StatusAssigned,
		EventAssignManual:   StatusAssigned,
		EventManagerCancels: StatusCancelled,
	},
	StatusAssigned: {
		EventClearAssignment:  StatusPending,
		EventDriverStartsTask: StatusInProgress,
		EventManagerCancels:   StatusCancelled,
	},
	StatusInProgress: {
		EventDriverCompletes: StatusCompleted,
		EventManagerCancels:  StatusCancelled,
	},
}

// InitialStatus returns the status of a newly created move request.
func InitialStatus() Status {
	return StatusPending
}

// IsTerminal reports whether no further transitions are possible.
func (s Status) IsTerminal() bool {
	return s == StatusCompleted || s == StatusCancelled
}

// ParseStatus validates a status string from the wire.
// "overdue" is rejected: it is an urgency label, never a stored status.
func ParseStatus(s string) (Status, error) {
	switch st := Status(s); st {
	case StatusPending, StatusAssigned, StatusInProgress, StatusCompleted, StatusCancelled:
		return st, nil
	}
	return "", apperr.Validation("parse status", "unknown move request status %q", s)
}

// Next returns the status reached by applying ev to from.
// Attempts from a terminal state, or events with no table entry, fail with
// an InvalidTransition error rather than being ignored.
func Next(from Status, ev Event) (Status, error) {
	if from.IsTerminal() {
		return "", apperr.New(apperr.KindInvalidTransition, string(ev),
			"move request is %s; no further transitions allowed", from)
	}
	to, ok := transitions[from][ev]
	if !ok {
		return "", apperr.New(apperr.KindInvalidTransition, string(ev),
			"cannot %s a move request in status %s", ev, from)
	}
	return to, nil
}

// TransitionResult captures the new status and the timestamp side effect.
type TransitionResult struct {
	NewStatus Status
	UpdatedAt int64
}

// ApplyTransition applies ev at time now.
// The caller should pass the current time to enable testing.
func ApplyTransition(from Status, ev Event, now time.Time) (TransitionResult, error) {
	to, err := Next(from, ev)
	if err != nil {
		return TransitionResult{}, err
	}
	return TransitionResult{NewStatus: to, UpdatedAt: now.Unix()}, nil
}

// EventForTarget maps a requested target status to the event that reaches it.
// Used for status updates arriving as a plain target status.
func EventForTarget(to Status) (Event, bool) {
	switch to {
	case StatusInProgress:
		return EventDriverStartsTask, true
	case StatusCompleted:
		return EventDriverCompletes, true
	case StatusCancelled:
		return EventManagerCancels, true
	case StatusPending:
		return EventClearAssignment, true
	}
	return "", false
}
