package primary

import (
	"context"
	"time"
)

// MoveRequestService defines the primary port for move-request operations.
type MoveRequestService interface {
	// ListMoveRequests lists move requests, annotated with urgency at read time.
	ListMoveRequests(ctx context.Context, filters MoveRequestFilters) ([]*MoveRequest, error)

	// GetMoveRequest retrieves a move request by ID.
	GetMoveRequest(ctx context.Context, id string) (*MoveRequest, error)

	// AssignMoveRequest assigns a pending request to a shift or a user.
	AssignMoveRequest(ctx context.Context, req AssignMoveRequestRequest) error

	// BulkAssign assigns several requests one call at a time. Not atomic.
	BulkAssign(ctx context.Context, req BulkAssignRequest) (*BulkResult, error)

	// ClearAssignment returns an assigned request to pending.
	ClearAssignment(ctx context.Context, id string) error

	// StartMoveRequest marks an assigned request in progress.
	StartMoveRequest(ctx context.Context, id string) error

	// CompleteMoveRequest marks an in-progress request completed.
	CompleteMoveRequest(ctx context.Context, id string) error

	// CancelMoveRequest cancels a non-terminal request.
	CancelMoveRequest(ctx context.Context, id, reason string) error

	// BulkCancel cancels several requests one call at a time. Not atomic.
	BulkCancel(ctx context.Context, ids []string, reason string) (*BulkResult, error)
}

// ShiftService defines the primary port for shift reads.
type ShiftService interface {
	ListShifts(ctx context.Context) ([]*Shift, error)
	GetShift(ctx context.Context, id string) (*Shift, error)
}

// FleetService defines the primary port for bins and drivers.
type FleetService interface {
	ListBins(ctx context.Context) ([]*Bin, error)
	ListDrivers(ctx context.Context) ([]*Driver, error)
}

// AuditService defines the primary port for audit trail reads.
type AuditService interface {
	GetAuditTrail(ctx context.Context, subjectID string) ([]*AuditEntry, error)
}

// SessionService defines the primary port for the login lifecycle.
type SessionService interface {
	Login(ctx context.Context, req LoginRequest) (*SessionInfo, error)
	Logout(ctx context.Context) error
	CurrentSession(ctx context.Context) (*SessionInfo, error)
}

// MoveRequestFilters contains filter options for listing move requests.
type MoveRequestFilters struct {
	Status  string
	ShiftID string
	BinID   string
}

// AssignMoveRequestRequest contains parameters for a single assignment.
// Set ShiftID for a shift assignment or UserID for a manual one.
type AssignMoveRequestRequest struct {
	MoveRequestID    string
	ShiftID          string
	UserID           string
	InsertAfterBinID string
	InsertPosition   string
}

// BulkAssignRequest contains parameters for a bulk assignment.
// MoveOrder, if set, is a permutation of MoveRequestIDs.
type BulkAssignRequest struct {
	MoveRequestIDs   []string
	MoveOrder        []string
	ShiftID          string
	UserID           string
	InsertAfterBinID string
	InsertPosition   string
}

// BulkResult reports how far a sequential bulk operation got.
// A failure leaves Succeeded applied; nothing is rolled back.
type BulkResult struct {
	Succeeded []string
	FailedID  string
	Remaining []string
	Err       error
}

// Partial reports whether the bulk operation stopped partway.
func (r *BulkResult) Partial() bool {
	return r != nil && r.FailedID != ""
}

// MoveRequest is a move request as shown on the dashboard.
type MoveRequest struct {
	ID             string
	BinID          string
	Status         string
	Urgency        string
	ScheduledDate  time.Time
	MoveType       string
	AssignmentType string
	ShiftID        string
	UserID         string
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// Shift is a shift with its ordered stops.
type Shift struct {
	ID       string
	DriverID string
	Status   string
	Stops    []Stop
}

// Stop is one bin visit in a shift.
type Stop struct {
	BinID         string
	MoveRequestID string
}

// Bin is a bin as shown on the dashboard.
type Bin struct {
	ID             string
	Number         int
	Address        string
	FillPercentage int
	Status         string
}

// Driver is a driver as shown on the dashboard.
type Driver struct {
	ID      string
	Name    string
	Status  string
	ShiftID string
}

// AuditEntry is one validated audit event.
type AuditEntry struct {
	ID         string
	ActionType string
	ActorID    string
	CreatedAt  time.Time
	Changes    []Change
}

// Change is one field-level change in an audit entry.
type Change struct {
	Field  string
	Kind   string
	Before string
	After  string
}

// LoginRequest contains login credentials.
type LoginRequest struct {
	Email    string
	Password string
	Remember bool
}

// SessionInfo describes the current session.
type SessionInfo struct {
	Authenticated   bool
	UserID          string
	Email           string
	Name            string
	Role            string
	RememberedEmail string
}
