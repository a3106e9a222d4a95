package secondary

import (
	"context"
	"time"

	"github.com/example/fleetops/internal/models"
)

// FleetAPI defines the secondary port for the REST backend.
// Implementations map transport failures, 401/403 and other non-2xx
// responses onto the apperr taxonomy.
type FleetAPI interface {
	// Login exchanges credentials for a bearer token.
	Login(ctx context.Context, email, password string) (*models.LoginResponse, error)

	// ListBins retrieves all bins.
	ListBins(ctx context.Context) (models.BinList, error)

	// ListDrivers retrieves all drivers.
	ListDrivers(ctx context.Context) (models.DriverList, error)

	// ListShifts retrieves all shifts with their stops.
	ListShifts(ctx context.Context) (models.ShiftList, error)

	// GetShift retrieves a shift by ID.
	GetShift(ctx context.Context, id string) (*models.Shift, error)

	// ListMoveRequests retrieves move requests matching the filter.
	ListMoveRequests(ctx context.Context, filter models.MoveRequestFilter) (models.MoveRequestList, error)

	// GetMoveRequest retrieves a move request by ID.
	GetMoveRequest(ctx context.Context, id string) (*models.MoveRequest, error)

	// AssignMoveRequest assigns a move request to a shift or user.
	AssignMoveRequest(ctx context.Context, req models.AssignRequest) (*models.MoveRequest, error)

	// ClearAssignment returns an assigned move request to pending.
	ClearAssignment(ctx context.Context, id string) (*models.MoveRequest, error)

	// UpdateMoveRequestStatus moves a request to in_progress or completed.
	UpdateMoveRequestStatus(ctx context.Context, id, status string) (*models.MoveRequest, error)

	// CancelMoveRequest cancels a move request.
	CancelMoveRequest(ctx context.Context, id, reason string) (*models.MoveRequest, error)

	// ListAuditEvents retrieves the audit trail for a subject, oldest first.
	ListAuditEvents(ctx context.Context, subjectID string) (models.AuditEventList, error)
}

// SessionStore defines the secondary port for durable session storage.
// The stored session and its cookie mirror are written and cleared together.
type SessionStore interface {
	// Load returns the stored session, or an empty session if none.
	Load(ctx context.Context) (*models.Session, error)

	// Save stores the session and mirrors its token into the cookie until expiresAt.
	Save(ctx context.Context, session *models.Session, expiresAt time.Time) error

	// Clear removes the token, user and cookie. The remembered email is kept.
	Clear(ctx context.Context) error

	// CookieToken returns the mirrored token if the cookie has not expired at now.
	CookieToken(ctx context.Context, now time.Time) (string, error)
}

// TokenSource supplies the current bearer token, "" when logged out.
type TokenSource interface {
	Token() string
}
