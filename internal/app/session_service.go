package app

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/example/fleetops/internal/apperr"
	"github.com/example/fleetops/internal/models"
	"github.com/example/fleetops/internal/ports/primary"
	"github.com/example/fleetops/internal/ports/secondary"
)

// TokenHolder is the in-memory copy of the bearer token. It is shared by
// the REST client (reader) and the session service (writer).
type TokenHolder struct {
	mu    sync.RWMutex
	token string
}

// Token implements secondary.TokenSource.
func (h *TokenHolder) Token() string {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.token
}

func (h *TokenHolder) set(tok string) {
	h.mu.Lock()
	h.token = tok
	h.mu.Unlock()
}

// SessionServiceImpl implements the SessionService interface.
type SessionServiceImpl struct {
	api          secondary.FleetAPI
	store        secondary.SessionStore
	tokens       *TokenHolder
	dash         *Dashboard
	cookieMaxAge time.Duration
	now          func() time.Time
}

// NewSessionService creates a new SessionService. dash may be nil; when set,
// its cache is dropped on logout.
func NewSessionService(
	api secondary.FleetAPI,
	store secondary.SessionStore,
	tokens *TokenHolder,
	dash *Dashboard,
	cookieMaxAge time.Duration,
) *SessionServiceImpl {
	return &SessionServiceImpl{
		api:          api,
		store:        store,
		tokens:       tokens,
		dash:         dash,
		cookieMaxAge: cookieMaxAge,
		now:          time.Now,
	}
}

// Restore loads the persisted token if its cookie has not expired.
func (s *SessionServiceImpl) Restore(ctx context.Context) error {
	tok, err := s.store.CookieToken(ctx, s.now())
	if err != nil {
		return fmt.Errorf("failed to restore session: %w", err)
	}
	s.tokens.set(tok)
	return nil
}

// Login authenticates and persists the session and its cookie together.
func (s *SessionServiceImpl) Login(ctx context.Context, req primary.LoginRequest) (*primary.SessionInfo, error) {
	email := strings.TrimSpace(req.Email)
	if email == "" || req.Password == "" {
		return nil, apperr.Validation("login", "email and password are required")
	}

	resp, err := s.api.Login(ctx, email, req.Password)
	if err != nil {
		return nil, err
	}

	session := &models.Session{Token: resp.Token, User: resp.User}
	if req.Remember {
		session.RememberedEmail = email
	}
	if err := s.store.Save(ctx, session, s.now().Add(s.cookieMaxAge)); err != nil {
		return nil, fmt.Errorf("failed to save session: %w", err)
	}
	s.tokens.set(resp.Token)
	return toSessionInfo(session), nil
}

// Logout clears the token, user and cookie, and drops cached data.
func (s *SessionServiceImpl) Logout(ctx context.Context) error {
	if err := s.store.Clear(ctx); err != nil {
		return fmt.Errorf("failed to clear session: %w", err)
	}
	s.tokens.set("")
	if s.dash != nil {
		s.dash.Reset()
	}
	return nil
}

// CurrentSession describes the stored session. An expired cookie reads as
// logged out even if the record still holds a token.
func (s *SessionServiceImpl) CurrentSession(ctx context.Context) (*primary.SessionInfo, error) {
	session, err := s.store.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load session: %w", err)
	}
	tok, err := s.store.CookieToken(ctx, s.now())
	if err != nil {
		return nil, fmt.Errorf("failed to load session: %w", err)
	}
	if tok == "" {
		return &primary.SessionInfo{RememberedEmail: session.RememberedEmail}, nil
	}
	return toSessionInfo(session), nil
}

func toSessionInfo(s *models.Session) *primary.SessionInfo {
	info := &primary.SessionInfo{
		Authenticated:   s.Authenticated(),
		RememberedEmail: s.RememberedEmail,
	}
	if u := s.User; u != nil {
		info.UserID = u.ID
		info.Email = u.Email
		info.Name = u.Name
		info.Role = u.Role
	}
	return info
}
