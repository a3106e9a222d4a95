// Package sqlite contains SQLite implementations of the storage ports.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/example/fleetops/internal/models"
	"github.com/example/fleetops/internal/ports/secondary"
)

// SessionStore implements secondary.SessionStore with SQLite.
// The session record lives in local_storage under models.SessionStorageKey
// and its token is mirrored into the cookies table.
type SessionStore struct {
	db *sql.DB
}

// NewSessionStore creates a new SQLite session store.
func NewSessionStore(db *sql.DB) *SessionStore {
	return &SessionStore{db: db}
}

var _ secondary.SessionStore = (*SessionStore)(nil)

// Load returns the stored session, or an empty one if nothing is stored.
func (s *SessionStore) Load(ctx context.Context) (*models.Session, error) {
	return loadSession(ctx, s.db)
}

// Save writes the session and its cookie in one transaction.
// A session without a token removes the cookie.
func (s *SessionStore) Save(ctx context.Context, session *models.Session, expiresAt time.Time) error {
	if session == nil {
		return errors.New("session is nil")
	}
	return s.withTx(ctx, func(tx *sql.Tx) error {
		if err := putSession(ctx, tx, session); err != nil {
			return err
		}
		if session.Token == "" {
			return deleteCookie(ctx, tx)
		}
		_, err := tx.ExecContext(ctx,
			`INSERT INTO cookies (name, value, expires_at) VALUES (?, ?, ?)
			 ON CONFLICT(name) DO UPDATE SET value = excluded.value, expires_at = excluded.expires_at`,
			models.AuthCookieName, session.Token, expiresAt.UTC(),
		)
		if err != nil {
			return fmt.Errorf("failed to write auth cookie: %w", err)
		}
		return nil
	})
}

// Clear removes the token, user and cookie together. The remembered email survives.
func (s *SessionStore) Clear(ctx context.Context) error {
	return s.withTx(ctx, func(tx *sql.Tx) error {
		current, err := loadSession(ctx, tx)
		if err != nil {
			return err
		}
		if current.RememberedEmail == "" {
			if _, err := tx.ExecContext(ctx, "DELETE FROM local_storage WHERE key = ?", models.SessionStorageKey); err != nil {
				return fmt.Errorf("failed to delete session: %w", err)
			}
		} else if err := putSession(ctx, tx, &models.Session{RememberedEmail: current.RememberedEmail}); err != nil {
			return err
		}
		return deleteCookie(ctx, tx)
	})
}

// CookieToken returns the cookie's token if it has not expired at now.
func (s *SessionStore) CookieToken(ctx context.Context, now time.Time) (string, error) {
	var (
		value     string
		expiresAt time.Time
	)
	err := s.db.QueryRowContext(ctx,
		"SELECT value, expires_at FROM cookies WHERE name = ?", models.AuthCookieName,
	).Scan(&value, &expiresAt)
	if err == sql.ErrNoRows {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to read auth cookie: %w", err)
	}
	if !now.Before(expiresAt) {
		return "", nil
	}
	return value, nil
}

type queryer interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func loadSession(ctx context.Context, q queryer) (*models.Session, error) {
	var raw string
	err := q.QueryRowContext(ctx,
		"SELECT value FROM local_storage WHERE key = ?", models.SessionStorageKey,
	).Scan(&raw)
	if err == sql.ErrNoRows {
		return &models.Session{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read session: %w", err)
	}
	var session models.Session
	if err := json.Unmarshal([]byte(raw), &session); err != nil {
		// A corrupt record reads as logged out rather than blocking startup.
		return &models.Session{}, nil
	}
	return &session, nil
}

func putSession(ctx context.Context, tx *sql.Tx, session *models.Session) error {
	raw, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("failed to encode session: %w", err)
	}
	_, err = tx.ExecContext(ctx,
		`INSERT INTO local_storage (key, value, updated_at) VALUES (?, ?, CURRENT_TIMESTAMP)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = CURRENT_TIMESTAMP`,
		models.SessionStorageKey, string(raw),
	)
	if err != nil {
		return fmt.Errorf("failed to write session: %w", err)
	}
	return nil
}

func deleteCookie(ctx context.Context, tx *sql.Tx) error {
	if _, err := tx.ExecContext(ctx, "DELETE FROM cookies WHERE name = ?", models.AuthCookieName); err != nil {
		return fmt.Errorf("failed to delete auth cookie: %w", err)
	}
	return nil
}

func (s *SessionStore) withTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	if err := fn(tx); err != nil {
		tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit: %w", err)
	}
	return nil
}
