package ports

import (
	"context"

	"github.com/espalier-dev/espalier/pkg/domain"
)

// SessionStore defines the interface for persisting session snapshots.
// The engine itself never touches it; pkg/session.Manager loads a snapshot
// before a turn and saves the decided-upon snapshot after.
type SessionStore interface {
	// Save persists the session snapshot under its ID.
	Save(ctx context.Context, session *domain.Session) error

	// Load retrieves the snapshot for a given session ID.
	// Returns domain.ErrSessionNotFound if the session does not exist.
	Load(ctx context.Context, sessionID string) (*domain.Session, error)

	// Delete removes the session.
	Delete(ctx context.Context, sessionID string) error

	// List returns the IDs of all stored sessions.
	List(ctx context.Context) ([]string, error)
}
