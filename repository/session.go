package repository

import (
	"context"
	"time"

	"github.com/fastygo/taskboard/domain"
)

// SessionRepository keeps signed-in identities by session id until their expiry.
// Lookup and Renew report domain.ErrSessionNotFound for unknown or expired ids.
type SessionRepository interface {
	// Open stores a new session. A zero ExpiresAt is filled in from the repository's TTL.
	Open(ctx context.Context, session *domain.Session) error
	Lookup(ctx context.Context, id string) (*domain.Session, error)
	// Renew moves the expiry of a live session to expiresAt.
	Renew(ctx context.Context, id string, expiresAt time.Time) error
	// Revoke forgets the session. Revoking an unknown id is not an error.
	Revoke(ctx context.Context, id string) error
}
