package memory

import (
	"context"
	"sync"
	"time"

	"github.com/fastygo/taskboard/domain"
	"github.com/fastygo/taskboard/repository"
)

type sessionRepository struct {
	mu       sync.Mutex
	ttl      time.Duration
	now      func() time.Time
	sessions map[string]domain.Session
}

func NewSessionRepository(ttl time.Duration) repository.SessionRepository {
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &sessionRepository{ttl: ttl, now: time.Now, sessions: make(map[string]domain.Session)}
}

func (r *sessionRepository) Open(_ context.Context, session *domain.Session) error {
	if session == nil || session.ID == "" || session.Email == "" {
		return domain.ErrInvalidPayload
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if session.CreatedAt.IsZero() {
		session.CreatedAt = r.now()
	}
	if !session.ExpiresAt.After(session.CreatedAt) {
		session.ExpiresAt = session.CreatedAt.Add(r.ttl)
	}
	r.sessions[session.ID] = *session
	return nil
}

func (r *sessionRepository) Lookup(_ context.Context, id string) (*domain.Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	session, ok := r.live(id)
	if !ok {
		return nil, domain.ErrSessionNotFound
	}
	return &session, nil
}

func (r *sessionRepository) Renew(_ context.Context, id string, expiresAt time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	session, ok := r.live(id)
	if !ok {
		return domain.ErrSessionNotFound
	}
	session.ExpiresAt = expiresAt
	r.sessions[id] = session
	return nil
}

func (r *sessionRepository) Revoke(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.sessions, id)
	return nil
}

// live drops the session when it has expired. Callers hold mu.
func (r *sessionRepository) live(id string) (domain.Session, bool) {
	session, ok := r.sessions[id]
	if !ok {
		return domain.Session{}, false
	}
	if session.IsExpired(r.now()) {
		delete(r.sessions, id)
		return domain.Session{}, false
	}
	return session, true
}
