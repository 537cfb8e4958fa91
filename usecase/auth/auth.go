package auth

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/fastygo/taskboard/domain"
	"github.com/fastygo/taskboard/pkg/idtoken"
	"github.com/fastygo/taskboard/pkg/logger"
	"github.com/fastygo/taskboard/repository"
)

// UseCase exchanges identity tokens for sessions and resolves callers from either.
type UseCase struct {
	verifier idtoken.Verifier
	sessions repository.SessionRepository
	ttl      time.Duration
	logger   *zap.Logger
	now      func() time.Time
}

func New(verifier idtoken.Verifier, sessions repository.SessionRepository, ttl time.Duration, log *zap.Logger) *UseCase {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &UseCase{
		verifier: verifier,
		sessions: sessions,
		ttl:      ttl,
		logger:   log,
		now:      time.Now,
	}
}

// SignIn verifies the identity token and opens a session for the identity it carries.
func (uc *UseCase) SignIn(ctx context.Context, token string) (*domain.Session, error) {
	identity, err := uc.verifier.Verify(token)
	if err != nil {
		logger.WithRequestID(ctx, uc.logger).Warn("identity token rejected", zap.Error(err))
		return nil, err
	}

	now := uc.now()
	session := &domain.Session{
		ID:          uuid.NewString(),
		Email:       identity.Email,
		DisplayName: identity.DisplayName,
		CreatedAt:   now,
		ExpiresAt:   now.Add(uc.ttl),
	}
	if err := uc.sessions.Open(ctx, session); err != nil {
		return nil, err
	}
	logger.WithRequestID(ctx, uc.logger).Info("session opened", zap.String("email", session.Email))
	return session, nil
}

// Resolve returns the live session with id and slides its expiry forward.
func (uc *UseCase) Resolve(ctx context.Context, sessionID string) (*domain.Session, error) {
	if strings.TrimSpace(sessionID) == "" {
		return nil, domain.ErrUnauthorized
	}
	session, err := uc.sessions.Lookup(ctx, sessionID)
	if err != nil {
		if domain.IsDomainError(err, domain.ErrCodeNotFound) {
			return nil, domain.WrapError(domain.ErrCodeUnauthorized, "session expired or unknown", err)
		}
		return nil, err
	}
	now := uc.now()
	if session.IsExpired(now) {
		_ = uc.sessions.Revoke(ctx, sessionID)
		return nil, domain.WrapError(domain.ErrCodeUnauthorized, "session expired or unknown", domain.ErrSessionNotFound)
	}
	expiresAt := now.Add(uc.ttl)
	if err := uc.sessions.Renew(ctx, sessionID, expiresAt); err != nil {
		if domain.IsDomainError(err, domain.ErrCodeNotFound) {
			return nil, domain.WrapError(domain.ErrCodeUnauthorized, "session expired or unknown", err)
		}
		return nil, err
	}
	session.ExpiresAt = expiresAt
	return session, nil
}

// Authenticate resolves the caller from a session id, falling back to a bearer identity token.
func (uc *UseCase) Authenticate(ctx context.Context, sessionID, bearer string) (domain.Identity, error) {
	if sessionID != "" {
		session, err := uc.Resolve(ctx, sessionID)
		if err != nil {
			return domain.Identity{}, err
		}
		return session.Identity(), nil
	}
	if bearer != "" {
		identity, err := uc.verifier.Verify(bearer)
		if err != nil {
			return domain.Identity{}, err
		}
		return *identity, nil
	}
	return domain.Identity{}, domain.ErrUnauthorized
}

// SignOut closes the session. Closing an unknown session is not an error.
func (uc *UseCase) SignOut(ctx context.Context, sessionID string) error {
	if sessionID == "" {
		return domain.ErrUnauthorized
	}
	return uc.sessions.Revoke(ctx, sessionID)
}
