package auth

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/fastygo/taskboard/domain"
)

// SessionExchanger trades an identity token for a server session.
type SessionExchanger interface {
	ExchangeToken(ctx context.Context, idToken string) (*domain.Session, error)
	RevokeSession(ctx context.Context, sessionID string) error
}

// SessionCache persists the signed-in session between runs.
type SessionCache interface {
	SaveSession(session domain.Session) error
	LoadSession() (domain.Session, error)
	ClearSession() error
}

// TokenSource yields the identity token obtained from the identity provider.
type TokenSource func(ctx context.Context) (string, error)

// HostedProvider signs in against the server's session endpoint.
type HostedProvider struct {
	exchanger SessionExchanger
	token     TokenSource
	cache     SessionCache
	logger    *zap.Logger
	now       func() time.Time

	mu      sync.RWMutex
	session *domain.Session
}

var _ Provider = (*HostedProvider)(nil)

// NewHostedProvider restores a cached, unexpired session when cache holds one. cache may be nil.
func NewHostedProvider(exchanger SessionExchanger, token TokenSource, cache SessionCache, logger *zap.Logger) *HostedProvider {
	if logger == nil {
		logger = zap.NewNop()
	}
	p := &HostedProvider{
		exchanger: exchanger,
		token:     token,
		cache:     cache,
		logger:    logger,
		now:       time.Now,
	}
	if cache != nil {
		if session, err := cache.LoadSession(); err == nil && !session.IsExpired(p.now()) {
			p.session = &session
		}
	}
	return p
}

func (p *HostedProvider) SignIn(ctx context.Context) (*domain.Identity, error) {
	if p.token == nil {
		return nil, domain.NewError(domain.ErrCodeUnauthorized, "no identity token available")
	}
	token, err := p.token(ctx)
	if err != nil {
		return nil, err
	}
	session, err := p.exchanger.ExchangeToken(ctx, token)
	if err != nil {
		return nil, err
	}

	p.mu.Lock()
	p.session = session
	p.mu.Unlock()

	if p.cache != nil {
		if err := p.cache.SaveSession(*session); err != nil {
			p.logger.Warn("cache session failed", zap.Error(err))
		}
	}
	identity := session.Identity()
	return &identity, nil
}

// SignOut revokes the session on the server and forgets it locally.
func (p *HostedProvider) SignOut(ctx context.Context) error {
	p.mu.Lock()
	session := p.session
	p.session = nil
	p.mu.Unlock()

	if p.cache != nil {
		if err := p.cache.ClearSession(); err != nil {
			p.logger.Warn("clear cached session failed", zap.Error(err))
		}
	}
	if session == nil {
		return nil
	}
	return p.exchanger.RevokeSession(ctx, session.ID)
}

func (p *HostedProvider) Current() (*domain.Identity, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.session == nil || p.session.IsExpired(p.now()) {
		return nil, false
	}
	identity := p.session.Identity()
	return &identity, true
}

// SessionID returns the id of the live session, empty when signed out.
func (p *HostedProvider) SessionID() string {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.session == nil || p.session.IsExpired(p.now()) {
		return ""
	}
	return p.session.ID
}
