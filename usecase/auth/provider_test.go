package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fastygo/taskboard/domain"
)

type fakeExchanger struct {
	session *domain.Session
	err     error
	tokens  []string
	revoked []string
}

func (f *fakeExchanger) ExchangeToken(_ context.Context, token string) (*domain.Session, error) {
	f.tokens = append(f.tokens, token)
	if f.err != nil {
		return nil, f.err
	}
	s := *f.session
	return &s, nil
}

func (f *fakeExchanger) RevokeSession(_ context.Context, id string) error {
	f.revoked = append(f.revoked, id)
	return nil
}

type fakeCache struct {
	session *domain.Session
	cleared bool
}

func (c *fakeCache) SaveSession(s domain.Session) error {
	c.session = &s
	return nil
}

func (c *fakeCache) LoadSession() (domain.Session, error) {
	if c.session == nil {
		return domain.Session{}, domain.ErrSessionNotFound
	}
	return *c.session, nil
}

func (c *fakeCache) ClearSession() error {
	c.session = nil
	c.cleared = true
	return nil
}

func staticToken(token string) TokenSource {
	return func(context.Context) (string, error) { return token, nil }
}

func TestHostedProviderLifecycle(t *testing.T) {
	exchanger := &fakeExchanger{session: &domain.Session{
		ID:          "s-1",
		Email:       "alice@x.io",
		DisplayName: "Alice",
		ExpiresAt:   time.Now().Add(time.Hour),
	}}
	cache := &fakeCache{}
	p := NewHostedProvider(exchanger, staticToken("tok"), cache, nil)

	_, ok := p.Current()
	assert.False(t, ok)

	identity, err := p.SignIn(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "alice@x.io", identity.Email)
	assert.Equal(t, []string{"tok"}, exchanger.tokens)
	assert.Equal(t, "s-1", p.SessionID())
	require.NotNil(t, cache.session)

	restored := NewHostedProvider(exchanger, nil, cache, nil)
	current, ok := restored.Current()
	require.True(t, ok, "cached session survives a restart")
	assert.Equal(t, "Alice", current.DisplayName)

	require.NoError(t, restored.SignOut(context.Background()))
	assert.Equal(t, []string{"s-1"}, exchanger.revoked)
	assert.True(t, cache.cleared)
	assert.Empty(t, restored.SessionID())

	require.NoError(t, restored.SignOut(context.Background()))
	assert.Len(t, exchanger.revoked, 1, "signing out twice revokes once")
}

func TestHostedProviderIgnoresExpiredCache(t *testing.T) {
	cache := &fakeCache{session: &domain.Session{ID: "old", Email: "a@x.io", ExpiresAt: time.Now().Add(-time.Minute)}}
	p := NewHostedProvider(&fakeExchanger{}, nil, cache, nil)

	_, ok := p.Current()
	assert.False(t, ok)

	_, err := p.SignIn(context.Background())
	assert.True(t, domain.IsDomainError(err, domain.ErrCodeUnauthorized), "no token source")
}

func TestHostedProviderExchangeFailure(t *testing.T) {
	exchanger := &fakeExchanger{err: errors.New("rejected")}
	cache := &fakeCache{}
	p := NewHostedProvider(exchanger, staticToken("tok"), cache, nil)

	_, err := p.SignIn(context.Background())
	assert.EqualError(t, err, "rejected")
	assert.Nil(t, cache.session)
	_, ok := p.Current()
	assert.False(t, ok)
}

func TestStaticProvider(t *testing.T) {
	p := NewStaticProvider(domain.Identity{Email: "a@x.io"})
	_, ok := p.Current()
	assert.False(t, ok)

	identity, err := p.SignIn(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "a@x.io", identity.Email)
	_, ok = p.Current()
	assert.True(t, ok)

	require.NoError(t, p.SignOut(context.Background()))
	_, ok = p.Current()
	assert.False(t, ok)

	p.Err = domain.ErrUnauthorized
	_, err = p.SignIn(context.Background())
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
}
