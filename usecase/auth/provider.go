package auth

import (
	"context"
	"sync"

	"github.com/fastygo/taskboard/domain"
)

// Provider is the client's view of the identity provider.
type Provider interface {
	SignIn(ctx context.Context) (*domain.Identity, error)
	SignOut(ctx context.Context) error
	// Current reports the signed-in identity, if any.
	Current() (*domain.Identity, bool)
}

// StaticProvider signs in as a fixed identity without any network traffic.
type StaticProvider struct {
	mu       sync.Mutex
	identity domain.Identity
	// Err, when set, is returned by SignIn.
	Err     error
	current *domain.Identity
}

func NewStaticProvider(identity domain.Identity) *StaticProvider {
	return &StaticProvider{identity: identity}
}

func (p *StaticProvider) SignIn(context.Context) (*domain.Identity, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.Err != nil {
		return nil, p.Err
	}
	identity := p.identity
	p.current = &identity
	return &identity, nil
}

func (p *StaticProvider) SignOut(context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.current = nil
	return nil
}

func (p *StaticProvider) Current() (*domain.Identity, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.current == nil {
		return nil, false
	}
	identity := *p.current
	return &identity, true
}
