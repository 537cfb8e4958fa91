package taskapi

import (
	"context"
	"net/http"
	"time"

	"github.com/valyala/fasthttp"

	"github.com/fastygo/taskboard/api/transport"
	"github.com/fastygo/taskboard/domain"
)

// ExchangeToken signs in with an identity token and authenticates the client with the new session.
func (c *Client) ExchangeToken(ctx context.Context, idToken string) (*domain.Session, error) {
	var resp transport.SessionResponse
	err := c.do(ctx, http.MethodPost, "/auth/sign-in", transport.SignInRequest{IDToken: idToken}, http.StatusCreated, decodeObject(&resp))
	if err != nil {
		return nil, err
	}
	expires, err := time.Parse(time.RFC3339, resp.ExpiresAt)
	if err != nil {
		return nil, domain.WrapError(domain.ErrCodeUnexpected, "invalid session expiry", err)
	}
	session := &domain.Session{
		ID:          resp.SessionID,
		Email:       resp.Email,
		DisplayName: resp.DisplayName,
		CreatedAt:   time.Now(),
		ExpiresAt:   expires,
	}
	c.SetSession(session.ID)
	return session, nil
}

// RevokeSession signs the session out on the server.
func (c *Client) RevokeSession(ctx context.Context, sessionID string) error {
	err := c.do(ctx, http.MethodPost, "/auth/sign-out", nil, http.StatusNoContent, nil, func(req *fasthttp.Request) {
		req.Header.Set("X-Session-ID", sessionID)
	})
	c.mu.Lock()
	if c.sessionID == sessionID {
		c.sessionID = ""
	}
	c.mu.Unlock()
	return err
}

// Me returns the identity the server resolves for the client's credentials.
func (c *Client) Me(ctx context.Context) (*domain.Identity, error) {
	var identity domain.Identity
	if err := c.do(ctx, http.MethodGet, "/auth/me", nil, http.StatusOK, decodeObject(&identity)); err != nil {
		return nil, err
	}
	return &identity, nil
}
