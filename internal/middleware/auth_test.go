package middleware

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/valyala/fasthttp"

	"github.com/fastygo/taskboard/domain"
	"github.com/fastygo/taskboard/pkg/httpcontext"
)

type authFunc func(ctx context.Context, sessionID, bearer string) (domain.Identity, error)

func (f authFunc) Authenticate(ctx context.Context, sessionID, bearer string) (domain.Identity, error) {
	return f(ctx, sessionID, bearer)
}

func TestRequireIdentity(t *testing.T) {
	auth := authFunc(func(_ context.Context, sessionID, bearer string) (domain.Identity, error) {
		switch {
		case sessionID == "good":
			return domain.Identity{Email: "alice@x.io"}, nil
		case bearer == "token":
			return domain.Identity{Email: "bob@y.io"}, nil
		case sessionID == "down":
			return domain.Identity{}, errors.New("redis: connection refused")
		}
		return domain.Identity{}, domain.ErrUnauthorized
	})

	var seen domain.Identity
	h := RequireIdentity(auth, 0, nil)(func(ctx *fasthttp.RequestCtx) {
		seen, _ = httpcontext.IdentityFrom(ctx)
		ctx.SetStatusCode(fasthttp.StatusOK)
	})

	tests := []struct {
		name      string
		header    string
		value     string
		status    int
		wantEmail string
	}{
		{"session", "X-Session-ID", "good", fasthttp.StatusOK, "alice@x.io"},
		{"bearer", "Authorization", "Bearer token", fasthttp.StatusOK, "bob@y.io"},
		{"unknown session", "X-Session-ID", "stale", fasthttp.StatusUnauthorized, ""},
		{"no credentials", "", "", fasthttp.StatusUnauthorized, ""},
		{"session store down", "X-Session-ID", "down", fasthttp.StatusServiceUnavailable, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			seen = domain.Identity{}
			var ctx fasthttp.RequestCtx
			if tt.header != "" {
				ctx.Request.Header.Set(tt.header, tt.value)
			}
			h(&ctx)
			assert.Equal(t, tt.status, ctx.Response.StatusCode())
			assert.Equal(t, tt.wantEmail, seen.Email)
		})
	}
}

func TestExtractToken(t *testing.T) {
	var ctx fasthttp.RequestCtx
	assert.Empty(t, extractToken(&ctx))

	ctx.Request.Header.Set("Authorization", "Bearer  abc ")
	assert.Equal(t, "abc", extractToken(&ctx))

	ctx.Request.Header.Set("Authorization", "raw-token")
	assert.Equal(t, "raw-token", extractToken(&ctx))
}
