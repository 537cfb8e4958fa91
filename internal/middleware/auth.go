package middleware

import (
	"context"
	"strings"
	"time"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/fastygo/taskboard/api/transport"
	"github.com/fastygo/taskboard/domain"
	"github.com/fastygo/taskboard/pkg/httpcontext"
)

// Authenticator resolves the caller from a session id or a bearer identity token.
type Authenticator interface {
	Authenticate(ctx context.Context, sessionID, bearer string) (domain.Identity, error)
}

// RequireIdentity rejects requests without a valid X-Session-ID or bearer identity token
// and records the caller for downstream handlers.
func RequireIdentity(auth Authenticator, timeout time.Duration, logger *zap.Logger) func(fasthttp.RequestHandler) fasthttp.RequestHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return func(next fasthttp.RequestHandler) fasthttp.RequestHandler {
		return func(ctx *fasthttp.RequestCtx) {
			sessionID := strings.TrimSpace(string(ctx.Request.Header.Peek("X-Session-ID")))
			bearer := extractToken(ctx)
			if sessionID == "" && bearer == "" {
				unauthorized(ctx, domain.ErrUnauthorized.Message)
				return
			}

			stdCtx, cancel := context.WithTimeout(context.Background(), timeout)
			identity, err := auth.Authenticate(stdCtx, sessionID, bearer)
			cancel()
			if err != nil {
				if domain.IsDomainError(err, domain.ErrCodeUnauthorized) {
					logger.Debug("caller rejected", zap.Error(err))
					unauthorized(ctx, err.Error())
					return
				}
				logger.Error("authenticate caller failed", zap.Error(err))
				ctx.Response.Header.SetContentType("application/json")
				ctx.SetStatusCode(fasthttp.StatusServiceUnavailable)
				ctx.SetBodyString(transport.NewError(string(domain.ErrCodeUnavailable), "identity lookup failed", nil).String())
				return
			}

			httpcontext.SetIdentity(ctx, identity)
			next(ctx)
		}
	}
}

func unauthorized(ctx *fasthttp.RequestCtx, message string) {
	ctx.Response.Header.SetContentType("application/json")
	ctx.SetStatusCode(fasthttp.StatusUnauthorized)
	ctx.SetBodyString(transport.NewError(string(domain.ErrCodeUnauthorized), message, nil).String())
}

func extractToken(ctx *fasthttp.RequestCtx) string {
	header := strings.TrimSpace(string(ctx.Request.Header.Peek("Authorization")))
	if header == "" {
		return ""
	}
	if strings.HasPrefix(header, "Bearer ") {
		return strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
	}
	return header
}
