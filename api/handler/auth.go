package handler

import (
	"net/http"
	"time"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/fastygo/taskboard/api/transport"
	"github.com/fastygo/taskboard/domain"
	"github.com/fastygo/taskboard/pkg/httpcontext"
	authUC "github.com/fastygo/taskboard/usecase/auth"
)

// SessionHeader carries the session id issued by sign-in.
const SessionHeader = "X-Session-ID"

type AuthHandler struct {
	baseHandler
	uc *authUC.UseCase
}

func NewAuthHandler(uc *authUC.UseCase, adapter *httpcontext.Adapter, logger *zap.Logger) *AuthHandler {
	return &AuthHandler{
		baseHandler: newBaseHandler(adapter, logger),
		uc:          uc,
	}
}

// @Summary Exchange an identity token for a session
// @Tags auth
// @Router /auth/sign-in [post]
func (h *AuthHandler) SignIn(ctx *fasthttp.RequestCtx) {
	var req transport.SignInRequest
	if !h.decode(ctx, &req) {
		return
	}
	if req.IDToken == "" {
		h.respondJSON(ctx, http.StatusBadRequest, transport.NewError(string(domain.ErrCodeInvalid), "id_token is required", nil))
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	session, err := h.uc.SignIn(stdCtx, req.IDToken)
	if err != nil {
		h.respondError(ctx, stdCtx, err)
		return
	}
	h.respondJSON(ctx, http.StatusCreated, transport.SessionResponse{
		SessionID:   session.ID,
		Email:       session.Email,
		DisplayName: session.DisplayName,
		ExpiresAt:   session.ExpiresAt.UTC().Format(time.RFC3339),
	})
}

// @Summary Close the current session
// @Tags auth
// @Router /auth/sign-out [post]
func (h *AuthHandler) SignOut(ctx *fasthttp.RequestCtx) {
	sessionID := string(ctx.Request.Header.Peek(SessionHeader))

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	if err := h.uc.SignOut(stdCtx, sessionID); err != nil {
		h.respondError(ctx, stdCtx, err)
		return
	}
	h.respondNoContent(ctx)
}

// @Summary Current identity
// @Tags auth
// @Router /auth/me [get]
func (h *AuthHandler) Me(ctx *fasthttp.RequestCtx) {
	identity, ok := h.identity(ctx)
	if !ok {
		return
	}
	h.respondJSON(ctx, http.StatusOK, identity)
}
