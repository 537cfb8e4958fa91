package handler

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/fastygo/taskboard/api/transport"
	"github.com/fastygo/taskboard/domain"
	"github.com/fastygo/taskboard/pkg/httpcontext"
	"github.com/fastygo/taskboard/repository"
	teamUC "github.com/fastygo/taskboard/usecase/team"
)

const streamHeartbeat = 15 * time.Second

type TeamHandler struct {
	baseHandler
	uc *teamUC.UseCase
}

func NewTeamHandler(uc *teamUC.UseCase, adapter *httpcontext.Adapter, logger *zap.Logger) *TeamHandler {
	return &TeamHandler{
		baseHandler: newBaseHandler(adapter, logger),
		uc:          uc,
	}
}

// @Summary Teams of the caller
// @Tags teams
// @Router /teams/ [get]
func (h *TeamHandler) ListTeams(ctx *fasthttp.RequestCtx) {
	identity, ok := h.identity(ctx)
	if !ok {
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	teams, err := h.uc.TeamsFor(stdCtx, identity.Email)
	if err != nil {
		h.respondError(ctx, stdCtx, err)
		return
	}
	h.respondJSON(ctx, http.StatusOK, teams)
}

// @Summary Create a team with the caller as Admin
// @Tags teams
// @Router /teams/ [post]
func (h *TeamHandler) CreateTeam(ctx *fasthttp.RequestCtx) {
	identity, ok := h.identity(ctx)
	if !ok {
		return
	}
	var req transport.TeamCreateRequest
	if !h.decode(ctx, &req) {
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	team, err := h.uc.CreateTeam(stdCtx, identity, req.TeamName, req.Members)
	if err != nil {
		h.respondError(ctx, stdCtx, err)
		return
	}
	h.respondJSON(ctx, http.StatusCreated, team)
}

// @Summary Live team tree of the caller as server-sent events
// @Tags teams
// @Router /teams/stream [get]
func (h *TeamHandler) Stream(ctx *fasthttp.RequestCtx) {
	identity, ok := h.identity(ctx)
	if !ok {
		return
	}

	streamCtx, cancel := h.streamContext(ctx)

	snapshots, err := h.uc.Watch(streamCtx, identity.Email)
	if err != nil {
		cancel()
		h.respondError(ctx, streamCtx, err)
		return
	}

	log := h.logger.With(zap.String("email", identity.Email))
	ctx.Response.Header.SetContentType("text/event-stream")
	ctx.Response.Header.Set("Cache-Control", "no-cache")
	ctx.Response.Header.Set("Connection", "keep-alive")
	ctx.SetStatusCode(http.StatusOK)

	ctx.SetBodyStreamWriter(func(w *bufio.Writer) {
		defer cancel()
		ticker := time.NewTicker(streamHeartbeat)
		defer ticker.Stop()

		for {
			select {
			case snap, open := <-snapshots:
				if !open {
					return
				}
				if err := writeEvent(w, snap); err != nil {
					log.Debug("team stream closed", zap.Error(err))
					return
				}
			case <-ticker.C:
				if _, err := w.WriteString(": ping\n\n"); err != nil {
					return
				}
				if err := w.Flush(); err != nil {
					return
				}
			}
		}
	})
}

func (h *TeamHandler) streamContext(ctx *fasthttp.RequestCtx) (context.Context, context.CancelFunc) {
	if h.adapter != nil {
		return h.adapter.AttachStream(ctx)
	}
	return context.WithCancel(context.Background())
}

func writeEvent(w *bufio.Writer, snap repository.TeamSnapshot) error {
	if snap.Err != nil {
		if _, err := fmt.Fprintf(w, "event: error\ndata: %s\n\n", transport.NewError(string(domain.CodeOf(snap.Err)), snap.Err.Error(), nil).String()); err != nil {
			return err
		}
		return w.Flush()
	}
	body, err := json.Marshal(snap.Teams)
	if err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "data: %s\n\n", body); err != nil {
		return err
	}
	return w.Flush()
}
