package handler

import (
	"net/http"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/fastygo/taskboard/api/transport"
	"github.com/fastygo/taskboard/domain"
	"github.com/fastygo/taskboard/pkg/httpcontext"
	taskUC "github.com/fastygo/taskboard/usecase/task"
)

type TimelineHandler struct {
	baseHandler
	uc *taskUC.UseCase
}

func NewTimelineHandler(uc *taskUC.UseCase, adapter *httpcontext.Adapter, logger *zap.Logger) *TimelineHandler {
	return &TimelineHandler{
		baseHandler: newBaseHandler(adapter, logger),
		uc:          uc,
	}
}

// @Summary Append a timeline entry
// @Tags timeline
// @Router /timeline/ [post]
func (h *TimelineHandler) CreateEntry(ctx *fasthttp.RequestCtx) {
	var req transport.TimelineRequest
	if !h.decode(ctx, &req) {
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	entry, err := h.uc.AddTimeline(stdCtx, &domain.TimelineEntry{
		TaskID:      req.TaskID,
		UpdateTime:  req.UpdateTime,
		Description: req.Description,
	})
	if err != nil {
		h.respondError(ctx, stdCtx, err)
		return
	}
	h.respondJSON(ctx, http.StatusCreated, entry)
}

// @Summary List the timeline of a task
// @Tags timeline
// @Router /tasks/{id}/timeline/ [get]
func (h *TimelineHandler) ListEntries(ctx *fasthttp.RequestCtx) {
	id, ok := h.taskID(ctx)
	if !ok {
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	entries, err := h.uc.ListTimeline(stdCtx, id)
	if err != nil {
		h.respondError(ctx, stdCtx, err)
		return
	}
	h.respondJSON(ctx, http.StatusOK, entries)
}
