package router

import (
	"bytes"

	"github.com/fasthttp/router"
	"github.com/valyala/fasthttp"

	apiHandler "github.com/fastygo/taskboard/api/handler"
)

type Handlers struct {
	Auth     *apiHandler.AuthHandler
	Task     *apiHandler.TaskHandler
	Timeline *apiHandler.TimelineHandler
	Team     *apiHandler.TeamHandler
	Health   *apiHandler.HealthHandler
	// Metrics is optional; /metrics is not routed when nil.
	Metrics fasthttp.RequestHandler
}

type Middleware func(fasthttp.RequestHandler) fasthttp.RequestHandler

// New routes every endpoint. Paths answer with and without a trailing slash.
func New(handlers Handlers, requireIdentity Middleware) fasthttp.RequestHandler {
	r := router.New()
	r.RedirectTrailingSlash = false

	r.GET("/health", handlers.Health.Check)
	if handlers.Metrics != nil {
		r.GET("/metrics", handlers.Metrics)
	}

	// Task Store
	r.Handle(fasthttp.MethodGet, "/tasks", handlers.Task.GetTasks)
	r.Handle(fasthttp.MethodPost, "/tasks", handlers.Task.CreateTask)
	r.Handle(fasthttp.MethodGet, "/tasks/active", handlers.Task.GetActiveTasks)
	r.Handle(fasthttp.MethodGet, "/tasks/status/{status}", handlers.Task.GetTasksByStatus)
	r.Handle(fasthttp.MethodGet, "/tasks/{id}", handlers.Task.GetTask)
	r.Handle(fasthttp.MethodPut, "/tasks/{id}", handlers.Task.UpdateTask)
	r.Handle(fasthttp.MethodDelete, "/tasks/{id}", handlers.Task.DeleteTask)
	r.Handle(fasthttp.MethodGet, "/tasks/{id}/timeline", handlers.Timeline.ListEntries)
	r.Handle(fasthttp.MethodPost, "/timeline", handlers.Timeline.CreateEntry)

	// Identity
	r.Handle(fasthttp.MethodPost, "/auth/sign-in", handlers.Auth.SignIn)
	r.Handle(fasthttp.MethodPost, "/auth/sign-out", handlers.Auth.SignOut)
	r.Handle(fasthttp.MethodGet, "/auth/me", requireIdentity(handlers.Auth.Me))

	// Team Store
	r.Handle(fasthttp.MethodGet, "/teams", requireIdentity(handlers.Team.ListTeams))
	r.Handle(fasthttp.MethodPost, "/teams", requireIdentity(handlers.Team.CreateTeam))
	r.Handle(fasthttp.MethodGet, "/teams/stream", requireIdentity(handlers.Team.Stream))

	return trimTrailingSlash(r.Handler)
}

// Chain wraps h so that the first middleware is the outermost.
func Chain(h fasthttp.RequestHandler, middlewares ...Middleware) fasthttp.RequestHandler {
	for i := len(middlewares) - 1; i >= 0; i-- {
		h = middlewares[i](h)
	}
	return h
}

// trimTrailingSlash routes "/tasks/" and "/tasks" alike. Routes are registered without the slash.
func trimTrailingSlash(next fasthttp.RequestHandler) fasthttp.RequestHandler {
	return func(ctx *fasthttp.RequestCtx) {
		uri := ctx.Request.URI()
		path := uri.PathOriginal()
		if len(path) > 1 && path[len(path)-1] == '/' {
			trimmed := bytes.TrimRight(path, "/")
			if len(trimmed) == 0 {
				trimmed = []byte("/")
			}
			uri.SetPathBytes(append([]byte(nil), trimmed...))
		}
		next(ctx)
	}
}
