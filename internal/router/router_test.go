package router

import (
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/valyala/fasthttp"

	apiHandler "github.com/fastygo/taskboard/api/handler"
	"github.com/fastygo/taskboard/domain"
	"github.com/fastygo/taskboard/internal/infrastructure/monitor"
	"github.com/fastygo/taskboard/pkg/idtoken"
	"github.com/fastygo/taskboard/repository/memory"
	authUC "github.com/fastygo/taskboard/usecase/auth"
	taskUC "github.com/fastygo/taskboard/usecase/task"
	teamUC "github.com/fastygo/taskboard/usecase/team"
)

func denyAll(fasthttp.RequestHandler) fasthttp.RequestHandler {
	return func(ctx *fasthttp.RequestCtx) {
		ctx.SetStatusCode(http.StatusUnauthorized)
	}
}

func newRoutes(t *testing.T) fasthttp.RequestHandler {
	t.Helper()

	signer, err := idtoken.NewHMAC("test-secret", "taskboard-identity")
	require.NoError(t, err)

	tasks := taskUC.New(memory.NewTaskRepository(), memory.NewTimelineRepository(), nil)
	auth := authUC.New(signer, memory.NewSessionRepository(time.Hour), time.Hour, nil)
	teams := teamUC.New(memory.NewTeamRepository(), nil)

	var routes fasthttp.RequestHandler
	require.NotPanics(t, func() {
		routes = New(Handlers{
			Auth:     apiHandler.NewAuthHandler(auth, nil, nil),
			Task:     apiHandler.NewTaskHandler(tasks, nil, nil),
			Timeline: apiHandler.NewTimelineHandler(tasks, nil, nil),
			Team:     apiHandler.NewTeamHandler(teams, nil, nil),
			Health:   apiHandler.NewHealthHandler(monitor.New(time.Hour, nil), nil, nil),
			Metrics:  func(ctx *fasthttp.RequestCtx) { ctx.SetBodyString("metrics") },
		}, denyAll)
	})
	return routes
}

func serve(routes fasthttp.RequestHandler, method, uri, body string) *fasthttp.RequestCtx {
	var ctx fasthttp.RequestCtx
	ctx.Request.Header.SetMethod(method)
	ctx.Request.SetRequestURI(uri)
	if body != "" {
		ctx.Request.SetBodyString(body)
	}
	routes(&ctx)
	return &ctx
}

func TestTaskRoutesWithAndWithoutTrailingSlash(t *testing.T) {
	routes := newRoutes(t)

	created := serve(routes, fasthttp.MethodPost, "/tasks/", `{"title":"write","status":"Pending"}`)
	require.Equal(t, http.StatusCreated, created.Response.StatusCode())

	for _, path := range []string{"/tasks", "/tasks/"} {
		ctx := serve(routes, fasthttp.MethodGet, path, "")
		require.Equal(t, http.StatusOK, ctx.Response.StatusCode(), path)
		var list []domain.Task
		require.NoError(t, json.Unmarshal(ctx.Response.Body(), &list), path)
		assert.Len(t, list, 1, path)
	}

	for i, path := range []string{"/tasks/1", "/tasks/1/"} {
		title := []string{"first", "second"}[i]
		ctx := serve(routes, fasthttp.MethodPut, path, `{"title":"`+title+`","status":"Completed"}`)
		require.Equal(t, http.StatusOK, ctx.Response.StatusCode(), path)
		var task domain.Task
		require.NoError(t, json.Unmarshal(ctx.Response.Body(), &task))
		assert.Equal(t, title, task.Title)
		assert.Equal(t, []string{}, task.Subtasks)
	}

	ctx := serve(routes, fasthttp.MethodGet, "/tasks/status/Completed/", "")
	require.Equal(t, http.StatusOK, ctx.Response.StatusCode())
	assert.Contains(t, string(ctx.Response.Body()), `"second"`)

	ctx = serve(routes, fasthttp.MethodGet, "/tasks/active", "")
	require.Equal(t, http.StatusOK, ctx.Response.StatusCode())
	assert.JSONEq(t, `[]`, string(ctx.Response.Body()))

	ctx = serve(routes, fasthttp.MethodDelete, "/tasks/1/", "")
	assert.Equal(t, http.StatusNoContent, ctx.Response.StatusCode())
}

func TestRouteTable(t *testing.T) {
	routes := newRoutes(t)

	tests := []struct {
		method string
		path   string
		status int
	}{
		{fasthttp.MethodGet, "/health", http.StatusOK},
		{fasthttp.MethodGet, "/metrics", http.StatusOK},
		{fasthttp.MethodGet, "/tasks/7/timeline/", http.StatusNotFound},
		{fasthttp.MethodGet, "/teams/", http.StatusUnauthorized},
		{fasthttp.MethodGet, "/teams/stream", http.StatusUnauthorized},
		{fasthttp.MethodGet, "/auth/me/", http.StatusUnauthorized},
		{fasthttp.MethodGet, "/nowhere/", http.StatusNotFound},
	}
	for _, tt := range tests {
		ctx := serve(routes, tt.method, tt.path, "")
		assert.Equal(t, tt.status, ctx.Response.StatusCode(), tt.method+" "+tt.path)
	}
}

func TestTrimTrailingSlash(t *testing.T) {
	var seen string
	h := trimTrailingSlash(func(ctx *fasthttp.RequestCtx) {
		seen = string(ctx.Request.URI().PathOriginal())
	})

	for in, want := range map[string]string{
		"/":                            "/",
		"/tasks/":                      "/tasks",
		"/tasks//":                     "/tasks",
		"/tasks/status/In%20Progress/": "/tasks/status/In%20Progress",
	} {
		var ctx fasthttp.RequestCtx
		ctx.Request.SetRequestURI(in)
		h(&ctx)
		assert.Equal(t, want, seen, in)
	}
}
