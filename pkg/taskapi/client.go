// Package taskapi is the HTTP client of the Task Store and the Team Store.
package taskapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/fastygo/taskboard/api/transport"
	"github.com/fastygo/taskboard/domain"
)

// Config configures a Client.
type Config struct {
	BaseURL string
	Timeout time.Duration
	Logger  *zap.Logger
}

// Client calls the Task Store over fasthttp. Safe for concurrent use.
type Client struct {
	baseURL string
	timeout time.Duration
	http    *fasthttp.Client
	stream  *fasthttp.Client
	logger  *zap.Logger

	mu        sync.RWMutex
	sessionID string
	bearer    string
}

func New(cfg Config) (*Client, error) {
	base := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if base == "" {
		return nil, errors.New("taskapi: base URL must not be empty")
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	return &Client{
		baseURL: base,
		timeout: cfg.Timeout,
		http: &fasthttp.Client{
			Name:         "taskboard-cli",
			ReadTimeout:  cfg.Timeout,
			WriteTimeout: cfg.Timeout,
		},
		stream: &fasthttp.Client{
			Name:               "taskboard-cli",
			WriteTimeout:       cfg.Timeout,
			StreamResponseBody: true,
		},
		logger: cfg.Logger,
	}, nil
}

// WithDialer replaces the dial function of both underlying clients. Used to reach in-memory listeners.
func (c *Client) WithDialer(dial fasthttp.DialFunc) *Client {
	c.http.Dial = dial
	c.stream.Dial = dial
	return c
}

// SetSession authenticates subsequent calls with a session id.
func (c *Client) SetSession(sessionID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sessionID = sessionID
}

// SetBearer authenticates subsequent calls with an identity token when no session is set.
func (c *Client) SetBearer(token string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.bearer = token
}

func (c *Client) credentials(req *fasthttp.Request) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.sessionID != "" {
		req.Header.Set("X-Session-ID", c.sessionID)
		return
	}
	if c.bearer != "" {
		req.Header.Set("Authorization", "Bearer "+c.bearer)
	}
}

func (c *Client) newRequest(method, path string, body interface{}) (*fasthttp.Request, error) {
	req := fasthttp.AcquireRequest()
	req.SetRequestURI(c.baseURL + path)
	req.Header.SetMethod(method)
	req.Header.Set("Accept", "application/json")
	c.credentials(req)
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			fasthttp.ReleaseRequest(req)
			return nil, domain.WrapError(domain.ErrCodeInvalid, "encode request", err)
		}
		req.Header.SetContentType("application/json")
		req.SetBodyRaw(payload)
	}
	return req, nil
}

// do performs one call. A nil out discards the body. The response must answer with expect.
func (c *Client) do(ctx context.Context, method, path string, body interface{}, expect int, out func([]byte) error, opts ...func(*fasthttp.Request)) error {
	if err := ctx.Err(); err != nil {
		return domain.WrapError(domain.ErrCodeUnavailable, "request cancelled", err)
	}
	req, err := c.newRequest(method, path, body)
	if err != nil {
		return err
	}
	defer fasthttp.ReleaseRequest(req)
	for _, opt := range opts {
		opt(req)
	}
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseResponse(resp)

	deadline := time.Now().Add(c.timeout)
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		deadline = d
	}
	if err := c.http.DoDeadline(req, resp, deadline); err != nil {
		c.logger.Debug("task store unreachable", zap.String("method", method), zap.String("path", path), zap.Error(err))
		return domain.WrapError(domain.ErrCodeUnavailable, "task store unreachable", err)
	}

	status := resp.StatusCode()
	if status != expect {
		return decodeError(status, resp.Body())
	}
	if out == nil {
		return nil
	}
	return out(resp.Body())
}

// decodeError turns an error response back into the domain error the server raised.
func decodeError(status int, body []byte) error {
	var env transport.Envelope
	if err := json.Unmarshal(body, &env); err == nil && env.Code != "" {
		msg := env.ErrorMessage()
		if msg == "" {
			msg = http.StatusText(status)
		}
		return domain.NewError(domain.ErrorCode(env.Code), msg)
	}
	return domain.NewError(codeForStatus(status), fmt.Sprintf("unexpected status %d", status))
}

func codeForStatus(status int) domain.ErrorCode {
	switch status {
	case http.StatusBadRequest, http.StatusUnprocessableEntity:
		return domain.ErrCodeInvalid
	case http.StatusUnauthorized:
		return domain.ErrCodeUnauthorized
	case http.StatusForbidden:
		return domain.ErrCodeForbidden
	case http.StatusNotFound:
		return domain.ErrCodeNotFound
	case http.StatusConflict:
		return domain.ErrCodeConflict
	case http.StatusServiceUnavailable, http.StatusBadGateway, http.StatusGatewayTimeout:
		return domain.ErrCodeUnavailable
	default:
		return domain.ErrCodeInternal
	}
}

// decodeArray requires a JSON array body.
func decodeArray(dest interface{}) func([]byte) error {
	return func(body []byte) error {
		trimmed := bytes.TrimSpace(body)
		if len(trimmed) == 0 || trimmed[0] != '[' {
			return domain.ErrUnexpectedPayload
		}
		if err := json.Unmarshal(trimmed, dest); err != nil {
			return domain.WrapError(domain.ErrCodeUnexpected, domain.ErrUnexpectedPayload.Message, err)
		}
		return nil
	}
}

// decodeObject requires a JSON object body.
func decodeObject(dest interface{}) func([]byte) error {
	return func(body []byte) error {
		trimmed := bytes.TrimSpace(body)
		if len(trimmed) == 0 || trimmed[0] != '{' {
			return domain.ErrUnexpectedPayload
		}
		if err := json.Unmarshal(trimmed, dest); err != nil {
			return domain.WrapError(domain.ErrCodeUnexpected, domain.ErrUnexpectedPayload.Message, err)
		}
		return nil
	}
}
