package taskapi

import (
	"bufio"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"sort"
	"strings"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/fastygo/taskboard/api/transport"
	"github.com/fastygo/taskboard/domain"
	"github.com/fastygo/taskboard/repository"
)

// TeamClient is the Team Store as seen by a signed-in caller: every listing is already
// narrowed to the caller's teams.
type TeamClient struct {
	c *Client
}

var _ repository.TeamRepository = (*TeamClient)(nil)

func (c *Client) Teams() *TeamClient {
	return &TeamClient{c: c}
}

// CreateTeam creates a team named name; the server adds the caller as Admin and assigns the id.
func (t *TeamClient) CreateTeam(ctx context.Context, name string, members []domain.NewMember) (*domain.Team, error) {
	req := transport.TeamCreateRequest{TeamName: name, Members: members}
	var team domain.Team
	if err := t.c.do(ctx, http.MethodPost, "/teams/", req, http.StatusCreated, decodeObject(&team)); err != nil {
		return nil, err
	}
	return &team, nil
}

// Create sends team's name and roster and overwrites team with the stored record.
// The id of the stored team is assigned by the server.
func (t *TeamClient) Create(ctx context.Context, team *domain.Team) error {
	if team == nil {
		return domain.ErrInvalidPayload
	}
	members := make([]domain.NewMember, 0, len(team.Members))
	for _, entry := range team.Roster() {
		members = append(members, domain.NewMember{Name: entry.Name, Email: entry.Email, Role: entry.Role})
	}
	created, err := t.CreateTeam(ctx, team.TeamName, members)
	if err != nil {
		return err
	}
	*team = *created
	return nil
}

func (t *TeamClient) List(ctx context.Context) ([]domain.Team, error) {
	var teams []domain.Team
	if err := t.c.do(ctx, http.MethodGet, "/teams/", nil, http.StatusOK, decodeArray(&teams)); err != nil {
		return nil, err
	}
	if teams == nil {
		teams = []domain.Team{}
	}
	sort.SliceStable(teams, func(i, j int) bool { return teams[i].ID < teams[j].ID })
	return teams, nil
}

// Watch opens the server-sent event stream of the caller's teams.
func (t *TeamClient) Watch(ctx context.Context) (<-chan repository.TeamSnapshot, error) {
	req, err := t.c.newRequest(http.MethodGet, "/teams/stream", nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "text/event-stream")
	resp := fasthttp.AcquireResponse()
	err = t.c.stream.Do(req, resp)
	fasthttp.ReleaseRequest(req)
	if err != nil {
		fasthttp.ReleaseResponse(resp)
		return nil, domain.WrapError(domain.ErrCodeUnavailable, "team store unreachable", err)
	}
	if resp.StatusCode() != http.StatusOK {
		err := decodeError(resp.StatusCode(), resp.Body())
		fasthttp.ReleaseResponse(resp)
		return nil, err
	}

	events := make(chan repository.TeamSnapshot)
	go func() {
		defer func() {
			_ = resp.CloseBodyStream()
			fasthttp.ReleaseResponse(resp)
			close(events)
		}()
		readEvents(ctx, resp.BodyStream(), events, t.c.logger)
	}()

	out := make(chan repository.TeamSnapshot, 1)
	go func() {
		defer close(out)
		for {
			select {
			case <-ctx.Done():
				return
			case snap, open := <-events:
				if !open {
					return
				}
				select {
				case out <- snap:
				case <-ctx.Done():
					return
				}
			}
		}
	}()
	return out, nil
}

// readEvents decodes "data:" frames until the stream ends or ctx is done.
func readEvents(ctx context.Context, body io.Reader, events chan<- repository.TeamSnapshot, logger *zap.Logger) {
	reader := bufio.NewReader(body)
	var (
		event string
		data  strings.Builder
	)
	for {
		line, err := reader.ReadString('\n')
		if err != nil {
			if err != io.EOF && ctx.Err() == nil {
				logger.Debug("team stream ended", zap.Error(err))
			}
			return
		}
		line = strings.TrimRight(line, "\r\n")

		switch {
		case line == "":
			if data.Len() == 0 {
				event = ""
				continue
			}
			snap := decodeEvent(event, data.String())
			event = ""
			data.Reset()
			select {
			case events <- snap:
			case <-ctx.Done():
				return
			}
		case strings.HasPrefix(line, ":"):
			// heartbeat
		case strings.HasPrefix(line, "event:"):
			event = strings.TrimSpace(strings.TrimPrefix(line, "event:"))
		case strings.HasPrefix(line, "data:"):
			if data.Len() > 0 {
				data.WriteByte('\n')
			}
			data.WriteString(strings.TrimPrefix(strings.TrimPrefix(line, "data:"), " "))
		}
	}
}

func decodeEvent(event, data string) repository.TeamSnapshot {
	if event == "error" {
		var env transport.Envelope
		if err := json.Unmarshal([]byte(data), &env); err == nil && env.Code != "" {
			return repository.TeamSnapshot{Err: domain.NewError(domain.ErrorCode(env.Code), env.ErrorMessage())}
		}
		return repository.TeamSnapshot{Err: domain.ErrUnexpectedPayload}
	}
	var teams []domain.Team
	trimmed := strings.TrimSpace(data)
	if !strings.HasPrefix(trimmed, "[") {
		return repository.TeamSnapshot{Err: domain.ErrUnexpectedPayload}
	}
	if err := json.Unmarshal([]byte(trimmed), &teams); err != nil {
		return repository.TeamSnapshot{Err: domain.WrapError(domain.ErrCodeUnexpected, domain.ErrUnexpectedPayload.Message, err)}
	}
	if teams == nil {
		teams = []domain.Team{}
	}
	return repository.TeamSnapshot{Teams: teams}
}
