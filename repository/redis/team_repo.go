package redis

import (
	"context"
	"encoding/json"
	"sort"

	redislib "github.com/redis/go-redis/v9"

	"github.com/fastygo/taskboard/domain"
	"github.com/fastygo/taskboard/repository"
)

const (
	teamsKey     = "taskboard:teams"
	teamsChannel = "taskboard:teams:changed"
)

// teamDocument is the stored shape of teams/{id}; the id is the hash field.
type teamDocument struct {
	TeamName  string                       `json:"teamName"`
	CreatedBy string                       `json:"createdBy"`
	Members   map[string]domain.TeamMember `json:"members"`
}

type teamRepository struct {
	client redislib.UniversalClient
}

// NewTeamRepository stores the team tree as one Redis hash and announces writes on a pub/sub channel.
func NewTeamRepository(client redislib.UniversalClient) repository.TeamRepository {
	return &teamRepository{client: client}
}

func (r *teamRepository) Create(ctx context.Context, team *domain.Team) error {
	if team == nil || team.ID == "" {
		return domain.ErrInvalidPayload
	}
	payload, err := json.Marshal(teamDocument{
		TeamName:  team.TeamName,
		CreatedBy: team.CreatedBy,
		Members:   team.Members,
	})
	if err != nil {
		return err
	}

	created, err := r.client.HSetNX(ctx, teamsKey, team.ID, payload).Result()
	if err != nil {
		return err
	}
	if !created {
		return domain.ErrTeamExists
	}
	return r.client.Publish(ctx, teamsChannel, team.ID).Err()
}

func (r *teamRepository) List(ctx context.Context) ([]domain.Team, error) {
	raw, err := r.client.HGetAll(ctx, teamsKey).Result()
	if err != nil {
		return nil, err
	}

	teams := make([]domain.Team, 0, len(raw))
	for id, value := range raw {
		var doc teamDocument
		if err := json.Unmarshal([]byte(value), &doc); err != nil {
			return nil, domain.WrapError(domain.ErrCodeInternal, "corrupt team document "+id, err)
		}
		teams = append(teams, domain.Team{
			ID:        id,
			TeamName:  doc.TeamName,
			CreatedBy: doc.CreatedBy,
			Members:   doc.Members,
		})
	}
	sort.Slice(teams, func(i, j int) bool { return teams[i].ID < teams[j].ID })
	return teams, nil
}

func (r *teamRepository) Watch(ctx context.Context) (<-chan repository.TeamSnapshot, error) {
	sub := r.client.Subscribe(ctx, teamsChannel)
	// Receive blocks until the subscription is confirmed, so no write can slip between
	// the initial read and the first notification.
	if _, err := sub.Receive(ctx); err != nil {
		sub.Close()
		return nil, err
	}

	out := make(chan repository.TeamSnapshot, 1)
	go func() {
		defer close(out)
		defer sub.Close()

		if !r.deliver(ctx, out) {
			return
		}
		messages := sub.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case _, ok := <-messages:
				if !ok {
					return
				}
				if !r.deliver(ctx, out) {
					return
				}
			}
		}
	}()
	return out, nil
}

func (r *teamRepository) deliver(ctx context.Context, out chan<- repository.TeamSnapshot) bool {
	teams, err := r.List(ctx)
	select {
	case out <- repository.TeamSnapshot{Teams: teams, Err: err}:
		return true
	case <-ctx.Done():
		return false
	}
}
