package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/fastygo/taskboard/domain"
	"github.com/fastygo/taskboard/repository"
)

// TeamRepository is an in-process team tree with live subscriptions.
type TeamRepository struct {
	mu       sync.Mutex
	teams    map[string]domain.Team
	watchers map[int]chan repository.TeamSnapshot
	nextSub  int
}

var _ repository.TeamRepository = (*TeamRepository)(nil)

func NewTeamRepository() *TeamRepository {
	return &TeamRepository{
		teams:    make(map[string]domain.Team),
		watchers: make(map[int]chan repository.TeamSnapshot),
	}
}

func (r *TeamRepository) Create(_ context.Context, team *domain.Team) error {
	if team == nil || team.ID == "" {
		return domain.ErrInvalidPayload
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.teams[team.ID]; exists {
		return domain.ErrTeamExists
	}
	r.teams[team.ID] = copyTeam(*team)
	r.broadcastLocked()
	return nil
}

func (r *TeamRepository) List(_ context.Context) ([]domain.Team, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.snapshotLocked(), nil
}

func (r *TeamRepository) Watch(ctx context.Context) (<-chan repository.TeamSnapshot, error) {
	ch := make(chan repository.TeamSnapshot, 1)

	r.mu.Lock()
	id := r.nextSub
	r.nextSub++
	r.watchers[id] = ch
	ch <- repository.TeamSnapshot{Teams: r.snapshotLocked()}
	r.mu.Unlock()

	go func() {
		<-ctx.Done()
		r.mu.Lock()
		delete(r.watchers, id)
		close(ch)
		r.mu.Unlock()
	}()
	return ch, nil
}

// broadcastLocked replaces any undelivered snapshot with the latest tree.
func (r *TeamRepository) broadcastLocked() {
	snapshot := repository.TeamSnapshot{Teams: r.snapshotLocked()}
	for _, ch := range r.watchers {
		select {
		case <-ch:
		default:
		}
		ch <- snapshot
	}
}

func (r *TeamRepository) snapshotLocked() []domain.Team {
	teams := make([]domain.Team, 0, len(r.teams))
	for _, t := range r.teams {
		teams = append(teams, copyTeam(t))
	}
	sort.Slice(teams, func(i, j int) bool { return teams[i].ID < teams[j].ID })
	return teams
}

func copyTeam(t domain.Team) domain.Team {
	members := make(map[string]domain.TeamMember, len(t.Members))
	for k, v := range t.Members {
		members[k] = v
	}
	t.Members = members
	return t
}
