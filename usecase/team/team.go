package team

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/fastygo/taskboard/domain"
	"github.com/fastygo/taskboard/pkg/logger"
	"github.com/fastygo/taskboard/repository"
)

// UseCase composes team rosters and narrows the team tree to a member's teams.
type UseCase struct {
	teams  repository.TeamRepository
	logger *zap.Logger
	now    func() time.Time
}

func New(teams repository.TeamRepository, log *zap.Logger) *UseCase {
	if log == nil {
		log = zap.NewNop()
	}
	return &UseCase{teams: teams, logger: log, now: time.Now}
}

// WithClock overrides the clock used to derive team ids.
func (uc *UseCase) WithClock(now func() time.Time) *UseCase {
	if now != nil {
		uc.now = now
	}
	return uc
}

// CreateTeam writes a new team in one operation; creator is added as Admin.
func (uc *UseCase) CreateTeam(ctx context.Context, creator domain.Identity, name string, members []domain.NewMember) (*domain.Team, error) {
	if strings.TrimSpace(creator.Email) == "" {
		return nil, domain.ErrUnauthorized
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, domain.NewError(domain.ErrCodeInvalid, "team name is required")
	}
	cleaned := make([]domain.NewMember, 0, len(members))
	for _, m := range members {
		m.Name = strings.TrimSpace(m.Name)
		m.Email = strings.TrimSpace(m.Email)
		m.Role = strings.TrimSpace(m.Role)
		if m.Name == "" || m.Email == "" {
			return nil, domain.NewError(domain.ErrCodeInvalid, "member name and email are required")
		}
		cleaned = append(cleaned, m)
	}

	team := domain.NewTeam(domain.TeamID(uc.now()), name, creator, cleaned)
	if err := uc.teams.Create(ctx, team); err != nil {
		logger.WithRequestID(ctx, uc.logger).Warn("create team failed", zap.String("team_id", team.ID), zap.Error(err))
		return nil, err
	}
	logger.WithRequestID(ctx, uc.logger).Info("team created",
		zap.String("team_id", team.ID),
		zap.Int("members", len(team.Members)),
	)
	return team, nil
}

// TeamsFor lists the teams whose roster contains email.
func (uc *UseCase) TeamsFor(ctx context.Context, email string) ([]domain.Team, error) {
	if email == "" {
		return nil, domain.ErrUnauthorized
	}
	teams, err := uc.teams.List(ctx)
	if err != nil {
		return nil, err
	}
	return domain.TeamsFor(teams, email), nil
}

// Team returns one team the caller belongs to.
func (uc *UseCase) Team(ctx context.Context, email, id string) (*domain.Team, error) {
	teams, err := uc.TeamsFor(ctx, email)
	if err != nil {
		return nil, err
	}
	for i := range teams {
		if teams[i].ID == id {
			return &teams[i], nil
		}
	}
	return nil, domain.ErrTeamNotFound
}

// Watch streams the caller's teams after every change to the tree until ctx is done.
func (uc *UseCase) Watch(ctx context.Context, email string) (<-chan repository.TeamSnapshot, error) {
	if email == "" {
		return nil, domain.ErrUnauthorized
	}
	src, err := uc.teams.Watch(ctx)
	if err != nil {
		return nil, err
	}
	out := make(chan repository.TeamSnapshot, 1)
	go func() {
		defer close(out)
		for snap := range src {
			if snap.Err == nil {
				snap.Teams = domain.TeamsFor(snap.Teams, email)
			}
			select {
			case out <- snap:
			case <-ctx.Done():
				// drain until the source closes
			}
		}
	}()
	return out, nil
}
