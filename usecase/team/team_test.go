package team

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fastygo/taskboard/domain"
	"github.com/fastygo/taskboard/repository"
	"github.com/fastygo/taskboard/repository/memory"
)

var (
	alice = domain.Identity{Email: "alice@x.io", DisplayName: "Alice"}
	bob   = domain.Identity{Email: "bob@y.io", DisplayName: "Bob"}
)

func fixedClock(ms int64) func() time.Time {
	return func() time.Time { return time.UnixMilli(ms) }
}

func TestCreateTeamComposesRoster(t *testing.T) {
	uc := New(memory.NewTeamRepository(), nil).WithClock(fixedClock(1700000000000))

	team, err := uc.CreateTeam(context.Background(), alice, " Alpha ", []domain.NewMember{
		{Name: "Bob", Email: " bob@y.io ", Role: "Tester"},
		{Name: "Carol", Email: "carol@z.io"},
	})
	require.NoError(t, err)

	assert.Equal(t, "team_1700000000000", team.ID)
	assert.Equal(t, "Alpha", team.TeamName)
	assert.Equal(t, alice.Email, team.CreatedBy)
	assert.Equal(t, map[string]domain.TeamMember{
		"alice@x,io": {Name: "Alice", Role: domain.RoleAdmin},
		"bob@y,io":   {Name: "Bob", Role: "Tester"},
		"carol@z,io": {Name: "Carol", Role: domain.RoleDeveloper},
	}, team.Members)

	mine, err := uc.TeamsFor(context.Background(), "bob@y.io")
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.Equal(t, team.ID, mine[0].ID)

	none, err := uc.TeamsFor(context.Background(), "dave@w.io")
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestCreateTeamRejectsBadInput(t *testing.T) {
	uc := New(memory.NewTeamRepository(), nil)
	ctx := context.Background()

	_, err := uc.CreateTeam(ctx, domain.Identity{}, "Alpha", nil)
	assert.ErrorIs(t, err, domain.ErrUnauthorized)

	_, err = uc.CreateTeam(ctx, alice, "  ", nil)
	assert.True(t, domain.IsDomainError(err, domain.ErrCodeInvalid))

	_, err = uc.CreateTeam(ctx, alice, "Alpha", []domain.NewMember{{Name: "", Email: "b@y.io"}})
	assert.True(t, domain.IsDomainError(err, domain.ErrCodeInvalid))
}

func TestCreateTeamSameInstantConflicts(t *testing.T) {
	uc := New(memory.NewTeamRepository(), nil).WithClock(fixedClock(42))
	ctx := context.Background()

	_, err := uc.CreateTeam(ctx, alice, "Alpha", nil)
	require.NoError(t, err)
	_, err = uc.CreateTeam(ctx, bob, "Beta", nil)
	assert.ErrorIs(t, err, domain.ErrTeamExists)
}

func TestTeam(t *testing.T) {
	uc := New(memory.NewTeamRepository(), nil).WithClock(fixedClock(7))
	created, err := uc.CreateTeam(context.Background(), alice, "Alpha", nil)
	require.NoError(t, err)

	got, err := uc.Team(context.Background(), alice.Email, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "Alpha", got.TeamName)

	_, err = uc.Team(context.Background(), bob.Email, created.ID)
	assert.ErrorIs(t, err, domain.ErrTeamNotFound)
}

func TestWatchDeliversOnlyCallersTeams(t *testing.T) {
	repo := memory.NewTeamRepository()
	clock := int64(1)
	uc := New(repo, nil).WithClock(func() time.Time { return time.UnixMilli(clock) })

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	updates, err := uc.Watch(ctx, alice.Email)
	require.NoError(t, err)

	first := receive(t, updates)
	assert.Empty(t, first.Teams)

	_, err = uc.CreateTeam(context.Background(), bob, "Bobs", nil)
	require.NoError(t, err)
	clock = 2
	created, err := uc.CreateTeam(context.Background(), bob, "Shared", []domain.NewMember{{Name: "Alice", Email: alice.Email}})
	require.NoError(t, err)

	for {
		snap := receive(t, updates)
		require.NoError(t, snap.Err)
		if len(snap.Teams) == 0 {
			continue
		}
		require.Len(t, snap.Teams, 1)
		assert.Equal(t, created.ID, snap.Teams[0].ID)
		break
	}

	cancel()
	require.Eventually(t, func() bool {
		select {
		case _, ok := <-updates:
			return !ok
		default:
			return false
		}
	}, time.Second, 5*time.Millisecond)
}

func TestWatchRequiresIdentity(t *testing.T) {
	uc := New(memory.NewTeamRepository(), nil)
	_, err := uc.Watch(context.Background(), "")
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
}

func receive(t *testing.T, ch <-chan repository.TeamSnapshot) repository.TeamSnapshot {
	t.Helper()
	select {
	case snap, ok := <-ch:
		require.True(t, ok, "channel closed early")
		return snap
	case <-time.After(time.Second):
		t.Fatal("no snapshot delivered")
		return repository.TeamSnapshot{}
	}
}
