package redis

import (
	"context"
	"os"
	"testing"
	"time"

	redislib "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fastygo/taskboard/domain"
)

// newTestClient connects to TASKBOARD_TEST_REDIS_URL and empties that database.
// Point it at a scratch database, e.g. redis://localhost:6379/15.
func newTestClient(t *testing.T) *redislib.Client {
	t.Helper()

	url := os.Getenv("TASKBOARD_TEST_REDIS_URL")
	if url == "" {
		t.Skip("TASKBOARD_TEST_REDIS_URL not set")
	}
	opts, err := redislib.ParseURL(url)
	require.NoError(t, err)

	client := redislib.NewClient(opts)
	ctx := context.Background()
	require.NoError(t, client.Ping(ctx).Err())
	require.NoError(t, client.FlushDB(ctx).Err())
	t.Cleanup(func() {
		_ = client.FlushDB(context.Background()).Err()
		_ = client.Close()
	})
	return client
}

func alphaTeam(id string) *domain.Team {
	return &domain.Team{
		ID:        id,
		TeamName:  "Alpha",
		CreatedBy: "alice@x.io",
		Members: map[string]domain.TeamMember{
			domain.SanitizeEmail("alice@x.io"): {Name: "Alice", Role: domain.RoleAdmin},
			domain.SanitizeEmail("bob@y.io"):   {Name: "Bob", Role: domain.RoleDeveloper},
		},
	}
}

func TestTeamRepositoryCreateAndList(t *testing.T) {
	repo := NewTeamRepository(newTestClient(t))
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, alphaTeam("team_2")))
	require.NoError(t, repo.Create(ctx, alphaTeam("team_1")))
	assert.ErrorIs(t, repo.Create(ctx, alphaTeam("team_1")), domain.ErrTeamExists)
	assert.ErrorIs(t, repo.Create(ctx, &domain.Team{}), domain.ErrInvalidPayload)

	teams, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, teams, 2)
	assert.Equal(t, "team_1", teams[0].ID)
	assert.Equal(t, "team_2", teams[1].ID)
	assert.Equal(t, *alphaTeam("team_1"), teams[0])
}

func TestTeamRepositoryListRejectsCorruptDocument(t *testing.T) {
	client := newTestClient(t)
	repo := NewTeamRepository(client)
	ctx := context.Background()

	require.NoError(t, client.HSet(ctx, teamsKey, "team_9", "{not json").Err())
	_, err := repo.List(ctx)
	assert.True(t, domain.IsDomainError(err, domain.ErrCodeInternal))
}

func TestTeamRepositoryWatchRedelivers(t *testing.T) {
	repo := NewTeamRepository(newTestClient(t))
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	updates, err := repo.Watch(ctx)
	require.NoError(t, err)

	first := <-updates
	require.NoError(t, first.Err)
	assert.Empty(t, first.Teams)

	require.NoError(t, repo.Create(context.Background(), alphaTeam("team_1")))
	select {
	case snap := <-updates:
		require.NoError(t, snap.Err)
		require.Len(t, snap.Teams, 1)
		assert.Equal(t, "Alpha", snap.Teams[0].TeamName)
	case <-time.After(5 * time.Second):
		t.Fatal("no delivery after create")
	}

	cancel()
	require.Eventually(t, func() bool {
		select {
		case _, ok := <-updates:
			return !ok
		default:
			return false
		}
	}, 5*time.Second, 10*time.Millisecond)
}

func TestSessionRepository(t *testing.T) {
	client := newTestClient(t)
	repo := NewSessionRepository(client, time.Minute)
	ctx := context.Background()

	assert.ErrorIs(t, repo.Open(ctx, &domain.Session{ID: "s"}), domain.ErrInvalidPayload)

	require.NoError(t, repo.Open(ctx, &domain.Session{ID: "s", Email: "alice@x.io", DisplayName: "Alice"}))
	session, err := repo.Lookup(ctx, "s")
	require.NoError(t, err)
	assert.Equal(t, domain.Identity{Email: "alice@x.io", DisplayName: "Alice"}, session.Identity())
	assert.WithinDuration(t, time.Now().Add(time.Minute), session.ExpiresAt, 5*time.Second)

	until := time.Now().Add(time.Hour).Truncate(time.Millisecond)
	require.NoError(t, repo.Renew(ctx, "s", until))
	session, err = repo.Lookup(ctx, "s")
	require.NoError(t, err)
	assert.True(t, until.Equal(session.ExpiresAt))
	ttl, err := client.TTL(ctx, sessionKey("s")).Result()
	require.NoError(t, err)
	assert.Greater(t, ttl, 50*time.Minute)

	require.NoError(t, repo.Revoke(ctx, "s"))
	_, err = repo.Lookup(ctx, "s")
	assert.ErrorIs(t, err, domain.ErrSessionNotFound)
	assert.ErrorIs(t, repo.Renew(ctx, "s", until), domain.ErrSessionNotFound)
	assert.Zero(t, client.Exists(ctx, sessionKey("s")).Val(), "renewing a revoked session must not recreate it")
}
