package redis

import (
	"context"
	"strconv"
	"time"

	redislib "github.com/redis/go-redis/v9"

	"github.com/fastygo/taskboard/domain"
	"github.com/fastygo/taskboard/repository"
)

const sessionKeyPrefix = "taskboard:session:"

// Session hash fields. Times are unix milliseconds.
const (
	fieldEmail       = "email"
	fieldDisplayName = "display_name"
	fieldCreatedAt   = "created_at"
	fieldExpiresAt   = "expires_at"
)

// renewScript moves expires_at and the key expiry together, and only for a session that still exists.
var renewScript = redislib.NewScript(`
if redis.call('EXISTS', KEYS[1]) == 0 then
	return 0
end
redis.call('HSET', KEYS[1], 'expires_at', ARGV[1])
redis.call('PEXPIREAT', KEYS[1], ARGV[1])
return 1
`)

type sessionRepository struct {
	client redislib.UniversalClient
	ttl    time.Duration
}

// NewSessionRepository keeps each session in a hash that Redis expires with the session.
func NewSessionRepository(client redislib.UniversalClient, ttl time.Duration) repository.SessionRepository {
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &sessionRepository{client: client, ttl: ttl}
}

func (r *sessionRepository) Open(ctx context.Context, session *domain.Session) error {
	if session == nil || session.ID == "" || session.Email == "" {
		return domain.ErrInvalidPayload
	}
	if session.CreatedAt.IsZero() {
		session.CreatedAt = time.Now()
	}
	if !session.ExpiresAt.After(session.CreatedAt) {
		session.ExpiresAt = session.CreatedAt.Add(r.ttl)
	}

	key := sessionKey(session.ID)
	_, err := r.client.TxPipelined(ctx, func(pipe redislib.Pipeliner) error {
		pipe.HSet(ctx, key,
			fieldEmail, session.Email,
			fieldDisplayName, session.DisplayName,
			fieldCreatedAt, session.CreatedAt.UnixMilli(),
			fieldExpiresAt, session.ExpiresAt.UnixMilli(),
		)
		pipe.ExpireAt(ctx, key, session.ExpiresAt)
		return nil
	})
	return err
}

func (r *sessionRepository) Lookup(ctx context.Context, id string) (*domain.Session, error) {
	fields, err := r.client.HGetAll(ctx, sessionKey(id)).Result()
	if err != nil {
		return nil, err
	}
	if len(fields) == 0 {
		return nil, domain.ErrSessionNotFound
	}

	session := &domain.Session{
		ID:          id,
		Email:       fields[fieldEmail],
		DisplayName: fields[fieldDisplayName],
	}
	if session.CreatedAt, err = parseMillis(fields[fieldCreatedAt]); err != nil {
		return nil, domain.WrapError(domain.ErrCodeInternal, "corrupt session "+id, err)
	}
	if session.ExpiresAt, err = parseMillis(fields[fieldExpiresAt]); err != nil {
		return nil, domain.WrapError(domain.ErrCodeInternal, "corrupt session "+id, err)
	}
	if session.Email == "" || session.IsExpired(time.Now()) {
		return nil, domain.ErrSessionNotFound
	}
	return session, nil
}

func (r *sessionRepository) Renew(ctx context.Context, id string, expiresAt time.Time) error {
	renewed, err := renewScript.Run(ctx, r.client, []string{sessionKey(id)}, expiresAt.UnixMilli()).Int()
	if err != nil {
		return err
	}
	if renewed == 0 {
		return domain.ErrSessionNotFound
	}
	return nil
}

func (r *sessionRepository) Revoke(ctx context.Context, id string) error {
	return r.client.Del(ctx, sessionKey(id)).Err()
}

func sessionKey(id string) string {
	return sessionKeyPrefix + id
}

func parseMillis(raw string) (time.Time, error) {
	ms, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return time.Time{}, err
	}
	return time.UnixMilli(ms), nil
}
