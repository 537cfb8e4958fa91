package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/fastygo/taskboard/domain"
	"github.com/fastygo/taskboard/repository"
)

const foreignKeyViolation = "23503"

type timelineRepository struct {
	pool *pgxpool.Pool
}

func NewTimelineRepository(pool *pgxpool.Pool) repository.TimelineRepository {
	return &timelineRepository{pool: pool}
}

func (r *timelineRepository) Append(ctx context.Context, entry *domain.TimelineEntry) (*domain.TimelineEntry, error) {
	if entry == nil {
		return nil, domain.ErrInvalidPayload
	}

	const query = `
	INSERT INTO timeline (task_id, update_time, description)
	VALUES ($1, $2, $3)
	RETURNING id
	`
	stored := *entry
	if err := r.pool.QueryRow(ctx, query, entry.TaskID, entry.UpdateTime, entry.Description).Scan(&stored.ID); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == foreignKeyViolation {
			return nil, domain.ErrTaskNotFound
		}
		return nil, err
	}
	return &stored, nil
}

func (r *timelineRepository) ListByTask(ctx context.Context, taskID int64) ([]domain.TimelineEntry, error) {
	const query = `
	SELECT id, task_id, update_time, description
	FROM timeline
	WHERE task_id = $1
	ORDER BY id
	`
	rows, err := r.pool.Query(ctx, query, taskID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	entries := make([]domain.TimelineEntry, 0)
	for rows.Next() {
		var e domain.TimelineEntry
		if err := rows.Scan(&e.ID, &e.TaskID, &e.UpdateTime, &e.Description); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
