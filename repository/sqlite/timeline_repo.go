package sqlite

import (
	"context"
	"database/sql"

	"github.com/fastygo/taskboard/domain"
	"github.com/fastygo/taskboard/repository"
)

type timelineRepository struct {
	db *sql.DB
}

func NewTimelineRepository(db *sql.DB) repository.TimelineRepository {
	return &timelineRepository{db: db}
}

func (r *timelineRepository) Append(ctx context.Context, entry *domain.TimelineEntry) (*domain.TimelineEntry, error) {
	if entry == nil {
		return nil, domain.ErrInvalidPayload
	}

	var exists int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(1) FROM tasks WHERE id = ?`, entry.TaskID).Scan(&exists); err != nil {
		return nil, err
	}
	if exists == 0 {
		return nil, domain.ErrTaskNotFound
	}

	res, err := r.db.ExecContext(ctx,
		`INSERT INTO timeline (task_id, update_time, description) VALUES (?, ?, ?)`,
		entry.TaskID, entry.UpdateTime, entry.Description,
	)
	if err != nil {
		return nil, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, err
	}
	stored := *entry
	stored.ID = id
	return &stored, nil
}

func (r *timelineRepository) ListByTask(ctx context.Context, taskID int64) ([]domain.TimelineEntry, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, task_id, update_time, description FROM timeline WHERE task_id = ? ORDER BY id`,
		taskID,
	)
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
