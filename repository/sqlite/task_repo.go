// Package sqlite implements the task repositories on database/sql with the modernc SQLite driver.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"strings"

	"github.com/fastygo/taskboard/domain"
	"github.com/fastygo/taskboard/repository"
)

type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

type taskRepository struct {
	db *sql.DB
}

// NewTaskRepository returns a SQLite-backed implementation of TaskRepository.
func NewTaskRepository(db *sql.DB) repository.TaskRepository {
	return &taskRepository{db: db}
}

func (r *taskRepository) GetByID(ctx context.Context, id int64) (*domain.Task, error) {
	return getTask(ctx, r.db, id)
}

func (r *taskRepository) List(ctx context.Context, filter repository.TaskFilter) ([]domain.Task, error) {
	const query = `
	SELECT id, title, description, priority, deadline, duration, status, subtasks
	FROM tasks
	WHERE (? = '' OR status = ?)
	  AND (? = '' OR status <> ?)
	ORDER BY id
	LIMIT ? OFFSET ?
	`
	limit := filter.Limit
	if limit <= 0 {
		limit = -1
	}
	offset := filter.Offset
	if offset < 0 {
		offset = 0
	}

	rows, err := r.db.QueryContext(ctx, query,
		filter.Status, filter.Status,
		filter.ExcludeStatus, filter.ExcludeStatus,
		limit, offset,
	)
	if err != nil {
		return nil, err
	}

	tasks := make([]domain.Task, 0)
	for rows.Next() {
		task, err := scanTask(rows)
		if err != nil {
			rows.Close()
			return nil, err
		}
		tasks = append(tasks, *task)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, err
	}
	rows.Close()

	if err := attachMembers(ctx, r.db, tasks); err != nil {
		return nil, err
	}
	return tasks, nil
}

func (r *taskRepository) Create(ctx context.Context, task *domain.Task) (*domain.Task, error) {
	if task == nil {
		return nil, domain.ErrInvalidPayload
	}

	const query = `
	INSERT INTO tasks (title, description, priority, deadline, duration, status, subtasks)
	VALUES (?, ?, ?, ?, ?, ?, ?)
	`

	var created *domain.Task
	err := r.withTx(ctx, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, query,
			task.Title,
			task.Description,
			task.Priority,
			task.Deadline,
			task.Duration,
			task.Status,
			marshalSubtasks(task.Subtasks),
		)
		if err != nil {
			return err
		}
		id, err := res.LastInsertId()
		if err != nil {
			return err
		}
		if err := assignMembers(ctx, tx, id, task.MemberEmails()); err != nil {
			return err
		}
		created, err = getTask(ctx, tx, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

func (r *taskRepository) Update(ctx context.Context, task *domain.Task) (*domain.Task, error) {
	if task == nil {
		return nil, domain.ErrInvalidPayload
	}

	const query = `
	UPDATE tasks
	SET title = ?,
		description = ?,
		priority = ?,
		deadline = ?,
		duration = ?,
		status = ?,
		subtasks = ?
	WHERE id = ?
	`

	var updated *domain.Task
	err := r.withTx(ctx, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, query,
			task.Title,
			task.Description,
			task.Priority,
			task.Deadline,
			task.Duration,
			task.Status,
			marshalSubtasks(task.Subtasks),
			task.ID,
		)
		if err != nil {
			return err
		}
		if n, err := res.RowsAffected(); err != nil {
			return err
		} else if n == 0 {
			return domain.ErrTaskNotFound
		}

		if _, err := tx.ExecContext(ctx, `DELETE FROM task_members WHERE task_id = ?`, task.ID); err != nil {
			return err
		}
		if err := assignMembers(ctx, tx, task.ID, task.MemberEmails()); err != nil {
			return err
		}
		updated, err = getTask(ctx, tx, task.ID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func (r *taskRepository) Delete(ctx context.Context, id int64) error {
	return r.withTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM task_members WHERE task_id = ?`, id); err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM timeline WHERE task_id = ?`, id); err != nil {
			return err
		}
		res, err := tx.ExecContext(ctx, `DELETE FROM tasks WHERE id = ?`, id)
		if err != nil {
			return err
		}
		n, err := res.RowsAffected()
		if err != nil {
			return err
		}
		if n == 0 {
			return domain.ErrTaskNotFound
		}
		return nil
	})
}

func (r *taskRepository) withTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	return tx.Commit()
}

func getTask(ctx context.Context, q querier, id int64) (*domain.Task, error) {
	const query = `
	SELECT id, title, description, priority, deadline, duration, status, subtasks
	FROM tasks
	WHERE id = ?
	`
	task, err := scanTask(q.QueryRowContext(ctx, query, id))
	if err != nil {
		return nil, err
	}
	tasks := []domain.Task{*task}
	if err := attachMembers(ctx, q, tasks); err != nil {
		return nil, err
	}
	return &tasks[0], nil
}

// assignMembers links emails to the task, creating member rows for unknown emails.
func assignMembers(ctx context.Context, q querier, taskID int64, emails []string) error {
	for _, email := range emails {
		if _, err := q.ExecContext(ctx, `INSERT INTO members (email) VALUES (?) ON CONFLICT(email) DO NOTHING`, email); err != nil {
			return err
		}
		if _, err := q.ExecContext(ctx,
			`INSERT INTO task_members (task_id, member_email) VALUES (?, ?) ON CONFLICT DO NOTHING`,
			taskID, email,
		); err != nil {
			return err
		}
	}
	return nil
}

func attachMembers(ctx context.Context, q querier, tasks []domain.Task) error {
	if len(tasks) == 0 {
		return nil
	}

	index := make(map[int64]int, len(tasks))
	args := make([]any, 0, len(tasks))
	for i := range tasks {
		index[tasks[i].ID] = i
		tasks[i].Members = []domain.Member{}
		args = append(args, tasks[i].ID)
	}

	query := `
	SELECT tm.task_id, m.email, COALESCE(m.name, '')
	FROM task_members tm
	JOIN members m ON m.email = tm.member_email
	WHERE tm.task_id IN (` + placeholders(len(args)) + `)
	ORDER BY tm.rowid
	`
	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var (
			taskID int64
			member domain.Member
		)
		if err := rows.Scan(&taskID, &member.Email, &member.Name); err != nil {
			return err
		}
		if i, ok := index[taskID]; ok {
			tasks[i].Members = append(tasks[i].Members, member)
		}
	}
	return rows.Err()
}

func scanTask(row interface {
	Scan(dest ...any) error
}) (*domain.Task, error) {
	var (
		task     domain.Task
		subtasks string
	)
	if err := row.Scan(
		&task.ID,
		&task.Title,
		&task.Description,
		&task.Priority,
		&task.Deadline,
		&task.Duration,
		&task.Status,
		&subtasks,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrTaskNotFound
		}
		return nil, err
	}
	task.Subtasks = unmarshalSubtasks(subtasks)
	return &task, nil
}

func marshalSubtasks(subtasks []string) string {
	if len(subtasks) == 0 {
		return "[]"
	}
	b, err := json.Marshal(subtasks)
	if err != nil {
		return "[]"
	}
	return string(b)
}

func unmarshalSubtasks(raw string) []string {
	out := []string{}
	if raw == "" {
		return out
	}
	if err := json.Unmarshal([]byte(raw), &out); err != nil || out == nil {
		return []string{}
	}
	return out
}

func placeholders(n int) string {
	if n <= 0 {
		return ""
	}
	return strings.TrimSuffix(strings.Repeat("?, ", n), ", ")
}
