package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/fastygo/taskboard/domain"
	"github.com/fastygo/taskboard/repository"
)

type taskRepository struct {
	pool *pgxpool.Pool
}

// NewTaskRepository returns a Postgres-backed implementation of TaskRepository.
func NewTaskRepository(pool *pgxpool.Pool) repository.TaskRepository {
	return &taskRepository{pool: pool}
}

func (r *taskRepository) GetByID(ctx context.Context, id int64) (*domain.Task, error) {
	return getTask(ctx, r.pool, id)
}

func (r *taskRepository) List(ctx context.Context, filter repository.TaskFilter) ([]domain.Task, error) {
	const query = `
	SELECT id, title, description, priority, deadline, duration, status, subtasks
	FROM tasks
	WHERE ($1 = '' OR status = $1)
	  AND ($2 = '' OR status <> $2)
	ORDER BY id
	LIMIT $3 OFFSET $4
	`
	offset := filter.Offset
	if offset < 0 {
		offset = 0
	}

	rows, err := r.pool.Query(ctx, query, filter.Status, filter.ExcludeStatus, nullLimit(filter.Limit), offset)
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
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if err := attachMembers(ctx, r.pool, tasks); err != nil {
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
	VALUES ($1, $2, $3, $4, $5, $6, $7)
	RETURNING id
	`

	var created *domain.Task
	err := pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		var id int64
		if err := tx.QueryRow(ctx, query,
			task.Title,
			task.Description,
			task.Priority,
			task.Deadline,
			task.Duration,
			task.Status,
			marshalList(task.Subtasks),
		).Scan(&id); err != nil {
			return err
		}
		if err := assignMembers(ctx, tx, id, task.MemberEmails()); err != nil {
			return err
		}
		var err error
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
	SET title = $2,
		description = $3,
		priority = $4,
		deadline = $5,
		duration = $6,
		status = $7,
		subtasks = $8
	WHERE id = $1
	`

	var updated *domain.Task
	err := pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx, query,
			task.ID,
			task.Title,
			task.Description,
			task.Priority,
			task.Deadline,
			task.Duration,
			task.Status,
			marshalList(task.Subtasks),
		)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return domain.ErrTaskNotFound
		}
		if _, err := tx.Exec(ctx, `DELETE FROM task_members WHERE task_id = $1`, task.ID); err != nil {
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
	const query = `DELETE FROM tasks WHERE id = $1`
	tag, err := r.pool.Exec(ctx, query, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrTaskNotFound
	}
	return nil
}

func getTask(ctx context.Context, q querier, id int64) (*domain.Task, error) {
	const query = `
	SELECT id, title, description, priority, deadline, duration, status, subtasks
	FROM tasks
	WHERE id = $1
	`
	task, err := scanTask(q.QueryRow(ctx, query, id))
	if err != nil {
		return nil, err
	}
	tasks := []domain.Task{*task}
	if err := attachMembers(ctx, q, tasks); err != nil {
		return nil, err
	}
	return &tasks[0], nil
}

// assignMembers links emails to the task in order, creating member rows for unknown emails.
func assignMembers(ctx context.Context, q querier, taskID int64, emails []string) error {
	for pos, email := range emails {
		if _, err := q.Exec(ctx, `INSERT INTO members (email) VALUES ($1) ON CONFLICT (email) DO NOTHING`, email); err != nil {
			return err
		}
		if _, err := q.Exec(ctx,
			`INSERT INTO task_members (task_id, member_email, position) VALUES ($1, $2, $3) ON CONFLICT DO NOTHING`,
			taskID, email, pos,
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
	ids := make([]int64, 0, len(tasks))
	for i := range tasks {
		index[tasks[i].ID] = i
		tasks[i].Members = []domain.Member{}
		ids = append(ids, tasks[i].ID)
	}

	const query = `
	SELECT tm.task_id, m.email, COALESCE(m.name, '')
	FROM task_members tm
	JOIN members m ON m.email = tm.member_email
	WHERE tm.task_id = ANY($1)
	ORDER BY tm.task_id, tm.position
	`
	rows, err := q.Query(ctx, query, ids)
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
		subtasks []byte
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
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrTaskNotFound
		}
		return nil, err
	}
	task.Subtasks = unmarshalList(subtasks)
	return &task, nil
}
