package repository

import (
	"context"

	"github.com/fastygo/taskboard/domain"
)

// TaskFilter narrows a task listing. Zero values mean "no constraint"; Limit <= 0 returns everything.
type TaskFilter struct {
	Status        string
	ExcludeStatus string
	Offset        int
	Limit         int
}

// Matches reports whether task passes the status constraints of the filter.
func (f TaskFilter) Matches(task *domain.Task) bool {
	if task == nil {
		return false
	}
	if f.Status != "" && task.Status != f.Status {
		return false
	}
	if f.ExcludeStatus != "" && task.Status == f.ExcludeStatus {
		return false
	}
	return true
}

type TaskRepository interface {
	GetByID(ctx context.Context, id int64) (*domain.Task, error)
	List(ctx context.Context, filter TaskFilter) ([]domain.Task, error)
	Create(ctx context.Context, task *domain.Task) (*domain.Task, error)
	// Update replaces every field of the stored task, members included.
	Update(ctx context.Context, task *domain.Task) (*domain.Task, error)
	Delete(ctx context.Context, id int64) error
}

type TimelineRepository interface {
	Append(ctx context.Context, entry *domain.TimelineEntry) (*domain.TimelineEntry, error)
	ListByTask(ctx context.Context, taskID int64) ([]domain.TimelineEntry, error)
}
