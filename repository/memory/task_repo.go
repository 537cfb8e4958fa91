// Package memory holds in-process repository implementations used by tests and local runs.
package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/fastygo/taskboard/domain"
	"github.com/fastygo/taskboard/repository"
)

type taskRepository struct {
	mu     sync.RWMutex
	nextID int64
	tasks  map[int64]domain.Task
}

// NewTaskRepository returns an empty in-memory TaskRepository with ids starting at 1.
func NewTaskRepository() repository.TaskRepository {
	return &taskRepository{nextID: 1, tasks: make(map[int64]domain.Task)}
}

func (r *taskRepository) GetByID(_ context.Context, id int64) (*domain.Task, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	task, ok := r.tasks[id]
	if !ok {
		return nil, domain.ErrTaskNotFound
	}
	out := task.Clone()
	return &out, nil
}

func (r *taskRepository) List(_ context.Context, filter repository.TaskFilter) ([]domain.Task, error) {
	r.mu.RLock()
	ids := make([]int64, 0, len(r.tasks))
	for id := range r.tasks {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	tasks := make([]domain.Task, 0, len(ids))
	for _, id := range ids {
		task := r.tasks[id]
		if filter.Matches(&task) {
			tasks = append(tasks, task.Clone())
		}
	}
	r.mu.RUnlock()

	return paginate(tasks, filter.Offset, filter.Limit), nil
}

func (r *taskRepository) Create(_ context.Context, task *domain.Task) (*domain.Task, error) {
	if task == nil {
		return nil, domain.ErrInvalidPayload
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	stored := task.Clone()
	stored.ID = r.nextID
	r.nextID++
	r.tasks[stored.ID] = stored

	out := stored.Clone()
	return &out, nil
}

func (r *taskRepository) Update(_ context.Context, task *domain.Task) (*domain.Task, error) {
	if task == nil {
		return nil, domain.ErrInvalidPayload
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.tasks[task.ID]; !ok {
		return nil, domain.ErrTaskNotFound
	}
	r.tasks[task.ID] = task.Clone()
	out := task.Clone()
	return &out, nil
}

func (r *taskRepository) Delete(_ context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.tasks[id]; !ok {
		return domain.ErrTaskNotFound
	}
	delete(r.tasks, id)
	return nil
}

func paginate(tasks []domain.Task, offset, limit int) []domain.Task {
	if offset < 0 {
		offset = 0
	}
	if offset >= len(tasks) {
		return []domain.Task{}
	}
	tasks = tasks[offset:]
	if limit > 0 && limit < len(tasks) {
		tasks = tasks[:limit]
	}
	return tasks
}
