package task

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/fastygo/taskboard/domain"
	"github.com/fastygo/taskboard/pkg/logger"
	"github.com/fastygo/taskboard/repository"
)

type UseCase struct {
	tasks    repository.TaskRepository
	timeline repository.TimelineRepository
	logger   *zap.Logger
}

func New(tasks repository.TaskRepository, timeline repository.TimelineRepository, log *zap.Logger) *UseCase {
	if log == nil {
		log = zap.NewNop()
	}
	return &UseCase{
		tasks:    tasks,
		timeline: timeline,
		logger:   log,
	}
}

func (uc *UseCase) ListTasks(ctx context.Context, filter repository.TaskFilter) ([]domain.Task, error) {
	return uc.tasks.List(ctx, filter)
}

// ListByStatus returns the tasks in the given status. Unknown statuses are rejected.
func (uc *UseCase) ListByStatus(ctx context.Context, status string) ([]domain.Task, error) {
	if status == "" || !domain.ValidStatus(status) {
		return nil, domain.ErrInvalidStatus
	}
	return uc.tasks.List(ctx, repository.TaskFilter{Status: status})
}

// ListActive returns every task that is not completed.
func (uc *UseCase) ListActive(ctx context.Context) ([]domain.Task, error) {
	return uc.tasks.List(ctx, repository.TaskFilter{ExcludeStatus: domain.StatusCompleted})
}

func (uc *UseCase) GetTask(ctx context.Context, id int64) (*domain.Task, error) {
	if id <= 0 {
		return nil, domain.ErrMissingTaskID
	}
	return uc.tasks.GetByID(ctx, id)
}

func (uc *UseCase) CreateTask(ctx context.Context, task *domain.Task) (*domain.Task, error) {
	if err := validate(task); err != nil {
		return nil, err
	}
	task.ID = 0
	created, err := uc.tasks.Create(ctx, task)
	if err != nil {
		logger.WithRequestID(ctx, uc.logger).Error("create task failed", zap.Error(err))
		return nil, err
	}
	logger.WithRequestID(ctx, uc.logger).Info("task created", zap.Int64("task_id", created.ID))
	return created, nil
}

// UpdateTask replaces the stored task with id. Concurrent updates resolve as last writer wins.
func (uc *UseCase) UpdateTask(ctx context.Context, id int64, task *domain.Task) (*domain.Task, error) {
	if id <= 0 {
		return nil, domain.ErrMissingTaskID
	}
	if err := validate(task); err != nil {
		return nil, err
	}
	task.ID = id
	updated, err := uc.tasks.Update(ctx, task)
	if err != nil {
		if !domain.IsDomainError(err, domain.ErrCodeNotFound) {
			logger.WithRequestID(ctx, uc.logger).Error("update task failed", zap.Int64("task_id", id), zap.Error(err))
		}
		return nil, err
	}
	return updated, nil
}

func (uc *UseCase) DeleteTask(ctx context.Context, id int64) error {
	if id <= 0 {
		return domain.ErrMissingTaskID
	}
	if err := uc.tasks.Delete(ctx, id); err != nil {
		return err
	}
	logger.WithRequestID(ctx, uc.logger).Info("task deleted", zap.Int64("task_id", id))
	return nil
}

// AddTimeline appends a progress note to an existing task.
func (uc *UseCase) AddTimeline(ctx context.Context, entry *domain.TimelineEntry) (*domain.TimelineEntry, error) {
	if entry == nil || entry.TaskID <= 0 {
		return nil, domain.ErrMissingTaskID
	}
	if strings.TrimSpace(entry.Description) == "" {
		return nil, domain.NewError(domain.ErrCodeInvalid, "description is required")
	}
	if _, err := uc.tasks.GetByID(ctx, entry.TaskID); err != nil {
		return nil, err
	}
	return uc.timeline.Append(ctx, entry)
}

func (uc *UseCase) ListTimeline(ctx context.Context, taskID int64) ([]domain.TimelineEntry, error) {
	if _, err := uc.GetTask(ctx, taskID); err != nil {
		return nil, err
	}
	return uc.timeline.ListByTask(ctx, taskID)
}

func validate(task *domain.Task) error {
	if task == nil {
		return domain.ErrInvalidPayload
	}
	if strings.TrimSpace(task.Title) == "" {
		return domain.NewError(domain.ErrCodeInvalid, "title is required")
	}
	if !domain.ValidStatus(task.Status) {
		return domain.ErrInvalidStatus
	}
	if !domain.ValidPriority(task.Priority) {
		return domain.ErrInvalidPriority
	}
	if task.Subtasks == nil {
		task.Subtasks = []string{}
	}
	if task.Members == nil {
		task.Members = []domain.Member{}
	}
	return nil
}
