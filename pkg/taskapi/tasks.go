package taskapi

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/fastygo/taskboard/api/transport"
	"github.com/fastygo/taskboard/domain"
)

// ListTasks fetches the full collection.
func (c *Client) ListTasks(ctx context.Context) ([]domain.Task, error) {
	return c.listTasks(ctx, "/tasks/")
}

// ListByStatus fetches the tasks in one status.
func (c *Client) ListByStatus(ctx context.Context, status string) ([]domain.Task, error) {
	return c.listTasks(ctx, "/tasks/status/"+url.PathEscape(status)+"/")
}

// ListActive fetches every task that is not completed.
func (c *Client) ListActive(ctx context.Context) ([]domain.Task, error) {
	return c.listTasks(ctx, "/tasks/active/")
}

func (c *Client) listTasks(ctx context.Context, path string) ([]domain.Task, error) {
	var tasks []domain.Task
	if err := c.do(ctx, http.MethodGet, path, nil, http.StatusOK, decodeArray(&tasks)); err != nil {
		return nil, err
	}
	if tasks == nil {
		tasks = []domain.Task{}
	}
	return tasks, nil
}

func (c *Client) GetTask(ctx context.Context, id int64) (*domain.Task, error) {
	var task domain.Task
	if err := c.do(ctx, http.MethodGet, taskPath(id), nil, http.StatusOK, decodeObject(&task)); err != nil {
		return nil, err
	}
	return &task, nil
}

// CreateTask posts task without an id and returns the stored record.
func (c *Client) CreateTask(ctx context.Context, task *domain.Task) (*domain.Task, error) {
	var created domain.Task
	if err := c.do(ctx, http.MethodPost, "/tasks/", transport.NewTaskRequest(task), http.StatusCreated, decodeObject(&created)); err != nil {
		return nil, err
	}
	return &created, nil
}

// UpdateTask replaces task id with task.
func (c *Client) UpdateTask(ctx context.Context, id int64, task *domain.Task) (*domain.Task, error) {
	if id == 0 {
		return nil, domain.ErrMissingTaskID
	}
	var updated domain.Task
	if err := c.do(ctx, http.MethodPut, taskPath(id), transport.NewTaskRequest(task), http.StatusOK, decodeObject(&updated)); err != nil {
		return nil, err
	}
	return &updated, nil
}

func (c *Client) DeleteTask(ctx context.Context, id int64) error {
	if id == 0 {
		return domain.ErrMissingTaskID
	}
	return c.do(ctx, http.MethodDelete, taskPath(id), nil, http.StatusNoContent, nil)
}

// AddTimeline appends a progress note to a task.
func (c *Client) AddTimeline(ctx context.Context, entry domain.TimelineEntry) (*domain.TimelineEntry, error) {
	req := transport.TimelineRequest{
		TaskID:      entry.TaskID,
		UpdateTime:  entry.UpdateTime,
		Description: entry.Description,
	}
	var created domain.TimelineEntry
	if err := c.do(ctx, http.MethodPost, "/timeline/", req, http.StatusCreated, decodeObject(&created)); err != nil {
		return nil, err
	}
	return &created, nil
}

func (c *Client) ListTimeline(ctx context.Context, taskID int64) ([]domain.TimelineEntry, error) {
	var entries []domain.TimelineEntry
	if err := c.do(ctx, http.MethodGet, taskPath(taskID)+"timeline/", nil, http.StatusOK, decodeArray(&entries)); err != nil {
		return nil, err
	}
	if entries == nil {
		entries = []domain.TimelineEntry{}
	}
	return entries, nil
}

func taskPath(id int64) string {
	return fmt.Sprintf("/tasks/%d/", id)
}
