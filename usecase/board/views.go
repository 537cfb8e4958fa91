package board

import (
	"context"

	"github.com/fastygo/taskboard/domain"
)

// Page names a view of the navigation shell.
type Page string

const (
	PageTasks      Page = "tasks"
	PageCompleted  Page = "completed"
	PageInProgress Page = "in-progress"
	PageDashboard  Page = "dashboard"
	PageTeam       Page = "team"
)

// Completed keeps the tasks whose status is Completed.
func Completed(tasks []domain.Task) []domain.Task {
	return keep(tasks, func(t *domain.Task) bool { return t.Status == domain.StatusCompleted })
}

// InProgress keeps the tasks still open: In Progress or Pending.
func InProgress(tasks []domain.Task) []domain.Task {
	return keep(tasks, func(t *domain.Task) bool {
		return t.Status == domain.StatusInProgress || t.Status == domain.StatusPending
	})
}

// ChartPoint is one bar of the dashboard status chart.
type ChartPoint struct {
	Label string `json:"label"`
	Value int    `json:"value"`
}

// DashboardStats summarises the collection by status.
type DashboardStats struct {
	Total      int          `json:"total"`
	Completed  int          `json:"completed"`
	InProgress int          `json:"in_progress"`
	Pending    int          `json:"pending"`
	Series     []ChartPoint `json:"series"`
}

func Dashboard(tasks []domain.Task) DashboardStats {
	stats := DashboardStats{Total: len(tasks)}
	for i := range tasks {
		switch tasks[i].Status {
		case domain.StatusCompleted:
			stats.Completed++
		case domain.StatusInProgress:
			stats.InProgress++
		case domain.StatusPending:
			stats.Pending++
		}
	}
	stats.Series = []ChartPoint{
		{Label: domain.StatusCompleted, Value: stats.Completed},
		{Label: domain.StatusInProgress, Value: stats.InProgress},
		{Label: domain.StatusPending, Value: stats.Pending},
	}
	return stats
}

// TaskLister is the read side of TaskGateway.
type TaskLister interface {
	ListTasks(ctx context.Context) ([]domain.Task, error)
}

// View is what a task page renders after its own fetch.
type View struct {
	Page  Page            `json:"page"`
	Tasks []domain.Task   `json:"tasks"`
	Stats *DashboardStats `json:"stats,omitempty"`
}

// LoadView fetches the full collection and projects it for page. Pages share no cache.
func LoadView(ctx context.Context, lister TaskLister, page Page) (View, error) {
	tasks, err := lister.ListTasks(ctx)
	if err != nil {
		return View{}, err
	}
	return Project(page, tasks)
}

// Project derives the view of page from an already fetched collection.
func Project(page Page, tasks []domain.Task) (View, error) {
	switch page {
	case PageTasks:
		return View{Page: page, Tasks: tasks}, nil
	case PageCompleted:
		return View{Page: page, Tasks: Completed(tasks)}, nil
	case PageInProgress:
		return View{Page: page, Tasks: InProgress(tasks)}, nil
	case PageDashboard:
		stats := Dashboard(tasks)
		return View{Page: page, Tasks: tasks, Stats: &stats}, nil
	default:
		return View{}, domain.NewError(domain.ErrCodeInvalid, "unknown page "+string(page))
	}
}

func keep(tasks []domain.Task, pred func(*domain.Task) bool) []domain.Task {
	out := make([]domain.Task, 0, len(tasks))
	for i := range tasks {
		if pred(&tasks[i]) {
			out = append(out, tasks[i].Clone())
		}
	}
	return out
}
