package board

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fastygo/taskboard/domain"
)

type listerFunc func(ctx context.Context) ([]domain.Task, error)

func (f listerFunc) ListTasks(ctx context.Context) ([]domain.Task, error) { return f(ctx) }

func sampleTasks() []domain.Task {
	return []domain.Task{
		{ID: 1, Status: domain.StatusCompleted},
		{ID: 2, Status: domain.StatusInProgress},
		{ID: 3, Status: domain.StatusPending},
		{ID: 4, Status: domain.StatusCompleted},
		{ID: 5, Status: ""},
	}
}

func TestPageProjections(t *testing.T) {
	tasks := sampleTasks()

	assert.Equal(t, []int64{1, 4}, ids(Completed(tasks)))
	assert.Equal(t, []int64{2, 3}, ids(InProgress(tasks)))
	assert.Empty(t, Completed(nil))
}

func TestDashboard(t *testing.T) {
	stats := Dashboard(sampleTasks())

	assert.Equal(t, 5, stats.Total)
	assert.Equal(t, 2, stats.Completed)
	assert.Equal(t, 1, stats.InProgress)
	assert.Equal(t, 1, stats.Pending)
	assert.Equal(t, []ChartPoint{
		{Label: domain.StatusCompleted, Value: 2},
		{Label: domain.StatusInProgress, Value: 1},
		{Label: domain.StatusPending, Value: 1},
	}, stats.Series)

	empty := Dashboard(nil)
	assert.Equal(t, 0, empty.Total)
	assert.Len(t, empty.Series, 3)
}

func TestLoadView(t *testing.T) {
	calls := 0
	lister := listerFunc(func(context.Context) ([]domain.Task, error) {
		calls++
		return sampleTasks(), nil
	})

	view, err := LoadView(context.Background(), lister, PageCompleted)
	require.NoError(t, err)
	assert.Equal(t, []int64{1, 4}, ids(view.Tasks))
	assert.Nil(t, view.Stats)

	view, err = LoadView(context.Background(), lister, PageDashboard)
	require.NoError(t, err)
	require.NotNil(t, view.Stats)
	assert.Equal(t, 2, view.Stats.Completed)
	assert.Equal(t, 2, calls, "every page fetches on its own")

	_, err = LoadView(context.Background(), lister, PageTeam)
	assert.True(t, domain.IsDomainError(err, domain.ErrCodeInvalid))

	failing := listerFunc(func(context.Context) ([]domain.Task, error) { return nil, errors.New("down") })
	_, err = LoadView(context.Background(), failing, PageTasks)
	assert.EqualError(t, err, "down")
}
