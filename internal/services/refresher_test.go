package services

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fastygo/taskboard/domain"
	"github.com/fastygo/taskboard/internal/infrastructure/snapshot"
	"github.com/fastygo/taskboard/usecase/board"
)

type stubLister struct {
	mu    sync.Mutex
	tasks []domain.Task
	err   error
	calls int
}

func (s *stubLister) ListTasks(context.Context) ([]domain.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	return s.tasks, s.err
}

func (s *stubLister) callCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

type memorySnapshots struct {
	mu    sync.Mutex
	saved map[string]snapshot.TaskSnapshot
}

func (m *memorySnapshots) SaveTasks(snap snapshot.TaskSnapshot) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.saved == nil {
		m.saved = map[string]snapshot.TaskSnapshot{}
	}
	m.saved[snap.Page] = snap
	return nil
}

func TestRefreshLoadsEveryPage(t *testing.T) {
	lister := &stubLister{tasks: []domain.Task{
		{ID: 1, Status: domain.StatusCompleted},
		{ID: 2, Status: domain.StatusPending},
	}}
	snaps := &memorySnapshots{}
	var views []board.View

	r, err := NewRefresher(lister, snaps, nil, RefresherConfig{
		Pages: []board.Page{board.PageCompleted, board.PageDashboard},
	}, func(v board.View) { views = append(views, v) })
	require.NoError(t, err)

	require.NoError(t, r.Refresh(context.Background()))
	assert.Equal(t, 2, lister.callCount(), "pages fetch independently")

	require.Len(t, views, 2)
	assert.Equal(t, board.PageCompleted, views[0].Page)
	assert.Len(t, views[0].Tasks, 1)
	require.NotNil(t, views[1].Stats)
	assert.Equal(t, 1, views[1].Stats.Pending)

	assert.Len(t, snaps.saved["completed"].Tasks, 1)
	assert.Len(t, snaps.saved["dashboard"].Tasks, 2)
}

func TestRefreshReportsFailures(t *testing.T) {
	boom := errors.New("unreachable")
	lister := &stubLister{err: boom}
	r, err := NewRefresher(lister, nil, nil, RefresherConfig{Pages: []board.Page{board.PageTasks, board.PageCompleted}}, nil)
	require.NoError(t, err)

	err = r.Refresh(context.Background())
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 2, lister.callCount(), "a failing page does not stop the next")
}

func TestRefresherSchedule(t *testing.T) {
	_, err := NewRefresher(&stubLister{}, nil, nil, RefresherConfig{Schedule: "not a schedule"}, nil)
	assert.Error(t, err)

	lister := &stubLister{}
	r, err := NewRefresher(lister, nil, nil, RefresherConfig{Schedule: "@every 1s"}, nil)
	require.NoError(t, err)
	r.Start()
	require.Eventually(t, func() bool { return lister.callCount() > 0 }, 3*time.Second, 50*time.Millisecond)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	r.Stop(ctx)
}
