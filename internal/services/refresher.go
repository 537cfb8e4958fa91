package services

import (
	"context"
	"errors"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/fastygo/taskboard/internal/infrastructure/snapshot"
	"github.com/fastygo/taskboard/usecase/board"
)

// SnapshotWriter persists the last view of a page.
type SnapshotWriter interface {
	SaveTasks(snap snapshot.TaskSnapshot) error
}

// RefresherConfig controls which pages are reloaded and how often.
type RefresherConfig struct {
	// Schedule is a cron spec; descriptors such as "@every 30s" are accepted.
	Schedule string
	Pages    []board.Page
	Timeout  time.Duration
}

// Refresher reloads pages from the Task Store on a schedule, records a snapshot of each
// and hands the views to OnView. Each page performs its own fetch.
type Refresher struct {
	lister    board.TaskLister
	snapshots SnapshotWriter
	logger    *zap.Logger
	cron      *cron.Cron
	cfg       RefresherConfig
	onView    func(board.View)
	now       func() time.Time
}

func NewRefresher(
	lister board.TaskLister,
	snapshots SnapshotWriter,
	logger *zap.Logger,
	cfg RefresherConfig,
	onView func(board.View),
) (*Refresher, error) {
	if cfg.Schedule == "" {
		cfg.Schedule = "@every 30s"
	}
	if len(cfg.Pages) == 0 {
		cfg.Pages = []board.Page{board.PageTasks}
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	r := &Refresher{
		lister:    lister,
		snapshots: snapshots,
		logger:    logger,
		cron:      cron.New(),
		cfg:       cfg,
		onView:    onView,
		now:       time.Now,
	}

	if _, err := r.cron.AddFunc(cfg.Schedule, func() {
		ctx, cancel := context.WithTimeout(context.Background(), cfg.Timeout)
		defer cancel()
		if err := r.Refresh(ctx); err != nil {
			r.logger.Warn("scheduled refresh failed", zap.Error(err))
		}
	}); err != nil {
		return nil, err
	}
	return r, nil
}

// Start launches the scheduler.
func (r *Refresher) Start() {
	r.cron.Start()
	r.logger.Info("refresher started", zap.String("schedule", r.cfg.Schedule))
}

// Stop waits for a running refresh to finish or ctx to expire.
func (r *Refresher) Stop(ctx context.Context) {
	stopCtx := r.cron.Stop()
	select {
	case <-stopCtx.Done():
	case <-ctx.Done():
	}
	r.logger.Info("refresher stopped")
}

// Refresh reloads every configured page once. A failing page does not stop the others.
func (r *Refresher) Refresh(ctx context.Context) error {
	var result error
	for _, page := range r.cfg.Pages {
		view, err := board.LoadView(ctx, r.lister, page)
		if err != nil {
			r.logger.Warn("refresh page failed", zap.String("page", string(page)), zap.Error(err))
			result = errors.Join(result, err)
			continue
		}
		if r.snapshots != nil {
			snap := snapshot.TaskSnapshot{Page: string(page), Tasks: view.Tasks, FetchedAt: r.now()}
			if err := r.snapshots.SaveTasks(snap); err != nil {
				r.logger.Warn("save snapshot failed", zap.String("page", string(page)), zap.Error(err))
			}
		}
		if r.onView != nil {
			r.onView(view)
		}
	}
	return result
}
