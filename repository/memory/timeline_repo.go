package memory

import (
	"context"
	"sync"

	"github.com/fastygo/taskboard/domain"
	"github.com/fastygo/taskboard/repository"
)

type timelineRepository struct {
	mu      sync.RWMutex
	nextID  int64
	entries []domain.TimelineEntry
}

func NewTimelineRepository() repository.TimelineRepository {
	return &timelineRepository{nextID: 1}
}

func (r *timelineRepository) Append(_ context.Context, entry *domain.TimelineEntry) (*domain.TimelineEntry, error) {
	if entry == nil {
		return nil, domain.ErrInvalidPayload
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	stored := *entry
	stored.ID = r.nextID
	r.nextID++
	r.entries = append(r.entries, stored)
	return &stored, nil
}

func (r *timelineRepository) ListByTask(_ context.Context, taskID int64) ([]domain.TimelineEntry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]domain.TimelineEntry, 0)
	for _, e := range r.entries {
		if e.TaskID == taskID {
			out = append(out, e)
		}
	}
	return out, nil
}
