package repository

import (
	"context"

	"github.com/fastygo/taskboard/domain"
)

// TeamSnapshot is one delivery of the full team tree from a live subscription.
type TeamSnapshot struct {
	Teams []domain.Team
	Err   error
}

// TeamRepository persists team rosters. Teams are written once and never updated.
type TeamRepository interface {
	Create(ctx context.Context, team *domain.Team) error
	List(ctx context.Context) ([]domain.Team, error)
	// Watch delivers the full tree immediately and again after every change.
	// The channel is closed once ctx is done; cancelling ctx unsubscribes.
	Watch(ctx context.Context) (<-chan TeamSnapshot, error)
}
