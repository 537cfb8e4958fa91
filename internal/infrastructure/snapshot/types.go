package snapshot

import (
	"time"

	"github.com/fastygo/taskboard/domain"
)

const (
	bucketTasks   = "tasks"
	bucketSession = "session"

	sessionKey = "current"
)

// TaskSnapshot is the last task collection a page fetched from the Task Store.
type TaskSnapshot struct {
	Page      string        `json:"page"`
	Tasks     []domain.Task `json:"tasks"`
	FetchedAt time.Time     `json:"fetched_at"`
}

// Age reports how stale the snapshot is relative to now.
func (s TaskSnapshot) Age(now time.Time) time.Duration {
	if s.FetchedAt.IsZero() {
		return 0
	}
	return now.Sub(s.FetchedAt)
}
