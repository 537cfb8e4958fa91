package board

import (
	"slices"
	"time"

	"github.com/fastygo/taskboard/domain"
)

// Sort orders accepted by FilterAndSort.
const (
	SortMore = "more"
	SortLess = "less"
)

// FilterAndSort keeps tasks with the given priority (all when empty) and orders them by days
// remaining: "more" descending, anything else ascending. Tasks whose deadline does not parse
// go last in both orders. Ties keep their input order.
func FilterAndSort(tasks []domain.Task, priority, order string, now time.Time) []domain.Task {
	type keyed struct {
		task  domain.Task
		days  int
		valid bool
	}

	items := make([]keyed, 0, len(tasks))
	for i := range tasks {
		if priority != "" && tasks[i].Priority != priority {
			continue
		}
		days, ok := tasks[i].DaysRemaining(now)
		items = append(items, keyed{task: tasks[i].Clone(), days: days, valid: ok})
	}

	ascending := order != SortMore
	slices.SortStableFunc(items, func(a, b keyed) int {
		switch {
		case a.valid && !b.valid:
			return -1
		case !a.valid && b.valid:
			return 1
		case !a.valid && !b.valid:
			return 0
		}
		if ascending {
			return a.days - b.days
		}
		return b.days - a.days
	})

	out := make([]domain.Task, len(items))
	for i := range items {
		out[i] = items[i].task
	}
	return out
}

// NormalizeSortOrder maps unknown orders to SortLess, the order FilterAndSort applies to them.
func NormalizeSortOrder(order string) string {
	if order == SortMore {
		return SortMore
	}
	return SortLess
}
