package board

import (
	"testing"
	"time"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"

	"github.com/fastygo/taskboard/domain"
)

var refNow = time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)

func deadlineIn(days int) string {
	return refNow.AddDate(0, 0, days).Format(domain.DeadlineLayout)
}

func ids(tasks []domain.Task) []int64 {
	out := make([]int64, 0, len(tasks))
	for _, t := range tasks {
		out = append(out, t.ID)
	}
	return out
}

func TestFilterAndSort(t *testing.T) {
	tasks := []domain.Task{
		{ID: 1, Priority: domain.PriorityHigh, Deadline: deadlineIn(5)},
		{ID: 2, Priority: domain.PriorityLow, Deadline: deadlineIn(1)},
		{ID: 3, Priority: domain.PriorityHigh, Deadline: "not a date"},
		{ID: 4, Priority: domain.PriorityHigh, Deadline: deadlineIn(10)},
		{ID: 5, Priority: domain.PriorityMedium, Deadline: ""},
		{ID: 6, Priority: domain.PriorityHigh, Deadline: deadlineIn(5)},
	}

	tests := []struct {
		name     string
		priority string
		order    string
		want     []int64
	}{
		{"all by most days left", "", SortMore, []int64{4, 1, 6, 2, 3, 5}},
		{"all by fewest days left", "", SortLess, []int64{2, 1, 6, 4, 3, 5}},
		{"high only, more", domain.PriorityHigh, SortMore, []int64{4, 1, 6, 3}},
		{"high only, less", domain.PriorityHigh, SortLess, []int64{1, 6, 4, 3}},
		{"unknown order behaves as less", "", "sideways", []int64{2, 1, 6, 4, 3, 5}},
		{"empty order behaves as less", "", "", []int64{2, 1, 6, 4, 3, 5}},
		{"no match", "Urgent", SortMore, []int64{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FilterAndSort(tasks, tt.priority, tt.order, refNow)
			assert.Equal(t, tt.want, ids(got))
		})
	}
}

func TestNormalizeSortOrder(t *testing.T) {
	assert.Equal(t, SortMore, NormalizeSortOrder(SortMore))
	assert.Equal(t, SortLess, NormalizeSortOrder(SortLess))
	assert.Equal(t, SortLess, NormalizeSortOrder("sideways"))
}

func TestFilterAndSortFarFutureDeadlines(t *testing.T) {
	tasks := []domain.Task{
		{ID: 1, Deadline: "2400-01-01"},
		{ID: 2, Deadline: "9999-12-31"},
		{ID: 3, Deadline: deadlineIn(3)},
	}
	assert.Equal(t, []int64{2, 1, 3}, ids(FilterAndSort(tasks, "", SortMore, refNow)))
	assert.Equal(t, []int64{3, 1, 2}, ids(FilterAndSort(tasks, "", SortLess, refNow)))
}

func TestFilterAndSortDoesNotMutateInput(t *testing.T) {
	tasks := []domain.Task{
		{ID: 1, Deadline: deadlineIn(1), Subtasks: []string{"a"}},
		{ID: 2, Deadline: deadlineIn(2)},
	}
	out := FilterAndSort(tasks, "", SortMore, refNow)
	out[1].Subtasks[0] = "changed"

	assert.Equal(t, []int64{1, 2}, ids(tasks))
	assert.Equal(t, "a", tasks[0].Subtasks[0])
}

func genTasks(offsets []int, prios []int) []domain.Task {
	levels := append([]string{""}, domain.Priorities...)
	tasks := make([]domain.Task, 0, len(offsets))
	for i, off := range offsets {
		deadline := deadlineIn(off)
		if off%7 == 0 {
			deadline = "tbd"
		}
		prio := ""
		if len(prios) > 0 {
			prio = levels[prios[i%len(prios)]]
		}
		tasks = append(tasks, domain.Task{ID: int64(i + 1), Priority: prio, Deadline: deadline})
	}
	return tasks
}

func TestFilterAndSortProperties(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 150
	properties := gopter.NewProperties(parameters)

	offsets := gen.SliceOf(gen.IntRange(-40, 40))
	prios := gen.SliceOf(gen.IntRange(0, 3))
	priority := gen.OneConstOf("", domain.PriorityLow, domain.PriorityMedium, domain.PriorityHigh)

	properties.Property("output holds exactly the tasks with the filtered priority", prop.ForAll(
		func(offs []int, ps []int, filter string) bool {
			tasks := genTasks(offs, ps)
			out := FilterAndSort(tasks, filter, SortMore, refNow)
			want := 0
			for _, task := range tasks {
				if filter == "" || task.Priority == filter {
					want++
				}
			}
			if len(out) != want {
				return false
			}
			for _, task := range out {
				if filter != "" && task.Priority != filter {
					return false
				}
			}
			return true
		},
		offsets, prios, priority,
	))

	properties.Property("sorting is idempotent", prop.ForAll(
		func(offs []int, ps []int) bool {
			tasks := genTasks(offs, ps)
			for _, order := range []string{SortMore, SortLess} {
				once := FilterAndSort(tasks, "", order, refNow)
				twice := FilterAndSort(once, "", order, refNow)
				if !assert.ObjectsAreEqual(ids(once), ids(twice)) {
					return false
				}
			}
			return true
		},
		offsets, prios,
	))

	properties.Property("less reverses more for distinct valid deadlines", prop.ForAll(
		func(offs []int) bool {
			seen := map[int]bool{}
			distinct := make([]int, 0, len(offs))
			for _, off := range offs {
				if off%7 == 0 || seen[off] {
					continue
				}
				seen[off] = true
				distinct = append(distinct, off)
			}
			tasks := genTasks(distinct, nil)
			more := ids(FilterAndSort(tasks, "", SortMore, refNow))
			less := ids(FilterAndSort(tasks, "", SortLess, refNow))
			for i := range more {
				if more[i] != less[len(less)-1-i] {
					return false
				}
			}
			return true
		},
		offsets,
	))

	properties.Property("unparseable deadlines come last in source order", prop.ForAll(
		func(offs []int, ps []int, descending bool) bool {
			tasks := genTasks(offs, ps)
			order := SortLess
			if descending {
				order = SortMore
			}
			out := FilterAndSort(tasks, "", order, refNow)
			invalidSeen := false
			var lastInvalid int64
			for _, task := range out {
				_, ok := task.DaysRemaining(refNow)
				if !ok {
					if task.ID < lastInvalid {
						return false
					}
					lastInvalid = task.ID
					invalidSeen = true
					continue
				}
				if invalidSeen {
					return false
				}
			}
			return true
		},
		offsets, prios, gen.Bool(),
	))

	properties.TestingRun(t)
}
