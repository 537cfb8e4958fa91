package board

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/fastygo/taskboard/domain"
)

func TestSplitList(t *testing.T) {
	assert.Equal(t, []string{"a", "b c", "d"}, SplitList(" a, b c ,, d ,"))
	assert.Equal(t, []string{}, SplitList(""))
	assert.Equal(t, "a, b", JoinList([]string{"a", "b"}))
}

func TestFormValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*FormState)
		want   error
	}{
		{"valid", func(*FormState) {}, nil},
		{"unset priority and status", func(f *FormState) { f.Priority, f.Status = "", "" }, nil},
		{"blank title", func(f *FormState) { f.Title = " " }, domain.NewError(domain.ErrCodeInvalid, "title is required")},
		{"missing description", func(f *FormState) { f.Description = "" }, domain.NewError(domain.ErrCodeInvalid, "description is required")},
		{"missing deadline", func(f *FormState) { f.Deadline = "" }, domain.NewError(domain.ErrCodeInvalid, "deadline is required")},
		{"missing duration", func(f *FormState) { f.Duration = "" }, domain.NewError(domain.ErrCodeInvalid, "duration is required")},
		{"unknown priority", func(f *FormState) { f.Priority = "Urgent" }, domain.ErrInvalidPriority},
		{"unknown status", func(f *FormState) { f.Status = "Done" }, domain.ErrInvalidStatus},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			form := validForm()
			tt.mutate(&form)
			err := form.Validate()
			if tt.want == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestFormRoundTripThroughTask(t *testing.T) {
	task := domain.Task{
		ID:       3,
		Title:    "Ship",
		Priority: domain.PriorityHigh,
		Subtasks: []string{"build"},
		Members:  []domain.Member{{Email: "a@example.com", Name: "A"}},
	}
	form := FormFromTask(task)
	assert.Equal(t, []string{"a@example.com"}, form.Members)

	form.Title = "  Ship it  "
	out := form.ToTask(3)
	assert.Equal(t, int64(3), out.ID)
	assert.Equal(t, "Ship it", out.Title)
	assert.Equal(t, []string{"build"}, out.Subtasks)
	assert.Equal(t, []domain.Member{{Email: "a@example.com"}}, out.Members)

	clone := form.Clone()
	clone.Members[0] = "other@example.com"
	assert.Equal(t, "a@example.com", form.Members[0])
}
