package board

import (
	"strings"

	"github.com/fastygo/taskboard/domain"
)

// FormState is the editable copy of a task. Members are plain emails.
type FormState struct {
	Title       string
	Description string
	Priority    string
	Deadline    string
	Duration    string
	Status      string
	Subtasks    []string
	Members     []string
}

// FormFromTask copies a task into a form, projecting members onto their emails.
func FormFromTask(task domain.Task) FormState {
	return FormState{
		Title:       task.Title,
		Description: task.Description,
		Priority:    task.Priority,
		Deadline:    task.Deadline,
		Duration:    task.Duration,
		Status:      task.Status,
		Subtasks:    append([]string{}, task.Subtasks...),
		Members:     task.MemberEmails(),
	}
}

func (f FormState) Clone() FormState {
	out := f
	out.Subtasks = append([]string(nil), f.Subtasks...)
	out.Members = append([]string(nil), f.Members...)
	return out
}

// SplitList splits a comma-separated input, trimming entries and dropping empty ones.
func SplitList(input string) []string {
	out := []string{}
	for _, part := range strings.Split(input, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// JoinList is the inverse of SplitList for display in a single input.
func JoinList(items []string) string {
	return strings.Join(items, ", ")
}

// Validate checks the form before anything is sent to the Task Store.
func (f FormState) Validate() error {
	required := []struct {
		field string
		value string
	}{
		{"title", f.Title},
		{"description", f.Description},
		{"deadline", f.Deadline},
		{"duration", f.Duration},
	}
	for _, r := range required {
		if strings.TrimSpace(r.value) == "" {
			return domain.NewError(domain.ErrCodeInvalid, r.field+" is required")
		}
	}
	if !domain.ValidPriority(f.Priority) {
		return domain.ErrInvalidPriority
	}
	if !domain.ValidStatus(f.Status) {
		return domain.ErrInvalidStatus
	}
	return nil
}

// ToTask builds the request record for the Task Store. id 0 means "not yet assigned".
func (f FormState) ToTask(id int64) *domain.Task {
	task := &domain.Task{
		ID:          id,
		Title:       strings.TrimSpace(f.Title),
		Description: strings.TrimSpace(f.Description),
		Priority:    f.Priority,
		Deadline:    strings.TrimSpace(f.Deadline),
		Duration:    strings.TrimSpace(f.Duration),
		Status:      f.Status,
		Subtasks:    normalize(f.Subtasks),
		Members:     []domain.Member{},
	}
	for _, email := range normalize(f.Members) {
		task.Members = append(task.Members, domain.Member{Email: email})
	}
	return task
}

func normalize(items []string) []string {
	out := make([]string, 0, len(items))
	for _, item := range items {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}
