package transport

import (
	"github.com/fastygo/taskboard/domain"
)

// TaskRequest is the body of task create and update calls. Members arrive as bare emails;
// member objects are accepted too.
type TaskRequest struct {
	Title       string          `json:"title"`
	Description string          `json:"description"`
	Priority    string          `json:"priority"`
	Deadline    string          `json:"deadline"`
	Duration    string          `json:"duration"`
	Status      string          `json:"status"`
	Subtasks    []string        `json:"subtasks"`
	Members     []domain.Member `json:"members"`
}

// ToTask converts the request into a domain task without an id.
func (r TaskRequest) ToTask() *domain.Task {
	task := &domain.Task{
		Title:       r.Title,
		Description: r.Description,
		Priority:    r.Priority,
		Deadline:    r.Deadline,
		Duration:    r.Duration,
		Status:      r.Status,
		Subtasks:    r.Subtasks,
		Members:     make([]domain.Member, 0, len(r.Members)),
	}
	if task.Subtasks == nil {
		task.Subtasks = []string{}
	}
	for _, m := range r.Members {
		if m.Email != "" {
			task.Members = append(task.Members, domain.Member{Email: m.Email, Name: m.Name})
		}
	}
	return task
}

// NewTaskRequest renders a task in the request shape: members as bare emails.
func NewTaskRequest(task *domain.Task) TaskWireRequest {
	subtasks := task.Subtasks
	if subtasks == nil {
		subtasks = []string{}
	}
	return TaskWireRequest{
		Title:       task.Title,
		Description: task.Description,
		Priority:    task.Priority,
		Deadline:    task.Deadline,
		Duration:    task.Duration,
		Status:      task.Status,
		Subtasks:    subtasks,
		Members:     task.MemberEmails(),
	}
}

// TaskWireRequest is TaskRequest as written by clients.
type TaskWireRequest struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Priority    string   `json:"priority"`
	Deadline    string   `json:"deadline"`
	Duration    string   `json:"duration"`
	Status      string   `json:"status"`
	Subtasks    []string `json:"subtasks"`
	Members     []string `json:"members"`
}

type TimelineRequest struct {
	TaskID      int64  `json:"task_id"`
	UpdateTime  string `json:"update_time"`
	Description string `json:"description"`
}

type TeamCreateRequest struct {
	TeamName string             `json:"teamName"`
	Members  []domain.NewMember `json:"members"`
}

type SignInRequest struct {
	IDToken string `json:"id_token"`
}
