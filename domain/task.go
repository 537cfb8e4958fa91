package domain

import (
	"bytes"
	"encoding/json"
	"strings"
	"time"
)

// Priority levels accepted for a task. An empty priority means "unset".
const (
	PriorityLow    = "Low"
	PriorityMedium = "Medium"
	PriorityHigh   = "High"
)

// Status values a task moves through.
const (
	StatusPending    = "Pending"
	StatusInProgress = "In Progress"
	StatusCompleted  = "Completed"
)

// DeadlineLayout is the calendar-date layout produced by date inputs.
const DeadlineLayout = "2006-01-02"

// Priorities lists the priority levels in display order.
var Priorities = []string{PriorityLow, PriorityMedium, PriorityHigh}

// Statuses lists the task statuses in display order.
var Statuses = []string{StatusPending, StatusInProgress, StatusCompleted}

// Task represents a unit of work tracked by the Task Store.
type Task struct {
	ID          int64    `json:"id"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Priority    string   `json:"priority"`
	Deadline    string   `json:"deadline"`
	Duration    string   `json:"duration"`
	Status      string   `json:"status"`
	Subtasks    []string `json:"subtasks"`
	Members     []Member `json:"members"`
}

// Member is a person assigned to a task.
type Member struct {
	Email string `json:"email"`
	Name  string `json:"name,omitempty"`
	Role  string `json:"role,omitempty"`
}

// UnmarshalJSON accepts either a member object or a bare email string.
func (m *Member) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var email string
		if err := json.Unmarshal(data, &email); err != nil {
			return err
		}
		*m = Member{Email: email}
		return nil
	}
	type plain Member
	var decoded plain
	if err := json.Unmarshal(data, &decoded); err != nil {
		return err
	}
	*m = Member(decoded)
	return nil
}

func (t *Task) IsCompleted() bool {
	return t != nil && t.Status == StatusCompleted
}

// MemberEmails projects the assigned members onto their email addresses.
func (t *Task) MemberEmails() []string {
	if t == nil || len(t.Members) == 0 {
		return []string{}
	}
	emails := make([]string, 0, len(t.Members))
	for _, m := range t.Members {
		if m.Email == "" {
			continue
		}
		emails = append(emails, m.Email)
	}
	return emails
}

// DeadlineTime parses the deadline as a calendar date (UTC midnight) or an RFC 3339 timestamp.
func (t *Task) DeadlineTime() (time.Time, bool) {
	if t == nil {
		return time.Time{}, false
	}
	value := strings.TrimSpace(t.Deadline)
	if value == "" {
		return time.Time{}, false
	}
	if parsed, err := time.Parse(DeadlineLayout, value); err == nil {
		return parsed, true
	}
	if parsed, err := time.Parse(time.RFC3339, value); err == nil {
		return parsed, true
	}
	return time.Time{}, false
}

// DaysRemaining returns ceil((deadline - now) / 24h). ok is false when the deadline does not parse.
func (t *Task) DaysRemaining(now time.Time) (days int, ok bool) {
	deadline, ok := t.DeadlineTime()
	if !ok {
		return 0, false
	}
	// Unix seconds, since time.Duration saturates for deadlines centuries away.
	diff := deadline.Unix() - now.Unix()
	if diff > 0 {
		return int((diff + secondsPerDay - 1) / secondsPerDay), true
	}
	return int(diff / secondsPerDay), true
}

const secondsPerDay = 24 * 60 * 60

// Clone returns a deep copy so callers can hand tasks out without sharing slices.
func (t Task) Clone() Task {
	out := t
	if t.Subtasks != nil {
		out.Subtasks = make([]string, len(t.Subtasks))
		copy(out.Subtasks, t.Subtasks)
	}
	if t.Members != nil {
		out.Members = make([]Member, len(t.Members))
		copy(out.Members, t.Members)
	}
	return out
}

// ValidPriority reports whether p is empty or one of the known priority levels.
func ValidPriority(p string) bool {
	if p == "" {
		return true
	}
	for _, known := range Priorities {
		if p == known {
			return true
		}
	}
	return false
}

// ValidStatus reports whether s is empty or one of the known statuses.
func ValidStatus(s string) bool {
	if s == "" {
		return true
	}
	for _, known := range Statuses {
		if s == known {
			return true
		}
	}
	return false
}
