package domain

// TimelineEntry records a progress note against a task.
type TimelineEntry struct {
	ID          int64  `json:"id"`
	TaskID      int64  `json:"task_id"`
	UpdateTime  string `json:"update_time"`
	Description string `json:"description"`
}
