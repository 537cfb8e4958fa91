package monitor

import "time"

// Status is the last observed health of every registered dependency.
type Status struct {
	Dependencies map[string]bool `json:"dependencies"`
	LastCheck    time.Time       `json:"last_check"`
}

// Healthy reports whether every dependency answered its last probe.
func (s Status) Healthy() bool {
	for _, ok := range s.Dependencies {
		if !ok {
			return false
		}
	}
	return true
}
