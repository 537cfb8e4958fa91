package domain

import "time"

// Identity is the authenticated person as reported by the identity provider.
type Identity struct {
	Email       string `json:"email"`
	DisplayName string `json:"display_name,omitempty"`
}

// Session represents a signed-in identity cached in Redis.
type Session struct {
	ID          string    `json:"id"`
	Email       string    `json:"email"`
	DisplayName string    `json:"display_name,omitempty"`
	ExpiresAt   time.Time `json:"expires_at"`
	CreatedAt   time.Time `json:"created_at"`
}

func (s *Session) IsExpired(reference time.Time) bool {
	if s == nil {
		return true
	}
	if reference.IsZero() {
		reference = time.Now()
	}
	return !s.ExpiresAt.After(reference)
}

// Identity returns the identity the session was issued for.
func (s *Session) Identity() Identity {
	if s == nil {
		return Identity{}
	}
	return Identity{Email: s.Email, DisplayName: s.DisplayName}
}
