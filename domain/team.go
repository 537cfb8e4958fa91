package domain

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

const (
	// RoleAdmin is always granted to the creator of a team.
	RoleAdmin = "Admin"
	// RoleDeveloper is the default role for added members.
	RoleDeveloper = "Developer"

	anonymousName = "Anonymous"
)

// Team is a named roster persisted in the team document tree under teams/{id}.
type Team struct {
	ID        string                `json:"id"`
	TeamName  string                `json:"teamName"`
	CreatedBy string                `json:"createdBy"`
	Members   map[string]TeamMember `json:"members"`
}

// TeamMember is a roster entry keyed by the sanitized email of the member.
type TeamMember struct {
	Name string `json:"name"`
	Role string `json:"role"`
}

// NewMember describes a member added while composing a team.
type NewMember struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  string `json:"role"`
}

// RosterEntry is a team member with its email restored for display.
type RosterEntry struct {
	Email string `json:"email"`
	Name  string `json:"name"`
	Role  string `json:"role"`
}

// SanitizeEmail turns an email into a member key: '.' is a path separator in the document tree.
func SanitizeEmail(email string) string {
	return strings.ReplaceAll(email, ".", ",")
}

// RestoreEmail reverses SanitizeEmail.
func RestoreEmail(key string) string {
	return strings.ReplaceAll(key, ",", ".")
}

// TeamID derives a team id from the creation instant.
func TeamID(at time.Time) string {
	return fmt.Sprintf("team_%d", at.UnixMilli())
}

// NewTeam composes a team. The creator is always present with the Admin role.
func NewTeam(id, name string, creator Identity, members []NewMember) *Team {
	team := &Team{
		ID:        id,
		TeamName:  name,
		CreatedBy: creator.Email,
		Members:   make(map[string]TeamMember, len(members)+1),
	}
	for _, m := range members {
		role := m.Role
		if role == "" {
			role = RoleDeveloper
		}
		team.Members[SanitizeEmail(m.Email)] = TeamMember{Name: m.Name, Role: role}
	}

	adminName := creator.DisplayName
	if adminName == "" {
		adminName = anonymousName
	}
	team.Members[SanitizeEmail(creator.Email)] = TeamMember{Name: adminName, Role: RoleAdmin}
	return team
}

// HasMember reports whether email belongs to the roster.
func (t *Team) HasMember(email string) bool {
	if t == nil || len(t.Members) == 0 || email == "" {
		return false
	}
	_, ok := t.Members[SanitizeEmail(email)]
	return ok
}

// Roster lists the members with restored emails, ordered by email.
func (t *Team) Roster() []RosterEntry {
	if t == nil {
		return nil
	}
	entries := make([]RosterEntry, 0, len(t.Members))
	for key, m := range t.Members {
		entries = append(entries, RosterEntry{Email: RestoreEmail(key), Name: m.Name, Role: m.Role})
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Email < entries[j].Email })
	return entries
}

// TeamsFor keeps the teams whose roster contains email, ordered by id.
func TeamsFor(teams []Team, email string) []Team {
	out := make([]Team, 0, len(teams))
	for i := range teams {
		if teams[i].HasMember(email) {
			out = append(out, teams[i])
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}
