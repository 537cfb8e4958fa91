package domain

import (
	"strings"
	"testing"
	"time"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSanitizeEmail(t *testing.T) {
	assert.Equal(t, "a,b@example,com", SanitizeEmail("a.b@example.com"))
	assert.Equal(t, "a.b@example.com", RestoreEmail("a,b@example,com"))
}

func TestSanitizeRoundTrip(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	properties := gopter.NewProperties(parameters)

	emails := gen.RegexMatch(`[a-z0-9._-]{1,12}@[a-z0-9.-]{1,12}`)

	properties.Property("restore inverts sanitize for comma-free emails", prop.ForAll(
		func(email string) bool {
			return RestoreEmail(SanitizeEmail(email)) == email
		},
		emails,
	))
	properties.Property("sanitized keys contain no dots", prop.ForAll(
		func(email string) bool {
			return !strings.Contains(SanitizeEmail(email), ".")
		},
		emails,
	))

	properties.TestingRun(t)
}

func TestNewTeamAlpha(t *testing.T) {
	creator := Identity{Email: "u@x.io", DisplayName: "U"}
	team := NewTeam("team_1", "Alpha", creator, []NewMember{{Name: "Bo", Email: "bo@x.io", Role: "Designer"}})

	assert.Equal(t, "Alpha", team.TeamName)
	assert.Equal(t, "u@x.io", team.CreatedBy)
	assert.Equal(t, map[string]TeamMember{
		"bo@x,io": {Name: "Bo", Role: "Designer"},
		"u@x,io":  {Name: "U", Role: RoleAdmin},
	}, team.Members)

	assert.True(t, team.HasMember("bo@x.io"))
	assert.True(t, team.HasMember("u@x.io"))
	assert.False(t, team.HasMember("z@x.io"))
}

func TestNewTeamDefaults(t *testing.T) {
	team := NewTeam("team_2", "Beta", Identity{Email: "u@x.io"}, []NewMember{{Name: "Cy", Email: "cy@x.io"}})

	assert.Equal(t, TeamMember{Name: "Anonymous", Role: RoleAdmin}, team.Members["u@x,io"])
	assert.Equal(t, RoleDeveloper, team.Members["cy@x,io"].Role)
}

func TestNewTeamCreatorOverridesListedEntry(t *testing.T) {
	team := NewTeam("team_3", "Gamma", Identity{Email: "u@x.io", DisplayName: "U"}, []NewMember{{Name: "Me", Email: "u@x.io", Role: "Developer"}})

	require.Len(t, team.Members, 1)
	assert.Equal(t, RoleAdmin, team.Members["u@x,io"].Role)
}

func TestRosterAndTeamsFor(t *testing.T) {
	alpha := *NewTeam("team_2", "Alpha", Identity{Email: "u@x.io", DisplayName: "U"}, []NewMember{{Name: "Bo", Email: "bo@x.io"}})
	beta := *NewTeam("team_1", "Beta", Identity{Email: "bo@x.io", DisplayName: "Bo"}, nil)
	gamma := *NewTeam("team_3", "Gamma", Identity{Email: "z@x.io"}, nil)

	assert.Equal(t, []RosterEntry{
		{Email: "bo@x.io", Name: "Bo", Role: RoleDeveloper},
		{Email: "u@x.io", Name: "U", Role: RoleAdmin},
	}, alpha.Roster())

	mine := TeamsFor([]Team{alpha, beta, gamma}, "bo@x.io")
	require.Len(t, mine, 2)
	assert.Equal(t, "team_1", mine[0].ID)
	assert.Equal(t, "team_2", mine[1].ID)

	assert.Empty(t, TeamsFor([]Team{alpha}, "nobody@x.io"))
}

func TestTeamID(t *testing.T) {
	at := time.UnixMilli(1700000000123)
	assert.Equal(t, "team_1700000000123", TeamID(at))
}
