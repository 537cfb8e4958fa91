package main

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fastygo/taskboard/domain"
	"github.com/fastygo/taskboard/usecase/board"
)

func TestSplitID(t *testing.T) {
	id, rest, err := splitID([]string{"12", "--title", "x"})
	require.NoError(t, err)
	assert.Equal(t, int64(12), id)
	assert.Equal(t, []string{"--title", "x"}, rest)

	for _, args := range [][]string{nil, {"--title"}, {"abc"}, {"0"}} {
		_, _, err := splitID(args)
		assert.Error(t, err, args)
	}
}

func TestMemberFlags(t *testing.T) {
	var members memberFlags
	require.NoError(t, members.Set("Bob:bob@y.io"))
	require.NoError(t, members.Set(" Carol : carol@z.io : Tester "))
	assert.Error(t, members.Set("just-a-name"))

	assert.Equal(t, memberFlags{
		{Name: "Bob", Email: "bob@y.io"},
		{Name: "Carol", Email: "carol@z.io", Role: "Tester"},
	}, members)
}

func TestFormFlagsOnlyApplyVisited(t *testing.T) {
	fs := newFlagSet("edit")
	flags := bindFormFlags(fs)
	require.NoError(t, fs.Parse([]string{"--title", "New title", "--members", "a@x.io, b@y.io"}))

	form := board.FormState{Title: "Old", Description: "kept", Members: []string{"old@x.io"}}
	flags.apply(&form)

	assert.Equal(t, "New title", form.Title)
	assert.Equal(t, "kept", form.Description)
	assert.Equal(t, []string{"a@x.io", "b@y.io"}, form.Members)
}

func TestPrintTasks(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, printTasks(&out, []domain.Task{{ID: 3, Title: "Ship", Status: domain.StatusPending}}, false))
	assert.Contains(t, out.String(), "Ship")

	task := domain.Task{Deadline: "2024-03-04"}
	assert.Equal(t, "3", daysLeft(&task, time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)))
	assert.Equal(t, "-", daysLeft(&domain.Task{}, time.Now()))
	assert.Equal(t, "-", dash("  "))
}

func TestRunRejectsUnknownCommand(t *testing.T) {
	var stdout, stderr bytes.Buffer
	assert.Error(t, run([]string{"frobnicate"}, &stdout, &stderr))
	assert.NoError(t, run(nil, &stdout, &stderr))
	assert.Contains(t, stderr.String(), "tasks")
}
