package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/fastygo/taskboard/domain"
	"github.com/fastygo/taskboard/usecase/board"
)

func printJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func printTasks(w io.Writer, tasks []domain.Task, asJSON bool) error {
	if asJSON {
		return printJSON(w, tasks)
	}
	if len(tasks) == 0 {
		fmt.Fprintln(w, "no tasks")
		return nil
	}
	now := time.Now()
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tTITLE\tPRIORITY\tSTATUS\tDEADLINE\tDAYS LEFT\tMEMBERS")
	for i := range tasks {
		t := &tasks[i]
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\t%s\t%s\n",
			t.ID, t.Title, dash(t.Priority), dash(t.Status), dash(t.Deadline),
			daysLeft(t, now), dash(strings.Join(t.MemberEmails(), ", ")))
	}
	return tw.Flush()
}

func printTask(w io.Writer, task domain.Task, asJSON bool) error {
	if asJSON {
		return printJSON(w, task)
	}
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintf(tw, "id\t%d\n", task.ID)
	fmt.Fprintf(tw, "title\t%s\n", task.Title)
	fmt.Fprintf(tw, "description\t%s\n", task.Description)
	fmt.Fprintf(tw, "priority\t%s\n", dash(task.Priority))
	fmt.Fprintf(tw, "status\t%s\n", dash(task.Status))
	fmt.Fprintf(tw, "deadline\t%s (%s days left)\n", dash(task.Deadline), daysLeft(&task, time.Now()))
	fmt.Fprintf(tw, "duration\t%s\n", dash(task.Duration))
	fmt.Fprintf(tw, "subtasks\t%s\n", dash(board.JoinList(task.Subtasks)))
	fmt.Fprintf(tw, "members\t%s\n", dash(board.JoinList(task.MemberEmails())))
	return tw.Flush()
}

func printDashboard(w io.Writer, stats board.DashboardStats, asJSON bool) error {
	if asJSON {
		return printJSON(w, stats)
	}
	fmt.Fprintf(w, "total tasks: %d\n", stats.Total)
	width := 0
	for _, p := range stats.Series {
		if len(p.Label) > width {
			width = len(p.Label)
		}
	}
	for _, p := range stats.Series {
		fmt.Fprintf(w, "%-*s %4d %s\n", width, p.Label, p.Value, strings.Repeat("#", p.Value))
	}
	return nil
}

func printTimeline(w io.Writer, entries []domain.TimelineEntry) error {
	if len(entries) == 0 {
		fmt.Fprintln(w, "no timeline entries")
		return nil
	}
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tWHEN\tDESCRIPTION")
	for _, e := range entries {
		fmt.Fprintf(tw, "%d\t%s\t%s\n", e.ID, dash(e.UpdateTime), e.Description)
	}
	return tw.Flush()
}

// printTeams lists teams; the roster of the team with id expand is printed in full.
func printTeams(w io.Writer, teams []domain.Team, expand string) error {
	if len(teams) == 0 {
		fmt.Fprintln(w, "you are not a member of any team")
		return nil
	}
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tCREATED BY\tMEMBERS")
	for i := range teams {
		t := &teams[i]
		fmt.Fprintf(tw, "%s\t%s\t%s\t%d\n", t.ID, t.TeamName, t.CreatedBy, len(t.Members))
		if t.ID != expand {
			continue
		}
		for _, m := range t.Roster() {
			fmt.Fprintf(tw, "\t  %s\t%s\t%s\n", m.Email, m.Name, m.Role)
		}
	}
	return tw.Flush()
}

func daysLeft(t *domain.Task, now time.Time) string {
	days, ok := t.DaysRemaining(now)
	if !ok {
		return "-"
	}
	return strconv.Itoa(days)
}

func dash(s string) string {
	if strings.TrimSpace(s) == "" {
		return "-"
	}
	return s
}
