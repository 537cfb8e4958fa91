package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/fastygo/taskboard/domain"
	"github.com/fastygo/taskboard/internal/infrastructure/snapshot"
	"github.com/fastygo/taskboard/internal/services"
	"github.com/fastygo/taskboard/usecase/board"
	authUC "github.com/fastygo/taskboard/usecase/auth"
)

func newFlagSet(name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	return fs
}

// splitID takes a leading positional id so flags may follow it.
func splitID(args []string) (int64, []string, error) {
	if len(args) == 0 || strings.HasPrefix(args[0], "-") {
		return 0, args, errors.New("task id is required")
	}
	id, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil || id <= 0 {
		return 0, args, fmt.Errorf("invalid task id %q", args[0])
	}
	return id, args[1:], nil
}

func (a *app) controller() *board.Controller {
	return board.NewController(a.api, a.log)
}

func (a *app) remember(page board.Page, tasks []domain.Task) {
	if a.snapshots == nil {
		return
	}
	snap := snapshot.TaskSnapshot{Page: string(page), Tasks: tasks, FetchedAt: time.Now()}
	if err := a.snapshots.SaveTasks(snap); err != nil {
		a.log.Debug("save snapshot failed", zap.Error(err))
	}
}

func runTasks(ctx context.Context, a *app, args []string) error {
	fs := newFlagSet("tasks")
	priority := fs.String("priority", "", "only tasks with this priority")
	order := fs.String("sort", board.SortMore, "more: most days left first, less: fewest first")
	cached := fs.Bool("cached", false, "print the last fetched list without contacting the server")
	asJSON := fs.Bool("json", false, "print JSON")
	if err := fs.Parse(args); err != nil {
		return err
	}

	if *cached {
		if a.snapshots == nil {
			return errors.New("snapshot store unavailable")
		}
		snap, err := a.snapshots.LoadTasks(string(board.PageTasks))
		if err != nil {
			return err
		}
		fmt.Fprintf(a.out, "cached %s ago\n", snap.Age(time.Now()).Round(time.Second))
		return printTasks(a.out, board.FilterAndSort(snap.Tasks, *priority, *order, time.Now()), *asJSON)
	}

	ctrl := a.controller()
	if err := ctrl.SetPriorityFilter(*priority); err != nil {
		return err
	}
	if err := ctrl.SetSortOrder(*order); err != nil {
		return err
	}
	if err := ctrl.Load(ctx); err != nil {
		return err
	}
	a.remember(board.PageTasks, ctrl.State().Tasks)
	return printTasks(a.out, ctrl.Visible(), *asJSON)
}

func runPage(page board.Page) func(ctx context.Context, a *app, args []string) error {
	return func(ctx context.Context, a *app, args []string) error {
		fs := newFlagSet(string(page))
		asJSON := fs.Bool("json", false, "print JSON")
		if err := fs.Parse(args); err != nil {
			return err
		}
		view, err := board.LoadView(ctx, a.api, page)
		if err != nil {
			return err
		}
		a.remember(page, view.Tasks)
		return printTasks(a.out, view.Tasks, *asJSON)
	}
}

func runDashboard(ctx context.Context, a *app, args []string) error {
	fs := newFlagSet("dashboard")
	asJSON := fs.Bool("json", false, "print JSON")
	if err := fs.Parse(args); err != nil {
		return err
	}
	view, err := board.LoadView(ctx, a.api, board.PageDashboard)
	if err != nil {
		return err
	}
	a.remember(board.PageDashboard, view.Tasks)
	return printDashboard(a.out, *view.Stats, *asJSON)
}

func runShow(ctx context.Context, a *app, args []string) error {
	id, rest, err := splitID(args)
	if err != nil {
		return err
	}
	fs := newFlagSet("show")
	asJSON := fs.Bool("json", false, "print JSON")
	if err := fs.Parse(rest); err != nil {
		return err
	}
	task, err := a.api.GetTask(ctx, id)
	if err != nil {
		return err
	}
	return printTask(a.out, *task, *asJSON)
}

type formFlags struct {
	fs          *flag.FlagSet
	title       *string
	description *string
	priority    *string
	deadline    *string
	duration    *string
	status      *string
	subtasks    *string
	members     *string
}

func bindFormFlags(fs *flag.FlagSet) *formFlags {
	return &formFlags{
		fs:          fs,
		title:       fs.String("title", "", "task title"),
		description: fs.String("description", "", "task description"),
		priority:    fs.String("priority", "", "Low, Medium or High"),
		deadline:    fs.String("deadline", "", "deadline as YYYY-MM-DD"),
		duration:    fs.String("duration", "", "expected duration, free text"),
		status:      fs.String("status", "", "Pending, In Progress or Completed"),
		subtasks:    fs.String("subtasks", "", "comma-separated subtasks"),
		members:     fs.String("members", "", "comma-separated member emails"),
	}
}

// apply copies the flags given on the command line onto form.
func (f *formFlags) apply(form *board.FormState) {
	f.fs.Visit(func(fl *flag.Flag) {
		switch fl.Name {
		case "title":
			form.Title = *f.title
		case "description":
			form.Description = *f.description
		case "priority":
			form.Priority = *f.priority
		case "deadline":
			form.Deadline = *f.deadline
		case "duration":
			form.Duration = *f.duration
		case "status":
			form.Status = *f.status
		case "subtasks":
			form.Subtasks = board.SplitList(*f.subtasks)
		case "members":
			form.Members = board.SplitList(*f.members)
		}
	})
}

func runCreate(ctx context.Context, a *app, args []string) error {
	fs := newFlagSet("create")
	flags := bindFormFlags(fs)
	if err := fs.Parse(args); err != nil {
		return err
	}
	var form board.FormState
	flags.apply(&form)

	created, err := a.controller().SubmitCreate(ctx, form)
	if err != nil {
		return err
	}
	return printTask(a.out, *created, false)
}

func runEdit(ctx context.Context, a *app, args []string) error {
	id, rest, err := splitID(args)
	if err != nil {
		return err
	}
	fs := newFlagSet("edit")
	flags := bindFormFlags(fs)
	if err := fs.Parse(rest); err != nil {
		return err
	}

	ctrl := a.controller()
	if err := ctrl.Load(ctx); err != nil {
		return err
	}
	var current *domain.Task
	for _, t := range ctrl.State().Tasks {
		if t.ID == id {
			t := t
			current = &t
			break
		}
	}
	if current == nil {
		return domain.ErrTaskNotFound
	}

	form, err := ctrl.StartEdit(*current)
	if err != nil {
		return err
	}
	flags.apply(&form)
	updated, err := ctrl.SubmitEdit(ctx, id, form)
	if err != nil {
		_ = ctrl.CancelEdit()
		return err
	}
	return printTask(a.out, *updated, false)
}

func runDelete(ctx context.Context, a *app, args []string) error {
	id, _, err := splitID(args)
	if err != nil {
		return err
	}
	if err := a.controller().DeleteTask(ctx, id); err != nil {
		return err
	}
	fmt.Fprintf(a.out, "deleted task %d\n", id)
	return nil
}

func runTimeline(ctx context.Context, a *app, args []string) error {
	id, rest, err := splitID(args)
	if err != nil {
		return err
	}
	fs := newFlagSet("timeline")
	add := fs.String("add", "", "append a note with this description")
	at := fs.String("time", "", "update time of the note (default now)")
	if err := fs.Parse(rest); err != nil {
		return err
	}

	if *add != "" {
		when := *at
		if when == "" {
			when = time.Now().Format(time.RFC3339)
		}
		if _, err := a.api.AddTimeline(ctx, domain.TimelineEntry{TaskID: id, UpdateTime: when, Description: *add}); err != nil {
			return err
		}
	}
	entries, err := a.api.ListTimeline(ctx, id)
	if err != nil {
		return err
	}
	return printTimeline(a.out, entries)
}

func runTeams(ctx context.Context, a *app, args []string) error {
	fs := newFlagSet("teams")
	expand := fs.String("expand", "", "show the roster of this team")
	watch := fs.Bool("watch", false, "keep printing the teams as they change")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if _, err := a.requireIdentity(ctx); err != nil {
		return err
	}

	teamClient := a.api.Teams()
	if !*watch {
		teams, err := teamClient.List(ctx)
		if err != nil {
			return err
		}
		return printTeams(a.out, teams, *expand)
	}

	updates, err := teamClient.Watch(ctx)
	if err != nil {
		return err
	}
	for snap := range updates {
		if snap.Err != nil {
			a.log.Warn("team update failed", zap.Error(snap.Err))
			fmt.Fprintf(a.out, "update failed: %v\n", snap.Err)
			continue
		}
		fmt.Fprintf(a.out, "--- %s\n", time.Now().Format(time.TimeOnly))
		if err := printTeams(a.out, snap.Teams, *expand); err != nil {
			return err
		}
	}
	return nil
}

type memberFlags []domain.NewMember

func (m *memberFlags) String() string {
	parts := make([]string, 0, len(*m))
	for _, member := range *m {
		parts = append(parts, member.Name+":"+member.Email)
	}
	return strings.Join(parts, ", ")
}

// Set parses "Name:email" or "Name:email:Role".
func (m *memberFlags) Set(value string) error {
	parts := strings.Split(value, ":")
	if len(parts) < 2 || len(parts) > 3 {
		return fmt.Errorf("member %q must look like Name:email[:Role]", value)
	}
	member := domain.NewMember{Name: strings.TrimSpace(parts[0]), Email: strings.TrimSpace(parts[1])}
	if len(parts) == 3 {
		member.Role = strings.TrimSpace(parts[2])
	}
	*m = append(*m, member)
	return nil
}

func runTeamCreate(ctx context.Context, a *app, args []string) error {
	fs := newFlagSet("team-create")
	name := fs.String("name", "", "team name")
	var members memberFlags
	fs.Var(&members, "member", "member as Name:email[:Role], repeatable")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if _, err := a.requireIdentity(ctx); err != nil {
		return err
	}

	team, err := a.api.Teams().CreateTeam(ctx, *name, members)
	if err != nil {
		return err
	}
	return printTeams(a.out, []domain.Team{*team}, team.ID)
}

func runLogin(ctx context.Context, a *app, args []string) error {
	fs := newFlagSet("login")
	token := fs.String("token", "", "identity token (default TASKBOARD_ID_TOKEN)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	provider := authUC.NewHostedProvider(a.api, a.tokenSource(*token), a.cache, a.log)
	identity, err := provider.SignIn(ctx)
	if err != nil {
		return err
	}
	a.auth = provider
	fmt.Fprintf(a.out, "signed in as %s\n", displayIdentity(*identity))
	return nil
}

func runLogout(ctx context.Context, a *app, _ []string) error {
	if err := a.auth.SignOut(ctx); err != nil {
		return err
	}
	fmt.Fprintln(a.out, "signed out")
	return nil
}

func runWhoami(ctx context.Context, a *app, _ []string) error {
	identity, err := a.requireIdentity(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintln(a.out, displayIdentity(*identity))
	return nil
}

func runWatch(ctx context.Context, a *app, args []string) error {
	fs := newFlagSet("watch")
	pages := fs.String("pages", string(board.PageTasks), "comma-separated pages: tasks, completed, in-progress, dashboard")
	schedule := fs.String("schedule", a.cfg.Client.RefreshSchedule, "cron spec or @every interval")
	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg := services.RefresherConfig{Schedule: *schedule, Timeout: a.cfg.Client.Timeout}
	for _, p := range board.SplitList(*pages) {
		cfg.Pages = append(cfg.Pages, board.Page(p))
	}

	var writer services.SnapshotWriter
	if a.snapshots != nil {
		writer = a.snapshots
	}
	refresher, err := services.NewRefresher(a.api, writer, a.log, cfg, func(view board.View) {
		printView(a.out, view)
	})
	if err != nil {
		return err
	}

	if err := refresher.Refresh(ctx); err != nil {
		fmt.Fprintf(a.out, "refresh failed: %v\n", err)
	}
	refresher.Start()
	<-ctx.Done()

	stopCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	refresher.Stop(stopCtx)
	return nil
}

func printView(w io.Writer, view board.View) {
	fmt.Fprintf(w, "--- %s @ %s\n", view.Page, time.Now().Format(time.TimeOnly))
	if view.Stats != nil {
		_ = printDashboard(w, *view.Stats, false)
		return
	}
	_ = printTasks(w, view.Tasks, false)
}

func displayIdentity(identity domain.Identity) string {
	if identity.DisplayName == "" {
		return identity.Email
	}
	return fmt.Sprintf("%s <%s>", identity.DisplayName, identity.Email)
}
