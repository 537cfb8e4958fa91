// Command taskboard is the terminal client of the task board.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"sort"
	"strings"
	"syscall"

	"go.uber.org/zap"

	"github.com/fastygo/taskboard/domain"
	"github.com/fastygo/taskboard/internal/config"
	"github.com/fastygo/taskboard/internal/infrastructure/snapshot"
	"github.com/fastygo/taskboard/pkg/logger"
	"github.com/fastygo/taskboard/pkg/taskapi"
	"github.com/fastygo/taskboard/usecase/board"
	authUC "github.com/fastygo/taskboard/usecase/auth"
)

type app struct {
	cfg       *config.Config
	log       *zap.Logger
	api       *taskapi.Client
	auth      *authUC.HostedProvider
	cache     authUC.SessionCache
	snapshots *snapshot.Store
	out       io.Writer
}

type command struct {
	name  string
	usage string
	run   func(ctx context.Context, a *app, args []string) error
}

var commands = []command{
	{"tasks", "list tasks [--priority Low|Medium|High] [--sort more|less] [--cached] [--json]", runTasks},
	{"completed", "list completed tasks", runPage(board.PageCompleted)},
	{"in-progress", "list pending and in-progress tasks", runPage(board.PageInProgress)},
	{"dashboard", "show task counts by status", runDashboard},
	{"show", "show one task: show <id>", runShow},
	{"create", "create a task: create --title T --description D --deadline YYYY-MM-DD --duration X [...]", runCreate},
	{"edit", "replace a task: edit <id> [--title T ...]", runEdit},
	{"delete", "delete a task: delete <id>", runDelete},
	{"timeline", "list or append progress notes: timeline <id> [--add TEXT] [--time TIME]", runTimeline},
	{"teams", "list your teams [--expand TEAM_ID] [--watch]", runTeams},
	{"team-create", "create a team: team-create --name N [--member 'Name:email[:Role]' ...]", runTeamCreate},
	{"login", "sign in with an identity token [--token TOKEN]", runLogin},
	{"logout", "sign out", runLogout},
	{"whoami", "print the signed-in identity", runWhoami},
	{"watch", "refresh pages on a schedule [--pages tasks,dashboard] [--schedule SPEC]", runWatch},
}

func main() {
	if err := run(os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string, stdout, stderr io.Writer) error {
	if len(args) == 0 || args[0] == "help" || args[0] == "-h" || args[0] == "--help" {
		printUsage(stderr)
		return nil
	}

	var cmd *command
	for i := range commands {
		if commands[i].name == args[0] {
			cmd = &commands[i]
			break
		}
	}
	if cmd == nil {
		printUsage(stderr)
		return fmt.Errorf("unknown command %q", args[0])
	}

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	zapLogger, err := logger.New(logger.Config{
		Level:    cfg.Logger.Level,
		Encoding: "console",
		Stderr:   true,
	})
	if err != nil {
		return err
	}
	defer zapLogger.Sync()

	a, err := newApp(cfg, zapLogger, stdout)
	if err != nil {
		return err
	}
	defer a.close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return cmd.run(ctx, a, args[1:])
}

func newApp(cfg *config.Config, zapLogger *zap.Logger, out io.Writer) (*app, error) {
	api, err := taskapi.New(taskapi.Config{
		BaseURL: cfg.Client.BaseURL,
		Timeout: cfg.Client.Timeout,
		Logger:  zapLogger,
	})
	if err != nil {
		return nil, err
	}

	store, err := snapshot.Open(cfg.Snapshot.Path)
	if err != nil {
		zapLogger.Warn("snapshot store unavailable, continuing without cache", zap.Error(err))
		store = nil
	}

	a := &app{cfg: cfg, log: zapLogger, api: api, snapshots: store, out: out}

	if store != nil {
		a.cache = store
	}
	a.auth = authUC.NewHostedProvider(api, a.tokenSource(""), a.cache, zapLogger)
	if id := a.auth.SessionID(); id != "" {
		api.SetSession(id)
	} else if cfg.Client.IDToken != "" {
		api.SetBearer(cfg.Client.IDToken)
	}
	return a, nil
}

func (a *app) close() {
	if a.snapshots != nil {
		if err := a.snapshots.Close(); err != nil {
			a.log.Warn("close snapshot store", zap.Error(err))
		}
	}
}

// tokenSource prefers an explicit token over TASKBOARD_ID_TOKEN.
func (a *app) tokenSource(explicit string) authUC.TokenSource {
	return func(context.Context) (string, error) {
		if token := strings.TrimSpace(explicit); token != "" {
			return token, nil
		}
		if a.cfg.Client.IDToken != "" {
			return a.cfg.Client.IDToken, nil
		}
		return "", domain.NewError(domain.ErrCodeUnauthorized, "no identity token: pass --token or set TASKBOARD_ID_TOKEN")
	}
}

// requireIdentity returns the signed-in identity, asking the server when only a bearer token is configured.
func (a *app) requireIdentity(ctx context.Context) (*domain.Identity, error) {
	if identity, ok := a.auth.Current(); ok {
		return identity, nil
	}
	if a.cfg.Client.IDToken == "" {
		return nil, errors.New("not signed in: run `taskboard login`")
	}
	return a.api.Me(ctx)
}

func printUsage(w io.Writer) {
	fmt.Fprintln(w, "usage: taskboard <command> [flags]")
	fmt.Fprintln(w)
	sorted := append([]command(nil), commands...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].name < sorted[j].name })
	for _, c := range sorted {
		fmt.Fprintf(w, "  %-12s %s\n", c.name, c.usage)
	}
}
