// Package cli is the terminal front-end: an interactive shell plus the screens
// behind the one-shot commands.
package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/pavelanni/quizapp/internal/apiclient"
	"github.com/pavelanni/quizapp/internal/attempt"
	"github.com/pavelanni/quizapp/internal/authoring"
	"github.com/pavelanni/quizapp/internal/i18n"
	"github.com/pavelanni/quizapp/internal/model"
	"github.com/pavelanni/quizapp/internal/session"
)

const (
	defaultTimeout       = 10 * time.Second
	defaultReportTimeout = 10 * time.Second
)

// Journal is the local attempt history.
type Journal interface {
	attempt.Journal
	ListAttempts(quizID int64) ([]model.AttemptRecord, error)
	ExportHistory(quizID int64) (model.HistoryExport, error)
}

// Deps are the collaborators the screens drive. Journal may be nil.
type Deps struct {
	Session *session.Store
	Client  *apiclient.Client
	Journal Journal
}

type Config struct {
	// Timeout bounds every foreground request.
	Timeout time.Duration
	// ReportTimeout bounds background score reports.
	ReportTimeout time.Duration
	Logger        *slog.Logger
}

type App struct {
	session  *session.Store
	client   *apiclient.Client
	journal  Journal
	workflow *authoring.Workflow
	cfg      Config
	logger   *slog.Logger

	in  *bufio.Reader
	out io.Writer

	pending []*attempt.Attempt
}

func New(deps Deps, in io.Reader, out io.Writer, cfg Config) *App {
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}
	if cfg.ReportTimeout <= 0 {
		cfg.ReportTimeout = defaultReportTimeout
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &App{
		session:  deps.Session,
		client:   deps.Client,
		journal:  deps.Journal,
		workflow: authoring.NewWorkflow(deps.Client, logger),
		cfg:      cfg,
		logger:   logger,
		in:       bufio.NewReader(in),
		out:      out,
	}
}

// Run is the interactive shell. It returns nil on "exit" or end of input.
func (a *App) Run(ctx context.Context) error {
	a.say(i18n.Td(ctx, "Welcome", map[string]any{"URL": a.client.BaseURL()}))
	a.say(i18n.T(ctx, "ShellHelp"))

	for {
		a.collectReports(ctx, false)
		fmt.Fprint(a.out, "\n> ")
		line, err := a.readLine()
		if err != nil {
			if errors.Is(err, io.EOF) {
				fmt.Fprintln(a.out)
				a.Finish(ctx)
				return nil
			}
			return err
		}

		args := strings.Fields(line)
		if len(args) == 0 {
			continue
		}
		if done := a.dispatch(ctx, strings.ToLower(args[0]), args[1:]); done {
			a.Finish(ctx)
			a.say(i18n.T(ctx, "Goodbye"))
			return nil
		}
	}
}

func (a *App) dispatch(ctx context.Context, command string, args []string) bool {
	var err error
	switch command {
	case "help":
		a.say(i18n.T(ctx, "ShellHelp"))
	case "exit", "quit":
		return true
	case "login":
		err = a.Login(ctx)
	case "signup":
		err = a.Signup(ctx)
	case "logout":
		err = a.Logout(ctx)
	case "whoami":
		a.WhoAmI(ctx)
	case "quizzes":
		err = a.Quizzes(ctx)
	case "take":
		if id, ok := a.quizIDArg(ctx, args, "take <id>"); ok {
			err = a.Take(ctx, id)
		}
	case "create":
		err = a.Create(ctx)
	case "extend":
		if id, ok := a.quizIDArg(ctx, args, "extend <id>"); ok {
			err = a.Extend(ctx, id)
		}
	case "add-question":
		if id, ok := a.quizIDArg(ctx, args, "add-question <id>"); ok {
			err = a.AddQuestion(ctx, id)
		}
	case "import":
		if len(args) < 1 || len(args) > 2 {
			a.say(i18n.Td(ctx, "Usage", map[string]any{"Usage": "import <file> [id]"}))
			break
		}
		var id int64
		if len(args) == 2 {
			var ok bool
			if id, ok = a.quizIDArg(ctx, args[1:], "import <file> [id]"); !ok {
				break
			}
		}
		err = a.Import(ctx, args[0], id)
	case "history":
		var id int64
		if len(args) > 0 {
			var ok bool
			if id, ok = a.quizIDArg(ctx, args, "history [id]"); !ok {
				break
			}
		}
		err = a.History(ctx, id, false)
	default:
		a.say(i18n.Td(ctx, "UnknownCommand", map[string]any{"Command": command}))
	}
	if err != nil {
		a.logger.Debug("command failed", "command", command, "error", err)
	}
	return false
}

func (a *App) quizIDArg(ctx context.Context, args []string, usage string) (int64, bool) {
	if len(args) != 1 {
		a.say(i18n.Td(ctx, "Usage", map[string]any{"Usage": usage}))
		return 0, false
	}
	id, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil || id <= 0 {
		a.say(i18n.Td(ctx, "InvalidQuizID", map[string]any{"Value": args[0]}))
		return 0, false
	}
	return id, true
}

// Finish waits for score reports still in flight and prints any failures.
func (a *App) Finish(ctx context.Context) {
	a.collectReports(ctx, true)
}

func (a *App) collectReports(ctx context.Context, wait bool) {
	remaining := a.pending[:0]
	for _, att := range a.pending {
		var (
			err  error
			done bool
		)
		if wait {
			select {
			case err = <-att.Reports():
				done = true
			case <-time.After(a.cfg.ReportTimeout + time.Second):
				a.logger.Warn("gave up waiting for score report", "attempt", att.ID())
				done = true
			}
		} else {
			select {
			case err = <-att.Reports():
				done = true
			default:
			}
		}
		if !done {
			remaining = append(remaining, att)
			continue
		}
		if err != nil {
			a.say(i18n.Td(ctx, "ReportFailed", map[string]any{"QuizID": att.QuizID()}))
		}
	}
	a.pending = remaining
}

func (a *App) callCtx(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, a.cfg.Timeout)
}

func (a *App) say(s string) {
	fmt.Fprintln(a.out, s)
}

func (a *App) readLine() (string, error) {
	line, err := a.in.ReadString('\n')
	if err != nil {
		if errors.Is(err, io.EOF) && line != "" {
			return strings.TrimSpace(line), nil
		}
		return "", err
	}
	return strings.TrimSpace(line), nil
}

func (a *App) prompt(ctx context.Context, msgID string, data map[string]any) (string, error) {
	if data == nil {
		fmt.Fprint(a.out, i18n.T(ctx, msgID))
	} else {
		fmt.Fprint(a.out, i18n.Td(ctx, msgID, data))
	}
	return a.readLine()
}

// showError prints err for the user. fallbackID names the message used for
// errors that are neither validation nor authentication failures.
func (a *App) showError(ctx context.Context, err error, fallbackID string) {
	var verr *model.ValidationError
	switch {
	case errors.As(err, &verr):
		a.say(i18n.T(ctx, "ValidationFailed"))
		fields := make([]string, 0, len(verr.Fields))
		for f := range verr.Fields {
			fields = append(fields, f)
		}
		sort.Strings(fields)
		for _, f := range fields {
			a.say(i18n.Td(ctx, "InvalidField", map[string]any{"Field": f, "Message": verr.Fields[f]}))
		}
	case model.IsAuthError(err):
		a.say(i18n.Td(ctx, "AuthFailed", map[string]any{"Error": err.Error()}))
	default:
		a.say(i18n.Td(ctx, fallbackID, map[string]any{"Error": err.Error()}))
	}
}

// parseOption accepts a-d or 1-4.
func parseOption(s string) (int, bool) {
	s = strings.ToLower(strings.TrimSpace(s))
	if len(s) != 1 {
		return 0, false
	}
	switch c := s[0]; {
	case c >= 'a' && c < 'a'+model.OptionCount:
		return int(c - 'a'), true
	case c >= '1' && c < '1'+model.OptionCount:
		return int(c - '1'), true
	}
	return 0, false
}

func optionLetter(i int) string {
	return string(rune('a' + i))
}
