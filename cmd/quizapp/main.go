package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pavelanni/quizapp/internal/apiclient"
	"github.com/pavelanni/quizapp/internal/cli"
	appI18n "github.com/pavelanni/quizapp/internal/i18n"
	"github.com/pavelanni/quizapp/internal/session"
	"github.com/pavelanni/quizapp/internal/store"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	if err := rootCmd().ExecuteContext(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:          "quizapp",
		Short:        "Take and author multiple-choice quizzes",
		SilenceUsage: true,
	}

	shell := shellCmd()
	root.AddCommand(
		shell,
		loginCmd(),
		signupCmd(),
		logoutCmd(),
		whoamiCmd(),
		quizzesCmd(),
		takeCmd(),
		importCmd(),
		historyCmd(),
		devserverCmd(),
	)

	// Make "shell" the default when no subcommand is given.
	root.RunE = shell.RunE

	// Register shell flags on root so bare `quizapp --api-url ...` still works.
	root.Flags().AddFlagSet(shell.Flags())

	return root
}

func shellCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "shell",
		Short: "Start the interactive shell",
		RunE: withApp(func(ctx context.Context, app *cli.App, _ *viper.Viper, _ []string) error {
			return app.Run(ctx)
		}),
	}
	addClientFlags(cmd)
	return cmd
}

func loginCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Log in and store the session",
		Args:  cobra.NoArgs,
		RunE: withApp(func(ctx context.Context, app *cli.App, _ *viper.Viper, _ []string) error {
			return app.Login(ctx)
		}),
	}
	addClientFlags(cmd)
	return cmd
}

func signupCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "signup",
		Short: "Create an account",
		Args:  cobra.NoArgs,
		RunE: withApp(func(ctx context.Context, app *cli.App, _ *viper.Viper, _ []string) error {
			return app.Signup(ctx)
		}),
	}
	addClientFlags(cmd)
	return cmd
}

func logoutCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "logout",
		Short: "Forget the stored session",
		Args:  cobra.NoArgs,
		RunE: withApp(func(ctx context.Context, app *cli.App, _ *viper.Viper, _ []string) error {
			return app.Logout(ctx)
		}),
	}
	addClientFlags(cmd)
	return cmd
}

func whoamiCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "whoami",
		Short: "Show the logged-in user",
		Args:  cobra.NoArgs,
		RunE: withApp(func(ctx context.Context, app *cli.App, _ *viper.Viper, _ []string) error {
			app.WhoAmI(ctx)
			return nil
		}),
	}
	addClientFlags(cmd)
	return cmd
}

func quizzesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "quizzes",
		Short: "List quizzes",
		Args:  cobra.NoArgs,
		RunE: withApp(func(ctx context.Context, app *cli.App, _ *viper.Viper, _ []string) error {
			return app.Quizzes(ctx)
		}),
	}
	addClientFlags(cmd)
	return cmd
}

func takeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "take <quiz-id>",
		Short: "Take a quiz",
		Args:  cobra.ExactArgs(1),
		RunE: withApp(func(ctx context.Context, app *cli.App, _ *viper.Viper, args []string) error {
			id, err := parseQuizID(args[0])
			if err != nil {
				return err
			}
			err = app.Take(ctx, id)
			app.Finish(ctx)
			return err
		}),
	}
	addClientFlags(cmd)
	return cmd
}

func importCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "import <file>",
		Short: "Create a quiz, or extend one with --quiz, from a YAML file",
		Args:  cobra.ExactArgs(1),
		RunE: withApp(func(ctx context.Context, app *cli.App, v *viper.Viper, args []string) error {
			return app.Import(ctx, args[0], v.GetInt64("quiz"))
		}),
	}
	addClientFlags(cmd)
	cmd.Flags().Int64("quiz", 0, "Existing quiz to extend (0 = create a new quiz)")
	return cmd
}

func historyCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show completed attempts from the local journal",
		Args:  cobra.NoArgs,
		RunE: withApp(func(ctx context.Context, app *cli.App, v *viper.Viper, _ []string) error {
			return app.History(ctx, v.GetInt64("quiz"), v.GetBool("json"))
		}),
	}
	addClientFlags(cmd)
	f := cmd.Flags()
	f.Int64("quiz", 0, "Only show attempts for this quiz (0 = all)")
	f.Bool("json", false, "Print the journal as JSON")
	return cmd
}

func addClientFlags(cmd *cobra.Command) {
	f := cmd.Flags()
	f.String("api-url", apiclient.DefaultBaseURL, "Quiz service base URL")
	f.String("db", defaultDBPath(), "SQLite database path for the session and attempt journal")
	f.Duration("timeout", 0, "Per-request timeout (0 = 10s)")
	f.Duration("report-timeout", 0, "Background score report timeout (0 = 10s)")
	f.StringP("lang", "l", "en", "UI language (en, ru)")
	f.String("log-level", "warn", "Log level (debug, info, warn, error)")
	f.String("log-format", "text", "Log format (text, json)")
}

func defaultDBPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "quizapp.db"
	}
	return filepath.Join(dir, "quizapp", "quizapp.db")
}

func parseQuizID(s string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid quiz id %q", s)
	}
	return id, nil
}

type appFunc func(ctx context.Context, app *cli.App, v *viper.Viper, args []string) error

// sessionTokens lets the API client read the token of a session store that is
// created after the client.
type sessionTokens struct {
	session *session.Store
}

func (t *sessionTokens) Token() string {
	if t.session == nil {
		return ""
	}
	return t.session.Token()
}

// withApp wires the local store, session, API client and localizer, then runs fn.
func withApp(fn appFunc) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		setupLogging(cmd)
		v := viperForCmd(cmd)

		lang := v.GetString("lang")
		if err := appI18n.Init(lang); err != nil {
			return fmt.Errorf("init i18n: %w", err)
		}

		db, err := store.New(v.GetString("db"))
		if err != nil {
			return fmt.Errorf("open database: %w", err)
		}
		defer db.Close()

		tokens := &sessionTokens{}
		client := apiclient.New(v.GetString("api-url"), &http.Client{}, tokens)
		sess, err := session.New(client, db)
		if err != nil {
			return fmt.Errorf("load session: %w", err)
		}
		tokens.session = sess

		app := cli.New(cli.Deps{Session: sess, Client: client, Journal: db}, os.Stdin, os.Stdout, cli.Config{
			Timeout:       v.GetDuration("timeout"),
			ReportTimeout: v.GetDuration("report-timeout"),
		})
		slog.Debug("client ready", "api_url", client.BaseURL(), "db", v.GetString("db"), "lang", lang)

		return fn(appI18n.WithLanguage(cmd.Context(), lang), app, v, args)
	}
}

func setupLogging(cmd *cobra.Command) {
	v := viperForCmd(cmd)

	var logLevel slog.Level
	switch strings.ToLower(v.GetString("log-level")) {
	case "debug":
		logLevel = slog.LevelDebug
	case "info":
		logLevel = slog.LevelInfo
	case "error":
		logLevel = slog.LevelError
	default:
		logLevel = slog.LevelWarn
	}
	handlerOpts := &slog.HandlerOptions{Level: logLevel}
	var logHandler slog.Handler
	switch strings.ToLower(v.GetString("log-format")) {
	case "json":
		logHandler = slog.NewJSONHandler(os.Stderr, handlerOpts)
	default:
		logHandler = slog.NewTextHandler(os.Stderr, handlerOpts)
	}
	slog.SetDefault(slog.New(logHandler))
}

// viperForCmd binds a command's flags and environment to a fresh viper instance.
func viperForCmd(cmd *cobra.Command) *viper.Viper {
	v := viper.New()
	_ = v.BindPFlags(cmd.Flags())

	v.SetEnvPrefix("QUIZAPP")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	v.SetConfigName("quizapp")
	v.AddConfigPath(".")
	v.AddConfigPath("$HOME/.config/quizapp")
	v.AddConfigPath("/etc/quizapp")
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			slog.Warn("error reading config file", "error", err)
		}
	} else {
		slog.Debug("loaded config file", "path", v.ConfigFileUsed())
	}

	return v
}
