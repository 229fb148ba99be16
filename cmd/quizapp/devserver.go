package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/spf13/cobra"

	"github.com/pavelanni/quizapp/internal/authoring"
	"github.com/pavelanni/quizapp/internal/fakeapi"
	"github.com/pavelanni/quizapp/internal/model"
	"github.com/pavelanni/quizapp/internal/validate"
)

func devserverCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "devserver",
		Short: "Run an in-memory quiz service for local development",
		Args:  cobra.NoArgs,
		RunE:  runDevserver,
	}
	f := cmd.Flags()
	f.String("addr", ":5000", "Listen address")
	f.String("jwt-secret", "", "Token signing secret (empty = built-in dev secret)")
	f.Duration("token-ttl", 24*time.Hour, "Token lifetime")
	f.StringSlice("seed", nil, "YAML quiz files to load at startup")
	f.Bool("demo-user", false, "Register demo@example.com with password demo123")
	f.String("log-level", "info", "Log level (debug, info, warn, error)")
	f.String("log-format", "text", "Log format (text, json)")
	return cmd
}

func runDevserver(cmd *cobra.Command, _ []string) error {
	setupLogging(cmd)
	v := viperForCmd(cmd)

	svc := fakeapi.New(fakeapi.Config{
		Secret:   v.GetString("jwt-secret"),
		TokenTTL: v.GetDuration("token-ttl"),
	})

	for _, path := range v.GetStringSlice("seed") {
		quiz, err := seedQuiz(svc, path)
		if err != nil {
			return err
		}
		slog.Info("seeded quiz", "id", quiz.ID, "title", quiz.Title, "questions", len(quiz.Questions))
	}
	if v.GetBool("demo-user") {
		if _, err := svc.SeedUser("demo", "demo@example.com", "demo123"); err != nil {
			return fmt.Errorf("seed demo user: %w", err)
		}
		slog.Info("seeded demo user", "email", "demo@example.com")
	}

	r := chi.NewRouter()
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Route("/api", svc.Routes)

	srv := &http.Server{
		Addr:              v.GetString("addr"),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx := cmd.Context()
	errCh := make(chan error, 1)
	go func() {
		slog.Info("starting dev server", "addr", srv.Addr, "token_ttl", v.GetDuration("token-ttl"))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	slog.Info("shutting down dev server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

// seedQuiz loads a quiz file into svc. Every question must pass the same
// validation the authoring workflow applies.
func seedQuiz(svc *fakeapi.Server, path string) (model.Quiz, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return model.Quiz{}, fmt.Errorf("read seed file: %w", err)
	}
	f, err := authoring.ParseFile(data)
	if err != nil {
		return model.Quiz{}, fmt.Errorf("%s: %w", path, err)
	}
	if f.Title == "" {
		return model.Quiz{}, fmt.Errorf("%s: title is required", path)
	}
	for i, q := range f.Questions {
		if err := validate.Struct(q); err != nil {
			return model.Quiz{}, fmt.Errorf("%s: question %d: %w", path, i+1, err)
		}
	}
	return svc.SeedQuiz(model.Quiz{
		Title:       f.Title,
		Description: f.Description,
		Questions:   f.Questions,
	}), nil
}
