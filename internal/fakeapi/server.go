// Package fakeapi is an in-memory implementation of the quiz service HTTP contract.
// It backs the client's tests and the `quizapp devserver` command; it is not a
// production backend.
package fakeapi

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/pavelanni/quizapp/internal/model"
)

// Config holds the dev server's tunables.
type Config struct {
	Secret     string
	TokenTTL   time.Duration
	BcryptCost int
	// Now overrides the clock used for token issuing and checks.
	Now func() time.Time
}

type account struct {
	user         model.User
	passwordHash []byte
}

// Server holds the in-memory service state.
type Server struct {
	config Config

	mu             sync.Mutex
	nextUserID     int64
	nextQuizID     int64
	nextQuestionID int64
	accounts       map[string]*account // by email
	quizzes        map[int64]*model.Quiz
	scores         map[int64][]model.Score
	scoreFailure   int
}

// New creates an empty server.
func New(cfg Config) *Server {
	if cfg.Secret == "" {
		cfg.Secret = "quizapp-dev-secret-change-me-please"
	}
	if cfg.TokenTTL <= 0 {
		cfg.TokenTTL = 24 * time.Hour
	}
	if cfg.BcryptCost == 0 {
		cfg.BcryptCost = bcrypt.DefaultCost
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	return &Server{
		config:   cfg,
		accounts: make(map[string]*account),
		quizzes:  make(map[int64]*model.Quiz),
		scores:   make(map[int64][]model.Score),
	}
}

// Handler returns the service mounted under /api.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Route("/api", s.Routes)
	return r
}

// Routes registers all service routes relative to the API base path.
func (s *Server) Routes(r chi.Router) {
	r.Post("/auth/signup", s.handleSignup)
	r.Post("/auth/login", s.handleLogin)
	r.Get("/quizzes", s.handleListQuizzes)
	r.Get("/quizzes/{quizID}", s.handleGetQuiz)

	r.Group(func(protected chi.Router) {
		protected.Use(s.requireAuth)
		protected.Post("/quizzes", s.handleCreateQuiz)
		protected.Put("/quizzes/{quizID}", s.handleUpdateQuiz)
		protected.Post("/quizzes/{quizID}/questions", s.handleAddQuestion)
		protected.Post("/{quizID}/scores", s.handleSubmitScore)
	})
}

// SeedQuiz stores a quiz directly, assigning ids, and returns it.
func (s *Server) SeedQuiz(q model.Quiz) model.Quiz {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.insertQuizLocked(q)
}

// SeedUser registers an account directly.
func (s *Server) SeedUser(username, email, password string) (model.User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.config.BcryptCost)
	if err != nil {
		return model.User{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextUserID++
	u := model.User{ID: s.nextUserID, Username: username, Email: email}
	s.accounts[strings.ToLower(strings.TrimSpace(email))] = &account{user: u, passwordHash: hash}
	return u, nil
}

// Scores returns the scores reported for a quiz.
func (s *Server) Scores(quizID int64) []model.Score {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]model.Score(nil), s.scores[quizID]...)
}

// FailScores makes score submissions answer with status until reset with 0.
func (s *Server) FailScores(status int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.scoreFailure = status
}

// Quiz returns a stored quiz.
func (s *Server) Quiz(id int64) (model.Quiz, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	q, ok := s.quizzes[id]
	if !ok {
		return model.Quiz{}, false
	}
	return cloneQuiz(*q), true
}

func (s *Server) insertQuizLocked(q model.Quiz) model.Quiz {
	s.nextQuizID++
	q.ID = s.nextQuizID
	q.Questions = s.assignQuestionIDsLocked(q.Questions)
	stored := cloneQuiz(q)
	s.quizzes[q.ID] = &stored
	return cloneQuiz(stored)
}

func (s *Server) assignQuestionIDsLocked(questions []model.Question) []model.Question {
	out := make([]model.Question, 0, len(questions))
	for _, question := range questions {
		s.nextQuestionID++
		question.ID = s.nextQuestionID
		out = append(out, question)
	}
	return out
}

func (s *Server) sortedQuizIDsLocked() []int64 {
	ids := make([]int64, 0, len(s.quizzes))
	for id := range s.quizzes {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

func cloneQuiz(q model.Quiz) model.Quiz {
	out := q
	out.Questions = make([]model.Question, len(q.Questions))
	for i, question := range q.Questions {
		question.Options = append([]string(nil), question.Options...)
		if question.CorrectAnswer != nil {
			question.CorrectAnswer = model.IntPtr(*question.CorrectAnswer)
		}
		out.Questions[i] = question
	}
	return out
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		slog.Error("encode response", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
