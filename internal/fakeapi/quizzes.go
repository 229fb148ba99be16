package fakeapi

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/pavelanni/quizapp/internal/model"
	"github.com/pavelanni/quizapp/internal/validate"
)

type createQuizBody struct {
	Title       string           `json:"title"`
	Description string           `json:"description"`
	Questions   []model.Question `json:"questions"`
}

type updateQuizBody struct {
	Questions []model.Question `json:"questions"`
}

func quizIDParam(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "quizID"), 10, 64)
	if err != nil || id <= 0 {
		writeError(w, http.StatusBadRequest, "invalid quiz ID")
		return 0, false
	}
	return id, true
}

func validQuestions(w http.ResponseWriter, questions []model.Question) bool {
	for _, q := range questions {
		if err := validate.Struct(q); err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return false
		}
	}
	return true
}

func (s *Server) handleListQuizzes(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	summaries := make([]model.QuizSummary, 0, len(s.quizzes))
	for _, id := range s.sortedQuizIDsLocked() {
		summaries = append(summaries, s.quizzes[id].Summary())
	}
	s.mu.Unlock()

	writeJSON(w, http.StatusOK, summaries)
}

func (s *Server) handleGetQuiz(w http.ResponseWriter, r *http.Request) {
	id, ok := quizIDParam(w, r)
	if !ok {
		return
	}
	quiz, found := s.Quiz(id)
	if !found {
		writeError(w, http.StatusNotFound, "quiz not found")
		return
	}
	writeJSON(w, http.StatusOK, quiz)
}

func (s *Server) handleCreateQuiz(w http.ResponseWriter, r *http.Request) {
	var body createQuizBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON: "+err.Error())
		return
	}
	if strings.TrimSpace(body.Title) == "" {
		writeError(w, http.StatusBadRequest, "title is required")
		return
	}
	if !validQuestions(w, body.Questions) {
		return
	}

	created := s.SeedQuiz(model.Quiz{
		Title:       body.Title,
		Description: body.Description,
		Questions:   body.Questions,
	})
	if u := userFromContext(r.Context()); u != nil {
		slog.Info("created quiz", "id", created.ID, "by", u.Username, "questions", len(created.Questions))
	}
	writeJSON(w, http.StatusCreated, created)
}

// handleUpdateQuiz appends the submitted questions to the stored ones.
func (s *Server) handleUpdateQuiz(w http.ResponseWriter, r *http.Request) {
	id, ok := quizIDParam(w, r)
	if !ok {
		return
	}
	var body updateQuizBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON: "+err.Error())
		return
	}
	if !validQuestions(w, body.Questions) {
		return
	}

	s.mu.Lock()
	quiz, found := s.quizzes[id]
	if !found {
		s.mu.Unlock()
		writeError(w, http.StatusNotFound, "quiz not found")
		return
	}
	quiz.Questions = append(quiz.Questions, s.assignQuestionIDsLocked(body.Questions)...)
	updated := cloneQuiz(*quiz)
	s.mu.Unlock()

	writeJSON(w, http.StatusOK, updated)
}

func (s *Server) handleAddQuestion(w http.ResponseWriter, r *http.Request) {
	id, ok := quizIDParam(w, r)
	if !ok {
		return
	}
	var question model.Question
	if err := json.NewDecoder(r.Body).Decode(&question); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON: "+err.Error())
		return
	}
	if !validQuestions(w, []model.Question{question}) {
		return
	}

	s.mu.Lock()
	quiz, found := s.quizzes[id]
	if !found {
		s.mu.Unlock()
		writeError(w, http.StatusNotFound, "quiz not found")
		return
	}
	added := s.assignQuestionIDsLocked([]model.Question{question})[0]
	quiz.Questions = append(quiz.Questions, added)
	s.mu.Unlock()

	writeJSON(w, http.StatusCreated, added)
}

func (s *Server) handleSubmitScore(w http.ResponseWriter, r *http.Request) {
	id, ok := quizIDParam(w, r)
	if !ok {
		return
	}
	var score model.Score
	if err := json.NewDecoder(r.Body).Decode(&score); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON: "+err.Error())
		return
	}

	s.mu.Lock()
	failure := s.scoreFailure
	_, found := s.quizzes[id]
	if failure == 0 && found {
		s.scores[id] = append(s.scores[id], score)
	}
	s.mu.Unlock()

	switch {
	case failure != 0:
		writeError(w, failure, "score recording failed")
	case !found:
		writeError(w, http.StatusNotFound, "quiz not found")
	default:
		writeJSON(w, http.StatusCreated, map[string]string{"status": "recorded"})
	}
}
