// Package authoring stages multiple-choice questions on the client and sends
// them to the service, either as a new quiz or as an extension of an existing one.
package authoring

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/pavelanni/quizapp/internal/apiclient"
	"github.com/pavelanni/quizapp/internal/model"
	"github.com/pavelanni/quizapp/internal/validate"
)

var (
	ErrWrongMode = errors.New("operation not allowed in current mode")
	// ErrSelectionChanged is returned by Select when a newer selection replaced it
	// before its quiz arrived.
	ErrSelectionChanged = errors.New("selection changed before quiz arrived")
	ErrNoSuchQuestion   = errors.New("no staged question at that position")
)

type Mode int

const (
	CreateMode Mode = iota
	UpdateMode
)

func (m Mode) String() string {
	if m == UpdateMode {
		return "update"
	}
	return "create"
}

// QuizService is the subset of the repository client the workflow needs.
type QuizService interface {
	GetQuiz(ctx context.Context, id int64) (model.Quiz, error)
	CreateQuiz(ctx context.Context, quiz apiclient.NewQuiz) (model.Quiz, error)
	UpdateQuiz(ctx context.Context, id int64, questions []model.Question) (model.Quiz, error)
}

// QuestionAdder appends a single question to an existing quiz.
type QuestionAdder interface {
	AddQuestion(ctx context.Context, quizID int64, question model.Question) (model.Question, error)
}

// ValidateDraft checks a question before it is staged or sent: non-blank text,
// exactly four non-blank options, and a correct answer in range.
func ValidateDraft(q model.Question) error {
	return validate.Struct(q)
}

// Workflow is the staged authoring state. It is safe for concurrent use.
type Workflow struct {
	svc    QuizService
	logger *slog.Logger

	mu          sync.Mutex
	generation  uint64
	mode        Mode
	target      int64
	title       string
	description string
	staged      []model.Question
}

func NewWorkflow(svc QuizService, logger *slog.Logger) *Workflow {
	if logger == nil {
		logger = slog.Default()
	}
	return &Workflow{svc: svc, logger: logger}
}

// Select targets an existing quiz. Its title and description are shown read-only
// and the staged questions start empty; the quiz's own questions are never
// loaded into the draft. id 0 returns to create mode.
func (w *Workflow) Select(ctx context.Context, id int64) error {
	w.mu.Lock()
	w.generation++
	gen := w.generation
	w.staged = nil
	w.title, w.description = "", ""
	if id == 0 {
		w.mode, w.target = CreateMode, 0
		w.mu.Unlock()
		return nil
	}
	w.mode, w.target = UpdateMode, id
	w.mu.Unlock()

	quiz, err := w.svc.GetQuiz(ctx, id)

	w.mu.Lock()
	defer w.mu.Unlock()
	if gen != w.generation {
		w.logger.Debug("discarding stale quiz selection", "quiz_id", id)
		return ErrSelectionChanged
	}
	if err != nil {
		return err
	}
	w.title, w.description = quiz.Title, quiz.Description
	return nil
}

// ClearSelection returns to create mode with an empty draft.
func (w *Workflow) ClearSelection() {
	_ = w.Select(context.Background(), 0)
}

// SetDetails sets the title and description of a new quiz.
func (w *Workflow) SetDetails(title, description string) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.mode != CreateMode {
		return fmt.Errorf("set details: %w (%s)", ErrWrongMode, w.mode)
	}
	w.title, w.description = title, description
	return nil
}

// AddQuestion stages a copy of draft. Invalid drafts leave the staged sequence unchanged.
func (w *Workflow) AddQuestion(draft model.Question) error {
	if err := ValidateDraft(draft); err != nil {
		return err
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	w.staged = append(w.staged, cloneQuestion(draft))
	return nil
}

// RemoveQuestion drops the staged question at index i.
func (w *Workflow) RemoveQuestion(i int) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if i < 0 || i >= len(w.staged) {
		return fmt.Errorf("remove %d: %w", i, ErrNoSuchQuestion)
	}
	w.staged = append(w.staged[:i:i], w.staged[i+1:]...)
	return nil
}

// Submit sends the draft. In create mode the title is required; in update mode
// at least one staged question is. The staged questions that were sent are
// cleared on success; on failure the draft is left as it was.
func (w *Workflow) Submit(ctx context.Context) (model.Quiz, error) {
	w.mu.Lock()
	gen := w.generation
	mode, target := w.mode, w.target
	title, description := w.title, w.description
	sent := make([]model.Question, len(w.staged))
	for i, q := range w.staged {
		sent[i] = cloneQuestion(q)
	}
	w.mu.Unlock()

	var (
		quiz model.Quiz
		err  error
	)
	switch mode {
	case CreateMode:
		if strings.TrimSpace(title) == "" {
			return model.Quiz{}, model.NewValidationError("title", "is required")
		}
		quiz, err = w.svc.CreateQuiz(ctx, apiclient.NewQuiz{
			Title:       strings.TrimSpace(title),
			Description: strings.TrimSpace(description),
			Questions:   sent,
		})
	case UpdateMode:
		if len(sent) == 0 {
			return model.Quiz{}, model.NewValidationError("questions", "at least one question is required")
		}
		quiz, err = w.svc.UpdateQuiz(ctx, target, sent)
	}
	if err != nil {
		w.logger.Warn("quiz submit failed", "mode", mode.String(), "quiz_id", target, "error", err)
		return model.Quiz{}, err
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	if gen == w.generation && len(w.staged) >= len(sent) {
		w.staged = append([]model.Question(nil), w.staged[len(sent):]...)
		if mode == CreateMode {
			w.title, w.description = "", ""
		}
	}
	w.logger.Info("quiz submitted", "mode", mode.String(), "quiz_id", quiz.ID, "questions", len(sent))
	return quiz, nil
}

// Mode returns the current mode and, in update mode, the target quiz id.
func (w *Workflow) Mode() (Mode, int64) {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.mode, w.target
}

// Details returns the title and description shown for the draft.
func (w *Workflow) Details() (title, description string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.title, w.description
}

// Staged returns a copy of the staged questions.
func (w *Workflow) Staged() []model.Question {
	w.mu.Lock()
	defer w.mu.Unlock()
	out := make([]model.Question, len(w.staged))
	for i, q := range w.staged {
		out[i] = cloneQuestion(q)
	}
	return out
}

// AddToQuiz validates draft and appends it to quiz quizID.
func AddToQuiz(ctx context.Context, adder QuestionAdder, quizID int64, draft model.Question) (model.Question, error) {
	if quizID <= 0 {
		return model.Question{}, model.NewValidationError("quiz", "is required")
	}
	if err := ValidateDraft(draft); err != nil {
		return model.Question{}, err
	}
	return adder.AddQuestion(ctx, quizID, draft)
}

func cloneQuestion(q model.Question) model.Question {
	q.Options = append([]string(nil), q.Options...)
	if q.CorrectAnswer != nil {
		q.CorrectAnswer = model.IntPtr(*q.CorrectAnswer)
	}
	return q
}
