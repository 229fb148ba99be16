// Package attempt implements one run through a quiz: loading it, moving between
// questions, recording answers, and producing a score that is reported to the
// service in the background.
package attempt

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/pavelanni/quizapp/internal/model"
)

const defaultReportTimeout = 10 * time.Second

var (
	ErrInvalidState     = errors.New("operation not allowed in current state")
	ErrOutOfRange       = errors.New("index out of range")
	ErrAlreadySubmitted = errors.New("attempt already submitted")
	// ErrDiscarded is returned by Load when the attempt was closed while the quiz was being fetched.
	ErrDiscarded = errors.New("attempt closed before quiz arrived")
)

type State int

const (
	Loading State = iota
	InProgress
	Completed
)

func (s State) String() string {
	switch s {
	case Loading:
		return "loading"
	case InProgress:
		return "in progress"
	case Completed:
		return "completed"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// QuizFetcher loads a quiz with its questions.
type QuizFetcher interface {
	GetQuiz(ctx context.Context, id int64) (model.Quiz, error)
}

// ScoreReporter records a score with the service.
type ScoreReporter interface {
	SubmitScore(ctx context.Context, quizID int64, score model.Score) error
}

// Journal keeps a local record of completed attempts.
type Journal interface {
	RecordAttempt(rec model.AttemptRecord) error
	MarkReported(id string, reportErr string) error
}

// ReviewItem is the outcome of one question in a completed attempt.
type ReviewItem struct {
	Question model.Question
	Selected int
	Correct  bool
}

type Option func(*Attempt)

// WithLogger sets the logger. The default is slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(a *Attempt) { a.logger = l }
}

// WithReportTimeout bounds the background score report.
func WithReportTimeout(d time.Duration) Option {
	return func(a *Attempt) {
		if d > 0 {
			a.reportTimeout = d
		}
	}
}

// WithJournal records completed attempts and their report outcome.
func WithJournal(j Journal) Option {
	return func(a *Attempt) { a.journal = j }
}

// WithClock overrides the clock used for completion timestamps.
func WithClock(now func() time.Time) Option {
	return func(a *Attempt) { a.now = now }
}

// Attempt is safe for concurrent use.
type Attempt struct {
	id            string
	quizID        int64
	reporter      ScoreReporter
	journal       Journal
	logger        *slog.Logger
	reportTimeout time.Duration
	now           func() time.Time
	reports       chan error

	mu      sync.Mutex
	state   State
	closed  bool
	quiz    model.Quiz
	answers []int
	cursor  int
	score   model.Score
}

// New creates an attempt in the Loading state. A nil reporter skips score reporting.
func New(quizID int64, reporter ScoreReporter, opts ...Option) *Attempt {
	a := &Attempt{
		id:            uuid.NewString(),
		quizID:        quizID,
		reporter:      reporter,
		logger:        slog.Default(),
		reportTimeout: defaultReportTimeout,
		now:           time.Now,
		reports:       make(chan error, 1),
		state:         Loading,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

func (a *Attempt) ID() string {
	return a.id
}

func (a *Attempt) QuizID() int64 {
	return a.quizID
}

// Load fetches the quiz and begins the attempt. The attempt stays Loading when
// the fetch fails, so Load may be retried.
func (a *Attempt) Load(ctx context.Context, fetcher QuizFetcher) error {
	a.mu.Lock()
	if a.closed {
		a.mu.Unlock()
		return ErrDiscarded
	}
	if a.state != Loading {
		a.mu.Unlock()
		return fmt.Errorf("load: %w (%s)", ErrInvalidState, a.state)
	}
	a.mu.Unlock()

	quiz, err := fetcher.GetQuiz(ctx, a.quizID)

	a.mu.Lock()
	defer a.mu.Unlock()
	if a.closed {
		a.logger.Debug("discarding quiz fetched after close", "attempt", a.id, "quiz_id", a.quizID)
		return ErrDiscarded
	}
	if err != nil {
		return err
	}
	return a.beginLocked(quiz)
}

// Begin starts the attempt with an already fetched quiz.
func (a *Attempt) Begin(quiz model.Quiz) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.closed {
		return ErrDiscarded
	}
	return a.beginLocked(quiz)
}

func (a *Attempt) beginLocked(quiz model.Quiz) error {
	if a.state != Loading {
		return fmt.Errorf("begin: %w (%s)", ErrInvalidState, a.state)
	}
	if len(quiz.Questions) == 0 {
		return model.ErrEmptyQuiz
	}

	answers := make([]int, len(quiz.Questions))
	for i := range answers {
		answers[i] = model.Unanswered
	}
	a.quiz = quiz
	a.answers = answers
	a.cursor = 0
	a.state = InProgress
	return nil
}

// SelectAnswer records option opt for question q. The last selection wins and
// the cursor does not move.
func (a *Attempt) SelectAnswer(q, opt int) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.selectLocked(q, opt)
}

// SelectCurrent records option opt for the question under the cursor.
func (a *Attempt) SelectCurrent(opt int) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.selectLocked(a.cursor, opt)
}

func (a *Attempt) selectLocked(q, opt int) error {
	if a.state != InProgress {
		return fmt.Errorf("select answer: %w (%s)", ErrInvalidState, a.state)
	}
	if q < 0 || q >= len(a.answers) {
		return fmt.Errorf("question %d: %w", q, ErrOutOfRange)
	}
	if !a.quiz.Questions[q].ValidOption(opt) {
		return fmt.Errorf("option %d: %w", opt, ErrOutOfRange)
	}
	a.answers[q] = opt
	return nil
}

// Advance moves to the next question, staying on the last one.
func (a *Attempt) Advance() error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.state != InProgress {
		return fmt.Errorf("advance: %w (%s)", ErrInvalidState, a.state)
	}
	if a.cursor < len(a.quiz.Questions)-1 {
		a.cursor++
	}
	return nil
}

// Retreat moves to the previous question, staying on the first one.
func (a *Attempt) Retreat() error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.state != InProgress {
		return fmt.Errorf("retreat: %w (%s)", ErrInvalidState, a.state)
	}
	if a.cursor > 0 {
		a.cursor--
	}
	return nil
}

// Submit scores the attempt and completes it. Unanswered questions count as
// incorrect. The score is then reported in the background; the outcome arrives
// on Reports and never changes the attempt.
//
// Submitting a completed attempt returns the original score with ErrAlreadySubmitted.
func (a *Attempt) Submit() (model.Score, error) {
	a.mu.Lock()
	switch a.state {
	case Completed:
		score := a.score
		a.mu.Unlock()
		return score, ErrAlreadySubmitted
	case Loading:
		a.mu.Unlock()
		return model.Score{}, fmt.Errorf("submit: %w (%s)", ErrInvalidState, Loading)
	}

	score, err := model.ComputeScore(a.answers, a.quiz.Questions)
	if err != nil {
		a.mu.Unlock()
		return model.Score{}, fmt.Errorf("submit: %w", err)
	}
	a.score = score
	a.state = Completed
	rec := model.AttemptRecord{
		ID:          a.id,
		QuizID:      a.quizID,
		QuizTitle:   a.quiz.Title,
		Score:       score,
		CompletedAt: a.now(),
	}
	a.mu.Unlock()

	a.logger.Info("attempt completed",
		"attempt", a.id,
		"quiz_id", a.quizID,
		"marks", score.TotalMarks,
		"questions", score.TotalQuestions,
	)
	if a.journal != nil {
		if err := a.journal.RecordAttempt(rec); err != nil {
			a.logger.Warn("failed to journal attempt", "attempt", a.id, "error", err)
		}
	}
	a.report(score)
	return score, nil
}

func (a *Attempt) report(score model.Score) {
	if a.reporter == nil {
		a.finishReport(nil)
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), a.reportTimeout)
		defer cancel()
		var reportErr error
		if err := a.reporter.SubmitScore(ctx, a.quizID, score); err != nil {
			reportErr = &model.ScoringReportError{QuizID: a.quizID, Err: err}
			a.logger.Warn("score report failed", "attempt", a.id, "quiz_id", a.quizID, "error", err)
		}
		a.finishReport(reportErr)
	}()
}

func (a *Attempt) finishReport(reportErr error) {
	if a.journal != nil {
		msg := ""
		if reportErr != nil {
			msg = reportErr.Error()
		}
		if err := a.journal.MarkReported(a.id, msg); err != nil {
			a.logger.Warn("failed to journal report outcome", "attempt", a.id, "error", err)
		}
	}
	a.reports <- reportErr
	close(a.reports)
}

// Reports yields exactly one value once the score report finishes: nil on
// success or a *model.ScoringReportError. It is closed afterwards.
func (a *Attempt) Reports() <-chan error {
	return a.reports
}

// Close abandons the attempt. A quiz still being fetched is discarded on arrival.
// A score report already in flight still completes.
func (a *Attempt) Close() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.closed = true
}

func (a *Attempt) State() State {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.state
}

func (a *Attempt) Cursor() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.cursor
}

// Current returns the question under the cursor. ok is false while Loading.
func (a *Attempt) Current() (q model.Question, ok bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.state == Loading {
		return model.Question{}, false
	}
	return a.quiz.Questions[a.cursor], true
}

// Answers returns a copy of the answer set.
func (a *Attempt) Answers() []int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return append([]int(nil), a.answers...)
}

// Score returns the score of a completed attempt.
func (a *Attempt) Score() (model.Score, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.score, a.state == Completed
}

func (a *Attempt) Quiz() model.Quiz {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.quiz
}

// Review lists every question with the selected option and whether it was correct.
func (a *Attempt) Review() ([]ReviewItem, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.state != Completed {
		return nil, fmt.Errorf("review: %w (%s)", ErrInvalidState, a.state)
	}
	items := make([]ReviewItem, len(a.quiz.Questions))
	for i, q := range a.quiz.Questions {
		items[i] = ReviewItem{
			Question: q,
			Selected: a.answers[i],
			Correct:  q.IsCorrect(a.answers[i]),
		}
	}
	return items, nil
}
