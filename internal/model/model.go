package model

import (
	"time"
)

// OptionCount is the number of options every multiple-choice question carries.
const OptionCount = 4

// Unanswered marks an Answer Set slot with no option selected.
// It must never collide with a valid option index.
const Unanswered = -1

// User is the identity returned by the auth service.
type User struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
}

// Credential is the persisted session: a bearer token plus the user it belongs to.
type Credential struct {
	Token string `json:"token"`
	User  User   `json:"user"`
}

// Question is a multiple-choice question. CorrectAnswer is nil until the author picks one.
type Question struct {
	ID            int64    `json:"id,omitempty" yaml:"-"`
	Text          string   `json:"text" yaml:"text" validate:"notblank"`
	Options       []string `json:"options" yaml:"options" validate:"len=4,dive,notblank"`
	CorrectAnswer *int     `json:"correctAnswer" yaml:"correctAnswer" validate:"required,min=0,max=3"`
}

// ValidOption reports whether i indexes one of the question's options.
func (q Question) ValidOption(i int) bool {
	return i >= 0 && i < len(q.Options)
}

// IsCorrect reports whether answer matches the question's correct option.
// The Unanswered sentinel is never correct.
func (q Question) IsCorrect(answer int) bool {
	if q.CorrectAnswer == nil || answer == Unanswered {
		return false
	}
	return *q.CorrectAnswer == answer
}

// QuizSummary is a quiz as returned by the list operation.
type QuizSummary struct {
	ID          int64  `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
}

// Quiz is a quiz together with its ordered questions.
type Quiz struct {
	ID          int64      `json:"id"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Questions   []Question `json:"questions"`
}

// Summary strips the questions from q.
func (q Quiz) Summary() QuizSummary {
	return QuizSummary{ID: q.ID, Title: q.Title, Description: q.Description}
}

// Score is the result of one completed attempt.
type Score struct {
	TotalMarks      int     `json:"totalMarks"`
	TotalQuestions  int     `json:"totalQuestions"`
	PercentageScore float64 `json:"percentageScore"`
}

// AttemptRecord is a local journal entry for a completed attempt.
// The server remains the source of truth for scores.
type AttemptRecord struct {
	ID          string    `json:"id"`
	QuizID      int64     `json:"quiz_id"`
	QuizTitle   string    `json:"quiz_title"`
	Score       Score     `json:"score"`
	Reported    bool      `json:"reported"`
	ReportError string    `json:"report_error,omitempty"`
	CompletedAt time.Time `json:"completed_at"`
}

// IntPtr returns a pointer to v.
func IntPtr(v int) *int {
	return &v
}
