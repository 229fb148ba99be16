package model

import (
	"errors"
	"testing"
)

func geoQuestions() []Question {
	return []Question{
		{Text: "Capital of France?", Options: []string{"Paris", "Lyon", "Nice", "Lille"}, CorrectAnswer: IntPtr(0)},
	}
}

func TestComputeScore(t *testing.T) {
	three := []Question{
		{Text: "Q1", Options: []string{"a", "b", "c", "d"}, CorrectAnswer: IntPtr(0)},
		{Text: "Q2", Options: []string{"a", "b", "c", "d"}, CorrectAnswer: IntPtr(3)},
		{Text: "Q3", Options: []string{"a", "b", "c", "d"}, CorrectAnswer: IntPtr(1)},
	}

	tests := []struct {
		name      string
		answers   []int
		questions []Question
		wantMarks int
		wantPct   float64
	}{
		{"geo correct", []int{0}, geoQuestions(), 1, 100.0},
		{"geo wrong", []int{2}, geoQuestions(), 0, 0.0},
		{"geo unanswered", []int{Unanswered}, geoQuestions(), 0, 0.0},
		{"all correct", []int{0, 3, 1}, three, 3, 100.0},
		{"none correct", []int{1, 0, 0}, three, 0, 0.0},
		{"all unanswered", []int{Unanswered, Unanswered, Unanswered}, three, 0, 0.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ComputeScore(tt.answers, tt.questions)
			if err != nil {
				t.Fatalf("ComputeScore: %v", err)
			}
			if got.TotalMarks != tt.wantMarks {
				t.Errorf("TotalMarks = %d, want %d", got.TotalMarks, tt.wantMarks)
			}
			if got.TotalQuestions != len(tt.questions) {
				t.Errorf("TotalQuestions = %d, want %d", got.TotalQuestions, len(tt.questions))
			}
			if got.PercentageScore != tt.wantPct {
				t.Errorf("PercentageScore = %v, want %v", got.PercentageScore, tt.wantPct)
			}
		})
	}
}

func TestComputeScoreUsesFloatingDivision(t *testing.T) {
	questions := []Question{
		{Text: "Q1", Options: []string{"a", "b", "c", "d"}, CorrectAnswer: IntPtr(0)},
		{Text: "Q2", Options: []string{"a", "b", "c", "d"}, CorrectAnswer: IntPtr(0)},
		{Text: "Q3", Options: []string{"a", "b", "c", "d"}, CorrectAnswer: IntPtr(0)},
	}
	got, err := ComputeScore([]int{0, 0, Unanswered}, questions)
	if err != nil {
		t.Fatalf("ComputeScore: %v", err)
	}
	marks, total := 2, 3
	want := float64(marks) / float64(total) * 100
	if got.PercentageScore != want {
		t.Errorf("PercentageScore = %v, want %v", got.PercentageScore, want)
	}
}

func TestComputeScoreIsIdempotent(t *testing.T) {
	answers := []int{0}
	first, _ := ComputeScore(answers, geoQuestions())
	second, _ := ComputeScore(answers, geoQuestions())
	if first != second {
		t.Errorf("scores differ: %+v vs %+v", first, second)
	}
}

func TestComputeScoreEmptyQuiz(t *testing.T) {
	_, err := ComputeScore(nil, nil)
	if !errors.Is(err, ErrEmptyQuiz) {
		t.Fatalf("expected ErrEmptyQuiz, got %v", err)
	}
}

func TestComputeScoreLengthMismatch(t *testing.T) {
	if _, err := ComputeScore([]int{0, 1}, geoQuestions()); err == nil {
		t.Fatal("expected error for mismatched answer set")
	}
}

func TestUnansweredNeverValidIndex(t *testing.T) {
	q := geoQuestions()[0]
	for i := 0; i < OptionCount; i++ {
		if i == Unanswered {
			t.Fatalf("sentinel collides with option index %d", i)
		}
	}
	if q.ValidOption(Unanswered) {
		t.Error("sentinel must not be a valid option")
	}
	if q.IsCorrect(Unanswered) {
		t.Error("sentinel must never be correct")
	}
}

func TestValidationErrorMessage(t *testing.T) {
	err := &ValidationError{Fields: map[string]string{"password": "too short", "email": "invalid"}}
	want := "validation failed: email: invalid; password: too short"
	if err.Error() != want {
		t.Errorf("Error() = %q, want %q", err.Error(), want)
	}
	if !err.Has("email") || err.Has("username") {
		t.Error("Has reported wrong fields")
	}
}

func TestRepositoryErrorMessage(t *testing.T) {
	err := &RepositoryError{Op: "get quiz", StatusCode: 404, Message: "quiz not found"}
	if err.Error() != "get quiz: quiz not found (status 404)" {
		t.Errorf("unexpected message %q", err.Error())
	}
	err = &RepositoryError{Op: "list quizzes", Err: errors.New("dial tcp: refused")}
	if err.Error() != "list quizzes: dial tcp: refused" {
		t.Errorf("unexpected message %q", err.Error())
	}
}
