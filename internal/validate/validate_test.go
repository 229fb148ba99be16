package validate

import (
	"errors"
	"testing"

	"github.com/pavelanni/quizapp/internal/model"
)

type form struct {
	Name    string `json:"name" validate:"notblank"`
	Email   string `json:"email" validate:"required,email"`
	Secret  string `json:"secret" validate:"required,min=6"`
	Confirm string `json:"confirm" validate:"eqfield=Secret"`
}

func TestStructValid(t *testing.T) {
	err := Struct(form{Name: "ann", Email: "ann@example.com", Secret: "secret1", Confirm: "secret1"})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
}

func TestStructCollectsEveryField(t *testing.T) {
	err := Struct(form{Name: "   ", Email: "nope", Secret: "abc", Confirm: "xyz"})
	var verr *model.ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected *model.ValidationError, got %T (%v)", err, err)
	}
	for _, field := range []string{"name", "email", "secret", "confirm"} {
		if !verr.Has(field) {
			t.Errorf("expected %q to be reported, got %v", field, verr.Fields)
		}
	}
	if verr.Fields["secret"] != "must be at least 6 characters" {
		t.Errorf("secret message = %q", verr.Fields["secret"])
	}
}

func TestStructQuestion(t *testing.T) {
	tests := []struct {
		name   string
		q      model.Question
		fields []string
	}{
		{
			name: "valid",
			q:    model.Question{Text: "Q?", Options: []string{"a", "b", "c", "d"}, CorrectAnswer: model.IntPtr(0)},
		},
		{
			name:   "blank text",
			q:      model.Question{Text: " ", Options: []string{"a", "b", "c", "d"}, CorrectAnswer: model.IntPtr(0)},
			fields: []string{"text"},
		},
		{
			name:   "blank option",
			q:      model.Question{Text: "Q?", Options: []string{"a", "", "c", "d"}, CorrectAnswer: model.IntPtr(1)},
			fields: []string{"options[1]"},
		},
		{
			name:   "three options",
			q:      model.Question{Text: "Q?", Options: []string{"a", "b", "c"}, CorrectAnswer: model.IntPtr(1)},
			fields: []string{"options"},
		},
		{
			name:   "unset correct answer",
			q:      model.Question{Text: "Q?", Options: []string{"a", "b", "c", "d"}},
			fields: []string{"correctAnswer"},
		},
		{
			name:   "correct answer out of range",
			q:      model.Question{Text: "Q?", Options: []string{"a", "b", "c", "d"}, CorrectAnswer: model.IntPtr(4)},
			fields: []string{"correctAnswer"},
		},
		{
			name: "zero is a valid correct answer",
			q:    model.Question{Text: "Q?", Options: []string{"a", "b", "c", "d"}, CorrectAnswer: model.IntPtr(0)},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Struct(tt.q)
			if len(tt.fields) == 0 {
				if err != nil {
					t.Fatalf("expected valid, got %v", err)
				}
				return
			}
			var verr *model.ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("expected *model.ValidationError, got %v", err)
			}
			for _, f := range tt.fields {
				if !verr.Has(f) {
					t.Errorf("expected field %q in %v", f, verr.Fields)
				}
			}
		})
	}
}
