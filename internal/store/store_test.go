package store

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/pavelanni/quizapp/internal/model"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := New(":memory:")
	if err != nil {
		t.Fatalf("newTestStore: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func testRecord(id string, quizID int64, marks, total int, at time.Time) model.AttemptRecord {
	return model.AttemptRecord{
		ID:        id,
		QuizID:    quizID,
		QuizTitle: "Geo",
		Score: model.Score{
			TotalMarks:      marks,
			TotalQuestions:  total,
			PercentageScore: float64(marks) / float64(total) * 100,
		},
		CompletedAt: at,
	}
}

func TestMetadata(t *testing.T) {
	s := newTestStore(t)

	// Missing key returns empty string.
	v, err := s.GetMetadata("missing")
	if err != nil {
		t.Fatalf("GetMetadata: %v", err)
	}
	if v != "" {
		t.Errorf("expected empty value, got %q", v)
	}

	if err := s.SetMetadata("lang", "en"); err != nil {
		t.Fatalf("SetMetadata: %v", err)
	}
	if err := s.SetMetadata("lang", "ru"); err != nil {
		t.Fatalf("SetMetadata update: %v", err)
	}
	v, _ = s.GetMetadata("lang")
	if v != "ru" {
		t.Errorf("expected 'ru', got %q", v)
	}

	if err := s.DeleteMetadata("lang"); err != nil {
		t.Fatalf("DeleteMetadata: %v", err)
	}
	v, _ = s.GetMetadata("lang")
	if v != "" {
		t.Errorf("expected deleted key, got %q", v)
	}
}

func TestCredentialSlot(t *testing.T) {
	s := newTestStore(t)

	// Empty slot.
	cred, err := s.LoadCredential()
	if err != nil {
		t.Fatalf("LoadCredential: %v", err)
	}
	if cred != nil {
		t.Fatalf("expected nil credential, got %+v", cred)
	}

	first := model.Credential{Token: "t1", User: model.User{ID: 1, Username: "ann", Email: "ann@example.com"}}
	if err := s.SaveCredential(first); err != nil {
		t.Fatalf("SaveCredential: %v", err)
	}

	// A second login overwrites the single slot.
	second := model.Credential{Token: "t2", User: model.User{ID: 2, Username: "bob", Email: "bob@example.com"}}
	if err := s.SaveCredential(second); err != nil {
		t.Fatalf("SaveCredential overwrite: %v", err)
	}
	cred, err = s.LoadCredential()
	if err != nil {
		t.Fatalf("LoadCredential: %v", err)
	}
	if cred == nil || *cred != second {
		t.Fatalf("expected %+v, got %+v", second, cred)
	}

	// Clearing twice is fine.
	for i := 0; i < 2; i++ {
		if err := s.ClearCredential(); err != nil {
			t.Fatalf("ClearCredential #%d: %v", i+1, err)
		}
	}
	cred, _ = s.LoadCredential()
	if cred != nil {
		t.Errorf("expected empty slot after clear, got %+v", cred)
	}
}

func TestCredentialSurvivesReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "quizapp.db")

	s, err := New(path)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	want := model.Credential{Token: "tok", User: model.User{ID: 7, Username: "ann"}}
	if err := s.SaveCredential(want); err != nil {
		t.Fatalf("SaveCredential: %v", err)
	}
	s.Close()

	s, err = New(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer s.Close()
	got, err := s.LoadCredential()
	if err != nil {
		t.Fatalf("LoadCredential: %v", err)
	}
	if got == nil || *got != want {
		t.Errorf("expected %+v after reopen, got %+v", want, got)
	}
}

func TestAttemptJournal(t *testing.T) {
	s := newTestStore(t)
	base := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

	if err := s.RecordAttempt(testRecord("a1", 1, 1, 1, base)); err != nil {
		t.Fatalf("RecordAttempt: %v", err)
	}
	if err := s.RecordAttempt(testRecord("a2", 2, 0, 2, base.Add(time.Minute))); err != nil {
		t.Fatalf("RecordAttempt: %v", err)
	}

	all, err := s.ListAttempts(0)
	if err != nil {
		t.Fatalf("ListAttempts: %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("expected 2 attempts, got %d", len(all))
	}
	// Newest first.
	if all[0].ID != "a2" {
		t.Errorf("expected a2 first, got %q", all[0].ID)
	}

	onlyQuiz1, err := s.ListAttempts(1)
	if err != nil {
		t.Fatalf("ListAttempts(1): %v", err)
	}
	if len(onlyQuiz1) != 1 || onlyQuiz1[0].Score.PercentageScore != 100 {
		t.Errorf("unexpected quiz 1 attempts: %+v", onlyQuiz1)
	}

	// Report outcome.
	if err := s.MarkReported("a1", ""); err != nil {
		t.Fatalf("MarkReported: %v", err)
	}
	if err := s.MarkReported("a2", "service unavailable"); err != nil {
		t.Fatalf("MarkReported: %v", err)
	}
	rec, err := s.GetAttempt("a1")
	if err != nil {
		t.Fatalf("GetAttempt: %v", err)
	}
	if rec == nil || !rec.Reported || rec.ReportError != "" {
		t.Errorf("expected a1 reported, got %+v", rec)
	}
	rec, _ = s.GetAttempt("a2")
	if rec == nil || rec.Reported || rec.ReportError != "service unavailable" {
		t.Errorf("expected a2 unreported with error, got %+v", rec)
	}

	missing, err := s.GetAttempt("nope")
	if err != nil {
		t.Fatalf("GetAttempt missing: %v", err)
	}
	if missing != nil {
		t.Errorf("expected nil for unknown attempt")
	}
}

func TestExportHistory(t *testing.T) {
	s := newTestStore(t)

	// Empty journal exports an empty list, not null.
	export, err := s.ExportHistory(0)
	if err != nil {
		t.Fatalf("ExportHistory: %v", err)
	}
	if export.Attempts == nil || export.NumAttempts != 0 || export.Average != 0 {
		t.Errorf("unexpected empty export: %+v", export)
	}

	base := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	_ = s.RecordAttempt(testRecord("a1", 1, 1, 1, base))
	_ = s.RecordAttempt(testRecord("a2", 1, 0, 1, base.Add(time.Second)))
	_ = s.SaveCredential(model.Credential{Token: "t", User: model.User{Username: "ann"}})

	export, err = s.ExportHistory(1)
	if err != nil {
		t.Fatalf("ExportHistory: %v", err)
	}
	if export.NumAttempts != 2 {
		t.Errorf("expected 2 attempts, got %d", export.NumAttempts)
	}
	if export.Average != 50 {
		t.Errorf("expected average 50, got %v", export.Average)
	}
	if export.User != "ann" {
		t.Errorf("expected user ann, got %q", export.User)
	}
}
