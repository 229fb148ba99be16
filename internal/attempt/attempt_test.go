package attempt

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/pavelanni/quizapp/internal/model"
	"github.com/pavelanni/quizapp/internal/store"
)

type reporterFunc func(ctx context.Context, quizID int64, score model.Score) error

func (f reporterFunc) SubmitScore(ctx context.Context, quizID int64, score model.Score) error {
	return f(ctx, quizID, score)
}

type fetcherFunc func(ctx context.Context, id int64) (model.Quiz, error)

func (f fetcherFunc) GetQuiz(ctx context.Context, id int64) (model.Quiz, error) {
	return f(ctx, id)
}

func geoQuiz() model.Quiz {
	q := func(text string, correct int) model.Question {
		return model.Question{
			Text:          text,
			Options:       []string{"Berlin", "Paris", "Madrid", "Rome"},
			CorrectAnswer: model.IntPtr(correct),
		}
	}
	return model.Quiz{
		ID:    7,
		Title: "Capitals",
		Questions: []model.Question{
			q("France?", 1),
			q("Spain?", 2),
			q("Italy?", 3),
		},
	}
}

func started(t *testing.T, reporter ScoreReporter, opts ...Option) *Attempt {
	t.Helper()
	a := New(7, reporter, opts...)
	if err := a.Begin(geoQuiz()); err != nil {
		t.Fatalf("Begin: %v", err)
	}
	return a
}

func waitReport(t *testing.T, a *Attempt) error {
	t.Helper()
	select {
	case err := <-a.Reports():
		return err
	case <-time.After(5 * time.Second):
		t.Fatalf("score report did not finish")
		return nil
	}
}

func TestBeginInitializesAnswerSet(t *testing.T) {
	a := started(t, nil)
	if a.State() != InProgress {
		t.Fatalf("state = %s, want in progress", a.State())
	}
	answers := a.Answers()
	if len(answers) != 3 {
		t.Fatalf("answers = %v, want 3 slots", answers)
	}
	for i, ans := range answers {
		if ans != model.Unanswered {
			t.Errorf("answers[%d] = %d, want Unanswered", i, ans)
		}
	}
	if a.Cursor() != 0 {
		t.Errorf("cursor = %d, want 0", a.Cursor())
	}
	if a.ID() == "" {
		t.Errorf("attempt has no id")
	}
}

func TestBeginRejectsEmptyQuiz(t *testing.T) {
	a := New(1, nil)
	err := a.Begin(model.Quiz{ID: 1, Title: "Empty"})
	if !errors.Is(err, model.ErrEmptyQuiz) {
		t.Fatalf("Begin(empty) error = %v, want ErrEmptyQuiz", err)
	}
	if a.State() != Loading {
		t.Errorf("state = %s, want loading", a.State())
	}
	if _, err := a.Submit(); !errors.Is(err, ErrInvalidState) {
		t.Errorf("Submit while loading error = %v, want ErrInvalidState", err)
	}
}

func TestInputsRejectedWhileLoading(t *testing.T) {
	a := New(1, nil)
	for name, fn := range map[string]func() error{
		"select":  func() error { return a.SelectAnswer(0, 0) },
		"advance": a.Advance,
		"retreat": a.Retreat,
	} {
		if err := fn(); !errors.Is(err, ErrInvalidState) {
			t.Errorf("%s while loading error = %v, want ErrInvalidState", name, err)
		}
	}
	if _, ok := a.Current(); ok {
		t.Errorf("Current() reported a question while loading")
	}
}

func TestNavigationClamps(t *testing.T) {
	a := started(t, nil)

	if err := a.Retreat(); err != nil {
		t.Fatalf("Retreat: %v", err)
	}
	if a.Cursor() != 0 {
		t.Errorf("cursor after retreat at start = %d, want 0", a.Cursor())
	}
	for i := 0; i < 5; i++ {
		if err := a.Advance(); err != nil {
			t.Fatalf("Advance: %v", err)
		}
	}
	if a.Cursor() != 2 {
		t.Errorf("cursor after advancing past end = %d, want 2", a.Cursor())
	}
	q, ok := a.Current()
	if !ok || q.Text != "Italy?" {
		t.Errorf("Current() = %q, %v", q.Text, ok)
	}
}

func TestSelectAnswer(t *testing.T) {
	tests := []struct {
		name    string
		q, opt  int
		wantErr error
	}{
		{"valid", 0, 1, nil},
		{"negative question", -1, 0, ErrOutOfRange},
		{"question past end", 3, 0, ErrOutOfRange},
		{"negative option", 0, -1, ErrOutOfRange},
		{"option past end", 0, 4, ErrOutOfRange},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := started(t, nil)
			err := a.SelectAnswer(tt.q, tt.opt)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("SelectAnswer(%d, %d) error = %v, want %v", tt.q, tt.opt, err, tt.wantErr)
			}
			if tt.wantErr != nil {
				for i, ans := range a.Answers() {
					if ans != model.Unanswered {
						t.Errorf("answers[%d] changed to %d on rejected input", i, ans)
					}
				}
			}
		})
	}
}

func TestSelectLastWriteWinsAndKeepsCursor(t *testing.T) {
	a := started(t, nil)
	_ = a.Advance()
	if err := a.SelectCurrent(0); err != nil {
		t.Fatalf("SelectCurrent: %v", err)
	}
	if err := a.SelectAnswer(1, 2); err != nil {
		t.Fatalf("SelectAnswer: %v", err)
	}
	if got := a.Answers()[1]; got != 2 {
		t.Errorf("answers[1] = %d, want 2", got)
	}
	if a.Cursor() != 1 {
		t.Errorf("cursor moved to %d", a.Cursor())
	}
}

func TestSubmitScoresAndReports(t *testing.T) {
	var mu sync.Mutex
	var reported []model.Score
	reporter := reporterFunc(func(_ context.Context, quizID int64, score model.Score) error {
		if quizID != 7 {
			t.Errorf("reported quiz %d, want 7", quizID)
		}
		mu.Lock()
		reported = append(reported, score)
		mu.Unlock()
		return nil
	})
	a := started(t, reporter)
	_ = a.SelectAnswer(0, 1)
	_ = a.SelectAnswer(1, 0)
	// question 2 left unanswered

	score, err := a.Submit()
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if score.TotalMarks != 1 || score.TotalQuestions != 3 {
		t.Errorf("score = %+v, want 1/3", score)
	}
	if a.State() != Completed {
		t.Errorf("state = %s, want completed", a.State())
	}
	if err := waitReport(t, a); err != nil {
		t.Errorf("report error = %v", err)
	}
	mu.Lock()
	defer mu.Unlock()
	if len(reported) != 1 || reported[0] != score {
		t.Errorf("reported = %v, want [%v]", reported, score)
	}
}

func TestSubmitTwiceKeepsScore(t *testing.T) {
	a := started(t, nil)
	_ = a.SelectAnswer(0, 1)
	first, err := a.Submit()
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	second, err := a.Submit()
	if !errors.Is(err, ErrAlreadySubmitted) {
		t.Fatalf("second Submit error = %v, want ErrAlreadySubmitted", err)
	}
	if second != first {
		t.Errorf("second score = %+v, want %+v", second, first)
	}
	if err := a.SelectAnswer(1, 2); !errors.Is(err, ErrInvalidState) {
		t.Errorf("SelectAnswer after submit error = %v, want ErrInvalidState", err)
	}
}

func TestFailedReportKeepsCompletedState(t *testing.T) {
	a := started(t, reporterFunc(func(context.Context, int64, model.Score) error {
		return &model.RepositoryError{Op: "submit score", StatusCode: 500, Message: "boom"}
	}))
	_ = a.SelectAnswer(0, 1)
	_ = a.SelectAnswer(1, 2)
	_ = a.SelectAnswer(2, 3)

	score, err := a.Submit()
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	reportErr := waitReport(t, a)
	var scoringErr *model.ScoringReportError
	if !errors.As(reportErr, &scoringErr) {
		t.Fatalf("report error = %v, want ScoringReportError", reportErr)
	}
	if scoringErr.QuizID != 7 {
		t.Errorf("QuizID = %d", scoringErr.QuizID)
	}
	got, ok := a.Score()
	if !ok || got != score || got.PercentageScore != 100 {
		t.Errorf("Score() = %+v, %v; want %+v", got, ok, score)
	}
	if a.State() != Completed {
		t.Errorf("state = %s, want completed", a.State())
	}
}

func TestReview(t *testing.T) {
	a := started(t, nil)
	if _, err := a.Review(); !errors.Is(err, ErrInvalidState) {
		t.Fatalf("Review before submit error = %v", err)
	}
	_ = a.SelectAnswer(0, 1)
	_ = a.SelectAnswer(1, 0)
	if _, err := a.Submit(); err != nil {
		t.Fatalf("Submit: %v", err)
	}
	items, err := a.Review()
	if err != nil {
		t.Fatalf("Review: %v", err)
	}
	want := []struct {
		selected int
		correct  bool
	}{
		{1, true},
		{0, false},
		{model.Unanswered, false},
	}
	for i, w := range want {
		if items[i].Selected != w.selected || items[i].Correct != w.correct {
			t.Errorf("item %d = %+v, want selected %d correct %v", i, items[i], w.selected, w.correct)
		}
	}
}

func TestLoad(t *testing.T) {
	a := New(7, nil)
	calls := 0
	fetcher := fetcherFunc(func(_ context.Context, id int64) (model.Quiz, error) {
		calls++
		if calls == 1 {
			return model.Quiz{}, &model.RepositoryError{Op: "get quiz", Message: "unavailable"}
		}
		return geoQuiz(), nil
	})

	var repoErr *model.RepositoryError
	if err := a.Load(context.Background(), fetcher); !errors.As(err, &repoErr) {
		t.Fatalf("first Load error = %v, want RepositoryError", err)
	}
	if a.State() != Loading {
		t.Fatalf("state after failed load = %s", a.State())
	}
	if err := a.Load(context.Background(), fetcher); err != nil {
		t.Fatalf("retry Load: %v", err)
	}
	if a.State() != InProgress || a.Quiz().Title != "Capitals" {
		t.Errorf("state = %s, quiz = %q", a.State(), a.Quiz().Title)
	}
}

func TestLateFetchDiscardedAfterClose(t *testing.T) {
	a := New(7, nil)
	release := make(chan struct{})
	fetched := make(chan struct{})
	fetcher := fetcherFunc(func(context.Context, int64) (model.Quiz, error) {
		close(fetched)
		<-release
		return geoQuiz(), nil
	})

	done := make(chan error, 1)
	go func() { done <- a.Load(context.Background(), fetcher) }()
	<-fetched
	a.Close()
	close(release)

	if err := <-done; !errors.Is(err, ErrDiscarded) {
		t.Fatalf("Load error = %v, want ErrDiscarded", err)
	}
	if a.State() != Loading || len(a.Answers()) != 0 {
		t.Errorf("late fetch mutated state: %s, %v", a.State(), a.Answers())
	}
}

func TestJournalRecordsReportOutcome(t *testing.T) {
	db, err := store.New(":memory:")
	if err != nil {
		t.Fatalf("store.New: %v", err)
	}
	defer db.Close()

	completedAt := time.Date(2026, 2, 1, 10, 0, 0, 0, time.UTC)
	a := started(t,
		reporterFunc(func(context.Context, int64, model.Score) error { return errors.New("offline") }),
		WithJournal(db),
		WithClock(func() time.Time { return completedAt }),
		WithReportTimeout(time.Second),
	)
	_ = a.SelectAnswer(0, 1)
	if _, err := a.Submit(); err != nil {
		t.Fatalf("Submit: %v", err)
	}
	_ = waitReport(t, a)

	rec, err := db.GetAttempt(a.ID())
	if err != nil {
		t.Fatalf("GetAttempt: %v", err)
	}
	if rec == nil {
		t.Fatalf("attempt %s not journaled", a.ID())
	}
	if rec.QuizTitle != "Capitals" || rec.Score.TotalMarks != 1 {
		t.Errorf("record = %+v", rec)
	}
	if rec.Reported || rec.ReportError == "" {
		t.Errorf("reported = %v, reportError = %q; want failed report", rec.Reported, rec.ReportError)
	}
	if !rec.CompletedAt.Equal(completedAt) {
		t.Errorf("completedAt = %v, want %v", rec.CompletedAt, completedAt)
	}
}
