package cli

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/pavelanni/quizapp/internal/i18n"
)

// History prints the local journal of completed attempts, or the JSON export
// when asJSON is set. quizID 0 covers every quiz.
func (a *App) History(ctx context.Context, quizID int64, asJSON bool) error {
	if a.journal == nil {
		a.say(i18n.T(ctx, "NoAttempts"))
		return nil
	}

	if asJSON {
		export, err := a.journal.ExportHistory(quizID)
		if err != nil {
			a.showError(ctx, err, "ReadFailed")
			return err
		}
		data, err := json.MarshalIndent(export, "", "  ")
		if err != nil {
			return fmt.Errorf("marshal JSON: %w", err)
		}
		fmt.Fprintln(a.out, string(data))
		return nil
	}

	records, err := a.journal.ListAttempts(quizID)
	if err != nil {
		a.showError(ctx, err, "ReadFailed")
		return err
	}
	if len(records) == 0 {
		a.say(i18n.T(ctx, "NoAttempts"))
		return nil
	}
	for _, rec := range records {
		status := i18n.T(ctx, "Reported")
		if !rec.Reported {
			status = i18n.T(ctx, "NotReported")
		}
		a.say(fmt.Sprintf("%s  #%d %s  %d/%d (%.2f%%)  %s",
			rec.CompletedAt.Local().Format("2006-01-02 15:04"),
			rec.QuizID, rec.QuizTitle,
			rec.Score.TotalMarks, rec.Score.TotalQuestions, rec.Score.PercentageScore,
			status,
		))
	}
	return nil
}
