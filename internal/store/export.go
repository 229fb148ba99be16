package store

import (
	"fmt"
	"time"

	"github.com/pavelanni/quizapp/internal/model"
)

// ExportHistory builds an export-ready view of the attempt journal.
func (s *Store) ExportHistory(quizID int64) (model.HistoryExport, error) {
	records, err := s.ListAttempts(quizID)
	if err != nil {
		return model.HistoryExport{}, fmt.Errorf("list attempts: %w", err)
	}

	export := model.HistoryExport{
		ExportedAt:  time.Now().UTC(),
		NumAttempts: len(records),
		Attempts:    records,
	}
	if export.Attempts == nil {
		export.Attempts = []model.AttemptRecord{}
	}

	cred, err := s.LoadCredential()
	if err != nil {
		return model.HistoryExport{}, err
	}
	if cred != nil {
		export.User = cred.User.Username
	}

	var sum float64
	for _, rec := range records {
		sum += rec.Score.PercentageScore
	}
	if len(records) > 0 {
		export.Average = sum / float64(len(records))
	}
	return export, nil
}
