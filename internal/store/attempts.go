package store

import (
	"database/sql"
	"log/slog"
	"time"

	"github.com/pavelanni/quizapp/internal/model"
)

// RecordAttempt journals a completed attempt. Re-recording the same id replaces it.
func (s *Store) RecordAttempt(rec model.AttemptRecord) error {
	completedAt := rec.CompletedAt
	if completedAt.IsZero() {
		completedAt = time.Now()
	}
	_, err := s.db.Exec(
		`INSERT INTO attempts (id, quiz_id, quiz_title, total_marks, total_questions, percentage, reported, report_error, completed_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET reported = excluded.reported, report_error = excluded.report_error`,
		rec.ID, rec.QuizID, rec.QuizTitle,
		rec.Score.TotalMarks, rec.Score.TotalQuestions, rec.Score.PercentageScore,
		rec.Reported, rec.ReportError, completedAt,
	)
	if err != nil {
		slog.Error("failed to record attempt", "id", rec.ID, "quiz_id", rec.QuizID, "error", err)
	}
	return err
}

// MarkReported records the outcome of the score report for an attempt.
// An empty reportErr means the service acknowledged the score.
func (s *Store) MarkReported(id string, reportErr string) error {
	_, err := s.db.Exec(
		`UPDATE attempts SET reported = ?, report_error = ? WHERE id = ?`,
		reportErr == "", reportErr, id,
	)
	return err
}

// GetAttempt returns a journaled attempt by id, or nil if unknown.
func (s *Store) GetAttempt(id string) (*model.AttemptRecord, error) {
	rec, err := scanAttempt(s.db.QueryRow(
		`SELECT id, quiz_id, quiz_title, total_marks, total_questions, percentage, reported, report_error, completed_at
		 FROM attempts WHERE id = ?`, id,
	))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

// ListAttempts returns journaled attempts, newest first. quizID 0 means all quizzes.
func (s *Store) ListAttempts(quizID int64) ([]model.AttemptRecord, error) {
	query := `SELECT id, quiz_id, quiz_title, total_marks, total_questions, percentage, reported, report_error, completed_at
		FROM attempts`
	var args []any
	if quizID != 0 {
		query += ` WHERE quiz_id = ?`
		args = append(args, quizID)
	}
	query += ` ORDER BY completed_at DESC, id`

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var records []model.AttemptRecord
	for rows.Next() {
		rec, err := scanAttempt(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanAttempt(row rowScanner) (model.AttemptRecord, error) {
	var rec model.AttemptRecord
	err := row.Scan(
		&rec.ID, &rec.QuizID, &rec.QuizTitle,
		&rec.Score.TotalMarks, &rec.Score.TotalQuestions, &rec.Score.PercentageScore,
		&rec.Reported, &rec.ReportError, &rec.CompletedAt,
	)
	return rec, err
}
