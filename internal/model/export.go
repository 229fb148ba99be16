package model

import "time"

// HistoryExport is the top-level JSON structure for the local attempt journal export.
type HistoryExport struct {
	User        string          `json:"user,omitempty"`
	ExportedAt  time.Time       `json:"exported_at"`
	NumAttempts int             `json:"num_attempts"`
	Average     float64         `json:"average_percentage"`
	Attempts    []AttemptRecord `json:"attempts"`
}
