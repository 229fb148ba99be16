package model

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

var (
	// ErrEmptyQuiz is returned when a quiz without questions is taken or scored.
	ErrEmptyQuiz = errors.New("quiz has no questions")
	// ErrNotLoggedIn is the AuthError reason when no usable session exists.
	ErrNotLoggedIn = errors.New("not logged in")
	// ErrSessionExpired is the AuthError reason when the stored token has expired.
	ErrSessionExpired = errors.New("session expired")
)

// ValidationError lists every field that failed local validation.
// It never reaches the network.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	if len(e.Fields) == 0 {
		return "validation failed"
	}
	names := make([]string, 0, len(e.Fields))
	for name := range e.Fields {
		names = append(names, name)
	}
	sort.Strings(names)
	parts := make([]string, 0, len(names))
	for _, name := range names {
		parts = append(parts, name+": "+e.Fields[name])
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// Has reports whether field failed validation.
func (e *ValidationError) Has(field string) bool {
	_, ok := e.Fields[field]
	return ok
}

// NewValidationError builds a ValidationError for a single field.
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Fields: map[string]string{field: message}}
}

// AuthError means the service rejected the credentials or the token is missing or invalid.
type AuthError struct {
	Reason string
	Err    error
}

func (e *AuthError) Error() string {
	if e.Err == nil {
		return "auth: " + e.Reason
	}
	if e.Reason == "" {
		return "auth: " + e.Err.Error()
	}
	return fmt.Sprintf("auth: %s: %v", e.Reason, e.Err)
}

func (e *AuthError) Unwrap() error {
	return e.Err
}

// RepositoryError is a network or service failure on a quiz or question operation.
// StatusCode is 0 when no HTTP response was received.
type RepositoryError struct {
	Op         string
	StatusCode int
	Message    string
	Err        error
}

func (e *RepositoryError) Error() string {
	msg := e.Message
	if strings.TrimSpace(msg) == "" && e.Err != nil {
		msg = e.Err.Error()
	}
	if strings.TrimSpace(msg) == "" {
		msg = fmt.Sprintf("request failed with status %d", e.StatusCode)
	}
	if e.StatusCode == 0 {
		return fmt.Sprintf("%s: %s", e.Op, msg)
	}
	return fmt.Sprintf("%s: %s (status %d)", e.Op, msg, e.StatusCode)
}

func (e *RepositoryError) Unwrap() error {
	return e.Err
}

// ScoringReportError is a failure to record a score with the service.
// It is non-fatal: the computed score stands.
type ScoringReportError struct {
	QuizID int64
	Err    error
}

func (e *ScoringReportError) Error() string {
	return fmt.Sprintf("report score for quiz %d: %v", e.QuizID, e.Err)
}

func (e *ScoringReportError) Unwrap() error {
	return e.Err
}

// IsAuthError reports whether err is or wraps an AuthError.
func IsAuthError(err error) bool {
	var authErr *AuthError
	return errors.As(err, &authErr)
}
