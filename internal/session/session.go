// Package session owns the client's authentication state: the single persisted
// credential, the bearer token handed to outbound requests, and the guard in
// front of authoring.
package session

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v4"

	"github.com/pavelanni/quizapp/internal/model"
	"github.com/pavelanni/quizapp/internal/validate"
)

// Slot is durable storage for at most one credential.
type Slot interface {
	LoadCredential() (*model.Credential, error)
	SaveCredential(cred model.Credential) error
	ClearCredential() error
}

// AuthAPI is the part of the quiz service that issues credentials.
type AuthAPI interface {
	Signup(ctx context.Context, username, email, password string) error
	Login(ctx context.Context, email, password string) (model.Credential, error)
}

type LoginRequest struct {
	Email    string `json:"email" validate:"notblank"`
	Password string `json:"password" validate:"notblank"`
}

type SignupRequest struct {
	Username        string `json:"username" validate:"notblank"`
	Email           string `json:"email" validate:"required,email"`
	Password        string `json:"password" validate:"required,min=6"`
	ConfirmPassword string `json:"confirmPassword" validate:"eqfield=Password"`
}

// Option configures a Store.
type Option func(*Store)

// WithLogger sets the logger. The default is slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(s *Store) { s.logger = l }
}

// WithClock overrides the clock used for token expiry checks.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// Store is the Session Store. The zero value is not usable; call New.
type Store struct {
	auth   AuthAPI
	slot   Slot
	logger *slog.Logger
	now    func() time.Time

	mu      sync.RWMutex
	current *model.Credential
}

// New builds a Store and restores any credential left in slot by a previous run.
// A credential that cannot be decoded is discarded.
func New(auth AuthAPI, slot Slot, opts ...Option) (*Store, error) {
	s := &Store{
		auth:   auth,
		slot:   slot,
		logger: slog.Default(),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}

	cred, err := slot.LoadCredential()
	if err != nil {
		s.logger.Warn("discarding unreadable credential", "error", err)
		if err := slot.ClearCredential(); err != nil {
			return nil, fmt.Errorf("clear credential: %w", err)
		}
		return s, nil
	}
	if cred != nil && cred.Token != "" {
		s.current = cred
		s.logger.Debug("restored session", "username", cred.User.Username)
	}
	return s, nil
}

// Login authenticates with the service and persists the credential, replacing
// any previous session. On failure nothing is persisted.
func (s *Store) Login(ctx context.Context, req LoginRequest) (model.Credential, error) {
	req.Email = strings.TrimSpace(req.Email)
	if err := validate.Struct(req); err != nil {
		return model.Credential{}, err
	}

	cred, err := s.auth.Login(ctx, req.Email, req.Password)
	if err != nil {
		s.logger.Info("login failed", "email", req.Email, "error", err)
		return model.Credential{}, err
	}
	if err := s.slot.SaveCredential(cred); err != nil {
		return model.Credential{}, fmt.Errorf("save credential: %w", err)
	}

	s.mu.Lock()
	s.current = &cred
	s.mu.Unlock()
	s.logger.Info("logged in", "username", cred.User.Username)
	return cred, nil
}

// Signup registers an account. Every invalid field is reported at once and no
// request is sent. Signup does not log the user in.
func (s *Store) Signup(ctx context.Context, req SignupRequest) error {
	req.Username = strings.TrimSpace(req.Username)
	req.Email = strings.TrimSpace(req.Email)
	if err := validate.Struct(req); err != nil {
		return err
	}
	if err := s.auth.Signup(ctx, req.Username, req.Email, req.Password); err != nil {
		s.logger.Info("signup failed", "username", req.Username, "error", err)
		return err
	}
	s.logger.Info("signed up", "username", req.Username)
	return nil
}

// Logout clears the session. It is safe to call without a session.
func (s *Store) Logout() error {
	s.mu.Lock()
	s.current = nil
	s.mu.Unlock()
	if err := s.slot.ClearCredential(); err != nil {
		return fmt.Errorf("clear credential: %w", err)
	}
	return nil
}

// CurrentUser returns the cached credential, or nil when logged out.
func (s *Store) CurrentUser() *model.Credential {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.current == nil {
		return nil
	}
	cred := *s.current
	return &cred
}

// Token returns the bearer token, or "" when logged out.
func (s *Store) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.current == nil {
		return ""
	}
	return s.current.Token
}

// RequireUser returns the current credential or an *model.AuthError when there
// is no session or its token has expired. An expired session is cleared.
func (s *Store) RequireUser() (*model.Credential, error) {
	cred := s.CurrentUser()
	if cred == nil {
		return nil, &model.AuthError{Reason: model.ErrNotLoggedIn.Error(), Err: model.ErrNotLoggedIn}
	}
	if s.expired(cred.Token) {
		s.logger.Info("session expired", "username", cred.User.Username)
		if err := s.Logout(); err != nil {
			s.logger.Warn("failed to clear expired session", "error", err)
		}
		return nil, &model.AuthError{Reason: model.ErrSessionExpired.Error(), Err: model.ErrSessionExpired}
	}
	return cred, nil
}

// expired reads the exp claim without verifying the signature; the service
// remains the authority on whether a token is valid. Opaque tokens never expire
// locally.
func (s *Store) expired(token string) bool {
	claims := &jwt.RegisteredClaims{}
	if _, _, err := new(jwt.Parser).ParseUnverified(token, claims); err != nil {
		return false
	}
	return claims.ExpiresAt != nil && !claims.ExpiresAt.After(s.now())
}
