package apiclient

import (
	"context"
	"errors"
	"net/http"

	"github.com/pavelanni/quizapp/internal/model"
)

type signupRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Signup registers a new account. Any failure is returned as *model.AuthError.
func (c *Client) Signup(ctx context.Context, username, email, password string) error {
	err := c.doJSON(ctx, "signup", http.MethodPost, "/auth/signup", signupRequest{
		Username: username,
		Email:    email,
		Password: password,
	}, nil)
	if err != nil {
		return asAuthError("signup rejected", err)
	}
	return nil
}

// Login exchanges credentials for a token. Any failure is returned as *model.AuthError.
func (c *Client) Login(ctx context.Context, email, password string) (model.Credential, error) {
	var cred model.Credential
	err := c.doJSON(ctx, "login", http.MethodPost, "/auth/login", loginRequest{
		Email:    email,
		Password: password,
	}, &cred)
	if err != nil {
		return model.Credential{}, asAuthError("login rejected", err)
	}
	if cred.Token == "" {
		return model.Credential{}, &model.AuthError{Reason: "login response carried no token"}
	}
	return cred, nil
}

func asAuthError(reason string, err error) error {
	var authErr *model.AuthError
	if errors.As(err, &authErr) {
		return &model.AuthError{Reason: reason, Err: authErr.Err}
	}
	return &model.AuthError{Reason: reason, Err: err}
}
