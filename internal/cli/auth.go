package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/pavelanni/quizapp/internal/i18n"
	"github.com/pavelanni/quizapp/internal/model"
	"github.com/pavelanni/quizapp/internal/session"
)

func (a *App) Login(ctx context.Context) error {
	email, err := a.prompt(ctx, "PromptEmail", nil)
	if err != nil {
		return err
	}
	password, err := a.prompt(ctx, "PromptPassword", nil)
	if err != nil {
		return err
	}

	callCtx, cancel := a.callCtx(ctx)
	defer cancel()
	cred, err := a.session.Login(callCtx, session.LoginRequest{Email: email, Password: password})
	if err != nil {
		a.showError(ctx, err, "AuthFailed")
		return err
	}
	a.say(i18n.Td(ctx, "LoggedInAs", map[string]any{"Username": cred.User.Username}))
	return nil
}

func (a *App) Signup(ctx context.Context) error {
	var req session.SignupRequest
	fields := []struct {
		msgID string
		dst   *string
	}{
		{"PromptUsername", &req.Username},
		{"PromptEmail", &req.Email},
		{"PromptPassword", &req.Password},
		{"PromptConfirmPassword", &req.ConfirmPassword},
	}
	for _, f := range fields {
		v, err := a.prompt(ctx, f.msgID, nil)
		if err != nil {
			return err
		}
		*f.dst = v
	}

	callCtx, cancel := a.callCtx(ctx)
	defer cancel()
	if err := a.session.Signup(callCtx, req); err != nil {
		a.showError(ctx, err, "AuthFailed")
		return err
	}
	a.say(i18n.T(ctx, "SignedUp"))
	return nil
}

func (a *App) Logout(ctx context.Context) error {
	if err := a.session.Logout(); err != nil {
		a.showError(ctx, err, "WriteFailed")
		return err
	}
	a.say(i18n.T(ctx, "LoggedOut"))
	return nil
}

func (a *App) WhoAmI(ctx context.Context) {
	cred := a.session.CurrentUser()
	if cred == nil {
		a.say(i18n.T(ctx, "NotLoggedIn"))
		return
	}
	a.say(fmt.Sprintf("%s <%s>", cred.User.Username, cred.User.Email))
}

// ensureLogin is the guard in front of authoring screens. When there is no
// usable session it sends the user through the login prompt.
func (a *App) ensureLogin(ctx context.Context) error {
	_, err := a.session.RequireUser()
	if err == nil {
		return nil
	}
	if errors.Is(err, model.ErrSessionExpired) {
		a.say(i18n.T(ctx, "SessionExpired"))
	} else {
		a.say(i18n.T(ctx, "LoginRequired"))
	}
	return a.Login(ctx)
}

// reauthenticate handles a request the service refused with 401. It reports
// whether the user logged in again.
func (a *App) reauthenticate(ctx context.Context, err error) bool {
	if !model.IsAuthError(err) {
		return false
	}
	a.say(i18n.T(ctx, "SessionRejected"))
	return a.Login(ctx) == nil
}
