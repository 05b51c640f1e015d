package cli

import (
	"context"
	"errors"

	"github.com/dmitrijs2005/devfeed/internal/common"
)

// getSimpleText, getTextWithDefault, getPassword and getYesNo are
// indirections used to facilitate testing.
var (
	getSimpleText      = GetSimpleText
	getTextWithDefault = GetTextWithDefault
	getPassword        = GetPassword
	getYesNo           = GetYesNo
)

// mountLoginForm fills the login form from the remembered credentials. It
// runs once per visit of the welcome screen.
func (a *App) mountLoginForm(ctx context.Context) {
	if a.formMounted {
		return
	}
	a.formMounted = true
	a.form = loginForm{}

	rec, ok := a.credentials.Load(ctx)
	if !ok {
		return
	}
	a.form.identifier = rec.Identifier
	a.form.rememberMe = rec.RememberMe
	if rec.RememberMe {
		a.form.secret = rec.Secret
	}
}

// Login asks for the form fields, offering the current values, and signs
// in. A failure is shown and the form keeps what was typed. Navigation
// happens when the session gate sees the new auth state.
func (a *App) Login(ctx context.Context) error {
	a.mountLoginForm(ctx)

	identifier, err := getTextWithDefault(a.reader, "Enter email", a.form.identifier, a.out)
	if err != nil {
		return err
	}
	a.form.identifier = identifier

	prompt := "Enter password"
	if a.form.secret != "" {
		prompt = "Enter password (Enter keeps the saved one)"
	}
	secret, err := getPassword(a.reader, prompt, a.out)
	if err != nil {
		return err
	}
	if secret != "" {
		a.form.secret = secret
	}

	remember, err := getYesNo(a.reader, "Remember me?", a.form.rememberMe, a.out)
	if err != nil {
		return err
	}
	a.form.rememberMe = remember

	err = a.authService.Login(ctx, a.form.identifier, a.form.secret, a.form.rememberMe)
	switch {
	case err == nil:
		a.println("Login successful")
		return nil
	case errors.Is(err, common.ErrorValidation):
		return err
	default:
		a.showError(err)
		return err
	}
}

// Unlock runs the biometric prompt and replays the remembered login.
func (a *App) Unlock(ctx context.Context) error {
	a.mountLoginForm(ctx)

	if !a.unlocker.CheckCapability(ctx) {
		a.println("No biometric hardware detected")
	}

	if err := a.unlocker.Authenticate(ctx, a.form.identifier, a.form.rememberMe); err != nil {
		a.showError(err)
		return err
	}
	return nil
}

// Register creates an account and sends the verification e-mail.
func (a *App) Register(ctx context.Context) error {
	username, err := getSimpleText(a.reader, "Enter username", a.out)
	if err != nil {
		return err
	}
	email, err := getSimpleText(a.reader, "Enter email", a.out)
	if err != nil {
		return err
	}
	secret, err := getPassword(a.reader, "Enter password", a.out)
	if err != nil {
		return err
	}

	err = a.authService.Register(ctx, username, email, secret)
	switch {
	case err == nil:
		a.println("Success! A verification e-mail is on its way to", email)
		return nil
	case errors.Is(err, common.ErrorValidation):
		return err
	default:
		a.showError(err)
		return err
	}
}

func (a *App) Logout(ctx context.Context) error {
	if err := a.authService.SignOut(ctx); err != nil {
		a.showError(err)
		return err
	}
	a.println("Signed out")
	return nil
}
