// Package services holds the client's application services. AuthService
// covers the login flow (with remember-me), registration, sign-out and the
// display name used as a post's author.
package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/devfeed/internal/client/client"
	"github.com/dmitrijs2005/devfeed/internal/client/credentials"
	"github.com/dmitrijs2005/devfeed/internal/client/models"
	"github.com/dmitrijs2005/devfeed/internal/common"
	"github.com/dmitrijs2005/devfeed/internal/logging"
)

// AuthService defines authentication operations for the client.
//
// Login and Register return the provider's error as is; its message is meant
// to be shown to the user verbatim. Navigation is not their concern: the
// session gate reacts to the auth-state change they cause.
type AuthService interface {
	Login(ctx context.Context, identifier, secret string, rememberMe bool) error
	Register(ctx context.Context, username, email, secret string) error
	SignOut(ctx context.Context) error
	DisplayName(ctx context.Context) string
	Ping(ctx context.Context) error
}

type CredentialStore interface {
	Save(ctx context.Context, r credentials.Record)
	Clear(ctx context.Context)
}

type Pinger interface {
	Ping(ctx context.Context) error
}

type authService struct {
	auth   client.AuthProvider
	docs   client.DocumentStore
	creds  CredentialStore
	pinger Pinger
	logger logging.Logger
}

func NewAuthService(auth client.AuthProvider, docs client.DocumentStore, creds CredentialStore, p Pinger, l logging.Logger) AuthService {
	return &authService{auth: auth, docs: docs, creds: creds, pinger: p, logger: l.With("module", "auth_service")}
}

// Login signs in and then keeps or forgets the credential record according
// to rememberMe. Persistence trouble is logged by the store and does not
// fail the login.
func (a *authService) Login(ctx context.Context, identifier, secret string, rememberMe bool) error {
	if identifier == "" || secret == "" {
		return common.ErrorValidation
	}

	if _, err := a.auth.SignIn(ctx, identifier, secret); err != nil {
		return err
	}

	if rememberMe {
		a.creds.Save(ctx, credentials.Record{Identifier: identifier, Secret: secret, RememberMe: true})
	} else {
		a.creds.Clear(ctx)
	}
	a.logger.Info(ctx, "signed in", "remember_me", rememberMe)
	return nil
}

// Register creates the account, asks for a verification e-mail and writes
// the public profile document. The secret never goes into the profile.
func (a *authService) Register(ctx context.Context, username, email, secret string) error {
	if username == "" || email == "" || secret == "" {
		return common.ErrorValidation
	}

	u, err := a.auth.CreateUser(ctx, email, secret)
	if err != nil {
		return err
	}

	if err := a.auth.SendVerificationEmail(ctx); err != nil {
		a.logger.Warn(ctx, "verification e-mail not sent", "error", err)
	}

	if err := a.docs.SetDocument(ctx, common.UsersCollection, u.ID, models.Profile{Username: username, Email: email}); err != nil {
		return fmt.Errorf("save profile: %w", err)
	}

	a.logger.Info(ctx, "registered", "uid", u.ID)
	return nil
}

func (a *authService) SignOut(ctx context.Context) error {
	return a.auth.SignOut(ctx)
}

// DisplayName returns the signed-in user's profile name, falling back to the
// local part of the e-mail address.
func (a *authService) DisplayName(ctx context.Context) string {
	u := a.auth.CurrentUser()
	if u == nil {
		return ""
	}

	var p models.Profile
	err := a.docs.GetDocument(ctx, common.UsersCollection, u.ID, &p)
	if err == nil && p.Username != "" {
		return p.Username
	}
	if err != nil && !errors.Is(err, common.ErrorNotFound) {
		a.logger.Warn(ctx, "profile lookup failed", "error", err)
	}

	name, _, _ := strings.Cut(u.Email, "@")
	return name
}

func (a *authService) Ping(ctx context.Context) error {
	return a.pinger.Ping(ctx)
}
