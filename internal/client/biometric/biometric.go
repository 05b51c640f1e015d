// Package biometric drives the "unlock with fingerprint" flow: prompt the
// platform authenticator and, on success, replay the stored login.
package biometric

import (
	"context"
	"errors"

	"github.com/dmitrijs2005/devfeed/internal/client/credentials"
	"github.com/dmitrijs2005/devfeed/internal/logging"
)

var (
	ErrCancelled    = errors.New("biometric prompt cancelled")
	ErrFailed       = errors.New("biometric authentication failed")
	ErrNotAvailable = errors.New("biometric hardware not available")
)

const (
	DefaultMessage       = "Authenticate with Fingerprint"
	DefaultFallbackLabel = "Enter Password"
)

type Prompt struct {
	Message       string
	FallbackLabel string
}

type Provider interface {
	HasHardware(ctx context.Context) (bool, error)
	Authenticate(ctx context.Context, p Prompt) error
}

// CredentialLoader reads the remembered login.
type CredentialLoader interface {
	Load(ctx context.Context) (credentials.Record, bool)
}

// LoginFunc performs a sign-in with the given credentials.
type LoginFunc func(ctx context.Context, identifier, secret string, rememberMe bool) error

type Unlocker struct {
	provider Provider
	creds    CredentialLoader
	login    LoginFunc
	prompt   Prompt
	logger   logging.Logger
}

type Option func(*Unlocker)

func WithPrompt(p Prompt) Option {
	return func(u *Unlocker) { u.prompt = p }
}

func NewUnlocker(p Provider, creds CredentialLoader, login LoginFunc, l logging.Logger, opts ...Option) *Unlocker {
	u := &Unlocker{
		provider: p,
		creds:    creds,
		login:    login,
		prompt:   Prompt{Message: DefaultMessage, FallbackLabel: DefaultFallbackLabel},
		logger:   l.With("module", "biometric"),
	}
	for _, o := range opts {
		o(u)
	}
	return u
}

// CheckCapability reports whether the device has an authenticator. It is
// informational; Authenticate does not consult it.
func (u *Unlocker) CheckCapability(ctx context.Context) bool {
	ok, err := u.provider.HasHardware(ctx)
	if err != nil {
		u.logger.Warn(ctx, "capability check failed", "error", err)
		return false
	}
	return ok
}

// Authenticate prompts the user. On success with rememberMe the stored
// secret is replayed through the login operation; identifier, when empty,
// falls back to the stored one. Only the login's own error is returned:
// prompt failures and a missing record are logged and end the flow quietly.
func (u *Unlocker) Authenticate(ctx context.Context, identifier string, rememberMe bool) error {
	if err := u.provider.Authenticate(ctx, u.prompt); err != nil {
		if errors.Is(err, ErrCancelled) {
			u.logger.Info(ctx, "biometric prompt cancelled")
		} else {
			u.logger.Warn(ctx, "biometric authentication failed", "error", err)
		}
		return nil
	}

	if !rememberMe {
		u.logger.Info(ctx, "biometric authentication succeeded; remember me is off, not signing in")
		return nil
	}

	rec, ok := u.creds.Load(ctx)
	if !ok || rec.Secret == "" {
		u.logger.Info(ctx, "biometric authentication succeeded; no stored credentials")
		return nil
	}

	if identifier == "" {
		identifier = rec.Identifier
	}
	return u.login(ctx, identifier, rec.Secret, rememberMe)
}
