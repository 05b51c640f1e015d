package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/mail"
	"net/url"
	"strings"
	"time"

	"github.com/dmitrijs2005/devfeed/internal/common"
	"github.com/dmitrijs2005/devfeed/internal/cryptox"
	"github.com/dmitrijs2005/devfeed/internal/logging"
	"github.com/dmitrijs2005/devfeed/internal/server/auth"
	"github.com/dmitrijs2005/devfeed/internal/server/config"
	"github.com/dmitrijs2005/devfeed/internal/server/models"
	"github.com/dmitrijs2005/devfeed/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/devfeed/internal/server/tokens"
)

const (
	MinPasswordLength = 6

	// DisplayNameAttribute is set from the sign-up request when present.
	DisplayNameAttribute = "displayName"

	verifyLinkBase = "devfeed://verify-email"
)

var (
	ErrInvalidEmail   = userError(common.ErrorValidation, "The email address is badly formatted.")
	ErrWeakPassword   = userError(common.ErrorValidation, fmt.Sprintf("Password should be at least %d characters.", MinPasswordLength))
	ErrEmailInUse     = userError(common.ErrorAlreadyExists, "The email address is already in use by another account.")
	ErrEmptyAttribute = userError(common.ErrorValidation, "Profile attribute names must not be empty.")
)

// Session is the result of a successful sign-up, sign-in or refresh.
type Session struct {
	User         *models.User
	AccessToken  string
	RefreshToken string
}

// UserService provides account operations:
//   - SignUp / SignIn: create or verify an account and open a session
//   - RefreshToken: rotate the refresh token and mint a new access token
//   - SignOut: revoke a refresh token
//   - SendVerificationEmail / UpdateProfile
type UserService struct {
	db                           *sql.DB
	repomanager                  repomanager.RepositoryManager
	tokens                       tokens.Store
	hasher                       *cryptox.PasswordHasher
	mailer                       Mailer
	logger                       logging.Logger
	jwtSecret                    []byte
	accessTokenValidityDuration  time.Duration
	refreshTokenValidityDuration time.Duration
}

// NewUserService constructs a UserService using repositories and server config.
// A nil hasher selects the default argon2id parameters.
func NewUserService(db *sql.DB, m repomanager.RepositoryManager, ts tokens.Store, hasher *cryptox.PasswordHasher,
	mailer Mailer, cfg *config.Config, l logging.Logger) *UserService {
	if hasher == nil {
		hasher = cryptox.NewPasswordHasher(nil)
	}
	return &UserService{
		db:                           db,
		repomanager:                  m,
		tokens:                       ts,
		hasher:                       hasher,
		mailer:                       mailer,
		logger:                       l.With("module", "user_service"),
		jwtSecret:                    []byte(cfg.SecretKey),
		accessTokenValidityDuration:  cfg.AccessTokenValidityDuration,
		refreshTokenValidityDuration: cfg.RefreshTokenValidityDuration,
	}
}

func normalizeEmail(email string) (string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return "", ErrInvalidEmail
	}
	return email, nil
}

func (s *UserService) SignUp(ctx context.Context, email, password, displayName string) (*Session, error) {
	email, err := normalizeEmail(email)
	if err != nil {
		return nil, err
	}
	if len(password) < MinPasswordLength {
		return nil, ErrWeakPassword
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	attrs := map[string]string{}
	if name := strings.TrimSpace(displayName); name != "" {
		attrs[DisplayNameAttribute] = name
	}

	user, err := s.repomanager.Users(s.db).Create(ctx, &models.User{Email: email, PasswordHash: hash, Attributes: attrs})
	if err != nil {
		if errors.Is(err, common.ErrorAlreadyExists) {
			return nil, ErrEmailInUse
		}
		return nil, fmt.Errorf("error creating user: %w", err)
	}

	s.logger.Info(ctx, "user registered", "user_id", user.ID)
	return s.openSession(ctx, user)
}

// SignIn checks the password. An unknown email and a wrong password fail
// the same way.
func (s *UserService) SignIn(ctx context.Context, email, password string) (*Session, error) {
	email, err := normalizeEmail(email)
	if err != nil {
		return nil, common.ErrInvalidCredentials
	}

	user, err := s.repomanager.Users(s.db).GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrInvalidCredentials
		}
		return nil, fmt.Errorf("error loading user: %w", err)
	}

	if err := s.hasher.Compare(user.PasswordHash, password); err != nil {
		if !errors.Is(err, cryptox.ErrPasswordMismatch) {
			s.logger.Error(ctx, "stored password hash unusable", "user_id", user.ID, "error", err)
		}
		return nil, common.ErrInvalidCredentials
	}

	return s.openSession(ctx, user)
}

// RefreshToken consumes refreshToken and returns a new session. A token can
// be used once.
func (s *UserService) RefreshToken(ctx context.Context, refreshToken string) (*Session, error) {
	if refreshToken == "" {
		return nil, common.ErrRefreshTokenExpired
	}

	userID, err := s.tokens.Take(ctx, refreshToken)
	if err != nil {
		return nil, err
	}

	user, err := s.repomanager.Users(s.db).GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrRefreshTokenExpired
		}
		return nil, fmt.Errorf("error loading user: %w", err)
	}

	return s.openSession(ctx, user)
}

// SignOut revokes refreshToken. Revoking an unknown token succeeds.
func (s *UserService) SignOut(ctx context.Context, refreshToken string) error {
	if refreshToken == "" {
		return nil
	}
	if err := s.tokens.Delete(ctx, refreshToken); err != nil && !errors.Is(err, common.ErrRefreshTokenExpired) {
		return err
	}
	return nil
}

// UserIDFromAccessToken validates an access token.
func (s *UserService) UserIDFromAccessToken(token string) (string, error) {
	return auth.GetUserIDFromToken(token, s.jwtSecret)
}

// SendVerificationEmail stores a fresh verification token on the user and
// mails the link. Verified users get nothing.
func (s *UserService) SendVerificationEmail(ctx context.Context, userID string) error {
	repo := s.repomanager.Users(s.db)

	user, err := repo.GetByID(ctx, userID)
	if err != nil {
		return err
	}
	if user.EmailVerified {
		return nil
	}

	token, err := common.MakeRandHexString(32)
	if err != nil {
		return fmt.Errorf("generate verification token: %w", err)
	}
	if err := repo.SetVerificationToken(ctx, userID, token); err != nil {
		return err
	}

	link := verifyLinkBase + "?" + url.Values{"token": {token}}.Encode()
	if err := s.mailer.SendVerification(ctx, user.Email, link); err != nil {
		return fmt.Errorf("send verification e-mail: %w", err)
	}
	return nil
}

// UpdateProfile merges attrs into the user's profile attributes.
func (s *UserService) UpdateProfile(ctx context.Context, userID string, attrs map[string]string) (*models.User, error) {
	for k := range attrs {
		if strings.TrimSpace(k) == "" {
			return nil, ErrEmptyAttribute
		}
	}
	return s.repomanager.Users(s.db).UpdateAttributes(ctx, userID, attrs)
}

func (s *UserService) openSession(ctx context.Context, user *models.User) (*Session, error) {
	access, err := auth.GenerateToken(user.ID, s.jwtSecret, s.accessTokenValidityDuration)
	if err != nil {
		return nil, fmt.Errorf("sign access token: %w", err)
	}
	refresh, err := common.MakeRandHexString(32)
	if err != nil {
		return nil, fmt.Errorf("generate refresh token: %w", err)
	}
	if err := s.tokens.Save(ctx, refresh, user.ID, s.refreshTokenValidityDuration); err != nil {
		return nil, fmt.Errorf("store refresh token: %w", err)
	}
	return &Session{User: user, AccessToken: access, RefreshToken: refresh}, nil
}
