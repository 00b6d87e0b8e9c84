package service

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"carhive/api/internal/apperr"
	"carhive/api/internal/config"
	"carhive/api/internal/ids"
	"carhive/api/internal/mail"
	"carhive/api/internal/models"
	"carhive/api/internal/repository"
	"carhive/api/internal/security"
)

var emailPattern = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)

// UserStore is the persistence surface the credential flows need.
type UserStore interface {
	Create(ctx context.Context, user models.User) error
	FindByEmail(ctx context.Context, email string) (models.User, error)
	GetByID(ctx context.Context, id string) (models.User, error)
	UpdateProfile(ctx context.Context, id string, name string, telephone string) (models.User, error)
	SetResetToken(ctx context.Context, id string, hash []byte, expiresAt time.Time) error
	ClearResetToken(ctx context.Context, id string) error
	FindByResetTokenHash(ctx context.Context, hash []byte) (models.User, error)
	UpdatePassword(ctx context.Context, id string, passwordHash []byte) error
	Delete(ctx context.Context, id string) error
}

type AuthService struct {
	users    UserStore
	notifier mail.Notifier
	cfg      *config.AppConfig
	log      zerolog.Logger
}

func NewAuthService(users UserStore, notifier mail.Notifier, cfg *config.AppConfig, log zerolog.Logger) *AuthService {
	return &AuthService{
		users:    users,
		notifier: notifier,
		cfg:      cfg,
		log:      log,
	}
}

type RegisterInput struct {
	Name      string
	Email     string
	Telephone string
	Password  string
}

// AuthResult is a verified identity plus the session credential issued for it.
type AuthResult struct {
	Token string
	User  models.User
}

func validateRegistration(in RegisterInput) error {
	if strings.TrimSpace(in.Name) == "" {
		return apperr.Validationf("name", "name is required")
	}
	if !emailPattern.MatchString(in.Email) {
		return apperr.Validationf("email", "invalid email address")
	}
	if in.Telephone == "" || len(in.Telephone) > 10 {
		return apperr.Validationf("telephone", "telephone is required, at most 10 characters")
	}
	if len(in.Password) < 6 {
		return apperr.Validationf("password", "password must be at least 6 characters")
	}
	return nil
}

func (s *AuthService) Register(ctx context.Context, in RegisterInput) (AuthResult, error) {
	in.Email = strings.TrimSpace(strings.ToLower(in.Email))
	if err := validateRegistration(in); err != nil {
		return AuthResult{}, err
	}

	passwordHash, err := security.HashPassword(in.Password)
	if err != nil {
		return AuthResult{}, apperr.Wrap(err, "could not register")
	}

	user := models.User{
		ID:           ids.New(),
		Name:         in.Name,
		Email:        in.Email,
		Telephone:    in.Telephone,
		Role:         models.UserRoleUser,
		PasswordHash: passwordHash,
	}

	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicateEmail) {
			return AuthResult{}, apperr.Conflictf("email_taken", "email already registered")
		}
		return AuthResult{}, apperr.Wrap(err, "could not register")
	}

	return s.issueSession(user)
}

func (s *AuthService) Login(ctx context.Context, email string, password string) (AuthResult, error) {
	email = strings.TrimSpace(strings.ToLower(email))
	if email == "" || password == "" {
		return AuthResult{}, apperr.Validationf("", "email and password are required")
	}

	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return AuthResult{}, apperr.Unauthenticatedf("invalid credentials")
		}
		return AuthResult{}, apperr.Wrap(err, "could not log in")
	}

	ok, err := security.VerifyPassword(password, user.PasswordHash)
	if err != nil || !ok {
		return AuthResult{}, apperr.Unauthenticatedf("invalid credentials")
	}

	return s.issueSession(user)
}

func (s *AuthService) issueSession(user models.User) (AuthResult, error) {
	token, err := security.GenerateSessionToken(
		s.cfg.Security.JWTSecret,
		user.ID,
		string(user.Role),
		s.cfg.Security.JWTTTL,
	)
	if err != nil {
		return AuthResult{}, apperr.Wrap(err, "could not issue session")
	}
	return AuthResult{Token: token, User: user}, nil
}

func (s *AuthService) GetUser(ctx context.Context, id string) (models.User, error) {
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return models.User{}, apperr.NotFoundf("user_not_found", "user not found")
		}
		return models.User{}, apperr.Wrap(err, "could not load user")
	}
	return user, nil
}

func (s *AuthService) UpdateProfile(ctx context.Context, id string, name string, telephone string) (models.User, error) {
	if strings.TrimSpace(name) == "" {
		return models.User{}, apperr.Validationf("name", "name is required")
	}
	if telephone == "" || len(telephone) > 10 {
		return models.User{}, apperr.Validationf("telephone", "telephone is required, at most 10 characters")
	}

	user, err := s.users.UpdateProfile(ctx, id, name, telephone)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return models.User{}, apperr.NotFoundf("user_not_found", "user not found")
		}
		return models.User{}, apperr.Wrap(err, "could not update profile")
	}
	return user, nil
}

func (s *AuthService) DeleteAccount(ctx context.Context, id string) error {
	if err := s.users.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return apperr.NotFoundf("user_not_found", "user not found")
		}
		return apperr.Wrap(err, "could not delete account")
	}
	return nil
}

// ForgotPassword issues a reset token and mails the plaintext to the account.
// If delivery fails the stored token is cleared before the failure is
// reported, so no valid token stays outstanding after a reported failure.
func (s *AuthService) ForgotPassword(ctx context.Context, email string) error {
	email = strings.TrimSpace(strings.ToLower(email))
	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return apperr.NotFoundf("user_not_found", "no account with that email")
		}
		return apperr.Wrap(err, "could not process reset request")
	}

	plain, hash, expiresAt, err := security.GenerateResetToken(s.cfg.Security.ResetTokenTTL)
	if err != nil {
		return apperr.Wrap(err, "could not issue reset token")
	}

	if err := s.users.SetResetToken(ctx, user.ID, hash, expiresAt); err != nil {
		return apperr.Wrap(err, "could not issue reset token")
	}

	resetURL := fmt.Sprintf("%s/%s", strings.TrimRight(s.cfg.ResetURLBase, "/"), plain)
	body := fmt.Sprintf("You requested a password reset. Make a PUT request to:\n\n%s\n\nThis link expires in %s.",
		resetURL, s.cfg.Security.ResetTokenTTL)

	if err := s.notifier.Send(user.Email, "Password reset", body); err != nil {
		s.log.Error().Err(err).Str("user_id", user.ID).Msg("reset mail delivery failed")
		if clearErr := s.users.ClearResetToken(ctx, user.ID); clearErr != nil {
			s.log.Error().Err(clearErr).Str("user_id", user.ID).Msg("reset token cleanup failed")
		}
		return apperr.Wrap(err, "email could not be sent")
	}

	return nil
}

// ResetPassword consumes a reset token: the digest must match a stored one
// and the expiry must not have passed. The token is single use.
func (s *AuthService) ResetPassword(ctx context.Context, plainToken string, newPassword string) (AuthResult, error) {
	if len(newPassword) < 6 {
		return AuthResult{}, apperr.Validationf("password", "password must be at least 6 characters")
	}

	hash := security.HashResetToken(plainToken)
	user, err := s.users.FindByResetTokenHash(ctx, hash)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return AuthResult{}, apperr.Unauthenticatedf("invalid or expired reset token")
		}
		return AuthResult{}, apperr.Wrap(err, "could not reset password")
	}

	if user.ResetTokenExpires == nil ||
		!security.VerifyResetToken(plainToken, user.ResetTokenHash, *user.ResetTokenExpires, time.Now()) {
		return AuthResult{}, apperr.Unauthenticatedf("invalid or expired reset token")
	}

	passwordHash, err := security.HashPassword(newPassword)
	if err != nil {
		return AuthResult{}, apperr.Wrap(err, "could not reset password")
	}

	if err := s.users.UpdatePassword(ctx, user.ID, passwordHash); err != nil {
		return AuthResult{}, apperr.Wrap(err, "could not reset password")
	}

	user.PasswordHash = passwordHash
	user.ResetTokenHash = nil
	user.ResetTokenExpires = nil

	return s.issueSession(user)
}
