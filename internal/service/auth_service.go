package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"workbridge/api/internal/config"
	"workbridge/api/internal/ids"
	"workbridge/api/internal/models"
	"workbridge/api/internal/repository"
	"workbridge/api/internal/security"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrAccountLocked      = errors.New("account locked")
	ErrAccountInactive    = errors.New("account inactive")
	ErrEmailTaken         = errors.New("email already registered")
)

// UserStore is the slice of the credential store the auth service needs.
type UserStore interface {
	Create(ctx context.Context, user models.User) error
	FindByEmail(ctx context.Context, email string) (models.User, error)
	GetByID(ctx context.Context, id string) (models.User, error)
	RecordFailedAttempt(ctx context.Context, id string, threshold int, lockUntil time.Time) error
	ResetLockout(ctx context.Context, id string) error
	SetPassword(ctx context.Context, id string, passwordHash []byte) error
	AssignRole(ctx context.Context, userID string, roleID string) error
}

// RoleStore resolves the default role assigned at registration.
type RoleStore interface {
	FindDefault(ctx context.Context) (models.Role, error)
}

// TokenRevoker invalidates bearer credentials before their natural expiry.
type TokenRevoker interface {
	Revoke(ctx context.Context, token string, expiresAt *time.Time) error
}

type AuthService struct {
	users   UserStore
	roles   RoleStore
	revoker TokenRevoker
	cfg     *config.AppConfig
	log     zerolog.Logger
}

func NewAuthService(users UserStore, roles RoleStore, revoker TokenRevoker, cfg *config.AppConfig, log zerolog.Logger) *AuthService {
	return &AuthService{
		users:   users,
		roles:   roles,
		revoker: revoker,
		cfg:     cfg,
		log:     log,
	}
}

type RegisterInput struct {
	Email    string
	Password string
}

type AuthResult struct {
	AccessToken string
	ExpiresAt   time.Time
	User        models.User
}

func (s *AuthService) Register(ctx context.Context, input RegisterInput) (AuthResult, error) {
	input.Email = strings.TrimSpace(strings.ToLower(input.Email))
	if input.Email == "" || input.Password == "" {
		return AuthResult{}, fmt.Errorf("email and password required")
	}

	if _, err := s.users.FindByEmail(ctx, input.Email); err == nil {
		return AuthResult{}, ErrEmailTaken
	} else if !errors.Is(err, repository.ErrUserNotFound) {
		return AuthResult{}, err
	}

	user := models.User{
		ID:     ids.New(),
		Email:  input.Email,
		Active: true,
	}
	if err := user.SetPassword(input.Password); err != nil {
		return AuthResult{}, err
	}

	if err := s.users.Create(ctx, user); err != nil {
		return AuthResult{}, err
	}

	if role, err := s.roles.FindDefault(ctx); err == nil {
		if err := s.users.AssignRole(ctx, user.ID, role.ID); err != nil {
			s.log.Warn().Err(err).Str("user_id", user.ID).Str("role", role.Code).Msg("default role assignment failed")
		}
	} else if !errors.Is(err, repository.ErrRoleNotFound) {
		return AuthResult{}, err
	}

	return s.issueToken(user)
}

type LoginInput struct {
	Email    string
	Password string
}

// Login verifies the password under the lockout policy. The lockout check
// comes before password verification: a locked account is unauthenticable
// no matter what credential is presented, and attempts during a lockout do
// not grow the counter or extend the lock.
func (s *AuthService) Login(ctx context.Context, input LoginInput) (AuthResult, error) {
	input.Email = strings.TrimSpace(strings.ToLower(input.Email))
	user, err := s.users.FindByEmail(ctx, input.Email)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return AuthResult{}, ErrInvalidCredentials
		}
		return AuthResult{}, err
	}

	now := time.Now()
	if user.Locked(now) {
		return AuthResult{}, ErrAccountLocked
	}

	ok, err := security.VerifyPassword(input.Password, user.PasswordHash)
	if err != nil || !ok {
		lockUntil := now.Add(s.cfg.Security.LockoutDuration)
		if recErr := s.users.RecordFailedAttempt(ctx, user.ID, s.cfg.Security.LockoutThreshold, lockUntil); recErr != nil {
			s.log.Error().Err(recErr).Str("user_id", user.ID).Msg("failed attempt not recorded")
		}
		return AuthResult{}, ErrInvalidCredentials
	}

	if !user.Active {
		return AuthResult{}, ErrAccountInactive
	}

	if user.FailedAttempts > 0 || user.LockedUntil != nil {
		if err := s.users.ResetLockout(ctx, user.ID); err != nil {
			return AuthResult{}, err
		}
	}

	return s.issueToken(user)
}

// Logout revokes the presented token until its natural expiry, after which
// the registry record becomes garbage for the daily sweep.
func (s *AuthService) Logout(ctx context.Context, token string, expiresAt time.Time) error {
	return s.revoker.Revoke(ctx, token, &expiresAt)
}

type ChangePasswordInput struct {
	UserID          string
	CurrentPassword string
	NewPassword     string
	Token           string
	TokenExpiresAt  time.Time
}

// ChangePassword rotates the password and revokes the presenting token so
// credentials issued before the change stop working.
func (s *AuthService) ChangePassword(ctx context.Context, input ChangePasswordInput) error {
	user, err := s.users.GetByID(ctx, input.UserID)
	if err != nil {
		return err
	}

	ok, err := security.VerifyPassword(input.CurrentPassword, user.PasswordHash)
	if err != nil || !ok {
		return ErrInvalidCredentials
	}

	if err := user.SetPassword(input.NewPassword); err != nil {
		return err
	}
	if err := s.users.SetPassword(ctx, user.ID, user.PasswordHash); err != nil {
		return err
	}

	return s.revoker.Revoke(ctx, input.Token, &input.TokenExpiresAt)
}

func (s *AuthService) issueToken(user models.User) (AuthResult, error) {
	expiresAt := time.Now().Add(s.cfg.Security.JWTAccessTTL)
	token, err := security.GenerateAccessToken(s.cfg.Security.JWTSecret, user.ID, user.Email, s.cfg.Security.JWTAccessTTL)
	if err != nil {
		return AuthResult{}, err
	}
	return AuthResult{
		AccessToken: token,
		ExpiresAt:   expiresAt,
		User:        user,
	}, nil
}
