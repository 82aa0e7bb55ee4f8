package auth

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/fastvite/todo-api/internal/logging"
	"github.com/fastvite/todo-api/internal/user"
)

var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrEmailRequired      = errors.New("email is required")
	ErrPasswordRequired   = errors.New("password is required")
	ErrPasswordTooShort   = errors.New("password must be at least 8 characters")
	ErrInvalidEmailFormat = errors.New("invalid email format")
	ErrFullNameRequired   = errors.New("full name is required")
)

// AuthTokens is the credential payload returned on successful login
type AuthTokens struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int64  `json:"expires_in"`
}

// Service handles authentication and account lifecycle
type Service struct {
	userRepo            UserRepository
	tokenService        TokenService
	logger              *logging.Logger
	accessTokenDuration time.Duration
}

func NewService(
	userRepo UserRepository,
	tokenService TokenService,
	logger *logging.Logger,
	accessTokenDuration time.Duration,
) *Service {
	return &Service{
		userRepo:            userRepo,
		tokenService:        tokenService,
		logger:              logger,
		accessTokenDuration: accessTokenDuration,
	}
}

// Register creates a new user account
func (s *Service) Register(ctx context.Context, email, password, fullName string) (*user.User, error) {
	email = strings.TrimSpace(email)
	fullName = strings.TrimSpace(fullName)

	if email == "" {
		return nil, ErrEmailRequired
	}
	if len(email) > 254 {
		return nil, ErrInvalidEmailFormat
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return nil, ErrInvalidEmailFormat
	}
	if password == "" {
		return nil, ErrPasswordRequired
	}
	if len(password) < 8 {
		return nil, ErrPasswordTooShort
	}
	if fullName == "" {
		return nil, ErrFullNameRequired
	}

	passwordHash, err := HashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	newUser, err := s.userRepo.Create(ctx, email, passwordHash, fullName)
	if err != nil {
		if errors.Is(err, user.ErrDuplicateEmail) {
			return nil, user.ErrDuplicateEmail
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	s.logger.Info("user registered", "user_id", newUser.ID)

	return newUser, nil
}

// Login authenticates a user and mints an access token.
// Unknown email, wrong password and deactivated accounts are all reported
// as ErrInvalidCredentials so callers cannot probe for accounts.
func (s *Service) Login(ctx context.Context, email, password string) (*AuthTokens, error) {
	if email == "" || password == "" {
		return nil, ErrInvalidCredentials
	}

	existingUser, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	if !VerifyPassword(existingUser.PasswordHash, password) {
		return nil, ErrInvalidCredentials
	}

	if !existingUser.IsActive {
		return nil, ErrInvalidCredentials
	}

	accessToken, err := s.tokenService.CreateToken(existingUser.ID, existingUser.Email, s.accessTokenDuration)
	if err != nil {
		return nil, fmt.Errorf("failed to create access token: %w", err)
	}

	return &AuthTokens{
		AccessToken: accessToken,
		TokenType:   "Bearer",
		ExpiresIn:   int64(s.accessTokenDuration.Seconds()),
	}, nil
}

// GetProfile returns the account behind a verified user id
func (s *Service) GetProfile(ctx context.Context, userID uuid.UUID) (*user.User, error) {
	return s.userRepo.GetByID(ctx, userID)
}

// UpdateProfile changes the user's display name
func (s *Service) UpdateProfile(ctx context.Context, userID uuid.UUID, fullName string) (*user.User, error) {
	fullName = strings.TrimSpace(fullName)
	if fullName == "" {
		return nil, ErrFullNameRequired
	}

	if err := s.userRepo.UpdateFullName(ctx, userID, fullName); err != nil {
		return nil, err
	}

	return s.userRepo.GetByID(ctx, userID)
}

// ChangePassword replaces the user's password after checking the current one
func (s *Service) ChangePassword(ctx context.Context, userID uuid.UUID, currentPassword, newPassword string) error {
	if newPassword == "" {
		return ErrPasswordRequired
	}
	if len(newPassword) < 8 {
		return ErrPasswordTooShort
	}

	existingUser, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return err
	}

	if !VerifyPassword(existingUser.PasswordHash, currentPassword) {
		return ErrInvalidCredentials
	}

	passwordHash, err := HashPassword(newPassword)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	if err := s.userRepo.UpdatePassword(ctx, userID, passwordHash); err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}

	s.logger.Info("password changed", "user_id", userID)

	return nil
}

// Deactivate soft-disables the account. The record stays; login stops working.
// Outstanding tokens keep verifying until they expire.
func (s *Service) Deactivate(ctx context.Context, userID uuid.UUID) error {
	if err := s.userRepo.Deactivate(ctx, userID); err != nil {
		return err
	}

	s.logger.Info("user deactivated", "user_id", userID)

	return nil
}
