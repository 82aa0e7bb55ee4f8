package auth

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/fastvite/todo-api/internal/user"
)

// TokenService defines the interface for token creation and validation
type TokenService interface {
	CreateToken(userID uuid.UUID, email string, duration time.Duration) (string, error)
	VerifyToken(tokenStr string) (*TokenClaims, error)
}

// UserRepository is the persistence surface the auth service needs.
// Satisfied by *user.Repository; tests substitute a fake.
type UserRepository interface {
	Create(ctx context.Context, email, passwordHash, fullName string) (*user.User, error)
	GetByEmail(ctx context.Context, email string) (*user.User, error)
	GetByID(ctx context.Context, id uuid.UUID) (*user.User, error)
	UpdateFullName(ctx context.Context, userID uuid.UUID, fullName string) error
	UpdatePassword(ctx context.Context, userID uuid.UUID, passwordHash string) error
	Deactivate(ctx context.Context, userID uuid.UUID) error
}

// RateLimiter guards the public auth endpoints against brute force
type RateLimiter interface {
	CheckIPRateLimitWithPurpose(ctx context.Context, ip, purpose string) (bool, error)
	RecordIPRequestWithPurpose(ctx context.Context, ip, purpose string) error
}
