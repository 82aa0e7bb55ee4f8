package auth

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fastvite/todo-api/internal/logging"
	"github.com/fastvite/todo-api/internal/user"
)

// fakeUserRepo is an in-memory UserRepository with the same contract as the
// real one: case-insensitive email uniqueness, ErrNotFound on misses.
type fakeUserRepo struct {
	byID map[uuid.UUID]*user.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{byID: make(map[uuid.UUID]*user.User)}
}

func (f *fakeUserRepo) Create(_ context.Context, email, passwordHash, fullName string) (*user.User, error) {
	for _, u := range f.byID {
		if strings.EqualFold(u.Email, email) {
			return nil, user.ErrDuplicateEmail
		}
	}

	u := &user.User{
		ID:           uuid.New(),
		Email:        email,
		PasswordHash: passwordHash,
		FullName:     fullName,
		IsActive:     true,
		CreatedAt:    time.Now(),
		UpdatedAt:    time.Now(),
	}
	f.byID[u.ID] = u

	copied := *u
	return &copied, nil
}

func (f *fakeUserRepo) GetByEmail(_ context.Context, email string) (*user.User, error) {
	for _, u := range f.byID {
		if strings.EqualFold(u.Email, email) {
			copied := *u
			return &copied, nil
		}
	}
	return nil, user.ErrNotFound
}

func (f *fakeUserRepo) GetByID(_ context.Context, id uuid.UUID) (*user.User, error) {
	u, ok := f.byID[id]
	if !ok {
		return nil, user.ErrNotFound
	}
	copied := *u
	return &copied, nil
}

func (f *fakeUserRepo) UpdateFullName(_ context.Context, userID uuid.UUID, fullName string) error {
	u, ok := f.byID[userID]
	if !ok {
		return user.ErrNotFound
	}
	u.FullName = fullName
	return nil
}

func (f *fakeUserRepo) UpdatePassword(_ context.Context, userID uuid.UUID, passwordHash string) error {
	u, ok := f.byID[userID]
	if !ok {
		return user.ErrNotFound
	}
	u.PasswordHash = passwordHash
	return nil
}

func (f *fakeUserRepo) Deactivate(_ context.Context, userID uuid.UUID) error {
	u, ok := f.byID[userID]
	if !ok {
		return user.ErrNotFound
	}
	u.IsActive = false
	return nil
}

func newTestService(t *testing.T) (*Service, *fakeUserRepo) {
	t.Helper()

	repo := newFakeUserRepo()
	svc := NewService(repo, newTestPasetoService(t), logging.NewLogger(true), 15*time.Minute)
	return svc, repo
}

func TestRegisterValidation(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	tests := []struct {
		name     string
		email    string
		password string
		fullName string
		wantErr  error
	}{
		{"empty email", "", "password123", "Ada", ErrEmailRequired},
		{"invalid email", "notanemail", "password123", "Ada", ErrInvalidEmailFormat},
		{"empty password", "a@x.com", "", "Ada", ErrPasswordRequired},
		{"short password", "a@x.com", "short", "Ada", ErrPasswordTooShort},
		{"empty full name", "a@x.com", "password123", "", ErrFullNameRequired},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Register(ctx, tt.email, tt.password, tt.fullName)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestRegisterStoresHashNotPlaintext(t *testing.T) {
	svc, repo := newTestService(t)

	registered, err := svc.Register(context.Background(), "a@x.com", "password123", "Ada Lovelace")
	require.NoError(t, err)

	stored := repo.byID[registered.ID]
	assert.NotEqual(t, "password123", stored.PasswordHash)
	assert.NotContains(t, stored.PasswordHash, "password123")
	assert.True(t, VerifyPassword(stored.PasswordHash, "password123"))
	assert.True(t, stored.IsActive)
}

func TestRegisterDuplicateEmailCaseInsensitive(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.Register(ctx, "a@x.com", "password123", "Ada")
	require.NoError(t, err)

	_, err = svc.Register(ctx, "A@X.COM", "password456", "Someone Else")
	assert.ErrorIs(t, err, user.ErrDuplicateEmail)
}

func TestLoginSuccess(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	registered, err := svc.Register(ctx, "a@x.com", "password123", "Ada")
	require.NoError(t, err)

	tokens, err := svc.Login(ctx, "a@x.com", "password123")
	require.NoError(t, err)
	assert.Equal(t, "Bearer", tokens.TokenType)
	assert.Equal(t, int64(900), tokens.ExpiresIn)

	// The minted token verifies and names the registered user
	claims, err := newTestPasetoService(t).VerifyToken(tokens.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, registered.ID.String(), claims.UserID)
}

func TestLoginFailures(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	registered, err := svc.Register(ctx, "a@x.com", "password123", "Ada")
	require.NoError(t, err)

	t.Run("unknown email", func(t *testing.T) {
		_, err := svc.Login(ctx, "other@x.com", "password123")
		assert.ErrorIs(t, err, ErrInvalidCredentials)
	})

	t.Run("wrong password", func(t *testing.T) {
		_, err := svc.Login(ctx, "a@x.com", "wrongpassword")
		assert.ErrorIs(t, err, ErrInvalidCredentials)
	})

	t.Run("deactivated account", func(t *testing.T) {
		require.NoError(t, svc.Deactivate(ctx, registered.ID))

		_, err := svc.Login(ctx, "a@x.com", "password123")
		assert.ErrorIs(t, err, ErrInvalidCredentials)
	})
}

func TestUpdateProfile(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	registered, err := svc.Register(ctx, "a@x.com", "password123", "Ada")
	require.NoError(t, err)

	updated, err := svc.UpdateProfile(ctx, registered.ID, "  Ada Lovelace  ")
	require.NoError(t, err)
	assert.Equal(t, "Ada Lovelace", updated.FullName)

	_, err = svc.UpdateProfile(ctx, registered.ID, "   ")
	assert.ErrorIs(t, err, ErrFullNameRequired)
}

func TestChangePassword(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	registered, err := svc.Register(ctx, "a@x.com", "password123", "Ada")
	require.NoError(t, err)

	err = svc.ChangePassword(ctx, registered.ID, "wrongpassword", "newpassword123")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	err = svc.ChangePassword(ctx, registered.ID, "password123", "short")
	assert.ErrorIs(t, err, ErrPasswordTooShort)

	require.NoError(t, svc.ChangePassword(ctx, registered.ID, "password123", "newpassword123"))

	_, err = svc.Login(ctx, "a@x.com", "password123")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = svc.Login(ctx, "a@x.com", "newpassword123")
	require.NoError(t, err)
}
