package auth

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testTokenKey = []byte("0123456789abcdef0123456789abcdef")

func newTestPasetoService(t *testing.T) *PasetoService {
	t.Helper()

	svc, err := NewPasetoService(testTokenKey)
	require.NoError(t, err)
	return svc
}

func TestNewPasetoServiceRejectsShortKey(t *testing.T) {
	_, err := NewPasetoService([]byte("short"))
	require.Error(t, err)
}

func TestCreateAndVerifyToken(t *testing.T) {
	svc := newTestPasetoService(t)
	userID := uuid.New()

	tokenStr, err := svc.CreateToken(userID, "a@x.com", 15*time.Minute)
	require.NoError(t, err)
	require.NotEmpty(t, tokenStr)

	claims, err := svc.VerifyToken(tokenStr)
	require.NoError(t, err)
	assert.Equal(t, userID.String(), claims.UserID)
	assert.Equal(t, "a@x.com", claims.Email)
	assert.True(t, claims.ExpiresAt.After(time.Now()))
}

func TestVerifyTokenExpired(t *testing.T) {
	svc := newTestPasetoService(t)

	tokenStr, err := svc.CreateToken(uuid.New(), "a@x.com", -1*time.Minute)
	require.NoError(t, err)

	_, err = svc.VerifyToken(tokenStr)
	require.Error(t, err, "expired token must not verify")
}

func TestVerifyTokenWrongKey(t *testing.T) {
	svc := newTestPasetoService(t)

	tokenStr, err := svc.CreateToken(uuid.New(), "a@x.com", 15*time.Minute)
	require.NoError(t, err)

	otherSvc, err := NewPasetoService([]byte("ffffffffffffffffffffffffffffffff"))
	require.NoError(t, err)

	_, err = otherSvc.VerifyToken(tokenStr)
	require.ErrorIs(t, err, ErrInvalidToken)
}

func TestVerifyTokenMalformed(t *testing.T) {
	svc := newTestPasetoService(t)

	for _, tokenStr := range []string{"", "garbage", "v4.local.not-a-token"} {
		_, err := svc.VerifyToken(tokenStr)
		assert.ErrorIs(t, err, ErrInvalidToken, "token %q", tokenStr)
	}
}
