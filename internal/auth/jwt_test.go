package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenManager_UsesConfiguredTTL(t *testing.T) {
	ttl := 2 * time.Hour
	tm := NewTokenManager("test-secret", "", ttl)

	start := time.Now()

	token, err := tm.GenerateToken(42, "tina")
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := tm.ValidateToken(token)
	require.NoError(t, err)
	require.NotNil(t, claims.ExpiresAt)

	assert.Equal(t, int64(42), claims.UserID)
	assert.Equal(t, "tina", claims.Login)
	assert.Equal(t, "42", claims.Subject)
	assert.WithinDuration(t, start.Add(ttl), claims.ExpiresAt.Time, 2*time.Second)
}

func TestTokenManager_RejectsTampering(t *testing.T) {
	tm := NewTokenManager("test-secret", "helpdesk", time.Hour)
	other := NewTokenManager("other-secret", "helpdesk", time.Hour)

	token, err := other.GenerateToken(1, "ana")
	require.NoError(t, err)

	_, err = tm.ValidateToken(token)
	assert.Error(t, err)
}

func TestTokenManager_RejectsWrongIssuer(t *testing.T) {
	tm := NewTokenManager("test-secret", "helpdesk", time.Hour)
	foreign := NewTokenManager("test-secret", "elsewhere", time.Hour)

	token, err := foreign.GenerateToken(1, "ana")
	require.NoError(t, err)

	_, err = tm.ValidateToken(token)
	assert.Error(t, err)
}

func TestTokenManager_RejectsExpiredAndAnonymous(t *testing.T) {
	tm := NewTokenManager("test-secret", "", time.Hour)

	expired := jwt.NewWithClaims(jwt.SigningMethodHS256, &Claims{
		UserID: 1,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Minute)),
		},
	})
	signed, err := expired.SignedString([]byte("test-secret"))
	require.NoError(t, err)
	_, err = tm.ValidateToken(signed)
	assert.ErrorIs(t, err, jwt.ErrTokenExpired)

	anonymous := jwt.NewWithClaims(jwt.SigningMethodHS256, &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Minute)),
		},
	})
	signed, err = anonymous.SignedString([]byte("test-secret"))
	require.NoError(t, err)
	_, err = tm.ValidateToken(signed)
	assert.Error(t, err)
}
