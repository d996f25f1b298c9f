package security

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenRoundTrip(t *testing.T) {
	tm := NewTokenManager("test-secret", 60, 1440)

	token, err := tm.GenerateAccessToken(7, "user@test.com", "student")
	require.NoError(t, err)

	claims, err := tm.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, int32(7), claims.UserID)
	assert.Equal(t, "user@test.com", claims.Email)
	assert.Equal(t, "student", claims.Role)
	assert.Equal(t, TokenTypeAccess, claims.Type)
	assert.Equal(t, "librental-backend", claims.Issuer)
	assert.NotEmpty(t, claims.ID)
}

func TestRefreshTokenType(t *testing.T) {
	tm := NewTokenManager("test-secret", 60, 1440)

	token, err := tm.GenerateRefreshToken(7, "user@test.com")
	require.NoError(t, err)

	claims, err := tm.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, TokenTypeRefresh, claims.Type)
	assert.Empty(t, claims.Role)
}

func TestValidateRejectsWrongSecret(t *testing.T) {
	tm := NewTokenManager("test-secret", 60, 1440)
	other := NewTokenManager("other-secret", 60, 1440)

	token, err := tm.GenerateAccessToken(7, "user@test.com", "student")
	require.NoError(t, err)

	_, err = other.ValidateToken(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestValidateRejectsExpiredToken(t *testing.T) {
	tm := NewTokenManager("test-secret", -1, -1)

	token, err := tm.GenerateAccessToken(7, "user@test.com", "student")
	require.NoError(t, err)

	_, err = tm.ValidateToken(token)
	assert.ErrorIs(t, err, ErrExpiredToken)
}

func TestRequireType(t *testing.T) {
	tm := NewTokenManager("test-secret", 60, 1440)

	token, err := tm.GenerateRefreshToken(7, "user@test.com")
	require.NoError(t, err)

	claims, err := tm.ValidateToken(token)
	require.NoError(t, err)
	assert.NoError(t, claims.RequireType(TokenTypeRefresh))
	assert.ErrorIs(t, claims.RequireType(TokenTypeAccess), ErrWrongTokenType)
}

func TestValidateRejectsGarbage(t *testing.T) {
	tm := NewTokenManager("test-secret", 60, 1440)

	_, err := tm.ValidateToken("not.a.jwt")
	assert.ErrorIs(t, err, ErrInvalidToken)
}
