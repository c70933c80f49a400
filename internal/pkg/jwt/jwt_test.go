package jwt

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAccessTokenRoundTrip(t *testing.T) {
	tokenString, err := GenerateAccessToken("0912345678", "resident", "test-secret", 15)
	require.NoError(t, err)
	require.NotEmpty(t, tokenString)

	claims, err := ValidateAccessToken(tokenString, "test-secret")
	require.NoError(t, err)
	assert.Equal(t, "0912345678", claims.PhoneNumber)
	assert.Equal(t, "resident", claims.Role)
	assert.Equal(t, "0912345678", claims.Subject)
}

func TestAccessTokenWrongSecret(t *testing.T) {
	tokenString, err := GenerateAccessToken("0912345678", "resident", "test-secret", 15)
	require.NoError(t, err)

	_, err = ValidateAccessToken(tokenString, "other-secret")
	assert.ErrorIs(t, err, ErrTokenInvalid)
}

func TestAccessTokenExpired(t *testing.T) {
	tokenString, err := GenerateAccessToken("0912345678", "resident", "test-secret", -1)
	require.NoError(t, err)

	_, err = ValidateAccessToken(tokenString, "test-secret")
	assert.ErrorIs(t, err, ErrTokenExpired)
}

func TestRefreshTokenRoundTrip(t *testing.T) {
	tokenString, err := GenerateRefreshToken("0912345678", "token-id-1", "refresh-secret", 7)
	require.NoError(t, err)

	claims, err := ValidateRefreshToken(tokenString, "refresh-secret")
	require.NoError(t, err)
	assert.Equal(t, "0912345678", claims.PhoneNumber)
	assert.Equal(t, "token-id-1", claims.TokenID)
}

func TestRefreshTokenNotValidAsAccessSecret(t *testing.T) {
	tokenString, err := GenerateRefreshToken("0912345678", "token-id-1", "refresh-secret", 7)
	require.NoError(t, err)

	_, err = ValidateRefreshToken(tokenString, "access-secret")
	assert.ErrorIs(t, err, ErrTokenInvalid)
}

func TestGarbageToken(t *testing.T) {
	_, err := ValidateAccessToken("not.a.token", "test-secret")
	assert.ErrorIs(t, err, ErrTokenInvalid)
}
