package utils

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAccessTokenRoundTrip(t *testing.T) {
	token, err := GenerateJWT("user-42", "secret", time.Hour, "backoffice")
	require.NoError(t, err)

	subject, err := ParseAccessToken(token, "secret")
	require.NoError(t, err)
	assert.Equal(t, "user-42", subject)
}

func TestParseAccessTokenWrongSecret(t *testing.T) {
	token, err := GenerateJWT("user-42", "secret", time.Hour, "backoffice")
	require.NoError(t, err)

	_, err = ParseAccessToken(token, "outro-segredo")
	assert.Error(t, err)
}

func TestParseAccessTokenExpired(t *testing.T) {
	token, err := GenerateJWT("user-42", "secret", -time.Minute, "backoffice")
	require.NoError(t, err)

	_, err = ParseAccessToken(token, "secret")
	assert.ErrorIs(t, err, jwt.ErrTokenExpired)
}

func TestParseAccessTokenRejectsMissingSubject(t *testing.T) {
	claims := jwt.RegisteredClaims{
		Issuer:    "backoffice",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("secret"))
	require.NoError(t, err)

	_, err = ParseAccessToken(token, "secret")
	assert.Error(t, err)
}

func TestRefreshTokenHashRoundTrip(t *testing.T) {
	assert.True(t, CompareRefreshTokenHash("raw-token", HashRefreshToken("raw-token")))
	assert.False(t, CompareRefreshTokenHash("other", HashRefreshToken("raw-token")))
}
