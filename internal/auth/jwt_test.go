package auth

import (
	"testing"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitJWTSecretRequired(t *testing.T) {
	t.Setenv("JWT_SECRET", "")

	require.Error(t, InitJWTSecret())
}

func TestInitJWTSecretRejectsBadTTL(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")
	t.Setenv("JWT_TTL_HOURS", "not-a-number")

	require.Error(t, InitJWTSecret())

	t.Setenv("JWT_TTL_HOURS", "-1")
	require.Error(t, InitJWTSecret())
}

func TestGenerateAndVerify(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")
	t.Setenv("JWT_TTL_HOURS", "1")
	require.NoError(t, InitJWTSecret())

	tokenString, err := GenerateJWT(42, "user@example.com")
	require.NoError(t, err)

	token, err := VerifyJWT(tokenString)
	require.NoError(t, err)

	claims, ok := token.Claims.(jwt.MapClaims)
	require.True(t, ok)
	assert.Equal(t, float64(42), claims["user_id"])
	assert.Equal(t, "user@example.com", claims["email"])
}

func TestVerifyRejectsTamperedToken(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")
	require.NoError(t, InitJWTSecret())

	tokenString, err := GenerateJWT(1, "user@example.com")
	require.NoError(t, err)

	_, err = VerifyJWT(tokenString + "x")
	require.Error(t, err)
}

func TestVerifyRejectsForeignSecret(t *testing.T) {
	t.Setenv("JWT_SECRET", "secret-a")
	require.NoError(t, InitJWTSecret())

	tokenString, err := GenerateJWT(1, "user@example.com")
	require.NoError(t, err)

	t.Setenv("JWT_SECRET", "secret-b")
	require.NoError(t, InitJWTSecret())

	_, err = VerifyJWT(tokenString)
	require.Error(t, err)
}
