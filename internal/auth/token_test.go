package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestTokenRoundTrip(t *testing.T) {
	manager := NewTokenManager("test-secret", 30)

	token, expiresAt, err := manager.GenerateToken("admin-1")
	require.NoError(t, err)
	require.WithinDuration(t, time.Now().Add(30*time.Minute), expiresAt, 5*time.Second)

	claims, err := manager.ParseToken(token)
	require.NoError(t, err)
	require.Equal(t, "admin-1", claims.AdminID)
	require.Equal(t, "admin-1", claims.Subject)
}

func TestParseTokenRejectsWrongSecret(t *testing.T) {
	token, _, err := NewTokenManager("secret-a", 30).GenerateToken("admin-1")
	require.NoError(t, err)

	_, err = NewTokenManager("secret-b", 30).ParseToken(token)
	require.Error(t, err)
}

func TestHashAndComparePassword(t *testing.T) {
	hash, err := HashPassword("correct horse battery", 4)
	require.NoError(t, err)
	require.NoError(t, ComparePassword(hash, "correct horse battery"))
	require.Error(t, ComparePassword(hash, "wrong password"))
}
