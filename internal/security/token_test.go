package security

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenManager_RoundTrip(t *testing.T) {
	manager := NewTokenManager("test-secret")

	token, err := manager.GenerateToken("operator1", time.Hour)
	require.NoError(t, err)

	claims, err := manager.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, "operator1", claims.Operator)
	assert.Equal(t, "operator1", claims.Subject)
	assert.Equal(t, "economy-core", claims.Issuer)
}

func TestTokenManager_Expired(t *testing.T) {
	manager := NewTokenManager("test-secret")

	token, err := manager.GenerateToken("operator1", -time.Minute)
	require.NoError(t, err)

	_, err = manager.ValidateToken(token)
	assert.ErrorIs(t, err, ErrExpiredToken)
}

func TestTokenManager_WrongSecret(t *testing.T) {
	token, err := NewTokenManager("secret-a").GenerateToken("operator1", time.Hour)
	require.NoError(t, err)

	_, err = NewTokenManager("secret-b").ValidateToken(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestTokenManager_Garbage(t *testing.T) {
	_, err := NewTokenManager("test-secret").ValidateToken("not-a-token")
	assert.ErrorIs(t, err, ErrInvalidToken)
}
