package jwt

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJWTService_GenerateAccessToken_CarriesClientAndType(t *testing.T) {
	svc := NewJWTService("test-secret", time.Hour)

	token, expiresAt, err := svc.GenerateAccessToken("tray")

	require.NoError(t, err)
	assert.Greater(t, expiresAt, time.Now().Unix())

	decoded, err := svc.JWTAuth().Decode(token)
	require.NoError(t, err)
	claims, err := decoded.AsMap(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "tray", claims["client_id"])
	assert.Equal(t, TokenTypeAccess, claims["type"])
}

func TestJWTService_ValidateSSEToken_Success(t *testing.T) {
	svc := NewJWTService("test-secret", time.Hour)
	token, expiresIn, err := svc.GenerateSSEToken("popup")
	require.NoError(t, err)
	assert.Equal(t, 300, expiresIn)

	clientID, err := svc.ValidateSSEToken(token)

	require.NoError(t, err)
	assert.Equal(t, "popup", clientID)
}

func TestJWTService_ValidateSSEToken_RejectsAccessToken(t *testing.T) {
	svc := NewJWTService("test-secret", time.Hour)
	token, _, err := svc.GenerateAccessToken("popup")
	require.NoError(t, err)

	_, err = svc.ValidateSSEToken(token)

	assert.Error(t, err)
}

func TestJWTService_ValidateSSEToken_RejectsForeignSecret(t *testing.T) {
	other := NewJWTService("other-secret", time.Hour)
	token, _, err := other.GenerateSSEToken("popup")
	require.NoError(t, err)

	_, err = NewJWTService("test-secret", time.Hour).ValidateSSEToken(token)

	assert.Error(t, err)
}

func TestJWTService_RevokeToken(t *testing.T) {
	svc := NewJWTService("test-secret", time.Hour)

	svc.RevokeToken("abc")

	assert.True(t, svc.IsTokenRevoked("abc"))
	assert.False(t, svc.IsTokenRevoked("def"))
}
