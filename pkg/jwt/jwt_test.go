package jwt

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestService() *Service {
	return NewService("access-secret", "refresh-secret", time.Hour, 7*24*time.Hour)
}

func TestGenerateAndValidateAccessToken(t *testing.T) {
	service := newTestService()
	userID := uuid.New()

	token, err := service.GenerateAccessToken(userID, "admin@gsrtc.in", "admin")
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := service.ValidateAccessToken(token)
	require.NoError(t, err)
	assert.Equal(t, userID, claims.UserID)
	assert.Equal(t, "admin@gsrtc.in", claims.Email)
	assert.Equal(t, "admin", claims.Role)
	assert.Equal(t, AccessToken, claims.TokenType)
}

func TestGenerateAndValidateRefreshToken(t *testing.T) {
	service := newTestService()
	userID := uuid.New()

	token, err := service.GenerateRefreshToken(userID, "clerk@gsrtc.in")
	require.NoError(t, err)

	claims, err := service.ValidateRefreshToken(token)
	require.NoError(t, err)
	assert.Equal(t, userID, claims.UserID)
	assert.Equal(t, RefreshToken, claims.TokenType)
}

func TestValidateAccessToken_RejectsRefreshToken(t *testing.T) {
	service := newTestService()

	token, err := service.GenerateRefreshToken(uuid.New(), "clerk@gsrtc.in")
	require.NoError(t, err)

	// Same claims shape, wrong type and wrong secret
	_, err = service.ValidateAccessToken(token)
	assert.Error(t, err)
}

func TestValidateAccessToken_WrongSecret(t *testing.T) {
	service := newTestService()
	other := NewService("different-secret", "refresh-secret", time.Hour, time.Hour)

	token, err := service.GenerateAccessToken(uuid.New(), "admin@gsrtc.in", "admin")
	require.NoError(t, err)

	_, err = other.ValidateAccessToken(token)
	assert.Error(t, err)
}

func TestValidateAccessToken_Expired(t *testing.T) {
	service := NewService("access-secret", "refresh-secret", -time.Minute, time.Hour)

	token, err := service.GenerateAccessToken(uuid.New(), "admin@gsrtc.in", "admin")
	require.NoError(t, err)

	_, err = service.ValidateAccessToken(token)
	assert.Error(t, err)
	assert.True(t, service.IsTokenExpired(token))
}

func TestValidateAccessToken_Garbage(t *testing.T) {
	service := newTestService()

	_, err := service.ValidateAccessToken("not-a-token")
	assert.Error(t, err)
	assert.True(t, service.IsTokenExpired("not-a-token"))
}
