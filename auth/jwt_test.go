package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"patrolwatch/models"
)

func testUser() *models.User {
	return &models.User{
		UserID:   "user-guard-juma",
		Username: "guard_juma",
		Role:     models.RoleGuard,
	}
}

func TestGenerateAndValidateToken(t *testing.T) {
	manager := NewJWTManager("test-secret", 30*time.Minute, 7*24*time.Hour)

	token, err := manager.GenerateToken(testUser())
	require.NoError(t, err)

	claims, err := manager.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, "user-guard-juma", claims.UserID)
	assert.Equal(t, "guard_juma", claims.Username)
	assert.Equal(t, models.RoleGuard, claims.Role)
	assert.Equal(t, "patrolwatch-api", claims.Issuer)
}

func TestValidateToken_WrongSecret(t *testing.T) {
	manager := NewJWTManager("test-secret", 30*time.Minute, 7*24*time.Hour)
	other := NewJWTManager("other-secret", 30*time.Minute, 7*24*time.Hour)

	token, err := manager.GenerateToken(testUser())
	require.NoError(t, err)

	_, err = other.ValidateToken(token)
	assert.Error(t, err)
}

func TestValidateToken_Expired(t *testing.T) {
	manager := NewJWTManager("test-secret", -time.Minute, 7*24*time.Hour)

	token, err := manager.GenerateToken(testUser())
	require.NoError(t, err)

	_, err = manager.ValidateToken(token)
	assert.Error(t, err)
}

func TestValidateToken_Garbage(t *testing.T) {
	manager := NewJWTManager("test-secret", 30*time.Minute, 7*24*time.Hour)

	_, err := manager.ValidateToken("not.a.token")
	assert.Error(t, err)
}

func TestExtractToken(t *testing.T) {
	token, err := ExtractToken("Bearer abc123")
	require.NoError(t, err)
	assert.Equal(t, "abc123", token)

	_, err = ExtractToken("")
	assert.Error(t, err)

	_, err = ExtractToken("Basic abc123")
	assert.Error(t, err)

	_, err = ExtractToken("Bearer")
	assert.Error(t, err)
}
