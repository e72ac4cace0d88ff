package service

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ignatzorin/testhub-backend/internal/models"
)

func newTestTokenManager() *TokenManager {
	return NewTokenManager("access-secret", "refresh-secret", 15*time.Minute, 7*24*time.Hour)
}

func TestTokenManager_GenerateAndParse(t *testing.T) {
	tm := newTestTokenManager()
	user := &models.User{ID: uuid.New(), Role: models.RoleTester}

	pair, refreshExp, err := tm.GeneratePair(user)
	require.NoError(t, err)
	assert.NotEmpty(t, pair.AccessToken)
	assert.NotEmpty(t, pair.RefreshToken)
	assert.Equal(t, 15*time.Minute, pair.ExpiresIn)
	assert.WithinDuration(t, time.Now().Add(7*24*time.Hour), refreshExp, time.Minute)

	userID, role, err := tm.ParseAccess(pair.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, user.ID, userID)
	assert.Equal(t, models.RoleTester, role)

	claims, err := tm.ParseRefresh(pair.RefreshToken)
	require.NoError(t, err)
	assert.Equal(t, user.ID.String(), claims.Subject)
	assert.NotEmpty(t, claims.ID)
}

func TestTokenManager_ParseAccess_WrongSecret(t *testing.T) {
	tm := newTestTokenManager()
	other := NewTokenManager("another-secret", "refresh-secret", time.Minute, time.Hour)

	pair, _, err := tm.GeneratePair(&models.User{ID: uuid.New(), Role: models.RoleCustomer})
	require.NoError(t, err)

	_, _, err = other.ParseAccess(pair.AccessToken)
	assert.Error(t, err)
}

func TestTokenManager_ParseAccess_Expired(t *testing.T) {
	tm := NewTokenManager("access-secret", "refresh-secret", -time.Minute, time.Hour)

	pair, _, err := tm.GeneratePair(&models.User{ID: uuid.New(), Role: models.RoleCustomer})
	require.NoError(t, err)

	_, _, err = tm.ParseAccess(pair.AccessToken)
	assert.Error(t, err)
}

func TestTokenManager_TokensAreNotInterchangeable(t *testing.T) {
	tm := newTestTokenManager()

	pair, _, err := tm.GeneratePair(&models.User{ID: uuid.New(), Role: models.RoleCustomer})
	require.NoError(t, err)

	// refresh токен подписан другим секретом и не проходит как access
	_, _, err = tm.ParseAccess(pair.RefreshToken)
	assert.Error(t, err)

	_, err = tm.ParseRefresh(pair.AccessToken)
	assert.Error(t, err)
}
