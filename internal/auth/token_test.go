package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/ops-portal/internal/domain"
)

func testUser() *domain.User {
	return &domain.User{ID: "9b2f3c1e-5d7a-4f0e-8a3b-2c1d4e5f6a7b", EmployeeID: "S100", Role: domain.RoleKitchenStaff}
}

func TestTokenRoundTrip(t *testing.T) {
	tm := NewTokenManager("secret", 30)

	token, expiresAt, err := tm.GenerateToken(testUser())
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(30*time.Minute), expiresAt, 5*time.Second)

	claims, err := tm.ParseToken(token)
	require.NoError(t, err)
	assert.Equal(t, testUser().ID, claims.Subject)
	assert.Equal(t, "S100", claims.EmployeeID)
	assert.Equal(t, domain.RoleKitchenStaff, claims.Role)
}

func TestParseToken_Rejects(t *testing.T) {
	tm := NewTokenManager("secret", 30)
	token, _, err := tm.GenerateToken(testUser())
	require.NoError(t, err)

	_, err = NewTokenManager("other-secret", 30).ParseToken(token)
	assert.Error(t, err)

	_, err = tm.ParseToken("not-a-token")
	assert.Error(t, err)

	expired := NewTokenManager("secret", 1)
	expired.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
	stale, _, err := expired.GenerateToken(testUser())
	require.NoError(t, err)
	_, err = tm.ParseToken(stale)
	assert.Error(t, err)
}

func TestNewTokenManager_DefaultTTL(t *testing.T) {
	assert.Equal(t, time.Hour, NewTokenManager("secret", 0).ttl)
}
