package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestHashPassword(t *testing.T) {
	hash, err := HashPassword("kitchen-secret", bcrypt.MinCost)
	require.NoError(t, err)
	assert.NoError(t, ComparePassword(hash, "kitchen-secret"))
	assert.ErrorIs(t, ComparePassword(hash, "wrong-secret"), bcrypt.ErrMismatchedHashAndPassword)
}

func TestHashPassword_Weak(t *testing.T) {
	for _, password := range []string{"", "short", "   seven   "} {
		_, err := HashPassword(password, bcrypt.MinCost)
		assert.ErrorIs(t, err, ErrWeakPassword, password)
	}
}

func TestHashPassword_CostOutOfRange(t *testing.T) {
	hash, err := HashPassword("kitchen-secret", 99)
	require.NoError(t, err)
	cost, err := bcrypt.Cost([]byte(hash))
	require.NoError(t, err)
	assert.Equal(t, bcrypt.DefaultCost, cost)
}

func TestComparePassword_EmptyHash(t *testing.T) {
	assert.Error(t, ComparePassword("", ""))
}
