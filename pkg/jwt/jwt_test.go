package jwt

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestManager_GenerateAndValidate(t *testing.T) {
	m := NewManager("test-secret", 1)
	userID := uuid.New()

	token, err := m.GenerateToken(userID, "shop@example.com", "Corner Shop", "BUSINESS", []string{"product:create"}, "v1")
	require.NoError(t, err)

	claims, err := m.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, userID, claims.UserID)
	assert.Equal(t, "BUSINESS", claims.RoleCode)
	assert.Equal(t, "v1", claims.TokenVersion)
	assert.True(t, claims.HasPrivilege("product:create"))
	assert.False(t, claims.HasPrivilege("user:manage"))
}

func TestManager_ValidateToken_Failures(t *testing.T) {
	m := NewManager("test-secret", 1)
	token, err := m.GenerateToken(uuid.New(), "a@example.com", "A", "CONSUMER", nil, "v1")
	require.NoError(t, err)

	t.Run("empty token", func(t *testing.T) {
		_, err := m.ValidateToken("")
		assert.ErrorIs(t, err, ErrMissingToken)
	})

	t.Run("wrong secret", func(t *testing.T) {
		other := NewManager("another-secret", 1)
		_, err := other.ValidateToken(token)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("expired", func(t *testing.T) {
		later := NewManager("test-secret", 1)
		later.now = func() time.Time { return time.Now().Add(2 * time.Hour) }
		_, err := later.ValidateToken(token)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("garbage", func(t *testing.T) {
		_, err := m.ValidateToken("not.a.token")
		assert.ErrorIs(t, err, ErrInvalidToken)
	})
}
