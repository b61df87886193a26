package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"apprehension-service/internal/model"
)

func TestIssueAndParse(t *testing.T) {
	manager := NewManager("secret", time.Hour)

	token, err := manager.Issue("64f000000000000000000001", model.RoleAdmin)
	require.NoError(t, err)

	principal, err := manager.Parse(token)
	require.NoError(t, err)
	assert.Equal(t, "64f000000000000000000001", principal.UserID)
	assert.Equal(t, model.RoleAdmin, principal.Role)
	assert.True(t, principal.IsAdmin())
}

func TestParseRejectsWrongSecret(t *testing.T) {
	token, err := NewManager("secret-a", time.Hour).Issue("id", model.RoleUser)
	require.NoError(t, err)

	_, err = NewManager("secret-b", time.Hour).Parse(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestParseRejectsExpiredToken(t *testing.T) {
	manager := NewManager("secret", -time.Minute)

	token, err := manager.Issue("id", model.RoleUser)
	require.NoError(t, err)

	_, err = manager.Parse(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestParseRejectsUnsignedToken(t *testing.T) {
	unsigned := jwt.NewWithClaims(jwt.SigningMethodNone, Claims{UserID: "id", Role: model.RoleAdmin})
	raw, err := unsigned.SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	_, err = NewManager("secret", time.Hour).Parse(raw)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestParseRejectsGarbage(t *testing.T) {
	_, err := NewManager("secret", time.Hour).Parse("not.a.token")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestNewRefreshTokenIsUnique(t *testing.T) {
	a, err := NewRefreshToken()
	require.NoError(t, err)
	b, err := NewRefreshToken()
	require.NoError(t, err)

	assert.Len(t, a, 128)
	assert.NotEqual(t, a, b)
}
