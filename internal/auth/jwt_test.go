package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIssueAndValidate(t *testing.T) {
	issuer := NewIssuer("secret", "starlab", time.Hour)

	token, err := issuer.Issue("u_1", "demo@starlab.dev", "Star Demo")
	require.NoError(t, err)

	claims, err := issuer.Validate(token)
	require.NoError(t, err)
	assert.Equal(t, "u_1", claims.UserID)
	assert.Equal(t, "u_1", claims.Subject)
	assert.Equal(t, "demo@starlab.dev", claims.Email)
	assert.Equal(t, "Star Demo", claims.Name)
	assert.Equal(t, "starlab", claims.Issuer)
	require.NotNil(t, claims.ExpiresAt)
}

func TestValidateRejects(t *testing.T) {
	issuer := NewIssuer("secret", "starlab", time.Hour)
	token, err := issuer.Issue("u_1", "demo@starlab.dev", "")
	require.NoError(t, err)

	t.Run("wrong secret", func(t *testing.T) {
		_, err := NewIssuer("other", "starlab", time.Hour).Validate(token)
		require.Error(t, err)
	})

	t.Run("wrong issuer", func(t *testing.T) {
		_, err := NewIssuer("secret", "someone-else", time.Hour).Validate(token)
		require.ErrorIs(t, err, jwt.ErrTokenInvalidIssuer)
	})

	t.Run("expired", func(t *testing.T) {
		later := NewIssuer("secret", "starlab", time.Hour)
		later.now = func() time.Time { return time.Now().Add(2 * time.Hour) }
		_, err := later.Validate(token)
		require.ErrorIs(t, err, jwt.ErrTokenExpired)
	})

	t.Run("not a token", func(t *testing.T) {
		_, err := issuer.Validate("demo-token")
		require.Error(t, err)
	})
}

func TestSecretNotSet(t *testing.T) {
	issuer := NewIssuer("", "starlab", 0)

	_, err := issuer.Issue("u_1", "demo@starlab.dev", "")
	require.ErrorIs(t, err, ErrSecretNotSet)

	_, err = issuer.Validate("anything")
	require.ErrorIs(t, err, ErrSecretNotSet)
}

func TestZeroTTLNeverExpires(t *testing.T) {
	issuer := NewIssuer("secret", "starlab", 0)
	token, err := issuer.Issue("u_1", "demo@starlab.dev", "")
	require.NoError(t, err)

	claims, err := issuer.Validate(token)
	require.NoError(t, err)
	assert.Nil(t, claims.ExpiresAt)
}
