package tokens

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var secret = []byte("test-jwt-secret")

func sign(t *testing.T, method jwt.SigningMethod, key any, claims AccessClaims) string {
	t.Helper()
	s, err := jwt.NewWithClaims(method, claims).SignedString(key)
	require.NoError(t, err)
	return s
}

func claimsFor(sub, role string, exp time.Time) AccessClaims {
	return AccessClaims{
		Role: role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   sub,
			ExpiresAt: jwt.NewNumericDate(exp),
		},
	}
}

func TestAccessClaimsFromToken(t *testing.T) {
	t.Parallel()

	tok := sign(t, jwt.SigningMethodHS256, secret, claimsFor("12", RoleAdmin, time.Now().Add(time.Minute)))

	claims, err := AccessClaimsFromToken(tok, secret)
	require.NoError(t, err)
	assert.True(t, claims.IsAdmin())

	id, err := claims.UserID()
	require.NoError(t, err)
	assert.Equal(t, uint(12), id)
}

func TestAccessClaimsFromToken_Rejects(t *testing.T) {
	t.Parallel()

	expired := sign(t, jwt.SigningMethodHS256, secret, claimsFor("1", "user", time.Now().Add(-time.Minute)))
	_, err := AccessClaimsFromToken(expired, secret)
	assert.ErrorIs(t, err, jwt.ErrTokenExpired)

	wrongKey := sign(t, jwt.SigningMethodHS256, []byte("other"), claimsFor("1", "user", time.Now().Add(time.Minute)))
	_, err = AccessClaimsFromToken(wrongKey, secret)
	assert.ErrorIs(t, err, jwt.ErrTokenSignatureInvalid)

	wrongAlg := sign(t, jwt.SigningMethodHS512, secret, claimsFor("1", "user", time.Now().Add(time.Minute)))
	_, err = AccessClaimsFromToken(wrongAlg, secret)
	assert.Error(t, err)

	_, err = AccessClaimsFromToken("garbage", secret)
	assert.Error(t, err)
}

func TestUserID_BadSubject(t *testing.T) {
	t.Parallel()

	for _, sub := range []string{"", "0", "abc", "-3"} {
		c := claimsFor(sub, "user", time.Now())
		_, err := c.UserID()
		assert.ErrorIs(t, err, ErrBadSubject, sub)
	}
}
