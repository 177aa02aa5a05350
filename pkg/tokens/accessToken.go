package tokens

import (
	"errors"
	"strconv"

	"github.com/golang-jwt/jwt/v5"
)

const RoleAdmin = "admin"

var ErrBadSubject = errors.New("token subject is not a user id")

type AccessClaims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

func (c *AccessClaims) UserID() (uint, error) {
	n, err := strconv.ParseUint(c.Subject, 10, 64)
	if err != nil || n == 0 {
		return 0, ErrBadSubject
	}
	return uint(n), nil
}

func (c *AccessClaims) IsAdmin() bool { return c.Role == RoleAdmin }

// Keyfunc accepts only HS256 tokens signed with secret.
func Keyfunc(secret []byte) jwt.Keyfunc {
	return func(t *jwt.Token) (any, error) {
		if t.Method.Alg() != jwt.SigningMethodHS256.Alg() {
			return nil, errors.New("unexpected sign method")
		}
		return secret, nil
	}
}

func AccessClaimsFromToken(tokenStr string, secret []byte) (*AccessClaims, error) {
	var claims AccessClaims
	tkn, err := jwt.ParseWithClaims(tokenStr, &claims, Keyfunc(secret))
	if err != nil {
		return nil, err
	}
	if !tkn.Valid {
		return nil, jwt.ErrTokenInvalidClaims
	}
	return &claims, nil
}
