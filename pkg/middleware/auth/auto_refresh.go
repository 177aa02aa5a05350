package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	echojwt "github.com/labstack/echo-jwt/v4"
	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/store_rest/pkg/authclient"
	jwthelp "github.com/Skotchmaster/store_rest/pkg/jwt"
	"github.com/Skotchmaster/store_rest/pkg/logging"
	"github.com/Skotchmaster/store_rest/pkg/tokens"
)

const (
	tokenKey  = "jwt"
	claimsKey = "claims"
)

type Refresher interface {
	RefreshTokens(ctx context.Context, refreshToken, accessToken string) (*authclient.RefreshResponse, error)
}

// AutoRefreshMiddleware authenticates requests that carry an access token and
// lets the rest through as anonymous. An expired cookie token is exchanged at
// the credential service when a refresh cookie is present.
type AutoRefreshMiddleware struct {
	JWTSecret []byte
	Refresher Refresher
}

func NewAutoRefreshMiddleware(secret []byte, refresher Refresher) *AutoRefreshMiddleware {
	return &AutoRefreshMiddleware{
		JWTSecret: secret,
		Refresher: refresher,
	}
}

func (m *AutoRefreshMiddleware) Authenticate() echo.MiddlewareFunc {
	return echojwt.WithConfig(echojwt.Config{
		ContextKey:    tokenKey,
		SigningKey:    m.JWTSecret,
		SigningMethod: echojwt.AlgorithmHS256,
		TokenLookup:   "header:Authorization:Bearer ,cookie:" + jwthelp.AccessCookie,
		NewClaimsFunc: func(echo.Context) jwt.Claims {
			return new(tokens.AccessClaims)
		},
		SuccessHandler: func(c echo.Context) {
			if tok, ok := c.Get(tokenKey).(*jwt.Token); ok {
				if claims, ok := tok.Claims.(*tokens.AccessClaims); ok {
					setUserContext(c, claims)
				}
			}
		},
		ErrorHandler:           m.onError,
		ContinueOnIgnoredError: true,
	})
}

func (m *AutoRefreshMiddleware) onError(c echo.Context, err error) error {
	if !hasCredentials(c) {
		return nil
	}

	l := logging.FromContext(c.Request().Context()).With("middleware", "auth")

	if cookie, cErr := c.Cookie(jwthelp.AccessCookie); cErr == nil && cookie.Value != "" &&
		c.Request().Header.Get(echo.HeaderAuthorization) == "" {
		_, parseErr := tokens.AccessClaimsFromToken(cookie.Value, m.JWTSecret)
		if errors.Is(parseErr, jwt.ErrTokenExpired) {
			rErr := m.refresh(c, cookie.Value)
			if rErr == nil {
				return nil
			}
			l.Warn("auth_refresh_failed", "error", rErr)
		}
	}

	l.Warn("auth_failed", "status", 401, "error", err)
	clearAuthCookies(c)
	return echo.NewHTTPError(http.StatusUnauthorized, "invalid access token")
}

func (m *AutoRefreshMiddleware) refresh(c echo.Context, accessToken string) error {
	if m.Refresher == nil {
		return errors.New("refresh disabled")
	}
	refreshCookie, err := c.Cookie(jwthelp.RefreshCookie)
	if err != nil || refreshCookie.Value == "" {
		return errors.New("refresh token missing")
	}

	resp, err := m.Refresher.RefreshTokens(c.Request().Context(), refreshCookie.Value, accessToken)
	if err != nil {
		return err
	}

	claims, err := tokens.AccessClaimsFromToken(resp.AccessToken, m.JWTSecret)
	if err != nil {
		return err
	}

	c.SetCookie(jwthelp.CreateCookie(jwthelp.AccessCookie, resp.AccessToken, "/", time.Unix(resp.AccessExp, 0)))
	c.SetCookie(jwthelp.CreateCookie(jwthelp.RefreshCookie, resp.RefreshToken, "/", time.Unix(resp.RefreshExp, 0)))
	setUserContext(c, claims)
	return nil
}

func hasCredentials(c echo.Context) bool {
	if strings.HasPrefix(c.Request().Header.Get(echo.HeaderAuthorization), "Bearer ") {
		return true
	}
	cookie, err := c.Cookie(jwthelp.AccessCookie)
	return err == nil && cookie.Value != ""
}

func clearAuthCookies(c echo.Context) {
	c.SetCookie(jwthelp.DeleteCookie(jwthelp.AccessCookie, "/"))
	c.SetCookie(jwthelp.DeleteCookie(jwthelp.RefreshCookie, "/"))
}

func setUserContext(c echo.Context, claims *tokens.AccessClaims) {
	c.Set(claimsKey, claims)
	c.Set("user_id", claims.Subject)
	c.Set("role", claims.Role)
}

// Claims returns the verified access claims, or false for anonymous requests.
func Claims(c echo.Context) (*tokens.AccessClaims, bool) {
	claims, ok := c.Get(claimsKey).(*tokens.AccessClaims)
	return claims, ok && claims != nil
}

// ViaCookie reports whether the request authenticated with the ambient cookie
// rather than an explicit Authorization header.
func ViaCookie(c echo.Context) bool {
	if c.Request().Header.Get(echo.HeaderAuthorization) != "" {
		return false
	}
	cookie, err := c.Cookie(jwthelp.AccessCookie)
	return err == nil && cookie.Value != ""
}
