package httpserver

import (
	"context"
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/Skotchmaster/store_rest/internal/access"
	"github.com/Skotchmaster/store_rest/internal/models"
	"github.com/Skotchmaster/store_rest/pkg/logging"
	authmw "github.com/Skotchmaster/store_rest/pkg/middleware/auth"
)

const principalKey = "principal"

type UserLookup interface {
	GetUser(ctx context.Context, id uint) (*models.User, error)
}

// PrincipalLoader resolves verified token claims into an access.Principal. The
// staff flag comes from the store, not from the token, so it is always current.
func PrincipalLoader(users UserLookup) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			pr := access.Anonymous()

			if claims, ok := authmw.Claims(c); ok {
				ctx := c.Request().Context()
				l := logging.FromContext(ctx).With("middleware", "principal")

				id, err := claims.UserID()
				if err != nil {
					l.Warn("principal_bad_subject", "subject", claims.Subject, "error", err)
					return echo.NewHTTPError(http.StatusUnauthorized, "invalid access token")
				}

				user, err := users.GetUser(ctx, id)
				switch {
				case err == nil:
					pr = access.User(user.ID, user.IsStaff)
					if claims.IsAdmin() != user.IsStaff {
						l.Debug("principal_role_claim_stale", "user_id", id, "role", claims.Role)
					}
				case errors.Is(err, gorm.ErrRecordNotFound):
					l.Info("principal_user_inactive", "user_id", id)
				default:
					l.Error("principal_load_failed", "status", 500, "user_id", id, "error", err)
					return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
				}
			}

			c.Set(principalKey, pr)
			return next(c)
		}
	}
}

func principal(c echo.Context) access.Principal {
	if pr, ok := c.Get(principalKey).(access.Principal); ok {
		return pr
	}
	return access.Anonymous()
}
