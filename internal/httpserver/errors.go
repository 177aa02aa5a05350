package httpserver

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/store_rest/internal/service"
	"github.com/Skotchmaster/store_rest/internal/util"
)

// fail logs err under event and converts it into the HTTP error the client sees.
// Unknown errors never leak their text.
func fail(l *slog.Logger, event string, err error) error {
	var ve *service.ValidationError
	switch {
	case errors.As(err, &ve):
		l.Warn(event, "status", 400, "reason", ve.Reason, "field", ve.Field)
		return echo.NewHTTPError(http.StatusBadRequest, map[string]string{ve.Field: ve.Reason})
	case errors.Is(err, service.ErrValidation):
		l.Warn(event, "status", 400, "reason", "invalid body", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	case errors.Is(err, service.ErrForbidden):
		l.Warn(event, "status", 403, "reason", "forbidden", "error", err)
		return echo.NewHTTPError(http.StatusForbidden, "you do not have permission to perform this action")
	case errors.Is(err, service.ErrNotFound):
		l.Warn(event, "status", 404, "reason", "not found", "error", err)
		return echo.NewHTTPError(http.StatusNotFound, "not found")
	case errors.Is(err, service.ErrConflict):
		l.Warn(event, "status", 409, "reason", "idempotency key in use", "error", err)
		return echo.NewHTTPError(http.StatusConflict, "a request with this idempotency key is in progress")
	default:
		l.Error(event, "status", 500, "reason", "internal error", "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}
}

func badBody(l *slog.Logger, event string, err error) error {
	l.Warn(event, "status", 400, "reason", "invalid body", "error", err)
	return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
}

// pathID reads the :id parameter. A malformed id names no row and maps to 0,
// which no row has, so the caller is still authorized before being told the
// row does not exist.
func pathID(c echo.Context, l *slog.Logger) uint {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		l.Debug("malformed_path_id", "id", c.Param("id"))
		return 0
	}
	return uint(id)
}

type pageParams struct {
	page, size, offset, limit int
}

func paging(c echo.Context, defSize int) pageParams {
	page := util.ParseIntDefault(c.QueryParam("page"), 1)
	size := util.ParseIntDefault(c.QueryParam("size"), defSize)
	if size <= 0 || size > util.MaxPageSize {
		size = defSize
	}
	offset, limit := util.Calculate(page, size)
	if page < 1 {
		page = 1
	}
	return pageParams{page: page, size: limit, offset: offset, limit: limit}
}

func (p pageParams) meta(total int64) util.Meta {
	return util.NewMeta(p.page, p.size, total)
}
