package http

import (
	"net/http"

	"loan-marketplace/internal/adapter/middleware"

	"github.com/labstack/echo/v4"
)

func pathID(c echo.Context) (int64, error) {
	var id int64
	err := echo.PathParamsBinder(c).MustInt64("id", &id).BindError()
	if err != nil || id <= 0 {
		return 0, echo.NewHTTPError(http.StatusBadRequest, "invalid id path param")
	}
	return id, nil
}

// actor returns the caller's user id, or a 401 when Ax-User-Id is absent.
func actor(c echo.Context) (int64, error) {
	id, ok := middleware.UserID(c)
	if !ok {
		return 0, echo.NewHTTPError(http.StatusUnauthorized, "missing "+middleware.HeaderUserID+" header")
	}
	return id, nil
}
