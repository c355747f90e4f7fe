package middleware

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"
)

// HeaderUserID carries the caller's user id. Authentication happens upstream;
// the engine only authorizes against the id it is given.
const HeaderUserID = "Ax-User-Id"

const userIDKey = "ax.user_id"

func parseUserID(raw string) (int64, bool) {
	n, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil || n <= 0 {
		return 0, false
	}
	return n, true
}

// Identity parses Ax-User-Id when present and stores it on the context.
// A malformed id is rejected; a missing one is left for handlers to decide.
func Identity() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			raw := c.Request().Header.Get(HeaderUserID)
			if raw == "" {
				return next(c)
			}
			id, ok := parseUserID(raw)
			if !ok {
				return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid " + HeaderUserID})
			}
			c.Set(userIDKey, id)
			return next(c)
		}
	}
}

// UserID returns the id stored by Identity.
func UserID(c echo.Context) (int64, bool) {
	id, ok := c.Get(userIDKey).(int64)
	return id, ok
}
