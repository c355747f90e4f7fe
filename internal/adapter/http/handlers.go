package http

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
)

// Handler serves liveness. check, when set, pings the store backend.
type Handler struct {
	check func(ctx context.Context) error
}

func NewHandler(check func(ctx context.Context) error) *Handler { return &Handler{check: check} }

func (h *Handler) Health(c echo.Context) error {
	body := map[string]any{
		"status": "ok",
		"time":   time.Now().UTC().Format(time.RFC3339Nano),
	}
	if h.check == nil {
		return c.JSON(http.StatusOK, body)
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 2*time.Second)
	defer cancel()
	if err := h.check(ctx); err != nil {
		body["status"] = "degraded"
		body["store"] = err.Error()
		return c.JSON(http.StatusServiceUnavailable, body)
	}
	body["store"] = "ok"
	return c.JSON(http.StatusOK, body)
}
