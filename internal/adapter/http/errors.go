package http

import (
	"errors"
	"net/http"

	"loan-marketplace/internal/domain/loan"
	"loan-marketplace/internal/infrastructure/logging"
	"loan-marketplace/internal/store"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// statusFor maps domain errors → HTTP codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, loan.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, loan.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, loan.ErrInvalidInput):
		return http.StatusBadRequest
	case errors.Is(err, loan.ErrOutOfRange):
		return http.StatusUnprocessableEntity
	case errors.Is(err, loan.ErrInvalidTransition),
		errors.Is(err, loan.ErrAlreadySettled),
		errors.Is(err, loan.ErrReferentialIntegrity),
		errors.Is(err, loan.ErrDuplicateEmail),
		errors.Is(err, store.ErrVersionConflict):
		return http.StatusConflict
	}
	return http.StatusInternalServerError
}

func writeError(c echo.Context, err error) error {
	code := statusFor(err)
	if code == http.StatusInternalServerError {
		logging.L().Named("http").Error("request failed",
			zap.String("path", c.Path()),
			zap.Error(err),
		)
		return c.JSON(code, ErrorResponse{Error: "internal error"})
	}
	return c.JSON(code, ErrorResponse{Error: err.Error()})
}

func badRequest(c echo.Context, msg string) error {
	return c.JSON(http.StatusBadRequest, ErrorResponse{Error: msg})
}

// bindAndValidate decodes the body into req and runs the validator.
// It writes the error response itself and reports whether the handler may continue.
func bindAndValidate(c echo.Context, req any) (bool, error) {
	if err := c.Bind(req); err != nil {
		return false, badRequest(c, "invalid body")
	}
	if err := c.Validate(req); err != nil {
		return false, c.JSON(http.StatusUnprocessableEntity, ErrorResponse{
			Error:   "validation failed",
			Details: ToFieldErrors(err),
		})
	}
	return true, nil
}

// ErrorHandler renders echo.HTTPError values (bad params, unknown routes) as ErrorResponse.
func ErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}
	var he *echo.HTTPError
	if errors.As(err, &he) {
		msg, ok := he.Message.(string)
		if !ok {
			msg = http.StatusText(he.Code)
		}
		_ = c.JSON(he.Code, ErrorResponse{Error: msg})
		return
	}
	_ = writeError(c, err)
}
