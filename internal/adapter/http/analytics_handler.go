package http

import (
	"errors"
	"net/http"

	"loan-marketplace/internal/usecase/analytics"
	"loan-marketplace/pkg/amortization"

	"github.com/labstack/echo/v4"
)

type AnalyticsHandler struct{ uc *analytics.Usecase }

func NewAnalyticsHandler(uc *analytics.Usecase) *AnalyticsHandler { return &AnalyticsHandler{uc: uc} }

func (h *AnalyticsHandler) Platform(c echo.Context) error {
	out, err := h.uc.GetAnalytics(c.Request().Context())
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *AnalyticsHandler) Admin(c echo.Context) error {
	out, err := h.uc.GetAdminAnalytics(c.Request().Context())
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *AnalyticsHandler) Lender(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	out, err := h.uc.LenderSummary(c.Request().Context(), id)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *AnalyticsHandler) Borrower(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	out, err := h.uc.BorrowerSummary(c.Request().Context(), id)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *AnalyticsHandler) Risk(c echo.Context) error {
	out, err := h.uc.RiskLoans(c.Request().Context())
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

// Quote prices a hypothetical loan: ?amount=&rate=&term=
func (h *AnalyticsHandler) Quote(c echo.Context) error {
	var (
		amount, rate float64
		term         int
	)
	err := echo.QueryParamsBinder(c).
		MustFloat64("amount", &amount).
		MustFloat64("rate", &rate).
		MustInt("term", &term).
		BindError()
	if err != nil {
		return badRequest(c, "amount, rate and term are required numbers")
	}
	q, err := amortization.Summary(amount, rate, term)
	if errors.Is(err, amortization.ErrInvalidTerms) {
		return badRequest(c, err.Error())
	}
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, q)
}
