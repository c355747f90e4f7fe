package http

import (
	"context"
	"net/http"

	"loan-marketplace/internal/adapter/middleware"
	"loan-marketplace/internal/infrastructure/logging"
	"loan-marketplace/internal/usecase/analytics"
	"loan-marketplace/internal/usecase/application"
	"loan-marketplace/internal/usecase/approval"
	"loan-marketplace/internal/usecase/offer"
	"loan-marketplace/internal/usecase/payment"
	"loan-marketplace/internal/usecase/user"

	loanuc "loan-marketplace/internal/usecase/loan"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
)

type Usecases struct {
	Users        *user.Usecase
	Offers       *offer.Usecase
	Applications *application.Usecase
	Approvals    *approval.Usecase
	Loans        *loanuc.Usecase
	Payments     *payment.Usecase
	Analytics    *analytics.Usecase
}

type RouterConfig struct {
	Usecases
	Logger *logging.Logger
	// Idempotency guards mutating routes that carry a caller id; nil disables it.
	Idempotency echo.MiddlewareFunc
	// Metrics is served at /metrics when set.
	Metrics http.Handler
	// HealthCheck pings the store for /health; nil reports liveness only.
	HealthCheck func(ctx context.Context) error
}

func NewRouter(cfg RouterConfig) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = NewValidator()
	e.HTTPErrorHandler = ErrorHandler

	log := cfg.Logger
	if log == nil {
		log = logging.L()
	}
	e.Use(echomw.Recover(), echomw.RequestID(), middleware.RequestLogger(log), middleware.Identity())

	var guard []echo.MiddlewareFunc
	if cfg.Idempotency != nil {
		guard = append(guard, cfg.Idempotency)
	}

	h := NewHandler(cfg.HealthCheck)
	e.GET("/health", h.Health)
	if cfg.Metrics != nil {
		e.GET("/metrics", echo.WrapHandler(cfg.Metrics))
	}

	users := NewUserHandler(cfg.Users)
	e.POST("/users", users.Register)
	e.GET("/users", users.ListUsers)
	e.PATCH("/users/:id/status", users.UpdateStatus, guard...)
	e.DELETE("/users/:id", users.DeleteUser, guard...)

	offers := NewOfferHandler(cfg.Offers)
	e.POST("/offers", offers.CreateOffer, guard...)
	e.GET("/offers", offers.ListOffers)
	e.GET("/offers/:id", offers.GetOffer)

	apps := NewApplicationHandler(cfg.Applications, cfg.Approvals)
	e.POST("/applications", apps.Submit, guard...)
	e.GET("/applications", apps.List)
	e.POST("/applications/:id/approve", apps.Approve, guard...)
	e.POST("/applications/:id/reject", apps.Reject, guard...)

	loans := NewLoanHandler(cfg.Loans, cfg.Payments)
	e.GET("/loans", loans.ListLoans)
	e.GET("/loans/:id", loans.GetLoan)
	e.GET("/loans/:id/transactions", loans.Transactions)
	e.GET("/payments", loans.ListPayments)
	e.POST("/payments/:id/settle", loans.SettlePayment, guard...)

	an := NewAnalyticsHandler(cfg.Analytics)
	e.GET("/analytics", an.Platform)
	e.GET("/analytics/admin", an.Admin)
	e.GET("/analytics/lenders/:id", an.Lender)
	e.GET("/analytics/borrowers/:id", an.Borrower)
	e.GET("/analytics/risk", an.Risk)
	e.GET("/quote", an.Quote)

	return e
}
