package http

import (
	"net/http"

	"loan-marketplace/internal/domain/loan"
	"loan-marketplace/internal/usecase/application"
	"loan-marketplace/internal/usecase/approval"

	"github.com/labstack/echo/v4"
)

type ApplicationHandler struct {
	apps      *application.Usecase
	approvals *approval.Usecase
}

func NewApplicationHandler(apps *application.Usecase, approvals *approval.Usecase) *ApplicationHandler {
	return &ApplicationHandler{apps: apps, approvals: approvals}
}

type submitApplicationReq struct {
	LoanOfferID int64   `json:"loanOfferId" validate:"required,gt=0"`
	Amount      float64 `json:"amount"      validate:"gt=0,dec2"`
	Purpose     string  `json:"purpose"     validate:"required,max=500"`
	CreditScore int     `json:"creditScore" validate:"gte=0,lte=1000"`
	Income      float64 `json:"income"      validate:"gte=0,dec2"`
}

func (h *ApplicationHandler) Submit(c echo.Context) error {
	borrowerID, err := actor(c)
	if err != nil {
		return err
	}
	var req submitApplicationReq
	if ok, err := bindAndValidate(c, &req); !ok {
		return err
	}
	app, err := h.apps.Submit(c.Request().Context(), application.SubmitInput{
		BorrowerID:  borrowerID,
		OfferID:     req.LoanOfferID,
		Amount:      req.Amount,
		Purpose:     req.Purpose,
		CreditScore: req.CreditScore,
		Income:      req.Income,
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusCreated, app)
}

// List: ?borrowerId=&lenderId=&offerId=&status=
func (h *ApplicationHandler) List(c echo.Context) error {
	var (
		f      loan.ApplicationFilter
		status string
	)
	err := echo.QueryParamsBinder(c).
		Int64("borrowerId", &f.BorrowerID).
		Int64("lenderId", &f.LenderID).
		Int64("offerId", &f.OfferID).
		String("status", &status).
		BindError()
	if err != nil {
		return badRequest(c, "invalid query param")
	}
	f.Status = loan.ApplicationStatus(status)
	out, err := h.apps.List(c.Request().Context(), f)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

// Approve creates the loan and its schedule; the caller must own the offer.
func (h *ApplicationHandler) Approve(c echo.Context) error {
	lenderID, err := actor(c)
	if err != nil {
		return err
	}
	appID, err := pathID(c)
	if err != nil {
		return err
	}
	dto, err := h.approvals.Approve(c.Request().Context(), approval.ApproveInput{
		ApplicationID: appID,
		LenderID:      lenderID,
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusCreated, dto)
}

func (h *ApplicationHandler) Reject(c echo.Context) error {
	lenderID, err := actor(c)
	if err != nil {
		return err
	}
	appID, err := pathID(c)
	if err != nil {
		return err
	}
	app, err := h.apps.Reject(c.Request().Context(), application.DecisionInput{
		ApplicationID: appID,
		LenderID:      lenderID,
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, app)
}
