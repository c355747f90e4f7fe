package http

import (
	"net/http"

	"loan-marketplace/internal/domain/loan"
	"loan-marketplace/internal/usecase/payment"

	loanuc "loan-marketplace/internal/usecase/loan"

	"github.com/labstack/echo/v4"
)

type LoanHandler struct {
	loans    *loanuc.Usecase
	payments *payment.Usecase
}

func NewLoanHandler(loans *loanuc.Usecase, payments *payment.Usecase) *LoanHandler {
	return &LoanHandler{loans: loans, payments: payments}
}

// ListLoans: ?borrowerId=&lenderId=&status=
func (h *LoanHandler) ListLoans(c echo.Context) error {
	var (
		f      loan.LoanFilter
		status string
	)
	err := echo.QueryParamsBinder(c).
		Int64("borrowerId", &f.BorrowerID).
		Int64("lenderId", &f.LenderID).
		String("status", &status).
		BindError()
	if err != nil {
		return badRequest(c, "invalid query param")
	}
	f.Status = loan.LoanStatus(status)
	out, err := h.loans.List(c.Request().Context(), f)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *LoanHandler) GetLoan(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	dto, err := h.loans.Get(c.Request().Context(), id)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, dto)
}

// Transactions: ?userId=&type=
func (h *LoanHandler) Transactions(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	f := loan.TransactionFilter{LoanID: id}
	var typ string
	err = echo.QueryParamsBinder(c).
		Int64("userId", &f.UserID).
		String("type", &typ).
		BindError()
	if err != nil {
		return badRequest(c, "invalid query param")
	}
	f.Type = loan.TransactionType(typ)
	out, err := h.loans.Transactions(c.Request().Context(), f)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

// ListPayments: ?loanId=&status=
func (h *LoanHandler) ListPayments(c echo.Context) error {
	var (
		f      loan.PaymentFilter
		status string
	)
	err := echo.QueryParamsBinder(c).
		Int64("loanId", &f.LoanID).
		String("status", &status).
		BindError()
	if err != nil {
		return badRequest(c, "invalid query param")
	}
	f.Status = loan.PaymentStatus(status)
	out, err := h.payments.List(c.Request().Context(), f)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

// SettlePayment pays one installment in full. Only the borrower may settle.
func (h *LoanHandler) SettlePayment(c echo.Context) error {
	payerID, err := actor(c)
	if err != nil {
		return err
	}
	id, err := pathID(c)
	if err != nil {
		return err
	}
	dto, err := h.payments.Settle(c.Request().Context(), payment.SettleInput{PaymentID: id, PayerID: payerID})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, dto)
}
