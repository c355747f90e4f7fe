package payment

import "loan-marketplace/internal/domain/loan"

type SettleInput struct {
	PaymentID int64
	PayerID   int64
}

// SettlementDTO carries the paid installment and the loan after the balance update.
type SettlementDTO struct {
	Payment *loan.Payment      `json:"payment"`
	Loan    *loan.ApprovedLoan `json:"loan"`
}
