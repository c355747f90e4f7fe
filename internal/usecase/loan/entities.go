package loan

import (
	domainLoan "loan-marketplace/internal/domain/loan"
)

// LoanDetailDTO is a loan with its full schedule and the next installment due.
type LoanDetailDTO struct {
	Loan        *domainLoan.ApprovedLoan `json:"loan"`
	Schedule    []*domainLoan.Payment    `json:"schedule"`
	PaidCount   int                      `json:"paidCount"`
	NextPayment *domainLoan.Payment      `json:"nextPayment"`
}
