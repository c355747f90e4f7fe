package approval

import (
	"loan-marketplace/internal/domain/loan"
)

type ApproveInput struct {
	ApplicationID int64
	LenderID      int64
}

// ApprovalDTO is the loan created by an approval together with its schedule.
type ApprovalDTO struct {
	Loan     *loan.ApprovedLoan `json:"loan"`
	Schedule []*loan.Payment    `json:"schedule"`
}
