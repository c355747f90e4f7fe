package loan

import (
	"context"

	domainLoan "loan-marketplace/internal/domain/loan"
	"loan-marketplace/internal/domain/uow"
	"loan-marketplace/internal/store"
)

// Usecase serves the read side of approved loans.
type Usecase struct{ uow uow.UnitOfWork }

func NewUsecase(tx uow.UnitOfWork) *Usecase { return &Usecase{uow: tx} }

func (u *Usecase) List(ctx context.Context, f domainLoan.LoanFilter) ([]*domainLoan.ApprovedLoan, error) {
	if err := f.Validate(); err != nil {
		return nil, err
	}
	var out []*domainLoan.ApprovedLoan
	err := u.uow.View(ctx, func(db *store.Database) error {
		out = db.FindLoans(f)
		return nil
	})
	return out, err
}

func (u *Usecase) Get(ctx context.Context, loanID int64) (*LoanDetailDTO, error) {
	var dto *LoanDetailDTO
	err := u.uow.View(ctx, func(db *store.Database) error {
		l, err := db.LoanByID(loanID)
		if err != nil {
			return err
		}
		dto = &LoanDetailDTO{Loan: l, Schedule: db.FindPayments(domainLoan.PaymentFilter{LoanID: l.ID})}
		for _, p := range dto.Schedule {
			switch {
			case p.Status == domainLoan.PaymentPaid:
				dto.PaidCount++
			case dto.NextPayment == nil:
				dto.NextPayment = p
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return dto, nil
}

// Transactions lists audit records, oldest first.
func (u *Usecase) Transactions(ctx context.Context, f domainLoan.TransactionFilter) ([]*domainLoan.Transaction, error) {
	if err := f.Validate(); err != nil {
		return nil, err
	}
	var out []*domainLoan.Transaction
	err := u.uow.View(ctx, func(db *store.Database) error {
		out = db.FindTransactions(f)
		return nil
	})
	return out, err
}
