package payment

import (
	"context"
	"fmt"
	"time"

	"loan-marketplace/internal/domain/loan"
	"loan-marketplace/internal/domain/uow"
	"loan-marketplace/internal/infrastructure/logging"
	"loan-marketplace/internal/store"
	"loan-marketplace/pkg/amortization"

	"go.uber.org/zap"
)

type Usecase struct {
	uow uow.UnitOfWork
	now func() time.Time
	log *logging.Logger
}

func NewUsecase(tx uow.UnitOfWork) *Usecase {
	return &Usecase{uow: tx, now: time.Now, log: logging.L().Named("payment")}
}

// Settle pays one scheduled installment in full and moves the loan balance.
// Settling the last pending installment completes the loan and retires the
// cent residual left by per-installment rounding.
func (u *Usecase) Settle(ctx context.Context, in SettleInput) (*SettlementDTO, error) {
	var dto *SettlementDTO
	err := u.uow.WithinTx(ctx, func(db *store.Database) error {
		p, err := db.PaymentByID(in.PaymentID)
		if err != nil {
			return err
		}
		l, err := db.LoanByID(p.LoanID)
		if err != nil {
			return err
		}
		if l.BorrowerID != in.PayerID {
			return fmt.Errorf("%w: payment %d belongs to another borrower", loan.ErrForbidden, p.ID)
		}
		if p.Status != loan.PaymentPending {
			return fmt.Errorf("%w: payment %d is %s", loan.ErrAlreadySettled, p.ID, p.Status)
		}
		if l.Status != loan.LoanActive {
			return fmt.Errorf("%w: loan %d is %s", loan.ErrInvalidTransition, l.ID, l.Status)
		}

		now := u.now().UTC()
		p.Status = loan.PaymentPaid
		p.PaidAt = &now

		l.RemainingBalance = amortization.Round(l.RemainingBalance - p.Principal)
		if len(db.FindPayments(loan.PaymentFilter{LoanID: l.ID, Status: loan.PaymentPending})) == 0 {
			l.RemainingBalance = 0
		}
		if l.RemainingBalance <= 0 {
			l.RemainingBalance = 0
			l.Status = loan.LoanCompleted
			l.CompletedAt = &now
		}

		db.AppendTransaction(&loan.Transaction{
			LoanID:      l.ID,
			UserID:      in.PayerID,
			Type:        loan.TxPayment,
			Amount:      p.Amount,
			Description: fmt.Sprintf("Payment %d of %d for loan #%d", p.Number, l.Term, l.ID),
			Timestamp:   now,
		})

		dto = &SettlementDTO{Payment: p, Loan: l}
		return nil
	})
	if err != nil {
		return nil, err
	}
	fields := []zap.Field{
		zap.Int64("payment_id", dto.Payment.ID),
		zap.Int64("loan_id", dto.Loan.ID),
		zap.Float64("remaining_balance", dto.Loan.RemainingBalance),
	}
	if dto.Loan.Status == loan.LoanCompleted {
		u.log.Info("loan completed", fields...)
	} else {
		u.log.Info("payment settled", fields...)
	}
	return dto, nil
}

// List returns payments in schedule order.
func (u *Usecase) List(ctx context.Context, f loan.PaymentFilter) ([]*loan.Payment, error) {
	if err := f.Validate(); err != nil {
		return nil, err
	}
	var out []*loan.Payment
	err := u.uow.View(ctx, func(db *store.Database) error {
		out = db.FindPayments(f)
		return nil
	})
	return out, err
}
