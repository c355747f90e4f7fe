package approval

import (
	"context"
	"errors"
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

// NewUsecase: approval runs as one unit of work, so only the UoW is needed.
func NewUsecase(tx uow.UnitOfWork) *Usecase {
	return &Usecase{uow: tx, now: time.Now, log: logging.L().Named("approval")}
}

// Approve turns a pending application into an active loan with its full
// repayment schedule and records the disbursement.
func (u *Usecase) Approve(ctx context.Context, in ApproveInput) (*ApprovalDTO, error) {
	var dto *ApprovalDTO

	err := u.uow.WithinTx(ctx, func(db *store.Database) error {
		// Ownership + state guard: only pending → approved
		app, offer, err := db.PendingDecision(in.ApplicationID, in.LenderID)
		if err != nil {
			return err
		}

		// One loan per application, whatever the application status says.
		if _, err := db.LoanByApplicationID(app.ID); err == nil {
			return loan.ErrAlreadyApproved
		} else if !errors.Is(err, loan.ErrNotFound) {
			return err
		}

		// Bounds are checked again at decision time.
		if !offer.InRange(app.Amount) {
			return fmt.Errorf("%w: %.2f not in [%.2f, %.2f]", loan.ErrOutOfRange, app.Amount, offer.MinAmount, offer.MaxAmount)
		}

		now := u.now().UTC()
		payment, err := amortization.MonthlyPayment(app.Amount, offer.InterestRate, offer.Term)
		if err != nil {
			return fmt.Errorf("%w: %v", loan.ErrInvalidInput, err)
		}
		schedule, err := amortization.BuildSchedule(now, app.Amount, offer.InterestRate, offer.Term)
		if err != nil {
			return fmt.Errorf("%w: %v", loan.ErrInvalidInput, err)
		}
		monthly := amortization.Round(payment)

		l := db.InsertLoan(&loan.ApprovedLoan{
			ApplicationID:    app.ID,
			BorrowerID:       app.BorrowerID,
			LenderID:         offer.LenderID,
			LoanOfferID:      offer.ID,
			Amount:           app.Amount,
			InterestRate:     offer.InterestRate,
			Term:             offer.Term,
			MonthlyPayment:   monthly,
			TotalRepayment:   amortization.Round(monthly * float64(offer.Term)),
			RemainingBalance: app.Amount,
			Status:           loan.LoanActive,
			StartDate:        now,
		})

		payments := make([]*loan.Payment, 0, len(schedule))
		for _, inst := range schedule {
			payments = append(payments, db.InsertPayment(&loan.Payment{
				LoanID:    l.ID,
				Number:    inst.Number,
				Amount:    inst.Amount,
				DueDate:   inst.DueDate,
				Status:    loan.PaymentPending,
				Principal: inst.Principal,
				Interest:  inst.Interest,
			}))
		}

		app.Status = loan.ApplicationApproved
		app.DecidedAt = &now

		db.AppendTransaction(&loan.Transaction{
			LoanID:      l.ID,
			UserID:      offer.LenderID,
			Type:        loan.TxDisbursement,
			Amount:      l.Amount,
			Description: fmt.Sprintf("Disbursement for loan #%d", l.ID),
			Timestamp:   now,
		})

		dto = &ApprovalDTO{Loan: l, Schedule: payments}
		return nil
	})

	if err != nil {
		return nil, err
	}
	u.log.Info("application approved",
		zap.Int64("application_id", in.ApplicationID),
		zap.Int64("loan_id", dto.Loan.ID),
		zap.Float64("monthly_payment", dto.Loan.MonthlyPayment),
	)
	return dto, nil
}
