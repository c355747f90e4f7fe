package analytics

import (
	"context"
	"fmt"
	"math"
	"sort"
	"time"

	"loan-marketplace/internal/domain/loan"
	"loan-marketplace/internal/domain/uow"
	"loan-marketplace/internal/store"
	"loan-marketplace/pkg/amortization"
)

// RiskThreshold is the share of principal still owed above which an active loan counts as at risk.
const RiskThreshold = 0.8

// Usecase computes read-only rollups from the current aggregate. Nothing is cached.
type Usecase struct {
	uow uow.UnitOfWork
	now func() time.Time
}

func NewUsecase(tx uow.UnitOfWork) *Usecase { return &Usecase{uow: tx, now: time.Now} }

// ratio returns part/whole*100, or 0 when whole is zero.
func ratio(part, whole int) float64 {
	if whole == 0 {
		return 0
	}
	return amortization.Round(float64(part) / float64(whole) * 100)
}

func mean(sum float64, n int) float64 {
	if n == 0 {
		return 0
	}
	return amortization.Round(sum / float64(n))
}

// amountBands are inclusive upper bounds on loan principal.
var amountBands = []struct {
	label string
	max   float64
}{
	{"0-5000", 5000},
	{"5001-10000", 10000},
	{"10001-20000", 20000},
	{"20001+", math.Inf(1)},
}

func amountDistribution(loans []*loan.ApprovedLoan) []AmountBucket {
	out := make([]AmountBucket, len(amountBands))
	for i, b := range amountBands {
		out[i].Label = b.label
	}
	for _, l := range loans {
		for i, b := range amountBands {
			if l.Amount <= b.max {
				out[i].Count++
				break
			}
		}
	}
	return out
}

func atRisk(l *loan.ApprovedLoan) bool {
	return l.Status == loan.LoanDefaulted ||
		(l.Status == loan.LoanActive && l.RemainingBalance > l.Amount*RiskThreshold)
}

func sameMonth(a, b time.Time) bool {
	a, b = a.UTC(), b.UTC()
	return a.Year() == b.Year() && a.Month() == b.Month()
}

func (u *Usecase) GetAnalytics(ctx context.Context) (*Analytics, error) {
	var out *Analytics
	err := u.uow.View(ctx, func(db *store.Database) error {
		out = compute(db)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func compute(db *store.Database) *Analytics {
	a := &Analytics{RiskLoans: []*loan.ApprovedLoan{}, MonthlyRevenue: []MonthlyRevenue{}}

	var amount, rates, outstanding float64
	for _, l := range db.ApprovedLoans {
		a.TotalLoans++
		amount += l.Amount
		rates += l.InterestRate
		switch l.Status {
		case loan.LoanActive:
			a.ActiveLoans++
			outstanding += l.RemainingBalance
		case loan.LoanCompleted:
			a.CompletedLoans++
		case loan.LoanDefaulted:
			a.DefaultedLoans++
		}
		if atRisk(l) {
			a.RiskLoans = append(a.RiskLoans, l)
		}
	}
	a.TotalLoanAmount = amortization.Round(amount)
	a.OutstandingBalance = amortization.Round(outstanding)
	a.DefaultRate = ratio(a.DefaultedLoans, a.TotalLoans)
	a.CompletionRate = ratio(a.CompletedLoans, a.TotalLoans)
	a.AvgLoanSize = mean(amount, a.TotalLoans)
	a.AvgInterestRate = mean(rates, a.TotalLoans)
	a.AmountDistribution = amountDistribution(db.ApprovedLoans)

	for _, app := range db.LoanApplications {
		a.TotalApplications++
		switch app.Status {
		case loan.ApplicationPending:
			a.PendingApplications++
		case loan.ApplicationApproved:
			a.ApprovedApplications++
		case loan.ApplicationRejected:
			a.RejectedApplications++
		}
	}
	a.ApprovalRate = ratio(a.ApprovedApplications, a.TotalApplications)

	var repaid, interest float64
	byMonth := map[string]float64{}
	for _, p := range db.Payments {
		if p.Status != loan.PaymentPaid {
			continue
		}
		repaid += p.Amount
		interest += p.Interest
		if p.PaidAt != nil {
			byMonth[p.PaidAt.UTC().Format("2006-01")] += p.Interest
		}
	}
	a.TotalRepayments = amortization.Round(repaid)
	a.TotalInterest = amortization.Round(interest)
	for month, v := range byMonth {
		a.MonthlyRevenue = append(a.MonthlyRevenue, MonthlyRevenue{Month: month, Interest: amortization.Round(v)})
	}
	sort.Slice(a.MonthlyRevenue, func(i, j int) bool { return a.MonthlyRevenue[i].Month < a.MonthlyRevenue[j].Month })
	return a
}

func (u *Usecase) GetAdminAnalytics(ctx context.Context) (*AdminAnalytics, error) {
	now := u.now()
	var out *AdminAnalytics
	err := u.uow.View(ctx, func(db *store.Database) error {
		a := &AdminAnalytics{
			TotalUsers:        len(db.Users),
			TotalLoans:        len(db.ApprovedLoans),
			TotalApplications: len(db.LoanApplications),
		}
		for _, usr := range db.Users {
			switch usr.Status {
			case loan.UserActive:
				a.ActiveUsers++
			case loan.UserSuspended:
				a.SuspendedUsers++
			}
			switch usr.Role {
			case loan.RoleBorrower:
				a.UserDistribution.Borrowers++
			case loan.RoleLender:
				a.UserDistribution.Lenders++
			case loan.RoleAnalyst:
				a.UserDistribution.Analysts++
			case loan.RoleAdmin:
				a.UserDistribution.Admins++
			}
			if sameMonth(usr.CreatedAt, now) {
				a.PlatformGrowth.NewUsersThisMonth++
			}
		}
		for _, l := range db.ApprovedLoans {
			if sameMonth(l.StartDate, now) {
				a.PlatformGrowth.NewLoansThisMonth++
			}
		}
		var revenue float64
		for _, p := range db.Payments {
			if p.Status == loan.PaymentPaid {
				revenue += p.Interest
			}
		}
		d := &a.UserDistribution
		d.BorrowersPct = ratio(d.Borrowers, a.TotalUsers)
		d.LendersPct = ratio(d.Lenders, a.TotalUsers)
		d.AnalystsPct = ratio(d.Analysts, a.TotalUsers)
		d.AdminsPct = ratio(d.Admins, a.TotalUsers)
		a.TotalRevenue = amortization.Round(revenue)
		a.LoansPerUser = mean(float64(a.TotalLoans), a.TotalUsers)
		out = a
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// LenderSummary rolls up one lender's offers, loans and earned interest.
func (u *Usecase) LenderSummary(ctx context.Context, lenderID int64) (*LenderSummary, error) {
	var out *LenderSummary
	err := u.uow.View(ctx, func(db *store.Database) error {
		usr, err := db.UserByID(lenderID)
		if err != nil {
			return err
		}
		if usr.Role != loan.RoleLender {
			return fmt.Errorf("%w: user %d is not a lender", loan.ErrInvalidInput, lenderID)
		}
		s := &LenderSummary{
			LenderID:            lenderID,
			ActiveOffers:        len(db.FindOffers(loan.OfferFilter{LenderID: lenderID, Status: loan.OfferActive})),
			PendingApplications: len(db.FindApplications(loan.ApplicationFilter{LenderID: lenderID, Status: loan.ApplicationPending})),
		}
		var lent, outstanding, earned float64
		for _, l := range db.FindLoans(loan.LoanFilter{LenderID: lenderID}) {
			lent += l.Amount
			if l.Status == loan.LoanActive {
				s.ActiveLoans++
				outstanding += l.RemainingBalance
			}
			for _, p := range db.FindPayments(loan.PaymentFilter{LoanID: l.ID, Status: loan.PaymentPaid}) {
				earned += p.Interest
			}
		}
		s.TotalLent = amortization.Round(lent)
		s.OutstandingBalance = amortization.Round(outstanding)
		s.InterestEarned = amortization.Round(earned)
		out = s
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// BorrowerSummary rolls up one borrower's loans, repayments and the next
// installment due.
func (u *Usecase) BorrowerSummary(ctx context.Context, borrowerID int64) (*BorrowerSummary, error) {
	var out *BorrowerSummary
	err := u.uow.View(ctx, func(db *store.Database) error {
		usr, err := db.UserByID(borrowerID)
		if err != nil {
			return err
		}
		if usr.Role != loan.RoleBorrower {
			return fmt.Errorf("%w: user %d is not a borrower", loan.ErrInvalidInput, borrowerID)
		}
		s := &BorrowerSummary{
			BorrowerID:          borrowerID,
			PendingApplications: len(db.FindApplications(loan.ApplicationFilter{BorrowerID: borrowerID, Status: loan.ApplicationPending})),
		}
		var borrowed, paid, outstanding float64
		for _, l := range db.FindLoans(loan.LoanFilter{BorrowerID: borrowerID}) {
			borrowed += l.Amount
			if l.Status == loan.LoanActive {
				s.ActiveLoans++
				outstanding += l.RemainingBalance
			}
			for _, p := range db.FindPayments(loan.PaymentFilter{LoanID: l.ID}) {
				switch p.Status {
				case loan.PaymentPaid:
					paid += p.Amount
				case loan.PaymentPending:
					if s.NextPayment == nil || p.DueDate.Before(s.NextPayment.DueDate) ||
						(p.DueDate.Equal(s.NextPayment.DueDate) && p.ID < s.NextPayment.ID) {
						s.NextPayment = p
					}
				}
			}
		}
		s.TotalBorrowed = amortization.Round(borrowed)
		s.TotalPaid = amortization.Round(paid)
		s.OutstandingBalance = amortization.Round(outstanding)
		out = s
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// RiskLoans lists defaulted loans and active loans with more than
// RiskThreshold of their principal outstanding.
func (u *Usecase) RiskLoans(ctx context.Context) ([]*loan.ApprovedLoan, error) {
	out := []*loan.ApprovedLoan{}
	err := u.uow.View(ctx, func(db *store.Database) error {
		for _, l := range db.ApprovedLoans {
			if atRisk(l) {
				out = append(out, l)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}
