package analytics

import (
	"loan-marketplace/internal/domain/loan"
	"loan-marketplace/internal/infrastructure/metrics"
)

// Analytics is the platform-wide loan book rollup. Rates are percentages.
type Analytics struct {
	TotalLoans         int     `json:"totalLoans"`
	TotalLoanAmount    float64 `json:"totalLoanAmount"`
	ActiveLoans        int     `json:"activeLoans"`
	CompletedLoans     int     `json:"completedLoans"`
	DefaultedLoans     int     `json:"defaultedLoans"`
	OutstandingBalance float64 `json:"outstandingBalance"`
	DefaultRate        float64 `json:"defaultRate"`
	CompletionRate     float64 `json:"completionRate"`

	TotalApplications    int     `json:"totalApplications"`
	PendingApplications  int     `json:"pendingApplications"`
	ApprovedApplications int     `json:"approvedApplications"`
	RejectedApplications int     `json:"rejectedApplications"`
	ApprovalRate         float64 `json:"approvalRate"`

	TotalRepayments float64 `json:"totalRepayments"`
	TotalInterest   float64 `json:"totalInterest"`
	AvgLoanSize     float64 `json:"avgLoanSize"`
	AvgInterestRate float64 `json:"avgInterestRate"`

	RiskLoans          []*loan.ApprovedLoan `json:"riskLoans"`
	MonthlyRevenue     []MonthlyRevenue     `json:"monthlyRevenue"`
	AmountDistribution []AmountBucket       `json:"amountDistribution"`
}

// AmountBucket counts loans whose principal falls in one band.
type AmountBucket struct {
	Label string `json:"label"`
	Count int    `json:"count"`
}

// MonthlyRevenue is paid interest bucketed by the calendar month of payment.
type MonthlyRevenue struct {
	Month    string  `json:"month"` // YYYY-MM
	Interest float64 `json:"interest"`
}

// Portfolio projects the rollup onto the exported gauges.
func (a *Analytics) Portfolio() metrics.Portfolio {
	return metrics.Portfolio{
		ActiveLoans:         a.ActiveLoans,
		CompletedLoans:      a.CompletedLoans,
		DefaultedLoans:      a.DefaultedLoans,
		PendingApplications: a.PendingApplications,
		OutstandingBalance:  a.OutstandingBalance,
		DefaultRate:         a.DefaultRate,
		ApprovalRate:        a.ApprovalRate,
	}
}

// UserDistribution counts users per role. The *Pct fields are shares of all
// users and stay zero on an empty platform.
type UserDistribution struct {
	Borrowers int `json:"borrowers"`
	Lenders   int `json:"lenders"`
	Analysts  int `json:"analysts"`
	Admins    int `json:"admins"`

	BorrowersPct float64 `json:"borrowersPct"`
	LendersPct   float64 `json:"lendersPct"`
	AnalystsPct  float64 `json:"analystsPct"`
	AdminsPct    float64 `json:"adminsPct"`
}

type PlatformGrowth struct {
	NewUsersThisMonth int `json:"newUsersThisMonth"`
	NewLoansThisMonth int `json:"newLoansThisMonth"`
}

type AdminAnalytics struct {
	TotalUsers        int              `json:"totalUsers"`
	ActiveUsers       int              `json:"activeUsers"`
	SuspendedUsers    int              `json:"suspendedUsers"`
	UserDistribution  UserDistribution `json:"userDistribution"`
	PlatformGrowth    PlatformGrowth   `json:"platformGrowth"`
	TotalLoans        int              `json:"totalLoans"`
	TotalApplications int              `json:"totalApplications"`
	TotalRevenue      float64          `json:"totalRevenue"`
	LoansPerUser      float64          `json:"loansPerUser"`
}

// LenderSummary is one lender's book.
type LenderSummary struct {
	LenderID            int64   `json:"lenderId"`
	ActiveOffers        int     `json:"activeOffers"`
	ActiveLoans         int     `json:"activeLoans"`
	TotalLent           float64 `json:"totalLent"`
	OutstandingBalance  float64 `json:"outstandingBalance"`
	PendingApplications int     `json:"pendingApplications"`
	InterestEarned      float64 `json:"interestEarned"`
}

// BorrowerSummary is one borrower's debt position. NextPayment is the
// earliest pending installment across all of the borrower's loans.
type BorrowerSummary struct {
	BorrowerID          int64         `json:"borrowerId"`
	ActiveLoans         int           `json:"activeLoans"`
	TotalBorrowed       float64       `json:"totalBorrowed"`
	TotalPaid           float64       `json:"totalPaid"`
	OutstandingBalance  float64       `json:"outstandingBalance"`
	PendingApplications int           `json:"pendingApplications"`
	NextPayment         *loan.Payment `json:"nextPayment"`
}
