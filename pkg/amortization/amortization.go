package amortization

import (
	"errors"
	"math"
	"time"

	"github.com/shopspring/decimal"
)

// ErrInvalidTerms is returned for a non-positive principal or term, or a negative rate.
var ErrInvalidTerms = errors.New("amortization: invalid loan terms")

// PeriodDays is the fixed spacing between due dates. Due dates are not aligned to calendar months.
const PeriodDays = 30

// Installment is one row of a repayment schedule. Money fields are rounded to cents;
// Balance is the outstanding principal after this installment is paid.
type Installment struct {
	Number    int
	DueDate   time.Time
	Amount    float64
	Principal float64
	Interest  float64
	Balance   float64
}

// Quote summarizes a loan before it is approved.
type Quote struct {
	MonthlyPayment float64 `json:"monthly_payment"`
	TotalRepayment float64 `json:"total_repayment"`
	TotalInterest  float64 `json:"total_interest"`
}

// Round rounds v to cents, half away from zero.
func Round(v float64) float64 {
	return decimal.NewFromFloat(v).Round(2).InexactFloat64()
}

// Upper bounds on accepted terms. Anything past them either overflows the
// annuity factor or builds an unreasonably long schedule.
const (
	MaxAnnualRatePercent = 100
	MaxTermMonths        = 600
)

func validate(principal, annualRatePercent float64, termMonths int) error {
	if principal <= 0 || termMonths <= 0 || annualRatePercent < 0 ||
		annualRatePercent > MaxAnnualRatePercent || termMonths > MaxTermMonths ||
		math.IsNaN(principal) || math.IsInf(principal, 0) || math.IsNaN(annualRatePercent) || math.IsInf(annualRatePercent, 0) {
		return ErrInvalidTerms
	}
	return nil
}

func monthlyRate(annualRatePercent float64) float64 { return annualRatePercent / 100 / 12 }

// MonthlyPayment returns the unrounded fixed payment for a fully amortizing loan.
// A zero rate yields exactly principal / termMonths.
func MonthlyPayment(principal, annualRatePercent float64, termMonths int) (float64, error) {
	if err := validate(principal, annualRatePercent, termMonths); err != nil {
		return 0, err
	}
	p := monthlyPayment(principal, monthlyRate(annualRatePercent), termMonths)
	if !finite(p) {
		return 0, ErrInvalidTerms
	}
	return p, nil
}

func finite(v float64) bool { return !math.IsNaN(v) && !math.IsInf(v, 0) }

func monthlyPayment(principal, r float64, n int) float64 {
	if r == 0 {
		return principal / float64(n)
	}
	f := math.Pow(1+r, float64(n))
	return principal * r * f / (f - 1)
}

// BuildSchedule returns exactly termMonths installments in due-date order.
// Each row is rounded on its own; the running balance is carried unrounded
// so cent rounding does not compound across the term.
func BuildSchedule(start time.Time, principal, annualRatePercent float64, termMonths int) ([]Installment, error) {
	if err := validate(principal, annualRatePercent, termMonths); err != nil {
		return nil, err
	}
	r := monthlyRate(annualRatePercent)
	payment := monthlyPayment(principal, r, termMonths)
	if !finite(payment) {
		return nil, ErrInvalidTerms
	}

	out := make([]Installment, 0, termMonths)
	balance := principal
	for i := 1; i <= termMonths; i++ {
		interest := balance * r
		principalPortion := payment - interest
		balance -= principalPortion

		out = append(out, Installment{
			Number:    i,
			DueDate:   start.AddDate(0, 0, PeriodDays*i),
			Amount:    Round(principalPortion + interest),
			Principal: Round(principalPortion),
			Interest:  Round(interest),
			Balance:   Round(math.Max(balance, 0)),
		})
	}
	return out, nil
}

// Summary prices a loan without building the schedule.
func Summary(principal, annualRatePercent float64, termMonths int) (Quote, error) {
	payment, err := MonthlyPayment(principal, annualRatePercent, termMonths)
	if err != nil {
		return Quote{}, err
	}
	monthly := Round(payment)
	total := monthly * float64(termMonths)
	return Quote{
		MonthlyPayment: monthly,
		TotalRepayment: Round(total),
		TotalInterest:  Round(total - principal),
	}, nil
}
