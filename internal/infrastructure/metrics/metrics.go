package metrics

import "time"

// Unit-of-work outcomes reported by the store.
const (
	OutcomeCommitted = "committed"
	OutcomeRejected  = "rejected" // the mutation returned an error; nothing saved
	OutcomeConflict  = "conflict"
	OutcomeFailed    = "failed" // backend load/save error
)

// Portfolio is a point-in-time view of the loan book exported as gauges.
type Portfolio struct {
	ActiveLoans         int
	CompletedLoans      int
	DefaultedLoans      int
	PendingApplications int
	OutstandingBalance  float64
	DefaultRate         float64
	ApprovalRate        float64
}

// Collector receives store and portfolio measurements.
type Collector interface {
	RecordUnitOfWork(backend, outcome string, duration time.Duration)
	RecordRetry(backend string)
	SetPortfolio(p Portfolio)
}

// NoOpCollector discards everything. It is the default.
type NoOpCollector struct{}

func (NoOpCollector) RecordUnitOfWork(string, string, time.Duration) {}
func (NoOpCollector) RecordRetry(string)                             {}
func (NoOpCollector) SetPortfolio(Portfolio)                         {}
