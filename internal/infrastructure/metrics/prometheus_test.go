package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestPrometheusCollector_UnitsAndRetries(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewPrometheusCollector("loanmkt")
	if err := c.Register(reg); err != nil {
		t.Fatalf("Register: %v", err)
	}

	c.RecordUnitOfWork("memory", OutcomeCommitted, 3*time.Millisecond)
	c.RecordUnitOfWork("memory", OutcomeCommitted, time.Millisecond)
	c.RecordUnitOfWork("memory", OutcomeRejected, time.Millisecond)
	c.RecordRetry("redis")

	if got := testutil.ToFloat64(c.units.WithLabelValues("memory", OutcomeCommitted)); got != 2 {
		t.Fatalf("committed = %v, want 2", got)
	}
	if got := testutil.ToFloat64(c.units.WithLabelValues("memory", OutcomeRejected)); got != 1 {
		t.Fatalf("rejected = %v, want 1", got)
	}
	if got := testutil.ToFloat64(c.retries.WithLabelValues("redis")); got != 1 {
		t.Fatalf("retries = %v, want 1", got)
	}
}

func TestPrometheusCollector_Portfolio(t *testing.T) {
	c := NewPrometheusCollector("loanmkt")
	c.SetPortfolio(Portfolio{ActiveLoans: 3, PendingApplications: 2, OutstandingBalance: 1234.5, ApprovalRate: 50})

	if got := testutil.ToFloat64(c.activeLoans); got != 3 {
		t.Fatalf("active = %v", got)
	}
	if got := testutil.ToFloat64(c.outstanding); got != 1234.5 {
		t.Fatalf("outstanding = %v", got)
	}
	if got := testutil.ToFloat64(c.approvalRate); got != 50 {
		t.Fatalf("approval rate = %v", got)
	}
}

func TestPrometheusCollector_DoubleRegisterFails(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewPrometheusCollector("loanmkt")
	if err := c.Register(reg); err != nil {
		t.Fatalf("first Register: %v", err)
	}
	if err := c.Register(reg); err == nil {
		t.Fatal("expected duplicate registration error")
	}
}

var _ Collector = NoOpCollector{}
var _ Collector = (*PrometheusCollector)(nil)
