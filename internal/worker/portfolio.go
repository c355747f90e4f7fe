package worker

import (
	"context"
	"time"

	"loan-marketplace/internal/infrastructure/logging"
	"loan-marketplace/internal/infrastructure/metrics"
	"loan-marketplace/internal/usecase/analytics"

	"go.uber.org/zap"
)

// AnalyticsSource is the slice of the analytics usecase the job reads.
type AnalyticsSource interface {
	GetAnalytics(ctx context.Context) (*analytics.Analytics, error)
}

// PortfolioJob recomputes the loan book rollup and publishes it as gauges.
type PortfolioJob struct {
	source  AnalyticsSource
	metrics metrics.Collector
	timeout time.Duration
	log     *logging.Logger
}

func NewPortfolioJob(src AnalyticsSource, m metrics.Collector) *PortfolioJob {
	if m == nil {
		m = metrics.NoOpCollector{}
	}
	return &PortfolioJob{
		source:  src,
		metrics: m,
		timeout: 30 * time.Second,
		log:     logging.L().Named("worker.portfolio"),
	}
}

// Run is the cron entry point.
func (j *PortfolioJob) Run() {
	ctx, cancel := context.WithTimeout(context.Background(), j.timeout)
	defer cancel()
	if err := j.RunOnce(ctx); err != nil {
		j.log.Error("portfolio refresh failed", zap.Error(err))
	}
}

func (j *PortfolioJob) RunOnce(ctx context.Context) error {
	start := time.Now()
	a, err := j.source.GetAnalytics(ctx)
	if err != nil {
		return err
	}
	j.metrics.SetPortfolio(a.Portfolio())
	j.log.Debug("portfolio refreshed",
		zap.Int("active_loans", a.ActiveLoans),
		zap.Float64("outstanding_balance", a.OutstandingBalance),
		zap.Duration("took", time.Since(start)),
	)
	return nil
}
