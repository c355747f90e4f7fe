package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// PrometheusCollector implements Collector with client_golang vectors.
type PrometheusCollector struct {
	units   *prometheus.CounterVec
	latency *prometheus.HistogramVec
	retries *prometheus.CounterVec

	activeLoans         prometheus.Gauge
	completedLoans      prometheus.Gauge
	defaultedLoans      prometheus.Gauge
	pendingApplications prometheus.Gauge
	outstanding         prometheus.Gauge
	defaultRate         prometheus.Gauge
	approvalRate        prometheus.Gauge
}

func NewPrometheusCollector(namespace string) *PrometheusCollector {
	gauge := func(name, help string) prometheus.Gauge {
		return prometheus.NewGauge(prometheus.GaugeOpts{Namespace: namespace, Name: name, Help: help})
	}
	return &PrometheusCollector{
		units: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "store_units_total",
			Help:      "Units of work against the aggregate store by backend and outcome",
		}, []string{"backend", "outcome"}),
		latency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "store_unit_duration_seconds",
			Help:      "Load-mutate-save latency by backend",
			Buckets:   prometheus.DefBuckets,
		}, []string{"backend"}),
		retries: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "store_version_retries_total",
			Help:      "Units of work retried after a version conflict",
		}, []string{"backend"}),
		activeLoans:         gauge("loans_active", "Loans in active status"),
		completedLoans:      gauge("loans_completed", "Loans in completed status"),
		defaultedLoans:      gauge("loans_defaulted", "Loans in defaulted status"),
		pendingApplications: gauge("applications_pending", "Applications awaiting a lender decision"),
		outstanding:         gauge("outstanding_principal", "Sum of remaining balance over active loans"),
		defaultRate:         gauge("default_rate_percent", "Defaulted loans over all loans"),
		approvalRate:        gauge("approval_rate_percent", "Approved applications over all applications"),
	}
}

// Register adds all collectors to reg.
func (p *PrometheusCollector) Register(reg prometheus.Registerer) error {
	for _, c := range []prometheus.Collector{
		p.units, p.latency, p.retries,
		p.activeLoans, p.completedLoans, p.defaultedLoans, p.pendingApplications,
		p.outstanding, p.defaultRate, p.approvalRate,
	} {
		if err := reg.Register(c); err != nil {
			return err
		}
	}
	return nil
}

func (p *PrometheusCollector) RecordUnitOfWork(backend, outcome string, d time.Duration) {
	p.units.WithLabelValues(backend, outcome).Inc()
	p.latency.WithLabelValues(backend).Observe(d.Seconds())
}

func (p *PrometheusCollector) RecordRetry(backend string) {
	p.retries.WithLabelValues(backend).Inc()
}

func (p *PrometheusCollector) SetPortfolio(pf Portfolio) {
	p.activeLoans.Set(float64(pf.ActiveLoans))
	p.completedLoans.Set(float64(pf.CompletedLoans))
	p.defaultedLoans.Set(float64(pf.DefaultedLoans))
	p.pendingApplications.Set(float64(pf.PendingApplications))
	p.outstanding.Set(pf.OutstandingBalance)
	p.defaultRate.Set(pf.DefaultRate)
	p.approvalRate.Set(pf.ApprovalRate)
}
