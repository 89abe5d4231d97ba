package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for the reconciliation module.
type Metrics struct {
	// Merge outcomes by decision and game.
	MergeOutcome *prometheus.CounterVec

	// Canonical draw status after each merge.
	DrawStatus *prometheus.CounterVec

	// Overall reconcile latency including store round-trips.
	ReconcileLatency prometheus.Histogram

	// Invariant violations must stay at zero; any increment is an alert.
	InvariantViolations prometheus.Counter
}

// New creates a Metrics instance with all reconciliation metrics registered.
func New() *Metrics {
	return &Metrics{
		MergeOutcome: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "lottoledger_reconcile_merge_outcomes_total",
			Help: "Total merge outcomes by decision and game",
		}, []string{"decision", "game"}),

		DrawStatus: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "lottoledger_reconcile_draw_status_total",
			Help: "Canonical draw resolution status after each merge",
		}, []string{"status", "game"}),

		ReconcileLatency: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "lottoledger_reconcile_duration_seconds",
			Help:    "Duration of a full reconcile including store round-trips",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		}),

		InvariantViolations: promauto.NewCounter(prometheus.CounterOpts{
			Name: "lottoledger_reconcile_invariant_violations_total",
			Help: "Internal-consistency faults detected during reconciliation",
		}),
	}
}

// IncrementOutcome records a merge decision.
func (m *Metrics) IncrementOutcome(decision, game string) {
	if m != nil {
		m.MergeOutcome.WithLabelValues(decision, game).Inc()
	}
}

// IncrementStatus records the post-merge draw status.
func (m *Metrics) IncrementStatus(status, game string) {
	if m != nil {
		m.DrawStatus.WithLabelValues(status, game).Inc()
	}
}

// ObserveReconcileLatency records the duration of one reconcile call.
func (m *Metrics) ObserveReconcileLatency(d time.Duration) {
	if m != nil {
		m.ReconcileLatency.Observe(d.Seconds())
	}
}

// IncrementInvariantViolation records an internal-consistency fault.
func (m *Metrics) IncrementInvariantViolation() {
	if m != nil {
		m.InvariantViolations.Inc()
	}
}
