package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for the verification module.
type Metrics struct {
	// Verdicts by tier label (or "no_win") and game.
	Verdicts *prometheus.CounterVec

	// Verifications answered from a partial or conflicted draw.
	DegradedVerdicts prometheus.Counter

	// Overall verification latency.
	VerifyLatency prometheus.Histogram
}

// New creates a Metrics instance with all verification metrics registered.
func New() *Metrics {
	return &Metrics{
		Verdicts: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "lottoledger_verify_verdicts_total",
			Help: "Total verification verdicts by tier and game",
		}, []string{"tier", "game"}),

		DegradedVerdicts: promauto.NewCounter(prometheus.CounterOpts{
			Name: "lottoledger_verify_degraded_total",
			Help: "Verdicts produced against a partial or conflicted canonical draw",
		}),

		VerifyLatency: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "lottoledger_verify_duration_seconds",
			Help:    "Duration of a full ticket verification",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5},
		}),
	}
}

// IncrementVerdict records one panel verdict.
func (m *Metrics) IncrementVerdict(tier, game string) {
	if m != nil {
		m.Verdicts.WithLabelValues(tier, game).Inc()
	}
}

// IncrementDegraded records a verdict built on degraded draw data.
func (m *Metrics) IncrementDegraded() {
	if m != nil {
		m.DegradedVerdicts.Inc()
	}
}

// ObserveVerifyLatency records the duration of one verification.
func (m *Metrics) ObserveVerifyLatency(d time.Duration) {
	if m != nil {
		m.VerifyLatency.Observe(d.Seconds())
	}
}
