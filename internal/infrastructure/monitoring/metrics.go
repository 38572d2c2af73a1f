package monitoring

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/identra/identra/internal/domain/service"
)

// Metrics is the prometheus-backed implementation of service.Metrics.
type Metrics struct {
	tokensIssued   *prometheus.CounterVec
	codesIssued    prometheus.Counter
	codesRedeemed  *prometheus.CounterVec
	purgeDeleted   prometheus.Counter
	purgeFailures  prometheus.Counter
	opDuration     *prometheus.HistogramVec
	slowOperations *prometheus.CounterVec
}

var _ service.Metrics = (*Metrics)(nil)

// NewMetrics registers the Identra metric set on the given registerer.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		tokensIssued: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "identra",
			Name:      "tokens_issued_total",
			Help:      "Tokens issued, by token type.",
		}, []string{"type"}),
		codesIssued: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "identra",
			Name:      "authorization_codes_issued_total",
			Help:      "Authorization codes issued.",
		}),
		codesRedeemed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "identra",
			Name:      "authorization_codes_redeemed_total",
			Help:      "Authorization code redemption attempts, by outcome.",
		}, []string{"outcome"}),
		purgeDeleted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "identra",
			Name:      "purge_deleted_codes_total",
			Help:      "Expired authorization codes removed by the purge scheduler.",
		}),
		purgeFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "identra",
			Name:      "purge_failures_total",
			Help:      "Purge sweeps that failed and will be retried next tick.",
		}),
		opDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "identra",
			Name:      "operation_duration_seconds",
			Help:      "Duration of pipeline-wrapped operations.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"operation"}),
		slowOperations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "identra",
			Name:      "slow_operations_total",
			Help:      "Operations exceeding the slow-operation threshold.",
		}, []string{"operation"}),
	}

	reg.MustRegister(
		m.tokensIssued, m.codesIssued, m.codesRedeemed,
		m.purgeDeleted, m.purgeFailures, m.opDuration, m.slowOperations,
	)
	return m
}

func (m *Metrics) TokenIssued(tokenType string) {
	m.tokensIssued.WithLabelValues(tokenType).Inc()
}

func (m *Metrics) CodeIssued() {
	m.codesIssued.Inc()
}

func (m *Metrics) CodeRedeemed(outcome string) {
	m.codesRedeemed.WithLabelValues(outcome).Inc()
}

func (m *Metrics) PurgeSweep(deleted int64, failed bool) {
	if failed {
		m.purgeFailures.Inc()
		return
	}
	m.purgeDeleted.Add(float64(deleted))
}

func (m *Metrics) OperationObserved(kind string, seconds float64) {
	m.opDuration.WithLabelValues(kind).Observe(seconds)
}

func (m *Metrics) SlowOperation(kind string) {
	m.slowOperations.WithLabelValues(kind).Inc()
}
