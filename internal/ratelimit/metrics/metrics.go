package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Scopes of the verification rate limits.
const (
	ScopeIP      = "ip"
	ScopeSession = "session"
)

type Metrics struct {
	RateLimitChecks   *prometheus.CounterVec
	RateLimitRejected *prometheus.CounterVec
}

func New() *Metrics {
	return NewWithRegistry(prometheus.DefaultRegisterer)
}

func NewWithRegistry(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		RateLimitChecks: f.NewCounterVec(prometheus.CounterOpts{
			Name: "docverify_ratelimit_checks_total",
			Help: "Verification rate limit checks by scope",
		}, []string{"scope"}),
		RateLimitRejected: f.NewCounterVec(prometheus.CounterOpts{
			Name: "docverify_ratelimit_rejected_total",
			Help: "Verification attempts rejected by rate limits, by scope",
		}, []string{"scope"}),
	}
}

func (m *Metrics) IncrementChecks(scope string) {
	if m != nil {
		m.RateLimitChecks.WithLabelValues(scope).Inc()
	}
}

func (m *Metrics) IncrementRejected(scope string) {
	if m != nil {
		m.RateLimitRejected.WithLabelValues(scope).Inc()
	}
}
