package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func counterValue(t *testing.T, c prometheus.Counter) float64 {
	t.Helper()
	var m dto.Metric
	require.NoError(t, c.Write(&m))
	return m.GetCounter().GetValue()
}

func TestNilMetricsAreSafe(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.IncrementOutcome("manual_entry", "")
		m.ObserveVerifyLatency("manual_entry", time.Millisecond)
		m.ObserveRisk(10, "low")
		m.ObserveRegistryLatency("population", "success", time.Millisecond)
		m.IncrementHistoryWriteFailures()
		m.AddSessionsExpired(3)
		m.IncrementRegistered("passport")
		m.IncrementRevoked()
	})
}

func TestOutcomeLabels(t *testing.T) {
	m := NewWithRegistry(prometheus.NewRegistry())
	m.IncrementOutcome("qr_scan", "")
	m.IncrementOutcome("qr_scan", "INVALID_QR_CODE")
	m.IncrementOutcome("qr_scan", "INVALID_QR_CODE")

	assert.Equal(t, 1.0, counterValue(t, m.Outcomes.WithLabelValues("qr_scan", "valid")))
	assert.Equal(t, 2.0, counterValue(t, m.Outcomes.WithLabelValues("qr_scan", "INVALID_QR_CODE")))
}
