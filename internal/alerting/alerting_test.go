package alerting

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"docverify/pkg/requestcontext"
)

type recordingSink struct {
	mu     sync.Mutex
	alerts []Alert
	err    error
}

func (s *recordingSink) Deliver(_ context.Context, alert Alert) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.alerts = append(s.alerts, alert)
	return s.err
}

func (s *recordingSink) received() []Alert {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Alert(nil), s.alerts...)
}

func counterValue(t *testing.T, c prometheus.Counter) float64 {
	t.Helper()
	var m dto.Metric
	require.NoError(t, c.Write(&m))
	return m.GetCounter().GetValue()
}

func TestNewDispatcherRequiresSink(t *testing.T) {
	_, err := NewDispatcher(nil)
	assert.Error(t, err)
}

func TestPublishDropsWhenFull(t *testing.T) {
	metrics := NewMetricsWithRegistry(prometheus.NewRegistry())
	d, err := NewDispatcher([]Sink{&recordingSink{}}, WithBufferSize(2), WithMetrics(metrics))
	require.NoError(t, err)

	ctx := context.Background()
	assert.True(t, d.Publish(ctx, Alert{Kind: KindFraudDetected}))
	assert.True(t, d.Publish(ctx, Alert{Kind: KindFraudDetected}))
	assert.False(t, d.Publish(ctx, Alert{Kind: KindRateLimitExceeded}), "third alert overflows a queue of two")

	assert.Equal(t, int64(1), d.Dropped())
	assert.Equal(t, 1.0, counterValue(t, metrics.Dropped.WithLabelValues(string(KindRateLimitExceeded))))
	assert.Equal(t, 2.0, counterValue(t, metrics.Published.WithLabelValues(string(KindFraudDetected))))
}

func TestPublishStampsTimeAndRequestID(t *testing.T) {
	sink := &recordingSink{}
	d, err := NewDispatcher([]Sink{sink})
	require.NoError(t, err)

	at := time.Date(2026, 3, 3, 3, 3, 3, 0, time.UTC)
	ctx := requestcontext.WithRequestID(requestcontext.WithTime(context.Background(), at), "req-1")
	require.True(t, d.Publish(ctx, Alert{Kind: KindSuspiciousActivity, Subject: "198.51.100.0"}))

	runCtx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, d.Run(runCtx), context.Canceled)

	got := sink.received()
	require.Len(t, got, 1, "queued alerts are flushed on shutdown")
	assert.Equal(t, at, got[0].At)
	assert.Equal(t, "req-1", got[0].RequestID)
}

func TestRunDeliversToEverySink(t *testing.T) {
	first, second := &recordingSink{}, &recordingSink{err: errors.New("broker down")}
	metrics := NewMetricsWithRegistry(prometheus.NewRegistry())
	d, err := NewDispatcher([]Sink{first, second}, WithMetrics(metrics))
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- d.Run(ctx) }()

	for range 3 {
		d.Publish(context.Background(), Alert{Kind: KindFraudDetected, Severity: SeverityCritical})
	}

	require.Eventually(t, func() bool {
		return len(first.received()) == 3 && len(second.received()) == 3
	}, time.Second, 5*time.Millisecond)

	cancel()
	assert.ErrorIs(t, <-done, context.Canceled)
	assert.Equal(t, 3.0, counterValue(t, metrics.SinkFailures), "sink errors are counted, not fatal")
}

func TestLogSink(t *testing.T) {
	var buf bytes.Buffer
	sink := NewLogSink(slog.New(slog.NewJSONHandler(&buf, nil)))

	err := sink.Deliver(context.Background(), Alert{
		Kind:     KindFraudDetected,
		Severity: SeverityCritical,
		Subject:  "ABCDEF123456",
		Message:  "critical fraud risk",
		Details:  map[string]any{"risk_score": 95},
	})
	require.NoError(t, err)

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "ERROR", line["level"])
	assert.Equal(t, "critical fraud risk", line["msg"])
	assert.Equal(t, "fraud_detected", line["kind"])
	assert.Equal(t, "security_alert", line["log_type"])
}

type fakeProducer struct {
	key, value []byte
	headers    map[string]string
	err        error
}

func (p *fakeProducer) Produce(_ context.Context, key, value []byte, headers map[string]string) error {
	p.key, p.value, p.headers = key, value, headers
	return p.err
}

func TestKafkaSink(t *testing.T) {
	t.Run("publishes json keyed by subject", func(t *testing.T) {
		producer := &fakeProducer{}
		sink := NewKafkaSink(producer)

		alert := Alert{Kind: KindSuspiciousActivity, Severity: SeverityWarning, Subject: "203.0.113.0", Message: "burst"}
		require.NoError(t, sink.Deliver(context.Background(), alert))

		assert.Equal(t, "203.0.113.0", string(producer.key))
		assert.Equal(t, "suspicious_activity", producer.headers["alert_kind"])
		assert.Equal(t, "warning", producer.headers["alert_severity"])

		var decoded Alert
		require.NoError(t, json.Unmarshal(producer.value, &decoded))
		assert.Equal(t, alert.Message, decoded.Message)
	})

	t.Run("wraps producer errors", func(t *testing.T) {
		sink := NewKafkaSink(&fakeProducer{err: errors.New("no leader")})
		err := sink.Deliver(context.Background(), Alert{Kind: KindFraudDetected})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "no leader")
	})
}
