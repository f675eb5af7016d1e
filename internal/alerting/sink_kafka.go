package alerting

import (
	"context"
	"encoding/json"
	"fmt"
)

// Producer is the slice of the Kafka producer the sink needs.
type Producer interface {
	Produce(ctx context.Context, key, value []byte, headers map[string]string) error
}

// KafkaSink publishes alerts as JSON records keyed by subject.
type KafkaSink struct {
	producer Producer
}

func NewKafkaSink(producer Producer) *KafkaSink {
	return &KafkaSink{producer: producer}
}

func (s *KafkaSink) Deliver(ctx context.Context, alert Alert) error {
	payload, err := json.Marshal(alert)
	if err != nil {
		return fmt.Errorf("marshal alert: %w", err)
	}
	headers := map[string]string{
		"alert_kind":     string(alert.Kind),
		"alert_severity": string(alert.Severity),
	}
	if err := s.producer.Produce(ctx, []byte(alert.Subject), payload, headers); err != nil {
		return fmt.Errorf("produce alert: %w", err)
	}
	return nil
}
