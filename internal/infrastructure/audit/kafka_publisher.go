// Package audit publishes pipeline audit events to kafka. Deployments
// without a broker fall back to the noop publisher.
package audit

import (
	"context"
	"encoding/json"

	"github.com/segmentio/kafka-go"

	"github.com/identra/identra/internal/application/pipeline"
	"github.com/identra/identra/internal/config"
	"github.com/identra/identra/pkg/logger"
)

// KafkaPublisher writes audit events to a kafka topic.
type KafkaPublisher struct {
	writer *kafka.Writer
	log    logger.Logger
}

var _ pipeline.AuditSink = (*KafkaPublisher)(nil)

// NewKafkaPublisher builds a publisher for the configured brokers and topic.
func NewKafkaPublisher(cfg config.AuditConfig, log logger.Logger) *KafkaPublisher {
	return &KafkaPublisher{
		writer: &kafka.Writer{
			Addr:     kafka.TCP(cfg.Brokers...),
			Topic:    cfg.Topic,
			Balancer: &kafka.LeastBytes{},
			// Audit must not block request handling; fire and forget.
			Async: true,
		},
		log: log.WithComponent("audit"),
	}
}

// Publish serializes and enqueues one event. With an async writer the error
// path only covers serialization.
func (p *KafkaPublisher) Publish(ctx context.Context, event pipeline.AuditEvent) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return err
	}
	return p.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(event.Operation),
		Value: payload,
	})
}

// Close flushes and closes the underlying writer.
func (p *KafkaPublisher) Close() error {
	return p.writer.Close()
}
