package kafka

import (
	"context"
	"time"

	"github.com/labops-platform/routine-service/pkg/labevents"
	"github.com/labops-platform/routine-service/pkg/logging"
	"github.com/labops-platform/routine-service/pkg/metrics"
)

// InstrumentedProducer wraps Producer with metrics and logging
type InstrumentedProducer struct {
	producer *Producer
	metrics  *metrics.Metrics
	logger   *logging.Logger
}

// NewInstrumentedProducer creates a producer that records publish metrics
func NewInstrumentedProducer(producer *Producer, m *metrics.Metrics, logger *logging.Logger) *InstrumentedProducer {
	return &InstrumentedProducer{
		producer: producer,
		metrics:  m,
		logger:   logger,
	}
}

// PublishEvent publishes a CloudEvent and records the outcome
func (p *InstrumentedProducer) PublishEvent(ctx context.Context, topic string, event *labevents.LabCloudEvent) error {
	start := time.Now()
	err := p.producer.PublishEvent(ctx, topic, event)
	duration := time.Since(start)

	success := err == nil
	if p.metrics != nil {
		p.metrics.RecordKafkaPublish(topic, event.Type, success, duration)
	}
	if p.logger != nil {
		p.logger.KafkaPublish(ctx, topic, event.Type, success, duration)
	}

	return err
}

// PublishBatch publishes multiple events and records the outcome per batch
func (p *InstrumentedProducer) PublishBatch(ctx context.Context, topic string, events []*labevents.LabCloudEvent) error {
	start := time.Now()
	err := p.producer.PublishBatch(ctx, topic, events)
	duration := time.Since(start)

	success := err == nil
	for _, event := range events {
		if p.metrics != nil {
			p.metrics.RecordKafkaPublish(topic, event.Type, success, duration)
		}
	}
	if p.logger != nil {
		p.logger.KafkaPublish(ctx, topic, "batch", success, duration)
	}

	return err
}

// Close closes the underlying producer
func (p *InstrumentedProducer) Close() error {
	return p.producer.Close()
}
