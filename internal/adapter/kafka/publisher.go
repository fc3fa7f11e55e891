package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	kafkago "github.com/segmentio/kafka-go"

	"github.com/couchcryptid/clockface/internal/config"
	"github.com/couchcryptid/clockface/internal/domain"
	"github.com/couchcryptid/clockface/internal/observability"
	"github.com/couchcryptid/clockface/internal/presentation"
)

// messageKey keeps every reading on one partition so consumers see them in order.
const messageKey = "clock"

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafkago.Message) error
	Close() error
}

// Publisher broadcasts each rendered frame's reading to a Kafka topic.
// It implements presentation.Renderer for a headless session; layout and
// chrome updates have no broadcast form and are ignored.
type Publisher struct {
	writer  messageWriter
	locale  string
	logger  *slog.Logger
	metrics *observability.Metrics
}

// NewPublisher creates an asynchronous producer for the configured topic.
// Delivery outcomes are counted in metrics as batches complete.
func NewPublisher(cfg *config.Config, locale string, logger *slog.Logger, metrics *observability.Metrics) *Publisher {
	p := &Publisher{locale: locale, logger: logger, metrics: metrics}
	p.writer = &kafkago.Writer{
		Addr:         kafkago.TCP(cfg.KafkaBrokers...),
		Topic:        cfg.KafkaTopic,
		Balancer:     &kafkago.Hash{},
		RequiredAcks: kafkago.RequireOne,
		BatchTimeout: 50 * time.Millisecond,
		Async:        true,
		Completion:   p.completed,
	}
	return p
}

func (p *Publisher) RenderFrame(frame presentation.Frame) error {
	msg, err := serializeReading(frame.Reading, p.locale)
	if err != nil {
		return err
	}
	// The writer is asynchronous: this only enqueues.
	if err := p.writer.WriteMessages(context.Background(), msg); err != nil {
		p.metrics.PublishErrors.Inc()
		p.logger.Warn("enqueue reading failed", "error", err)
	}
	return nil
}

func (p *Publisher) RenderLayout(domain.DialLayout) error { return nil }

func (p *Publisher) RenderChrome(presentation.Chrome) error { return nil }

// Close flushes pending messages and closes the producer.
func (p *Publisher) Close() error {
	return p.writer.Close()
}

func (p *Publisher) completed(msgs []kafkago.Message, err error) {
	if err != nil {
		p.metrics.PublishErrors.Add(float64(len(msgs)))
		p.logger.Warn("publish readings failed", "error", err, "count", len(msgs))
		return
	}
	p.metrics.ReadingsPublished.Add(float64(len(msgs)))
}

// serializeReading marshals a reading into a Kafka message.
func serializeReading(r domain.ClockReading, locale string) (kafkago.Message, error) {
	data, err := json.Marshal(r)
	if err != nil {
		return kafkago.Message{}, fmt.Errorf("serialize clock reading: %w", err)
	}
	return kafkago.Message{
		Key:   []byte(messageKey),
		Value: data,
		Headers: []kafkago.Header{
			{Key: "timestamp", Value: []byte(time.UnixMilli(r.TimestampMs).UTC().Format(time.RFC3339))},
			{Key: "locale", Value: []byte(locale)},
		},
	}, nil
}
