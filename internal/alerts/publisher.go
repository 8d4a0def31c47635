// Package alerts publishes fire alert events to Kafka for downstream
// notification consumers.
package alerts

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/segmentio/kafka-go"

	"github.com/alertafuego/wildfire-service/internal/domain"
	"github.com/alertafuego/wildfire-service/internal/observability"
)

// Event is one alert on the wire.
type Event struct {
	Kind      string  `json:"kind"` // "hotspot" or "report"
	Latitude  float64 `json:"latitud"`
	Longitude float64 `json:"longitud"`
	Message   string  `json:"mensaje"`
	EmittedAt string  `json:"emitted_at"` // ISO-8601 UTC
}

// messageWriter is the slice of kafka.Writer the publisher uses.
type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Publisher writes alert events to a topic. A nil Publisher is valid and
// drops events, so callers need no feature-flag checks.
type Publisher struct {
	writer  messageWriter
	metrics *observability.Metrics
	logger  *slog.Logger
}

// NewPublisher builds a Kafka-backed publisher.
func NewPublisher(brokers []string, topic string, metrics *observability.Metrics, logger *slog.Logger) *Publisher {
	writer := &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.LeastBytes{},
		RequiredAcks: kafka.RequireAll,
	}
	return &Publisher{writer: writer, metrics: metrics, logger: logger}
}

// Publish sends one event, keyed by kind so consumers see per-kind ordering.
func (p *Publisher) Publish(ctx context.Context, event Event) error {
	if p == nil {
		return nil
	}
	if event.EmittedAt == "" {
		event.EmittedAt = domain.Now().UTC().Format("2006-01-02T15:04:05Z")
	}
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("encode alert event: %w", err)
	}
	err = p.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(event.Kind),
		Value: payload,
	})
	if err != nil {
		return fmt.Errorf("publish alert event: %w", err)
	}
	p.metrics.AlertsPublished.Inc()
	p.logger.Debug("alert published", "kind", event.Kind)
	return nil
}

// Close flushes and closes the underlying writer.
func (p *Publisher) Close() error {
	if p == nil {
		return nil
	}
	return p.writer.Close()
}
