package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	kafkago "github.com/segmentio/kafka-go"

	"github.com/couchcryptid/skcc-skimmer-feed/internal/config"
	"github.com/couchcryptid/skcc-skimmer-feed/internal/domain"
	"github.com/couchcryptid/skcc-skimmer-feed/internal/observability"
)

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafkago.Message) error
	Close() error
}

// Writer publishes applied spots to a Kafka topic.
// It implements pipeline.SpotLoader.
type Writer struct {
	writer  messageWriter
	logger  *slog.Logger
	metrics *observability.Metrics
}

// NewWriter creates an asynchronous Kafka producer for the configured spot
// topic. LoadBatch returns as soon as the messages are queued, so a slow or
// unreachable broker never holds up the dispatcher; delivery results are
// reported through metrics and the log.
func NewWriter(cfg *config.Config, logger *slog.Logger, metrics *observability.Metrics) *Writer {
	w := &Writer{logger: logger, metrics: metrics}
	w.writer = &kafkago.Writer{
		Addr:         kafkago.TCP(cfg.KafkaBrokers...),
		Topic:        cfg.KafkaSpotTopic,
		Balancer:     &kafkago.Hash{},
		RequiredAcks: kafkago.RequireOne,
		BatchTimeout: 50 * time.Millisecond,
		Async:        true,
		Completion:   w.completed,
	}
	return w
}

// LoadBatch serializes and publishes the spots applied in one dispatcher tick.
func (w *Writer) LoadBatch(ctx context.Context, spots []domain.Spot) error {
	if len(spots) == 0 {
		return nil
	}
	msgs := make([]kafkago.Message, len(spots))
	for i := range spots {
		msg, err := serializeToMessage(spots[i])
		if err != nil {
			return err
		}
		msgs[i] = msg
	}
	if err := w.writer.WriteMessages(ctx, msgs...); err != nil {
		w.metrics.PublishErrors.Add(float64(len(msgs)))
		return fmt.Errorf("publish spots: %w", err)
	}
	return nil
}

func (w *Writer) completed(msgs []kafkago.Message, err error) {
	if err != nil {
		w.metrics.PublishErrors.Add(float64(len(msgs)))
		w.logger.Warn("spot delivery failed", "error", err, "count", len(msgs))
		return
	}
	w.metrics.SpotsPublished.Add(float64(len(msgs)))
}

// Close flushes pending messages and closes the producer.
func (w *Writer) Close() error {
	return w.writer.Close()
}

// serializeToMessage marshals a Spot into a Kafka message keyed by callsign,
// so every report for one station lands on the same partition.
func serializeToMessage(spot domain.Spot) (kafkago.Message, error) {
	data, err := json.Marshal(spot)
	if err != nil {
		return kafkago.Message{}, fmt.Errorf("serialize spot: %w", err)
	}
	return kafkago.Message{
		Key:   []byte(spot.Call),
		Value: data,
		Headers: []kafkago.Header{
			{Key: "source", Value: []byte(spot.Source.String())},
			{Key: "received_at", Value: []byte(spot.ReceivedAt.Format(time.RFC3339))},
		},
	}, nil
}
