package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	kafkago "github.com/segmentio/kafka-go"

	"github.com/couchcryptid/precip-maps/internal/config"
	"github.com/couchcryptid/precip-maps/internal/domain"
)

// Writer announces finished maps on a Kafka topic.
// It implements pipeline.ProductPublisher.
type Writer struct {
	writer *kafkago.Writer
	logger *slog.Logger
}

// NewWriter creates a Kafka producer for the configured product topic.
func NewWriter(cfg *config.Config, logger *slog.Logger) *Writer {
	w := &kafkago.Writer{
		Addr:                   kafkago.TCP(cfg.KafkaBrokers...),
		Topic:                  cfg.KafkaTopic,
		Balancer:               &kafkago.Hash{},
		RequiredAcks:           kafkago.RequireAll,
		AllowAutoTopicCreation: true,
	}
	return &Writer{writer: w, logger: logger}
}

// Publish writes one product message. Messages for the same map share a key,
// so a rerun for the same month lands on the same partition.
func (w *Writer) Publish(ctx context.Context, product domain.MapProduct) error {
	msg, err := serializeToMessage(product)
	if err != nil {
		return err
	}
	if err := w.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("publish %s: %w", msg.Key, err)
	}
	w.logger.Debug("map product published", "key", string(msg.Key), "topic", w.writer.Topic)
	return nil
}

func (w *Writer) Close() error {
	return w.writer.Close()
}

// messageKey identifies a map independently of the run that produced it.
func messageKey(p domain.MapProduct) string {
	return p.KindTag + "-" + strconv.Itoa(p.Year) + "-" + p.Month
}

// serializeToMessage marshals a MapProduct into a Kafka message.
func serializeToMessage(product domain.MapProduct) (kafkago.Message, error) {
	data, err := json.Marshal(product)
	if err != nil {
		return kafkago.Message{}, fmt.Errorf("serialize map product: %w", err)
	}
	return kafkago.Message{
		Key:   []byte(messageKey(product)),
		Value: data,
		Headers: []kafkago.Header{
			{Key: "metric_kind", Value: []byte(product.KindTag)},
			{Key: "rendered_at", Value: []byte(product.RenderedAt.Format(time.RFC3339))},
		},
	}, nil
}
