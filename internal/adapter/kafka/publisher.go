// Package kafka publishes aggregation results to the downstream
// notification/CRM topic.
package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	kafkago "github.com/segmentio/kafka-go"
	"github.com/stormsignal/storm-report-service/internal/domain"
)

// ResultEvent is the serialized outcome of one aggregation query.
type ResultEvent struct {
	QueryDate   time.Time            `json:"query_date"`
	Lat         float64              `json:"lat"`
	Lon         float64              `json:"lon"`
	Reports     []domain.StormReport `json:"reports"`
	GeneratedAt time.Time            `json:"generated_at"`
}

// Publisher produces result events to a Kafka topic.
type Publisher struct {
	writer *kafkago.Writer
	logger *slog.Logger
}

// NewPublisher creates a Kafka producer for the given sink topic.
func NewPublisher(brokers []string, topic string, logger *slog.Logger) *Publisher {
	w := &kafkago.Writer{
		Addr:         kafkago.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafkago.LeastBytes{},
		RequiredAcks: kafkago.RequireAll,
	}
	return &Publisher{writer: w, logger: logger}
}

// PublishResult serializes and publishes one aggregation result.
func (p *Publisher) PublishResult(ctx context.Context, event ResultEvent) error {
	msg, err := serializeToMessage(event)
	if err != nil {
		return err
	}
	return p.writer.WriteMessages(ctx, msg)
}

func (p *Publisher) Close() error {
	return p.writer.Close()
}

// serializeToMessage marshals a ResultEvent into a Kafka message keyed by the
// query, so repeated lookups for the same lead land on the same partition.
func serializeToMessage(event ResultEvent) (kafkago.Message, error) {
	data, err := json.Marshal(event)
	if err != nil {
		return kafkago.Message{}, fmt.Errorf("serialize result event: %w", err)
	}
	key := fmt.Sprintf("%s|%.4f|%.4f", event.QueryDate.UTC().Format(time.DateOnly), event.Lat, event.Lon)
	return kafkago.Message{
		Key:   []byte(key),
		Value: data,
		Headers: []kafkago.Header{
			{Key: "report_count", Value: []byte(strconv.Itoa(len(event.Reports)))},
			{Key: "generated_at", Value: []byte(event.GeneratedAt.Format(time.RFC3339))},
		},
	}, nil
}
