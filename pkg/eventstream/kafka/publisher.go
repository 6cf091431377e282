// Package kafka publishes search events to a Kafka topic.
package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	kafkago "github.com/segmentio/kafka-go"

	"github.com/papercomputeco/novostroy/pkg/eventstream"
)

// DefaultTopic is used when Config.Topic is empty.
const DefaultTopic = "novostroy.searches"

// HeaderEventType carries the event type on every message.
const HeaderEventType = "event_type"

// ErrNoBrokers is returned by NewPublisher when no broker address is configured.
var ErrNoBrokers = errors.New("kafka publisher requires at least one broker")

// Config configures a Publisher.
type Config struct {
	Brokers      []string
	Topic        string
	BatchTimeout time.Duration
	Logger       *slog.Logger
}

// MessageWriter is the subset of *kafkago.Writer used by the publisher.
type MessageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafkago.Message) error
	Close() error
}

// Publisher writes SearchCompletedEvents as JSON messages keyed by event id.
type Publisher struct {
	writer MessageWriter
	topic  string
	logger *slog.Logger
}

// NewPublisher creates a Publisher backed by a kafka-go Writer.
func NewPublisher(cfg Config) (*Publisher, error) {
	brokers := make([]string, 0, len(cfg.Brokers))
	for _, b := range cfg.Brokers {
		if b = strings.TrimSpace(b); b != "" {
			brokers = append(brokers, b)
		}
	}
	if len(brokers) == 0 {
		return nil, ErrNoBrokers
	}

	topic := cfg.Topic
	if topic == "" {
		topic = DefaultTopic
	}
	batchTimeout := cfg.BatchTimeout
	if batchTimeout <= 0 {
		batchTimeout = 50 * time.Millisecond
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	w := &kafkago.Writer{
		Addr:                   kafkago.TCP(brokers...),
		Topic:                  topic,
		Balancer:               &kafkago.Hash{},
		BatchTimeout:           batchTimeout,
		RequiredAcks:           kafkago.RequireOne,
		AllowAutoTopicCreation: true,
		ErrorLogger: kafkago.LoggerFunc(func(msg string, args ...any) {
			logger.Error("kafka writer", "error", fmt.Sprintf(msg, args...))
		}),
	}

	return NewPublisherWithWriter(w, topic, logger), nil
}

// NewPublisherWithWriter wraps an existing writer.
func NewPublisherWithWriter(w MessageWriter, topic string, logger *slog.Logger) *Publisher {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Publisher{writer: w, topic: topic, logger: logger}
}

// PublishSearch encodes the event and writes it synchronously.
func (p *Publisher) PublishSearch(ctx context.Context, event *eventstream.SearchCompletedEvent) error {
	if event == nil {
		return eventstream.ErrNilSearchEvent
	}

	msg, err := Encode(event)
	if err != nil {
		return err
	}

	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("writing search event %s to %s: %w", event.EventID, p.topic, err)
	}

	p.logger.Debug("published search event",
		"event_id", event.EventID,
		"topic", p.topic,
		"complexes", len(event.Search.ComplexIDs),
	)
	return nil
}

// Close flushes pending writes and closes the writer.
func (p *Publisher) Close() error {
	return p.writer.Close()
}

// Encode builds the Kafka message for an event.
func Encode(event *eventstream.SearchCompletedEvent) (kafkago.Message, error) {
	value, err := json.Marshal(event)
	if err != nil {
		return kafkago.Message{}, fmt.Errorf("encoding search event: %w", err)
	}

	return kafkago.Message{
		Key:   []byte(event.EventID),
		Value: value,
		Headers: []kafkago.Header{
			{Key: HeaderEventType, Value: []byte(event.EventType)},
		},
	}, nil
}
