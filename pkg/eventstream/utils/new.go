// Package eventstreamutils selects the search event publisher.
package eventstreamutils

import (
	"fmt"
	"log/slog"

	"github.com/papercomputeco/novostroy/pkg/eventstream"
	"github.com/papercomputeco/novostroy/pkg/eventstream/kafka"
	"github.com/papercomputeco/novostroy/pkg/eventstream/nop"
)

type NewPublisherOpts struct {
	KafkaBrokers []string
	KafkaTopic   string
	Logger       *slog.Logger
}

// NewPublisher returns a Kafka publisher when brokers are configured and a
// no-op publisher otherwise.
func NewPublisher(o *NewPublisherOpts) (eventstream.Publisher, error) {
	logger := o.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	if len(o.KafkaBrokers) == 0 {
		logger.Debug("search events disabled")
		return nop.NewPublisher(), nil
	}

	p, err := kafka.NewPublisher(kafka.Config{
		Brokers: o.KafkaBrokers,
		Topic:   o.KafkaTopic,
		Logger:  logger,
	})
	if err != nil {
		return nil, fmt.Errorf("creating kafka publisher: %w", err)
	}

	logger.Info("publishing search events to kafka",
		"brokers", o.KafkaBrokers,
		"topic", o.KafkaTopic,
	)
	return p, nil
}
