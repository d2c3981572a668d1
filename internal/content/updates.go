package content

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/nimbusdocs/docsearch/pkg/config"
	"github.com/nimbusdocs/docsearch/pkg/kafka"
)

// UpdateEvent is the payload the CMS publishes when documentation content
// changes. EntryIDs is informational only: there is no incremental update
// path, every change triggers a wholesale rebuild from the full entry list.
type UpdateEvent struct {
	EntryIDs  []string  `json:"entry_ids,omitempty"`
	Reason    string    `json:"reason,omitempty"`
	UpdatedAt time.Time `json:"updated_at"`
}

// UpdateListener consumes content-update events and invokes the rebuild
// callback for each one.
type UpdateListener struct {
	consumer *kafka.Consumer
	logger   *slog.Logger
}

// NewUpdateListener creates a listener on the content-updates topic that
// calls rebuild for every received event.
func NewUpdateListener(cfg config.KafkaConfig, topic string, rebuild func(ctx context.Context) error) *UpdateListener {
	l := &UpdateListener{
		logger: slog.Default().With("component", "content-updates"),
	}
	handler := func(ctx context.Context, key []byte, value []byte) error {
		event, err := kafka.DecodeJSON[UpdateEvent](value)
		if err != nil {
			// The event body is advisory; a malformed one still means
			// content changed somewhere.
			l.logger.Warn("malformed content-update event", "error", err)
		}
		l.logger.Info("content update received",
			"reason", event.Reason,
			"entries", len(event.EntryIDs),
		)
		if err := rebuild(ctx); err != nil {
			return fmt.Errorf("rebuilding index after content update: %w", err)
		}
		return nil
	}
	l.consumer = kafka.NewConsumer(cfg, topic, handler)
	return l
}

// Start enters the consume loop until ctx is cancelled.
func (l *UpdateListener) Start(ctx context.Context) error {
	return l.consumer.Start(ctx)
}

// Close closes the underlying consumer.
func (l *UpdateListener) Close() error {
	return l.consumer.Close()
}
