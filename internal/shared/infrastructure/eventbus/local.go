package eventbus

import (
	"context"
	"log/slog"
)

// LocalBus delivers published envelopes synchronously to in-process
// consumers. It stands in for RabbitMQ when running against SQLite.
type LocalBus struct {
	registry *ConsumerRegistry
	logger   *slog.Logger
}

// NewLocalBus creates a LocalBus dispatching through registry.
func NewLocalBus(registry *ConsumerRegistry, logger *slog.Logger) *LocalBus {
	if logger == nil {
		logger = slog.Default()
	}
	return &LocalBus{registry: registry, logger: logger}
}

// Publish decodes the envelope and dispatches it. Consumer failures are
// logged and swallowed so they never fail the relay.
func (b *LocalBus) Publish(ctx context.Context, routingKey string, body []byte) error {
	event, err := DecodeEnvelope(body, routingKey)
	if err != nil {
		b.logger.Error("dropping undecodable event", "routing_key", routingKey, "error", err)
		return nil
	}

	if err := b.registry.Dispatch(ctx, event); err != nil {
		b.logger.Warn("local dispatch failed", "routing_key", routingKey, "event_id", event.EventID, "error", err)
	}
	return nil
}

// Close is a no-op.
func (b *LocalBus) Close() error { return nil }

// NoopPublisher discards everything it is given.
type NoopPublisher struct {
	logger *slog.Logger
}

// NewNoopPublisher creates a publisher that does nothing.
func NewNoopPublisher(logger *slog.Logger) *NoopPublisher {
	if logger == nil {
		logger = slog.Default()
	}
	return &NoopPublisher{logger: logger}
}

func (p *NoopPublisher) Publish(_ context.Context, routingKey string, body []byte) error {
	p.logger.Debug("noop publish", "routing_key", routingKey, "size", len(body))
	return nil
}

// Close is a no-op.
func (p *NoopPublisher) Close() error { return nil }
