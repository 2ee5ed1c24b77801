// Package messaging holds event publishers that need no external broker.
package messaging

import (
	"context"

	"crux-backend/application/ports"
	"crux-backend/domain/events"

	"go.uber.org/zap"
)

// LogPublisher writes events to the log. It is used when no event bus is
// configured.
type LogPublisher struct {
	logger *zap.Logger
}

// NewLogPublisher creates a publisher that logs at Info
func NewLogPublisher(logger *zap.Logger) *LogPublisher {
	return &LogPublisher{logger: logger}
}

func (p *LogPublisher) Publish(ctx context.Context, event events.DomainEvent) error {
	return p.PublishBatch(ctx, []events.DomainEvent{event})
}

func (p *LogPublisher) PublishBatch(_ context.Context, domainEvents []events.DomainEvent) error {
	for _, event := range domainEvents {
		p.logger.Info("Domain event",
			zap.String("eventType", event.GetEventType()),
			zap.String("aggregateID", event.GetAggregateID()),
			zap.Time("timestamp", event.GetTimestamp()),
			zap.Any("event", event),
		)
	}
	return nil
}

var _ ports.EventPublisher = (*LogPublisher)(nil)
