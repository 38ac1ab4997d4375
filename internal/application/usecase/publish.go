package usecase

import (
	"context"
	"log/slog"

	"github.com/dillanci/settlement/internal/domain/event"
	"github.com/dillanci/settlement/internal/domain/port"
)

// publishCommitted publishes events for a change that is already persisted.
// A failure is logged, never returned: the write stands.
func publishCommitted(ctx context.Context, publisher port.EventPublisher, events ...event.DomainEvent) {
	if len(events) == 0 {
		return
	}
	if err := publisher.Publish(ctx, events...); err != nil {
		types := make([]string, len(events))
		for i, e := range events {
			types[i] = e.EventType()
		}
		slog.ErrorContext(ctx, "failed to publish committed events",
			"aggregate_id", events[0].AggregateID(),
			"event_types", types,
			"error", err,
		)
	}
}
