// Package worker registers in-process consumers of domain events.
package worker

import (
	"context"

	"go.uber.org/zap"

	"github.com/deskops/support-desk/internal/events"
	"github.com/deskops/support-desk/internal/observability"
)

// StartEventWorker subscribes the metrics counter and the debug log to every
// domain event.
func StartEventWorker(dispatcher events.Dispatcher, metrics *observability.Metrics, logger *zap.Logger) {
	if dispatcher == nil {
		return
	}
	events.SubscribeAll(dispatcher, countEvent(metrics))
	if logger != nil {
		events.SubscribeAll(dispatcher, logEvent(logger))
	}
}

func countEvent(metrics *observability.Metrics) events.EventHandler {
	return func(_ context.Context, event events.Event) error {
		metrics.RecordEvent(string(event.Type))
		return nil
	}
}

func logEvent(logger *zap.Logger) events.EventHandler {
	return func(_ context.Context, event events.Event) error {
		fields := []zap.Field{
			zap.String("event_id", event.ID),
			zap.String("event_type", string(event.Type)),
			zap.Int64("ticket_id", event.TicketID),
			zap.Any("payload", event.Payload),
		}
		if event.ActorUserID != nil {
			fields = append(fields, zap.Int64("actor_user_id", *event.ActorUserID))
		}
		logger.Debug("domain event", fields...)
		return nil
	}
}
