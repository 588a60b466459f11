package service

import (
	"context"

	"example.com/miniter/internal/broker"
	"example.com/miniter/internal/logger"
	"example.com/miniter/internal/metrics"
)

var logg = logger.New()

// publish hands an activity event to the broker. The write it describes has
// already committed, so a broker failure is logged and counted, never returned.
func publish(ctx context.Context, pub broker.Publisher, eventType string, userID, targetID int64, tweet string) {
	event := broker.NewEvent(eventType, userID, targetID, tweet)
	if err := pub.Publish(ctx, event); err != nil {
		metrics.EventsPublished.WithLabelValues(eventType, "error").Inc()
		logg.Error("service/events", "Failed to publish "+eventType+" event "+event.ID, err)
		return
	}
	metrics.EventsPublished.WithLabelValues(eventType, "ok").Inc()
}
