package otel

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "vyom"

// StartTransitionSpan starts a span for a task lifecycle transition.
func StartTransitionSpan(ctx context.Context, op, taskID, actorID string) (context.Context, trace.Span) {
	return otel.Tracer(tracerName).Start(ctx, "transition."+op,
		trace.WithAttributes(
			attribute.String("task.id", taskID),
			attribute.String("actor.id", actorID),
		),
	)
}

// StartOfferSpan starts a span for offer placement.
func StartOfferSpan(ctx context.Context, taskID, bidderID string) (context.Context, trace.Span) {
	return otel.Tracer(tracerName).Start(ctx, "offer.place",
		trace.WithAttributes(
			attribute.String("task.id", taskID),
			attribute.String("bidder.id", bidderID),
		),
	)
}
