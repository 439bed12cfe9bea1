// Package eventstore defines the append-only lifecycle event store port.
package eventstore

import (
	"context"

	"github.com/NetPranav/Vyom/internal/domain/event"
)

// Store records lifecycle events and replays them per task.
type Store interface {
	// Append inserts a new event. Events are never updated or deleted.
	Append(ctx context.Context, ev *event.TaskEvent) error

	// LoadByTask returns all events for the given task in creation order.
	LoadByTask(ctx context.Context, taskID string) ([]event.TaskEvent, error)
}
