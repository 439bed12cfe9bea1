package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/NetPranav/Vyom/internal/domain/event"
)

// EventStore implements eventstore.Store using PostgreSQL (append-only).
type EventStore struct {
	pool *pgxpool.Pool
}

// NewEventStore creates a new EventStore backed by the given connection pool.
func NewEventStore(pool *pgxpool.Pool) *EventStore {
	return &EventStore{pool: pool}
}

// Append inserts a new event into the task_events table.
func (s *EventStore) Append(ctx context.Context, ev *event.TaskEvent) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO task_events (task_id, actor_id, event_type, old_status, new_status, payload)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		ev.TaskID, ev.ActorID, string(ev.Type), ev.OldStatus, ev.NewStatus, ev.Payload)
	if err != nil {
		return fmt.Errorf("append event: %w", err)
	}
	return nil
}

// LoadByTask returns all events for the given task in creation order.
func (s *EventStore) LoadByTask(ctx context.Context, taskID string) ([]event.TaskEvent, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, task_id, actor_id, event_type, old_status, new_status, payload, created_at
		 FROM task_events WHERE task_id = $1 ORDER BY created_at, id`, taskID)
	if err != nil {
		return nil, fmt.Errorf("load events for task %s: %w", taskID, err)
	}
	defer rows.Close()

	var events []event.TaskEvent
	for rows.Next() {
		var ev event.TaskEvent
		if err := rows.Scan(&ev.ID, &ev.TaskID, &ev.ActorID, &ev.Type, &ev.OldStatus, &ev.NewStatus, &ev.Payload, &ev.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan event: %w", err)
		}
		events = append(events, ev)
	}
	return orEmpty(events), rows.Err()
}
