package ws

import (
	"context"
	"encoding/json"
	"log/slog"
)

// Event type constants for WebSocket messages.
const (
	EventTaskStatus = "task.status"
	EventOfferNew   = "offer.new"
)

// TaskStatusEvent is broadcast when a task moves through the lifecycle.
type TaskStatusEvent struct {
	TaskID     string `json:"task_id"`
	Status     string `json:"status"`
	AssigneeID string `json:"assignee_id,omitempty"`
}

// OfferEvent is broadcast when a helper places a new offer on an open task.
type OfferEvent struct {
	TaskID   string  `json:"task_id"`
	OfferID  string  `json:"offer_id"`
	BidderID string  `json:"bidder_id"`
	Price    float64 `json:"price"`
}

// BroadcastEvent is a convenience method that marshals a typed event and broadcasts it.
func (h *Hub) BroadcastEvent(ctx context.Context, eventType string, payload any) {
	data, err := json.Marshal(payload)
	if err != nil {
		slog.Error("marshal ws event payload", "type", eventType, "error", err)
		return
	}

	h.Broadcast(ctx, Message{
		Type:    eventType,
		Payload: json.RawMessage(data),
	})
}
