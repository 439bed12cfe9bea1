// Package event defines the immutable task lifecycle event record.
package event

import (
	"encoding/json"
	"time"
)

// Type identifies the kind of lifecycle event.
type Type string

const (
	TypeTaskCreated   Type = "task.created"
	TypeTaskClaimed   Type = "task.claimed"
	TypeTaskSubmitted Type = "task.submitted"
	TypeTaskApproved  Type = "task.approved"
	TypeTaskRejected  Type = "task.rejected"
)

// TaskEvent is one append-only audit record of a lifecycle transition.
type TaskEvent struct {
	ID        string          `json:"id"`
	TaskID    string          `json:"task_id"`
	ActorID   string          `json:"actor_id"`
	Type      Type            `json:"type"`
	OldStatus string          `json:"old_status,omitempty"`
	NewStatus string          `json:"new_status"`
	Payload   json.RawMessage `json:"payload,omitempty"`
	CreatedAt time.Time       `json:"created_at"`
}

// PayoutRequested is the payload published to the payout worker when an
// owner approves submitted work. The core guarantees one publish per
// approval; settlement itself happens downstream.
type PayoutRequested struct {
	TaskID  string  `json:"task_id"`
	OwnerID string  `json:"owner_id"`
	PayeeID string  `json:"payee_id"`
	Amount  float64 `json:"amount"`
}

// ReputationPenalty is the payload published to the reputation worker when
// an owner rejects submitted work.
type ReputationPenalty struct {
	TaskID   string `json:"task_id"`
	HelperID string `json:"helper_id"`
	Reason   string `json:"reason,omitempty"`
}
