// Package database defines the database store port (interface).
package database

import (
	"context"

	"github.com/NetPranav/Vyom/internal/domain/offer"
	"github.com/NetPranav/Vyom/internal/domain/task"
)

// Store is the port interface for task and offer persistence.
//
// The four transition methods are conditional writes: each mutates the row
// only if it is still in the expected prior state, and returns
// domain.ErrInvalidState when a concurrent transition got there first. The
// row is never partially mutated.
type Store interface {
	// Tasks
	CreateTask(ctx context.Context, ownerID string, req task.CreateRequest) (*task.Task, error)
	GetTask(ctx context.Context, id string) (*task.Task, error)
	ListOpenTasks(ctx context.Context, search string) ([]task.Task, error)

	// Transitions
	ClaimTask(ctx context.Context, id, claimantID string) (*task.Task, error)
	SubmitTask(ctx context.Context, id, assigneeID string) (*task.Task, error)
	CompleteTask(ctx context.Context, id string) (*task.Task, error)
	ReopenTask(ctx context.Context, id, rejectedAssigneeID string) (*task.Task, error)

	// Offers
	CreateOffer(ctx context.Context, o *offer.Offer) error
	ListOffers(ctx context.Context, taskID string) ([]offer.Offer, error)
	HasOfferFrom(ctx context.Context, taskID, bidderID string) (bool, error)
}
