// Package offer defines the Offer domain entity: a bid placed by a
// candidate helper on an open task.
package offer

import (
	"fmt"
	"strings"
	"time"

	"github.com/NetPranav/Vyom/internal/domain"
)

// Offer is an immutable bid on a task. Multiple offers per bidder are
// allowed; a later offer does not supersede an earlier one. Offers are only
// actionable while the task is open.
type Offer struct {
	ID         string    `json:"id"`
	TaskID     string    `json:"task_id"`
	BidderID   string    `json:"bidder_id"`
	BidderName string    `json:"bidder_name,omitempty"`
	Price      float64   `json:"price"`
	Message    string    `json:"message,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}

// PlaceRequest holds the fields needed to place an offer.
type PlaceRequest struct {
	Price   float64 `json:"price"`
	Message string  `json:"message"`
}

// Validate checks a PlaceRequest before the offer is recorded.
func (r PlaceRequest) Validate() error {
	if r.Price <= 0 {
		return fmt.Errorf("%w: price must be positive", domain.ErrValidation)
	}
	if len(strings.TrimSpace(r.Message)) > 2000 {
		return fmt.Errorf("%w: message too long (max 2000 chars)", domain.ErrValidation)
	}
	return nil
}
