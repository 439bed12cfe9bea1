package postgres

import (
	"context"
	"fmt"

	"github.com/NetPranav/Vyom/internal/domain/offer"
)

// --- Offers ---

func (s *Store) CreateOffer(ctx context.Context, o *offer.Offer) error {
	row := s.pool.QueryRow(ctx,
		`INSERT INTO offers (task_id, bidder_id, bidder_name, price, message)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING id, created_at`,
		o.TaskID, o.BidderID, o.BidderName, o.Price, o.Message)

	if err := row.Scan(&o.ID, &o.CreatedAt); err != nil {
		return fmt.Errorf("create offer: %w", err)
	}
	return nil
}

func (s *Store) ListOffers(ctx context.Context, taskID string) ([]offer.Offer, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, task_id, bidder_id, bidder_name, price, message, created_at
		 FROM offers WHERE task_id = $1 ORDER BY created_at, id`, taskID)
	if err != nil {
		return nil, fmt.Errorf("list offers for task %s: %w", taskID, err)
	}
	defer rows.Close()

	var offers []offer.Offer
	for rows.Next() {
		var o offer.Offer
		if err := rows.Scan(&o.ID, &o.TaskID, &o.BidderID, &o.BidderName, &o.Price, &o.Message, &o.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan offer: %w", err)
		}
		offers = append(offers, o)
	}
	return orEmpty(offers), rows.Err()
}

func (s *Store) HasOfferFrom(ctx context.Context, taskID, bidderID string) (bool, error) {
	var exists bool
	err := s.pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM offers WHERE task_id = $1 AND bidder_id = $2)`,
		taskID, bidderID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check offer from %s on task %s: %w", bidderID, taskID, err)
	}
	return exists, nil
}
