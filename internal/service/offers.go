package service

import (
	"context"
	"fmt"

	vyomotel "github.com/NetPranav/Vyom/internal/adapter/otel"
	"github.com/NetPranav/Vyom/internal/adapter/ws"
	"github.com/NetPranav/Vyom/internal/domain"
	"github.com/NetPranav/Vyom/internal/domain/offer"
	"github.com/NetPranav/Vyom/internal/domain/party"
	"github.com/NetPranav/Vyom/internal/domain/task"
	"github.com/NetPranav/Vyom/internal/port/database"
)

// OfferService records bids on open tasks. Offers are append-only: a bidder
// may place several, and none is ever amended or withdrawn.
type OfferService struct {
	store   database.Store
	hub     *ws.Hub
	metrics *vyomotel.Metrics
}

// NewOfferService creates an OfferService.
func NewOfferService(store database.Store, hub *ws.Hub, metrics *vyomotel.Metrics) *OfferService {
	return &OfferService{store: store, hub: hub, metrics: metrics}
}

// Place records a bid from actorID on the given task. Only open tasks
// accept offers, and an owner cannot bid on their own task.
func (s *OfferService) Place(ctx context.Context, taskID, actorID, actorName string, req offer.PlaceRequest) (*offer.Offer, error) {
	if actorID == "" {
		return nil, fmt.Errorf("%w: missing actor identity", domain.ErrUnauthorized)
	}
	if err := req.Validate(); err != nil {
		return nil, err
	}

	t, err := s.store.GetTask(ctx, taskID)
	if err != nil {
		return nil, err
	}
	if party.RoleOf(actorID, t) == party.RoleOwner {
		return nil, fmt.Errorf("%w: owner cannot bid on own task", domain.ErrSelfAssignment)
	}
	if t.Status != task.StatusOpen {
		return nil, fmt.Errorf("%w: task is %s, offers are only accepted while open", domain.ErrInvalidState, t.Status)
	}

	ctx, span := vyomotel.StartOfferSpan(ctx, taskID, actorID)
	defer span.End()

	o := &offer.Offer{
		TaskID:     taskID,
		BidderID:   actorID,
		BidderName: actorName,
		Price:      req.Price,
		Message:    req.Message,
	}
	if err := s.store.CreateOffer(ctx, o); err != nil {
		return nil, err
	}

	s.metrics.OffersPlaced.Add(ctx, 1)
	s.hub.BroadcastEvent(ctx, ws.EventOfferNew, ws.OfferEvent{
		TaskID:   taskID,
		OfferID:  o.ID,
		BidderID: actorID,
		Price:    o.Price,
	})
	return o, nil
}

// List returns every offer on a task in placement order.
func (s *OfferService) List(ctx context.Context, taskID string) ([]offer.Offer, error) {
	if _, err := s.store.GetTask(ctx, taskID); err != nil {
		return nil, err
	}
	return s.store.ListOffers(ctx, taskID)
}
