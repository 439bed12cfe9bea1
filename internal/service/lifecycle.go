// Package service implements the task lifecycle and offer business logic.
package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	vyomotel "github.com/NetPranav/Vyom/internal/adapter/otel"
	"github.com/NetPranav/Vyom/internal/adapter/ws"
	"github.com/NetPranav/Vyom/internal/config"
	"github.com/NetPranav/Vyom/internal/domain"
	"github.com/NetPranav/Vyom/internal/domain/event"
	"github.com/NetPranav/Vyom/internal/domain/party"
	"github.com/NetPranav/Vyom/internal/domain/task"
	"github.com/NetPranav/Vyom/internal/port/cache"
	"github.com/NetPranav/Vyom/internal/port/database"
	"github.com/NetPranav/Vyom/internal/port/eventstore"
	"github.com/NetPranav/Vyom/internal/port/messagequeue"
)

// LifecycleService drives every task through the open -> assigned ->
// in_review -> completed state machine. The store performs each transition
// as a single conditional write, so concurrent callers race safely: exactly
// one wins, the rest get domain.ErrInvalidState.
//
// Side effects (audit event, queue publish, metrics, cache invalidation,
// WebSocket fan-out) run after the store commit. A failed side effect is
// logged and never rolls the transition back.
type LifecycleService struct {
	store   database.Store
	events  eventstore.Store
	queue   messagequeue.Queue
	cache   cache.Cache
	hub     *ws.Hub
	metrics *vyomotel.Metrics
	policy  config.Lifecycle
	ttl     time.Duration
}

// NewLifecycleService creates a LifecycleService.
func NewLifecycleService(
	store database.Store,
	events eventstore.Store,
	queue messagequeue.Queue,
	c cache.Cache,
	hub *ws.Hub,
	metrics *vyomotel.Metrics,
	policy config.Lifecycle,
	cacheTTL time.Duration,
) *LifecycleService {
	return &LifecycleService{
		store:   store,
		events:  events,
		queue:   queue,
		cache:   c,
		hub:     hub,
		metrics: metrics,
		policy:  policy,
		ttl:     cacheTTL,
	}
}

// Create posts a new task owned by ownerID.
func (s *LifecycleService) Create(ctx context.Context, ownerID string, req task.CreateRequest) (*task.Task, error) {
	if ownerID == "" {
		return nil, fmt.Errorf("%w: missing actor identity", domain.ErrUnauthorized)
	}
	if err := req.Validate(); err != nil {
		return nil, err
	}

	ctx, span := vyomotel.StartTransitionSpan(ctx, "create", "", ownerID)
	defer span.End()
	start := time.Now()

	t, err := s.store.CreateTask(ctx, ownerID, req)
	if err != nil {
		return nil, err
	}

	s.afterTransition(ctx, t, ownerID, event.TypeTaskCreated, "", messagequeue.SubjectTaskCreated, s.metrics.TasksCreated)
	s.recordDuration(ctx, "create", start)
	return t, nil
}

// Get returns a task by id, reading through the snapshot cache.
func (s *LifecycleService) Get(ctx context.Context, id string) (*task.Task, error) {
	key := cache.TaskKey(id)
	if data, ok, err := s.cache.Get(ctx, key); err == nil && ok {
		var t task.Task
		if err := json.Unmarshal(data, &t); err == nil && t.CheckInvariants() == nil {
			return &t, nil
		}
		// Corrupt entry, fall through to the store.
		_ = s.cache.Delete(ctx, key)
	}

	t, err := s.store.GetTask(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := t.CheckInvariants(); err != nil {
		return nil, fmt.Errorf("corrupt task record: %w", err)
	}

	if data, err := json.Marshal(t); err == nil {
		if err := s.cache.Set(ctx, key, data, s.ttl); err != nil {
			slog.Warn("cache set failed", "task_id", id, "error", err)
		}
	}
	return t, nil
}

// ListOpen returns the open task feed, optionally filtered by a search term.
func (s *LifecycleService) ListOpen(ctx context.Context, search string) ([]task.Task, error) {
	return s.store.ListOpenTasks(ctx, search)
}

// ListEvents returns the audit trail of a task in creation order.
func (s *LifecycleService) ListEvents(ctx context.Context, taskID string) ([]event.TaskEvent, error) {
	if _, err := s.store.GetTask(ctx, taskID); err != nil {
		return nil, err
	}
	return s.events.LoadByTask(ctx, taskID)
}

// Role resolves the relationship between an actor and a task.
func (s *LifecycleService) Role(ctx context.Context, taskID, actorID string) (party.Role, error) {
	t, err := s.store.GetTask(ctx, taskID)
	if err != nil {
		return "", err
	}
	return party.RoleOf(actorID, t), nil
}

// Claim assigns an open task to actorID. When several helpers claim
// concurrently, exactly one succeeds.
func (s *LifecycleService) Claim(ctx context.Context, id, actorID string) (*task.Task, error) {
	snapshot, err := s.loadForTransition(ctx, id, actorID, task.StatusAssigned)
	if err != nil {
		return nil, err
	}
	if party.RoleOf(actorID, snapshot) == party.RoleOwner {
		return nil, domain.ErrSelfAssignment
	}
	if s.policy.BarRejectedAssignee && snapshot.WasRejectedFrom(actorID) {
		return nil, fmt.Errorf("%w: previously rejected from this task", domain.ErrUnauthorized)
	}
	if s.policy.ClaimRequiresOffer {
		has, err := s.store.HasOfferFrom(ctx, id, actorID)
		if err != nil {
			return nil, err
		}
		if !has {
			return nil, fmt.Errorf("%w: claim requires a prior offer", domain.ErrUnauthorized)
		}
	}

	ctx, span := vyomotel.StartTransitionSpan(ctx, "claim", id, actorID)
	defer span.End()
	start := time.Now()

	t, err := s.store.ClaimTask(ctx, id, actorID)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidState) {
			// Lost the race to a concurrent claimant.
			s.metrics.ClaimConflicts.Add(ctx, 1)
		}
		return nil, err
	}

	s.afterTransition(ctx, t, actorID, event.TypeTaskClaimed, task.StatusOpen, messagequeue.SubjectTaskClaimed, s.metrics.TasksClaimed)
	s.recordDuration(ctx, "claim", start)
	return t, nil
}

// Submit marks the assignee's work as delivered, moving the task to review.
func (s *LifecycleService) Submit(ctx context.Context, id, actorID string) (*task.Task, error) {
	snapshot, err := s.loadForTransition(ctx, id, actorID, task.StatusInReview)
	if err != nil {
		return nil, err
	}
	if err := s.requireRole(actorID, snapshot, party.RoleAssignee); err != nil {
		return nil, err
	}

	ctx, span := vyomotel.StartTransitionSpan(ctx, "submit", id, actorID)
	defer span.End()
	start := time.Now()

	t, err := s.store.SubmitTask(ctx, id, actorID)
	if err != nil {
		return nil, err
	}

	s.afterTransition(ctx, t, actorID, event.TypeTaskSubmitted, task.StatusAssigned, messagequeue.SubjectTaskSubmitted, s.metrics.TasksSubmitted)
	s.recordDuration(ctx, "submit", start)
	return t, nil
}

// Approve accepts submitted work. The task becomes completed, which is
// terminal, and a payout request is published exactly once.
func (s *LifecycleService) Approve(ctx context.Context, id, actorID string) (*task.Task, error) {
	snapshot, err := s.loadForTransition(ctx, id, actorID, task.StatusCompleted)
	if err != nil {
		return nil, err
	}
	if err := s.requireRole(actorID, snapshot, party.RoleOwner); err != nil {
		return nil, err
	}

	ctx, span := vyomotel.StartTransitionSpan(ctx, "approve", id, actorID)
	defer span.End()
	start := time.Now()

	t, err := s.store.CompleteTask(ctx, id)
	if err != nil {
		return nil, err
	}

	s.afterTransition(ctx, t, actorID, event.TypeTaskApproved, task.StatusInReview, messagequeue.SubjectTaskApproved, s.metrics.TasksApproved)
	s.publish(ctx, messagequeue.SubjectPayoutRequested, event.PayoutRequested{
		TaskID:  t.ID,
		OwnerID: t.OwnerID,
		PayeeID: t.AssigneeID,
		Amount:  t.Budget,
	})
	s.recordDuration(ctx, "approve", start)
	return t, nil
}

// Reject sends submitted work back. The task reopens for anyone to claim,
// the assignee is recorded in the rejection history, and a reputation
// penalty is published exactly once.
func (s *LifecycleService) Reject(ctx context.Context, id, actorID, reason string) (*task.Task, error) {
	snapshot, err := s.loadForTransition(ctx, id, actorID, task.StatusOpen)
	if err != nil {
		return nil, err
	}
	if err := s.requireRole(actorID, snapshot, party.RoleOwner); err != nil {
		return nil, err
	}
	rejectedID := snapshot.AssigneeID

	ctx, span := vyomotel.StartTransitionSpan(ctx, "reject", id, actorID)
	defer span.End()
	start := time.Now()

	t, err := s.store.ReopenTask(ctx, id, rejectedID)
	if err != nil {
		return nil, err
	}

	s.afterTransition(ctx, t, actorID, event.TypeTaskRejected, task.StatusInReview, messagequeue.SubjectTaskRejected, s.metrics.TasksRejected)
	s.publish(ctx, messagequeue.SubjectReputationPenalty, event.ReputationPenalty{
		TaskID:   t.ID,
		HelperID: rejectedID,
		Reason:   reason,
	})
	s.recordDuration(ctx, "reject", start)
	return t, nil
}

// loadForTransition loads the task and verifies that moving to next is a
// legal lifecycle edge from its current status. The state check runs before
// any role check: a transition that is impossible from the current state is
// InvalidState for every caller, entitled or not.
func (s *LifecycleService) loadForTransition(ctx context.Context, id, actorID string, next task.Status) (*task.Task, error) {
	if actorID == "" {
		return nil, fmt.Errorf("%w: missing actor identity", domain.ErrUnauthorized)
	}
	t, err := s.store.GetTask(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := t.CheckInvariants(); err != nil {
		return nil, fmt.Errorf("corrupt task record: %w", err)
	}
	if !task.CanTransition(t.Status, next) {
		return nil, fmt.Errorf("%w: no edge from %s to %s", domain.ErrInvalidState, t.Status, next)
	}
	return t, nil
}

// requireRole checks the actor holds the required role on the task.
func (s *LifecycleService) requireRole(actorID string, t *task.Task, want party.Role) error {
	if got := party.RoleOf(actorID, t); got != want {
		return fmt.Errorf("%w: %s required, actor is %s", domain.ErrUnauthorized, want, got)
	}
	return nil
}

// afterTransition runs the post-commit side effects of a transition.
// Failures here are logged; the transition already happened.
func (s *LifecycleService) afterTransition(ctx context.Context, t *task.Task, actorID string, evType event.Type, old task.Status, subject string, counter metric.Int64Counter) {
	ev := &event.TaskEvent{
		TaskID:    t.ID,
		ActorID:   actorID,
		Type:      evType,
		OldStatus: string(old),
		NewStatus: string(t.Status),
	}
	if err := s.events.Append(ctx, ev); err != nil {
		slog.Error("append lifecycle event", "task_id", t.ID, "type", evType, "error", err)
	}

	s.publish(ctx, subject, t)

	counter.Add(ctx, 1)

	if err := s.cache.Delete(ctx, cache.TaskKey(t.ID)); err != nil {
		slog.Warn("cache invalidation failed", "task_id", t.ID, "error", err)
	}

	s.hub.BroadcastEvent(ctx, ws.EventTaskStatus, ws.TaskStatusEvent{
		TaskID:     t.ID,
		Status:     string(t.Status),
		AssigneeID: t.AssigneeID,
	})
}

func (s *LifecycleService) publish(ctx context.Context, subject string, payload any) {
	data, err := json.Marshal(payload)
	if err != nil {
		slog.Error("marshal queue payload", "subject", subject, "error", err)
		return
	}
	if err := s.queue.Publish(ctx, subject, data); err != nil {
		slog.Error("queue publish failed", "subject", subject, "error", err)
	}
}

func (s *LifecycleService) recordDuration(ctx context.Context, op string, start time.Time) {
	s.metrics.TransitionDuration.Record(ctx, time.Since(start).Seconds(),
		metric.WithAttributes(attribute.String("op", op)))
}
