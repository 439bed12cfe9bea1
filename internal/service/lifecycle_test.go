package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	vyomotel "github.com/NetPranav/Vyom/internal/adapter/otel"
	"github.com/NetPranav/Vyom/internal/adapter/ws"
	"github.com/NetPranav/Vyom/internal/config"
	"github.com/NetPranav/Vyom/internal/domain"
	"github.com/NetPranav/Vyom/internal/domain/event"
	"github.com/NetPranav/Vyom/internal/domain/offer"
	"github.com/NetPranav/Vyom/internal/domain/task"
	"github.com/NetPranav/Vyom/internal/port/messagequeue"
)

// mockStore implements database.Store in memory with the same conditional
// write semantics as the postgres adapter: a transition only applies when
// the row is still in the expected prior state.
type mockStore struct {
	mu     sync.Mutex
	tasks  map[string]*task.Task
	offers []offer.Offer
	nextID int
	gets   int
}

func newMockStore() *mockStore {
	return &mockStore{tasks: make(map[string]*task.Task)}
}

func (m *mockStore) CreateTask(_ context.Context, ownerID string, req task.CreateRequest) (*task.Task, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	t := &task.Task{
		ID:           fmt.Sprintf("t%d", m.nextID),
		OwnerID:      ownerID,
		Status:       task.StatusOpen,
		Title:        req.Title,
		Description:  req.Description,
		Priority:     req.Priority,
		Budget:       req.Budget,
		ContactEmail: req.ContactEmail,
		CreatedAt:    time.Now(),
	}
	if t.Priority == "" {
		t.Priority = task.PriorityMedium
	}
	m.tasks[t.ID] = t
	cp := *t
	return &cp, nil
}

func (m *mockStore) GetTask(_ context.Context, id string) (*task.Task, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.gets++
	t, ok := m.tasks[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *t
	return &cp, nil
}

func (m *mockStore) ListOpenTasks(_ context.Context, _ string) ([]task.Task, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []task.Task
	for _, t := range m.tasks {
		if t.Status == task.StatusOpen {
			out = append(out, *t)
		}
	}
	return out, nil
}

func (m *mockStore) ClaimTask(_ context.Context, id, claimantID string) (*task.Task, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.tasks[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	if t.Status != task.StatusOpen {
		return nil, domain.ErrInvalidState
	}
	now := time.Now()
	t.Status = task.StatusAssigned
	t.AssigneeID = claimantID
	t.AssignedAt = &now
	cp := *t
	return &cp, nil
}

func (m *mockStore) SubmitTask(_ context.Context, id, assigneeID string) (*task.Task, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.tasks[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	if t.Status != task.StatusAssigned || t.AssigneeID != assigneeID {
		return nil, domain.ErrInvalidState
	}
	now := time.Now()
	t.Status = task.StatusInReview
	t.Submitted = true
	t.SubmittedAt = &now
	cp := *t
	return &cp, nil
}

func (m *mockStore) CompleteTask(_ context.Context, id string) (*task.Task, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.tasks[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	if t.Status != task.StatusInReview {
		return nil, domain.ErrInvalidState
	}
	now := time.Now()
	t.Status = task.StatusCompleted
	t.Submitted = false
	t.ResolvedAt = &now
	cp := *t
	return &cp, nil
}

func (m *mockStore) ReopenTask(_ context.Context, id, rejectedAssigneeID string) (*task.Task, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.tasks[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	if t.Status != task.StatusInReview || t.AssigneeID != rejectedAssigneeID {
		return nil, domain.ErrInvalidState
	}
	t.Status = task.StatusOpen
	t.AssigneeID = ""
	t.Submitted = false
	t.AssignedAt = nil
	t.SubmittedAt = nil
	t.RejectedAssignees = append(t.RejectedAssignees, rejectedAssigneeID)
	cp := *t
	return &cp, nil
}

func (m *mockStore) CreateOffer(_ context.Context, o *offer.Offer) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	o.ID = fmt.Sprintf("o%d", m.nextID)
	o.CreatedAt = time.Now()
	m.offers = append(m.offers, *o)
	return nil
}

func (m *mockStore) ListOffers(_ context.Context, taskID string) ([]offer.Offer, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []offer.Offer
	for _, o := range m.offers {
		if o.TaskID == taskID {
			out = append(out, o)
		}
	}
	return out, nil
}

func (m *mockStore) HasOfferFrom(_ context.Context, taskID, bidderID string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, o := range m.offers {
		if o.TaskID == taskID && o.BidderID == bidderID {
			return true, nil
		}
	}
	return false, nil
}

// mockEvents implements eventstore.Store in memory.
type mockEvents struct {
	mu     sync.Mutex
	events []event.TaskEvent
}

func (m *mockEvents) Append(_ context.Context, ev *event.TaskEvent) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, *ev)
	return nil
}

func (m *mockEvents) LoadByTask(_ context.Context, taskID string) ([]event.TaskEvent, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []event.TaskEvent
	for _, ev := range m.events {
		if ev.TaskID == taskID {
			out = append(out, ev)
		}
	}
	return out, nil
}

// mockQueue implements messagequeue.Queue for testing.
type mockQueue struct {
	mu        sync.Mutex
	published []struct {
		subject string
		data    []byte
	}
	publishErr error
}

func (q *mockQueue) Publish(_ context.Context, subject string, data []byte) error {
	if q.publishErr != nil {
		return q.publishErr
	}
	q.mu.Lock()
	defer q.mu.Unlock()
	q.published = append(q.published, struct {
		subject string
		data    []byte
	}{subject, data})
	return nil
}

func (q *mockQueue) Subscribe(_ context.Context, _ string, _ messagequeue.Handler) (func(), error) {
	return func() {}, nil
}

func (q *mockQueue) Close() error { return nil }

func (q *mockQueue) countSubject(subject string) int {
	q.mu.Lock()
	defer q.mu.Unlock()
	n := 0
	for _, p := range q.published {
		if p.subject == subject {
			n++
		}
	}
	return n
}

// mockCache implements cache.Cache in memory.
type mockCache struct {
	mu   sync.Mutex
	data map[string][]byte
}

func newMockCache() *mockCache {
	return &mockCache{data: make(map[string][]byte)}
}

func (c *mockCache) Get(_ context.Context, key string) ([]byte, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.data[key]
	return v, ok, nil
}

func (c *mockCache) Set(_ context.Context, key string, value []byte, _ time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data[key] = value
	return nil
}

func (c *mockCache) Delete(_ context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.data, key)
	return nil
}

type fixture struct {
	svc    *LifecycleService
	store  *mockStore
	events *mockEvents
	queue  *mockQueue
	cache  *mockCache
}

func newFixture(t *testing.T, policy config.Lifecycle) *fixture {
	t.Helper()
	metrics, err := vyomotel.NewMetrics()
	if err != nil {
		t.Fatalf("new metrics: %v", err)
	}
	f := &fixture{
		store:  newMockStore(),
		events: &mockEvents{},
		queue:  &mockQueue{},
		cache:  newMockCache(),
	}
	f.svc = NewLifecycleService(f.store, f.events, f.queue, f.cache, ws.NewHub(), metrics, policy, 30*time.Second)
	return f
}

func validCreate() task.CreateRequest {
	return task.CreateRequest{
		Title:        "Fix leaking tap",
		Description:  "Kitchen tap drips",
		Budget:       40,
		ContactEmail: "owner@example.com",
	}
}

func TestCreateValidation(t *testing.T) {
	f := newFixture(t, config.Lifecycle{})

	_, err := f.svc.Create(context.Background(), "owner1", task.CreateRequest{ContactEmail: "a@b.c"})
	if !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}
}

func TestCreateRequiresActor(t *testing.T) {
	f := newFixture(t, config.Lifecycle{})

	_, err := f.svc.Create(context.Background(), "", validCreate())
	if !errors.Is(err, domain.ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}
}

func TestCreatePublishesEventAndMessage(t *testing.T) {
	f := newFixture(t, config.Lifecycle{})

	created, err := f.svc.Create(context.Background(), "owner1", validCreate())
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if created.Status != task.StatusOpen {
		t.Fatalf("status = %s, want open", created.Status)
	}

	if got := f.queue.countSubject(messagequeue.SubjectTaskCreated); got != 1 {
		t.Fatalf("published %d created messages, want 1", got)
	}
	evs, _ := f.events.LoadByTask(context.Background(), created.ID)
	if len(evs) != 1 || evs[0].Type != event.TypeTaskCreated {
		t.Fatalf("events = %+v, want one task.created", evs)
	}
}

func TestFullLifecycle(t *testing.T) {
	f := newFixture(t, config.Lifecycle{})
	ctx := context.Background()

	created, err := f.svc.Create(ctx, "owner1", validCreate())
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	claimed, err := f.svc.Claim(ctx, created.ID, "helper1")
	if err != nil {
		t.Fatalf("claim: %v", err)
	}
	if claimed.Status != task.StatusAssigned || claimed.AssigneeID != "helper1" {
		t.Fatalf("after claim: status=%s assignee=%s", claimed.Status, claimed.AssigneeID)
	}

	submitted, err := f.svc.Submit(ctx, created.ID, "helper1")
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if submitted.Status != task.StatusInReview || !submitted.Submitted {
		t.Fatalf("after submit: status=%s submitted=%v", submitted.Status, submitted.Submitted)
	}

	done, err := f.svc.Approve(ctx, created.ID, "owner1")
	if err != nil {
		t.Fatalf("approve: %v", err)
	}
	if done.Status != task.StatusCompleted {
		t.Fatalf("after approve: status=%s", done.Status)
	}
	if done.AssigneeID != "helper1" {
		t.Fatalf("completed task must retain assignee, got %q", done.AssigneeID)
	}

	// Exactly one payout request.
	if got := f.queue.countSubject(messagequeue.SubjectPayoutRequested); got != 1 {
		t.Fatalf("published %d payout requests, want 1", got)
	}

	// The audit trail covers every transition in order.
	evs, _ := f.events.LoadByTask(ctx, created.ID)
	wantTypes := []event.Type{event.TypeTaskCreated, event.TypeTaskClaimed, event.TypeTaskSubmitted, event.TypeTaskApproved}
	if len(evs) != len(wantTypes) {
		t.Fatalf("got %d events, want %d", len(evs), len(wantTypes))
	}
	for i, want := range wantTypes {
		if evs[i].Type != want {
			t.Errorf("event %d type = %s, want %s", i, evs[i].Type, want)
		}
	}
}

func TestConcurrentClaimsExactlyOneWins(t *testing.T) {
	f := newFixture(t, config.Lifecycle{})
	ctx := context.Background()

	created, err := f.svc.Create(ctx, "owner1", validCreate())
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	const claimants = 20
	var wg sync.WaitGroup
	results := make([]error, claimants)
	for i := 0; i < claimants; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			_, results[n] = f.svc.Claim(ctx, created.ID, fmt.Sprintf("helper%d", n))
		}(i)
	}
	wg.Wait()

	wins := 0
	for _, err := range results {
		switch {
		case err == nil:
			wins++
		case errors.Is(err, domain.ErrInvalidState):
		default:
			t.Errorf("unexpected claim error: %v", err)
		}
	}
	if wins != 1 {
		t.Fatalf("%d claims won, want exactly 1", wins)
	}

	got, err := f.svc.Get(ctx, created.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Status != task.StatusAssigned || got.AssigneeID == "" {
		t.Fatalf("after race: status=%s assignee=%q", got.Status, got.AssigneeID)
	}
}

func TestClaimOwnTask(t *testing.T) {
	f := newFixture(t, config.Lifecycle{})
	ctx := context.Background()

	created, _ := f.svc.Create(ctx, "owner1", validCreate())
	_, err := f.svc.Claim(ctx, created.ID, "owner1")
	if !errors.Is(err, domain.ErrSelfAssignment) {
		t.Fatalf("expected ErrSelfAssignment, got %v", err)
	}
	if want := domain.ErrSelfAssignment.Error(); err.Error() != want {
		t.Fatalf("error message = %q, want %q", err.Error(), want)
	}
}

func TestClaimUnknownTask(t *testing.T) {
	f := newFixture(t, config.Lifecycle{})

	_, err := f.svc.Claim(context.Background(), "nope", "helper1")
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestClaimRequiresOfferPolicy(t *testing.T) {
	f := newFixture(t, config.Lifecycle{ClaimRequiresOffer: true})
	ctx := context.Background()

	created, _ := f.svc.Create(ctx, "owner1", validCreate())

	_, err := f.svc.Claim(ctx, created.ID, "helper1")
	if !errors.Is(err, domain.ErrUnauthorized) {
		t.Fatalf("claim without offer: expected ErrUnauthorized, got %v", err)
	}

	if err := f.store.CreateOffer(ctx, &offer.Offer{TaskID: created.ID, BidderID: "helper1", Price: 35}); err != nil {
		t.Fatalf("seed offer: %v", err)
	}
	if _, err := f.svc.Claim(ctx, created.ID, "helper1"); err != nil {
		t.Fatalf("claim with offer: %v", err)
	}
}

func TestSubmitOnUnclaimedTask(t *testing.T) {
	f := newFixture(t, config.Lifecycle{})
	ctx := context.Background()

	created, _ := f.svc.Create(ctx, "owner1", validCreate())

	// State is checked before the caller's role: submitting a task nobody
	// claimed is an invalid transition for everyone, stranger and owner alike.
	if _, err := f.svc.Submit(ctx, created.ID, "stranger"); !errors.Is(err, domain.ErrInvalidState) {
		t.Fatalf("stranger submit on open task: expected ErrInvalidState, got %v", err)
	}
	if _, err := f.svc.Submit(ctx, created.ID, "owner1"); !errors.Is(err, domain.ErrInvalidState) {
		t.Fatalf("owner submit on open task: expected ErrInvalidState, got %v", err)
	}
}

func TestRejectBeforeSubmission(t *testing.T) {
	f := newFixture(t, config.Lifecycle{})
	ctx := context.Background()

	created, _ := f.svc.Create(ctx, "owner1", validCreate())
	if _, err := f.svc.Claim(ctx, created.ID, "helper1"); err != nil {
		t.Fatalf("claim: %v", err)
	}

	if _, err := f.svc.Reject(ctx, created.ID, "owner1", "too slow"); !errors.Is(err, domain.ErrInvalidState) {
		t.Fatalf("reject on assigned task: expected ErrInvalidState, got %v", err)
	}
	if _, err := f.svc.Approve(ctx, created.ID, "owner1"); !errors.Is(err, domain.ErrInvalidState) {
		t.Fatalf("approve on assigned task: expected ErrInvalidState, got %v", err)
	}
}

func TestSubmitByNonAssignee(t *testing.T) {
	f := newFixture(t, config.Lifecycle{})
	ctx := context.Background()

	created, _ := f.svc.Create(ctx, "owner1", validCreate())
	if _, err := f.svc.Claim(ctx, created.ID, "helper1"); err != nil {
		t.Fatalf("claim: %v", err)
	}

	_, err := f.svc.Submit(ctx, created.ID, "stranger")
	if !errors.Is(err, domain.ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}
	_, err = f.svc.Submit(ctx, created.ID, "owner1")
	if !errors.Is(err, domain.ErrUnauthorized) {
		t.Fatalf("owner submit: expected ErrUnauthorized, got %v", err)
	}
}

func TestApproveByNonOwner(t *testing.T) {
	f := newFixture(t, config.Lifecycle{})
	ctx := context.Background()

	created, _ := f.svc.Create(ctx, "owner1", validCreate())
	f.svc.Claim(ctx, created.ID, "helper1")
	f.svc.Submit(ctx, created.ID, "helper1")

	_, err := f.svc.Approve(ctx, created.ID, "helper1")
	if !errors.Is(err, domain.ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}
}

func TestApproveNotInReview(t *testing.T) {
	f := newFixture(t, config.Lifecycle{})
	ctx := context.Background()

	created, _ := f.svc.Create(ctx, "owner1", validCreate())
	f.svc.Claim(ctx, created.ID, "helper1")

	_, err := f.svc.Approve(ctx, created.ID, "owner1")
	if !errors.Is(err, domain.ErrInvalidState) {
		t.Fatalf("expected ErrInvalidState, got %v", err)
	}
}

func TestRejectReopensTask(t *testing.T) {
	f := newFixture(t, config.Lifecycle{})
	ctx := context.Background()

	created, _ := f.svc.Create(ctx, "owner1", validCreate())
	f.svc.Claim(ctx, created.ID, "helper1")
	f.svc.Submit(ctx, created.ID, "helper1")

	reopened, err := f.svc.Reject(ctx, created.ID, "owner1", "incomplete work")
	if err != nil {
		t.Fatalf("reject: %v", err)
	}
	if reopened.Status != task.StatusOpen || reopened.AssigneeID != "" || reopened.Submitted {
		t.Fatalf("after reject: %+v", reopened)
	}
	if !reopened.WasRejectedFrom("helper1") {
		t.Fatal("rejection history missing helper1")
	}

	if got := f.queue.countSubject(messagequeue.SubjectReputationPenalty); got != 1 {
		t.Fatalf("published %d reputation penalties, want 1", got)
	}

	// Default policy lets the same helper try again.
	if _, err := f.svc.Claim(ctx, created.ID, "helper1"); err != nil {
		t.Fatalf("re-claim after reject: %v", err)
	}
	if _, err := f.svc.Submit(ctx, created.ID, "helper1"); err != nil {
		t.Fatalf("re-submit after reject: %v", err)
	}
}

func TestBarRejectedAssigneePolicy(t *testing.T) {
	f := newFixture(t, config.Lifecycle{BarRejectedAssignee: true})
	ctx := context.Background()

	created, _ := f.svc.Create(ctx, "owner1", validCreate())
	f.svc.Claim(ctx, created.ID, "helper1")
	f.svc.Submit(ctx, created.ID, "helper1")
	if _, err := f.svc.Reject(ctx, created.ID, "owner1", "sloppy"); err != nil {
		t.Fatalf("reject: %v", err)
	}

	_, err := f.svc.Claim(ctx, created.ID, "helper1")
	if !errors.Is(err, domain.ErrUnauthorized) {
		t.Fatalf("barred re-claim: expected ErrUnauthorized, got %v", err)
	}
	// A fresh helper is still welcome.
	if _, err := f.svc.Claim(ctx, created.ID, "helper2"); err != nil {
		t.Fatalf("fresh claim: %v", err)
	}
}

func TestCompletedTaskIsTerminal(t *testing.T) {
	f := newFixture(t, config.Lifecycle{})
	ctx := context.Background()

	created, _ := f.svc.Create(ctx, "owner1", validCreate())
	f.svc.Claim(ctx, created.ID, "helper1")
	f.svc.Submit(ctx, created.ID, "helper1")
	if _, err := f.svc.Approve(ctx, created.ID, "owner1"); err != nil {
		t.Fatalf("approve: %v", err)
	}

	if _, err := f.svc.Claim(ctx, created.ID, "helper2"); !errors.Is(err, domain.ErrInvalidState) {
		t.Errorf("claim on completed: expected ErrInvalidState, got %v", err)
	}
	if _, err := f.svc.Submit(ctx, created.ID, "helper1"); !errors.Is(err, domain.ErrInvalidState) {
		t.Errorf("submit on completed: expected ErrInvalidState, got %v", err)
	}
	if _, err := f.svc.Approve(ctx, created.ID, "owner1"); !errors.Is(err, domain.ErrInvalidState) {
		t.Errorf("re-approve on completed: expected ErrInvalidState, got %v", err)
	}
	if _, err := f.svc.Reject(ctx, created.ID, "owner1", ""); !errors.Is(err, domain.ErrInvalidState) {
		t.Errorf("reject on completed: expected ErrInvalidState, got %v", err)
	}

	// Terminal for wrong-role actors too, not just the involved parties.
	if _, err := f.svc.Submit(ctx, created.ID, "stranger"); !errors.Is(err, domain.ErrInvalidState) {
		t.Errorf("stranger submit on completed: expected ErrInvalidState, got %v", err)
	}
	if _, err := f.svc.Approve(ctx, created.ID, "helper1"); !errors.Is(err, domain.ErrInvalidState) {
		t.Errorf("assignee approve on completed: expected ErrInvalidState, got %v", err)
	}
	if _, err := f.svc.Reject(ctx, created.ID, "stranger", ""); !errors.Is(err, domain.ErrInvalidState) {
		t.Errorf("stranger reject on completed: expected ErrInvalidState, got %v", err)
	}

	// Still exactly one payout.
	if got := f.queue.countSubject(messagequeue.SubjectPayoutRequested); got != 1 {
		t.Fatalf("published %d payout requests, want 1", got)
	}
}

func TestGetReadsThroughCache(t *testing.T) {
	f := newFixture(t, config.Lifecycle{})
	ctx := context.Background()

	created, _ := f.svc.Create(ctx, "owner1", validCreate())

	before := f.store.gets
	if _, err := f.svc.Get(ctx, created.ID); err != nil {
		t.Fatalf("first get: %v", err)
	}
	got, err := f.svc.Get(ctx, created.ID)
	if err != nil {
		t.Fatalf("second get: %v", err)
	}
	if got.ID != created.ID {
		t.Fatalf("got task %s, want %s", got.ID, created.ID)
	}
	if f.store.gets != before+1 {
		t.Fatalf("store gets = %d, want %d (second read served from cache)", f.store.gets, before+1)
	}
}

func TestTransitionInvalidatesCache(t *testing.T) {
	f := newFixture(t, config.Lifecycle{})
	ctx := context.Background()

	created, _ := f.svc.Create(ctx, "owner1", validCreate())
	if _, err := f.svc.Get(ctx, created.ID); err != nil {
		t.Fatalf("warm cache: %v", err)
	}
	if _, err := f.svc.Claim(ctx, created.ID, "helper1"); err != nil {
		t.Fatalf("claim: %v", err)
	}

	got, err := f.svc.Get(ctx, created.ID)
	if err != nil {
		t.Fatalf("get after claim: %v", err)
	}
	if got.Status != task.StatusAssigned {
		t.Fatalf("stale read after transition: status=%s", got.Status)
	}
}

func TestQueueFailureDoesNotRollBack(t *testing.T) {
	f := newFixture(t, config.Lifecycle{})
	f.queue.publishErr = errors.New("nats down")
	ctx := context.Background()

	created, err := f.svc.Create(ctx, "owner1", validCreate())
	if err != nil {
		t.Fatalf("create with queue down: %v", err)
	}
	if _, err := f.svc.Claim(ctx, created.ID, "helper1"); err != nil {
		t.Fatalf("claim with queue down: %v", err)
	}

	got, _ := f.store.GetTask(ctx, created.ID)
	if got.Status != task.StatusAssigned {
		t.Fatalf("transition rolled back on publish failure: status=%s", got.Status)
	}
}

func TestCorruptRecordRejected(t *testing.T) {
	f := newFixture(t, config.Lifecycle{})
	ctx := context.Background()

	// An open task with an assignee violates the structural invariants and
	// must never be served or transitioned.
	f.store.mu.Lock()
	f.store.tasks["bad"] = &task.Task{
		ID:         "bad",
		OwnerID:    "owner1",
		AssigneeID: "helper1",
		Status:     task.StatusOpen,
		Title:      "mangled row",
	}
	f.store.mu.Unlock()

	if _, err := f.svc.Get(ctx, "bad"); err == nil {
		t.Fatal("get corrupt record: expected error, got nil")
	}
	if _, err := f.svc.Claim(ctx, "bad", "helper2"); err == nil {
		t.Fatal("claim corrupt record: expected error, got nil")
	}
}

func TestListEventsUnknownTask(t *testing.T) {
	f := newFixture(t, config.Lifecycle{})

	_, err := f.svc.ListEvents(context.Background(), "nope")
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
