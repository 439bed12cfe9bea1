package http

import (
	"net/http"

	"github.com/NetPranav/Vyom/internal/domain/event"
	"github.com/NetPranav/Vyom/internal/domain/offer"
	"github.com/NetPranav/Vyom/internal/domain/task"
	"github.com/NetPranav/Vyom/internal/middleware"
	"github.com/NetPranav/Vyom/internal/service"
)

// Handlers holds all HTTP handlers and their service dependencies.
type Handlers struct {
	lifecycle *service.LifecycleService
	offers    *service.OfferService
}

// NewHandlers creates the handler set.
func NewHandlers(lifecycle *service.LifecycleService, offers *service.OfferService) *Handlers {
	return &Handlers{lifecycle: lifecycle, offers: offers}
}

// requireActor returns the actor identity or writes a 401.
func requireActor(w http.ResponseWriter, r *http.Request) (string, bool) {
	id := middleware.ActorID(r.Context())
	if id == "" {
		writeError(w, http.StatusUnauthorized, "missing "+middleware.ActorHeader+" header")
		return "", false
	}
	return id, true
}

// ListTasks returns the open task feed. GET /api/v1/tasks?search=...
func (h *Handlers) ListTasks(w http.ResponseWriter, r *http.Request) {
	tasks, err := h.lifecycle.ListOpen(r.Context(), r.URL.Query().Get("search"))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	if tasks == nil {
		tasks = []task.Task{}
	}
	writeJSON(w, http.StatusOK, tasks)
}

// CreateTask posts a new task. POST /api/v1/tasks
func (h *Handlers) CreateTask(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}
	req, ok := readJSON[task.CreateRequest](w, r)
	if !ok {
		return
	}

	t, err := h.lifecycle.Create(r.Context(), actor, req)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, t)
}

// GetTask returns a single task. GET /api/v1/tasks/{id}
func (h *Handlers) GetTask(w http.ResponseWriter, r *http.Request) {
	t, err := h.lifecycle.Get(r.Context(), urlParam(r, "id"))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, t)
}

// ClaimTask assigns an open task to the caller. POST /api/v1/tasks/{id}/claim
func (h *Handlers) ClaimTask(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}

	t, err := h.lifecycle.Claim(r.Context(), urlParam(r, "id"), actor)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, t)
}

// SubmitTask marks the caller's work as delivered. POST /api/v1/tasks/{id}/submit
func (h *Handlers) SubmitTask(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}

	t, err := h.lifecycle.Submit(r.Context(), urlParam(r, "id"), actor)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, t)
}

// ApproveTask accepts submitted work. POST /api/v1/tasks/{id}/approve
func (h *Handlers) ApproveTask(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}

	t, err := h.lifecycle.Approve(r.Context(), urlParam(r, "id"), actor)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, t)
}

type rejectRequest struct {
	Reason string `json:"reason"`
}

// RejectTask sends submitted work back and reopens the task.
// POST /api/v1/tasks/{id}/reject
func (h *Handlers) RejectTask(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}
	// Body is optional; an empty reason is fine.
	var req rejectRequest
	if r.ContentLength > 0 {
		if req, ok = readJSON[rejectRequest](w, r); !ok {
			return
		}
	}

	t, err := h.lifecycle.Reject(r.Context(), urlParam(r, "id"), actor, req.Reason)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, t)
}

type placeOfferRequest struct {
	offer.PlaceRequest
	BidderName string `json:"bidder_name"`
}

// PlaceOffer records a bid on an open task. POST /api/v1/tasks/{id}/offers
func (h *Handlers) PlaceOffer(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}
	req, ok := readJSON[placeOfferRequest](w, r)
	if !ok {
		return
	}

	o, err := h.offers.Place(r.Context(), urlParam(r, "id"), actor, req.BidderName, req.PlaceRequest)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, o)
}

// ListOffers returns all offers on a task. GET /api/v1/tasks/{id}/offers
func (h *Handlers) ListOffers(w http.ResponseWriter, r *http.Request) {
	listed, err := h.offers.List(r.Context(), urlParam(r, "id"))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	if listed == nil {
		listed = []offer.Offer{}
	}
	writeJSON(w, http.StatusOK, listed)
}

// ListTaskEvents returns the audit trail of a task. GET /api/v1/tasks/{id}/events
func (h *Handlers) ListTaskEvents(w http.ResponseWriter, r *http.Request) {
	events, err := h.lifecycle.ListEvents(r.Context(), urlParam(r, "id"))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	if events == nil {
		events = []event.TaskEvent{}
	}
	writeJSON(w, http.StatusOK, events)
}

type roleResponse struct {
	Role string `json:"role"`
}

// GetRole resolves the caller's relationship to a task.
// GET /api/v1/tasks/{id}/role
func (h *Handlers) GetRole(w http.ResponseWriter, r *http.Request) {
	actor := middleware.ActorID(r.Context())
	role, err := h.lifecycle.Role(r.Context(), urlParam(r, "id"), actor)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, roleResponse{Role: string(role)})
}
