// Package task defines the Task domain entity and its lifecycle rules.
package task

import (
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/NetPranav/Vyom/internal/domain"
)

// Status represents the current lifecycle state of a task.
type Status string

const (
	StatusOpen      Status = "open"
	StatusAssigned  Status = "assigned"
	StatusInReview  Status = "in_review"
	StatusCompleted Status = "completed"
)

// Priority is the owner-declared urgency of a task.
type Priority string

const (
	PriorityLow    Priority = "LOW"
	PriorityMedium Priority = "MEDIUM"
	PriorityHigh   Priority = "HIGH"
	PriorityUrgent Priority = "URGENT"
)

// Task represents a unit of work posted by an owner and performed by a helper.
//
// The owner is set at creation and never changes. The assignee is set by
// Claim, cleared by Reject, and retained after Complete. Budget is fixed at
// creation; settlement is handled outside this core.
type Task struct {
	ID                string     `json:"id"`
	OwnerID           string     `json:"owner_id"`
	AssigneeID        string     `json:"assignee_id,omitempty"`
	Status            Status     `json:"status"`
	Title             string     `json:"title"`
	Description       string     `json:"description"`
	Category          string     `json:"category,omitempty"`
	Priority          Priority   `json:"priority"`
	Budget            float64    `json:"budget"`
	Location          string     `json:"location,omitempty"`
	Deadline          *time.Time `json:"deadline,omitempty"`
	ContactEmail      string     `json:"contact_email"`
	ContactPhone      string     `json:"contact_phone,omitempty"`
	ImageURL          string     `json:"image_url,omitempty"`
	Submitted         bool       `json:"submitted"`
	RejectedAssignees []string   `json:"rejected_assignees,omitempty"`
	CreatedAt         time.Time  `json:"created_at"`
	AssignedAt        *time.Time `json:"assigned_at,omitempty"`
	SubmittedAt       *time.Time `json:"submitted_at,omitempty"`
	ResolvedAt        *time.Time `json:"resolved_at,omitempty"`
}

// CreateRequest holds the fields needed to post a new task.
type CreateRequest struct {
	Title        string     `json:"title"`
	Description  string     `json:"description"`
	Category     string     `json:"category"`
	Priority     Priority   `json:"priority"`
	Budget       float64    `json:"budget"`
	Location     string     `json:"location"`
	Deadline     *time.Time `json:"deadline,omitempty"`
	ContactEmail string     `json:"contact_email"`
	ContactPhone string     `json:"contact_phone"`
	ImageURL     string     `json:"image_url"`
}

// Validate checks a CreateRequest before a task is allocated.
// Email/phone format is the caller's concern; presence is ours.
func (r CreateRequest) Validate() error {
	if strings.TrimSpace(r.Title) == "" {
		return fmt.Errorf("%w: title is required", domain.ErrValidation)
	}
	if r.Budget < 0 {
		return fmt.Errorf("%w: budget must be non-negative", domain.ErrValidation)
	}
	if strings.TrimSpace(r.ContactEmail) == "" {
		return fmt.Errorf("%w: contact_email is required", domain.ErrValidation)
	}
	switch r.Priority {
	case "", PriorityLow, PriorityMedium, PriorityHigh, PriorityUrgent:
	default:
		return fmt.Errorf("%w: unknown priority %q", domain.ErrValidation, r.Priority)
	}
	return nil
}

// Terminal reports whether no further transition may leave this status.
func (s Status) Terminal() bool {
	return s == StatusCompleted
}

// Valid reports whether s is one of the four lifecycle states.
func (s Status) Valid() bool {
	switch s {
	case StatusOpen, StatusAssigned, StatusInReview, StatusCompleted:
		return true
	}
	return false
}

// WasRejectedFrom reports whether actorID was previously rejected off this task.
func (t *Task) WasRejectedFrom(actorID string) bool {
	return slices.Contains(t.RejectedAssignees, actorID)
}

// CheckInvariants validates the structural invariants of a task record.
// Derived fields are only legal in specific states; this is the single
// place that rule is enforced.
func (t *Task) CheckInvariants() error {
	if !t.Status.Valid() {
		return fmt.Errorf("task %s: unknown status %q", t.ID, t.Status)
	}
	hasAssignee := t.AssigneeID != ""
	if t.Status == StatusOpen && hasAssignee {
		return fmt.Errorf("task %s: open task must not have an assignee", t.ID)
	}
	if t.Status != StatusOpen && !hasAssignee {
		return fmt.Errorf("task %s: %s task must have an assignee", t.ID, t.Status)
	}
	if hasAssignee && t.AssigneeID == t.OwnerID {
		return fmt.Errorf("task %s: assignee equals owner", t.ID)
	}
	if t.Submitted != (t.Status == StatusInReview) {
		return fmt.Errorf("task %s: submitted flag is only legal in in_review", t.ID)
	}
	return nil
}

// transitions is the complete edge set of the lifecycle state machine.
// Anything not listed here is rejected with ErrInvalidState.
var transitions = map[Status][]Status{
	StatusOpen:     {StatusAssigned},
	StatusAssigned: {StatusInReview},
	StatusInReview: {StatusCompleted, StatusOpen},
}

// CanTransition reports whether moving from to next is a legal edge.
func CanTransition(from, next Status) bool {
	return slices.Contains(transitions[from], next)
}
