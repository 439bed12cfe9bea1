// Package domain provides shared domain-level sentinel errors.
package domain

import "errors"

// ErrNotFound indicates the requested entity does not exist.
var ErrNotFound = errors.New("not found")

// ErrUnauthorized indicates the actor lacks the role required for the operation.
var ErrUnauthorized = errors.New("unauthorized")

// ErrInvalidState indicates the requested transition is not legal from the
// task's current status. On Claim it means another claimant got there first;
// callers should refresh the task and decide again rather than retry blindly.
var ErrInvalidState = errors.New("invalid state for requested transition")

// ErrSelfAssignment indicates an owner attempted to claim their own task.
var ErrSelfAssignment = errors.New("owner cannot claim own task")

// ErrValidation indicates malformed input (negative budget, missing field).
var ErrValidation = errors.New("validation failed")
