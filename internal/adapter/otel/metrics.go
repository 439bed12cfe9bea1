package otel

import (
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
)

const meterName = "vyom"

// Metrics holds all Vyom lifecycle metric instruments.
type Metrics struct {
	TasksCreated       metric.Int64Counter
	TasksClaimed       metric.Int64Counter
	TasksSubmitted     metric.Int64Counter
	TasksApproved      metric.Int64Counter
	TasksRejected      metric.Int64Counter
	ClaimConflicts     metric.Int64Counter
	OffersPlaced       metric.Int64Counter
	TransitionDuration metric.Float64Histogram
}

// NewMetrics creates all metric instruments.
func NewMetrics() (*Metrics, error) {
	meter := otel.Meter(meterName)
	m := &Metrics{}
	var err error

	m.TasksCreated, err = meter.Int64Counter("vyom.tasks.created",
		metric.WithDescription("Number of tasks posted"))
	if err != nil {
		return nil, err
	}

	m.TasksClaimed, err = meter.Int64Counter("vyom.tasks.claimed",
		metric.WithDescription("Number of successful claims"))
	if err != nil {
		return nil, err
	}

	m.TasksSubmitted, err = meter.Int64Counter("vyom.tasks.submitted",
		metric.WithDescription("Number of work submissions"))
	if err != nil {
		return nil, err
	}

	m.TasksApproved, err = meter.Int64Counter("vyom.tasks.approved",
		metric.WithDescription("Number of approvals"))
	if err != nil {
		return nil, err
	}

	m.TasksRejected, err = meter.Int64Counter("vyom.tasks.rejected",
		metric.WithDescription("Number of rejections (task reopened)"))
	if err != nil {
		return nil, err
	}

	m.ClaimConflicts, err = meter.Int64Counter("vyom.tasks.claim_conflicts",
		metric.WithDescription("Number of claims lost to a concurrent claimant"))
	if err != nil {
		return nil, err
	}

	m.OffersPlaced, err = meter.Int64Counter("vyom.offers.placed",
		metric.WithDescription("Number of offers placed"))
	if err != nil {
		return nil, err
	}

	m.TransitionDuration, err = meter.Float64Histogram("vyom.transition.duration_seconds",
		metric.WithDescription("Lifecycle transition duration in seconds"))
	if err != nil {
		return nil, err
	}

	return m, nil
}
