package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestCanTransition_ForwardOnly(t *testing.T) {
	assert.True(t, CanTransition(StatusDraft, StatusPending))
	assert.True(t, CanTransition(StatusPending, StatusConfirmed))
	assert.True(t, CanTransition(StatusConfirmed, StatusPreparing))
	assert.True(t, CanTransition(StatusPreparing, StatusReady))
	assert.True(t, CanTransition(StatusReady, StatusServed))
	assert.True(t, CanTransition(StatusServed, StatusCompleted))

	// No skipping, no going back.
	assert.False(t, CanTransition(StatusPending, StatusPreparing))
	assert.False(t, CanTransition(StatusConfirmed, StatusReady))
	assert.False(t, CanTransition(StatusReady, StatusPreparing))
	assert.False(t, CanTransition(StatusServed, StatusReady))
}

func TestCanTransition_Cancellation(t *testing.T) {
	for _, from := range []Status{StatusDraft, StatusPending, StatusConfirmed, StatusPreparing, StatusReady, StatusServed} {
		assert.True(t, CanTransition(from, StatusCancelled), "cancel from %s", from)
	}
	assert.False(t, CanTransition(StatusCompleted, StatusCancelled))
	assert.False(t, CanTransition(StatusCancelled, StatusCancelled))
}

func TestCanTransition_TerminalStates(t *testing.T) {
	for _, to := range []Status{StatusDraft, StatusPending, StatusConfirmed, StatusPreparing, StatusReady, StatusServed, StatusCompleted} {
		assert.False(t, CanTransition(StatusCompleted, to))
		assert.False(t, CanTransition(StatusCancelled, to))
	}
}

func TestCanTransitionLine(t *testing.T) {
	assert.True(t, CanTransitionLine(LinePending, LinePreparing))
	assert.True(t, CanTransitionLine(LinePreparing, LineReady))
	assert.True(t, CanTransitionLine(LineReady, LineServed))
	assert.True(t, CanTransitionLine(LinePending, LineCancelled))
	assert.True(t, CanTransitionLine(LinePreparing, LineCancelled))

	assert.False(t, CanTransitionLine(LineReady, LineCancelled))
	assert.False(t, CanTransitionLine(LineServed, LineCancelled))
	assert.False(t, CanTransitionLine(LinePending, LineReady))
	assert.False(t, CanTransitionLine(LineServed, LineReady))
}

func TestStatusBillable(t *testing.T) {
	assert.False(t, StatusDraft.Billable())
	assert.False(t, StatusPending.Billable())
	assert.False(t, StatusCancelled.Billable())
	assert.True(t, StatusConfirmed.Billable())
	assert.True(t, StatusServed.Billable())
	assert.True(t, StatusCompleted.Billable())
}

func TestOrderUrgency(t *testing.T) {
	now := time.Now().UTC()
	confirmed := now.Add(-30 * time.Minute)

	order := Order{Status: StatusPreparing, ConfirmedAt: &confirmed, EstimatedPrepMinutes: 20, Priority: PriorityNormal}
	assert.True(t, order.Overdue(now))
	assert.Equal(t, "overdue", order.UrgencyLevel(now))

	order.Priority = PriorityHigh
	assert.Equal(t, "critical", order.UrgencyLevel(now))

	order.EstimatedPrepMinutes = 60
	assert.False(t, order.Overdue(now))
	assert.Equal(t, "high", order.UrgencyLevel(now))

	// Served orders are never overdue.
	order.Status = StatusServed
	order.EstimatedPrepMinutes = 5
	assert.False(t, order.Overdue(now))
}
