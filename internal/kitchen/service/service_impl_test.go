package service

import (
	"context"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/dineops/dineops/internal/events"
	kitchendomain "github.com/dineops/dineops/internal/kitchen/domain"
	orderdomain "github.com/dineops/dineops/internal/order/domain"
	tabledomain "github.com/dineops/dineops/internal/table/domain"
	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type fixture struct {
	svc   kitchendomain.Service
	db    *gorm.DB
	node  *snowflake.Node
	order orderdomain.Order
	lines []orderdomain.Line
}

// newFixture seeds one confirmed order with three pending lines.
func newFixture(t *testing.T) *fixture {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file:"+t.Name()+"?mode=memory&cache=shared"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&tabledomain.Table{},
		&tabledomain.Session{},
		&orderdomain.Order{},
		&orderdomain.Line{},
	))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	f := &fixture{
		db:   db,
		node: node,
		svc: NewService(Params{
			DB:     db,
			Log:    zap.NewNop(),
			Events: events.NewHub(),
		}),
	}

	table := tabledomain.Table{ID: node.Generate(), TableNumber: "5", Status: tabledomain.StatusOccupied, IsActive: true}
	require.NoError(t, db.Create(&table).Error)

	now := time.Now().UTC()
	confirmed := now.Add(-5 * time.Minute)
	f.order = orderdomain.Order{
		ID:             node.Generate(),
		OrderNumber:    "ORD-T5-260828-AAAAAA",
		SessionID:      node.Generate(),
		TableID:        table.ID,
		Status:         orderdomain.StatusConfirmed,
		Priority:       orderdomain.PriorityNormal,
		SubtotalAmount: 300,
		TotalAmount:    300,
		ConfirmedAt:    &confirmed,
		CreatedAt:      now,
	}
	require.NoError(t, db.Create(&f.order).Error)

	for _, name := range []string{"Paneer Tikka", "Dal Makhani", "Butter Naan"} {
		line := orderdomain.Line{
			ID:       node.Generate(),
			OrderID:  f.order.ID,
			ItemName: name,
			Quantity: 1, UnitPrice: 100,
			Status:    orderdomain.LinePending,
			CreatedAt: now,
		}
		require.NoError(t, db.Create(&line).Error)
		f.lines = append(f.lines, line)
	}
	return f
}

func (f *fixture) orderStatus(t *testing.T) orderdomain.Status {
	t.Helper()
	var order orderdomain.Order
	require.NoError(t, f.db.First(&order, "id = ?", f.order.ID).Error)
	return order.Status
}

func TestListBoard(t *testing.T) {
	f := newFixture(t)

	tickets, err := f.svc.ListBoard(context.Background(), kitchendomain.ListBoardRequest{})
	require.NoError(t, err)
	require.Len(t, tickets, 3)
	assert.Equal(t, "5", tickets[0].TableNumber)
	assert.Equal(t, "ORD-T5-260828-AAAAAA", tickets[0].OrderNumber)
	assert.Equal(t, orderdomain.LinePending, tickets[0].Status)
	assert.GreaterOrEqual(t, tickets[0].WaitMinutes, 5)
}

func TestStartPreparation_MovesOrderToPreparing(t *testing.T) {
	f := newFixture(t)

	ticket, err := f.svc.StartPreparation(context.Background(), f.lines[0].ID, "cook-1")
	require.NoError(t, err)
	assert.Equal(t, orderdomain.LinePreparing, ticket.Status)
	assert.Equal(t, "cook-1", ticket.AssignedCook)
	assert.NotNil(t, ticket.PrepStartedAt)

	// First line started pulls the whole order into preparing.
	assert.Equal(t, orderdomain.StatusPreparing, f.orderStatus(t))

	// Second start on the same line is rejected.
	_, err = f.svc.StartPreparation(context.Background(), f.lines[0].ID, "cook-2")
	assert.ErrorIs(t, err, kitchendomain.ErrInvalidLineMove)
}

func TestAggregation_AllReadyThenAllServed(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	for _, line := range f.lines {
		_, err := f.svc.StartPreparation(ctx, line.ID, "cook-1")
		require.NoError(t, err)
	}

	for i, line := range f.lines {
		_, err := f.svc.MarkReady(ctx, line.ID, "cook-1")
		require.NoError(t, err)
		if i < len(f.lines)-1 {
			assert.Equal(t, orderdomain.StatusPreparing, f.orderStatus(t), "order ready too early")
		}
	}
	// The last ready line flips the order.
	assert.Equal(t, orderdomain.StatusReady, f.orderStatus(t))

	for i, line := range f.lines {
		_, err := f.svc.MarkServed(ctx, line.ID, "w-1")
		require.NoError(t, err)
		if i < len(f.lines)-1 {
			assert.Equal(t, orderdomain.StatusReady, f.orderStatus(t), "order served too early")
		}
	}
	assert.Equal(t, orderdomain.StatusServed, f.orderStatus(t))
}

func TestAggregation_CancelledLinesDoNotCount(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.CancelLine(ctx, f.lines[2].ID, "cook-1")
	require.NoError(t, err)

	// Cancelling a line drops its money from the order totals.
	var order orderdomain.Order
	require.NoError(t, f.db.First(&order, "id = ?", f.order.ID).Error)
	assert.InDelta(t, 200.0, order.SubtotalAmount, 0.001)
	assert.InDelta(t, 200.0, order.TotalAmount, 0.001)

	for _, line := range f.lines[:2] {
		_, err := f.svc.StartPreparation(ctx, line.ID, "cook-1")
		require.NoError(t, err)
		_, err = f.svc.MarkReady(ctx, line.ID, "cook-1")
		require.NoError(t, err)
	}
	// Two live lines ready, one cancelled: the order is ready.
	assert.Equal(t, orderdomain.StatusReady, f.orderStatus(t))
}

func TestAggregation_AllLinesCancelledCancelsOrder(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	for _, line := range f.lines {
		_, err := f.svc.CancelLine(ctx, line.ID, "cook-1")
		require.NoError(t, err)
	}
	assert.Equal(t, orderdomain.StatusCancelled, f.orderStatus(t))
}

func TestLineMoves_InvalidTransitions(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	// Pending lines cannot be marked ready or served directly.
	_, err := f.svc.MarkReady(ctx, f.lines[0].ID, "cook-1")
	assert.ErrorIs(t, err, kitchendomain.ErrInvalidLineMove)
	_, err = f.svc.MarkServed(ctx, f.lines[0].ID, "w-1")
	assert.ErrorIs(t, err, kitchendomain.ErrInvalidLineMove)

	// Ready lines cannot be cancelled.
	_, err = f.svc.StartPreparation(ctx, f.lines[0].ID, "cook-1")
	require.NoError(t, err)
	_, err = f.svc.MarkReady(ctx, f.lines[0].ID, "cook-1")
	require.NoError(t, err)
	_, err = f.svc.CancelLine(ctx, f.lines[0].ID, "cook-1")
	assert.ErrorIs(t, err, kitchendomain.ErrInvalidLineMove)

	_, err = f.svc.MarkReady(ctx, f.node.Generate(), "cook-1")
	assert.ErrorIs(t, err, kitchendomain.ErrLineNotFound)
}

func TestServedLinesLeaveTheBoard(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.StartPreparation(ctx, f.lines[0].ID, "cook-1")
	require.NoError(t, err)
	_, err = f.svc.MarkReady(ctx, f.lines[0].ID, "cook-1")
	require.NoError(t, err)
	_, err = f.svc.MarkServed(ctx, f.lines[0].ID, "w-1")
	require.NoError(t, err)

	tickets, err := f.svc.ListBoard(ctx, kitchendomain.ListBoardRequest{})
	require.NoError(t, err)
	assert.Len(t, tickets, 2)
}
