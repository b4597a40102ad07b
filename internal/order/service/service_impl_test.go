package service

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/dineops/dineops/internal/events"
	menudomain "github.com/dineops/dineops/internal/menu/domain"
	"github.com/dineops/dineops/internal/observability/metrics"
	orderdomain "github.com/dineops/dineops/internal/order/domain"
	tabledomain "github.com/dineops/dineops/internal/table/domain"
	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var testMetrics = metrics.New()

type fixture struct {
	svc   orderdomain.Service
	db    *gorm.DB
	node  *snowflake.Node
	table tabledomain.Table
	chai  menudomain.Item
	dal   menudomain.Item
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file:"+t.Name()+"?mode=memory&cache=shared"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&menudomain.Category{},
		&menudomain.Item{},
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
			DB:      db,
			Log:     zap.NewNop(),
			GenID:   node,
			Events:  events.NewHub(),
			Metrics: testMetrics,
		}),
	}

	f.table = tabledomain.Table{
		ID:          node.Generate(),
		TableNumber: "5",
		Status:      tabledomain.StatusAvailable,
		IsActive:    true,
	}
	require.NoError(t, db.Create(&f.table).Error)

	category := menudomain.Category{ID: node.Generate(), Name: "All", IsActive: true}
	require.NoError(t, db.Create(&category).Error)

	f.chai = menudomain.Item{
		ID: node.Generate(), CategoryID: category.ID, Name: "Masala Chai",
		Price: 40, PreparationTime: 5,
		Availability: menudomain.AvailabilityAvailable, IsActive: true,
	}
	f.dal = menudomain.Item{
		ID: node.Generate(), CategoryID: category.ID, Name: "Dal Makhani",
		Price: 240, PreparationTime: 20,
		Availability: menudomain.AvailabilityAvailable, IsActive: true,
	}
	require.NoError(t, db.Create(&[]menudomain.Item{f.chai, f.dal}).Error)

	return f
}

func (f *fixture) placeOrder(t *testing.T) *orderdomain.Order {
	t.Helper()
	order, err := f.svc.PlaceOrder(context.Background(), orderdomain.PlaceOrderRequest{
		TableID: f.table.ID,
		Lines: []orderdomain.LineRequest{
			{MenuItemID: f.chai.ID, Quantity: 2},
			{MenuItemID: f.dal.ID, Quantity: 1},
		},
		Staff: "w-1",
	})
	require.NoError(t, err)
	return order
}

func TestPlaceOrder_AutoStartsSession(t *testing.T) {
	f := newFixture(t)
	order := f.placeOrder(t)

	assert.Equal(t, orderdomain.StatusPending, order.Status)
	assert.True(t, strings.HasPrefix(order.OrderNumber, "ORD-T5-"), "number %s", order.OrderNumber)
	assert.Len(t, order.Lines, 2)
	assert.InDelta(t, 320.0, order.SubtotalAmount, 0.001)
	assert.InDelta(t, 320.0, order.TotalAmount, 0.001)
	assert.Equal(t, 20, order.EstimatedPrepMinutes)

	var table tabledomain.Table
	require.NoError(t, f.db.First(&table, "id = ?", f.table.ID).Error)
	assert.Equal(t, tabledomain.StatusOccupied, table.Status)
	require.NotNil(t, table.CurrentSessionID)
	assert.Equal(t, order.SessionID, *table.CurrentSessionID)

	var session tabledomain.Session
	require.NoError(t, f.db.First(&session, "id = ?", order.SessionID).Error)
	assert.Equal(t, tabledomain.SessionActive, session.Status)
}

func TestPlaceOrder_ReusesActiveSession(t *testing.T) {
	f := newFixture(t)
	first := f.placeOrder(t)
	second := f.placeOrder(t)

	assert.Equal(t, first.SessionID, second.SessionID)
	assert.NotEqual(t, first.OrderNumber, second.OrderNumber)

	var sessions int64
	require.NoError(t, f.db.Model(&tabledomain.Session{}).Count(&sessions).Error)
	assert.EqualValues(t, 1, sessions)
}

func TestPlaceOrder_UnavailableItemRollsBack(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.db.Model(&menudomain.Item{}).
		Where("id = ?", f.dal.ID).
		Update("availability", menudomain.AvailabilityOutOfStock).Error)

	_, err := f.svc.PlaceOrder(context.Background(), orderdomain.PlaceOrderRequest{
		TableID: f.table.ID,
		Lines: []orderdomain.LineRequest{
			{MenuItemID: f.chai.ID, Quantity: 1},
			{MenuItemID: f.dal.ID, Quantity: 1},
		},
	})
	assert.ErrorIs(t, err, menudomain.ErrItemUnavailable)

	// Nothing was persisted, the table is still free.
	var orders, sessions int64
	require.NoError(t, f.db.Model(&orderdomain.Order{}).Count(&orders).Error)
	require.NoError(t, f.db.Model(&tabledomain.Session{}).Count(&sessions).Error)
	assert.Zero(t, orders)
	assert.Zero(t, sessions)

	var table tabledomain.Table
	require.NoError(t, f.db.First(&table, "id = ?", f.table.ID).Error)
	assert.Equal(t, tabledomain.StatusAvailable, table.Status)
}

func TestPlaceOrder_Validation(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.PlaceOrder(context.Background(), orderdomain.PlaceOrderRequest{TableID: f.table.ID})
	assert.ErrorIs(t, err, orderdomain.ErrEmptyOrder)

	_, err = f.svc.PlaceOrder(context.Background(), orderdomain.PlaceOrderRequest{
		TableID: f.table.ID,
		Lines:   []orderdomain.LineRequest{{MenuItemID: f.chai.ID, Quantity: 0}},
	})
	assert.ErrorIs(t, err, orderdomain.ErrInvalidQuantity)

	for _, pct := range []float64{-5, 150} {
		_, err = f.svc.PlaceOrder(context.Background(), orderdomain.PlaceOrderRequest{
			TableID:            f.table.ID,
			Lines:              []orderdomain.LineRequest{{MenuItemID: f.chai.ID, Quantity: 1}},
			DiscountPercentage: pct,
		})
		assert.ErrorIs(t, err, orderdomain.ErrInvalidDiscount, "%.0f%%", pct)
	}

	// Nothing was persisted by the rejected requests.
	var orders int64
	require.NoError(t, f.db.Model(&orderdomain.Order{}).Count(&orders).Error)
	assert.Zero(t, orders)
}

func TestPlaceOrder_PriceSnapshot(t *testing.T) {
	f := newFixture(t)
	order := f.placeOrder(t)

	require.NoError(t, f.db.Model(&menudomain.Item{}).
		Where("id = ?", f.chai.ID).
		Update("price", 99).Error)

	got, err := f.svc.GetOrder(context.Background(), order.ID)
	require.NoError(t, err)
	assert.InDelta(t, 320.0, got.TotalAmount, 0.001)
	for _, line := range got.Lines {
		if line.MenuItemID == f.chai.ID {
			assert.InDelta(t, 40.0, line.UnitPrice, 0.001)
		}
	}
}

func TestAddAndRemoveLine_RecomputeTotals(t *testing.T) {
	f := newFixture(t)
	order := f.placeOrder(t)

	got, err := f.svc.AddLine(context.Background(), order.ID, orderdomain.LineRequest{
		MenuItemID: f.chai.ID,
		Quantity:   1,
	})
	require.NoError(t, err)
	assert.Len(t, got.Lines, 3)
	assert.InDelta(t, 360.0, got.TotalAmount, 0.001)

	var removed snowflake.ID
	for _, line := range got.Lines {
		if line.MenuItemID == f.dal.ID {
			removed = line.ID
		}
	}
	got, err = f.svc.RemoveLine(context.Background(), order.ID, removed)
	require.NoError(t, err)
	assert.Len(t, got.Lines, 2)
	assert.InDelta(t, 120.0, got.TotalAmount, 0.001)
}

func TestRemoveLine_AlreadyInKitchen(t *testing.T) {
	f := newFixture(t)
	order := f.placeOrder(t)

	line := order.Lines[0]
	require.NoError(t, f.db.Model(&orderdomain.Line{}).
		Where("id = ?", line.ID).
		Update("status", orderdomain.LinePreparing).Error)

	_, err := f.svc.RemoveLine(context.Background(), order.ID, line.ID)
	assert.ErrorIs(t, err, orderdomain.ErrLineNotRetractable)
}

func TestConfirmOrder(t *testing.T) {
	f := newFixture(t)
	order := f.placeOrder(t)

	got, err := f.svc.ConfirmOrder(context.Background(), order.ID, "w-1")
	require.NoError(t, err)
	assert.Equal(t, orderdomain.StatusConfirmed, got.Status)
	assert.Equal(t, "w-1", got.ConfirmedBy)
	assert.NotNil(t, got.ConfirmedAt)

	// A confirmed order cannot be edited or re-confirmed.
	_, err = f.svc.ConfirmOrder(context.Background(), order.ID, "w-1")
	assert.ErrorIs(t, err, orderdomain.ErrInvalidTransition)

	_, err = f.svc.AddLine(context.Background(), order.ID, orderdomain.LineRequest{MenuItemID: f.chai.ID, Quantity: 1})
	assert.ErrorIs(t, err, orderdomain.ErrOrderNotEditable)
}

func TestTransitionOrder_AggregatedStatesRejected(t *testing.T) {
	f := newFixture(t)
	order := f.placeOrder(t)

	_, err := f.svc.TransitionOrder(context.Background(), order.ID, orderdomain.StatusReady, "w-1")
	assert.ErrorIs(t, err, orderdomain.ErrAggregatedStatus)

	_, err = f.svc.TransitionOrder(context.Background(), order.ID, orderdomain.StatusServed, "w-1")
	assert.ErrorIs(t, err, orderdomain.ErrAggregatedStatus)
}

func TestTransitionOrder_ForwardOnly(t *testing.T) {
	f := newFixture(t)
	order := f.placeOrder(t)

	// pending → preparing skips confirmed.
	_, err := f.svc.TransitionOrder(context.Background(), order.ID, orderdomain.StatusPreparing, "w-1")
	assert.ErrorIs(t, err, orderdomain.ErrInvalidTransition)

	got, err := f.svc.TransitionOrder(context.Background(), order.ID, orderdomain.StatusConfirmed, "w-1")
	require.NoError(t, err)
	assert.Equal(t, orderdomain.StatusConfirmed, got.Status)
}

func TestTransitionOrder_CancelCancelsLines(t *testing.T) {
	f := newFixture(t)
	order := f.placeOrder(t)

	got, err := f.svc.TransitionOrder(context.Background(), order.ID, orderdomain.StatusCancelled, "m-1")
	require.NoError(t, err)
	assert.Equal(t, orderdomain.StatusCancelled, got.Status)
	assert.NotNil(t, got.CancelledAt)
	for _, line := range got.Lines {
		assert.Equal(t, orderdomain.LineCancelled, line.Status)
	}

	_, err = f.svc.TransitionOrder(context.Background(), order.ID, orderdomain.StatusCancelled, "m-1")
	assert.ErrorIs(t, err, orderdomain.ErrInvalidTransition)
}

func TestDraftOrder(t *testing.T) {
	f := newFixture(t)
	order, err := f.svc.PlaceOrder(context.Background(), orderdomain.PlaceOrderRequest{
		TableID: f.table.ID,
		Lines:   []orderdomain.LineRequest{{MenuItemID: f.chai.ID, Quantity: 1}},
		Draft:   true,
	})
	require.NoError(t, err)
	assert.Equal(t, orderdomain.StatusDraft, order.Status)

	// Drafts must pass through pending before confirmation.
	_, err = f.svc.ConfirmOrder(context.Background(), order.ID, "w-1")
	assert.ErrorIs(t, err, orderdomain.ErrInvalidTransition)

	got, err := f.svc.TransitionOrder(context.Background(), order.ID, orderdomain.StatusPending, "w-1")
	require.NoError(t, err)
	assert.Equal(t, orderdomain.StatusPending, got.Status)
}

func TestNewOrderNumber(t *testing.T) {
	number := NewOrderNumber("5", time.Date(2026, 8, 28, 12, 0, 0, 0, time.UTC))
	parts := strings.Split(number, "-")
	require.Len(t, parts, 4)
	assert.Equal(t, "ORD", parts[0])
	assert.Equal(t, "T5", parts[1])
	assert.Equal(t, "260828", parts[2])
	assert.Len(t, parts[3], 6)
}
