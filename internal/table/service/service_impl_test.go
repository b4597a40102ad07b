package service

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/dineops/dineops/internal/events"
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

func newTestService(t *testing.T) (tabledomain.Service, *gorm.DB, *snowflake.Node) {
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

	svc := NewService(Params{
		DB:      db,
		Log:     zap.NewNop(),
		GenID:   node,
		Events:  events.NewHub(),
		Metrics: testMetrics,
	})
	return svc, db, node
}

func createTable(t *testing.T, svc tabledomain.Service, number string) *tabledomain.Table {
	t.Helper()
	table, err := svc.CreateTable(context.Background(), tabledomain.CreateTableRequest{
		TableNumber:     number,
		SeatingCapacity: 4,
	})
	require.NoError(t, err)
	return table
}

func TestCreateTable_DuplicateNumber(t *testing.T) {
	svc, _, _ := newTestService(t)
	createTable(t, svc, "5")

	_, err := svc.CreateTable(context.Background(), tabledomain.CreateTableRequest{
		TableNumber: "5",
	})
	assert.ErrorIs(t, err, tabledomain.ErrTableNumberTaken)
}

func TestStartSession_OccupiesTable(t *testing.T) {
	svc, _, _ := newTestService(t)
	table := createTable(t, svc, "5")

	session, err := svc.StartSession(context.Background(), tabledomain.StartSessionRequest{
		TableID:   table.ID,
		PartySize: 3,
		Staff:     "w-1",
	})
	require.NoError(t, err)
	assert.Equal(t, tabledomain.SessionActive, session.Status)
	assert.Equal(t, 3, session.PartySize)
	assert.True(t, strings.HasPrefix(session.Code, "T5-"), "code %s", session.Code)

	got, err := svc.GetTable(context.Background(), table.ID)
	require.NoError(t, err)
	assert.Equal(t, tabledomain.StatusOccupied, got.Status)
	require.NotNil(t, got.CurrentSessionID)
	assert.Equal(t, session.ID, *got.CurrentSessionID)
	assert.NotNil(t, got.LastOccupiedAt)

	active, err := svc.ActiveSession(context.Background(), table.ID)
	require.NoError(t, err)
	assert.Equal(t, session.ID, active.ID)
}

func TestStartSession_TableAlreadyOccupied(t *testing.T) {
	svc, _, _ := newTestService(t)
	table := createTable(t, svc, "5")

	_, err := svc.StartSession(context.Background(), tabledomain.StartSessionRequest{TableID: table.ID, PartySize: 2})
	require.NoError(t, err)

	_, err = svc.StartSession(context.Background(), tabledomain.StartSessionRequest{TableID: table.ID, PartySize: 2})
	assert.ErrorIs(t, err, tabledomain.ErrTableNotAvailable)
}

func TestStartSession_Validation(t *testing.T) {
	svc, _, node := newTestService(t)

	_, err := svc.StartSession(context.Background(), tabledomain.StartSessionRequest{TableID: node.Generate(), PartySize: 0})
	assert.ErrorIs(t, err, tabledomain.ErrInvalidPartySize)

	_, err = svc.StartSession(context.Background(), tabledomain.StartSessionRequest{TableID: node.Generate(), PartySize: 2})
	assert.ErrorIs(t, err, tabledomain.ErrTableNotFound)
}

func TestChangeStatus_SideBranchesOnly(t *testing.T) {
	svc, _, _ := newTestService(t)
	table := createTable(t, svc, "7")

	got, err := svc.ChangeStatus(context.Background(), table.ID, tabledomain.StatusCleaning, "m-1")
	require.NoError(t, err)
	assert.Equal(t, tabledomain.StatusCleaning, got.Status)

	// A cleaning table cannot be occupied via session start.
	_, err = svc.StartSession(context.Background(), tabledomain.StartSessionRequest{TableID: table.ID, PartySize: 2})
	assert.ErrorIs(t, err, tabledomain.ErrTableNotAvailable)

	got, err = svc.ChangeStatus(context.Background(), table.ID, tabledomain.StatusAvailable, "m-1")
	require.NoError(t, err)
	assert.Equal(t, tabledomain.StatusAvailable, got.Status)

	_, err = svc.ChangeStatus(context.Background(), table.ID, tabledomain.StatusOccupied, "m-1")
	assert.ErrorIs(t, err, tabledomain.ErrInvalidStatus)
}

func TestChangeStatus_OccupiedToBilling(t *testing.T) {
	svc, _, _ := newTestService(t)
	table := createTable(t, svc, "7")

	_, err := svc.StartSession(context.Background(), tabledomain.StartSessionRequest{TableID: table.ID, PartySize: 2})
	require.NoError(t, err)

	_, err = svc.ChangeStatus(context.Background(), table.ID, tabledomain.StatusCleaning, "m-1")
	assert.ErrorIs(t, err, tabledomain.ErrInvalidTransition)

	got, err := svc.ChangeStatus(context.Background(), table.ID, tabledomain.StatusBilling, "m-1")
	require.NoError(t, err)
	assert.Equal(t, tabledomain.StatusBilling, got.Status)
}

func TestCancelSession_FreesTableAndCancelsOrders(t *testing.T) {
	svc, db, node := newTestService(t)
	table := createTable(t, svc, "3")

	session, err := svc.StartSession(context.Background(), tabledomain.StartSessionRequest{TableID: table.ID, PartySize: 2})
	require.NoError(t, err)

	order := orderdomain.Order{
		ID:          node.Generate(),
		OrderNumber: "ORD-T3-000001",
		SessionID:   session.ID,
		TableID:     table.ID,
		Status:      orderdomain.StatusPending,
		CreatedAt:   time.Now().UTC(),
	}
	require.NoError(t, db.Create(&order).Error)
	line := orderdomain.Line{
		ID:       node.Generate(),
		OrderID:  order.ID,
		ItemName: "Masala Chai",
		Quantity: 2, UnitPrice: 40,
		Status:    orderdomain.LinePending,
		CreatedAt: time.Now().UTC(),
	}
	require.NoError(t, db.Create(&line).Error)

	require.NoError(t, svc.CancelSession(context.Background(), session.ID, "walked out", "m-1"))

	got, err := svc.GetTable(context.Background(), table.ID)
	require.NoError(t, err)
	assert.Equal(t, tabledomain.StatusAvailable, got.Status)
	assert.Nil(t, got.CurrentSessionID)

	cancelled, err := svc.GetSession(context.Background(), session.ID)
	require.NoError(t, err)
	assert.Equal(t, tabledomain.SessionCancelled, cancelled.Status)

	var gotOrder orderdomain.Order
	require.NoError(t, db.First(&gotOrder, "id = ?", order.ID).Error)
	assert.Equal(t, orderdomain.StatusCancelled, gotOrder.Status)

	var gotLine orderdomain.Line
	require.NoError(t, db.First(&gotLine, "id = ?", line.ID).Error)
	assert.Equal(t, orderdomain.LineCancelled, gotLine.Status)

	// Cancelling twice is rejected.
	err = svc.CancelSession(context.Background(), session.ID, "", "m-1")
	assert.ErrorIs(t, err, tabledomain.ErrSessionNotActive)
}

func TestCancelSession_BlockedByKitchenProgress(t *testing.T) {
	svc, db, node := newTestService(t)
	table := createTable(t, svc, "4")

	session, err := svc.StartSession(context.Background(), tabledomain.StartSessionRequest{TableID: table.ID, PartySize: 2})
	require.NoError(t, err)

	order := orderdomain.Order{
		ID:          node.Generate(),
		OrderNumber: "ORD-T4-000001",
		SessionID:   session.ID,
		TableID:     table.ID,
		Status:      orderdomain.StatusPreparing,
		CreatedAt:   time.Now().UTC(),
	}
	require.NoError(t, db.Create(&order).Error)

	err = svc.CancelSession(context.Background(), session.ID, "", "m-1")
	assert.ErrorIs(t, err, tabledomain.ErrSessionHasProgress)

	got, err := svc.GetTable(context.Background(), table.ID)
	require.NoError(t, err)
	assert.Equal(t, tabledomain.StatusOccupied, got.Status)
}

func TestNewSessionCode(t *testing.T) {
	code := NewSessionCode("12", time.Date(2026, 8, 28, 19, 30, 0, 0, time.UTC))
	parts := strings.Split(code, "-")
	require.Len(t, parts, 3)
	assert.Equal(t, "T12", parts[0])
	assert.Equal(t, "260828", parts[1])
	assert.Len(t, parts[2], 6)
}
