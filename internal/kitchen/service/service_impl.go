package service

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/dineops/dineops/internal/events"
	kitchendomain "github.com/dineops/dineops/internal/kitchen/domain"
	orderdomain "github.com/dineops/dineops/internal/order/domain"
	orderservice "github.com/dineops/dineops/internal/order/service"
	tabledomain "github.com/dineops/dineops/internal/table/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB     *gorm.DB
	Log    *zap.Logger
	Events events.Publisher
}

type Service struct {
	db     *gorm.DB
	log    *zap.Logger
	events events.Publisher
}

func NewService(p Params) kitchendomain.Service {
	return &Service{
		db:     p.DB,
		log:    p.Log.Named("kitchen.service"),
		events: p.Events,
	}
}

// Orders in these states have lines on the board. Draft and pending
// orders have not been dispatched yet, served and later ones are done.
var boardOrderStatuses = []orderdomain.Status{
	orderdomain.StatusConfirmed,
	orderdomain.StatusPreparing,
	orderdomain.StatusReady,
}

func (s *Service) ListBoard(ctx context.Context, req kitchendomain.ListBoardRequest) ([]kitchendomain.Ticket, error) {
	var orders []orderdomain.Order
	query := s.db.WithContext(ctx).Preload("Lines").
		Where("status IN ?", boardOrderStatuses)
	if req.TableID != nil {
		query = query.Where("table_id = ?", *req.TableID)
	}
	if err := query.Order("created_at").Find(&orders).Error; err != nil {
		return nil, err
	}

	tables, err := s.tablesByID(ctx, orders)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	tickets := make([]kitchendomain.Ticket, 0)
	for _, order := range orders {
		for _, line := range order.Lines {
			if line.Status == orderdomain.LineCancelled || line.Status == orderdomain.LineServed {
				continue
			}
			if req.Status != nil && line.Status != *req.Status {
				continue
			}
			if req.Cook != "" && line.AssignedCook != req.Cook {
				continue
			}
			tickets = append(tickets, buildTicket(order, line, tables[order.TableID], now))
		}
	}
	return tickets, nil
}

// StartPreparation claims a pending line for a cook and, for the first
// line of the order, moves the order itself to preparing.
func (s *Service) StartPreparation(ctx context.Context, lineID snowflake.ID, cook string) (*kitchendomain.Ticket, error) {
	return s.moveLine(ctx, lineID, orderdomain.LinePreparing, cook)
}

func (s *Service) MarkReady(ctx context.Context, lineID snowflake.ID, staff string) (*kitchendomain.Ticket, error) {
	return s.moveLine(ctx, lineID, orderdomain.LineReady, staff)
}

func (s *Service) MarkServed(ctx context.Context, lineID snowflake.ID, staff string) (*kitchendomain.Ticket, error) {
	return s.moveLine(ctx, lineID, orderdomain.LineServed, staff)
}

func (s *Service) CancelLine(ctx context.Context, lineID snowflake.ID, staff string) (*kitchendomain.Ticket, error) {
	return s.moveLine(ctx, lineID, orderdomain.LineCancelled, staff)
}

// moveLine performs one compare-and-set line transition and then
// re-derives the owning order's status from the full line set. Order
// ready and served states are only ever written here.
func (s *Service) moveLine(ctx context.Context, lineID snowflake.ID, to orderdomain.LineStatus, actor string) (*kitchendomain.Ticket, error) {
	var (
		orderID     snowflake.ID
		orderStatus orderdomain.Status
	)
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var line orderdomain.Line
		if err := tx.Where("id = ?", lineID).First(&line).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				return kitchendomain.ErrLineNotFound
			}
			return err
		}
		if !orderdomain.CanTransitionLine(line.Status, to) {
			return kitchendomain.ErrInvalidLineMove
		}
		orderID = line.OrderID

		var order orderdomain.Order
		if err := tx.Where("id = ?", line.OrderID).First(&order).Error; err != nil {
			return err
		}
		if to == orderdomain.LinePreparing &&
			order.Status != orderdomain.StatusConfirmed && order.Status != orderdomain.StatusPreparing {
			return kitchendomain.ErrInvalidLineMove
		}

		now := time.Now().UTC()
		updates := map[string]any{"status": to}
		switch to {
		case orderdomain.LinePreparing:
			updates["assigned_cook"] = actor
			updates["prep_started_at"] = now
		case orderdomain.LineReady:
			updates["ready_at"] = now
		case orderdomain.LineServed:
			updates["served_at"] = now
		}

		res := tx.Model(&orderdomain.Line{}).
			Where("id = ? AND status = ?", lineID, line.Status).
			Updates(updates)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return kitchendomain.ErrInvalidLineMove
		}

		// A cancelled line must stop counting toward the order total,
		// or the bill would charge for it.
		if to == orderdomain.LineCancelled {
			if err := orderservice.RecomputeTotalsTx(ctx, tx, &order); err != nil {
				return err
			}
		}

		status, err := s.aggregateOrderTx(ctx, tx, &order, actor, now)
		if err != nil {
			return err
		}
		orderStatus = status
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.events.Publish(events.TypeKitchenChanged, map[string]any{
		"line_id":      lineID.String(),
		"order_id":     orderID.String(),
		"line_status":  string(to),
		"order_status": string(orderStatus),
		"staff":        actor,
	})
	return s.ticket(ctx, lineID)
}

// aggregateOrderTx derives the order's status from its lines after a
// line move:
//
//   - no live lines left: the order is cancelled
//   - every live line served: the order is served
//   - every live line at least ready: the order is ready
//   - any line being worked while the order is still confirmed: preparing
//
// Returns the order's status after aggregation.
func (s *Service) aggregateOrderTx(ctx context.Context, tx *gorm.DB, order *orderdomain.Order, actor string, now time.Time) (orderdomain.Status, error) {
	var lines []orderdomain.Line
	if err := tx.WithContext(ctx).Where("order_id = ?", order.ID).Find(&lines).Error; err != nil {
		return order.Status, err
	}

	var live, ready, served, started int
	for _, line := range lines {
		switch line.Status {
		case orderdomain.LineCancelled:
			continue
		case orderdomain.LineServed:
			served++
			ready++
			started++
		case orderdomain.LineReady:
			ready++
			started++
		case orderdomain.LinePreparing:
			started++
		}
		if line.Status != orderdomain.LineCancelled {
			live++
		}
	}

	target := order.Status
	updates := map[string]any{}
	switch {
	case live == 0:
		target = orderdomain.StatusCancelled
		updates["cancelled_at"] = now
	case served == live && order.Status != orderdomain.StatusServed:
		target = orderdomain.StatusServed
		updates["served_by"] = actor
		updates["served_at"] = now
	case served < live && ready == live && order.Status != orderdomain.StatusReady:
		target = orderdomain.StatusReady
		updates["ready_at"] = now
	case started > 0 && order.Status == orderdomain.StatusConfirmed:
		target = orderdomain.StatusPreparing
		updates["prepared_by"] = actor
		updates["preparation_started_at"] = now
	}
	if target == order.Status {
		return order.Status, nil
	}

	updates["status"] = target
	res := tx.Model(&orderdomain.Order{}).
		Where("id = ? AND status = ?", order.ID, order.Status).
		Updates(updates)
	if res.Error != nil {
		return order.Status, res.Error
	}
	if res.RowsAffected == 0 {
		// Lost the race to a concurrent line move; its aggregation
		// already accounted for this line's new status.
		return order.Status, nil
	}
	return target, nil
}

func (s *Service) ticket(ctx context.Context, lineID snowflake.ID) (*kitchendomain.Ticket, error) {
	var line orderdomain.Line
	if err := s.db.WithContext(ctx).Where("id = ?", lineID).First(&line).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, kitchendomain.ErrLineNotFound
		}
		return nil, err
	}
	var order orderdomain.Order
	if err := s.db.WithContext(ctx).Where("id = ?", line.OrderID).First(&order).Error; err != nil {
		return nil, err
	}
	var table tabledomain.Table
	if err := s.db.WithContext(ctx).Where("id = ?", order.TableID).First(&table).Error; err != nil {
		return nil, err
	}

	ticket := buildTicket(order, line, table.TableNumber, time.Now().UTC())
	return &ticket, nil
}

func (s *Service) tablesByID(ctx context.Context, orders []orderdomain.Order) (map[snowflake.ID]string, error) {
	ids := make([]snowflake.ID, 0, len(orders))
	seen := make(map[snowflake.ID]bool, len(orders))
	for _, order := range orders {
		if !seen[order.TableID] {
			seen[order.TableID] = true
			ids = append(ids, order.TableID)
		}
	}
	if len(ids) == 0 {
		return map[snowflake.ID]string{}, nil
	}

	var tables []tabledomain.Table
	if err := s.db.WithContext(ctx).Where("id IN ?", ids).Find(&tables).Error; err != nil {
		return nil, err
	}
	numbers := make(map[snowflake.ID]string, len(tables))
	for _, table := range tables {
		numbers[table.ID] = table.TableNumber
	}
	return numbers, nil
}

func buildTicket(order orderdomain.Order, line orderdomain.Line, tableNumber string, now time.Time) kitchendomain.Ticket {
	customizations := make(map[string]any, len(line.Customizations))
	for k, v := range line.Customizations {
		customizations[k] = v
	}
	return kitchendomain.Ticket{
		LineID:         line.ID,
		OrderID:        order.ID,
		OrderNumber:    order.OrderNumber,
		TableNumber:    tableNumber,
		ItemName:       line.ItemName,
		Quantity:       line.Quantity,
		Status:         line.Status,
		Priority:       order.Priority,
		Urgency:        order.UrgencyLevel(now),
		WaitMinutes:    order.WaitMinutes(now),
		Customizations: customizations,
		Instructions:   line.Instructions,
		AssignedCook:   line.AssignedCook,
		PrepStartedAt:  line.PrepStartedAt,
		ReadyAt:        line.ReadyAt,
	}
}
