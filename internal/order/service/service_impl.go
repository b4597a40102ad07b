package service

import (
	"context"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/dineops/dineops/internal/events"
	menudomain "github.com/dineops/dineops/internal/menu/domain"
	"github.com/dineops/dineops/internal/observability/metrics"
	orderdomain "github.com/dineops/dineops/internal/order/domain"
	tabledomain "github.com/dineops/dineops/internal/table/domain"
	tableservice "github.com/dineops/dineops/internal/table/service"
	"github.com/dineops/dineops/pkg/repository"
	"github.com/google/uuid"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB      *gorm.DB
	Log     *zap.Logger
	GenID   *snowflake.Node
	Events  events.Publisher
	Metrics *metrics.Metrics
}

type Service struct {
	db      *gorm.DB
	log     *zap.Logger
	genID   *snowflake.Node
	events  events.Publisher
	metrics *metrics.Metrics

	orderrepo repository.Repository[orderdomain.Order]
	linerepo  repository.Repository[orderdomain.Line]
	itemrepo  repository.Repository[menudomain.Item]
}

func NewService(p Params) orderdomain.Service {
	return &Service{
		db:      p.DB,
		log:     p.Log.Named("order.service"),
		genID:   p.GenID,
		events:  p.Events,
		metrics: p.Metrics,

		orderrepo: repository.ProvideStore[orderdomain.Order](p.DB),
		linerepo:  repository.ProvideStore[orderdomain.Line](p.DB),
		itemrepo:  repository.ProvideStore[menudomain.Item](p.DB),
	}
}

// PlaceOrder creates an order with all its lines atomically. Placing the
// first order against an available table opens the session and occupies
// the table; this is the only order path that mutates table status.
func (s *Service) PlaceOrder(ctx context.Context, req orderdomain.PlaceOrderRequest) (*orderdomain.Order, error) {
	if len(req.Lines) == 0 {
		return nil, orderdomain.ErrEmptyOrder
	}
	for _, line := range req.Lines {
		if line.Quantity <= 0 {
			return nil, orderdomain.ErrInvalidQuantity
		}
	}
	if req.DiscountPercentage < 0 || req.DiscountPercentage > 100 {
		return nil, orderdomain.ErrInvalidDiscount
	}

	var (
		order          *orderdomain.Order
		startedSession *tabledomain.Session
	)
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		session, err := s.activeSessionTx(ctx, tx, req.TableID)
		if err != nil {
			return err
		}
		if session == nil {
			partySize := req.CustomerCount
			if partySize <= 0 {
				partySize = 1
			}
			session, err = tableservice.StartSessionTx(ctx, tx, s.genID, req.TableID, partySize, req.Staff)
			if err != nil {
				return err
			}
			startedSession = session
		}
		if session.Status != tabledomain.SessionActive {
			return tabledomain.ErrSessionNotActive
		}

		var table tabledomain.Table
		if err := tx.Where("id = ?", req.TableID).First(&table).Error; err != nil {
			return err
		}

		now := time.Now().UTC()
		status := orderdomain.StatusPending
		if req.Draft {
			status = orderdomain.StatusDraft
		}
		order = &orderdomain.Order{
			ID:                   s.genID.Generate(),
			OrderNumber:          NewOrderNumber(table.TableNumber, now),
			SessionID:            session.ID,
			TableID:              req.TableID,
			Status:               status,
			Priority:             defaultPriority(req.Priority),
			Source:               defaultSource(req.Source),
			CustomerName:         defaultCustomerName(req.CustomerName),
			CustomerCount:        max(req.CustomerCount, 1),
			SpecialInstructions:  strings.TrimSpace(req.SpecialInstructions),
			DiscountPercentage:   req.DiscountPercentage,
			EstimatedPrepMinutes: 15,
			CreatedBy:            req.Staff,
			CreatedAt:            now,
		}

		lines := make([]*orderdomain.Line, 0, len(req.Lines))
		for _, lineReq := range req.Lines {
			line, prepTime, err := s.buildLineTx(ctx, tx, order.ID, lineReq, now)
			if err != nil {
				return err
			}
			if prepTime > order.EstimatedPrepMinutes {
				order.EstimatedPrepMinutes = prepTime
			}
			lines = append(lines, line)
		}

		applyTotals(order, lines)

		if err := s.orderrepo.WithTrx(tx).Create(ctx, order); err != nil {
			return err
		}
		if err := s.linerepo.WithTrx(tx).BatchCreate(ctx, lines); err != nil {
			return err
		}
		order.Lines = make([]orderdomain.Line, 0, len(lines))
		for _, line := range lines {
			order.Lines = append(order.Lines, *line)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.metrics.OrdersPlaced.Inc()
	if startedSession != nil {
		s.metrics.SessionsStarted.Inc()
		s.events.Publish(events.TypeSessionStarted, map[string]any{
			"session_id": startedSession.ID.String(),
			"code":       startedSession.Code,
			"table_id":   startedSession.TableID.String(),
			"staff":      req.Staff,
		})
	}
	s.events.Publish(events.TypeOrderPlaced, map[string]any{
		"order_id":     order.ID.String(),
		"order_number": order.OrderNumber,
		"session_id":   order.SessionID.String(),
		"table_id":     order.TableID.String(),
		"total":        order.TotalAmount,
		"staff":        req.Staff,
	})
	s.log.Info("order placed",
		zap.String("order", order.OrderNumber),
		zap.Int("lines", len(order.Lines)),
		zap.Float64("total", order.TotalAmount),
	)
	return order, nil
}

func (s *Service) GetOrder(ctx context.Context, id snowflake.ID) (*orderdomain.Order, error) {
	var order orderdomain.Order
	err := s.db.WithContext(ctx).Preload("Lines").Where("id = ?", id).First(&order).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, orderdomain.ErrOrderNotFound
		}
		return nil, err
	}
	return &order, nil
}

func (s *Service) ListOrders(ctx context.Context, req orderdomain.ListOrdersRequest) ([]orderdomain.Order, error) {
	filter := &orderdomain.Order{}
	if req.SessionID != nil {
		filter.SessionID = *req.SessionID
	}
	if req.TableID != nil {
		filter.TableID = *req.TableID
	}
	if req.Status != nil {
		filter.Status = *req.Status
	}

	var orders []orderdomain.Order
	err := s.db.WithContext(ctx).Preload("Lines").Where(filter).
		Order("created_at").Find(&orders).Error
	if err != nil {
		return nil, err
	}
	return orders, nil
}

func (s *Service) AddLine(ctx context.Context, orderID snowflake.ID, req orderdomain.LineRequest) (*orderdomain.Order, error) {
	if req.Quantity <= 0 {
		return nil, orderdomain.ErrInvalidQuantity
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		order, err := s.orderForUpdateTx(ctx, tx, orderID)
		if err != nil {
			return err
		}
		if order.Status != orderdomain.StatusDraft && order.Status != orderdomain.StatusPending {
			return orderdomain.ErrOrderNotEditable
		}

		line, _, err := s.buildLineTx(ctx, tx, orderID, req, time.Now().UTC())
		if err != nil {
			return err
		}
		if err := s.linerepo.WithTrx(tx).Create(ctx, line); err != nil {
			return err
		}
		return RecomputeTotalsTx(ctx, tx, order)
	})
	if err != nil {
		return nil, err
	}
	return s.GetOrder(ctx, orderID)
}

func (s *Service) RemoveLine(ctx context.Context, orderID, lineID snowflake.ID) (*orderdomain.Order, error) {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		order, err := s.orderForUpdateTx(ctx, tx, orderID)
		if err != nil {
			return err
		}
		if order.Status != orderdomain.StatusDraft && order.Status != orderdomain.StatusPending {
			return orderdomain.ErrOrderNotEditable
		}

		var line orderdomain.Line
		if err := tx.Where("id = ? AND order_id = ?", lineID, orderID).First(&line).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				return orderdomain.ErrLineNotFound
			}
			return err
		}
		if line.Status != orderdomain.LinePending {
			return orderdomain.ErrLineNotRetractable
		}

		if err := tx.Delete(&orderdomain.Line{}, "id = ?", lineID).Error; err != nil {
			return err
		}
		return RecomputeTotalsTx(ctx, tx, order)
	})
	if err != nil {
		return nil, err
	}
	return s.GetOrder(ctx, orderID)
}

// ConfirmOrder moves pending → confirmed and dispatches the order's
// lines to the kitchen board. An order with no live lines cannot be
// confirmed.
func (s *Service) ConfirmOrder(ctx context.Context, orderID snowflake.ID, staff string) (*orderdomain.Order, error) {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var live int64
		if err := tx.Model(&orderdomain.Line{}).
			Where("order_id = ? AND status <> ?", orderID, orderdomain.LineCancelled).
			Count(&live).Error; err != nil {
			return err
		}

		now := time.Now().UTC()
		res := tx.Model(&orderdomain.Order{}).
			Where("id = ? AND status = ?", orderID, orderdomain.StatusPending).
			Updates(map[string]any{
				"status":       orderdomain.StatusConfirmed,
				"confirmed_by": staff,
				"confirmed_at": now,
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			if _, err := s.orderForUpdateTx(ctx, tx, orderID); err != nil {
				return err
			}
			return orderdomain.ErrInvalidTransition
		}
		if live == 0 {
			return orderdomain.ErrEmptyOrder
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	order, err := s.GetOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	s.events.Publish(events.TypeOrderConfirmed, map[string]any{
		"order_id":     order.ID.String(),
		"order_number": order.OrderNumber,
		"table_id":     order.TableID.String(),
		"lines":        len(order.Lines),
		"staff":        staff,
	})
	return order, nil
}

// TransitionOrder advances an order one step through the forward graph,
// or cancels it. Ready and served are reserved for the kitchen board's
// line aggregation and cannot be set here.
func (s *Service) TransitionOrder(ctx context.Context, orderID snowflake.ID, to orderdomain.Status, staff string) (*orderdomain.Order, error) {
	if to == orderdomain.StatusReady || to == orderdomain.StatusServed {
		return nil, orderdomain.ErrAggregatedStatus
	}
	if to == orderdomain.StatusConfirmed {
		return s.ConfirmOrder(ctx, orderID, staff)
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		order, err := s.orderForUpdateTx(ctx, tx, orderID)
		if err != nil {
			return err
		}
		if !orderdomain.CanTransition(order.Status, to) {
			return orderdomain.ErrInvalidTransition
		}

		now := time.Now().UTC()
		updates := map[string]any{"status": to}
		switch to {
		case orderdomain.StatusPreparing:
			updates["prepared_by"] = staff
			updates["preparation_started_at"] = now
		case orderdomain.StatusCompleted:
			updates["completed_at"] = now
		case orderdomain.StatusCancelled:
			updates["cancelled_at"] = now
		}

		res := tx.Model(&orderdomain.Order{}).
			Where("id = ? AND status = ?", orderID, order.Status).
			Updates(updates)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return orderdomain.ErrInvalidTransition
		}

		if to == orderdomain.StatusCancelled {
			return tx.Model(&orderdomain.Line{}).
				Where("order_id = ? AND status IN ?", orderID,
					[]orderdomain.LineStatus{orderdomain.LinePending, orderdomain.LinePreparing}).
				Update("status", orderdomain.LineCancelled).Error
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if to == orderdomain.StatusCancelled {
		s.metrics.OrdersCancelled.Inc()
	}
	order, err := s.GetOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	s.events.Publish(events.TypeOrderChanged, map[string]any{
		"order_id":     order.ID.String(),
		"order_number": order.OrderNumber,
		"status":       string(order.Status),
		"staff":        staff,
	})
	return order, nil
}

func (s *Service) activeSessionTx(ctx context.Context, tx *gorm.DB, tableID snowflake.ID) (*tabledomain.Session, error) {
	var session tabledomain.Session
	err := tx.WithContext(ctx).
		Where("table_id = ? AND status = ?", tableID, tabledomain.SessionActive).
		First(&session).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &session, nil
}

func (s *Service) orderForUpdateTx(ctx context.Context, tx *gorm.DB, orderID snowflake.ID) (*orderdomain.Order, error) {
	var order orderdomain.Order
	if err := tx.WithContext(ctx).Where("id = ?", orderID).First(&order).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, orderdomain.ErrOrderNotFound
		}
		return nil, err
	}
	return &order, nil
}

// buildLineTx validates one requested line against the catalog and
// snapshots its name and unit price at this instant.
func (s *Service) buildLineTx(ctx context.Context, tx *gorm.DB, orderID snowflake.ID, req orderdomain.LineRequest, now time.Time) (*orderdomain.Line, int, error) {
	if req.Quantity <= 0 {
		return nil, 0, orderdomain.ErrInvalidQuantity
	}

	item, err := s.itemrepo.WithTrx(tx).FindOne(ctx, &menudomain.Item{ID: req.MenuItemID})
	if err != nil {
		return nil, 0, err
	}
	if item == nil {
		return nil, 0, menudomain.ErrNotFound
	}
	if !item.Orderable() {
		return nil, 0, menudomain.ErrItemUnavailable
	}

	customizations := datatypes.JSONMap{}
	for k, v := range req.Customizations {
		customizations[k] = v
	}

	return &orderdomain.Line{
		ID:             s.genID.Generate(),
		OrderID:        orderID,
		MenuItemID:     item.ID,
		ItemName:       item.Name,
		Quantity:       req.Quantity,
		UnitPrice:      item.Price,
		Status:         orderdomain.LinePending,
		Customizations: customizations,
		Instructions:   strings.TrimSpace(req.Instructions),
		CreatedAt:      now,
	}, item.PreparationTime, nil
}

// RecomputeTotalsTx rebuilds order totals from the full current line
// set inside an open transaction. Repeated calls on the same lines
// yield identical amounts. The kitchen board calls this when a line is
// cancelled so the billed total tracks the surviving lines.
func RecomputeTotalsTx(ctx context.Context, tx *gorm.DB, order *orderdomain.Order) error {
	var lines []*orderdomain.Line
	if err := tx.WithContext(ctx).
		Where("order_id = ? AND status <> ?", order.ID, orderdomain.LineCancelled).
		Find(&lines).Error; err != nil {
		return err
	}

	applyTotals(order, lines)
	return tx.Model(&orderdomain.Order{}).
		Where("id = ?", order.ID).
		Updates(map[string]any{
			"subtotal_amount": order.SubtotalAmount,
			"discount_amount": order.DiscountAmount,
			"total_amount":    order.TotalAmount,
		}).Error
}

func applyTotals(order *orderdomain.Order, lines []*orderdomain.Line) {
	subtotal := 0.0
	for _, line := range lines {
		if line.Status == orderdomain.LineCancelled {
			continue
		}
		subtotal += line.Total()
	}
	order.SubtotalAmount = subtotal
	order.DiscountAmount = subtotal * order.DiscountPercentage / 100
	order.TotalAmount = subtotal - order.DiscountAmount
}

// NewOrderNumber builds a human-scannable order number like
// ORD-T5-260828-9F3A1C.
func NewOrderNumber(tableNumber string, now time.Time) string {
	suffix := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:6])
	return "ORD-T" + tableNumber + "-" + now.Format("060102") + "-" + suffix
}

func defaultPriority(p orderdomain.Priority) orderdomain.Priority {
	switch p {
	case orderdomain.PriorityLow, orderdomain.PriorityNormal, orderdomain.PriorityHigh, orderdomain.PriorityUrgent:
		return p
	default:
		return orderdomain.PriorityNormal
	}
}

func defaultSource(src orderdomain.Source) orderdomain.Source {
	switch src {
	case orderdomain.SourceDineIn, orderdomain.SourceMobile, orderdomain.SourceTakeaway:
		return src
	default:
		return orderdomain.SourceDineIn
	}
}

func defaultCustomerName(name string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return "Guest"
	}
	return name
}
