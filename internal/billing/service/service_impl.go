package service

import (
	"context"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	billingdomain "github.com/dineops/dineops/internal/billing/domain"
	"github.com/dineops/dineops/internal/config"
	"github.com/dineops/dineops/internal/events"
	"github.com/dineops/dineops/internal/observability/metrics"
	orderdomain "github.com/dineops/dineops/internal/order/domain"
	tabledomain "github.com/dineops/dineops/internal/table/domain"
	"github.com/dineops/dineops/pkg/repository"
	"github.com/google/uuid"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// paymentEpsilon absorbs float drift when comparing rupee amounts.
const paymentEpsilon = 0.005

type Params struct {
	fx.In

	DB      *gorm.DB
	Log     *zap.Logger
	GenID   *snowflake.Node
	Config  config.Config
	Events  events.Publisher
	Metrics *metrics.Metrics
}

type Service struct {
	db      *gorm.DB
	log     *zap.Logger
	genID   *snowflake.Node
	cfg     config.Config
	events  events.Publisher
	metrics *metrics.Metrics

	billrepo    repository.Repository[billingdomain.Bill]
	itemrepo    repository.Repository[billingdomain.BillItem]
	paymentrepo repository.Repository[billingdomain.BillPayment]
}

func NewService(p Params) billingdomain.Service {
	return &Service{
		db:      p.DB,
		log:     p.Log.Named("billing.service"),
		genID:   p.GenID,
		cfg:     p.Config,
		events:  p.Events,
		metrics: p.Metrics,

		billrepo:    repository.ProvideStore[billingdomain.Bill](p.DB),
		itemrepo:    repository.ProvideStore[billingdomain.BillItem](p.DB),
		paymentrepo: repository.ProvideStore[billingdomain.BillPayment](p.DB),
	}
}

func (s *Service) PreviewBill(ctx context.Context, sessionID snowflake.ID) (*billingdomain.Bill, error) {
	var session tabledomain.Session
	err := s.db.WithContext(ctx).Where("id = ?", sessionID).First(&session).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, tabledomain.ErrSessionNotFound
		}
		return nil, err
	}

	orders, err := s.billableOrders(ctx, s.db, sessionID)
	if err != nil {
		return nil, err
	}
	var table tabledomain.Table
	if err := s.db.WithContext(ctx).Where("id = ?", session.TableID).First(&table).Error; err != nil {
		return nil, err
	}

	bill := s.buildBill(&session, table.TableNumber, orders, billingdomain.FinalizeBillRequest{
		SessionID:          sessionID,
		DiscountPercentage: session.DiscountPercentage,
	}, time.Now().UTC())
	bill.ReceiptNumber = ""
	return bill, nil
}

func (s *Service) FinalizeBill(ctx context.Context, req billingdomain.FinalizeBillRequest) (*billingdomain.Bill, error) {
	var bill *billingdomain.Bill
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var session tabledomain.Session
		if err := tx.Where("id = ?", req.SessionID).First(&session).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				return tabledomain.ErrSessionNotFound
			}
			return err
		}
		if session.Billed || session.Status != tabledomain.SessionActive {
			return billingdomain.ErrAlreadyBilled
		}

		orders, err := s.billableOrders(ctx, tx, req.SessionID)
		if err != nil {
			return err
		}
		if len(orders) == 0 {
			return billingdomain.ErrEmptyBill
		}
		var table tabledomain.Table
		if err := tx.Where("id = ?", session.TableID).First(&table).Error; err != nil {
			return err
		}

		now := time.Now().UTC()
		bill = s.buildBill(&session, table.TableNumber, orders, req, now)

		// CAS completion of the session is the single serialization
		// point: the first finalizer wins, every later one sees a
		// billed session.
		res := tx.Model(&tabledomain.Session{}).
			Where("id = ? AND status = ? AND billed = ?", session.ID, tabledomain.SessionActive, false).
			Updates(map[string]any{
				"status":                tabledomain.SessionCompleted,
				"billed":                true,
				"billed_by":             req.Staff,
				"completed_at":          now,
				"subtotal_amount":       bill.SubtotalAmount,
				"discount_percentage":   bill.DiscountPercentage,
				"discount_amount":       bill.DiscountAmount,
				"service_charge_amount": bill.ServiceChargeAmount,
				"tax_amount":            bill.CGSTAmount + bill.SGSTAmount + bill.IGSTAmount,
				"final_amount":          bill.GrandTotal,
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return billingdomain.ErrAlreadyBilled
		}

		// Detach the items before the insert or gorm full-saves the
		// association and the batch create below hits duplicate keys.
		billItems := bill.Items
		bill.Items = nil
		if err := s.billrepo.WithTrx(tx).Create(ctx, bill); err != nil {
			return err
		}
		bill.Items = billItems

		items := make([]*billingdomain.BillItem, 0, len(bill.Items))
		for i := range bill.Items {
			bill.Items[i].BillID = bill.ID
			items = append(items, &bill.Items[i])
		}
		if err := s.itemrepo.WithTrx(tx).BatchCreate(ctx, items); err != nil {
			return err
		}

		if err := tx.Model(&orderdomain.Order{}).
			Where("session_id = ? AND status IN ?", session.ID, billableStatuses()).
			Updates(map[string]any{"status": orderdomain.StatusCompleted, "completed_at": now}).Error; err != nil {
			return err
		}

		return tx.Model(&tabledomain.Table{}).
			Where("id = ?", session.TableID).
			Updates(map[string]any{
				"status":             tabledomain.StatusAvailable,
				"current_session_id": nil,
				"updated_at":         now,
			}).Error
	})
	if err != nil {
		return nil, err
	}

	s.metrics.BillsFinalized.Inc()
	s.events.Publish(events.TypeBillFinalized, map[string]any{
		"bill_id":        bill.ID.String(),
		"receipt_number": bill.ReceiptNumber,
		"session_id":     bill.SessionID.String(),
		"table_id":       bill.TableID.String(),
		"grand_total":    bill.GrandTotal,
		"staff":          req.Staff,
	})
	s.events.Publish(events.TypeTableChanged, map[string]any{
		"table_id": bill.TableID.String(),
		"status":   string(tabledomain.StatusAvailable),
	})
	s.log.Info("bill finalized",
		zap.String("receipt", bill.ReceiptNumber),
		zap.Float64("grand_total", bill.GrandTotal),
	)
	return bill, nil
}

func (s *Service) GetBill(ctx context.Context, id snowflake.ID) (*billingdomain.Bill, error) {
	var bill billingdomain.Bill
	err := s.db.WithContext(ctx).Preload("Items").Preload("Payments").
		Where("id = ?", id).First(&bill).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, billingdomain.ErrBillNotFound
		}
		return nil, err
	}
	return &bill, nil
}

func (s *Service) GetBillBySession(ctx context.Context, sessionID snowflake.ID) (*billingdomain.Bill, error) {
	var bill billingdomain.Bill
	err := s.db.WithContext(ctx).Preload("Items").Preload("Payments").
		Where("session_id = ?", sessionID).First(&bill).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, billingdomain.ErrBillNotFound
		}
		return nil, err
	}
	return &bill, nil
}

func (s *Service) RecordPayment(ctx context.Context, billID snowflake.ID, req billingdomain.PaymentRequest) (*billingdomain.Bill, error) {
	if !billingdomain.ValidMethod(req.Method) || req.Amount <= 0 {
		return nil, billingdomain.ErrInvalidPayment
	}

	var settled bool
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var bill billingdomain.Bill
		if err := tx.Where("id = ?", billID).First(&bill).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				return billingdomain.ErrBillNotFound
			}
			return err
		}
		if bill.Status == billingdomain.StatusPaid {
			return billingdomain.ErrBillPaid
		}
		if req.Amount > bill.Outstanding()+paymentEpsilon {
			return billingdomain.ErrOverpayment
		}

		now := time.Now().UTC()
		payment := &billingdomain.BillPayment{
			ID:         s.genID.Generate(),
			BillID:     billID,
			Method:     req.Method,
			Amount:     req.Amount,
			Reference:  strings.TrimSpace(req.Reference),
			ReceivedBy: req.Staff,
			CreatedAt:  now,
		}
		if err := s.paymentrepo.WithTrx(tx).Create(ctx, payment); err != nil {
			return err
		}

		paid := bill.AmountPaid + req.Amount
		status := billingdomain.StatusPartiallyPaid
		updates := map[string]any{"amount_paid": paid, "status": status}
		if bill.GrandTotal-paid <= paymentEpsilon {
			status = billingdomain.StatusPaid
			updates["status"] = status
			updates["paid_at"] = now
			settled = true
		}

		// Guarding on the previous amount keeps two concurrent
		// cashiers from both fitting inside the outstanding balance.
		res := tx.Model(&billingdomain.Bill{}).
			Where("id = ? AND amount_paid = ?", billID, bill.AmountPaid).
			Updates(updates)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return billingdomain.ErrOverpayment
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.metrics.PaymentsTotal.WithLabelValues(string(req.Method)).Inc()
	if settled {
		s.events.Publish(events.TypeBillPaid, map[string]any{
			"bill_id": billID.String(),
			"staff":   req.Staff,
		})
	}
	return s.GetBill(ctx, billID)
}

func billableStatuses() []orderdomain.Status {
	return []orderdomain.Status{
		orderdomain.StatusConfirmed,
		orderdomain.StatusPreparing,
		orderdomain.StatusReady,
		orderdomain.StatusServed,
	}
}

func (s *Service) billableOrders(ctx context.Context, tx *gorm.DB, sessionID snowflake.ID) ([]orderdomain.Order, error) {
	statuses := append(billableStatuses(), orderdomain.StatusCompleted)
	var orders []orderdomain.Order
	err := tx.WithContext(ctx).Preload("Lines").
		Where("session_id = ? AND status IN ?", sessionID, statuses).
		Order("created_at").Find(&orders).Error
	if err != nil {
		return nil, err
	}
	return orders, nil
}

// buildBill snapshots the billable orders into a bill and runs the GST
// computation with configured default rates.
func (s *Service) buildBill(session *tabledomain.Session, tableNumber string, orders []orderdomain.Order, req billingdomain.FinalizeBillRequest, now time.Time) *billingdomain.Bill {
	subtotal := 0.0
	items := make([]billingdomain.BillItem, 0)
	for _, order := range orders {
		subtotal += order.TotalAmount
		for _, line := range order.Lines {
			if line.Status == orderdomain.LineCancelled {
				continue
			}
			items = append(items, billingdomain.BillItem{
				ID:          s.genID.Generate(),
				OrderID:     order.ID,
				OrderNumber: order.OrderNumber,
				MenuItemID:  line.MenuItemID,
				ItemName:    line.ItemName,
				Quantity:    line.Quantity,
				UnitPrice:   line.UnitPrice,
				LineTotal:   line.Total(),
			})
		}
	}

	rates := billingdomain.Rates{
		DiscountPercentage:      req.DiscountPercentage,
		ServiceChargePercentage: s.cfg.ServiceChargePercentage,
		CGSTPercentage:          s.cfg.CGSTPercentage,
		SGSTPercentage:          s.cfg.SGSTPercentage,
		IGSTPercentage:          s.cfg.IGSTPercentage,
		Interstate:              req.Interstate,
	}
	totals := billingdomain.ComputeTotals(subtotal, rates)

	bill := &billingdomain.Bill{
		ID:            s.genID.Generate(),
		ReceiptNumber: NewReceiptNumber(now),
		SessionID:     session.ID,
		TableID:       session.TableID,
		TableNumber:   tableNumber,
		Status:        billingdomain.StatusUnpaid,

		SubtotalAmount:     totals.Subtotal,
		DiscountPercentage: req.DiscountPercentage,
		DiscountAmount:     totals.DiscountAmount,
		TaxableAmount:      totals.TaxableAmount,

		ServiceChargePercentage: rates.ServiceChargePercentage,
		ServiceChargeAmount:     totals.ServiceCharge,

		Interstate: req.Interstate,
		RoundOff:   totals.RoundOff,
		GrandTotal: totals.GrandTotal,

		FinalizedBy: req.Staff,
		CreatedAt:   now,
		Items:       items,
	}
	if req.Interstate {
		bill.IGSTPercentage = rates.IGSTPercentage
		bill.IGSTAmount = totals.IGSTAmount
	} else {
		bill.CGSTPercentage = rates.CGSTPercentage
		bill.CGSTAmount = totals.CGSTAmount
		bill.SGSTPercentage = rates.SGSTPercentage
		bill.SGSTAmount = totals.SGSTAmount
	}
	return bill
}

// NewReceiptNumber builds a receipt number like RCP-20260828-9F3A1C7D.
func NewReceiptNumber(now time.Time) string {
	suffix := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:8])
	return "RCP-" + now.Format("20060102") + "-" + suffix
}
