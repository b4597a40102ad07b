package domain

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
)

var (
	ErrBillNotFound   = errors.New("bill_not_found")
	ErrEmptyBill      = errors.New("no_billable_orders")
	ErrAlreadyBilled  = errors.New("session_already_billed")
	ErrBillPaid       = errors.New("bill_already_paid")
	ErrOverpayment    = errors.New("payment_exceeds_outstanding")
	ErrInvalidPayment = errors.New("invalid_payment")
)

// FinalizeBillRequest closes a session into its bill. Rate fields left
// at zero fall back to the configured defaults; Discount is always
// taken from the request.
type FinalizeBillRequest struct {
	SessionID          snowflake.ID `json:"session_id,string"`
	DiscountPercentage float64      `json:"discount_percentage"`
	Interstate         bool         `json:"interstate"`
	Staff              string       `json:"-"`
}

// PaymentRequest records one payment against a finalized bill.
type PaymentRequest struct {
	Method    PaymentMethod `json:"method"`
	Amount    float64       `json:"amount"`
	Reference string        `json:"reference,omitempty"`
	Staff     string        `json:"-"`
}

type Service interface {
	// PreviewBill computes running totals for an active session without
	// persisting anything.
	PreviewBill(ctx context.Context, sessionID snowflake.ID) (*Bill, error)

	// FinalizeBill atomically completes the session, snapshots its
	// billable orders, computes GST totals, and frees the table. It
	// succeeds exactly once per session.
	FinalizeBill(ctx context.Context, req FinalizeBillRequest) (*Bill, error)

	GetBill(ctx context.Context, id snowflake.ID) (*Bill, error)
	GetBillBySession(ctx context.Context, sessionID snowflake.ID) (*Bill, error)

	// RecordPayment adds one payment. Payments exceeding the
	// outstanding amount are rejected.
	RecordPayment(ctx context.Context, billID snowflake.ID, req PaymentRequest) (*Bill, error)
}
