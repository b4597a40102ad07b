// Package domain holds the bill, its denormalized item snapshot, split
// payments, and the GST computation the whole billing flow shares.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

// Status is the payment state of a finalized bill.
type Status string

const (
	StatusUnpaid        Status = "unpaid"
	StatusPartiallyPaid Status = "partially_paid"
	StatusPaid          Status = "paid"
)

// PaymentMethod is how a payment was taken.
type PaymentMethod string

const (
	PaymentCash PaymentMethod = "cash"
	PaymentCard PaymentMethod = "card"
	PaymentUPI  PaymentMethod = "upi"
)

// ValidMethod reports whether m is a known payment method.
func ValidMethod(m PaymentMethod) bool {
	return m == PaymentCash || m == PaymentCard || m == PaymentUPI
}

// Bill is the single immutable financial record of a session. All item
// and amount fields are snapshots frozen at finalization; only the
// payment fields change afterwards.
type Bill struct {
	ID            snowflake.ID `gorm:"primaryKey" json:"id"`
	ReceiptNumber string       `gorm:"type:text;not null;uniqueIndex" json:"receipt_number"`
	SessionID     snowflake.ID `gorm:"not null;uniqueIndex" json:"session_id"`
	TableID       snowflake.ID `gorm:"not null;index" json:"table_id"`
	TableNumber   string       `gorm:"type:text;not null" json:"table_number"`
	Status        Status       `gorm:"type:text;not null;default:'unpaid'" json:"status"`

	SubtotalAmount     float64 `gorm:"type:numeric(10,2);not null" json:"subtotal_amount"`
	DiscountPercentage float64 `gorm:"type:numeric(5,2);not null;default:0" json:"discount_percentage"`
	DiscountAmount     float64 `gorm:"type:numeric(10,2);not null;default:0" json:"discount_amount"`
	TaxableAmount      float64 `gorm:"type:numeric(10,2);not null" json:"taxable_amount"`

	ServiceChargePercentage float64 `gorm:"type:numeric(5,2);not null" json:"service_charge_percentage"`
	ServiceChargeAmount     float64 `gorm:"type:numeric(10,2);not null" json:"service_charge_amount"`

	Interstate     bool    `gorm:"not null;default:false" json:"interstate"`
	CGSTPercentage float64 `gorm:"type:numeric(5,2);not null;default:0" json:"cgst_percentage"`
	CGSTAmount     float64 `gorm:"type:numeric(10,2);not null;default:0" json:"cgst_amount"`
	SGSTPercentage float64 `gorm:"type:numeric(5,2);not null;default:0" json:"sgst_percentage"`
	SGSTAmount     float64 `gorm:"type:numeric(10,2);not null;default:0" json:"sgst_amount"`
	IGSTPercentage float64 `gorm:"type:numeric(5,2);not null;default:0" json:"igst_percentage"`
	IGSTAmount     float64 `gorm:"type:numeric(10,2);not null;default:0" json:"igst_amount"`

	RoundOff   float64 `gorm:"type:numeric(5,2);not null;default:0" json:"round_off"`
	GrandTotal float64 `gorm:"type:numeric(10,2);not null" json:"grand_total"`
	AmountPaid float64 `gorm:"type:numeric(10,2);not null;default:0" json:"amount_paid"`

	FinalizedBy string     `gorm:"type:text;not null;default:''" json:"finalized_by"`
	CreatedAt   time.Time  `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	PaidAt      *time.Time `gorm:"" json:"paid_at,omitempty"`

	Items    []BillItem    `gorm:"foreignKey:BillID" json:"items,omitempty"`
	Payments []BillPayment `gorm:"foreignKey:BillID" json:"payments,omitempty"`
}

func (Bill) TableName() string { return "bills" }

// Outstanding is what remains to be collected.
func (b Bill) Outstanding() float64 {
	return b.GrandTotal - b.AmountPaid
}

// BillItem is a denormalized copy of one billed order line, so the
// receipt stays readable even if the menu changes later.
type BillItem struct {
	ID          snowflake.ID `gorm:"primaryKey" json:"id"`
	BillID      snowflake.ID `gorm:"not null;index" json:"bill_id"`
	OrderID     snowflake.ID `gorm:"not null" json:"order_id"`
	OrderNumber string       `gorm:"type:text;not null" json:"order_number"`
	MenuItemID  snowflake.ID `gorm:"not null" json:"menu_item_id"`
	ItemName    string       `gorm:"type:text;not null" json:"item_name"`
	Quantity    int          `gorm:"not null" json:"quantity"`
	UnitPrice   float64      `gorm:"type:numeric(10,2);not null" json:"unit_price"`
	LineTotal   float64      `gorm:"type:numeric(10,2);not null" json:"line_total"`
}

func (BillItem) TableName() string { return "bill_items" }

// BillPayment is one collected payment against a bill. Bills accept
// multiple payments in different methods until fully settled.
type BillPayment struct {
	ID         snowflake.ID  `gorm:"primaryKey" json:"id"`
	BillID     snowflake.ID  `gorm:"not null;index" json:"bill_id"`
	Method     PaymentMethod `gorm:"type:text;not null" json:"method"`
	Amount     float64       `gorm:"type:numeric(10,2);not null" json:"amount"`
	Reference  string        `gorm:"type:text;not null;default:''" json:"reference"`
	ReceivedBy string        `gorm:"type:text;not null;default:''" json:"received_by"`
	CreatedAt  time.Time     `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
}

func (BillPayment) TableName() string { return "bill_payments" }
