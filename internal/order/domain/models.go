// Package domain contains order and order line models and the
// forward-only order status graph.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/datatypes"
)

// Status is the lifecycle state of an order. Orders only move forward
// through the graph, or to cancelled from any non-terminal state.
type Status string

const (
	StatusDraft     Status = "draft"
	StatusPending   Status = "pending"
	StatusConfirmed Status = "confirmed"
	StatusPreparing Status = "preparing"
	StatusReady     Status = "ready"
	StatusServed    Status = "served"
	StatusCompleted Status = "completed"
	StatusCancelled Status = "cancelled"
)

// LineStatus is the kitchen state of a single line.
type LineStatus string

const (
	LinePending   LineStatus = "pending"
	LinePreparing LineStatus = "preparing"
	LineReady     LineStatus = "ready"
	LineServed    LineStatus = "served"
	LineCancelled LineStatus = "cancelled"
)

// Priority orders kitchen attention.
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityNormal Priority = "normal"
	PriorityHigh   Priority = "high"
	PriorityUrgent Priority = "urgent"
)

// Source records where the order came from.
type Source string

const (
	SourceDineIn   Source = "dine_in"
	SourceMobile   Source = "mobile"
	SourceTakeaway Source = "takeaway"
)

var forward = map[Status]Status{
	StatusDraft:     StatusPending,
	StatusPending:   StatusConfirmed,
	StatusConfirmed: StatusPreparing,
	StatusPreparing: StatusReady,
	StatusReady:     StatusServed,
	StatusServed:    StatusCompleted,
}

// Terminal reports whether no further transition is possible.
func (s Status) Terminal() bool {
	return s == StatusCompleted || s == StatusCancelled
}

// Billable reports whether the order counts toward the session bill.
// An order is billable once confirmed, unless cancelled.
func (s Status) Billable() bool {
	switch s {
	case StatusConfirmed, StatusPreparing, StatusReady, StatusServed, StatusCompleted:
		return true
	default:
		return false
	}
}

// CanTransition validates one step of the order graph: the single
// forward edge from the current state, or cancellation of anything
// non-terminal. Backward and skipping moves are rejected.
func CanTransition(from, to Status) bool {
	if to == StatusCancelled {
		return !from.Terminal()
	}
	return forward[from] == to
}

var lineForward = map[LineStatus]LineStatus{
	LinePending:   LinePreparing,
	LinePreparing: LineReady,
	LineReady:     LineServed,
}

// CanTransitionLine validates a kitchen line move. Lines are cancellable
// from pending and preparing only.
func CanTransitionLine(from, to LineStatus) bool {
	if to == LineCancelled {
		return from == LinePending || from == LinePreparing
	}
	return lineForward[from] == to
}

// Order is one placed request for items within a session.
type Order struct {
	ID          snowflake.ID `gorm:"primaryKey" json:"id"`
	OrderNumber string       `gorm:"type:text;not null;uniqueIndex" json:"order_number"`
	SessionID   snowflake.ID `gorm:"not null;index" json:"session_id"`
	TableID     snowflake.ID `gorm:"not null;index" json:"table_id"`
	Status      Status       `gorm:"type:text;not null;default:'pending';index" json:"status"`
	Priority    Priority     `gorm:"type:text;not null;default:'normal'" json:"priority"`
	Source      Source       `gorm:"type:text;not null;default:'dine_in'" json:"source"`

	CustomerName        string `gorm:"type:text;not null;default:'Guest'" json:"customer_name"`
	CustomerCount       int    `gorm:"not null;default:1" json:"customer_count"`
	SpecialInstructions string `gorm:"type:text;not null;default:''" json:"special_instructions"`

	SubtotalAmount     float64 `gorm:"type:numeric(10,2);not null;default:0" json:"subtotal_amount"`
	DiscountPercentage float64 `gorm:"type:numeric(5,2);not null;default:0" json:"discount_percentage"`
	DiscountAmount     float64 `gorm:"type:numeric(10,2);not null;default:0" json:"discount_amount"`
	TotalAmount        float64 `gorm:"type:numeric(10,2);not null;default:0" json:"total_amount"`

	EstimatedPrepMinutes int `gorm:"not null;default:15" json:"estimated_prep_minutes"`

	CreatedBy   string `gorm:"type:text;not null;default:''" json:"created_by"`
	ConfirmedBy string `gorm:"type:text;not null;default:''" json:"confirmed_by"`
	PreparedBy  string `gorm:"type:text;not null;default:''" json:"prepared_by"`
	ServedBy    string `gorm:"type:text;not null;default:''" json:"served_by"`

	CreatedAt            time.Time  `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	ConfirmedAt          *time.Time `gorm:"" json:"confirmed_at,omitempty"`
	PreparationStartedAt *time.Time `gorm:"" json:"preparation_started_at,omitempty"`
	ReadyAt              *time.Time `gorm:"" json:"ready_at,omitempty"`
	ServedAt             *time.Time `gorm:"" json:"served_at,omitempty"`
	CompletedAt          *time.Time `gorm:"" json:"completed_at,omitempty"`
	CancelledAt          *time.Time `gorm:"" json:"cancelled_at,omitempty"`

	Lines []Line `gorm:"foreignKey:OrderID" json:"lines,omitempty"`
}

func (Order) TableName() string { return "orders" }

// WaitMinutes is the elapsed kitchen time since confirmation.
// Derived on read, never persisted.
func (o Order) WaitMinutes(now time.Time) int {
	if o.ConfirmedAt == nil {
		return 0
	}
	return int(now.Sub(*o.ConfirmedAt).Minutes())
}

// Overdue reports whether the order has exceeded its estimated
// preparation time while still in flight.
func (o Order) Overdue(now time.Time) bool {
	if o.Status != StatusConfirmed && o.Status != StatusPreparing {
		return false
	}
	return o.WaitMinutes(now) > o.EstimatedPrepMinutes
}

// UrgencyLevel grades kitchen attention from wait time and priority.
func (o Order) UrgencyLevel(now time.Time) string {
	overdue := o.Overdue(now)
	switch {
	case overdue && (o.Priority == PriorityHigh || o.Priority == PriorityUrgent):
		return "critical"
	case overdue:
		return "overdue"
	case o.Priority == PriorityUrgent:
		return "urgent"
	case o.Priority == PriorityHigh:
		return "high"
	default:
		return "normal"
	}
}

// Line is one menu item and quantity within an order. The unit price is
// captured from the catalog at creation and never changes afterwards.
type Line struct {
	ID             snowflake.ID      `gorm:"primaryKey" json:"id"`
	OrderID        snowflake.ID      `gorm:"not null;index" json:"order_id"`
	MenuItemID     snowflake.ID      `gorm:"not null" json:"menu_item_id"`
	ItemName       string            `gorm:"type:text;not null" json:"item_name"`
	Quantity       int               `gorm:"not null" json:"quantity"`
	UnitPrice      float64           `gorm:"type:numeric(10,2);not null" json:"unit_price"`
	Status         LineStatus        `gorm:"type:text;not null;default:'pending';index" json:"status"`
	Customizations datatypes.JSONMap `gorm:"type:jsonb;not null;default:'{}'" json:"customizations"`
	Instructions   string            `gorm:"type:text;not null;default:''" json:"instructions"`
	AssignedCook   string            `gorm:"type:text;not null;default:''" json:"assigned_cook"`
	PrepStartedAt  *time.Time        `gorm:"" json:"prep_started_at,omitempty"`
	ReadyAt        *time.Time        `gorm:"" json:"ready_at,omitempty"`
	ServedAt       *time.Time        `gorm:"" json:"served_at,omitempty"`
	CreatedAt      time.Time         `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
}

func (Line) TableName() string { return "order_lines" }

// Total is quantity times the captured unit price.
func (l Line) Total() float64 {
	return float64(l.Quantity) * l.UnitPrice
}
