// Package domain contains the dining table and order session models and
// the table status state machine.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

// Status is the occupancy state of a dining table.
type Status string

const (
	StatusAvailable   Status = "available"
	StatusOccupied    Status = "occupied"
	StatusBilling     Status = "billing"
	StatusReserved    Status = "reserved"
	StatusCleaning    Status = "cleaning"
	StatusMaintenance Status = "maintenance"
)

// TableType classifies seating.
type TableType string

const (
	TableTypeRegular TableType = "regular"
	TableTypeVIP     TableType = "vip"
	TableTypeOutdoor TableType = "outdoor"
	TableTypePrivate TableType = "private_dining"
	TableTypeBar     TableType = "bar_seating"
)

// SessionStatus is the lifecycle state of an order session.
type SessionStatus string

const (
	SessionActive    SessionStatus = "active"
	SessionCompleted SessionStatus = "completed"
	SessionCancelled SessionStatus = "cancelled"
)

// Table is one physical seating unit. A table references its active
// session while occupied or billing, and nothing otherwise.
type Table struct {
	ID               snowflake.ID  `gorm:"primaryKey" json:"id"`
	TableNumber      string        `gorm:"type:text;not null;uniqueIndex" json:"table_number"`
	SeatingCapacity  int           `gorm:"not null;default:4" json:"seating_capacity"`
	TableType        TableType     `gorm:"type:text;not null;default:'regular'" json:"table_type"`
	LocationArea     string        `gorm:"type:text;not null;default:''" json:"location_area"`
	Status           Status        `gorm:"type:text;not null;default:'available';index" json:"status"`
	CurrentSessionID *snowflake.ID `gorm:"" json:"current_session_id,omitempty"`
	LastOccupiedAt   *time.Time    `gorm:"" json:"last_occupied_at,omitempty"`
	LastBilledAt     *time.Time    `gorm:"" json:"last_billed_at,omitempty"`
	IsActive         bool          `gorm:"not null;default:true" json:"is_active"`
	CreatedAt        time.Time     `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt        time.Time     `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

func (Table) TableName() string { return "dining_tables" }

// OccupiedMinutes reports how long the current occupancy has lasted.
// Derived on read, never persisted.
func (t Table) OccupiedMinutes(now time.Time) int {
	if t.LastOccupiedAt == nil {
		return 0
	}
	if t.Status != StatusOccupied && t.Status != StatusBilling {
		return 0
	}
	return int(now.Sub(*t.LastOccupiedAt).Minutes())
}

// Session is one bounded occupancy of a table, from the first order to
// bill finalization. Totals are frozen exactly once, at billing.
type Session struct {
	ID        snowflake.ID  `gorm:"primaryKey" json:"id"`
	Code      string        `gorm:"type:text;not null;uniqueIndex" json:"code"`
	TableID   snowflake.ID  `gorm:"not null;index" json:"table_id"`
	Status    SessionStatus `gorm:"type:text;not null;default:'active'" json:"status"`
	PartySize int           `gorm:"not null;default:1" json:"party_size"`
	OpenedBy  string        `gorm:"type:text;not null;default:''" json:"opened_by"`
	Billed    bool          `gorm:"not null;default:false" json:"billed"`
	BilledBy  string        `gorm:"type:text;not null;default:''" json:"billed_by"`

	SubtotalAmount      float64 `gorm:"type:numeric(10,2);not null;default:0" json:"subtotal_amount"`
	DiscountPercentage  float64 `gorm:"type:numeric(5,2);not null;default:0" json:"discount_percentage"`
	DiscountAmount      float64 `gorm:"type:numeric(10,2);not null;default:0" json:"discount_amount"`
	ServiceChargeAmount float64 `gorm:"type:numeric(10,2);not null;default:0" json:"service_charge_amount"`
	TaxAmount           float64 `gorm:"type:numeric(10,2);not null;default:0" json:"tax_amount"`
	FinalAmount         float64 `gorm:"type:numeric(10,2);not null;default:0" json:"final_amount"`

	CreatedAt   time.Time  `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	CompletedAt *time.Time `gorm:"" json:"completed_at,omitempty"`
}

func (Session) TableName() string { return "order_sessions" }

// DurationMinutes is the session length so far, or total if completed.
func (s Session) DurationMinutes(now time.Time) int {
	end := now
	if s.CompletedAt != nil {
		end = *s.CompletedAt
	}
	return int(end.Sub(s.CreatedAt).Minutes())
}

// sideBranches are the table states reachable only from available and
// returning only to available.
var sideBranches = map[Status]bool{
	StatusReserved:    true,
	StatusCleaning:    true,
	StatusMaintenance: true,
}

// CanChangeStatusTo validates a manual table status change. Occupancy
// transitions (available→occupied, →billing, →available) happen only
// through session start and bill finalization, except that staff may
// move an occupied table to billing while the bill is being settled.
func CanChangeStatusTo(from, to Status) bool {
	switch {
	case from == StatusAvailable && sideBranches[to]:
		return true
	case sideBranches[from] && to == StatusAvailable:
		return true
	case from == StatusOccupied && to == StatusBilling:
		return true
	default:
		return false
	}
}
