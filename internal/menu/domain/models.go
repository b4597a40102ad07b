// Package domain contains persistence models for the menu catalog.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

// Availability represents whether an item can currently be ordered.
type Availability string

const (
	AvailabilityAvailable    Availability = "available"
	AvailabilityOutOfStock   Availability = "out_of_stock"
	AvailabilityDiscontinued Availability = "discontinued"
	AvailabilitySeasonal     Availability = "seasonal"
)

// Category groups menu items for display.
type Category struct {
	ID           snowflake.ID `gorm:"primaryKey" json:"id"`
	Name         string       `gorm:"type:text;not null;uniqueIndex" json:"name"`
	Description  string       `gorm:"type:text;not null;default:''" json:"description"`
	DisplayOrder int          `gorm:"not null;default:0" json:"display_order"`
	IsActive     bool         `gorm:"not null;default:true" json:"is_active"`
	CreatedAt    time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
}

func (Category) TableName() string { return "menu_categories" }

// Item is one orderable menu entry. Price and availability may change
// prospectively; order lines capture the unit price at order time.
type Item struct {
	ID              snowflake.ID `gorm:"primaryKey" json:"id"`
	CategoryID      snowflake.ID `gorm:"not null;index" json:"category_id"`
	Name            string       `gorm:"type:text;not null" json:"name"`
	Description     string       `gorm:"type:text;not null;default:''" json:"description"`
	Price           float64      `gorm:"type:numeric(10,2);not null" json:"price"`
	Availability    Availability `gorm:"type:text;not null;default:'available'" json:"availability"`
	PreparationTime int          `gorm:"not null;default:15" json:"preparation_time"`
	IsVeg           bool         `gorm:"not null;default:true" json:"is_veg"`
	IsSpicy         bool         `gorm:"not null;default:false" json:"is_spicy"`
	DisplayOrder    int          `gorm:"not null;default:0" json:"display_order"`
	IsActive        bool         `gorm:"not null;default:true" json:"is_active"`
	CreatedAt       time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt       time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

func (Item) TableName() string { return "menu_items" }

// Orderable reports whether the item can be added to an order right now.
func (i Item) Orderable() bool {
	return i.Availability == AvailabilityAvailable && i.IsActive
}
