package domain

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
)

var (
	ErrOrderNotFound      = errors.New("order_not_found")
	ErrLineNotFound       = errors.New("order_line_not_found")
	ErrEmptyOrder         = errors.New("order_has_no_lines")
	ErrInvalidQuantity    = errors.New("invalid_quantity")
	ErrInvalidDiscount    = errors.New("invalid_discount_percentage")
	ErrOrderNotEditable   = errors.New("order_not_editable")
	ErrLineNotRetractable = errors.New("line_already_in_kitchen")
	ErrInvalidTransition  = errors.New("invalid_order_transition")
	ErrAggregatedStatus   = errors.New("status_set_by_kitchen_aggregation")
)

// LineRequest is one requested line at order placement.
type LineRequest struct {
	MenuItemID     snowflake.ID   `json:"menu_item_id,string"`
	Quantity       int            `json:"quantity"`
	Customizations map[string]any `json:"customizations,omitempty"`
	Instructions   string         `json:"instructions,omitempty"`
}

// PlaceOrderRequest creates an order against the table's active session,
// starting one if the table is still available.
type PlaceOrderRequest struct {
	TableID             snowflake.ID
	Lines               []LineRequest
	Staff               string
	Priority            Priority
	Source              Source
	CustomerName        string
	CustomerCount       int
	SpecialInstructions string
	DiscountPercentage  float64
	Draft               bool
}

type ListOrdersRequest struct {
	SessionID *snowflake.ID
	TableID   *snowflake.ID
	Status    *Status
}

type Service interface {
	PlaceOrder(ctx context.Context, req PlaceOrderRequest) (*Order, error)
	GetOrder(ctx context.Context, id snowflake.ID) (*Order, error)
	ListOrders(ctx context.Context, req ListOrdersRequest) ([]Order, error)
	AddLine(ctx context.Context, orderID snowflake.ID, req LineRequest) (*Order, error)
	RemoveLine(ctx context.Context, orderID, lineID snowflake.ID) (*Order, error)
	ConfirmOrder(ctx context.Context, orderID snowflake.ID, staff string) (*Order, error)
	TransitionOrder(ctx context.Context, orderID snowflake.ID, to Status, staff string) (*Order, error)
}
