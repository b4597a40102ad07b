// Package domain defines the kitchen board: the live view over order
// lines that kitchen staff work from, and the line-level operations
// that drive order status by aggregation.
package domain

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	orderdomain "github.com/dineops/dineops/internal/order/domain"
)

var (
	ErrLineNotFound    = errors.New("kitchen_line_not_found")
	ErrInvalidLineMove = errors.New("invalid_line_transition")
)

// Ticket is one order line enriched with the order context a cook needs
// at the pass. It is assembled on read and never stored.
type Ticket struct {
	LineID         snowflake.ID           `json:"line_id,string"`
	OrderID        snowflake.ID           `json:"order_id,string"`
	OrderNumber    string                 `json:"order_number"`
	TableNumber    string                 `json:"table_number"`
	ItemName       string                 `json:"item_name"`
	Quantity       int                    `json:"quantity"`
	Status         orderdomain.LineStatus `json:"status"`
	Priority       orderdomain.Priority   `json:"priority"`
	Urgency        string                 `json:"urgency"`
	WaitMinutes    int                    `json:"wait_minutes"`
	Customizations map[string]any         `json:"customizations,omitempty"`
	Instructions   string                 `json:"instructions,omitempty"`
	AssignedCook   string                 `json:"assigned_cook,omitempty"`
	PrepStartedAt  *time.Time             `json:"prep_started_at,omitempty"`
	ReadyAt        *time.Time             `json:"ready_at,omitempty"`
}

// ListBoardRequest filters the board. With no filters it returns every
// line still moving through the kitchen, oldest orders first.
type ListBoardRequest struct {
	Status  *orderdomain.LineStatus
	TableID *snowflake.ID
	Cook    string
}

type Service interface {
	ListBoard(ctx context.Context, req ListBoardRequest) ([]Ticket, error)
	StartPreparation(ctx context.Context, lineID snowflake.ID, cook string) (*Ticket, error)
	MarkReady(ctx context.Context, lineID snowflake.ID, staff string) (*Ticket, error)
	MarkServed(ctx context.Context, lineID snowflake.ID, staff string) (*Ticket, error)
	CancelLine(ctx context.Context, lineID snowflake.ID, staff string) (*Ticket, error)
}
