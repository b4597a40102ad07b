package domain

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
)

var (
	ErrNotFound        = errors.New("menu_item_not_found")
	ErrInvalidName     = errors.New("invalid_name")
	ErrInvalidPrice    = errors.New("invalid_price")
	ErrInvalidCategory = errors.New("invalid_category")
	ErrItemUnavailable = errors.New("item_unavailable")
)

type CreateCategoryRequest struct {
	Name         string `json:"name"`
	Description  string `json:"description"`
	DisplayOrder int    `json:"display_order"`
}

type CreateItemRequest struct {
	CategoryID      snowflake.ID `json:"category_id,string"`
	Name            string       `json:"name"`
	Description     string       `json:"description"`
	Price           float64      `json:"price"`
	PreparationTime int          `json:"preparation_time"`
	IsVeg           *bool        `json:"is_veg"`
	IsSpicy         bool         `json:"is_spicy"`
	DisplayOrder    int          `json:"display_order"`
}

type UpdateItemRequest struct {
	Price        *float64      `json:"price,omitempty"`
	Availability *Availability `json:"availability,omitempty"`
	Description  *string       `json:"description,omitempty"`
	DisplayOrder *int          `json:"display_order,omitempty"`
}

type ListItemsRequest struct {
	CategoryID    *snowflake.ID
	Availability  *Availability
	OnlyOrderable bool
	Limit         int
}

type Service interface {
	CreateCategory(ctx context.Context, req CreateCategoryRequest) (*Category, error)
	ListCategories(ctx context.Context) ([]Category, error)
	CreateItem(ctx context.Context, req CreateItemRequest) (*Item, error)
	UpdateItem(ctx context.Context, id snowflake.ID, req UpdateItemRequest) (*Item, error)
	GetItem(ctx context.Context, id snowflake.ID) (*Item, error)
	ListItems(ctx context.Context, req ListItemsRequest) ([]Item, error)
}
