package service

import (
	"context"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	menudomain "github.com/dineops/dineops/internal/menu/domain"
	"github.com/dineops/dineops/pkg/db/option"
	"github.com/dineops/dineops/pkg/repository"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB    *gorm.DB
	Log   *zap.Logger
	GenID *snowflake.Node
}

type Service struct {
	db    *gorm.DB
	log   *zap.Logger
	genID *snowflake.Node

	categoryrepo repository.Repository[menudomain.Category]
	itemrepo     repository.Repository[menudomain.Item]
}

func NewService(p Params) menudomain.Service {
	return &Service{
		db:    p.DB,
		log:   p.Log.Named("menu.service"),
		genID: p.GenID,

		categoryrepo: repository.ProvideStore[menudomain.Category](p.DB),
		itemrepo:     repository.ProvideStore[menudomain.Item](p.DB),
	}
}

func (s *Service) CreateCategory(ctx context.Context, req menudomain.CreateCategoryRequest) (*menudomain.Category, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, menudomain.ErrInvalidName
	}

	category := &menudomain.Category{
		ID:           s.genID.Generate(),
		Name:         name,
		Description:  strings.TrimSpace(req.Description),
		DisplayOrder: req.DisplayOrder,
		IsActive:     true,
		CreatedAt:    time.Now().UTC(),
	}
	if err := s.categoryrepo.Create(ctx, category); err != nil {
		return nil, err
	}
	return category, nil
}

func (s *Service) ListCategories(ctx context.Context) ([]menudomain.Category, error) {
	items, err := s.categoryrepo.Find(ctx, &menudomain.Category{IsActive: true},
		option.WithOrder("display_order, name"),
	)
	if err != nil {
		return nil, err
	}
	categories := make([]menudomain.Category, 0, len(items))
	for _, item := range items {
		categories = append(categories, *item)
	}
	return categories, nil
}

func (s *Service) CreateItem(ctx context.Context, req menudomain.CreateItemRequest) (*menudomain.Item, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, menudomain.ErrInvalidName
	}
	if req.Price <= 0 {
		return nil, menudomain.ErrInvalidPrice
	}

	category, err := s.categoryrepo.FindOne(ctx, &menudomain.Category{ID: req.CategoryID})
	if err != nil {
		return nil, err
	}
	if category == nil {
		return nil, menudomain.ErrInvalidCategory
	}

	prepTime := req.PreparationTime
	if prepTime <= 0 {
		prepTime = 15
	}
	isVeg := true
	if req.IsVeg != nil {
		isVeg = *req.IsVeg
	}

	now := time.Now().UTC()
	item := &menudomain.Item{
		ID:              s.genID.Generate(),
		CategoryID:      req.CategoryID,
		Name:            name,
		Description:     strings.TrimSpace(req.Description),
		Price:           req.Price,
		Availability:    menudomain.AvailabilityAvailable,
		PreparationTime: prepTime,
		IsVeg:           isVeg,
		IsSpicy:         req.IsSpicy,
		DisplayOrder:    req.DisplayOrder,
		IsActive:        true,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if err := s.itemrepo.Create(ctx, item); err != nil {
		return nil, err
	}

	s.log.Info("menu item created",
		zap.String("item_id", item.ID.String()),
		zap.String("name", item.Name),
	)
	return item, nil
}

func (s *Service) UpdateItem(ctx context.Context, id snowflake.ID, req menudomain.UpdateItemRequest) (*menudomain.Item, error) {
	item, err := s.itemrepo.FindOne(ctx, &menudomain.Item{ID: id})
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, menudomain.ErrNotFound
	}

	updates := map[string]any{"updated_at": time.Now().UTC()}
	if req.Price != nil {
		if *req.Price <= 0 {
			return nil, menudomain.ErrInvalidPrice
		}
		updates["price"] = *req.Price
	}
	if req.Availability != nil {
		updates["availability"] = *req.Availability
	}
	if req.Description != nil {
		updates["description"] = strings.TrimSpace(*req.Description)
	}
	if req.DisplayOrder != nil {
		updates["display_order"] = *req.DisplayOrder
	}

	if err := s.itemrepo.Update(ctx, int64(id), updates); err != nil {
		return nil, err
	}
	return s.itemrepo.FindOne(ctx, &menudomain.Item{ID: id})
}

func (s *Service) GetItem(ctx context.Context, id snowflake.ID) (*menudomain.Item, error) {
	item, err := s.itemrepo.FindOne(ctx, &menudomain.Item{ID: id})
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, menudomain.ErrNotFound
	}
	return item, nil
}

func (s *Service) ListItems(ctx context.Context, req menudomain.ListItemsRequest) ([]menudomain.Item, error) {
	filter := &menudomain.Item{}
	if req.CategoryID != nil {
		filter.CategoryID = *req.CategoryID
	}
	if req.Availability != nil {
		filter.Availability = *req.Availability
	}
	if req.OnlyOrderable {
		filter.Availability = menudomain.AvailabilityAvailable
		filter.IsActive = true
	}

	items, err := s.itemrepo.Find(ctx, filter,
		option.WithOrder("display_order, name"),
		option.WithLimit(req.Limit),
	)
	if err != nil {
		return nil, err
	}
	result := make([]menudomain.Item, 0, len(items))
	for _, item := range items {
		result = append(result, *item)
	}
	return result, nil
}
