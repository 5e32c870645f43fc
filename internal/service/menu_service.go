package service

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/faya/preorder-api/internal/cache"
	"github.com/faya/preorder-api/internal/domain"
	"github.com/faya/preorder-api/internal/repository"
	"github.com/faya/preorder-api/pkg/apperrors"
)

// MenuCache is the subset of cache.MenuCache the menu service needs.
type MenuCache interface {
	Get(ctx context.Context, key string) ([]domain.FoodItem, bool, error)
	Set(ctx context.Context, key string, items []domain.FoodItem) error
}

// MenuQuery filters the public menu listing.
type MenuQuery struct {
	VendorID string
	Limit    int
	Offset   int
}

// MenuService serves the menu catalogue.
type MenuService struct {
	items  repository.FoodItemRepository
	cache  MenuCache
	logger *zap.Logger
}

// NewMenuService builds the service. cache may be nil.
func NewMenuService(items repository.FoodItemRepository, cache MenuCache, logger *zap.Logger) *MenuService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &MenuService{items: items, cache: cache, logger: logger}
}

// List returns available items, served from the cache when possible. Cache failures are
// logged and the database is used instead.
func (s *MenuService) List(ctx context.Context, q MenuQuery) ([]domain.FoodItem, error) {
	key := cache.Key(q.VendorID, q.Limit, q.Offset)
	if s.cache != nil {
		items, ok, err := s.cache.Get(ctx, key)
		if err != nil {
			s.logger.Warn("menu cache read failed", zap.Error(err))
		} else if ok {
			return items, nil
		}
	}

	filter := repository.MenuFilter{
		AvailableOnly: true,
		Page:          repository.Page{Limit: q.Limit, Offset: q.Offset},
	}
	if q.VendorID != "" {
		filter.VendorID = &q.VendorID
	}
	items, err := s.items.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("list menu: %w", err)
	}
	if items == nil {
		items = []domain.FoodItem{}
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, key, items); err != nil {
			s.logger.Warn("menu cache write failed", zap.Error(err))
		}
	}
	return items, nil
}

// Get returns one menu item.
func (s *MenuService) Get(ctx context.Context, id string) (*domain.FoodItem, error) {
	item, err := s.items.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NewNotFound("FoodItem", "id", id)
		}
		return nil, fmt.Errorf("get food item: %w", err)
	}
	return item, nil
}
