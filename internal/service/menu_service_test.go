package service

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/faya/preorder-api/internal/domain"
	"github.com/faya/preorder-api/internal/repository/repotest"
	"github.com/faya/preorder-api/pkg/apperrors"
)

type mapCache struct {
	entries map[string][]domain.FoodItem
	getErr  error
	sets    int
}

func (m *mapCache) Get(_ context.Context, key string) ([]domain.FoodItem, bool, error) {
	if m.getErr != nil {
		return nil, false, m.getErr
	}
	items, ok := m.entries[key]
	return items, ok, nil
}

func (m *mapCache) Set(_ context.Context, key string, items []domain.FoodItem) error {
	m.sets++
	m.entries[key] = items
	return nil
}

func TestMenuListUsesCache(t *testing.T) {
	store := repotest.NewStore()
	vendor := uuid.NewString()
	store.AddFoodItem(domain.FoodItem{VendorID: vendor, Name: "Falafel wrap", Available: true})
	store.AddFoodItem(domain.FoodItem{VendorID: vendor, Name: "Baklava", Available: false})
	c := &mapCache{entries: map[string][]domain.FoodItem{}}
	svc := NewMenuService(store.FoodItems(), c, nil)
	ctx := context.Background()

	items, err := svc.List(ctx, MenuQuery{})
	require.NoError(t, err)
	require.Len(t, items, 1, "unavailable items are hidden")
	assert.Equal(t, 1, c.sets)

	store.Err = errors.New("db down")
	items, err = svc.List(ctx, MenuQuery{})
	require.NoError(t, err, "served from cache")
	assert.Len(t, items, 1)
}

func TestMenuListBypassesBrokenCache(t *testing.T) {
	store := repotest.NewStore()
	store.AddFoodItem(domain.FoodItem{VendorID: uuid.NewString(), Name: "Soup", Available: true})
	c := &mapCache{entries: map[string][]domain.FoodItem{}, getErr: errors.New("redis down")}
	svc := NewMenuService(store.FoodItems(), c, nil)

	items, err := svc.List(context.Background(), MenuQuery{})
	require.NoError(t, err)
	assert.Len(t, items, 1)
}

func TestMenuListFiltersByVendorWithoutCache(t *testing.T) {
	store := repotest.NewStore()
	vendor := uuid.NewString()
	store.AddFoodItem(domain.FoodItem{VendorID: vendor, Name: "Soup", Available: true})
	store.AddFoodItem(domain.FoodItem{VendorID: uuid.NewString(), Name: "Pizza", Available: true})
	svc := NewMenuService(store.FoodItems(), nil, nil)

	items, err := svc.List(context.Background(), MenuQuery{VendorID: vendor})
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "Soup", items[0].Name)

	items, err = svc.List(context.Background(), MenuQuery{VendorID: uuid.NewString()})
	require.NoError(t, err)
	assert.NotNil(t, items)
	assert.Empty(t, items)
}

func TestMenuGet(t *testing.T) {
	store := repotest.NewStore()
	item := store.AddFoodItem(domain.FoodItem{VendorID: uuid.NewString(), Name: "Soup", Available: true})
	svc := NewMenuService(store.FoodItems(), nil, nil)

	got, err := svc.Get(context.Background(), item.ID)
	require.NoError(t, err)
	assert.Equal(t, "Soup", got.Name)

	missing := uuid.NewString()
	_, err = svc.Get(context.Background(), missing)
	require.True(t, apperrors.Is(err, apperrors.KindNotFound))
	assert.Equal(t, "FoodItem not found with id: '"+missing+"'", err.Error())
}
